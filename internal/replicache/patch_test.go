package replicache

import (
	"encoding/json"
	"testing"

	"gorm.io/gorm"
)

func staticEntry(prefix string, values map[string]string, versions map[string]int) Entry {
	return Entry{
		Prefix: prefix,
		Load: func(tx *gorm.DB, ids []string) (map[string]json.RawMessage, error) {
			out := map[string]json.RawMessage{}
			for _, id := range ids {
				if v, ok := values[id]; ok {
					out[id] = json.RawMessage(v)
				}
			}
			return out, nil
		},
		List: func(tx *gorm.DB, userID string) (map[string]int, error) {
			return versions, nil
		},
	}
}

func TestGeneratePatch_ClearOnEmptyBase(t *testing.T) {
	registry := NewRegistry()
	registry.MustRegister(staticEntry("chat",
		map[string]string{"a": `{"id":"a"}`}, nil))

	next := NewCVR()
	next.Entities = map[string]int{"chat/a": 1}

	patch, err := GeneratePatch(nil, registry, NewCVR(), next)
	if err != nil {
		t.Fatal(err)
	}

	if len(patch) != 2 {
		t.Fatalf("ops: got %d, want 2", len(patch))
	}
	if patch[0].Op != OpClear {
		t.Errorf("first op: got %s, want %s", patch[0].Op, OpClear)
	}
	if patch[1].Op != OpPut || patch[1].Key != "chat/a" {
		t.Errorf("second op: got %+v", patch[1])
	}
	if string(patch[1].Value) != `{"id":"a"}` {
		t.Errorf("value: got %s", patch[1].Value)
	}
}

func TestGeneratePatch_DelsBeforePuts(t *testing.T) {
	registry := NewRegistry()
	registry.MustRegister(staticEntry("chat",
		map[string]string{"b": `{"id":"b"}`, "c": `{"id":"c"}`}, nil))

	base := NewCVR()
	base.Entities = map[string]int{"chat/a": 1, "chat/b": 1}

	next := NewCVR()
	next.Entities = map[string]int{"chat/b": 2, "chat/c": 1}

	patch, err := GeneratePatch(nil, registry, base, next)
	if err != nil {
		t.Fatal(err)
	}

	// Non-empty base: no clear. One del, then two puts in key order.
	if len(patch) != 3 {
		t.Fatalf("ops: got %d, want 3", len(patch))
	}
	if patch[0].Op != OpDel || patch[0].Key != "chat/a" {
		t.Errorf("del op: got %+v", patch[0])
	}
	if patch[1].Op != OpPut || patch[1].Key != "chat/b" {
		t.Errorf("put op 1: got %+v", patch[1])
	}
	if patch[2].Op != OpPut || patch[2].Key != "chat/c" {
		t.Errorf("put op 2: got %+v", patch[2])
	}
}

func TestGeneratePatch_UnknownPrefix(t *testing.T) {
	next := NewCVR()
	next.Entities = map[string]int{"widget/a": 1}

	_, err := GeneratePatch(nil, NewRegistry(), NewCVR(), next)
	if err == nil {
		t.Fatal("expected error for unregistered prefix")
	}
}

func TestGeneratePatch_MissingEntity(t *testing.T) {
	registry := NewRegistry()
	registry.MustRegister(staticEntry("chat", map[string]string{}, nil))

	next := NewCVR()
	next.Entities = map[string]int{"chat/gone": 1}

	_, err := GeneratePatch(nil, registry, NewCVR(), next)
	if err == nil {
		t.Fatal("expected error when loader cannot produce a put value")
	}
}
