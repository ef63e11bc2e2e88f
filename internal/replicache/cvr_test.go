package replicache

import (
	"sort"
	"testing"
)

func TestDiff_Movements(t *testing.T) {
	base := NewCVR()
	base.Entities = map[string]int{
		"chat/a":    1,
		"chat/b":    2,
		"message/x": 1,
	}

	next := NewCVR()
	next.Entities = map[string]int{
		"chat/a":    1, // unchanged
		"chat/b":    3, // bumped
		"message/y": 1, // new
	}

	d := next.Diff(base)

	sort.Strings(d.Puts)
	sort.Strings(d.Dels)
	sort.Strings(d.Changed)

	if len(d.Puts) != 1 || d.Puts[0] != "message/y" {
		t.Errorf("puts: got %v", d.Puts)
	}
	if len(d.Dels) != 1 || d.Dels[0] != "message/x" {
		t.Errorf("dels: got %v", d.Dels)
	}
	if len(d.Changed) != 1 || d.Changed[0] != "chat/b" {
		t.Errorf("changed: got %v", d.Changed)
	}
}

func TestDiff_EmptyBase(t *testing.T) {
	next := NewCVR()
	next.Entities = map[string]int{"chat/a": 1, "chat/b": 1}

	d := next.Diff(NewCVR())
	if len(d.Puts) != 2 {
		t.Errorf("puts: got %d, want 2", len(d.Puts))
	}
	if len(d.Dels) != 0 || len(d.Changed) != 0 {
		t.Errorf("dels/changed: got %v / %v", d.Dels, d.Changed)
	}
}

func TestEqual(t *testing.T) {
	a := NewCVR()
	a.Entities = map[string]int{"chat/a": 1}
	a.LastMutationIDs = map[string]int{"client-1": 4}

	b := NewCVR()
	b.Entities = map[string]int{"chat/a": 1}
	b.LastMutationIDs = map[string]int{"client-1": 4}

	if !a.Equal(b) {
		t.Error("identical records must be equal")
	}

	b.LastMutationIDs["client-1"] = 5
	if a.Equal(b) {
		t.Error("mutation id movement must break equality")
	}

	b.LastMutationIDs["client-1"] = 4
	b.Entities["chat/a"] = 2
	if a.Equal(b) {
		t.Error("entity version movement must break equality")
	}

	b.Entities["chat/a"] = 1
	b.Entities["chat/b"] = 1
	if a.Equal(b) {
		t.Error("extra entity must break equality")
	}
}
