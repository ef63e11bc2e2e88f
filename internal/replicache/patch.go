package replicache

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"gorm.io/gorm"
)

// GeneratePatch computes the ordered patch that moves a client holding base
// to next. The first op is Clear when base is empty (client has no prior
// state); deletions precede puts; put values are batch-loaded per prefix
// through the registry. A key whose prefix is not registered is a hard
// error: the client has drifted into an unsupported schema.
func GeneratePatch(tx *gorm.DB, registry *Registry, base, next *CVR) ([]PatchOp, error) {
	var patch []PatchOp

	if len(base.Entities) == 0 {
		patch = append(patch, PatchOp{Op: OpClear})
	}

	diff := next.Diff(base)

	sort.Strings(diff.Dels)
	for _, key := range diff.Dels {
		patch = append(patch, PatchOp{Op: OpDel, Key: key})
	}

	combined := make([]string, 0, len(diff.Puts)+len(diff.Changed))
	combined = append(combined, diff.Puts...)
	combined = append(combined, diff.Changed...)
	sort.Strings(combined)

	groups := map[string][]string{}
	for _, key := range combined {
		prefix, id, ok := strings.Cut(key, "/")
		if !ok {
			return nil, fmt.Errorf("malformed entity key %q", key)
		}
		groups[prefix] = append(groups[prefix], id)
	}

	values := map[string]map[string]json.RawMessage{}
	for prefix, ids := range groups {
		load, ok := registry.loader(prefix)
		if !ok {
			return nil, fmt.Errorf("unknown entity prefix %q", prefix)
		}
		loaded, err := load(tx, ids)
		if err != nil {
			return nil, fmt.Errorf("load %s entities: %w", prefix, err)
		}
		values[prefix] = loaded
	}

	for _, key := range combined {
		prefix, id, _ := strings.Cut(key, "/")
		value, ok := values[prefix][id]
		if !ok {
			return nil, fmt.Errorf("%s not found for id %s", prefix, id)
		}
		patch = append(patch, PatchOp{Op: OpPut, Key: key, Value: value})
	}

	return patch, nil
}
