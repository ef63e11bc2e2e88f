package replicache

import "context"

// CVR is a Client View Record: the (entity key → version) snapshot of what a
// client group has seen, plus each client's last applied mutation id.
// Entity keys are "<prefix>/<id>".
type CVR struct {
	Entities        map[string]int `json:"entities"`
	LastMutationIDs map[string]int `json:"lastMutationIDs"`
}

// NewCVR returns an empty record.
func NewCVR() *CVR {
	return &CVR{
		Entities:        map[string]int{},
		LastMutationIDs: map[string]int{},
	}
}

// Diff lists the key movements from base to c.
type Diff struct {
	Puts    []string
	Dels    []string
	Changed []string
}

// Diff computes what a client holding base needs to reach c: keys only in c
// (puts), keys only in base (dels), and keys present in both at different
// versions (changed).
func (c *CVR) Diff(base *CVR) Diff {
	var d Diff
	for k := range c.Entities {
		if _, ok := base.Entities[k]; !ok {
			d.Puts = append(d.Puts, k)
		}
	}
	for k, baseVer := range base.Entities {
		ver, ok := c.Entities[k]
		if !ok {
			d.Dels = append(d.Dels, k)
			continue
		}
		if ver != baseVer {
			d.Changed = append(d.Changed, k)
		}
	}
	return d
}

// Equal reports whether two records describe the same client view.
func (c *CVR) Equal(other *CVR) bool {
	if len(c.Entities) != len(other.Entities) || len(c.LastMutationIDs) != len(other.LastMutationIDs) {
		return false
	}
	for k, v := range c.Entities {
		if ov, ok := other.Entities[k]; !ok || ov != v {
			return false
		}
	}
	for k, v := range c.LastMutationIDs {
		if ov, ok := other.LastMutationIDs[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

// Snapshots stores CVRs by id. Get returns (nil, nil) on a miss; a miss is
// not an error, it just forces a full diff on the next pull.
type Snapshots interface {
	Get(ctx context.Context, cvrID string) (*CVR, error)
	Put(ctx context.Context, cvrID string, cvr *CVR) error
}
