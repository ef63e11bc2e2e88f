// Package replicache implements the CVR-based incremental sync protocol:
// pull (snapshot diffing) and push (ordered, idempotent client mutations).
package replicache

import "encoding/json"

// Cookie is the small token a client round-trips to name its last seen CVR
// snapshot. Order is a monotone watermark; CvrID addresses the cached
// snapshot.
type Cookie struct {
	Order int    `json:"order"`
	CvrID string `json:"cvrID"`
}

// PullRequest is the wire shape of POST /api/replicache/pull.
type PullRequest struct {
	ClientGroupID string  `json:"clientGroupID"`
	Cookie        *Cookie `json:"cookie"`
}

// PullResponse carries the patch, the new cookie and the per-client
// mutation watermarks.
type PullResponse struct {
	Cookie                Cookie         `json:"cookie"`
	LastMutationIDChanges map[string]int `json:"lastMutationIDChanges"`
	Patch                 []PatchOp      `json:"patch"`
}

// Mutation is a named, ordered, idempotent client write intent, identified
// by (ClientID, ID).
type Mutation struct {
	ClientID  string          `json:"clientID"`
	ID        int             `json:"id"`
	Name      string          `json:"name"`
	Args      json.RawMessage `json:"args"`
	Timestamp float64         `json:"timestamp"`
}

// PushRequest is the wire shape of POST /api/replicache/push. One push may
// carry mutations from several clients of the same group.
type PushRequest struct {
	ClientGroupID string     `json:"clientGroupID"`
	Mutations     []Mutation `json:"mutations"`
}

// PushResponse acknowledges a processed push.
type PushResponse struct {
	Success bool `json:"success"`
}

// Patch op tags.
const (
	OpClear = "clear"
	OpDel   = "del"
	OpPut   = "put"
)

// PatchOp is one entry of the ordered diff returned by a pull.
type PatchOp struct {
	Op    string          `json:"op"`
	Key   string          `json:"key,omitempty"`
	Value json.RawMessage `json:"value,omitempty"`
}
