// Package idgen generates default agent names for callers that have no
// human-chosen identity to hand the OpLog, e.g. a CLI invocation that
// isn't told which collaborator it's acting as. Grounded on the UUID-based
// node naming used by the causal-tree reference in other_examples.
package idgen

import "github.com/google/uuid"

// NewAgent returns a fresh random agent name, suitable for
// oplog.OpLog.GetOrCreateAgent when the caller has no stable identity of
// its own. Every call returns a distinct name; callers that want a stable
// identity across runs should persist and reuse one instead of calling this
// repeatedly.
func NewAgent() string {
	return uuid.NewString()
}
