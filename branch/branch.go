// Package branch implements the materialized text snapshot described in
// spec §4.6 (component C6): a Branch pairs a frontier with its own content
// rope, translating positional edits into OpLog integrations and applying
// the resulting patches back onto the rope.
package branch

import (
	"github.com/pkg/errors"

	"github.com/nikhilsahni/listcrdt/id"
	"github.com/nikhilsahni/listcrdt/oplog"

	crdt "github.com/nikhilsahni/listcrdt"
)

// Branch satisfies the repo-wide CRDT contract: Value reports the
// materialized text, Merge joins two divergent views of the same OpLog onto
// their common descendant frontier.
var _ crdt.CRDT = (*Branch)(nil)

// ErrNotAtHead is returned by Insert/Delete when the branch's frontier has
// fallen behind its OpLog's current frontier. Editing requires the branch
// to be caught up, since translating a rope position into origins assumes
// the branch's own content exactly mirrors the OpLog's live document;
// call Checkout(oplog.LocalVersion()) first to catch up.
var ErrNotAtHead = errors.New("branch: not at oplog head")

// Branch is the materialized view described in spec §4.6: a frontier plus
// its own content rope. The OpLog is the sole owner of history, operations
// and the RangeTree (spec §3 Ownership); a Branch only owns its frontier
// and rope.
type Branch struct {
	log      *oplog.OpLog
	frontier id.Frontier
	content  []rune
}

// New returns a Branch at the ROOT frontier with empty content, backed by
// log.
func New(log *oplog.OpLog) *Branch {
	return &Branch{log: log, frontier: id.NewFrontier()}
}

// Content returns the branch's current materialized text.
func (b *Branch) Content() string {
	return string(b.content)
}

// Value returns the branch's materialized text, satisfying crdt.CRDT.
func (b *Branch) Value() any {
	return b.Content()
}

// Merge joins another branch's frontier into the receiver's and checks out
// the result, satisfying crdt.CRDT. The two branches must share the same
// OpLog: this Branch is a view over history the OpLog already owns (spec
// §4.6 Ownership), not a standalone replica, so absorbing a genuinely
// foreign OpLog's operations is the job of OpLog.ApplyRemoteTxn, not of
// Merge. Merging two divergent checkouts of one OpLog onto their common
// descendant frontier is, however, exactly the join this interface
// describes -- the multi-parent case Checkout's doc already allows for.
func (b *Branch) Merge(other crdt.CRDT) error {
	ob, ok := other.(*Branch)
	if !ok {
		return crdt.ErrIncompatibleMerge
	}
	if ob.log != b.log {
		return errors.New("branch: cannot merge branches backed by different op logs")
	}
	union := append(b.frontier.Clone(), ob.frontier...)
	target := b.log.Dominators(id.NewFrontier(union...))
	return b.Checkout(target)
}

// Len returns the number of live characters in the branch's content.
func (b *Branch) Len() int {
	return len(b.content)
}

// LocalFrontier returns the branch's frontier in LV form (spec §4.6
// local_frontier).
func (b *Branch) LocalFrontier() id.Frontier {
	return b.frontier.Clone()
}

// RemoteFrontier returns the branch's frontier in (agent, seq) form (spec
// §4.6 remote_frontier).
func (b *Branch) RemoteFrontier() ([]id.CRDTId, error) {
	return b.log.FrontierToRemote(b.frontier)
}

// AtHead reports whether the branch's frontier matches its OpLog's
// current frontier.
func (b *Branch) AtHead() bool {
	return b.frontier.Equal(b.log.LocalVersion())
}

// Insert translates pos (an offset into the branch's own rope) into an
// OpLog integration and splices the text into the rope at the content
// position the integration reports. Spec §4.6
// insert. The branch must be at its OpLog's head; see ErrNotAtHead.
func (b *Branch) Insert(agent id.AgentId, pos int, text string) error {
	if !b.AtHead() {
		return ErrNotAtHead
	}
	if pos < 0 || pos > len(b.content) {
		return errors.Errorf("branch: insert position %d out of range (len %d)", pos, len(b.content))
	}
	res, err := b.log.PushInsertAt(agent, b.frontier, pos, text)
	if err != nil {
		return errors.Wrap(err, "branch: insert")
	}
	runes := []rune(text)
	grown := make([]rune, 0, len(b.content)+len(runes))
	grown = append(grown, b.content[:res.ContentPos]...)
	grown = append(grown, runes...)
	grown = append(grown, b.content[res.ContentPos:]...)
	b.content = grown
	b.frontier = b.log.LocalVersion()
	return nil
}

// Delete translates the [pos, pos+length) range of the branch's own rope
// into an OpLog integration and removes the text from the rope. Spec §4.6
// delete. The branch must be at its OpLog's head; see ErrNotAtHead.
func (b *Branch) Delete(agent id.AgentId, pos int, length int) error {
	if !b.AtHead() {
		return ErrNotAtHead
	}
	if pos < 0 || length < 0 || pos+length > len(b.content) {
		return errors.Errorf("branch: delete range [%d,%d) out of range (len %d)", pos, pos+length, len(b.content))
	}
	if _, err := b.log.PushDeleteAt(agent, b.frontier, pos, length); err != nil {
		return errors.Wrap(err, "branch: delete")
	}
	shrunk := make([]rune, 0, len(b.content)-length)
	shrunk = append(shrunk, b.content[:pos]...)
	shrunk = append(shrunk, b.content[pos+length:]...)
	b.content = shrunk
	b.frontier = b.log.LocalVersion()
	return nil
}

// Checkout moves the branch to target, rematerializing its content from
// the OpLog's full history (spec §4.6 checkout). target need not be an
// ancestor or descendant of the branch's current frontier -- a checkout
// can move forward, backward, or sideways onto a concurrent frontier.
func (b *Branch) Checkout(target id.Frontier) error {
	text, err := b.log.MaterializeAt(target)
	if err != nil {
		return errors.Wrap(err, "branch: checkout")
	}
	b.content = text
	b.frontier = target.Clone()
	return nil
}
