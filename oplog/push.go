package oplog

import (
	"github.com/pkg/errors"

	"github.com/nikhilsahni/listcrdt/id"
)

// InsertResult reports what a local insertion produced: the first LV
// assigned to it and the content position (in the OpLog's own, always-
// up-to-date view) where the new run landed.
type InsertResult struct {
	FirstLV    id.LV
	ContentPos int
}

// PushInsertAt appends a local insertion of text at content position pos
// (relative to the OpLog's current state, i.e. its own frontier), assigns
// LVs, integrates it into the RangeTree, records history, and advances
// the frontier. Spec §4.2 push_insert_at.
func (o *OpLog) PushInsertAt(agent id.AgentId, parents id.Frontier, pos int, text string) (InsertResult, error) {
	runes := []rune(text)
	if len(runes) == 0 {
		return InsertResult{}, errors.New("oplog: empty insert text")
	}
	cur, err := o.tree.CursorAtContentPos(pos)
	if err != nil {
		return InsertResult{}, errors.Wrap(err, "oplog: push_insert_at")
	}
	leftOrigin := id.Root
	if prev, ok := o.tree.PeekPrev(cur); ok {
		leftOrigin = prev.LastID()
	}
	rightOrigin := id.Root
	if next, ok := o.tree.PeekEntry(cur); ok {
		rightOrigin = next.FirstID()
	}

	lvBase, err := o.assignLVs(agent, len(runes))
	if err != nil {
		return InsertResult{}, err
	}
	firstID, err := o.LVToCRDTId(lvBase)
	if err != nil {
		return InsertResult{}, err
	}

	contentPos, err := o.integrateInsert(firstID, lvBase, len(runes), leftOrigin, rightOrigin)
	if err != nil {
		return InsertResult{}, err
	}

	contentStart := len(o.insContent)
	o.insContent = append(o.insContent, runes...)
	span := id.TimeSpan{Start: lvBase, End: lvBase + id.LV(len(runes))}
	o.ops.Push(Operation{
		Span:       span,
		Kind:       OpInsert,
		Fwd:        true,
		ContentPos: ContentRange{Start: contentStart, End: contentStart + len(runes)},
		Pos:        contentPos,
	})
	if err := o.hist.Insert(parents, span); err != nil {
		return InsertResult{}, errors.Wrap(err, "oplog: push_insert_at")
	}
	o.frontier = o.frontier.Advance(parents, span)
	o.log.WithFields(map[string]interface{}{"agent": agent, "pos": pos, "len": len(runes)}).Debug("local insert integrated")
	return InsertResult{FirstLV: lvBase, ContentPos: contentPos}, nil
}

// DeleteResult reports the first LV assigned to a local delete.
type DeleteResult struct {
	FirstLV id.LV
}

// PushDeleteAt appends a local deletion of length runes at content
// position pos (relative to the OpLog's current state). Spec §4.2
// push_delete_at; the deleted runes are copied into del_content, which the
// encoder writes out as the DeletedContent chunk. Checkout does not read
// del_content: MaterializeAt rebuilds text from the inserted content.
func (o *OpLog) PushDeleteAt(agent id.AgentId, parents id.Frontier, pos int, length int) (DeleteResult, error) {
	if length <= 0 {
		return DeleteResult{}, errors.New("oplog: non-positive delete length")
	}
	if pos < 0 || pos+length > o.tree.ContentLen() {
		return DeleteResult{}, errors.Wrapf(ErrOutOfRange, "delete [%d,%d) in doc of content len %d", pos, pos+length, o.tree.ContentLen())
	}

	lvBase, err := o.assignLVs(agent, length)
	if err != nil {
		return DeleteResult{}, err
	}

	targetSpans, err := o.walkAndTombstone(pos, length)
	if err != nil {
		return DeleteResult{}, errors.Wrap(err, "oplog: push_delete_at")
	}
	deleted := make([]rune, 0, length)
	for _, s := range targetSpans {
		text, err := o.originalText(s)
		if err != nil {
			return DeleteResult{}, errors.Wrap(err, "oplog: push_delete_at")
		}
		deleted = append(deleted, text...)
	}

	contentStart := len(o.delContent)
	o.delContent = append(o.delContent, deleted...)
	span := id.TimeSpan{Start: lvBase, End: lvBase + id.LV(length)}
	o.ops.Push(Operation{
		Span:        span,
		Kind:        OpDelete,
		Fwd:         true,
		TargetSpans: targetSpans,
		ContentPos:  ContentRange{Start: contentStart, End: contentStart + length},
		Pos:         pos,
	})
	if err := o.hist.Insert(parents, span); err != nil {
		return DeleteResult{}, errors.Wrap(err, "oplog: push_delete_at")
	}
	o.frontier = o.frontier.Advance(parents, span)
	o.log.WithFields(map[string]interface{}{"agent": agent, "pos": pos, "len": length}).Debug("local delete integrated")
	return DeleteResult{FirstLV: lvBase}, nil
}
