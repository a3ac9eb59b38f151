package oplog

import (
	"github.com/pkg/errors"

	"github.com/nikhilsahni/listcrdt/id"
)

// walkAndTombstone deletes length live runes starting at content position
// pos, splitting across as many originally-separate insert runs as needed,
// and returns the original (insert-time) LV spans it tombstoned. Shared by
// PushDeleteAt and the encoding package's decode replay (DecodeDelete):
// both need the exact same position-to-origin walk that a local delete
// performs, since the wire format serializes a delete as a content-cursor
// diff rather than as explicit target spans (spec §4.2, §6).
func (o *OpLog) walkAndTombstone(pos, length int) ([]id.TimeSpan, error) {
	if pos < 0 || pos+length > o.tree.ContentLen() {
		return nil, errors.Wrapf(ErrOutOfRange, "delete [%d,%d) in doc of content len %d", pos, pos+length, o.tree.ContentLen())
	}
	var targetSpans []id.TimeSpan
	remaining := length
	position := pos
	for remaining > 0 {
		cur, err := o.tree.CursorAtContentPos(position)
		if err != nil {
			return nil, err
		}
		e, ok := o.tree.PeekEntry(cur)
		for ok && !e.IsLive() {
			cur = o.tree.Advance(cur)
			e, ok = o.tree.PeekEntry(cur)
		}
		if !ok {
			return nil, errors.Wrap(ErrOutOfRange, "oplog: delete ran past end of document")
		}
		take := e.AbsLen()
		if take > remaining {
			take = remaining
		}
		span := id.TimeSpan{Start: e.LVBase, End: e.LVBase + id.LV(take)}
		already, err := o.tree.Delete(span)
		if err != nil {
			return nil, err
		}
		for _, dbl := range already {
			o.doubleDeletes.record(dbl)
		}
		targetSpans = append(targetSpans, span)
		remaining -= take
		// Position does not advance: once a run is tombstoned, the
		// content offset it used to occupy collapses, so the next
		// surviving characters slide into the same `position`.
	}
	return targetSpans, nil
}

// SetContent seeds the packed insert/delete content buffers directly, used
// only by package encoding while decoding a file into a fresh OpLog: the
// InsertedContent/DeletedContent chunks are read in full before any
// operation row references a range within them, unlike a local push which
// grows these buffers one run at a time.
func (o *OpLog) SetContent(ins, del []rune) {
	o.insContent = ins
	o.delContent = del
}

// AgentNames returns every interned agent name in AgentId order, used to
// encode the AgentNames chunk.
func (o *OpLog) AgentNames() []string {
	return o.agents.Names()
}

// AgentName resolves a single AgentId to its interned name.
func (o *OpLog) AgentName(a id.AgentId) (string, error) {
	return o.agents.Name(a)
}

// ClientSpans returns the LV->agent run-length list backing LVToCRDTId, in
// LV order, used to encode the AgentAssignment chunk.
func (o *OpLog) ClientSpans() []id.CRDTSpan {
	return o.clientLV.All()
}

// InsertedContent and DeletedContent expose the OpLog's packed content
// buffers verbatim, for the InsertedContent/DeletedContent chunks.
func (o *OpLog) InsertedContent() []rune { return o.insContent }
func (o *OpLog) DeletedContent() []rune  { return o.delContent }

// DecodeAgentSpan records a decoded AgentAssignment entry. It mirrors
// assignLVs's bookkeeping (agent table + client_with_lv), except the
// (agent, seq, lv) triple is already fully known from the file rather than
// derived from the agent's running seq counter: a file's AgentAssignment
// chunk may interleave an agent's seq runs out of LV order relative to
// seq order (spec §6's "jump" field), which the strictly-append-only
// RecordRun used by local/remote pushes does not allow.
func (o *OpLog) DecodeAgentSpan(span id.CRDTSpan) error {
	if err := o.agents.RecordRunAt(span.Agent, span.SeqBase, span.Len, span.LVBase); err != nil {
		return errors.Wrap(err, "oplog: decode agent assignment")
	}
	o.clientLV.Push(span)
	return nil
}

// DecodeInsert replays a decoded insertion at an already-assigned lv
// (registered via a prior DecodeAgentSpan), re-deriving its origins from
// the document's current content position exactly as PushInsertAt would.
// contentStart/n index the already-loaded InsertedContent buffer.
func (o *OpLog) DecodeInsert(lv id.LV, parents id.Frontier, pos int, n int, contentStart int) error {
	cur, err := o.tree.CursorAtContentPos(pos)
	if err != nil {
		return errors.Wrap(err, "oplog: decode insert")
	}
	leftOrigin := id.Root
	if prev, ok := o.tree.PeekPrev(cur); ok {
		leftOrigin = prev.LastID()
	}
	rightOrigin := id.Root
	if next, ok := o.tree.PeekEntry(cur); ok {
		rightOrigin = next.FirstID()
	}
	firstID, err := o.LVToCRDTId(lv)
	if err != nil {
		return errors.Wrap(err, "oplog: decode insert")
	}
	if _, err := o.integrateInsert(firstID, lv, n, leftOrigin, rightOrigin); err != nil {
		return errors.Wrap(err, "oplog: decode insert")
	}
	span := id.TimeSpan{Start: lv, End: lv + id.LV(n)}
	o.ops.Push(Operation{
		Span:       span,
		Kind:       OpInsert,
		Fwd:        true,
		ContentPos: ContentRange{Start: contentStart, End: contentStart + n},
		Pos:        pos,
	})
	if err := o.hist.Insert(parents, span); err != nil {
		return errors.Wrap(err, "oplog: decode insert")
	}
	o.frontier = o.frontier.Advance(parents, span)
	return nil
}

// DecodeDelete replays a decoded deletion at an already-assigned lv,
// re-deriving its target spans from the document's current content
// position exactly as PushDeleteAt would. contentStart/length index the
// already-loaded DeletedContent buffer.
func (o *OpLog) DecodeDelete(lv id.LV, parents id.Frontier, pos, length int, fwd bool, contentStart int) error {
	targetSpans, err := o.walkAndTombstone(pos, length)
	if err != nil {
		return errors.Wrap(err, "oplog: decode delete")
	}
	span := id.TimeSpan{Start: lv, End: lv + id.LV(length)}
	o.ops.Push(Operation{
		Span:        span,
		Kind:        OpDelete,
		Fwd:         fwd,
		TargetSpans: targetSpans,
		ContentPos:  ContentRange{Start: contentStart, End: contentStart + length},
		Pos:         pos,
	})
	if err := o.hist.Insert(parents, span); err != nil {
		return errors.Wrap(err, "oplog: decode delete")
	}
	o.frontier = o.frontier.Advance(parents, span)
	return nil
}
