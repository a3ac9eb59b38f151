package oplog

import "github.com/nikhilsahni/listcrdt/id"

// OpKind distinguishes an insertion from a deletion in the operations log.
type OpKind uint8

const (
	OpInsert OpKind = iota
	OpDelete
)

func (k OpKind) String() string {
	if k == OpInsert {
		return "Ins"
	}
	return "Del"
}

// ContentRange indexes into one of the OpLog's packed content runes
// (ins_content for inserts, del_content for deletes). It is rune-indexed,
// not byte-indexed -- the wire encoder converts to/from UTF-8 bytes.
type ContentRange struct {
	Start int
	End   int
}

// Len returns the number of runes the range covers.
func (r ContentRange) Len() int {
	return r.End - r.Start
}

// Operation is the internal per-span record described in spec §3. Span is
// this operation's own identity: a fresh LV run assigned for causality
// bookkeeping (history, frontier, agent assignment), the same for inserts
// and deletes. For a delete, TargetSpans additionally names the original
// (insert-time) LV ranges of the characters being tombstoned -- a delete
// of a content-contiguous range can span several originally-separate
// insert runs, so this is a list rather than the single TimeSpanRev the
// distilled spec sketches; see DESIGN.md. Fwd records whether the target
// ranges were walked in increasing (true) or decreasing LV order, as in a
// backspace-style delete. Pos is the content position this run landed at
// (for an insert) or was applied at (for a delete) at the moment it was
// integrated -- the quantity the PositionalPatches wire chunk serializes
// as a running cursor diff (spec §6); it is meaningful only relative to
// the document state immediately before this run, so it must be captured
// at integration time rather than recomputed later.
type Operation struct {
	Span        id.TimeSpan
	Kind        OpKind
	Fwd         bool
	TargetSpans []id.TimeSpan
	ContentPos  ContentRange
	Pos         int
}

// CanAppend reports whether other is the same kind/direction and
// immediately continues both the LV span and the content range, allowing
// the pair to collapse into one run-length record. Operations with
// multiple TargetSpans never fuse, since a fused pair would no longer be
// representable as one run.
func (o Operation) CanAppend(other Operation) bool {
	if o.Kind != other.Kind || o.Fwd != other.Fwd {
		return false
	}
	if len(o.TargetSpans) > 1 || len(other.TargetSpans) > 1 {
		return false
	}
	if !o.Span.CanAppend(other.Span) {
		return false
	}
	if o.Kind == OpDelete {
		if len(o.TargetSpans) != 1 || len(other.TargetSpans) != 1 {
			return false
		}
		if !o.TargetSpans[0].CanAppend(other.TargetSpans[0]) {
			return false
		}
		// A contiguous forward delete re-reads the same cursor position
		// every time (the tombstoned text collapses out from under it);
		// only a matching Pos keeps the fused run's cursor diff valid.
		if other.Pos != o.Pos {
			return false
		}
	} else if other.Pos != o.Pos+o.Span.Len() {
		return false
	}
	return o.ContentPos.End == other.ContentPos.Start
}

// Append fuses other onto the receiver.
func (o Operation) Append(other Operation) Operation {
	o.Span.End = other.Span.End
	o.ContentPos.End = other.ContentPos.End
	if o.Kind == OpDelete {
		o.TargetSpans = []id.TimeSpan{{Start: o.TargetSpans[0].Start, End: other.TargetSpans[0].End}}
	}
	return o
}
