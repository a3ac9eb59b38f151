package oplog

import (
	"github.com/pkg/errors"

	"github.com/nikhilsahni/listcrdt/id"
)

// opCoveringLV binary-searches the RLE operations list for the run whose
// own Span contains lv. Insert and delete operations are both assigned
// fresh LVs out of the same counter, so this search works for either kind;
// callers reconstructing original text assert the kind they expect.
func (o *OpLog) opCoveringLV(lv id.LV) (Operation, bool) {
	ops := o.ops.All()
	lo, hi := 0, len(ops)
	for lo < hi {
		mid := (lo + hi) / 2
		if ops[mid].Span.End <= lv {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo >= len(ops) || !ops[lo].Span.Contains(lv) {
		return Operation{}, false
	}
	return ops[lo], true
}

// originalText returns the characters that were inserted at span, which
// must lie entirely within a single insert Operation's own LV span --
// true for any sub-range produced by the RangeTree, since splitting an
// entry never mixes characters from two different inserts (spec §3, §9).
func (o *OpLog) originalText(span id.TimeSpan) ([]rune, error) {
	op, ok := o.opCoveringLV(span.Start)
	if !ok || op.Kind != OpInsert {
		return nil, errors.Errorf("oplog: no insert operation covers lv %d", span.Start)
	}
	if span.End > op.Span.End {
		return nil, errors.Errorf("oplog: target span %v crosses insert operation boundary %v", span, op.Span)
	}
	offset := int(span.Start - op.Span.Start)
	start := op.ContentPos.Start + offset
	return append([]rune(nil), o.insContent[start:start+span.Len()]...), nil
}
