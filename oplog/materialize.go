package oplog

import (
	"github.com/nikhilsahni/listcrdt/id"
	"github.com/nikhilsahni/listcrdt/rangetree"
)

// includedIn reports whether lv is a causal ancestor of (or equal to) some
// element of frontier -- i.e. whether lv has "already happened" as of that
// causal cut.
func (o *OpLog) includedIn(lv id.LV, frontier id.Frontier) bool {
	for _, f := range frontier {
		if f == id.RootTime {
			continue
		}
		if o.hist.IsAncestor(lv, f) {
			return true
		}
	}
	return false
}

// deletedAsOf reports whether any delete operation targeting (part of) e
// is itself included in frontier -- i.e. whether e's characters were
// already tombstoned as of that causal cut. This scans every delete
// operation recorded so far; see DESIGN.md for why a linear scan was
// chosen over a reverse per-LV delete index.
func (o *OpLog) deletedAsOf(e rangetree.Entry, frontier id.Frontier) bool {
	espan := e.LVSpan()
	for _, op := range o.ops.All() {
		if op.Kind != OpDelete {
			continue
		}
		for _, ts := range op.TargetSpans {
			if ts.Overlaps(espan) && o.includedIn(op.Span.Start, frontier) {
				return true
			}
		}
	}
	return false
}

// MaterializeAt rebuilds the document content as it existed at an
// arbitrary causal cut, by walking every RangeTree entry in final YATA
// order and keeping those that were inserted-and-not-yet-deleted as of
// frontier, regardless of their current (possibly later-tombstoned) sign.
// This stands in for the incremental rewind/forward-apply that spec §4.6
// describes; see DESIGN.md for the tradeoff.
func (o *OpLog) MaterializeAt(frontier id.Frontier) ([]rune, error) {
	var out []rune
	var walkErr error
	o.tree.Walk(func(e rangetree.Entry) {
		if walkErr != nil {
			return
		}
		if !o.includedIn(e.LVBase, frontier) {
			return
		}
		if o.deletedAsOf(e, frontier) {
			return
		}
		text, err := o.originalText(e.LVSpan())
		if err != nil {
			walkErr = err
			return
		}
		out = append(out, text...)
	})
	if walkErr != nil {
		return nil, walkErr
	}
	return out, nil
}

// FrontierToRemote converts an LV frontier to its (agent, seq) form.
func (o *OpLog) FrontierToRemote(f id.Frontier) ([]id.CRDTId, error) {
	out := make([]id.CRDTId, 0, len(f))
	for _, lv := range f {
		cid, err := o.LVToCRDTId(lv)
		if err != nil {
			return nil, err
		}
		out = append(out, cid)
	}
	return out, nil
}

// Diff exposes the History diff primitive (spec §4.1) for callers that need
// the raw span lists rather than a rematerialized document. Branch checkout
// does not use it; it goes through MaterializeAt.
func (o *OpLog) Diff(a, b id.Frontier) (onlyA, onlyB []id.TimeSpan) {
	return o.hist.Diff(a, b)
}

// Dominators exposes History.Dominators (spec §4.1 find_dominators).
func (o *OpLog) Dominators(set id.Frontier) id.Frontier {
	return o.hist.Dominators(set)
}
