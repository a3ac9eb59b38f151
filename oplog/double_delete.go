package oplog

import "github.com/nikhilsahni/listcrdt/id"

// doubleDeleteRun records that a span of LVs has been deleted one extra
// time beyond the first (spec §4.5 rationale): re-deleting an
// already-tombstoned element must not make the RangeTree's tombstone
// aggregate go negative, so every redundant delete is tracked here instead
// of being applied to the tree a second time.
type doubleDeleteRun struct {
	Span  id.TimeSpan
	Extra uint32 // number of additional deletes beyond the first
}

func (r doubleDeleteRun) CanAppend(other doubleDeleteRun) bool {
	return r.Extra == other.Extra && r.Span.CanAppend(other.Span)
}

func (r doubleDeleteRun) Append(other doubleDeleteRun) doubleDeleteRun {
	r.Span.End = other.Span.End
	return r
}

// DoubleDeleteList is the run-length set of LVs that have been
// tombstoned more than once by different (possibly concurrent) delete
// operations.
type DoubleDeleteList struct {
	runs []doubleDeleteRun
}

// record adds span as an extra deletion (the RangeTree already reported it
// was already tombstoned when this call is made).
func (d *DoubleDeleteList) record(span id.TimeSpan) {
	run := doubleDeleteRun{Span: span, Extra: 1}
	if n := len(d.runs); n > 0 && d.runs[n-1].CanAppend(run) {
		d.runs[n-1] = d.runs[n-1].Append(run)
		return
	}
	d.runs = append(d.runs, run)
}

// ExtraDeletesAt returns how many times lv has been deleted beyond the
// first, 0 if it has only ever been deleted once (or not at all).
func (d *DoubleDeleteList) ExtraDeletesAt(lv id.LV) uint32 {
	var total uint32
	for _, r := range d.runs {
		if r.Span.Contains(lv) {
			total += r.Extra
		}
	}
	return total
}

// Len returns the total length of the recorded redundant-delete runs. Each
// redundant delete is recorded as its own run, so an LV deleted more than
// twice is counted once per redundant delete.
func (d *DoubleDeleteList) Len() int {
	total := 0
	for _, r := range d.runs {
		total += r.Span.Len()
	}
	return total
}
