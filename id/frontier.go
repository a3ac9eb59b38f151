package id

import "golang.org/x/exp/slices"

// Frontier is a sorted, deduplicated set of LVs representing a causal cut:
// the latest operations with no descendant inside the cut. No element of a
// well-formed Frontier dominates another.
type Frontier []LV

// NewFrontier builds a sorted Frontier from the given LVs, deduplicating.
func NewFrontier(lvs ...LV) Frontier {
	f := append(Frontier(nil), lvs...)
	slices.Sort(f)
	return slices.CompactFunc(f, func(a, b LV) bool { return a == b })
}

// Clone returns an independent copy.
func (f Frontier) Clone() Frontier {
	return append(Frontier(nil), f...)
}

// Contains reports whether lv is present in the frontier.
func (f Frontier) Contains(lv LV) bool {
	_, ok := slices.BinarySearch(f, lv)
	return ok
}

// Equal reports whether two frontiers name the same set of LVs.
func (f Frontier) Equal(o Frontier) bool {
	return slices.Equal(f, o)
}

// IsRoot reports whether the frontier is the empty (pre-history) cut.
func (f Frontier) IsRoot() bool {
	return len(f) == 0
}

// Max returns the largest LV in the frontier, or RootTime if empty.
func (f Frontier) Max() LV {
	if len(f) == 0 {
		return RootTime
	}
	return f[len(f)-1]
}

// insertSorted inserts v keeping f sorted and deduplicated, returning the
// (possibly reallocated) result.
func insertSorted(f Frontier, v LV) Frontier {
	i, ok := slices.BinarySearch(f, v)
	if ok {
		return f
	}
	return slices.Insert(f, i, v)
}

// Advance folds a newly appended span into the frontier: every parent that
// is actually present in f (parents ∩ f) is superseded by the span's last
// LV and removed. Per spec §4.1 this is not all-or-nothing -- a multi-parent
// op on a divergent (not-yet-merged) branch may have only some of its
// parents in f, and those still need to drop out so f stays an antichain;
// the rest of the parents simply weren't present to begin with.
func (f Frontier) Advance(parents Frontier, span TimeSpan) Frontier {
	out := f.Clone()
	for _, p := range parents {
		if p == RootTime {
			continue
		}
		if out.Contains(p) {
			out = removeSorted(out, p)
		}
	}
	out = insertSorted(out, span.End-1)
	return out
}

func removeSorted(f Frontier, v LV) Frontier {
	i, ok := slices.BinarySearch(f, v)
	if !ok {
		return f
	}
	return slices.Delete(f, i, i+1)
}

// AsSeqs renders the frontier as LVs sorted ascending.
func (f Frontier) AsSeqs() []LV {
	return append([]LV(nil), f...)
}
