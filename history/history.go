// Package history implements the time DAG (spec §4.1, component C2): an
// append-only sequence of HistoryEntry spans, each carrying the causal
// parents it was appended after, plus frontier algebra and the diff
// primitive used both for merge and for OT-style positional patches.
package history

import (
	"container/heap"

	"github.com/pkg/errors"

	"github.com/nikhilsahni/listcrdt/id"
)

// ErrDataMissing is returned when an operation references a parent LV the
// History does not know about.
var ErrDataMissing = errors.New("history: parent references unknown local time")

// Entry is one appended span of the DAG: the LV range it covers, the
// parents it was appended after, and the indices of entries that list this
// one among their own parents (back-links, used to walk forward).
type Entry struct {
	Span         id.TimeSpan
	Parents      id.Frontier
	ChildIndices []int
}

// History is the append-only DAG over [0, N) local time.
type History struct {
	// entries are in ascending span.Start order, so entryIndexOf locates
	// the entry that owns a given LV by binary search over them.
	entries []Entry
}

// New returns an empty History.
func New() *History {
	return &History{}
}

// Len returns the number of local times covered, i.e. the next LV that
// would be assigned.
func (h *History) Len() id.LV {
	if len(h.entries) == 0 {
		return 0
	}
	last := h.entries[len(h.entries)-1]
	return last.Span.End
}

// Entries returns the underlying entry list. Callers must not mutate it.
func (h *History) Entries() []Entry {
	return h.entries
}

// entryIndexOf returns the index of the entry containing lv.
func (h *History) entryIndexOf(lv id.LV) (int, bool) {
	lo, hi := 0, len(h.entries)
	for lo < hi {
		mid := (lo + hi) / 2
		if h.entries[mid].Span.End <= lv {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo >= len(h.entries) || !h.entries[lo].Span.Contains(lv) {
		return 0, false
	}
	return lo, true
}

// Insert appends a new span with the given parents, per spec §4.1:
// max(parents) < span.Start, parents form an antichain, and every parent
// LV must already be covered by the History (else ErrDataMissing). It
// links span into each parent entry's ChildIndices.
func (h *History) Insert(parents id.Frontier, span id.TimeSpan) error {
	if span.Start != h.Len() {
		return errors.Errorf("history: span %v does not start at current length %d", span, h.Len())
	}
	newIdx := len(h.entries)
	for _, p := range parents {
		if p == id.RootTime {
			continue
		}
		if p >= span.Start {
			return errors.Wrapf(ErrDataMissing, "parent lv %d is not before new span %v", p, span)
		}
		pIdx, ok := h.entryIndexOf(p)
		if !ok {
			return errors.Wrapf(ErrDataMissing, "parent lv %d", p)
		}
		h.entries[pIdx].ChildIndices = append(h.entries[pIdx].ChildIndices, newIdx)
	}
	h.entries = append(h.entries, Entry{
		Span:    span,
		Parents: parents.Clone(),
	})
	return nil
}

// Dominators removes every LV from the set that is a causal ancestor of
// another member of the same set, leaving only the "frontier" of the set.
// Spec §4.1, find_dominators.
func (h *History) Dominators(set id.Frontier) id.Frontier {
	if len(set) <= 1 {
		return set.Clone()
	}
	ancestorOf := make(map[id.LV]bool, len(set))
	for _, v := range set {
		for _, other := range set {
			if v == other {
				continue
			}
			if h.isAncestor(v, other) {
				ancestorOf[v] = true
				break
			}
		}
	}
	out := make(id.Frontier, 0, len(set))
	for _, v := range set {
		if !ancestorOf[v] {
			out = append(out, v)
		}
	}
	return id.NewFrontier(out...)
}

// IsAncestor reports whether a is a causal ancestor of (or equal to) b.
// Exposed for callers outside this package (the oplog package's
// MaterializeAt, used by branch.Branch's checkout) that need to test
// inclusion of a single LV against a frontier without going through the
// full Diff machinery.
func (h *History) IsAncestor(a, b id.LV) bool {
	return h.isAncestor(a, b)
}

// isAncestor reports whether a is a causal ancestor of (or equal to) b.
func (h *History) isAncestor(a, b id.LV) bool {
	if a == b {
		return true
	}
	if a == id.RootTime {
		return true
	}
	if b == id.RootTime {
		return false
	}
	// visited records, per entry, the highest lv already walked in it.
	visited := make(map[int]id.LV)
	var walk func(lv id.LV) bool
	walk = func(lv id.LV) bool {
		idx, ok := h.entryIndexOf(lv)
		if !ok {
			return false
		}
		if seen, ok := visited[idx]; ok && seen >= lv {
			return false
		}
		visited[idx] = lv
		e := h.entries[idx]
		if e.Span.Start <= a && a <= lv {
			return true
		}
		for _, p := range e.Parents {
			if p == id.RootTime {
				continue
			}
			if p == a {
				return true
			}
			if walk(p) {
				return true
			}
		}
		return false
	}
	return walk(b)
}

// pqItem is one element of the priority-queue BFS used by Diff: a
// frontier-walk candidate LV tagged with which side(s) have reached it.
type pqItem struct {
	lv  id.LV
	tag tagSet
}

type tagSet uint8

const (
	tagA tagSet = 1 << iota
	tagB
)

type pq []pqItem

func (p pq) Len() int            { return len(p) }
func (p pq) Less(i, j int) bool  { return p[i].lv > p[j].lv } // max-heap: walk newest-first
func (p pq) Swap(i, j int)       { p[i], p[j] = p[j], p[i] }
func (p *pq) Push(x interface{}) { *p = append(*p, x.(pqItem)) }
func (p *pq) Pop() interface{} {
	old := *p
	n := len(old)
	item := old[n-1]
	*p = old[:n-1]
	return item
}

// Diff computes the symmetric difference of the causal ancestor sets of a
// and b: (onlyA, onlyB), each a descending list of disjoint TimeSpans.
// Spec §4.1. Implementation: a priority-queue BFS over history entries,
// walking parents from the newest frontier LVs down, tagging each visited
// entry with which side(s) reached it; entries reached by both sides are
// shared ancestry and excluded from both outputs.
func (h *History) Diff(a, b id.Frontier) (onlyA, onlyB []id.TimeSpan) {
	tags := make(map[int]tagSet) // entry index -> sides that reached it
	queue := &pq{}
	heap.Init(queue)
	seed := func(f id.Frontier, t tagSet) {
		for _, lv := range f {
			if lv == id.RootTime {
				continue
			}
			heap.Push(queue, pqItem{lv: lv, tag: t})
		}
	}
	seed(a, tagA)
	seed(b, tagB)

	for queue.Len() > 0 {
		item := heap.Pop(queue).(pqItem)
		idx, ok := h.entryIndexOf(item.lv)
		if !ok {
			continue
		}
		prev, seen := tags[idx]
		if seen && prev&item.tag == item.tag {
			continue // already visited with this tag
		}
		newTag := prev | item.tag
		tags[idx] = newTag
		e := h.entries[idx]
		for _, p := range e.Parents {
			if p == id.RootTime {
				continue
			}
			heap.Push(queue, pqItem{lv: p, tag: newTag})
		}
	}

	for idx, t := range tags {
		e := h.entries[idx]
		switch t {
		case tagA:
			onlyA = append(onlyA, e.Span)
		case tagB:
			onlyB = append(onlyB, e.Span)
		}
	}
	sortSpansDesc(onlyA)
	sortSpansDesc(onlyB)
	return onlyA, onlyB
}

func sortSpansDesc(spans []id.TimeSpan) {
	for i := 1; i < len(spans); i++ {
		j := i
		for j > 0 && spans[j-1].Start < spans[j].Start {
			spans[j-1], spans[j] = spans[j], spans[j-1]
			j--
		}
	}
}
