// Package rle implements the generic run-length container (spec §9, "RLE
// everywhere") that the OpLog uses for its operations and its agent
// assignments: runs of some element type that can fuse with its neighbor
// when contiguous. History entries and range-tree entries are kept in
// their own structures and do not use it.
package rle

// Mergeable is the contract an element must satisfy to live in a Run: it
// can report whether it directly continues another element of the same
// type, and fuse the two into one when it does.
type Mergeable[T any] interface {
	// CanAppend reports whether other immediately follows the receiver
	// and the pair could be represented as a single run.
	CanAppend(other T) bool
	// Append fuses other onto the end of the receiver, returning the
	// combined element. Only called when CanAppend(other) is true.
	Append(other T) T
}

// Run is an ordered sequence of run-length-compressed elements.
type Run[T Mergeable[T]] struct {
	items []T
}

// New returns an empty Run.
func New[T Mergeable[T]]() *Run[T] {
	return &Run[T]{}
}

// Len returns the number of (already-compressed) entries.
func (r *Run[T]) Len() int {
	return len(r.items)
}

// At returns the entry at index i.
func (r *Run[T]) At(i int) T {
	return r.items[i]
}

// All returns the underlying entries. Callers must not mutate the slice.
func (r *Run[T]) All() []T {
	return r.items
}

// Push appends v, fusing it onto the last entry when possible.
func (r *Run[T]) Push(v T) {
	if n := len(r.items); n > 0 && r.items[n-1].CanAppend(v) {
		r.items[n-1] = r.items[n-1].Append(v)
		return
	}
	r.items = append(r.items, v)
}

// Last returns the final entry and true, or the zero value and false if
// the run is empty.
func (r *Run[T]) Last() (T, bool) {
	var zero T
	if len(r.items) == 0 {
		return zero, false
	}
	return r.items[len(r.items)-1], true
}
