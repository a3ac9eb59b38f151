// Package crdt is the root package of this module: the shared CRDT
// contract every convergent type here implements, the sentinel error
// taxonomy surfaced by the sequence engine (spec §7), and a couple of
// small state-based counters kept as a second, already-solved inhabitant
// of the same interface next to the list CRDT in oplog/rangetree/branch.
package crdt

import "github.com/pkg/errors"

// CRDT is the base interface that defines the behavior for all convergent
// data types in this module.
//
// Implementing types must ensure that their internal state can be merged
// commutatively, associatively, and idempotently to satisfy the mathematical
// properties of a Join-Semilattice. *branch.Branch, GCounter and PNCounter
// all satisfy it.
type CRDT interface {
	// Value returns the current consolidated state of the CRDT.
	//
	// For counters, this typically returns a numeric type (int).
	// For the list CRDT, this returns the linearized document text.
	//
	// Note: Because this returns 'any' (interface{}), callers may need
	// to perform a type assertion to use the underlying data.
	Value() any

	// Merge combines the state of a remote CRDT into the local instance.
	//
	// To guarantee convergence across all distributed replicas, the
	// implementation of Merge MUST be:
	//
	// 1. Commutative: The order of merging doesn't matter.
	//    A.Merge(B) results in the same state as B.Merge(A).
	//
	// 2. Associative: The grouping of merges doesn't matter.
	//    (A.Merge(B)).Merge(C) == A.Merge((B.Merge(C))).
	//
	// 3. Idempotent: Merging the same state multiple times has no effect
	//    beyond the first merge. A.Merge(A) == A.
	//
	// Implementations should perform type-assertion on the 'other' parameter
	// and return an error if the types are incompatible (e.g., attempting
	// to merge a GCounter into a PNCounter).
	Merge(other CRDT) error
}

// ErrIncompatibleMerge is returned by a CRDT's Merge when the argument is
// not an instance of the receiver's own type.
var ErrIncompatibleMerge = errors.New("crdt: cannot merge incompatible CRDT types")

// The sequence engine's own sentinel-error taxonomy (spec §7: format
// errors, semantic errors, missing data, checksum failure, logic errors)
// lives closer to where each is raised -- oplog.ErrDataMissing,
// oplog.ErrSeqConflict, encoding.ErrChecksumFailed, encoding.ErrUnsupportedMerge
// and friends -- rather than being re-declared here, so every caller tests
// against the error the producing package actually returns.
