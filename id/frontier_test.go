package id

import "testing"

func TestFrontier_AdvanceSupersedesKnownParents(t *testing.T) {
	f := NewFrontier(2, 5)
	f = f.Advance(NewFrontier(2), TimeSpan{Start: 6, End: 9})

	want := NewFrontier(5, 8)
	if !f.Equal(want) {
		t.Errorf("expected %v, got %v", want, f)
	}
}

func TestFrontier_AdvanceOnDivergentBranchIsAdditive(t *testing.T) {
	f := NewFrontier(2)
	// parents (5) is not present in f, so f keeps 2 and gains the new tip.
	f = f.Advance(NewFrontier(5), TimeSpan{Start: 6, End: 7})

	want := NewFrontier(2, 6)
	if !f.Equal(want) {
		t.Errorf("expected %v, got %v", want, f)
	}
}

func TestFrontier_AdvanceToleratesRootParent(t *testing.T) {
	f := NewFrontier()
	f = f.Advance(NewFrontier(RootTime), TimeSpan{Start: 0, End: 1})

	if !f.Equal(NewFrontier(0)) {
		t.Errorf("expected {0}, got %v", f)
	}
}

func TestFrontier_AdvanceDropsOnlyParentsActuallyPresent(t *testing.T) {
	// A merge op parented on both 2 (in f) and 9 (not in f, concurrent
	// ancestry f hasn't seen yet) should still drop 2 and keep f an
	// antichain, rather than requiring every parent to be present first.
	f := NewFrontier(2, 5)
	f = f.Advance(NewFrontier(2, 9), TimeSpan{Start: 10, End: 11})

	want := NewFrontier(5, 10)
	if !f.Equal(want) {
		t.Errorf("expected %v, got %v", want, f)
	}
}

func TestFrontier_ContainsAndMax(t *testing.T) {
	f := NewFrontier(3, 1, 2, 2)
	if len(f) != 3 {
		t.Fatalf("expected dedup to 3 elements, got %d (%v)", len(f), f)
	}
	if !f.Contains(2) || f.Contains(9) {
		t.Error("Contains mismatched expectation")
	}
	if f.Max() != 3 {
		t.Errorf("expected max 3, got %d", f.Max())
	}
	if NewFrontier().Max() != RootTime {
		t.Errorf("expected empty frontier's max to be RootTime")
	}
}
