package crdt

import "testing"

func TestGCounter_Convergence(t *testing.T) {
	nodeA := NewGCounter("node-a")
	nodeB := NewGCounter("node-b")

	nodeA.Increment()
	nodeA.Increment()
	nodeB.Increment()

	// Cross-merge
	if err := nodeA.Merge(nodeB); err != nil {
		t.Fatalf("merge: %v", err)
	}
	if err := nodeB.Merge(nodeA); err != nil {
		t.Fatalf("merge: %v", err)
	}

	if nodeA.IntValue() != 3 || nodeB.IntValue() != 3 {
		t.Errorf("Expected convergence at 3, got A=%d, B=%d", nodeA.IntValue(), nodeB.IntValue())
	}

	if err := nodeA.Merge(nodeB); err != nil {
		t.Fatalf("merge: %v", err)
	}
	if nodeA.IntValue() != 3 {
		t.Errorf("Idempotency failed: expected 3, got %d", nodeA.IntValue())
	}
}

func TestGCounter_IncompatibleMerge(t *testing.T) {
	a := NewGCounter("node-a")
	p := NewPNCounter("node-b")
	if err := a.Merge(p); err != ErrIncompatibleMerge {
		t.Errorf("expected ErrIncompatibleMerge, got %v", err)
	}
}
