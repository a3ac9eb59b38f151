package crdt

import "testing"

func TestPNCounter_Basic(t *testing.T) {
	counter := NewPNCounter("node-a")

	counter.Increment()
	counter.Increment()
	counter.Decrement()

	if counter.IntValue() != 1 {
		t.Errorf("Expected 1, got %d", counter.IntValue())
	}
}

func TestPNCounter_Merge(t *testing.T) {
	nodeA := NewPNCounter("node-a")
	nodeB := NewPNCounter("node-b")

	nodeA.Increment() // A = 1
	nodeB.Decrement() // B = -1

	if err := nodeA.Merge(nodeB); err != nil {
		t.Fatalf("merge: %v", err)
	}
	if err := nodeB.Merge(nodeA); err != nil {
		t.Fatalf("merge: %v", err)
	}

	if nodeA.IntValue() != 0 || nodeB.IntValue() != 0 {
		t.Errorf("Expected convergence at 0, got A=%d, B=%d", nodeA.IntValue(), nodeB.IntValue())
	}
}
