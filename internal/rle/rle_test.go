package rle

import "testing"

type intRun struct {
	start, end int
}

func (r intRun) CanAppend(other intRun) bool { return other.start == r.end }
func (r intRun) Append(other intRun) intRun  { r.end = other.end; return r }

func TestRun_PushFusesContiguous(t *testing.T) {
	r := New[intRun]()
	r.Push(intRun{0, 3})
	r.Push(intRun{3, 5})
	r.Push(intRun{10, 12})

	if r.Len() != 2 {
		t.Fatalf("expected 2 runs after fusing, got %d", r.Len())
	}
	if r.At(0) != (intRun{0, 5}) {
		t.Errorf("expected first run {0,5}, got %v", r.At(0))
	}
	if r.At(1) != (intRun{10, 12}) {
		t.Errorf("expected second run {10,12}, got %v", r.At(1))
	}
}

func TestRun_LastOnEmpty(t *testing.T) {
	r := New[intRun]()
	if _, ok := r.Last(); ok {
		t.Error("Last on empty run should report ok=false")
	}
	r.Push(intRun{0, 1})
	last, ok := r.Last()
	if !ok || last != (intRun{0, 1}) {
		t.Errorf("expected {0,1}, got %v ok=%v", last, ok)
	}
}
