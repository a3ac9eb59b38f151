package id

import "testing"

func TestTable_GetOrCreateIsIdempotent(t *testing.T) {
	tbl := NewTable()
	a := tbl.GetOrCreate("alice")
	again := tbl.GetOrCreate("alice")
	if a != again {
		t.Errorf("expected same AgentId, got %d and %d", a, again)
	}
	if tbl.AgentCount() != 1 {
		t.Errorf("expected one interned agent, got %d", tbl.AgentCount())
	}
}

func TestTable_RecordRunRejectsGapsAndReuse(t *testing.T) {
	tbl := NewTable()
	a := tbl.GetOrCreate("alice")
	if err := tbl.RecordRun(a, 0, 3, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := tbl.RecordRun(a, 5, 2, 10); err == nil {
		t.Error("expected error for a seq gap, got nil")
	}
	if err := tbl.RecordRun(a, 1, 2, 10); err == nil {
		t.Error("expected error for reassigning an existing seq, got nil")
	}
}

func TestTable_SeqToLVAndRunAt(t *testing.T) {
	tbl := NewTable()
	a := tbl.GetOrCreate("alice")
	_ = tbl.RecordRun(a, 0, 3, 0)  // seqs 0-2 -> lv 0-2
	_ = tbl.RecordRun(a, 3, 2, 10) // seqs 3-4 -> lv 10-11 (another agent's ops interleaved)

	lv, err := tbl.SeqToLV(CRDTId{Agent: a, Seq: 4})
	if err != nil || lv != 11 {
		t.Fatalf("expected lv 11, got %d err=%v", lv, err)
	}

	lv, runEnd, err := tbl.RunAt(a, 1)
	if err != nil || lv != 1 || runEnd != 3 {
		t.Errorf("expected lv=1 runEnd=3, got lv=%d runEnd=%d err=%v", lv, runEnd, err)
	}

	if _, err := tbl.SeqToLV(CRDTId{Agent: a, Seq: 99}); err == nil {
		t.Error("expected error for unassigned seq")
	}

	root, err := tbl.SeqToLV(Root)
	if err != nil || root != RootTime {
		t.Errorf("Root should resolve to RootTime, got %d err=%v", root, err)
	}
}
