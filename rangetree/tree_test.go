package rangetree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikhilsahni/listcrdt/id"
)

func agentID(n uint32) id.AgentId { return id.AgentId(n) }

func insertRun(t *testing.T, tr *Tree, agent id.AgentId, seqBase uint64, lvBase id.LV, n int, after Cursor) Cursor {
	t.Helper()
	e := Entry{
		IDBase:      id.CRDTId{Agent: agent, Seq: seqBase},
		LVBase:      lvBase,
		Len:         int32(n),
		LeftOrigin:  id.Root,
		RightOrigin: id.Root,
	}
	require.NoError(t, tr.InsertAt(after, e))
	cur, err := tr.CursorAfterLV(lvBase + id.LV(n) - 1)
	require.NoError(t, err)
	return cur
}

func TestTree_InsertAtEndGrowsContentAndSpanLen(t *testing.T) {
	tr := New()
	cur := tr.Start()
	cur = insertRun(t, tr, agentID(0), 0, 0, 5, cur)
	insertRun(t, tr, agentID(0), 5, 5, 3, cur)

	assert.Equal(t, 8, tr.ContentLen())
	assert.Equal(t, 8, tr.SpanLen())
}

func TestTree_DeleteTogglesContentLenButNotSpanLen(t *testing.T) {
	tr := New()
	insertRun(t, tr, agentID(0), 0, 0, 10, tr.Start())

	already, err := tr.Delete(id.TimeSpan{Start: 2, End: 5})
	require.NoError(t, err)
	assert.Empty(t, already)
	assert.Equal(t, 7, tr.ContentLen())
	assert.Equal(t, 10, tr.SpanLen())

	// Deleting the same span again is reported as an already-tombstoned
	// overlap rather than silently going negative.
	already, err = tr.Delete(id.TimeSpan{Start: 2, End: 5})
	require.NoError(t, err)
	assert.Len(t, already, 1)
	assert.Equal(t, 7, tr.ContentLen())
}

func TestTree_WalkVisitsEntriesInOrderAcrossLeafSplits(t *testing.T) {
	tr := New()
	cur := tr.Start()
	// fanout is 16; push enough single-entry runs (InsertAt never fuses
	// entries, so each stays its own entry) to force at least one leaf split.
	for i := 0; i < 40; i++ {
		cur = insertRun(t, tr, agentID(0), uint64(i), id.LV(i), 1, cur)
	}

	var seen []id.LV
	tr.Walk(func(e Entry) {
		seen = append(seen, e.LVBase)
	})
	require.Len(t, seen, 40)
	for i, lv := range seen {
		assert.Equal(t, id.LV(i), lv)
	}
}

func TestTree_CursorAtContentPosSkipsTombstones(t *testing.T) {
	tr := New()
	insertRun(t, tr, agentID(0), 0, 0, 6, tr.Start())
	_, err := tr.Delete(id.TimeSpan{Start: 0, End: 3})
	require.NoError(t, err)

	cur, err := tr.CursorAtContentPos(1)
	require.NoError(t, err)
	e, ok := tr.PeekPrev(cur)
	require.True(t, ok)
	assert.Equal(t, id.LV(3), e.LVBase)
}
