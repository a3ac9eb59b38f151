package history

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikhilsahni/listcrdt/id"
)

func TestHistory_InsertRejectsSpanNotAtCurrentLength(t *testing.T) {
	h := New()
	require.NoError(t, h.Insert(id.NewFrontier(), id.TimeSpan{Start: 0, End: 5}))

	err := h.Insert(id.NewFrontier(), id.TimeSpan{Start: 7, End: 9})
	assert.Error(t, err)
}

func TestHistory_InsertRejectsUnknownParent(t *testing.T) {
	h := New()
	err := h.Insert(id.NewFrontier(42), id.TimeSpan{Start: 0, End: 3})
	assert.ErrorIs(t, err, ErrDataMissing)
}

func TestHistory_InsertToleratesRootParent(t *testing.T) {
	h := New()
	err := h.Insert(id.NewFrontier(id.RootTime), id.TimeSpan{Start: 0, End: 3})
	assert.NoError(t, err)
}

func TestHistory_IsAncestorWalksParentChain(t *testing.T) {
	h := New()
	require.NoError(t, h.Insert(id.NewFrontier(id.RootTime), id.TimeSpan{Start: 0, End: 3}))
	require.NoError(t, h.Insert(id.NewFrontier(2), id.TimeSpan{Start: 3, End: 5}))
	require.NoError(t, h.Insert(id.NewFrontier(4), id.TimeSpan{Start: 5, End: 7}))

	assert.True(t, h.IsAncestor(0, 6))
	assert.True(t, h.IsAncestor(4, 6))
	assert.True(t, h.IsAncestor(6, 6))
	assert.False(t, h.IsAncestor(6, 0))
}

func TestHistory_IsAncestorFalseAcrossDivergentBranches(t *testing.T) {
	h := New()
	require.NoError(t, h.Insert(id.NewFrontier(id.RootTime), id.TimeSpan{Start: 0, End: 3}))
	// Two concurrent spans both parented on lv 2.
	require.NoError(t, h.Insert(id.NewFrontier(2), id.TimeSpan{Start: 3, End: 5}))
	require.NoError(t, h.Insert(id.NewFrontier(2), id.TimeSpan{Start: 5, End: 7}))

	assert.False(t, h.IsAncestor(4, 6))
	assert.False(t, h.IsAncestor(6, 4))
	assert.True(t, h.IsAncestor(2, 4))
	assert.True(t, h.IsAncestor(2, 6))
}

func TestHistory_DominatorsRemovesAncestorsOfOtherMembers(t *testing.T) {
	h := New()
	require.NoError(t, h.Insert(id.NewFrontier(id.RootTime), id.TimeSpan{Start: 0, End: 3}))
	require.NoError(t, h.Insert(id.NewFrontier(2), id.TimeSpan{Start: 3, End: 5}))
	require.NoError(t, h.Insert(id.NewFrontier(4), id.TimeSpan{Start: 5, End: 7}))

	// lv 2 is an ancestor of lv 6 via lv 4, so it is not a dominator.
	got := h.Dominators(id.NewFrontier(2, 6))
	assert.Equal(t, id.NewFrontier(6), got)
}

func TestHistory_DominatorsKeepsDivergentFrontier(t *testing.T) {
	h := New()
	require.NoError(t, h.Insert(id.NewFrontier(id.RootTime), id.TimeSpan{Start: 0, End: 3}))
	require.NoError(t, h.Insert(id.NewFrontier(2), id.TimeSpan{Start: 3, End: 5}))
	require.NoError(t, h.Insert(id.NewFrontier(2), id.TimeSpan{Start: 5, End: 7}))

	got := h.Dominators(id.NewFrontier(4, 6))
	assert.ElementsMatch(t, id.NewFrontier(4, 6), got)
}

func TestHistory_DiffOnSharedHistoryFindsOnlyDivergentSpans(t *testing.T) {
	h := New()
	require.NoError(t, h.Insert(id.NewFrontier(id.RootTime), id.TimeSpan{Start: 0, End: 3}))
	// Two branches diverge after lv 2.
	require.NoError(t, h.Insert(id.NewFrontier(2), id.TimeSpan{Start: 3, End: 5}))
	require.NoError(t, h.Insert(id.NewFrontier(2), id.TimeSpan{Start: 5, End: 7}))

	onlyA, onlyB := h.Diff(id.NewFrontier(4), id.NewFrontier(6))
	require.Len(t, onlyA, 1)
	require.Len(t, onlyB, 1)
	assert.Equal(t, id.TimeSpan{Start: 3, End: 5}, onlyA[0])
	assert.Equal(t, id.TimeSpan{Start: 5, End: 7}, onlyB[0])
}

func TestHistory_DiffIsEmptyForIdenticalFrontiers(t *testing.T) {
	h := New()
	require.NoError(t, h.Insert(id.NewFrontier(id.RootTime), id.TimeSpan{Start: 0, End: 3}))
	require.NoError(t, h.Insert(id.NewFrontier(2), id.TimeSpan{Start: 3, End: 5}))

	onlyA, onlyB := h.Diff(id.NewFrontier(4), id.NewFrontier(4))
	assert.Empty(t, onlyA)
	assert.Empty(t, onlyB)
}

func TestHistory_LenReflectsAppendedSpans(t *testing.T) {
	h := New()
	assert.Equal(t, id.LV(0), h.Len())
	require.NoError(t, h.Insert(id.NewFrontier(id.RootTime), id.TimeSpan{Start: 0, End: 4}))
	assert.Equal(t, id.LV(4), h.Len())
}
