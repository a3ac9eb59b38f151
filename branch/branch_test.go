package branch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikhilsahni/listcrdt/id"
	"github.com/nikhilsahni/listcrdt/oplog"
)

func TestBranch_InsertDeleteAndCheckout(t *testing.T) {
	log := oplog.New()
	agent := log.GetOrCreateAgent("alice")
	b := New(log)

	require.NoError(t, b.Insert(agent, 0, "hello"))
	assert.Equal(t, "hello", b.Content())
	assert.True(t, b.AtHead())

	mid := b.LocalFrontier()

	require.NoError(t, b.Insert(agent, 5, " world"))
	assert.Equal(t, "hello world", b.Content())

	require.NoError(t, b.Delete(agent, 0, 6))
	assert.Equal(t, "world", b.Content())

	require.NoError(t, b.Checkout(mid))
	assert.Equal(t, "hello", b.Content())
	assert.False(t, b.AtHead())
}

func TestBranch_EditsRequireBeingAtHead(t *testing.T) {
	log := oplog.New()
	agent := log.GetOrCreateAgent("alice")
	b := New(log)
	require.NoError(t, b.Insert(agent, 0, "abc"))
	require.NoError(t, b.Checkout(id.NewFrontier()))

	err := b.Insert(agent, 0, "x")
	assert.ErrorIs(t, err, ErrNotAtHead)

	err = b.Delete(agent, 0, 1)
	assert.ErrorIs(t, err, ErrNotAtHead)
}

func TestBranch_InsertRejectsOutOfRangePosition(t *testing.T) {
	log := oplog.New()
	agent := log.GetOrCreateAgent("alice")
	b := New(log)
	require.NoError(t, b.Insert(agent, 0, "abc"))
	assert.Error(t, b.Insert(agent, 99, "x"))
}
