package oplog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikhilsahni/listcrdt/id"
)

func TestOpLog_LocalInsertAndDeleteMaterialize(t *testing.T) {
	log := New()
	agent := log.GetOrCreateAgent("alice")

	res, err := log.PushInsertAt(agent, log.LocalVersion(), 0, "hello")
	require.NoError(t, err)
	assert.Equal(t, 0, res.ContentPos)

	_, err = log.PushInsertAt(agent, log.LocalVersion(), 5, " world")
	require.NoError(t, err)

	text, err := log.MaterializeAt(log.LocalVersion())
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(text))

	_, err = log.PushDeleteAt(agent, log.LocalVersion(), 5, 6)
	require.NoError(t, err)

	text, err = log.MaterializeAt(log.LocalVersion())
	require.NoError(t, err)
	assert.Equal(t, "hello", string(text))
}

func TestOpLog_ConcurrentInsertsConvergeRegardlessOfMergeOrder(t *testing.T) {
	// Two replicas start from the same seed, then each appends a
	// concurrent insert at the same origin. Merging in either order must
	// produce identical content -- the core YATA convergence guarantee.
	buildSeed := func() (*OpLog, id.AgentId) {
		l := New()
		seed := l.GetOrCreateAgent("seed")
		_, err := l.PushInsertAt(seed, l.LocalVersion(), 0, "ac")
		require.NoError(t, err)
		return l, seed
	}

	replicaA, seedA := buildSeed()
	agentA := replicaA.GetOrCreateAgent("alice")
	_, err := replicaA.PushInsertAt(agentA, replicaA.LocalVersion(), 1, "B")
	require.NoError(t, err)

	replicaB, seedB := buildSeed()
	agentB := replicaB.GetOrCreateAgent("bob")
	_, err = replicaB.PushInsertAt(agentB, replicaB.LocalVersion(), 1, "X")
	require.NoError(t, err)

	// Both B and X were inserted between seed's 'a' (seq 0) and 'c' (seq 1).
	leftOrigin := id.CRDTId{Agent: seedA, Seq: 0}
	rightOrigin := id.CRDTId{Agent: seedA, Seq: 1}

	// Agent names must be resolved against each destination's own agent
	// table before shipping -- agentA/agentB are only valid within the
	// replica that created them.
	bobInA := replicaA.GetOrCreateAgent("bob")
	aliceInB := replicaB.GetOrCreateAgent("alice")

	// Ship B's insert into A.
	_, err = replicaA.ApplyRemoteTxn(RemoteTxn{
		Agent:       bobInA,
		SeqStart:    0,
		Parents:     []id.CRDTId{{Agent: seedA, Seq: 1}},
		Kind:        OpInsert,
		Text:        "X",
		LeftOrigin:  leftOrigin,
		RightOrigin: rightOrigin,
	})
	require.NoError(t, err)

	// Ship A's insert into B.
	_, err = replicaB.ApplyRemoteTxn(RemoteTxn{
		Agent:       aliceInB,
		SeqStart:    0,
		Parents:     []id.CRDTId{{Agent: seedB, Seq: 1}},
		Kind:        OpInsert,
		Text:        "B",
		LeftOrigin:  leftOrigin,
		RightOrigin: rightOrigin,
	})
	require.NoError(t, err)

	textA, err := replicaA.MaterializeAt(replicaA.LocalVersion())
	require.NoError(t, err)
	textB, err := replicaB.MaterializeAt(replicaB.LocalVersion())
	require.NoError(t, err)
	assert.Equal(t, string(textA), string(textB))
}

func TestOpLog_ApplyRemoteTxnIsIdempotent(t *testing.T) {
	log := New()
	agent := log.GetOrCreateAgent("alice")
	txn := RemoteTxn{
		Agent:       agent,
		SeqStart:    0,
		Kind:        OpInsert,
		Text:        "hi",
		LeftOrigin:  id.Root,
		RightOrigin: id.Root,
	}
	first, err := log.ApplyRemoteTxn(txn)
	require.NoError(t, err)

	again, err := log.ApplyRemoteTxn(txn)
	require.NoError(t, err)
	assert.Equal(t, first, again)
	assert.Equal(t, 1, len(log.IterHistory()))
}

func TestOpLog_ApplyRemoteTxnRejectsPartialOverlap(t *testing.T) {
	log := New()
	agent := log.GetOrCreateAgent("alice")
	_, err := log.ApplyRemoteTxn(RemoteTxn{
		Agent: agent, SeqStart: 0, Kind: OpInsert, Text: "abcd",
		LeftOrigin: id.Root, RightOrigin: id.Root,
	})
	require.NoError(t, err)

	_, err = log.ApplyRemoteTxn(RemoteTxn{
		Agent: agent, SeqStart: 2, Kind: OpInsert, Text: "cdef",
		LeftOrigin: id.Root, RightOrigin: id.Root,
	})
	assert.ErrorIs(t, err, ErrPartialOverlap)
}

func TestOpLog_DoubleDeleteFromTwoBranchesStaysNonNegative(t *testing.T) {
	log := New()
	agent := log.GetOrCreateAgent("alice")
	_, err := log.PushInsertAt(agent, log.LocalVersion(), 0, "x")
	require.NoError(t, err)
	before := log.ContentLen()

	_, err = log.PushDeleteAt(agent, log.LocalVersion(), 0, 1)
	require.NoError(t, err)
	require.Equal(t, before-1, log.ContentLen())

	// A second, concurrent delete of the same character arrives from a
	// peer that didn't yet see the first delete.
	_, err = log.ApplyRemoteTxn(RemoteTxn{
		Agent:    log.GetOrCreateAgent("bob"),
		SeqStart: 0,
		Kind:     OpDelete,
		Targets:  []RemoteDeleteTarget{{Agent: agent, SeqStart: 0, Len: 1}},
		Fwd:      true,
	})
	require.NoError(t, err)
	assert.Equal(t, before-1, log.ContentLen())
}
