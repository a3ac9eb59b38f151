package encoding

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikhilsahni/listcrdt/branch"
	"github.com/nikhilsahni/listcrdt/oplog"
)

func buildSample(t *testing.T) *oplog.OpLog {
	t.Helper()
	log := oplog.New()
	alice := log.GetOrCreateAgent("alice")
	bob := log.GetOrCreateAgent("bob")
	b := branch.New(log)
	require.NoError(t, b.Insert(alice, 0, "hello"))
	require.NoError(t, b.Insert(bob, 5, " world"))
	require.NoError(t, b.Delete(alice, 0, 1))
	return log
}

func TestEncodeDecode_RoundTripsContentAndAgents(t *testing.T) {
	log := buildSample(t)
	data := Encode(log, EncodeOptions{UserData: []byte("note")})

	res, err := Load(data)
	require.NoError(t, err)
	assert.Equal(t, []byte("note"), res.UserData)

	wantNames := log.AgentNames()
	gotNames := res.OpLog.AgentNames()
	if diff := cmp.Diff(wantNames, gotNames); diff != "" {
		t.Errorf("agent names mismatch (-want +got):\n%s", diff)
	}

	b := branch.New(res.OpLog)
	require.NoError(t, b.Checkout(res.OpLog.LocalVersion()))

	wantBranch := branch.New(log)
	require.NoError(t, wantBranch.Checkout(log.LocalVersion()))

	assert.Equal(t, wantBranch.Content(), b.Content())
	assert.Equal(t, len(log.IterHistory()), len(res.OpLog.IterHistory()))
}

func TestDecode_RejectsFlippedChecksum(t *testing.T) {
	log := buildSample(t)
	data := Encode(log, EncodeOptions{})

	flipped := append([]byte(nil), data...)
	flipped[len(flipped)-1] ^= 0xFF

	_, err := Load(flipped)
	assert.ErrorIs(t, err, ErrChecksumFailed)
}

func TestDecode_RejectsBadMagic(t *testing.T) {
	data := append([]byte(nil), Encode(buildSample(t), EncodeOptions{})...)
	data[0] = 'X'
	_, err := Load(data)
	assert.ErrorIs(t, err, ErrInvalidMagic)
}

func TestDecode_RejectsTruncatedInput(t *testing.T) {
	_, err := Load([]byte{'L', 'C'})
	assert.Error(t, err)
}
