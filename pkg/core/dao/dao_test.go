package dao_test

import (
	"testing"

	"github.com/godwoken-go/godwoken/pkg/core/dao"
	"github.com/godwoken-go/godwoken/pkg/core/state"
	"github.com/godwoken-go/godwoken/pkg/gwerr"
	"github.com/godwoken-go/godwoken/pkg/gwkey"
	"github.com/stretchr/testify/require"
)

// Invariant 2: key derivation round-trip. load after store(id, key, v)
// returns v; loading an unwritten key returns the zero value once the
// account exists.
func TestLoadStoreRoundTrip(t *testing.T) {
	v := dao.NewView(nil)
	id, err := v.CreateAccount([]byte("script-a"))
	require.NoError(t, err)

	var val [32]byte
	val[0] = 0xAB
	require.NoError(t, v.Store(id, []byte("k"), val))

	got, err := v.Load(id, []byte("k"))
	require.NoError(t, err)
	require.Equal(t, val, got)

	untouched, err := v.Load(id, []byte("unwritten"))
	require.NoError(t, err)
	require.Equal(t, [32]byte{}, untouched)
}

// Load/Store against a non-existent account always fails AccountNotExists.
func TestLoadStoreRequiresExistence(t *testing.T) {
	v := dao.NewView(nil)
	_, err := v.Load(7, []byte("k"))
	require.Equal(t, gwerr.AccountNotExists, gwerr.CodeOf(err))

	err = v.Store(7, []byte("k"), [32]byte{1})
	require.Equal(t, gwerr.AccountNotExists, gwerr.CodeOf(err))
}

// Invariant 3 / S1: create twice with the same script fails with
// DuplicatedScriptHash and leaves state unchanged.
func TestCreateAccountDuplicateScriptHash(t *testing.T) {
	v := dao.NewView(nil)
	script := []byte("dup-script")
	id, err := v.CreateAccount(script)
	require.NoError(t, err)

	preRoot := v.Root()
	preCount := v.AccountCount()
	_, err = v.CreateAccount(script)
	require.Equal(t, gwerr.DuplicatedScriptHash, gwerr.CodeOf(err))
	require.Equal(t, preRoot, v.Root())
	require.Equal(t, preCount, v.AccountCount())

	h := gwkey.Hash(script)
	resolved, exists, err := v.GetAccountIDByScriptHash(h)
	require.NoError(t, err)
	require.True(t, exists)
	require.Equal(t, id, resolved)
}

// Snapshot/revert (§4.7): reverting undoes writes made since the snapshot
// but never the sender nonce or already-emitted logs, and reverting to an
// older snapshot invalidates everything opened after it.
func TestSnapshotRevert(t *testing.T) {
	v := dao.NewView(nil)
	id, err := v.CreateAccount([]byte("s"))
	require.NoError(t, err)

	var v1, v2 [32]byte
	v1[0], v2[0] = 1, 2
	require.NoError(t, v.Store(id, []byte("k"), v1))

	s1, err := v.Snapshot()
	require.NoError(t, err)
	require.NoError(t, v.Store(id, []byte("k"), v2))

	s2, err := v.Snapshot()
	require.NoError(t, err)
	require.NoError(t, v.Store(id, []byte("k2"), v2))
	require.NoError(t, v.SetNonce(id, 99))
	v.Log(state.LogEntry{AccountID: id, ServiceFlag: state.LogPolyjuiceUser, Data: []byte("x")})

	// reverting to s1 undoes both the s2-era write and the write made
	// immediately before s2 was opened, but not the nonce bump or the log.
	require.NoError(t, v.Revert(s1))
	got, err := v.Load(id, []byte("k"))
	require.NoError(t, err)
	require.Equal(t, v1, got)

	k2, err := v.Load(id, []byte("k2"))
	require.NoError(t, err)
	require.Equal(t, [32]byte{}, k2)

	nonce, err := v.GetAccountNonce(id)
	require.NoError(t, err)
	require.Equal(t, uint32(99), nonce)
	require.Len(t, v.Logs(), 1)

	// s2 no longer exists: reverting to it now is a no-op on top of s1's
	// already-reverted state, not a resurrection of the s2-era write.
	require.NoError(t, v.Revert(s2))
	got, err = v.Load(id, []byte("k"))
	require.NoError(t, err)
	require.Equal(t, v1, got)
}
