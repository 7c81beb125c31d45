package gwkey_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/blake2b"

	"github.com/godwoken-go/godwoken/pkg/gwkey"
)

func TestLE32RoundTrip(t *testing.T) {
	cases := []uint32{0, 1, 255, 256, 0xDEADBEEF}
	for _, v := range cases {
		b := gwkey.LE32(v)
		require.Len(t, b, 4)
		require.Equal(t, byte(v), b[0])
		require.Equal(t, byte(v>>24), b[3])
	}
}

func TestLE64RoundTrip(t *testing.T) {
	b := gwkey.LE64(0x0102030405060708)
	require.Equal(t, []byte{0x08, 0x07, 0x06, 0x05, 0x04, 0x03, 0x02, 0x01}, b)
}

func TestHashMatchesBlake2bOfConcatenation(t *testing.T) {
	a := []byte("part-a")
	b := []byte("part-b")
	want := blake2b.Sum256(append(append([]byte{}, a...), b...))
	require.Equal(t, want, gwkey.Hash(a, b))
}

func TestAccountKVDistinctAcrossAccountsAndKeys(t *testing.T) {
	k1 := gwkey.AccountKV(1, []byte("k"))
	k2 := gwkey.AccountKV(2, []byte("k"))
	k3 := gwkey.AccountKV(1, []byte("other"))
	require.NotEqual(t, k1, k2)
	require.NotEqual(t, k1, k3)

	again := gwkey.AccountKV(1, []byte("k"))
	require.Equal(t, k1, again)
}

func TestFieldKeysAreUnhashedAndDistinctPerTag(t *testing.T) {
	nonce := gwkey.NonceField(7)
	scriptHash := gwkey.ScriptHashField(7)
	require.NotEqual(t, nonce, scriptHash)
	require.Equal(t, uint32(7), uint32(nonce[0])|uint32(nonce[1])<<8|uint32(nonce[2])<<16|uint32(nonce[3])<<24)
	require.Equal(t, gwkey.FieldNonce, nonce[4])
	require.Equal(t, gwkey.FieldScriptHash, scriptHash[4])
}

func TestScriptHashIndexValueEncodesIDAndExistsFlag(t *testing.T) {
	v := gwkey.ScriptHashIndexValue(42)
	got := uint32(v[0]) | uint32(v[1])<<8 | uint32(v[2])<<16 | uint32(v[3])<<24
	require.Equal(t, uint32(42), got)
	require.Equal(t, byte(0x01), v[4])
}

func TestDataHashPresentValueEncodesOne(t *testing.T) {
	v := gwkey.DataHashPresentValue()
	require.Equal(t, uint32(1), uint32(v[0])|uint32(v[1])<<8|uint32(v[2])<<16|uint32(v[3])<<24)
	for _, b := range v[4:] {
		require.Zero(t, b)
	}
}

func TestIsZero(t *testing.T) {
	require.True(t, gwkey.IsZero([32]byte{}))
	require.False(t, gwkey.IsZero([32]byte{1}))
}

func TestScriptHashIndexDiffersFromDataHash(t *testing.T) {
	h := blake2b.Sum256([]byte("same-input"))
	require.NotEqual(t, gwkey.ScriptHashIndex(h), gwkey.DataHash(h))
}
