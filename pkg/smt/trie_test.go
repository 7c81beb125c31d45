package smt_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/blake2b"

	"github.com/godwoken-go/godwoken/pkg/gwkey"
	"github.com/godwoken-go/godwoken/pkg/smt"
)

func key(s string) [32]byte { return blake2b.Sum256([]byte(s)) }

func val(b byte) [32]byte {
	var v [32]byte
	v[0] = b
	return v
}

func TestEmptyTrieRootIsStable(t *testing.T) {
	a := smt.NewTrie()
	b := smt.NewTrie()
	require.Equal(t, a.Root(), b.Root())
}

func TestFetchUnwrittenKeyIsZero(t *testing.T) {
	tr := smt.NewTrie()
	require.Equal(t, [32]byte{}, tr.Fetch(key("nope")))
}

func TestUpdateThenFetchRoundTrips(t *testing.T) {
	tr := smt.NewTrie()
	k := key("a")
	tr.Update(k, val(1))
	require.Equal(t, val(1), tr.Fetch(k))
}

func TestUpdateWithZeroValueDeletes(t *testing.T) {
	tr := smt.NewTrie()
	k := key("a")
	tr.Update(k, val(1))
	empty := smt.NewTrie()
	require.NotEqual(t, empty.Root(), tr.Root())

	tr.Update(k, [32]byte{})
	require.Equal(t, empty.Root(), tr.Root())
}

func TestRootChangesWithContentNotInsertOrder(t *testing.T) {
	a := smt.NewTrie()
	a.Update(key("x"), val(1))
	a.Update(key("y"), val(2))

	b := smt.NewTrie()
	b.Update(key("y"), val(2))
	b.Update(key("x"), val(1))

	require.Equal(t, a.Root(), b.Root())
}

func TestSnapshotForksIndependently(t *testing.T) {
	tr := smt.NewTrie()
	tr.Update(key("a"), val(1))
	leaves := tr.Snapshot()

	fork := smt.NewTrieFrom(leaves)
	fork.Update(key("b"), val(2))

	require.Equal(t, val(1), tr.Fetch(key("a")))
	require.Equal(t, [32]byte{}, tr.Fetch(key("b")))
	require.Equal(t, val(2), fork.Fetch(key("b")))
	require.NotEqual(t, tr.Root(), fork.Root())
}

func TestBuildProofAndVerifyRoundTrip(t *testing.T) {
	tr := smt.NewTrie()
	keys := make([][32]byte, 0, 20)
	for i := 0; i < 20; i++ {
		k := key(string(rune('a' + i)))
		tr.Update(k, val(byte(i+1)))
		keys = append(keys, k)
	}
	tr.Normalize()
	root := tr.Root()

	subset := keys[:5]
	proof := tr.BuildProof(subset)

	entries := make(map[[32]byte][32]byte, len(subset))
	for i, k := range subset {
		entries[k] = val(byte(i + 1))
	}

	ok, err := smt.Verify(root, entries, proof)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestVerifyRejectsTamperedValue(t *testing.T) {
	tr := smt.NewTrie()
	k1, k2 := key("one"), key("two")
	tr.Update(k1, val(1))
	tr.Update(k2, val(2))
	root := tr.Root()

	proof := tr.BuildProof([][32]byte{k1})
	entries := map[[32]byte][32]byte{k1: val(99)} // wrong value

	ok, err := smt.Verify(root, entries, proof)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestVerifyRejectsTruncatedProof(t *testing.T) {
	tr := smt.NewTrie()
	k1, k2 := key("one"), key("two")
	tr.Update(k1, val(1))
	tr.Update(k2, val(2))

	proof := tr.BuildProof([][32]byte{k1})
	if len(proof.Siblings) > 0 {
		proof.Siblings = proof.Siblings[:len(proof.Siblings)-1]
	}
	entries := map[[32]byte][32]byte{k1: val(1)}

	_, err := smt.Verify(tr.Root(), entries, proof)
	require.Error(t, err)
}

func TestComputeRootTracksMutationWithoutFullTree(t *testing.T) {
	tr := smt.NewTrie()
	k1, k2 := key("one"), key("two")
	tr.Update(k1, val(1))
	tr.Update(k2, val(2))

	proof := tr.BuildProof([][32]byte{k1})
	preRoot, err := smt.ComputeRoot(map[[32]byte][32]byte{k1: val(1)}, proof)
	require.NoError(t, err)
	require.Equal(t, tr.Root(), preRoot)

	tr.Update(k1, val(7))
	postRoot, err := smt.ComputeRoot(map[[32]byte][32]byte{k1: val(7)}, proof)
	require.NoError(t, err)
	require.Equal(t, tr.Root(), postRoot)
}

func TestCheckpointHashChangesWithRootOrAccountCount(t *testing.T) {
	root := key("root")
	a := smt.CheckpointHash(root, 1)
	b := smt.CheckpointHash(root, 2)
	c := smt.CheckpointHash(key("other-root"), 1)
	require.NotEqual(t, a, b)
	require.NotEqual(t, a, c)

	want := gwkey.Hash(root[:], gwkey.LE32(1))
	require.Equal(t, want, a)
}
