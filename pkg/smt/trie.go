// Package smt implements the sparse Merkle tree used as the single
// cryptographic trust anchor of the core: a height-256 binary tree over
// 32-byte keys and 32-byte values with a canonical empty-subtree hash per
// level, fetch/insert/normalize/root operations, and a compact multi-key
// proof format the on-chain verifier uses to reconstruct state without
// holding the full leaf set.
//
// The off-chain generator keeps every (key, value) pair it has ever
// written in Trie and can therefore build a proof for any subset of keys;
// the on-chain verifier only ever holds that subset plus the proof and
// recomputes the same root through Verify/ComputeRoot.
package smt

import (
	"github.com/godwoken-go/godwoken/pkg/gwkey"
	"github.com/pkg/errors"
	"golang.org/x/crypto/blake2b"
)

// Height is the bit-depth of the tree: one level per bit of a 256-bit key.
const Height = 256

// defaultHash[d] is the hash of an empty subtree rooted at depth d, for d
// in [0, Height]. defaultHash[Height] is the canonical empty-value leaf
// hash (the all-zero value itself); defaultHash[0] is the root of a
// wholly empty tree.
var defaultHash [Height + 1][32]byte

func init() {
	defaultHash[Height] = [32]byte{}
	for d := Height - 1; d >= 0; d-- {
		defaultHash[d] = hashPair(defaultHash[d+1], defaultHash[d+1])
	}
}

func hashPair(left, right [32]byte) [32]byte {
	buf := make([]byte, 0, 64)
	buf = append(buf, left[:]...)
	buf = append(buf, right[:]...)
	return blake2b.Sum256(buf)
}

// bitAt returns the bit of key at depth (0 = most significant bit of
// key[0]), used to decide the left/right branch at that depth.
func bitAt(key [32]byte, depth int) byte {
	byteIdx := depth / 8
	bitIdx := 7 - uint(depth%8)
	return (key[byteIdx] >> bitIdx) & 1
}

// Trie is an in-memory sparse Merkle tree holding every non-default leaf
// ever written to it.
type Trie struct {
	leaves map[[32]byte][32]byte
}

// NewTrie returns an empty Trie.
func NewTrie() *Trie {
	return &Trie{leaves: make(map[[32]byte][32]byte)}
}

// Snapshot returns a copy of the tree's current leaf set, for forking an
// independent Trie from the same state.
func (t *Trie) Snapshot() map[[32]byte][32]byte {
	out := make(map[[32]byte][32]byte, len(t.leaves))
	for k, v := range t.leaves {
		out[k] = v
	}
	return out
}

// NewTrieFrom returns a Trie pre-populated with leaves, taking ownership
// of the map.
func NewTrieFrom(leaves map[[32]byte][32]byte) *Trie {
	if leaves == nil {
		leaves = make(map[[32]byte][32]byte)
	}
	return &Trie{leaves: leaves}
}

// Fetch returns the value stored at key, or the canonical zero value if
// key has never been written (or was written with the zero value, which
// is equivalent to absent).
func (t *Trie) Fetch(key [32]byte) [32]byte {
	return t.leaves[key]
}

// Update inserts value at key. Writing the all-zero value is equivalent to
// deleting key (it collapses back to the default leaf hash).
func (t *Trie) Update(key, value [32]byte) {
	if gwkey.IsZero(value) {
		delete(t.leaves, key)
		return
	}
	t.leaves[key] = value
}

// Normalize is idempotent and prepares the tree for Root/BuildProof. The
// map-backed representation needs no compaction step, but callers must
// still call it before Root/BuildProof per the documented lifecycle so an
// implementation swap (e.g. to a disk-backed sorted representation) stays
// a drop-in replacement.
func (t *Trie) Normalize() {}

// keys returns the full set of non-default leaf keys, sorted is not
// required by the algorithm below (partitioning by bit is order-independent).
func (t *Trie) keys() [][32]byte {
	out := make([][32]byte, 0, len(t.leaves))
	for k := range t.leaves {
		out = append(out, k)
	}
	return out
}

// Root returns the current root hash of the tree.
func (t *Trie) Root() [32]byte {
	return t.computeNode(0, t.keys())
}

// computeNode recomputes the hash of the subtree rooted at depth that
// contains exactly the leaves in keys (all other leaves at this depth are
// implicitly default).
func (t *Trie) computeNode(depth int, keys [][32]byte) [32]byte {
	if depth == Height {
		if len(keys) == 0 {
			return defaultHash[Height]
		}
		return t.leaves[keys[0]]
	}
	if len(keys) == 0 {
		return defaultHash[depth]
	}
	left, right := splitByBit(keys, depth)
	lh := t.computeNode(depth+1, left)
	rh := t.computeNode(depth+1, right)
	return hashPair(lh, rh)
}

func splitByBit(keys [][32]byte, depth int) (left, right [][32]byte) {
	for _, k := range keys {
		if bitAt(k, depth) == 0 {
			left = append(left, k)
		} else {
			right = append(right, k)
		}
	}
	return left, right
}

// Proof is a compact multi-key sparse-Merkle proof: the sibling hashes
// needed, together with a (key, value) witness subset, to recompute the
// tree's root. Siblings are recorded in the same left-before-right,
// depth-first order that ComputeRoot consumes them in.
type Proof struct {
	Siblings [][32]byte
}

// BuildProof returns the proof that lets a verifier holding only the
// given keys (and their current values) recompute Root().
func (t *Trie) BuildProof(keys [][32]byte) Proof {
	var siblings [][32]byte
	t.collect(0, t.keys(), keys, &siblings)
	return Proof{Siblings: siblings}
}

// collect walks the full leaf set (fullKeys) alongside the proof's
// key-of-interest set (proveKeys). Whenever proveKeys touches only one
// branch, the real hash of the other branch (computed from the full leaf
// set) is appended to out as a sibling.
func (t *Trie) collect(depth int, fullKeys, proveKeys [][32]byte, out *[][32]byte) [32]byte {
	if depth == Height {
		if len(fullKeys) == 0 {
			return defaultHash[Height]
		}
		return t.leaves[fullKeys[0]]
	}
	if len(proveKeys) == 0 {
		return t.computeNode(depth, fullKeys)
	}
	fl, fr := splitByBit(fullKeys, depth)
	pl, pr := splitByBit(proveKeys, depth)

	var lh, rh [32]byte
	if len(pl) > 0 {
		lh = t.collect(depth+1, fl, pl, out)
	} else {
		lh = t.computeNode(depth+1, fl)
		*out = append(*out, lh)
	}
	if len(pr) > 0 {
		rh = t.collect(depth+1, fr, pr, out)
	} else {
		rh = t.computeNode(depth+1, fr)
		*out = append(*out, rh)
	}
	return hashPair(lh, rh)
}

// proofCursor consumes Proof.Siblings in order, failing with SmtVerify-ish
// error when the proof runs short (a malformed or truncated witness).
type proofCursor struct {
	siblings [][32]byte
	pos      int
}

func (c *proofCursor) next() ([32]byte, error) {
	if c.pos >= len(c.siblings) {
		return [32]byte{}, errors.New("smt: proof exhausted")
	}
	h := c.siblings[c.pos]
	c.pos++
	return h, nil
}

// Verify recomputes the root from entries (the witness KV subset) and
// proof, and reports whether it equals expectedRoot. entries missing a key
// that ComputeRoot needs, or a proof with too few/many siblings, is a
// verification failure, never a panic.
func Verify(expectedRoot [32]byte, entries map[[32]byte][32]byte, proof Proof) (bool, error) {
	root, err := ComputeRoot(entries, proof)
	if err != nil {
		return false, err
	}
	return root == expectedRoot, nil
}

// ComputeRoot recomputes the tree root from entries and proof without
// comparing it to anything. Because the proof's siblings depend only on
// which keys are outside entries (never on their values), calling this
// again with the same key set but updated values recovers the new root
// after a mutation — the mechanism the challenge verifier uses to move
// from a pre-state to a post-state root without holding the full tree.
func ComputeRoot(entries map[[32]byte][32]byte, proof Proof) ([32]byte, error) {
	keys := make([][32]byte, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	cur := &proofCursor{siblings: proof.Siblings}
	root, err := verifyNode(0, keys, entries, cur)
	if err != nil {
		return [32]byte{}, err
	}
	if cur.pos != len(cur.siblings) {
		return [32]byte{}, errors.New("smt: proof has unconsumed siblings")
	}
	return root, nil
}

func verifyNode(depth int, proveKeys [][32]byte, entries map[[32]byte][32]byte, cur *proofCursor) ([32]byte, error) {
	if depth == Height {
		if len(proveKeys) == 0 {
			return defaultHash[Height], nil
		}
		return entries[proveKeys[0]], nil
	}
	if len(proveKeys) == 0 {
		return cur.next()
	}
	pl, pr := splitByBit(proveKeys, depth)

	var lh, rh [32]byte
	var err error
	if len(pl) > 0 {
		lh, err = verifyNode(depth+1, pl, entries, cur)
	} else {
		lh, err = cur.next()
	}
	if err != nil {
		return [32]byte{}, err
	}
	if len(pr) > 0 {
		rh, err = verifyNode(depth+1, pr, entries, cur)
	} else {
		rh, err = cur.next()
	}
	if err != nil {
		return [32]byte{}, err
	}
	return hashPair(lh, rh), nil
}

// CheckpointHash computes blake2b-256(root || le32(accountCount)), the
// identifier of a pre- or post-transaction state.
func CheckpointHash(root [32]byte, accountCount uint32) [32]byte {
	return gwkey.Hash(root[:], gwkey.LE32(accountCount))
}
