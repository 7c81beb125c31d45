// Package challenge implements the on-chain challenge verifier (spec
// §4.4 "Verification path"): it checks the challenged block hash, proves
// the target transaction's membership via a CBMT proof, verifies the
// pre-state checkpoint, re-executes the transaction against a
// dao.WitnessView, then verifies the post-state checkpoint and the
// return-data hash. Every step fails closed: a verification mismatch
// returns gwerr.SmtVerify/InvalidCheckPoint/MismatchReturnData rather than
// panicking.
package challenge

import (
	"github.com/godwoken-go/godwoken/pkg/gwerr"
	"github.com/godwoken-go/godwoken/pkg/gwkey"
	"golang.org/x/crypto/blake2b"
)

// CBMTProof is the sibling path from a transaction leaf up to its
// tx-witness root (spec §8 invariant 6 / §6 glossary "CBMT proof").
type CBMTProof struct {
	LeafIndex uint32
	Siblings  [][32]byte
}

// cbmtLeafHash computes blake2b(le32(tx_index) || blake2b(tx)).
func cbmtLeafHash(txIndex uint32, rawTx []byte) [32]byte {
	txHash := blake2b.Sum256(rawTx)
	return gwkey.Hash(gwkey.LE32(txIndex), txHash[:])
}

// verifyCBMT reproduces the tx-witness root by ascending proof.Siblings
// from the leaf, combining with `parent = (i-1)/2` and `i&1==1 =>
// self-is-left` (spec §8 invariant 6).
func verifyCBMT(leaf [32]byte, proof CBMTProof) [32]byte {
	h := leaf
	i := proof.LeafIndex
	for _, sib := range proof.Siblings {
		if i&1 == 1 {
			h = blake2bPair(h, sib)
		} else {
			h = blake2bPair(sib, h)
		}
		i = (i - 1) / 2
	}
	return h
}

func blake2bPair(left, right [32]byte) [32]byte {
	buf := make([]byte, 0, 64)
	buf = append(buf, left[:]...)
	buf = append(buf, right[:]...)
	return blake2b.Sum256(buf)
}

// VerifyTxMembership checks that rawTx at txIndex is the challenge target,
// i.e. that its CBMT leaf ascends to txWitnessRoot through proof.
func VerifyTxMembership(rawTx []byte, txWitnessRoot [32]byte, proof CBMTProof) error {
	leaf := cbmtLeafHash(proof.LeafIndex, rawTx)
	if verifyCBMT(leaf, proof) != txWitnessRoot {
		return gwerr.New(gwerr.SmtVerify)
	}
	return nil
}
