package challenge_test

import (
	"encoding/hex"
	"testing"

	"github.com/godwoken-go/godwoken/pkg/core/challenge"
	"github.com/godwoken-go/godwoken/pkg/core/dao"
	"github.com/godwoken-go/godwoken/pkg/core/native"
	"github.com/godwoken-go/godwoken/pkg/core/state"
	"github.com/godwoken-go/godwoken/pkg/core/txcontext"
	"github.com/godwoken-go/godwoken/pkg/gwerr"
	"github.com/godwoken-go/godwoken/pkg/gwkey"
	"github.com/godwoken-go/godwoken/pkg/rollupcfg"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/blake2b"
)

func metaCreateArgs(script []byte) []byte {
	out := append([]byte{}, gwkey.LE32(0)...) // TagCreateAccount
	out = append(out, gwkey.LE32(uint32(len(script)))...)
	return append(out, script...)
}

func rawTxFor(fromID, toID uint32, args []byte) []byte {
	out := append([]byte{}, gwkey.LE32(fromID)...)
	out = append(out, gwkey.LE32(toID)...)
	out = append(out, gwkey.LE32(0)...) // nonce, unused by ParseTx beyond round-trip
	out = append(out, gwkey.LE32(uint32(len(args)))...)
	return append(out, args...)
}

func rawBlockInfoFor(number uint64) []byte {
	out := make([]byte, 20)
	le64 := func(v uint64) []byte {
		b := make([]byte, 8)
		for i := 0; i < 8; i++ {
			b[i] = byte(v >> (8 * i))
		}
		return b
	}
	copy(out[0:8], le64(number))
	copy(out[8:16], le64(0))
	copy(out[16:20], gwkey.LE32(0))
	return out
}

// S6 challenge success, built from an actual off-chain execution: a
// meta-contract CreateAccount re-executed on the witness must reproduce
// the same post-checkpoint and return data the generator committed, and
// flipping any byte of the KV proof must fail SmtVerify (invariant 5).
func TestChallengeCreateAccountSuccess(t *testing.T) {
	v := dao.NewView(nil)
	for i := 0; i < 5; i++ {
		_, err := v.CreateAccount([]byte{byte(i), 0xBB})
		require.NoError(t, err)
	}
	preAccountCount := v.AccountCount() // 5

	// The validator only admits a script that starts with the rollup script
	// hash (all zero in this config) followed by a code whose hash the
	// config allows.
	body := []byte("challenge-test-script")
	codeHash := blake2b.Sum256(body)
	cfg := &rollupcfg.Config{AllowedEoaCodeHashes: []string{hex.EncodeToString(codeHash[:])}}
	script := append(append([]byte{}, cfg.RollupScriptHash[:]...), body...)
	h := gwkey.Hash(script)
	newID := preAccountCount

	keys := [][32]byte{
		gwkey.ScriptHashField(newID),
		gwkey.NonceField(newID),
		gwkey.ScriptHashIndex(h),
		gwkey.NonceField(0),
		gwkey.ScriptHashField(0),
	}
	preKV := make(map[[32]byte][32]byte, len(keys))
	for _, k := range keys {
		preKV[k] = v.RawValue(k)
	}
	prevRoot := v.Root()
	prevCheckpoint := v.Checkpoint()
	prevProof := v.Proof(keys)

	args := metaCreateArgs(script)
	rawTx := rawTxFor(0, state.MetaAccountID, args)
	rawBlockInfo := rawBlockInfoFor(1)

	ic, err := txcontext.Init(v, rawTx, rawBlockInfo, txcontext.Options{RollupConfig: cfg})
	require.NoError(t, err)
	ret, err := native.Dispatch(ic)
	require.NoError(t, err)
	if len(ret) > 0 {
		require.NoError(t, ic.SetReturnData(ret))
	}
	require.NoError(t, txcontext.Finalize(ic))

	postRoot := v.Root()
	postCheckpoint := v.Checkpoint()
	returnDataHash := blake2b.Sum256(ic.ReturnData)

	witness := dao.Witness{KV: preKV, AccountCount: preAccountCount, ReturnDataHash: returnDataHash}

	txHash := blake2b.Sum256(rawTx)
	leaf := gwkey.Hash(gwkey.LE32(0), txHash[:])

	header := []byte("challenged-block-header")
	headerHash := blake2b.Sum256(header)

	in := challenge.Input{
		RollupConfig:          cfg,
		RawBlockHeader:        header,
		ChallengedBlockHash:   headerHash,
		RawTx:                 rawTx,
		RawBlockInfo:          rawBlockInfo,
		TxWitnessRoot:         leaf,
		TxProof:               challenge.CBMTProof{LeafIndex: 0},
		ChallengedBlockNumber: 1000,
		Witness:               witness,
		PrevRoot:              prevRoot,
		PrevCheckpoint:        prevCheckpoint,
		PrevKVProof:           prevProof,
		PostCheckpoint:        postCheckpoint,
	}

	cloneKV := func() map[[32]byte][32]byte {
		m := make(map[[32]byte][32]byte, len(preKV))
		for k, v := range preKV {
			m[k] = v
		}
		return m
	}

	good := in
	good.Witness.KV = cloneKV()
	require.NoError(t, challenge.Verify(good))

	tampered := in
	tampered.Witness.KV = cloneKV()
	tampered.PrevKVProof.Siblings = append([][32]byte(nil), prevProof.Siblings...)
	if len(tampered.PrevKVProof.Siblings) > 0 {
		tampered.PrevKVProof.Siblings[0][0] ^= 0xFF
	} else {
		tampered.PrevKVProof.Siblings = [][32]byte{{0x01}}
	}
	err = challenge.Verify(tampered)
	require.Error(t, err)
	require.Equal(t, gwerr.SmtVerify, gwerr.CodeOf(err))
}
