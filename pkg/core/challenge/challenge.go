package challenge

import (
	"github.com/godwoken-go/godwoken/pkg/core/dao"
	"github.com/godwoken-go/godwoken/pkg/core/limits"
	"github.com/godwoken-go/godwoken/pkg/core/native"
	"github.com/godwoken-go/godwoken/pkg/core/txcontext"
	"github.com/godwoken-go/godwoken/pkg/gwerr"
	"github.com/godwoken-go/godwoken/pkg/rollupcfg"
	"github.com/godwoken-go/godwoken/pkg/smt"
	"golang.org/x/crypto/blake2b"
)

// Input bundles everything a challenge carries (spec §2 "Challenge
// flow" / §4.4 "Verification path"). Fields the caller is expected to
// have already resolved from the L1 global state and the challenged
// block's checkpoint list (position = withdrawals_count + tx_index) are
// taken as given rather than re-derived here, since their on-L1 lookup is
// outside the core (spec §1).
type Input struct {
	RollupConfig *rollupcfg.Config

	// RawBlockHeader is hashed and compared against ChallengedBlockHash.
	// The header's internal field layout (number, aggregator_id,
	// stake_cell_owner_lock_hash, ...) is named in spec §6 but its exact
	// byte encoding is not; treating it as an opaque, pre-serialized blob
	// keeps this package agnostic to that encoding.
	RawBlockHeader     []byte
	ChallengedBlockHash [32]byte

	RawTx         []byte
	RawBlockInfo  []byte
	TxWitnessRoot [32]byte
	TxProof       CBMTProof

	ChallengedBlockNumber uint64
	Witness               dao.Witness
	PrevRoot              [32]byte
	PrevCheckpoint        [32]byte
	PrevKVProof           smt.Proof
	PostCheckpoint        [32]byte

	RecoveredScript []byte
	UsesSnapshot    bool
	UsesBn          bool
}

// Verify runs the full challenge verification path and returns nil only
// if every check (block hash, tx membership, pre-state checkpoint,
// re-execution, post-state checkpoint, return-data hash) passes.
func Verify(in Input) error {
	if len(in.Witness.Scripts) > limits.MaxScriptEntries ||
		len(in.Witness.LoadData) > limits.MaxLoadDataEntries ||
		len(in.Witness.BlockHashes) > limits.MaxBlockHashWindow ||
		len(in.Witness.KV) > limits.MaxKVPairsPerTx {
		return gwerr.New(gwerr.BufferOverflow)
	}

	if blake2b.Sum256(in.RawBlockHeader) != in.ChallengedBlockHash {
		return gwerr.New(gwerr.SmtVerify)
	}

	if err := VerifyTxMembership(in.RawTx, in.TxWitnessRoot, in.TxProof); err != nil {
		return err
	}

	if smt.CheckpointHash(in.PrevRoot, in.Witness.AccountCount) != in.PrevCheckpoint {
		return gwerr.New(gwerr.InvalidCheckPoint)
	}
	ok, err := smt.Verify(in.PrevRoot, in.Witness.KV, in.PrevKVProof)
	if err != nil {
		return gwerr.Wrap(gwerr.SmtVerify, err)
	}
	if !ok {
		return gwerr.New(gwerr.SmtVerify)
	}

	view := dao.NewWitnessView(in.Witness, in.ChallengedBlockNumber)
	if in.RecoveredScript != nil {
		view.SetRecoveredScript(in.RecoveredScript)
	}

	ic, err := txcontext.Init(view, in.RawTx, in.RawBlockInfo, txcontext.Options{
		RollupConfig: in.RollupConfig,
		Validating:   true,
		UsesSnapshot: in.UsesSnapshot,
		UsesBn:       in.UsesBn,
	})
	if err != nil {
		return err
	}

	ret, err := native.Dispatch(ic)
	if err != nil {
		return err
	}
	if len(ret) > 0 {
		if err := ic.SetReturnData(ret); err != nil {
			return err
		}
	}

	if err := txcontext.Finalize(ic); err != nil {
		return err
	}

	postRoot, err := smt.ComputeRoot(view.KV(), in.PrevKVProof)
	if err != nil {
		return gwerr.Wrap(gwerr.SmtVerify, err)
	}
	postCheckpoint := smt.CheckpointHash(postRoot, view.AccountCount())
	if postCheckpoint != in.PostCheckpoint {
		return gwerr.New(gwerr.InvalidCheckPoint)
	}

	returnHash := blake2b.Sum256(ic.ReturnData)
	if returnHash != in.Witness.ReturnDataHash {
		return gwerr.New(gwerr.MismatchReturnData)
	}
	return nil
}
