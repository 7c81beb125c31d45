package txcontext

import (
	"github.com/godwoken-go/godwoken/pkg/core/dao"
	"github.com/godwoken-go/godwoken/pkg/core/interop"
	"github.com/godwoken-go/godwoken/pkg/gwerr"
	"github.com/godwoken-go/godwoken/pkg/rollupcfg"
	"go.uber.org/zap"
)

// Options carries everything beyond the raw tx/block bytes that Init
// needs: the rollup config, whether this run is the on-chain verifier
// (which rejects BN/snapshot usage rather than emulating it), and a
// logger.
type Options struct {
	RollupConfig *rollupcfg.Config
	Validating   bool
	Log          *zap.Logger
	UsesSnapshot bool // from the witness, set only when Validating
	UsesBn       bool // from the witness, set only when Validating
}

// Init implements context_init: parses the raw transaction and block
// info, attaches the already-parsed opts.RollupConfig, and returns a ready
// interop.Context with OriginalSenderNonce recorded. Malformed input is
// InvalidData and an over-cap size is BufferOverflow; a nil RollupConfig
// is InvalidContext. Init does not read or size-check the rollup config
// itself: rollupcfg.Parse enforces limits.MaxRollupConfig.
func Init(view dao.StateView, rawTx, rawBlockInfo []byte, opts Options) (*interop.Context, error) {
	if opts.RollupConfig == nil {
		return nil, gwerr.New(gwerr.InvalidContext)
	}
	tx, err := ParseTx(rawTx)
	if err != nil {
		return nil, err
	}
	block, err := ParseBlockInfo(rawBlockInfo)
	if err != nil {
		return nil, err
	}
	if opts.Validating && (opts.UsesBn || opts.UsesSnapshot) {
		// Open Question resolution (SPEC_FULL.md §9): the verifier never
		// emulates BN precompiles or overlay snapshots, so a transaction
		// that used either is rejected at admission rather than silently
		// diverging mid re-execution.
		return nil, gwerr.New(gwerr.Unimplemented)
	}

	ic, err := interop.NewContext(view, tx, block, opts.Log)
	if err != nil {
		return nil, err
	}
	ic.Validating = opts.Validating
	ic.RollupConfig = opts.RollupConfig
	return ic, nil
}

// Finalize implements finalize: reads the sender nonce again and bumps it
// by exactly one from OriginalSenderNonce if the contract left it
// unchanged; accepts it if the contract already advanced it further;
// fails fatally if the contract somehow left it lower than the original.
func Finalize(ic *interop.Context) error {
	cur, err := ic.DAO.GetAccountNonce(ic.Tx.FromID)
	if err != nil {
		return err
	}
	switch {
	case cur == ic.OriginalSenderNonce:
		return ic.DAO.SetNonce(ic.Tx.FromID, ic.OriginalSenderNonce+1)
	case cur > ic.OriginalSenderNonce:
		return nil
	default:
		return gwerr.New(gwerr.InvalidCheckPoint)
	}
}
