// Package generator is the off-chain sequencer-side counterpart to
// pkg/core/challenge: it drives the same context_init / dispatch /
// finalize cycle against a dao.View instead of a dao.WitnessView, and
// commits blocks whose transactions run strictly sequentially (spec §5).
// Candidate blocks not yet committed may be dry-run concurrently against
// forked scratch views (golang.org/x/sync/errgroup), but nothing is
// applied to the canonical View outside of ExecuteBlock's sequential loop
// (which CommitBatch runs block by block).
package generator

import (
	"golang.org/x/sync/errgroup"

	"github.com/godwoken-go/godwoken/pkg/core/dao"
	"github.com/godwoken-go/godwoken/pkg/core/native"
	"github.com/godwoken-go/godwoken/pkg/core/state"
	"github.com/godwoken-go/godwoken/pkg/core/txcontext"
	"github.com/godwoken-go/godwoken/pkg/rollupcfg"
	"go.uber.org/zap"
)

// TxReceipt is the result of executing one transaction.
type TxReceipt struct {
	ReturnData     []byte
	Logs           []state.LogEntry
	PostCheckpoint [32]byte
}

// BlockInput is one candidate block: its block-info record plus raw
// transactions in submission order.
type BlockInput struct {
	Number       uint64
	RawBlockInfo []byte
	RawTxs       [][]byte
}

// BlockReceipt is the result of executing every transaction in a block.
type BlockReceipt struct {
	Number         uint64
	TxReceipts      []TxReceipt
	PostCheckpoint [32]byte
}

// Generator sequences transactions against a canonical dao.View.
type Generator struct {
	View   *dao.View
	Config *rollupcfg.Config
	Log    *zap.Logger
}

// New returns a Generator driving view under rollup config cfg.
func New(view *dao.View, cfg *rollupcfg.Config, log *zap.Logger) *Generator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Generator{View: view, Config: cfg, Log: log}
}

// executeTx runs context_init, dispatch, and finalize against view.
func executeTx(view *dao.View, cfg *rollupcfg.Config, log *zap.Logger, rawTx, rawBlockInfo []byte) (TxReceipt, error) {
	logMark := len(view.Logs())
	ic, err := txcontext.Init(view, rawTx, rawBlockInfo, txcontext.Options{RollupConfig: cfg, Log: log})
	if err != nil {
		return TxReceipt{}, err
	}
	ret, err := native.Dispatch(ic)
	if err != nil {
		return TxReceipt{}, err
	}
	if len(ret) > 0 {
		if err := ic.SetReturnData(ret); err != nil {
			return TxReceipt{}, err
		}
	}
	if err := txcontext.Finalize(ic); err != nil {
		return TxReceipt{}, err
	}
	return TxReceipt{
		ReturnData:     ic.ReturnData,
		Logs:           append([]state.LogEntry(nil), view.Logs()[logMark:]...),
		PostCheckpoint: view.Checkpoint(),
	}, nil
}

// ExecuteBlock runs in.RawTxs strictly sequentially against g.View and
// commits them (there is no separate validate/commit split for a single
// block: sequencing already satisfies determinism).
func (g *Generator) ExecuteBlock(in BlockInput) (BlockReceipt, error) {
	receipts := make([]TxReceipt, 0, len(in.RawTxs))
	for _, rawTx := range in.RawTxs {
		r, err := executeTx(g.View, g.Config, g.Log, rawTx, in.RawBlockInfo)
		if err != nil {
			return BlockReceipt{}, err
		}
		receipts = append(receipts, r)
	}
	return BlockReceipt{Number: in.Number, TxReceipts: receipts, PostCheckpoint: g.View.Checkpoint()}, nil
}

// ValidateBatch dry-runs each block in blocks against its own fork of
// g.View, concurrently, returning the per-block error (nil on success).
// None of this touches g.View; it exists so a sequencer can discover a
// bad block among many candidates without serializing the check.
func (g *Generator) ValidateBatch(blocks []BlockInput) []error {
	errs := make([]error, len(blocks))
	var eg errgroup.Group
	eg.SetLimit(4)
	for i, b := range blocks {
		i, b := i, b
		eg.Go(func() error {
			scratch := g.View.Fork()
			_, err := (&Generator{View: scratch, Config: g.Config, Log: g.Log}).ExecuteBlock(b)
			errs[i] = err
			return nil
		})
	}
	_ = eg.Wait()
	return errs
}

// CommitBatch executes blocks in order against the canonical View,
// stopping at (and returning) the first error. Each block's effects are
// applied before the next begins, since a later block's pre-state is the
// previous block's post-state.
func (g *Generator) CommitBatch(blocks []BlockInput) ([]BlockReceipt, error) {
	receipts := make([]BlockReceipt, 0, len(blocks))
	for _, b := range blocks {
		r, err := g.ExecuteBlock(b)
		if err != nil {
			return receipts, err
		}
		receipts = append(receipts, r)
	}
	return receipts, nil
}
