// Package interop is the syscall surface contract programs see: a fixed
// set of host operations (load/store, create, nonce, log, pay-fee,
// recover, snapshot/revert, the BN precompiles, ...) bound to syscall
// numbers that must never be renumbered once assigned, wired to whichever
// dao.StateView backs the current execution (off-chain dao.View or
// on-chain dao.WitnessView). The shape — a Context carrying DAO, Tx,
// Block, Log and a Functions table keyed by syscall id — follows the
// teacher's own interop.Context.
package interop

import (
	"github.com/godwoken-go/godwoken/pkg/core/dao"
	"github.com/godwoken-go/godwoken/pkg/core/state"
	"github.com/godwoken-go/godwoken/pkg/rollupcfg"
	"go.uber.org/zap"
)

// Syscall numbers, part of the ABI seen by contract programs.
const (
	SysCreate            = 3100
	SysStore             = 3101
	SysLoad              = 3102
	SysLoadAccountScript = 3105
	SysSetReturnData     = 3201
	SysStoreData         = 3301
	SysLoadData          = 3302
	SysLoadRollupConfig  = 3401
	SysLoadTransaction   = 3402
	SysLoadBlockInfo     = 3403
	SysGetBlockHash      = 3404
	SysPayFee            = 3501
	SysLog               = 3502
	SysRecoverAccount    = 3503
	SysBnAdd             = 3601
	SysBnMul             = 3602
	SysBnPairing         = 3603
	SysSnapshot          = 3701
	SysRevert            = 3702
)

// Function binds a syscall number and name to its handler, mirroring the
// teacher's interop.Function.
type Function struct {
	ID   int
	Name string
	Func func(*Context) error
}

// Context is the per-transaction execution context every syscall runs
// against. It is built once by pkg/core/txcontext.Init and handed to
// whichever contract program (currently only the two native contracts)
// the target account resolves to.
type Context struct {
	DAO   dao.StateView
	Tx    state.TxContext
	Block state.BlockInfo
	Log   *zap.Logger

	OriginalSenderNonce uint32
	ReturnData          []byte

	Functions []Function

	// Validating is true when this Context runs inside the on-chain
	// challenge verifier rather than the off-chain generator.
	Validating   bool
	RollupConfig *rollupcfg.Config
}

// NewContext returns a Context wired against view, for tx within block,
// logging through log (a nop logger is fine in tests).
func NewContext(view dao.StateView, tx state.TxContext, block state.BlockInfo, log *zap.Logger) (*Context, error) {
	if log == nil {
		log = zap.NewNop()
	}
	nonce, err := view.GetAccountNonce(tx.FromID)
	if err != nil {
		return nil, err
	}
	ic := &Context{
		DAO:                 view,
		Tx:                  tx,
		Block:               block,
		Log:                 log,
		OriginalSenderNonce: nonce,
	}
	ic.Functions = ic.syscallTable()
	return ic, nil
}

// GetFunction looks up a registered syscall by its ABI number.
func (ic *Context) GetFunction(id int) *Function {
	for i := range ic.Functions {
		if ic.Functions[i].ID == id {
			return &ic.Functions[i]
		}
	}
	return nil
}
