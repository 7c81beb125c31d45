package native

import (
	"github.com/godwoken-go/godwoken/pkg/core/interop"
	"github.com/godwoken-go/godwoken/pkg/core/state"
	"github.com/godwoken-go/godwoken/pkg/gwerr"
)

// Contract is a built-in account whose program is this binary rather than
// bytecode loaded into the (out of scope) VM. Both Meta and Sudt implement
// it; dispatch happens on the target account id since the core has exactly
// two such accounts.
type Contract interface {
	Invoke(ic *interop.Context, args []byte) ([]byte, error)
}

// Dispatch resolves ic.Tx.ToID to its built-in Contract and invokes it with
// ic.Tx.Args. Any other target id is UnknownArgs: the core has no general
// VM to fall back to, and the caller is expected to have already routed
// non-built-in targets elsewhere.
func Dispatch(ic *interop.Context) ([]byte, error) {
	var c Contract
	switch ic.Tx.ToID {
	case state.MetaAccountID:
		c = Meta{}
	case state.SudtAccountID:
		c = Sudt{}
	default:
		return nil, gwerr.New(gwerr.UnknownArgs)
	}
	return c.Invoke(ic, ic.Tx.Args)
}
