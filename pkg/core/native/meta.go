package native

import (
	"encoding/hex"

	"github.com/godwoken-go/godwoken/pkg/core/interop"
	"github.com/godwoken-go/godwoken/pkg/gwerr"
	"github.com/godwoken-go/godwoken/pkg/gwkey"
	"golang.org/x/crypto/blake2b"
)

// Meta is the system/meta account's built-in contract (spec §4.5):
// account creation. Its single argument variant is CreateAccount{script}.
type Meta struct{}

// Invoke creates an account from args.Script and returns its new id as a
// little-endian u32 in the return-data buffer.
func (Meta) Invoke(ic *interop.Context, args []byte) ([]byte, error) {
	a, err := decodeCreateAccountArgs(args)
	if err != nil {
		return nil, err
	}
	if ic.Validating {
		if err := validateScript(ic, a.Script); err != nil {
			return nil, err
		}
	}
	id, err := ic.DAO.CreateAccount(a.Script)
	if err != nil {
		return nil, err
	}
	return gwkey.LE32(id), nil
}

// validateScript enforces the on-chain-only admission rule: the script must
// begin with the 32-byte rollup script hash, and the code hash of whatever
// follows must appear in the rollup config's allowed EoA or contract set.
func validateScript(ic *interop.Context, script []byte) error {
	if ic.RollupConfig == nil {
		return gwerr.New(gwerr.InvalidContext)
	}
	if len(script) < 32 {
		return gwerr.New(gwerr.InvalidAccountScript)
	}
	var prefix [32]byte
	copy(prefix[:], script[:32])
	if prefix != ic.RollupConfig.RollupScriptHash {
		return gwerr.New(gwerr.InvalidAccountScript)
	}
	codeHash := blake2b.Sum256(script[32:])
	hexHash := hex.EncodeToString(codeHash[:])
	if ic.RollupConfig.IsAllowedEoaCodeHash(hexHash) || ic.RollupConfig.IsAllowedContractCodeHash(hexHash) {
		return nil
	}
	return gwerr.New(gwerr.UnknownScriptCodeHash)
}
