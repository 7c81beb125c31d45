package native

import (
	"github.com/godwoken-go/godwoken/pkg/core/interop"
	"github.com/godwoken-go/godwoken/pkg/core/state"
	"github.com/godwoken-go/godwoken/pkg/gwerr"
	"github.com/godwoken-go/godwoken/pkg/gwkey"
	"github.com/godwoken-go/godwoken/pkg/registry"
	"github.com/holiman/uint256"
)

// Sudt is the native-token account's built-in contract (spec §4.6):
// balance query and fee-charging transfer. Balances live in the target
// account's own KV, keyed by "balance" || reg_id_le32 || addr_len_le32 ||
// addr.
type Sudt struct{}

// Invoke dispatches to Query or Transfer by the args union tag.
func (Sudt) Invoke(ic *interop.Context, args []byte) ([]byte, error) {
	tag, query, transfer, err := decodeSudtArgs(args)
	if err != nil {
		return nil, err
	}
	switch tag {
	case TagQuery:
		return handleQuery(ic, query)
	case TagTransfer:
		return handleTransfer(ic, transfer)
	default:
		return nil, gwerr.New(gwerr.UnknownArgs)
	}
}

func balanceKey(addr registry.Address) []byte {
	key := make([]byte, 0, 7+8+len(addr.Addr))
	key = append(key, "balance"...)
	key = append(key, gwkey.LE32(addr.RegID)...)
	key = append(key, gwkey.LE32(uint32(len(addr.Addr)))...)
	key = append(key, addr.Addr...)
	return key
}

func loadBalance(ic *interop.Context, addr registry.Address) (*uint256.Int, error) {
	v, err := ic.DAO.Load(ic.Tx.ToID, balanceKey(addr))
	if err != nil {
		return nil, err
	}
	return leBytesToInt(v), nil
}

func storeBalance(ic *interop.Context, addr registry.Address, v *uint256.Int) error {
	return ic.DAO.Store(ic.Tx.ToID, balanceKey(addr), intToLEBytes(v))
}

// leBytesToInt interprets a stored 32-byte value as little-endian, per the
// Query return-data encoding.
func leBytesToInt(b [32]byte) *uint256.Int {
	var be [32]byte
	for i := 0; i < 32; i++ {
		be[i] = b[31-i]
	}
	return new(uint256.Int).SetBytes(be[:])
}

func intToLEBytes(v *uint256.Int) [32]byte {
	be := v.Bytes32()
	var out [32]byte
	for i := 0; i < 32; i++ {
		out[i] = be[31-i]
	}
	return out
}

func handleQuery(ic *interop.Context, q QueryArgs) ([]byte, error) {
	bal, err := loadBalance(ic, q.Address)
	if err != nil {
		return nil, err
	}
	out := intToLEBytes(bal)
	return out[:], nil
}

func handleTransfer(ic *interop.Context, t TransferArgs) ([]byte, error) {
	senderScriptHash, err := ic.DAO.GetScriptHashByAccountID(ic.Tx.FromID)
	if err != nil {
		return nil, err
	}
	reg := registry.New(ic.DAO, state.RegistryAccountID)
	senderAddr, err := reg.GetAddressByScriptHash(senderScriptHash)
	if err != nil {
		return nil, err
	}

	amount := leBytesToInt(t.Amount)
	feeAmount := leBytesToInt(fee16To32(t.FeeAmount))

	feePayer := registry.Address{RegID: t.FeeRegID, Addr: senderAddr.Addr}
	if err := ic.DAO.PayFee(feePayer, state.SudtAccountID, intToLEBytes(feeAmount)); err != nil {
		return nil, err
	}

	senderBal, err := loadBalance(ic, senderAddr)
	if err != nil {
		return nil, err
	}
	sameAccount := senderAddr.RegID == t.To.RegID && string(senderAddr.Addr) == string(t.To.Addr)
	if sameAccount {
		// Transfers to self are no-ops at balance level but still pay fee
		// and emit the transfer log (spec §4.6(v)).
		ic.DAO.Log(logTransferEntry(ic, senderAddr, t.To, t.Amount))
		return nil, nil
	}

	toBal, err := loadBalance(ic, t.To)
	if err != nil {
		return nil, err
	}

	newSenderBal, underflow := new(uint256.Int).SubOverflow(senderBal, amount)
	if underflow {
		return nil, gwerr.New(gwerr.InsufficientBalance)
	}
	newToBal, overflow := new(uint256.Int).AddOverflow(toBal, amount)
	if overflow {
		return nil, gwerr.New(gwerr.AmountOverflow)
	}

	if err := storeBalance(ic, senderAddr, newSenderBal); err != nil {
		return nil, err
	}
	if err := storeBalance(ic, t.To, newToBal); err != nil {
		return nil, err
	}

	ic.DAO.Log(logTransferEntry(ic, senderAddr, t.To, t.Amount))
	return nil, nil
}

func fee16To32(fee [16]byte) [32]byte {
	var out [32]byte
	copy(out[:16], fee[:])
	return out
}

func logTransferEntry(ic *interop.Context, from, to registry.Address, amount [32]byte) state.LogEntry {
	data := make([]byte, 0, 8+len(from.Addr)+8+len(to.Addr)+32)
	data = append(data, gwkey.LE32(from.RegID)...)
	data = append(data, gwkey.LE32(uint32(len(from.Addr)))...)
	data = append(data, from.Addr...)
	data = append(data, gwkey.LE32(to.RegID)...)
	data = append(data, gwkey.LE32(uint32(len(to.Addr)))...)
	data = append(data, to.Addr...)
	data = append(data, amount[:]...)
	return state.LogEntry{AccountID: ic.Tx.ToID, ServiceFlag: state.LogSudtTransfer, Data: data}
}
