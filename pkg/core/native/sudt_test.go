package native

import (
	"testing"

	"github.com/godwoken-go/godwoken/pkg/core/dao"
	"github.com/godwoken-go/godwoken/pkg/core/interop"
	"github.com/godwoken-go/godwoken/pkg/core/state"
	"github.com/godwoken-go/godwoken/pkg/gwerr"
	"github.com/godwoken-go/godwoken/pkg/gwkey"
	"github.com/godwoken-go/godwoken/pkg/registry"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

func encodeAddrArgs(a registry.Address) []byte {
	out := make([]byte, 0, 8+len(a.Addr))
	out = append(out, gwkey.LE32(a.RegID)...)
	out = append(out, gwkey.LE32(uint32(len(a.Addr)))...)
	out = append(out, a.Addr...)
	return out
}

func encodeQueryArgs(a registry.Address) []byte {
	out := append([]byte{}, gwkey.LE32(TagQuery)...)
	return append(out, encodeAddrArgs(a)...)
}

func encodeTransferArgs(to registry.Address, amount [32]byte, fee [16]byte, feeRegID uint32) []byte {
	out := append([]byte{}, gwkey.LE32(TagTransfer)...)
	out = append(out, encodeAddrArgs(to)...)
	out = append(out, amount[:]...)
	out = append(out, fee[:]...)
	out = append(out, gwkey.LE32(feeRegID)...)
	return out
}

func u256LE(v uint64) [32]byte {
	return intToLEBytes(uint256.NewInt(v))
}

func u128LE(v uint64) [16]byte {
	var out [16]byte
	full := intToLEBytes(uint256.NewInt(v))
	copy(out[:], full[:16])
	return out
}

// sudtFixture wires accounts 0(meta)/1(sudt)/2(registry), plus a sender and
// receiver account each with a registered registry address.
type sudtFixture struct {
	v        *dao.View
	sender   registry.Address
	receiver registry.Address
}

func newSudtFixture(t *testing.T) *sudtFixture {
	t.Helper()
	v := dao.NewView(nil)
	bootstrapAccounts(t, v, 3) // 0=meta, 1=sudt, 2=registry

	senderID, err := v.CreateAccount([]byte("sender-script"))
	require.NoError(t, err)
	receiverID, err := v.CreateAccount([]byte("receiver-script"))
	require.NoError(t, err)

	senderHash, err := v.GetScriptHashByAccountID(senderID)
	require.NoError(t, err)
	receiverHash, err := v.GetScriptHashByAccountID(receiverID)
	require.NoError(t, err)

	reg := registry.New(v, state.RegistryAccountID)
	sender := registry.Address{RegID: 2, Addr: []byte("sender-addr")}
	receiver := registry.Address{RegID: 2, Addr: []byte("receiver-addr")}
	require.NoError(t, reg.Set(senderHash, sender))
	require.NoError(t, reg.Set(receiverHash, receiver))

	return &sudtFixture{v: v, sender: sender, receiver: receiver}
}

func (f *sudtFixture) context(t *testing.T, args []byte) *interop.Context {
	t.Helper()
	tx := state.TxContext{FromID: 3, ToID: state.SudtAccountID, Args: args}
	ic, err := interop.NewContext(f.v, tx, state.BlockInfo{}, nil)
	require.NoError(t, err)
	return ic
}

// S2 sUDT transfer.
func TestSudtTransfer(t *testing.T) {
	f := newSudtFixture(t)
	require.NoError(t, f.v.Store(state.SudtAccountID, balanceKey(f.sender), u256LE(1000)))

	args := encodeTransferArgs(f.receiver, u256LE(300), u128LE(5), 2)
	ic := f.context(t, args)

	_, err := Sudt{}.Invoke(ic, args)
	require.NoError(t, err)

	senderBal, err := f.v.Load(state.SudtAccountID, balanceKey(f.sender))
	require.NoError(t, err)
	require.Equal(t, u256LE(695), senderBal)

	receiverBal, err := f.v.Load(state.SudtAccountID, balanceKey(f.receiver))
	require.NoError(t, err)
	require.Equal(t, u256LE(300), receiverBal)

	logs := f.v.Logs()
	require.Len(t, logs, 2)
	require.Equal(t, state.LogSudtPayFee, logs[0].ServiceFlag)
	require.Equal(t, state.LogSudtTransfer, logs[1].ServiceFlag)
}

// Self-transfer: a no-op at balance level but still charges fee and
// emits the transfer log (spec §4.6(v)).
func TestSudtTransferSelf(t *testing.T) {
	f := newSudtFixture(t)
	require.NoError(t, f.v.Store(state.SudtAccountID, balanceKey(f.sender), u256LE(1000)))

	args := encodeTransferArgs(f.sender, u256LE(300), u128LE(5), 2)
	ic := f.context(t, args)

	_, err := Sudt{}.Invoke(ic, args)
	require.NoError(t, err)

	senderBal, err := f.v.Load(state.SudtAccountID, balanceKey(f.sender))
	require.NoError(t, err)
	require.Equal(t, u256LE(1000), senderBal)

	logs := f.v.Logs()
	require.Len(t, logs, 2)
	require.Equal(t, state.LogSudtPayFee, logs[0].ServiceFlag)
	require.Equal(t, state.LogSudtTransfer, logs[1].ServiceFlag)
}

// S3 insufficient balance: both balances unchanged, no logs emitted.
func TestSudtTransferInsufficientBalance(t *testing.T) {
	f := newSudtFixture(t)
	require.NoError(t, f.v.Store(state.SudtAccountID, balanceKey(f.sender), u256LE(100)))

	args := encodeTransferArgs(f.receiver, u256LE(200), u128LE(0), 2)
	ic := f.context(t, args)

	_, err := Sudt{}.Invoke(ic, args)
	require.Error(t, err)
	require.Equal(t, gwerr.InsufficientBalance, gwerr.CodeOf(err))

	senderBal, err := f.v.Load(state.SudtAccountID, balanceKey(f.sender))
	require.NoError(t, err)
	require.Equal(t, u256LE(100), senderBal)

	receiverBal, err := f.v.Load(state.SudtAccountID, balanceKey(f.receiver))
	require.NoError(t, err)
	require.Equal(t, [32]byte{}, receiverBal)

	require.Empty(t, f.v.Logs())
}

// S5 unknown args: a third union tag fails closed with UnknownArgs.
func TestSudtUnknownArgs(t *testing.T) {
	f := newSudtFixture(t)
	args := gwkey.LE32(2)
	ic := f.context(t, args)

	_, err := Sudt{}.Invoke(ic, args)
	require.Error(t, err)
	require.Equal(t, gwerr.UnknownArgs, gwerr.CodeOf(err))
}

func TestSudtQuery(t *testing.T) {
	f := newSudtFixture(t)
	require.NoError(t, f.v.Store(state.SudtAccountID, balanceKey(f.sender), u256LE(42)))

	args := encodeQueryArgs(f.sender)
	ic := f.context(t, args)

	ret, err := Sudt{}.Invoke(ic, args)
	require.NoError(t, err)
	var got [32]byte
	copy(got[:], ret)
	require.Equal(t, u256LE(42), got)
}
