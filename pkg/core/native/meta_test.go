package native

import (
	"testing"

	"github.com/godwoken-go/godwoken/pkg/core/dao"
	"github.com/godwoken-go/godwoken/pkg/core/interop"
	"github.com/godwoken-go/godwoken/pkg/core/state"
	"github.com/godwoken-go/godwoken/pkg/gwerr"
	"github.com/godwoken-go/godwoken/pkg/gwkey"
	"github.com/stretchr/testify/require"
)

func bootstrapAccounts(t *testing.T, v *dao.View, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		_, err := v.CreateAccount([]byte{byte(i), 0xAA})
		require.NoError(t, err)
	}
}

func metaArgs(script []byte) []byte {
	out := make([]byte, 0, 8+len(script))
	out = append(out, gwkey.LE32(TagCreateAccount)...)
	out = append(out, gwkey.LE32(uint32(len(script)))...)
	out = append(out, script...)
	return out
}

// S1 Create account: invoking the meta contract on a fresh state allocates
// the next sequential id and leaves no trace on a duplicate call.
func TestMetaCreateAccount(t *testing.T) {
	v := dao.NewView(nil)
	bootstrapAccounts(t, v, 5) // accounts 0..4, account_count=5

	script := []byte("brand-new-script")
	tx := state.TxContext{FromID: 0, ToID: state.MetaAccountID, Args: metaArgs(script)}
	ic, err := interop.NewContext(v, tx, state.BlockInfo{}, nil)
	require.NoError(t, err)

	ret, err := Meta{}.Invoke(ic, tx.Args)
	require.NoError(t, err)
	require.Equal(t, gwkey.LE32(5), ret)
	require.Equal(t, uint32(6), v.AccountCount())

	h := gwkey.Hash(script)
	scriptHash, err := v.GetScriptHashByAccountID(5)
	require.NoError(t, err)
	require.Equal(t, h, scriptHash)
	nonce, err := v.GetAccountNonce(5)
	require.NoError(t, err)
	require.Equal(t, uint32(0), nonce)

	preCount := v.AccountCount()
	preRoot := v.Root()
	_, err = Meta{}.Invoke(ic, metaArgs(script))
	require.Error(t, err)
	require.Equal(t, gwerr.DuplicatedScriptHash, gwerr.CodeOf(err))
	require.Equal(t, preCount, v.AccountCount())
	require.Equal(t, preRoot, v.Root())
}

// S5-style: an unrecognized args tag fails closed with UnknownArgs.
func TestMetaUnknownTag(t *testing.T) {
	v := dao.NewView(nil)
	bootstrapAccounts(t, v, 1)
	args := append(append([]byte{}, gwkey.LE32(7)...), gwkey.LE32(0)...)
	tx := state.TxContext{FromID: 0, ToID: state.MetaAccountID, Args: args}
	ic, err := interop.NewContext(v, tx, state.BlockInfo{}, nil)
	require.NoError(t, err)

	_, err = Meta{}.Invoke(ic, tx.Args)
	require.Error(t, err)
	require.Equal(t, gwerr.UnknownArgs, gwerr.CodeOf(err))
}
