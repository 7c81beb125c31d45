package interop

import (
	"github.com/godwoken-go/godwoken/pkg/core/limits"
	"github.com/godwoken-go/godwoken/pkg/core/state"
	"github.com/godwoken-go/godwoken/pkg/gwerr"
	"github.com/godwoken-go/godwoken/pkg/registry"
)

// syscallTable returns the fixed ABI registry (spec §6 numbering). The VM
// that decodes a contract's bytecode and marshals its register/stack
// arguments into these calls is out of scope (spec §1: "consumed as an
// opaque engine"); pkg/core/native's built-in contracts call the typed
// methods below directly instead of going through this table, which exists
// so the ABI surface is documented and stable for a future VM integration.
func (ic *Context) syscallTable() []Function {
	return []Function{
		{ID: SysCreate, Name: "create"},
		{ID: SysStore, Name: "store"},
		{ID: SysLoad, Name: "load"},
		{ID: SysLoadAccountScript, Name: "load_account_script"},
		{ID: SysSetReturnData, Name: "set_return_data"},
		{ID: SysStoreData, Name: "store_data"},
		{ID: SysLoadData, Name: "load_data"},
		{ID: SysLoadRollupConfig, Name: "load_rollup_config"},
		{ID: SysLoadTransaction, Name: "load_transaction"},
		{ID: SysLoadBlockInfo, Name: "load_block_info"},
		{ID: SysGetBlockHash, Name: "get_block_hash"},
		{ID: SysPayFee, Name: "pay_fee"},
		{ID: SysLog, Name: "log"},
		{ID: SysRecoverAccount, Name: "recover_account"},
		{ID: SysBnAdd, Name: "bn_add"},
		{ID: SysBnMul, Name: "bn_mul"},
		{ID: SysBnPairing, Name: "bn_pairing"},
		{ID: SysSnapshot, Name: "snapshot"},
		{ID: SysRevert, Name: "revert"},
	}
}

// Load implements the `load` syscall (3102).
func (ic *Context) Load(accountID uint32, userKey []byte) ([32]byte, error) {
	return ic.DAO.Load(accountID, userKey)
}

// Store implements the `store` syscall (3101).
func (ic *Context) Store(accountID uint32, userKey []byte, value [32]byte) error {
	return ic.DAO.Store(accountID, userKey, value)
}

// Create implements the `create` syscall (3100).
func (ic *Context) Create(script []byte) (uint32, error) {
	return ic.DAO.CreateAccount(script)
}

// GetAccountIDByScriptHash implements the helper named in spec §4.3.
func (ic *Context) GetAccountIDByScriptHash(h [32]byte) (uint32, bool, error) {
	return ic.DAO.GetAccountIDByScriptHash(h)
}

// GetScriptHashByAccountID implements the helper named in spec §4.3.
func (ic *Context) GetScriptHashByAccountID(id uint32) ([32]byte, error) {
	return ic.DAO.GetScriptHashByAccountID(id)
}

// GetAccountNonce implements the helper named in spec §4.3.
func (ic *Context) GetAccountNonce(id uint32) (uint32, error) {
	return ic.DAO.GetAccountNonce(id)
}

// LoadAccountScript implements the `load_account_script` syscall (3105).
func (ic *Context) LoadAccountScript(id uint32, offset, length uint32) ([]byte, error) {
	return ic.DAO.GetAccountScript(id, offset, length)
}

// SetReturnData implements the `set_return_data` syscall (3201).
func (ic *Context) SetReturnData(data []byte) error {
	if len(data) > limits.MaxReturnData {
		return gwerr.New(gwerr.BufferOverflow)
	}
	ic.ReturnData = data
	return nil
}

// StoreData implements the `store_data` syscall (3301).
func (ic *Context) StoreData(data []byte) error {
	return ic.DAO.StoreData(data)
}

// LoadData implements the `load_data` syscall (3302).
func (ic *Context) LoadData(h [32]byte, offset, length uint32) ([]byte, error) {
	return ic.DAO.LoadData(h, offset, length)
}

// GetBlockHash implements the `get_block_hash` syscall (3404).
func (ic *Context) GetBlockHash(number uint64) ([32]byte, error) {
	return ic.DAO.GetBlockHash(number)
}

// PayFee implements the `pay_fee` syscall (3501).
func (ic *Context) PayFee(payer registry.Address, sudtID uint32, amount [32]byte) error {
	return ic.DAO.PayFee(payer, sudtID, amount)
}

// LogEvent implements the `log` syscall (3502).
func (ic *Context) LogEvent(accountID uint32, serviceFlag uint8, data []byte) {
	ic.DAO.Log(state.LogEntry{AccountID: accountID, ServiceFlag: serviceFlag, Data: data})
}

// RecoverAccount implements the `recover_account` syscall (3503).
func (ic *Context) RecoverAccount(message [32]byte, signature []byte, codeHash [32]byte) ([]byte, error) {
	return ic.DAO.RecoverAccount(message, signature, codeHash)
}

// BnAdd implements the `bn_add` syscall (3601).
func (ic *Context) BnAdd(input []byte) ([]byte, error) { return ic.DAO.BnAdd(input) }

// BnMul implements the `bn_mul` syscall (3602).
func (ic *Context) BnMul(input []byte) ([]byte, error) { return ic.DAO.BnMul(input) }

// BnPairing implements the `bn_pairing` syscall (3603).
func (ic *Context) BnPairing(input []byte) ([]byte, error) { return ic.DAO.BnPairing(input) }

// OpenSnapshot implements the `snapshot` syscall (3701).
func (ic *Context) OpenSnapshot() (uint32, error) { return ic.DAO.Snapshot() }

// Revert implements the `revert` syscall (3702).
func (ic *Context) Revert(snapshot uint32) error { return ic.DAO.Revert(snapshot) }
