package dao

import (
	"github.com/godwoken-go/godwoken/pkg/core/limits"
	"github.com/godwoken-go/godwoken/pkg/core/state"
	"github.com/godwoken-go/godwoken/pkg/gwerr"
	"github.com/godwoken-go/godwoken/pkg/gwkey"
	"github.com/godwoken-go/godwoken/pkg/registry"
)

// ScriptEntry is one script the challenge witness carries, keyed by its
// account id (for newly created accounts within the re-executed
// transaction) so CreateAccount can validate and re-derive it on-chain.
type ScriptEntry struct {
	AccountID uint32
	Script    []byte
}

// LoadDataEntry is one (hash, bytes) pair the witness supplies for
// load_data, used when the bytes are not reachable through a referenced
// read-only cell.
type LoadDataEntry struct {
	Hash [32]byte
	Data []byte
}

// BlockHashEntry is one pre-seeded block-number -> hash mapping from the
// verifier's 256-entry window.
type BlockHashEntry struct {
	Number uint64
	Hash   [32]byte
}

// Witness bundles everything the challenge verifier needs to reconstruct
// state and re-execute a single transaction: the KV subset the generator
// touched, the subset-restricted view of account metadata needed to
// resolve existence/nonce/script-hash for every account id the
// transaction references, script and load-data witnesses, and the
// block-hash window.
type Witness struct {
	KV            map[[32]byte][32]byte
	AccountCount  uint32
	Scripts       []ScriptEntry
	LoadData      []LoadDataEntry
	BlockHashes   []BlockHashEntry
	ReturnDataHash [32]byte
	UsesSnapshot  bool // not read by challenge.Verify, which takes its admission flags from challenge.Input
}

// WitnessView is the on-chain StateView: it never touches a full SMT, a
// disk store, or a live host. Every lookup is served from the witness
// maps assembled at challenge admission. A key the witness omits reads as
// the all-zero value; WitnessView does not itself detect or report omitted
// keys.
type WitnessView struct {
	kv           map[[32]byte][32]byte
	accountCount uint32
	scripts      map[uint32][]byte
	loadData     map[[32]byte][]byte
	blockHashes  map[uint64][32]byte
	challenged   uint64 // challenged block number, for GetBlockHash's window check
	logs         []state.LogEntry
	recovered    []byte
}

// NewWitnessView builds a WitnessView from w, for a challenge against
// block challengedBlockNumber.
func NewWitnessView(w Witness, challengedBlockNumber uint64) *WitnessView {
	scripts := make(map[uint32][]byte, len(w.Scripts))
	for _, s := range w.Scripts {
		scripts[s.AccountID] = s.Script
	}
	loadData := make(map[[32]byte][]byte, len(w.LoadData))
	for _, d := range w.LoadData {
		loadData[d.Hash] = d.Data
	}
	blockHashes := make(map[uint64][32]byte, len(w.BlockHashes))
	for _, b := range w.BlockHashes {
		blockHashes[b.Number] = b.Hash
	}
	kv := w.KV
	if kv == nil {
		kv = make(map[[32]byte][32]byte)
	}
	return &WitnessView{
		kv:           kv,
		accountCount: w.AccountCount,
		scripts:      scripts,
		loadData:     loadData,
		blockHashes:  blockHashes,
		challenged:   challengedBlockNumber,
	}
}

// KV exposes the live witness KV map so the challenge verifier can re-run
// the SMT proof check and take a post-execution snapshot for re-proving.
func (v *WitnessView) KV() map[[32]byte][32]byte { return v.kv }

func (v *WitnessView) exists(id uint32) bool {
	return !gwkey.IsZero(v.kv[gwkey.ScriptHashField(id)])
}

func (v *WitnessView) requireExists(id uint32) error {
	if !v.exists(id) {
		return gwerr.New(gwerr.AccountNotExists)
	}
	return nil
}

// Load implements StateView / registry.KV.
func (v *WitnessView) Load(accountID uint32, userKey []byte) ([32]byte, error) {
	if err := v.requireExists(accountID); err != nil {
		return [32]byte{}, err
	}
	return v.kv[gwkey.AccountKV(accountID, userKey)], nil
}

// Store implements StateView / registry.KV.
func (v *WitnessView) Store(accountID uint32, userKey []byte, value [32]byte) error {
	if err := v.requireExists(accountID); err != nil {
		return err
	}
	v.kv[gwkey.AccountKV(accountID, userKey)] = value
	return nil
}

// GetAccountIDByScriptHash implements StateView.
func (v *WitnessView) GetAccountIDByScriptHash(scriptHash [32]byte) (uint32, bool, error) {
	raw := v.kv[gwkey.ScriptHashIndex(scriptHash)]
	if gwkey.IsZero(raw) {
		return 0, false, gwerr.New(gwerr.AccountNotExists)
	}
	id := le32(raw[0:4])
	return id, raw[4] == 0x01, nil
}

// GetScriptHashByAccountID implements StateView.
func (v *WitnessView) GetScriptHashByAccountID(id uint32) ([32]byte, error) {
	if err := v.requireExists(id); err != nil {
		return [32]byte{}, err
	}
	return v.kv[gwkey.ScriptHashField(id)], nil
}

// GetAccountNonce implements StateView.
func (v *WitnessView) GetAccountNonce(id uint32) (uint32, error) {
	if err := v.requireExists(id); err != nil {
		return 0, err
	}
	raw := v.kv[gwkey.NonceField(id)]
	return le32(raw[0:4]), nil
}

// SetNonce implements StateView.
func (v *WitnessView) SetNonce(id uint32, nonce uint32) error {
	if err := v.requireExists(id); err != nil {
		return err
	}
	var buf [32]byte
	copy(buf[0:4], gwkey.LE32(nonce))
	v.kv[gwkey.NonceField(id)] = buf
	return nil
}

// GetAccountScript implements StateView, serving bytes from the script
// witness rather than a host call.
func (v *WitnessView) GetAccountScript(id uint32, offset, length uint32) ([]byte, error) {
	if err := v.requireExists(id); err != nil {
		return nil, err
	}
	script, ok := v.scripts[id]
	if !ok {
		return nil, gwerr.New(gwerr.ScriptNotFound)
	}
	return slice(script, offset, length)
}

// CreateAccount implements StateView: it stores the script it is given and
// adds it to the view's scripts; it does not check the script against the
// script witness, and relies on the caller (pkg/core/native.Meta) to have
// checked it against the rollup config's allow-lists before calling here.
func (v *WitnessView) CreateAccount(script []byte) (uint32, error) {
	if len(script) > limits.MaxScript {
		return 0, gwerr.New(gwerr.BufferOverflow)
	}
	h := gwkey.Hash(script)
	if _, exists, err := v.GetAccountIDByScriptHash(h); err == nil && exists {
		return 0, gwerr.New(gwerr.DuplicatedScriptHash)
	}
	id := v.accountCount
	v.kv[gwkey.ScriptHashField(id)] = h
	v.kv[gwkey.NonceField(id)] = [32]byte{}
	v.kv[gwkey.ScriptHashIndex(h)] = gwkey.ScriptHashIndexValue(id)
	if v.scripts == nil {
		v.scripts = make(map[uint32][]byte)
	}
	v.scripts[id] = append([]byte(nil), script...)
	v.accountCount++
	return id, nil
}

// StoreData implements StateView: only the presence flip is committed
// on-chain, the bytes themselves are never persisted by the verifier.
func (v *WitnessView) StoreData(data []byte) error {
	if len(data) > limits.MaxStoreData {
		return gwerr.New(gwerr.BufferOverflow)
	}
	h := gwkey.Hash(data)
	v.kv[gwkey.DataHash(h)] = gwkey.DataHashPresentValue()
	return nil
}

// LoadData implements StateView, serving bytes from the load-data witness
// or, failing that, reporting DataCellNotFound (the referenced-read-only-
// cell fallback described in spec §4.3 is a concern of the caller that
// assembles the witness, not of this in-memory view).
func (v *WitnessView) LoadData(dataHash [32]byte, offset, length uint32) ([]byte, error) {
	if gwkey.IsZero(v.kv[gwkey.DataHash(dataHash)]) {
		return nil, gwerr.New(gwerr.DataCellNotFound)
	}
	data, ok := v.loadData[dataHash]
	if !ok {
		return nil, gwerr.New(gwerr.DataCellNotFound)
	}
	return slice(data, offset, length)
}

// Log implements StateView.
func (v *WitnessView) Log(entry state.LogEntry) { v.logs = append(v.logs, entry) }

// Logs implements StateView.
func (v *WitnessView) Logs() []state.LogEntry { return v.logs }

// PayFee implements StateView: a no-op on-chain, per spec §4.3/§9 — fee
// accounting is outside the fraud-proof guarantee.
func (v *WitnessView) PayFee(_ registry.Address, _ uint32, _ [32]byte) error {
	return nil
}

// RecoverAccount implements StateView by returning the script pre-seeded
// through SetRecoveredScript, whatever message, signature and code hash it
// is called with; it does not scan the challenge transaction's inputs.
// Without a pre-seeded script it fails with SignatureCellNotFound.
func (v *WitnessView) RecoverAccount(_ [32]byte, _ []byte, _ [32]byte) ([]byte, error) {
	if v.recovered == nil {
		return nil, gwerr.New(gwerr.SignatureCellNotFound)
	}
	return v.recovered, nil
}

// SetRecoveredScript pre-seeds the result RecoverAccount will return;
// pkg/core/challenge passes Input.RecoveredScript through unchanged.
func (v *WitnessView) SetRecoveredScript(script []byte) { v.recovered = script }

// GetBlockHash implements StateView, enforcing the [challenged-256,
// challenged-1] window from spec §4.3/§8.
func (v *WitnessView) GetBlockHash(number uint64) ([32]byte, error) {
	if v.challenged == 0 || number >= v.challenged || number+limits.MaxBlockHashWindow < v.challenged {
		return [32]byte{}, gwerr.New(gwerr.NotFound)
	}
	h, ok := v.blockHashes[number]
	if !ok {
		return [32]byte{}, gwerr.New(gwerr.NotFound)
	}
	return h, nil
}

// BnAdd/BnMul/BnPairing implement StateView: unimplemented on-chain, per
// the Open Question resolution in SPEC_FULL.md §9.
func (v *WitnessView) BnAdd(_ []byte) ([]byte, error)     { return nil, gwerr.New(gwerr.Unimplemented) }
func (v *WitnessView) BnMul(_ []byte) ([]byte, error)     { return nil, gwerr.New(gwerr.Unimplemented) }
func (v *WitnessView) BnPairing(_ []byte) ([]byte, error) { return nil, gwerr.New(gwerr.Unimplemented) }

// Snapshot/Revert implement StateView: unimplemented on-chain, per the
// Open Question resolution in SPEC_FULL.md §9 (admission-time rejection is
// handled earlier, by pkg/core/txcontext).
func (v *WitnessView) Snapshot() (uint32, error)    { return 0, gwerr.New(gwerr.Unimplemented) }
func (v *WitnessView) Revert(_ uint32) error        { return gwerr.New(gwerr.Unimplemented) }

// AccountCount implements StateView.
func (v *WitnessView) AccountCount() uint32 { return v.accountCount }
