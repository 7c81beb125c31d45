package dao

import (
	"github.com/godwoken-go/godwoken/pkg/core/bn"
	"github.com/godwoken-go/godwoken/pkg/core/limits"
	"github.com/godwoken-go/godwoken/pkg/core/state"
	"github.com/godwoken-go/godwoken/pkg/gwerr"
	"github.com/godwoken-go/godwoken/pkg/gwkey"
	"github.com/godwoken-go/godwoken/pkg/registry"
	"github.com/godwoken-go/godwoken/pkg/smt"
)

// View is the off-chain, sequencer-side StateView: a KV SMT plus the
// account bookkeeping (nonce, script hash, script bytes) derived from it,
// a journaled snapshot overlay, and the HostServices collaborators for
// data persistence, signature recovery, and the block-hash oracle.
type View struct {
	trie         *smt.Trie
	accountCount uint32
	scripts      map[uint32][]byte // account id -> script bytes (≤ limits.MaxScript)
	host         HostServices
	journal      *journal
	curSnapshot  uint32
	logs         []state.LogEntry

	// touched records every raw key this View has written, in first-write
	// order, independent of the revert journal: a nonce write is never
	// undone by Revert but must still show up in a witness built from
	// TouchedSince, so it can't rely on journal.entries alone.
	touched [][32]byte
}

// NewView returns an empty View ready to create its first account.
func NewView(host HostServices) *View {
	return &View{
		trie:    smt.NewTrie(),
		scripts: make(map[uint32][]byte),
		host:    host,
		journal: newJournal(),
	}
}

// Root returns the current KV SMT root.
func (v *View) Root() [32]byte {
	v.trie.Normalize()
	return v.trie.Root()
}

// Checkpoint returns the current checkpoint hash.
func (v *View) Checkpoint() [32]byte {
	return smt.CheckpointHash(v.Root(), v.accountCount)
}

// AccountCount implements StateView.
func (v *View) AccountCount() uint32 { return v.accountCount }

func (v *View) rawFetch(key [32]byte) [32]byte {
	return v.trie.Fetch(key)
}

func (v *View) rawStore(key, value [32]byte) {
	old := v.trie.Fetch(key)
	v.journal.record(v.curSnapshot, key, old, !gwkey.IsZero(old))
	v.trie.Update(key, value)
	v.touched = append(v.touched, key)
}

func (v *View) scriptHashField(id uint32) [32]byte {
	return v.rawFetch(gwkey.ScriptHashField(id))
}

func (v *View) exists(id uint32) bool {
	return !gwkey.IsZero(v.scriptHashField(id))
}

func (v *View) requireExists(id uint32) error {
	if !v.exists(id) {
		return gwerr.New(gwerr.AccountNotExists)
	}
	return nil
}

// Load implements StateView / registry.KV.
func (v *View) Load(accountID uint32, userKey []byte) ([32]byte, error) {
	if err := v.requireExists(accountID); err != nil {
		return [32]byte{}, err
	}
	return v.rawFetch(gwkey.AccountKV(accountID, userKey)), nil
}

// Store implements StateView / registry.KV.
func (v *View) Store(accountID uint32, userKey []byte, value [32]byte) error {
	if err := v.requireExists(accountID); err != nil {
		return err
	}
	v.rawStore(gwkey.AccountKV(accountID, userKey), value)
	return nil
}

// GetAccountIDByScriptHash implements StateView.
func (v *View) GetAccountIDByScriptHash(scriptHash [32]byte) (uint32, bool, error) {
	raw := v.rawFetch(gwkey.ScriptHashIndex(scriptHash))
	if gwkey.IsZero(raw) {
		return 0, false, gwerr.New(gwerr.AccountNotExists)
	}
	id := le32(raw[0:4])
	exists := raw[4] == 0x01
	return id, exists, nil
}

// GetScriptHashByAccountID implements StateView.
func (v *View) GetScriptHashByAccountID(id uint32) ([32]byte, error) {
	if err := v.requireExists(id); err != nil {
		return [32]byte{}, err
	}
	return v.scriptHashField(id), nil
}

// GetAccountNonce implements StateView.
func (v *View) GetAccountNonce(id uint32) (uint32, error) {
	if err := v.requireExists(id); err != nil {
		return 0, err
	}
	raw := v.rawFetch(gwkey.NonceField(id))
	return le32(raw[0:4]), nil
}

// SetNonce implements StateView. The nonce write bypasses the snapshot
// journal: spec §4.7 places nonce bookkeeping outside the revertable set,
// so a revert to any snapshot opened before this call must not undo it.
func (v *View) SetNonce(id uint32, nonce uint32) error {
	if err := v.requireExists(id); err != nil {
		return err
	}
	var buf [32]byte
	copy(buf[0:4], gwkey.LE32(nonce))
	key := gwkey.NonceField(id)
	v.trie.Update(key, buf)
	v.touched = append(v.touched, key)
	return nil
}

// GetAccountScript implements StateView.
func (v *View) GetAccountScript(id uint32, offset, length uint32) ([]byte, error) {
	if err := v.requireExists(id); err != nil {
		return nil, err
	}
	script := v.scripts[id]
	return slice(script, offset, length)
}

// CreateAccount implements StateView.
func (v *View) CreateAccount(script []byte) (uint32, error) {
	if len(script) > limits.MaxScript {
		return 0, gwerr.New(gwerr.BufferOverflow)
	}
	h := gwkey.Hash(script)
	if id, exists, err := v.GetAccountIDByScriptHash(h); err == nil && exists {
		_ = id
		return 0, gwerr.New(gwerr.DuplicatedScriptHash)
	}

	id := v.accountCount
	v.rawStore(gwkey.ScriptHashField(id), h)
	var nonceBuf [32]byte
	v.rawStore(gwkey.NonceField(id), nonceBuf)
	v.rawStore(gwkey.ScriptHashIndex(h), gwkey.ScriptHashIndexValue(id))
	v.scripts[id] = append([]byte(nil), script...)
	v.accountCount++
	return id, nil
}

// StoreData implements StateView.
func (v *View) StoreData(data []byte) error {
	if len(data) > limits.MaxStoreData {
		return gwerr.New(gwerr.BufferOverflow)
	}
	h := gwkey.Hash(data)
	v.rawStore(gwkey.DataHash(h), gwkey.DataHashPresentValue())
	if v.host != nil {
		if err := v.host.PersistData(h, data); err != nil {
			return gwerr.Wrap(gwerr.InvalidData, err)
		}
	}
	return nil
}

// LoadData implements StateView.
func (v *View) LoadData(dataHash [32]byte, offset, length uint32) ([]byte, error) {
	if gwkey.IsZero(v.rawFetch(gwkey.DataHash(dataHash))) {
		return nil, gwerr.New(gwerr.DataCellNotFound)
	}
	if v.host == nil {
		return nil, gwerr.New(gwerr.DataCellNotFound)
	}
	data, err := v.host.LoadData(dataHash)
	if err != nil {
		return nil, gwerr.Wrap(gwerr.DataCellNotFound, err)
	}
	return slice(data, offset, length)
}

// Log implements StateView.
func (v *View) Log(entry state.LogEntry) {
	v.logs = append(v.logs, entry)
}

// Logs implements StateView.
func (v *View) Logs() []state.LogEntry { return v.logs }

// PayFee implements StateView: off-chain, this emits a pay-fee log. A
// zero fee amount logs nothing — there is no fee event to account for,
// and S3 (spec §8) requires a failed transfer with fee=0 to leave no
// trace in the log set.
func (v *View) PayFee(payer registry.Address, sudtID uint32, amount [32]byte) error {
	if gwkey.IsZero(amount) {
		return nil
	}
	v.Log(state.LogEntry{
		AccountID:   sudtID,
		ServiceFlag: state.LogSudtPayFee,
		Data:        append(append([]byte(nil), gwkey.LE32(payer.RegID)...), amount[:]...),
	})
	return nil
}

// RecoverAccount implements StateView.
func (v *View) RecoverAccount(message [32]byte, signature []byte, codeHash [32]byte) ([]byte, error) {
	if v.host == nil {
		return nil, gwerr.New(gwerr.SignatureCellNotFound)
	}
	script, err := v.host.RecoverAccount(message, signature, codeHash)
	if err != nil {
		return nil, gwerr.Wrap(gwerr.SignatureCellNotFound, err)
	}
	return script, nil
}

// GetBlockHash implements StateView.
func (v *View) GetBlockHash(number uint64) ([32]byte, error) {
	if v.host == nil {
		return [32]byte{}, gwerr.New(gwerr.NotFound)
	}
	h, err := v.host.GetBlockHash(number)
	if err != nil {
		return [32]byte{}, gwerr.Wrap(gwerr.NotFound, err)
	}
	return h, nil
}

// BnAdd/BnMul/BnPairing implement StateView via pkg/core/bn.
func (v *View) BnAdd(input []byte) ([]byte, error)     { return bn.Add(input) }
func (v *View) BnMul(input []byte) ([]byte, error)     { return bn.Mul(input) }
func (v *View) BnPairing(input []byte) ([]byte, error) { return bn.Pairing(input) }

// Snapshot implements StateView.
func (v *View) Snapshot() (uint32, error) {
	h := v.journal.open()
	v.curSnapshot = h
	return h, nil
}

// Revert implements StateView.
func (v *View) Revert(snapshot uint32) error {
	undo := v.journal.revertTo(snapshot)
	for _, e := range undo {
		if e.existed {
			v.trie.Update(e.key, e.hadValue)
		} else {
			v.trie.Update(e.key, [32]byte{})
		}
	}
	v.curSnapshot = snapshot
	return nil
}

// Fork returns an independent View seeded with a copy of the current KV
// set, scripts, and account count, but a fresh journal and no host. It is
// for speculative, throwaway execution — e.g. a sequencer dry-running a
// candidate block's transactions in parallel with other candidates before
// committing any of them, sequentially, to the canonical View.
func (v *View) Fork() *View {
	leaves := v.trie.Snapshot()
	scripts := make(map[uint32][]byte, len(v.scripts))
	for id, s := range v.scripts {
		scripts[id] = append([]byte(nil), s...)
	}
	return &View{
		trie:         smt.NewTrieFrom(leaves),
		accountCount: v.accountCount,
		scripts:      scripts,
		journal:      newJournal(),
	}
}

// RawValue fetches the current value stored under a precomputed raw SMT
// key, bypassing the account-existence check Load performs. Used when
// assembling a witness pre-image from keys derived analytically (e.g. by
// pkg/core/challenge's tests) rather than from journal history.
func (v *View) RawValue(key [32]byte) [32]byte { return v.rawFetch(key) }

// Mark returns a position that TouchedSince can later use to recover
// exactly the keys written after this point, for assembling a challenge
// witness's KV subset. Unlike the revert journal, this also captures
// nonce writes, since the witness must carry the nonce key whether or not
// it is revertable.
func (v *View) Mark() int { return len(v.touched) }

// TouchedSince returns the deduplicated set of raw SMT keys written since
// mark (as returned by Mark), in first-write order.
func (v *View) TouchedSince(mark int) [][32]byte {
	seen := make(map[[32]byte]bool)
	var out [][32]byte
	for _, k := range v.touched[mark:] {
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	return out
}

// BuildWitness assembles a dao.Witness covering exactly keys: their
// current values, the current account count, and the scripts of every
// account id referenced by accountIDs (so the verifier's GetAccountScript
// has something to serve). load-data and block-hash entries are left for
// the caller to attach, since View has no host-backed copies of them to
// offer generically.
func (v *View) BuildWitness(keys [][32]byte, accountIDs []uint32) Witness {
	kv := make(map[[32]byte][32]byte, len(keys))
	for _, k := range keys {
		kv[k] = v.rawFetch(k)
	}
	scripts := make([]ScriptEntry, 0, len(accountIDs))
	for _, id := range accountIDs {
		if s, ok := v.scripts[id]; ok {
			scripts = append(scripts, ScriptEntry{AccountID: id, Script: s})
		}
	}
	return Witness{KV: kv, AccountCount: v.accountCount, Scripts: scripts}
}

// Proof builds the compact multi-key SMT proof for keys against the
// current (normalized) root.
func (v *View) Proof(keys [][32]byte) smt.Proof {
	v.trie.Normalize()
	return v.trie.BuildProof(keys)
}

func le32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

func slice(data []byte, offset, length uint32) ([]byte, error) {
	if uint64(offset) > uint64(len(data)) {
		return nil, gwerr.New(gwerr.BufferOverflow)
	}
	end := uint64(offset) + uint64(length)
	if end > uint64(len(data)) {
		end = uint64(len(data))
	}
	return data[offset:end], nil
}
