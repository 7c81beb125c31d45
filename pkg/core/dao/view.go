// Package dao implements the state-model operations of spec §4.3 against
// two interchangeable backends: View (off-chain, backed by an in-memory KV
// SMT plus pluggable HostServices) and WitnessView (on-chain,
// backed purely by a challenge witness). Both satisfy StateView so
// pkg/core/interop's syscalls are written once and run unmodified in the
// sequencer and the verifier — the central determinism requirement of the
// core.
package dao

import (
	"github.com/godwoken-go/godwoken/pkg/core/state"
	"github.com/godwoken-go/godwoken/pkg/registry"
)

// StateView is the full state-model surface a syscall dispatcher needs.
// Every method returns (value, error) where error, if non-nil, is a
// *gwerr.Error carrying one of the codes from spec §7.
type StateView interface {
	registry.KV

	GetAccountIDByScriptHash(scriptHash [32]byte) (id uint32, exists bool, err error)
	GetScriptHashByAccountID(id uint32) ([32]byte, error)
	GetAccountNonce(id uint32) (uint32, error)
	GetAccountScript(id uint32, offset, length uint32) ([]byte, error)
	CreateAccount(script []byte) (uint32, error)

	StoreData(data []byte) error
	LoadData(dataHash [32]byte, offset, length uint32) ([]byte, error)

	Log(entry state.LogEntry)
	PayFee(payer registry.Address, sudtID uint32, amount [32]byte) error
	RecoverAccount(message [32]byte, signature []byte, codeHash [32]byte) ([]byte, error)
	GetBlockHash(number uint64) ([32]byte, error)

	BnAdd(input []byte) ([]byte, error)
	BnMul(input []byte) ([]byte, error)
	BnPairing(input []byte) ([]byte, error)

	Snapshot() (uint32, error)
	Revert(snapshot uint32) error

	AccountCount() uint32
	SetNonce(id uint32, nonce uint32) error

	// Logs returns every LogEntry recorded so far, for test assertions and
	// sequencer-side bookkeeping. Logs are advisory and never rolled back.
	Logs() []state.LogEntry
}

// HostServices is the set of collaborators the off-chain View delegates
// to for data that does not live in the KV SMT itself: persisted
// store_data bytes, signature recovery, and the L1 block-hash oracle.
// Out of scope per spec §1 ("not part of the core"); the verifier never
// needs an implementation since it is witness-driven.
type HostServices interface {
	PersistData(dataHash [32]byte, data []byte) error
	LoadData(dataHash [32]byte) ([]byte, error)
	RecoverAccount(message [32]byte, signature []byte, codeHash [32]byte) ([]byte, error)
	GetBlockHash(number uint64) ([32]byte, error)
}
