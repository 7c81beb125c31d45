// Package state defines the entities the core's state model is built
// from: accounts, block info, transaction context, and the persisted
// global state header.
package state

// Account is a Layer-2 account: a sequentially allocated id, the script
// hash that is its cryptographic identity, a monotonically advancing
// nonce, and the (immutable once set) script bytes.
type Account struct {
	ID         uint32
	ScriptHash [32]byte
	Nonce      uint32
	Script     []byte
}

// Exists reports whether the account has been created, i.e. whether its
// script hash is non-zero.
func (a *Account) Exists() bool {
	return a != nil && a.ScriptHash != [32]byte{}
}

// Reserved account ids fixed by the current configuration.
const (
	// MetaAccountID is the system/meta account (account creation).
	MetaAccountID uint32 = 0
	// SudtAccountID is the native-token sUDT account.
	SudtAccountID uint32 = 1
	// RegistryAccountID is the default registry contract account.
	RegistryAccountID uint32 = 2
)

// BlockInfo carries the subset of block metadata visible to contracts.
type BlockInfo struct {
	Number          uint64
	TimestampMs     uint64
	BlockProducer   []byte // registry address bytes
}

// TxContext is the parsed view of a single Layer-2 transaction.
type TxContext struct {
	FromID uint32
	ToID   uint32
	Nonce  uint32
	Args   []byte
}

// Status is the two-variant rollup global status.
type Status struct {
	Reverting        bool
	NextBlockNumber  uint64
	ChallengerID     uint32
}

// AccountMerkleState pairs a KV SMT root with the account count it was
// computed over.
type AccountMerkleState struct {
	Root         [32]byte
	AccountCount uint32
}

// GlobalState is the on-chain persisted rollup header.
type GlobalState struct {
	Version                  byte
	AccountMerkle            AccountMerkleState
	BlockMerkleRoot          [32]byte
	LastFinalizedBlockNumber uint64
	RollupConfigHash         [32]byte
	Status                   Status
}

// Log service flags, per the wire spec.
const (
	LogSudtTransfer  uint8 = 0
	LogSudtPayFee    uint8 = 1
	LogPolyjuiceSys  uint8 = 2
	LogPolyjuiceUser uint8 = 3
)

// LogEntry is a diagnostic event recorded by a syscall; it never affects
// state and is advisory only.
type LogEntry struct {
	AccountID   uint32
	ServiceFlag uint8
	Data        []byte
}
