// Package limits centralizes the static size and quantity caps enforced at
// the core's boundaries. Exceeding any of these is always a BufferOverflow
// fatal error, never a silent clamp.
package limits

const (
	// MaxBlockInfo is the maximum serialized size of a BlockInfo.
	MaxBlockInfo = 256

	// MaxL2Tx is the maximum serialized size of an L2 transaction.
	MaxL2Tx = 132 * 1024
	// MaxArgs is the maximum size of a transaction's args payload.
	MaxArgs = 128 * 1024

	// MaxReturnData is the maximum size of a contract's return-data buffer.
	MaxReturnData = 128 * 1024

	// MaxStoreData is the maximum size of a single store_data payload.
	MaxStoreData = 25 * 1024

	// MaxScript is the maximum serialized size of an account's script.
	MaxScript = 256

	// MaxKVPairsPerTx is the maximum number of KV pairs a single
	// transaction may read or write.
	MaxKVPairsPerTx = 1024

	// MaxWitness is the maximum serialized size of a challenge witness.
	MaxWitness = 300 * 1024

	// MaxRollupConfig is the maximum serialized size of the rollup config.
	MaxRollupConfig = 4 * 1024

	// MaxRegistryAddrLen is the maximum length of a registry address
	// payload in the current profile.
	MaxRegistryAddrLen = 20

	// MaxBlockHashWindow is the number of most-recent block hashes the
	// verifier's block-hash SMT may hold.
	MaxBlockHashWindow = 256

	// MaxScriptEntries is the capacity of the challenge verifier's
	// script-entries array.
	MaxScriptEntries = 100

	// MaxLoadDataEntries is the capacity of the challenge verifier's
	// load-data array.
	MaxLoadDataEntries = 100
)
