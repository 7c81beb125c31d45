// Package txcontext parses the raw transaction and block-info wire
// records into pkg/core/state values, builds the per-transaction
// interop.Context (context_init), and commits the sender-nonce bump at
// the end of execution (finalize) — spec §4.4.
package txcontext

import (
	"encoding/binary"

	"github.com/godwoken-go/godwoken/pkg/core/limits"
	"github.com/godwoken-go/godwoken/pkg/core/state"
	"github.com/godwoken-go/godwoken/pkg/gwerr"
)

// SignatureLen is the fixed size of a signed transaction's signature.
const SignatureLen = 65

// ParseTx decodes a raw L2 transaction:
// from_id(4) || to_id(4) || nonce(4) || args_len(4) || args.
func ParseTx(raw []byte) (state.TxContext, error) {
	if len(raw) > limits.MaxL2Tx {
		return state.TxContext{}, gwerr.New(gwerr.BufferOverflow)
	}
	if len(raw) < 16 {
		return state.TxContext{}, gwerr.New(gwerr.InvalidData)
	}
	fromID := binary.LittleEndian.Uint32(raw[0:4])
	toID := binary.LittleEndian.Uint32(raw[4:8])
	nonce := binary.LittleEndian.Uint32(raw[8:12])
	argsLen := binary.LittleEndian.Uint32(raw[12:16])
	if uint64(argsLen) > uint64(limits.MaxArgs) {
		return state.TxContext{}, gwerr.New(gwerr.BufferOverflow)
	}
	if 16+uint64(argsLen) != uint64(len(raw)) {
		return state.TxContext{}, gwerr.New(gwerr.InvalidData)
	}
	args := make([]byte, argsLen)
	copy(args, raw[16:])
	return state.TxContext{FromID: fromID, ToID: toID, Nonce: nonce, Args: args}, nil
}

// SerializeTx re-encodes tx into the same wire format ParseTx consumes:
// the raw bytes whose blake2b hash goes into a CBMT leaf hash (spec
// §4.4/§8: blake2b(tx_index || blake2b(tx))).
func SerializeTx(tx state.TxContext) []byte {
	out := make([]byte, 16+len(tx.Args))
	binary.LittleEndian.PutUint32(out[0:4], tx.FromID)
	binary.LittleEndian.PutUint32(out[4:8], tx.ToID)
	binary.LittleEndian.PutUint32(out[8:12], tx.Nonce)
	binary.LittleEndian.PutUint32(out[12:16], uint32(len(tx.Args)))
	copy(out[16:], tx.Args)
	return out
}

// ParseBlockInfo decodes a raw block-info record:
// number(8) || timestamp_ms(8) || producer_len(4) || producer.
func ParseBlockInfo(raw []byte) (state.BlockInfo, error) {
	if len(raw) > limits.MaxBlockInfo {
		return state.BlockInfo{}, gwerr.New(gwerr.BufferOverflow)
	}
	if len(raw) < 20 {
		return state.BlockInfo{}, gwerr.New(gwerr.InvalidData)
	}
	number := binary.LittleEndian.Uint64(raw[0:8])
	ts := binary.LittleEndian.Uint64(raw[8:16])
	producerLen := binary.LittleEndian.Uint32(raw[16:20])
	if 20+uint64(producerLen) != uint64(len(raw)) {
		return state.BlockInfo{}, gwerr.New(gwerr.InvalidData)
	}
	producer := make([]byte, producerLen)
	copy(producer, raw[20:])
	return state.BlockInfo{Number: number, TimestampMs: ts, BlockProducer: producer}, nil
}
