// Package native implements the two built-in contracts that participate
// directly in the state model: the meta contract (account creation) and
// the sUDT contract (fungible balances and fee payment). Argument decoding
// follows the same hand-rolled little-endian codec as pkg/core/txcontext,
// since there is no VM here to marshal a richer ABI through.
package native

import (
	"encoding/binary"

	"github.com/godwoken-go/godwoken/pkg/core/limits"
	"github.com/godwoken-go/godwoken/pkg/gwerr"
	"github.com/godwoken-go/godwoken/pkg/registry"
)

// Meta args union tag (spec §6).
const TagCreateAccount uint32 = 0

// sUDT args union tags (spec §6).
const (
	TagQuery    uint32 = 0
	TagTransfer uint32 = 1
)

// CreateAccountArgs is the meta contract's single argument variant.
type CreateAccountArgs struct {
	Script []byte
}

// decodeCreateAccountArgs parses tag(4) || script_len(4) || script.
func decodeCreateAccountArgs(args []byte) (CreateAccountArgs, error) {
	if len(args) < 8 {
		return CreateAccountArgs{}, gwerr.New(gwerr.InvalidData)
	}
	tag := binary.LittleEndian.Uint32(args[0:4])
	if tag != TagCreateAccount {
		return CreateAccountArgs{}, gwerr.New(gwerr.UnknownArgs)
	}
	scriptLen := binary.LittleEndian.Uint32(args[4:8])
	if uint64(scriptLen) > uint64(limits.MaxScript) {
		return CreateAccountArgs{}, gwerr.New(gwerr.BufferOverflow)
	}
	if 8+uint64(scriptLen) != uint64(len(args)) {
		return CreateAccountArgs{}, gwerr.New(gwerr.InvalidData)
	}
	script := make([]byte, scriptLen)
	copy(script, args[8:])
	return CreateAccountArgs{Script: script}, nil
}

// QueryArgs is the sUDT contract's balance-query variant.
type QueryArgs struct {
	Address registry.Address
}

// TransferArgs is the sUDT contract's transfer variant.
type TransferArgs struct {
	To        registry.Address
	Amount    [32]byte // little-endian u256
	FeeAmount [16]byte // little-endian u128
	FeeRegID  uint32
}

// decodeAddress parses reg_id(4) || addr_len(4) || addr from buf, returning
// the address and the number of bytes consumed.
func decodeAddress(buf []byte) (registry.Address, int, error) {
	if len(buf) < 8 {
		return registry.Address{}, 0, gwerr.New(gwerr.InvalidData)
	}
	regID := binary.LittleEndian.Uint32(buf[0:4])
	addrLen := binary.LittleEndian.Uint32(buf[4:8])
	if uint64(addrLen) > uint64(limits.MaxRegistryAddrLen) {
		return registry.Address{}, 0, gwerr.New(gwerr.BufferOverflow)
	}
	if 8+uint64(addrLen) > uint64(len(buf)) {
		return registry.Address{}, 0, gwerr.New(gwerr.InvalidData)
	}
	addr := make([]byte, addrLen)
	copy(addr, buf[8:8+addrLen])
	return registry.Address{RegID: regID, Addr: addr}, 8 + int(addrLen), nil
}

// decodeSudtArgs parses the sUDT args union: tag(4) plus tag-specific
// fields. Exactly one of query/transfer is populated.
func decodeSudtArgs(args []byte) (tag uint32, query QueryArgs, transfer TransferArgs, err error) {
	if len(args) < 4 {
		return 0, QueryArgs{}, TransferArgs{}, gwerr.New(gwerr.InvalidData)
	}
	tag = binary.LittleEndian.Uint32(args[0:4])
	rest := args[4:]
	switch tag {
	case TagQuery:
		addr, n, derr := decodeAddress(rest)
		if derr != nil || n != len(rest) {
			return 0, QueryArgs{}, TransferArgs{}, gwerr.New(gwerr.InvalidData)
		}
		return tag, QueryArgs{Address: addr}, TransferArgs{}, nil
	case TagTransfer:
		to, n, derr := decodeAddress(rest)
		if derr != nil {
			return 0, QueryArgs{}, TransferArgs{}, derr
		}
		rest = rest[n:]
		if len(rest) != 32+16+4 {
			return 0, QueryArgs{}, TransferArgs{}, gwerr.New(gwerr.InvalidData)
		}
		var amount [32]byte
		copy(amount[:], rest[0:32])
		var fee [16]byte
		copy(fee[:], rest[32:48])
		feeRegID := binary.LittleEndian.Uint32(rest[48:52])
		return tag, QueryArgs{}, TransferArgs{To: to, Amount: amount, FeeAmount: fee, FeeRegID: feeRegID}, nil
	default:
		return tag, QueryArgs{}, TransferArgs{}, gwerr.New(gwerr.UnknownArgs)
	}
}
