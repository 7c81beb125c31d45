// Package gwkey derives the raw 32-byte state keys used throughout the
// core from structured entities (accounts, fields, registry entries, data
// hashes) and encodes the little-endian integers and length-prefixed byte
// strings those derivations are built from. Every function here must be
// byte-for-byte reproducible between the off-chain generator and the
// on-chain verifier.
package gwkey

import (
	"encoding/binary"

	"golang.org/x/crypto/blake2b"
)

// Size of a raw SMT key or value.
const Size = 32

// field tags for account field keys.
const (
	FieldNonce      byte = 1
	FieldScriptHash byte = 2
)

// tags placed after le32(0) in the hashed pre-image of the script-hash
// index and data-hash set keys.
const (
	flagScriptHashIndex byte = 0x03
	flagDataHashSet     byte = 0x04
)

// LE32 encodes v as 4 little-endian bytes.
func LE32(v uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return b
}

// LE64 encodes v as 8 little-endian bytes.
func LE64(v uint64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, v)
	return b
}

// Hash blake2b-256-hashes the concatenation of parts into a raw SMT key.
func Hash(parts ...[]byte) [32]byte {
	h := make([]byte, 0, 64)
	for _, p := range parts {
		h = append(h, p...)
	}
	return blake2b.Sum256(h)
}

// AccountKV derives the raw SMT key for a user-defined key of an account's
// logical KV map: blake2b(le32(id) || 0x00 || user_key).
func AccountKV(id uint32, userKey []byte) [32]byte {
	return Hash(LE32(id), []byte{0x00}, userKey)
}

// fieldKey builds the (unhashed) account field key le32(id) || tag || zero-pad.
func fieldKey(id uint32, tag byte) [32]byte {
	var out [32]byte
	copy(out[0:4], LE32(id))
	out[4] = tag
	return out
}

// NonceField returns the (unhashed) field key for an account's nonce.
func NonceField(id uint32) [32]byte { return fieldKey(id, FieldNonce) }

// ScriptHashField returns the (unhashed) field key for an account's script hash.
func ScriptHashField(id uint32) [32]byte { return fieldKey(id, FieldScriptHash) }

// ScriptHashIndex derives the raw key for the script-hash -> id index:
// blake2b(le32(0) || 0x03 || script_hash).
func ScriptHashIndex(scriptHash [32]byte) [32]byte {
	return Hash(LE32(0), []byte{flagScriptHashIndex}, scriptHash[:])
}

// ScriptHashIndexValue encodes the script-hash index value: le32(id) || 0x01
// || zero-padding. The trailing 0x01 is the explicit exists flag.
func ScriptHashIndexValue(id uint32) [32]byte {
	var out [32]byte
	copy(out[0:4], LE32(id))
	out[4] = 0x01
	return out
}

// DataHash derives the raw key for the data-hash presence set:
// blake2b(le32(0) || 0x04 || data_hash).
func DataHash(dataHash [32]byte) [32]byte {
	return Hash(LE32(0), []byte{flagDataHashSet}, dataHash[:])
}

// DataHashPresentValue encodes the data-hash presence value: le32(1) ||
// zero-padding.
func DataHashPresentValue() [32]byte {
	var out [32]byte
	copy(out[0:4], LE32(1))
	return out
}

// IsZero reports whether v is the all-zero 32-byte value (the SMT's
// canonical "absent" value).
func IsZero(v [32]byte) bool {
	return v == [32]byte{}
}
