// Package registry implements the bidirectional mapping between an
// internal 32-byte script hash and an external registry address
// (registry-id + variable-length payload). Both directions live in the
// account KV of a single registry account, keyed by a 4-byte flag so the
// two maps never collide.
package registry

import (
	"github.com/godwoken-go/godwoken/pkg/core/limits"
	"github.com/godwoken-go/godwoken/pkg/gwerr"
	"github.com/godwoken-go/godwoken/pkg/gwkey"
)

const (
	flagByScriptHash uint32 = 1
	flagByAddress    uint32 = 2
)

// Address is an external identity: a registry id plus a variable-length
// payload capped at limits.MaxRegistryAddrLen bytes.
type Address struct {
	RegID uint32
	Addr  []byte
}

// KV is the minimal account-KV accessor the registry needs; dao.View and
// dao.WitnessView both satisfy it.
type KV interface {
	Load(accountID uint32, userKey []byte) ([32]byte, error)
	Store(accountID uint32, userKey []byte, value [32]byte) error
}

// Registry resolves script hashes to registry addresses and back, through
// the account KV of accountID.
type Registry struct {
	kv        KV
	accountID uint32
}

// New returns a Registry backed by the account KV of accountID.
func New(kv KV, accountID uint32) *Registry {
	return &Registry{kv: kv, accountID: accountID}
}

// encodeAddress packs {reg_id, addr_len, addr} into the fixed 32-byte
// serialization shared by both directions of the mapping.
func encodeAddress(a Address) ([32]byte, error) {
	if len(a.Addr) > limits.MaxRegistryAddrLen {
		return [32]byte{}, gwerr.New(gwerr.BufferOverflow)
	}
	var out [32]byte
	copy(out[0:4], gwkey.LE32(a.RegID))
	copy(out[4:8], gwkey.LE32(uint32(len(a.Addr))))
	copy(out[8:8+len(a.Addr)], a.Addr)
	return out, nil
}

func decodeAddress(buf [32]byte) (Address, error) {
	regID := le32(buf[0:4])
	addrLen := le32(buf[4:8])
	if addrLen > limits.MaxRegistryAddrLen {
		return Address{}, gwerr.New(gwerr.BufferOverflow)
	}
	addr := make([]byte, addrLen)
	copy(addr, buf[8:8+addrLen])
	return Address{RegID: regID, Addr: addr}, nil
}

func le32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

func byScriptHashKey(scriptHash [32]byte) []byte {
	buf := make([]byte, 0, 36)
	buf = append(buf, gwkey.LE32(flagByScriptHash)...)
	buf = append(buf, scriptHash[:]...)
	return buf
}

func byAddressKey(addr [32]byte) []byte {
	buf := make([]byte, 0, 36)
	buf = append(buf, gwkey.LE32(flagByAddress)...)
	buf = append(buf, addr[:]...)
	return buf
}

// Set atomically records both directions of the mapping between
// scriptHash and addr.
func (r *Registry) Set(scriptHash [32]byte, addr Address) error {
	enc, err := encodeAddress(addr)
	if err != nil {
		return err
	}
	if err := r.kv.Store(r.accountID, byScriptHashKey(scriptHash), enc); err != nil {
		return err
	}
	return r.kv.Store(r.accountID, byAddressKey(enc), scriptHash)
}

// GetAddressByScriptHash resolves scriptHash to its registered address, or
// gwerr.NotFound if no mapping has been recorded.
func (r *Registry) GetAddressByScriptHash(scriptHash [32]byte) (Address, error) {
	v, err := r.kv.Load(r.accountID, byScriptHashKey(scriptHash))
	if err != nil {
		return Address{}, err
	}
	if gwkey.IsZero(v) {
		return Address{}, gwerr.New(gwerr.NotFound)
	}
	return decodeAddress(v), nil
}

// GetScriptHashByAddress resolves addr to its registered script hash, or
// gwerr.NotFound if no mapping has been recorded.
func (r *Registry) GetScriptHashByAddress(addr Address) ([32]byte, error) {
	enc, err := encodeAddress(addr)
	if err != nil {
		return [32]byte{}, err
	}
	v, err := r.kv.Load(r.accountID, byAddressKey(enc))
	if err != nil {
		return [32]byte{}, err
	}
	if gwkey.IsZero(v) {
		return [32]byte{}, gwerr.New(gwerr.NotFound)
	}
	return v, nil
}
