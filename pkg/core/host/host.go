// Package host implements dao.HostServices: the off-chain generator's
// side-channel for data persisted outside the KV SMT (store_data bytes),
// signature recovery, and the L1 block-hash oracle. None of this is part
// of the deterministic core (spec §1 treats it as an external
// collaborator); Host just wires the pluggable pieces (a
// pkg/core/storage.Store, an LRU read cache, and caller-supplied
// signature/block-hash resolvers) behind the one interface dao.View
// expects.
package host

import (
	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"

	"github.com/godwoken-go/godwoken/pkg/core/dao"
	"github.com/godwoken-go/godwoken/pkg/core/storage"
)

var _ dao.HostServices = (*Host)(nil)

// Recoverer resolves a (message, signature, codeHash) triple to the
// signer's lock script. The signature scheme itself is out of scope for
// the core (spec §1); a deployment wires in whatever scheme it uses.
type Recoverer interface {
	Recover(message [32]byte, signature []byte, codeHash [32]byte) ([]byte, error)
}

// BlockHashSource resolves an L1-anchored block number to its hash. Fed
// by whatever chain indexer the deployment runs; out of scope per §1.
type BlockHashSource interface {
	BlockHash(number uint64) ([32]byte, error)
}

// Host implements dao.HostServices over a storage.Store, with an LRU
// cache in front of it for data cells that were just written (the common
// case: a generator run that stores and then immediately reloads the
// same blob within one block).
type Host struct {
	store     storage.Store
	cache     *lru.Cache
	recoverer Recoverer
	hashes    BlockHashSource
}

// New returns a Host persisting data cells through store, caching up to
// cacheSize of the most recently touched values. recoverer and hashes may
// be nil; calls that need them then fail rather than panicking.
func New(store storage.Store, cacheSize int, recoverer Recoverer, hashes BlockHashSource) (*Host, error) {
	cache, err := lru.New(cacheSize)
	if err != nil {
		return nil, errors.Wrap(err, "host: new cache")
	}
	return &Host{store: store, cache: cache, recoverer: recoverer, hashes: hashes}, nil
}

func dataStoreKey(h [32]byte) []byte {
	key := make([]byte, 0, 5+32)
	key = append(key, "data:"...)
	return append(key, h[:]...)
}

// PersistData implements dao.HostServices.
func (h *Host) PersistData(dataHash [32]byte, data []byte) error {
	if err := h.store.Put(dataStoreKey(dataHash), data); err != nil {
		return errors.Wrap(err, "host: persist data")
	}
	h.cache.Add(dataHash, append([]byte(nil), data...))
	return nil
}

// LoadData implements dao.HostServices, serving from the LRU cache
// before falling back to the store.
func (h *Host) LoadData(dataHash [32]byte) ([]byte, error) {
	if v, ok := h.cache.Get(dataHash); ok {
		return v.([]byte), nil
	}
	data, err := h.store.Get(dataStoreKey(dataHash))
	if err != nil {
		return nil, errors.Wrap(err, "host: load data")
	}
	h.cache.Add(dataHash, append([]byte(nil), data...))
	return data, nil
}

// RecoverAccount implements dao.HostServices.
func (h *Host) RecoverAccount(message [32]byte, signature []byte, codeHash [32]byte) ([]byte, error) {
	if h.recoverer == nil {
		return nil, errors.New("host: no recoverer configured")
	}
	return h.recoverer.Recover(message, signature, codeHash)
}

// GetBlockHash implements dao.HostServices.
func (h *Host) GetBlockHash(number uint64) ([32]byte, error) {
	if h.hashes == nil {
		return [32]byte{}, errors.New("host: no block hash source configured")
	}
	return h.hashes.BlockHash(number)
}
