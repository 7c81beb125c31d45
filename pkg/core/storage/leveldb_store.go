package storage

import (
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// LevelDBStore is a durable Store backed by goleveldb, for sequencer nodes
// that need persisted data cells to survive a restart.
type LevelDBStore struct {
	db *leveldb.DB
}

// NewLevelDBStore opens (creating if necessary) a LevelDB store at path.
func NewLevelDBStore(path string) (*LevelDBStore, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, err
	}
	return &LevelDBStore{db: db}, nil
}

// Get implements Store.
func (s *LevelDBStore) Get(key []byte) ([]byte, error) {
	v, err := s.db.Get(key, nil)
	if err == leveldb.ErrNotFound {
		return nil, ErrKeyNotFound
	}
	return v, err
}

// Put implements Store.
func (s *LevelDBStore) Put(key, value []byte) error {
	return s.db.Put(key, value, nil)
}

// Delete implements Store.
func (s *LevelDBStore) Delete(key []byte) error {
	return s.db.Delete(key, nil)
}

// Seek implements Store.
func (s *LevelDBStore) Seek(prefix []byte, f func(k, v []byte)) {
	iter := s.db.NewIterator(util.BytesPrefix(prefix), nil)
	defer iter.Release()
	for iter.Next() {
		f(iter.Key(), iter.Value())
	}
}

// PutBatch implements Store.
func (s *LevelDBStore) PutBatch(batch []KeyValue) error {
	b := new(leveldb.Batch)
	for _, kv := range batch {
		b.Put(kv.Key, kv.Value)
	}
	return s.db.Write(b, nil)
}

// Close implements Store.
func (s *LevelDBStore) Close() error {
	return s.db.Close()
}
