package storage

import (
	"bytes"

	"go.etcd.io/bbolt"
)

var bucketName = []byte("godwoken")

// BBoltStore is a durable Store backed by go.etcd.io/bbolt, offered as an
// alternative to LevelDBStore for single-file deployments.
type BBoltStore struct {
	db *bbolt.DB
}

// NewBBoltStore opens (creating if necessary) a BoltDB store at path.
func NewBBoltStore(path string) (*BBoltStore, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &BBoltStore{db: db}, nil
}

// Get implements Store.
func (s *BBoltStore) Get(key []byte) ([]byte, error) {
	var out []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(bucketName).Get(key)
		if v == nil {
			return ErrKeyNotFound
		}
		out = append([]byte(nil), v...)
		return nil
	})
	return out, err
}

// Put implements Store.
func (s *BBoltStore) Put(key, value []byte) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketName).Put(key, value)
	})
}

// Delete implements Store.
func (s *BBoltStore) Delete(key []byte) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketName).Delete(key)
	})
}

// Seek implements Store.
func (s *BBoltStore) Seek(prefix []byte, f func(k, v []byte)) {
	_ = s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(bucketName).Cursor()
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			f(k, v)
		}
		return nil
	})
}

// PutBatch implements Store.
func (s *BBoltStore) PutBatch(batch []KeyValue) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketName)
		for _, kv := range batch {
			if err := b.Put(kv.Key, kv.Value); err != nil {
				return err
			}
		}
		return nil
	})
}

// Close implements Store.
func (s *BBoltStore) Close() error {
	return s.db.Close()
}
