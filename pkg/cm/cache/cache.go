// Package cache stores source-file fingerprints in a Badger database so
// batch runs can skip files whose source has not changed since the last
// successful write.
package cache

import (
	"errors"

	"github.com/dgraph-io/badger/v4"
)

// ErrNotFound is returned when no fingerprint exists for a key.
var ErrNotFound = errors.New("fingerprint not found")

// Cache wraps a Badger store of fingerprints keyed by input root and
// relative path.
type Cache struct {
	db *badger.DB
}

// Open opens or creates a cache at the given path.
func Open(path string) (*Cache, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil // Disable badger logging

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	return &Cache{db: db}, nil
}

// Close closes the cache.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Get retrieves the fingerprint for a source file.
func (c *Cache) Get(root, relPath string) (*Fingerprint, error) {
	key := MakeKey(root, relPath)
	var fp Fingerprint

	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		return item.Value(fp.Decode)
	})

	if err != nil {
		return nil, err
	}
	return &fp, nil
}

// Put stores the fingerprint for a source file.
func (c *Cache) Put(root, relPath string, fp *Fingerprint) error {
	key := MakeKey(root, relPath)
	value, err := fp.Encode()
	if err != nil {
		return err
	}

	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, value)
	})
}

// DeletePrefix removes all fingerprints under a root. An empty root
// clears the whole cache.
func (c *Cache) DeletePrefix(root string) error {
	prefix := MakeKeyPrefix(root)
	if root == "" {
		prefix = nil
	}

	return c.db.Update(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := txn.Delete(it.Item().KeyCopy(nil)); err != nil {
				return err
			}
		}
		return nil
	})
}
