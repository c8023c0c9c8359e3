// Package boltstore implements store.KVBackend on top of bbolt, the
// concrete persistence backend for a real device: a single bucket holding
// the one valid-flag byte the store's persistence contract requires.
package boltstore

import (
	"fmt"

	bolt "go.etcd.io/bbolt"
)

var bucketName = []byte("wifi_manager")

const validKey = "credentials_valid"

// Backend is a bbolt-backed store.KVBackend.
type Backend struct {
	db *bolt.DB
}

// Open opens (creating if absent) the bbolt database at path and ensures
// its bucket exists.
func Open(path string) (*Backend, error) {
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("boltstore: open %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("boltstore: create bucket: %w", err)
	}
	return &Backend{db: db}, nil
}

func (b *Backend) GetValid() (bool, error) {
	var valid bool
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(bucketName)
		v := bucket.Get([]byte(validKey))
		valid = len(v) == 1 && v[0] == 1
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("boltstore: get valid flag: %w", err)
	}
	return valid, nil
}

// ValidFlagSet reports whether the valid-flag key has ever been written.
func (b *Backend) ValidFlagSet() (bool, error) {
	var set bool
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(bucketName)
		set = bucket.Get([]byte(validKey)) != nil
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("boltstore: read valid flag presence: %w", err)
	}
	return set, nil
}

func (b *Backend) SetValid(valid bool) error {
	val := byte(0)
	if valid {
		val = 1
	}
	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(bucketName)
		return bucket.Put([]byte(validKey), []byte{val})
	})
	if err != nil {
		return fmt.Errorf("boltstore: set valid flag: %w", err)
	}
	return nil
}

func (b *Backend) Close() error {
	if err := b.db.Close(); err != nil {
		return fmt.Errorf("boltstore: close: %w", err)
	}
	return nil
}
