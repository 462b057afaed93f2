package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/boltdb/bolt"
	"go.uber.org/zap"
)

type boltBookStorage struct {
	logger *zap.Logger
	client *bolt.DB
	config *BoltDBConfig
}

// GetBoltDBClient opens the database file and provides a ready to use client.
// The bucket is only created on the first Save so that an untouched database
// reads as an absent store.
func GetBoltDBClient(config *BoltDBConfig) (*bolt.DB, error) {
	if err := os.MkdirAll(filepath.Dir(config.FilePath), 0o770); err != nil {
		return nil, fmt.Errorf("failed to create the database folder, %v", err)
	}
	db, err := bolt.Open(config.FilePath, 0o600, &bolt.Options{Timeout: config.Timeout})
	if err != nil {
		return nil, fmt.Errorf("failed to open the database, %v", err)
	}
	return db, nil
}

// NewBoltBookStorage provides an instance of bolt-based book storage.
func NewBoltBookStorage(logger *zap.Logger, boltConfig *BoltDBConfig, client *bolt.DB) RecordStore {
	return &boltBookStorage{
		logger: logger,
		client: client,
		config: boltConfig,
	}
}

// Close shuts down the bolt-based book storage.
func (bs *boltBookStorage) Close() error {
	return bs.client.Close()
}

// Load retrieves every book stored in the bucket in insertion order.
func (bs *boltBookStorage) Load(_ context.Context) ([]Book, error) {
	tx, err := bs.client.Begin(false)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	bucket := tx.Bucket([]byte(bs.config.BucketName))
	if bucket == nil {
		return nil, ErrStoreNotFound
	}

	books := []Book{}
	c := bucket.Cursor()
	for k, v := c.First(); k != nil; k, v = c.Next() {
		var book Book
		if err = json.Unmarshal(v, &book); err != nil {
			return nil, fmt.Errorf("failed to decode record %s: %w", k, err)
		}
		books = append(books, book)
	}
	return books, nil
}

// Save replaces the bucket content within a single update transaction.
func (bs *boltBookStorage) Save(_ context.Context, books []Book) error {
	name := []byte(bs.config.BucketName)
	return bs.client.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(name); err != nil && err != bolt.ErrBucketNotFound {
			return fmt.Errorf("failed to reset %s bucket: %v", bs.config.BucketName, err)
		}
		bucket, err := tx.CreateBucket(name)
		if err != nil {
			return fmt.Errorf("failed to create %s bucket: %v", bs.config.BucketName, err)
		}
		for i, book := range books {
			bookBytes, err := json.Marshal(book)
			if err != nil {
				return err
			}
			if err = bucket.Put(positionKey(i), bookBytes); err != nil {
				return err
			}
		}
		return nil
	})
}

// positionKey encodes i so that byte order matches numeric order.
func positionKey(i int) []byte {
	return []byte(fmt.Sprintf("%010d", i))
}
