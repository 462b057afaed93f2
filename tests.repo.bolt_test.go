package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// newTestBoltStore returns a new instance of Store in a temporary path.
func newTestBoltStore(t *testing.T) (*boltBookStorage, error) {
	t.Helper()
	testConfig := &BoltDBConfig{
		FilePath:   filepath.Join(t.TempDir(), "tmp.bolt.db"),
		Timeout:    5 * time.Second,
		BucketName: "test.books",
	}

	client, err := GetBoltDBClient(testConfig)
	if err != nil {
		return nil, err
	}

	return &boltBookStorage{
		logger: zap.NewNop(),
		client: client,
		config: testConfig,
	}, nil
}

// closeTestBoltStore closes the temporary bolt store and removes the underlying data file.
func (bs *boltBookStorage) closeTestBoltStore() error {
	defer os.Remove(bs.config.FilePath)
	return bs.Close()
}

func TestBoltStore(t *testing.T) {
	bs, err := newTestBoltStore(t)
	require.NoError(t, err, "failed in creating a test bolt store")
	defer bs.closeTestBoltStore()
	ctx := context.TODO()

	t.Run("Load Absent Store", func(t *testing.T) {
		// ensures an untouched database reads as absent.
		books, err := bs.Load(ctx)
		assert.ErrorIs(t, err, ErrStoreNotFound)
		assert.Nil(t, books)
	})

	t.Run("Save And Load", func(t *testing.T) {
		// ensures records come back in stored order.
		want := sampleBooks()
		require.NoError(t, bs.Save(ctx, want))
		got, err := bs.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("Save Replaces Catalog", func(t *testing.T) {
		// ensures a shorter catalog leaves no stale record behind.
		want := sampleBooks()[1:]
		require.NoError(t, bs.Save(ctx, want))
		got, err := bs.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("Order Beyond Ten Records", func(t *testing.T) {
		// ensures keys sort numerically, not lexically.
		var want []Book
		for i := 0; i < 12; i++ {
			b := sampleBooks()[0]
			b.ISBN = int64(i + 1)
			want = append(want, b)
		}
		require.NoError(t, bs.Save(ctx, want))
		got, err := bs.Load(ctx)
		require.NoError(t, err)
		require.Len(t, got, 12)
		for i, b := range got {
			assert.Equal(t, int64(i+1), b.ISBN)
		}
	})

	t.Run("Save Empty Catalog", func(t *testing.T) {
		// ensures an emptied catalog still reads as present.
		require.NoError(t, bs.Save(ctx, nil))
		got, err := bs.Load(ctx)
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}
