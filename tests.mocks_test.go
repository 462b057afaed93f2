package main

import (
	"context"
	"strconv"
	"time"
)

// This file contains mocks definitions needed to perform unit tests.

type MockRecordStore struct {
	LoadFunc  func(ctx context.Context) ([]Book, error)
	SaveFunc  func(ctx context.Context, books []Book) error
	CloseFunc func() error
}

// Load mocks the behavior of loading the catalog.
func (m *MockRecordStore) Load(ctx context.Context) ([]Book, error) {
	return m.LoadFunc(ctx)
}

// Save mocks the behavior of persisting the catalog.
func (m *MockRecordStore) Save(ctx context.Context, books []Book) error {
	return m.SaveFunc(ctx, books)
}

// Close mocks the behavior of closing the store.
func (m *MockRecordStore) Close() error {
	if m.CloseFunc == nil {
		return nil
	}
	return m.CloseFunc()
}

// memoryStore keeps the catalog in memory and copies on every call so
// that tests observe exactly what was saved.
type memoryStore struct {
	books  []Book
	saved  bool
	saves  int
	closed bool
}

func (ms *memoryStore) Load(_ context.Context) ([]Book, error) {
	if !ms.saved {
		return nil, ErrStoreNotFound
	}
	return append([]Book(nil), ms.books...), nil
}

func (ms *memoryStore) Save(_ context.Context, books []Book) error {
	ms.books = append([]Book(nil), books...)
	ms.saved = true
	ms.saves++
	return nil
}

func (ms *memoryStore) Close() error {
	ms.closed = true
	return nil
}

// MockClocker implements a fake Clocker.
type MockClocker struct {
	MockNow time.Time
}

// NewMockClocker returns a mocked instance with fixed time.
func NewMockClocker() *MockClocker {
	return &MockClocker{time.Date(2023, 0o7, 0o2, 10, 30, 0o0, 0o00000000, time.UTC)}
}

// Now returns an already defined time to be used as mock. This
// equals to `2023-07-02 10:30:00 +0000 UTC` in String format.
func (mck *MockClocker) Now() time.Time {
	return mck.MockNow
}

// MockUIDHandler implements a fake UIDHandler producing sequential ids.
type MockUIDHandler struct {
	next  int
	Valid bool
}

// NewMockUIDHandler returns a mocked instance with predictable ids.
func NewMockUIDHandler(valid bool) *MockUIDHandler {
	return &MockUIDHandler{Valid: valid}
}

// Generate constructs a predictable id to be used as mock.
func (muid *MockUIDHandler) Generate(prefix string) string {
	muid.next++
	return prefix + ":" + strconv.Itoa(muid.next)
}

// IsValid mocks IsValid behavior by providing configured status.
func (muid *MockUIDHandler) IsValid(_, _ string) bool {
	return muid.Valid
}
