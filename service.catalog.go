package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// CatalogServiceProvider exposes the catalog operations.
type CatalogServiceProvider interface {
	Add(ctx context.Context, nb NewBook) (Book, error)
	Update(ctx context.Context, target Query, changes BookChanges) (Book, error)
	Delete(ctx context.Context, q Query) (int, error)
	List(ctx context.Context, q Query) ([]BookView, error)
	Search(ctx context.Context, q Query) ([]BookView, error)
}

type CatalogService struct {
	logger     *zap.Logger
	clock      Clocker
	idsHandler UIDHandler
	storage    RecordStore
}

func NewCatalogService(logger *zap.Logger, clock Clocker, idsHandler UIDHandler, storage RecordStore) *CatalogService {
	return &CatalogService{
		logger:     logger,
		clock:      clock,
		idsHandler: idsHandler,
		storage:    storage,
	}
}

// Add validates and appends a new book to the catalog.
func (cs *CatalogService) Add(ctx context.Context, nb NewBook) (Book, error) {
	book, err := cs.add(ctx, nb)
	if err != nil {
		cs.logger.Error("failed to add book",
			zap.String("book.title", nb.Title), zap.Int64("book.isbn", nb.ISBN), zap.Error(err))
		return Book{}, err
	}
	cs.logger.Info("book added",
		zap.String("book.id", book.ID), zap.String("book.title", book.Title),
		zap.String("book.author", book.Author), zap.Int64("book.isbn", book.ISBN))
	return book, nil
}

func (cs *CatalogService) add(ctx context.Context, nb NewBook) (Book, error) {
	nb.Title = strings.TrimSpace(nb.Title)
	nb.Author = strings.TrimSpace(nb.Author)
	if nb.Title == "" {
		return Book{}, missingFieldError("title")
	}
	if nb.Author == "" {
		return Book{}, missingFieldError("author")
	}
	if nb.ISBN == 0 {
		return Book{}, missingFieldError("isbn")
	}
	if nb.ISBN < 0 {
		return Book{}, invalidFieldError{field: "isbn", value: fmt.Sprint(nb.ISBN), reason: "must be positive"}
	}

	books, err := cs.storage.Load(ctx)
	if err != nil && !errors.Is(err, ErrStoreNotFound) {
		return Book{}, fmt.Errorf("load catalog: %w", err)
	}

	// deleted records keep their isbn reserved.
	for _, b := range books {
		if b.ISBN == nb.ISBN {
			return Book{}, fmt.Errorf("isbn %d: %w", nb.ISBN, ErrDuplicateISBN)
		}
	}

	book := Book{
		ID:           cs.idsHandler.Generate(BookIDPrefix),
		Title:        nb.Title,
		Author:       nb.Author,
		ISBN:         nb.ISBN,
		Genre:        strings.TrimSpace(nb.Genre),
		Lang:         strings.TrimSpace(nb.Lang),
		AddedDate:    DateOf(cs.clock.Now()),
		Availability: true,
	}
	books = append(books, book)

	if err = cs.storage.Save(ctx, books); err != nil {
		return Book{}, fmt.Errorf("save catalog: %w", err)
	}
	return book, nil
}

// Update applies the non-empty changes to the first book matching target.
// When target is an isbn lookup, a change of isbn is ignored.
func (cs *CatalogService) Update(ctx context.Context, target Query, changes BookChanges) (Book, error) {
	book, err := cs.update(ctx, target, changes)
	if err != nil {
		cs.logger.Error("failed to update book", zap.Stringer("query", target), zap.Error(err))
		return Book{}, err
	}
	cs.logger.Info("book updated",
		zap.String("book.id", book.ID), zap.String("book.title", book.Title),
		zap.String("book.author", book.Author), zap.Int64("book.isbn", book.ISBN))
	return book, nil
}

func (cs *CatalogService) update(ctx context.Context, target Query, changes BookChanges) (Book, error) {
	if target.Key == keyUnset {
		return Book{}, missingFieldError("id or isbn")
	}
	if err := target.validate(KeyID, KeyISBN); err != nil {
		return Book{}, err
	}
	if err := cs.checkID(target); err != nil {
		return Book{}, err
	}
	if target.Key == KeyISBN {
		changes.ISBN = 0
	}
	if changes.ISBN < 0 {
		return Book{}, invalidFieldError{field: "isbn", value: fmt.Sprint(changes.ISBN), reason: "must be positive"}
	}

	books, err := cs.storage.Load(ctx)
	if err != nil {
		return Book{}, fmt.Errorf("load catalog: %w", err)
	}

	match := target.Exact()
	idx := -1
	for i := range books {
		if match(books[i]) {
			idx = i
			break
		}
	}
	if idx < 0 {
		return Book{}, fmt.Errorf("%s: %w", target, ErrBookNotFound)
	}
	if books[idx].Deleted {
		return Book{}, fmt.Errorf("%s: %w", target, ErrBookDeleted)
	}

	if changes.ISBN != 0 && changes.ISBN != books[idx].ISBN {
		for i, b := range books {
			if i != idx && b.ISBN == changes.ISBN {
				return Book{}, fmt.Errorf("isbn %d: %w", changes.ISBN, ErrDuplicateISBN)
			}
		}
	}

	if changes.IsEmpty() {
		return books[idx], nil
	}

	applyChanges(&books[idx], changes)
	if err = cs.storage.Save(ctx, books); err != nil {
		return Book{}, fmt.Errorf("save catalog: %w", err)
	}
	return books[idx], nil
}

func applyChanges(b *Book, c BookChanges) {
	if v := strings.TrimSpace(c.Title); v != "" {
		b.Title = v
	}
	if v := strings.TrimSpace(c.Author); v != "" {
		b.Author = v
	}
	if c.ISBN != 0 {
		b.ISBN = c.ISBN
	}
	if v := strings.TrimSpace(c.Genre); v != "" {
		b.Genre = v
	}
	if v := strings.TrimSpace(c.Lang); v != "" {
		b.Lang = v
	}
}

// Delete soft-deletes every book matching q and returns how many
// records were newly flagged. Books already deleted are left as is.
func (cs *CatalogService) Delete(ctx context.Context, q Query) (int, error) {
	n, err := cs.delete(ctx, q)
	if err != nil {
		cs.logger.Error("failed to delete book", zap.Stringer("query", q), zap.Error(err))
		return 0, err
	}
	cs.logger.Info("book deleted", zap.Stringer("query", q), zap.Int("count", n))
	return n, nil
}

func (cs *CatalogService) delete(ctx context.Context, q Query) (int, error) {
	if q.Key == keyUnset || q.Key == KeyAll {
		return 0, missingFieldError("id, title or isbn")
	}
	if err := q.validate(KeyTitle, KeyID, KeyISBN); err != nil {
		return 0, err
	}
	if err := cs.checkID(q); err != nil {
		return 0, err
	}

	books, err := cs.storage.Load(ctx)
	if err != nil {
		return 0, fmt.Errorf("load catalog: %w", err)
	}

	match := q.Exact()
	matched, flagged := 0, 0
	now := cs.clock.Now()
	for i := range books {
		if !match(books[i]) {
			continue
		}
		matched++
		if books[i].Deleted {
			continue
		}
		deletedAt := now
		books[i].Deleted = true
		books[i].DeletedAt = &deletedAt
		flagged++
	}
	if matched == 0 {
		return 0, fmt.Errorf("%s: %w", q, ErrBookNotFound)
	}
	if flagged == 0 {
		return 0, nil
	}

	if err = cs.storage.Save(ctx, books); err != nil {
		return 0, fmt.Errorf("save catalog: %w", err)
	}
	return flagged, nil
}

// List returns the active books whose query field equals the query value.
func (cs *CatalogService) List(ctx context.Context, q Query) ([]BookView, error) {
	views, err := cs.find(ctx, q, q.Exact)
	if err != nil {
		cs.logger.Error("failed to list book", zap.Stringer("query", q), zap.Error(err))
		return nil, err
	}
	cs.logger.Info("book list retrieved", zap.Stringer("query", q), zap.Int("count", len(views)))
	return views, nil
}

// Search returns the active books whose query field matches the query
// value as a case-insensitive regular expression.
func (cs *CatalogService) Search(ctx context.Context, q Query) ([]BookView, error) {
	views, err := cs.find(ctx, q, q.Pattern)
	if err != nil {
		cs.logger.Error("failed to search book", zap.Stringer("query", q), zap.Error(err))
		return nil, err
	}
	cs.logger.Info("book search completed", zap.Stringer("query", q), zap.Int("count", len(views)))
	return views, nil
}

func (cs *CatalogService) find(ctx context.Context, q Query, matcher func() Matcher) ([]BookView, error) {
	if err := q.validate(KeyAll, KeyID, KeyISBN, KeyTitle, KeyAuthor); err != nil {
		return nil, err
	}

	books, err := cs.storage.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	match := matcher()
	views := []BookView{}
	for _, b := range books {
		if b.IsActive() && match(b) {
			views = append(views, b.View())
		}
	}
	return views, nil
}

// checkID rejects id lookups whose value cannot be a generated id.
func (cs *CatalogService) checkID(q Query) error {
	if q.Key == KeyID && !cs.idsHandler.IsValid(q.Value, BookIDPrefix) {
		return invalidFieldError{field: "id", value: q.Value, reason: "not a valid book id"}
	}
	return nil
}
