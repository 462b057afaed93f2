package main

import (
	"context"
	"time"
)

// BookIDPrefix is prepended to every generated book id.
const BookIDPrefix string = "b"

// Book represents a catalog record.
type Book struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Author       string     `json:"author"`
	ISBN         int64      `json:"isbn"`
	Genre        string     `json:"genre"`
	Lang         string     `json:"lang"`
	AddedDate    time.Time  `json:"added_date"`
	Availability bool       `json:"availability"`
	Deleted      bool       `json:"delete"`
	DeletedAt    *time.Time `json:"delete_at"`
}

// BookView is the projection of a book returned by list and search.
type BookView struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	ISBN         int64  `json:"isbn"`
	Author       string `json:"author"`
	Genre        string `json:"genre"`
	Lang         string `json:"lang"`
	Availability bool   `json:"availability"`
}

// View projects the book to its listing form.
func (b Book) View() BookView {
	return BookView{
		ID:           b.ID,
		Title:        b.Title,
		ISBN:         b.ISBN,
		Author:       b.Author,
		Genre:        b.Genre,
		Lang:         b.Lang,
		Availability: b.Availability,
	}
}

// IsActive reports whether the book shows up in list and search results.
func (b Book) IsActive() bool {
	return !b.Deleted && b.Availability
}

// NewBook holds the fields a caller supplies to add a book.
type NewBook struct {
	Title  string
	Author string
	ISBN   int64
	Genre  string
	Lang   string
}

// BookChanges holds the fields an update may apply. Empty
// strings and a zero ISBN mean "leave unchanged".
type BookChanges struct {
	Title  string
	Author string
	ISBN   int64
	Genre  string
	Lang   string
}

// IsEmpty reports whether no field would be changed.
func (c BookChanges) IsEmpty() bool {
	return c == BookChanges{}
}

// RecordStore persists the whole catalog at once.
type RecordStore interface {
	// Load returns every record in stored order or ErrStoreNotFound
	// when nothing was saved yet.
	Load(ctx context.Context) ([]Book, error)
	// Save replaces the stored catalog with books.
	Save(ctx context.Context, books []Book) error
	Close() error
}
