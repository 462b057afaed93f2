package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// DateLayout is the on-disk format of the added_date column.
const DateLayout = "02-01-2006"

// defaultFileMode applies to a catalog file created by the first save.
const defaultFileMode fs.FileMode = 0o644

// CSVHeader lists the columns of the catalog file in order.
var CSVHeader = []string{
	"id", "title", "author", "isbn", "genre", "lang",
	"added_date", "availability", "delete", "delete_at",
}

type csvBookStorage struct {
	logger *zap.Logger
	path   string
}

// NewCSVBookStorage provides an instance of csv-file-based book storage.
func NewCSVBookStorage(logger *zap.Logger, config *CSVConfig) RecordStore {
	return &csvBookStorage{
		logger: logger,
		path:   config.FilePath,
	}
}

// Close is a no-op since the file is only opened during Load and Save.
func (cs *csvBookStorage) Close() error {
	return nil
}

// Load reads the whole catalog file.
func (cs *csvBookStorage) Load(_ context.Context) ([]Book, error) {
	file, err := os.Open(cs.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrStoreNotFound
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return decodeCSV(file)
}

// Save writes the catalog into a temporary file next to the target
// and renames it over the target once fully flushed to disk.
func (cs *csvBookStorage) Save(_ context.Context, books []Book) error {
	dir := filepath.Dir(cs.path)
	if err := os.MkdirAll(dir, 0o770); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(cs.path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()
			if rerr := os.Remove(tmpName); rerr != nil && !errors.Is(rerr, fs.ErrNotExist) {
				cs.logger.Warn("storage: failed to remove temp file", zap.String("path", tmpName), zap.Error(rerr))
			}
		}
	}()

	if err = encodeCSV(tmp, books); err != nil {
		return err
	}
	// the temp file is created 0600, keep the mode of the replaced catalog.
	mode := defaultFileMode
	if info, serr := os.Stat(cs.path); serr == nil {
		mode = info.Mode().Perm()
	}
	if err = tmp.Chmod(mode); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Rename(tmpName, cs.path); err != nil {
		return err
	}
	return nil
}

func encodeCSV(w io.Writer, books []Book) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}
	for _, b := range books {
		deletedAt := ""
		if b.DeletedAt != nil {
			deletedAt = b.DeletedAt.Format(time.RFC3339)
		}
		row := []string{
			b.ID,
			b.Title,
			b.Author,
			strconv.FormatInt(b.ISBN, 10),
			b.Genre,
			b.Lang,
			b.AddedDate.Format(DateLayout),
			strconv.FormatBool(b.Availability),
			strconv.FormatBool(b.Deleted),
			deletedAt,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func decodeCSV(r io.Reader) ([]Book, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(CSVHeader)

	header, err := cr.Read()
	if err == io.EOF {
		return []Book{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	for i, name := range CSVHeader {
		if header[i] != name {
			return nil, fmt.Errorf("unexpected column %d: got %q, want %q", i, header[i], name)
		}
	}

	books := []Book{}
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read line %d: %w", line, err)
		}
		book, err := decodeRow(row)
		if err != nil {
			return nil, fmt.Errorf("failed to parse line %d: %w", line, err)
		}
		books = append(books, book)
	}
	return books, nil
}

func decodeRow(row []string) (Book, error) {
	var book Book
	var err error

	book.ID = row[0]
	book.Title = row[1]
	book.Author = row[2]
	if book.ISBN, err = strconv.ParseInt(row[3], 10, 64); err != nil {
		return book, fmt.Errorf("isbn: %w", err)
	}
	book.Genre = row[4]
	book.Lang = row[5]
	if book.AddedDate, err = time.Parse(DateLayout, row[6]); err != nil {
		return book, fmt.Errorf("added_date: %w", err)
	}
	if book.Availability, err = strconv.ParseBool(row[7]); err != nil {
		return book, fmt.Errorf("availability: %w", err)
	}
	if book.Deleted, err = strconv.ParseBool(row[8]); err != nil {
		return book, fmt.Errorf("delete: %w", err)
	}
	if row[9] != "" {
		deletedAt, err := time.Parse(time.RFC3339, row[9])
		if err != nil {
			return book, fmt.Errorf("delete_at: %w", err)
		}
		book.DeletedAt = &deletedAt
	}
	return book, nil
}
