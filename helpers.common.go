package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

var (
	ErrValidation    = errors.New("validation failed")
	ErrDuplicateISBN = errors.New("book already present in catalog")
	ErrBookNotFound  = errors.New("book not found")
	ErrBookDeleted   = errors.New("book is deleted from catalog")
	ErrStoreNotFound = errors.New("catalog store not found, please add books first")
)

type missingFieldError string

func (m missingFieldError) Error() string {
	return string(m) + " is required"
}

// Is makes missingFieldError match ErrValidation.
func (m missingFieldError) Is(target error) bool {
	return target == ErrValidation
}

type invalidFieldError struct {
	field  string
	value  string
	reason string
}

func (e invalidFieldError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.field, e.value, e.reason)
}

// Is makes invalidFieldError match ErrValidation.
func (e invalidFieldError) Is(target error) bool {
	return target == ErrValidation
}

// ParseISBN converts user input into an isbn. Blank input yields 0.
func ParseISBN(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	isbn, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, invalidFieldError{field: "isbn", value: s, reason: "must be an integer"}
	}
	if isbn <= 0 {
		return 0, invalidFieldError{field: "isbn", value: s, reason: "must be positive"}
	}
	return isbn, nil
}

// IsAppRunningInDocker checks the existence of the .dockerenv
// file at the root directory.
func IsAppRunningInDocker() bool {
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true
	}
	return false
}
