package main

import (
	"regexp"
	"strconv"
	"strings"
)

// QueryKey names the single field a Query filters on.
type QueryKey int

const (
	keyUnset QueryKey = iota
	KeyAll
	KeyID
	KeyISBN
	KeyTitle
	KeyAuthor
)

func (k QueryKey) String() string {
	switch k {
	case KeyAll:
		return "all"
	case KeyID:
		return "id"
	case KeyISBN:
		return "isbn"
	case KeyTitle:
		return "title"
	case KeyAuthor:
		return "author"
	default:
		return "unset"
	}
}

// Query selects books by exactly one field. The zero Query is invalid.
type Query struct {
	Key   QueryKey
	Value string
}

func ByID(id string) Query         { return Query{Key: KeyID, Value: id} }
func ByTitle(title string) Query   { return Query{Key: KeyTitle, Value: title} }
func ByAuthor(author string) Query { return Query{Key: KeyAuthor, Value: author} }
func All() Query                   { return Query{Key: KeyAll} }

func ByISBN(isbn int64) Query {
	return Query{Key: KeyISBN, Value: strconv.FormatInt(isbn, 10)}
}

func (q Query) String() string {
	if q.Key == KeyAll {
		return "all"
	}
	return q.Key.String() + "=" + q.Value
}

// validate checks that q is set and uses one of the allowed keys.
func (q Query) validate(allowed ...QueryKey) error {
	if q.Key == keyUnset {
		return missingFieldError("query")
	}
	if q.Key != KeyAll && q.Value == "" {
		return missingFieldError(q.Key.String())
	}
	for _, k := range allowed {
		if q.Key == k {
			return nil
		}
	}
	return invalidFieldError{field: "query", value: q.String(), reason: "unsupported for this operation"}
}

// field returns the string form of the book field the query targets.
func (q Query) field(b Book) string {
	switch q.Key {
	case KeyID:
		return b.ID
	case KeyISBN:
		return strconv.FormatInt(b.ISBN, 10)
	case KeyTitle:
		return b.Title
	case KeyAuthor:
		return b.Author
	}
	return ""
}

// Matcher reports whether a book satisfies a query.
type Matcher func(Book) bool

// Exact returns a matcher comparing the query field for equality.
func (q Query) Exact() Matcher {
	if q.Key == KeyAll {
		return func(Book) bool { return true }
	}
	return func(b Book) bool { return q.field(b) == q.Value }
}

// Pattern returns a case-insensitive regular expression matcher. A value
// that does not compile is matched as a literal substring.
func (q Query) Pattern() Matcher {
	if q.Key == KeyAll {
		return func(Book) bool { return true }
	}
	rx, err := regexp.Compile("(?i)" + q.Value)
	if err != nil {
		rx = regexp.MustCompile("(?i)" + regexp.QuoteMeta(q.Value))
	}
	return func(b Book) bool { return rx.MatchString(q.field(b)) }
}

// QueryFields carries loosely typed filter input as typed by a user.
type QueryFields struct {
	ID     string
	ISBN   string
	Title  string
	Author string
}

// Precedence orders used when several fields are filled in.
var (
	LookupOrder = []QueryKey{KeyID, KeyISBN, KeyTitle, KeyAuthor}
	DeleteOrder = []QueryKey{KeyTitle, KeyID, KeyISBN}
	UpdateOrder = []QueryKey{KeyID, KeyISBN}
)

// QueryFromFields builds a Query from the first non-empty field in order.
// When every field in order is empty it returns All().
func QueryFromFields(f QueryFields, order ...QueryKey) (Query, error) {
	for _, k := range order {
		switch k {
		case KeyID:
			if v := strings.TrimSpace(f.ID); v != "" {
				return ByID(v), nil
			}
		case KeyISBN:
			isbn, err := ParseISBN(f.ISBN)
			if err != nil {
				return Query{}, err
			}
			if isbn != 0 {
				return ByISBN(isbn), nil
			}
		case KeyTitle:
			if v := strings.TrimSpace(f.Title); v != "" {
				return ByTitle(v), nil
			}
		case KeyAuthor:
			if v := strings.TrimSpace(f.Author); v != "" {
				return ByAuthor(v), nil
			}
		}
	}
	return All(), nil
}
