package store

import (
	"context"
	"errors"
)

// Collection names.
const (
	Books = "books"
	Users = "users"
)

var (
	// ErrNotFound is returned by FindOne when no document matches.
	ErrNotFound = errors.New("document not found")
	// ErrInvalidID is returned when an identifier does not match the store's key format.
	ErrInvalidID = errors.New("invalid identifier")
	// ErrDuplicateKey is returned when an insert violates a unique index.
	ErrDuplicateKey = errors.New("duplicate key")
)

// uniqueFields lists the field of each collection that must be unique.
var uniqueFields = map[string]string{
	Users: "email",
}

// Filter selects documents. Zero value matches everything.
type Filter struct {
	ID     string
	Equal  map[string]any
	Search *Search
}

// Search is a case-insensitive substring match OR-ed across Fields.
type Search struct {
	Term   string
	Fields []string
}

// ByID returns a filter matching a single identifier.
func ByID(id string) Filter {
	return Filter{ID: id}
}

// UpdateMode controls how UpdateOne applies a patch.
type UpdateMode int

const (
	// ReplaceFields overwrites the patched fields ($set).
	ReplaceFields UpdateMode = iota
	// AppendToArray pushes each patch value onto the array at its key ($push).
	AppendToArray
)

func (m UpdateMode) String() string {
	switch m {
	case ReplaceFields:
		return "replace"
	case AppendToArray:
		return "append"
	}
	return "unknown"
}

// InsertResult mirrors the insert acknowledgement returned to clients.
type InsertResult struct {
	Acknowledged bool   `json:"acknowledged"`
	InsertedID   string `json:"insertedId"`
}

// UpdateResult reports how many documents matched and how many changed.
type UpdateResult struct {
	Matched  int64
	Modified int64
}

// Reader is the read side of a document store.
type Reader interface {
	FindOne(ctx context.Context, collection string, filter Filter, out any) error
	FindMany(ctx context.Context, collection string, filter Filter, out any) error
}

// Writer is the write side of a document store.
type Writer interface {
	InsertOne(ctx context.Context, collection string, doc any) (InsertResult, error)
	UpdateOne(ctx context.Context, collection, id string, patch map[string]any, mode UpdateMode) (UpdateResult, error)
	DeleteOne(ctx context.Context, collection, id string) (int64, error)
}

// Store is a document database holding the books and users collections.
type Store interface {
	Reader
	Writer
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
