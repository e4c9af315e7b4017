package book

import (
	"errors"
)

var (
	// ErrNotFound is returned when a book is not found.
	ErrNotFound = errors.New("book not found")
	// ErrInvalidID is returned when a book identifier is malformed.
	ErrInvalidID = errors.New("invalid book id")
)

// Book is a catalog entry. Fields absent at creation stay absent in storage
// and on the wire.
type Book struct {
	ID              string `json:"_id,omitempty" bson:"_id,omitempty"`
	Image           string `json:"image,omitempty" bson:"image,omitempty"`
	Title           string `json:"title,omitempty" bson:"title,omitempty"`
	Author          string `json:"author,omitempty" bson:"author,omitempty"`
	Genre           string `json:"genre,omitempty" bson:"genre,omitempty"`
	PublicationDate string `json:"publicationDate,omitempty" bson:"publicationDate,omitempty"`
	Reviews         []any  `json:"reviews,omitempty" bson:"reviews,omitempty"`
}

// Details are the five descriptive fields a client supplies on create and edit.
type Details struct {
	Image           string `json:"image"`
	Title           string `json:"title"`
	Author          string `json:"author"`
	Genre           string `json:"genre"`
	PublicationDate string `json:"publicationDate"`
}

// Book returns a new, unsaved book carrying d.
func (d Details) Book() Book {
	return Book{
		Image:           d.Image,
		Title:           d.Title,
		Author:          d.Author,
		Genre:           d.Genre,
		PublicationDate: d.PublicationDate,
	}
}

// Fields returns every descriptive field keyed by its stored name. Reviews
// are never part of it.
func (d Details) Fields() map[string]any {
	return map[string]any{
		"image":           d.Image,
		"title":           d.Title,
		"author":          d.Author,
		"genre":           d.Genre,
		"publicationDate": d.PublicationDate,
	}
}

// SearchFields are matched by a list search term.
var SearchFields = []string{"title", "author", "genre", "publicationDate"}

// EditResult reports the outcome of replacing a book's details.
type EditResult struct {
	Matched  bool
	Modified bool
}
