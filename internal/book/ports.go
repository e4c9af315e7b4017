package book

import (
	"context"

	"bookcatalog/internal/store"
)

//go:generate mockgen -source=ports.go -destination=mock_ports.go -package=book

// Repository defines the contract for book data storage.
type Repository interface {
	List(ctx context.Context, searchTerm string) ([]Book, error)
	GetByID(ctx context.Context, id string) (Book, error)
	Create(ctx context.Context, b Book) (store.InsertResult, error)
	Replace(ctx context.Context, id string, d Details) (EditResult, error)
	// Delete reports whether a book was removed.
	Delete(ctx context.Context, id string) (bool, error)
	// AddReview reports whether a book matched id.
	AddReview(ctx context.Context, id string, review any) (bool, error)
}
