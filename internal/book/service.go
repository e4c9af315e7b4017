package book

import (
	"context"

	"bookcatalog/internal/store"
)

// Service provides book-related business logic.
type Service struct {
	repo Repository
}

// NewService creates a new book service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns every book, or those whose searchable fields contain
// searchTerm when it is not empty.
func (s *Service) List(ctx context.Context, searchTerm string) ([]Book, error) {
	books, err := s.repo.List(ctx, searchTerm)
	if err != nil {
		return nil, err
	}
	if books == nil {
		books = []Book{}
	}
	return books, nil
}

// Get returns a book by its identifier.
func (s *Service) Get(ctx context.Context, id string) (Book, error) {
	return s.repo.GetByID(ctx, id)
}

// Create stores a new book built from d.
func (s *Service) Create(ctx context.Context, d Details) (store.InsertResult, error) {
	return s.repo.Create(ctx, d.Book())
}

// Replace overwrites the descriptive fields of a book. Replacing with
// identical values is not an error.
func (s *Service) Replace(ctx context.Context, id string, d Details) (EditResult, error) {
	res, err := s.repo.Replace(ctx, id, d)
	if err != nil {
		return EditResult{}, err
	}
	if !res.Matched {
		return EditResult{}, ErrNotFound
	}
	return res, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}

// AddReview appends review to the book's reviews.
func (s *Service) AddReview(ctx context.Context, id string, review any) error {
	matched, err := s.repo.AddReview(ctx, id, review)
	if err != nil {
		return err
	}
	if !matched {
		return ErrNotFound
	}
	return nil
}
