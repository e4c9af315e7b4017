package book

import (
	"context"
	"errors"
	"fmt"

	"bookcatalog/internal/store"
)

// StoreRepo keeps books in the "books" collection of a document store.
type StoreRepo struct {
	db store.Store
}

func NewStoreRepo(db store.Store) *StoreRepo {
	return &StoreRepo{db: db}
}

func (r *StoreRepo) List(ctx context.Context, searchTerm string) ([]Book, error) {
	var filter store.Filter
	if searchTerm != "" {
		filter.Search = &store.Search{Term: searchTerm, Fields: SearchFields}
	}

	var books []Book
	if err := r.db.FindMany(ctx, store.Books, filter, &books); err != nil {
		return nil, fmt.Errorf("listing books: %w", err)
	}
	return books, nil
}

func (r *StoreRepo) GetByID(ctx context.Context, id string) (Book, error) {
	var b Book
	if err := r.db.FindOne(ctx, store.Books, store.ByID(id), &b); err != nil {
		return Book{}, mapStoreErr(err)
	}
	return b, nil
}

func (r *StoreRepo) Create(ctx context.Context, b Book) (store.InsertResult, error) {
	b.ID = ""
	res, err := r.db.InsertOne(ctx, store.Books, b)
	if err != nil {
		return store.InsertResult{}, fmt.Errorf("creating book: %w", err)
	}
	return res, nil
}

func (r *StoreRepo) Replace(ctx context.Context, id string, d Details) (EditResult, error) {
	res, err := r.db.UpdateOne(ctx, store.Books, id, d.Fields(), store.ReplaceFields)
	if err != nil {
		return EditResult{}, mapStoreErr(err)
	}
	return EditResult{Matched: res.Matched > 0, Modified: res.Modified > 0}, nil
}

func (r *StoreRepo) Delete(ctx context.Context, id string) (bool, error) {
	n, err := r.db.DeleteOne(ctx, store.Books, id)
	if err != nil {
		return false, mapStoreErr(err)
	}
	return n > 0, nil
}

func (r *StoreRepo) AddReview(ctx context.Context, id string, review any) (bool, error) {
	res, err := r.db.UpdateOne(ctx, store.Books, id, map[string]any{"reviews": review}, store.AppendToArray)
	if err != nil {
		return false, mapStoreErr(err)
	}
	return res.Matched > 0, nil
}

func mapStoreErr(err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, store.ErrInvalidID):
		return ErrInvalidID
	}
	return err
}
