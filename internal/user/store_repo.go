package user

import (
	"context"
	"errors"
	"fmt"

	"bookcatalog/internal/store"
)

// StoreRepo keeps users in the "users" collection of a document store.
type StoreRepo struct {
	db store.Store
}

func NewStoreRepo(db store.Store) *StoreRepo {
	return &StoreRepo{db: db}
}

func (r *StoreRepo) Create(ctx context.Context, u User) (store.InsertResult, error) {
	u.ID = ""
	res, err := r.db.InsertOne(ctx, store.Users, u)
	if err != nil {
		if errors.Is(err, store.ErrDuplicateKey) {
			return store.InsertResult{}, ErrAlreadyExists
		}
		return store.InsertResult{}, fmt.Errorf("creating user: %w", err)
	}
	return res, nil
}

func (r *StoreRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	var u User
	filter := store.Filter{Equal: map[string]any{"email": email}}
	if err := r.db.FindOne(ctx, store.Users, filter, &u); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return User{}, ErrNotFound
		}
		return User{}, fmt.Errorf("finding user by email: %w", err)
	}
	return u, nil
}
