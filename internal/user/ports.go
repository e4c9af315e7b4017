package user

import (
	"context"

	"bookcatalog/internal/store"
)

//go:generate mockgen -source=ports.go -destination=mock_ports.go -package=user

type Repository interface {
	// Create returns ErrAlreadyExists when the email is taken.
	Create(ctx context.Context, u User) (store.InsertResult, error)
	GetByEmail(ctx context.Context, email string) (User, error)
}
