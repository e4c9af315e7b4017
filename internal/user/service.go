package user

import (
	"context"
	"errors"
	"fmt"

	"bookcatalog/internal/platform/crypto"
	"bookcatalog/internal/store"
)

type Service struct {
	repo   Repository
	hasher crypto.Hasher
}

func NewService(repo Repository, hasher crypto.Hasher) *Service {
	return &Service{repo: repo, hasher: hasher}
}

// Register creates an account for email unless one already exists.
func (s *Service) Register(ctx context.Context, email, password string) (store.InsertResult, error) {
	_, err := s.repo.GetByEmail(ctx, email)
	if err == nil {
		return store.InsertResult{}, ErrAlreadyExists
	}
	if !errors.Is(err, ErrNotFound) {
		return store.InsertResult{}, err
	}

	stored, err := s.hasher.Hash(password)
	if err != nil {
		return store.InsertResult{}, fmt.Errorf("hashing password: %w", err)
	}

	return s.repo.Create(ctx, User{Email: email, Password: stored})
}

// Login returns the account email when password matches.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}
	if !s.hasher.Verify(u.Password, password) {
		return "", ErrInvalidCredentials
	}
	return u.Email, nil
}
