package domain

import (
	"context"
	"errors"
)

type EnsureUserRequest struct {
	ID          string
	Email       string
	DisplayName string
}

type Service interface {
	EnsureUser(context.Context, EnsureUserRequest) (User, error)
	GetByID(context.Context, string) (User, error)
	HasPurchasedItem(ctx context.Context, userID, itemID string) (bool, error)
}

var (
	ErrInvalidUser = errors.New("invalid_user")
	ErrNotFound    = errors.New("not_found")
)
