package domain

import (
	"context"
	"errors"
	"time"
)

type AddPurchaseRequest struct {
	UserID        string
	ItemID        string
	ItemTitle     string
	PurchaseDate  time.Time
	AmountMinor   int64
	Currency      string
	TransactionID string
	Status        Status
	Type          PurchaseType
	ExpiresAt     *time.Time

	TransferredFromGuest bool
}

type Service interface {
	Add(context.Context, AddPurchaseRequest) (PurchaseRecord, error)
	ListByUser(ctx context.Context, userID string) ([]PurchaseRecord, error)
	GetByID(ctx context.Context, userID, id string) (PurchaseRecord, error)
	HasTransaction(ctx context.Context, userID, transactionID string) (bool, error)
	UpdateUserStats(ctx context.Context, userID string) error
}

var (
	ErrInvalidUser          = errors.New("invalid_user")
	ErrInvalidItem          = errors.New("invalid_item")
	ErrInvalidTransaction   = errors.New("invalid_transaction")
	ErrDuplicateTransaction = errors.New("duplicate_transaction")
	ErrNotFound             = errors.New("not_found")
)
