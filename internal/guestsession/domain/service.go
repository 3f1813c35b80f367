package domain

import (
	"context"
	"errors"
)

type CreateSessionRequest struct {
	VisitorID    string
	ProductID    string
	ProductTitle string
	PriceMinor   int64
	ProductType  string
	GuestEmail   string
}

// Service is the guest purchase session store. Write paths propagate errors;
// read paths degrade to empty results so a corrupt or unavailable store never
// breaks the storefront.
type Service interface {
	Create(context.Context, CreateSessionRequest) (GuestSession, error)
	GetCurrent(ctx context.Context, visitorID string) (*GuestSession, error)
	Complete(ctx context.Context, visitorID, paymentSessionID string) error
	Clear(ctx context.Context, visitorID string) error
	History(ctx context.Context, visitorID string) ([]GuestSession, error)
	HasCompleted(ctx context.Context, visitorID string) (bool, error)
}

var (
	ErrInvalidVisitor = errors.New("invalid_visitor")
	ErrInvalidProduct = errors.New("invalid_product")
)
