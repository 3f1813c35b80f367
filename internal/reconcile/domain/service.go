package domain

import (
	"context"
	"errors"

	purchasedomain "github.com/vitalpath/vitalpath/internal/purchase/domain"
)

type ReconcileRequest struct {
	VisitorID   string
	UserID      string
	Email       string
	DisplayName string
}

// ReconcileResult reports what one reconciliation pass transferred. A pass
// over an already-transferred visitor is a successful no-op.
type ReconcileResult struct {
	Transferred []purchasedomain.PurchaseRecord `json:"transferred"`
	Skipped     int                             `json:"skipped"`
}

type Service interface {
	Reconcile(context.Context, ReconcileRequest) (ReconcileResult, error)
}

var (
	ErrInvalidUser    = errors.New("invalid_user")
	ErrInvalidVisitor = errors.New("invalid_visitor")
)
