package domain

import (
	"context"
	"errors"
)

type ConfirmRequest struct {
	// SessionRef is the payment session reference the purchaser lands with.
	SessionRef string
	// VisitorID ties a guest confirmation back to the visitor's session slot.
	VisitorID string
}

// ConfirmResult is the terminal state of a confirmation. Guest purchases
// report success without a persisted record; reconciliation persists them
// later under the real owner.
type ConfirmResult struct {
	Success      bool   `json:"success"`
	PurchaseType string `json:"purchase_type"`
	ItemID       string `json:"item_id,omitempty"`
	ItemTitle    string `json:"item_title,omitempty"`
	UserID       string `json:"user_id,omitempty"`
	Guest        bool   `json:"guest,omitempty"`

	// Subscription confirmations only. SubscriptionApplied is false when the
	// subscription detail lookup failed and entitlement could not be written;
	// the payment itself still confirmed.
	SubscriptionApplied bool   `json:"subscription_applied,omitempty"`
	SubscriptionTier    string `json:"subscription_tier,omitempty"`
}

type Service interface {
	Confirm(context.Context, ConfirmRequest) (ConfirmResult, error)
}

var (
	ErrMissingReference  = errors.New("missing_session_reference")
	ErrMalformedSession  = errors.New("malformed_session")
	ErrMissingUser       = errors.New("missing_user")
	ErrAlreadyPurchased  = errors.New("already_purchased")
	ErrPaymentIncomplete = errors.New("payment_incomplete")
)
