package domain

import (
	"context"
	"errors"
)

// InitiateRequest is a checkout intent. UserID is empty for unauthenticated
// purchasers; VisitorID always identifies the browser session.
type InitiateRequest struct {
	ProductID  string
	VisitorID  string
	UserID     string
	UserEmail  string
	GuestEmail string
}

type InitiateResponse struct {
	RedirectURL    string `json:"url"`
	GuestSessionID string `json:"guest_session_id,omitempty"`
}

type Service interface {
	Initiate(context.Context, InitiateRequest) (InitiateResponse, error)
}

var ErrProductUnavailable = errors.New("product_unavailable")
