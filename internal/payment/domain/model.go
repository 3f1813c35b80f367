package domain

import (
	"context"
	"errors"
	"strings"
)

// Gateway is the contract this system needs from the external payment
// processor. Sessions retrieved here are the source of truth for amounts and
// metadata; client-supplied values are never trusted past checkout intent.
type Gateway interface {
	CreateCheckoutSession(ctx context.Context, req CreateCheckoutSessionRequest) (CheckoutSession, error)
	RetrieveSession(ctx context.Context, id string) (Session, error)
	RetrieveSubscription(ctx context.Context, id string) (Subscription, error)
}

const (
	ModePayment      = "payment"
	ModeSubscription = "subscription"
)

type CreateCheckoutSessionRequest struct {
	Mode          string
	ItemName      string
	AmountMinor   int64
	Currency      string
	CustomerEmail string
	SuccessURL    string
	CancelURL     string
	Metadata      map[string]string
}

// CheckoutSession is the hosted checkout the browser gets redirected to.
type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// Session is the authoritative state of a checkout session.
type Session struct {
	ID             string            `json:"id"`
	AmountTotal    int64             `json:"amount_total"`
	Currency       string            `json:"currency"`
	PaymentStatus  string            `json:"payment_status"`
	Metadata       map[string]string `json:"metadata"`
	SubscriptionID string            `json:"subscription"`
	CustomerID     string            `json:"customer"`
	CustomerDetail CustomerDetail    `json:"customer_details"`
}

type CustomerDetail struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type Subscription struct {
	ID               string `json:"id"`
	Status           string `json:"status"`
	CurrentPeriodEnd int64  `json:"current_period_end"`
}

var (
	ErrSessionNotFound = errors.New("session_not_found")
	ErrGatewayFailure  = errors.New("gateway_failure")
)

// Metadata keys written at checkout and read back at confirmation.
const (
	MetaType           = "type"
	MetaCourseID       = "courseId"
	MetaCourseTitle    = "courseTitle"
	MetaDietID         = "dietId"
	MetaDietTitle      = "dietTitle"
	MetaUserID         = "userId"
	MetaGuestSessionID = "guestSessionId"
	MetaIsGuest        = "isGuestPurchase"
)

type PurchaseKind string

const (
	KindCourse       PurchaseKind = "course_purchase"
	KindDiet         PurchaseKind = "diet_purchase"
	KindSubscription PurchaseKind = "subscription"
)

// SessionMetadata is the validated, typed form of a session's metadata map.
// Parsing happens once at the boundary instead of ad-hoc field access.
type SessionMetadata struct {
	Kind           PurchaseKind
	ItemID         string
	ItemTitle      string
	UserID         string
	GuestSessionID string
	IsGuest        bool
}

// ParseMetadata classifies a session by its metadata tag and normalizes the
// identity fields. Stringified nulls from upstream serializers read as
// absent. Sessions without a known purchase tag classify as subscriptions.
func ParseMetadata(raw map[string]string) SessionMetadata {
	meta := SessionMetadata{Kind: KindSubscription}
	if raw == nil {
		return meta
	}

	switch strings.TrimSpace(raw[MetaType]) {
	case string(KindCourse):
		meta.Kind = KindCourse
		meta.ItemID = cleanValue(raw[MetaCourseID])
		meta.ItemTitle = cleanValue(raw[MetaCourseTitle])
	case string(KindDiet):
		meta.Kind = KindDiet
		meta.ItemID = cleanValue(raw[MetaDietID])
		meta.ItemTitle = cleanValue(raw[MetaDietTitle])
	}

	meta.UserID = cleanValue(raw[MetaUserID])
	meta.GuestSessionID = cleanValue(raw[MetaGuestSessionID])
	meta.IsGuest = strings.EqualFold(strings.TrimSpace(raw[MetaIsGuest]), "true")
	return meta
}

func cleanValue(value string) string {
	value = strings.TrimSpace(value)
	switch value {
	case "null", "undefined":
		return ""
	}
	return value
}
