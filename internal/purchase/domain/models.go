package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	userdomain "github.com/vitalpath/vitalpath/internal/user/domain"
)

type Status string

const (
	StatusCompleted Status = "completed"
	StatusPending   Status = "pending"
	StatusFailed    Status = "failed"
)

type PurchaseType string

const (
	TypeCourse       PurchaseType = "course"
	TypeDiet         PurchaseType = "diet"
	TypeSubscription PurchaseType = "subscription"
)

// PurchaseRecord is the durable, user-owned record of a paid purchase.
// TransactionID holds the payment processor's session reference; the
// compound unique index makes double-crediting a payment impossible at the
// store level, regardless of races between the fast-path pre-checks.
type PurchaseRecord struct {
	ID     snowflake.ID `gorm:"primaryKey" json:"id"`
	UserID string       `gorm:"not null;index;uniqueIndex:ux_purchases_user_transaction,priority:1" json:"user_id"`

	ItemID    string `gorm:"not null" json:"item_id"`
	ItemTitle string `gorm:"not null" json:"item_title"`

	PurchaseDate  time.Time `gorm:"not null" json:"purchase_date"`
	AmountMinor   int64     `gorm:"not null" json:"amount_minor"`
	Currency      string    `gorm:"not null" json:"currency"`
	TransactionID string    `gorm:"not null;uniqueIndex:ux_purchases_user_transaction,priority:2" json:"transaction_id"`

	Status Status       `gorm:"not null" json:"status"`
	Type   PurchaseType `json:"type,omitempty"`

	// Subscription purchases only.
	ExpiresAt *time.Time `json:"expires_at,omitempty"`

	TransferredFromGuest bool `gorm:"not null;default:false" json:"transferred_from_guest"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (PurchaseRecord) TableName() string { return "purchase_records" }

// AggregateStats folds completed records into the user's derived totals.
// Pure and order-independent, so recomputing is idempotent.
func AggregateStats(records []*PurchaseRecord) userdomain.Stats {
	var stats userdomain.Stats
	for _, record := range records {
		if record == nil || record.Status != StatusCompleted {
			continue
		}
		stats.TotalPurchases++
		stats.TotalSpentMinor += record.AmountMinor
		if stats.LastPurchaseAt == nil || record.PurchaseDate.After(*stats.LastPurchaseAt) {
			at := record.PurchaseDate
			stats.LastPurchaseAt = &at
		}
	}
	return stats
}
