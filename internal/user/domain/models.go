package domain

import (
	"time"

	"gorm.io/datatypes"
)

// User mirrors the identity owned by the external auth provider. Only
// purchase-derived state lives here: the aggregate stats, the purchased item
// list used by the already-owned guard, and subscription entitlement fields.
type User struct {
	ID          string `gorm:"primaryKey" json:"id"`
	Email       string `gorm:"index" json:"email"`
	DisplayName string `json:"display_name,omitempty"`

	PurchasedItems datatypes.JSONSlice[string] `json:"purchased_items"`

	// Aggregate stats, recomputed from completed purchase records.
	TotalPurchases  int64      `gorm:"not null;default:0" json:"total_purchases"`
	TotalSpentMinor int64      `gorm:"not null;default:0" json:"total_spent_minor"`
	LastPurchaseAt  *time.Time `json:"last_purchase_at,omitempty"`

	SubscriptionTier      string     `gorm:"not null;default:free" json:"subscription_tier"`
	SubscriptionExpiresAt *time.Time `json:"subscription_expires_at,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (User) TableName() string { return "users" }

const (
	TierFree    = "free"
	TierPremium = "premium"
)

// Stats is the derived per-user purchase aggregate. It is always recomputed
// as a whole, never incremented.
type Stats struct {
	TotalPurchases  int64
	TotalSpentMinor int64
	LastPurchaseAt  *time.Time
}
