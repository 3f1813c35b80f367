package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// GuestSession is a provisional record of a not-yet-authenticated purchaser's
// in-progress purchase. The single current slot and the append-only history of
// the original client-local design are normalized into one table: every row is
// a history entry, and at most one row per visitor carries the current marker.
//
// SessionID starts as a locally generated guest reference and is overwritten
// with the payment processor's session reference once payment completes, so
// rows are keyed by an immutable internal ID instead.
type GuestSession struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"-"`
	SessionID string       `gorm:"not null;index" json:"session_id"`
	VisitorID string       `gorm:"not null;index" json:"-"`

	// Item snapshot taken at checkout-intent time; never re-fetched.
	ProductID    string `gorm:"not null" json:"product_id"`
	ProductTitle string `gorm:"not null" json:"product_title"`
	PriceMinor   int64  `gorm:"not null" json:"price_minor"`
	ProductType  string `gorm:"not null" json:"product_type"`

	GuestEmail string `json:"guest_email,omitempty"`

	Completed bool `gorm:"not null;default:false" json:"completed"`
	Current   bool `gorm:"not null;default:false;index" json:"-"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"-"`
}

func (GuestSession) TableName() string { return "guest_sessions" }
