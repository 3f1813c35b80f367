package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	Upsert(ctx context.Context, db *gorm.DB, user *User) error
	FindByID(ctx context.Context, db *gorm.DB, id string) (*User, error)
	UpdateStats(ctx context.Context, db *gorm.DB, id string, stats Stats) error
	AppendPurchasedItem(ctx context.Context, db *gorm.DB, id, itemID string) error
	ApplySubscription(ctx context.Context, db *gorm.DB, id, tier string, expiresAt *time.Time) error
}
