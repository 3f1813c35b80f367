package repository

import (
	"context"
	"errors"
	"time"

	"github.com/vitalpath/vitalpath/internal/user/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

// Upsert creates the user on first sighting and merges profile fields on
// re-sighting. Empty incoming values never overwrite stored ones; callers
// routinely re-sight users without a display name or email.
func (r *repo) Upsert(ctx context.Context, db *gorm.DB, user *domain.User) error {
	existing, err := r.FindByID(ctx, db, user.ID)
	if err != nil {
		return err
	}
	if existing == nil {
		// A racing first sighting resolves on the primary key.
		return db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoNothing: true,
		}).Create(user).Error
	}

	updates := map[string]any{"updated_at": time.Now().UTC()}
	if user.Email != "" {
		updates["email"] = user.Email
	}
	if user.DisplayName != "" {
		updates["display_name"] = user.DisplayName
	}
	return db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", user.ID).Updates(updates).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id string) (*domain.User, error) {
	var user domain.User
	err := db.WithContext(ctx).First(&user, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *repo) UpdateStats(ctx context.Context, db *gorm.DB, id string, stats domain.Stats) error {
	return db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).Updates(map[string]any{
		"total_purchases":   stats.TotalPurchases,
		"total_spent_minor": stats.TotalSpentMinor,
		"last_purchase_at":  stats.LastPurchaseAt,
		"updated_at":        time.Now().UTC(),
	}).Error
}

func (r *repo) AppendPurchasedItem(ctx context.Context, db *gorm.DB, id, itemID string) error {
	var user domain.User
	if err := db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return err
	}
	for _, existing := range user.PurchasedItems {
		if existing == itemID {
			return nil
		}
	}
	user.PurchasedItems = append(user.PurchasedItems, itemID)
	return db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).Updates(map[string]any{
		"purchased_items": user.PurchasedItems,
		"updated_at":      time.Now().UTC(),
	}).Error
}

func (r *repo) ApplySubscription(ctx context.Context, db *gorm.DB, id, tier string, expiresAt *time.Time) error {
	return db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).Updates(map[string]any{
		"subscription_tier":       tier,
		"subscription_expires_at": expiresAt,
		"updated_at":              time.Now().UTC(),
	}).Error
}
