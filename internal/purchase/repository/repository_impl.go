package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/vitalpath/vitalpath/internal/purchase/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, record *domain.PurchaseRecord) error {
	return db.WithContext(ctx).Create(record).Error
}

func (r *repo) FindByUser(ctx context.Context, db *gorm.DB, userID string) ([]*domain.PurchaseRecord, error) {
	var records []*domain.PurchaseRecord
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("purchase_date desc, id desc").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, userID, id string) (*domain.PurchaseRecord, error) {
	parsed, err := snowflake.ParseString(id)
	if err != nil {
		return nil, nil
	}

	var record domain.PurchaseRecord
	err = db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, parsed).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

func (r *repo) ExistsTransaction(ctx context.Context, db *gorm.DB, userID, transactionID string) (bool, error) {
	var count int64
	err := db.WithContext(ctx).Model(&domain.PurchaseRecord{}).
		Where("user_id = ? AND transaction_id = ?", userID, transactionID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
