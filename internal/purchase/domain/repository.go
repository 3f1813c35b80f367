package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, record *PurchaseRecord) error
	FindByUser(ctx context.Context, db *gorm.DB, userID string) ([]*PurchaseRecord, error)
	FindByID(ctx context.Context, db *gorm.DB, userID, id string) (*PurchaseRecord, error)
	ExistsTransaction(ctx context.Context, db *gorm.DB, userID, transactionID string) (bool, error)
}
