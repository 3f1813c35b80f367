package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, session *GuestSession) error
	Save(ctx context.Context, db *gorm.DB, session *GuestSession) error
	ClearCurrent(ctx context.Context, db *gorm.DB, visitorID string) error
	FindCurrent(ctx context.Context, db *gorm.DB, visitorID string) (*GuestSession, error)
	FindAll(ctx context.Context, db *gorm.DB, visitorID string) ([]*GuestSession, error)
	FindCompleted(ctx context.Context, db *gorm.DB, visitorID string) ([]*GuestSession, error)
	DeleteAll(ctx context.Context, db *gorm.DB, visitorID string) error
}
