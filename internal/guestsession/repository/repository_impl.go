package repository

import (
	"context"
	"errors"
	"time"

	"github.com/vitalpath/vitalpath/internal/guestsession/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, session *domain.GuestSession) error {
	return db.WithContext(ctx).Create(session).Error
}

func (r *repo) Save(ctx context.Context, db *gorm.DB, session *domain.GuestSession) error {
	session.UpdatedAt = time.Now().UTC()
	return db.WithContext(ctx).Save(session).Error
}

func (r *repo) ClearCurrent(ctx context.Context, db *gorm.DB, visitorID string) error {
	return db.WithContext(ctx).Model(&domain.GuestSession{}).
		Where("visitor_id = ? AND current = ?", visitorID, true).
		Updates(map[string]any{
			"current":    false,
			"updated_at": time.Now().UTC(),
		}).Error
}

func (r *repo) FindCurrent(ctx context.Context, db *gorm.DB, visitorID string) (*domain.GuestSession, error) {
	var session domain.GuestSession
	err := db.WithContext(ctx).
		Where("visitor_id = ? AND current = ?", visitorID, true).
		First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &session, nil
}

func (r *repo) FindAll(ctx context.Context, db *gorm.DB, visitorID string) ([]*domain.GuestSession, error) {
	var sessions []*domain.GuestSession
	err := db.WithContext(ctx).
		Where("visitor_id = ?", visitorID).
		Order("created_at asc, id asc").
		Find(&sessions).Error
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *repo) FindCompleted(ctx context.Context, db *gorm.DB, visitorID string) ([]*domain.GuestSession, error) {
	var sessions []*domain.GuestSession
	err := db.WithContext(ctx).
		Where("visitor_id = ? AND completed = ?", visitorID, true).
		Order("created_at asc, id asc").
		Find(&sessions).Error
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *repo) DeleteAll(ctx context.Context, db *gorm.DB, visitorID string) error {
	return db.WithContext(ctx).
		Where("visitor_id = ?", visitorID).
		Delete(&domain.GuestSession{}).Error
}
