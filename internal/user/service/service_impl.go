package service

import (
	"context"
	"strings"
	"time"

	"github.com/vitalpath/vitalpath/internal/user/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Repo domain.Repository
}

type Service struct {
	db   *gorm.DB
	log  *zap.Logger
	repo domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:   p.DB,
		log:  p.Log.Named("user.service"),
		repo: p.Repo,
	}
}

func (s *Service) EnsureUser(ctx context.Context, req domain.EnsureUserRequest) (domain.User, error) {
	id := strings.TrimSpace(req.ID)
	if id == "" {
		return domain.User{}, domain.ErrInvalidUser
	}

	now := time.Now().UTC()
	user := domain.User{
		ID:               id,
		Email:            strings.TrimSpace(req.Email),
		DisplayName:      strings.TrimSpace(req.DisplayName),
		SubscriptionTier: domain.TierFree,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.repo.Upsert(ctx, s.db, &user); err != nil {
		return domain.User{}, err
	}

	stored, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.User{}, err
	}
	if stored == nil {
		return domain.User{}, domain.ErrNotFound
	}
	return *stored, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.User{}, domain.ErrInvalidUser
	}

	user, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.User{}, err
	}
	if user == nil {
		return domain.User{}, domain.ErrNotFound
	}
	return *user, nil
}

func (s *Service) HasPurchasedItem(ctx context.Context, userID, itemID string) (bool, error) {
	user, err := s.repo.FindByID(ctx, s.db, strings.TrimSpace(userID))
	if err != nil {
		return false, err
	}
	if user == nil {
		return false, nil
	}
	for _, existing := range user.PurchasedItems {
		if existing == itemID {
			return true, nil
		}
	}
	return false, nil
}
