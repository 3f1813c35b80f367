package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/vitalpath/vitalpath/internal/clock"
	"github.com/vitalpath/vitalpath/internal/guestsession/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("guestsession.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

// Create opens a fresh guest session as the visitor's current slot,
// overwriting any prior current session. Last write wins; the replaced
// session stays in history.
func (s *Service) Create(ctx context.Context, req domain.CreateSessionRequest) (domain.GuestSession, error) {
	visitorID := strings.TrimSpace(req.VisitorID)
	if visitorID == "" {
		return domain.GuestSession{}, domain.ErrInvalidVisitor
	}
	if strings.TrimSpace(req.ProductID) == "" || strings.TrimSpace(req.ProductTitle) == "" {
		return domain.GuestSession{}, domain.ErrInvalidProduct
	}

	now := s.clock.Now()
	session := domain.GuestSession{
		ID:           s.genID.Generate(),
		SessionID:    newGuestSessionID(now.UnixMilli()),
		VisitorID:    visitorID,
		ProductID:    strings.TrimSpace(req.ProductID),
		ProductTitle: strings.TrimSpace(req.ProductTitle),
		PriceMinor:   req.PriceMinor,
		ProductType:  strings.TrimSpace(req.ProductType),
		GuestEmail:   strings.TrimSpace(req.GuestEmail),
		Current:      true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.ClearCurrent(ctx, tx, visitorID); err != nil {
			return err
		}
		return s.repo.Insert(ctx, tx, &session)
	})
	if err != nil {
		return domain.GuestSession{}, err
	}
	return session, nil
}

// GetCurrent never propagates read errors; a broken store reads as "no
// session in flight".
func (s *Service) GetCurrent(ctx context.Context, visitorID string) (*domain.GuestSession, error) {
	session, err := s.repo.FindCurrent(ctx, s.db, strings.TrimSpace(visitorID))
	if err != nil {
		s.log.Warn("current session read failed", zap.Error(err))
		return nil, nil
	}
	return session, nil
}

// Complete marks the current session paid and swaps its locally generated
// session ID for the payment processor's authoritative reference. A visitor
// with no current session is a no-op.
func (s *Service) Complete(ctx context.Context, visitorID, paymentSessionID string) error {
	paymentSessionID = strings.TrimSpace(paymentSessionID)
	if paymentSessionID == "" {
		return domain.ErrInvalidProduct
	}

	session, err := s.repo.FindCurrent(ctx, s.db, strings.TrimSpace(visitorID))
	if err != nil {
		return err
	}
	if session == nil {
		return nil
	}

	session.Completed = true
	session.SessionID = paymentSessionID
	return s.repo.Save(ctx, s.db, session)
}

// Clear drops only the current marker; history stays intact.
func (s *Service) Clear(ctx context.Context, visitorID string) error {
	return s.repo.ClearCurrent(ctx, s.db, strings.TrimSpace(visitorID))
}

func (s *Service) History(ctx context.Context, visitorID string) ([]domain.GuestSession, error) {
	items, err := s.repo.FindAll(ctx, s.db, strings.TrimSpace(visitorID))
	if err != nil {
		s.log.Warn("session history read failed", zap.Error(err))
		return []domain.GuestSession{}, nil
	}

	sessions := make([]domain.GuestSession, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		sessions = append(sessions, *item)
	}
	return sessions, nil
}

func (s *Service) HasCompleted(ctx context.Context, visitorID string) (bool, error) {
	sessions, err := s.History(ctx, visitorID)
	if err != nil {
		return false, err
	}
	for _, session := range sessions {
		if session.Completed {
			return true, nil
		}
	}
	return false, nil
}

// newGuestSessionID combines the creation time with a random suffix so
// concurrent tabs cannot collide.
func newGuestSessionID(unixMilli int64) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("guest_%d_%s", unixMilli, suffix)
}
