package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/vitalpath/vitalpath/internal/clock"
	"github.com/vitalpath/vitalpath/internal/purchase/domain"
	userdomain "github.com/vitalpath/vitalpath/internal/user/domain"
	"github.com/vitalpath/vitalpath/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Repo     domain.Repository
	UserRepo userdomain.Repository
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	repo     domain.Repository
	userRepo userdomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("purchase.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		repo:     p.Repo,
		userRepo: p.UserRepo,
	}
}

// Add persists one purchase record. A record without a real owner must never
// exist, so the user ID is validated before anything touches the store; the
// string forms of null leaking out of upstream serializers are rejected too.
// Store errors propagate: a silently lost purchase is a business-critical
// failure.
func (s *Service) Add(ctx context.Context, req domain.AddPurchaseRequest) (domain.PurchaseRecord, error) {
	userID := strings.TrimSpace(req.UserID)
	switch userID {
	case "", "null", "undefined":
		return domain.PurchaseRecord{}, domain.ErrInvalidUser
	}
	if strings.TrimSpace(req.ItemID) == "" {
		return domain.PurchaseRecord{}, domain.ErrInvalidItem
	}
	transactionID := strings.TrimSpace(req.TransactionID)
	if transactionID == "" {
		return domain.PurchaseRecord{}, domain.ErrInvalidTransaction
	}

	purchaseDate := req.PurchaseDate
	if purchaseDate.IsZero() {
		purchaseDate = s.clock.Now()
	}
	status := req.Status
	if status == "" {
		status = domain.StatusCompleted
	}

	record := domain.PurchaseRecord{
		ID:                   s.genID.Generate(),
		UserID:               userID,
		ItemID:               strings.TrimSpace(req.ItemID),
		ItemTitle:            strings.TrimSpace(req.ItemTitle),
		PurchaseDate:         purchaseDate,
		AmountMinor:          req.AmountMinor,
		Currency:             strings.ToLower(strings.TrimSpace(req.Currency)),
		TransactionID:        transactionID,
		Status:               status,
		Type:                 req.Type,
		ExpiresAt:            req.ExpiresAt,
		TransferredFromGuest: req.TransferredFromGuest,
		CreatedAt:            s.clock.Now(),
	}

	if err := s.repo.Insert(ctx, s.db, &record); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.PurchaseRecord{}, domain.ErrDuplicateTransaction
		}
		return domain.PurchaseRecord{}, err
	}
	return record, nil
}

func (s *Service) ListByUser(ctx context.Context, userID string) ([]domain.PurchaseRecord, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, domain.ErrInvalidUser
	}

	items, err := s.repo.FindByUser(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}

	records := make([]domain.PurchaseRecord, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		records = append(records, *item)
	}
	return records, nil
}

func (s *Service) GetByID(ctx context.Context, userID, id string) (domain.PurchaseRecord, error) {
	record, err := s.repo.FindByID(ctx, s.db, strings.TrimSpace(userID), strings.TrimSpace(id))
	if err != nil {
		return domain.PurchaseRecord{}, err
	}
	if record == nil {
		return domain.PurchaseRecord{}, domain.ErrNotFound
	}
	return *record, nil
}

func (s *Service) HasTransaction(ctx context.Context, userID, transactionID string) (bool, error) {
	return s.repo.ExistsTransaction(ctx, s.db, strings.TrimSpace(userID), strings.TrimSpace(transactionID))
}

// UpdateUserStats recomputes the user's aggregates from the full record set
// and overwrites them unconditionally. Re-running with no new purchases
// yields the same result.
func (s *Service) UpdateUserStats(ctx context.Context, userID string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return domain.ErrInvalidUser
	}

	records, err := s.repo.FindByUser(ctx, s.db, userID)
	if err != nil {
		return err
	}

	return s.userRepo.UpdateStats(ctx, s.db, userID, domain.AggregateStats(records))
}
