package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/vitalpath/vitalpath/internal/clock"
	"github.com/vitalpath/vitalpath/internal/config"
	"github.com/vitalpath/vitalpath/internal/events"
	guestsessiondomain "github.com/vitalpath/vitalpath/internal/guestsession/domain"
	purchasedomain "github.com/vitalpath/vitalpath/internal/purchase/domain"
	"github.com/vitalpath/vitalpath/internal/reconcile/domain"
	userdomain "github.com/vitalpath/vitalpath/internal/user/domain"
	"github.com/vitalpath/vitalpath/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	Cfg          config.Config
	DB           *gorm.DB
	Log          *zap.Logger
	GenID        *snowflake.Node
	Clock        clock.Clock
	Users        userdomain.Service
	UserRepo     userdomain.Repository
	PurchaseRepo purchasedomain.Repository
	SessionRepo  guestsessiondomain.Repository
	Events       *events.Recorder
}

type Service struct {
	cfg          config.Config
	db           *gorm.DB
	log          *zap.Logger
	genID        *snowflake.Node
	clock        clock.Clock
	users        userdomain.Service
	userRepo     userdomain.Repository
	purchaseRepo purchasedomain.Repository
	sessionRepo  guestsessiondomain.Repository
	events       *events.Recorder
}

func New(p Params) domain.Service {
	return &Service{
		cfg:          p.Cfg,
		db:           p.DB,
		log:          p.Log.Named("reconcile.service"),
		genID:        p.GenID,
		clock:        p.Clock,
		users:        p.Users,
		userRepo:     p.UserRepo,
		purchaseRepo: p.PurchaseRepo,
		sessionRepo:  p.SessionRepo,
		events:       p.Events,
	}
}

// Reconcile transfers a visitor's completed guest purchases to their durable
// identity. Persist and clear run in one transaction: guest state is only
// removed once the owning records are committed, so a failed transfer leaves
// the sessions intact for a retry and a repeated transfer finds nothing new
// to credit.
func (s *Service) Reconcile(ctx context.Context, req domain.ReconcileRequest) (domain.ReconcileResult, error) {
	userID := strings.TrimSpace(req.UserID)
	switch userID {
	case "", "null", "undefined":
		return domain.ReconcileResult{}, domain.ErrInvalidUser
	}
	visitorID := strings.TrimSpace(req.VisitorID)
	if visitorID == "" {
		return domain.ReconcileResult{}, domain.ErrInvalidVisitor
	}

	if _, err := s.users.EnsureUser(ctx, userdomain.EnsureUserRequest{
		ID:          userID,
		Email:       strings.TrimSpace(req.Email),
		DisplayName: strings.TrimSpace(req.DisplayName),
	}); err != nil {
		return domain.ReconcileResult{}, err
	}

	var result domain.ReconcileResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sessions, err := s.sessionRepo.FindCompleted(ctx, tx, visitorID)
		if err != nil {
			return err
		}
		if len(sessions) == 0 {
			return nil
		}

		for _, session := range sessions {
			if session == nil {
				continue
			}

			// The session ID carries the payment processor's reference once
			// completed, making it the transaction key. Sessions already
			// credited in an earlier partial pass are skipped, not errors.
			exists, err := s.purchaseRepo.ExistsTransaction(ctx, tx, userID, session.SessionID)
			if err != nil {
				return err
			}
			if exists {
				result.Skipped++
				continue
			}

			record := purchasedomain.PurchaseRecord{
				ID:                   s.genID.Generate(),
				UserID:               userID,
				ItemID:               session.ProductID,
				ItemTitle:            session.ProductTitle,
				PurchaseDate:         session.CreatedAt,
				AmountMinor:          session.PriceMinor,
				Currency:             strings.ToLower(s.cfg.Payment.Currency),
				TransactionID:        session.SessionID,
				Status:               purchasedomain.StatusCompleted,
				Type:                 purchasedomain.PurchaseType(session.ProductType),
				TransferredFromGuest: true,
				CreatedAt:            s.clock.Now(),
			}
			if err := s.purchaseRepo.Insert(ctx, tx, &record); err != nil {
				if db.IsDuplicateKeyErr(err) {
					// A confirmation racing past the pre-check lands here;
					// the payment is credited either way.
					result.Skipped++
					continue
				}
				return err
			}
			if err := s.userRepo.AppendPurchasedItem(ctx, tx, userID, session.ProductID); err != nil {
				return err
			}
			result.Transferred = append(result.Transferred, record)
		}

		if len(result.Transferred) > 0 {
			records, err := s.purchaseRepo.FindByUser(ctx, tx, userID)
			if err != nil {
				return err
			}
			if err := s.userRepo.UpdateStats(ctx, tx, userID, purchasedomain.AggregateStats(records)); err != nil {
				return err
			}
		}

		return s.sessionRepo.DeleteAll(ctx, tx, visitorID)
	})
	if err != nil {
		s.log.Error("guest reconciliation failed",
			zap.String("user_id", userID),
			zap.String("visitor_id", visitorID),
			zap.Error(err),
		)
		return domain.ReconcileResult{}, err
	}

	for _, record := range result.Transferred {
		s.events.GuestReconciled()
		s.events.PurchaseRecorded(string(record.Type), "reconcile")
	}

	return result, nil
}
