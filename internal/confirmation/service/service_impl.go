package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vitalpath/vitalpath/internal/clock"
	"github.com/vitalpath/vitalpath/internal/confirmation/domain"
	"github.com/vitalpath/vitalpath/internal/events"
	guestsessiondomain "github.com/vitalpath/vitalpath/internal/guestsession/domain"
	paymentdomain "github.com/vitalpath/vitalpath/internal/payment/domain"
	"github.com/vitalpath/vitalpath/internal/providers/email"
	purchasedomain "github.com/vitalpath/vitalpath/internal/purchase/domain"
	userdomain "github.com/vitalpath/vitalpath/internal/user/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	Clock     clock.Clock
	Gateway   paymentdomain.Gateway
	Purchases purchasedomain.Service
	Users     userdomain.Service
	UserRepo  userdomain.Repository
	Sessions  guestsessiondomain.Service
	Email     email.Provider
	Events    *events.Recorder
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	clock     clock.Clock
	gateway   paymentdomain.Gateway
	purchases purchasedomain.Service
	users     userdomain.Service
	userRepo  userdomain.Repository
	sessions  guestsessiondomain.Service
	email     email.Provider
	events    *events.Recorder
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("confirmation.service"),
		clock:     p.Clock,
		gateway:   p.Gateway,
		purchases: p.Purchases,
		users:     p.Users,
		userRepo:  p.UserRepo,
		sessions:  p.Sessions,
		email:     p.Email,
		events:    p.Events,
	}
}

// Confirm resolves a payment session reference into its terminal state. The
// gateway session is the source of truth for amount, currency and metadata;
// nothing client-supplied beyond the reference itself is trusted.
func (s *Service) Confirm(ctx context.Context, req domain.ConfirmRequest) (domain.ConfirmResult, error) {
	ref := strings.TrimSpace(req.SessionRef)
	if ref == "" {
		s.events.ConfirmationFailed("missing_reference")
		return domain.ConfirmResult{}, domain.ErrMissingReference
	}

	session, err := s.gateway.RetrieveSession(ctx, ref)
	if err != nil {
		s.events.ConfirmationFailed("session_lookup")
		s.log.Error("payment session lookup failed",
			zap.String("session_ref", ref),
			zap.Error(err),
		)
		return domain.ConfirmResult{}, err
	}

	// An abandoned session is retrievable but unpaid. Only settled sessions
	// credit anything.
	switch session.PaymentStatus {
	case "paid", "no_payment_required":
	default:
		s.events.ConfirmationFailed("payment_incomplete")
		return domain.ConfirmResult{}, domain.ErrPaymentIncomplete
	}

	meta := paymentdomain.ParseMetadata(session.Metadata)
	switch meta.Kind {
	case paymentdomain.KindCourse:
		return s.confirmItem(ctx, session, meta, purchasedomain.TypeCourse, req.VisitorID)
	case paymentdomain.KindDiet:
		return s.confirmItem(ctx, session, meta, purchasedomain.TypeDiet, req.VisitorID)
	default:
		return s.confirmSubscription(ctx, session, meta)
	}
}

func (s *Service) confirmItem(
	ctx context.Context,
	session paymentdomain.Session,
	meta paymentdomain.SessionMetadata,
	purchaseType purchasedomain.PurchaseType,
	visitorID string,
) (domain.ConfirmResult, error) {
	if meta.ItemID == "" || meta.ItemTitle == "" {
		s.events.ConfirmationFailed("malformed_session")
		return domain.ConfirmResult{}, domain.ErrMalformedSession
	}

	if meta.IsGuest || meta.GuestSessionID != "" {
		// Guest purchases are never written under a synthetic identity.
		// Marking the visitor's session completed hands persistence off to
		// reconciliation once the purchaser signs up.
		if err := s.sessions.Complete(ctx, visitorID, session.ID); err != nil {
			s.log.Warn("guest session completion failed",
				zap.String("session_ref", session.ID),
				zap.String("visitor_id", visitorID),
				zap.Error(err),
			)
		}
		return domain.ConfirmResult{
			Success:      true,
			PurchaseType: string(purchaseType),
			ItemID:       meta.ItemID,
			ItemTitle:    meta.ItemTitle,
			Guest:        true,
		}, nil
	}

	if meta.UserID == "" {
		s.events.ConfirmationFailed("missing_user")
		return domain.ConfirmResult{}, domain.ErrMissingUser
	}

	if _, err := s.users.EnsureUser(ctx, userdomain.EnsureUserRequest{
		ID:    meta.UserID,
		Email: session.CustomerDetail.Email,
	}); err != nil {
		return domain.ConfirmResult{}, err
	}

	owned, err := s.users.HasPurchasedItem(ctx, meta.UserID, meta.ItemID)
	if err != nil {
		return domain.ConfirmResult{}, err
	}
	if owned {
		s.events.ConfirmationFailed("already_purchased")
		return domain.ConfirmResult{}, domain.ErrAlreadyPurchased
	}

	_, err = s.purchases.Add(ctx, purchasedomain.AddPurchaseRequest{
		UserID:        meta.UserID,
		ItemID:        meta.ItemID,
		ItemTitle:     meta.ItemTitle,
		PurchaseDate:  s.clock.Now(),
		AmountMinor:   session.AmountTotal,
		Currency:      session.Currency,
		TransactionID: session.ID,
		Status:        purchasedomain.StatusCompleted,
		Type:          purchaseType,
	})
	if errors.Is(err, purchasedomain.ErrDuplicateTransaction) {
		// The unique index closes the pre-check race. A second confirmation
		// presenting the same reference resolves as already purchased.
		s.events.ConfirmationFailed("already_purchased")
		return domain.ConfirmResult{}, domain.ErrAlreadyPurchased
	}
	if err != nil {
		s.events.ConfirmationFailed("record_write")
		return domain.ConfirmResult{}, err
	}
	s.events.PurchaseRecorded(string(purchaseType), "confirmation")

	if err := s.purchases.UpdateUserStats(ctx, meta.UserID); err != nil {
		s.log.Error("stats recompute failed after purchase",
			zap.String("user_id", meta.UserID),
			zap.Error(err),
		)
	}
	if err := s.userRepo.AppendPurchasedItem(ctx, s.db, meta.UserID, meta.ItemID); err != nil {
		s.log.Error("purchased item append failed",
			zap.String("user_id", meta.UserID),
			zap.String("item_id", meta.ItemID),
			zap.Error(err),
		)
	}

	s.sendConfirmationMail(ctx, session, meta)

	return domain.ConfirmResult{
		Success:      true,
		PurchaseType: string(purchaseType),
		ItemID:       meta.ItemID,
		ItemTitle:    meta.ItemTitle,
		UserID:       meta.UserID,
	}, nil
}

func (s *Service) confirmSubscription(
	ctx context.Context,
	session paymentdomain.Session,
	meta paymentdomain.SessionMetadata,
) (domain.ConfirmResult, error) {
	if meta.UserID == "" {
		s.events.ConfirmationFailed("missing_user")
		return domain.ConfirmResult{}, domain.ErrMissingUser
	}

	if _, err := s.users.EnsureUser(ctx, userdomain.EnsureUserRequest{
		ID:    meta.UserID,
		Email: session.CustomerDetail.Email,
	}); err != nil {
		return domain.ConfirmResult{}, err
	}

	result := domain.ConfirmResult{
		Success:          true,
		PurchaseType:     string(purchasedomain.TypeSubscription),
		UserID:           meta.UserID,
		SubscriptionTier: userdomain.TierFree,
	}

	// Entitlement enrichment fails open: a subscription-detail outage must
	// not turn a settled payment into a user-facing error.
	var expiresAt *time.Time
	if session.SubscriptionID != "" {
		subscription, err := s.gateway.RetrieveSubscription(ctx, session.SubscriptionID)
		switch {
		case err != nil:
			s.log.Warn("subscription detail lookup failed",
				zap.String("subscription_id", session.SubscriptionID),
				zap.Error(err),
			)
		case subscription.Status == "active" || subscription.Status == "trialing":
			result.SubscriptionTier = userdomain.TierPremium
			if subscription.CurrentPeriodEnd > 0 {
				at := time.Unix(subscription.CurrentPeriodEnd, 0).UTC()
				expiresAt = &at
			}
			if err := s.userRepo.ApplySubscription(ctx, s.db, meta.UserID, result.SubscriptionTier, expiresAt); err != nil {
				s.log.Error("subscription entitlement write failed",
					zap.String("user_id", meta.UserID),
					zap.Error(err),
				)
			} else {
				result.SubscriptionApplied = true
			}
		}
	}

	exists, err := s.purchases.HasTransaction(ctx, meta.UserID, session.ID)
	if err != nil {
		return domain.ConfirmResult{}, err
	}
	if exists {
		// Webhook-style redelivery: the payment is already credited.
		return result, nil
	}

	_, err = s.purchases.Add(ctx, purchasedomain.AddPurchaseRequest{
		UserID:        meta.UserID,
		ItemID:        session.SubscriptionID,
		ItemTitle:     "Premium subscription",
		PurchaseDate:  s.clock.Now(),
		AmountMinor:   session.AmountTotal,
		Currency:      session.Currency,
		TransactionID: session.ID,
		Status:        purchasedomain.StatusCompleted,
		Type:          purchasedomain.TypeSubscription,
		ExpiresAt:     expiresAt,
	})
	if errors.Is(err, purchasedomain.ErrDuplicateTransaction) {
		return result, nil
	}
	if err != nil {
		s.events.ConfirmationFailed("record_write")
		return domain.ConfirmResult{}, err
	}
	s.events.PurchaseRecorded(string(purchasedomain.TypeSubscription), "confirmation")

	if err := s.purchases.UpdateUserStats(ctx, meta.UserID); err != nil {
		s.log.Error("stats recompute failed after subscription",
			zap.String("user_id", meta.UserID),
			zap.Error(err),
		)
	}

	return result, nil
}

func (s *Service) sendConfirmationMail(ctx context.Context, session paymentdomain.Session, meta paymentdomain.SessionMetadata) {
	to := strings.TrimSpace(session.CustomerDetail.Email)
	if to == "" {
		return
	}

	subject := "Your purchase is confirmed"
	body := fmt.Sprintf(
		"<p>Thanks for your purchase!</p><p><strong>%s</strong> is now available in your account.</p>",
		meta.ItemTitle,
	)
	if err := s.email.Send(ctx, []string{to}, subject, body); err != nil {
		s.log.Warn("confirmation email failed",
			zap.String("session_ref", session.ID),
			zap.Error(err),
		)
	}
}
