package service

import (
	"context"
	"strings"

	catalogdomain "github.com/vitalpath/vitalpath/internal/catalog/domain"
	"github.com/vitalpath/vitalpath/internal/checkout/domain"
	"github.com/vitalpath/vitalpath/internal/config"
	"github.com/vitalpath/vitalpath/internal/events"
	guestsessiondomain "github.com/vitalpath/vitalpath/internal/guestsession/domain"
	paymentdomain "github.com/vitalpath/vitalpath/internal/payment/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Cfg      config.Config
	Log      *zap.Logger
	Catalog  catalogdomain.Service
	Sessions guestsessiondomain.Service
	Gateway  paymentdomain.Gateway
	Events   *events.Recorder
}

type Service struct {
	cfg      config.Config
	log      *zap.Logger
	catalog  catalogdomain.Service
	sessions guestsessiondomain.Service
	gateway  paymentdomain.Gateway
	events   *events.Recorder
}

func New(p Params) domain.Service {
	return &Service{
		cfg:      p.Cfg,
		log:      p.Log.Named("checkout.service"),
		catalog:  p.Catalog,
		sessions: p.Sessions,
		gateway:  p.Gateway,
		events:   p.Events,
	}
}

// Initiate opens a hosted checkout session for a catalog item and returns
// the redirect target. Unauthenticated purchasers get a guest session first;
// an authenticated identity always wins over any leftover guest session, so
// no guest session is created for a signed-in purchase.
func (s *Service) Initiate(ctx context.Context, req domain.InitiateRequest) (domain.InitiateResponse, error) {
	product, err := s.catalog.GetByID(ctx, req.ProductID)
	if err != nil {
		return domain.InitiateResponse{}, err
	}
	if !product.Active {
		return domain.InitiateResponse{}, domain.ErrProductUnavailable
	}

	isGuest := strings.TrimSpace(req.UserID) == ""
	s.events.CheckoutInitiated(string(product.Type), isGuest)

	metadata := map[string]string{}
	switch product.Type {
	case catalogdomain.ProductTypeDiet:
		metadata[paymentdomain.MetaType] = string(paymentdomain.KindDiet)
		metadata[paymentdomain.MetaDietID] = product.ID.String()
		metadata[paymentdomain.MetaDietTitle] = product.Title
	default:
		metadata[paymentdomain.MetaType] = string(paymentdomain.KindCourse)
		metadata[paymentdomain.MetaCourseID] = product.ID.String()
		metadata[paymentdomain.MetaCourseTitle] = product.Title
	}

	var guestSessionID string
	purchaserEmail := strings.TrimSpace(req.UserEmail)
	if isGuest {
		session, err := s.sessions.Create(ctx, guestsessiondomain.CreateSessionRequest{
			VisitorID:    req.VisitorID,
			ProductID:    product.ID.String(),
			ProductTitle: product.Title,
			PriceMinor:   product.PriceMinor,
			ProductType:  string(product.Type),
			GuestEmail:   req.GuestEmail,
		})
		if err != nil {
			return domain.InitiateResponse{}, err
		}
		guestSessionID = session.SessionID
		purchaserEmail = strings.TrimSpace(req.GuestEmail)

		metadata[paymentdomain.MetaGuestSessionID] = guestSessionID
		metadata[paymentdomain.MetaIsGuest] = "true"
	} else {
		metadata[paymentdomain.MetaUserID] = strings.TrimSpace(req.UserID)
	}

	checkout, err := s.gateway.CreateCheckoutSession(ctx, paymentdomain.CreateCheckoutSessionRequest{
		Mode:          paymentdomain.ModePayment,
		ItemName:      product.Title,
		AmountMinor:   product.PriceMinor,
		Currency:      product.Currency,
		CustomerEmail: purchaserEmail,
		SuccessURL:    s.cfg.Checkout.SuccessURL + "?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:     s.cfg.Checkout.CancelURL,
		Metadata:      metadata,
	})
	if err != nil {
		s.log.Error("checkout session creation failed",
			zap.String("product_id", product.ID.String()),
			zap.Error(err),
		)
		return domain.InitiateResponse{}, err
	}

	return domain.InitiateResponse{
		RedirectURL:    checkout.URL,
		GuestSessionID: guestSessionID,
	}, nil
}
