package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	catalogdomain "github.com/vitalpath/vitalpath/internal/catalog/domain"
	"github.com/vitalpath/vitalpath/internal/checkout/domain"
	"github.com/vitalpath/vitalpath/internal/clock"
	"github.com/vitalpath/vitalpath/internal/config"
	guestsessiondomain "github.com/vitalpath/vitalpath/internal/guestsession/domain"
	guestsessionrepository "github.com/vitalpath/vitalpath/internal/guestsession/repository"
	guestsessionservice "github.com/vitalpath/vitalpath/internal/guestsession/service"
	paymentdomain "github.com/vitalpath/vitalpath/internal/payment/domain"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fakeCatalog struct {
	product catalogdomain.Product
	err     error
}

func (f *fakeCatalog) Create(context.Context, catalogdomain.CreateProductRequest) (catalogdomain.Product, error) {
	return catalogdomain.Product{}, nil
}

func (f *fakeCatalog) List(context.Context, catalogdomain.ListProductRequest) ([]catalogdomain.Product, error) {
	return nil, nil
}

func (f *fakeCatalog) GetByID(context.Context, string) (catalogdomain.Product, error) {
	return f.product, f.err
}

func (f *fakeCatalog) GetBySlug(context.Context, string) (catalogdomain.Product, error) {
	return f.product, f.err
}

type fakeGateway struct {
	lastRequest paymentdomain.CreateCheckoutSessionRequest
	err         error
}

func (f *fakeGateway) CreateCheckoutSession(ctx context.Context, req paymentdomain.CreateCheckoutSessionRequest) (paymentdomain.CheckoutSession, error) {
	f.lastRequest = req
	if f.err != nil {
		return paymentdomain.CheckoutSession{}, f.err
	}
	return paymentdomain.CheckoutSession{
		ID:  "cs_test_1",
		URL: "https://checkout.example/cs_test_1",
	}, nil
}

func (f *fakeGateway) RetrieveSession(context.Context, string) (paymentdomain.Session, error) {
	return paymentdomain.Session{}, paymentdomain.ErrSessionNotFound
}

func (f *fakeGateway) RetrieveSubscription(context.Context, string) (paymentdomain.Subscription, error) {
	return paymentdomain.Subscription{}, paymentdomain.ErrSessionNotFound
}

type fixture struct {
	svc     domain.Service
	catalog *fakeCatalog
	gateway *fakeGateway
	guests  guestsessiondomain.Service
}

func newFixture(t *testing.T, dsn string) *fixture {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&guestsessiondomain.GuestSession{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	logger := zap.NewNop()

	guests := guestsessionservice.New(guestsessionservice.Params{
		DB:    conn,
		Log:   logger,
		GenID: node,
		Clock: clock.NewFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)),
		Repo:  guestsessionrepository.Provide(),
	})

	catalog := &fakeCatalog{
		product: catalogdomain.Product{
			ID:         node.Generate(),
			Slug:       "mindful-nutrition-course",
			Type:       catalogdomain.ProductTypeCourse,
			Title:      "Mindful Nutrition Course",
			PriceMinor: 4999,
			Currency:   "pln",
			Active:     true,
		},
	}
	gateway := &fakeGateway{}

	svc := New(Params{
		Cfg: config.Config{
			Checkout: config.CheckoutConfig{
				SuccessURL: "https://app.example/purchase/success",
				CancelURL:  "https://app.example/purchase/cancel",
			},
		},
		Log:      logger,
		Catalog:  catalog,
		Sessions: guests,
		Gateway:  gateway,
	})

	return &fixture{svc: svc, catalog: catalog, gateway: gateway, guests: guests}
}

func TestInitiateGuestCheckoutCreatesSession(t *testing.T) {
	f := newFixture(t, "file:checkout_guest?mode=memory&cache=shared")
	ctx := context.Background()

	resp, err := f.svc.Initiate(ctx, domain.InitiateRequest{
		ProductID:  f.catalog.product.ID.String(),
		VisitorID:  "visitor-1",
		GuestEmail: "guest@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://checkout.example/cs_test_1", resp.RedirectURL)
	assert.NotEmpty(t, resp.GuestSessionID)

	current, err := f.guests.GetCurrent(ctx, "visitor-1")
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, resp.GuestSessionID, current.SessionID)

	meta := f.gateway.lastRequest.Metadata
	assert.Equal(t, resp.GuestSessionID, meta[paymentdomain.MetaGuestSessionID])
	assert.Equal(t, "true", meta[paymentdomain.MetaIsGuest])
	assert.Empty(t, meta[paymentdomain.MetaUserID])
	assert.Equal(t, "guest@example.com", f.gateway.lastRequest.CustomerEmail)
	assert.Contains(t, f.gateway.lastRequest.SuccessURL, "{CHECKOUT_SESSION_ID}")
}

func TestInitiateUserCheckoutSkipsGuestSession(t *testing.T) {
	f := newFixture(t, "file:checkout_user?mode=memory&cache=shared")
	ctx := context.Background()

	resp, err := f.svc.Initiate(ctx, domain.InitiateRequest{
		ProductID: f.catalog.product.ID.String(),
		VisitorID: "visitor-1",
		UserID:    "user-1",
		UserEmail: "owner@example.com",
	})
	require.NoError(t, err)
	assert.Empty(t, resp.GuestSessionID)

	// Authenticated identity wins: no guest session is created at all.
	current, err := f.guests.GetCurrent(ctx, "visitor-1")
	require.NoError(t, err)
	assert.Nil(t, current)

	meta := f.gateway.lastRequest.Metadata
	assert.Equal(t, "user-1", meta[paymentdomain.MetaUserID])
	assert.Empty(t, meta[paymentdomain.MetaGuestSessionID])
	assert.Empty(t, meta[paymentdomain.MetaIsGuest])
}

func TestInitiateDietUsesDietMetadata(t *testing.T) {
	f := newFixture(t, "file:checkout_diet?mode=memory&cache=shared")
	f.catalog.product.Type = catalogdomain.ProductTypeDiet
	f.catalog.product.Title = "Keto Starter Plan"

	_, err := f.svc.Initiate(context.Background(), domain.InitiateRequest{
		ProductID: f.catalog.product.ID.String(),
		VisitorID: "visitor-1",
		UserID:    "user-1",
	})
	require.NoError(t, err)

	meta := f.gateway.lastRequest.Metadata
	assert.Equal(t, string(paymentdomain.KindDiet), meta[paymentdomain.MetaType])
	assert.Equal(t, "Keto Starter Plan", meta[paymentdomain.MetaDietTitle])
	assert.Empty(t, meta[paymentdomain.MetaCourseID])
}

func TestInitiateRejectsInactiveProduct(t *testing.T) {
	f := newFixture(t, "file:checkout_inactive?mode=memory&cache=shared")
	f.catalog.product.Active = false

	_, err := f.svc.Initiate(context.Background(), domain.InitiateRequest{
		ProductID: f.catalog.product.ID.String(),
		VisitorID: "visitor-1",
	})
	assert.ErrorIs(t, err, domain.ErrProductUnavailable)
}
