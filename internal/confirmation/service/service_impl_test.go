package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitalpath/vitalpath/internal/clock"
	"github.com/vitalpath/vitalpath/internal/confirmation/domain"
	guestsessiondomain "github.com/vitalpath/vitalpath/internal/guestsession/domain"
	guestsessionrepository "github.com/vitalpath/vitalpath/internal/guestsession/repository"
	guestsessionservice "github.com/vitalpath/vitalpath/internal/guestsession/service"
	paymentdomain "github.com/vitalpath/vitalpath/internal/payment/domain"
	"github.com/vitalpath/vitalpath/internal/providers/email"
	purchasedomain "github.com/vitalpath/vitalpath/internal/purchase/domain"
	purchaserepository "github.com/vitalpath/vitalpath/internal/purchase/repository"
	purchaseservice "github.com/vitalpath/vitalpath/internal/purchase/service"
	userdomain "github.com/vitalpath/vitalpath/internal/user/domain"
	userrepository "github.com/vitalpath/vitalpath/internal/user/repository"
	userservice "github.com/vitalpath/vitalpath/internal/user/service"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fakeGateway struct {
	sessions      map[string]paymentdomain.Session
	subscriptions map[string]paymentdomain.Subscription
	subErr        error
}

func (f *fakeGateway) CreateCheckoutSession(ctx context.Context, req paymentdomain.CreateCheckoutSessionRequest) (paymentdomain.CheckoutSession, error) {
	return paymentdomain.CheckoutSession{}, nil
}

func (f *fakeGateway) RetrieveSession(ctx context.Context, id string) (paymentdomain.Session, error) {
	session, ok := f.sessions[id]
	if !ok {
		return paymentdomain.Session{}, paymentdomain.ErrSessionNotFound
	}
	return session, nil
}

func (f *fakeGateway) RetrieveSubscription(ctx context.Context, id string) (paymentdomain.Subscription, error) {
	if f.subErr != nil {
		return paymentdomain.Subscription{}, f.subErr
	}
	subscription, ok := f.subscriptions[id]
	if !ok {
		return paymentdomain.Subscription{}, paymentdomain.ErrSessionNotFound
	}
	return subscription, nil
}

type fixture struct {
	svc      domain.Service
	guests   guestsessiondomain.Service
	gateway  *fakeGateway
	conn     *gorm.DB
	userRepo userdomain.Repository
}

func newFixture(t *testing.T, dsn string) *fixture {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&userdomain.User{},
		&guestsessiondomain.GuestSession{},
		&purchasedomain.PurchaseRecord{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	logger := zap.NewNop()
	fake := clock.NewFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))

	userRepo := userrepository.Provide()
	users := userservice.New(userservice.Params{DB: conn, Log: logger, Repo: userRepo})
	purchases := purchaseservice.New(purchaseservice.Params{
		DB:       conn,
		Log:      logger,
		GenID:    node,
		Clock:    fake,
		Repo:     purchaserepository.Provide(),
		UserRepo: userRepo,
	})
	guests := guestsessionservice.New(guestsessionservice.Params{
		DB:    conn,
		Log:   logger,
		GenID: node,
		Clock: fake,
		Repo:  guestsessionrepository.Provide(),
	})

	gateway := &fakeGateway{
		sessions:      map[string]paymentdomain.Session{},
		subscriptions: map[string]paymentdomain.Subscription{},
	}

	svc := New(Params{
		DB:        conn,
		Log:       logger,
		Clock:     fake,
		Gateway:   gateway,
		Purchases: purchases,
		Users:     users,
		UserRepo:  userRepo,
		Sessions:  guests,
		Email:     &email.NoOpProvider{},
	})

	return &fixture{
		svc:      svc,
		guests:   guests,
		gateway:  gateway,
		conn:     conn,
		userRepo: userRepo,
	}
}

func courseSession(ref, userID string) paymentdomain.Session {
	return paymentdomain.Session{
		ID:            ref,
		AmountTotal:   4999,
		Currency:      "pln",
		PaymentStatus: "paid",
		Metadata: map[string]string{
			paymentdomain.MetaType:        string(paymentdomain.KindCourse),
			paymentdomain.MetaCourseID:    "course-1",
			paymentdomain.MetaCourseTitle: "Mindful Nutrition Course",
			paymentdomain.MetaUserID:      userID,
		},
	}
}

func TestConfirmRequiresReference(t *testing.T) {
	f := newFixture(t, "file:confirm_ref?mode=memory&cache=shared")

	_, err := f.svc.Confirm(context.Background(), domain.ConfirmRequest{})
	assert.ErrorIs(t, err, domain.ErrMissingReference)
}

func TestConfirmRejectsUnpaidSession(t *testing.T) {
	f := newFixture(t, "file:confirm_unpaid?mode=memory&cache=shared")
	session := courseSession("cs_test_1", "user-1")
	session.PaymentStatus = "unpaid"
	f.gateway.sessions["cs_test_1"] = session

	_, err := f.svc.Confirm(context.Background(), domain.ConfirmRequest{SessionRef: "cs_test_1"})
	assert.ErrorIs(t, err, domain.ErrPaymentIncomplete)

	var count int64
	require.NoError(t, f.conn.Model(&purchasedomain.PurchaseRecord{}).Count(&count).Error)
	assert.Zero(t, count, "an unpaid session credits nothing")
}

func TestConfirmRejectsMalformedSession(t *testing.T) {
	f := newFixture(t, "file:confirm_malformed?mode=memory&cache=shared")
	session := courseSession("cs_test_1", "user-1")
	delete(session.Metadata, paymentdomain.MetaCourseID)
	f.gateway.sessions["cs_test_1"] = session

	_, err := f.svc.Confirm(context.Background(), domain.ConfirmRequest{SessionRef: "cs_test_1"})
	assert.ErrorIs(t, err, domain.ErrMalformedSession)
}

func TestConfirmRequiresUserForNonGuestPurchase(t *testing.T) {
	f := newFixture(t, "file:confirm_nouser?mode=memory&cache=shared")
	f.gateway.sessions["cs_test_1"] = courseSession("cs_test_1", "null")

	_, err := f.svc.Confirm(context.Background(), domain.ConfirmRequest{SessionRef: "cs_test_1"})
	assert.ErrorIs(t, err, domain.ErrMissingUser)
}

func TestConfirmUserCoursePurchase(t *testing.T) {
	f := newFixture(t, "file:confirm_course?mode=memory&cache=shared")
	ctx := context.Background()
	f.gateway.sessions["cs_test_1"] = courseSession("cs_test_1", "user-1")

	result, err := f.svc.Confirm(ctx, domain.ConfirmRequest{SessionRef: "cs_test_1"})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "course", result.PurchaseType)
	assert.Equal(t, "user-1", result.UserID)

	var record purchasedomain.PurchaseRecord
	require.NoError(t, f.conn.First(&record, "user_id = ?", "user-1").Error)
	assert.Equal(t, "cs_test_1", record.TransactionID)
	assert.Equal(t, int64(4999), record.AmountMinor)
	assert.Equal(t, purchasedomain.StatusCompleted, record.Status)

	var user userdomain.User
	require.NoError(t, f.conn.First(&user, "id = ?", "user-1").Error)
	assert.Equal(t, int64(1), user.TotalPurchases)
	assert.Contains(t, []string(user.PurchasedItems), "course-1")

	// Presenting the same reference again must not double-credit.
	_, err = f.svc.Confirm(ctx, domain.ConfirmRequest{SessionRef: "cs_test_1"})
	assert.ErrorIs(t, err, domain.ErrAlreadyPurchased)

	var count int64
	require.NoError(t, f.conn.Model(&purchasedomain.PurchaseRecord{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestConfirmGuestPurchaseDefersPersistence(t *testing.T) {
	f := newFixture(t, "file:confirm_guest?mode=memory&cache=shared")
	ctx := context.Background()

	created, err := f.guests.Create(ctx, guestsessiondomain.CreateSessionRequest{
		VisitorID:    "visitor-1",
		ProductID:    "course-1",
		ProductTitle: "Mindful Nutrition Course",
		PriceMinor:   4999,
		ProductType:  "course",
	})
	require.NoError(t, err)

	session := courseSession("cs_test_guest", "")
	delete(session.Metadata, paymentdomain.MetaUserID)
	session.Metadata[paymentdomain.MetaGuestSessionID] = created.SessionID
	session.Metadata[paymentdomain.MetaIsGuest] = "true"
	f.gateway.sessions["cs_test_guest"] = session

	result, err := f.svc.Confirm(ctx, domain.ConfirmRequest{
		SessionRef: "cs_test_guest",
		VisitorID:  "visitor-1",
	})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.True(t, result.Guest)

	var count int64
	require.NoError(t, f.conn.Model(&purchasedomain.PurchaseRecord{}).Count(&count).Error)
	assert.Zero(t, count, "guest purchases are persisted at reconciliation, not confirmation")

	current, err := f.guests.GetCurrent(ctx, "visitor-1")
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.True(t, current.Completed)
	assert.Equal(t, "cs_test_guest", current.SessionID)
}

func TestConfirmSubscriptionAppliesPremium(t *testing.T) {
	f := newFixture(t, "file:confirm_sub?mode=memory&cache=shared")
	ctx := context.Background()

	periodEnd := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)
	f.gateway.sessions["cs_test_sub"] = paymentdomain.Session{
		ID:             "cs_test_sub",
		AmountTotal:    1999,
		Currency:       "pln",
		PaymentStatus:  "paid",
		SubscriptionID: "sub_1",
		Metadata: map[string]string{
			paymentdomain.MetaUserID: "user-1",
		},
	}
	f.gateway.subscriptions["sub_1"] = paymentdomain.Subscription{
		ID:               "sub_1",
		Status:           "active",
		CurrentPeriodEnd: periodEnd.Unix(),
	}

	result, err := f.svc.Confirm(ctx, domain.ConfirmRequest{SessionRef: "cs_test_sub"})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.True(t, result.SubscriptionApplied)
	assert.Equal(t, userdomain.TierPremium, result.SubscriptionTier)

	var user userdomain.User
	require.NoError(t, f.conn.First(&user, "id = ?", "user-1").Error)
	assert.Equal(t, userdomain.TierPremium, user.SubscriptionTier)
	require.NotNil(t, user.SubscriptionExpiresAt)
	assert.Equal(t, periodEnd.Unix(), user.SubscriptionExpiresAt.Unix())

	// Redelivery: entitlement stays, no second record.
	result, err = f.svc.Confirm(ctx, domain.ConfirmRequest{SessionRef: "cs_test_sub"})
	require.NoError(t, err)
	assert.True(t, result.Success)

	var count int64
	require.NoError(t, f.conn.Model(&purchasedomain.PurchaseRecord{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestConfirmSubscriptionLookupFailureFailsOpen(t *testing.T) {
	f := newFixture(t, "file:confirm_sub_fail?mode=memory&cache=shared")
	ctx := context.Background()

	f.gateway.sessions["cs_test_sub"] = paymentdomain.Session{
		ID:             "cs_test_sub",
		AmountTotal:    1999,
		Currency:       "pln",
		PaymentStatus:  "paid",
		SubscriptionID: "sub_1",
		Metadata: map[string]string{
			paymentdomain.MetaUserID: "user-1",
		},
	}
	f.gateway.subErr = paymentdomain.ErrGatewayFailure

	result, err := f.svc.Confirm(ctx, domain.ConfirmRequest{SessionRef: "cs_test_sub"})
	require.NoError(t, err, "a subscription detail outage must not fail the confirmation")
	assert.True(t, result.Success)
	assert.False(t, result.SubscriptionApplied)
	assert.Equal(t, userdomain.TierFree, result.SubscriptionTier)

	var count int64
	require.NoError(t, f.conn.Model(&purchasedomain.PurchaseRecord{}).Count(&count).Error)
	assert.Equal(t, int64(1), count, "the settled payment is still recorded")
}
