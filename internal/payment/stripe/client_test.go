package stripe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitalpath/vitalpath/internal/config"
	"github.com/vitalpath/vitalpath/internal/payment/domain"
)

func newTestClient(baseURL string) *Client {
	return NewClient(config.Config{
		Payment: config.PaymentConfig{
			APIBase:   baseURL,
			SecretKey: "sk_test_secret",
		},
	})
}

func TestCreateCheckoutSession(t *testing.T) {
	var gotForm map[string][]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/checkout/sessions", r.URL.Path)
		require.Equal(t, "Bearer sk_test_secret", r.Header.Get("Authorization"))
		require.NoError(t, r.ParseForm())
		gotForm = r.PostForm

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"cs_test_1","url":"https://checkout.example/cs_test_1"}`))
	}))
	defer server.Close()

	session, err := newTestClient(server.URL).CreateCheckoutSession(context.Background(), domain.CreateCheckoutSessionRequest{
		ItemName:      "Mindful Nutrition Course",
		AmountMinor:   4999,
		Currency:      "PLN",
		CustomerEmail: "guest@example.com",
		SuccessURL:    "https://app.example/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:     "https://app.example/cancel",
		Metadata: map[string]string{
			domain.MetaType:     string(domain.KindCourse),
			domain.MetaCourseID: "course-1",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "cs_test_1", session.ID)
	assert.Equal(t, "https://checkout.example/cs_test_1", session.URL)

	assert.Equal(t, "payment", gotForm["mode"][0])
	assert.Equal(t, "pln", gotForm["line_items[0][price_data][currency]"][0])
	assert.Equal(t, "4999", gotForm["line_items[0][price_data][unit_amount]"][0])
	assert.Equal(t, "Mindful Nutrition Course", gotForm["line_items[0][price_data][product_data][name]"][0])
	assert.Equal(t, "guest@example.com", gotForm["customer_email"][0])
	assert.Equal(t, "course_purchase", gotForm["metadata[type]"][0])
}

func TestRetrieveSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/checkout/sessions/cs_test_1", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "cs_test_1",
			"amount_total": 4999,
			"currency": "pln",
			"payment_status": "paid",
			"metadata": {"type": "course_purchase", "courseId": "course-1"},
			"customer_details": {"email": "buyer@example.com"}
		}`))
	}))
	defer server.Close()

	session, err := newTestClient(server.URL).RetrieveSession(context.Background(), "cs_test_1")
	require.NoError(t, err)
	assert.Equal(t, int64(4999), session.AmountTotal)
	assert.Equal(t, "paid", session.PaymentStatus)
	assert.Equal(t, "course-1", session.Metadata["courseId"])
	assert.Equal(t, "buyer@example.com", session.CustomerDetail.Email)
}

func TestRetrieveSessionNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"type":"invalid_request_error","message":"No such checkout session"}}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).RetrieveSession(context.Background(), "cs_missing")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	_, err = newTestClient(server.URL).RetrieveSession(context.Background(), "  ")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestGatewayErrorSurfacesMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"type":"invalid_request_error","message":"Missing required param"}}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).RetrieveSubscription(context.Background(), "sub_1")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrGatewayFailure)
	assert.Contains(t, err.Error(), "Missing required param")
}
