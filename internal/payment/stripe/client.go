package stripe

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/vitalpath/vitalpath/internal/config"
	"github.com/vitalpath/vitalpath/internal/payment/domain"
)

const requestTimeout = 15 * time.Second

// Client talks to the payment processor's checkout REST API.
type Client struct {
	baseURL   string
	secretKey string
	http      *http.Client
}

func NewClient(cfg config.Config) *Client {
	return &Client{
		baseURL:   cfg.Payment.APIBase,
		secretKey: cfg.Payment.SecretKey,
		http:      &http.Client{Timeout: requestTimeout},
	}
}

func (c *Client) CreateCheckoutSession(ctx context.Context, req domain.CreateCheckoutSessionRequest) (domain.CheckoutSession, error) {
	form := url.Values{}
	mode := req.Mode
	if mode == "" {
		mode = domain.ModePayment
	}
	form.Set("mode", mode)
	form.Set("line_items[0][quantity]", "1")
	form.Set("line_items[0][price_data][currency]", strings.ToLower(req.Currency))
	form.Set("line_items[0][price_data][unit_amount]", strconv.FormatInt(req.AmountMinor, 10))
	form.Set("line_items[0][price_data][product_data][name]", req.ItemName)
	form.Set("success_url", req.SuccessURL)
	form.Set("cancel_url", req.CancelURL)
	if req.CustomerEmail != "" {
		form.Set("customer_email", req.CustomerEmail)
	}
	for key, value := range req.Metadata {
		form.Set(fmt.Sprintf("metadata[%s]", key), value)
	}

	var session domain.CheckoutSession
	if err := c.do(ctx, http.MethodPost, "/v1/checkout/sessions", form, &session); err != nil {
		return domain.CheckoutSession{}, err
	}
	return session, nil
}

func (c *Client) RetrieveSession(ctx context.Context, id string) (domain.Session, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Session{}, domain.ErrSessionNotFound
	}

	var session domain.Session
	if err := c.do(ctx, http.MethodGet, "/v1/checkout/sessions/"+url.PathEscape(id), nil, &session); err != nil {
		return domain.Session{}, err
	}
	return session, nil
}

func (c *Client) RetrieveSubscription(ctx context.Context, id string) (domain.Subscription, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Subscription{}, domain.ErrSessionNotFound
	}

	var subscription domain.Subscription
	if err := c.do(ctx, http.MethodGet, "/v1/subscriptions/"+url.PathEscape(id), nil, &subscription); err != nil {
		return domain.Subscription{}, err
	}
	return subscription, nil
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path string, form url.Values, out any) error {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrGatewayFailure, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrGatewayFailure, err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return domain.ErrSessionNotFound
	}
	if resp.StatusCode >= 400 {
		var apiErr apiError
		if err := json.Unmarshal(payload, &apiErr); err == nil && apiErr.Error.Message != "" {
			return fmt.Errorf("%w: %s", domain.ErrGatewayFailure, apiErr.Error.Message)
		}
		return fmt.Errorf("%w: status %d", domain.ErrGatewayFailure, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrGatewayFailure, err)
	}
	return nil
}
