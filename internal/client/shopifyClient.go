package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"shopify-ar-delivery/internal/config"
	"shopify-ar-delivery/internal/model"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
)

// orderFields restricts the admin API response to what derivation needs.
const orderFields = "id,order_number,financial_status,email,line_items,total_price"

// ErrOrderNotFound marks an order id the platform does not know.
var ErrOrderNotFound = errors.New("order not found")

// UpstreamError carries the status and body of a failed admin API call
// for diagnostics on the synchronous path.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("admin api error: %d %s", e.Status, e.Body)
}

// AccessCheck reports the outcome of a read-scope probe against the
// admin API.
type AccessCheck struct {
	OK     bool            `json:"ok"`
	Status int             `json:"status"`
	Body   json.RawMessage `json:"body,omitempty"`
}

// ShopifyClient re-reads order state from the platform of record. Webhook
// payloads are never trusted for payment status; this client is the
// source of truth.
type ShopifyClient interface {
	GetOrder(ctx context.Context, orderID string) (*model.Order, error)
	CheckAccess(ctx context.Context) (*AccessCheck, error)
}

type shopifyClientImpl struct {
	httpClient  *http.Client
	breaker     *gobreaker.CircuitBreaker
	storeDomain string
	accessToken string
	apiVersion  string
	logger      zerolog.Logger
}

func NewShopifyClient(shopifyCfg *config.Shopify, logger zerolog.Logger) ShopifyClient {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name: "shopify-admin-api",
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn().
				Str("name", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state changed")
		},
	})

	return &shopifyClientImpl{
		httpClient: &http.Client{
			Timeout: shopifyCfg.Timeout,
		},
		breaker:     breaker,
		storeDomain: shopifyCfg.StoreDomain,
		accessToken: shopifyCfg.AccessToken,
		apiVersion:  shopifyCfg.APIVersion,
		logger:      logger,
	}
}

func (c *shopifyClientImpl) adminURL(path string, query url.Values) string {
	u := url.URL{
		Scheme:   "https",
		Host:     c.storeDomain,
		Path:     fmt.Sprintf("/admin/api/%s/%s", c.apiVersion, path),
		RawQuery: query.Encode(),
	}
	return u.String()
}

func (c *shopifyClientImpl) do(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("http new request: %w", err)
	}

	req.Header.Set("X-Shopify-Access-Token", c.accessToken)
	req.Header.Set("Accept", "application/json")
	// Payment status changes between polls; a cached read defeats the
	// whole point of re-verifying.
	req.Header.Set("Cache-Control", "no-store")

	resp, err := c.breaker.Execute(func() (interface{}, error) {
		return c.httpClient.Do(req)
	})
	if err != nil {
		return nil, fmt.Errorf("admin api request: %w", err)
	}

	return resp.(*http.Response), nil
}

// GetOrder fetches a single order by id. An unknown id is ErrOrderNotFound;
// any other non-2xx response is an *UpstreamError. Payment status is
// returned as-is; the paid gate belongs to the caller.
func (c *shopifyClientImpl) GetOrder(ctx context.Context, orderID string) (*model.Order, error) {
	query := url.Values{"fields": {orderFields}}
	resp, err := c.do(ctx, c.adminURL("orders/"+orderID+".json", query))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrOrderNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return nil, &UpstreamError{Status: resp.StatusCode, Body: string(body)}
	}

	var result struct {
		Order *model.Order `json:"order"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode order response: %w", err)
	}
	if result.Order == nil {
		return nil, ErrOrderNotFound
	}

	return result.Order, nil
}

// CheckAccess pulls the most recent order with a minimal field set to
// confirm the token still has read_orders scope.
func (c *shopifyClientImpl) CheckAccess(ctx context.Context) (*AccessCheck, error) {
	query := url.Values{
		"limit":  {"1"},
		"fields": {"id,order_number,financial_status"},
	}
	resp, err := c.do(ctx, c.adminURL("orders.json", query))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read access check response: %w", err)
	}

	check := &AccessCheck{
		OK:     resp.StatusCode >= 200 && resp.StatusCode < 300,
		Status: resp.StatusCode,
	}
	if json.Valid(body) {
		check.Body = json.RawMessage(body)
	}

	return check, nil
}
