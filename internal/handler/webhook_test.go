package handler

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"shopify-ar-delivery/internal/model"
	"shopify-ar-delivery/internal/service"
	"shopify-ar-delivery/internal/signing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testWebhookSecret = "shopify-secret"

type mockDeliveryService struct {
	VerifyOrderFunc func(ctx context.Context, orderID string) (*model.Order, bool, error)
	DeriveLinksFunc func(order *model.Order) []model.DeliverableLink
	ProcessFunc     func(ctx context.Context, orderID string) error

	processedIDs []string
}

func (m *mockDeliveryService) VerifyOrder(ctx context.Context, orderID string) (*model.Order, bool, error) {
	return m.VerifyOrderFunc(ctx, orderID)
}

func (m *mockDeliveryService) DeriveLinks(order *model.Order) []model.DeliverableLink {
	return m.DeriveLinksFunc(order)
}

func (m *mockDeliveryService) ProcessPaidNotification(ctx context.Context, orderID string) error {
	m.processedIDs = append(m.processedIDs, orderID)
	if m.ProcessFunc != nil {
		return m.ProcessFunc(ctx, orderID)
	}
	return nil
}

func signBody(body string) string {
	mac := hmac.New(sha256.New, []byte(testWebhookSecret))
	mac.Write([]byte(body))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func postWebhook(h *WebhookHandler, body, signature string) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/orders-paid", strings.NewReader(body))
	if signature != "" {
		req.Header.Set(signing.HeaderShopifyHmac, signature)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.OrdersPaid(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func newWebhookHandler(svc service.DeliveryService) *WebhookHandler {
	return NewWebhookHandler(svc, testWebhookSecret, 1<<20, zerolog.Nop())
}

func TestOrdersPaid_ValidNotification(t *testing.T) {
	svc := &mockDeliveryService{}
	h := newWebhookHandler(svc)

	body := `{"id":1001,"financial_status":"paid"}`
	rec := postWebhook(h, body, signBody(body))

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, []string{"1001"}, svc.processedIDs)
}

func TestOrdersPaid_InvalidSignature(t *testing.T) {
	svc := &mockDeliveryService{}
	h := newWebhookHandler(svc)

	body := `{"id":1001}`
	rec := postWebhook(h, body, signBody(body+"tampered"))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, svc.processedIDs)
}

func TestOrdersPaid_MissingSignature(t *testing.T) {
	svc := &mockDeliveryService{}
	h := newWebhookHandler(svc)

	rec := postWebhook(h, `{"id":1001}`, "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, svc.processedIDs)
}

func TestOrdersPaid_LowercasedHeaderAccepted(t *testing.T) {
	svc := &mockDeliveryService{}
	h := newWebhookHandler(svc)

	e := echo.New()
	e.POST("/api/webhooks/orders-paid", h.OrdersPaid)
	ts := httptest.NewServer(e)
	defer ts.Close()

	body := `{"id":1001}`
	req, err := http.NewRequest(http.MethodPost, ts.URL+"/api/webhooks/orders-paid", strings.NewReader(body))
	require.NoError(t, err)
	// Write the lower-cased name onto the wire directly; the server side
	// canonicalizes on parse, which is what makes lookup case-insensitive.
	req.Header["x-shopify-hmac-sha256"] = []string{signBody(body)}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"1001"}, svc.processedIDs)
}

func TestOrdersPaid_MissingOrderID(t *testing.T) {
	svc := &mockDeliveryService{}
	h := newWebhookHandler(svc)

	body := `{"financial_status":"paid"}`
	rec := postWebhook(h, body, signBody(body))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, svc.processedIDs)
}

func TestOrdersPaid_MalformedJSON(t *testing.T) {
	svc := &mockDeliveryService{}
	h := newWebhookHandler(svc)

	body := `{not json`
	rec := postWebhook(h, body, signBody(body))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOrdersPaid_EmptyBody(t *testing.T) {
	svc := &mockDeliveryService{}
	h := newWebhookHandler(svc)

	rec := postWebhook(h, "", signBody(""))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOrdersPaid_UpstreamFailureStillAcked(t *testing.T) {
	svc := &mockDeliveryService{
		ProcessFunc: func(ctx context.Context, orderID string) error {
			return errors.New("admin api down")
		},
	}
	h := newWebhookHandler(svc)

	body := `{"id":1001}`
	rec := postWebhook(h, body, signBody(body))

	// 200 regardless: redelivery of an already-authenticated notification
	// must not be provoked by our own upstream trouble.
	assert.Equal(t, http.StatusOK, rec.Code)
}
