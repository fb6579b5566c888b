package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"shopify-ar-delivery/internal/service"
	"shopify-ar-delivery/internal/signing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

type WebhookHandler struct {
	deliveryService service.DeliveryService
	webhookSecret   string
	maxBodySize     int64
	logger          zerolog.Logger
}

func NewWebhookHandler(
	deliveryService service.DeliveryService,
	webhookSecret string,
	maxBodySize int64,
	logger zerolog.Logger,
) *WebhookHandler {
	return &WebhookHandler{
		deliveryService: deliveryService,
		webhookSecret:   webhookSecret,
		maxBodySize:     maxBodySize,
		logger:          logger,
	}
}

// OrdersPaid receives Shopify's orders/paid notification. The signature is
// checked over the raw body bytes before any parsing, and the payload's own
// financial_status is never trusted: the order is re-read from the admin API.
//
// A post-verification upstream failure is still acknowledged with 200 so
// Shopify's redelivery does not storm; the failure is logged for follow-up.
func (h *WebhookHandler) OrdersPaid(c echo.Context) error {
	req := c.Request()

	body, err := io.ReadAll(http.MaxBytesReader(c.Response(), req.Body, h.maxBodySize))
	if err != nil {
		return c.String(http.StatusBadRequest, "cannot read body")
	}
	if len(body) == 0 {
		return c.String(http.StatusBadRequest, "empty body")
	}

	sig := req.Header.Get(signing.HeaderShopifyHmac)
	if !signing.VerifyWebhook(sig, body, h.webhookSecret) {
		h.logger.Warn().Msg("webhook HMAC verification failed")
		return c.String(http.StatusUnauthorized, "Unauthorized")
	}

	var payload struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || payload.ID == 0 {
		return c.String(http.StatusBadRequest, "missing order id")
	}

	orderID := strconv.FormatInt(payload.ID, 10)
	if err := h.deliveryService.ProcessPaidNotification(req.Context(), orderID); err != nil {
		// Acknowledge anyway: a non-2xx here would only trigger
		// redelivery of a notification we already authenticated.
		h.logger.Error().Err(err).
			Str("order_id", orderID).
			Msg("paid notification processing failed")
	}

	return c.String(http.StatusOK, "OK")
}
