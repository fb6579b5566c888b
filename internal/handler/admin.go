package handler

import (
	"net/http"

	"shopify-ar-delivery/internal/client"

	"github.com/labstack/echo/v4"
)

type AdminHandler struct {
	shopifyClient client.ShopifyClient
}

func NewAdminHandler(shopifyClient client.ShopifyClient) *AdminHandler {
	return &AdminHandler{
		shopifyClient: shopifyClient,
	}
}

// Check probes the admin API with a one-order read so operators can tell
// whether the access token still carries read_orders scope. The upstream
// status is passed through as the response status.
func (h *AdminHandler) Check(c echo.Context) error {
	check, err := h.shopifyClient.CheckAccess(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"ok":    false,
			"error": err.Error(),
		})
	}

	return c.JSON(check.Status, check)
}
