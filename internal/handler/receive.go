package handler

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"net/http"

	"shopify-ar-delivery/internal/client"
	"shopify-ar-delivery/internal/model"
	"shopify-ar-delivery/internal/service"

	"github.com/labstack/echo/v4"
)

var listingTmpl = template.Must(template.New("listing").Parse(`<!doctype html>
<html lang="en"><meta name="viewport" content="width=device-width,initial-scale=1">
<title>Your purchase links</title>
<body style="font-family:system-ui;padding:20px;line-height:1.6">
  <h2>Purchased items</h2>
  <ul>{{range .Links}}<li><a href="{{.URL}}" target="_blank" rel="noopener">{{.Title}}</a></li>{{end}}</ul>
  <p style="color:#666">Link listing for order {{.OrderID}}.</p>
</body></html>
`))

type ReceiveHandler struct {
	deliveryService service.DeliveryService
}

func NewReceiveHandler(deliveryService service.DeliveryService) *ReceiveHandler {
	return &ReceiveHandler{
		deliveryService: deliveryService,
	}
}

// Receive is the user-pull path: the buyer presents an order id and gets
// either a redirect into the single AR experience or a listing page.
// Links are recomputed from the live order snapshot on every call.
func (h *ReceiveHandler) Receive(c echo.Context) error {
	ctx := c.Request().Context()

	orderID := c.QueryParam("order_id")
	if orderID == "" {
		return c.String(http.StatusBadRequest, "missing order_id")
	}
	autoRedirect := c.QueryParam("redirect") == "1"

	order, paid, err := h.deliveryService.VerifyOrder(ctx, orderID)
	if err != nil {
		var upstream *client.UpstreamError
		switch {
		case errors.Is(err, client.ErrOrderNotFound):
			return c.String(http.StatusNotFound, "order not found")
		case errors.As(err, &upstream):
			return c.String(http.StatusBadGateway,
				fmt.Sprintf("admin api error: %d %s", upstream.Status, upstream.Body))
		default:
			return c.String(http.StatusBadGateway, "admin api unavailable")
		}
	}

	if !paid {
		return c.String(http.StatusAccepted, "order not paid yet")
	}

	links := h.deliveryService.DeriveLinks(order)
	if len(links) == 0 {
		return c.String(http.StatusNotFound, "no deliverables for this order")
	}

	p := service.Present(links, autoRedirect)
	if p.Mode == service.PresentRedirect {
		return c.Redirect(http.StatusFound, p.Location)
	}

	return h.renderListing(c, order, p.Links)
}

func (h *ReceiveHandler) renderListing(c echo.Context, order *model.Order, links []model.DeliverableLink) error {
	var buf bytes.Buffer
	err := listingTmpl.Execute(&buf, map[string]interface{}{
		"OrderID": order.ID,
		"Links":   links,
	})
	if err != nil {
		return fmt.Errorf("render listing: %w", err)
	}

	return c.HTML(http.StatusOK, buf.String())
}
