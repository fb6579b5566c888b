package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"shopify-ar-delivery/internal/client"
	"shopify-ar-delivery/internal/model"
	"shopify-ar-delivery/internal/signing"

	"github.com/rs/zerolog"
)

// RouteTable resolves a SKU to its AR experience base endpoint. It is an
// explicit value handed to the service at construction; the default base
// catches SKUs without an exact entry. Matching is exact, including case.
type RouteTable struct {
	Bases       map[string]string
	DefaultBase string
}

func (t RouteTable) Resolve(sku string) string {
	if base, ok := t.Bases[sku]; ok {
		return base
	}
	return t.DefaultBase
}

type DeliveryService interface {
	// VerifyOrder re-reads the order from the platform of record and
	// applies the paid gate. An unpaid order comes back with paid=false
	// and no error; that outcome is benign, not a failure.
	VerifyOrder(ctx context.Context, orderID string) (order *model.Order, paid bool, err error)
	// DeriveLinks expands a paid order into one signed link per
	// purchased unit. Idempotent: the same snapshot always yields the
	// same links in the same order.
	DeriveLinks(order *model.Order) []model.DeliverableLink
	// ProcessPaidNotification is the webhook-side flow: re-verify, derive,
	// dispatch.
	ProcessPaidNotification(ctx context.Context, orderID string) error
}

type deliveryServiceImpl struct {
	shopifyClient client.ShopifyClient
	signer        *signing.Signer
	routes        RouteTable
	dispatcher    Dispatcher
	logger        zerolog.Logger
}

func NewDeliveryService(
	shopifyClient client.ShopifyClient,
	signer *signing.Signer,
	routes RouteTable,
	dispatcher Dispatcher,
	logger zerolog.Logger,
) DeliveryService {
	return &deliveryServiceImpl{
		shopifyClient: shopifyClient,
		signer:        signer,
		routes:        routes,
		dispatcher:    dispatcher,
		logger:        logger,
	}
}

func (s *deliveryServiceImpl) VerifyOrder(ctx context.Context, orderID string) (*model.Order, bool, error) {
	order, err := s.shopifyClient.GetOrder(ctx, orderID)
	if err != nil {
		return nil, false, fmt.Errorf("fetch order %s: %w", orderID, err)
	}

	return order, order.Paid(), nil
}

func (s *deliveryServiceImpl) DeriveLinks(order *model.Order) []model.DeliverableLink {
	links := make([]model.DeliverableLink, 0, len(order.LineItems))

	for _, li := range order.LineItems {
		sku := strings.TrimSpace(li.SKU)
		base := s.routes.Resolve(sku)

		for n := 1; n <= li.Units(); n++ {
			sig := s.signer.Sign(order.ID, li.ID, n, sku)

			links = append(links, model.DeliverableLink{
				Title: linkTitle(li, sku),
				URL: fmt.Sprintf("%s?oid=%d&li=%d&n=%d&sku=%s&sig=%s",
					base, order.ID, li.ID, n, url.QueryEscape(sku), sig),
			})
		}
	}

	return links
}

func linkTitle(li model.LineItem, sku string) string {
	if li.Title != "" {
		return li.Title
	}
	if sku != "" {
		return sku
	}
	return "item"
}

func (s *deliveryServiceImpl) ProcessPaidNotification(ctx context.Context, orderID string) error {
	order, paid, err := s.VerifyOrder(ctx, orderID)
	if err != nil {
		return err
	}

	if !paid {
		s.logger.Info().
			Str("order_id", orderID).
			Str("financial_status", order.FinancialStatus).
			Msg("order not paid yet, notification ignored")
		return nil
	}

	links := s.DeriveLinks(order)
	if len(links) == 0 {
		s.logger.Warn().
			Str("order_id", orderID).
			Msg("paid order expanded to zero deliverables")
		return nil
	}

	if err := s.dispatcher.Dispatch(ctx, order, links); err != nil {
		return fmt.Errorf("dispatch deliverables for order %s: %w", orderID, err)
	}

	return nil
}
