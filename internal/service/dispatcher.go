package service

import (
	"context"

	"shopify-ar-delivery/internal/model"

	"github.com/rs/zerolog"
)

// Dispatcher hands a paid order's deliverables to a notification channel
// (email, messaging). This service only produces the sequence; delivery
// itself lives behind this interface.
type Dispatcher interface {
	Dispatch(ctx context.Context, order *model.Order, links []model.DeliverableLink) error
}

// LogDispatcher records each deliverable so an out-of-band channel can
// pick it up. It stands in wherever no real dispatcher is wired.
type LogDispatcher struct {
	logger zerolog.Logger
}

func NewLogDispatcher(logger zerolog.Logger) *LogDispatcher {
	return &LogDispatcher{logger: logger}
}

func (d *LogDispatcher) Dispatch(ctx context.Context, order *model.Order, links []model.DeliverableLink) error {
	for _, link := range links {
		d.logger.Info().
			Int64("order_id", order.ID).
			Str("email", order.Email).
			Str("title", link.Title).
			Str("url", link.URL).
			Msg("deliverable ready")
	}
	return nil
}
