package model

import (
	"bytes"
	"strconv"
)

// Order is the normalized snapshot returned by the Shopify admin API.
// It is rebuilt on every request and never persisted.
type Order struct {
	ID              int64      `json:"id"`
	OrderNumber     int64      `json:"order_number"`
	FinancialStatus string     `json:"financial_status"`
	Email           string     `json:"email"`
	LineItems       []LineItem `json:"line_items"`
	TotalPrice      string     `json:"total_price"`
}

const FinancialStatusPaid = "paid"

// Paid reports whether the order is confirmed paid and therefore
// actionable for link derivation.
func (o *Order) Paid() bool {
	return o.FinancialStatus == FinancialStatusPaid
}

type LineItem struct {
	ID        int64    `json:"id"`
	SKU       string   `json:"sku"`
	Title     string   `json:"title"`
	Quantity  Quantity `json:"quantity"`
	VariantID int64    `json:"variant_id"`
	ProductID int64    `json:"product_id"`
}

// Quantity tolerates the number-or-string encodings seen in webhook
// payloads. Anything malformed decodes as 1, never as an error.
type Quantity int

func (q *Quantity) UnmarshalJSON(data []byte) error {
	s := string(bytes.Trim(bytes.TrimSpace(data), `"`))
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		*q = 1
		return nil
	}
	*q = Quantity(n)
	return nil
}

// Units is the number of deliverables a line item expands into,
// clamped to at least one.
func (li *LineItem) Units() int {
	if li.Quantity < 1 {
		return 1
	}
	return int(li.Quantity)
}

// DeliverableLink is one signed AR experience URL for exactly one
// purchased unit. Derived, never stored.
type DeliverableLink struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}
