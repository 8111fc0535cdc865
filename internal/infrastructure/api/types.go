package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/erp/poctl/internal/domain/order"
)

// orderUpdatePayload is the update request body. Items are deliberately
// absent; item changes go through the per-item endpoints.
type orderUpdatePayload struct {
	PONumber             string         `json:"poNumber"`
	Company              *order.Company `json:"company,omitempty"`
	Supplier             string         `json:"supplier"`
	OrderDate            time.Time      `json:"orderDate"`
	ExpectedDeliveryDate *time.Time     `json:"expectedDeliveryDate,omitempty"`
	Status               order.Status   `json:"status"`
	Notes                string         `json:"notes,omitempty"`
}

// itemPatchPayload is the line item update request body
type itemPatchPayload struct {
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// errorPayload is the error body returned by the order service
type errorPayload struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}
