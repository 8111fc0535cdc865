package order

import (
	"fmt"
	"time"

	"github.com/erp/poctl/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Status represents the lifecycle state of a purchase order
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusReceived Status = "RECEIVED"
)

// IsValid checks if the status is a valid Status
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusReceived:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// CanModify returns true if line items may be added, edited or removed
func (s Status) CanModify() bool {
	return s == StatusPending
}

// CanReceive returns true if receiving goods is allowed in this status.
// The transition to RECEIVED is server-owned; the client only gates the
// receiving workflow on the snapshot it holds.
func (s Status) CanReceive() bool {
	return s == StatusPending
}

// Company is a reference-data entity the order belongs to
type Company struct {
	ID   int64  `json:"id"`
	Name string `json:"name,omitempty"`
}

// Product is a reference-data entity a line item points at. Company is the
// owning company; product choices for an order are filtered to the order's
// company.
type Product struct {
	ID      int64    `json:"id"`
	Name    string   `json:"name,omitempty"`
	Company *Company `json:"company,omitempty"`
}

// BelongsTo reports whether the product is owned by the given company.
// Products without an owning company are accepted; the server is the
// authoritative enforcer.
func (p Product) BelongsTo(companyID int64) bool {
	if p.Company == nil {
		return true
	}
	return p.Company.ID == companyID
}

// LineItem is one product line within a purchase order. ID is assigned by
// the order service on creation and is zero while the item is staged
// client-side.
type LineItem struct {
	ID               int64           `json:"id,omitempty"`
	Product          Product         `json:"product"`
	Quantity         int             `json:"quantity"`
	UnitPrice        decimal.Decimal `json:"unitPrice"`
	Subtotal         decimal.Decimal `json:"subtotal"`
	ReceivedQuantity int             `json:"receivedQuantity"`
}

// NewLineItem creates a staged line item, validating quantity and price and
// deriving the subtotal
func NewLineItem(product Product, quantity int, unitPrice decimal.Decimal) (*LineItem, error) {
	if product.ID == 0 {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product must be resolved before staging")
	}
	if quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}

	return &LineItem{
		Product:          product,
		Quantity:         quantity,
		UnitPrice:        unitPrice,
		Subtotal:         Subtotal(quantity, unitPrice),
		ReceivedQuantity: 0,
	}, nil
}

// Subtotal derives quantity * unitPrice
func Subtotal(quantity int, unitPrice decimal.Decimal) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
}

// Update replaces quantity and unit price and rederives the subtotal.
// The ordered quantity may never drop below what has already been received.
func (i *LineItem) Update(quantity int, unitPrice decimal.Decimal) error {
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}
	if quantity < i.ReceivedQuantity {
		return shared.NewDomainError("INVALID_QUANTITY",
			fmt.Sprintf("Quantity cannot drop below received quantity %d", i.ReceivedQuantity))
	}

	i.Quantity = quantity
	i.UnitPrice = unitPrice
	i.Subtotal = Subtotal(quantity, unitPrice)
	return nil
}

// Remaining returns the quantity still to be received
func (i *LineItem) Remaining() int {
	remaining := i.Quantity - i.ReceivedQuantity
	if remaining < 0 {
		return 0
	}
	return remaining
}

// IsFullyReceived returns true if all ordered quantity has been received
func (i *LineItem) IsFullyReceived() bool {
	return i.ReceivedQuantity >= i.Quantity
}

// PurchaseOrder is the client-visible snapshot of one purchase order and its
// line items. It is created in memory as a draft (no ID, PENDING), submitted
// to the order service, and thereafter represents the server's copy until the
// next fetch.
type PurchaseOrder struct {
	ID                   int64           `json:"id,omitempty"`
	PONumber             string          `json:"poNumber"`
	Company              *Company        `json:"company"`
	Supplier             string          `json:"supplier"`
	OrderDate            time.Time       `json:"orderDate"`
	ExpectedDeliveryDate *time.Time      `json:"expectedDeliveryDate,omitempty"`
	Status               Status          `json:"status"`
	Items                []LineItem      `json:"items"`
	TotalAmount          decimal.Decimal `json:"totalAmount"`
	Notes                string          `json:"notes,omitempty"`
	CreatedAt            time.Time       `json:"createdAt,omitempty"`
	UpdatedAt            time.Time       `json:"updatedAt,omitempty"`
}

// NewDraft creates a draft purchase order pending submission
func NewDraft(poNumber string, company Company, supplier string, orderDate time.Time) (*PurchaseOrder, error) {
	if poNumber == "" {
		return nil, shared.NewDomainError("INVALID_PO_NUMBER", "PO number cannot be empty")
	}
	if company.ID == 0 {
		return nil, shared.NewDomainError("INVALID_COMPANY", "Company is required")
	}
	if supplier == "" {
		return nil, shared.NewDomainError("INVALID_SUPPLIER", "Supplier cannot be empty")
	}

	return &PurchaseOrder{
		PONumber:    poNumber,
		Company:     &company,
		Supplier:    supplier,
		OrderDate:   orderDate,
		Status:      StatusPending,
		Items:       make([]LineItem, 0),
		TotalAmount: decimal.Zero,
	}, nil
}

// IsDraft returns true while the order has not been persisted yet
func (o *PurchaseOrder) IsDraft() bool {
	return o.ID == 0
}

// CanModify returns true if line items may be changed
func (o *PurchaseOrder) CanModify() bool {
	return o.Status.CanModify()
}

// AddItem appends a new line item in insertion order and recomputes the total.
// Only allowed while the order is PENDING. Items whose product belongs to a
// different company are rejected.
func (o *PurchaseOrder) AddItem(product Product, quantity int, unitPrice decimal.Decimal) (*LineItem, error) {
	if !o.CanModify() {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot add items to a non-pending order")
	}
	if o.Company != nil && !product.BelongsTo(o.Company.ID) {
		return nil, shared.NewDomainError("COMPANY_MISMATCH", "Product belongs to a different company")
	}

	item, err := NewLineItem(product, quantity, unitPrice)
	if err != nil {
		return nil, err
	}

	o.Items = append(o.Items, *item)
	o.recalculateTotal()
	return item, nil
}

// RemoveItemAt removes the item at the given position and recomputes the
// total. Out-of-bounds indexes are a benign no-op so idempotent UI retries
// cannot fail.
func (o *PurchaseOrder) RemoveItemAt(index int) {
	if index < 0 || index >= len(o.Items) {
		return
	}
	o.Items = append(o.Items[:index], o.Items[index+1:]...)
	o.recalculateTotal()
}

// UpdateItem updates quantity and unit price of an existing item and
// recomputes the total. Only allowed while the order is PENDING.
func (o *PurchaseOrder) UpdateItem(itemID int64, quantity int, unitPrice decimal.Decimal) error {
	if !o.CanModify() {
		return shared.NewDomainError("INVALID_STATE", "Cannot update items in a non-pending order")
	}

	for idx := range o.Items {
		if o.Items[idx].ID == itemID {
			if err := o.Items[idx].Update(quantity, unitPrice); err != nil {
				return err
			}
			o.recalculateTotal()
			return nil
		}
	}

	return shared.NewDomainError("ITEM_NOT_FOUND", "Order item not found")
}

// GetItem returns an item by its server-assigned ID
func (o *PurchaseOrder) GetItem(itemID int64) *LineItem {
	for idx := range o.Items {
		if o.Items[idx].ID == itemID {
			return &o.Items[idx]
		}
	}
	return nil
}

// ItemCount returns the number of line items
func (o *PurchaseOrder) ItemCount() int {
	return len(o.Items)
}

// TotalRemaining returns the total quantity still to be received
func (o *PurchaseOrder) TotalRemaining() int {
	total := 0
	for idx := range o.Items {
		total += o.Items[idx].Remaining()
	}
	return total
}

// ReceiveProgress returns the receiving progress as a percentage (0-100)
func (o *PurchaseOrder) ReceiveProgress() decimal.Decimal {
	ordered := 0
	received := 0
	for idx := range o.Items {
		ordered += o.Items[idx].Quantity
		received += o.Items[idx].ReceivedQuantity
	}
	if ordered == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(received)).
		Div(decimal.NewFromInt(int64(ordered))).
		Mul(decimal.NewFromInt(100)).
		Round(2)
}

// Validate checks the fields required before submission. Items are required
// only on create; updates never carry items.
func (o *PurchaseOrder) Validate(requireItems bool) error {
	if o.PONumber == "" {
		return shared.NewDomainError("INVALID_PO_NUMBER", "PO number cannot be empty")
	}
	if o.Company == nil || o.Company.ID == 0 {
		return shared.NewDomainError("INVALID_COMPANY", "Company is required")
	}
	if o.Supplier == "" {
		return shared.NewDomainError("INVALID_SUPPLIER", "Supplier cannot be empty")
	}
	if requireItems && len(o.Items) == 0 {
		return shared.NewDomainError("NO_ITEMS", "Cannot submit order without items")
	}
	return nil
}

// recalculateTotal rederives totalAmount from line item subtotals
func (o *PurchaseOrder) recalculateTotal() {
	total := decimal.Zero
	for idx := range o.Items {
		total = total.Add(o.Items[idx].Subtotal)
	}
	o.TotalAmount = total
}

// RecalculateTotal rederives totalAmount. Exposed for callers that patch
// items through per-item operations and hold a snapshot that predates the
// server's recomputation.
func (o *PurchaseOrder) RecalculateTotal() {
	o.recalculateTotal()
}
