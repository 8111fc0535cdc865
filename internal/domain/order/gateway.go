package order

import (
	"context"

	"github.com/shopspring/decimal"
)

// ListFilter narrows order listings. Zero values mean "no filter".
type ListFilter struct {
	CompanyID int64
	Status    Status
}

// ItemPatch carries the editable fields of a line item. Subtotal is derived
// client-side and sent along because the item endpoint expects the full
// triple.
type ItemPatch struct {
	Quantity  int
	UnitPrice decimal.Decimal
	Subtotal  decimal.Decimal
}

// ReceiptLine is one item of a receipt batch
type ReceiptLine struct {
	ItemID   int64 `json:"itemId"`
	Quantity int   `json:"quantity"`
}

// Gateway defines the order service operations the client depends on. The
// server's response is canonical; every mutating call returns the server's
// copy where the contract provides one.
type Gateway interface {
	// List retrieves purchase orders, optionally filtered by company and status
	List(ctx context.Context, filter ListFilter) ([]PurchaseOrder, error)

	// Get retrieves a single purchase order with nested items
	Get(ctx context.Context, id int64) (*PurchaseOrder, error)

	// Create submits a draft purchase order with its full staged item list
	Create(ctx context.Context, draft *PurchaseOrder) (*PurchaseOrder, error)

	// Update submits order fields excluding items; item mutation goes through
	// the dedicated per-item operations
	Update(ctx context.Context, id int64, po *PurchaseOrder) (*PurchaseOrder, error)

	// Delete removes an order; the server rejects non-PENDING orders
	Delete(ctx context.Context, id int64) error

	// AddItem appends a line item to an existing order
	AddItem(ctx context.Context, orderID int64, item *LineItem) (*LineItem, error)

	// UpdateItem updates quantity, unit price and subtotal of a line item
	UpdateItem(ctx context.Context, itemID int64, patch ItemPatch) (*LineItem, error)

	// DeleteItem removes a line item
	DeleteItem(ctx context.Context, itemID int64) error

	// ReceiveInventory submits a receipt batch; the server recomputes
	// receivedQuantity and flips status to RECEIVED when fully satisfied
	ReceiveInventory(ctx context.Context, orderID int64, lines []ReceiptLine) error
}

// ReferenceGateway provides the reference data needed to build valid line
// item and company selections.
type ReferenceGateway interface {
	// Products retrieves all products with their owning companies
	Products(ctx context.Context) ([]Product, error)

	// Companies retrieves all companies
	Companies(ctx context.Context) ([]Company, error)

	// UserCompanies retrieves the companies a user may act for
	UserCompanies(ctx context.Context, userID int64) ([]Company, error)
}

// Identity supplies the userId and companyId claims used to default and
// authorize requests. Implementations decode whatever token format the
// deployment uses; the core never parses token internals itself.
type Identity interface {
	// UserID returns the authenticated user's ID
	UserID() int64

	// CompanyID returns the company the session acts for
	CompanyID() int64
}
