package purchasing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/erp/poctl/internal/domain/order"
)

// CreateOrderRequest carries the order-level fields of a new draft. Staged
// line items are added through the store afterwards.
type CreateOrderRequest struct {
	PONumber             string     `json:"poNumber" validate:"required,max=50"`
	CompanyID            int64      `json:"companyId" validate:"required,gt=0"`
	CompanyName          string     `json:"companyName"`
	Supplier             string     `json:"supplier" validate:"required,max=200"`
	OrderDate            time.Time  `json:"orderDate" validate:"required"`
	ExpectedDeliveryDate *time.Time `json:"expectedDeliveryDate"`
	Notes                string     `json:"notes" validate:"max=2000"`
}

// UpdateOrderRequest carries the order fields an update may change. Items are
// deliberately absent: item mutation after creation goes through the
// per-item operations, which prevents an accidental bulk-item overwrite.
type UpdateOrderRequest struct {
	PONumber             string     `json:"poNumber" validate:"required,max=50"`
	Supplier             string     `json:"supplier" validate:"required,max=200"`
	OrderDate            time.Time  `json:"orderDate" validate:"required"`
	ExpectedDeliveryDate *time.Time `json:"expectedDeliveryDate"`
	Notes                string     `json:"notes" validate:"max=2000"`
}

// OrderSummary is the list-view projection of a purchase order
type OrderSummary struct {
	ID          int64           `json:"id"`
	PONumber    string          `json:"poNumber"`
	Supplier    string          `json:"supplier"`
	CompanyName string          `json:"companyName"`
	OrderDate   time.Time       `json:"orderDate"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Status      order.Status    `json:"status"`
	ItemCount   int             `json:"itemCount"`
}

// ToOrderSummary projects a purchase order onto its list view
func ToOrderSummary(po *order.PurchaseOrder) OrderSummary {
	summary := OrderSummary{
		ID:          po.ID,
		PONumber:    po.PONumber,
		Supplier:    po.Supplier,
		OrderDate:   po.OrderDate,
		TotalAmount: po.TotalAmount,
		Status:      po.Status,
		ItemCount:   po.ItemCount(),
	}
	if po.Company != nil {
		summary.CompanyName = po.Company.Name
	}
	return summary
}

// OrderPartition groups summaries the way the dashboard tabs present them
type OrderPartition struct {
	All      []OrderSummary `json:"all"`
	Pending  []OrderSummary `json:"pending"`
	Received []OrderSummary `json:"received"`
}

// PartitionOrders splits orders into pending and received views, preserving
// the server's ordering
func PartitionOrders(orders []order.PurchaseOrder) OrderPartition {
	partition := OrderPartition{
		All:      make([]OrderSummary, 0, len(orders)),
		Pending:  make([]OrderSummary, 0),
		Received: make([]OrderSummary, 0),
	}
	for idx := range orders {
		summary := ToOrderSummary(&orders[idx])
		partition.All = append(partition.All, summary)
		switch orders[idx].Status {
		case order.StatusPending:
			partition.Pending = append(partition.Pending, summary)
		case order.StatusReceived:
			partition.Received = append(partition.Received, summary)
		}
	}
	return partition
}
