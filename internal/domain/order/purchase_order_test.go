package order

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOrder(t *testing.T) *PurchaseOrder {
	t.Helper()
	po, err := NewDraft("PO-2026-001", Company{ID: 3, Name: "Main"}, "Acme Supplies", time.Now())
	require.NoError(t, err)
	return po
}

func TestStatus(t *testing.T) {
	assert.True(t, StatusPending.IsValid())
	assert.True(t, StatusReceived.IsValid())
	assert.False(t, Status("SHIPPED").IsValid())

	assert.True(t, StatusPending.CanModify())
	assert.True(t, StatusPending.CanReceive())
	assert.False(t, StatusReceived.CanModify())
	assert.False(t, StatusReceived.CanReceive())
}

func TestNewDraft(t *testing.T) {
	po := newTestOrder(t)

	assert.True(t, po.IsDraft())
	assert.Equal(t, StatusPending, po.Status)
	assert.True(t, po.TotalAmount.IsZero())
	assert.Empty(t, po.Items)
}

func TestNewDraftValidation(t *testing.T) {
	_, err := NewDraft("", Company{ID: 3}, "Acme", time.Now())
	assert.Error(t, err)

	_, err = NewDraft("PO-1", Company{}, "Acme", time.Now())
	assert.Error(t, err)

	_, err = NewDraft("PO-1", Company{ID: 3}, "", time.Now())
	assert.Error(t, err)
}

func TestNewLineItem(t *testing.T) {
	item, err := NewLineItem(Product{ID: 7, Name: "Widget"}, 10, decimal.NewFromFloat(2.5))
	require.NoError(t, err)

	assert.Equal(t, int64(0), item.ID)
	assert.True(t, item.Subtotal.Equal(decimal.NewFromInt(25)))
	assert.Equal(t, 10, item.Remaining())
	assert.False(t, item.IsFullyReceived())
}

func TestNewLineItemValidation(t *testing.T) {
	tests := []struct {
		name     string
		product  Product
		quantity int
		price    decimal.Decimal
	}{
		{"unresolved product", Product{}, 1, decimal.NewFromInt(1)},
		{"zero quantity", Product{ID: 7}, 0, decimal.NewFromInt(1)},
		{"negative quantity", Product{ID: 7}, -1, decimal.NewFromInt(1)},
		{"negative price", Product{ID: 7}, 1, decimal.NewFromInt(-1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLineItem(tt.product, tt.quantity, tt.price)
			assert.Error(t, err)
		})
	}
}

func TestLineItemUpdate(t *testing.T) {
	item, err := NewLineItem(Product{ID: 7}, 10, decimal.NewFromInt(2))
	require.NoError(t, err)
	item.ReceivedQuantity = 4

	require.NoError(t, item.Update(6, decimal.NewFromInt(3)))
	assert.True(t, item.Subtotal.Equal(decimal.NewFromInt(18)))

	// ordered quantity may not drop below what was received
	assert.Error(t, item.Update(3, decimal.NewFromInt(3)))
}

func TestAddItemRecalculatesTotal(t *testing.T) {
	po := newTestOrder(t)

	_, err := po.AddItem(Product{ID: 7, Name: "Widget"}, 10, decimal.NewFromFloat(2.5))
	require.NoError(t, err)
	_, err = po.AddItem(Product{ID: 8, Name: "Gadget"}, 2, decimal.NewFromInt(10))
	require.NoError(t, err)

	assert.Equal(t, 2, po.ItemCount())
	assert.True(t, po.TotalAmount.Equal(decimal.NewFromInt(45)))
}

func TestAddItemCompanyMismatch(t *testing.T) {
	po := newTestOrder(t)

	_, err := po.AddItem(Product{ID: 8, Company: &Company{ID: 4}}, 1, decimal.NewFromInt(1))
	assert.Error(t, err)

	// products without an owning company are accepted
	_, err = po.AddItem(Product{ID: 9}, 1, decimal.NewFromInt(1))
	assert.NoError(t, err)
}

func TestAddItemRejectedWhenReceived(t *testing.T) {
	po := newTestOrder(t)
	po.Status = StatusReceived

	_, err := po.AddItem(Product{ID: 7}, 1, decimal.NewFromInt(1))
	assert.Error(t, err)
}

func TestRemoveItemAt(t *testing.T) {
	po := newTestOrder(t)
	_, err := po.AddItem(Product{ID: 7}, 1, decimal.NewFromInt(5))
	require.NoError(t, err)
	_, err = po.AddItem(Product{ID: 8}, 1, decimal.NewFromInt(7))
	require.NoError(t, err)

	po.RemoveItemAt(0)
	assert.Equal(t, 1, po.ItemCount())
	assert.True(t, po.TotalAmount.Equal(decimal.NewFromInt(7)))

	// out of bounds is a no-op
	po.RemoveItemAt(5)
	po.RemoveItemAt(-1)
	assert.Equal(t, 1, po.ItemCount())
}

func TestUpdateItem(t *testing.T) {
	po := newTestOrder(t)
	_, err := po.AddItem(Product{ID: 7}, 2, decimal.NewFromInt(5))
	require.NoError(t, err)
	po.Items[0].ID = 11

	require.NoError(t, po.UpdateItem(11, 4, decimal.NewFromInt(5)))
	assert.True(t, po.TotalAmount.Equal(decimal.NewFromInt(20)))

	assert.Error(t, po.UpdateItem(99, 1, decimal.NewFromInt(1)))

	po.Status = StatusReceived
	assert.Error(t, po.UpdateItem(11, 1, decimal.NewFromInt(1)))
}

func TestGetItem(t *testing.T) {
	po := newTestOrder(t)
	_, err := po.AddItem(Product{ID: 7}, 2, decimal.NewFromInt(5))
	require.NoError(t, err)
	po.Items[0].ID = 11

	require.NotNil(t, po.GetItem(11))
	assert.Nil(t, po.GetItem(99))
}

func TestReceiveProgress(t *testing.T) {
	po := newTestOrder(t)
	assert.True(t, po.ReceiveProgress().IsZero())

	_, err := po.AddItem(Product{ID: 7}, 10, decimal.NewFromInt(1))
	require.NoError(t, err)
	_, err = po.AddItem(Product{ID: 8}, 10, decimal.NewFromInt(1))
	require.NoError(t, err)

	po.Items[0].ReceivedQuantity = 5
	assert.True(t, po.ReceiveProgress().Equal(decimal.NewFromInt(25)))
	assert.Equal(t, 15, po.TotalRemaining())

	po.Items[0].ReceivedQuantity = 10
	po.Items[1].ReceivedQuantity = 10
	assert.True(t, po.ReceiveProgress().Equal(decimal.NewFromInt(100)))
	assert.True(t, po.Items[0].IsFullyReceived())
}

func TestValidate(t *testing.T) {
	po := newTestOrder(t)

	// items required on create only
	assert.Error(t, po.Validate(true))
	assert.NoError(t, po.Validate(false))

	_, err := po.AddItem(Product{ID: 7}, 1, decimal.NewFromInt(1))
	require.NoError(t, err)
	assert.NoError(t, po.Validate(true))

	po.PONumber = ""
	assert.Error(t, po.Validate(false))
}
