package purchasing

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/erp/poctl/internal/domain/order"
	"github.com/erp/poctl/internal/domain/shared"
)

func receivableOrder() *order.PurchaseOrder {
	return &order.PurchaseOrder{
		ID:       42,
		PONumber: "PO-2026-001",
		Company:  &order.Company{ID: 3},
		Supplier: "Acme Supplies",
		Status:   order.StatusPending,
		Items: []order.LineItem{
			{
				ID:        11,
				Product:   order.Product{ID: 7, Name: "Widget"},
				Quantity:  10,
				UnitPrice: decimal.NewFromInt(2),
				Subtotal:  decimal.NewFromInt(20),
			},
			{
				ID:               12,
				Product:          order.Product{ID: 8, Name: "Gadget"},
				Quantity:         5,
				UnitPrice:        decimal.NewFromInt(10),
				Subtotal:         decimal.NewFromInt(50),
				ReceivedQuantity: 3,
			},
		},
		TotalAmount: decimal.NewFromInt(70),
	}
}

func newTestWorkflow(gateway *MockGateway) *ReceivingWorkflow {
	store := NewPurchaseOrderStore(gateway, testIdentity{companyID: 3}, nil)
	return NewReceivingWorkflow(store, nil)
}

func TestWorkflowBegin(t *testing.T) {
	w := newTestWorkflow(new(MockGateway))
	require.Equal(t, WorkflowStateIdle, w.State())

	require.NoError(t, w.Begin(receivableOrder()))
	assert.Equal(t, WorkflowStatePrepared, w.State())

	lines := w.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, 10, lines[0].Remaining)
	assert.Equal(t, 2, lines[1].Remaining)
	assert.Equal(t, 0, lines[0].Staged)
	assert.Equal(t, "Widget", lines[0].ProductName)
}

func TestWorkflowBeginRejectsNonPending(t *testing.T) {
	w := newTestWorkflow(new(MockGateway))

	received := receivableOrder()
	received.Status = order.StatusReceived
	err := w.Begin(received)
	require.Error(t, err)
	assert.Equal(t, WorkflowStateIdle, w.State())
}

func TestWorkflowBeginRejectsDraft(t *testing.T) {
	w := newTestWorkflow(new(MockGateway))

	draft := receivableOrder()
	draft.ID = 0
	assert.Error(t, w.Begin(draft))
	assert.Error(t, w.Begin(nil))
}

func TestWorkflowBeginTwice(t *testing.T) {
	w := newTestWorkflow(new(MockGateway))

	require.NoError(t, w.Begin(receivableOrder()))
	assert.Error(t, w.Begin(receivableOrder()))
}

func TestWorkflowSetQuantity(t *testing.T) {
	w := newTestWorkflow(new(MockGateway))
	require.NoError(t, w.Begin(receivableOrder()))

	require.NoError(t, w.SetQuantity(11, 4))
	assert.Equal(t, 4, w.Lines()[0].Staged)

	// remaining is the upper bound, not the ordered quantity
	require.NoError(t, w.SetQuantity(12, 2))
	assert.Error(t, w.SetQuantity(12, 3))

	assert.Error(t, w.SetQuantity(11, -1))
	assert.Error(t, w.SetQuantity(99, 1))
}

func TestWorkflowSubmitFiltersZeroLines(t *testing.T) {
	gateway := new(MockGateway)
	w := newTestWorkflow(gateway)
	require.NoError(t, w.Begin(receivableOrder()))
	require.NoError(t, w.SetQuantity(11, 4))

	gateway.On("ReceiveInventory", mock.Anything, int64(42), []order.ReceiptLine{{ItemID: 11, Quantity: 4}}).Return(nil)

	refreshed := receivableOrder()
	refreshed.Items[0].ReceivedQuantity = 4
	gateway.On("Get", mock.Anything, int64(42)).Return(refreshed, nil)

	result, err := w.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, WorkflowStateCompleted, w.State())
	assert.Equal(t, 4, result.Items[0].ReceivedQuantity)
	gateway.AssertExpectations(t)
}

func TestWorkflowSubmitEmptyReceipt(t *testing.T) {
	gateway := new(MockGateway)
	w := newTestWorkflow(gateway)
	require.NoError(t, w.Begin(receivableOrder()))

	_, err := w.Submit(context.Background())
	assert.ErrorIs(t, err, shared.ErrEmptyReceipt)
	assert.Equal(t, WorkflowStatePrepared, w.State())
	gateway.AssertNotCalled(t, "ReceiveInventory", mock.Anything, mock.Anything, mock.Anything)
}

func TestWorkflowSubmitFailureStaysPrepared(t *testing.T) {
	gateway := new(MockGateway)
	w := newTestWorkflow(gateway)
	require.NoError(t, w.Begin(receivableOrder()))
	require.NoError(t, w.SetQuantity(11, 4))

	gateway.On("ReceiveInventory", mock.Anything, int64(42), mock.Anything).Return(shared.ErrServiceUnavailable).Once()

	_, err := w.Submit(context.Background())
	assert.ErrorIs(t, err, shared.ErrServiceUnavailable)
	assert.Equal(t, WorkflowStatePrepared, w.State())
	assert.Equal(t, 4, w.Lines()[0].Staged)

	// retry succeeds
	gateway.On("ReceiveInventory", mock.Anything, int64(42), mock.Anything).Return(nil)
	gateway.On("Get", mock.Anything, int64(42)).Return(receivableOrder(), nil)

	_, err = w.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, WorkflowStateCompleted, w.State())
}

func TestWorkflowCancel(t *testing.T) {
	w := newTestWorkflow(new(MockGateway))
	require.NoError(t, w.Begin(receivableOrder()))
	require.NoError(t, w.SetQuantity(11, 4))

	require.NoError(t, w.Cancel())
	assert.Equal(t, WorkflowStateIdle, w.State())
	assert.Empty(t, w.Lines())

	// a new receipt starts clean
	require.NoError(t, w.Begin(receivableOrder()))
	assert.Equal(t, 0, w.Lines()[0].Staged)
}
