package purchasing

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/erp/poctl/internal/domain/order"
	"github.com/erp/poctl/internal/domain/shared"
)

// WorkflowState represents the receiving workflow's position in its
// Idle -> Prepared -> Submitting -> Completed lifecycle
type WorkflowState string

const (
	WorkflowStateIdle       WorkflowState = "IDLE"
	WorkflowStatePrepared   WorkflowState = "PREPARED"
	WorkflowStateSubmitting WorkflowState = "SUBMITTING"
	WorkflowStateCompleted  WorkflowState = "COMPLETED"
)

// String returns the string representation of WorkflowState
func (s WorkflowState) String() string {
	return string(s)
}

// ReceiveLine is one outstanding line of a prepared receipt, in display
// order. Staged starts at 0 and may never exceed Remaining.
type ReceiveLine struct {
	ItemID      int64  `json:"itemId"`
	ProductName string `json:"productName"`
	Remaining   int    `json:"remaining"`
	Staged      int    `json:"staged"`
}

// ReceivingWorkflow converts a PENDING order's outstanding quantities into a
// receipt submission. A failed submission returns to Prepared so the user
// may retry with adjusted quantities; only a confirmed submission completes
// the workflow and triggers a store refresh.
type ReceivingWorkflow struct {
	store  *PurchaseOrderStore
	logger *zap.Logger

	state   WorkflowState
	orderID int64
	lines   []ReceiveLine
	index   map[int64]int
}

// NewReceivingWorkflow creates an idle receiving workflow on top of the store
func NewReceivingWorkflow(store *PurchaseOrderStore, logger *zap.Logger) *ReceivingWorkflow {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReceivingWorkflow{
		store:  store,
		logger: logger.Named("receiving"),
		state:  WorkflowStateIdle,
	}
}

// State returns the workflow's current state
func (w *ReceivingWorkflow) State() WorkflowState {
	return w.state
}

// Lines returns the prepared receipt lines in display order
func (w *ReceivingWorkflow) Lines() []ReceiveLine {
	out := make([]ReceiveLine, len(w.lines))
	copy(out, w.lines)
	return out
}

// Begin prepares a receipt for the given order. Legal only from Idle and
// only for PENDING orders; each line's staged quantity starts at 0.
func (w *ReceivingWorkflow) Begin(po *order.PurchaseOrder) error {
	if w.state != WorkflowStateIdle {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot begin receiving from %s state", w.state))
	}
	if po == nil || po.IsDraft() {
		return shared.NewDomainError("NO_ORDER", "No persisted purchase order to receive against")
	}
	if !po.Status.CanReceive() {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot receive inventory for a %s order", po.Status))
	}

	w.orderID = po.ID
	w.lines = make([]ReceiveLine, 0, len(po.Items))
	w.index = make(map[int64]int, len(po.Items))
	for idx := range po.Items {
		item := &po.Items[idx]
		w.index[item.ID] = len(w.lines)
		w.lines = append(w.lines, ReceiveLine{
			ItemID:      item.ID,
			ProductName: item.Product.Name,
			Remaining:   item.Remaining(),
			Staged:      0,
		})
	}

	w.state = WorkflowStatePrepared
	w.logger.Debug("receiving prepared",
		zap.Int64("order_id", po.ID),
		zap.Int("lines", len(w.lines)),
	)
	return nil
}

// SetQuantity stages a receive quantity for an item. Values outside
// [0, remaining] are rejected rather than clamped.
func (w *ReceivingWorkflow) SetQuantity(itemID int64, qty int) error {
	if w.state != WorkflowStatePrepared {
		return shared.NewDomainError("INVALID_STATE", "Receipt is not prepared")
	}

	pos, ok := w.index[itemID]
	if !ok {
		return shared.NewDomainError("ITEM_NOT_FOUND", "Item is not part of the prepared receipt")
	}
	if qty < 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Receive quantity cannot be negative")
	}
	if qty > w.lines[pos].Remaining {
		return shared.NewDomainError("QUANTITY_EXCEEDED",
			fmt.Sprintf("Cannot receive %d, only %d remaining", qty, w.lines[pos].Remaining))
	}

	w.lines[pos].Staged = qty
	return nil
}

// Submit sends the staged quantities as a receipt batch. Lines staged at 0
// are filtered out; an all-zero receipt fails before any network call. On
// success the store is refreshed with the server's canonical copy (the
// server recomputes receivedQuantity and flips status to RECEIVED when
// fully satisfied); on failure the workflow returns to Prepared.
func (w *ReceivingWorkflow) Submit(ctx context.Context) (*order.PurchaseOrder, error) {
	if w.state != WorkflowStatePrepared {
		return nil, shared.NewDomainError("INVALID_STATE", "Receipt is not prepared")
	}

	batch := make([]order.ReceiptLine, 0, len(w.lines))
	for _, line := range w.lines {
		if line.Staged > 0 {
			batch = append(batch, order.ReceiptLine{ItemID: line.ItemID, Quantity: line.Staged})
		}
	}
	if len(batch) == 0 {
		return nil, shared.ErrEmptyReceipt
	}

	w.state = WorkflowStateSubmitting
	if err := w.store.gateway.ReceiveInventory(ctx, w.orderID, batch); err != nil {
		w.state = WorkflowStatePrepared
		w.logger.Warn("receipt submission failed, staying prepared",
			zap.Int64("order_id", w.orderID),
			zap.Error(err),
		)
		return nil, err
	}

	w.state = WorkflowStateCompleted
	w.logger.Info("receipt submitted",
		zap.Int64("order_id", w.orderID),
		zap.Int("lines", len(batch)),
	)

	refreshed, err := w.store.Load(ctx, w.orderID)
	if err != nil {
		// The receipt was confirmed; a failed refresh leaves the snapshot
		// stale but the workflow completed.
		w.logger.Warn("refresh after receipt failed", zap.Error(err))
		return nil, err
	}
	return refreshed, nil
}

// Cancel discards staged quantities and returns to Idle. Legal from
// Prepared or Completed.
func (w *ReceivingWorkflow) Cancel() error {
	if w.state == WorkflowStateSubmitting {
		return shared.NewDomainError("INVALID_STATE", "Cannot cancel while a receipt is submitting")
	}
	w.state = WorkflowStateIdle
	w.orderID = 0
	w.lines = nil
	w.index = nil
	return nil
}
