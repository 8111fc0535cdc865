// Package purchasing holds the client-side state of one purchase order and
// mediates every mutation against business rules before a persistence call
// is attempted. The order service's response is always canonical; the store
// refreshes its snapshot from it after each confirmed mutation.
package purchasing

import (
	"context"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/erp/poctl/internal/domain/order"
	"github.com/erp/poctl/internal/domain/shared"
)

var validate = validator.New()

// PurchaseOrderStore owns the currently viewed/edited purchase order and its
// staged line items. One store is active per session; it serializes access
// with a mutex and fences refreshes by generation so a stale response that
// arrives after a newer request has updated the view is discarded.
type PurchaseOrderStore struct {
	gateway  order.Gateway
	identity order.Identity
	logger   *zap.Logger

	mu         sync.Mutex
	current    *order.PurchaseOrder
	generation uint64
}

// NewPurchaseOrderStore creates a store bound to an order service gateway and
// an identity context
func NewPurchaseOrderStore(gateway order.Gateway, identity order.Identity, logger *zap.Logger) *PurchaseOrderStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PurchaseOrderStore{
		gateway:  gateway,
		identity: identity,
		logger:   logger.Named("po-store"),
	}
}

// Current returns the order the store holds, or nil when none is loaded
func (s *PurchaseOrderStore) Current() *order.PurchaseOrder {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// BeginDraft starts a new draft order and makes it current. The company
// defaults to the identity context's company when the request leaves it
// unset.
func (s *PurchaseOrderStore) BeginDraft(req CreateOrderRequest) (*order.PurchaseOrder, error) {
	if req.CompanyID == 0 && s.identity != nil {
		req.CompanyID = s.identity.CompanyID()
	}
	if err := validate.Struct(req); err != nil {
		return nil, shared.NewDomainError("INVALID_INPUT", err.Error())
	}

	draft, err := order.NewDraft(req.PONumber, order.Company{ID: req.CompanyID, Name: req.CompanyName}, req.Supplier, req.OrderDate)
	if err != nil {
		return nil, err
	}
	draft.ExpectedDeliveryDate = req.ExpectedDeliveryDate
	draft.Notes = req.Notes

	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.current = draft
	return draft, nil
}

// StageItem validates and appends a line item to the current order's staged
// list, recomputing the total
func (s *PurchaseOrderStore) StageItem(product order.Product, quantity int, unitPrice decimal.Decimal) (*order.LineItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return nil, shared.NewDomainError("NO_ORDER", "No purchase order is being edited")
	}
	item, err := s.current.AddItem(product, quantity, unitPrice)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("staged item",
		zap.Int64("product_id", product.ID),
		zap.Int("quantity", quantity),
		zap.String("subtotal", item.Subtotal.String()),
	)
	return item, nil
}

// RemoveStagedItem removes a staged item by position. Out-of-bounds indexes
// are a no-op.
func (s *PurchaseOrderStore) RemoveStagedItem(index int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return
	}
	s.current.RemoveItemAt(index)
}

// TotalAmount returns the current order's derived total
func (s *PurchaseOrderStore) TotalAmount() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return decimal.Zero
	}
	return s.current.TotalAmount
}

// List retrieves purchase orders through the gateway. The company filter
// defaults to the identity context's company when unset.
func (s *PurchaseOrderStore) List(ctx context.Context, filter order.ListFilter) ([]order.PurchaseOrder, error) {
	if filter.CompanyID == 0 && s.identity != nil {
		filter.CompanyID = s.identity.CompanyID()
	}
	return s.gateway.List(ctx, filter)
}

// Load fetches an order from the server and makes it current. A response
// that arrives after a newer Load or BeginDraft has started is discarded.
func (s *PurchaseOrderStore) Load(ctx context.Context, id int64) (*order.PurchaseOrder, error) {
	s.mu.Lock()
	s.generation++
	gen := s.generation
	s.mu.Unlock()

	po, err := s.gateway.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.apply(gen, po)
}

// Refresh re-fetches the current order from the server
func (s *PurchaseOrderStore) Refresh(ctx context.Context) (*order.PurchaseOrder, error) {
	s.mu.Lock()
	if s.current == nil || s.current.IsDraft() {
		s.mu.Unlock()
		return nil, shared.NewDomainError("NO_ORDER", "No persisted purchase order to refresh")
	}
	id := s.current.ID
	s.mu.Unlock()
	return s.Load(ctx, id)
}

// Submit persists the current order. A draft is created with its full staged
// item list; a persisted order is updated with order fields only.
func (s *PurchaseOrderStore) Submit(ctx context.Context) (*order.PurchaseOrder, error) {
	s.mu.Lock()
	if s.current == nil {
		s.mu.Unlock()
		return nil, shared.NewDomainError("NO_ORDER", "No purchase order to submit")
	}
	po := s.current
	creating := po.IsDraft()
	s.generation++
	gen := s.generation
	s.mu.Unlock()

	if err := po.Validate(creating); err != nil {
		return nil, err
	}

	var saved *order.PurchaseOrder
	var err error
	if creating {
		saved, err = s.gateway.Create(ctx, po)
	} else {
		saved, err = s.gateway.Update(ctx, po.ID, po)
	}
	if err != nil {
		s.logger.Warn("order submission failed", zap.Bool("create", creating), zap.Error(err))
		return nil, err
	}

	s.logger.Info("order submitted",
		zap.Bool("create", creating),
		zap.Int64("order_id", saved.ID),
		zap.String("po_number", saved.PONumber),
	)
	return s.apply(gen, saved)
}

// AddItemToExisting appends a line item to a persisted PENDING order. The
// server is the final arbiter; the status pre-check avoids a wasted round
// trip.
func (s *PurchaseOrderStore) AddItemToExisting(ctx context.Context, orderID int64, product order.Product, quantity int, unitPrice decimal.Decimal) (*order.LineItem, error) {
	s.mu.Lock()
	if s.current != nil && s.current.ID == orderID && !s.current.CanModify() {
		s.mu.Unlock()
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot add items to a non-pending order")
	}
	s.mu.Unlock()

	item, err := order.NewLineItem(product, quantity, unitPrice)
	if err != nil {
		return nil, err
	}

	created, err := s.gateway.AddItem(ctx, orderID, item)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil && s.current.ID == orderID {
		s.current.Items = append(s.current.Items, *created)
		s.current.RecalculateTotal()
	}
	return created, nil
}

// EditItem updates quantity and unit price of a line item, rederiving the
// subtotal before the persistence call
func (s *PurchaseOrderStore) EditItem(ctx context.Context, itemID int64, quantity int, unitPrice decimal.Decimal) (*order.LineItem, error) {
	if quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}

	s.mu.Lock()
	if s.current != nil && !s.current.CanModify() {
		s.mu.Unlock()
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot edit items of a non-pending order")
	}
	s.mu.Unlock()

	patch := order.ItemPatch{
		Quantity:  quantity,
		UnitPrice: unitPrice,
		Subtotal:  order.Subtotal(quantity, unitPrice),
	}
	updated, err := s.gateway.UpdateItem(ctx, itemID, patch)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil {
		if item := s.current.GetItem(itemID); item != nil {
			*item = *updated
			s.current.RecalculateTotal()
		}
	}
	return updated, nil
}

// DeleteItem removes a line item from a PENDING order
func (s *PurchaseOrderStore) DeleteItem(ctx context.Context, itemID int64) error {
	s.mu.Lock()
	if s.current != nil && !s.current.CanModify() {
		s.mu.Unlock()
		return shared.NewDomainError("INVALID_STATE", "Cannot delete items of a non-pending order")
	}
	s.mu.Unlock()

	if err := s.gateway.DeleteItem(ctx, itemID); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil {
		for idx := range s.current.Items {
			if s.current.Items[idx].ID == itemID {
				s.current.RemoveItemAt(idx)
				break
			}
		}
	}
	return nil
}

// DeleteOrder deletes an order. The server enforces "PENDING only"; the
// client deliberately skips the pre-check because the status may have
// changed concurrently, and surfaces the rejection instead.
func (s *PurchaseOrderStore) DeleteOrder(ctx context.Context, orderID int64) error {
	if err := s.gateway.Delete(ctx, orderID); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil && s.current.ID == orderID {
		s.generation++
		s.current = nil
	}
	s.logger.Info("order deleted", zap.Int64("order_id", orderID))
	return nil
}

// Discard drops the current order and any staged state, as on navigation
// away. In-flight requests are not aborted; their late responses fail the
// generation fence.
func (s *PurchaseOrderStore) Discard() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.current = nil
}

// apply installs a server response as the current order unless a newer
// request has superseded it
func (s *PurchaseOrderStore) apply(gen uint64, po *order.PurchaseOrder) (*order.PurchaseOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		s.logger.Debug("discarding stale response", zap.Int64("order_id", po.ID))
		return nil, shared.ErrStaleResponse
	}
	s.current = po
	return po, nil
}
