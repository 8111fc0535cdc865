// Package api implements the HTTP gateway to the external order-management
// service. It owns all wire-level concerns: request construction, auth
// headers, response size caps and the mapping of non-OK responses onto the
// client error taxonomy.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/erp/poctl/internal/domain/order"
	"github.com/erp/poctl/internal/domain/shared"
)

// maxResponseSize is the maximum allowed response size from the order
// service (10MB)
const maxResponseSize = 10 * 1024 * 1024

// TokenSource supplies the bearer token attached to every request. The
// token is treated as opaque here; claim extraction lives in the auth
// package.
type TokenSource interface {
	Token() string
}

// Config holds order service connection settings
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Validate checks the configuration
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("api: base URL is required")
	}
	if _, err := url.Parse(c.BaseURL); err != nil {
		return fmt.Errorf("api: invalid base URL: %w", err)
	}
	return nil
}

// Client is the HTTP implementation of order.Gateway and
// order.ReferenceGateway
type Client struct {
	baseURL    string
	tokens     TokenSource
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates an order service client. Outgoing requests are traced
// through the global tracer provider.
func NewClient(cfg Config, tokens TokenSource, logger *zap.Logger) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		baseURL: cfg.BaseURL,
		tokens:  tokens,
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger: logger.Named("order-api"),
	}, nil
}

// ---------------------------------------------------------------------------
// Purchase Order Operations
// ---------------------------------------------------------------------------

// List retrieves purchase orders, optionally filtered by company and status
func (c *Client) List(ctx context.Context, filter order.ListFilter) ([]order.PurchaseOrder, error) {
	query := url.Values{}
	if filter.CompanyID != 0 {
		query.Set("companyId", strconv.FormatInt(filter.CompanyID, 10))
	}
	if filter.Status != "" {
		query.Set("status", filter.Status.String())
	}

	path := "/purchase-orders"
	if encoded := query.Encode(); encoded != "" {
		path += "?" + encoded
	}

	body, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var orders []order.PurchaseOrder
	if err := json.Unmarshal(body, &orders); err != nil {
		return nil, fmt.Errorf("%w: failed to parse order list: %v", shared.ErrInvalidResponse, err)
	}
	return orders, nil
}

// Get retrieves a single purchase order with nested items
func (c *Client) Get(ctx context.Context, id int64) (*order.PurchaseOrder, error) {
	body, err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("/purchase-orders/%d", id), nil)
	if err != nil {
		return nil, notFoundAs(err, order.ErrOrderNotFound)
	}

	var po order.PurchaseOrder
	if err := json.Unmarshal(body, &po); err != nil {
		return nil, fmt.Errorf("%w: failed to parse order: %v", shared.ErrInvalidResponse, err)
	}
	return &po, nil
}

// Create submits a draft purchase order with its full staged item list
func (c *Client) Create(ctx context.Context, draft *order.PurchaseOrder) (*order.PurchaseOrder, error) {
	body, err := c.doRequest(ctx, http.MethodPost, "/purchase-orders", draft)
	if err != nil {
		return nil, err
	}

	var created order.PurchaseOrder
	if err := json.Unmarshal(body, &created); err != nil {
		return nil, fmt.Errorf("%w: failed to parse created order: %v", shared.ErrInvalidResponse, err)
	}
	return &created, nil
}

// Update submits order fields excluding items
func (c *Client) Update(ctx context.Context, id int64, po *order.PurchaseOrder) (*order.PurchaseOrder, error) {
	payload := orderUpdatePayload{
		PONumber:             po.PONumber,
		Company:              po.Company,
		Supplier:             po.Supplier,
		OrderDate:            po.OrderDate,
		ExpectedDeliveryDate: po.ExpectedDeliveryDate,
		Status:               po.Status,
		Notes:                po.Notes,
	}

	body, err := c.doRequest(ctx, http.MethodPut, fmt.Sprintf("/purchase-orders/%d", id), payload)
	if err != nil {
		return nil, notFoundAs(err, order.ErrOrderNotFound)
	}

	var updated order.PurchaseOrder
	if err := json.Unmarshal(body, &updated); err != nil {
		return nil, fmt.Errorf("%w: failed to parse updated order: %v", shared.ErrInvalidResponse, err)
	}
	return &updated, nil
}

// Delete removes an order; the server rejects non-PENDING orders
func (c *Client) Delete(ctx context.Context, id int64) error {
	_, err := c.doRequest(ctx, http.MethodDelete, fmt.Sprintf("/purchase-orders/%d", id), nil)
	return notFoundAs(err, order.ErrOrderNotFound)
}

// ---------------------------------------------------------------------------
// Line Item Operations
// ---------------------------------------------------------------------------

// AddItem appends a line item to an existing order
func (c *Client) AddItem(ctx context.Context, orderID int64, item *order.LineItem) (*order.LineItem, error) {
	body, err := c.doRequest(ctx, http.MethodPost, fmt.Sprintf("/purchase-orders/%d/items", orderID), item)
	if err != nil {
		return nil, notFoundAs(err, order.ErrOrderNotFound)
	}

	var created order.LineItem
	if err := json.Unmarshal(body, &created); err != nil {
		return nil, fmt.Errorf("%w: failed to parse created item: %v", shared.ErrInvalidResponse, err)
	}
	return &created, nil
}

// UpdateItem updates quantity, unit price and subtotal of a line item
func (c *Client) UpdateItem(ctx context.Context, itemID int64, patch order.ItemPatch) (*order.LineItem, error) {
	payload := itemPatchPayload{
		Quantity:  patch.Quantity,
		UnitPrice: patch.UnitPrice,
		Subtotal:  patch.Subtotal,
	}

	body, err := c.doRequest(ctx, http.MethodPut, fmt.Sprintf("/purchase-orders/items/%d", itemID), payload)
	if err != nil {
		return nil, notFoundAs(err, order.ErrItemNotFound)
	}

	var updated order.LineItem
	if err := json.Unmarshal(body, &updated); err != nil {
		return nil, fmt.Errorf("%w: failed to parse updated item: %v", shared.ErrInvalidResponse, err)
	}
	return &updated, nil
}

// DeleteItem removes a line item
func (c *Client) DeleteItem(ctx context.Context, itemID int64) error {
	_, err := c.doRequest(ctx, http.MethodDelete, fmt.Sprintf("/purchase-orders/items/%d", itemID), nil)
	return notFoundAs(err, order.ErrItemNotFound)
}

// ReceiveInventory submits a receipt batch
func (c *Client) ReceiveInventory(ctx context.Context, orderID int64, lines []order.ReceiptLine) error {
	_, err := c.doRequest(ctx, http.MethodPost, fmt.Sprintf("/purchase-orders/%d/receive-inventory", orderID), lines)
	return notFoundAs(err, order.ErrOrderNotFound)
}

// ---------------------------------------------------------------------------
// Reference Data Operations
// ---------------------------------------------------------------------------

// Products retrieves all products with their owning companies
func (c *Client) Products(ctx context.Context) ([]order.Product, error) {
	body, err := c.doRequest(ctx, http.MethodGet, "/products", nil)
	if err != nil {
		return nil, err
	}

	var products []order.Product
	if err := json.Unmarshal(body, &products); err != nil {
		return nil, fmt.Errorf("%w: failed to parse products: %v", shared.ErrInvalidResponse, err)
	}
	return products, nil
}

// Companies retrieves all companies
func (c *Client) Companies(ctx context.Context) ([]order.Company, error) {
	body, err := c.doRequest(ctx, http.MethodGet, "/companies", nil)
	if err != nil {
		return nil, err
	}

	var companies []order.Company
	if err := json.Unmarshal(body, &companies); err != nil {
		return nil, fmt.Errorf("%w: failed to parse companies: %v", shared.ErrInvalidResponse, err)
	}
	return companies, nil
}

// UserCompanies retrieves the companies a user may act for
func (c *Client) UserCompanies(ctx context.Context, userID int64) ([]order.Company, error) {
	body, err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("/users/%d/companies", userID), nil)
	if err != nil {
		return nil, err
	}

	var companies []order.Company
	if err := json.Unmarshal(body, &companies); err != nil {
		return nil, fmt.Errorf("%w: failed to parse user companies: %v", shared.ErrInvalidResponse, err)
	}
	return companies, nil
}

// ---------------------------------------------------------------------------
// Request plumbing
// ---------------------------------------------------------------------------

// doRequest performs an HTTP request against the order service and maps
// non-OK responses onto the error taxonomy
func (c *Client) doRequest(ctx context.Context, method, path string, payload interface{}) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("api: failed to encode request: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("api: failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.New().String())
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("api: failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, c.mapError(method, path, resp.StatusCode, body)
	}
	return body, nil
}

// mapError classifies a non-OK response. Client-level rejections carry
// business meaning and are surfaced verbatim; everything 5xx is a transport
// failure the caller may retry.
func (c *Client) mapError(method, path string, status int, body []byte) error {
	if status >= 500 {
		c.logger.Warn("order service request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
		)
		return fmt.Errorf("%w: HTTP %d", shared.ErrRequestFailed, status)
	}

	var payload errorPayload
	message := http.StatusText(status)
	code := "REJECTED"
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Message != "" {
			message = payload.Message
		}
		if payload.Code != "" {
			code = payload.Code
		}
	}
	if status == http.StatusNotFound {
		code = "NOT_FOUND"
	}
	return shared.NewBusinessRuleError(status, code, message)
}

// notFoundAs replaces a generic 404 rejection with the caller's domain
// not-found error
func notFoundAs(err error, notFound *shared.DomainError) error {
	if err == nil {
		return nil
	}
	var be *shared.BusinessRuleError
	if errors.As(err, &be) && be.StatusCode == http.StatusNotFound {
		return notFound
	}
	return err
}
