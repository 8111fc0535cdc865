package order

import "github.com/erp/poctl/internal/domain/shared"

// Common order domain errors
var (
	ErrOrderNotFound   = shared.NewDomainError("ORDER_NOT_FOUND", "Purchase order not found")
	ErrItemNotFound    = shared.NewDomainError("ITEM_NOT_FOUND", "Order item not found")
	ErrProductNotFound = shared.NewDomainError("PRODUCT_NOT_FOUND", "Product not found")
)
