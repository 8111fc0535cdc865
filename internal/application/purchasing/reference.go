package purchasing

import (
	"context"

	"go.uber.org/zap"

	"github.com/erp/poctl/internal/domain/order"
)

// ReferenceService resolves the products and companies an order form may
// choose from. Product choices are filtered to the order's company so line
// items cannot reference another company's catalog; the authoritative
// enforcement stays with the server.
type ReferenceService struct {
	gateway  order.ReferenceGateway
	identity order.Identity
	logger   *zap.Logger
}

// NewReferenceService creates a reference data service
func NewReferenceService(gateway order.ReferenceGateway, identity order.Identity, logger *zap.Logger) *ReferenceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReferenceService{
		gateway:  gateway,
		identity: identity,
		logger:   logger.Named("reference"),
	}
}

// Companies retrieves all companies
func (s *ReferenceService) Companies(ctx context.Context) ([]order.Company, error) {
	return s.gateway.Companies(ctx)
}

// UserCompanies retrieves the companies the authenticated user may act for
func (s *ReferenceService) UserCompanies(ctx context.Context) ([]order.Company, error) {
	if s.identity == nil {
		return s.gateway.Companies(ctx)
	}
	return s.gateway.UserCompanies(ctx, s.identity.UserID())
}

// Products retrieves the full product catalog
func (s *ReferenceService) Products(ctx context.Context) ([]order.Product, error) {
	return s.gateway.Products(ctx)
}

// ProductsForCompany retrieves the products a given company's orders may
// reference
func (s *ReferenceService) ProductsForCompany(ctx context.Context, companyID int64) ([]order.Product, error) {
	products, err := s.gateway.Products(ctx)
	if err != nil {
		return nil, err
	}

	filtered := make([]order.Product, 0, len(products))
	for _, p := range products {
		if p.BelongsTo(companyID) {
			filtered = append(filtered, p)
		}
	}
	s.logger.Debug("filtered products for company",
		zap.Int64("company_id", companyID),
		zap.Int("total", len(products)),
		zap.Int("matched", len(filtered)),
	)
	return filtered, nil
}

// FindProduct resolves a product by ID from the catalog
func (s *ReferenceService) FindProduct(ctx context.Context, productID int64) (*order.Product, error) {
	products, err := s.gateway.Products(ctx)
	if err != nil {
		return nil, err
	}
	for idx := range products {
		if products[idx].ID == productID {
			return &products[idx], nil
		}
	}
	return nil, order.ErrProductNotFound
}
