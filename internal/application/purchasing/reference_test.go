package purchasing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/erp/poctl/internal/domain/order"
)

// MockReferenceGateway is a mock implementation of order.ReferenceGateway
type MockReferenceGateway struct {
	mock.Mock
}

func (m *MockReferenceGateway) Products(ctx context.Context) ([]order.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.Product), args.Error(1)
}

func (m *MockReferenceGateway) Companies(ctx context.Context) ([]order.Company, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.Company), args.Error(1)
}

func (m *MockReferenceGateway) UserCompanies(ctx context.Context, userID int64) ([]order.Company, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.Company), args.Error(1)
}

func catalogFixture() []order.Product {
	return []order.Product{
		{ID: 7, Name: "Widget", Company: &order.Company{ID: 3}},
		{ID: 8, Name: "Gadget", Company: &order.Company{ID: 4}},
		{ID: 9, Name: "Generic"},
	}
}

func TestProductsForCompany(t *testing.T) {
	gateway := new(MockReferenceGateway)
	gateway.On("Products", mock.Anything).Return(catalogFixture(), nil)

	svc := NewReferenceService(gateway, testIdentity{userID: 5, companyID: 3}, nil)

	products, err := svc.ProductsForCompany(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "Widget", products[0].Name)
	// products without an owning company stay visible
	assert.Equal(t, "Generic", products[1].Name)
}

func TestFindProduct(t *testing.T) {
	gateway := new(MockReferenceGateway)
	gateway.On("Products", mock.Anything).Return(catalogFixture(), nil)

	svc := NewReferenceService(gateway, testIdentity{userID: 5, companyID: 3}, nil)

	product, err := svc.FindProduct(context.Background(), 8)
	require.NoError(t, err)
	assert.Equal(t, "Gadget", product.Name)

	_, err = svc.FindProduct(context.Background(), 99)
	assert.ErrorIs(t, err, order.ErrProductNotFound)
}

func TestUserCompaniesUsesIdentity(t *testing.T) {
	gateway := new(MockReferenceGateway)
	gateway.On("UserCompanies", mock.Anything, int64(5)).Return([]order.Company{{ID: 3, Name: "Main"}}, nil)

	svc := NewReferenceService(gateway, testIdentity{userID: 5, companyID: 3}, nil)

	companies, err := svc.UserCompanies(context.Background())
	require.NoError(t, err)
	require.Len(t, companies, 1)
	assert.Equal(t, int64(3), companies[0].ID)
	gateway.AssertExpectations(t)
}
