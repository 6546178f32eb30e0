package mocks

import (
	context "context"

	domain "ardelivero-storefront/storefront/internal/domain"
	service "ardelivero-storefront/storefront/internal/service"

	mock "github.com/stretchr/testify/mock"
)

// OrderServiceInterface is a testify mock for service.OrderServiceInterface.
type OrderServiceInterface struct {
	mock.Mock
}

func (_m *OrderServiceInterface) History(ctx context.Context, userID string, filter service.OrderFilter) ([]domain.Order, error) {
	ret := _m.Called(ctx, userID, filter)

	var r0 []domain.Order
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]domain.Order)
	}
	return r0, ret.Error(1)
}

func (_m *OrderServiceInterface) Get(ctx context.Context, id string) (*domain.Order, error) {
	ret := _m.Called(ctx, id)

	var r0 *domain.Order
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*domain.Order)
	}
	return r0, ret.Error(1)
}

func (_m *OrderServiceInterface) Create(ctx context.Context, req service.OrderRequest) (*domain.Order, error) {
	ret := _m.Called(ctx, req)

	var r0 *domain.Order
	if rf, ok := ret.Get(0).(func(context.Context, service.OrderRequest) *domain.Order); ok {
		r0 = rf(ctx, req)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(*domain.Order)
	}
	return r0, ret.Error(1)
}

func NewOrderServiceInterface(t interface {
	mock.TestingT
	Cleanup(func())
}) *OrderServiceInterface {
	m := &OrderServiceInterface{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
