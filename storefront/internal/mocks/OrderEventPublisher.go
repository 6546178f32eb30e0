package mocks

import (
	context "context"

	domain "ardelivero-storefront/storefront/internal/domain"

	mock "github.com/stretchr/testify/mock"
)

// OrderEventPublisher is a testify mock for storage.OrderEventPublisher.
type OrderEventPublisher struct {
	mock.Mock
}

func (_m *OrderEventPublisher) PublishOrderEvent(ctx context.Context, ev domain.OrderEvent) error {
	ret := _m.Called(ctx, ev)
	return ret.Error(0)
}

func NewOrderEventPublisher(t interface {
	mock.TestingT
	Cleanup(func())
}) *OrderEventPublisher {
	m := &OrderEventPublisher{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
