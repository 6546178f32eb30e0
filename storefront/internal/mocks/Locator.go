package mocks

import (
	context "context"

	domain "ardelivero-storefront/storefront/internal/domain"

	mock "github.com/stretchr/testify/mock"
)

// Locator is a testify mock for store.Locator.
type Locator struct {
	mock.Mock
}

func (_m *Locator) Locate(ctx context.Context) (domain.Location, error) {
	ret := _m.Called(ctx)

	var r0 domain.Location
	if rf, ok := ret.Get(0).(func(context.Context) domain.Location); ok {
		r0 = rf(ctx)
	} else {
		r0 = ret.Get(0).(domain.Location)
	}

	return r0, ret.Error(1)
}

func NewLocator(t interface {
	mock.TestingT
	Cleanup(func())
}) *Locator {
	m := &Locator{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
