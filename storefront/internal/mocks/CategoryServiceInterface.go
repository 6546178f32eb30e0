package mocks

import (
	context "context"

	domain "ardelivero-storefront/storefront/internal/domain"

	mock "github.com/stretchr/testify/mock"
)

// CategoryServiceInterface is a testify mock for service.CategoryServiceInterface.
type CategoryServiceInterface struct {
	mock.Mock
}

func (_m *CategoryServiceInterface) List(ctx context.Context) ([]domain.Category, error) {
	ret := _m.Called(ctx)

	var r0 []domain.Category
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]domain.Category)
	}
	return r0, ret.Error(1)
}

func NewCategoryServiceInterface(t interface {
	mock.TestingT
	Cleanup(func())
}) *CategoryServiceInterface {
	m := &CategoryServiceInterface{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
