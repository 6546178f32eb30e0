package mocks

import (
	context "context"

	service "ardelivero-storefront/storefront/internal/service"

	mock "github.com/stretchr/testify/mock"
)

// PaymentServiceInterface is a testify mock for service.PaymentServiceInterface.
type PaymentServiceInterface struct {
	mock.Mock
}

func (_m *PaymentServiceInterface) Status(ctx context.Context, transactionID string) (*service.TransactionStatus, error) {
	ret := _m.Called(ctx, transactionID)

	var r0 *service.TransactionStatus
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*service.TransactionStatus)
	}
	return r0, ret.Error(1)
}

func NewPaymentServiceInterface(t interface {
	mock.TestingT
	Cleanup(func())
}) *PaymentServiceInterface {
	m := &PaymentServiceInterface{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
