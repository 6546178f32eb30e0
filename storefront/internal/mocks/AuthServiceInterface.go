package mocks

import (
	context "context"

	service "ardelivero-storefront/storefront/internal/service"

	mock "github.com/stretchr/testify/mock"
)

// AuthServiceInterface is a testify mock for service.AuthServiceInterface.
type AuthServiceInterface struct {
	mock.Mock
}

func (_m *AuthServiceInterface) Register(ctx context.Context, req service.RegisterRequest) error {
	ret := _m.Called(ctx, req)
	return ret.Error(0)
}

func (_m *AuthServiceInterface) Login(ctx context.Context, email string, password string) (*service.LoginResult, error) {
	ret := _m.Called(ctx, email, password)

	var r0 *service.LoginResult
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*service.LoginResult)
	}
	return r0, ret.Error(1)
}

func (_m *AuthServiceInterface) VerifyOTP(ctx context.Context, email string, code string) error {
	ret := _m.Called(ctx, email, code)
	return ret.Error(0)
}

func (_m *AuthServiceInterface) ResendOTP(ctx context.Context, email string) error {
	ret := _m.Called(ctx, email)
	return ret.Error(0)
}

func NewAuthServiceInterface(t interface {
	mock.TestingT
	Cleanup(func())
}) *AuthServiceInterface {
	m := &AuthServiceInterface{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
