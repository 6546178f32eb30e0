package mocks

import (
	context "context"

	domain "ardelivero-storefront/storefront/internal/domain"

	mock "github.com/stretchr/testify/mock"
)

// SessionWriter is a testify mock for otp.SessionWriter.
type SessionWriter struct {
	mock.Mock
}

func (_m *SessionWriter) Login(ctx context.Context, user domain.User, token string) error {
	ret := _m.Called(ctx, user, token)
	return ret.Error(0)
}

func NewSessionWriter(t interface {
	mock.TestingT
	Cleanup(func())
}) *SessionWriter {
	m := &SessionWriter{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
