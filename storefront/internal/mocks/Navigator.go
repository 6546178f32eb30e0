package mocks

import (
	mock "github.com/stretchr/testify/mock"
)

// Navigator is a testify mock for otp.Navigator.
type Navigator struct {
	mock.Mock
}

func (_m *Navigator) ToRegister() {
	_m.Called()
}

func (_m *Navigator) ToLogin() {
	_m.Called()
}

func (_m *Navigator) ToCheckout() {
	_m.Called()
}

func NewNavigator(t interface {
	mock.TestingT
	Cleanup(func())
}) *Navigator {
	m := &Navigator{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
