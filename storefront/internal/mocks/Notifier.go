package mocks

import (
	mock "github.com/stretchr/testify/mock"
)

// Notifier is a testify mock for otp.Notifier.
type Notifier struct {
	mock.Mock
}

func (_m *Notifier) Success(message string) {
	_m.Called(message)
}

func (_m *Notifier) Failure(message string) {
	_m.Called(message)
}

func NewNotifier(t interface {
	mock.TestingT
	Cleanup(func())
}) *Notifier {
	m := &Notifier{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
