package mocks

import (
	mock "github.com/stretchr/testify/mock"
)

// Syncable is a testify mock for store.Syncable.
type Syncable struct {
	mock.Mock
}

func (_m *Syncable) Keys() []string {
	ret := _m.Called()

	var r0 []string
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]string)
	}
	return r0
}

func (_m *Syncable) Apply(key string, value []byte) {
	_m.Called(key, value)
}

func NewSyncable(t interface {
	mock.TestingT
	Cleanup(func())
}) *Syncable {
	m := &Syncable{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
