package mocks

import (
	context "context"

	mock "github.com/stretchr/testify/mock"
)

// Subscribers is a mock type for the Subscribers type
type Subscribers struct {
	mock.Mock
}

// AddSubscriber provides a mock function with given fields: ctx, chatID
func (_m *Subscribers) AddSubscriber(ctx context.Context, chatID int64) (bool, error) {
	ret := _m.Called(ctx, chatID)

	if len(ret) == 0 {
		panic("no return value specified for AddSubscriber")
	}

	return ret.Bool(0), ret.Error(1)
}

// RemoveSubscriber provides a mock function with given fields: ctx, chatID
func (_m *Subscribers) RemoveSubscriber(ctx context.Context, chatID int64) (bool, error) {
	ret := _m.Called(ctx, chatID)

	if len(ret) == 0 {
		panic("no return value specified for RemoveSubscriber")
	}

	return ret.Bool(0), ret.Error(1)
}

// Subscribers provides a mock function with given fields: ctx
func (_m *Subscribers) Subscribers(ctx context.Context) ([]int64, error) {
	ret := _m.Called(ctx)

	if len(ret) == 0 {
		panic("no return value specified for Subscribers")
	}

	var r0 []int64
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]int64)
	}

	return r0, ret.Error(1)
}

// NewSubscribers creates a new instance of Subscribers. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
// The first argument is typically a *testing.T value.
func NewSubscribers(t interface {
	mock.TestingT
	Cleanup(func())
}) *Subscribers {
	mock := &Subscribers{}
	mock.Mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}
