package mocks

import (
	context "context"
	io "io"

	models "github.com/Houeta/catalog-watcher/internal/models"
	mock "github.com/stretchr/testify/mock"
)

// HTMLParser is a mock type for the HTMLParser type
type HTMLParser struct {
	mock.Mock
}

// ParseProducts provides a mock function with given fields: ctx, body
func (_m *HTMLParser) ParseProducts(ctx context.Context, body io.Reader) ([]models.Product, error) {
	ret := _m.Called(ctx, body)

	if len(ret) == 0 {
		panic("no return value specified for ParseProducts")
	}

	var r0 []models.Product
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, io.Reader) ([]models.Product, error)); ok {
		return rf(ctx, body)
	}
	if rf, ok := ret.Get(0).(func(context.Context, io.Reader) []models.Product); ok {
		r0 = rf(ctx, body)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).([]models.Product)
	}

	if rf, ok := ret.Get(1).(func(context.Context, io.Reader) error); ok {
		r1 = rf(ctx, body)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// NewHTMLParser creates a new instance of HTMLParser. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
// The first argument is typically a *testing.T value.
func NewHTMLParser(t interface {
	mock.TestingT
	Cleanup(func())
}) *HTMLParser {
	mock := &HTMLParser{}
	mock.Mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}
