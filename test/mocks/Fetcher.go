package mocks

import (
	context "context"

	config "github.com/Houeta/catalog-watcher/internal/config"
	mock "github.com/stretchr/testify/mock"
)

// Fetcher is a mock type for the Fetcher type
type Fetcher struct {
	mock.Mock
}

// FetchHTML provides a mock function with given fields: ctx, site
func (_m *Fetcher) FetchHTML(ctx context.Context, site config.SiteConfig) (string, error) {
	ret := _m.Called(ctx, site)

	if len(ret) == 0 {
		panic("no return value specified for FetchHTML")
	}

	var r0 string
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, config.SiteConfig) (string, error)); ok {
		return rf(ctx, site)
	}
	if rf, ok := ret.Get(0).(func(context.Context, config.SiteConfig) string); ok {
		r0 = rf(ctx, site)
	} else {
		r0 = ret.Get(0).(string)
	}

	if rf, ok := ret.Get(1).(func(context.Context, config.SiteConfig) error); ok {
		r1 = rf(ctx, site)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// NewFetcher creates a new instance of Fetcher. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
// The first argument is typically a *testing.T value.
func NewFetcher(t interface {
	mock.TestingT
	Cleanup(func())
}) *Fetcher {
	mock := &Fetcher{}
	mock.Mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}
