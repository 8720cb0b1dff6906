package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/tcfw/govern/pkg/identity"
)

// Provider is a testify mock of identity.Provider
type Provider struct {
	mock.Mock
}

var _ identity.Provider = (*Provider)(nil)

func (_m *Provider) Derive(ctx context.Context, row int, col int, instance int) (identity.ID, error) {
	ret := _m.Called(ctx, row, col, instance)

	var r0 identity.ID
	if rf, ok := ret.Get(0).(func(context.Context, int, int, int) identity.ID); ok {
		r0 = rf(ctx, row, col, instance)
	} else {
		r0 = ret.Get(0).(identity.ID)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, int, int, int) error); ok {
		r1 = rf(ctx, row, col, instance)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

func (_m *Provider) Sign(ctx context.Context, id identity.ID, payload []byte) (identity.Signature, error) {
	ret := _m.Called(ctx, id, payload)

	var r0 identity.Signature
	if rf, ok := ret.Get(0).(func(context.Context, identity.ID, []byte) identity.Signature); ok {
		r0 = rf(ctx, id, payload)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(identity.Signature)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, identity.ID, []byte) error); ok {
		r1 = rf(ctx, id, payload)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

func (_m *Provider) Verify(payload []byte, sig identity.Signature, id identity.ID) bool {
	ret := _m.Called(payload, sig, id)

	if rf, ok := ret.Get(0).(func([]byte, identity.Signature, identity.ID) bool); ok {
		return rf(payload, sig, id)
	}

	return ret.Bool(0)
}

type mockConstructorTestingTNewProvider interface {
	mock.TestingT
	Cleanup(func())
}

// NewProvider creates a Provider mock and asserts its expectations on cleanup
func NewProvider(t mockConstructorTestingTNewProvider) *Provider {
	m := &Provider{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
