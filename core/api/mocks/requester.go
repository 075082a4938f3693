package mocks

import (
	"context"

	"grocer/core/api"

	"github.com/stretchr/testify/mock"
)

// Requester is a mock implementation of api.Requester
type Requester struct {
	mock.Mock
}

func (m *Requester) Request(ctx context.Context, command string, params api.Params) (*api.Response, error) {
	args := m.Called(ctx, command, params)
	if resp, ok := args.Get(0).(*api.Response); ok {
		return resp, args.Error(1)
	}
	return nil, args.Error(1)
}

// Identity is a mock implementation of api.Identity
type Identity struct {
	mock.Mock
}

func (m *Identity) CustomerID() (string, error) {
	args := m.Called()
	return args.String(0), args.Error(1)
}

// Session is a mock implementation of api.Session
type Session struct {
	mock.Mock
}

func (m *Session) Request(ctx context.Context, command string, params api.Params) (*api.Response, error) {
	args := m.Called(ctx, command, params)
	if resp, ok := args.Get(0).(*api.Response); ok {
		return resp, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Session) CustomerID() (string, error) {
	args := m.Called()
	return args.String(0), args.Error(1)
}

func (m *Session) Login(ctx context.Context, email, password string) error {
	args := m.Called(ctx, email, password)
	return args.Error(0)
}

func (m *Session) Anonymous() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *Session) Customer() (api.Customer, error) {
	args := m.Called()
	return args.Get(0).(api.Customer), args.Error(1)
}
