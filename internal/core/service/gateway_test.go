package service_test

import (
	"context"
	"net/url"

	"github.com/stretchr/testify/mock"

	"github.com/niksmo/storefront/internal/core/port"
)

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) Get(
	ctx context.Context, path string, query url.Values, opts ...port.RequestOption,
) ([]byte, error) {
	args := m.Called(ctx, path, query)
	return bytesArg(args), args.Error(1)
}

func (m *MockGateway) Post(
	ctx context.Context, path string, body any, opts ...port.RequestOption,
) ([]byte, error) {
	args := m.Called(ctx, path, body)
	return bytesArg(args), args.Error(1)
}

func (m *MockGateway) Put(
	ctx context.Context, path string, body any, opts ...port.RequestOption,
) ([]byte, error) {
	args := m.Called(ctx, path, body)
	return bytesArg(args), args.Error(1)
}

func (m *MockGateway) Delete(
	ctx context.Context, path string, opts ...port.RequestOption,
) ([]byte, error) {
	args := m.Called(ctx, path)
	return bytesArg(args), args.Error(1)
}

func bytesArg(args mock.Arguments) []byte {
	if b, ok := args.Get(0).([]byte); ok {
		return b
	}
	return nil
}
