package mocks

import (
	"context"
	"net/http"

	"github.com/avirbig/cohen-services-hub/internal/intake"

	"github.com/stretchr/testify/mock"
)

type MockBackend struct {
	mock.Mock
}

func (m *MockBackend) Name() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockBackend) Submit(ctx context.Context, p intake.Payload) intake.Result {
	args := m.Called(ctx, p)
	if f, ok := args.Get(0).(func(context.Context, intake.Payload) intake.Result); ok {
		return f(ctx, p)
	}
	return args.Get(0).(intake.Result)
}

type MockHTTPClient struct {
	mock.Mock
}

func (m *MockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	args := m.Called(req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*http.Response), args.Error(1)
}
