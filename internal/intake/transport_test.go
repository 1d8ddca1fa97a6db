package intake_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/avirbig/cohen-services-hub/internal/apperrors"
	"github.com/avirbig/cohen-services-hub/internal/config"
	"github.com/avirbig/cohen-services-hub/internal/intake"
	"github.com/avirbig/cohen-services-hub/internal/intake/mocks"
)

func TestHTTPBackend_TransportError(t *testing.T) {
	client := new(mocks.MockHTTPClient)
	client.On("Do", mock.Anything).Return(nil, errors.New("connection refused"))

	res := intake.NewHTTPBackend("http://intake.invalid/submit", config.EncodingJSON, client).
		Submit(context.Background(), intake.Payload{FileField: "photos"})

	assert.False(t, res.OK)
	assert.True(t, apperrors.Is(res.Err, apperrors.ErrTransport))
	client.AssertExpectations(t)
}

func TestHTTPBackend_RequestShape(t *testing.T) {
	client := new(mocks.MockHTTPClient)
	client.On("Do", mock.MatchedBy(func(req *http.Request) bool {
		return req.Method == http.MethodPost &&
			req.URL.String() == "https://intake.example/submit" &&
			req.Header.Get("Content-Type") == "application/json" &&
			req.Header.Get("Accept") == "application/json"
	})).Return(&http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(strings.NewReader(`{"success":true}`)),
	}, nil)

	res := intake.NewHTTPBackend("https://intake.example/submit", config.EncodingJSON, client).
		Submit(context.Background(), intake.Payload{
			Fields:    []intake.Field{{Name: "phone", Value: "0501234567"}},
			FileField: "photos",
		})

	assert.True(t, res.OK)
	client.AssertExpectations(t)
}
