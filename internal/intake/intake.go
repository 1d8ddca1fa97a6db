// Package intake delivers a completed form to the external intake service.
//
// Two backends share one contract: HTTPBackend posts straight to an endpoint
// that answers {success, message}; SDKBackend talks to a hosted form service
// at {base}/f/{form_id} that answers {data, error}.
package intake

import (
	"context"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/avirbig/cohen-services-hub/internal/apperrors"
	"github.com/avirbig/cohen-services-hub/internal/config"
	"github.com/avirbig/cohen-services-hub/internal/model"
)

// Field is one form entry. Order is preserved and names may repeat.
type Field struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Payload is everything a submission carries.
type Payload struct {
	Fields    []Field
	Files     model.Collection
	FileField string
}

// Get returns the first value for name.
func (p Payload) Get(name string) (string, bool) {
	for _, f := range p.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

// Result is the settled outcome of one call. Message is whatever the
// service said; it is logged, never shown. Err carries the failure cause.
type Result struct {
	OK      bool
	Message string
	Err     error
}

func failure(err error) Result {
	return Result{Err: err}
}

// Backend submits payloads. Submit always settles; transport and protocol
// problems come back as a failed Result.
type Backend interface {
	Name() string
	Submit(ctx context.Context, p Payload) Result
}

// HTTPClient is satisfied by *http.Client.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// NewHTTPClient returns a client whose requests are traced.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
}

// Resolve builds the backend cfg asks for. Missing or unusable settings and
// a nil client surface as ErrIntakeUnavailable.
func Resolve(cfg config.IntakeConfig, client HTTPClient) (Backend, error) {
	if client == nil {
		return nil, apperrors.ErrIntakeUnavailable.WithContext("reason", "no http client")
	}
	if err := cfg.Validate(); err != nil {
		return nil, apperrors.ErrIntakeUnavailable.WithError(err)
	}
	switch cfg.Backend {
	case config.BackendSDK:
		return NewSDKBackend(cfg.SDKBaseURL, cfg.FormID, cfg.Encoding, client), nil
	default:
		return NewHTTPBackend(cfg.EndpointURL, cfg.Encoding, client), nil
	}
}
