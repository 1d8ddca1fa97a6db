package intake

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"

	"github.com/avirbig/cohen-services-hub/internal/apperrors"
	"github.com/avirbig/cohen-services-hub/internal/config"
)

// SDKError is the error object of a hosted form service reply.
type SDKError struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

// SDKResponse is the hosted form service reply. Exactly one of Data and
// Error is set.
type SDKResponse struct {
	Data  json.RawMessage `json:"data,omitempty"`
	Error *SDKError       `json:"error,omitempty"`
}

// SDKBackend submits to a hosted form service by form id.
type SDKBackend struct {
	endpoint string
	encoding string
	client   HTTPClient
}

func NewSDKBackend(baseURL, formID, encoding string, client HTTPClient) *SDKBackend {
	return &SDKBackend{
		endpoint: strings.TrimRight(baseURL, "/") + "/f/" + url.PathEscape(formID),
		encoding: encoding,
		client:   client,
	}
}

func (b *SDKBackend) Name() string { return config.BackendSDK }

// Endpoint is the URL submissions go to.
func (b *SDKBackend) Endpoint() string { return b.endpoint }

func (b *SDKBackend) Submit(ctx context.Context, p Payload) Result {
	status, raw, err := post(ctx, b.client, b.endpoint, p, b.encoding)
	if err != nil {
		return failure(err)
	}

	var resp SDKResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		if !isSuccess(status) {
			return failure(apperrors.ErrUnexpectedStatus.WithContext("status", status))
		}
		return failure(apperrors.ErrInvalidResponse.WithError(err).WithContext("status", status))
	}
	if resp.Error != nil {
		return Result{
			Message: resp.Error.Message,
			Err:     apperrors.ErrSubmissionRejected.WithContext("message", resp.Error.Message).WithContext("code", resp.Error.Code),
		}
	}
	if !isSuccess(status) {
		return failure(apperrors.ErrUnexpectedStatus.WithContext("status", status))
	}
	return Result{OK: true}
}
