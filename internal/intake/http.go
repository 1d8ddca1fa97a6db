package intake

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/avirbig/cohen-services-hub/internal/apperrors"
	"github.com/avirbig/cohen-services-hub/internal/config"
)

const maxResponseBytes = 1 << 20

// HTTPResponse is the body a direct intake endpoint answers with.
type HTTPResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// HTTPBackend posts to a single endpoint.
type HTTPBackend struct {
	url      string
	encoding string
	client   HTTPClient
}

func NewHTTPBackend(url, encoding string, client HTTPClient) *HTTPBackend {
	return &HTTPBackend{url: url, encoding: encoding, client: client}
}

func (b *HTTPBackend) Name() string { return config.BackendHTTP }

// Submit succeeds only on a 2xx status whose body says success. The body is
// decoded for any status so the service's message reaches the log.
func (b *HTTPBackend) Submit(ctx context.Context, p Payload) Result {
	status, raw, err := post(ctx, b.client, b.url, p, b.encoding)
	if err != nil {
		return failure(err)
	}

	var resp HTTPResponse
	decodeErr := json.Unmarshal(raw, &resp)

	if !isSuccess(status) {
		return Result{
			Message: resp.Message,
			Err:     apperrors.ErrUnexpectedStatus.WithContext("status", status).WithContext("message", resp.Message),
		}
	}
	if decodeErr != nil {
		return failure(apperrors.ErrInvalidResponse.WithError(decodeErr).WithContext("status", status))
	}
	if !resp.Success {
		return Result{
			Message: resp.Message,
			Err:     apperrors.ErrSubmissionRejected.WithContext("message", resp.Message),
		}
	}
	return Result{OK: true, Message: resp.Message}
}

// post encodes p, sends it and returns the status and at most
// maxResponseBytes of the body.
func post(ctx context.Context, client HTTPClient, url string, p Payload, encoding string) (int, []byte, error) {
	body, contentType, err := Encode(p, encoding)
	if err != nil {
		return 0, nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, nil, apperrors.ErrTransport.WithError(err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, apperrors.ErrTransport.WithError(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return resp.StatusCode, nil, apperrors.ErrTransport.WithError(err)
	}
	return resp.StatusCode, raw, nil
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}
