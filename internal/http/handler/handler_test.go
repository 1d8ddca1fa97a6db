package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avirbig/cohen-services-hub/internal/apperrors"
	"github.com/avirbig/cohen-services-hub/internal/config"
	"github.com/avirbig/cohen-services-hub/internal/http/middleware"
	"github.com/avirbig/cohen-services-hub/internal/intake"
	"github.com/avirbig/cohen-services-hub/internal/model"
)

// appClient sends intake client requests straight into a fiber app.
type appClient struct {
	app *fiber.App
}

func (a appClient) Do(req *http.Request) (*http.Response, error) {
	return a.app.Test(req, -1)
}

func newApp(opts Options) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler()})
	app.Use(middleware.RequestID())
	RegisterRoutes(app, opts)
	return app
}

func fixedID() string { return "receipt-1" }

func samplePayload() intake.Payload {
	return intake.Payload{
		Fields: []intake.Field{
			{Name: "name", Value: "דנה כהן"},
			{Name: "phone", Value: "050-1234567"},
			{Name: "consent", Value: "on"},
		},
		Files: model.Collection{
			{ID: "a", Name: "sofa.jpg", Type: "image/jpeg", Size: 3, Data: []byte{1, 2, 3}},
			{ID: "b", Name: "closet.png", Type: "image/png", Size: 2, Data: []byte{4, 5}},
		},
		FileField: "photos",
	}
}

func TestHealthCheck(t *testing.T) {
	app := newApp(Options{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "healthy", body["status"])
}

func TestLivenessProbe(t *testing.T) {
	app := newApp(Options{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSubmitForm_Contract(t *testing.T) {
	tests := []struct {
		name     string
		encoding string
		simulate bool
		wantOK   bool
		wantErr  error
	}{
		{name: "multipart accepted", encoding: config.EncodingMultipart, wantOK: true},
		{name: "json accepted", encoding: config.EncodingJSON, wantOK: true},
		{name: "simulated failure", encoding: config.EncodingMultipart, simulate: true, wantErr: apperrors.ErrUnexpectedStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newApp(Options{SimulateFailure: tt.simulate, NewID: fixedID})
			backend := intake.NewHTTPBackend("http://intake.test/submit", tt.encoding, appClient{app})

			res := backend.Submit(context.Background(), samplePayload())

			assert.Equal(t, tt.wantOK, res.OK)
			if tt.wantErr != nil {
				assert.ErrorIs(t, res.Err, tt.wantErr)
			} else {
				assert.NoError(t, res.Err)
				assert.Equal(t, "received", res.Message)
			}
		})
	}
}

func TestSubmitSDK_Contract(t *testing.T) {
	t.Run("data carries the receipt", func(t *testing.T) {
		app := newApp(Options{NewID: fixedID})
		body, contentType, err := intake.Encode(samplePayload(), config.EncodingMultipart)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodPost, "/f/form-42", strings.NewReader(string(body)))
		req.Header.Set("Content-Type", contentType)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var out intake.SDKResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		assert.Nil(t, out.Error)

		var rec Receipt
		require.NoError(t, json.Unmarshal(out.Data, &rec))
		assert.Equal(t, "receipt-1", rec.ID)
		assert.Equal(t, "form-42", rec.FormID)
		assert.Equal(t, 3, rec.Fields)
		assert.ElementsMatch(t, []string{"sofa.jpg", "closet.png"}, rec.Files)
	})

	t.Run("sdk backend succeeds", func(t *testing.T) {
		app := newApp(Options{NewID: fixedID})
		backend := intake.NewSDKBackend("http://intake.test", "form-42", config.EncodingJSON, appClient{app})

		res := backend.Submit(context.Background(), samplePayload())
		assert.True(t, res.OK)
		assert.NoError(t, res.Err)
	})

	t.Run("simulated failure answers with an error object", func(t *testing.T) {
		app := newApp(Options{SimulateFailure: true, NewID: fixedID})
		backend := intake.NewSDKBackend("http://intake.test", "form-42", config.EncodingMultipart, appClient{app})

		res := backend.Submit(context.Background(), samplePayload())
		assert.False(t, res.OK)
		assert.ErrorIs(t, res.Err, apperrors.ErrSubmissionRejected)
		assert.Equal(t, "simulated failure", res.Message)
	})
}

func TestSubmit_BadBodies(t *testing.T) {
	app := newApp(Options{})

	tests := []struct {
		name        string
		contentType string
		body        string
		wantStatus  int
		wantCode    string
	}{
		{name: "no content type", body: "x", wantStatus: http.StatusUnsupportedMediaType, wantCode: "UNSUPPORTED_MEDIA_TYPE"},
		{name: "plain text", contentType: "text/plain", body: "x", wantStatus: http.StatusUnsupportedMediaType, wantCode: "UNSUPPORTED_MEDIA_TYPE"},
		{name: "broken json", contentType: "application/json", body: "{", wantStatus: http.StatusBadRequest, wantCode: "INVALID_BODY"},
		{name: "multipart without boundary", contentType: "multipart/form-data", body: "x", wantStatus: http.StatusBadRequest, wantCode: "INVALID_BODY"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/submit", strings.NewReader(tt.body))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			var res errorPayload
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
			assert.Equal(t, tt.wantCode, res.Error.Code)
			assert.NotEmpty(t, res.RequestID)
		})
	}
}

func TestErrorHandler_UnknownRoute(t *testing.T) {
	app := newApp(Options{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/documents", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	var res errorPayload
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
	assert.Equal(t, "NOT_FOUND", res.Error.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "intake_test_total", Help: "test"})
	reg.MustRegister(counter)
	counter.Inc()

	t.Run("exposed when a gatherer is set", func(t *testing.T) {
		app := newApp(Options{Gatherer: reg})

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Contains(t, string(body), "intake_test_total 1")
	})

	t.Run("absent otherwise", func(t *testing.T) {
		app := newApp(Options{})

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestErrorHandler_Statuses(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler()})
	app.Use(middleware.RequestID())
	app.Get("/teapot", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusTeapot, "short and stout")
	})
	app.Get("/boom", func(c *fiber.Ctx) error {
		return errors.New("database password is hunter2")
	})
	app.Get("/large", func(c *fiber.Ctx) error {
		return fiber.ErrRequestEntityTooLarge
	})

	tests := []struct {
		path       string
		wantStatus int
		wantCode   string
	}{
		{path: "/teapot", wantStatus: http.StatusTeapot, wantCode: "REQUEST_ERROR"},
		{path: "/boom", wantStatus: http.StatusInternalServerError, wantCode: "INTERNAL_ERROR"},
		{path: "/large", wantStatus: http.StatusRequestEntityTooLarge, wantCode: "PAYLOAD_TOO_LARGE"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, tt.path, nil))
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			assert.NotContains(t, string(body), "hunter2")

			var res errorPayload
			require.NoError(t, json.Unmarshal(body, &res))
			assert.Equal(t, tt.wantCode, res.Error.Code)
			assert.NotEmpty(t, res.RequestID)
		})
	}
}
