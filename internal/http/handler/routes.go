package handler

import (
	"encoding/json"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/avirbig/cohen-services-hub/internal/intake"
	"github.com/avirbig/cohen-services-hub/internal/logger"
)

// Options configures the development intake routes.
type Options struct {
	// SimulateFailure makes every submission answer with a failure body.
	SimulateFailure bool
	// Gatherer backs /metrics. Nil leaves /metrics unregistered.
	Gatherer prometheus.Gatherer
	// NewID mints receipt ids. Defaults to uuid.NewString.
	NewID func() string
}

// Receipt summarizes what a submission carried. Nothing else is kept.
type Receipt struct {
	ID     string   `json:"id"`
	FormID string   `json:"form_id,omitempty"`
	Fields int      `json:"fields"`
	Files  []string `json:"files"`
}

// RegisterRoutes attaches the intake endpoints to the provided Fiber app.
// The server accepts whatever it is sent; it performs no validation and
// stores nothing.
func RegisterRoutes(app *fiber.App, opts Options) {
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}

	app.Get("/health", HealthCheck())
	app.Get("/healthz", LivenessProbe())

	if opts.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}

	app.Post("/submit", SubmitForm(opts))
	app.Post("/f/:formID", SubmitSDK(opts))
}

// HealthCheck reports readiness. The server has no dependencies to ping.
func HealthCheck() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe is the bare liveness endpoint.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// SubmitForm speaks the direct endpoint contract: {success, message}.
func SubmitForm(opts Options) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rec, bad := readSubmission(c)
		if bad != nil {
			return writeError(c, bad.status, bad.code, bad.message)
		}
		rec.ID = opts.NewID()

		if opts.SimulateFailure {
			logger.Warn(c.UserContext(), "submission refused", "receipt", rec.ID)
			return c.Status(fiber.StatusInternalServerError).JSON(intake.HTTPResponse{
				Success: false,
				Message: "simulated failure",
			})
		}

		logger.Info(c.UserContext(), "submission received",
			"receipt", rec.ID, "fields", rec.Fields, "files", rec.Files)
		return c.Status(fiber.StatusOK).JSON(intake.HTTPResponse{
			Success: true,
			Message: "received",
		})
	}
}

// SubmitSDK speaks the hosted form contract: {data} or {error}.
func SubmitSDK(opts Options) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rec, bad := readSubmission(c)
		if bad != nil {
			return writeError(c, bad.status, bad.code, bad.message)
		}
		rec.ID = opts.NewID()
		rec.FormID = c.Params("formID")

		if opts.SimulateFailure {
			logger.Warn(c.UserContext(), "submission refused", "receipt", rec.ID, "form_id", rec.FormID)
			return c.Status(fiber.StatusUnprocessableEntity).JSON(intake.SDKResponse{
				Error: &intake.SDKError{Code: "SIMULATED_FAILURE", Message: "simulated failure"},
			})
		}

		data, err := json.Marshal(rec)
		if err != nil {
			return err
		}

		logger.Info(c.UserContext(), "submission received",
			"receipt", rec.ID, "form_id", rec.FormID, "fields", rec.Fields, "files", rec.Files)
		return c.Status(fiber.StatusOK).JSON(intake.SDKResponse{Data: data})
	}
}

type badBody struct {
	status  int
	code    string
	message string
}

// readSubmission accepts multipart/form-data or the JSON body the client
// encoder produces.
func readSubmission(c *fiber.Ctx) (Receipt, *badBody) {
	ct := strings.ToLower(c.Get(fiber.HeaderContentType))
	rec := Receipt{Files: []string{}}

	switch {
	case strings.HasPrefix(ct, fiber.MIMEMultipartForm):
		form, err := c.MultipartForm()
		if err != nil {
			return rec, &badBody{fiber.StatusBadRequest, "INVALID_BODY", "malformed multipart body"}
		}
		for _, values := range form.Value {
			rec.Fields += len(values)
		}
		for _, headers := range form.File {
			for _, fh := range headers {
				rec.Files = append(rec.Files, fh.Filename)
			}
		}

	case strings.HasPrefix(ct, fiber.MIMEApplicationJSON):
		var body intake.JSONBody
		if err := json.Unmarshal(c.Body(), &body); err != nil {
			return rec, &badBody{fiber.StatusBadRequest, "INVALID_BODY", "malformed json body"}
		}
		rec.Fields = len(body.Fields)
		for _, f := range body.Files {
			rec.Files = append(rec.Files, f.Name)
		}

	default:
		return rec, &badBody{fiber.StatusUnsupportedMediaType, "UNSUPPORTED_MEDIA_TYPE", "unsupported content type"}
	}

	return rec, nil
}
