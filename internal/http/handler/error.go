package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/avirbig/cohen-services-hub/internal/http/middleware"
	"github.com/avirbig/cohen-services-hub/internal/logger"
)

// errorPayload is the error body every intake route answers with. It never
// carries internal error text.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// statusErrors maps the statuses fiber itself raises onto envelope codes.
var statusErrors = map[int]errorEnvelope{
	fiber.StatusBadRequest:            {Code: "BAD_REQUEST", Message: "bad request"},
	fiber.StatusNotFound:              {Code: "NOT_FOUND", Message: "resource not found"},
	fiber.StatusMethodNotAllowed:      {Code: "METHOD_NOT_ALLOWED", Message: "method not allowed"},
	fiber.StatusRequestEntityTooLarge: {Code: "PAYLOAD_TOO_LARGE", Message: "request body too large"},
	fiber.StatusUnsupportedMediaType:  {Code: "UNSUPPORTED_MEDIA_TYPE", Message: "unsupported content type"},
}

var internalError = errorEnvelope{Code: "INTERNAL_ERROR", Message: "internal server error"}

func requestIDFromCtx(c *fiber.Ctx) string {
	if s, ok := c.Locals(middleware.RequestIDLocalKey).(string); ok {
		return s
	}
	return ""
}

// writeError writes the standard envelope with status. code is a short
// machine-readable string such as "INVALID_BODY"; message is safe to show.
func writeError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(errorPayload{
		RequestID: requestIDFromCtx(c),
		Error: errorEnvelope{
			Code:    code,
			Message: message,
		},
	})
}

// ErrorHandler is the fiber error handler for the intake server. Known fiber
// statuses keep their code; anything else is logged and reported as a 500.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			if env, ok := statusErrors[fe.Code]; ok {
				return writeError(c, fe.Code, env.Code, env.Message)
			}
			if fe.Code < fiber.StatusInternalServerError {
				return writeError(c, fe.Code, "REQUEST_ERROR", "request could not be processed")
			}
		}

		logger.Error(c.UserContext(), "request failed", err, "method", c.Method(), "path", c.Path())
		status := fiber.StatusInternalServerError
		if fe != nil {
			status = fe.Code
		}
		return writeError(c, status, internalError.Code, internalError.Message)
	}
}
