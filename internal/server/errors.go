package server

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/roach88/accolade/internal/registry"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries a machine-readable code and a message.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// statusFor maps a registry error code to an HTTP status.
func statusFor(code registry.ErrorCode) int {
	switch code {
	case registry.ErrCodeUnauthorized:
		return fiber.StatusForbidden
	case registry.ErrCodeNotFound:
		return fiber.StatusNotFound
	case registry.ErrCodeInvalidState, registry.ErrCodeAlreadyInitialized:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

func (s *Server) handleError(c *fiber.Ctx, err error) error {
	var re *registry.Error
	var fe *fiber.Error
	var ve validator.ValidationErrors

	status := fiber.StatusInternalServerError
	detail := ErrorDetail{Code: "INTERNAL", Message: "internal error"}

	switch {
	case errors.As(err, &re):
		status = statusFor(re.Code)
		detail = ErrorDetail{Code: string(re.Code), Message: re.Message}
		if status == fiber.StatusInternalServerError {
			s.log.Error("registry failure", "error", err)
		}
	case errors.As(err, &ve):
		status = fiber.StatusBadRequest
		detail = ErrorDetail{Code: "INVALID_REQUEST", Message: formatValidationErrors(ve)}
	case errors.As(err, &fe):
		status = fe.Code
		detail = ErrorDetail{Code: codeForStatus(fe.Code), Message: fe.Message}
	default:
		s.log.Error("request failed", "method", c.Method(), "path", c.Path(), "error", err)
	}
	return c.Status(status).JSON(ErrorBody{Error: detail})
}

func codeForStatus(status int) string {
	switch status {
	case fiber.StatusBadRequest:
		return "INVALID_REQUEST"
	case fiber.StatusUnauthorized:
		return "UNAUTHENTICATED"
	case fiber.StatusNotFound:
		return "ROUTE_NOT_FOUND"
	case fiber.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	default:
		return "HTTP_ERROR"
	}
}

func formatValidationErrors(ve validator.ValidationErrors) string {
	msgs := make([]string, 0, len(ve))
	for _, e := range ve {
		switch e.Tag() {
		case "required":
			msgs = append(msgs, e.Field()+" is required")
		case "max":
			msgs = append(msgs, e.Field()+" must be at most "+e.Param()+" characters")
		default:
			msgs = append(msgs, e.Field()+" is invalid")
		}
	}
	return strings.Join(msgs, "; ")
}
