package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/go-certichain/certichain/registry"
	"github.com/go-certichain/certichain/storage/model"
)

// Error is the JSON error body returned by all endpoints
type Error struct {
	Error       string            `json:"error"`
	Description string            `json:"error_description"`
	Fields      []model.FieldName `json:"fields,omitempty"`
}

// Generic error kinds for errors that are not registry errors
const (
	KindInvalidRequest = "InvalidRequest"
	KindNotFound       = "NotFound"
	KindConflict       = "Conflict"
	KindUnauthorized   = "Unauthorized"
	KindLockedOut      = "LockedOut"
	KindInternal       = "Internal"
)

// ErrorInvalidRequest returns an Error for a malformed request
func ErrorInvalidRequest(description string) Error {
	return Error{
		Error:       KindInvalidRequest,
		Description: description,
	}
}

// ErrorNotFound returns an Error for an unknown resource
func ErrorNotFound(description string) Error {
	return Error{
		Error:       KindNotFound,
		Description: description,
	}
}

// ErrorServerError returns an Error for an internal failure
func ErrorServerError(description string) Error {
	return Error{
		Error:       KindInternal,
		Description: description,
	}
}

var statusByKind = map[string]int{
	"UnknownTemplate":       fiber.StatusBadRequest,
	"UnknownField":          fiber.StatusBadRequest,
	"MissingRequiredFields": fiber.StatusBadRequest,
	"InvalidExpiry":         fiber.StatusBadRequest,
	"InvalidIdentity":       fiber.StatusBadRequest,
	"EmptyDocument":         fiber.StatusBadRequest,
	"DocumentTooLarge":      fiber.StatusBadRequest,
	"InvalidContentHash":    fiber.StatusBadRequest,
	"IssuerNotAuthorized":   fiber.StatusForbidden,
	"NotAuthorized":         fiber.StatusForbidden,
	"IssuerNotFound":        fiber.StatusNotFound,
	"CertificateNotFound":   fiber.StatusNotFound,
	"ContentNotFound":       fiber.StatusNotFound,
	"DuplicateIssuer":       fiber.StatusConflict,
	"AlreadyRevoked":        fiber.StatusConflict,
	"StorageUnavailable":    fiber.StatusServiceUnavailable,
	"LedgerUnavailable":     fiber.StatusServiceUnavailable,
	"Aborted":               fiber.StatusServiceUnavailable,
}

// FromError maps err to an HTTP status and an error body
func FromError(err error) (int, Error) {
	if kind := registry.ErrorKind(err); kind != "" {
		return statusByKind[kind], Error{
			Error:       kind,
			Description: err.Error(),
			Fields:      registry.FieldsOf(err),
		}
	}
	if errors.Is(err, ErrLockedOut) {
		return fiber.StatusTooManyRequests, Error{
			Error:       KindLockedOut,
			Description: err.Error(),
		}
	}
	if errors.Is(err, ErrUnauthorized) {
		return fiber.StatusUnauthorized, Error{
			Error:       KindUnauthorized,
			Description: err.Error(),
		}
	}
	var validationErr ValidationError
	if errors.As(err, &validationErr) {
		return fiber.StatusBadRequest, ErrorInvalidRequest(validationErr.Error())
	}
	var notFound model.NotFoundError
	if errors.As(err, &notFound) {
		return fiber.StatusNotFound, ErrorNotFound(notFound.Error())
	}
	var exists model.AlreadyExistsError
	if errors.As(err, &exists) {
		return fiber.StatusConflict, Error{
			Error:       KindConflict,
			Description: exists.Error(),
		}
	}
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		kind := KindInternal
		switch {
		case fiberErr.Code == fiber.StatusNotFound:
			kind = KindNotFound
		case fiberErr.Code < fiber.StatusInternalServerError:
			kind = KindInvalidRequest
		}
		return fiberErr.Code, Error{
			Error:       kind,
			Description: fiberErr.Message,
		}
	}
	return fiber.StatusInternalServerError, ErrorServerError(err.Error())
}

// SendError writes the mapped error response for err
func SendError(c *fiber.Ctx, err error) error {
	status, body := FromError(err)
	entry := log.WithError(err).WithField("path", c.Path()).WithField("status", status)
	if status >= fiber.StatusInternalServerError {
		entry.Error("request failed")
	} else {
		entry.Debug("request rejected")
	}
	return c.Status(status).JSON(body)
}
