package api

import (
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/go-certichain/certichain/registry"
	"github.com/go-certichain/certichain/storage/model"
)

func TestFromError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		kind   string
	}{
		{"unknown template", errors.Wrap(registry.ErrUnknownTemplate, "x"), fiber.StatusBadRequest, "UnknownTemplate"},
		{
			"missing fields",
			registry.MissingRequiredFieldsError{Template: "degree", Fields: []model.FieldName{model.FieldDegree}},
			fiber.StatusBadRequest, "MissingRequiredFields",
		},
		{"not authorized", registry.ErrIssuerNotAuthorized, fiber.StatusForbidden, "IssuerNotAuthorized"},
		{"not found", registry.ErrCertificateNotFound, fiber.StatusNotFound, "CertificateNotFound"},
		{"already revoked", registry.ErrAlreadyRevoked, fiber.StatusConflict, "AlreadyRevoked"},
		{"aborted", errors.WithStack(model.ErrAborted), fiber.StatusServiceUnavailable, "Aborted"},
		{"storage", registry.ErrStorageUnavailable, fiber.StatusServiceUnavailable, "StorageUnavailable"},
		{"validation", ValidationError{Field: "issuer", Tag: "required"}, fiber.StatusBadRequest, KindInvalidRequest},
		{"model not found", model.NotFoundError("user"), fiber.StatusNotFound, KindNotFound},
		{"model exists", model.AlreadyExistsError("user"), fiber.StatusConflict, KindConflict},
		{"fiber bad request", fiber.NewError(fiber.StatusBadRequest, "bad"), fiber.StatusBadRequest, KindInvalidRequest},
		{"fiber not found", fiber.ErrNotFound, fiber.StatusNotFound, KindNotFound},
		{"unauthorized", errors.Wrap(ErrUnauthorized, "missing credentials"), fiber.StatusUnauthorized, KindUnauthorized},
		{"locked out", errors.Wrap(ErrLockedOut, "user 'x'"), fiber.StatusTooManyRequests, KindLockedOut},
		{"other", errors.New("boom"), fiber.StatusInternalServerError, KindInternal},
	}
	for _, tt := range tests {
		t.Run(
			tt.name, func(t *testing.T) {
				status, body := FromError(tt.err)
				assert.Equal(t, tt.status, status)
				assert.Equal(t, tt.kind, body.Error)
				assert.NotEmpty(t, body.Description)
			},
		)
	}
}

func TestFromErrorCarriesFields(t *testing.T) {
	_, body := FromError(
		registry.UnknownFieldError{Template: "degree", Fields: []model.FieldName{"color", "size"}},
	)
	assert.Equal(t, []model.FieldName{"color", "size"}, body.Fields)
}

func TestValidate(t *testing.T) {
	type req struct {
		Issuer string `json:"issuer" validate:"required"`
	}
	err := Validate(req{})
	var validationErr ValidationError
	if assert.ErrorAs(t, err, &validationErr) {
		assert.Equal(t, "issuer", validationErr.Field)
		assert.Equal(t, "required", validationErr.Tag)
	}
	assert.NoError(t, Validate(req{Issuer: "uni"}))
}
