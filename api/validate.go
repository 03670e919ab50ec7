package api

import (
	"fmt"
	"net/url"
	"reflect"
	"strings"

	"github.com/go-playground/validator"
	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(
		func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		},
	)
	return v
}

// ValidationError reports the first request field that failed validation
type ValidationError struct {
	Field string
	Tag   string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("field '%s' failed the '%s' check", e.Field, e.Tag)
}

// Validate checks the validate struct tags of v
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var validateErrors validator.ValidationErrors
	if errors.As(err, &validateErrors) && len(validateErrors) > 0 {
		first := validateErrors[0]
		return ValidationError{
			Field: first.Field(),
			Tag:   first.Tag(),
		}
	}
	return errors.WithStack(err)
}

// ParseBody parses the request body into v and validates it
func ParseBody(c *fiber.Ctx, v any) error {
	if err := c.BodyParser(v); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body: "+err.Error())
	}
	return Validate(v)
}

// PathParam returns the unescaped path parameter name
func PathParam(c *fiber.Ctx, name string) (string, error) {
	v, err := url.PathUnescape(c.Params(name))
	if err != nil {
		return "", fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("invalid path parameter '%s'", name))
	}
	return v, nil
}
