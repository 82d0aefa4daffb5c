// Package validation configures the request validator shared by the catalog
// and the HTTP handlers, and turns its failures into ValidationErrors.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/segyhp/ludoteca/internal/domain"
	customError "github.com/segyhp/ludoteca/pkg/errors"
)

// New returns a validator with the library's custom tags registered.
// now drives the upper bound of the pubyear tag.
func New(now func() time.Time) *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	// Registration only fails on empty tags or nil funcs.
	_ = v.RegisterValidation("notblank", notBlank)
	_ = v.RegisterValidation("pubyear", func(fl validator.FieldLevel) bool {
		year := fl.Field().Int()
		return year >= domain.MinPublicationYear && year <= int64(now().Year())
	})

	return v
}

func notBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// Translate converts a validator error into a ValidationError describing the
// first failing field. Other errors pass through unchanged.
func Translate(err error) error {
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}

	return customError.WrapInvalidInput(describe(fieldErrs[0]))
}

func describe(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "notblank":
		return fmt.Sprintf("%s must not be empty", field)
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "pubyear":
		return fmt.Sprintf("%s must be between %d and the current year", field, domain.MinPublicationYear)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "gtefield":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, strings.ToLower(fe.Param()))
	case "contains":
		return fmt.Sprintf("%s must contain '%s'", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid (%s)", field, fe.Tag())
	}
}
