package services

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"ourevents/internal/domain"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their JSON name so clients can map errors back to the payload.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// validateStruct runs the struct's validate tags and converts failures into a
// *domain.ValidationError. The returned value is never nil so callers can add
// rules of their own before calling OrNil.
func validateStruct(s any) *domain.ValidationError {
	ve := domain.NewValidationError()
	err := validate.Struct(s)
	if err == nil {
		return ve
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		ve.Add("_", err.Error())
		return ve
	}
	for _, fe := range fieldErrs {
		ve.Add(fe.Field(), fieldMessage(fe))
	}
	return ve
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This value should not be blank."
	case "min":
		return fmt.Sprintf("This value is too short. It should have %s characters or more.", fe.Param())
	case "max":
		return fmt.Sprintf("This value is too long. It should have %s characters or less.", fe.Param())
	case "gt":
		return "This value should be positive."
	case "lte":
		return fmt.Sprintf("This value should be less than or equal to %s.", fe.Param())
	case "http_url", "url":
		return "This value is not a valid URL."
	case "email":
		return "This value is not a valid email address."
	case "gtfield":
		return "The end date must be after the start date."
	default:
		return fmt.Sprintf("This value failed the %q rule.", fe.Tag())
	}
}
