package services

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "socialmap-api/internal/errors"
)

// MsgMissingFields is returned when a required request field is absent.
const MsgMissingFields = "Missing required fields"

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report JSON field names rather than Go field names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateStruct runs the struct's validate tags and converts failures into
// ErrInvalidInput errors with a caller-facing message.
func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "Invalid request", err)
	}

	for _, fe := range verrs {
		if fe.Tag() == "required" {
			return apperrors.New(apperrors.ErrInvalidInput, MsgMissingFields)
		}
	}

	fe := verrs[0]
	switch fe.Tag() {
	case "min", "max":
		if fe.Kind() == reflect.String {
			return apperrors.New(apperrors.ErrInvalidInput, fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param()))
		}
		return apperrors.New(apperrors.ErrInvalidInput, fmt.Sprintf("%s is out of range", fe.Field()))
	case "url":
		return apperrors.New(apperrors.ErrInvalidInput, fmt.Sprintf("%s must be a valid URL", fe.Field()))
	default:
		return apperrors.New(apperrors.ErrInvalidInput, fmt.Sprintf("%s is invalid", fe.Field()))
	}
}
