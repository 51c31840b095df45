package pipeline

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/vyrodovalexey/paybff/internal/util"
)

// newValidator returns a validator that reports JSON field names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// validate runs struct validation and converts failures into a
// *util.ValidationError keyed by JSON field name.
func validate(v *validator.Validate, message string, cmd any) error {
	err := v.Struct(cmd)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate command: %w", err)
	}

	vErr := util.NewValidationError(message)
	for _, fe := range fieldErrs {
		if _, seen := vErr.Fields[fe.Field()]; seen {
			continue
		}
		vErr.AddField(fe.Field(), fieldMessage(fe))
	}
	return vErr
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email address"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "len":
		return fmt.Sprintf("%s must be exactly %s characters", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", field, fe.Param())
	case "alpha", "uppercase":
		if field == "currency" {
			return field + " must be three uppercase letters"
		}
		return field + " must contain only uppercase letters"
	case "alphanum":
		return field + " must contain only uppercase letters and digits"
	default:
		return fmt.Sprintf("%s is invalid (%s)", field, fe.Tag())
	}
}
