package form

import (
	"errors"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"github.com/noah-isme/campus-portal/internal/models"
	appErrors "github.com/noah-isme/campus-portal/pkg/errors"
)

// NewValidator returns a validator that reports fields by their JSON names and knows the
// cross-field rules of the form inputs.
func NewValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})
	v.RegisterStructValidation(func(sl validator.StructLevel) {
		in, ok := sl.Current().Interface().(models.StudentInput)
		if !ok {
			return
		}
		if in.UniversityID() <= 0 {
			sl.ReportError(in.University, "university", "University", "required", "")
		}
	}, models.StudentInput{})
	return v
}

// Check validates s and reports failures as a *ValidationError.
func Check(v *validator.Validate, s interface{}) error {
	if err := v.Struct(s); err != nil {
		return toValidationError(err)
	}
	return nil
}

// ValidationError lists the failed fields with a short message each.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return "invalid fields: " + strings.Join(names, ", ")
}

// FieldErrors returns the per-field messages.
func (e *ValidationError) FieldErrors() map[string]string { return e.Fields }

// AppError maps the failure onto the API error taxonomy.
func (e *ValidationError) AppError() *appErrors.Error {
	return appErrors.Wrap(e, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "please fill in the required fields")
}

func toValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fieldMessage(fe)
	}
	return &ValidationError{Fields: fields}
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "notblank", "required", "required_if":
		return "is required"
	default:
		return "is invalid"
	}
}
