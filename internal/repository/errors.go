package repository

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/usmansyedcoder/Portfolio-Backend/internal/model"
)

// ErrNotFound is returned when a requested record does not exist in the database.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned when a record fails structural validation before
// it is written. The wrapped message lists the offending fields.
var ErrValidation = errors.New("validation failed")

var validate = newValidator()

// newValidator registers contact_email so the store accepts exactly the
// addresses the contact form does.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("contact_email", func(fl validator.FieldLevel) bool {
		return model.IsValidEmail(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	return v
}

// validateRecord runs the struct's validate tags and converts failures into
// an ErrValidation with a readable message.
func validateRecord(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return fmt.Errorf("%w: %s", ErrValidation, strings.Join(msgs, ", "))
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email", "contact_email":
		return field + " must be a valid email address"
	case "max":
		return fmt.Sprintf("%s cannot exceed %s characters", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid (%s)", field, fe.Tag())
	}
}
