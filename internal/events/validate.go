package events

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/specialistvlad/meshviz/internal/mesh"
)

// validate is a singleton validator instance with the mesh-specific tags
// registered.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonTagName)
	if err := v.RegisterValidation("technology", func(fl validator.FieldLevel) bool {
		return mesh.Technology(fl.Field().String()).Valid()
	}); err != nil {
		panic(err)
	}
	return v
}

// formatValidationError reduces a validator error to its first field
// failure.
func formatValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}
	for _, e := range validationErrs {
		switch e.Tag() {
		case "required":
			return fmt.Errorf("%s: field is required", e.Field())
		case "technology":
			return fmt.Errorf("%s: unknown technology %q", e.Field(), e.Value())
		default:
			return fmt.Errorf("%s: validation failed (%s)", e.Field(), e.Tag())
		}
	}
	return err
}
