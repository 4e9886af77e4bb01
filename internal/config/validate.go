package config

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Validate checks cfg and reports every invalid field at once.
func Validate(cfg Config) error {
	if err := getValidator().Struct(cfg); err != nil {
		return formatValidationError(err)
	}
	return nil
}

func formatValidationError(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	msgs := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		switch e.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", e.Field()))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of [%s], got %q", e.Field(), e.Param(), e.Value()))
		case "gte", "gt":
			msgs = append(msgs, fmt.Sprintf("%s must be greater than %s", e.Field(), e.Param()))
		case "lte":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s", e.Field(), e.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s validation", e.Field(), e.Tag()))
		}
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
}
