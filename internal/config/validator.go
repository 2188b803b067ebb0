package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var ErrInvalidConfig = errors.New("configuration validation failed")

// Validate checks that every required field is present and well formed.
func Validate(cfg *WatcherConfig) error {
	validate := validator.New(validator.WithRequiredStructEnabled())

	_ = validate.RegisterValidation("regexp", func(fl validator.FieldLevel) bool {
		_, err := regexp.Compile(fl.Field().String())
		return err == nil
	})

	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}

	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	messages := make([]string, 0, len(errs))
	for _, e := range errs {
		// drop the root type name: WatcherConfig.Site.URL -> Site.URL
		field := e.StructNamespace()
		if idx := strings.Index(field, "."); idx >= 0 {
			field = field[idx+1:]
		}

		msg := fmt.Sprintf("'%s': rule '%s'", field, e.Tag())
		if e.Param() != "" {
			msg += fmt.Sprintf(" (expected: %s)", e.Param())
		}
		if e.Value() != nil && e.Value() != "" {
			msg += fmt.Sprintf(", actual: '%v'", e.Value())
		}
		messages = append(messages, msg)
	}

	return fmt.Errorf("%w:\n  %s", ErrInvalidConfig, strings.Join(messages, "\n  "))
}
