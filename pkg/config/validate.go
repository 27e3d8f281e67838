package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate is the shared validator instance. Struct tag validation is
// stateless, so a single instance is safe for concurrent use.
var validate = validator.New()

// Validate checks the configuration against its struct validation tags.
//
// Returns an error describing every invalid field, or nil if the
// configuration is valid.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		var ve validator.ValidationErrors
		if errors, ok := err.(validator.ValidationErrors); ok {
			ve = errors
		} else {
			return fmt.Errorf("config validation: %w", err)
		}

		msgs := make([]string, 0, len(ve))
		for _, fe := range ve {
			msgs = append(msgs, describeFieldError(fe))
		}
		return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
	}

	return nil
}

// describeFieldError renders a single validation failure in a form an
// operator can act on.
func describeFieldError(fe validator.FieldError) string {
	field := fe.Namespace()

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", field, fe.Param(), fe.Value())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed %q validation", field, fe.Tag())
	}
}
