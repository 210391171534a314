package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateConfig checks struct constraints and the rules of the configured environment.
func ValidateConfig(cfg *Config) error {
	var problems []ValidationError

	if err := validate.Struct(cfg); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return err
		}
		for _, fe := range fieldErrs {
			problems = append(problems, ValidationError{
				Field:   fe.Namespace(),
				Message: fmt.Sprintf("failed %q (value %v)", fe.Tag(), fe.Value()),
			})
		}
	}

	if err := cfg.Storage.Validate(); err != nil {
		problems = append(problems, ValidationError{Field: "Config.Storage", Message: err.Error()})
	}

	switch cfg.Environment {
	case Production, CI:
		if cfg.Auth.JWTSecret == devJWTSecret {
			problems = append(problems, ValidationError{Field: "Config.Auth.JWTSecret", Message: "the development secret is not allowed in " + string(cfg.Environment)})
		}
		if len(cfg.Auth.JWTSecret) < 32 {
			problems = append(problems, ValidationError{Field: "Config.Auth.JWTSecret", Message: "must be at least 32 characters"})
		}
		if cfg.Database.Password == "" {
			problems = append(problems, ValidationError{Field: "Config.Database.Password", Message: "db_password secret is required"})
		}
	}

	if len(problems) == 0 {
		return nil
	}
	msgs := make([]string, len(problems))
	for i, p := range problems {
		msgs[i] = p.Error()
	}
	return errors.New(strings.Join(msgs, "\n"))
}
