package config

import (
	"os"
	"strings"
)

// Environment represents the current runtime environment
type Environment string

const (
	Development Environment = "development"
	Test        Environment = "test"
	CI          Environment = "ci"
	Production  Environment = "production"
)

// environmentOverride reports an environment forced by the process
// environment. CI=true always means CI; otherwise the legacy ENV variable.
func environmentOverride() (Environment, bool) {
	if os.Getenv("CI") == "true" {
		return CI, true
	}
	switch env := Environment(strings.ToLower(os.Getenv("ENV"))); env {
	case Development, Test, Production:
		return env, true
	}
	return "", false
}

// IsProduction returns true if the current environment is production
func (c *Config) IsProduction() bool {
	return c.Environment == Production
}
