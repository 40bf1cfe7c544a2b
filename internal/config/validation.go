package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation error(s):\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// HasErrors returns true if there are any validation errors
func (e ValidationErrors) HasErrors() bool {
	return len(e) > 0
}

// Validate performs comprehensive validation on the configuration
func (c *Config) Validate() error {
	var errors ValidationErrors

	errors = append(errors, c.validateDatabase()...)
	errors = append(errors, c.validateRedis()...)
	errors = append(errors, c.validateOpenAI()...)
	errors = append(errors, c.validateAuth()...)
	errors = append(errors, c.validateServer()...)
	errors = append(errors, c.validateQuery()...)

	if errors.HasErrors() {
		return errors
	}

	return nil
}

func (c *Config) validateDatabase() []ValidationError {
	var errors []ValidationError

	if c.Database.Path == "" {
		errors = append(errors, ValidationError{
			Field:   "Database.Path",
			Message: "database path is required",
		})
	}

	if c.Database.MigrationsPath == "" {
		errors = append(errors, ValidationError{
			Field:   "Database.MigrationsPath",
			Message: "migrations path is required",
		})
	}

	return errors
}

func (c *Config) validateRedis() []ValidationError {
	var errors []ValidationError

	if c.Redis.Addr == "" {
		errors = append(errors, ValidationError{
			Field:   "Redis.Addr",
			Message: "redis address is required",
		})
	}

	return errors
}

func (c *Config) validateOpenAI() []ValidationError {
	var errors []ValidationError

	// The API key is optional: without it natural-language questions are
	// rejected but explicit SQL and default listings still work.
	if c.OpenAI.Model == "" {
		errors = append(errors, ValidationError{
			Field:   "OpenAI.Model",
			Message: "OpenAI model is required",
		})
	}

	if c.OpenAI.Timeout <= 0 {
		errors = append(errors, ValidationError{
			Field:   "OpenAI.Timeout",
			Message: "OpenAI timeout must be positive",
		})
	}

	return errors
}

func (c *Config) validateAuth() []ValidationError {
	var errors []ValidationError

	if c.Auth.JWTExpiry <= 0 {
		errors = append(errors, ValidationError{
			Field:   "Auth.JWTExpiry",
			Message: "JWT expiry must be positive",
		})
	}

	if c.Auth.SessionExpiry <= 0 {
		errors = append(errors, ValidationError{
			Field:   "Auth.SessionExpiry",
			Message: "session expiry must be positive",
		})
	}

	if c.Auth.RateLimit < 0 {
		errors = append(errors, ValidationError{
			Field:   "Auth.RateLimit",
			Message: "rate limit cannot be negative",
		})
	}

	return errors
}

func (c *Config) validateServer() []ValidationError {
	var errors []ValidationError

	if c.Server.Port == "" {
		errors = append(errors, ValidationError{
			Field:   "Server.Port",
			Message: "server port is required",
		})
	}

	switch c.Server.GinMode {
	case "debug", "release", "test":
	default:
		errors = append(errors, ValidationError{
			Field:   "Server.GinMode",
			Message: fmt.Sprintf("invalid gin mode: %s (must be 'debug', 'release', or 'test')", c.Server.GinMode),
		})
	}

	return errors
}

func (c *Config) validateQuery() []ValidationError {
	var errors []ValidationError

	if c.Query.Timeout <= 0 {
		errors = append(errors, ValidationError{
			Field:   "Query.Timeout",
			Message: "query timeout must be positive",
		})
	}

	if c.Query.CacheTTL < 0 {
		errors = append(errors, ValidationError{
			Field:   "Query.CacheTTL",
			Message: "cache TTL cannot be negative",
		})
	}

	switch c.Query.Policy {
	case "full", "prefix-only":
	default:
		errors = append(errors, ValidationError{
			Field:   "Query.Policy",
			Message: fmt.Sprintf("invalid query policy: %s (must be 'full' or 'prefix-only')", c.Query.Policy),
		})
	}

	return errors
}
