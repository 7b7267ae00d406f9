package config

import (
	"fmt"
	"strconv"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateConfig checks that the configuration is complete enough to boot.
// JWT and database credentials are hard requirements everywhere; SMTP is
// optional because the OTP mailer degrades to logging the code.
func ValidateConfig(cfg *Config) error {
	var errors []string

	if cfg.JWTSecret == "" {
		errors = append(errors, "JWT_SECRET is required")
	}
	if cfg.DBHost == "" || cfg.DBPort == "" {
		errors = append(errors, "DB_HOST and DB_PORT are required")
	}
	if cfg.DBUser == "" || cfg.DBName == "" {
		errors = append(errors, "DB_USER and DB_NAME are required")
	}
	if IsProduction() && cfg.DBPassword == "" {
		errors = append(errors, "db_password secret or DB_PASSWORD is required in production")
	}
	if cfg.RedisURL == "" && (cfg.RedisHost == "" || cfg.RedisPort == "") {
		errors = append(errors, "REDIS_URL or REDIS_HOST/REDIS_PORT are required")
	}
	if _, err := strconv.Atoi(cfg.ServerPort); err != nil {
		errors = append(errors, fmt.Sprintf("SERVER_PORT %q is not a valid port", cfg.ServerPort))
	}
	// SMTP settings travel together.
	if (cfg.SMTPHost == "") != (cfg.SMTPPort == "") {
		errors = append(errors, "SMTP_HOST and SMTP_PORT must be set together")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n%s", strings.Join(errors, "\n"))
	}

	return nil
}
