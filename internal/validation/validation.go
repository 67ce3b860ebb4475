// Package validation provides input validation utilities
package validation

import (
	"regexp"

	"aviary/internal/models"
)

var (
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
)

// ValidatePassword checks if a password meets the minimum requirements
func ValidatePassword(password string) error {
	if len(password) < 6 {
		return models.NewValidationError("Password must be at least 6 characters long")
	}

	// Prevent unreasonable inputs (bcrypt truncates past 72 bytes anyway)
	if len(password) > 128 {
		return models.NewValidationError("Password must not exceed 128 characters")
	}

	return nil
}

// ValidateUsername checks if a username meets requirements
func ValidateUsername(username string) error {
	if len(username) < 3 {
		return models.NewValidationError("Username must be at least 3 characters long")
	}

	if len(username) > 30 {
		return models.NewValidationError("Username must not exceed 30 characters")
	}

	// Only allow alphanumeric, underscores, and hyphens
	if !usernameRegex.MatchString(username) {
		return models.NewValidationError("Username can only contain letters, numbers, underscores, and hyphens")
	}

	if username[0] == '_' || username[0] == '-' || username[len(username)-1] == '_' || username[len(username)-1] == '-' {
		return models.NewValidationError("Username cannot start or end with underscore or hyphen")
	}

	return nil
}

// ValidateEmail checks basic email format
func ValidateEmail(email string) error {
	if !emailRegex.MatchString(email) {
		return models.NewValidationError("Invalid email format")
	}

	if len(email) > 254 {
		return models.NewValidationError("Email must not exceed 254 characters")
	}

	return nil
}
