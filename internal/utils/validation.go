package utils

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

var (
	// Transit ids are alphanumeric with underscore, hyphen and dot separators.
	validIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)

	htmlTagPattern = regexp.MustCompile(`<[^>]*>`)
)

// MaxNearbyLimit bounds the limit query parameter accepted by list endpoints.
const MaxNearbyLimit = 100

// ValidateID validates that an ID is safe and within reasonable limits
func ValidateID(id string) error {
	if id == "" {
		return errors.New("id cannot be empty")
	}

	if len(id) > 100 {
		return errors.New("id too long (max 100 characters)")
	}

	if !validIDPattern.MatchString(id) {
		return errors.New("id contains invalid characters")
	}

	return nil
}

// ValidateDirection accepts the two trip directions, 0 (outbound) and 1 (inbound).
func ValidateDirection(direction int) error {
	if direction != 0 && direction != 1 {
		return errors.New("direction must be 0 or 1")
	}
	return nil
}

// ValidateLimit validates list size parameters.
func ValidateLimit(limit int) error {
	if limit < 1 {
		return errors.New("limit must be positive")
	}
	if limit > MaxNearbyLimit {
		return errors.New("limit too large (max 100)")
	}
	return nil
}

// ValidateDate validates date strings in YYYY-MM-DD format
func ValidateDate(date string) error {
	// Empty dates default to the current service day.
	if date == "" {
		return nil
	}

	if _, err := time.Parse(DisplayDateLayout, date); err != nil {
		return errors.New("invalid date format, use YYYY-MM-DD")
	}

	return nil
}

// SanitizeInput removes HTML tags and surrounding whitespace.
func SanitizeInput(input string) string {
	return strings.TrimSpace(htmlTagPattern.ReplaceAllString(input, ""))
}
