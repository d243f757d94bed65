package validation

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	slugRegex  = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)
	colorRegex = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)
)

// MaxCookingTime caps cooking_time in minutes.
const MaxCookingTime = 32000

// ValidateTagSlug checks the slug alphabet.
func ValidateTagSlug(slug string) error {
	if len(slug) == 0 || len(slug) > 200 {
		return fmt.Errorf("slug must be 1-200 characters")
	}
	if !slugRegex.MatchString(slug) {
		return fmt.Errorf("slug can only contain letters, digits, hyphens and underscores")
	}
	return nil
}

// ValidateHexColor accepts #RRGGBB.
func ValidateHexColor(color string) error {
	if !colorRegex.MatchString(color) {
		return fmt.Errorf("color must be a #RRGGBB hex value")
	}
	return nil
}

// ValidateRecipeName rejects blank and overlong names.
func ValidateRecipeName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("name is required")
	}
	if len(name) > 200 {
		return fmt.Errorf("name must not exceed 200 characters")
	}
	return nil
}

// ValidateCookingTime requires a positive number of minutes.
func ValidateCookingTime(minutes int) error {
	if minutes < 1 {
		return fmt.Errorf("cooking_time must be at least 1")
	}
	if minutes > MaxCookingTime {
		return fmt.Errorf("cooking_time must not exceed %d", MaxCookingTime)
	}
	return nil
}

// ValidateAmount requires a positive ingredient amount.
func ValidateAmount(amount int) error {
	if amount < 1 {
		return fmt.Errorf("amount must be at least 1")
	}
	return nil
}
