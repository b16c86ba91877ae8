package errors

import "strings"

// ValidateLaneCount rejects lane counts that cannot form a lane set.
func ValidateLaneCount(n int) error {
	if n <= 0 {
		return New(ErrCodeInvalidConfig, "lane count must be positive, got %d", n)
	}
	return nil
}

// ValidateSize rejects negative item dimensions. Zero is allowed: empty items
// occupy a slot in their lane without advancing it.
func ValidateSize(width, height int) error {
	if width < 0 || height < 0 {
		return New(ErrCodeInvalidInput, "item size must be non-negative, got %dx%d", width, height)
	}
	return nil
}

// ValidatePosition checks that position lies in [0, count).
func ValidatePosition(position, count int) error {
	if position < 0 || position >= count {
		return OutOfRange(position, count)
	}
	return nil
}

// ValidateChoice checks that value (case-insensitive) is one of allowed.
// The field name is used in the error message.
func ValidateChoice(field, value string, allowed ...string) error {
	for _, a := range allowed {
		if strings.EqualFold(value, a) {
			return nil
		}
	}
	return New(ErrCodeInvalidConfig, "invalid %s: %q (must be one of: %s)", field, value, strings.Join(allowed, ", "))
}
