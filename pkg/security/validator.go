package security

import (
	"errors"
	"strings"
	"unicode"
)

const (
	// MaxFilterValueLength is the maximum length of an email address (RFC 5321)
	MaxFilterValueLength = 254
)

var (
	// ErrFilterTooLong is returned for filter values longer than MaxFilterValueLength
	ErrFilterTooLong = errors.New("filter value too long")
	// ErrFilterInvalidChars is returned for filter values with control characters
	ErrFilterInvalidChars = errors.New("filter value contains invalid characters")
)

// ValidateEmailFilter validates an email query filter such as ?email=.
// An empty value means "no filter" and is returned unchanged. Any address
// the write endpoints accept must pass, so only the length and control
// characters are checked; the store binds the value as a parameter.
func ValidateEmailFilter(value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", nil
	}

	if len(value) > MaxFilterValueLength {
		return "", ErrFilterTooLong
	}

	if strings.IndexFunc(value, unicode.IsControl) >= 0 {
		return "", ErrFilterInvalidChars
	}

	return value, nil
}
