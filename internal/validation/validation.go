// Package validation checks user input before it reaches the record store.
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"

	"agenda/internal/record"
)

// UsernamePattern: letters, digits, underscore, dot or dash; 3-32 characters.
var UsernamePattern = regexp.MustCompile(`^[\p{L}0-9_.\-]{3,32}$`)

const (
	MinUsernameLen = 3
	MaxUsernameLen = 32
	MinPasswordLen = 8
	MaxTitleLen    = 256
)

// Error describes one rejected field.
type Error struct {
	Field  string
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

func invalid(field, format string, args ...any) *Error {
	return &Error{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// ValidateUsername checks the username format.
func ValidateUsername(username string) error {
	if strings.TrimSpace(username) == "" {
		return invalid("username", "cannot be empty")
	}
	n := len([]rune(username))
	if n < MinUsernameLen {
		return invalid("username", "must be at least %d characters long", MinUsernameLen)
	}
	if n > MaxUsernameLen {
		return invalid("username", "must not exceed %d characters", MaxUsernameLen)
	}
	if !UsernamePattern.MatchString(username) {
		return invalid("username", "can only contain letters, numbers, '_', '.' and '-'")
	}
	return nil
}

// ValidatePassword requires a minimum length and at least one letter and one
// digit.
func ValidatePassword(password string) error {
	if password == "" {
		return invalid("password", "cannot be empty")
	}
	if len([]rune(password)) < MinPasswordLen {
		return invalid("password", "must be at least %d characters long", MinPasswordLen)
	}
	var letter, digit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !letter || !digit {
		return invalid("password", "must contain letters and digits")
	}
	return nil
}

// ValidateTitle rejects blank titles.
func ValidateTitle(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return invalid("title", "cannot be empty")
	}
	if len([]rune(title)) > MaxTitleLen {
		return invalid("title", "must not exceed %d characters", MaxTitleLen)
	}
	return nil
}

// ParseDate parses a YYYY-MM-DD due date.
func ParseDate(field, v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, invalid(field, "cannot be empty")
	}
	t, err := time.ParseInLocation(record.DateLayout, v, time.Local)
	if err != nil {
		return time.Time{}, invalid(field, "must be a date formatted YYYY-MM-DD")
	}
	return t, nil
}
