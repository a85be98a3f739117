package service

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"
)

const (
	minNameLength        = 3
	minPasswordLength    = 6
	minTitleLength       = 3
	minDescriptionLength = 3
)

// ValidationError reports the first input rule a request violated.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

func validateName(name string) error {
	if utf8.RuneCountInString(strings.TrimSpace(name)) < minNameLength {
		return invalid("name", "name must be at least %d characters", minNameLength)
	}
	return nil
}

func validatePassword(field, password string) error {
	if utf8.RuneCountInString(password) < minPasswordLength {
		return invalid(field, "%s must be at least %d characters", field, minPasswordLength)
	}
	return nil
}

func validateTitle(title string) error {
	if utf8.RuneCountInString(strings.TrimSpace(title)) < minTitleLength {
		return invalid("title", "title must be at least %d characters", minTitleLength)
	}
	return nil
}

func validateDescription(description string) error {
	if utf8.RuneCountInString(strings.TrimSpace(description)) < minDescriptionLength {
		return invalid("description", "description must be at least %d characters", minDescriptionLength)
	}
	return nil
}

// normalizeEmail validates the address syntax and returns it trimmed and
// lower-cased. Display-name forms like "Ann <a@x.com>" are rejected.
func normalizeEmail(email string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", invalid("email", "enter a valid email")
	}
	parsed, err := mail.ParseAddress(email)
	if err != nil || parsed.Address != email {
		return "", invalid("email", "enter a valid email")
	}
	domain := email[strings.LastIndex(email, "@")+1:]
	if !strings.Contains(domain, ".") || strings.HasSuffix(domain, ".") {
		return "", invalid("email", "enter a valid email")
	}
	return strings.ToLower(email), nil
}

// firstError returns the first non-nil error.
func firstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
