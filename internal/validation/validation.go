// Package validation checks user input field by field.
package validation

import (
	"net/url"
	"regexp"
	"sort"
	"strings"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
var pinRegex = regexp.MustCompile(`^[0-9]{4}$`)

// Errors maps a field name to its validation message
type Errors map[string]string

func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = f + ": " + e[f]
	}
	return strings.Join(parts, "; ")
}

// Add records the first message for a field
func (e Errors) Add(field, message string) {
	if _, ok := e[field]; !ok {
		e[field] = message
	}
}

// Check records message when ok is false
func (e Errors) Check(ok bool, field, message string) {
	if !ok {
		e.Add(field, message)
	}
}

// Err returns nil when no field failed
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

// ValidateEmail returns a message for an invalid email, or ""
func ValidateEmail(email string) string {
	email = strings.TrimSpace(email)
	if email == "" {
		return "Email is required."
	}
	if !emailRegex.MatchString(email) {
		return "Enter a valid email address."
	}
	return ""
}

// ValidatePassword returns a message for a too-short password, or ""
func ValidatePassword(password string) string {
	if password == "" {
		return "Password is required."
	}
	if len(password) < 6 {
		return "Password must be at least 6 characters."
	}
	return ""
}

// ValidateName returns a message for a blank or overlong name, or ""
func ValidateName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "Name is required."
	}
	if len(name) > 100 {
		return "Name must be at most 100 characters."
	}
	return ""
}

// ValidatePIN returns a message unless pin is exactly four digits
func ValidatePIN(pin string) string {
	if !pinRegex.MatchString(pin) {
		return "PIN must be exactly 4 digits."
	}
	return ""
}

// ValidateAgeCategory returns a message unless id is one of the seeded age bands
func ValidateAgeCategory(id int64) string {
	if id < 1 || id > 3 {
		return "Select an age group."
	}
	return ""
}

// ValidateURL returns a message unless raw is an absolute http(s) URL
func ValidateURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "URL is required."
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "Enter a valid http or https URL."
	}
	return ""
}

// Field runs a message-returning check and records a failure under field
func (e Errors) Field(field, message string) {
	if message != "" {
		e.Add(field, message)
	}
}
