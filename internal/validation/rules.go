// Package validation provides composable field rules that collect every
// violation instead of stopping at the first, so create and update paths
// can report complete error lists.
package validation

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	// Loose international format: optional +, digits, separators.
	phonePattern = regexp.MustCompile(`^\+?[\d\s\-().]{5,20}$`)
)

// Violations accumulates human-readable rule failures.
type Violations []string

// Add appends a formatted violation.
func (v *Violations) Add(format string, args ...any) {
	*v = append(*v, fmt.Sprintf(format, args...))
}

// Empty reports whether no rule failed.
func (v Violations) Empty() bool {
	return len(v) == 0
}

// Required checks a trimmed string is non-empty.
func (v *Violations) Required(field, value string) {
	if strings.TrimSpace(value) == "" {
		v.Add("%s is required", field)
	}
}

// MaxLen checks a string does not exceed max characters.
func (v *Violations) MaxLen(field, value string, max int) {
	if len(value) > max {
		v.Add("%s must be at most %d characters", field, max)
	}
}

// MinLen checks a string has at least min characters.
func (v *Violations) MinLen(field, value string, min int) {
	if len(value) < min {
		v.Add("%s must be at least %d characters", field, min)
	}
}

// Email checks a non-empty value looks like an email address.
func (v *Violations) Email(field, value string) {
	if value != "" && !emailPattern.MatchString(value) {
		v.Add("%s must be a valid email address", field)
	}
}

// Phone checks a non-empty value matches the loose phone pattern.
func (v *Violations) Phone(field, value string) {
	if value != "" && !phonePattern.MatchString(value) {
		v.Add("%s must be a valid phone number", field)
	}
}

// IntRange checks an integer falls within [min, max].
func (v *Violations) IntRange(field string, value, min, max int) {
	if value < min || value > max {
		v.Add("%s must be between %d and %d", field, min, max)
	}
}

// NonNegative checks a float is >= 0.
func (v *Violations) NonNegative(field string, value float64) {
	if value < 0 {
		v.Add("%s must be a non-negative number", field)
	}
}

// OneOf checks value is a member of allowed.
func (v *Violations) OneOf(field, value string, allowed []string) {
	for _, candidate := range allowed {
		if value == candidate {
			return
		}
	}
	v.Add("%s must be one of: %s", field, strings.Join(allowed, ", "))
}
