package content

import (
	"errors"
	"html/template"
	"regexp"

	"github.com/microcosm-cc/bluemonday"
)

var (
	policy = bluemonday.UGCPolicy()

	countryCodeRegex = regexp.MustCompile(`^\+[1-9]\d{0,2}$`)
	phoneRegex       = regexp.MustCompile(`^[1-9]\d{6,14}$`)
)

// Sanitize removes unsafe HTML from the input string using a strict
// policy. It is applied to every message and comment body taken off the
// wire.
func Sanitize(input string) string {
	return policy.Sanitize(input)
}

// Escape escapes special characters like "<" to become "&lt;".
// It matches the behavior of html/template and is safe for use in HTML
// attributes.
func Escape(input string) string {
	return template.HTMLEscapeString(input)
}

// ValidateName checks a first or last name before it is sent to the
// account endpoints: required, 2-45 characters.
func ValidateName(name string) error {
	if name == "" {
		return errors.New("name is required")
	}
	if n := len([]rune(name)); n < 2 {
		return errors.New("name must be at least 2 characters")
	} else if n > 45 {
		return errors.New("name must be less than 45 characters")
	}
	return nil
}

// ValidateAboutMe checks the about-me field: required, 10-350 characters.
func ValidateAboutMe(about string) error {
	if about == "" {
		return errors.New("about me is required")
	}
	if n := len([]rune(about)); n < 10 {
		return errors.New("about me must be at least 10 characters")
	} else if n > 350 {
		return errors.New("about me must be less than 350 characters")
	}
	return nil
}

// ValidateCountryCode checks a calling code: "+" followed by 1-3
// digits, no leading zero.
func ValidateCountryCode(code string) error {
	if code == "" {
		return errors.New("country code is required")
	}
	if !countryCodeRegex.MatchString(code) {
		return errors.New("invalid country code")
	}
	return nil
}

// ValidateContactNo checks a subscriber number: 7-15 digits, no leading
// zero.
func ValidateContactNo(no string) error {
	if no == "" {
		return errors.New("contact number is required")
	}
	if !phoneRegex.MatchString(no) {
		return errors.New("invalid contact number")
	}
	return nil
}
