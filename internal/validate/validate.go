// Package validate canonicalizes operator input for plates and project codes.
package validate

import (
	"errors"
	"regexp"
	"strings"
)

var (
	ErrInvalidPlate   = errors.New("invalid plate")
	ErrInvalidProject = errors.New("invalid project code")
)

var (
	plateRe      = regexp.MustCompile(`^\d{4}-?[A-Z]{3}$`)
	projectRe    = regexp.MustCompile(`^[A-Z]{1,5}\d{1,6}$`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// NormalizePlate turns raw operator text into the canonical NNNN-LLL form.
// Empty input (after trimming) is valid and stays empty. Accepts 1234ABC or
// 1234-ABC; the output is always hyphenated. Idempotent on its own output.
func NormalizePlate(raw string) (string, error) {
	s := canon(raw)
	if s == "" {
		return "", nil
	}
	if !plateRe.MatchString(s) {
		return "", ErrInvalidPlate
	}
	if !strings.Contains(s, "-") {
		s = s[:4] + "-" + s[4:]
	}
	return s, nil
}

// NormalizeProject canonicalizes a project code: 1-5 letters followed by
// 1-6 digits, e.g. V429. Empty input is valid and stays empty.
func NormalizeProject(raw string) (string, error) {
	s := canon(raw)
	if s == "" {
		return "", nil
	}
	if !projectRe.MatchString(s) {
		return "", ErrInvalidProject
	}
	return s, nil
}

func canon(raw string) string {
	s := strings.ToUpper(strings.TrimSpace(raw))
	return whitespaceRe.ReplaceAllString(s, "")
}
