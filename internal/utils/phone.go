package utils

import (
	"regexp"
	"strings"
)

var saMobile = regexp.MustCompile(`^5\d{8}$`)

// NormalizeSaudiPhone accepts 05XXXXXXXX, 5XXXXXXXX, 9665XXXXXXXX,
// +9665XXXXXXXX and 009665XXXXXXXX (spaces/dashes ignored) and returns
// the E.164 form +9665XXXXXXXX.
func NormalizeSaudiPhone(raw string) (string, bool) {
	s := strings.NewReplacer(" ", "", "-", "", "(", "", ")", "", ".", "").Replace(strings.TrimSpace(raw))
	switch {
	case strings.HasPrefix(s, "+966"):
		s = s[4:]
	case strings.HasPrefix(s, "00966"):
		s = s[5:]
	case strings.HasPrefix(s, "966"):
		s = s[3:]
	case strings.HasPrefix(s, "0"):
		s = s[1:]
	}
	if !saMobile.MatchString(s) {
		return "", false
	}
	return "+966" + s, true
}

// IsSaudiPhone reports whether raw is a Saudi mobile number.
func IsSaudiPhone(raw string) bool {
	_, ok := NormalizeSaudiPhone(raw)
	return ok
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// IsEmail is a shape check only; delivery is the mail provider's problem.
func IsEmail(s string) bool {
	return emailPattern.MatchString(strings.TrimSpace(s))
}
