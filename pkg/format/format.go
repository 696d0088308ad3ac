// Package format provides the primitive format checks used by the badge
// discriminators and validator: absolute IRIs, ISO 8601 timestamps and email
// addresses.
package format

import (
	"net/mail"
	"net/url"
	"regexp"
	"strings"
	"time"
)

// dateTimePattern accepts YYYY-MM-DDTHH:mm:ss[.fraction](Z|±HH:mm) and nothing else.
var dateTimePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(\.\d+)?(Z|[+-]\d{2}:\d{2})$`)

// IsIRI reports whether value is a string that parses as an absolute IRI,
// that is one with a scheme.
func IsIRI(value any) bool {
	s, ok := value.(string)
	if !ok || s == "" {
		return false
	}
	if strings.ContainsAny(s, " \t\r\n") {
		return false
	}

	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return u.Scheme != "" && (u.Opaque != "" || u.Host != "" || u.Path != "")
}

// IsDateTime reports whether value is a string in the ISO 8601 date-time
// form used by Open Badges. Date-only and time-only strings are rejected.
func IsDateTime(value any) bool {
	s, ok := value.(string)
	if !ok {
		return false
	}
	return dateTimePattern.MatchString(s)
}

// ParseDateTime parses an ISO 8601 date-time string. It returns false when
// the string does not match the accepted form or names an impossible instant.
func ParseDateTime(s string) (time.Time, bool) {
	if !dateTimePattern.MatchString(s) {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// IsEmail reports whether value is a single bare email address.
func IsEmail(value any) bool {
	s, ok := value.(string)
	if !ok || s == "" {
		return false
	}
	addr, err := mail.ParseAddress(s)
	if err != nil {
		return false
	}
	return addr.Address == s
}
