// Package redact masks credentials in strings before they are logged or
// returned to a client. Connection strings are the main concern: a failed
// connect must never print the database password.
package redact

import (
	"net/url"
	"regexp"
)

// Placeholders substituted for masked content.
const (
	RedactionPlaceholder          = "[REDACTED]"
	RedactedCredentialPlaceholder = "[REDACTED_CREDENTIAL]"
)

var (
	// userinfo section of a URL-style DSN
	dbConnRegex = regexp.MustCompile(`(?i)\b(postgres(?:ql)?|mysql|db|database)://[^@\s/]+@`)

	// password=... pairs in keyword/value DSNs and error text
	passwordRegex = regexp.MustCompile(`(?i)\b(password|passwd|pwd)\s*([=:])\s*('[^']*'|"[^"]*"|[^\s&]+)`)
)

// String masks credentials found anywhere in s.
func String(s string) string {
	if s == "" {
		return s
	}
	s = dbConnRegex.ReplaceAllString(s, "${1}://"+RedactedCredentialPlaceholder+"@")
	s = passwordRegex.ReplaceAllString(s, "${1}${2}"+RedactedCredentialPlaceholder)
	return s
}

// Error returns the masked message of err, or the empty string for nil.
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}

// ConnectionString returns dsn with the password replaced, keeping the user,
// host and database visible for diagnostics. Strings that do not parse as a
// URL fall back to pattern masking.
func ConnectionString(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return String(dsn)
	}
	if u.User != nil {
		if _, ok := u.User.Password(); ok {
			u.User = url.UserPassword(u.User.Username(), RedactionPlaceholder)
		}
	}
	q := u.Query()
	if q.Has("password") {
		q.Set("password", RedactionPlaceholder)
		u.RawQuery = q.Encode()
	}
	// url.URL escapes the placeholder brackets; undo that for readability.
	return unescapePlaceholder(u.String())
}

var escapedPlaceholder = regexp.MustCompile(`%5BREDACTED%5D`)

func unescapePlaceholder(s string) string {
	return escapedPlaceholder.ReplaceAllString(s, RedactionPlaceholder)
}

// redactedError wraps an error and masks its message while preserving the chain.
type redactedError struct {
	err error
}

func (e *redactedError) Error() string { return Error(e.err) }
func (e *redactedError) Unwrap() error { return e.err }

// Wrap returns an error whose message is masked but which still matches
// errors.Is and errors.As against the original chain.
func Wrap(err error) error {
	if err == nil {
		return nil
	}
	if re, ok := err.(*redactedError); ok {
		return re
	}
	return &redactedError{err: err}
}
