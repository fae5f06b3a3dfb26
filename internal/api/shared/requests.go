package shared

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidForm is returned when the request body cannot be parsed as a
// URL-encoded form.
var ErrInvalidForm = errors.New("invalid form body")

// Global validator instance for reuse
var validate = validator.New()

// ParseForm parses the URL-encoded request body. Malformed bodies, such as a
// broken percent escape, yield ErrInvalidForm.
func ParseForm(r *http.Request) error {
	if err := r.ParseForm(); err != nil {
		return errors.Join(ErrInvalidForm, err)
	}
	return nil
}

// ValidateRequest validates the given struct against its validate tags.
func ValidateRequest(v any) error {
	return validate.Struct(v)
}

// MissingFields returns the struct field names that failed a "required"
// rule, in declaration order. Any other error yields nil.
func MissingFields(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}

	var fields []string
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			fields = append(fields, fe.Field())
		}
	}
	return fields
}
