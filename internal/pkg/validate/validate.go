package validate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/peachlease/edu-verify/internal/domain"
)

// v is the package-level singleton validator. It is initialised once at
// package load time. Any custom type registrations must be made during init()
// before the first call to Struct.
var v = validator.New()

// Struct validates the given struct using its validate tags.
// A failed "required" rule wraps domain.ErrMissingFields; any other failed
// rule wraps domain.ErrBadRequest.
func Struct(s interface{}) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}
	sentinel := domain.ErrBadRequest
	var msgs []string
	for _, fe := range ve {
		if fe.Tag() == "required" {
			sentinel = domain.ErrMissingFields
		}
		msgs = append(msgs, fmt.Sprintf("field '%s' failed '%s'", fe.Field(), fe.Tag()))
	}
	return fmt.Errorf("%s: %w", strings.Join(msgs, "; "), sentinel)
}
