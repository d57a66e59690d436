// Package validation implements request payload validation. Checks are pure;
// failures are returned as VALIDATION_ERROR values with per-field details.
package validation

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"gatherly/internal/shared/apierr"
)

// userIDPattern restricts user IDs to letters, digits, hyphen and underscore.
var userIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,100}$`)

// eventStatuses is the fixed enumeration accepted on event create/update.
// The registration engine treats status opaquely.
var eventStatuses = map[string]bool{
	"draft":     true,
	"published": true,
	"cancelled": true,
	"completed": true,
	"active":    true,
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Tag names in messages follow the JSON field names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return fld.Name
		}
		return name
	})

	must(v.RegisterValidation("userid", func(fl validator.FieldLevel) bool {
		return userIDPattern.MatchString(fl.Field().String())
	}))
	must(v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	}))
	must(v.RegisterValidation("eventstatus", func(fl validator.FieldLevel) bool {
		return eventStatuses[fl.Field().String()]
	}))

	return v
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

// Struct validates a request payload and returns a VALIDATION_ERROR with one
// detail per failing field, or nil when the payload is valid.
func Struct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return apierr.New(apierr.CodeInternal, "validation failed")
	}

	details := make([]apierr.FieldDetail, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, apierr.FieldDetail{
			Field:   fe.Field(),
			Message: messageFor(fe),
		})
	}

	return apierr.NewValidation(details)
}

// messageFor renders a human-readable message for a single field failure.
func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "userid":
		return "must be 1-100 characters of letters, digits, '-' or '_'"
	case "notblank":
		return "must not be empty or whitespace only"
	case "eventstatus":
		return "must be one of draft, published, cancelled, completed, active"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

// IsBlank reports whether s is empty or all-whitespace.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// IsValidEventStatus reports whether s is in the accepted status enumeration.
func IsValidEventStatus(s string) bool {
	return eventStatuses[s]
}
