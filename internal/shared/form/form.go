// Package form declares the HTML form schemas and their syntactic validation rules.
//
// Validation is pure: it never touches storage. Checks that need the data store (uniqueness of
// usernames and emails) live in the usecase layer and report back through ValidationError.
package form

import (
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// NonFieldKey collects errors that do not belong to a single input.
const NonFieldKey = "_form"

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	// Report errors under the HTML input name rather than the Go field name.
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})

	if err := validate.RegisterValidation("notblank", notBlank); err != nil {
		panic(err)
	}
	if err := validate.RegisterValidation("length", lengthBetween); err != nil {
		panic(err)
	}
}

// Errors maps an input name to its messages.
type Errors map[string][]string

// Add appends a message for field.
func (e Errors) Add(field, msg string) {
	e[field] = append(e[field], msg)
}

// Any reports whether at least one message is present.
func (e Errors) Any() bool {
	return len(e) > 0
}

// Merge copies every message of other into e.
func (e Errors) Merge(other Errors) {
	for field, msgs := range other {
		e[field] = append(e[field], msgs...)
	}
}

// ValidationError carries per-field messages from a check that needed the data store.
type ValidationError struct {
	Errors Errors
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Errors))
	for f := range e.Errors {
		fields = append(fields, f)
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(fields, ", "))
}

// normalizer is implemented by forms that clean their input before validation.
type normalizer interface {
	Normalize()
}

// Validate runs the declared rules on a form struct pointer and returns the messages per input.
// The returned map is never nil, so templates can index it directly.
func Validate(v any) Errors {
	if n, ok := v.(normalizer); ok {
		n.Normalize()
	}

	errs := Errors{}
	err := validate.Struct(v)
	if err == nil {
		return errs
	}

	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		errs.Add(NonFieldKey, "Invalid form submission.")
		return errs
	}
	for _, fe := range ves {
		errs.Add(fe.Field(), message(fe))
	}
	return errs
}

// FileAllowed checks an uploaded file name against the permitted extensions (without dots).
// It returns the message to show when the extension is not allowed.
func FileAllowed(filename string, allowed ...string) (string, bool) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	for _, a := range allowed {
		if ext == a {
			return "", true
		}
	}
	return "File does not have an approved extension: " + strings.Join(allowed, ", "), false
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "notblank", "required":
		return "This field is required."
	case "length":
		lo, hi, _ := parseLength(fe.Param())
		return fmt.Sprintf("Field must be between %d and %d characters long.", lo, hi)
	case "max":
		return fmt.Sprintf("Field cannot be longer than %s characters.", fe.Param())
	case "email":
		return "Invalid email address."
	case "eqfield":
		return fmt.Sprintf("Field must be equal to %s.", strings.ToLower(fe.Param()))
	default:
		return "Invalid value."
	}
}

// notBlank fails on empty or whitespace-only strings.
func notBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// lengthBetween checks the rune count against a "min:max" parameter.
func lengthBetween(fl validator.FieldLevel) bool {
	lo, hi, err := parseLength(fl.Param())
	if err != nil {
		return false
	}
	n := utf8.RuneCountInString(fl.Field().String())
	return n >= lo && n <= hi
}

func parseLength(param string) (int, int, error) {
	parts := strings.SplitN(param, ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid length parameter %q", param)
	}
	lo, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, err
	}
	hi, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, err
	}
	return lo, hi, nil
}
