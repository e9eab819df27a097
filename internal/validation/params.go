package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"unicode/utf8"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/tutorial-service/pkg/util"
)

const msgNotInteger = "value is not a valid integer"

// FieldError describes one rejected input. Location is "body", "path",
// "query" or "header".
type FieldError struct {
	Location string `json:"loc"`
	Field    string `json:"field,omitempty"`
	Message  string `json:"msg"`
}

// IntBounds constrains an integer parameter; nil bounds are open.
type IntBounds struct {
	Min *int64
	Max *int64
}

// Between returns closed bounds [min, max].
func Between(min, max int64) IntBounds {
	return IntBounds{Min: &min, Max: &max}
}

// AtLeast returns a lower bound only.
func AtLeast(min int64) IntBounds {
	return IntBounds{Min: &min}
}

// Check rejects n when it falls outside the bounds.
func (b IntBounds) Check(location, field string, n int64) error {
	if b.Min != nil && n < *b.Min {
		return fieldError(location, field, fmt.Sprintf("ensure this value is greater than or equal to %d", *b.Min))
	}
	if b.Max != nil && n > *b.Max {
		return fieldError(location, field, fmt.Sprintf("ensure this value is less than or equal to %d", *b.Max))
	}
	return nil
}

// CheckOptional is Check for a parameter that may be absent.
func (b IntBounds) CheckOptional(location, field string, n *int64) error {
	if n == nil {
		return nil
	}
	return b.Check(location, field, *n)
}

// PathInt reads an integer path parameter and checks its bounds.
func PathInt(c *fiber.Ctx, field string, bounds IntBounds) (int64, error) {
	n, err := c.ParamsInt(field)
	if err != nil {
		return 0, fieldError("path", field, msgNotInteger)
	}
	return int64(n), bounds.Check("path", field, int64(n))
}

// BindQuery decodes the query string into out with fiber's query parser.
// Each parameter that fails conversion is reported as a query field error.
func BindQuery(c *fiber.Ctx, out any) error {
	err := c.QueryParser(out)
	if err == nil {
		return nil
	}
	keys := failedKeys(err)
	errs := make([]FieldError, 0, len(keys))
	for _, key := range keys {
		errs = append(errs, FieldError{Location: "query", Field: key, Message: msgNotInteger})
	}
	return apperrors.NewValidationError("invalid query parameters", map[string]any{"errors": errs})
}

// failedKeys lists the parameter names carried by a query parser error, which
// wraps a map of parameter name to conversion error.
func failedKeys(err error) []string {
	for e := err; e != nil; e = errors.Unwrap(e) {
		v := reflect.ValueOf(e)
		if v.Kind() != reflect.Map || v.Type().Key().Kind() != reflect.String {
			continue
		}
		keys := make([]string, 0, v.Len())
		for _, k := range v.MapKeys() {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)
		return keys
	}
	return []string{""}
}

// StringRule constrains a string parameter. Lengths count runes; zero means
// unbounded.
type StringRule struct {
	MinLength int
	MaxLength int
	Pattern   *regexp.Regexp
}

// CheckString validates value against rule.
func CheckString(location, field, value string, rule StringRule) error {
	n := utf8.RuneCountInString(value)
	if rule.MinLength > 0 && n < rule.MinLength {
		return fieldError(location, field, fmt.Sprintf("ensure this value has at least %d characters", rule.MinLength))
	}
	if rule.MaxLength > 0 && n > rule.MaxLength {
		return fieldError(location, field, fmt.Sprintf("ensure this value has at most %d characters", rule.MaxLength))
	}
	if rule.Pattern != nil && !rule.Pattern.MatchString(value) {
		return fieldError(location, field, fmt.Sprintf("string does not match regex %q", rule.Pattern.String()))
	}
	return nil
}

func fieldError(location, field, msg string) error {
	return apperrors.NewValidationError(fmt.Sprintf("invalid %s parameter %s", location, field), map[string]any{
		"errors": []FieldError{{Location: location, Field: field, Message: msg}},
	})
}

// Required reports absent mandatory fields.
func Required(location string, fields ...string) error {
	errs := make([]FieldError, 0, len(fields))
	for _, f := range fields {
		errs = append(errs, FieldError{Location: location, Field: f, Message: "field required"})
	}
	return apperrors.NewValidationError("missing required fields", map[string]any{"errors": errs})
}

// Invalid reports a single rejected field.
func Invalid(location, field, msg string) error {
	return fieldError(location, field, msg)
}
