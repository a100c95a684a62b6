// Package validator checks request payloads against their `validate` tags
// and reports failures per JSON field.
package validator

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonName)
	return v
}()

// jsonName reports fields under the name clients send them as.
func jsonName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	switch name {
	case "-":
		return ""
	case "":
		return f.Name
	default:
		return name
	}
}

// Validate checks s and returns a *ValidationError when a rule fails.
func Validate(s any) error {
	err := validate.Struct(s)
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		return &ValidationError{Errors: fieldErrs}
	}
	return err
}

// ValidationError lists the fields that failed validation.
type ValidationError struct {
	Errors validator.ValidationErrors
}

func (e *ValidationError) Error() string {
	fields := e.Fields()
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	msgs := make([]string, len(names))
	for i, name := range names {
		msgs[i] = fmt.Sprintf("field '%s' %s", name, fields[name])
	}
	return strings.Join(msgs, "; ")
}

// Fields maps each failing JSON field to a readable message.
func (e *ValidationError) Fields() map[string]string {
	fields := make(map[string]string, len(e.Errors))
	for _, fe := range e.Errors {
		fields[fe.Field()] = message(fe)
	}
	return fields
}

// messages holds the text per tag; %s is the tag parameter.
var messages = map[string]string{
	"required": "is required",
	"email":    "must be a valid email address",
	"gte":      "must be greater than or equal to %s",
	"lte":      "must be less than or equal to %s",
	"gt":       "must be greater than %s",
	"lt":       "must be less than %s",
	"uuid":     "must be a valid UUID",
	"url":      "must be a valid URL",
	"oneof":    "must be one of: %s",
	"datetime": "must match the layout %s",
}

func message(fe validator.FieldError) string {
	tag := fe.Tag()
	if tag == "min" || tag == "max" {
		bound := "at least"
		if tag == "max" {
			bound = "at most"
		}
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be %s %s characters", bound, fe.Param())
		}
		return fmt.Sprintf("must be %s %s", bound, fe.Param())
	}
	if tmpl, ok := messages[tag]; ok {
		if strings.Contains(tmpl, "%s") {
			return fmt.Sprintf(tmpl, fe.Param())
		}
		return tmpl
	}
	return fmt.Sprintf("failed on '%s' validation", tag)
}
