package domain

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Locations of request input, used as the first element of FieldIssue.Loc.
const (
	locBody  = "body"
	locQuery = "query"
	locPath  = "path"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func validateStruct(loc string, s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate %s: %w", loc, err)
	}

	issues := make([]FieldIssue, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		issues = append(issues, issueFromFieldError(loc, fe.Field(), fe))
	}
	return NewValidationError(issues...)
}

func validateVar(loc, field string, value any, tag string) []FieldIssue {
	err := validate.Var(value, tag)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []FieldIssue{{Loc: []string{loc, field}, Msg: err.Error(), Type: "value_error"}}
	}

	issues := make([]FieldIssue, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		issues = append(issues, issueFromFieldError(loc, field, fe))
	}
	return issues
}

func issueFromFieldError(loc, field string, fe validator.FieldError) FieldIssue {
	issue := FieldIssue{Loc: []string{loc, field}}
	isString := fe.Kind() == reflect.String

	switch {
	case fe.Tag() == "required":
		issue.Type, issue.Msg = "missing", "Field required"
	case fe.Tag() == "min" && isString:
		issue.Type = "string_too_short"
		issue.Msg = fmt.Sprintf("String should have at least %s", characters(fe.Param()))
	case fe.Tag() == "max" && isString:
		issue.Type = "string_too_long"
		issue.Msg = fmt.Sprintf("String should have at most %s", characters(fe.Param()))
	case fe.Tag() == "min":
		issue.Type = "greater_than_equal"
		issue.Msg = "Input should be greater than or equal to " + fe.Param()
	case fe.Tag() == "max":
		issue.Type = "less_than_equal"
		issue.Msg = "Input should be less than or equal to " + fe.Param()
	default:
		issue.Type, issue.Msg = "value_error", fe.Error()
	}

	return issue
}

func characters(n string) string {
	if n == "1" {
		return "1 character"
	}
	return n + " characters"
}

func typeIssue(loc, field, typ, msg string) FieldIssue {
	return FieldIssue{Loc: []string{loc, field}, Msg: msg, Type: typ}
}

// InvalidPathParam reports a path parameter that failed to parse.
func InvalidPathParam(name, msg, typ string) *ValidationError {
	return NewValidationError(typeIssue(locPath, name, typ, msg))
}

// InvalidQueryParam reports a query parameter that failed to parse.
func InvalidQueryParam(name, msg, typ string) FieldIssue {
	return typeIssue(locQuery, name, typ, msg)
}

// InvalidBody reports a body that could not be decoded. An empty field
// refers to the body as a whole.
func InvalidBody(field, msg, typ string) *ValidationError {
	loc := []string{locBody}
	if field != "" {
		loc = append(loc, strings.Split(field, ".")...)
	}
	return NewValidationError(FieldIssue{Loc: loc, Msg: msg, Type: typ})
}
