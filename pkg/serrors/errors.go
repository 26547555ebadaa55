package serrors

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// BaseError is a coded error safe to surface to API consumers. LocaleKey is
// the translation key the presentation layer resolves; this package never
// localizes.
type BaseError struct {
	Code      string
	Message   string
	LocaleKey string
}

func (e *BaseError) Error() string {
	return e.Message
}

func NewError(code, message, localeKey string) *BaseError {
	return &BaseError{
		Code:      code,
		Message:   message,
		LocaleKey: localeKey,
	}
}

func NewFieldRequiredError(field, localeKey string) *BaseError {
	return &BaseError{
		Code:      "FIELD_REQUIRED",
		Message:   fmt.Sprintf("field %q is required", field),
		LocaleKey: localeKey,
	}
}

// ValidationErrors maps a DTO field name to its first violation.
type ValidationErrors map[string]*BaseError

func (v ValidationErrors) Error() string {
	fields := make([]string, 0, len(v))
	for f := range v {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f, v[f].Message))
	}
	return strings.Join(parts, "; ")
}

// ProcessValidatorErrors converts go-playground field errors into coded
// errors. getFieldLocaleKey may return "" when the field has no translation.
func ProcessValidatorErrors(errs validator.ValidationErrors, getFieldLocaleKey func(field string) string) map[string]*BaseError {
	out := make(map[string]*BaseError, len(errs))
	for _, fe := range errs {
		localeKey := ""
		if getFieldLocaleKey != nil {
			localeKey = getFieldLocaleKey(fe.Field())
		}
		out[fe.Field()] = &BaseError{
			Code:      strings.ToUpper("VALIDATION_" + fe.Tag()),
			Message:   fmt.Sprintf("field %q failed on the %q rule", fe.Field(), fe.Tag()),
			LocaleKey: localeKey,
		}
	}
	return out
}
