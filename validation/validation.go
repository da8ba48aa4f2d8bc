package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// DefaultMinPasswordLength is the shortest password accepted for a login attempt.
const DefaultMinPasswordLength = 6

// Violation describes one failing field.
type Violation struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// Errors collects every violation found in one request.
type Errors struct {
	Violations []Violation `json:"violations"`
}

// Error joins the violation messages in field order.
func (e *Errors) Error() string {
	messages := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		messages = append(messages, v.Message)
	}
	return strings.Join(messages, ". ")
}

// Validator checks login credentials structurally, before any I/O.
type Validator struct {
	validate    *validator.Validate
	passwordTag string
	minPassword int
}

// New returns a Validator that requires passwords of at least minPassword characters.
// A non-positive minPassword selects [DefaultMinPasswordLength].
func New(minPassword int) *Validator {
	if minPassword <= 0 {
		minPassword = DefaultMinPasswordLength
	}
	return &Validator{
		validate:    validator.New(validator.WithRequiredStructEnabled()),
		passwordTag: fmt.Sprintf("required,min=%d", minPassword),
		minPassword: minPassword,
	}
}

var defaultValidator = New(DefaultMinPasswordLength)

// Credentials validates email and password with the default rules.
func Credentials(email, password string) error {
	return defaultValidator.Credentials(email, password)
}

// Credentials reports every invalid field, email first, as *Errors. It returns nil when
// both fields are valid.
func (v *Validator) Credentials(email, password string) error {
	var out Errors

	if err := v.validate.Var(email, "required,email"); err != nil {
		out.Violations = append(out.Violations, v.violation("email", err))
	}
	if err := v.validate.Var(password, v.passwordTag); err != nil {
		out.Violations = append(out.Violations, v.violation("password", err))
	}

	if len(out.Violations) == 0 {
		return nil
	}
	return &out
}

func (v *Validator) violation(field string, err error) Violation {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return Violation{Field: field, Rule: "invalid", Message: fmt.Sprintf("%q is invalid", field)}
	}

	tag := fieldErrs[0].Tag()
	switch tag {
	case "required":
		return Violation{Field: field, Rule: tag, Message: fmt.Sprintf("%q is required", field)}
	case "email":
		return Violation{Field: field, Rule: tag, Message: fmt.Sprintf("%q must be a valid email", field)}
	case "min":
		return Violation{
			Field:   field,
			Rule:    tag,
			Message: fmt.Sprintf("%q length must be at least %d characters long", field, v.minPassword),
		}
	default:
		return Violation{Field: field, Rule: tag, Message: fmt.Sprintf("%q failed %s validation", field, tag)}
	}
}
