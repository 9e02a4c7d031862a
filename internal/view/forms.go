// Package view holds the user-facing view models: form validation, the
// product browsing view, and the paginated order history view.
package view

import (
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidationError is a user-facing input failure. It is shown to the user
// and never reported through the error log.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

type LoginForm struct {
	Email    string `validate:"required"`
	Password string `validate:"required"`
}

type RegisterForm struct {
	Username string `validate:"required,min=3,max=20"`
	Email    string `validate:"required"`
	Password string `validate:"required"`
}

type ForgotPasswordForm struct {
	Email string `validate:"required"`
}

type ResetPasswordForm struct {
	NewPassword     string `validate:"required"`
	ConfirmPassword string `validate:"required,eqfield=NewPassword"`
}

// messages maps a failed field to the alert shown for it. The empty tag
// is the fallback for a field with a single rule.
var messages = map[string]map[string]string{
	"LoginForm.Email":    {"required": "Email is required"},
	"LoginForm.Password": {"required": "Password is required"},
	"RegisterForm.Username": {
		"required": "Username is required",
		"min":      "Username must be between 3 and 20 characters",
		"max":      "Username must be between 3 and 20 characters",
	},
	"RegisterForm.Email":    {"required": "Email is required"},
	"RegisterForm.Password": {"required": "Password is required"},

	"ForgotPasswordForm.Email": {"required": "Email is required"},

	"ResetPasswordForm.NewPassword": {"required": "New password is required"},
	"ResetPasswordForm.ConfirmPassword": {
		"required": "Confirm password is required",
		"eqfield":  "Password do not match",
	},
}

// validateForm runs the struct rules and converts the first failure, in
// field declaration order, into a ValidationError.
func validateForm(form any) error {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}
	errs, ok := err.(validator.ValidationErrors)
	if !ok || len(errs) == 0 {
		return err
	}
	first := errs[0]
	if byTag, ok := messages[first.StructNamespace()]; ok {
		if msg, ok := byTag[first.Tag()]; ok {
			return &ValidationError{Message: msg}
		}
	}
	return &ValidationError{Message: "Invalid input"}
}
