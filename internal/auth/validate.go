package auth

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationErrors lists field-level problems found before any network
// call. It is returned as a value, never panicked, so handlers can render
// an inline form error.
type ValidationErrors map[string][]string

func (v ValidationErrors) Error() string {
	fields := make([]string, 0, len(v))
	for field := range v {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fmt.Sprintf("auth: validation failed on %s", strings.Join(fields, ", "))
}

// passwordSpecials is the accepted special-character set, including space
// and double quote, matching what the registration form has always allowed.
const passwordSpecials = `@#$%^&-+=()!? "`

const (
	passwordMinLen = 8
	passwordMaxLen = 128
)

type loginForm struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=8"`
}

type registerForm struct {
	Username string `validate:"required,min=3,max=32"`
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

func validateLogin(v *validator.Validate, email, password string) ValidationErrors {
	errs := make(ValidationErrors)
	if err := v.Struct(loginForm{Email: email, Password: password}); err != nil {
		for _, fieldErr := range err.(validator.ValidationErrors) {
			switch fieldErr.Field() {
			case "Email":
				errs["email"] = append(errs["email"], "Invalid email")
			case "Password":
				errs["password"] = append(errs["password"], "Password is too short")
			}
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func validateRegistration(v *validator.Validate, username, email, password string) ValidationErrors {
	errs := make(ValidationErrors)
	if err := v.Struct(registerForm{Username: username, Email: email, Password: password}); err != nil {
		for _, fieldErr := range err.(validator.ValidationErrors) {
			switch fieldErr.Field() {
			case "Username":
				errs["username"] = append(errs["username"], "Username must be between 3 and 32 characters")
			case "Email":
				errs["email"] = append(errs["email"], "Invalid email")
			case "Password":
				errs["password"] = append(errs["password"], "Password is required")
			}
		}
	}
	if _, bad := errs["password"]; !bad && !validPassword(password) {
		errs["password"] = append(errs["password"],
			"Password must be 8 to 128 characters long and contain at least one letter, one number and one special character")
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func validPassword(password string) bool {
	if len(password) < passwordMinLen || len(password) > passwordMaxLen {
		return false
	}
	var hasLetter, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case r >= 'a' && r <= 'z':
			hasLetter = true
		case r >= '0' && r <= '9':
			hasDigit = true
		case strings.ContainsRune(passwordSpecials, r):
			hasSpecial = true
		}
	}
	return hasLetter && hasDigit && hasSpecial
}
