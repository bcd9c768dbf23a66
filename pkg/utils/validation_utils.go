package utils

import "github.com/go-playground/validator/v10"

var validate = validator.New()

// IsValidEmail reports whether s is a syntactically valid email address.
func IsValidEmail(s string) bool {
	return validate.Var(s, "required,email") == nil
}
