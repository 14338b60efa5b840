package dto

import (
	"regexp"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// accountKeyPattern accepts email-shaped identifiers. Account keys are
// normalized (lowercased, trimmed) before storage; validation is
// case-insensitive to match.
var accountKeyPattern = regexp.MustCompile(`^[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}$`)

// validAccountKey is the "accountkey" binding rule used on request DTOs.
func validAccountKey(fl validator.FieldLevel) bool {
	key := strings.ToLower(strings.TrimSpace(fl.Field().String()))
	return accountKeyPattern.MatchString(key)
}

// RegisterCustomValidators installs the package's custom binding rules on
// Gin's validator engine. Call once at startup before serving requests.
func RegisterCustomValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return v.RegisterValidation("accountkey", validAccountKey)
}
