package domain

import (
	"chat-hub/errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

const MaxDisplayNameLength = 64

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("displayname", func(fl validator.FieldLevel) bool {
		return ValidateDisplayName(fl.Field().String()) == nil
	}); err != nil {
		panic(err)
	}
	return v
}

// Validate checks a decoded command against its struct tags.
func Validate(cmd Command) error {
	if err := validate.Struct(cmd); err != nil {
		return fmt.Errorf("%w: %s", errors.ErrValidation, err.Error())
	}
	return nil
}

// NormalizeName is the canonical form of a display name.
func NormalizeName(name string) string {
	return strings.TrimSpace(name)
}

func ValidateDisplayName(name string) error {
	name = NormalizeName(name)
	if name == "" {
		return errors.ErrEmptyName
	}
	if utf8.RuneCountInString(name) > MaxDisplayNameLength {
		return errors.ErrInvalidName
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return errors.ErrInvalidName
		}
	}
	return nil
}
