package validators

import (
	"errors"
	"fmt"
	"unicode"

	"github.com/anonto42/snapgram/backend/internal/models"
	"github.com/go-playground/validator/v10"
)

// Messages returned for failed rules, keyed by struct field then tag.
// An empty tag key applies to every tag of that field.
var messages = map[string]map[string]string{
	"Name":     {"": "Name must be a string between 1 and 30 characters."},
	"Username": {"": "Username must be a string between 1 and 30 characters."},
	"Email":    {"": "Invalid email format."},
	"Password": {
		"":               "Password must be at least 8 characters long.",
		"strongpassword": "Password must contain at least one uppercase letter, one lowercase letter, one number, and one special character.",
	},
	"Caption":  {"": "Caption must be a string between 5 and 2200 characters."},
	"Location": {"": "Location must be a non-empty string with a maximum length of 1000 characters."},
	"Bio":      {"": "Bio must be at most 2200 characters."},
}

// Validator adapts go-playground/validator to echo.Validator
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a new Validator with the Snapgram custom rules registered
func NewValidator() *Validator {
	v := validator.New()
	_ = v.RegisterValidation("strongpassword", func(fl validator.FieldLevel) bool {
		return IsStrongPassword(fl.Field().String())
	})
	return &Validator{validate: v}
}

// Validate checks i and returns a validation AppError carrying the first failure's message
func (v *Validator) Validate(i interface{}) error {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return models.NewValidationError(err.Error())
	}
	return models.NewValidationError(messageFor(verrs[0]))
}

func messageFor(fe validator.FieldError) string {
	if byTag, ok := messages[fe.StructField()]; ok {
		if msg, ok := byTag[fe.Tag()]; ok {
			return msg
		}
		if msg, ok := byTag[""]; ok {
			return msg
		}
	}
	return fmt.Sprintf("%s is invalid", fe.Field())
}

// IsStrongPassword reports whether pw has at least 8 characters, at least one ASCII
// upper-case letter, lower-case letter, digit and other character, and no whitespace
func IsStrongPassword(pw string) bool {
	var upper, lower, digit, special bool
	length := 0
	for _, r := range pw {
		length++
		switch {
		case unicode.IsSpace(r):
			return false
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= '0' && r <= '9':
			digit = true
		default:
			special = true
		}
	}
	return length >= 8 && upper && lower && digit && special
}
