// internal/utils/validator.go
package utils

import (
	"errors"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterValidation("strong_password", validateStrongPassword)
	validate.RegisterValidation("product_identifier", validateProductIdentifier)
	validate.RegisterValidation("custodian_identity", validateCustodianIdentity)
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

func validateStrongPassword(fl validator.FieldLevel) bool {
	password := fl.Field().String()

	if len(password) < 8 {
		return false
	}

	var hasUpper, hasLower, hasNumber bool

	for _, char := range password {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsNumber(char):
			hasNumber = true
		}
	}

	return hasUpper && hasLower && hasNumber
}

func validateProductIdentifier(fl validator.FieldLevel) bool {
	return ValidIdentifierFormat(NormalizeIdentifier(fl.Field().String()))
}

func validateCustodianIdentity(fl validator.FieldLevel) bool {
	identity := fl.Field().String()

	// Wallet-style address: 0x followed by 40 hex characters.
	if len(identity) != 42 || !strings.HasPrefix(identity, "0x") {
		return false
	}
	for _, char := range identity[2:] {
		if !unicode.Is(unicode.ASCII_Hex_Digit, char) {
			return false
		}
	}
	return true
}

type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

func GetValidationErrors(err error) []ValidationError {
	var validationErrors []ValidationError

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		for _, e := range validationErrs {
			validationErrors = append(validationErrors, ValidationError{
				Field:   strings.ToLower(e.Field()),
				Tag:     e.Tag(),
				Message: getValidationMessage(e),
			})
		}
	}

	return validationErrors
}

func getValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " is required"
	case "email":
		return "Invalid email format"
	case "min":
		return e.Field() + " must be at least " + e.Param() + " characters"
	case "max":
		return e.Field() + " must be at most " + e.Param() + " characters"
	case "oneof":
		return e.Field() + " must be one of: " + e.Param()
	case "strong_password":
		return "Password must contain at least 8 characters with uppercase, lowercase, and number"
	case "product_identifier":
		return "Identifier must match PRD-<timestamp>-<suffix>"
	case "custodian_identity":
		return "Custodian identity must be a 0x-prefixed 40-character hex address"
	default:
		return e.Field() + " is invalid"
	}
}
