package catalog

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

var (
	isbn10Pattern = regexp.MustCompile(`^\d{9}[\dX]$`)
	isbn13Pattern = regexp.MustCompile(`^\d{13}$`)
)

func init() {
	validate = validator.New()
	validate.RegisterValidation("isbn_loose", validISBN)
}

// validISBN accepts ISBN-10 or ISBN-13, with or without separators, as
// long as the raw value stays within 10-17 characters.
func validISBN(fl validator.FieldLevel) bool {
	raw := fl.Field().String()
	if len(raw) < 10 || len(raw) > 17 {
		return false
	}
	digits := strings.ReplaceAll(raw, "-", "")
	digits = strings.ReplaceAll(digits, " ", "")
	return isbn10Pattern.MatchString(digits) || isbn13Pattern.MatchString(digits)
}

// validateInput runs the struct tags and folds failures into a single
// INVALID_PARAMETER business error.
func validateInput(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return errInvalidParameter(err.Error())
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return errInvalidParameter(strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field()[:1]) + fe.Field()[1:]
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must not be blank", field)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "isbn_loose":
		return fmt.Sprintf("%s must be a valid ISBN (10 or 13 digits, 10-17 characters)", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
