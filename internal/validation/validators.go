package validation

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"todo-planner/internal/model"
)

// Validate is a shared validator instance.
var Validate *validator.Validate

func init() {
	Validate = validator.New()

	if err := Validate.RegisterValidation("repeat_option", validateRepeatOption); err != nil {
		panic(fmt.Sprintf("failed to register repeat_option validator: %v", err))
	}
}

func validateRepeatOption(fl validator.FieldLevel) bool {
	return model.RepeatOption(fl.Field().String()).Valid()
}

// ParseRepeatOption accepts an option name in any letter case.
func ParseRepeatOption(value string) (model.RepeatOption, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return model.RepeatNone, nil
	}
	for _, opt := range model.RepeatOptions {
		if strings.EqualFold(string(opt), trimmed) {
			return opt, nil
		}
	}
	return "", fmt.Errorf("invalid repeat option: %s (must be 'None', 'Daily', 'Weekdays', or 'Weekends')", value)
}

// SanitizeText trims whitespace and removes control characters.
func SanitizeText(text string) string {
	text = strings.TrimSpace(text)

	var sanitized strings.Builder
	for _, r := range text {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			continue
		}
		sanitized.WriteRune(r)
	}
	return sanitized.String()
}
