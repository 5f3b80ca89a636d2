package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// validationDetails converts validator errors into the human-readable strings
// the error envelope carries.
func validationDetails(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}

	details := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			details = append(details, fmt.Sprintf("%s is required", field))
		case "email":
			details = append(details, fmt.Sprintf("%s must be a valid email address", field))
		case "min":
			details = append(details, fmt.Sprintf("%s must be at least %s characters", field, fe.Param()))
		case "max":
			details = append(details, fmt.Sprintf("%s must be at most %s characters", field, fe.Param()))
		case "alphanum":
			details = append(details, fmt.Sprintf("%s may only contain letters and digits", field))
		default:
			details = append(details, fmt.Sprintf("%s is invalid", field))
		}
	}
	return details
}
