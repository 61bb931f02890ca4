package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/straye-as/estimator/internal/domain"
)

var validate = validator.New()

// validateProject runs struct validation and returns an error wrapping both
// ErrInvalidInput and a *domain.ValidationError with one message per field
func validateProject(project *domain.Project) error {
	err := validate.Struct(project)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	fields := make(map[string]string, len(ve))
	for _, fe := range ve {
		fields[fieldPath(fe)] = formatValidationError(fe)
	}
	return fmt.Errorf("%w: %w", ErrInvalidInput, &domain.ValidationError{Errors: fields})
}

// fieldPath drops the root struct name, e.g. Project.Waves[0].Name -> Waves[0].Name
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func formatValidationError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "max":
		return fmt.Sprintf("Must be at most %s characters", fe.Param())
	case "gte":
		return fmt.Sprintf("Must be greater than or equal to %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("Must be one of: %s", fe.Param())
	default:
		return domain.GetValidationMessage(fe.Tag())
	}
}
