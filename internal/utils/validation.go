package utils

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// ValidationError represents a structured validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrorResponse is the standard response for validation errors
type ValidationErrorResponse struct {
	Errors []ValidationError `json:"errors"`
}

// HandleValidationErrors processes binding errors and returns a standardized response
func HandleValidationErrors(ctx *gin.Context, err error) {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var errs []ValidationError
	for _, fieldError := range validationErrors {
		errs = append(errs, ValidationError{
			Field:   toSnakeCase(fieldError.Field()),
			Message: validationErrorMessage(fieldError),
		})
	}

	ctx.JSON(http.StatusBadRequest, ValidationErrorResponse{Errors: errs})
}

// validationErrorMessage returns a human-readable message for a validation error
func validationErrorMessage(fieldError validator.FieldError) string {
	switch fieldError.Tag() {
	case "required":
		return "This field is required"
	case "min":
		return "Must be at least " + fieldError.Param()
	case "max":
		return "Must be at most " + fieldError.Param()
	case "gt":
		return "Must be greater than " + fieldError.Param()
	case "gte":
		return "Must be greater than or equal to " + fieldError.Param()
	case "lt":
		return "Must be less than " + fieldError.Param()
	case "lte":
		return "Must be less than or equal to " + fieldError.Param()
	case "uuid":
		return "Must be a valid UUID"
	default:
		return "Invalid value for this field"
	}
}

// ValidateCity rejects empty or absurdly long city names before any persistence call
func ValidateCity(city string) error {
	trimmed := strings.TrimSpace(city)
	if trimmed == "" {
		return fmt.Errorf("%w: city must not be empty", ErrValidation)
	}
	if len(trimmed) > 128 {
		return fmt.Errorf("%w: city name too long", ErrValidation)
	}
	return nil
}

// ValidateWindowHours rejects non-positive lookback windows
func ValidateWindowHours(hours int) error {
	if hours <= 0 {
		return fmt.Errorf("%w: window hours must be positive", ErrValidation)
	}
	return nil
}

// toSnakeCase converts a string from camelCase to snake_case
func toSnakeCase(s string) string {
	if strings.Contains(s, "_") {
		return s
	}

	var result strings.Builder
	for i, r := range s {
		if i > 0 && 'A' <= r && r <= 'Z' {
			result.WriteRune('_')
		}
		result.WriteRune(r)
	}
	return strings.ToLower(result.String())
}
