// Package config provides configuration management for the DUPR Insight application.
package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// CustomValidator wraps the validator with custom validation rules
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates a new validator with custom validation functions
func NewValidator() *CustomValidator {
	v := validator.New()

	// Register custom validation functions
	_ = v.RegisterValidation("environment", validateEnvironment)
	_ = v.RegisterValidation("loglevel", validateLogLevel)
	_ = v.RegisterValidation("errormetric", validateErrorMetric)

	return &CustomValidator{validator: v}
}

// Validate validates the entire configuration
func Validate(cfg *Config) error {
	cv := NewValidator()
	return cv.Validate(cfg)
}

// Validate validates the configuration using registered validation rules
func (cv *CustomValidator) Validate(cfg *Config) error {
	err := cv.validator.Struct(cfg)
	if err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			return formatValidationErrors(validationErrors)
		}
		return fmt.Errorf("validation failed: %w", err)
	}

	// Additional cross-field validations
	return validateCrossField(cfg)
}

// validateEnvironment validates the environment field
func validateEnvironment(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "development", "staging", "production":
		return true
	default:
		return false
	}
}

// validateLogLevel validates the log level field
func validateLogLevel(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

// validateErrorMetric validates the calibration error metric name
func validateErrorMetric(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "outcome_mae", "delta_mae":
		return true
	default:
		return false
	}
}

// validateCrossField enforces constraints spanning multiple fields
func validateCrossField(cfg *Config) error {
	cal := cfg.Calibration
	if cal.KMin > cal.KMax {
		return fmt.Errorf("calibration.k_min (%g) must not exceed calibration.k_max (%g)", cal.KMin, cal.KMax)
	}
	if cal.ScaleMin > cal.ScaleMax {
		return fmt.Errorf("calibration.scale_min (%g) must not exceed calibration.scale_max (%g)", cal.ScaleMin, cal.ScaleMax)
	}
	if cal.KSteps > 1 && cal.KMin == cal.KMax {
		return fmt.Errorf("calibration.k_steps > 1 requires k_min < k_max")
	}
	if cal.ScaleSteps > 1 && cal.ScaleMin == cal.ScaleMax {
		return fmt.Errorf("calibration.scale_steps > 1 requires scale_min < scale_max")
	}
	return nil
}

// formatValidationErrors converts validator errors into a readable message
func formatValidationErrors(errs validator.ValidationErrors) error {
	messages := make([]string, 0, len(errs))
	for _, fieldErr := range errs {
		messages = append(messages, fmt.Sprintf("%s failed on '%s'", fieldErr.Namespace(), fieldErr.Tag()))
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(messages, "; "))
}
