package middleware

import (
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// InitValidator initializes the validator with custom validators
func InitValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()

		// Register custom validators
		_ = validate.RegisterValidation("series_token", validateSeriesToken)
		_ = validate.RegisterValidation("warehouse_code", validateWarehouseCode)

		// Report fields under their query parameter name, falling back to JSON
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			for _, tag := range []string{"form", "json"} {
				name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
				if name == "-" {
					return fld.Name
				}
				if name != "" {
					return name
				}
			}
			return fld.Name
		})
	})

	return validate
}

// GetValidator returns the singleton validator instance
func GetValidator() *validator.Validate {
	return InitValidator()
}

// Custom validators

var (
	seriesTokenRegex   = regexp.MustCompile(`^[A-Za-z0-9_-]{1,16}$`)
	warehouseCodeRegex = regexp.MustCompile(`^[A-Za-z0-9_-]{1,32}$`)
)

func validateSeriesToken(fl validator.FieldLevel) bool {
	return seriesTokenRegex.MatchString(fl.Field().String())
}

func validateWarehouseCode(fl validator.FieldLevel) bool {
	return warehouseCodeRegex.MatchString(fl.Field().String())
}

// ValidationErrorFormatter formats validation errors into a map keyed by
// parameter name. Errors on slice elements are reported on the slice.
func ValidationErrorFormatter(err error) map[string]string {
	fields := make(map[string]string)

	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, e := range validationErrors {
			field := strings.SplitN(e.Field(), "[", 2)[0]
			if _, seen := fields[field]; seen {
				continue
			}
			fields[field] = formatValidationError(e)
		}
	}

	return fields
}

func formatValidationError(e validator.FieldError) string {
	element := strings.Contains(e.Field(), "[")

	switch e.Tag() {
	case "required":
		if element {
			return "must not contain empty values"
		}
		return "is required"
	case "min":
		return "must be at least " + e.Param()
	case "max":
		if e.Kind() == reflect.Slice {
			return "must contain at most " + e.Param() + " values"
		}
		return "must be at most " + e.Param()
	case "gte":
		return "must be greater than or equal to " + e.Param()
	case "lte":
		return "must be less than or equal to " + e.Param()
	case "series_token":
		return "must contain only series codes of 1-16 letters, digits, '-' or '_'"
	case "warehouse_code":
		return "must contain only warehouse codes of letters, digits, '-' or '_'"
	case "oneof":
		return "must be one of: " + e.Param()
	default:
		return "is invalid"
	}
}

// ValidateStruct validates a struct and returns the failing fields. A nil map
// means obj is valid; err is set only when obj cannot be validated at all.
func ValidateStruct(obj interface{}) (map[string]string, error) {
	if err := GetValidator().Struct(obj); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			return ValidationErrorFormatter(validationErrors), nil
		}
		return nil, err
	}
	return nil, nil
}

// ValidateVar validates one value against a tag built at runtime, typically
// from configured bounds. It returns the failure message or "".
func ValidateVar(value interface{}, tag string) string {
	err := GetValidator().Var(value, tag)
	if err == nil {
		return ""
	}
	if validationErrors, ok := err.(validator.ValidationErrors); ok && len(validationErrors) > 0 {
		return formatValidationError(validationErrors[0])
	}
	return "is invalid"
}

// SanitizeString removes null bytes and surrounding whitespace
func SanitizeString(s string) string {
	s = strings.ReplaceAll(s, "\x00", "")
	return strings.TrimSpace(s)
}
