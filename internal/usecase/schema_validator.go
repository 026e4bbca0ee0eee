package usecase

import (
	"fmt"
	"math"
	"reflect"
	"unicode/utf8"

	"github.com/MadeByDW91/gokartpartpicker.com/internal/domain"
)

// Part name length limits enforced before commit
const (
	MinPartNameLength = 3
	MaxPartNameLength = 255
)

// SchemaValidator checks attribute maps against category schemas. It never
// fails: every problem is reported as an issue.
type SchemaValidator struct {
	registry *domain.CategoryRegistry
}

// NewSchemaValidator creates a validator over registry
func NewSchemaValidator(registry *domain.CategoryRegistry) *SchemaValidator {
	return &SchemaValidator{registry: registry}
}

// Validate checks metadata against the schema of slug. An unknown slug yields
// a single error and no field checks.
func (v *SchemaValidator) Validate(slug string, metadata *domain.Metadata) domain.ValidationResult {
	result := domain.ValidationResult{
		IsValid:           true,
		Issues:            []domain.ValidationIssue{},
		ValidatedMetadata: metadata.Clone(),
	}

	schema, ok := v.registry.Lookup(slug)
	if !ok {
		result.Issues = append(result.Issues, domain.ValidationIssue{
			Field:        "category",
			Message:      fmt.Sprintf("Unknown category: %s", slug),
			Severity:     domain.SeverityError,
			CurrentValue: slug,
		})
		result.IsValid = false
		result.NeedsReview = true
		return result
	}

	for _, field := range schema.Required {
		if value, present := metadata.Get(field); present && value != nil {
			continue
		}
		fieldType := "unknown"
		if spec, ok := schema.Specs[field]; ok && spec.Type != "" {
			fieldType = string(spec.Type)
		}
		result.Issues = append(result.Issues, domain.ValidationIssue{
			Field:    field,
			Message:  fmt.Sprintf("Required field '%s' is missing", field),
			Severity: domain.SeverityError,
			Expected: "Value of type " + fieldType,
		})
		result.IsValid = false
		result.NeedsReview = true
	}

	for _, field := range metadata.Keys() {
		value, _ := metadata.Get(field)
		if value == nil {
			continue
		}

		if !schema.Declares(field) {
			result.Issues = append(result.Issues, domain.ValidationIssue{
				Field:        field,
				Message:      fmt.Sprintf("Unrecognized field '%s' for category '%s'", field, slug),
				Severity:     domain.SeverityWarning,
				CurrentValue: value,
			})
			result.NeedsReview = true
			continue
		}

		spec, ok := schema.Specs[field]
		if !ok {
			continue
		}

		for _, issue := range validateField(field, value, spec) {
			result.Issues = append(result.Issues, issue)
			switch issue.Severity {
			case domain.SeverityError:
				result.IsValid = false
				result.NeedsReview = true
			case domain.SeverityWarning:
				result.NeedsReview = true
			}
		}
	}

	return result
}

// validateField runs the type check first; a wrong type ends the field's checks.
func validateField(field string, value interface{}, spec domain.FieldSpec) []domain.ValidationIssue {
	if !typeMatches(value, spec.Type) {
		return []domain.ValidationIssue{{
			Field:        field,
			Message:      fmt.Sprintf("Invalid type for '%s'", field),
			Severity:     domain.SeverityError,
			CurrentValue: fmt.Sprintf("%v (%T)", value, value),
			Expected:     string(spec.Type),
		}}
	}

	var issues []domain.ValidationIssue

	switch spec.Type {
	case domain.FieldInteger, domain.FieldDecimal:
		n, _ := toFloat(value)
		if spec.Min != nil && n < *spec.Min {
			issues = append(issues, domain.ValidationIssue{
				Field:        field,
				Message:      fmt.Sprintf("Value below minimum for '%s'", field),
				Severity:     domain.SeverityWarning,
				CurrentValue: value,
				Expected:     fmt.Sprintf(">= %v", *spec.Min),
				Suggestion:   fmt.Sprintf("Check if %v is correct, minimum is %v", value, *spec.Min),
			})
		}
		if spec.Max != nil && n > *spec.Max {
			issues = append(issues, domain.ValidationIssue{
				Field:        field,
				Message:      fmt.Sprintf("Value above maximum for '%s'", field),
				Severity:     domain.SeverityWarning,
				CurrentValue: value,
				Expected:     fmt.Sprintf("<= %v", *spec.Max),
				Suggestion:   fmt.Sprintf("Check if %v is correct, maximum is %v", value, *spec.Max),
			})
		}

	case domain.FieldEnum:
		if !(value == nil && spec.Nullable) && !containsValue(spec.Values, value) {
			issues = append(issues, domain.ValidationIssue{
				Field:        field,
				Message:      fmt.Sprintf("Invalid enum value for '%s'", field),
				Severity:     domain.SeverityError,
				CurrentValue: value,
				Expected:     fmt.Sprintf("One of: %v", spec.Values),
				Suggestion:   "Use one of the allowed values",
			})
		}

	case domain.FieldString:
		// an uncompilable pattern leaves PatternRegex nil and is not enforced
		if s, ok := value.(string); ok && spec.PatternRegex != nil && !spec.PatternRegex.MatchString(s) {
			issues = append(issues, domain.ValidationIssue{
				Field:        field,
				Message:      fmt.Sprintf("Value doesn't match expected pattern for '%s'", field),
				Severity:     domain.SeverityWarning,
				CurrentValue: value,
				Expected:     "Pattern: " + spec.Pattern,
			})
		}
	}

	if len(spec.CommonValues) > 0 && !containsValue(spec.CommonValues, value) {
		issues = append(issues, domain.ValidationIssue{
			Field:        field,
			Message:      fmt.Sprintf("Uncommon value for '%s'", field),
			Severity:     domain.SeverityInfo,
			CurrentValue: value,
			Expected:     fmt.Sprintf("Common values: %v", spec.CommonValues),
			Suggestion:   "Verify this is correct",
		})
	}

	return issues
}

func typeMatches(value interface{}, t domain.FieldType) bool {
	switch t {
	case domain.FieldInteger:
		if isInteger(value) {
			return true
		}
		f, ok := value.(float64)
		return ok && !math.IsInf(f, 0) && f == math.Trunc(f)
	case domain.FieldDecimal:
		_, ok := toFloat(value)
		return ok
	case domain.FieldString:
		_, ok := value.(string)
		return ok
	case domain.FieldBoolean:
		_, ok := value.(bool)
		return ok
	}
	// enums are checked against their values; unknown types are not checked
	return true
}

func isInteger(value interface{}) bool {
	switch value.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return true
	}
	return false
}

// toFloat widens any Go numeric value. Booleans are not numbers.
func toFloat(value interface{}) (float64, bool) {
	switch n := value.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// valuesEqual compares numbers by value so 212 and 212.0 are the same
func valuesEqual(a, b interface{}) bool {
	fa, okA := toFloat(a)
	fb, okB := toFloat(b)
	if okA && okB {
		return fa == fb
	}
	return reflect.DeepEqual(a, b)
}

func containsValue(values []interface{}, value interface{}) bool {
	for _, v := range values {
		if valuesEqual(v, value) {
			return true
		}
	}
	return false
}

// PartValidator guards fully assembled parts before they are written
type PartValidator struct {
	schemas *SchemaValidator
}

// NewPartValidator creates a part validator that delegates metadata checks to schemas
func NewPartValidator(schemas *SchemaValidator) *PartValidator {
	return &PartValidator{schemas: schemas}
}

// ValidatePart checks the part's name and category, then its metadata
func (v *PartValidator) ValidatePart(part domain.PartData) domain.ValidationResult {
	result := domain.ValidationResult{IsValid: true, Issues: []domain.ValidationIssue{}}

	required := []struct{ field, value string }{
		{"name", part.Name},
		{"category_id", part.CategoryID},
	}
	for _, r := range required {
		if r.value == "" {
			result.Issues = append(result.Issues, domain.ValidationIssue{
				Field:    r.field,
				Message:  fmt.Sprintf("Required field '%s' is missing", r.field),
				Severity: domain.SeverityError,
			})
			result.IsValid = false
		}
	}

	switch length := utf8.RuneCountInString(part.Name); {
	case length < MinPartNameLength:
		result.Issues = append(result.Issues, domain.ValidationIssue{
			Field:        "name",
			Message:      "Part name is too short",
			Severity:     domain.SeverityError,
			CurrentValue: part.Name,
			Expected:     fmt.Sprintf("At least %d characters", MinPartNameLength),
		})
		result.IsValid = false
	case length > MaxPartNameLength:
		result.Issues = append(result.Issues, domain.ValidationIssue{
			Field:        "name",
			Message:      "Part name is too long",
			Severity:     domain.SeverityWarning,
			CurrentValue: fmt.Sprintf("%s... (%d chars)", string([]rune(part.Name)[:50]), length),
			Expected:     fmt.Sprintf("Maximum %d characters", MaxPartNameLength),
		})
	}

	if part.CategoryID != "" && part.Metadata.Len() > 0 {
		schema := v.schemas.Validate(part.CategoryID, part.Metadata)
		result.Issues = append(result.Issues, schema.Issues...)
		result.ValidatedMetadata = schema.ValidatedMetadata
		if !schema.IsValid {
			result.IsValid = false
		}
		if schema.NeedsReview {
			result.NeedsReview = true
		}
	}

	return result
}
