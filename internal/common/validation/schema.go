package validation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// JSONSchema is the subset of draft-07 object schemas used for request payloads.
type JSONSchema struct {
	Type                 string              `json:"type"`
	Properties           map[string]Property `json:"properties"`
	Required             []string            `json:"required,omitempty"`
	AdditionalProperties *bool               `json:"additionalProperties,omitempty"`
}

type Property struct {
	Type        string        `json:"type"`
	Description string        `json:"description,omitempty"`
	Enum        []interface{} `json:"enum,omitempty"`
	Const       interface{}   `json:"const,omitempty"`
	Pattern     string        `json:"pattern,omitempty"`
	MinLength   *int          `json:"minLength,omitempty"`
	MaxLength   *int          `json:"maxLength,omitempty"`

	// Message replaces the generated text for pattern, enum and const violations.
	Message string `json:"-"`
}

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Error codes attached to ValidationError.Code.
const (
	CodeRequired   = "REQUIRED_FIELD_MISSING"
	CodeType       = "INVALID_TYPE"
	CodeMinLength  = "MIN_LENGTH_VIOLATION"
	CodeMaxLength  = "MAX_LENGTH_VIOLATION"
	CodePattern    = "PATTERN_MISMATCH"
	CodeEnum       = "ENUM_VIOLATION"
	CodeConst      = "CONST_VIOLATION"
	CodeConstraint = "CONSTRAINT_VIOLATION"
)

// lower rank wins when a field fails several keywords.
var codeRank = map[string]int{
	CodeRequired:   0,
	CodeType:       1,
	CodeMinLength:  2,
	CodeMaxLength:  2,
	CodePattern:    3,
	CodeEnum:       3,
	CodeConst:      3,
	CodeConstraint: 4,
}

// Len is a convenience for Property.MinLength / MaxLength.
func Len(n int) *int { return &n }

// Bool is a convenience for JSONSchema.AdditionalProperties.
func Bool(b bool) *bool { return &b }

// ValidateInput evaluates input against schema and reports at most one error per
// field, sorted by field name.
func ValidateInput(input map[string]interface{}, schema JSONSchema) (*ValidationResult, error) {
	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(schema),
		gojsonschema.NewGoLoader(input),
	)
	if err != nil {
		return nil, fmt.Errorf("schema evaluation failed: %w", err)
	}

	if result.Valid() {
		return &ValidationResult{Valid: true}, nil
	}

	byField := make(map[string]ValidationError)
	for _, desc := range result.Errors() {
		ve := convertError(desc, schema)
		if existing, ok := byField[ve.Field]; ok && codeRank[existing.Code] <= codeRank[ve.Code] {
			continue
		}
		byField[ve.Field] = ve
	}

	errs := make([]ValidationError, 0, len(byField))
	for _, ve := range byField {
		errs = append(errs, ve)
	}
	sort.Slice(errs, func(i, j int) bool { return errs[i].Field < errs[j].Field })

	return &ValidationResult{Valid: false, Errors: errs}, nil
}

func convertError(desc gojsonschema.ResultError, schema JSONSchema) ValidationError {
	details := desc.Details()
	field := strings.TrimPrefix(desc.Field(), "(root).")

	switch desc.Type() {
	case "required":
		if prop, ok := details["property"].(string); ok {
			field = prop
		}
		return ValidationError{Field: field, Message: "is required", Code: CodeRequired}

	case "invalid_type":
		return ValidationError{
			Field:   field,
			Message: fmt.Sprintf("must be a %v", details["expected"]),
			Code:    CodeType,
		}

	case "string_gte":
		return ValidationError{
			Field:   field,
			Message: fmt.Sprintf("must be at least %v characters", details["min"]),
			Code:    CodeMinLength,
		}

	case "string_lte":
		return ValidationError{
			Field:   field,
			Message: fmt.Sprintf("must be at most %v characters", details["max"]),
			Code:    CodeMaxLength,
		}

	case "pattern", "format":
		return ValidationError{Field: field, Message: messageFor(schema, field, "has an invalid format"), Code: CodePattern}

	case "enum":
		return ValidationError{Field: field, Message: messageFor(schema, field, "is not an allowed value"), Code: CodeEnum}

	case "const":
		return ValidationError{Field: field, Message: messageFor(schema, field, "has an unexpected value"), Code: CodeConst}
	}

	return ValidationError{Field: field, Message: desc.Description(), Code: CodeConstraint}
}

func messageFor(schema JSONSchema, field, fallback string) string {
	if prop, ok := schema.Properties[field]; ok && prop.Message != "" {
		return prop.Message
	}
	return fallback
}

// GetErrorMessages flattens the result into field -> message.
func GetErrorMessages(result *ValidationResult) map[string]string {
	out := make(map[string]string, len(result.Errors))
	for _, e := range result.Errors {
		out[e.Field] = e.Message
	}
	return out
}

// HasErrors reports whether validation failed.
func HasErrors(result *ValidationResult) bool {
	return result != nil && !result.Valid
}

// GetErrorsForField returns the errors reported for one field.
func GetErrorsForField(result *ValidationResult, field string) []ValidationError {
	var out []ValidationError
	for _, e := range result.Errors {
		if e.Field == field {
			out = append(out, e)
		}
	}
	return out
}
