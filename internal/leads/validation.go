package leads

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"lead-intake/internal/common/config"
	"lead-intake/internal/common/validation"
)

// Policy is the active required-field contract. The field set differs between
// deployments, so it is configuration rather than code.
type Policy struct {
	RequirePhone       bool
	RequireQuestion    bool
	RequireConsent     bool
	FirstNameMinLength int
	QuestionMinLength  int
	DefaultSource      string
}

// DefaultPolicy requires first name, email and question; phone and consents are optional.
func DefaultPolicy() Policy {
	return Policy{
		RequireQuestion:    true,
		FirstNameMinLength: 2,
		QuestionMinLength:  5,
		DefaultSource:      "website",
	}
}

// StrictPolicy additionally requires both consent checkboxes to be ticked.
func StrictPolicy() Policy {
	p := DefaultPolicy()
	p.RequireConsent = true
	return p
}

// PolicyFromConfig builds a Policy from the leads config section.
func PolicyFromConfig(cfg config.LeadsConfig) Policy {
	p := Policy{
		RequirePhone:       cfg.Policy.RequirePhone,
		RequireQuestion:    cfg.Policy.RequireQuestion,
		RequireConsent:     cfg.Policy.RequireConsent,
		FirstNameMinLength: cfg.Policy.FirstNameMinLength,
		QuestionMinLength:  cfg.Policy.QuestionMinLength,
		DefaultSource:      cfg.DefaultSource,
	}
	if p.DefaultSource == "" {
		p.DefaultSource = "website"
	}
	return p
}

// ValidationError lists every failing field with a client-facing message.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Validator checks raw payloads against a Policy. It holds no per-request state.
type Validator struct {
	policy Policy
	schema validation.JSONSchema
	now    func() time.Time
}

func NewValidator(policy Policy) *Validator {
	return &Validator{
		policy: policy,
		schema: buildSchema(policy),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func buildSchema(p Policy) validation.JSONSchema {
	props := map[string]validation.Property{
		"firstName": {Type: "string", MaxLength: validation.Len(100)},
		"lastName":  {Type: "string", MaxLength: validation.Len(100)},
		"email": {
			Type:      "string",
			Pattern:   validation.EmailPattern,
			MaxLength: validation.Len(254),
			Message:   "must be a valid email address",
		},
		"phone": {
			Type:    "string",
			Pattern: validation.PhonePattern,
			Message: "must be a valid phone number",
		},
		"question":             {Type: "string", MaxLength: validation.Len(5000)},
		"company":              {Type: "string", MaxLength: validation.Len(200)},
		"source":               {Type: "string", MaxLength: validation.Len(100)},
		"marketingConsent":     {Type: "boolean"},
		"communicationConsent": {Type: "boolean"},
	}
	required := []string{"firstName", "email"}

	if p.FirstNameMinLength > 0 {
		fn := props["firstName"]
		fn.MinLength = validation.Len(p.FirstNameMinLength)
		props["firstName"] = fn
	}
	if p.QuestionMinLength > 0 {
		q := props["question"]
		q.MinLength = validation.Len(p.QuestionMinLength)
		props["question"] = q
	}
	if p.RequireQuestion {
		required = append(required, "question")
	}
	if p.RequirePhone {
		required = append(required, "phone")
	}
	if p.RequireConsent {
		for _, name := range []string{"marketingConsent", "communicationConsent"} {
			props[name] = validation.Property{Type: "boolean", Const: true, Message: "must be accepted"}
			required = append(required, name)
		}
	}

	return validation.JSONSchema{
		Type:       "object",
		Properties: props,
		Required:   required,
	}
}

// Validate normalizes raw and checks it against the policy. On failure the error
// is a *ValidationError naming every failing field. Validate has no side effects.
func (v *Validator) Validate(raw map[string]interface{}) (*Submission, error) {
	input := normalize(raw)

	result, err := validation.ValidateInput(input, v.schema)
	if err != nil {
		return nil, err
	}
	if validation.HasErrors(result) {
		return nil, &ValidationError{Fields: validation.GetErrorMessages(result)}
	}

	sub := &Submission{
		FirstName:            stringValue(input, "firstName"),
		LastName:             stringValue(input, "lastName"),
		Email:                strings.ToLower(stringValue(input, "email")),
		Phone:                stringValue(input, "phone"),
		Question:             stringValue(input, "question"),
		Company:              stringValue(input, "company"),
		MarketingConsent:     boolValue(input, "marketingConsent"),
		CommunicationConsent: boolValue(input, "communicationConsent"),
		Source:               stringValue(input, "source"),
		SubmittedAt:          v.now(),
	}
	if sub.Source == "" {
		sub.Source = v.policy.DefaultSource
	}
	return sub, nil
}

// normalize trims strings, treats blank strings and nulls as absent, and folds
// the legacy "message" key into "question".
func normalize(raw map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(raw))
	for k, val := range raw {
		if val == nil {
			continue
		}
		if s, ok := val.(string); ok {
			s = strings.TrimSpace(s)
			if s == "" {
				continue
			}
			val = s
		}
		out[k] = val
	}

	if msg, ok := out["message"]; ok {
		if _, has := out["question"]; !has {
			out["question"] = msg
		}
		delete(out, "message")
	}
	return out
}

func stringValue(m map[string]interface{}, key string) string {
	s, _ := m[key].(string)
	return s
}

func boolValue(m map[string]interface{}, key string) bool {
	b, _ := m[key].(bool)
	return b
}
