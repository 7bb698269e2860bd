package leads

import (
	"context"
	"strings"
	"time"
)

// Submission is a validated, normalized lead. It is never modified after
// Validate returns it; WithID produces a copy carrying the primary record id.
type Submission struct {
	ID                   string    `json:"id,omitempty"`
	FirstName            string    `json:"firstName"`
	LastName             string    `json:"lastName,omitempty"`
	Email                string    `json:"email"`
	Phone                string    `json:"phone,omitempty"`
	Question             string    `json:"question,omitempty"`
	Company              string    `json:"company,omitempty"`
	MarketingConsent     bool      `json:"marketingConsent"`
	CommunicationConsent bool      `json:"communicationConsent"`
	Source               string    `json:"source"`
	SubmittedAt          time.Time `json:"submittedAt"`
}

// WithID returns a copy of s tagged with the primary record id.
func (s Submission) WithID(id string) *Submission {
	s.ID = id
	return &s
}

// FullName joins first and last name.
func (s *Submission) FullName() string {
	return strings.TrimSpace(s.FirstName + " " + s.LastName)
}

// Sink is any destination that receives a copy of a lead. Upsert must treat
// "already exists" responses from its backend as success and return the existing
// reference id.
type Sink interface {
	Name() string
	Configured() bool
	Upsert(ctx context.Context, lead *Submission) (referenceID string, err error)
}

// Checker is implemented by sinks that can probe their backend without side effects.
type Checker interface {
	Check(ctx context.Context) error
}

// SinkResult is the settled outcome of one secondary sink.
type SinkResult struct {
	Name        string        `json:"name"`
	Success     bool          `json:"success"`
	ReferenceID string        `json:"referenceId,omitempty"`
	Error       string        `json:"error,omitempty"`
	Duration    time.Duration `json:"-"`
}

// Outcome aggregates one submission. SinkResults follows configuration order and
// only contains configured sinks.
type Outcome struct {
	PrimaryStoreSuccess bool         `json:"primaryStoreSuccess"`
	PrimaryRecordID     string       `json:"primaryRecordId,omitempty"`
	SinkResults         []SinkResult `json:"sinkResults"`
}

// State is a step of the per-request lifecycle.
type State string

const (
	StateReceived              State = "received"
	StateValidated             State = "validated"
	StatePrimaryWritten        State = "primary_written"
	StateSecondarySinksSettled State = "secondary_sinks_settled"
	StateResponseComposed      State = "response_composed"
	StateValidationFailed      State = "validation_failed"
	StatePrimaryWriteFailed    State = "primary_write_failed"
)
