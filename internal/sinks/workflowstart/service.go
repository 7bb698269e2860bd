// Package workflowstart starts a follow-up process instance for each lead.
package workflowstart

import (
	"context"
	"strconv"

	"lead-intake/internal/common/logger"
	"lead-intake/internal/leads"
)

const Name = "workflow"

// ProcessStarter is satisfied by *camunda.Client.
type ProcessStarter interface {
	StartProcess(ctx context.Context, processID string, vars interface{}) (int64, error)
	HealthCheck(ctx context.Context) error
}

// Variables are the process variables handed to the new instance.
type Variables struct {
	LeadID           string `json:"leadId"`
	FirstName        string `json:"firstName"`
	LastName         string `json:"lastName,omitempty"`
	Email            string `json:"email"`
	Phone            string `json:"phone,omitempty"`
	Company          string `json:"company,omitempty"`
	Question         string `json:"question,omitempty"`
	Source           string `json:"source"`
	MarketingConsent bool   `json:"marketingConsent"`
	SubmittedAt      string `json:"submittedAt"`
}

type Service struct {
	config  *Config
	logger  logger.Logger
	starter ProcessStarter
}

// NewService accepts a nil starter; the sink is then unconfigured.
func NewService(config *Config, starter ProcessStarter, log logger.Logger) *Service {
	return &Service{
		config:  config,
		logger:  log.WithFields(map[string]interface{}{"sink": Name}),
		starter: starter,
	}
}

func (s *Service) Name() string { return Name }

func (s *Service) Configured() bool {
	return s.starter != nil && s.config.Validate() == nil
}

// Upsert returns the process instance key.
func (s *Service) Upsert(ctx context.Context, lead *leads.Submission) (string, error) {
	key, err := s.starter.StartProcess(ctx, s.config.ProcessID, Variables{
		LeadID:           lead.ID,
		FirstName:        lead.FirstName,
		LastName:         lead.LastName,
		Email:            lead.Email,
		Phone:            lead.Phone,
		Company:          lead.Company,
		Question:         lead.Question,
		Source:           lead.Source,
		MarketingConsent: lead.MarketingConsent,
		SubmittedAt:      lead.SubmittedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	})
	if err != nil {
		return "", err
	}

	s.logger.Info("lead workflow started", map[string]interface{}{
		"leadId":             lead.ID,
		"processId":          s.config.ProcessID,
		"processInstanceKey": key,
	})
	return strconv.FormatInt(key, 10), nil
}

func (s *Service) Check(ctx context.Context) error {
	return s.starter.HealthCheck(ctx)
}
