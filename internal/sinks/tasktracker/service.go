// Package tasktracker opens a ClickUp task for every lead.
package tasktracker

import (
	"context"
	"fmt"
	"strings"

	"lead-intake/internal/common/clickup"
	"lead-intake/internal/common/logger"
	"lead-intake/internal/leads"
)

const Name = "task-tracker"

var defaultTags = []string{"lead", "new"}

type Service struct {
	config *Config
	logger logger.Logger
	client *clickup.Client
}

func NewService(config *Config, log logger.Logger) *Service {
	log = log.WithFields(map[string]interface{}{"sink": Name})

	var client *clickup.Client
	if err := config.Validate(); err != nil {
		log.Debug("clickup client disabled", map[string]interface{}{"reason": err.Error()})
	} else {
		client = clickup.NewClient(config.APIKey, config.BaseURL, config.Timeout)
	}

	return &Service{
		config: config,
		logger: log,
		client: client,
	}
}

func (s *Service) Name() string { return Name }

func (s *Service) Configured() bool { return s.client != nil }

// Upsert creates one task per lead and returns the task id.
func (s *Service) Upsert(ctx context.Context, lead *leads.Submission) (string, error) {
	req := &clickup.CreateTaskRequest{
		Name:         fmt.Sprintf("New Lead: %s - %s", lead.FirstName, lead.Email),
		Description:  describeLead(lead),
		Tags:         append([]string{lead.Source}, defaultTags...),
		Priority:     clickup.PriorityNormal,
		NotifyAll:    false,
		CustomFields: s.customFields(lead),
	}

	task, err := s.client.CreateTask(ctx, s.config.ListID, req)
	if err != nil {
		return "", err
	}

	s.logger.Info("lead task created", map[string]interface{}{
		"leadId": lead.ID,
		"taskId": task.ID,
		"url":    task.URL,
	})
	return task.ID, nil
}

func (s *Service) customFields(lead *leads.Submission) []clickup.CustomField {
	values := map[string]interface{}{
		FieldEmail:    lead.Email,
		FieldSource:   lead.Source,
		FieldLeadDate: lead.SubmittedAt.UnixMilli(),
		FieldLeadID:   lead.ID,
	}
	if lead.Phone != "" {
		values[FieldPhone] = lead.Phone
	}

	var fields []clickup.CustomField
	// fixed order keeps request bodies stable
	for _, key := range []string{FieldEmail, FieldPhone, FieldSource, FieldLeadDate, FieldLeadID} {
		id := s.config.CustomFields[key]
		value, ok := values[key]
		if id == "" || !ok {
			continue
		}
		fields = append(fields, clickup.CustomField{ID: id, Value: value})
	}
	return fields
}

func describeLead(lead *leads.Submission) string {
	var b strings.Builder
	b.WriteString("**New Lead Submission**\n\n")
	b.WriteString("**Contact Information:**\n")
	fmt.Fprintf(&b, "• Name: %s\n", lead.FullName())
	fmt.Fprintf(&b, "• Email: %s\n", lead.Email)
	if lead.Phone != "" {
		fmt.Fprintf(&b, "• Phone: %s\n", lead.Phone)
	}
	if lead.Company != "" {
		fmt.Fprintf(&b, "• Company: %s\n", lead.Company)
	}
	b.WriteString("\n**Lead Details:**\n")
	fmt.Fprintf(&b, "• Source: %s\n", lead.Source)
	fmt.Fprintf(&b, "• Date: %s\n", lead.SubmittedAt.Format("2006-01-02"))
	fmt.Fprintf(&b, "• Lead ID: %s\n", lead.ID)
	if lead.Question != "" {
		b.WriteString("\n**Question/Message:**\n")
		b.WriteString(lead.Question)
		b.WriteString("\n")
	}
	b.WriteString("\n---\n*This task was automatically created from a lead form submission.*")
	return b.String()
}

func (s *Service) Check(ctx context.Context) error {
	return s.client.User(ctx)
}
