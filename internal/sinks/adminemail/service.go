// Package adminemail emails every lead to the team inbox.
package adminemail

import (
	"context"
	"fmt"

	"lead-intake/internal/common/logger"
	"lead-intake/internal/leads"
	"lead-intake/internal/notify"
)

const Name = "admin-email"

type Service struct {
	config  *Config
	logger  logger.Logger
	sender  notify.EmailSender
	catalog *notify.Catalog
}

// NewService accepts a nil sender; the sink is then unconfigured.
func NewService(config *Config, sender notify.EmailSender, catalog *notify.Catalog, log logger.Logger) *Service {
	log = log.WithFields(map[string]interface{}{"sink": Name})
	if err := config.Validate(); err != nil {
		log.Debug("admin email disabled", map[string]interface{}{"reason": err.Error()})
	}
	return &Service{
		config:  config,
		logger:  log,
		sender:  sender,
		catalog: catalog,
	}
}

func (s *Service) Name() string { return Name }

func (s *Service) Configured() bool {
	return s.sender != nil && s.catalog != nil && s.config.Validate() == nil
}

func (s *Service) Upsert(ctx context.Context, lead *leads.Submission) (string, error) {
	rendered, err := s.catalog.Render(notify.TemplateAdminNotification, notify.NewLeadData(lead, s.config.Brand))
	if err != nil {
		return "", fmt.Errorf("render admin notification: %w", err)
	}

	msg := notify.EmailMessage{
		To:      s.config.To,
		Subject: rendered.Subject,
		Text:    rendered.Text,
		HTML:    rendered.HTML,
	}
	if s.config.ReplyToLead {
		msg.ReplyTo = lead.Email
	}

	messageID, err := s.sender.Send(ctx, msg)
	if err != nil {
		return "", err
	}

	s.logger.Debug("admin notification sent", map[string]interface{}{
		"leadId":    lead.ID,
		"provider":  s.sender.Provider(),
		"messageId": messageID,
	})
	return messageID, nil
}

// Check probes the email provider when it supports probing.
func (s *Service) Check(ctx context.Context) error {
	if checker, ok := s.sender.(leads.Checker); ok {
		return checker.Check(ctx)
	}
	return nil
}
