// Package leadconfirmation sends the submitter a thank-you email.
package leadconfirmation

import (
	"context"
	"fmt"

	"lead-intake/internal/common/logger"
	"lead-intake/internal/leads"
	"lead-intake/internal/notify"
)

const Name = "lead-confirmation"

type Service struct {
	config  *Config
	logger  logger.Logger
	sender  notify.EmailSender
	catalog *notify.Catalog
}

func NewService(config *Config, sender notify.EmailSender, catalog *notify.Catalog, log logger.Logger) *Service {
	log = log.WithFields(map[string]interface{}{"sink": Name})
	if err := config.Validate(); err != nil {
		log.Debug("lead confirmation disabled", map[string]interface{}{"reason": err.Error()})
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
	rendered, err := s.catalog.Render(notify.TemplateLeadConfirmation, notify.NewLeadData(lead, s.config.Brand))
	if err != nil {
		return "", fmt.Errorf("render lead confirmation: %w", err)
	}

	messageID, err := s.sender.Send(ctx, notify.EmailMessage{
		To:      lead.Email,
		ToName:  lead.FullName(),
		ReplyTo: s.config.ReplyTo,
		Subject: rendered.Subject,
		Text:    rendered.Text,
		HTML:    rendered.HTML,
	})
	if err != nil {
		return "", err
	}

	s.logger.Debug("confirmation sent", map[string]interface{}{"leadId": lead.ID, "messageId": messageID})
	return messageID, nil
}

func (s *Service) Check(ctx context.Context) error {
	if checker, ok := s.sender.(leads.Checker); ok {
		return checker.Check(ctx)
	}
	return nil
}
