// Package smsalert texts an on-call phone about each new lead through AWS SNS.
package smsalert

import (
	"context"
	"fmt"
	"strings"

	awsclient "lead-intake/internal/common/aws"
	"lead-intake/internal/common/logger"
	"lead-intake/internal/leads"
)

const Name = "sms-alert"

// maxMessageLength keeps alerts to a single GSM-7 segment.
const maxMessageLength = 160

type Service struct {
	config *Config
	logger logger.Logger
	client *awsclient.SNSClient
}

func NewService(config *Config, client *awsclient.SNSClient, log logger.Logger) *Service {
	log = log.WithFields(map[string]interface{}{"sink": Name})
	if err := config.Validate(); err != nil {
		log.Debug("sms alerts disabled", map[string]interface{}{"reason": err.Error()})
	}
	return &Service{
		config: config,
		logger: log,
		client: client,
	}
}

func (s *Service) Name() string { return Name }

func (s *Service) Configured() bool {
	return s.client != nil && s.config.Validate() == nil
}

func (s *Service) Upsert(ctx context.Context, lead *leads.Submission) (string, error) {
	messageID, err := s.client.SendSMS(ctx, s.config.AlertPhone, alertText(lead), s.config.SenderID)
	if err != nil {
		return "", fmt.Errorf("sns publish: %w", err)
	}
	s.logger.Debug("sms alert sent", map[string]interface{}{"leadId": lead.ID, "messageId": messageID})
	return messageID, nil
}

func alertText(lead *leads.Submission) string {
	parts := []string{lead.FullName(), lead.Email}
	if lead.Phone != "" {
		parts = append(parts, lead.Phone)
	}
	text := fmt.Sprintf("New lead (%s): %s", lead.Source, strings.Join(parts, ", "))
	if runes := []rune(text); len(runes) > maxMessageLength {
		text = string(runes[:maxMessageLength-3]) + "..."
	}
	return text
}

func (s *Service) Check(ctx context.Context) error {
	return s.client.Check(ctx)
}
