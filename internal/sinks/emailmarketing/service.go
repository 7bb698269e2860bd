// Package emailmarketing upserts leads as Brevo contacts.
package emailmarketing

import (
	"context"
	"strconv"

	"lead-intake/internal/common/brevo"
	"lead-intake/internal/common/logger"
	"lead-intake/internal/common/validation"
	"lead-intake/internal/leads"
)

const Name = "email-marketing"

type Service struct {
	config *Config
	logger logger.Logger
	client *brevo.Client
}

// NewService returns a sink that reports itself unconfigured when config is
// missing credentials.
func NewService(config *Config, log logger.Logger) *Service {
	log = log.WithFields(map[string]interface{}{"sink": Name})

	var client *brevo.Client
	if err := config.Validate(); err != nil {
		log.Debug("brevo client disabled", map[string]interface{}{"reason": err.Error()})
	} else {
		client = brevo.NewClient(config.APIKey, config.BaseURL, config.Timeout)
	}

	return &Service{
		config: config,
		logger: log,
		client: client,
	}
}

func (s *Service) Name() string { return Name }

func (s *Service) Configured() bool { return s.client != nil }

// Upsert creates the contact, or resolves the id of the existing one.
func (s *Service) Upsert(ctx context.Context, lead *leads.Submission) (string, error) {
	req := &brevo.CreateContactRequest{
		Email:         lead.Email,
		Attributes:    s.attributes(lead),
		UpdateEnabled: s.config.UpdateEnabled,
	}
	if s.config.ListID > 0 {
		req.ListIDs = []int64{s.config.ListID}
	}

	id, existed, err := s.client.CreateContact(ctx, req)
	if err != nil {
		return "", err
	}

	s.logger.Info("brevo contact upserted", map[string]interface{}{
		"leadId":    lead.ID,
		"contactId": id,
		"existed":   existed,
	})
	return strconv.FormatInt(id, 10), nil
}

func (s *Service) attributes(lead *leads.Submission) map[string]interface{} {
	attrs := map[string]interface{}{
		brevo.AttrFirstName: lead.FirstName,
	}
	if lead.LastName != "" {
		attrs[brevo.AttrLastName] = lead.LastName
	}
	if lead.Phone != "" {
		// Brevo rejects the whole contact when SMS is not E.164
		phone, err := validation.NormalizePhoneE164(lead.Phone)
		if err != nil {
			s.logger.Debug("phone omitted from contact", map[string]interface{}{"leadId": lead.ID, "reason": err.Error()})
		} else {
			attrs[brevo.AttrSMS] = phone
		}
	}
	return attrs
}

func (s *Service) Check(ctx context.Context) error {
	return s.client.Account(ctx)
}
