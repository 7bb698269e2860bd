// Package crmcontact upserts leads as Zoho CRM contacts.
package crmcontact

import (
	"context"
	"fmt"

	"lead-intake/internal/common/logger"
	"lead-intake/internal/common/zoho"
	"lead-intake/internal/leads"
)

const Name = "crm"

type Service struct {
	config     *Config
	logger     logger.Logger
	zohoClient *zoho.CRMClient
}

func NewService(config *Config, log logger.Logger) *Service {
	log = log.WithFields(map[string]interface{}{"sink": Name})

	var zohoClient *zoho.CRMClient
	if err := config.Validate(); err != nil {
		log.Debug("zoho client disabled", map[string]interface{}{"reason": err.Error()})
	} else {
		zohoClient = zoho.NewCRMClient(config.OAuthToken, config.BaseURL, config.Timeout)
	}

	return &Service{
		config:     config,
		logger:     log,
		zohoClient: zohoClient,
	}
}

func (s *Service) Name() string { return Name }

func (s *Service) Configured() bool { return s.zohoClient != nil }

// Upsert returns the id of an existing contact with the lead's email, or
// creates one. A failed search is not fatal: the create call still reports
// duplicates.
func (s *Service) Upsert(ctx context.Context, lead *leads.Submission) (string, error) {
	existing, err := s.zohoClient.SearchContacts(ctx, lead.Email)
	if err != nil {
		s.logger.Warn("failed to search for existing contact", map[string]interface{}{
			"leadId": lead.ID,
			"error":  err.Error(),
		})
	} else if len(existing) > 0 && existing[0].ID != "" {
		s.logger.Info("contact already exists in CRM", map[string]interface{}{
			"leadId":    lead.ID,
			"contactId": existing[0].ID,
		})
		return existing[0].ID, nil
	}

	contactID, duplicate, err := s.zohoClient.CreateContact(ctx, toContact(lead))
	if err != nil {
		return "", fmt.Errorf("create CRM contact: %w", err)
	}

	s.logger.Info("CRM contact upserted", map[string]interface{}{
		"leadId":    lead.ID,
		"contactId": contactID,
		"duplicate": duplicate,
	})
	return contactID, nil
}

func toContact(lead *leads.Submission) *zoho.Contact {
	// Last_Name is mandatory in Zoho
	lastName := lead.LastName
	if lastName == "" {
		lastName = lead.FirstName
	}
	return &zoho.Contact{
		Email:       lead.Email,
		FirstName:   lead.FirstName,
		LastName:    lastName,
		Phone:       lead.Phone,
		Source:      lead.Source,
		Description: lead.Question,
		EmailOptOut: !lead.MarketingConsent,
	}
}

func (s *Service) Check(ctx context.Context) error {
	return s.zohoClient.CurrentUser(ctx)
}
