// Package notify sends lead emails through a pluggable provider.
package notify

import (
	"context"
	"fmt"
	"strings"

	awsclient "lead-intake/internal/common/aws"
	"lead-intake/internal/common/config"
	"lead-intake/internal/common/logger"
)

// EmailSender delivers one message and returns the provider's message id.
// Implementations can be swapped (SES, SendGrid, SMTP) without changing callers.
type EmailSender interface {
	Send(ctx context.Context, msg EmailMessage) (string, error)
	Provider() string
}

// EmailMessage is a single-recipient message. From defaults to the sender's
// configured address.
type EmailMessage struct {
	To      string
	ToName  string
	ReplyTo string
	Subject string
	Text    string
	HTML    string
}

// Sender identity shared by every provider.
type Sender struct {
	Email string
	Name  string
}

func (s Sender) header() string {
	if s.Name == "" {
		return s.Email
	}
	return fmt.Sprintf("%s <%s>", s.Name, s.Email)
}

// NewSenderFromConfig returns the provider selected by notifications.email.provider,
// or nil when email is disabled or the provider's credentials are missing.
func NewSenderFromConfig(ctx context.Context, cfg *config.Config, log logger.Logger) (EmailSender, error) {
	email := cfg.Notifications.Email
	from := Sender{Email: email.FromEmail, Name: email.FromName}

	switch strings.ToLower(email.Provider) {
	case "":
		return nil, nil

	case "ses":
		if from.Email == "" {
			from.Email = cfg.Integrations.AWS.SES.FromEmail
		}
		if !cfg.Integrations.AWS.SES.Enabled || from.Email == "" {
			log.Warn("ses email provider selected but not enabled", nil)
			return nil, nil
		}
		awsCfg, err := awsclient.LoadConfig(ctx, cfg.Integrations.AWS.Region)
		if err != nil {
			return nil, err
		}
		return NewSESSender(awsclient.NewSESClient(awsCfg), from, log), nil

	case "sendgrid":
		if cfg.Integrations.SendGrid.APIKey == "" || from.Email == "" {
			log.Warn("sendgrid email provider selected without api key or sender", nil)
			return nil, nil
		}
		return NewSendGridSender(cfg.Integrations.SendGrid.APIKey, from, log), nil

	case "smtp":
		smtpCfg := cfg.Integrations.SMTP
		if from.Email == "" {
			from.Email = smtpCfg.DefaultFrom
		}
		if smtpCfg.Host == "" || from.Email == "" {
			log.Warn("smtp email provider selected without host or sender", nil)
			return nil, nil
		}
		return NewSMTPSender(SMTPConfig{
			Host:     smtpCfg.Host,
			Port:     smtpCfg.Port,
			Username: smtpCfg.Username,
			Password: smtpCfg.Password,
			UseTLS:   smtpCfg.UseTLS,
		}, from, log), nil
	}

	return nil, fmt.Errorf("unsupported email provider %q", email.Provider)
}
