package notify

import (
	"context"
	"fmt"

	awsclient "lead-intake/internal/common/aws"
	"lead-intake/internal/common/logger"
)

// SESSender sends through Amazon SES.
type SESSender struct {
	client *awsclient.SESClient
	from   Sender
	logger logger.Logger
}

func NewSESSender(client *awsclient.SESClient, from Sender, log logger.Logger) *SESSender {
	return &SESSender{
		client: client,
		from:   from,
		logger: log.WithFields(map[string]interface{}{"provider": "ses"}),
	}
}

func (s *SESSender) Provider() string { return "ses" }

func (s *SESSender) Send(ctx context.Context, msg EmailMessage) (string, error) {
	id, err := s.client.Send(ctx, &awsclient.Email{
		From:    s.from.header(),
		To:      msg.To,
		ReplyTo: msg.ReplyTo,
		Subject: msg.Subject,
		HTML:    msg.HTML,
		Text:    msg.Text,
	})
	if err != nil {
		return "", fmt.Errorf("notify: ses send failed: %w", err)
	}

	s.logger.Debug("email sent", map[string]interface{}{"to": msg.To, "messageId": id})
	return id, nil
}

func (s *SESSender) Check(ctx context.Context) error {
	return s.client.Check(ctx)
}
