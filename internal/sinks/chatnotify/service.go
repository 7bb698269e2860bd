// Package chatnotify posts new leads to a Slack channel.
package chatnotify

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/slack-go/slack"

	"lead-intake/internal/common/logger"
	"lead-intake/internal/leads"
)

const Name = "chat"

type Service struct {
	config *Config
	logger logger.Logger
	client *slack.Client
}

func NewService(config *Config, log logger.Logger) *Service {
	log = log.WithFields(map[string]interface{}{"sink": Name})

	var client *slack.Client
	if err := config.Validate(); err != nil {
		log.Debug("slack client disabled", map[string]interface{}{"reason": err.Error()})
	} else {
		opts := []slack.Option{
			slack.OptionHTTPClient(&http.Client{Timeout: config.Timeout}),
		}
		if config.APIURL != "" {
			opts = append(opts, slack.OptionAPIURL(strings.TrimSuffix(config.APIURL, "/")+"/"))
		}
		client = slack.New(config.BotToken, opts...)
	}

	return &Service{
		config: config,
		logger: log,
		client: client,
	}
}

func (s *Service) Name() string { return Name }

func (s *Service) Configured() bool { return s.client != nil }

// Upsert posts the notification and returns the message timestamp.
func (s *Service) Upsert(ctx context.Context, lead *leads.Submission) (string, error) {
	_, ts, err := s.client.PostMessageContext(ctx, s.config.ChannelID,
		slack.MsgOptionText(fmt.Sprintf("New lead: %s <%s>", lead.FullName(), lead.Email), false),
		slack.MsgOptionBlocks(buildBlocks(lead)...),
	)
	if err != nil {
		return "", fmt.Errorf("slack post message: %w", err)
	}

	s.logger.Debug("lead notification posted", map[string]interface{}{"leadId": lead.ID, "ts": ts})
	return ts, nil
}

func buildBlocks(lead *leads.Submission) []slack.Block {
	phone := lead.Phone
	if phone == "" {
		phone = "Not provided"
	}
	consent := ":x:"
	if lead.MarketingConsent {
		consent = ":white_check_mark:"
	}

	fields := []*slack.TextBlockObject{
		markdown("*Name:*\n" + escape(lead.FullName())),
		markdown("*Email:*\n" + escape(lead.Email)),
		markdown("*Phone:*\n" + escape(phone)),
		markdown("*Marketing Consent:*\n" + consent),
	}
	if lead.Company != "" {
		fields = append(fields, markdown("*Company:*\n"+escape(lead.Company)))
	}
	fields = append(fields, markdown("*Source:*\n"+escape(lead.Source)))

	blocks := []slack.Block{
		slack.NewHeaderBlock(slack.NewTextBlockObject(slack.PlainTextType, "New Lead Notification", true, false)),
		slack.NewSectionBlock(nil, fields, nil),
	}
	if lead.Question != "" {
		blocks = append(blocks, slack.NewSectionBlock(markdown("*Question:*\n>"+escape(lead.Question)), nil, nil))
	}
	if lead.ID != "" {
		blocks = append(blocks, slack.NewContextBlock("", markdown("Lead ID: "+lead.ID)))
	}
	return blocks
}

func markdown(text string) *slack.TextBlockObject {
	return slack.NewTextBlockObject(slack.MarkdownType, text, false, false)
}

var mrkdwnEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// escape neutralises mrkdwn control characters in user input.
func escape(s string) string {
	return mrkdwnEscaper.Replace(s)
}

func (s *Service) Check(ctx context.Context) error {
	_, err := s.client.AuthTestContext(ctx)
	return err
}
