package main

import (
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v8"

	awsclient "lead-intake/internal/common/aws"
	"lead-intake/internal/common/config"
	"lead-intake/internal/common/logger"
	"lead-intake/internal/leads"
	"lead-intake/internal/notify"
	"lead-intake/internal/sinks/adminemail"
	"lead-intake/internal/sinks/chatnotify"
	"lead-intake/internal/sinks/crmcontact"
	"lead-intake/internal/sinks/emailmarketing"
	"lead-intake/internal/sinks/leadconfirmation"
	"lead-intake/internal/sinks/searchindex"
	"lead-intake/internal/sinks/smsalert"
	"lead-intake/internal/sinks/tasktracker"
	"lead-intake/internal/sinks/workflowstart"
)

// defaultSinkOrder is used when leads.sinks is empty.
var defaultSinkOrder = []string{
	emailmarketing.Name,
	crmcontact.Name,
	tasktracker.Name,
	chatnotify.Name,
	adminemail.Name,
	leadconfirmation.Name,
	smsalert.Name,
	searchindex.Name,
	workflowstart.Name,
}

// sinkDeps carries the shared clients built in main. Any of them may be nil;
// the sinks that need a missing client report themselves unconfigured.
type sinkDeps struct {
	email    notify.EmailSender
	catalog  *notify.Catalog
	search   *elasticsearch.Client
	sms      *awsclient.SNSClient
	workflow workflowstart.ProcessStarter
}

type sinkFactory func(cfg *config.Config, deps sinkDeps, timeout time.Duration, log logger.Logger) leads.Sink

var sinkFactories = map[string]sinkFactory{
	emailmarketing.Name: func(cfg *config.Config, _ sinkDeps, timeout time.Duration, log logger.Logger) leads.Sink {
		brevo := cfg.Integrations.Brevo
		return emailmarketing.NewService(&emailmarketing.Config{
			APIKey:        brevo.APIKey,
			ListID:        brevo.ListID,
			BaseURL:       brevo.BaseURL,
			UpdateEnabled: true,
			Timeout:       timeout,
		}, log)
	},
	crmcontact.Name: func(cfg *config.Config, _ sinkDeps, timeout time.Duration, log logger.Logger) leads.Sink {
		zoho := cfg.Integrations.Zoho
		return crmcontact.NewService(&crmcontact.Config{
			OAuthToken: zoho.AuthToken,
			BaseURL:    zoho.BaseURL,
			Timeout:    timeout,
		}, log)
	},
	tasktracker.Name: func(cfg *config.Config, _ sinkDeps, timeout time.Duration, log logger.Logger) leads.Sink {
		clickup := cfg.Integrations.ClickUp
		return tasktracker.NewService(&tasktracker.Config{
			APIKey:       clickup.APIKey,
			ListID:       clickup.ListID,
			BaseURL:      clickup.BaseURL,
			CustomFields: clickup.CustomFields,
			Timeout:      timeout,
		}, log)
	},
	chatnotify.Name: func(cfg *config.Config, _ sinkDeps, timeout time.Duration, log logger.Logger) leads.Sink {
		slack := cfg.Integrations.Slack
		return chatnotify.NewService(&chatnotify.Config{
			BotToken:  slack.BotToken,
			ChannelID: slack.ChannelID,
			APIURL:    slack.APIURL,
			Timeout:   timeout,
		}, log)
	},
	adminemail.Name: func(cfg *config.Config, deps sinkDeps, _ time.Duration, log logger.Logger) leads.Sink {
		return adminemail.NewService(&adminemail.Config{
			To:          cfg.Notifications.Email.AdminEmail,
			ReplyToLead: true,
			Brand:       cfg.Notifications.Email.Brand,
		}, deps.email, deps.catalog, log)
	},
	leadconfirmation.Name: func(cfg *config.Config, deps sinkDeps, _ time.Duration, log logger.Logger) leads.Sink {
		conf := leadconfirmation.DefaultConfig()
		if brand := cfg.Notifications.Email.Brand; brand != "" {
			conf.Brand = brand
		}
		conf.ReplyTo = cfg.Notifications.Email.AdminEmail
		return leadconfirmation.NewService(conf, deps.email, deps.catalog, log)
	},
	smsalert.Name: func(cfg *config.Config, deps sinkDeps, _ time.Duration, log logger.Logger) leads.Sink {
		sns := cfg.Integrations.AWS.SNS
		return smsalert.NewService(&smsalert.Config{
			Enabled:    sns.Enabled,
			AlertPhone: sns.AlertPhone,
			SenderID:   sns.DefaultSenderID,
		}, deps.sms, log)
	},
	searchindex.Name: func(cfg *config.Config, deps sinkDeps, _ time.Duration, log logger.Logger) leads.Sink {
		conf := searchindex.DefaultConfig()
		if index := cfg.Database.Elasticsearch.Index; index != "" {
			conf.Index = index
		}
		return searchindex.NewService(conf, deps.search, log)
	},
	workflowstart.Name: func(cfg *config.Config, deps sinkDeps, _ time.Duration, log logger.Logger) leads.Sink {
		return workflowstart.NewService(&workflowstart.Config{
			ProcessID: cfg.Camunda.ProcessID,
		}, deps.workflow, log)
	},
}

// buildSinks constructs the secondary sinks in configured order. Unknown names
// are a startup error; unconfigured sinks are kept and skipped per request.
func buildSinks(cfg *config.Config, deps sinkDeps, log logger.Logger) ([]leads.Sink, error) {
	order := cfg.Leads.Sinks
	if len(order) == 0 {
		order = defaultSinkOrder
	}
	timeout := config.GetDuration(cfg.Leads.SinkTimeout)
	if timeout <= 0 {
		timeout = leads.DefaultSinkTimeout
	}

	sinks := make([]leads.Sink, 0, len(order))
	for _, name := range order {
		factory, ok := sinkFactories[name]
		if !ok {
			return nil, fmt.Errorf("unknown sink %q in leads.sinks", name)
		}
		sinks = append(sinks, factory(cfg, deps, timeout, log))
	}
	return sinks, nil
}
