// Package searchindex makes leads searchable in Elasticsearch.
package searchindex

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"lead-intake/internal/common/logger"
	"lead-intake/internal/leads"
)

const Name = "search-index"

type Service struct {
	config *Config
	logger logger.Logger
	client *elasticsearch.Client
}

// IndexMapping is applied when the leads index is created at startup. Email
// and source are keywords for exact filtering; the free-text fields are analyzed.
const IndexMapping = `{
  "mappings": {
    "properties": {
      "lead_id":               {"type": "keyword"},
      "first_name":            {"type": "text"},
      "last_name":             {"type": "text"},
      "full_name":             {"type": "text", "fields": {"raw": {"type": "keyword"}}},
      "email":                 {"type": "keyword"},
      "phone":                 {"type": "keyword"},
      "company":               {"type": "text"},
      "question":              {"type": "text"},
      "source":                {"type": "keyword"},
      "marketing_consent":     {"type": "boolean"},
      "communication_consent": {"type": "boolean"},
      "submitted_at":          {"type": "date"}
    }
  }
}`

type document struct {
	LeadID               string    `json:"lead_id"`
	FirstName            string    `json:"first_name"`
	LastName             string    `json:"last_name,omitempty"`
	FullName             string    `json:"full_name"`
	Email                string    `json:"email"`
	Phone                string    `json:"phone,omitempty"`
	Company              string    `json:"company,omitempty"`
	Question             string    `json:"question,omitempty"`
	Source               string    `json:"source"`
	MarketingConsent     bool      `json:"marketing_consent"`
	CommunicationConsent bool      `json:"communication_consent"`
	SubmittedAt          time.Time `json:"submitted_at"`
}

// NewService accepts a nil client; the sink is then unconfigured.
func NewService(config *Config, client *elasticsearch.Client, log logger.Logger) *Service {
	return &Service{
		config: config,
		logger: log.WithFields(map[string]interface{}{"sink": Name}),
		client: client,
	}
}

func (s *Service) Name() string { return Name }

func (s *Service) Configured() bool {
	return s.client != nil && s.config.Validate() == nil
}

// Upsert indexes the lead under its primary id, so repeated calls overwrite
// the same document.
func (s *Service) Upsert(ctx context.Context, lead *leads.Submission) (string, error) {
	if lead.ID == "" {
		return "", fmt.Errorf("lead has no id")
	}

	body, err := json.Marshal(document{
		LeadID:               lead.ID,
		FirstName:            lead.FirstName,
		LastName:             lead.LastName,
		FullName:             lead.FullName(),
		Email:                lead.Email,
		Phone:                lead.Phone,
		Company:              lead.Company,
		Question:             lead.Question,
		Source:               lead.Source,
		MarketingConsent:     lead.MarketingConsent,
		CommunicationConsent: lead.CommunicationConsent,
		SubmittedAt:          lead.SubmittedAt,
	})
	if err != nil {
		return "", fmt.Errorf("marshal lead document: %w", err)
	}

	req := esapi.IndexRequest{
		Index:      s.config.Index,
		DocumentID: lead.ID,
		Body:       bytes.NewReader(body),
		Refresh:    s.config.Refresh,
	}
	res, err := req.Do(ctx, s.client)
	if err != nil {
		return "", fmt.Errorf("elasticsearch index request failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return "", fmt.Errorf("elasticsearch index error: %s", res.Status())
	}

	var result struct {
		ID     string `json:"_id"`
		Result string `json:"result"`
	}
	if err := json.NewDecoder(res.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode index response: %w", err)
	}

	s.logger.Debug("lead indexed", map[string]interface{}{"leadId": lead.ID, "result": result.Result})
	return result.ID, nil
}

func (s *Service) Check(ctx context.Context) error {
	res, err := s.client.Ping(s.client.Ping.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("elasticsearch ping failed: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("elasticsearch ping error: %s", res.Status())
	}
	return nil
}
