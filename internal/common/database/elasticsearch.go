package database

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"

	"lead-intake/internal/common/config"
)

type ElasticsearchClient struct {
	Client *elasticsearch.Client
}

// NewElasticsearch builds a client that makes a single attempt per request;
// the transport's built-in retries are disabled so a slow cluster cannot
// stretch a sink past its deadline.
func NewElasticsearch(cfg config.ElasticsearchConfig) (*ElasticsearchClient, error) {
	esCfg := elasticsearch.Config{
		Addresses:    cfg.Addresses,
		DisableRetry: true,
	}
	if cfg.Username != "" {
		esCfg.Username = cfg.Username
		esCfg.Password = cfg.Password
	}

	es, err := elasticsearch.NewClient(esCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create elasticsearch client: %w", err)
	}
	return &ElasticsearchClient{Client: es}, nil
}

func (c *ElasticsearchClient) Ping(ctx context.Context) error {
	res, err := c.Client.Ping(c.Client.Ping.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("elasticsearch ping failed: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("elasticsearch ping error: %s", res.Status())
	}
	return nil
}

// EnsureIndex creates index with the given JSON mapping when it does not exist
// yet. It reports whether the index was created.
func (c *ElasticsearchClient) EnsureIndex(ctx context.Context, index, mapping string) (bool, error) {
	exists, err := c.Client.Indices.Exists([]string{index}, c.Client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return false, fmt.Errorf("check index %s: %w", index, err)
	}
	exists.Body.Close()

	switch exists.StatusCode {
	case http.StatusOK:
		return false, nil
	case http.StatusNotFound:
	default:
		return false, fmt.Errorf("check index %s: %s", index, exists.Status())
	}

	res, err := c.Client.Indices.Create(index,
		c.Client.Indices.Create.WithContext(ctx),
		c.Client.Indices.Create.WithBody(strings.NewReader(mapping)),
	)
	if err != nil {
		return false, fmt.Errorf("create index %s: %w", index, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		// lost a race with another instance
		if strings.Contains(res.String(), "resource_already_exists_exception") {
			return false, nil
		}
		return false, fmt.Errorf("create index %s: %s", index, res.Status())
	}
	return true, nil
}
