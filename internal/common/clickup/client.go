package clickup

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	httpclient "lead-intake/internal/common/http"
)

const DefaultBaseURL = "https://api.clickup.com/api/v2"

// Priority values accepted by the task API.
const (
	PriorityUrgent = 1
	PriorityHigh   = 2
	PriorityNormal = 3
	PriorityLow    = 4
)

type Client struct {
	client *httpclient.Client
}

type CustomField struct {
	ID    string      `json:"id"`
	Value interface{} `json:"value"`
}

type CreateTaskRequest struct {
	Name         string        `json:"name"`
	Description  string        `json:"markdown_description,omitempty"`
	Tags         []string      `json:"tags,omitempty"`
	Priority     int           `json:"priority,omitempty"`
	NotifyAll    bool          `json:"notify_all"`
	CustomFields []CustomField `json:"custom_fields,omitempty"`
}

type Task struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

func NewClient(apiKey, baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		client: httpclient.NewClient("clickup", baseURL, timeout,
			httpclient.WithHeader("Authorization", apiKey),
		),
	}
}

// CreateTask creates a task in listID. Upstream error messages are read from
// the "err" field of the response body.
func (c *Client) CreateTask(ctx context.Context, listID string, req *CreateTaskRequest) (*Task, error) {
	var task Task
	path := fmt.Sprintf("/list/%s/task", url.PathEscape(listID))
	if err := c.client.DoJSON(ctx, http.MethodPost, path, req, &task); err != nil {
		return nil, describe(err)
	}
	if task.ID == "" {
		return nil, fmt.Errorf("clickup: task created without id")
	}
	return &task, nil
}

// User fetches the authorized user; used as a credentials check.
func (c *Client) User(ctx context.Context) error {
	var resp struct {
		User struct {
			ID int64 `json:"id"`
		} `json:"user"`
	}
	return describe(c.client.DoJSON(ctx, http.MethodGet, "/user", nil, &resp))
}

func describe(err error) error {
	if err == nil {
		return nil
	}
	statusErr, ok := httpclient.AsStatusError(err)
	if !ok {
		return err
	}
	var body struct {
		Err   string `json:"err"`
		ECode string `json:"ECODE"`
	}
	if json.Unmarshal(statusErr.Body, &body) != nil || body.Err == "" {
		return err
	}
	return fmt.Errorf("clickup: %s (%s): %w", body.Err, body.ECode, err)
}
