package brevo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	httpclient "lead-intake/internal/common/http"
)

const DefaultBaseURL = "https://api.brevo.com/v3"

const codeDuplicateParameter = "duplicate_parameter"

// Contact attribute names as configured in the Brevo account.
const (
	AttrFirstName = "FIRSTNAME"
	AttrLastName  = "LASTNAME"
	AttrSMS       = "SMS"
)

type Client struct {
	client *httpclient.Client
}

type CreateContactRequest struct {
	Email         string                 `json:"email"`
	Attributes    map[string]interface{} `json:"attributes,omitempty"`
	ListIDs       []int64                `json:"listIds,omitempty"`
	UpdateEnabled bool                   `json:"updateEnabled"`
}

type ContactInfo struct {
	ID               int64                  `json:"id"`
	Email            string                 `json:"email"`
	EmailBlacklisted bool                   `json:"emailBlacklisted"`
	SMSBlacklisted   bool                   `json:"smsBlacklisted"`
	ListIDs          []int64                `json:"listIds"`
	Attributes       map[string]interface{} `json:"attributes"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func NewClient(apiKey, baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		client: httpclient.NewClient("brevo", baseURL, timeout,
			httpclient.WithHeader("api-key", apiKey),
		),
	}
}

// CreateContact creates the contact and returns its id. When the contact
// already exists (204 with updateEnabled, or a duplicate_parameter rejection)
// the existing contact is looked up by email and its id returned instead; the
// second return value reports that case.
func (c *Client) CreateContact(ctx context.Context, req *CreateContactRequest) (int64, bool, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	var resp struct {
		ID int64 `json:"id"`
	}
	err := c.client.DoJSON(ctx, http.MethodPost, "/contacts", req, &resp)
	if err != nil {
		if !isDuplicate(err) {
			return 0, false, err
		}
		return c.existingID(ctx, req.Email)
	}
	if resp.ID == 0 {
		// updateEnabled upserts answer 204 with no body
		return c.existingID(ctx, req.Email)
	}
	return resp.ID, false, nil
}

func (c *Client) existingID(ctx context.Context, email string) (int64, bool, error) {
	info, err := c.GetContact(ctx, email)
	if err != nil {
		return 0, true, fmt.Errorf("brevo: look up existing contact: %w", err)
	}
	if info == nil {
		return 0, true, fmt.Errorf("brevo: contact %s reported as existing but not found", email)
	}
	return info.ID, true, nil
}

// GetContact returns nil, nil when the contact does not exist.
func (c *Client) GetContact(ctx context.Context, email string) (*ContactInfo, error) {
	var info ContactInfo
	err := c.client.DoJSON(ctx, http.MethodGet, "/contacts/"+url.PathEscape(strings.ToLower(email)), nil, &info)
	if err != nil {
		if statusErr, ok := httpclient.AsStatusError(err); ok && statusErr.StatusCode == http.StatusNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &info, nil
}

// Account fetches the account owner; used as a credentials check.
func (c *Client) Account(ctx context.Context) error {
	var account struct {
		Email string `json:"email"`
	}
	return c.client.DoJSON(ctx, http.MethodGet, "/account", nil, &account)
}

func isDuplicate(err error) bool {
	statusErr, ok := httpclient.AsStatusError(err)
	if !ok || statusErr.StatusCode != http.StatusBadRequest {
		return false
	}
	var body apiError
	if json.Unmarshal(statusErr.Body, &body) != nil {
		return false
	}
	return body.Code == codeDuplicateParameter
}
