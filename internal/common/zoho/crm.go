package zoho

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	httpclient "lead-intake/internal/common/http"
)

const DefaultBaseURL = "https://www.zohoapis.com/crm/v3"

const codeDuplicateData = "DUPLICATE_DATA"

type CRMClient struct {
	client *httpclient.Client
}

type Contact struct {
	ID          string `json:"id,omitempty"`
	Email       string `json:"Email"`
	FirstName   string `json:"First_Name,omitempty"`
	LastName    string `json:"Last_Name"`
	Phone       string `json:"Phone,omitempty"`
	Source      string `json:"Lead_Source,omitempty"`
	Description string `json:"Description,omitempty"`
	EmailOptOut bool   `json:"Email_Opt_Out"`
}

type recordResult struct {
	Code    string        `json:"code"`
	Details recordDetails `json:"details"`
	Message string        `json:"message"`
	Status  string        `json:"status"`
}

type recordDetails struct {
	ID              string `json:"id"`
	DuplicateRecord struct {
		ID string `json:"id"`
	} `json:"duplicate_record"`
}

type CreateContactResponse struct {
	Data []recordResult `json:"data"`
}

func NewCRMClient(oauthToken, baseURL string, timeout time.Duration) *CRMClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &CRMClient{
		client: httpclient.NewClient("zoho-crm", baseURL, timeout,
			httpclient.WithHeader("Authorization", "Zoho-oauthtoken "+oauthToken),
		),
	}
}

// CreateContact inserts contact and returns its id. The second return value is
// true when Zoho rejected the record as DUPLICATE_DATA and the id is that of the
// existing record.
func (c *CRMClient) CreateContact(ctx context.Context, contact *Contact) (string, bool, error) {
	payload := map[string]interface{}{
		"data": []Contact{*contact},
	}

	var createResp CreateContactResponse
	err := c.client.DoJSON(ctx, http.MethodPost, "/Contacts", payload, &createResp)
	if err != nil {
		// single-record inserts report duplicates with a 400 status
		statusErr, ok := httpclient.AsStatusError(err)
		if !ok || statusErr.StatusCode != http.StatusBadRequest {
			return "", false, err
		}
		if jsonErr := json.Unmarshal(statusErr.Body, &createResp); jsonErr != nil {
			return "", false, err
		}
	}

	if len(createResp.Data) == 0 {
		return "", false, fmt.Errorf("zoho-crm: no data in response")
	}

	result := createResp.Data[0]
	if result.Code == codeDuplicateData {
		id := result.Details.DuplicateRecord.ID
		if id == "" {
			id = result.Details.ID
		}
		if id == "" {
			return "", false, fmt.Errorf("zoho-crm: duplicate reported without record id")
		}
		return id, true, nil
	}
	if result.Status != "success" {
		return "", false, fmt.Errorf("zoho-crm: contact creation failed: %s (%s)", result.Message, result.Code)
	}

	return result.Details.ID, false, nil
}

// SearchContacts looks up contacts by email. Zoho answers 204 when nothing matches.
func (c *CRMClient) SearchContacts(ctx context.Context, email string) ([]Contact, error) {
	path := "/Contacts/search?email=" + url.QueryEscape(email)

	var result struct {
		Data []Contact `json:"data"`
	}
	if err := c.client.DoJSON(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return result.Data, nil
}

// CurrentUser fetches the token owner; used as a side-effect-free credentials check.
func (c *CRMClient) CurrentUser(ctx context.Context) error {
	var result struct {
		Users []struct {
			ID string `json:"id"`
		} `json:"users"`
	}
	return c.client.DoJSON(ctx, http.MethodGet, "/users?type=CurrentUser", nil, &result)
}
