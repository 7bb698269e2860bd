package tasktracker

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lead-intake/internal/common/clickup"
	"lead-intake/internal/common/logger"
	"lead-intake/internal/leads"
)

func testLead() *leads.Submission {
	return &leads.Submission{
		ID:          "lead-7",
		FirstName:   "Jane",
		Email:       "jane@example.com",
		Question:    "Can you audit our landing pages?",
		Source:      "website",
		SubmittedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func newService(t *testing.T, handler http.HandlerFunc, fields map[string]string) *Service {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := DefaultConfig()
	cfg.APIKey = "pk_test"
	cfg.ListID = "901"
	cfg.BaseURL = srv.URL
	cfg.CustomFields = fields
	return NewService(cfg, logger.NewTestLogger(t))
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.APIKey = "pk"
	assert.EqualError(t, cfg.Validate(), "list_id is required")

	cfg.ListID = "1"
	cfg.CustomFields = map[string]string{"budget": "cf-1"}
	assert.EqualError(t, cfg.Validate(), `unknown custom field key "budget"`)

	cfg.CustomFields = map[string]string{FieldEmail: "cf-1"}
	assert.NoError(t, cfg.Validate())
}

func TestUnconfigured(t *testing.T) {
	cfg := DefaultConfig()
	cfg.APIKey = "pk_test"
	svc := NewService(cfg, logger.NewNoOpLogger())
	assert.Equal(t, "task-tracker", svc.Name())
	assert.False(t, svc.Configured())
}

func TestUpsert_CreatesTask(t *testing.T) {
	svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/list/901/task", r.URL.Path)

		var req clickup.CreateTaskRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "New Lead: Jane - jane@example.com", req.Name)
		assert.Equal(t, []string{"website", "lead", "new"}, req.Tags)
		assert.Equal(t, clickup.PriorityNormal, req.Priority)
		assert.Contains(t, req.Description, "• Email: jane@example.com")
		assert.Contains(t, req.Description, "• Lead ID: lead-7")
		assert.Contains(t, req.Description, "Can you audit our landing pages?")
		assert.NotContains(t, req.Description, "Phone")

		require.Len(t, req.CustomFields, 2)
		assert.Equal(t, "cf-email", req.CustomFields[0].ID)
		assert.Equal(t, "jane@example.com", req.CustomFields[0].Value)
		assert.Equal(t, "cf-lead", req.CustomFields[1].ID)
		assert.Equal(t, "lead-7", req.CustomFields[1].Value)

		_, _ = w.Write([]byte(`{"id":"86a1","url":"https://app.clickup.com/t/86a1"}`))
	}, map[string]string{FieldEmail: "cf-email", FieldLeadID: "cf-lead", FieldPhone: "cf-phone"})

	ref, err := svc.Upsert(context.Background(), testLead())

	require.NoError(t, err)
	assert.Equal(t, "86a1", ref)
}

func TestUpsert_Error(t *testing.T) {
	svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"err":"Token invalid","ECODE":"OAUTH_025"}`))
	}, nil)

	_, err := svc.Upsert(context.Background(), testLead())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Token invalid")
}

func TestCheck(t *testing.T) {
	svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/user", r.URL.Path)
		_, _ = w.Write([]byte(`{"user":{"id":1}}`))
	}, nil)

	assert.NoError(t, svc.Check(context.Background()))
}
