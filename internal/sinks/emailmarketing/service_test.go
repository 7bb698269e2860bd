package emailmarketing

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lead-intake/internal/common/logger"
	"lead-intake/internal/leads"
)

func testLead() *leads.Submission {
	return &leads.Submission{
		ID:          "b7f0c1de-0000-4000-8000-000000000001",
		FirstName:   "Jane",
		LastName:    "Doe",
		Email:       "jane@example.com",
		Phone:       "(555) 123-4567",
		Source:      "website",
		SubmittedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func newService(t *testing.T, handler http.Handler) *Service {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := DefaultConfig()
	cfg.APIKey = "xkeysib-test"
	cfg.ListID = 4
	cfg.BaseURL = srv.URL
	return NewService(cfg, logger.NewTestLogger(t))
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	assert.EqualError(t, cfg.Validate(), "api_key is required")

	cfg.APIKey = "k"
	assert.NoError(t, cfg.Validate())

	cfg.Timeout = 0
	assert.EqualError(t, cfg.Validate(), "timeout must be positive")
}

func TestUnconfigured(t *testing.T) {
	svc := NewService(DefaultConfig(), logger.NewNoOpLogger())
	assert.Equal(t, "email-marketing", svc.Name())
	assert.False(t, svc.Configured())
}

func TestUpsert_CreatesContact(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/contacts", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		assert.Equal(t, "jane@example.com", body["email"])
		assert.Equal(t, true, body["updateEnabled"])
		assert.Equal(t, []interface{}{float64(4)}, body["listIds"])
		attrs := body["attributes"].(map[string]interface{})
		assert.Equal(t, "Jane", attrs["FIRSTNAME"])
		assert.Equal(t, "Doe", attrs["LASTNAME"])
		assert.Equal(t, "+15551234567", attrs["SMS"])

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":901}`))
	})
	svc := newService(t, mux)
	require.True(t, svc.Configured())

	ref, err := svc.Upsert(context.Background(), testLead())

	require.NoError(t, err)
	assert.Equal(t, "901", ref)
}

func TestUpsert_InvalidPhoneOmitted(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/contacts", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Attributes map[string]interface{} `json:"attributes"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.NotContains(t, body.Attributes, "SMS")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":5}`))
	})
	svc := newService(t, mux)

	lead := testLead()
	lead.Phone = "12345"
	_, err := svc.Upsert(context.Background(), lead)
	require.NoError(t, err)
}

func TestUpsert_DuplicateReturnsExistingID(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/contacts", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":"duplicate_parameter","message":"Contact already exist"}`))
	})
	mux.HandleFunc("/contacts/jane@example.com", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":42,"email":"jane@example.com"}`))
	})
	svc := newService(t, mux)

	ref, err := svc.Upsert(context.Background(), testLead())

	require.NoError(t, err)
	assert.Equal(t, "42", ref)
}

func TestUpsert_UpstreamFailure(t *testing.T) {
	svc := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	_, err := svc.Upsert(context.Background(), testLead())
	assert.Error(t, err)
}

func TestCheck(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/account", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"email":"owner@example.com"}`))
	})
	svc := newService(t, mux)

	assert.NoError(t, svc.Check(context.Background()))
}
