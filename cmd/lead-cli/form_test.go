package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpclient "lead-intake/internal/common/http"
	"lead-intake/internal/leads"
)

func TestValidators(t *testing.T) {
	assert.NoError(t, emailValidator(" jane@example.com "))
	assert.Error(t, emailValidator("jane@"))
	assert.NoError(t, phoneValidator(""))
	assert.NoError(t, phoneValidator("+15551234567"))
	assert.Error(t, phoneValidator("call me"))
}

func TestPayload_OmitsEmptyOptionalFields(t *testing.T) {
	a := &answers{
		FirstName:            "Jane",
		Email:                "jane@example.com",
		Question:             "  Do you ship to Canada?\n",
		CommunicationConsent: true,
	}

	body := a.payload("phone")

	assert.Equal(t, "Do you ship to Canada?", body["question"])
	assert.Equal(t, "phone", body["source"])
	assert.Equal(t, true, body["communicationConsent"])
	assert.NotContains(t, body, "phone")
	assert.NotContains(t, body, "lastName")
}

func TestSubmit_Created(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/leads", r.URL.Path)
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Jane", body["firstName"])

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"success":true,"leadId":"c_123","sinks":[{"name":"crm","success":true,"referenceId":"z1"},{"name":"chat","success":false,"error":"timeout"}]}`))
	}))
	defer srv.Close()

	client := httpclient.NewClient("lead-api", srv.URL, 5*time.Second)
	resp, err := submit(context.Background(), client, map[string]interface{}{"firstName": "Jane"})
	require.NoError(t, err)
	assert.Equal(t, "c_123", resp.LeadID)
	require.Len(t, resp.Sinks, 2)
	assert.Equal(t, leads.SinkResult{Name: "crm", Success: true, ReferenceID: "z1"}, resp.Sinks[0])

	var out bytes.Buffer
	printResult(&out, resp)
	assert.Contains(t, out.String(), "Lead stored: c_123")
	assert.Contains(t, out.String(), "FAIL  chat")
}

func TestSubmit_ValidationRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"success":false,"error":"Validation failed","details":{"email":"must be a valid email address"}}`))
	}))
	defer srv.Close()

	client := httpclient.NewClient("lead-api", srv.URL, 5*time.Second)
	_, err := submit(context.Background(), client, map[string]interface{}{})

	var rejected *RejectedError
	require.True(t, errors.As(err, &rejected))
	assert.Equal(t, http.StatusBadRequest, rejected.Status)
	assert.Equal(t, "must be a valid email address", rejected.Body.Details["email"])

	var out bytes.Buffer
	printRejected(&out, rejected)
	assert.Contains(t, out.String(), "email must be a valid email address")
}
