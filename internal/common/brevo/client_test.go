package brevo

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, mux *http.ServeMux) *Client {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return NewClient("xkeysib-test", srv.URL, 5*time.Second)
}

func TestCreateContact_Created(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/contacts", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "xkeysib-test", r.Header.Get("api-key"))

		var req CreateContactRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "jane@example.com", req.Email)
		assert.Equal(t, []int64{7}, req.ListIDs)
		assert.Equal(t, "Jane", req.Attributes[AttrFirstName])

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":123}`))
	})
	client := newTestClient(t, mux)

	id, existed, err := client.CreateContact(context.Background(), &CreateContactRequest{
		Email:      " Jane@Example.com",
		Attributes: map[string]interface{}{AttrFirstName: "Jane"},
		ListIDs:    []int64{7},
	})

	require.NoError(t, err)
	assert.False(t, existed)
	assert.Equal(t, int64(123), id)
}

func TestCreateContact_DuplicateParameterLooksUpExisting(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/contacts", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":"duplicate_parameter","message":"Contact already exist"}`))
	})
	mux.HandleFunc("/contacts/jane@example.com", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		_, _ = w.Write([]byte(`{"id":77,"email":"jane@example.com","attributes":{"FIRSTNAME":"Jane"}}`))
	})
	client := newTestClient(t, mux)

	id, existed, err := client.CreateContact(context.Background(), &CreateContactRequest{Email: "jane@example.com"})

	require.NoError(t, err)
	assert.True(t, existed)
	assert.Equal(t, int64(77), id)
}

func TestCreateContact_UpdateEnabledNoContent(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/contacts", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("/contacts/jane@example.com", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":78,"email":"jane@example.com"}`))
	})
	client := newTestClient(t, mux)

	id, existed, err := client.CreateContact(context.Background(), &CreateContactRequest{Email: "jane@example.com", UpdateEnabled: true})

	require.NoError(t, err)
	assert.True(t, existed)
	assert.Equal(t, int64(78), id)
}

func TestCreateContact_OtherBadRequestFails(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/contacts", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":"invalid_parameter","message":"Invalid phone number"}`))
	})
	client := newTestClient(t, mux)

	_, _, err := client.CreateContact(context.Background(), &CreateContactRequest{Email: "jane@example.com"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid phone number")
}

func TestGetContact_NotFound(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/contacts/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"code":"document_not_found","message":"Contact does not exist"}`))
	})
	client := newTestClient(t, mux)

	info, err := client.GetContact(context.Background(), "ghost@example.com")
	require.NoError(t, err)
	assert.Nil(t, info)
}

func TestAccount(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/account", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"code":"unauthorized","message":"Key not found"}`))
	})
	client := newTestClient(t, mux)

	assert.Error(t, client.Account(context.Background()))
}
