package clickup

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "lead-intake/internal/common/errors"
)

func TestCreateTask(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/list/901/task", r.URL.Path)
		assert.Equal(t, "pk_test", r.Header.Get("Authorization"))

		var req CreateTaskRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "New Lead: Jane - jane@example.com", req.Name)
		assert.Equal(t, PriorityNormal, req.Priority)
		assert.False(t, req.NotifyAll)
		require.Len(t, req.CustomFields, 1)
		assert.Equal(t, "cf-email", req.CustomFields[0].ID)

		_, _ = w.Write([]byte(`{"id":"86a1b2c3","name":"New Lead: Jane - jane@example.com","url":"https://app.clickup.com/t/86a1b2c3"}`))
	}))
	defer srv.Close()

	client := NewClient("pk_test", srv.URL, 5*time.Second)
	task, err := client.CreateTask(context.Background(), "901", &CreateTaskRequest{
		Name:         "New Lead: Jane - jane@example.com",
		Priority:     PriorityNormal,
		CustomFields: []CustomField{{ID: "cf-email", Value: "jane@example.com"}},
	})

	require.NoError(t, err)
	assert.Equal(t, "86a1b2c3", task.ID)
	assert.Equal(t, "https://app.clickup.com/t/86a1b2c3", task.URL)
}

func TestCreateTask_ErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"err":"List not found","ECODE":"ITEM_015"}`))
	}))
	defer srv.Close()

	client := NewClient("pk_test", srv.URL, 5*time.Second)
	_, err := client.CreateTask(context.Background(), "missing", &CreateTaskRequest{Name: "x"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "List not found")
	se, ok := apperrors.AsStandard(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeExternalService, se.Code)
}

func TestUser(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/user", r.URL.Path)
		_, _ = w.Write([]byte(`{"user":{"id":183,"username":"ops"}}`))
	}))
	defer srv.Close()

	assert.NoError(t, NewClient("pk_test", srv.URL, time.Second).User(context.Background()))
}
