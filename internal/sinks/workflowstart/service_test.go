package workflowstart

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "lead-intake/internal/common/errors"
	"lead-intake/internal/common/logger"
	"lead-intake/internal/leads"
)

type MockStarter struct {
	mock.Mock
}

func (m *MockStarter) StartProcess(ctx context.Context, processID string, vars interface{}) (int64, error) {
	args := m.Called(ctx, processID, vars)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStarter) HealthCheck(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func TestConfigured(t *testing.T) {
	cfg := &Config{ProcessID: "lead-follow-up"}
	assert.True(t, NewService(cfg, &MockStarter{}, logger.NewNoOpLogger()).Configured())
	assert.False(t, NewService(cfg, nil, logger.NewNoOpLogger()).Configured())
	assert.False(t, NewService(DefaultConfig(), &MockStarter{}, logger.NewNoOpLogger()).Configured())
}

func TestUpsert_StartsProcess(t *testing.T) {
	starter := &MockStarter{}
	starter.On("StartProcess", mock.Anything, "lead-follow-up", Variables{
		LeadID:      "lead-8",
		FirstName:   "Jane",
		Email:       "jane@example.com",
		Source:      "website",
		SubmittedAt: "2026-03-01T12:00:00Z",
	}).Return(int64(2251799813685249), nil)
	svc := NewService(&Config{ProcessID: "lead-follow-up"}, starter, logger.NewTestLogger(t))

	ref, err := svc.Upsert(context.Background(), &leads.Submission{
		ID:          "lead-8",
		FirstName:   "Jane",
		Email:       "jane@example.com",
		Source:      "website",
		SubmittedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	})

	require.NoError(t, err)
	assert.Equal(t, "2251799813685249", ref)
	starter.AssertExpectations(t)
}

func TestUpsert_BrokerUnavailable(t *testing.T) {
	starter := &MockStarter{}
	starter.On("StartProcess", mock.Anything, mock.Anything, mock.Anything).
		Return(int64(0), apperrors.NewExternalServiceError("zeebe", assert.AnError))
	svc := NewService(&Config{ProcessID: "lead-follow-up"}, starter, logger.NewTestLogger(t))

	_, err := svc.Upsert(context.Background(), &leads.Submission{ID: "lead-8"})

	require.Error(t, err)
	assert.Equal(t, "upstream error", apperrors.ShortReason(err))
}

func TestCheck(t *testing.T) {
	starter := &MockStarter{}
	starter.On("HealthCheck", mock.Anything).Return(nil)
	svc := NewService(&Config{ProcessID: "p"}, starter, logger.NewNoOpLogger())
	assert.NoError(t, svc.Check(context.Background()))
}
