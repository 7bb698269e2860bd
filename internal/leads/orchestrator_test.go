package leads

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "lead-intake/internal/common/errors"
	"lead-intake/internal/common/logger"
)

// ==========================
// Mock Sink
// ==========================

type MockSink struct {
	mock.Mock
	name       string
	configured bool
}

func newMockSink(name string, configured bool) *MockSink {
	return &MockSink{name: name, configured: configured}
}

func (m *MockSink) Name() string     { return m.name }
func (m *MockSink) Configured() bool { return m.configured }

func (m *MockSink) Upsert(ctx context.Context, lead *Submission) (string, error) {
	args := m.Called(ctx, lead)
	return args.String(0), args.Error(1)
}

func (m *MockSink) Check(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func testLead() *Submission {
	return &Submission{
		FirstName:   "Jane",
		Email:       "jane@example.com",
		Question:    "How do I start?",
		Source:      "website",
		SubmittedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

var ignoreDuration = cmpopts.IgnoreFields(SinkResult{}, "Duration")

func newTestOrchestrator(t *testing.T, primary Sink, sinks []Sink, opts ...Option) *Orchestrator {
	t.Helper()
	o, err := NewOrchestrator(primary, sinks, logger.NewTestLogger(t), opts...)
	require.NoError(t, err)
	return o
}

// ==========================
// Construction
// ==========================

func TestNewOrchestrator_RequiresConfiguredPrimary(t *testing.T) {
	_, err := NewOrchestrator(nil, nil, logger.NewNoOpLogger())
	require.Error(t, err)

	_, err = NewOrchestrator(newMockSink(PrimaryStoreName, false), nil, logger.NewNoOpLogger())
	require.Error(t, err)
	se, ok := apperrors.AsStandard(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeConfigurationError, se.Code)
}

// ==========================
// Submit
// ==========================

func TestSubmit_AllSinksSucceed(t *testing.T) {
	primary := newMockSink(PrimaryStoreName, true)
	primary.On("Upsert", mock.Anything, mock.Anything).Return("lead-1", nil)

	marketing := newMockSink("email-marketing", true)
	marketing.On("Upsert", mock.Anything, mock.MatchedBy(func(l *Submission) bool {
		return l.ID == "lead-1" && l.Email == "jane@example.com"
	})).Return("c_123", nil)

	crm := newMockSink("crm", true)
	crm.On("Upsert", mock.Anything, mock.Anything).Return("zcrm_9", nil)

	o := newTestOrchestrator(t, primary, []Sink{marketing, crm})
	lead := testLead()

	outcome, err := o.Submit(context.Background(), lead)
	require.NoError(t, err)

	want := &Outcome{
		PrimaryStoreSuccess: true,
		PrimaryRecordID:     "lead-1",
		SinkResults: []SinkResult{
			{Name: "email-marketing", Success: true, ReferenceID: "c_123"},
			{Name: "crm", Success: true, ReferenceID: "zcrm_9"},
		},
	}
	if diff := cmp.Diff(want, outcome, ignoreDuration); diff != "" {
		t.Errorf("outcome mismatch (-want +got):\n%s", diff)
	}

	// the validated submission itself is never mutated
	assert.Empty(t, lead.ID)
	marketing.AssertExpectations(t)
	crm.AssertExpectations(t)
}

func TestSubmit_PrimaryFailureShortCircuits(t *testing.T) {
	primary := newMockSink(PrimaryStoreName, true)
	primary.On("Upsert", mock.Anything, mock.Anything).Return("", errors.New("connection refused"))

	s1 := newMockSink("email-marketing", true)
	s2 := newMockSink("crm", true)

	o := newTestOrchestrator(t, primary, []Sink{s1, s2})

	outcome, err := o.Submit(context.Background(), testLead())

	require.Error(t, err)
	se, ok := apperrors.AsStandard(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodePrimaryStoreFailed, se.Code)
	assert.False(t, outcome.PrimaryStoreSuccess)
	assert.Empty(t, outcome.SinkResults)

	s1.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
	s2.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestSubmit_PrimaryEmptyIDIsFailure(t *testing.T) {
	primary := newMockSink(PrimaryStoreName, true)
	primary.On("Upsert", mock.Anything, mock.Anything).Return("", nil)

	o := newTestOrchestrator(t, primary, nil)

	outcome, err := o.Submit(context.Background(), testLead())
	require.Error(t, err)
	assert.False(t, outcome.PrimaryStoreSuccess)
}

func TestSubmit_PartialFailureIsolation(t *testing.T) {
	tests := []struct {
		name       string
		setup      func(m *MockSink)
		wantReason string
	}{
		{
			name: "middle sink errors",
			setup: func(m *MockSink) {
				m.On("Upsert", mock.Anything, mock.Anything).Return("", errors.New("502 bad gateway"))
			},
			wantReason: "upstream error",
		},
		{
			name: "middle sink panics",
			setup: func(m *MockSink) {
				m.On("Upsert", mock.Anything, mock.Anything).Panic("nil map write")
			},
			wantReason: "internal error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			primary := newMockSink(PrimaryStoreName, true)
			primary.On("Upsert", mock.Anything, mock.Anything).Return("lead-7", nil)

			first := newMockSink("email-marketing", true)
			first.On("Upsert", mock.Anything, mock.Anything).Return("c_1", nil)
			middle := newMockSink("crm", true)
			tt.setup(middle)
			last := newMockSink("chat", true)
			last.On("Upsert", mock.Anything, mock.Anything).Return("1700000000.0001", nil)

			o := newTestOrchestrator(t, primary, []Sink{first, middle, last})

			outcome, err := o.Submit(context.Background(), testLead())
			require.NoError(t, err)

			want := []SinkResult{
				{Name: "email-marketing", Success: true, ReferenceID: "c_1"},
				{Name: "crm", Success: false, Error: tt.wantReason},
				{Name: "chat", Success: true, ReferenceID: "1700000000.0001"},
			}
			assert.True(t, outcome.PrimaryStoreSuccess)
			assert.Equal(t, "lead-7", outcome.PrimaryRecordID)
			if diff := cmp.Diff(want, outcome.SinkResults, ignoreDuration); diff != "" {
				t.Errorf("sink results mismatch (-want +got):\n%s", diff)
			}
			first.AssertNumberOfCalls(t, "Upsert", 1)
			last.AssertNumberOfCalls(t, "Upsert", 1)
		})
	}
}

func TestSubmit_SlowSinkTimesOut(t *testing.T) {
	primary := newMockSink(PrimaryStoreName, true)
	primary.On("Upsert", mock.Anything, mock.Anything).Return("lead-2", nil)

	slow := newMockSink("task-tracker", true)
	slow.On("Upsert", mock.Anything, mock.Anything).
		After(500*time.Millisecond).
		Return("late", nil)
	fast := newMockSink("chat", true)
	fast.On("Upsert", mock.Anything, mock.Anything).Return("ts", nil)

	o := newTestOrchestrator(t, primary, []Sink{slow, fast}, WithSinkTimeout(50*time.Millisecond))

	start := time.Now()
	outcome, err := o.Submit(context.Background(), testLead())
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 400*time.Millisecond)

	require.Len(t, outcome.SinkResults, 2)
	assert.Equal(t, SinkResult{Name: "task-tracker", Success: false, Error: "timeout"},
		withoutDuration(outcome.SinkResults[0]))
	assert.True(t, outcome.SinkResults[1].Success)
}

func TestSubmit_UnconfiguredSinksAreOmitted(t *testing.T) {
	primary := newMockSink(PrimaryStoreName, true)
	primary.On("Upsert", mock.Anything, mock.Anything).Return("lead-3", nil)

	configured := newMockSink("email-marketing", true)
	configured.On("Upsert", mock.Anything, mock.Anything).Return("c_5", nil)
	missingCRM := newMockSink("crm", false)
	missingChat := newMockSink("chat", false)

	o := newTestOrchestrator(t, primary, []Sink{missingCRM, configured, missingChat})

	outcome, err := o.Submit(context.Background(), testLead())
	require.NoError(t, err)

	want := []SinkResult{{Name: "email-marketing", Success: true, ReferenceID: "c_5"}}
	if diff := cmp.Diff(want, outcome.SinkResults, ignoreDuration); diff != "" {
		t.Errorf("sink results mismatch (-want +got):\n%s", diff)
	}
	missingCRM.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
	missingChat.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestSubmit_ClientDisconnectDoesNotCancelSinks(t *testing.T) {
	primary := newMockSink(PrimaryStoreName, true)
	primary.On("Upsert", mock.Anything, mock.Anything).Return("lead-4", nil)

	sink := newMockSink("crm", true)
	sink.On("Upsert", mock.MatchedBy(func(ctx context.Context) bool {
		return ctx.Err() == nil
	}), mock.Anything).Return("zcrm_1", nil)

	o := newTestOrchestrator(t, primary, []Sink{sink})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	outcome, err := o.Submit(ctx, testLead())
	require.NoError(t, err)
	require.Len(t, outcome.SinkResults, 1)
	assert.True(t, outcome.SinkResults[0].Success)
}

func TestSubmit_NoSecondarySinks(t *testing.T) {
	primary := newMockSink(PrimaryStoreName, true)
	primary.On("Upsert", mock.Anything, mock.Anything).Return("lead-5", nil)

	o := newTestOrchestrator(t, primary, nil)

	outcome, err := o.Submit(context.Background(), testLead())
	require.NoError(t, err)
	assert.True(t, outcome.PrimaryStoreSuccess)
	assert.Empty(t, outcome.SinkResults)
}

// ==========================
// CheckSinks
// ==========================

func TestCheckSinks(t *testing.T) {
	primary := newMockSink(PrimaryStoreName, true)
	primary.On("Check", mock.Anything).Return(nil)

	healthy := newMockSink("email-marketing", true)
	healthy.On("Check", mock.Anything).Return(nil)
	broken := newMockSink("crm", true)
	broken.On("Check", mock.Anything).Return(apperrors.NewAuthenticationError("zoho", errors.New("401")))
	missing := newMockSink("chat", false)

	o := newTestOrchestrator(t, primary, []Sink{healthy, broken, missing})

	got := o.CheckSinks(context.Background())

	assert.Equal(t, []CheckResult{
		{Name: PrimaryStoreName, Configured: true, Healthy: true},
		{Name: "email-marketing", Configured: true, Healthy: true},
		{Name: "crm", Configured: true, Healthy: false, Error: "authentication failed"},
		{Name: "chat", Configured: false, Healthy: false},
	}, got)
	missing.AssertNotCalled(t, "Check", mock.Anything)
}

func withoutDuration(r SinkResult) SinkResult {
	r.Duration = 0
	return r
}
