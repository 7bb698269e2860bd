package settle

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "lead-intake/internal/common/errors"
)

func ok(value string) func(context.Context) (string, error) {
	return func(context.Context) (string, error) { return value, nil }
}

func TestAll_PreservesOrder(t *testing.T) {
	tasks := []Task{
		{Name: "slow", Fn: func(ctx context.Context) (string, error) {
			time.Sleep(30 * time.Millisecond)
			return "a", nil
		}},
		{Name: "fast", Fn: ok("b")},
		{Name: "medium", Fn: func(ctx context.Context) (string, error) {
			time.Sleep(10 * time.Millisecond)
			return "c", nil
		}},
	}

	results := All(context.Background(), time.Second, tasks)

	require.Len(t, results, 3)
	assert.Equal(t, []string{"slow", "fast", "medium"}, []string{results[0].Name, results[1].Name, results[2].Name})
	assert.Equal(t, []string{"a", "b", "c"}, []string{results[0].Value, results[1].Value, results[2].Value})
	for _, r := range results {
		assert.True(t, r.OK())
	}
}

func TestAll_IsolatesErrorsAndPanics(t *testing.T) {
	var calls int32
	count := func(fn func(context.Context) (string, error)) func(context.Context) (string, error) {
		return func(ctx context.Context) (string, error) {
			atomic.AddInt32(&calls, 1)
			return fn(ctx)
		}
	}

	tasks := []Task{
		{Name: "one", Fn: count(ok("1"))},
		{Name: "two", Fn: count(func(context.Context) (string, error) { panic("nil map write") })},
		{Name: "three", Fn: count(func(context.Context) (string, error) { return "", errors.New("502 bad gateway") })},
		{Name: "four", Fn: count(ok("4"))},
	}

	results := All(context.Background(), time.Second, tasks)

	assert.Equal(t, int32(4), atomic.LoadInt32(&calls))
	assert.True(t, results[0].OK())
	assert.True(t, results[3].OK())

	se, isStd := apperrors.AsStandard(results[1].Err)
	require.True(t, isStd)
	assert.Equal(t, apperrors.ErrCodeSinkPanic, se.Code)
	assert.Contains(t, se.Details, "nil map write")

	assert.EqualError(t, results[2].Err, "502 bad gateway")
}

func TestAll_TimesOutTaskThatIgnoresContext(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	tasks := []Task{
		{Name: "stuck", Fn: func(context.Context) (string, error) {
			<-release
			return "late", nil
		}},
		{Name: "quick", Fn: ok("q")},
	}

	start := time.Now()
	results := All(context.Background(), 50*time.Millisecond, tasks)

	assert.Less(t, time.Since(start), time.Second)
	se, isStd := apperrors.AsStandard(results[0].Err)
	require.True(t, isStd)
	assert.Equal(t, apperrors.ErrCodeSinkTimeout, se.Code)
	assert.Empty(t, results[0].Value)
	assert.True(t, results[1].OK())
}

func TestAll_ContextAwareTaskTimeoutIsNormalized(t *testing.T) {
	tasks := []Task{{Name: "polite", Fn: func(ctx context.Context) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}}}

	results := All(context.Background(), 20*time.Millisecond, tasks)

	se, isStd := apperrors.AsStandard(results[0].Err)
	require.True(t, isStd)
	assert.Equal(t, apperrors.ErrCodeSinkTimeout, se.Code)
	assert.Equal(t, "timeout", apperrors.ShortReason(results[0].Err))
}

func TestAll_Empty(t *testing.T) {
	assert.Empty(t, All(context.Background(), time.Second, nil))
}

func TestAll_RecordsDuration(t *testing.T) {
	results := All(context.Background(), time.Second, []Task{{Name: "sleep", Fn: func(context.Context) (string, error) {
		time.Sleep(15 * time.Millisecond)
		return "", nil
	}}})
	assert.GreaterOrEqual(t, results[0].Duration, 15*time.Millisecond)
}
