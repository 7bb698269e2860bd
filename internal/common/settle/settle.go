// Package settle runs independent tasks concurrently and waits for every one of
// them to finish, fail, panic or time out.
package settle

import (
	"context"
	"errors"
	"time"

	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"

	apperrors "lead-intake/internal/common/errors"
)

// Task is one unit of work. Fn should honour ctx, but All does not depend on it.
type Task struct {
	Name string
	Fn   func(ctx context.Context) (string, error)
}

// Result is the settled state of one Task. Exactly one of Value / Err is meaningful.
type Result struct {
	Name     string
	Value    string
	Err      error
	Duration time.Duration
}

// OK reports whether the task settled successfully.
func (r Result) OK() bool { return r.Err == nil }

// All runs tasks concurrently and returns one Result per task in input order.
// Each task gets its own deadline derived from ctx; a task that overruns is
// recorded as a SINK_TIMEOUT failure and its late result is discarded. Panics
// are recovered and recorded as SINK_PANIC failures. timeout <= 0 disables the
// per-task deadline.
func All(ctx context.Context, timeout time.Duration, tasks []Task) []Result {
	results := make([]Result, len(tasks))

	var wg conc.WaitGroup
	for i, task := range tasks {
		i, task := i, task
		wg.Go(func() {
			results[i] = run(ctx, timeout, task)
		})
	}
	wg.Wait()

	return results
}

type outcome struct {
	value string
	err   error
}

func run(parent context.Context, timeout time.Duration, task Task) Result {
	start := time.Now()

	ctx, cancel := parent, context.CancelFunc(func() {})
	if timeout > 0 {
		ctx, cancel = context.WithTimeout(parent, timeout)
	}
	defer cancel()

	// buffered so an abandoned task can still deliver and exit
	done := make(chan outcome, 1)
	go func() {
		var out outcome
		var catcher panics.Catcher
		catcher.Try(func() {
			out.value, out.err = task.Fn(ctx)
		})
		if rec := catcher.Recovered(); rec != nil {
			out = outcome{err: apperrors.NewSinkPanicError(task.Name, rec.Value)}
		}
		done <- out
	}()

	res := Result{Name: task.Name}
	select {
	case out := <-done:
		res.Value, res.Err = out.value, out.err
		if res.Err != nil && timeout > 0 && errors.Is(res.Err, context.DeadlineExceeded) {
			res.Err = apperrors.NewSinkTimeoutError(task.Name, timeout)
		}
	case <-ctx.Done():
		if parent.Err() != nil && timeout <= 0 {
			res.Err = apperrors.NewSinkFailedError(task.Name, parent.Err())
		} else {
			res.Err = apperrors.NewSinkTimeoutError(task.Name, timeout)
		}
	}
	res.Duration = time.Since(start)
	return res
}
