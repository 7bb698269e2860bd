package leads

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"

	apperrors "lead-intake/internal/common/errors"
	"lead-intake/internal/common/logger"
	"lead-intake/internal/common/metrics"
	"lead-intake/internal/common/observability"
	"lead-intake/internal/common/settle"
)

// DefaultSinkTimeout bounds every secondary sink when no timeout is configured.
const DefaultSinkTimeout = 8 * time.Second

// Orchestrator writes a lead to the primary store and then fans it out to the
// secondary sinks. It holds no per-request state and is safe for concurrent use.
type Orchestrator struct {
	primary        Sink
	sinks          []Sink
	sinkTimeout    time.Duration
	primaryTimeout time.Duration
	logger         logger.Logger
	obs            *observability.Observability
}

// Option customizes an Orchestrator.
type Option func(*Orchestrator)

// WithSinkTimeout sets the per-sink deadline for secondary sinks.
func WithSinkTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.sinkTimeout = d
		}
	}
}

// WithPrimaryTimeout bounds the primary write. Defaults to the sink timeout.
func WithPrimaryTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.primaryTimeout = d
		}
	}
}

// WithObservability records OpenTelemetry metrics for each submission.
func WithObservability(obs *observability.Observability) Option {
	return func(o *Orchestrator) { o.obs = obs }
}

// NewOrchestrator wires the primary store and the ordered secondary sinks. The
// primary store must be configured; secondary sinks that are not configured are
// kept but skipped on every request.
func NewOrchestrator(primary Sink, sinks []Sink, log logger.Logger, opts ...Option) (*Orchestrator, error) {
	if primary == nil || !primary.Configured() {
		return nil, apperrors.NewConfigurationError("primary store is not configured")
	}

	o := &Orchestrator{
		primary:     primary,
		sinks:       sinks,
		sinkTimeout: DefaultSinkTimeout,
		logger:      log.WithFields(map[string]interface{}{"component": "orchestrator"}),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.primaryTimeout == 0 {
		o.primaryTimeout = o.sinkTimeout
	}

	for _, s := range sinks {
		if !s.Configured() {
			o.logger.Info("sink disabled, credentials missing", map[string]interface{}{"sink": s.Name()})
		}
	}

	return o, nil
}

// Sinks returns the secondary sinks in configuration order.
func (o *Orchestrator) Sinks() []Sink {
	return o.sinks
}

// Submit runs Received → PrimaryWritten → SecondarySinksSettled for one lead.
//
// A primary store failure returns an Outcome with PrimaryStoreSuccess false and
// a PRIMARY_STORE_FAILED error; no secondary sink is invoked in that case.
// Secondary sink failures are recorded in the Outcome and never returned as an
// error. Work after validation is detached from ctx cancellation so a client
// disconnect does not abort side effects already in flight.
func (o *Orchestrator) Submit(ctx context.Context, lead *Submission) (*Outcome, error) {
	metrics.SubmissionsInFlight.Inc()
	defer metrics.SubmissionsInFlight.Dec()

	ctx, span := observability.StartSpan(ctx, "leads.submit",
		attribute.String("lead.source", lead.Source),
	)
	detached := context.WithoutCancel(ctx)

	recordID, err := o.writePrimary(detached, lead)
	if err != nil {
		o.transition(StatePrimaryWriteFailed, "", nil)
		metrics.LeadSubmissions.WithLabelValues("primary_failed").Inc()
		o.obs.RecordSubmission(ctx, "primary_failed")
		o.logger.Error("primary store write failed", map[string]interface{}{
			"error": err,
			"email": lead.Email,
		})
		observability.EndSpan(span, err)
		return &Outcome{PrimaryStoreSuccess: false}, apperrors.NewPrimaryStoreError(err)
	}
	o.transition(StatePrimaryWritten, recordID, nil)
	span.SetAttributes(attribute.String("lead.id", recordID))

	stored := lead.WithID(recordID)
	results := o.fanOut(detached, stored)
	o.transition(StateSecondarySinksSettled, recordID, map[string]interface{}{"sinks": len(results)})

	metrics.LeadSubmissions.WithLabelValues("accepted").Inc()
	o.obs.RecordSubmission(ctx, "accepted")
	observability.EndSpan(span, nil)

	return &Outcome{
		PrimaryStoreSuccess: true,
		PrimaryRecordID:     recordID,
		SinkResults:         results,
	}, nil
}

func (o *Orchestrator) writePrimary(ctx context.Context, lead *Submission) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, o.primaryTimeout)
	defer cancel()

	ctx, span := observability.StartSpan(ctx, "sink."+o.primary.Name())
	id, err := o.primary.Upsert(ctx, lead)
	observability.EndSpan(span, err)
	if err != nil {
		return "", err
	}
	if id == "" {
		return "", fmt.Errorf("%s returned an empty record id", o.primary.Name())
	}
	return id, nil
}

// fanOut settles every configured secondary sink and converts the results,
// preserving configuration order.
func (o *Orchestrator) fanOut(ctx context.Context, lead *Submission) []SinkResult {
	var active []Sink
	for _, s := range o.sinks {
		if !s.Configured() {
			o.logger.Debug("skipping unconfigured sink", map[string]interface{}{
				"sink":   s.Name(),
				"leadId": lead.ID,
			})
			continue
		}
		active = append(active, s)
	}

	tasks := make([]settle.Task, len(active))
	for i, s := range active {
		s := s
		tasks[i] = settle.Task{
			Name: s.Name(),
			Fn: func(ctx context.Context) (string, error) {
				ctx, span := observability.StartSpan(ctx, "sink."+s.Name(),
					attribute.String("lead.id", lead.ID),
				)
				ref, err := s.Upsert(ctx, lead)
				observability.EndSpan(span, err)
				return ref, err
			},
		}
	}

	settled := settle.All(ctx, o.sinkTimeout, tasks)

	results := make([]SinkResult, len(settled))
	for i, r := range settled {
		results[i] = o.toSinkResult(ctx, lead, r)
	}
	return results
}

func (o *Orchestrator) toSinkResult(ctx context.Context, lead *Submission, r settle.Result) SinkResult {
	status := "success"
	if !r.OK() {
		status = "failure"
	}
	metrics.SinkResults.WithLabelValues(r.Name, status).Inc()
	metrics.SinkDuration.WithLabelValues(r.Name).Observe(r.Duration.Seconds())
	o.obs.RecordSinkDuration(ctx, r.Name, r.Duration, r.OK())

	if r.OK() {
		o.logger.Info("sink succeeded", map[string]interface{}{
			"sink":        r.Name,
			"leadId":      lead.ID,
			"referenceId": r.Value,
			"durationMs":  r.Duration.Milliseconds(),
		})
		return SinkResult{Name: r.Name, Success: true, ReferenceID: r.Value, Duration: r.Duration}
	}

	o.logger.Warn("sink failed", map[string]interface{}{
		"sink":       r.Name,
		"leadId":     lead.ID,
		"error":      r.Err,
		"durationMs": r.Duration.Milliseconds(),
	})
	return SinkResult{
		Name:     r.Name,
		Success:  false,
		Error:    apperrors.ShortReason(r.Err),
		Duration: r.Duration,
	}
}

func (o *Orchestrator) transition(state State, leadID string, extra map[string]interface{}) {
	fields := map[string]interface{}{"state": string(state)}
	if leadID != "" {
		fields["leadId"] = leadID
	}
	for k, v := range extra {
		fields[k] = v
	}
	o.logger.Debug("lead state", fields)
}

// CheckResult reports the health of one sink.
type CheckResult struct {
	Name       string
	Configured bool
	Healthy    bool
	Error      string
}

// CheckSinks probes every configured sink that implements Checker, concurrently,
// using the sink timeout. Unconfigured sinks are reported without being probed.
func (o *Orchestrator) CheckSinks(ctx context.Context) []CheckResult {
	all := append([]Sink{o.primary}, o.sinks...)
	out := make([]CheckResult, len(all))

	var tasks []settle.Task
	var index []int
	for i, s := range all {
		out[i] = CheckResult{Name: s.Name(), Configured: s.Configured()}
		checker, ok := s.(Checker)
		if !ok || !s.Configured() {
			out[i].Healthy = s.Configured()
			continue
		}
		tasks = append(tasks, settle.Task{
			Name: s.Name(),
			Fn: func(ctx context.Context) (string, error) {
				return "", checker.Check(ctx)
			},
		})
		index = append(index, i)
	}

	for j, r := range settle.All(ctx, o.sinkTimeout, tasks) {
		i := index[j]
		out[i].Healthy = r.OK()
		if !r.OK() {
			out[i].Error = apperrors.ShortReason(r.Err)
			o.logger.Warn("sink check failed", map[string]interface{}{"sink": r.Name, "error": r.Err})
		}
	}
	return out
}
