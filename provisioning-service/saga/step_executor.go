package saga

import (
	"context"
	"encoding/json"
	"time"

	"github.com/draftea/provisioning-system/provisioning-service/domain"
	"github.com/draftea/provisioning-system/shared/telemetry"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// StepOutcome is the result of running or compensating one step. Adapter
// failures are reported here, never as an error.
type StepOutcome struct {
	Status  domain.StepStatus
	Output  json.RawMessage
	Err     error
	Retries int
}

// Succeeded reports whether the step reached the wanted status
func (o StepOutcome) Succeeded() bool {
	return o.Status == domain.StepStatusCompleted || o.Status == domain.StepStatusCompensated
}

// StepExecutor runs one step to completion or failure, applying the retry
// policy, and persists every attempt before acting on it
type StepExecutor struct {
	journal *journal
	policy  *RetryPolicy
	logger  zerolog.Logger
	sleep   func(ctx context.Context, d time.Duration) error
}

func newStepExecutor(j *journal, policy *RetryPolicy, logger zerolog.Logger) *StepExecutor {
	return &StepExecutor{
		journal: j,
		policy:  policy,
		logger:  logger,
		sleep:   sleepContext,
	}
}

// Execute invokes the forward action of step. The returned error is a store
// or context failure that aborts the drive; the step is left in its last
// persisted state.
func (e *StepExecutor) Execute(ctx context.Context, wf *domain.Workflow, step *domain.WorkflowStep, adapter domain.StepAdapter) (*domain.Workflow, StepOutcome, error) {
	ctx, span := telemetry.StartSpan(ctx, "saga.step.execute",
		trace.WithAttributes(
			attribute.String("workflow.id", wf.ID.String()),
			attribute.String("step.name", step.Name),
			attribute.String("step.system", step.TargetSystem),
		),
	)
	defer span.End()

	logger := e.logger.With().
		Str("workflow_id", wf.ID.String()).
		Str("step", step.Name).
		Logger()
	start := time.Now()

	if adapter == nil {
		err := domain.NewPermanentError(step.TargetSystem, step.Action, "no_adapter", errors.Errorf("no adapter registered for %s", step.ActionKey()))
		return e.finishFailed(ctx, wf, step, 0, err)
	}

	retries := 0
	change := domain.StepChange{
		StepID:       step.ID,
		Status:       domain.StepStatusRunning,
		RetryCount:   intPtr(0),
		ErrorMessage: stringPtr(""),
	}
	reason := "step started"
	if step.Status == domain.StepStatusRunning {
		// interrupted mid-step: the recorded attempt may have run, resuming
		// is the next retry
		retries = step.RetryCount + 1
		if retries > e.policy.MaxRetries(wf.Type) {
			logger.Warn().Int("retries", step.RetryCount).Msg("step retries exhausted before resume")
			e.observe(ctx, step, "failed", start)
			return e.finishFailed(ctx, wf, step, step.RetryCount, resumeCause(step.ErrorMessage, "step retries exhausted"))
		}
		change.RetryCount = intPtr(retries)
		change.ErrorMessage = nil
		reason = "step resumed"
	}

	wf, err := e.recordStep(ctx, wf, change, reason)
	if err != nil {
		return nil, StepOutcome{}, err
	}

	for {
		current, _ := wf.Step(step.ID)
		output, applyErr := adapter.Apply(ctx, domain.NewStepRequest(wf, current, retries+1))
		if applyErr == nil {
			wf, err = e.recordStep(ctx, wf, domain.StepChange{
				StepID:       step.ID,
				Status:       domain.StepStatusCompleted,
				ErrorMessage: stringPtr(""),
				Output:       output,
			}, "step completed")
			if err != nil {
				return nil, StepOutcome{}, err
			}
			e.observe(ctx, step, "completed", start)
			return wf, StepOutcome{Status: domain.StepStatusCompleted, Output: output, Retries: retries}, nil
		}
		if ctx.Err() != nil {
			return nil, StepOutcome{}, errors.Wrap(ctx.Err(), "step interrupted")
		}

		if !e.policy.ShouldRetry(wf.Type, retries+1, applyErr) {
			logger.Warn().Err(applyErr).Int("retries", retries).Msg("step failed")
			e.observe(ctx, step, "failed", start)
			return e.finishFailed(ctx, wf, step, retries, applyErr)
		}

		retries++
		delay := e.policy.BackoffBefore(retries)
		logger.Info().Err(applyErr).Int("retry", retries).Dur("backoff", delay).Msg("retrying step")

		wf, err = e.recordStep(ctx, wf, domain.StepChange{
			StepID:       step.ID,
			Status:       domain.StepStatusRunning,
			RetryCount:   intPtr(retries),
			ErrorMessage: stringPtr(applyErr.Error()),
		}, "step retry scheduled")
		if err != nil {
			return nil, StepOutcome{}, err
		}

		if err := e.sleep(ctx, delay); err != nil {
			return nil, StepOutcome{}, errors.Wrap(err, "step backoff interrupted")
		}
	}
}

// Compensate invokes the undo action of a step whose forward action may
// have been applied. Exhausting the compensation budget marks the step
// compensation_failed; the caller moves on to the next step.
func (e *StepExecutor) Compensate(ctx context.Context, wf *domain.Workflow, step *domain.WorkflowStep, adapter domain.StepAdapter) (*domain.Workflow, StepOutcome, error) {
	switch step.Status {
	case domain.StepStatusCompleted, domain.StepStatusCompensating, domain.StepStatusRunning:
	default:
		return wf, StepOutcome{Status: step.Status}, nil
	}

	ctx, span := telemetry.StartSpan(ctx, "saga.step.compensate",
		trace.WithAttributes(
			attribute.String("workflow.id", wf.ID.String()),
			attribute.String("step.name", step.Name),
			attribute.String("step.system", step.TargetSystem),
		),
	)
	defer span.End()

	logger := e.logger.With().
		Str("workflow_id", wf.ID.String()).
		Str("step", step.Name).
		Logger()
	start := time.Now()

	if adapter == nil {
		err := errors.Errorf("no adapter registered for %s", step.ActionKey())
		return e.finishCompensationFailed(ctx, wf, step, err)
	}

	attempt := 0
	reason := "compensation started"
	if step.Status == domain.StepStatusCompensating {
		attempt = step.CompensationRetryCount + 1
		if attempt > e.policy.MaxCompensationRetries() {
			logger.Error().Int("retries", step.CompensationRetryCount).Msg("compensation retries exhausted before resume")
			e.observe(ctx, step, "compensation_failed", start)
			return e.finishCompensationFailed(ctx, wf, step, resumeCause(step.ErrorMessage, "compensation retries exhausted"))
		}
		reason = "compensation resumed"
	}

	wf, err := e.recordStep(ctx, wf, domain.StepChange{
		StepID:                 step.ID,
		Status:                 domain.StepStatusCompensating,
		CompensationRetryCount: intPtr(attempt),
	}, reason)
	if err != nil {
		return nil, StepOutcome{}, err
	}

	for {
		current, _ := wf.Step(step.ID)
		undoErr := adapter.Undo(ctx, domain.NewStepRequest(wf, current, attempt+1), current.Output)
		if undoErr == nil {
			wf, err = e.recordStep(ctx, wf, domain.StepChange{
				StepID:       step.ID,
				Status:       domain.StepStatusCompensated,
				ErrorMessage: stringPtr(""),
			}, "step compensated")
			if err != nil {
				return nil, StepOutcome{}, err
			}
			e.observe(ctx, step, "compensated", start)
			return wf, StepOutcome{Status: domain.StepStatusCompensated, Retries: attempt}, nil
		}
		if ctx.Err() != nil {
			return nil, StepOutcome{}, errors.Wrap(ctx.Err(), "compensation interrupted")
		}

		attempt++
		if !e.policy.ShouldRetryCompensation(attempt, undoErr) {
			logger.Error().Err(undoErr).Int("retries", attempt-1).Msg("compensation failed")
			e.observe(ctx, step, "compensation_failed", start)
			return e.finishCompensationFailed(ctx, wf, step, undoErr)
		}

		delay := e.policy.BackoffBefore(attempt)
		logger.Info().Err(undoErr).Int("retry", attempt).Dur("backoff", delay).Msg("retrying compensation")

		wf, err = e.recordStep(ctx, wf, domain.StepChange{
			StepID:                 step.ID,
			Status:                 domain.StepStatusCompensating,
			CompensationRetryCount: intPtr(attempt),
			ErrorMessage:           stringPtr(undoErr.Error()),
		}, "compensation retry scheduled")
		if err != nil {
			return nil, StepOutcome{}, err
		}

		if err := e.sleep(ctx, delay); err != nil {
			return nil, StepOutcome{}, errors.Wrap(err, "compensation backoff interrupted")
		}
	}
}

func (e *StepExecutor) finishFailed(ctx context.Context, wf *domain.Workflow, step *domain.WorkflowStep, retries int, cause error) (*domain.Workflow, StepOutcome, error) {
	wf, err := e.recordStep(ctx, wf, domain.StepChange{
		StepID:       step.ID,
		Status:       domain.StepStatusFailed,
		RetryCount:   intPtr(retries),
		ErrorMessage: stringPtr(cause.Error()),
	}, "step failed")
	if err != nil {
		return nil, StepOutcome{}, err
	}
	return wf, StepOutcome{Status: domain.StepStatusFailed, Err: cause, Retries: retries}, nil
}

func (e *StepExecutor) finishCompensationFailed(ctx context.Context, wf *domain.Workflow, step *domain.WorkflowStep, cause error) (*domain.Workflow, StepOutcome, error) {
	wf, err := e.recordStep(ctx, wf, domain.StepChange{
		StepID:       step.ID,
		Status:       domain.StepStatusCompensationFailed,
		ErrorMessage: stringPtr(cause.Error()),
	}, "compensation failed")
	if err != nil {
		return nil, StepOutcome{}, err
	}
	return wf, StepOutcome{Status: domain.StepStatusCompensationFailed, Err: cause}, nil
}

func (e *StepExecutor) recordStep(ctx context.Context, wf *domain.Workflow, change domain.StepChange, reason string) (*domain.Workflow, error) {
	return e.journal.append(ctx, domain.Transition{
		WorkflowID: wf.ID,
		Steps:      []domain.StepChange{change},
		Reason:     reason,
	})
}

func (e *StepExecutor) observe(ctx context.Context, step *domain.WorkflowStep, result string, start time.Time) {
	telemetry.RecordHistogram(ctx, "workflow_step_duration_seconds", "Step execution duration including retries",
		time.Since(start).Seconds(),
		attribute.String("step", step.Name),
		attribute.String("system", step.TargetSystem),
		attribute.String("result", result),
	)
}

func resumeCause(lastError, fallback string) error {
	if lastError != "" {
		return errors.New(lastError)
	}
	return errors.New(fallback)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func intPtr(v int) *int          { return &v }
func stringPtr(v string) *string { return &v }
func boolPtr(v bool) *bool       { return &v }
