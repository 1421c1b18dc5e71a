package saga

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/draftea/provisioning-system/provisioning-service/domain"
	"github.com/draftea/provisioning-system/shared/events"
	"github.com/draftea/provisioning-system/shared/models"
	"github.com/draftea/provisioning-system/shared/telemetry"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultLeaseTTL = 30 * time.Second
	// minLeaseTTL keeps the renewal tick, a third of the TTL, well above zero
	minLeaseTTL = time.Second
)

// CoordinatorConfig tunes the saga coordinator
type CoordinatorConfig struct {
	// InstanceID identifies this process as lease owner
	InstanceID string
	LeaseTTL   time.Duration
	// MaxWorkflowRetries bounds how many times a failed workflow can be retried
	MaxWorkflowRetries int
}

// Coordinator drives workflows through their state machine. All progress is
// read from and written to the store, so a drive can be abandoned at any
// point and resumed by another Drive call, possibly on another instance.
type Coordinator struct {
	repo     domain.WorkflowRepository
	resolver domain.AdapterResolver
	executor *StepExecutor
	journal  *journal
	logger   zerolog.Logger
	cfg      CoordinatorConfig
}

// NewCoordinator creates a new Coordinator
func NewCoordinator(
	repo domain.WorkflowRepository,
	resolver domain.AdapterResolver,
	policy *RetryPolicy,
	publisher events.Publisher,
	logger zerolog.Logger,
	cfg CoordinatorConfig,
) *Coordinator {
	switch {
	case cfg.LeaseTTL <= 0:
		cfg.LeaseTTL = defaultLeaseTTL
	case cfg.LeaseTTL < minLeaseTTL:
		logger.Warn().Dur("lease_ttl", cfg.LeaseTTL).Dur("minimum", minLeaseTTL).Msg("lease ttl raised to minimum")
		cfg.LeaseTTL = minLeaseTTL
	}
	if cfg.InstanceID == "" {
		cfg.InstanceID = models.GenerateUUID().String()
	}
	if cfg.MaxWorkflowRetries < 0 {
		cfg.MaxWorkflowRetries = 0
	}

	logger = logger.With().Str("component", "saga_coordinator").Logger()
	j := &journal{repo: repo, publisher: publisher, logger: logger}

	return &Coordinator{
		repo:     repo,
		resolver: resolver,
		executor: newStepExecutor(j, policy, logger),
		journal:  j,
		logger:   logger,
		cfg:      cfg,
	}
}

// MaxWorkflowRetries returns the workflow level retry budget
func (c *Coordinator) MaxWorkflowRetries() int {
	return c.cfg.MaxWorkflowRetries
}

// Drive claims the workflow lease and runs the workflow until it completes,
// rolls back, fails, or the context ends. Driving a workflow that needs no
// work is a no-op. ErrLeaseLost means another instance is driving it.
func (c *Coordinator) Drive(ctx context.Context, id models.ID) (err error) {
	ctx, span := telemetry.StartSpan(ctx, "saga.drive",
		trace.WithAttributes(attribute.String("workflow.id", id.String())),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	claimed, err := c.repo.Claim(ctx, id, c.cfg.InstanceID, c.cfg.LeaseTTL)
	if err != nil {
		return errors.Wrap(err, "failed to claim workflow")
	}
	if !claimed {
		return domain.ErrLeaseLost
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go c.holdLease(ctx, cancel, id)

	defer func() {
		releaseCtx, done := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer done()
		if relErr := c.repo.Release(releaseCtx, id, c.cfg.InstanceID); relErr != nil {
			c.logger.Warn().Err(relErr).Str("workflow_id", id.String()).Msg("failed to release lease")
		}
	}()

	wf, err := c.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	for {
		switch wf.Status {
		case domain.WorkflowStatusPending:
			wf, err = c.start(ctx, wf)
		case domain.WorkflowStatusRunning:
			wf, err = c.runForward(ctx, wf)
		case domain.WorkflowStatusRollingBack:
			wf, err = c.rollback(ctx, wf)
		default:
			c.logger.Debug().Str("workflow_id", id.String()).Str("status", wf.Status.String()).Msg("nothing to drive")
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func (c *Coordinator) start(ctx context.Context, wf *domain.Workflow) (*domain.Workflow, error) {
	return c.transition(ctx, domain.Transition{
		WorkflowID:     wf.ID,
		ExpectedStatus: domain.WorkflowStatusPending,
		Status:         domain.WorkflowStatusRunning,
		Reason:         "workflow started",
	})
}

// runForward executes steps in order until the workflow leaves running.
// The workflow is reloaded before every step so that a cancel recorded by
// another caller is observed between steps.
func (c *Coordinator) runForward(ctx context.Context, wf *domain.Workflow) (*domain.Workflow, error) {
	id := wf.ID
	for {
		wf, err := c.repo.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if wf.Status != domain.WorkflowStatusRunning {
			return wf, nil
		}

		step := nextStep(wf)
		if step == nil {
			wf, err = c.transition(ctx, domain.Transition{
				WorkflowID:     wf.ID,
				ExpectedStatus: domain.WorkflowStatusRunning,
				Status:         domain.WorkflowStatusCompleted,
				ErrorMessage:   stringPtr(""),
				Reason:         "all steps completed",
			})
			if err == nil {
				c.observeDuration(ctx, wf)
			}
			return wf, err
		}

		var outcome StepOutcome
		if step.Status == domain.StepStatusFailed {
			// The step failed but the workflow transition was never recorded.
			outcome = StepOutcome{Status: domain.StepStatusFailed, Err: errors.New(step.ErrorMessage)}
		} else {
			adapter, _ := c.resolver.Resolve(step.ActionKey())
			wf, outcome, err = c.executor.Execute(ctx, wf, step, adapter)
			if err != nil {
				return nil, err
			}
		}

		if outcome.Status == domain.StepStatusFailed {
			return c.fail(ctx, wf, step, outcome.Err)
		}
	}
}

// fail handles a step whose retries are exhausted
func (c *Coordinator) fail(ctx context.Context, wf *domain.Workflow, step *domain.WorkflowStep, cause error) (*domain.Workflow, error) {
	msg := fmt.Sprintf("step %s failed: %v", step.Name, cause)

	if !wf.RollbackOnFailure {
		return c.transition(ctx, domain.Transition{
			WorkflowID:     wf.ID,
			ExpectedStatus: domain.WorkflowStatusRunning,
			Status:         domain.WorkflowStatusFailed,
			ErrorMessage:   &msg,
			Retriable:      boolPtr(wf.RetryCount < c.cfg.MaxWorkflowRetries),
			Reason:         "step failed without rollback",
		})
	}

	return c.transition(ctx, domain.Transition{
		WorkflowID:     wf.ID,
		ExpectedStatus: domain.WorkflowStatusRunning,
		Status:         domain.WorkflowStatusRollingBack,
		Steps:          skipPending(wf),
		ErrorMessage:   &msg,
		Reason:         "step failed",
	})
}

// rollback compensates applied steps in strictly reverse order. A failed
// compensation is recorded and the remaining steps are still compensated.
func (c *Coordinator) rollback(ctx context.Context, current *domain.Workflow) (*domain.Workflow, error) {
	wf, err := c.repo.FindByID(ctx, current.ID)
	if err != nil {
		return nil, err
	}
	if wf.Status != domain.WorkflowStatusRollingBack {
		return wf, nil
	}

	if skipped := skipPending(wf); len(skipped) > 0 {
		wf, err = c.journal.append(ctx, domain.Transition{
			WorkflowID: wf.ID,
			Steps:      skipped,
			Reason:     "remaining steps skipped",
		})
		if err != nil {
			return nil, err
		}
	}

	for i := len(wf.Steps) - 1; i >= 0; i-- {
		step := wf.Steps[i]
		switch step.Status {
		case domain.StepStatusCompleted, domain.StepStatusCompensating, domain.StepStatusRunning:
		default:
			continue
		}

		adapter, _ := c.resolver.Resolve(step.ActionKey())
		wf, _, err = c.executor.Compensate(ctx, wf, step, adapter)
		if err != nil {
			return nil, err
		}
	}

	uncompensated := wf.UncompensatedSteps()
	if len(uncompensated) == 0 {
		wf, err = c.transition(ctx, domain.Transition{
			WorkflowID:     wf.ID,
			ExpectedStatus: domain.WorkflowStatusRollingBack,
			Status:         domain.WorkflowStatusRolledBack,
			Reason:         "all steps compensated",
		})
		if err == nil {
			c.observeDuration(ctx, wf)
		}
		return wf, err
	}

	msg := fmt.Sprintf("compensation failed for steps: %s", strings.Join(uncompensated, ", "))
	if wf.ErrorMessage != "" {
		msg = wf.ErrorMessage + "; " + msg
	}
	c.logger.Error().
		Str("workflow_id", wf.ID.String()).
		Strs("uncompensated_steps", uncompensated).
		Msg("workflow requires manual intervention")

	return c.transition(ctx, domain.Transition{
		WorkflowID:                 wf.ID,
		ExpectedStatus:             domain.WorkflowStatusRollingBack,
		Status:                     domain.WorkflowStatusFailed,
		ErrorMessage:               &msg,
		RequiresManualIntervention: boolPtr(true),
		Retriable:                  boolPtr(false),
		Reason:                     "compensation failed",
	})
}

// transition records a workflow status change. A lost compare-and-set means
// another caller changed the status first; the fresh state is returned and
// the drive loop continues from it.
func (c *Coordinator) transition(ctx context.Context, t domain.Transition) (*domain.Workflow, error) {
	wf, err := c.journal.append(ctx, t)
	if errors.Is(err, domain.ErrInvalidTransition) && t.ExpectedStatus != "" {
		current, findErr := c.repo.FindByID(ctx, t.WorkflowID)
		if findErr != nil {
			return nil, findErr
		}
		if current.Status != t.ExpectedStatus {
			c.logger.Info().
				Str("workflow_id", t.WorkflowID.String()).
				Str("expected", t.ExpectedStatus.String()).
				Str("actual", current.Status.String()).
				Msg("workflow changed concurrently")
			return current, nil
		}
	}
	if err != nil {
		return nil, err
	}

	c.logger.Info().
		Str("workflow_id", wf.ID.String()).
		Str("status", wf.Status.String()).
		Str("reason", t.Reason).
		Msg("workflow transition")
	return wf, nil
}

func (c *Coordinator) holdLease(ctx context.Context, cancel context.CancelFunc, id models.ID) {
	ticker := time.NewTicker(c.cfg.LeaseTTL / 3)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			ok, err := c.repo.Claim(ctx, id, c.cfg.InstanceID, c.cfg.LeaseTTL)
			if err != nil {
				c.logger.Warn().Err(err).Str("workflow_id", id.String()).Msg("failed to renew lease")
				continue
			}
			if !ok {
				c.logger.Error().Str("workflow_id", id.String()).Msg("lease lost, stopping drive")
				cancel()
				return
			}
		}
	}
}

func (c *Coordinator) observeDuration(ctx context.Context, wf *domain.Workflow) {
	if d, ok := wf.Duration(); ok {
		telemetry.RecordHistogram(ctx, "workflow_duration_seconds", "Workflow duration from start to terminal status",
			d.Seconds(),
			attribute.String("workflow_type", wf.Type.String()),
			attribute.String("status", wf.Status.String()),
		)
	}
}

// nextStep returns the first step forward execution has not moved past
func nextStep(wf *domain.Workflow) *domain.WorkflowStep {
	for _, s := range wf.Steps {
		if !s.Status.IsDone() {
			return s
		}
	}
	return nil
}

func skipPending(wf *domain.Workflow) []domain.StepChange {
	var changes []domain.StepChange
	for _, s := range wf.Steps {
		if s.Status == domain.StepStatusPending {
			changes = append(changes, domain.StepChange{StepID: s.ID, Status: domain.StepStatusSkipped})
		}
	}
	return changes
}
