package application

import (
	"context"

	"github.com/draftea/provisioning-system/provisioning-service/domain"
	"github.com/draftea/provisioning-system/shared/events"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// RetryWorkflowCommand represents the command to retry a failed workflow
type RetryWorkflowCommand struct {
	WorkflowID string `json:"workflow_id"`
}

// RetryWorkflow use case. The workflow keeps its ID and resumes at its
// first step that is not completed.
type RetryWorkflow struct {
	repo       domain.WorkflowRepository
	publisher  events.Publisher
	dispatcher WorkflowDispatcher
	logger     zerolog.Logger
}

// NewRetryWorkflow creates a new RetryWorkflow use case
func NewRetryWorkflow(
	repo domain.WorkflowRepository,
	publisher events.Publisher,
	dispatcher WorkflowDispatcher,
	logger zerolog.Logger,
) *RetryWorkflow {
	return &RetryWorkflow{
		repo:       repo,
		publisher:  publisher,
		dispatcher: dispatcher,
		logger:     logger.With().Str("use_case", "retry_workflow").Logger(),
	}
}

// Execute executes the retry workflow use case
func (uc *RetryWorkflow) Execute(ctx context.Context, cmd *RetryWorkflowCommand) (*WorkflowResponse, error) {
	id, err := parseWorkflowID(cmd.WorkflowID)
	if err != nil {
		return nil, err
	}

	wf, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, "failed to find workflow")
	}

	if wf.Status != domain.WorkflowStatusFailed || !wf.Retriable {
		return nil, errors.Wrapf(domain.ErrInvalidTransition, "workflow %s is %s and not retriable", wf.ID, wf.Status)
	}

	var steps []domain.StepChange
	empty := ""
	for _, s := range wf.Steps {
		if s.Status == domain.StepStatusCompleted {
			continue
		}
		zero := 0
		steps = append(steps, domain.StepChange{
			StepID:                 s.ID,
			Status:                 domain.StepStatusPending,
			RetryCount:             &zero,
			CompensationRetryCount: &zero,
			ErrorMessage:           &empty,
		})
	}

	updated, err := uc.repo.AppendTransition(ctx, domain.Transition{
		WorkflowID:          wf.ID,
		ExpectedStatus:      domain.WorkflowStatusFailed,
		Status:              domain.WorkflowStatusRunning,
		Steps:               steps,
		ErrorMessage:        &empty,
		IncrementRetryCount: true,
		Reason:              "retry requested",
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to retry workflow")
	}

	uc.logger.Info().
		Str("workflow_id", id.String()).
		Int("retry_count", updated.RetryCount).
		Int("resume_at", updated.CompletedSteps()+1).
		Msg("workflow retried")

	evts := append([]*events.Event{updated.LifecycleEvent(events.WorkflowRetriedEvent)}, updated.Events()...)
	updated.ClearEvents()
	publish(ctx, uc.publisher, uc.logger, evts...)

	uc.dispatcher.Dispatch(id)
	return NewWorkflowResponse(updated), nil
}
