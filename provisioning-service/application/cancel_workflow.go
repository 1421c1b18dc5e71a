package application

import (
	"context"

	"github.com/draftea/provisioning-system/provisioning-service/domain"
	"github.com/draftea/provisioning-system/shared/events"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const cancelledMessage = "cancelled by request"

// CancelWorkflowCommand represents the command to cancel a workflow
type CancelWorkflowCommand struct {
	WorkflowID string `json:"workflow_id"`
}

// CancelWorkflow use case. A pending workflow is rolled back on the spot;
// a running one moves to rolling_back and the coordinator compensates it
// after the step in progress.
type CancelWorkflow struct {
	repo       domain.WorkflowRepository
	publisher  events.Publisher
	dispatcher WorkflowDispatcher
	logger     zerolog.Logger
}

// NewCancelWorkflow creates a new CancelWorkflow use case
func NewCancelWorkflow(
	repo domain.WorkflowRepository,
	publisher events.Publisher,
	dispatcher WorkflowDispatcher,
	logger zerolog.Logger,
) *CancelWorkflow {
	return &CancelWorkflow{
		repo:       repo,
		publisher:  publisher,
		dispatcher: dispatcher,
		logger:     logger.With().Str("use_case", "cancel_workflow").Logger(),
	}
}

// Execute executes the cancel workflow use case
func (uc *CancelWorkflow) Execute(ctx context.Context, cmd *CancelWorkflowCommand) (*WorkflowResponse, error) {
	id, err := parseWorkflowID(cmd.WorkflowID)
	if err != nil {
		return nil, err
	}

	// the coordinator may start a pending workflow between our read and write
	for attempt := 0; attempt < 2; attempt++ {
		wf, err := uc.repo.FindByID(ctx, id)
		if err != nil {
			return nil, errors.Wrap(err, "failed to find workflow")
		}

		t, err := cancelTransition(wf)
		if err != nil {
			return nil, err
		}

		updated, err := uc.repo.AppendTransition(ctx, t)
		if errors.Is(err, domain.ErrInvalidTransition) {
			continue
		}
		if err != nil {
			return nil, errors.Wrap(err, "failed to cancel workflow")
		}

		uc.logger.Info().
			Str("workflow_id", id.String()).
			Str("from", wf.Status.String()).
			Str("to", updated.Status.String()).
			Msg("workflow cancelled")

		evts := append([]*events.Event{updated.LifecycleEvent(events.WorkflowCancelRequestedEvent)}, updated.Events()...)
		updated.ClearEvents()
		publish(ctx, uc.publisher, uc.logger, evts...)

		if updated.Status == domain.WorkflowStatusRollingBack {
			uc.dispatcher.Dispatch(id)
		}
		return NewWorkflowResponse(updated), nil
	}

	return nil, errors.Wrapf(domain.ErrInvalidTransition, "workflow %s changed while cancelling", id)
}

func cancelTransition(wf *domain.Workflow) (domain.Transition, error) {
	msg := cancelledMessage

	switch wf.Status {
	case domain.WorkflowStatusPending:
		steps := make([]domain.StepChange, len(wf.Steps))
		for i, s := range wf.Steps {
			steps[i] = domain.StepChange{StepID: s.ID, Status: domain.StepStatusSkipped}
		}
		return domain.Transition{
			WorkflowID:     wf.ID,
			ExpectedStatus: domain.WorkflowStatusPending,
			Status:         domain.WorkflowStatusRolledBack,
			Steps:          steps,
			ErrorMessage:   &msg,
			Reason:         "cancelled before start",
		}, nil
	case domain.WorkflowStatusRunning:
		return domain.Transition{
			WorkflowID:     wf.ID,
			ExpectedStatus: domain.WorkflowStatusRunning,
			Status:         domain.WorkflowStatusRollingBack,
			ErrorMessage:   &msg,
			Reason:         "cancel requested",
		}, nil
	}

	return domain.Transition{}, errors.Wrapf(domain.ErrInvalidTransition, "workflow %s is %s and cannot be cancelled", wf.ID, wf.Status)
}
