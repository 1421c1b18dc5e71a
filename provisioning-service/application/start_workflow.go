package application

import (
	"context"
	"encoding/json"

	"github.com/draftea/provisioning-system/provisioning-service/domain"
	"github.com/draftea/provisioning-system/shared/events"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// StartWorkflowCommand represents the command to start a lifecycle workflow
// other than subscriber provisioning
type StartWorkflowCommand struct {
	CustomerID        string          `json:"customer_id" validate:"required,max=128"`
	WorkflowType      string          `json:"workflow_type" validate:"required"`
	Input             json.RawMessage `json:"input,omitempty"`
	RollbackOnFailure *bool           `json:"rollback_on_failure,omitempty"`
}

// StartWorkflow use case
type StartWorkflow struct {
	admission
}

// NewStartWorkflow creates a new StartWorkflow use case
func NewStartWorkflow(
	repo domain.WorkflowRepository,
	publisher events.Publisher,
	dispatcher WorkflowDispatcher,
	logger zerolog.Logger,
) *StartWorkflow {
	return &StartWorkflow{
		admission: admission{
			repo:       repo,
			publisher:  publisher,
			dispatcher: dispatcher,
			logger:     logger.With().Str("use_case", "start_workflow").Logger(),
		},
	}
}

// Execute executes the start workflow use case
func (uc *StartWorkflow) Execute(ctx context.Context, cmd *StartWorkflowCommand) (*domain.ProvisioningResult, error) {
	if cmd == nil {
		return nil, errors.Wrap(domain.ErrInvalidInput, "command is required")
	}
	if err := validate.Struct(cmd); err != nil {
		return nil, validationError(err)
	}

	workflowType, err := domain.NewWorkflowType(cmd.WorkflowType)
	if err != nil {
		return nil, err
	}
	if workflowType == domain.WorkflowTypeProvisionSubscriber {
		return nil, errors.Wrap(domain.ErrInvalidInput, "provision_subscriber workflows are started through subscriber provisioning")
	}
	if len(cmd.Input) > 0 && !json.Valid(cmd.Input) {
		return nil, errors.Wrap(domain.ErrInvalidInput, "input is not valid JSON")
	}

	steps, err := domain.BuildSteps(workflowType, domain.FeatureToggles{})
	if err != nil {
		return nil, err
	}

	rollback := true
	if cmd.RollbackOnFailure != nil {
		rollback = *cmd.RollbackOnFailure
	}

	return uc.admit(ctx, cmd.CustomerID, workflowType, steps, cmd.Input, rollback)
}
