package application

import (
	"context"

	"github.com/draftea/provisioning-system/provisioning-service/domain"
	"github.com/pkg/errors"
)

// RunningWorkflows answers questions about workflows that are not finished
type RunningWorkflows struct {
	repo domain.WorkflowRepository
}

// NewRunningWorkflows creates a new RunningWorkflows use case
func NewRunningWorkflows(repo domain.WorkflowRepository) *RunningWorkflows {
	return &RunningWorkflows{repo: repo}
}

// HasRunningWorkflowForCustomer reports whether the customer holds the
// active workflow slot
func (uc *RunningWorkflows) HasRunningWorkflowForCustomer(ctx context.Context, customerID string) (bool, error) {
	if customerID == "" {
		return false, errors.Wrap(domain.ErrInvalidInput, "customer ID is required")
	}

	active, err := uc.repo.HasActiveWorkflow(ctx, customerID)
	if err != nil {
		return false, errors.Wrap(err, "failed to check active workflow")
	}
	return active, nil
}

// Count returns the number of workflows pending, running or rolling back
func (uc *RunningWorkflows) Count(ctx context.Context) (int, error) {
	n, err := uc.repo.CountRunning(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "failed to count running workflows")
	}
	return n, nil
}
