package application

import (
	"context"

	"github.com/draftea/provisioning-system/provisioning-service/domain"
	"github.com/pkg/errors"
)

// GetWorkflowQuery represents the query to get a workflow
type GetWorkflowQuery struct {
	WorkflowID string `json:"workflow_id"`
}

// GetWorkflow use case
type GetWorkflow struct {
	repo domain.WorkflowRepository
}

// NewGetWorkflow creates a new GetWorkflow use case
func NewGetWorkflow(repo domain.WorkflowRepository) *GetWorkflow {
	return &GetWorkflow{repo: repo}
}

// Execute executes the get workflow use case
func (uc *GetWorkflow) Execute(ctx context.Context, query *GetWorkflowQuery) (*WorkflowResponse, error) {
	id, err := parseWorkflowID(query.WorkflowID)
	if err != nil {
		return nil, err
	}

	wf, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, "failed to find workflow")
	}

	return NewWorkflowResponse(wf), nil
}
