package application

import (
	"context"

	"github.com/draftea/provisioning-system/provisioning-service/domain"
	"github.com/pkg/errors"
)

// GetWorkflowTransitionsQuery represents the query for a workflow's history
type GetWorkflowTransitionsQuery struct {
	WorkflowID string `json:"workflow_id"`
}

// GetWorkflowTransitionsResponse lists transitions oldest first
type GetWorkflowTransitionsResponse struct {
	WorkflowID  string                     `json:"workflow_id"`
	Transitions []*domain.TransitionRecord `json:"transitions"`
}

// GetWorkflowTransitions use case
type GetWorkflowTransitions struct {
	repo domain.WorkflowRepository
}

// NewGetWorkflowTransitions creates a new GetWorkflowTransitions use case
func NewGetWorkflowTransitions(repo domain.WorkflowRepository) *GetWorkflowTransitions {
	return &GetWorkflowTransitions{repo: repo}
}

// Execute executes the get workflow transitions use case
func (uc *GetWorkflowTransitions) Execute(ctx context.Context, query *GetWorkflowTransitionsQuery) (*GetWorkflowTransitionsResponse, error) {
	id, err := parseWorkflowID(query.WorkflowID)
	if err != nil {
		return nil, err
	}

	records, err := uc.repo.Transitions(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load transitions")
	}

	return &GetWorkflowTransitionsResponse{
		WorkflowID:  id.String(),
		Transitions: records,
	}, nil
}
