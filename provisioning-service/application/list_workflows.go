package application

import (
	"context"

	"github.com/draftea/provisioning-system/provisioning-service/domain"
	"github.com/pkg/errors"
)

const (
	defaultPageSize = 50
	maxPageSize     = 500
)

// ListWorkflowsQuery represents the query to list workflows. Empty filters
// match everything.
type ListWorkflowsQuery struct {
	Status       string `json:"status,omitempty"`
	WorkflowType string `json:"workflow_type,omitempty"`
	CustomerID   string `json:"customer_id,omitempty"`
	Limit        int    `json:"limit,omitempty"`
	Offset       int    `json:"offset,omitempty"`
}

// ListWorkflowsResponse is one page of workflows, newest first
type ListWorkflowsResponse struct {
	Items       []*WorkflowResponse `json:"items"`
	TotalCount  int                 `json:"total_count"`
	HasNextPage bool                `json:"has_next_page"`
}

// ListWorkflows use case
type ListWorkflows struct {
	repo domain.WorkflowRepository
}

// NewListWorkflows creates a new ListWorkflows use case
func NewListWorkflows(repo domain.WorkflowRepository) *ListWorkflows {
	return &ListWorkflows{repo: repo}
}

// Execute executes the list workflows use case
func (uc *ListWorkflows) Execute(ctx context.Context, query *ListWorkflowsQuery) (*ListWorkflowsResponse, error) {
	filter, err := query.toFilter()
	if err != nil {
		return nil, err
	}

	page, err := uc.repo.List(ctx, filter)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list workflows")
	}

	items := make([]*WorkflowResponse, len(page.Items))
	for i, wf := range page.Items {
		items[i] = NewWorkflowResponse(wf)
	}
	return &ListWorkflowsResponse{
		Items:       items,
		TotalCount:  page.TotalCount,
		HasNextPage: page.HasNextPage,
	}, nil
}

func (q *ListWorkflowsQuery) toFilter() (domain.WorkflowFilter, error) {
	filter := domain.WorkflowFilter{
		CustomerID: q.CustomerID,
		Limit:      q.Limit,
		Offset:     q.Offset,
	}

	if q.Status != "" {
		status, err := domain.NewWorkflowStatus(q.Status)
		if err != nil {
			return filter, err
		}
		filter.Status = &status
	}
	if q.WorkflowType != "" {
		workflowType, err := domain.NewWorkflowType(q.WorkflowType)
		if err != nil {
			return filter, err
		}
		filter.Type = &workflowType
	}

	switch {
	case filter.Limit < 0 || filter.Offset < 0:
		return filter, errors.Wrap(domain.ErrInvalidInput, "limit and offset must not be negative")
	case filter.Limit == 0:
		filter.Limit = defaultPageSize
	case filter.Limit > maxPageSize:
		filter.Limit = maxPageSize
	}
	return filter, nil
}
