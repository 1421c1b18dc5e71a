package application

import (
	"context"

	"github.com/draftea/provisioning-system/provisioning-service/domain"
	"github.com/pkg/errors"
)

// WorkflowStatistics use case
type WorkflowStatistics struct {
	repo domain.WorkflowRepository
}

// NewWorkflowStatistics creates a new WorkflowStatistics use case
func NewWorkflowStatistics(repo domain.WorkflowRepository) *WorkflowStatistics {
	return &WorkflowStatistics{repo: repo}
}

// Execute aggregates every retained workflow
func (uc *WorkflowStatistics) Execute(ctx context.Context) (*domain.WorkflowStatistics, error) {
	stats, err := uc.repo.Statistics(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to compute workflow statistics")
	}
	return stats, nil
}
