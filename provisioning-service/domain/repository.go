package domain

import (
	"context"
	"time"

	"github.com/draftea/provisioning-system/shared/models"
)

// WorkflowFilter selects a page of workflows
type WorkflowFilter struct {
	Status     *WorkflowStatus
	Type       *WorkflowType
	CustomerID string
	Limit      int
	Offset     int
}

// WorkflowPage is one page of a workflow listing
type WorkflowPage struct {
	Items       []*Workflow
	TotalCount  int
	HasNextPage bool
}

// NewWorkflowPage computes the paging flags for items
func NewWorkflowPage(items []*Workflow, total int, filter WorkflowFilter) *WorkflowPage {
	return &WorkflowPage{
		Items:       items,
		TotalCount:  total,
		HasNextPage: filter.Offset+len(items) < total,
	}
}

// WorkflowStatistics aggregates all retained workflows
type WorkflowStatistics struct {
	Total                   int                    `json:"total"`
	Running                 int                    `json:"running"`
	ByStatus                map[WorkflowStatus]int `json:"by_status"`
	ByType                  map[WorkflowType]int   `json:"by_type"`
	AverageDurationSeconds  float64                `json:"average_duration_seconds"`
	SuccessRate             float64                `json:"success_rate"`
	CompensationCount       int                    `json:"compensation_count"`
	ManualInterventionCount int                    `json:"manual_intervention_count"`
}

// TransitionRecord is one audit row of a workflow's history
type TransitionRecord struct {
	ID         int64          `json:"id"`
	WorkflowID models.ID      `json:"workflow_id"`
	FromStatus WorkflowStatus `json:"from_status"`
	ToStatus   WorkflowStatus `json:"to_status"`
	StepID     models.ID      `json:"step_id,omitempty"`
	StepName   string         `json:"step_name,omitempty"`
	StepStatus StepStatus     `json:"step_status,omitempty"`
	Error      string         `json:"error,omitempty"`
	Reason     string         `json:"reason,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// WorkflowRepository is the durable, transactional workflow store
type WorkflowRepository interface {
	// Admit inserts a new workflow; ErrAdmissionConflict if the customer
	// already has an active one. The check and the insert are atomic.
	Admit(ctx context.Context, wf *Workflow) error
	FindByID(ctx context.Context, id models.ID) (*Workflow, error)
	// AppendTransition applies t atomically and returns the updated workflow
	// with the events the change produced.
	AppendTransition(ctx context.Context, t Transition) (*Workflow, error)
	Transitions(ctx context.Context, id models.ID) ([]*TransitionRecord, error)
	List(ctx context.Context, filter WorkflowFilter) (*WorkflowPage, error)
	Statistics(ctx context.Context) (*WorkflowStatistics, error)
	HasActiveWorkflow(ctx context.Context, customerID string) (bool, error)
	CountRunning(ctx context.Context) (int, error)
	// Claim takes or renews the driving lease of a workflow for owner.
	Claim(ctx context.Context, id models.ID, owner string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, id models.ID, owner string) error
	// ListRecoverable returns workflows that need driving and have no live lease.
	ListRecoverable(ctx context.Context, limit int) ([]models.ID, error)
}

// TransitionRecords derives the audit rows for a transition applied to a
// workflow that was in status from
func TransitionRecords(from WorkflowStatus, wf *Workflow, t Transition, at time.Time) []*TransitionRecord {
	to := wf.Status
	errMsg := ""
	if t.ErrorMessage != nil {
		errMsg = *t.ErrorMessage
	}

	if len(t.Steps) == 0 {
		return []*TransitionRecord{{
			WorkflowID: wf.ID,
			FromStatus: from,
			ToStatus:   to,
			Error:      errMsg,
			Reason:     t.Reason,
			OccurredAt: at,
		}}
	}

	records := make([]*TransitionRecord, 0, len(t.Steps))
	for _, change := range t.Steps {
		rec := &TransitionRecord{
			WorkflowID: wf.ID,
			FromStatus: from,
			ToStatus:   to,
			StepID:     change.StepID,
			StepStatus: change.Status,
			Error:      errMsg,
			Reason:     t.Reason,
			OccurredAt: at,
		}
		if step, ok := wf.Step(change.StepID); ok {
			rec.StepName = step.Name
		}
		if change.ErrorMessage != nil && *change.ErrorMessage != "" {
			rec.Error = *change.ErrorMessage
		}
		records = append(records, rec)
	}
	return records
}

// ComputeStatistics aggregates statistics over a set of workflows. Stores
// that cannot aggregate natively use it.
func ComputeStatistics(workflows []*Workflow) *WorkflowStatistics {
	stats := &WorkflowStatistics{
		ByStatus: make(map[WorkflowStatus]int),
		ByType:   make(map[WorkflowType]int),
	}

	var totalDuration time.Duration
	var finished, terminal int
	for _, wf := range workflows {
		stats.Total++
		stats.ByStatus[wf.Status]++
		stats.ByType[wf.Type]++

		if wf.NeedsDriving() {
			stats.Running++
		}
		if wf.Status == WorkflowStatusCompleted {
			if d, ok := wf.Duration(); ok {
				totalDuration += d
				finished++
			}
		}
		if wf.IsTerminal() {
			terminal++
		}
		if wf.RequiresManualIntervention {
			stats.ManualInterventionCount++
		}
		for _, s := range wf.Steps {
			if s.Status == StepStatusCompensated || s.Status == StepStatusCompensationFailed {
				stats.CompensationCount++
				break
			}
		}
	}

	if finished > 0 {
		stats.AverageDurationSeconds = totalDuration.Seconds() / float64(finished)
	}
	if terminal > 0 {
		stats.SuccessRate = float64(stats.ByStatus[WorkflowStatusCompleted]) / float64(terminal)
	}
	return stats
}
