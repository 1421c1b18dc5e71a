package domain

import (
	"encoding/json"
	"time"

	"github.com/draftea/provisioning-system/shared/models"
)

// WorkflowStep is one unit of work against one target system
type WorkflowStep struct {
	ID                     models.ID       `json:"id"`
	Name                   string          `json:"name"`
	TargetSystem           string          `json:"target_system"`
	Action                 string          `json:"action"`
	Order                  int             `json:"order"`
	Status                 StepStatus      `json:"status"`
	RetryCount             int             `json:"retry_count"`
	CompensationRetryCount int             `json:"compensation_retry_count"`
	ErrorMessage           string          `json:"error_message,omitempty"`
	Output                 json.RawMessage `json:"output,omitempty"`
	StartedAt              *time.Time      `json:"started_at,omitempty"`
	CompletedAt            *time.Time      `json:"completed_at,omitempty"`
	FailedAt               *time.Time      `json:"failed_at,omitempty"`
}

// NewWorkflowStep creates a pending step from a template entry
func NewWorkflowStep(def StepDefinition, order int) *WorkflowStep {
	return &WorkflowStep{
		ID:           models.GenerateUUID(),
		Name:         def.Name,
		TargetSystem: def.TargetSystem,
		Action:       def.Action,
		Order:        order,
		Status:       StepStatusPending,
	}
}

// ActionKey is the adapter registry key for the step
func (s *WorkflowStep) ActionKey() string {
	return s.TargetSystem + "." + s.Action
}

// Apply records a step status change with its timestamps
func (s *WorkflowStep) Apply(change StepChange, at time.Time) {
	s.Status = change.Status
	if change.RetryCount != nil {
		s.RetryCount = *change.RetryCount
	}
	if change.CompensationRetryCount != nil {
		s.CompensationRetryCount = *change.CompensationRetryCount
	}
	if change.ErrorMessage != nil {
		s.ErrorMessage = *change.ErrorMessage
	}
	if change.Output != nil {
		s.Output = change.Output
	}

	switch change.Status {
	case StepStatusRunning:
		if s.StartedAt == nil {
			s.StartedAt = models.TimePtr(at)
		}
	case StepStatusCompleted:
		s.CompletedAt = models.TimePtr(at)
		s.FailedAt = nil
	case StepStatusFailed, StepStatusCompensationFailed:
		s.FailedAt = models.TimePtr(at)
	case StepStatusPending:
		s.StartedAt = nil
		s.CompletedAt = nil
		s.FailedAt = nil
	}
}

// Clone returns a deep copy of the step
func (s *WorkflowStep) Clone() *WorkflowStep {
	c := *s
	if s.Output != nil {
		c.Output = append(json.RawMessage(nil), s.Output...)
	}
	c.StartedAt = cloneTime(s.StartedAt)
	c.CompletedAt = cloneTime(s.CompletedAt)
	c.FailedAt = cloneTime(s.FailedAt)
	return &c
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
