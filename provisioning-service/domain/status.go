package domain

import "github.com/pkg/errors"

// WorkflowStatus represents the lifecycle status of a workflow
type WorkflowStatus string

const (
	WorkflowStatusPending     WorkflowStatus = "pending"
	WorkflowStatusRunning     WorkflowStatus = "running"
	WorkflowStatusCompleted   WorkflowStatus = "completed"
	WorkflowStatusFailed      WorkflowStatus = "failed"
	WorkflowStatusRollingBack WorkflowStatus = "rolling_back"
	WorkflowStatusRolledBack  WorkflowStatus = "rolled_back"
)

// AllWorkflowStatuses lists every workflow status in lifecycle order.
var AllWorkflowStatuses = []WorkflowStatus{
	WorkflowStatusPending,
	WorkflowStatusRunning,
	WorkflowStatusCompleted,
	WorkflowStatusFailed,
	WorkflowStatusRollingBack,
	WorkflowStatusRolledBack,
}

// NewWorkflowStatus parses a workflow status
func NewWorkflowStatus(value string) (WorkflowStatus, error) {
	for _, s := range AllWorkflowStatuses {
		if string(s) == value {
			return s, nil
		}
	}
	return "", errors.Wrapf(ErrInvalidInput, "unknown workflow status %q", value)
}

func (s WorkflowStatus) String() string {
	return string(s)
}

// workflowTransitions is the legal edge set of the workflow state machine.
var workflowTransitions = map[WorkflowStatus][]WorkflowStatus{
	WorkflowStatusPending:     {WorkflowStatusRunning, WorkflowStatusRolledBack},
	WorkflowStatusRunning:     {WorkflowStatusCompleted, WorkflowStatusRollingBack, WorkflowStatusFailed},
	WorkflowStatusRollingBack: {WorkflowStatusRolledBack, WorkflowStatusFailed},
	WorkflowStatusFailed:      {WorkflowStatusRunning},
}

// CanTransitionTo reports whether moving from s to next is a legal edge
func (s WorkflowStatus) CanTransitionTo(next WorkflowStatus) bool {
	for _, allowed := range workflowTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// StepStatus represents the status of a single workflow step
type StepStatus string

const (
	StepStatusPending            StepStatus = "pending"
	StepStatusRunning            StepStatus = "running"
	StepStatusCompleted          StepStatus = "completed"
	StepStatusFailed             StepStatus = "failed"
	StepStatusSkipped            StepStatus = "skipped"
	StepStatusCompensating       StepStatus = "compensating"
	StepStatusCompensated        StepStatus = "compensated"
	StepStatusCompensationFailed StepStatus = "compensation_failed"
)

var allStepStatuses = []StepStatus{
	StepStatusPending,
	StepStatusRunning,
	StepStatusCompleted,
	StepStatusFailed,
	StepStatusSkipped,
	StepStatusCompensating,
	StepStatusCompensated,
	StepStatusCompensationFailed,
}

// NewStepStatus parses a step status
func NewStepStatus(value string) (StepStatus, error) {
	for _, s := range allStepStatuses {
		if string(s) == value {
			return s, nil
		}
	}
	return "", errors.Wrapf(ErrInvalidInput, "unknown step status %q", value)
}

func (s StepStatus) String() string {
	return string(s)
}

// IsTerminal reports whether no further automatic transition happens for the step
func (s StepStatus) IsTerminal() bool {
	switch s {
	case StepStatusCompleted, StepStatusFailed, StepStatusSkipped,
		StepStatusCompensated, StepStatusCompensationFailed:
		return true
	}
	return false
}

// IsDone reports whether forward execution may move past the step
func (s StepStatus) IsDone() bool {
	return s == StepStatusCompleted || s == StepStatusSkipped
}

// NeedsCompensation reports whether the step holds an applied resource that
// has not been undone yet
func (s StepStatus) NeedsCompensation() bool {
	return s == StepStatusCompleted || s == StepStatusCompensating
}
