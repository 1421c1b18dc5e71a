package domain

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/draftea/provisioning-system/shared/events"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWorkflow(t *testing.T, rollbackOnFailure bool) *Workflow {
	t.Helper()
	steps, err := BuildSteps(WorkflowTypeChangeServicePlan, FeatureToggles{})
	require.NoError(t, err)
	wf, err := NewWorkflow("customer-1", WorkflowTypeChangeServicePlan, steps, json.RawMessage(`{"plan":"gold"}`), rollbackOnFailure)
	require.NoError(t, err)
	return wf
}

func TestNewWorkflow(t *testing.T) {
	wf := newWorkflow(t, true)

	assert.Equal(t, WorkflowStatusPending, wf.Status)
	assert.Equal(t, 4, wf.TotalSteps())
	assert.Equal(t, 0, wf.CompletedSteps())
	assert.True(t, wf.IsActive())
	assert.True(t, wf.NeedsDriving())
	require.Len(t, wf.Events(), 1)
	assert.Equal(t, events.WorkflowCreatedEvent, wf.Events()[0].EventType)

	_, err := NewWorkflow("", WorkflowTypeChangeServicePlan, wf.Steps, nil, true)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = NewWorkflow("customer-1", WorkflowTypeChangeServicePlan, nil, nil, true)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestWorkflowStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from     WorkflowStatus
		to       WorkflowStatus
		expected bool
	}{
		{WorkflowStatusPending, WorkflowStatusRunning, true},
		{WorkflowStatusPending, WorkflowStatusRolledBack, true},
		{WorkflowStatusPending, WorkflowStatusCompleted, false},
		{WorkflowStatusRunning, WorkflowStatusCompleted, true},
		{WorkflowStatusRunning, WorkflowStatusRollingBack, true},
		{WorkflowStatusRunning, WorkflowStatusFailed, true},
		{WorkflowStatusRunning, WorkflowStatusPending, false},
		{WorkflowStatusRollingBack, WorkflowStatusRolledBack, true},
		{WorkflowStatusRollingBack, WorkflowStatusFailed, true},
		{WorkflowStatusRollingBack, WorkflowStatusRunning, false},
		{WorkflowStatusFailed, WorkflowStatusRunning, true},
		{WorkflowStatusCompleted, WorkflowStatusRunning, false},
		{WorkflowStatusRolledBack, WorkflowStatusRunning, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, tt.from.CanTransitionTo(tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestWorkflow_ApplyTransition(t *testing.T) {
	at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name          string
		prepare       func(wf *Workflow)
		transition    func(wf *Workflow) Transition
		expectedError error
		verify        func(t *testing.T, wf *Workflow)
	}{
		{
			name: "start sets started at and emits event",
			transition: func(wf *Workflow) Transition {
				return Transition{WorkflowID: wf.ID, ExpectedStatus: WorkflowStatusPending, Status: WorkflowStatusRunning}
			},
			verify: func(t *testing.T, wf *Workflow) {
				assert.Equal(t, WorkflowStatusRunning, wf.Status)
				assert.Equal(t, at, *wf.StartedAt)
				assert.Equal(t, events.WorkflowStartedEvent, wf.Events()[0].EventType)
				assert.Equal(t, 2, wf.Version.Value)
			},
		},
		{
			name: "expected status mismatch",
			transition: func(wf *Workflow) Transition {
				return Transition{WorkflowID: wf.ID, ExpectedStatus: WorkflowStatusRunning, Status: WorkflowStatusRollingBack}
			},
			expectedError: ErrInvalidTransition,
		},
		{
			name: "illegal edge",
			transition: func(wf *Workflow) Transition {
				return Transition{WorkflowID: wf.ID, Status: WorkflowStatusFailed}
			},
			expectedError: ErrInvalidTransition,
		},
		{
			name: "unknown step",
			transition: func(wf *Workflow) Transition {
				return Transition{WorkflowID: wf.ID, Steps: []StepChange{{StepID: "missing", Status: StepStatusRunning}}}
			},
			expectedError: ErrInvalidInput,
		},
		{
			name: "completing with unfinished steps is rejected",
			prepare: func(wf *Workflow) {
				wf.Status = WorkflowStatusRunning
			},
			transition: func(wf *Workflow) Transition {
				return Transition{WorkflowID: wf.ID, Status: WorkflowStatusCompleted}
			},
			expectedError: ErrInvalidTransition,
		},
		{
			name: "step completion records output and event",
			prepare: func(wf *Workflow) {
				wf.Status = WorkflowStatusRunning
			},
			transition: func(wf *Workflow) Transition {
				return Transition{
					WorkflowID: wf.ID,
					Steps: []StepChange{{
						StepID: wf.Steps[0].ID,
						Status: StepStatusCompleted,
						Output: json.RawMessage(`{"profile":"gold"}`),
					}},
				}
			},
			verify: func(t *testing.T, wf *Workflow) {
				assert.Equal(t, WorkflowStatusRunning, wf.Status)
				assert.Equal(t, StepStatusCompleted, wf.Steps[0].Status)
				assert.Equal(t, at, *wf.Steps[0].CompletedAt)
				assert.Equal(t, 1, wf.CompletedSteps())
				require.Len(t, wf.Events(), 1)
				assert.Equal(t, events.WorkflowStepCompletedEvent, wf.Events()[0].EventType)
			},
		},
		{
			name: "retriable flag only sticks on failed",
			prepare: func(wf *Workflow) {
				wf.Status = WorkflowStatusRunning
			},
			transition: func(wf *Workflow) Transition {
				retriable := true
				return Transition{WorkflowID: wf.ID, Status: WorkflowStatusFailed, Retriable: &retriable}
			},
			verify: func(t *testing.T, wf *Workflow) {
				assert.True(t, wf.Retriable)
				assert.False(t, wf.IsTerminal())
				assert.True(t, wf.IsActive())
				assert.False(t, wf.NeedsDriving())
				assert.Equal(t, at, *wf.FailedAt)
			},
		},
		{
			name: "retry clears failure flags",
			prepare: func(wf *Workflow) {
				wf.Status = WorkflowStatusFailed
				wf.Retriable = true
				wf.FailedAt = &at
			},
			transition: func(wf *Workflow) Transition {
				return Transition{WorkflowID: wf.ID, ExpectedStatus: WorkflowStatusFailed, Status: WorkflowStatusRunning, IncrementRetryCount: true}
			},
			verify: func(t *testing.T, wf *Workflow) {
				assert.Equal(t, 1, wf.RetryCount)
				assert.False(t, wf.Retriable)
				assert.Nil(t, wf.FailedAt)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wf := newWorkflow(t, true)
			wf.ClearEvents()
			if tt.prepare != nil {
				tt.prepare(wf)
			}

			err := wf.ApplyTransition(tt.transition(wf), at)

			if tt.expectedError != nil {
				assert.True(t, errors.Is(err, tt.expectedError), "got %v", err)
				return
			}
			require.NoError(t, err)
			tt.verify(t, wf)
		})
	}
}

func TestWorkflow_CloneIsDeep(t *testing.T) {
	wf := newWorkflow(t, true)
	wf.Steps[0].Output = json.RawMessage(`{"a":1}`)

	c := wf.Clone()
	c.Steps[0].Status = StepStatusCompleted
	c.Steps[0].Output[2] = 'b'
	c.Input[0] = '['

	assert.Equal(t, StepStatusPending, wf.Steps[0].Status)
	assert.JSONEq(t, `{"a":1}`, string(wf.Steps[0].Output))
	assert.JSONEq(t, `{"plan":"gold"}`, string(wf.Input))
	assert.Empty(t, c.Events())
}

func TestWorkflow_Duration(t *testing.T) {
	wf := newWorkflow(t, true)
	_, ok := wf.Duration()
	assert.False(t, ok)

	start := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	end := start.Add(90 * time.Second)
	wf.StartedAt = &start
	wf.CompletedAt = &end

	d, ok := wf.Duration()
	assert.True(t, ok)
	assert.Equal(t, 90*time.Second, d)
}

func TestComputeStatistics(t *testing.T) {
	start := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	end := start.Add(10 * time.Second)

	completed := newWorkflow(t, true)
	completed.Status = WorkflowStatusCompleted
	completed.StartedAt, completed.CompletedAt = &start, &end

	rolledBack := newWorkflow(t, true)
	rolledBack.Status = WorkflowStatusRolledBack
	rolledBack.Steps[0].Status = StepStatusCompensated

	manual := newWorkflow(t, true)
	manual.Status = WorkflowStatusFailed
	manual.RequiresManualIntervention = true
	manual.Steps[0].Status = StepStatusCompensationFailed

	running := newWorkflow(t, true)
	running.Status = WorkflowStatusRunning

	stats := ComputeStatistics([]*Workflow{completed, rolledBack, manual, running})

	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 1, stats.Running)
	assert.Equal(t, 1, stats.ByStatus[WorkflowStatusFailed])
	assert.Equal(t, 4, stats.ByType[WorkflowTypeChangeServicePlan])
	assert.InDelta(t, 10.0, stats.AverageDurationSeconds, 0.001)
	assert.InDelta(t, 1.0/3.0, stats.SuccessRate, 0.001)
	assert.Equal(t, 2, stats.CompensationCount)
	assert.Equal(t, 1, stats.ManualInterventionCount)
}

func TestIsRetriable(t *testing.T) {
	assert.False(t, IsRetriable(nil))
	assert.False(t, IsRetriable(errors.New("reset by peer")))
	assert.False(t, IsRetriable(errors.Wrap(context.DeadlineExceeded, "apply")))
	assert.True(t, IsRetriable(errors.Wrap(NewRetriableError("olt", "register_onu", errors.New("busy")), "apply")))
	assert.False(t, IsRetriable(NewPermanentError("olt", "register_onu", "http_400", errors.New("bad serial"))))

	err := NewPermanentError("olt", "register_onu", "http_400", errors.New("bad serial"))
	assert.Equal(t, "olt register_onu: bad serial (http_400)", err.Error())
}
