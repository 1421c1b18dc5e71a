package domain

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/draftea/provisioning-system/shared/events"
	"github.com/draftea/provisioning-system/shared/models"
	"github.com/pkg/errors"
)

// Workflow aggregate root: one provisioning attempt for one customer
type Workflow struct {
	ID                         models.ID       `json:"id"`
	CustomerID                 string          `json:"customer_id"`
	Type                       WorkflowType    `json:"workflow_type"`
	Status                     WorkflowStatus  `json:"status"`
	Steps                      []*WorkflowStep `json:"steps"`
	Input                      json.RawMessage `json:"input,omitempty"`
	RollbackOnFailure          bool            `json:"rollback_on_failure"`
	RetryCount                 int             `json:"retry_count"`
	ErrorMessage               string          `json:"error_message,omitempty"`
	RequiresManualIntervention bool            `json:"requires_manual_intervention"`
	Retriable                  bool            `json:"retriable"`
	StartedAt                  *time.Time      `json:"started_at,omitempty"`
	CompletedAt                *time.Time      `json:"completed_at,omitempty"`
	FailedAt                   *time.Time      `json:"failed_at,omitempty"`

	Timestamps     models.Timestamps `json:"-"`
	Version        models.Version    `json:"-"`
	LeaseOwner     string            `json:"-"`
	LeaseExpiresAt *time.Time        `json:"-"`

	events []*events.Event
}

// NewWorkflow creates a pending workflow with its steps already materialized
func NewWorkflow(customerID string, workflowType WorkflowType, steps []*WorkflowStep, input json.RawMessage, rollbackOnFailure bool) (*Workflow, error) {
	if customerID == "" {
		return nil, errors.Wrap(ErrInvalidInput, "customer ID is required")
	}
	if len(steps) == 0 {
		return nil, errors.Wrap(ErrInvalidInput, "workflow needs at least one step")
	}

	wf := &Workflow{
		ID:                models.GenerateUUID(),
		CustomerID:        customerID,
		Type:              workflowType,
		Status:            WorkflowStatusPending,
		Steps:             steps,
		Input:             input,
		RollbackOnFailure: rollbackOnFailure,
		Timestamps:        models.NewTimestamps(),
		Version:           models.NewVersion(),
	}
	if err := wf.Validate(); err != nil {
		return nil, err
	}

	wf.recordEvent(events.WorkflowCreatedEvent, nil)
	return wf, nil
}

// CreatedAt returns the admission time
func (w *Workflow) CreatedAt() time.Time {
	return w.Timestamps.CreatedAt
}

// TotalSteps returns the number of steps in the workflow
func (w *Workflow) TotalSteps() int {
	return len(w.Steps)
}

// CompletedSteps returns the number of steps currently completed
func (w *Workflow) CompletedSteps() int {
	n := 0
	for _, s := range w.Steps {
		if s.Status == StepStatusCompleted {
			n++
		}
	}
	return n
}

// Step returns the step with the given ID
func (w *Workflow) Step(id models.ID) (*WorkflowStep, bool) {
	for _, s := range w.Steps {
		if s.ID == id {
			return s, true
		}
	}
	return nil, false
}

// IsTerminal reports whether the workflow no longer moves without operator action
func (w *Workflow) IsTerminal() bool {
	switch w.Status {
	case WorkflowStatusCompleted, WorkflowStatusRolledBack:
		return true
	case WorkflowStatusFailed:
		return !w.Retriable
	}
	return false
}

// IsActive reports whether the workflow holds the customer's single active slot
func (w *Workflow) IsActive() bool {
	return !w.IsTerminal()
}

// NeedsDriving reports whether the coordinator has work to do on the workflow
func (w *Workflow) NeedsDriving() bool {
	switch w.Status {
	case WorkflowStatusPending, WorkflowStatusRunning, WorkflowStatusRollingBack:
		return true
	}
	return false
}

// SortSteps orders steps by ascending order index
func (w *Workflow) SortSteps() {
	sort.SliceStable(w.Steps, func(i, j int) bool {
		return w.Steps[i].Order < w.Steps[j].Order
	})
}

// Validate checks that the status agrees with the step statuses and that
// step order indices are unique and ascending
func (w *Workflow) Validate() error {
	for i, s := range w.Steps {
		if i > 0 && s.Order <= w.Steps[i-1].Order {
			return errors.Wrapf(ErrInvalidInput, "step %q order %d is not strictly increasing", s.Name, s.Order)
		}
	}
	if w.CompletedSteps() > w.TotalSteps() {
		return errors.New("completed steps exceed total steps")
	}

	switch w.Status {
	case WorkflowStatusPending:
		for _, s := range w.Steps {
			if s.Status != StepStatusPending {
				return errors.Errorf("pending workflow has %s step %q", s.Status, s.Name)
			}
		}
	case WorkflowStatusCompleted:
		for _, s := range w.Steps {
			if !s.Status.IsDone() {
				return errors.Errorf("completed workflow has %s step %q", s.Status, s.Name)
			}
		}
	case WorkflowStatusRolledBack:
		for _, s := range w.Steps {
			switch s.Status {
			case StepStatusCompleted, StepStatusRunning, StepStatusCompensating, StepStatusCompensationFailed:
				return errors.Errorf("rolled back workflow has %s step %q", s.Status, s.Name)
			}
		}
	}
	return nil
}

// Transition is an append-only state change applied atomically by the store
type Transition struct {
	WorkflowID     models.ID
	ExpectedStatus WorkflowStatus
	Status         WorkflowStatus
	Steps          []StepChange
	ErrorMessage   *string
	// RequiresManualIntervention and Retriable are only meaningful with Status failed
	RequiresManualIntervention *bool
	Retriable                  *bool
	IncrementRetryCount        bool
	Reason                     string
}

// StepChange is the step part of a transition
type StepChange struct {
	StepID                 models.ID
	Status                 StepStatus
	RetryCount             *int
	CompensationRetryCount *int
	ErrorMessage           *string
	Output                 json.RawMessage
}

// ApplyTransition validates and applies a transition in memory. It is the
// single definition of transition semantics shared by every store.
func (w *Workflow) ApplyTransition(t Transition, at time.Time) error {
	if t.ExpectedStatus != "" && w.Status != t.ExpectedStatus {
		return errors.Wrapf(ErrInvalidTransition, "workflow %s is %s, expected %s", w.ID, w.Status, t.ExpectedStatus)
	}
	if t.Status != "" && t.Status != w.Status && !w.Status.CanTransitionTo(t.Status) {
		return errors.Wrapf(ErrInvalidTransition, "workflow %s cannot move from %s to %s", w.ID, w.Status, t.Status)
	}

	for _, change := range t.Steps {
		step, ok := w.Step(change.StepID)
		if !ok {
			return errors.Wrapf(ErrInvalidInput, "workflow %s has no step %s", w.ID, change.StepID)
		}
		step.Apply(change, at)
		w.recordStepEvent(step)
	}

	if t.ErrorMessage != nil {
		w.ErrorMessage = *t.ErrorMessage
	}
	if t.IncrementRetryCount {
		w.RetryCount++
	}

	if t.Status != "" && t.Status != w.Status {
		w.Status = t.Status
		switch t.Status {
		case WorkflowStatusRunning:
			if w.StartedAt == nil {
				w.StartedAt = models.TimePtr(at)
			}
			w.FailedAt = nil
			w.RequiresManualIntervention = false
		case WorkflowStatusCompleted, WorkflowStatusRolledBack:
			w.CompletedAt = models.TimePtr(at)
		case WorkflowStatusFailed:
			w.FailedAt = models.TimePtr(at)
		}
		if t.Status != WorkflowStatusFailed {
			w.Retriable = false
		}
		w.recordEvent(workflowStatusTopic(t.Status), nil)
	}

	if t.RequiresManualIntervention != nil {
		w.RequiresManualIntervention = *t.RequiresManualIntervention
	}
	if t.Retriable != nil && w.Status == WorkflowStatusFailed {
		w.Retriable = *t.Retriable
	}

	w.Timestamps = models.Timestamps{CreatedAt: w.Timestamps.CreatedAt, UpdatedAt: at}
	w.Version = w.Version.Update()

	if t.Status != "" {
		if err := w.Validate(); err != nil {
			return errors.Wrap(ErrInvalidTransition, err.Error())
		}
	}
	return nil
}

// Clone returns a deep copy without recorded events
func (w *Workflow) Clone() *Workflow {
	c := *w
	c.Steps = make([]*WorkflowStep, len(w.Steps))
	for i, s := range w.Steps {
		c.Steps[i] = s.Clone()
	}
	if w.Input != nil {
		c.Input = append(json.RawMessage(nil), w.Input...)
	}
	c.StartedAt = cloneTime(w.StartedAt)
	c.CompletedAt = cloneTime(w.CompletedAt)
	c.FailedAt = cloneTime(w.FailedAt)
	c.LeaseExpiresAt = cloneTime(w.LeaseExpiresAt)
	c.events = nil
	return &c
}

// Duration returns how long the workflow ran, if it has finished
func (w *Workflow) Duration() (time.Duration, bool) {
	if w.StartedAt == nil {
		return 0, false
	}
	end := w.CompletedAt
	if end == nil {
		end = w.FailedAt
	}
	if end == nil {
		return 0, false
	}
	return end.Sub(*w.StartedAt), true
}

// UncompensatedSteps lists the names of steps whose undo failed
func (w *Workflow) UncompensatedSteps() []string {
	var names []string
	for _, s := range w.Steps {
		if s.Status == StepStatusCompensationFailed {
			names = append(names, s.Name)
		}
	}
	return names
}

// Events returns domain events
func (w *Workflow) Events() []*events.Event {
	return w.events
}

// ClearEvents clears domain events
func (w *Workflow) ClearEvents() {
	w.events = make([]*events.Event, 0)
}

// LifecycleEvent builds an event carrying the workflow's current state
// without recording it on the aggregate
func (w *Workflow) LifecycleEvent(eventType string) *events.Event {
	return events.NewEvent(w.ID, eventType, w.eventData(nil)).WithCorrelationID(w.ID)
}

func (w *Workflow) recordEvent(topic string, step *WorkflowStep) {
	w.events = append(w.events, events.NewEvent(w.ID, topic, w.eventData(step)).WithCorrelationID(w.ID))
}

func (w *Workflow) eventData(step *WorkflowStep) WorkflowEventData {
	data := WorkflowEventData{
		WorkflowID:   w.ID,
		CustomerID:   w.CustomerID,
		WorkflowType: w.Type,
		Status:       w.Status,
		ErrorMessage: w.ErrorMessage,
		Completed:    w.CompletedSteps(),
		Total:        w.TotalSteps(),
	}
	if step != nil {
		data.StepID = step.ID
		data.StepName = step.Name
		data.StepStatus = step.Status
		data.ErrorMessage = step.ErrorMessage
	}
	return data
}

func (w *Workflow) recordStepEvent(step *WorkflowStep) {
	switch step.Status {
	case StepStatusCompleted:
		w.recordEvent(events.WorkflowStepCompletedEvent, step)
	case StepStatusFailed:
		w.recordEvent(events.WorkflowStepFailedEvent, step)
	case StepStatusCompensated:
		w.recordEvent(events.WorkflowStepCompensatedEvent, step)
	case StepStatusCompensationFailed:
		w.recordEvent(events.WorkflowStepCompensationFailedEvent, step)
	}
}

func workflowStatusTopic(status WorkflowStatus) string {
	switch status {
	case WorkflowStatusRunning:
		return events.WorkflowStartedEvent
	case WorkflowStatusCompleted:
		return events.WorkflowCompletedEvent
	case WorkflowStatusFailed:
		return events.WorkflowFailedEvent
	case WorkflowStatusRollingBack:
		return events.WorkflowRollingBackEvent
	case WorkflowStatusRolledBack:
		return events.WorkflowRolledBackEvent
	}
	return fmt.Sprintf("workflow.%s", status)
}

// WorkflowEventData is the payload of every workflow lifecycle event
type WorkflowEventData struct {
	WorkflowID   models.ID      `json:"workflow_id"`
	CustomerID   string         `json:"customer_id"`
	WorkflowType WorkflowType   `json:"workflow_type"`
	Status       WorkflowStatus `json:"status"`
	StepID       models.ID      `json:"step_id,omitempty"`
	StepName     string         `json:"step_name,omitempty"`
	StepStatus   StepStatus     `json:"step_status,omitempty"`
	ErrorMessage string         `json:"error_message,omitempty"`
	Completed    int            `json:"completed_steps"`
	Total        int            `json:"total_steps"`
}
