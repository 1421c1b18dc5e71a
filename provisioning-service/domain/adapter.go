package domain

import (
	"context"
	"encoding/json"

	"github.com/draftea/provisioning-system/shared/models"
)

// StepRequest carries what an adapter needs to act on behalf of one step
type StepRequest struct {
	WorkflowID   models.ID                  `json:"workflow_id"`
	WorkflowType WorkflowType               `json:"workflow_type"`
	CustomerID   string                     `json:"customer_id"`
	StepID       models.ID                  `json:"step_id"`
	StepName     string                     `json:"step_name"`
	Attempt      int                        `json:"attempt"`
	Input        json.RawMessage            `json:"input,omitempty"`
	PriorOutputs map[string]json.RawMessage `json:"prior_outputs,omitempty"`
}

// NewStepRequest builds the adapter request for a step, including the outputs
// of every earlier completed step so later steps can use allocated resources
func NewStepRequest(wf *Workflow, step *WorkflowStep, attempt int) StepRequest {
	prior := make(map[string]json.RawMessage)
	for _, s := range wf.Steps {
		if s.Order >= step.Order {
			break
		}
		if s.Status == StepStatusCompleted && len(s.Output) > 0 {
			prior[s.Name] = s.Output
		}
	}

	return StepRequest{
		WorkflowID:   wf.ID,
		WorkflowType: wf.Type,
		CustomerID:   wf.CustomerID,
		StepID:       step.ID,
		StepName:     step.Name,
		Attempt:      attempt,
		Input:        wf.Input,
		PriorOutputs: prior,
	}
}

// StepAdapter executes one provisioning action against one target system and
// its compensating action. Undo must be idempotent: it may be re-driven after
// a crash.
type StepAdapter interface {
	Apply(ctx context.Context, req StepRequest) (json.RawMessage, error)
	Undo(ctx context.Context, req StepRequest, output json.RawMessage) error
}

// AdapterResolver finds the adapter serving a step action
type AdapterResolver interface {
	Resolve(actionKey string) (StepAdapter, bool)
}
