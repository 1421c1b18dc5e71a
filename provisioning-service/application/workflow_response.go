package application

import (
	"encoding/json"
	"time"

	"github.com/draftea/provisioning-system/provisioning-service/domain"
	"github.com/draftea/provisioning-system/shared/models"
	"github.com/pkg/errors"
)

// WorkflowResponse is the external view of a workflow
type WorkflowResponse struct {
	WorkflowID                 string          `json:"workflow_id"`
	CustomerID                 string          `json:"customer_id"`
	WorkflowType               string          `json:"workflow_type"`
	Status                     string          `json:"status"`
	CompletedSteps             int             `json:"completed_steps"`
	TotalSteps                 int             `json:"total_steps"`
	RetryCount                 int             `json:"retry_count"`
	RollbackOnFailure          bool            `json:"rollback_on_failure"`
	Retriable                  bool            `json:"retriable"`
	RequiresManualIntervention bool            `json:"requires_manual_intervention"`
	ErrorMessage               string          `json:"error_message,omitempty"`
	Input                      json.RawMessage `json:"input,omitempty"`
	Steps                      []StepResponse  `json:"steps"`
	CreatedAt                  time.Time       `json:"created_at"`
	UpdatedAt                  time.Time       `json:"updated_at"`
	StartedAt                  *time.Time      `json:"started_at,omitempty"`
	CompletedAt                *time.Time      `json:"completed_at,omitempty"`
	FailedAt                   *time.Time      `json:"failed_at,omitempty"`
}

// StepResponse is the external view of a workflow step
type StepResponse struct {
	StepID              string          `json:"step_id"`
	Name                string          `json:"name"`
	TargetSystem        string          `json:"target_system"`
	Action              string          `json:"action"`
	Order               int             `json:"order"`
	Status              string          `json:"status"`
	RetryCount          int             `json:"retry_count"`
	CompensationRetries int             `json:"compensation_retries"`
	ErrorMessage        string          `json:"error_message,omitempty"`
	Output              json.RawMessage `json:"output,omitempty"`
	StartedAt           *time.Time      `json:"started_at,omitempty"`
	CompletedAt         *time.Time      `json:"completed_at,omitempty"`
	FailedAt            *time.Time      `json:"failed_at,omitempty"`
}

// NewWorkflowResponse maps a workflow to its response
func NewWorkflowResponse(wf *domain.Workflow) *WorkflowResponse {
	steps := make([]StepResponse, len(wf.Steps))
	for i, s := range wf.Steps {
		steps[i] = StepResponse{
			StepID:              s.ID.String(),
			Name:                s.Name,
			TargetSystem:        s.TargetSystem,
			Action:              s.Action,
			Order:               s.Order,
			Status:              s.Status.String(),
			RetryCount:          s.RetryCount,
			CompensationRetries: s.CompensationRetryCount,
			ErrorMessage:        s.ErrorMessage,
			Output:              s.Output,
			StartedAt:           s.StartedAt,
			CompletedAt:         s.CompletedAt,
			FailedAt:            s.FailedAt,
		}
	}

	return &WorkflowResponse{
		WorkflowID:                 wf.ID.String(),
		CustomerID:                 wf.CustomerID,
		WorkflowType:               wf.Type.String(),
		Status:                     wf.Status.String(),
		CompletedSteps:             wf.CompletedSteps(),
		TotalSteps:                 wf.TotalSteps(),
		RetryCount:                 wf.RetryCount,
		RollbackOnFailure:          wf.RollbackOnFailure,
		Retriable:                  wf.Retriable,
		RequiresManualIntervention: wf.RequiresManualIntervention,
		ErrorMessage:               wf.ErrorMessage,
		Input:                      wf.Input,
		Steps:                      steps,
		CreatedAt:                  wf.Timestamps.CreatedAt,
		UpdatedAt:                  wf.Timestamps.UpdatedAt,
		StartedAt:                  wf.StartedAt,
		CompletedAt:                wf.CompletedAt,
		FailedAt:                   wf.FailedAt,
	}
}

func parseWorkflowID(value string) (models.ID, error) {
	if value == "" {
		return "", errors.Wrap(domain.ErrInvalidInput, "workflow ID is required")
	}
	id, err := models.NewID(value)
	if err != nil {
		return "", errors.Wrapf(domain.ErrInvalidInput, "invalid workflow ID %q", value)
	}
	return id, nil
}
