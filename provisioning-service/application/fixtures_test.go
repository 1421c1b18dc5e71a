package application

import (
	"testing"

	"github.com/draftea/provisioning-system/provisioning-service/domain"
	"github.com/draftea/provisioning-system/shared/events"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// workflowFixture builds a stored-looking workflow with the given status and
// step statuses
func workflowFixture(t *testing.T, status domain.WorkflowStatus, stepStatuses ...domain.StepStatus) *domain.Workflow {
	t.Helper()

	steps := make([]*domain.WorkflowStep, len(stepStatuses))
	for i := range stepStatuses {
		steps[i] = domain.NewWorkflowStep(domain.StepDefinition{
			Name:         "step-" + string(rune('a'+i)),
			TargetSystem: domain.SystemRadius,
			Action:       "action",
		}, i+1)
	}
	wf, err := domain.NewWorkflow("customer-1", domain.WorkflowTypeProvisionSubscriber, steps, nil, true)
	require.NoError(t, err)
	wf.ClearEvents()

	wf.Status = status
	for i, s := range stepStatuses {
		wf.Steps[i].Status = s
	}
	return wf
}

func eventOfType(eventType string) interface{} {
	return mock.MatchedBy(func(evt *events.Event) bool {
		return evt.EventType == eventType
	})
}

func boolPtr(v bool) *bool { return &v }
