package application

import (
	"context"
	"testing"

	"github.com/draftea/provisioning-system/provisioning-service/domain"
	"github.com/draftea/provisioning-system/provisioning-service/mocks"
	"github.com/draftea/provisioning-system/shared/events"
	"github.com/draftea/provisioning-system/shared/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestRetryWorkflow_Execute(t *testing.T) {
	retriable := workflowFixture(t, domain.WorkflowStatusFailed, domain.StepStatusCompleted, domain.StepStatusFailed, domain.StepStatusPending)
	retriable.Retriable = true
	retriable.ErrorMessage = "step step-b failed"
	retriable.Steps[1].RetryCount = 3
	retriable.Steps[1].ErrorMessage = "timeout"

	manual := workflowFixture(t, domain.WorkflowStatusFailed, domain.StepStatusCompensationFailed, domain.StepStatusFailed)
	manual.RequiresManualIntervention = true

	running := workflowFixture(t, domain.WorkflowStatusRunning, domain.StepStatusRunning)

	tests := []struct {
		name          string
		workflow      *domain.Workflow
		setupMocks    func(*mocks.MockWorkflowRepository, *mocks.MockPublisher, *mocks.MockWorkflowDispatcher)
		expectedError error
		verify        func(t *testing.T, resp *WorkflowResponse)
	}{
		{
			name:     "retriable failure resumes at first unfinished step",
			workflow: retriable,
			setupMocks: func(repo *mocks.MockWorkflowRepository, publisher *mocks.MockPublisher, dispatcher *mocks.MockWorkflowDispatcher) {
				repo.EXPECT().FindByID(mock.Anything, retriable.ID).Return(retriable.Clone(), nil).Once()
				repo.EXPECT().AppendTransition(mock.Anything, mock.MatchedBy(func(tr domain.Transition) bool {
					return tr.ExpectedStatus == domain.WorkflowStatusFailed &&
						tr.Status == domain.WorkflowStatusRunning &&
						tr.IncrementRetryCount &&
						len(tr.Steps) == 2
				})).RunAndReturn(applyTransition(retriable)).Once()
				publisher.EXPECT().Publish(mock.Anything,
					eventOfType(events.WorkflowRetriedEvent),
					eventOfType(events.WorkflowStartedEvent),
				).Return(nil).Once()
				dispatcher.EXPECT().Dispatch(retriable.ID).Return(true).Once()
			},
			verify: func(t *testing.T, resp *WorkflowResponse) {
				assert.Equal(t, domain.WorkflowStatusRunning.String(), resp.Status)
				assert.Equal(t, retriable.ID.String(), resp.WorkflowID)
				assert.Equal(t, 1, resp.RetryCount)
				assert.Empty(t, resp.ErrorMessage)
				assert.Equal(t, domain.StepStatusCompleted.String(), resp.Steps[0].Status)
				assert.Equal(t, domain.StepStatusPending.String(), resp.Steps[1].Status)
				assert.Equal(t, 0, resp.Steps[1].RetryCount)
				assert.Empty(t, resp.Steps[1].ErrorMessage)
				assert.Equal(t, domain.StepStatusPending.String(), resp.Steps[2].Status)
			},
		},
		{
			name:     "manual intervention failure is not retriable",
			workflow: manual,
			setupMocks: func(repo *mocks.MockWorkflowRepository, publisher *mocks.MockPublisher, dispatcher *mocks.MockWorkflowDispatcher) {
				repo.EXPECT().FindByID(mock.Anything, manual.ID).Return(manual.Clone(), nil).Once()
			},
			expectedError: domain.ErrInvalidTransition,
		},
		{
			name:     "running workflow is not retriable",
			workflow: running,
			setupMocks: func(repo *mocks.MockWorkflowRepository, publisher *mocks.MockPublisher, dispatcher *mocks.MockWorkflowDispatcher) {
				repo.EXPECT().FindByID(mock.Anything, running.ID).Return(running.Clone(), nil).Once()
			},
			expectedError: domain.ErrInvalidTransition,
		},
		{
			name:     "customer slot taken",
			workflow: retriable,
			setupMocks: func(repo *mocks.MockWorkflowRepository, publisher *mocks.MockPublisher, dispatcher *mocks.MockWorkflowDispatcher) {
				repo.EXPECT().FindByID(mock.Anything, retriable.ID).Return(retriable.Clone(), nil).Once()
				repo.EXPECT().AppendTransition(mock.Anything, mock.Anything).Return(nil, domain.ErrAdmissionConflict).Once()
			},
			expectedError: domain.ErrAdmissionConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := mocks.NewMockWorkflowRepository(t)
			publisher := mocks.NewMockPublisher(t)
			dispatcher := mocks.NewMockWorkflowDispatcher(t)
			tt.setupMocks(repo, publisher, dispatcher)

			uc := NewRetryWorkflow(repo, publisher, dispatcher, zerolog.Nop())
			resp, err := uc.Execute(context.Background(), &RetryWorkflowCommand{WorkflowID: tt.workflow.ID.String()})

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, resp)
				return
			}

			require.NoError(t, err)
			tt.verify(t, resp)
		})
	}
}

func TestRetryWorkflow_RequiresID(t *testing.T) {
	uc := NewRetryWorkflow(mocks.NewMockWorkflowRepository(t), mocks.NewMockPublisher(t), mocks.NewMockWorkflowDispatcher(t), zerolog.Nop())

	_, err := uc.Execute(context.Background(), &RetryWorkflowCommand{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Execute(context.Background(), &RetryWorkflowCommand{WorkflowID: models.GenerateUUID().String() + "x"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
