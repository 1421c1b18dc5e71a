package application

import (
	"context"
	"testing"

	"github.com/draftea/provisioning-system/provisioning-service/domain"
	"github.com/draftea/provisioning-system/provisioning-service/mocks"
	"github.com/draftea/provisioning-system/shared/models"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestGetWorkflow_Execute(t *testing.T) {
	wf := workflowFixture(t, domain.WorkflowStatusRunning, domain.StepStatusCompleted, domain.StepStatusRunning)
	missing := models.GenerateUUID()

	tests := []struct {
		name          string
		query         *GetWorkflowQuery
		setupMocks    func(*mocks.MockWorkflowRepository)
		expectedError error
	}{
		{
			name:  "found",
			query: &GetWorkflowQuery{WorkflowID: wf.ID.String()},
			setupMocks: func(repo *mocks.MockWorkflowRepository) {
				repo.EXPECT().FindByID(mock.Anything, wf.ID).Return(wf, nil).Once()
			},
		},
		{
			name:  "not found",
			query: &GetWorkflowQuery{WorkflowID: missing.String()},
			setupMocks: func(repo *mocks.MockWorkflowRepository) {
				repo.EXPECT().FindByID(mock.Anything, missing).Return(nil, errors.Wrap(domain.ErrWorkflowNotFound, "workflow")).Once()
			},
			expectedError: domain.ErrWorkflowNotFound,
		},
		{
			name:          "empty id",
			query:         &GetWorkflowQuery{},
			setupMocks:    func(*mocks.MockWorkflowRepository) {},
			expectedError: domain.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := mocks.NewMockWorkflowRepository(t)
			tt.setupMocks(repo)

			resp, err := NewGetWorkflow(repo).Execute(context.Background(), tt.query)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, wf.ID.String(), resp.WorkflowID)
			assert.Equal(t, "running", resp.Status)
			assert.Equal(t, 1, resp.CompletedSteps)
			assert.Equal(t, 2, resp.TotalSteps)
			require.Len(t, resp.Steps, 2)
			assert.Equal(t, 2, resp.Steps[1].Order)
		})
	}
}

func TestListWorkflows_Execute(t *testing.T) {
	failed := domain.WorkflowStatusFailed
	suspend := domain.WorkflowTypeSuspendService

	tests := []struct {
		name          string
		query         *ListWorkflowsQuery
		expectedQuery domain.WorkflowFilter
		expectedError error
	}{
		{
			name:          "defaults",
			query:         &ListWorkflowsQuery{},
			expectedQuery: domain.WorkflowFilter{Limit: defaultPageSize},
		},
		{
			name:          "all filters",
			query:         &ListWorkflowsQuery{Status: "failed", WorkflowType: "suspend_service", CustomerID: "c-1", Limit: 10, Offset: 20},
			expectedQuery: domain.WorkflowFilter{Status: &failed, Type: &suspend, CustomerID: "c-1", Limit: 10, Offset: 20},
		},
		{
			name:          "limit is capped",
			query:         &ListWorkflowsQuery{Limit: 10000},
			expectedQuery: domain.WorkflowFilter{Limit: maxPageSize},
		},
		{
			name:          "unknown status",
			query:         &ListWorkflowsQuery{Status: "paused"},
			expectedError: domain.ErrInvalidInput,
		},
		{
			name:          "negative offset",
			query:         &ListWorkflowsQuery{Offset: -1},
			expectedError: domain.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := mocks.NewMockWorkflowRepository(t)
			wf := workflowFixture(t, domain.WorkflowStatusFailed, domain.StepStatusFailed)
			if tt.expectedError == nil {
				repo.EXPECT().List(mock.Anything, tt.expectedQuery).
					Return(&domain.WorkflowPage{Items: []*domain.Workflow{wf}, TotalCount: 3, HasNextPage: true}, nil).Once()
			}

			resp, err := NewListWorkflows(repo).Execute(context.Background(), tt.query)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 3, resp.TotalCount)
			assert.True(t, resp.HasNextPage)
			require.Len(t, resp.Items, 1)
			assert.Equal(t, wf.ID.String(), resp.Items[0].WorkflowID)
		})
	}
}

func TestWorkflowStatistics_Execute(t *testing.T) {
	repo := mocks.NewMockWorkflowRepository(t)
	stats := &domain.WorkflowStatistics{Total: 4, Running: 1, SuccessRate: 0.5}
	repo.EXPECT().Statistics(mock.Anything).Return(stats, nil).Once()

	got, err := NewWorkflowStatistics(repo).Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, stats, got)

	repo.EXPECT().Statistics(mock.Anything).Return(nil, domain.ErrStoreUnavailable).Once()
	_, err = NewWorkflowStatistics(repo).Execute(context.Background())
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
}

func TestRunningWorkflows(t *testing.T) {
	repo := mocks.NewMockWorkflowRepository(t)
	uc := NewRunningWorkflows(repo)

	repo.EXPECT().HasActiveWorkflow(mock.Anything, "customer-1").Return(true, nil).Once()
	repo.EXPECT().HasActiveWorkflow(mock.Anything, "customer-2").Return(false, nil).Once()
	repo.EXPECT().CountRunning(mock.Anything).Return(7, nil).Once()

	active, err := uc.HasRunningWorkflowForCustomer(context.Background(), "customer-1")
	require.NoError(t, err)
	assert.True(t, active)

	active, err = uc.HasRunningWorkflowForCustomer(context.Background(), "customer-2")
	require.NoError(t, err)
	assert.False(t, active)

	_, err = uc.HasRunningWorkflowForCustomer(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	n, err := uc.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, n)
}

func TestGetWorkflowTransitions_Execute(t *testing.T) {
	repo := mocks.NewMockWorkflowRepository(t)
	id := models.GenerateUUID()
	records := []*domain.TransitionRecord{
		{ID: 1, WorkflowID: id, ToStatus: domain.WorkflowStatusPending, Reason: "workflow admitted"},
		{ID: 2, WorkflowID: id, FromStatus: domain.WorkflowStatusPending, ToStatus: domain.WorkflowStatusRunning},
	}
	repo.EXPECT().Transitions(mock.Anything, id).Return(records, nil).Once()

	resp, err := NewGetWorkflowTransitions(repo).Execute(context.Background(), &GetWorkflowTransitionsQuery{WorkflowID: id.String()})
	require.NoError(t, err)
	assert.Equal(t, id.String(), resp.WorkflowID)
	assert.Equal(t, records, resp.Transitions)
}
