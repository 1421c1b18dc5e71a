package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/draftea/provisioning-system/provisioning-service/application"
	"github.com/draftea/provisioning-system/provisioning-service/domain"
	"github.com/draftea/provisioning-system/provisioning-service/infrastructure"
	"github.com/draftea/provisioning-system/provisioning-service/mocks"
	sharedinfra "github.com/draftea/provisioning-system/shared/infrastructure"
	"github.com/draftea/provisioning-system/shared/models"
	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	router     *chi.Mux
	repo       *infrastructure.MemoryWorkflowRepository
	dispatcher *mocks.MockWorkflowDispatcher
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := zerolog.Nop()
	repo := infrastructure.NewMemoryWorkflowRepository()
	publisher := sharedinfra.NewLogEventPublisher(logger)
	dispatcher := mocks.NewMockWorkflowDispatcher(t)

	h := NewWorkflowHandlers(
		application.NewProvisionSubscriber(repo, publisher, dispatcher, logger),
		application.NewStartWorkflow(repo, publisher, dispatcher, logger),
		application.NewCancelWorkflow(repo, publisher, dispatcher, logger),
		application.NewRetryWorkflow(repo, publisher, dispatcher, logger),
		application.NewGetWorkflow(repo),
		application.NewGetWorkflowTransitions(repo),
		application.NewListWorkflows(repo),
		application.NewWorkflowStatistics(repo),
		application.NewRunningWorkflows(repo),
		logger,
	)

	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return &testServer{router: r, repo: repo, dispatcher: dispatcher}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func provisionBody(customerID string) map[string]interface{} {
	return map[string]interface{}{
		"customer_id":         customerID,
		"customer_name":       "Ada Lovelace",
		"email":               "ada@example.com",
		"service_address":     "12 Analytical St",
		"service_plan_id":     "fiber-500",
		"bandwidth_down_mbps": 500,
		"bandwidth_up_mbps":   100,
		"connection_type":     "fiber",
		"cpe_mac_address":     "00:1a:2b:3c:4d:5e",
		"onu_serial":          "ALCL12345678",
		"vlan_id":             100,
	}
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func (s *testServer) provision(t *testing.T, customerID string) string {
	t.Helper()

	rec := s.do(t, http.MethodPost, "/v1/subscribers/provision", provisionBody(customerID))
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	return decode[domain.ProvisioningResult](t, rec).WorkflowID.String()
}

func TestWorkflowHandlers_ProvisionSubscriber(t *testing.T) {
	tests := []struct {
		name           string
		body           interface{}
		seedCustomer   string
		expectDispatch bool
		expectedStatus int
	}{
		{
			name:           "accepted",
			body:           provisionBody("customer-1"),
			expectDispatch: true,
			expectedStatus: http.StatusAccepted,
		},
		{
			name:           "customer already has an active workflow",
			body:           provisionBody("customer-1"),
			seedCustomer:   "customer-1",
			expectDispatch: true,
			expectedStatus: http.StatusConflict,
		},
		{
			name: "invalid email",
			body: func() map[string]interface{} {
				b := provisionBody("customer-1")
				b["email"] = "not-an-email"
				return b
			}(),
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "malformed body",
			body:           "{",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)
			if tt.expectDispatch {
				s.dispatcher.EXPECT().Dispatch(mock.Anything).Return(true)
			}
			if tt.seedCustomer != "" {
				s.provision(t, tt.seedCustomer)
			}

			rec := s.do(t, http.MethodPost, "/v1/subscribers/provision", tt.body)

			assert.Equal(t, tt.expectedStatus, rec.Code, rec.Body.String())
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			if tt.expectedStatus == http.StatusAccepted {
				result := decode[domain.ProvisioningResult](t, rec)
				assert.Equal(t, domain.WorkflowStatusPending, result.Status)
				assert.Equal(t, 6, result.TotalSteps)
				assert.Equal(t, "workflow accepted", result.Message)
			} else {
				assert.NotEmpty(t, decode[map[string]string](t, rec)["error"])
			}
		})
	}
}

func TestWorkflowHandlers_StartWorkflow(t *testing.T) {
	s := newTestServer(t)
	s.dispatcher.EXPECT().Dispatch(mock.Anything).Return(false).Once()

	rec := s.do(t, http.MethodPost, "/v1/workflows", map[string]interface{}{
		"customer_id":   "customer-7",
		"workflow_type": "suspend_service",
	})

	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	result := decode[domain.ProvisioningResult](t, rec)
	assert.Equal(t, "workflow accepted, execution deferred", result.Message)

	rec = s.do(t, http.MethodPost, "/v1/workflows", map[string]interface{}{
		"customer_id":   "customer-8",
		"workflow_type": "teleport_subscriber",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWorkflowHandlers_GetWorkflow(t *testing.T) {
	s := newTestServer(t)
	s.dispatcher.EXPECT().Dispatch(mock.Anything).Return(true).Once()
	id := s.provision(t, "customer-1")

	t.Run("found", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, "/v1/workflows/"+id, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		wf := decode[application.WorkflowResponse](t, rec)
		assert.Equal(t, id, wf.WorkflowID)
		assert.Equal(t, "provision_subscriber", wf.WorkflowType)
		assert.Len(t, wf.Steps, 6)
	})

	t.Run("transitions", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, "/v1/workflows/"+id+"/transitions", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		resp := decode[application.GetWorkflowTransitionsResponse](t, rec)
		require.Len(t, resp.Transitions, 1)
		assert.Equal(t, domain.WorkflowStatusPending, resp.Transitions[0].ToStatus)
	})

	t.Run("not found", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, "/v1/workflows/"+models.GenerateUUID().String(), nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("malformed id", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, "/v1/workflows/not-a-uuid", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestWorkflowHandlers_ListAndCounts(t *testing.T) {
	s := newTestServer(t)
	s.dispatcher.EXPECT().Dispatch(mock.Anything).Return(true).Times(3)
	s.provision(t, "customer-1")
	s.provision(t, "customer-2")
	s.provision(t, "customer-3")

	rec := s.do(t, http.MethodGet, "/v1/workflows?status=pending&limit=2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[application.ListWorkflowsResponse](t, rec)
	assert.Len(t, page.Items, 2)
	assert.Equal(t, 3, page.TotalCount)
	assert.True(t, page.HasNextPage)

	rec = s.do(t, http.MethodGet, "/v1/workflows?customer_id=customer-2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decode[application.ListWorkflowsResponse](t, rec).TotalCount)

	rec = s.do(t, http.MethodGet, "/v1/workflows?limit=abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, "/v1/workflows?status=sleeping", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, "/v1/workflows/running/count", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 3, decode[map[string]int](t, rec)["running_workflows"])

	rec = s.do(t, http.MethodGet, "/v1/workflows/statistics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode[domain.WorkflowStatistics](t, rec)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 3, stats.ByStatus[domain.WorkflowStatusPending])

	rec = s.do(t, http.MethodGet, "/v1/customers/customer-1/running-workflow", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decode[map[string]interface{}](t, rec)["has_running_workflow"])

	rec = s.do(t, http.MethodGet, "/v1/customers/customer-9/running-workflow", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decode[map[string]interface{}](t, rec)["has_running_workflow"])
}

func TestWorkflowHandlers_CancelAndRetry(t *testing.T) {
	s := newTestServer(t)
	s.dispatcher.EXPECT().Dispatch(mock.Anything).Return(true).Once()
	id := s.provision(t, "customer-1")

	rec := s.do(t, http.MethodPost, "/v1/workflows/"+id+"/retry", nil)
	assert.Equal(t, http.StatusConflict, rec.Code, "pending workflows cannot be retried")

	rec = s.do(t, http.MethodPost, "/v1/workflows/"+id+"/cancel", nil)
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	wf := decode[application.WorkflowResponse](t, rec)
	assert.Equal(t, "rolled_back", wf.Status)

	rec = s.do(t, http.MethodPost, "/v1/workflows/"+id+"/cancel", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, http.MethodPost, "/v1/workflows/"+models.GenerateUUID().String()+"/cancel", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err      error
		expected int
	}{
		{errors.Wrap(domain.ErrInvalidInput, "bad"), http.StatusBadRequest},
		{errors.Wrap(domain.ErrWorkflowNotFound, "x"), http.StatusNotFound},
		{errors.Wrap(domain.ErrAdmissionConflict, "x"), http.StatusConflict},
		{errors.Wrap(domain.ErrInvalidTransition, "x"), http.StatusConflict},
		{errors.Wrap(domain.ErrStoreUnavailable, "x"), http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.expected, statusFor(tt.err))
		})
	}
}
