package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/draftea/provisioning-system/provisioning-service/application"
	"github.com/draftea/provisioning-system/provisioning-service/domain"
	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// WorkflowHandlers contains the orchestrator HTTP handlers
type WorkflowHandlers struct {
	provisionSubscriber    *application.ProvisionSubscriber
	startWorkflow          *application.StartWorkflow
	cancelWorkflow         *application.CancelWorkflow
	retryWorkflow          *application.RetryWorkflow
	getWorkflow            *application.GetWorkflow
	getWorkflowTransitions *application.GetWorkflowTransitions
	listWorkflows          *application.ListWorkflows
	workflowStatistics     *application.WorkflowStatistics
	runningWorkflows       *application.RunningWorkflows
	logger                 zerolog.Logger
}

// NewWorkflowHandlers creates new workflow handlers
func NewWorkflowHandlers(
	provisionSubscriber *application.ProvisionSubscriber,
	startWorkflow *application.StartWorkflow,
	cancelWorkflow *application.CancelWorkflow,
	retryWorkflow *application.RetryWorkflow,
	getWorkflow *application.GetWorkflow,
	getWorkflowTransitions *application.GetWorkflowTransitions,
	listWorkflows *application.ListWorkflows,
	workflowStatistics *application.WorkflowStatistics,
	runningWorkflows *application.RunningWorkflows,
	logger zerolog.Logger,
) *WorkflowHandlers {
	return &WorkflowHandlers{
		provisionSubscriber:    provisionSubscriber,
		startWorkflow:          startWorkflow,
		cancelWorkflow:         cancelWorkflow,
		retryWorkflow:          retryWorkflow,
		getWorkflow:            getWorkflow,
		getWorkflowTransitions: getWorkflowTransitions,
		listWorkflows:          listWorkflows,
		workflowStatistics:     workflowStatistics,
		runningWorkflows:       runningWorkflows,
		logger:                 logger.With().Str("component", "http").Logger(),
	}
}

// ProvisionSubscriber handles subscriber provisioning requests
func (h *WorkflowHandlers) ProvisionSubscriber(w http.ResponseWriter, r *http.Request) {
	var cmd application.ProvisionSubscriberCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		h.writeError(w, errors.Wrap(domain.ErrInvalidInput, "invalid request body"))
		return
	}

	result, err := h.provisionSubscriber.Execute(r.Context(), &cmd)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, result)
}

// StartWorkflow handles requests for the other lifecycle workflows
func (h *WorkflowHandlers) StartWorkflow(w http.ResponseWriter, r *http.Request) {
	var cmd application.StartWorkflowCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		h.writeError(w, errors.Wrap(domain.ErrInvalidInput, "invalid request body"))
		return
	}

	result, err := h.startWorkflow.Execute(r.Context(), &cmd)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, result)
}

// GetWorkflow handles workflow retrieval requests
func (h *WorkflowHandlers) GetWorkflow(w http.ResponseWriter, r *http.Request) {
	response, err := h.getWorkflow.Execute(r.Context(), &application.GetWorkflowQuery{
		WorkflowID: chi.URLParam(r, "id"),
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, response)
}

// GetWorkflowTransitions returns the audit history of a workflow
func (h *WorkflowHandlers) GetWorkflowTransitions(w http.ResponseWriter, r *http.Request) {
	response, err := h.getWorkflowTransitions.Execute(r.Context(), &application.GetWorkflowTransitionsQuery{
		WorkflowID: chi.URLParam(r, "id"),
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, response)
}

// ListWorkflows handles filtered, paged listings
func (h *WorkflowHandlers) ListWorkflows(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()
	query := &application.ListWorkflowsQuery{
		Status:       values.Get("status"),
		WorkflowType: values.Get("type"),
		CustomerID:   values.Get("customer_id"),
	}

	var err error
	if query.Limit, err = intParam(values.Get("limit")); err != nil {
		h.writeError(w, errors.Wrap(domain.ErrInvalidInput, "limit must be an integer"))
		return
	}
	if query.Offset, err = intParam(values.Get("offset")); err != nil {
		h.writeError(w, errors.Wrap(domain.ErrInvalidInput, "offset must be an integer"))
		return
	}

	response, err := h.listWorkflows.Execute(r.Context(), query)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, response)
}

// WorkflowStatistics returns aggregate statistics over all workflows
func (h *WorkflowHandlers) WorkflowStatistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.workflowStatistics.Execute(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

// RunningWorkflowsCount returns how many workflows are not finished
func (h *WorkflowHandlers) RunningWorkflowsCount(w http.ResponseWriter, r *http.Request) {
	n, err := h.runningWorkflows.Count(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"running_workflows": n})
}

// CancelWorkflow handles cancellation requests
func (h *WorkflowHandlers) CancelWorkflow(w http.ResponseWriter, r *http.Request) {
	response, err := h.cancelWorkflow.Execute(r.Context(), &application.CancelWorkflowCommand{
		WorkflowID: chi.URLParam(r, "id"),
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, response)
}

// RetryWorkflow handles retry requests for failed workflows
func (h *WorkflowHandlers) RetryWorkflow(w http.ResponseWriter, r *http.Request) {
	response, err := h.retryWorkflow.Execute(r.Context(), &application.RetryWorkflowCommand{
		WorkflowID: chi.URLParam(r, "id"),
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, response)
}

// HasRunningWorkflow reports whether a customer holds the active workflow slot
func (h *WorkflowHandlers) HasRunningWorkflow(w http.ResponseWriter, r *http.Request) {
	customerID := chi.URLParam(r, "customerID")
	active, err := h.runningWorkflows.HasRunningWorkflowForCustomer(r.Context(), customerID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"customer_id":          customerID,
		"has_running_workflow": active,
	})
}

// RegisterRoutes registers workflow routes
func (h *WorkflowHandlers) RegisterRoutes(r chi.Router) {
	r.Route("/v1", func(r chi.Router) {
		r.Post("/subscribers/provision", h.ProvisionSubscriber)
		r.Get("/customers/{customerID}/running-workflow", h.HasRunningWorkflow)

		r.Route("/workflows", func(r chi.Router) {
			r.Post("/", h.StartWorkflow)
			r.Get("/", h.ListWorkflows)
			r.Get("/statistics", h.WorkflowStatistics)
			r.Get("/running/count", h.RunningWorkflowsCount)
			r.Get("/{id}", h.GetWorkflow)
			r.Get("/{id}/transitions", h.GetWorkflowTransitions)
			r.Post("/{id}/cancel", h.CancelWorkflow)
			r.Post("/{id}/retry", h.RetryWorkflow)
		})
	})
}

func (h *WorkflowHandlers) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error().Err(err).Int("status", status).Msg("request failed")
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrWorkflowNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrAdmissionConflict), errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, domain.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func intParam(value string) (int, error) {
	if value == "" {
		return 0, nil
	}
	return strconv.Atoi(value)
}
