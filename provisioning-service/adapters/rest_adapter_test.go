package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/draftea/provisioning-system/provisioning-service/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRequest() domain.StepRequest {
	return domain.StepRequest{
		WorkflowID:   "5b0a9f7e-9a47-4f3c-8f7f-0d9b1e3c2a11",
		WorkflowType: domain.WorkflowTypeProvisionSubscriber,
		CustomerID:   "C1",
		StepID:       "0f8c2d4e-1111-4a2b-9c3d-5e6f7a8b9c0d",
		StepName:     "allocate_ip_address",
		Attempt:      1,
		Input:        json.RawMessage(`{"customer_id":"C1"}`),
	}
}

func TestRESTClient_Apply_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/allocate_address", r.URL.Path)
		assert.Equal(t, "Bearer ipam-token", r.Header.Get("Authorization"))
		assert.Equal(t, "0f8c2d4e-1111-4a2b-9c3d-5e6f7a8b9c0d", r.Header.Get("Idempotency-Key"))

		var payload domain.StepRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "C1", payload.CustomerID)
		assert.Equal(t, "allocate_ip_address", payload.StepName)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"address":"10.0.0.7"}`))
	}))
	defer srv.Close()

	client := NewRESTClient(SystemConfig{System: domain.SystemIPAM, BaseURL: srv.URL + "/", Token: "ipam-token"})
	output, err := client.Action("allocate_address").Apply(context.Background(), testRequest())
	require.NoError(t, err)
	assert.JSONEq(t, `{"address":"10.0.0.7"}`, string(output))
}

func TestRESTClient_Apply_EmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := NewRESTClient(SystemConfig{System: domain.SystemBilling, BaseURL: srv.URL})
	output, err := client.Action("activate_service").Apply(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Nil(t, output)
}

func TestRESTClient_Apply_ErrorClassification(t *testing.T) {
	tests := []struct {
		name          string
		status        int
		wantRetriable bool
		wantCode      string
	}{
		{name: "server error", status: http.StatusInternalServerError, wantRetriable: true},
		{name: "unavailable", status: http.StatusServiceUnavailable, wantRetriable: true},
		{name: "throttled", status: http.StatusTooManyRequests, wantRetriable: true},
		{name: "timeout", status: http.StatusRequestTimeout, wantRetriable: true},
		{name: "bad request", status: http.StatusBadRequest, wantCode: "http_400"},
		{name: "conflict", status: http.StatusConflict, wantCode: "http_409"},
		{name: "unprocessable", status: http.StatusUnprocessableEntity, wantCode: "http_422"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte("pool exhausted"))
			}))
			defer srv.Close()

			client := NewRESTClient(SystemConfig{System: domain.SystemIPAM, BaseURL: srv.URL})
			_, err := client.Action("allocate_address").Apply(context.Background(), testRequest())
			require.Error(t, err)

			var adapterErr *domain.AdapterError
			require.True(t, errors.As(err, &adapterErr))
			assert.Equal(t, tt.wantRetriable, adapterErr.Retriable)
			assert.Equal(t, tt.wantCode, adapterErr.Code)
			assert.Equal(t, domain.SystemIPAM, adapterErr.System)
			assert.Contains(t, err.Error(), "pool exhausted")
			assert.Equal(t, tt.wantRetriable, domain.IsRetriable(err))
		})
	}
}

func TestRESTClient_Apply_TransportErrorIsRetriable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	client := NewRESTClient(SystemConfig{System: domain.SystemRadius, BaseURL: url})
	_, err := client.Action("create_account").Apply(context.Background(), testRequest())
	require.Error(t, err)
	assert.True(t, domain.IsRetriable(err))
}

func TestRESTClient_Apply_InvalidJSONResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	client := NewRESTClient(SystemConfig{System: domain.SystemCPE, BaseURL: srv.URL})
	_, err := client.Action("push_config").Apply(context.Background(), testRequest())
	require.Error(t, err)
	assert.False(t, domain.IsRetriable(err))
}

func TestRESTClient_Undo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/allocate_address/undo", r.URL.Path)

		var payload undoRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "allocate_ip_address", payload.Request.StepName)
		assert.JSONEq(t, `{"address":"10.0.0.7"}`, string(payload.Output))

		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewRESTClient(SystemConfig{System: domain.SystemIPAM, BaseURL: srv.URL})
	err := client.Action("allocate_address").Undo(context.Background(), testRequest(), json.RawMessage(`{"address":"10.0.0.7"}`))
	require.NoError(t, err)
}

func TestRESTClient_UndoNoop(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer srv.Close()

	client := NewRESTClient(SystemConfig{System: domain.SystemNotification, BaseURL: srv.URL, UndoNoop: true})
	err := client.Action("send_welcome").Undo(context.Background(), testRequest(), nil)
	require.NoError(t, err)
	assert.Zero(t, calls)
}
