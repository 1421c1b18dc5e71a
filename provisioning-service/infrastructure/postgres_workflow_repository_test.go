package infrastructure

import (
	"database/sql"
	"database/sql/driver"
	"testing"

	"github.com/draftea/provisioning-system/provisioning-service/domain"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected error
	}{
		{
			name:     "active workflow unique violation",
			err:      &pq.Error{Code: "23505", Constraint: activeCustomerIndex},
			expected: domain.ErrAdmissionConflict,
		},
		{
			name:     "connection exception",
			err:      &pq.Error{Code: "08006", Message: "connection failure"},
			expected: domain.ErrStoreUnavailable,
		},
		{
			name:     "admin shutdown",
			err:      &pq.Error{Code: "57P01", Message: "terminating connection"},
			expected: domain.ErrStoreUnavailable,
		},
		{
			name:     "bad connection",
			err:      driver.ErrBadConn,
			expected: domain.ErrStoreUnavailable,
		},
		{
			name:     "closed connection",
			err:      errors.Wrap(sql.ErrConnDone, "commit"),
			expected: domain.ErrStoreUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, mapError(tt.err, "query failed"), tt.expected)
		})
	}
}

func TestMapError_PassesThroughOtherErrors(t *testing.T) {
	assert.NoError(t, mapError(nil, "query failed"))

	other := &pq.Error{Code: "23505", Constraint: "workflow_steps_workflow_id_step_order_key"}
	err := mapError(other, "insert step")
	assert.NotErrorIs(t, err, domain.ErrAdmissionConflict)
	assert.Contains(t, err.Error(), "insert step")
}

func TestJSONColumns(t *testing.T) {
	assert.Nil(t, jsonString(nil))
	assert.Nil(t, rawJSON(nil))

	s := jsonString([]byte(`{"ip":"10.0.0.1"}`))
	if assert.NotNil(t, s) {
		assert.JSONEq(t, `{"ip":"10.0.0.1"}`, string(rawJSON(s)))
	}
}
