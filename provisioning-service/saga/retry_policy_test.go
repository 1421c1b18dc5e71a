package saga

import (
	"testing"
	"time"

	"github.com/draftea/provisioning-system/provisioning-service/domain"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestRetryPolicy_ShouldRetry(t *testing.T) {
	policy := NewRetryPolicy(RetryConfig{
		MaxRetries: 3,
		MaxRetriesByType: map[domain.WorkflowType]int{
			domain.WorkflowTypeSuspendService: 1,
		},
	})

	transient := domain.NewRetriableError("radius", "create_account", errors.New("timeout"))
	permanent := domain.NewPermanentError("radius", "create_account", "http_400", errors.New("bad request"))

	tests := []struct {
		name         string
		workflowType domain.WorkflowType
		attempt      int
		err          error
		expected     bool
	}{
		{
			name:         "first retry of transient error",
			workflowType: domain.WorkflowTypeProvisionSubscriber,
			attempt:      1,
			err:          transient,
			expected:     true,
		},
		{
			name:         "last retry within budget",
			workflowType: domain.WorkflowTypeProvisionSubscriber,
			attempt:      3,
			err:          transient,
			expected:     true,
		},
		{
			name:         "budget exhausted",
			workflowType: domain.WorkflowTypeProvisionSubscriber,
			attempt:      4,
			err:          transient,
			expected:     false,
		},
		{
			name:         "permanent error is never retried",
			workflowType: domain.WorkflowTypeProvisionSubscriber,
			attempt:      1,
			err:          permanent,
			expected:     false,
		},
		{
			name:         "unclassified error is not retried",
			workflowType: domain.WorkflowTypeProvisionSubscriber,
			attempt:      1,
			err:          errors.New("connection reset"),
			expected:     false,
		},
		{
			name:         "per type budget overrides the default",
			workflowType: domain.WorkflowTypeSuspendService,
			attempt:      2,
			err:          transient,
			expected:     false,
		},
		{
			name:         "nil error is not retried",
			workflowType: domain.WorkflowTypeProvisionSubscriber,
			attempt:      1,
			err:          nil,
			expected:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, policy.ShouldRetry(tt.workflowType, tt.attempt, tt.err))
		})
	}
}

func TestRetryPolicy_ShouldRetryCompensation(t *testing.T) {
	policy := NewRetryPolicy(RetryConfig{MaxRetries: 1, MaxCompensationRetries: 5})
	transient := domain.NewRetriableError("ipam", "allocate_address", errors.New("unavailable"))

	assert.True(t, policy.ShouldRetryCompensation(5, transient))
	assert.False(t, policy.ShouldRetryCompensation(6, transient))
	assert.False(t, policy.ShouldRetryCompensation(1, domain.NewPermanentError("ipam", "allocate_address", "http_404", errors.New("gone"))))
	assert.False(t, policy.ShouldRetryCompensation(1, errors.New("connection reset")))
	assert.Equal(t, 5, policy.MaxCompensationRetries())
}

func TestRetryPolicy_BackoffBefore(t *testing.T) {
	policy := NewRetryPolicy(RetryConfig{
		MaxRetries:      10,
		InitialInterval: 100 * time.Millisecond,
		MaxInterval:     time.Second,
		Multiplier:      2,
	})

	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{attempt: 0, expected: 0},
		{attempt: 1, expected: 100 * time.Millisecond},
		{attempt: 2, expected: 200 * time.Millisecond},
		{attempt: 3, expected: 400 * time.Millisecond},
		{attempt: 4, expected: 800 * time.Millisecond},
		{attempt: 5, expected: time.Second},
		{attempt: 8, expected: time.Second},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, policy.BackoffBefore(tt.attempt), "attempt %d", tt.attempt)
	}
}

func TestRetryPolicy_BackoffJitterStaysInRange(t *testing.T) {
	policy := NewRetryPolicy(DefaultRetryConfig())

	for i := 0; i < 50; i++ {
		d := policy.BackoffBefore(1)
		assert.GreaterOrEqual(t, d, 400*time.Millisecond)
		assert.LessOrEqual(t, d, 600*time.Millisecond)
	}
}

func TestNewRetryPolicy_Defaults(t *testing.T) {
	policy := NewRetryPolicy(RetryConfig{MaxRetries: -1})

	assert.Equal(t, 0, policy.MaxRetries(domain.WorkflowTypeProvisionSubscriber))
	assert.Equal(t, 5, policy.cfg.MaxCompensationRetries)
	assert.Equal(t, 500*time.Millisecond, policy.cfg.InitialInterval)
	assert.Equal(t, 30*time.Second, policy.cfg.MaxInterval)
	assert.Equal(t, 2.0, policy.cfg.Multiplier)
}
