package saga

import (
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/draftea/provisioning-system/provisioning-service/domain"
)

// RetryConfig bounds every retriable path of a workflow
type RetryConfig struct {
	// MaxRetries is the number of retries after the first failed attempt of a step
	MaxRetries       int
	MaxRetriesByType map[domain.WorkflowType]int
	// MaxCompensationRetries is the separate budget for undo actions
	MaxCompensationRetries int

	InitialInterval     time.Duration
	MaxInterval         time.Duration
	Multiplier          float64
	RandomizationFactor float64
}

// DefaultRetryConfig returns the production defaults
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:             3,
		MaxCompensationRetries: 5,
		InitialInterval:        500 * time.Millisecond,
		MaxInterval:            30 * time.Second,
		Multiplier:             2,
		RandomizationFactor:    0.2,
	}
}

// RetryPolicy decides whether a failed adapter call is attempted again and
// how long to wait before it. It holds no per-workflow state.
type RetryPolicy struct {
	cfg RetryConfig
}

// NewRetryPolicy creates a policy; zero values fall back to the defaults
func NewRetryPolicy(cfg RetryConfig) *RetryPolicy {
	def := DefaultRetryConfig()
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.MaxCompensationRetries <= 0 {
		cfg.MaxCompensationRetries = def.MaxCompensationRetries
	}
	if cfg.InitialInterval <= 0 {
		cfg.InitialInterval = def.InitialInterval
	}
	if cfg.MaxInterval <= 0 {
		cfg.MaxInterval = def.MaxInterval
	}
	if cfg.Multiplier < 1 {
		cfg.Multiplier = def.Multiplier
	}
	if cfg.RandomizationFactor < 0 || cfg.RandomizationFactor >= 1 {
		cfg.RandomizationFactor = def.RandomizationFactor
	}
	return &RetryPolicy{cfg: cfg}
}

// MaxRetries returns the retry budget of a workflow type
func (p *RetryPolicy) MaxRetries(workflowType domain.WorkflowType) int {
	if n, ok := p.cfg.MaxRetriesByType[workflowType]; ok {
		return n
	}
	return p.cfg.MaxRetries
}

// MaxCompensationRetries returns the retry budget of undo actions
func (p *RetryPolicy) MaxCompensationRetries() int {
	return p.cfg.MaxCompensationRetries
}

// ShouldRetry reports whether retry number attempt (1 is the first retry
// after the initial failure) may run after lastErr
func (p *RetryPolicy) ShouldRetry(workflowType domain.WorkflowType, attempt int, lastErr error) bool {
	if attempt > p.MaxRetries(workflowType) {
		return false
	}
	return domain.IsRetriable(lastErr)
}

// ShouldRetryCompensation is ShouldRetry for undo actions
func (p *RetryPolicy) ShouldRetryCompensation(attempt int, lastErr error) bool {
	if attempt > p.cfg.MaxCompensationRetries {
		return false
	}
	return domain.IsRetriable(lastErr)
}

// BackoffBefore returns the delay before retry number attempt: exponential,
// capped at MaxInterval, with jitter
func (p *RetryPolicy) BackoffBefore(attempt int) time.Duration {
	if attempt < 1 {
		return 0
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.cfg.InitialInterval
	b.MaxInterval = p.cfg.MaxInterval
	b.Multiplier = p.cfg.Multiplier
	b.RandomizationFactor = p.cfg.RandomizationFactor
	b.Reset()

	var d time.Duration
	for i := 0; i < attempt; i++ {
		d = b.NextBackOff()
	}
	return d
}
