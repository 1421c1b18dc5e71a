//go:build integration

package infrastructure

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/draftea/provisioning-system/provisioning-service/domain"
	"github.com/draftea/provisioning-system/shared/models"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	pgmodule "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupPostgresRepository starts a Postgres container, applies the goose
// migrations and returns a repository bound to it
func setupPostgresRepository(t *testing.T) *PostgresWorkflowRepository {
	t.Helper()

	ctx := context.Background()
	container, err := pgmodule.Run(ctx,
		"postgres:16-alpine",
		pgmodule.WithDatabase("provisioning_test"),
		pgmodule.WithUsername("test"),
		pgmodule.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err, "start postgres container")
	t.Cleanup(func() {
		if termErr := container.Terminate(ctx); termErr != nil {
			t.Logf("terminate container: %v", termErr)
		}
	})

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := sqlx.ConnectContext(ctx, "postgres", connStr)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, RunMigrations(db.DB))
	return NewPostgresWorkflowRepository(db)
}

func TestPostgresWorkflowRepository_ConcurrentAdmission(t *testing.T) {
	repo := setupPostgresRepository(t)
	ctx := context.Background()

	const callers = 20
	workflows := make([]*domain.Workflow, callers)
	for i := range workflows {
		workflows[i] = newTestWorkflow(t, "customer-1", domain.WorkflowTypeProvisionSubscriber)
	}

	var wg sync.WaitGroup
	results := make(chan error, callers)
	for _, wf := range workflows {
		wg.Add(1)
		go func(wf *domain.Workflow) {
			defer wg.Done()
			results <- repo.Admit(ctx, wf)
		}(wf)
	}
	wg.Wait()
	close(results)

	admitted, conflicts := 0, 0
	for err := range results {
		switch {
		case err == nil:
			admitted++
		case assert.ErrorIs(t, err, domain.ErrAdmissionConflict):
			conflicts++
		}
	}
	assert.Equal(t, 1, admitted)
	assert.Equal(t, callers-1, conflicts)

	active, err := repo.HasActiveWorkflow(ctx, "customer-1")
	require.NoError(t, err)
	assert.True(t, active)

	running, err := repo.CountRunning(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, running)

	page, err := repo.List(ctx, domain.WorkflowFilter{CustomerID: "customer-1"})
	require.NoError(t, err)
	assert.Equal(t, 1, page.TotalCount)
}

func TestPostgresWorkflowRepository_RetryReadmission(t *testing.T) {
	repo := setupPostgresRepository(t)
	ctx := context.Background()

	first := newTestWorkflow(t, "customer-1", domain.WorkflowTypeProvisionSubscriber)
	require.NoError(t, repo.Admit(ctx, first))
	_, err := repo.AppendTransition(ctx, domain.Transition{WorkflowID: first.ID, ExpectedStatus: domain.WorkflowStatusPending, Status: domain.WorkflowStatusRunning})
	require.NoError(t, err)

	msg := "step allocate_ip failed"
	_, err = repo.AppendTransition(ctx, domain.Transition{
		WorkflowID:     first.ID,
		ExpectedStatus: domain.WorkflowStatusRunning,
		Status:         domain.WorkflowStatusFailed,
		ErrorMessage:   &msg,
		Retriable:      boolPtr(true),
	})
	require.NoError(t, err)

	// a retriable failure keeps the customer's slot
	err = repo.Admit(ctx, newTestWorkflow(t, "customer-1", domain.WorkflowTypeActivateService))
	assert.ErrorIs(t, err, domain.ErrAdmissionConflict)

	_, err = repo.AppendTransition(ctx, domain.Transition{
		WorkflowID:     first.ID,
		ExpectedStatus: domain.WorkflowStatusFailed,
		Retriable:      boolPtr(false),
	})
	require.NoError(t, err)

	second := newTestWorkflow(t, "customer-1", domain.WorkflowTypeActivateService)
	require.NoError(t, repo.Admit(ctx, second))

	// retrying the first workflow would give the customer two active workflows
	_, err = repo.AppendTransition(ctx, domain.Transition{
		WorkflowID:          first.ID,
		ExpectedStatus:      domain.WorkflowStatusFailed,
		Status:              domain.WorkflowStatusRunning,
		IncrementRetryCount: true,
	})
	assert.ErrorIs(t, err, domain.ErrAdmissionConflict)

	got, err := repo.FindByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.WorkflowStatusFailed, got.Status)
	assert.Equal(t, 0, got.RetryCount)
}

func TestPostgresWorkflowRepository_AppendTransitionCompareAndSet(t *testing.T) {
	repo := setupPostgresRepository(t)
	ctx := context.Background()

	wf := newTestWorkflow(t, "customer-1", domain.WorkflowTypeProvisionSubscriber)
	require.NoError(t, repo.Admit(ctx, wf))
	running, err := repo.AppendTransition(ctx, domain.Transition{WorkflowID: wf.ID, Status: domain.WorkflowStatusRunning})
	require.NoError(t, err)

	const callers = 10
	var wg sync.WaitGroup
	results := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.AppendTransition(ctx, domain.Transition{
				WorkflowID:     wf.ID,
				ExpectedStatus: domain.WorkflowStatusRunning,
				Status:         domain.WorkflowStatusRollingBack,
				Reason:         "cancel requested",
			})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	applied := 0
	for err := range results {
		if err == nil {
			applied++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	}
	assert.Equal(t, 1, applied)

	got, err := repo.FindByID(ctx, wf.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.WorkflowStatusRollingBack, got.Status)
	assert.Equal(t, running.Version.Value+1, got.Version.Value)

	records, err := repo.Transitions(ctx, wf.ID)
	require.NoError(t, err)
	last := records[len(records)-1]
	assert.Equal(t, domain.WorkflowStatusRunning, last.FromStatus)
	assert.Equal(t, domain.WorkflowStatusRollingBack, last.ToStatus)
}

func TestPostgresWorkflowRepository_StepChangesArePersisted(t *testing.T) {
	repo := setupPostgresRepository(t)
	ctx := context.Background()

	wf := newTestWorkflow(t, "customer-1", domain.WorkflowTypeProvisionSubscriber)
	require.NoError(t, repo.Admit(ctx, wf))

	errMsg := "ipam allocate_address: busy"
	_, err := repo.AppendTransition(ctx, domain.Transition{
		WorkflowID: wf.ID,
		Status:     domain.WorkflowStatusRunning,
		Steps: []domain.StepChange{
			{StepID: wf.Steps[0].ID, Status: domain.StepStatusCompleted, Output: json.RawMessage(`{"ip":"10.0.0.7"}`)},
			{StepID: wf.Steps[1].ID, Status: domain.StepStatusRunning, RetryCount: intPtr(2), ErrorMessage: &errMsg},
		},
	})
	require.NoError(t, err)
	_, err = repo.AppendTransition(ctx, domain.Transition{
		WorkflowID: wf.ID,
		Status:     domain.WorkflowStatusRollingBack,
		Steps: []domain.StepChange{
			{StepID: wf.Steps[0].ID, Status: domain.StepStatusCompensating, CompensationRetryCount: intPtr(4)},
		},
	})
	require.NoError(t, err)

	got, err := repo.FindByID(ctx, wf.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StepStatusCompensating, got.Steps[0].Status)
	assert.Equal(t, 4, got.Steps[0].CompensationRetryCount)
	assert.JSONEq(t, `{"ip":"10.0.0.7"}`, string(got.Steps[0].Output))
	assert.Equal(t, domain.StepStatusRunning, got.Steps[1].Status)
	assert.Equal(t, 2, got.Steps[1].RetryCount)
	assert.Equal(t, errMsg, got.Steps[1].ErrorMessage)
	assert.NotNil(t, got.Steps[1].StartedAt)
}

func TestPostgresWorkflowRepository_LeaseExpiry(t *testing.T) {
	repo := setupPostgresRepository(t)
	ctx := context.Background()

	wf := newTestWorkflow(t, "customer-1", domain.WorkflowTypeProvisionSubscriber)
	require.NoError(t, repo.Admit(ctx, wf))

	claimed, err := repo.Claim(ctx, wf.ID, "instance-a", 2*time.Second)
	require.NoError(t, err)
	require.True(t, claimed)

	claimed, err = repo.Claim(ctx, wf.ID, "instance-b", time.Minute)
	require.NoError(t, err)
	assert.False(t, claimed)

	ids, err := repo.ListRecoverable(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, ids)

	// expiry is judged by the database clock
	require.Eventually(t, func() bool {
		ids, err := repo.ListRecoverable(ctx, 10)
		return err == nil && len(ids) == 1 && ids[0] == wf.ID
	}, 10*time.Second, 100*time.Millisecond)

	claimed, err = repo.Claim(ctx, wf.ID, "instance-b", time.Minute)
	require.NoError(t, err)
	assert.True(t, claimed)

	// a stale owner cannot release someone else's lease
	require.NoError(t, repo.Release(ctx, wf.ID, "instance-a"))
	claimed, err = repo.Claim(ctx, wf.ID, "instance-a", time.Minute)
	require.NoError(t, err)
	assert.False(t, claimed)

	require.NoError(t, repo.Release(ctx, wf.ID, "instance-b"))
	claimed, err = repo.Claim(ctx, wf.ID, "instance-a", time.Minute)
	require.NoError(t, err)
	assert.True(t, claimed)

	_, err = repo.Claim(ctx, models.GenerateUUID(), "instance-a", time.Minute)
	assert.ErrorIs(t, err, domain.ErrWorkflowNotFound)
}

func intPtr(v int) *int    { return &v }
func boolPtr(v bool) *bool { return &v }
