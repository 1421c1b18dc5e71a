package infrastructure

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"strings"
	"time"

	"github.com/draftea/provisioning-system/provisioning-service/domain"
	"github.com/draftea/provisioning-system/shared/models"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
)

var _ domain.WorkflowRepository = (*PostgresWorkflowRepository)(nil)

const activeCustomerIndex = "workflows_one_active_per_customer"

// PostgresWorkflowRepository implements WorkflowRepository using PostgreSQL.
// The one-active-workflow-per-customer rule is a partial unique index, so
// admission and retry re-admission are atomic without application locks.
type PostgresWorkflowRepository struct {
	db *sqlx.DB
}

// NewPostgresWorkflowRepository creates a new PostgresWorkflowRepository
func NewPostgresWorkflowRepository(db *sqlx.DB) *PostgresWorkflowRepository {
	return &PostgresWorkflowRepository{db: db}
}

// postgresWorkflow represents a workflow row
type postgresWorkflow struct {
	ID                         string     `db:"id"`
	CustomerID                 string     `db:"customer_id"`
	WorkflowType               string     `db:"workflow_type"`
	Status                     string     `db:"status"`
	Input                      *string    `db:"input"`
	RollbackOnFailure          bool       `db:"rollback_on_failure"`
	RetryCount                 int        `db:"retry_count"`
	ErrorMessage               string     `db:"error_message"`
	RequiresManualIntervention bool       `db:"requires_manual_intervention"`
	Retriable                  bool       `db:"retriable"`
	StartedAt                  *time.Time `db:"started_at"`
	CompletedAt                *time.Time `db:"completed_at"`
	FailedAt                   *time.Time `db:"failed_at"`
	LeaseOwner                 *string    `db:"lease_owner"`
	LeaseExpiresAt             *time.Time `db:"lease_expires_at"`
	CreatedAt                  time.Time  `db:"created_at"`
	UpdatedAt                  time.Time  `db:"updated_at"`
	Version                    int        `db:"version"`
	OldVersion                 int        `db:"old_version"`
}

// postgresStep represents a workflow_steps row
type postgresStep struct {
	ID                     string     `db:"id"`
	WorkflowID             string     `db:"workflow_id"`
	Name                   string     `db:"name"`
	TargetSystem           string     `db:"target_system"`
	Action                 string     `db:"action"`
	StepOrder              int        `db:"step_order"`
	Status                 string     `db:"status"`
	RetryCount             int        `db:"retry_count"`
	CompensationRetryCount int        `db:"compensation_retry_count"`
	ErrorMessage           string     `db:"error_message"`
	Output                 *string    `db:"output"`
	StartedAt              *time.Time `db:"started_at"`
	CompletedAt            *time.Time `db:"completed_at"`
	FailedAt               *time.Time `db:"failed_at"`
}

// postgresTransition represents a workflow_transitions row
type postgresTransition struct {
	ID         int64     `db:"id"`
	WorkflowID string    `db:"workflow_id"`
	FromStatus string    `db:"from_status"`
	ToStatus   string    `db:"to_status"`
	StepID     *string   `db:"step_id"`
	StepName   string    `db:"step_name"`
	StepStatus string    `db:"step_status"`
	Error      string    `db:"error"`
	Reason     string    `db:"reason"`
	OccurredAt time.Time `db:"occurred_at"`
}

const workflowColumns = `
	id, customer_id, workflow_type, status, input, rollback_on_failure,
	retry_count, error_message, requires_manual_intervention, retriable,
	started_at, completed_at, failed_at, lease_owner, lease_expires_at,
	created_at, updated_at, version`

const stepColumns = `
	id, workflow_id, name, target_system, action, step_order, status,
	retry_count, compensation_retry_count, error_message, output,
	started_at, completed_at, failed_at`

// Admit inserts the workflow, its steps and the admission audit row
func (r *PostgresWorkflowRepository) Admit(ctx context.Context, wf *domain.Workflow) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return mapError(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	query := `
		INSERT INTO workflows (` + workflowColumns + `
		) VALUES (
			:id, :customer_id, :workflow_type, :status, :input, :rollback_on_failure,
			:retry_count, :error_message, :requires_manual_intervention, :retriable,
			:started_at, :completed_at, :failed_at, :lease_owner, :lease_expires_at,
			:created_at, :updated_at, :version
		)`
	if _, err := tx.NamedExecContext(ctx, query, toPostgresWorkflow(wf)); err != nil {
		return mapError(err, "failed to insert workflow")
	}

	for _, step := range wf.Steps {
		if err := insertStep(ctx, tx, wf.ID, step); err != nil {
			return err
		}
	}

	rec := &domain.TransitionRecord{
		WorkflowID: wf.ID,
		ToStatus:   wf.Status,
		Reason:     "workflow admitted",
		OccurredAt: wf.CreatedAt(),
	}
	if err := insertTransitions(ctx, tx, []*domain.TransitionRecord{rec}); err != nil {
		return err
	}

	return mapError(tx.Commit(), "failed to commit admission")
}

// FindByID loads a workflow with its steps
func (r *PostgresWorkflowRepository) FindByID(ctx context.Context, id models.ID) (*domain.Workflow, error) {
	return r.load(ctx, r.db, id, false)
}

// AppendTransition locks the workflow row, applies t and writes the changed
// rows and audit records in one transaction
func (r *PostgresWorkflowRepository) AppendTransition(ctx context.Context, t domain.Transition) (*domain.Workflow, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, mapError(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	wf, err := r.load(ctx, tx, t.WorkflowID, true)
	if err != nil {
		return nil, err
	}

	from := wf.Status
	at := models.Now()
	if err := wf.ApplyTransition(t, at); err != nil {
		return nil, err
	}

	row := toPostgresWorkflow(wf)
	row.OldVersion = wf.Version.Value - 1
	res, err := tx.NamedExecContext(ctx, `
		UPDATE workflows
		SET status = :status, retry_count = :retry_count, error_message = :error_message,
			requires_manual_intervention = :requires_manual_intervention, retriable = :retriable,
			started_at = :started_at, completed_at = :completed_at, failed_at = :failed_at,
			updated_at = :updated_at, version = :version
		WHERE id = :id AND version = :old_version`, row)
	if err != nil {
		return nil, mapError(err, "failed to update workflow")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, errors.Wrapf(domain.ErrInvalidTransition, "workflow %s was modified concurrently", wf.ID)
	}

	for _, change := range t.Steps {
		step, _ := wf.Step(change.StepID)
		if _, err := tx.NamedExecContext(ctx, `
			UPDATE workflow_steps
			SET status = :status, retry_count = :retry_count,
				compensation_retry_count = :compensation_retry_count, error_message = :error_message,
				output = :output, started_at = :started_at, completed_at = :completed_at,
				failed_at = :failed_at
			WHERE id = :id`, toPostgresStep(wf.ID, step)); err != nil {
			return nil, mapError(err, "failed to update workflow step")
		}
	}

	if err := insertTransitions(ctx, tx, domain.TransitionRecords(from, wf, t, at)); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, mapError(err, "failed to commit transition")
	}
	return wf, nil
}

// Transitions returns the audit history of a workflow, oldest first
func (r *PostgresWorkflowRepository) Transitions(ctx context.Context, id models.ID) ([]*domain.TransitionRecord, error) {
	var exists bool
	if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM workflows WHERE id = $1)`, id.String()); err != nil {
		return nil, mapError(err, "failed to check workflow")
	}
	if !exists {
		return nil, errors.Wrapf(domain.ErrWorkflowNotFound, "workflow %s", id)
	}

	var rows []postgresTransition
	err := r.db.SelectContext(ctx, &rows, `
		SELECT id, workflow_id, from_status, to_status, step_id, step_name,
			   step_status, error, reason, occurred_at
		FROM workflow_transitions
		WHERE workflow_id = $1
		ORDER BY id ASC`, id.String())
	if err != nil {
		return nil, mapError(err, "failed to load transitions")
	}

	records := make([]*domain.TransitionRecord, len(rows))
	for i, row := range rows {
		rec := &domain.TransitionRecord{
			ID:         row.ID,
			WorkflowID: models.ID(row.WorkflowID),
			FromStatus: domain.WorkflowStatus(row.FromStatus),
			ToStatus:   domain.WorkflowStatus(row.ToStatus),
			StepName:   row.StepName,
			StepStatus: domain.StepStatus(row.StepStatus),
			Error:      row.Error,
			Reason:     row.Reason,
			OccurredAt: row.OccurredAt,
		}
		if row.StepID != nil {
			rec.StepID = models.ID(*row.StepID)
		}
		records[i] = rec
	}
	return records, nil
}

// List returns workflows matching the filter, newest first
func (r *PostgresWorkflowRepository) List(ctx context.Context, filter domain.WorkflowFilter) (*domain.WorkflowPage, error) {
	var conds []string
	var args []interface{}
	if filter.Status != nil {
		args = append(args, filter.Status.String())
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Type != nil {
		args = append(args, filter.Type.String())
		conds = append(conds, fmt.Sprintf("workflow_type = $%d", len(args)))
	}
	if filter.CustomerID != "" {
		args = append(args, filter.CustomerID)
		conds = append(conds, fmt.Sprintf("customer_id = $%d", len(args)))
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM workflows`+where, args...); err != nil {
		return nil, mapError(err, "failed to count workflows")
	}

	query := `SELECT ` + workflowColumns + ` FROM workflows` + where + ` ORDER BY created_at DESC, id DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	var rows []postgresWorkflow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, mapError(err, "failed to list workflows")
	}

	items, err := r.withSteps(ctx, rows)
	if err != nil {
		return nil, err
	}
	return domain.NewWorkflowPage(items, total, filter), nil
}

// Statistics aggregates all workflows in SQL
func (r *PostgresWorkflowRepository) Statistics(ctx context.Context) (*domain.WorkflowStatistics, error) {
	var groups []struct {
		Status       string `db:"status"`
		WorkflowType string `db:"workflow_type"`
		Retriable    bool   `db:"retriable"`
		Count        int    `db:"count"`
	}
	err := r.db.SelectContext(ctx, &groups, `
		SELECT status, workflow_type, retriable, COUNT(*) AS count
		FROM workflows
		GROUP BY status, workflow_type, retriable`)
	if err != nil {
		return nil, mapError(err, "failed to aggregate workflows")
	}

	stats := &domain.WorkflowStatistics{
		ByStatus: make(map[domain.WorkflowStatus]int),
		ByType:   make(map[domain.WorkflowType]int),
	}
	terminal := 0
	for _, g := range groups {
		status := domain.WorkflowStatus(g.Status)
		stats.Total += g.Count
		stats.ByStatus[status] += g.Count
		stats.ByType[domain.WorkflowType(g.WorkflowType)] += g.Count

		sample := domain.Workflow{Status: status, Retriable: g.Retriable}
		if sample.NeedsDriving() {
			stats.Running += g.Count
		}
		if sample.IsTerminal() {
			terminal += g.Count
		}
	}
	if terminal > 0 {
		stats.SuccessRate = float64(stats.ByStatus[domain.WorkflowStatusCompleted]) / float64(terminal)
	}

	var totals struct {
		AverageDuration float64 `db:"average_duration"`
		Manual          int     `db:"manual"`
		Compensated     int     `db:"compensated"`
	}
	err = r.db.GetContext(ctx, &totals, `
		SELECT
			COALESCE((SELECT AVG(EXTRACT(EPOCH FROM completed_at - started_at))
			          FROM workflows
			          WHERE status = 'completed' AND started_at IS NOT NULL), 0) AS average_duration,
			(SELECT COUNT(*) FROM workflows WHERE requires_manual_intervention) AS manual,
			(SELECT COUNT(DISTINCT workflow_id) FROM workflow_steps
			 WHERE status IN ('compensated', 'compensation_failed')) AS compensated`)
	if err != nil {
		return nil, mapError(err, "failed to aggregate workflow durations")
	}

	stats.AverageDurationSeconds = totals.AverageDuration
	stats.ManualInterventionCount = totals.Manual
	stats.CompensationCount = totals.Compensated
	return stats, nil
}

// HasActiveWorkflow reports whether the customer holds the active slot
func (r *PostgresWorkflowRepository) HasActiveWorkflow(ctx context.Context, customerID string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `
		SELECT EXISTS (
			SELECT 1 FROM workflows
			WHERE customer_id = $1
			  AND (status IN ('pending', 'running', 'rolling_back') OR (status = 'failed' AND retriable))
		)`, customerID)
	if err != nil {
		return false, mapError(err, "failed to check active workflow")
	}
	return exists, nil
}

// CountRunning counts workflows the coordinator still has to drive
func (r *PostgresWorkflowRepository) CountRunning(ctx context.Context) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `
		SELECT COUNT(*) FROM workflows
		WHERE status IN ('pending', 'running', 'rolling_back')`)
	if err != nil {
		return 0, mapError(err, "failed to count running workflows")
	}
	return n, nil
}

// Claim takes or renews the lease using the database clock, so instances
// with skewed clocks agree on expiry
func (r *PostgresWorkflowRepository) Claim(ctx context.Context, id models.ID, owner string, ttl time.Duration) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE workflows
		SET lease_owner = $2, lease_expires_at = NOW() + $3 * INTERVAL '1 millisecond'
		WHERE id = $1
		  AND (lease_owner IS NULL OR lease_owner = $2 OR lease_expires_at < NOW())`,
		id.String(), owner, ttl.Milliseconds())
	if err != nil {
		return false, mapError(err, "failed to claim workflow")
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, mapError(err, "failed to claim workflow")
	}
	if n == 1 {
		return true, nil
	}

	var exists bool
	if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM workflows WHERE id = $1)`, id.String()); err != nil {
		return false, mapError(err, "failed to check workflow")
	}
	if !exists {
		return false, errors.Wrapf(domain.ErrWorkflowNotFound, "workflow %s", id)
	}
	return false, nil
}

// Release drops the lease if owner holds it
func (r *PostgresWorkflowRepository) Release(ctx context.Context, id models.ID, owner string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE workflows SET lease_owner = NULL, lease_expires_at = NULL
		WHERE id = $1 AND lease_owner = $2`, id.String(), owner)
	return mapError(err, "failed to release workflow")
}

// ListRecoverable returns unleased workflows that still need driving
func (r *PostgresWorkflowRepository) ListRecoverable(ctx context.Context, limit int) ([]models.ID, error) {
	var ids []string
	err := r.db.SelectContext(ctx, &ids, `
		SELECT id FROM workflows
		WHERE status IN ('pending', 'running', 'rolling_back')
		  AND (lease_owner IS NULL OR lease_expires_at < NOW())
		ORDER BY updated_at ASC
		LIMIT $1`, limit)
	if err != nil {
		return nil, mapError(err, "failed to list recoverable workflows")
	}

	out := make([]models.ID, len(ids))
	for i, id := range ids {
		out[i] = models.ID(id)
	}
	return out, nil
}

func (r *PostgresWorkflowRepository) load(ctx context.Context, q sqlx.QueryerContext, id models.ID, forUpdate bool) (*domain.Workflow, error) {
	query := `SELECT ` + workflowColumns + ` FROM workflows WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	var row postgresWorkflow
	if err := sqlx.GetContext(ctx, q, &row, query, id.String()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.Wrapf(domain.ErrWorkflowNotFound, "workflow %s", id)
		}
		return nil, mapError(err, "failed to find workflow")
	}

	var steps []postgresStep
	err := sqlx.SelectContext(ctx, q, &steps,
		`SELECT `+stepColumns+` FROM workflow_steps WHERE workflow_id = $1 ORDER BY step_order ASC`, id.String())
	if err != nil {
		return nil, mapError(err, "failed to load workflow steps")
	}

	return toDomainWorkflow(&row, steps), nil
}

// withSteps loads the steps of several workflows with one query
func (r *PostgresWorkflowRepository) withSteps(ctx context.Context, rows []postgresWorkflow) ([]*domain.Workflow, error) {
	if len(rows) == 0 {
		return []*domain.Workflow{}, nil
	}

	ids := make([]string, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}

	query, args, err := sqlx.In(`SELECT `+stepColumns+` FROM workflow_steps WHERE workflow_id IN (?) ORDER BY step_order ASC`, ids)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build steps query")
	}

	var steps []postgresStep
	if err := r.db.SelectContext(ctx, &steps, r.db.Rebind(query), args...); err != nil {
		return nil, mapError(err, "failed to load workflow steps")
	}

	byWorkflow := make(map[string][]postgresStep, len(rows))
	for _, s := range steps {
		byWorkflow[s.WorkflowID] = append(byWorkflow[s.WorkflowID], s)
	}

	out := make([]*domain.Workflow, len(rows))
	for i := range rows {
		out[i] = toDomainWorkflow(&rows[i], byWorkflow[rows[i].ID])
	}
	return out, nil
}

func insertStep(ctx context.Context, tx *sqlx.Tx, workflowID models.ID, step *domain.WorkflowStep) error {
	query := `
		INSERT INTO workflow_steps (` + stepColumns + `
		) VALUES (
			:id, :workflow_id, :name, :target_system, :action, :step_order, :status,
			:retry_count, :compensation_retry_count, :error_message, :output,
			:started_at, :completed_at, :failed_at
		)`
	if _, err := tx.NamedExecContext(ctx, query, toPostgresStep(workflowID, step)); err != nil {
		return mapError(err, "failed to insert workflow step")
	}
	return nil
}

func insertTransitions(ctx context.Context, tx *sqlx.Tx, records []*domain.TransitionRecord) error {
	query := `
		INSERT INTO workflow_transitions (
			workflow_id, from_status, to_status, step_id, step_name,
			step_status, error, reason, occurred_at
		) VALUES (
			:workflow_id, :from_status, :to_status, :step_id, :step_name,
			:step_status, :error, :reason, :occurred_at
		)`

	for _, rec := range records {
		row := postgresTransition{
			WorkflowID: rec.WorkflowID.String(),
			FromStatus: rec.FromStatus.String(),
			ToStatus:   rec.ToStatus.String(),
			StepName:   rec.StepName,
			StepStatus: rec.StepStatus.String(),
			Error:      rec.Error,
			Reason:     rec.Reason,
			OccurredAt: rec.OccurredAt,
		}
		if !rec.StepID.IsZero() {
			stepID := rec.StepID.String()
			row.StepID = &stepID
		}
		if _, err := tx.NamedExecContext(ctx, query, row); err != nil {
			return mapError(err, "failed to insert transition")
		}
	}
	return nil
}

func toPostgresWorkflow(wf *domain.Workflow) *postgresWorkflow {
	row := &postgresWorkflow{
		ID:                         wf.ID.String(),
		CustomerID:                 wf.CustomerID,
		WorkflowType:               wf.Type.String(),
		Status:                     wf.Status.String(),
		Input:                      jsonString(wf.Input),
		RollbackOnFailure:          wf.RollbackOnFailure,
		RetryCount:                 wf.RetryCount,
		ErrorMessage:               wf.ErrorMessage,
		RequiresManualIntervention: wf.RequiresManualIntervention,
		Retriable:                  wf.Retriable,
		StartedAt:                  wf.StartedAt,
		CompletedAt:                wf.CompletedAt,
		FailedAt:                   wf.FailedAt,
		LeaseExpiresAt:             wf.LeaseExpiresAt,
		CreatedAt:                  wf.Timestamps.CreatedAt,
		UpdatedAt:                  wf.Timestamps.UpdatedAt,
		Version:                    wf.Version.Value,
	}
	if wf.LeaseOwner != "" {
		row.LeaseOwner = &wf.LeaseOwner
	}
	return row
}

func toPostgresStep(workflowID models.ID, step *domain.WorkflowStep) *postgresStep {
	return &postgresStep{
		ID:                     step.ID.String(),
		WorkflowID:             workflowID.String(),
		Name:                   step.Name,
		TargetSystem:           step.TargetSystem,
		Action:                 step.Action,
		StepOrder:              step.Order,
		Status:                 step.Status.String(),
		RetryCount:             step.RetryCount,
		CompensationRetryCount: step.CompensationRetryCount,
		ErrorMessage:           step.ErrorMessage,
		Output:                 jsonString(step.Output),
		StartedAt:              step.StartedAt,
		CompletedAt:            step.CompletedAt,
		FailedAt:               step.FailedAt,
	}
}

func toDomainWorkflow(row *postgresWorkflow, steps []postgresStep) *domain.Workflow {
	wf := &domain.Workflow{
		ID:                         models.ID(row.ID),
		CustomerID:                 row.CustomerID,
		Type:                       domain.WorkflowType(row.WorkflowType),
		Status:                     domain.WorkflowStatus(row.Status),
		Input:                      rawJSON(row.Input),
		RollbackOnFailure:          row.RollbackOnFailure,
		RetryCount:                 row.RetryCount,
		ErrorMessage:               row.ErrorMessage,
		RequiresManualIntervention: row.RequiresManualIntervention,
		Retriable:                  row.Retriable,
		StartedAt:                  row.StartedAt,
		CompletedAt:                row.CompletedAt,
		FailedAt:                   row.FailedAt,
		Timestamps:                 models.Timestamps{CreatedAt: row.CreatedAt, UpdatedAt: row.UpdatedAt},
		Version:                    models.Version{Value: row.Version},
		LeaseExpiresAt:             row.LeaseExpiresAt,
	}
	if row.LeaseOwner != nil {
		wf.LeaseOwner = *row.LeaseOwner
	}

	wf.Steps = make([]*domain.WorkflowStep, len(steps))
	for i, s := range steps {
		wf.Steps[i] = &domain.WorkflowStep{
			ID:                     models.ID(s.ID),
			Name:                   s.Name,
			TargetSystem:           s.TargetSystem,
			Action:                 s.Action,
			Order:                  s.StepOrder,
			Status:                 domain.StepStatus(s.Status),
			RetryCount:             s.RetryCount,
			CompensationRetryCount: s.CompensationRetryCount,
			ErrorMessage:           s.ErrorMessage,
			Output:                 rawJSON(s.Output),
			StartedAt:              s.StartedAt,
			CompletedAt:            s.CompletedAt,
			FailedAt:               s.FailedAt,
		}
	}
	wf.SortSteps()
	wf.ClearEvents()
	return wf
}

func jsonString(raw json.RawMessage) *string {
	if len(raw) == 0 {
		return nil
	}
	s := string(raw)
	return &s
}

func rawJSON(s *string) json.RawMessage {
	if s == nil {
		return nil
	}
	return json.RawMessage(*s)
}

// mapError translates driver errors into domain errors. A nil err stays nil.
func mapError(err error, msg string) error {
	if err == nil {
		return nil
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch {
		case pqErr.Code == "23505" && pqErr.Constraint == activeCustomerIndex:
			return errors.Wrap(domain.ErrAdmissionConflict, msg)
		case pqErr.Code.Class() == "08", pqErr.Code.Class() == "57":
			return errors.Wrapf(domain.ErrStoreUnavailable, "%s: %s", msg, pqErr.Message)
		}
		return errors.Wrap(err, msg)
	}

	var netErr net.Error
	if errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, sql.ErrConnDone) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.As(err, &netErr) {
		return errors.Wrapf(domain.ErrStoreUnavailable, "%s: %v", msg, err)
	}

	return errors.Wrap(err, msg)
}
