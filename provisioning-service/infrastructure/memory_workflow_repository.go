package infrastructure

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/draftea/provisioning-system/provisioning-service/domain"
	"github.com/draftea/provisioning-system/shared/models"
	"github.com/pkg/errors"
)

var _ domain.WorkflowRepository = (*MemoryWorkflowRepository)(nil)

// MemoryWorkflowRepository is a single process WorkflowRepository. Every
// operation runs under one lock, which makes admission check-and-insert
// atomic. Workflows are stored and returned as copies.
type MemoryWorkflowRepository struct {
	mu           sync.RWMutex
	workflows    map[models.ID]*domain.Workflow
	transitions  map[models.ID][]*domain.TransitionRecord
	nextRecordID int64
	now          func() time.Time
}

// NewMemoryWorkflowRepository creates an empty in-memory store
func NewMemoryWorkflowRepository() *MemoryWorkflowRepository {
	return &MemoryWorkflowRepository{
		workflows:   make(map[models.ID]*domain.Workflow),
		transitions: make(map[models.ID][]*domain.TransitionRecord),
		now:         models.Now,
	}
}

// Admit stores a new workflow unless the customer already has an active one
func (r *MemoryWorkflowRepository) Admit(ctx context.Context, wf *domain.Workflow) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.workflows[wf.ID]; exists {
		return errors.Errorf("workflow %s already exists", wf.ID)
	}
	if r.activeFor(wf.CustomerID, "") {
		return errors.Wrapf(domain.ErrAdmissionConflict, "customer %s", wf.CustomerID)
	}

	r.workflows[wf.ID] = wf.Clone()
	r.record(&domain.TransitionRecord{
		WorkflowID: wf.ID,
		ToStatus:   wf.Status,
		Reason:     "workflow admitted",
		OccurredAt: wf.CreatedAt(),
	})
	return nil
}

// FindByID returns a copy of the workflow
func (r *MemoryWorkflowRepository) FindByID(ctx context.Context, id models.ID) (*domain.Workflow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	wf, ok := r.workflows[id]
	if !ok {
		return nil, errors.Wrapf(domain.ErrWorkflowNotFound, "workflow %s", id)
	}
	return wf.Clone(), nil
}

// AppendTransition applies t to a copy and swaps it in only if it is valid
func (r *MemoryWorkflowRepository) AppendTransition(ctx context.Context, t domain.Transition) (*domain.Workflow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.workflows[t.WorkflowID]
	if !ok {
		return nil, errors.Wrapf(domain.ErrWorkflowNotFound, "workflow %s", t.WorkflowID)
	}

	wf := stored.Clone()
	from := wf.Status
	wasActive := wf.IsActive()
	at := r.now()

	if err := wf.ApplyTransition(t, at); err != nil {
		return nil, err
	}
	if !wasActive && wf.IsActive() && r.activeFor(wf.CustomerID, wf.ID) {
		return nil, errors.Wrapf(domain.ErrAdmissionConflict, "customer %s", wf.CustomerID)
	}

	r.workflows[wf.ID] = wf.Clone()
	for _, rec := range domain.TransitionRecords(from, wf, t, at) {
		r.record(rec)
	}
	return wf, nil
}

// Transitions returns the audit history of a workflow, oldest first
func (r *MemoryWorkflowRepository) Transitions(ctx context.Context, id models.ID) ([]*domain.TransitionRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.workflows[id]; !ok {
		return nil, errors.Wrapf(domain.ErrWorkflowNotFound, "workflow %s", id)
	}

	records := r.transitions[id]
	out := make([]*domain.TransitionRecord, len(records))
	for i, rec := range records {
		c := *rec
		out[i] = &c
	}
	return out, nil
}

// List returns workflows matching the filter, newest first
func (r *MemoryWorkflowRepository) List(ctx context.Context, filter domain.WorkflowFilter) (*domain.WorkflowPage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []*domain.Workflow
	for _, wf := range r.workflows {
		if filter.Status != nil && wf.Status != *filter.Status {
			continue
		}
		if filter.Type != nil && wf.Type != *filter.Type {
			continue
		}
		if filter.CustomerID != "" && wf.CustomerID != filter.CustomerID {
			continue
		}
		matched = append(matched, wf)
	}

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt().Equal(matched[j].CreatedAt()) {
			return matched[i].CreatedAt().After(matched[j].CreatedAt())
		}
		return matched[i].ID > matched[j].ID
	})

	total := len(matched)
	start := min(filter.Offset, total)
	end := total
	if filter.Limit > 0 {
		end = min(start+filter.Limit, total)
	}

	items := make([]*domain.Workflow, 0, end-start)
	for _, wf := range matched[start:end] {
		items = append(items, wf.Clone())
	}
	return domain.NewWorkflowPage(items, total, filter), nil
}

// Statistics aggregates every stored workflow
func (r *MemoryWorkflowRepository) Statistics(ctx context.Context) (*domain.WorkflowStatistics, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]*domain.Workflow, 0, len(r.workflows))
	for _, wf := range r.workflows {
		all = append(all, wf)
	}
	return domain.ComputeStatistics(all), nil
}

// HasActiveWorkflow reports whether the customer holds the active slot
func (r *MemoryWorkflowRepository) HasActiveWorkflow(ctx context.Context, customerID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.activeFor(customerID, ""), nil
}

// CountRunning counts workflows the coordinator still has to drive
func (r *MemoryWorkflowRepository) CountRunning(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, wf := range r.workflows {
		if wf.NeedsDriving() {
			n++
		}
	}
	return n, nil
}

// Claim takes the lease if it is free, expired, or already held by owner
func (r *MemoryWorkflowRepository) Claim(ctx context.Context, id models.ID, owner string, ttl time.Duration) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	wf, ok := r.workflows[id]
	if !ok {
		return false, errors.Wrapf(domain.ErrWorkflowNotFound, "workflow %s", id)
	}

	now := r.now()
	if wf.LeaseOwner != "" && wf.LeaseOwner != owner && wf.LeaseExpiresAt != nil && wf.LeaseExpiresAt.After(now) {
		return false, nil
	}

	wf.LeaseOwner = owner
	wf.LeaseExpiresAt = models.TimePtr(now.Add(ttl))
	return true, nil
}

// Release drops the lease if owner holds it
func (r *MemoryWorkflowRepository) Release(ctx context.Context, id models.ID, owner string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	wf, ok := r.workflows[id]
	if !ok {
		return errors.Wrapf(domain.ErrWorkflowNotFound, "workflow %s", id)
	}
	if wf.LeaseOwner == owner {
		wf.LeaseOwner = ""
		wf.LeaseExpiresAt = nil
	}
	return nil
}

// ListRecoverable returns unleased workflows that still need driving, least
// recently updated first
func (r *MemoryWorkflowRepository) ListRecoverable(ctx context.Context, limit int) ([]models.ID, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	now := r.now()
	var candidates []*domain.Workflow
	for _, wf := range r.workflows {
		if !wf.NeedsDriving() {
			continue
		}
		if wf.LeaseOwner != "" && wf.LeaseExpiresAt != nil && wf.LeaseExpiresAt.After(now) {
			continue
		}
		candidates = append(candidates, wf)
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Timestamps.UpdatedAt.Before(candidates[j].Timestamps.UpdatedAt)
	})
	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}

	ids := make([]models.ID, len(candidates))
	for i, wf := range candidates {
		ids[i] = wf.ID
	}
	return ids, nil
}

// activeFor reports whether customerID has an active workflow other than except
func (r *MemoryWorkflowRepository) activeFor(customerID string, except models.ID) bool {
	for _, wf := range r.workflows {
		if wf.ID != except && wf.CustomerID == customerID && wf.IsActive() {
			return true
		}
	}
	return false
}

func (r *MemoryWorkflowRepository) record(rec *domain.TransitionRecord) {
	r.nextRecordID++
	rec.ID = r.nextRecordID
	r.transitions[rec.WorkflowID] = append(r.transitions[rec.WorkflowID], rec)
}
