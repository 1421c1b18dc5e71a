package application

import (
	"context"
	"sync"

	"github.com/draftea/provisioning-system/provisioning-service/domain"
	"github.com/draftea/provisioning-system/shared/models"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"
)

// WorkflowDriver runs a workflow until it rests in a status that needs no
// more automatic work
type WorkflowDriver interface {
	Drive(ctx context.Context, id models.ID) error
}

// WorkflowDispatcher hands workflows to background drivers
type WorkflowDispatcher interface {
	Dispatch(id models.ID) bool
}

// Dispatcher drives workflows in background goroutines. Dispatch never
// blocks: the goroutine waits for a slot, the caller does not.
type Dispatcher struct {
	driver WorkflowDriver
	slots  *semaphore.Weighted
	logger zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	inFlight map[models.ID]bool // value: dispatched again while in flight
	closed   bool
}

// NewDispatcher creates a dispatcher running at most maxConcurrent drives
func NewDispatcher(driver WorkflowDriver, maxConcurrent int64, logger zerolog.Logger) *Dispatcher {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Dispatcher{
		driver:   driver,
		slots:    semaphore.NewWeighted(maxConcurrent),
		logger:   logger.With().Str("component", "dispatcher").Logger(),
		ctx:      ctx,
		cancel:   cancel,
		inFlight: make(map[models.ID]bool),
	}
}

// Dispatch schedules a drive of the workflow. A workflow already in flight
// is driven once more after the current drive returns. It returns false
// once the dispatcher is shut down.
func (d *Dispatcher) Dispatch(id models.ID) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return false
	}
	if _, ok := d.inFlight[id]; ok {
		d.inFlight[id] = true
		return true
	}

	d.inFlight[id] = false
	d.wg.Add(1)
	go d.run(id)
	return true
}

// InFlight returns the number of workflows dispatched and not yet finished
func (d *Dispatcher) InFlight() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.inFlight)
}

func (d *Dispatcher) run(id models.ID) {
	defer d.wg.Done()

	for {
		d.drive(id)

		d.mu.Lock()
		if !d.inFlight[id] {
			delete(d.inFlight, id)
			d.mu.Unlock()
			return
		}
		d.inFlight[id] = false
		d.mu.Unlock()
	}
}

func (d *Dispatcher) drive(id models.ID) {
	if err := d.slots.Acquire(d.ctx, 1); err != nil {
		return
	}
	defer d.slots.Release(1)

	logger := d.logger.With().Str("workflow_id", id.String()).Logger()
	err := d.driver.Drive(d.ctx, id)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrLeaseLost):
		logger.Debug().Msg("workflow is driven by another instance")
	case errors.Is(err, context.Canceled):
		logger.Info().Msg("drive interrupted by shutdown")
	default:
		logger.Error().Err(err).Msg("drive failed, workflow left for recovery")
	}
}

// Shutdown stops accepting work and waits for in-flight drives. When ctx
// ends first, running drives are cancelled; their workflows stay in their
// last persisted state for recovery.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.cancel()
		return nil
	case <-ctx.Done():
		d.cancel()
		<-done
		return errors.Wrap(ctx.Err(), "dispatcher shutdown")
	}
}
