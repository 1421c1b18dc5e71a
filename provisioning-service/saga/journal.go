package saga

import (
	"context"

	"github.com/draftea/provisioning-system/provisioning-service/domain"
	"github.com/draftea/provisioning-system/shared/events"
	"github.com/draftea/provisioning-system/shared/telemetry"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
)

// journal appends transitions to the store and publishes the events they
// produced. Event delivery is best effort: the store is the source of truth.
type journal struct {
	repo      domain.WorkflowRepository
	publisher events.Publisher
	logger    zerolog.Logger
}

func (j *journal) append(ctx context.Context, t domain.Transition) (*domain.Workflow, error) {
	wf, err := j.repo.AppendTransition(ctx, t)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to append transition %q to workflow %s", t.Reason, t.WorkflowID)
	}

	if t.Status != "" {
		telemetry.RecordCounter(ctx, "workflow_transitions_total", "Workflow status transitions", 1,
			attribute.String("workflow_type", wf.Type.String()),
			attribute.String("to_status", wf.Status.String()),
		)
	}

	j.publish(ctx, wf)
	return wf, nil
}

func (j *journal) publish(ctx context.Context, wf *domain.Workflow) {
	evts := wf.Events()
	wf.ClearEvents()
	if len(evts) == 0 || j.publisher == nil {
		return
	}

	if err := j.publisher.Publish(ctx, evts...); err != nil {
		j.logger.Warn().Err(err).
			Str("workflow_id", wf.ID.String()).
			Int("events", len(evts)).
			Msg("failed to publish workflow events")
	}
}
