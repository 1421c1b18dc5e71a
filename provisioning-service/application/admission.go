package application

import (
	"context"
	"encoding/json"

	"github.com/draftea/provisioning-system/provisioning-service/domain"
	"github.com/draftea/provisioning-system/shared/events"
	"github.com/draftea/provisioning-system/shared/telemetry"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
)

var validate = validator.New()

// admission stores a new workflow under the one-active-workflow-per-customer
// rule and hands it to the dispatcher
type admission struct {
	repo       domain.WorkflowRepository
	publisher  events.Publisher
	dispatcher WorkflowDispatcher
	logger     zerolog.Logger
}

func (a *admission) admit(ctx context.Context, customerID string, workflowType domain.WorkflowType, steps []*domain.WorkflowStep, input json.RawMessage, rollbackOnFailure bool) (*domain.ProvisioningResult, error) {
	wf, err := domain.NewWorkflow(customerID, workflowType, steps, input, rollbackOnFailure)
	if err != nil {
		return nil, err
	}

	if err := a.repo.Admit(ctx, wf); err != nil {
		if errors.Is(err, domain.ErrAdmissionConflict) {
			telemetry.RecordCounter(ctx, "workflow_admission_conflicts_total", "Admissions rejected by an active workflow", 1,
				attribute.String("workflow_type", workflowType.String()),
			)
		}
		return nil, errors.Wrap(err, "failed to admit workflow")
	}

	telemetry.RecordCounter(ctx, "workflows_admitted_total", "Admitted workflows", 1,
		attribute.String("workflow_type", workflowType.String()),
	)
	a.logger.Info().
		Str("workflow_id", wf.ID.String()).
		Str("customer_id", customerID).
		Str("workflow_type", workflowType.String()).
		Int("steps", wf.TotalSteps()).
		Msg("workflow admitted")

	publish(ctx, a.publisher, a.logger, wf.Events()...)
	wf.ClearEvents()

	message := "workflow accepted"
	if !a.dispatcher.Dispatch(wf.ID) {
		message = "workflow accepted, execution deferred"
	}
	return domain.NewProvisioningResult(wf, message), nil
}

// publish delivers events best effort; the store already holds the truth
func publish(ctx context.Context, publisher events.Publisher, logger zerolog.Logger, evts ...*events.Event) {
	if len(evts) == 0 {
		return
	}
	if err := publisher.Publish(ctx, evts...); err != nil {
		logger.Warn().Err(err).Int("events", len(evts)).Msg("failed to publish events")
	}
}

func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return errors.Wrapf(domain.ErrInvalidInput, "field %s failed on %q", fe.Field(), fe.Tag())
	}
	return errors.Wrap(domain.ErrInvalidInput, err.Error())
}
