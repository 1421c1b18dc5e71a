package handlers

import (
	"context"

	"github.com/draftea/provisioning-system/provisioning-service/application"
	"github.com/draftea/provisioning-system/provisioning-service/domain"
	"github.com/draftea/provisioning-system/shared/events"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

var (
	_ events.EventHandler = (*CommandRouter)(nil)
	_ events.EventHandler = (*CommandHandlers)(nil)
)

// CommandRouter routes commands consumed from the intake queue to the
// handler registered for their event type
type CommandRouter struct {
	handlers map[string]events.EventHandler
	logger   zerolog.Logger
}

// NewCommandRouter creates an empty command router
func NewCommandRouter(logger zerolog.Logger) *CommandRouter {
	return &CommandRouter{
		handlers: make(map[string]events.EventHandler),
		logger:   logger.With().Str("component", "command_router").Logger(),
	}
}

// RegisterHandler registers the handler for an event type. A later
// registration for the same type replaces the earlier one.
func (r *CommandRouter) RegisterHandler(eventType string, handler events.EventHandler) {
	r.handlers[eventType] = handler
}

// HandlerID returns the unique identifier for this event handler
func (r *CommandRouter) HandlerID() string {
	return "provisioning-command-router"
}

// Handle routes the event. Only store outages are returned to the
// subscriber so the message is redelivered; every other failure is
// logged and the message acknowledged.
func (r *CommandRouter) Handle(ctx context.Context, event *events.Event) error {
	logger := r.logger.With().
		Str("event_type", event.EventType).
		Str("event_id", event.ID.String()).
		Logger()

	handler, ok := r.handlers[event.EventType]
	if !ok {
		logger.Warn().Msg("no handler registered for command")
		return nil
	}

	err := handler.Handle(ctx, event)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrStoreUnavailable), errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		logger.Warn().Err(err).Msg("command will be redelivered")
		return err
	default:
		logger.Error().Err(err).Msg("command rejected")
		return nil
	}
}

// CommandHandlers handles the commands accepted from the intake queue
type CommandHandlers struct {
	provisionSubscriber *application.ProvisionSubscriber
	startWorkflow       *application.StartWorkflow
	cancelWorkflow      *application.CancelWorkflow
	retryWorkflow       *application.RetryWorkflow
}

// NewCommandHandlers creates new command handlers
func NewCommandHandlers(
	provisionSubscriber *application.ProvisionSubscriber,
	startWorkflow *application.StartWorkflow,
	cancelWorkflow *application.CancelWorkflow,
	retryWorkflow *application.RetryWorkflow,
) *CommandHandlers {
	return &CommandHandlers{
		provisionSubscriber: provisionSubscriber,
		startWorkflow:       startWorkflow,
		cancelWorkflow:      cancelWorkflow,
		retryWorkflow:       retryWorkflow,
	}
}

// Handle implements the events.EventHandler interface
func (h *CommandHandlers) Handle(ctx context.Context, event *events.Event) error {
	switch event.EventType {
	case events.ProvisionSubscriberRequestedEvent:
		return h.HandleProvisionSubscriberRequested(ctx, event)
	case events.WorkflowStartRequestedEvent:
		return h.HandleWorkflowStartRequested(ctx, event)
	case events.WorkflowCancelRequestedCommand:
		return h.HandleWorkflowCancelRequested(ctx, event)
	case events.WorkflowRetryRequestedCommand:
		return h.HandleWorkflowRetryRequested(ctx, event)
	default:
		return nil
	}
}

// HandlerID returns the unique identifier for this event handler
func (h *CommandHandlers) HandlerID() string {
	return "provisioning-service-command-handler"
}

// Register binds every command type to h
func (h *CommandHandlers) Register(router *CommandRouter) {
	for _, eventType := range []string{
		events.ProvisionSubscriberRequestedEvent,
		events.WorkflowStartRequestedEvent,
		events.WorkflowCancelRequestedCommand,
		events.WorkflowRetryRequestedCommand,
	} {
		router.RegisterHandler(eventType, h)
	}
}

// HandleProvisionSubscriberRequested admits a provision_subscriber workflow
func (h *CommandHandlers) HandleProvisionSubscriberRequested(ctx context.Context, event *events.Event) error {
	var cmd application.ProvisionSubscriberCommand
	if err := event.UnmarshalPayload(&cmd); err != nil {
		return errors.Wrap(domain.ErrInvalidInput, err.Error())
	}

	_, err := h.provisionSubscriber.Execute(ctx, &cmd)
	return err
}

// HandleWorkflowStartRequested admits a lifecycle workflow
func (h *CommandHandlers) HandleWorkflowStartRequested(ctx context.Context, event *events.Event) error {
	var cmd application.StartWorkflowCommand
	if err := event.UnmarshalPayload(&cmd); err != nil {
		return errors.Wrap(domain.ErrInvalidInput, err.Error())
	}

	_, err := h.startWorkflow.Execute(ctx, &cmd)
	return err
}

// HandleWorkflowCancelRequested cancels the workflow named in the payload,
// or the event's aggregate when the payload carries none
func (h *CommandHandlers) HandleWorkflowCancelRequested(ctx context.Context, event *events.Event) error {
	var cmd application.CancelWorkflowCommand
	if err := event.UnmarshalPayload(&cmd); err != nil {
		return errors.Wrap(domain.ErrInvalidInput, err.Error())
	}
	if cmd.WorkflowID == "" {
		cmd.WorkflowID = event.AggregateID.String()
	}

	_, err := h.cancelWorkflow.Execute(ctx, &cmd)
	return err
}

// HandleWorkflowRetryRequested retries the workflow named in the payload
func (h *CommandHandlers) HandleWorkflowRetryRequested(ctx context.Context, event *events.Event) error {
	var cmd application.RetryWorkflowCommand
	if err := event.UnmarshalPayload(&cmd); err != nil {
		return errors.Wrap(domain.ErrInvalidInput, err.Error())
	}
	if cmd.WorkflowID == "" {
		cmd.WorkflowID = event.AggregateID.String()
	}

	_, err := h.retryWorkflow.Execute(ctx, &cmd)
	return err
}
