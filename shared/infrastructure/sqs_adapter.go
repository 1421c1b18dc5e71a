package infrastructure

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/draftea/provisioning-system/shared/events"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

var _ events.Subscriber = (*SQSSubscriberAdapter)(nil)

// SQSSubscriberAdapter adapts SQSEventSubscriber to the events.Subscriber interface
type SQSSubscriberAdapter struct {
	sqsSubscriber *SQSEventSubscriber
	client        SQSAPI
	queueURL      string
	logger        zerolog.Logger
	opts          []SQSSubscriberOption
}

// NewSQSSubscriberAdapter creates a subscriber for queueURL from a loaded AWS config
func NewSQSSubscriberAdapter(cfg aws.Config, queueURL string, logger zerolog.Logger, opts ...SQSSubscriberOption) *SQSSubscriberAdapter {
	return &SQSSubscriberAdapter{
		client:   sqs.NewFromConfig(cfg),
		queueURL: queueURL,
		logger:   logger,
		opts:     opts,
	}
}

// topicFilterHandler passes only events whose topic matches the pattern
// and acknowledges the rest
type topicFilterHandler struct {
	pattern events.Topic
	handler events.EventHandler
}

func (a *topicFilterHandler) HandlerID() string {
	return "topic-filter:" + a.pattern.String()
}

func (a *topicFilterHandler) Handle(ctx context.Context, event *events.Event) error {
	if !event.Topic.Matches(a.pattern) {
		return nil
	}
	return a.handler.Handle(ctx, event)
}

// Subscribe starts consuming the queue, handing events matching the topic
// pattern to handler. Only one subscription per adapter.
func (s *SQSSubscriberAdapter) Subscribe(ctx context.Context, topicPattern string, handler events.EventHandler) error {
	if s.sqsSubscriber != nil {
		return errors.New("subscriber is already running")
	}

	pattern, err := events.NewTopic(topicPattern)
	if err != nil {
		return err
	}

	s.sqsSubscriber = NewSQSEventSubscriber(s.client, s.queueURL, &topicFilterHandler{pattern: pattern, handler: handler}, s.logger, s.opts...)
	if err := s.sqsSubscriber.Start(ctx); err != nil {
		return errors.Wrap(err, "failed to start SQS subscriber")
	}

	return nil
}

// Close stops the subscriber
func (s *SQSSubscriberAdapter) Close(ctx context.Context) error {
	if s.sqsSubscriber == nil {
		return nil
	}

	if err := s.sqsSubscriber.Stop(ctx); err != nil {
		return errors.Wrap(err, "failed to stop SQS subscriber")
	}

	s.sqsSubscriber = nil
	return nil
}
