package infrastructure

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/draftea/provisioning-system/shared/events"
	"github.com/rs/zerolog"
)

// SNSPublisherAdapter owns the SNS client behind an events.Publisher
type SNSPublisherAdapter struct {
	snsPublisher *SNSEventPublisher
}

// NewSNSPublisherAdapter creates a publisher for topicArn from a loaded AWS
// config (LocalStack works through the config's base endpoint)
func NewSNSPublisherAdapter(cfg aws.Config, topicArn string, logger zerolog.Logger) *SNSPublisherAdapter {
	return &SNSPublisherAdapter{
		snsPublisher: NewSNSEventPublisher(sns.NewFromConfig(cfg), topicArn, logger),
	}
}

// Publish implements events.Publisher interface
func (p *SNSPublisherAdapter) Publish(ctx context.Context, evts ...*events.Event) error {
	return p.snsPublisher.Publish(ctx, evts...)
}

// Close closes the publisher
func (p *SNSPublisherAdapter) Close() error {
	return nil
}
