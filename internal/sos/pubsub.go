package sos

import (
	"context"
	"encoding/json"
	"fmt"

	"cloud.google.com/go/pubsub/v2"
	"github.com/rs/zerolog"
)

// PubSubPublisher publishes SOS dispatch events to a Pub/Sub topic for
// downstream consumers (contact notification, audit).
type PubSubPublisher struct {
	client    *pubsub.Client
	publisher *pubsub.Publisher
	topic     string
	logger    zerolog.Logger
}

// PubSubConfig holds configuration for the publisher.
type PubSubConfig struct {
	ProjectID string
	Topic     string
	Logger    zerolog.Logger
}

// NewPubSubPublisher creates a publisher for SOS events.
func NewPubSubPublisher(ctx context.Context, cfg PubSubConfig) (*PubSubPublisher, error) {
	client, err := pubsub.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}

	return &PubSubPublisher{
		client:    client,
		publisher: client.Publisher(cfg.Topic),
		topic:     cfg.Topic,
		logger:    cfg.Logger,
	}, nil
}

// PublishSOS publishes a dispatch record and waits for the server ack.
func (p *PubSubPublisher) PublishSOS(ctx context.Context, d Dispatch) error {
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encoding SOS event: %w", err)
	}

	result := p.publisher.Publish(ctx, &pubsub.Message{
		Data: data,
		Attributes: map[string]string{
			"event_type": "sos_dispatch",
			"sos_id":     d.ID,
		},
	})

	id, err := result.Get(ctx)
	if err != nil {
		return fmt.Errorf("publishing SOS event: %w", err)
	}

	p.logger.Info().
		Str("sos_id", d.ID).
		Str("message_id", id).
		Str("topic", p.topic).
		Msg("SOS event published")
	return nil
}

// Close releases the Pub/Sub client.
func (p *PubSubPublisher) Close() error {
	p.publisher.Stop()
	return p.client.Close()
}
