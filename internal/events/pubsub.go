package events

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"cloud.google.com/go/pubsub"
	"github.com/bloglist/apiserver/config"
	"google.golang.org/api/option"
)

// PubSubPublisher publishes blog events to a Google Cloud Pub/Sub topic.
type PubSubPublisher struct {
	client *pubsub.Client
	topic  *pubsub.Topic
}

// NewPubSubPublisher constructs a Pub/Sub publisher from config, creating
// the topic if it does not exist yet.
func NewPubSubPublisher(ctx context.Context, cfg config.MQConfig) (*PubSubPublisher, error) {
	if strings.TrimSpace(cfg.PubSub.ProjectID) == "" {
		return nil, errors.New("pubsub project id is required")
	}
	if strings.TrimSpace(cfg.Channel) == "" {
		return nil, errors.New("mq channel is required")
	}

	var opts []option.ClientOption
	if strings.TrimSpace(cfg.PubSub.CredentialsFile) != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.PubSub.CredentialsFile))
	}

	client, err := pubsub.NewClient(ctx, cfg.PubSub.ProjectID, opts...)
	if err != nil {
		return nil, err
	}

	topic, err := ensureTopic(ctx, client, cfg.Channel)
	if err != nil {
		_ = client.Close()
		return nil, err
	}

	return &PubSubPublisher{
		client: client,
		topic:  topic,
	}, nil
}

// Publish sends the event to the topic and waits for the server ack.
func (p *PubSubPublisher) Publish(ctx context.Context, event BlogEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	result := p.topic.Publish(ctx, &pubsub.Message{
		Data: body,
		Attributes: map[string]string{
			"type": event.Type,
		},
	})
	_, err = result.Get(ctx)
	return err
}

// Close flushes pending messages and closes the client.
func (p *PubSubPublisher) Close() error {
	p.topic.Stop()
	return p.client.Close()
}

func ensureTopic(ctx context.Context, client *pubsub.Client, name string) (*pubsub.Topic, error) {
	topic := client.Topic(name)
	exists, err := topic.Exists(ctx)
	if err != nil {
		return nil, err
	}
	if !exists {
		return client.CreateTopic(ctx, name)
	}
	return topic, nil
}
