package pubsub

import (
	"context"
	"encoding/json"
	"fmt"

	"cloud.google.com/go/pubsub"

	"channelhub/domain/model"
	"channelhub/domain/repository"
	"channelhub/infrastructure/logger"
)

// AlertPublisher fans alerts out to a Pub/Sub topic for downstream consumers
// (email digests, mobile push). A nil client turns publishing into a no-op so
// the service runs without Pub/Sub in local setups.
type AlertPublisher struct {
	client *pubsub.Client
	topic  string
}

func NewAlertPublisher(client *pubsub.Client, topic string) repository.IAlertPublisher {
	return &AlertPublisher{client: client, topic: topic}
}

func (p *AlertPublisher) Publish(ctx context.Context, alert *model.Alert) error {
	if p.client == nil {
		return nil
	}

	payload, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("marshal alert: %w", err)
	}

	topic := p.client.Topic(p.topic)
	exists, err := topic.Exists(ctx)
	if err != nil {
		return fmt.Errorf("check topic: %w", err)
	}
	if !exists {
		logger.GetLogger().WithField("topic", p.topic).Info("Topic doesn't exist - creating it")
		if _, err := p.client.CreateTopic(ctx, p.topic); err != nil {
			return fmt.Errorf("create topic: %w", err)
		}
	}

	serverID, err := topic.Publish(ctx, &pubsub.Message{
		Data: payload,
		Attributes: map[string]string{
			"userId":   alert.UserID,
			"type":     alert.Type,
			"severity": alert.Severity,
		},
	}).Get(ctx)
	if err != nil {
		return fmt.Errorf("publish alert: %w", err)
	}

	logger.GetLogger().WithField("server ID", serverID).Info("Alert published")
	return nil
}
