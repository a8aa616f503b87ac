package pubsub

import (
	"context"

	"cloud.google.com/go/pubsub"
)

// NewPubSub connects to Google Cloud Pub/Sub for the given project.
func NewPubSub(ctx context.Context, projectID string) (*pubsub.Client, error) {
	return pubsub.NewClient(ctx, projectID)
}
