package repository

import (
	"context"

	"channelhub/domain/model"
)

// IAlert appends immutable alert rows and lists/marks them for one user.
type IAlert interface {
	Create(ctx context.Context, alert *model.Alert) error
	List(ctx context.Context, userID string, unreadOnly bool) ([]model.Alert, error)
	MarkRead(ctx context.Context, userID, alertID string) error
}
