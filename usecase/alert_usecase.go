package usecase

import (
	"context"

	"channelhub/domain/model"
	"channelhub/domain/repository"
	"channelhub/infrastructure/logger"
	"channelhub/infrastructure/realtime"
)

// IAlertUsecase appends alerts and serves the per-user feed. Persistence is
// the source of truth; the publisher and SSE hub are best-effort fan-out.
type IAlertUsecase interface {
	Raise(ctx context.Context, alert *model.Alert)
	List(ctx context.Context, userID string, unreadOnly bool) ([]model.Alert, error)
	MarkRead(ctx context.Context, userID, alertID string) error
}

type alertUsecase struct {
	alertRepo repository.IAlert
	publisher repository.IAlertPublisher
	hub       *realtime.Hub
}

func NewAlertUsecase(alertRepo repository.IAlert, publisher repository.IAlertPublisher, hub *realtime.Hub) IAlertUsecase {
	return &alertUsecase{alertRepo: alertRepo, publisher: publisher, hub: hub}
}

// Raise never fails the caller: a sync that cannot record its own failure
// alert still reports the original error.
func (u *alertUsecase) Raise(ctx context.Context, alert *model.Alert) {
	if alert.Severity == "" {
		alert.Severity = model.SeverityInfo
	}
	if err := u.alertRepo.Create(ctx, alert); err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while persisting alert")
		return
	}
	if u.publisher != nil {
		if err := u.publisher.Publish(ctx, alert); err != nil {
			logger.GetLogger().WithField("error", err).Warn("Error while publishing alert")
		}
	}
	if u.hub != nil {
		u.hub.BroadcastAlert(alert)
	}
}

func (u *alertUsecase) List(ctx context.Context, userID string, unreadOnly bool) ([]model.Alert, error) {
	return u.alertRepo.List(ctx, userID, unreadOnly)
}

func (u *alertUsecase) MarkRead(ctx context.Context, userID, alertID string) error {
	return u.alertRepo.MarkRead(ctx, userID, alertID)
}
