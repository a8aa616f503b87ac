package usecase

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"channelhub/domain/dto"
	"channelhub/domain/model"
	"channelhub/domain/repository"
	"channelhub/infrastructure/logger"
)

// IIntegrationUsecase drives the platform lifecycle: connect, OAuth callback,
// sync, status and disconnect. The per-platform specifics live behind
// repository.IPlatformAdapter.
type IIntegrationUsecase interface {
	Connect(ctx context.Context, userID, platform string, params model.AuthParams) (*dto.ResConnect, error)
	HandleCallback(ctx context.Context, platform string, params model.CallbackParams) (*model.StatePayload, error)
	Sync(ctx context.Context, userID, platform string) (*dto.ResSync, error)
	Status(ctx context.Context, userID string) ([]model.ConnectionStatus, error)
	Data(ctx context.Context, userID, platform, dataType string) ([]model.UnifiedData, error)
	Disconnect(ctx context.Context, userID, platform string) error
}

type integrationUsecase struct {
	adapters       map[string]repository.IPlatformAdapter
	connectionRepo repository.IConnection
	unifiedRepo    repository.IUnifiedData
	subAccountRepo repository.ISubAccount
	userRepo       repository.IUser
	stateStore     repository.IOAuthState
	alertUsecase   IAlertUsecase
}

func NewIntegrationUsecase(
	adapters []repository.IPlatformAdapter,
	connectionRepo repository.IConnection,
	unifiedRepo repository.IUnifiedData,
	subAccountRepo repository.ISubAccount,
	userRepo repository.IUser,
	stateStore repository.IOAuthState,
	alertUsecase IAlertUsecase,
) IIntegrationUsecase {
	byPlatform := make(map[string]repository.IPlatformAdapter, len(adapters))
	for _, a := range adapters {
		byPlatform[a.Platform()] = a
	}
	return &integrationUsecase{
		adapters:       byPlatform,
		connectionRepo: connectionRepo,
		unifiedRepo:    unifiedRepo,
		subAccountRepo: subAccountRepo,
		userRepo:       userRepo,
		stateStore:     stateStore,
		alertUsecase:   alertUsecase,
	}
}

func (u *integrationUsecase) adapter(platform string) (repository.IPlatformAdapter, error) {
	a, ok := u.adapters[platform]
	if !ok {
		return nil, &model.ValidationError{Field: "platform", Reason: fmt.Sprintf("unsupported platform %q", platform)}
	}
	return a, nil
}

func (u *integrationUsecase) Connect(ctx context.Context, userID, platform string, params model.AuthParams) (*dto.ResConnect, error) {
	adapter, err := u.adapter(platform)
	if err != nil {
		return nil, err
	}

	state, err := u.stateStore.Put(ctx, model.StatePayload{
		UserID:     userID,
		Platform:   platform,
		ShopDomain: params.ShopDomain,
		PropertyID: params.PropertyID,
	})
	if err != nil {
		return nil, err
	}

	authURL, err := adapter.BuildAuthURL(state, params)
	if err != nil {
		return nil, err
	}
	return &dto.ResConnect{URL: authURL, State: state, ShopDomain: params.ShopDomain}, nil
}

// HandleCallback completes the OAuth round trip: validates the state, trades
// the code for credentials, stores them, records discovered sub-accounts and
// flips the user's channel summary flag.
func (u *integrationUsecase) HandleCallback(ctx context.Context, platform string, params model.CallbackParams) (*model.StatePayload, error) {
	payload, err := u.stateStore.Take(ctx, params.State)
	if err != nil {
		return nil, &model.ValidationError{Field: "state", Reason: "unknown or expired state"}
	}
	if payload.Platform != platform {
		return nil, &model.ValidationError{Field: "state", Reason: "state was issued for another platform"}
	}

	adapter, err := u.adapter(platform)
	if err != nil {
		return nil, err
	}

	result, err := adapter.ExchangeCode(ctx, params, payload)
	if err != nil {
		u.raiseConnectionAlert(ctx, payload.UserID, platform, err)
		return nil, err
	}

	if err := u.connectionRepo.Store(ctx, payload.UserID, platform, result.Credentials, result.Metadata); err != nil {
		return nil, err
	}

	for i := range result.SubAccounts {
		sub := result.SubAccounts[i]
		sub.UserID = payload.UserID
		if err := u.subAccountRepo.Upsert(ctx, &sub); err != nil {
			logger.GetLogger().WithField("error", err).WithField("subAccount", sub.SubAccountID).Error("Error while storing sub-account")
		}
	}

	if id, err := strconv.ParseInt(payload.UserID, 10, 64); err == nil {
		if err := u.userRepo.SetChannelConnected(ctx, id, platform, true); err != nil {
			logger.GetLogger().WithField("error", err).Warn("Error while updating channel summary")
		}
	}
	return &payload, nil
}

// Sync fetches the platform's resources and upserts them sequentially. Fetch
// failures mark the connection and raise an alert before propagating; a mid-
// upsert failure leaves earlier records in place, there is no rollback.
func (u *integrationUsecase) Sync(ctx context.Context, userID, platform string) (*dto.ResSync, error) {
	adapter, err := u.adapter(platform)
	if err != nil {
		return nil, err
	}

	creds, err := u.connectionRepo.Get(ctx, userID, platform)
	if err != nil {
		return nil, err
	}

	records, err := adapter.FetchResources(ctx, creds)
	if err != nil {
		u.failSync(ctx, userID, platform, err)
		return nil, err
	}

	counts := map[string]int{}
	for _, rec := range records {
		if err := u.unifiedRepo.Upsert(ctx, userID, platform, rec.DataType, rec.OriginalID, rec.Payload); err != nil {
			u.failSync(ctx, userID, platform, err)
			return nil, err
		}
		counts[rec.DataType]++
	}

	syncedAt := time.Now().UTC()
	if err := u.connectionRepo.MarkSyncResult(ctx, userID, platform, syncedAt, nil); err != nil {
		logger.GetLogger().WithField("error", err).Warn("Error while recording sync result")
	}

	return &dto.ResSync{
		Platform: platform,
		Synced:   counts,
		SyncedAt: syncedAt.Format(time.RFC3339),
	}, nil
}

func (u *integrationUsecase) failSync(ctx context.Context, userID, platform string, syncErr error) {
	if err := u.connectionRepo.MarkSyncResult(ctx, userID, platform, time.Now().UTC(), syncErr); err != nil {
		logger.GetLogger().WithField("error", err).Warn("Error while recording sync failure")
	}
	u.alertUsecase.Raise(ctx, &model.Alert{
		UserID:   userID,
		Platform: platform,
		Type:     model.AlertSyncFailed,
		Severity: model.SeverityError,
		Title:    fmt.Sprintf("%s sync failed", platform),
		Message:  syncErr.Error(),
		Data:     map[string]any{"code": model.ErrorCode(syncErr)},
	})
}

func (u *integrationUsecase) raiseConnectionAlert(ctx context.Context, userID, platform string, err error) {
	u.alertUsecase.Raise(ctx, &model.Alert{
		UserID:         userID,
		Platform:       platform,
		Type:           model.AlertConnectionError,
		Severity:       model.SeverityError,
		Title:          fmt.Sprintf("%s connection failed", platform),
		Message:        err.Error(),
		ActionRequired: true,
	})
}

func (u *integrationUsecase) Status(ctx context.Context, userID string) ([]model.ConnectionStatus, error) {
	return u.connectionRepo.Status(ctx, userID)
}

func (u *integrationUsecase) Data(ctx context.Context, userID, platform, dataType string) ([]model.UnifiedData, error) {
	if dataType != "" && !model.ValidDataType(dataType) {
		return nil, &model.ValidationError{Field: "dataType", Reason: fmt.Sprintf("unknown data type %q", dataType)}
	}
	return u.unifiedRepo.List(ctx, userID, platform, dataType)
}

// Disconnect invalidates the stored credentials and clears the cached
// insights of every sub-account under the connection. Unified data from past
// syncs is retained.
func (u *integrationUsecase) Disconnect(ctx context.Context, userID, platform string) error {
	if _, err := u.adapter(platform); err != nil {
		return err
	}
	if err := u.connectionRepo.Disconnect(ctx, userID, platform); err != nil {
		return err
	}

	subs, err := u.subAccountRepo.List(ctx, userID, platform, false)
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("Error while listing sub-accounts on disconnect")
	}
	for _, sub := range subs {
		if err := u.subAccountRepo.ClearInsights(ctx, userID, platform, sub.SubAccountID); err != nil {
			logger.GetLogger().WithField("error", err).WithField("subAccount", sub.SubAccountID).Warn("Error while clearing insights")
		}
	}

	if id, err := strconv.ParseInt(userID, 10, 64); err == nil {
		if err := u.userRepo.SetChannelConnected(ctx, id, platform, false); err != nil {
			logger.GetLogger().WithField("error", err).Warn("Error while updating channel summary")
		}
	}
	return nil
}
