package usecase

import (
	"context"
	"sync"

	"channelhub/domain/model"
	"channelhub/domain/repository"
	"channelhub/infrastructure/logger"
)

// SubAccountView is one sub-account plus either freshly fetched insights or
// the cached copy when the live fetch failed.
type SubAccountView struct {
	model.SubAccount
	Stale bool   `json:"stale,omitempty"`
	Error string `json:"error,omitempty"`
}

type ISubAccountUsecase interface {
	List(ctx context.Context, userID, platform string) ([]model.SubAccount, error)
	// Toggle commits the connected flag first; a failed refresh never undoes it.
	Toggle(ctx context.Context, userID, platform, subAccountID string, connected bool) (*model.SubAccount, error)
	// ListWithData fans out a live insights fetch across connected
	// sub-accounts, falling back to cached insights per account.
	ListWithData(ctx context.Context, userID, platform string) ([]SubAccountView, error)
}

type subAccountUsecase struct {
	subAccountRepo repository.ISubAccount
	connectionRepo repository.IConnection
	fetchers       map[string]repository.IInsightsFetcher
}

func NewSubAccountUsecase(
	subAccountRepo repository.ISubAccount,
	connectionRepo repository.IConnection,
	fetchers map[string]repository.IInsightsFetcher,
) ISubAccountUsecase {
	return &subAccountUsecase{
		subAccountRepo: subAccountRepo,
		connectionRepo: connectionRepo,
		fetchers:       fetchers,
	}
}

func (u *subAccountUsecase) List(ctx context.Context, userID, platform string) ([]model.SubAccount, error) {
	return u.subAccountRepo.List(ctx, userID, platform, false)
}

func (u *subAccountUsecase) Toggle(ctx context.Context, userID, platform, subAccountID string, connected bool) (*model.SubAccount, error) {
	if err := u.subAccountRepo.SetConnected(ctx, userID, platform, subAccountID, connected); err != nil {
		return nil, err
	}

	if !connected {
		if err := u.subAccountRepo.ClearInsights(ctx, userID, platform, subAccountID); err != nil {
			logger.GetLogger().WithField("error", err).Warn("Error while clearing insights")
		}
		return u.subAccountRepo.Get(ctx, userID, platform, subAccountID)
	}

	// Reconnecting: refresh insights best-effort. The toggle has already
	// committed, so a refresh failure only leaves the cache empty.
	if fetcher, ok := u.fetchers[platform]; ok {
		u.refreshInsights(ctx, fetcher, userID, platform, subAccountID)
	}
	return u.subAccountRepo.Get(ctx, userID, platform, subAccountID)
}

func (u *subAccountUsecase) refreshInsights(ctx context.Context, fetcher repository.IInsightsFetcher, userID, platform, subAccountID string) {
	creds, err := u.connectionRepo.Get(ctx, userID, platform)
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("Skipping insights refresh, no credentials")
		return
	}
	sub, err := u.subAccountRepo.Get(ctx, userID, platform, subAccountID)
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("Skipping insights refresh, sub-account missing")
		return
	}
	insights, err := fetcher.FetchInsights(ctx, creds, *sub)
	if err != nil {
		logger.GetLogger().WithField("error", err).WithField("subAccount", subAccountID).Warn("Insights refresh failed")
		return
	}
	if err := u.subAccountRepo.SaveInsights(ctx, userID, platform, subAccountID, insights); err != nil {
		logger.GetLogger().WithField("error", err).Warn("Error while saving insights")
	}
}

func (u *subAccountUsecase) ListWithData(ctx context.Context, userID, platform string) ([]SubAccountView, error) {
	creds, err := u.connectionRepo.Get(ctx, userID, platform)
	if err != nil {
		return nil, err
	}
	subs, err := u.subAccountRepo.List(ctx, userID, platform, true)
	if err != nil {
		return nil, err
	}
	fetcher, ok := u.fetchers[platform]
	if !ok {
		views := make([]SubAccountView, len(subs))
		for i, sub := range subs {
			views[i] = SubAccountView{SubAccount: sub, Stale: true}
		}
		return views, nil
	}

	views := make([]SubAccountView, len(subs))
	var wg sync.WaitGroup
	for i := range subs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sub := subs[i]
			insights, err := fetcher.FetchInsights(ctx, creds, sub)
			if err != nil {
				// One broken account falls back to its cached insights
				// without sinking the rest of the fan-out.
				logger.GetLogger().WithField("error", err).WithField("subAccount", sub.SubAccountID).Warn("Live insights fetch failed, serving cache")
				views[i] = SubAccountView{SubAccount: sub, Stale: true, Error: "failed to fetch live data"}
				return
			}
			sub.Insights = insights
			views[i] = SubAccountView{SubAccount: sub}
			if err := u.subAccountRepo.SaveInsights(ctx, userID, platform, sub.SubAccountID, insights); err != nil {
				logger.GetLogger().WithField("error", err).Warn("Error while caching insights")
			}
		}(i)
	}
	wg.Wait()
	return views, nil
}
