package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"channelhub/domain/model"
	"channelhub/domain/repository"
	"channelhub/usecase"
)

func newSubAccountFixture(fetcher *MockInsightsFetcher) (usecase.ISubAccountUsecase, *MockSubAccount, *MockConnection) {
	subRepo := new(MockSubAccount)
	connRepo := new(MockConnection)
	fetchers := map[string]repository.IInsightsFetcher{}
	if fetcher != nil {
		fetchers[model.PlatformFacebookAds] = fetcher
	}
	return usecase.NewSubAccountUsecase(subRepo, connRepo, fetchers), subRepo, connRepo
}

func TestSubAccount_ToggleOff_ClearsInsights(t *testing.T) {
	fetcher := new(MockInsightsFetcher)
	uc, subRepo, _ := newSubAccountFixture(fetcher)

	subRepo.On("SetConnected", mock.Anything, "7", model.PlatformFacebookAds, "act_1", false).Return(nil)
	subRepo.On("ClearInsights", mock.Anything, "7", model.PlatformFacebookAds, "act_1").Return(nil)
	subRepo.On("Get", mock.Anything, "7", model.PlatformFacebookAds, "act_1").
		Return(&model.SubAccount{SubAccountID: "act_1", Connected: false}, nil)

	sub, err := uc.Toggle(context.Background(), "7", model.PlatformFacebookAds, "act_1", false)
	require.NoError(t, err)
	assert.False(t, sub.Connected)
	assert.Nil(t, sub.Insights)
	subRepo.AssertExpectations(t)
	fetcher.AssertNotCalled(t, "FetchInsights", mock.Anything, mock.Anything, mock.Anything)
}

func TestSubAccount_ToggleOn_RefreshesInsights(t *testing.T) {
	fetcher := new(MockInsightsFetcher)
	uc, subRepo, connRepo := newSubAccountFixture(fetcher)

	creds := model.Credentials{AccessToken: "tok"}
	sub := &model.SubAccount{SubAccountID: "act_1", Platform: model.PlatformFacebookAds, Connected: true}
	insights := map[string]any{"spend": 12.5}

	subRepo.On("SetConnected", mock.Anything, "7", model.PlatformFacebookAds, "act_1", true).Return(nil)
	connRepo.On("Get", mock.Anything, "7", model.PlatformFacebookAds).Return(creds, nil)
	subRepo.On("Get", mock.Anything, "7", model.PlatformFacebookAds, "act_1").Return(sub, nil)
	fetcher.On("FetchInsights", mock.Anything, creds, *sub).Return(insights, nil)
	subRepo.On("SaveInsights", mock.Anything, "7", model.PlatformFacebookAds, "act_1", insights).Return(nil)

	_, err := uc.Toggle(context.Background(), "7", model.PlatformFacebookAds, "act_1", true)
	require.NoError(t, err)
	subRepo.AssertExpectations(t)
	fetcher.AssertExpectations(t)
}

func TestSubAccount_ToggleOn_CommitsDespiteRefreshFailure(t *testing.T) {
	fetcher := new(MockInsightsFetcher)
	uc, subRepo, connRepo := newSubAccountFixture(fetcher)

	creds := model.Credentials{AccessToken: "tok"}
	sub := &model.SubAccount{SubAccountID: "act_1", Platform: model.PlatformFacebookAds, Connected: true}

	subRepo.On("SetConnected", mock.Anything, "7", model.PlatformFacebookAds, "act_1", true).Return(nil)
	connRepo.On("Get", mock.Anything, "7", model.PlatformFacebookAds).Return(creds, nil)
	subRepo.On("Get", mock.Anything, "7", model.PlatformFacebookAds, "act_1").Return(sub, nil)
	fetcher.On("FetchInsights", mock.Anything, creds, *sub).
		Return(nil, &model.UpstreamError{Platform: model.PlatformFacebookAds, Status: 500})

	got, err := uc.Toggle(context.Background(), "7", model.PlatformFacebookAds, "act_1", true)
	require.NoError(t, err)
	assert.True(t, got.Connected)
	subRepo.AssertNotCalled(t, "SaveInsights", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSubAccount_ListWithData_PartialFailureFallsBackToCache(t *testing.T) {
	fetcher := new(MockInsightsFetcher)
	uc, subRepo, connRepo := newSubAccountFixture(fetcher)

	creds := model.Credentials{AccessToken: "tok"}
	cached := map[string]any{"spend": 1.0}
	subs := []model.SubAccount{
		{SubAccountID: "act_ok", Platform: model.PlatformFacebookAds, Connected: true},
		{SubAccountID: "act_bad", Platform: model.PlatformFacebookAds, Connected: true, Insights: cached},
	}
	fresh := map[string]any{"spend": 2.0}

	connRepo.On("Get", mock.Anything, "7", model.PlatformFacebookAds).Return(creds, nil)
	subRepo.On("List", mock.Anything, "7", model.PlatformFacebookAds, true).Return(subs, nil)
	fetcher.On("FetchInsights", mock.Anything, creds, subs[0]).Return(fresh, nil)
	fetcher.On("FetchInsights", mock.Anything, creds, subs[1]).
		Return(nil, &model.UpstreamError{Platform: model.PlatformFacebookAds, Status: 502})
	subRepo.On("SaveInsights", mock.Anything, "7", model.PlatformFacebookAds, "act_ok", fresh).Return(nil)

	views, err := uc.ListWithData(context.Background(), "7", model.PlatformFacebookAds)
	require.NoError(t, err)
	require.Len(t, views, 2)

	byID := map[string]usecase.SubAccountView{}
	for _, v := range views {
		byID[v.SubAccountID] = v
	}
	assert.Equal(t, fresh, byID["act_ok"].Insights)
	assert.False(t, byID["act_ok"].Stale)
	assert.Equal(t, cached, byID["act_bad"].Insights)
	assert.True(t, byID["act_bad"].Stale)
}

func TestSubAccount_ListWithData_NotConnected(t *testing.T) {
	fetcher := new(MockInsightsFetcher)
	uc, _, connRepo := newSubAccountFixture(fetcher)

	connRepo.On("Get", mock.Anything, "7", model.PlatformFacebookAds).
		Return(model.Credentials{}, model.ErrNotConnected)

	_, err := uc.ListWithData(context.Background(), "7", model.PlatformFacebookAds)
	require.ErrorIs(t, err, model.ErrNotConnected)
}
