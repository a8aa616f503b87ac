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

func newIntegrationFixture(adapter *MockAdapter) (usecase.IIntegrationUsecase, *MockConnection, *MockUnifiedData, *MockSubAccount, *MockUser, *MockOAuthState, *MockAlert) {
	connRepo := new(MockConnection)
	unifiedRepo := new(MockUnifiedData)
	subRepo := new(MockSubAccount)
	userRepo := new(MockUser)
	stateStore := new(MockOAuthState)
	alertRepo := new(MockAlert)

	alerts := usecase.NewAlertUsecase(alertRepo, nil, nil)
	uc := usecase.NewIntegrationUsecase(
		[]repository.IPlatformAdapter{adapter},
		connRepo, unifiedRepo, subRepo, userRepo, stateStore, alerts,
	)
	return uc, connRepo, unifiedRepo, subRepo, userRepo, stateStore, alertRepo
}

func TestIntegration_Connect(t *testing.T) {
	adapter := &MockAdapter{platform: model.PlatformShopify}
	uc, _, _, _, _, stateStore, _ := newIntegrationFixture(adapter)

	payload := model.StatePayload{UserID: "7", Platform: model.PlatformShopify, ShopDomain: "acme"}
	stateStore.On("Put", mock.Anything, payload).Return("nonce", nil)
	adapter.On("BuildAuthURL", "nonce", model.AuthParams{ShopDomain: "acme"}).
		Return("https://acme.myshopify.com/admin/oauth/authorize?state=nonce", nil)

	res, err := uc.Connect(context.Background(), "7", model.PlatformShopify, model.AuthParams{ShopDomain: "acme"})
	require.NoError(t, err)
	assert.Equal(t, "nonce", res.State)
	assert.Contains(t, res.URL, "state=nonce")
	stateStore.AssertExpectations(t)
	adapter.AssertExpectations(t)
}

func TestIntegration_Connect_UnsupportedPlatform(t *testing.T) {
	adapter := &MockAdapter{platform: model.PlatformShopify}
	uc, _, _, _, _, _, _ := newIntegrationFixture(adapter)

	_, err := uc.Connect(context.Background(), "7", "myspace_ads", model.AuthParams{})
	var verr *model.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "platform", verr.Field)
}

func TestIntegration_HandleCallback(t *testing.T) {
	adapter := &MockAdapter{platform: model.PlatformFacebookAds}
	uc, connRepo, _, subRepo, userRepo, stateStore, _ := newIntegrationFixture(adapter)

	payload := model.StatePayload{UserID: "7", Platform: model.PlatformFacebookAds}
	params := model.CallbackParams{Code: "code", State: "nonce"}
	result := &model.CallbackResult{
		Credentials: model.Credentials{AccessToken: "long-lived"},
		Metadata:    map[string]string{"adAccounts": "1"},
		SubAccounts: []model.SubAccount{{
			Platform:     model.PlatformFacebookAds,
			SubAccountID: "act_1",
			Kind:         model.SubAccountAdAccount,
		}},
	}

	stateStore.On("Take", mock.Anything, "nonce").Return(payload, nil)
	adapter.On("ExchangeCode", mock.Anything, params, payload).Return(result, nil)
	connRepo.On("Store", mock.Anything, "7", model.PlatformFacebookAds, result.Credentials, result.Metadata).Return(nil)
	subRepo.On("Upsert", mock.Anything, mock.MatchedBy(func(sub *model.SubAccount) bool {
		return sub.UserID == "7" && sub.SubAccountID == "act_1"
	})).Return(nil)
	userRepo.On("SetChannelConnected", mock.Anything, int64(7), model.PlatformFacebookAds, true).Return(nil)

	got, err := uc.HandleCallback(context.Background(), model.PlatformFacebookAds, params)
	require.NoError(t, err)
	assert.Equal(t, "7", got.UserID)
	connRepo.AssertExpectations(t)
	subRepo.AssertExpectations(t)
	userRepo.AssertExpectations(t)
}

func TestIntegration_HandleCallback_PlatformMismatch(t *testing.T) {
	adapter := &MockAdapter{platform: model.PlatformShopify}
	uc, connRepo, _, _, _, stateStore, _ := newIntegrationFixture(adapter)

	stateStore.On("Take", mock.Anything, "nonce").
		Return(model.StatePayload{UserID: "7", Platform: model.PlatformFacebookAds}, nil)

	_, err := uc.HandleCallback(context.Background(), model.PlatformShopify, model.CallbackParams{Code: "c", State: "nonce"})
	var verr *model.ValidationError
	require.ErrorAs(t, err, &verr)
	connRepo.AssertNotCalled(t, "Store", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestIntegration_Sync_NotConnectedWritesNothing(t *testing.T) {
	adapter := &MockAdapter{platform: model.PlatformShopify}
	uc, connRepo, unifiedRepo, _, _, _, _ := newIntegrationFixture(adapter)

	connRepo.On("Get", mock.Anything, "7", model.PlatformShopify).
		Return(model.Credentials{}, model.ErrNotConnected)

	_, err := uc.Sync(context.Background(), "7", model.PlatformShopify)
	require.ErrorIs(t, err, model.ErrNotConnected)
	unifiedRepo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	connRepo.AssertNotCalled(t, "MarkSyncResult", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestIntegration_Sync_Success(t *testing.T) {
	adapter := &MockAdapter{platform: model.PlatformShopify}
	uc, connRepo, unifiedRepo, _, _, _, _ := newIntegrationFixture(adapter)

	creds := model.Credentials{AccessToken: "tok", ShopDomain: "acme.myshopify.com"}
	records := []model.UnifiedRecord{
		{DataType: model.DataTypeOrder, OriginalID: "1001", Payload: model.UnifiedPayload{Name: "Order #1001"}},
		{DataType: model.DataTypeOrder, OriginalID: "1002", Payload: model.UnifiedPayload{Name: "Order #1002"}},
		{DataType: model.DataTypeProduct, OriginalID: "2001", Payload: model.UnifiedPayload{Name: "Widget"}},
	}

	connRepo.On("Get", mock.Anything, "7", model.PlatformShopify).Return(creds, nil)
	adapter.On("FetchResources", mock.Anything, creds).Return(records, nil)
	for _, rec := range records {
		unifiedRepo.On("Upsert", mock.Anything, "7", model.PlatformShopify, rec.DataType, rec.OriginalID, rec.Payload).Return(nil)
	}
	connRepo.On("MarkSyncResult", mock.Anything, "7", model.PlatformShopify, mock.Anything, nil).Return(nil)

	res, err := uc.Sync(context.Background(), "7", model.PlatformShopify)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"order": 2, "product": 1}, res.Synced)
	connRepo.AssertExpectations(t)
	unifiedRepo.AssertExpectations(t)
}

func TestIntegration_Sync_FetchFailureMarksAndAlerts(t *testing.T) {
	adapter := &MockAdapter{platform: model.PlatformShopify}
	uc, connRepo, unifiedRepo, _, _, _, alertRepo := newIntegrationFixture(adapter)

	creds := model.Credentials{AccessToken: "tok"}
	upstream := &model.UpstreamError{Platform: model.PlatformShopify, Status: 503}

	connRepo.On("Get", mock.Anything, "7", model.PlatformShopify).Return(creds, nil)
	adapter.On("FetchResources", mock.Anything, creds).Return(nil, upstream)
	connRepo.On("MarkSyncResult", mock.Anything, "7", model.PlatformShopify, mock.Anything, upstream).Return(nil)
	alertRepo.On("Create", mock.Anything, mock.MatchedBy(func(a *model.Alert) bool {
		return a.Type == model.AlertSyncFailed && a.UserID == "7"
	})).Return(nil)

	_, err := uc.Sync(context.Background(), "7", model.PlatformShopify)
	require.Error(t, err)
	unifiedRepo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	connRepo.AssertExpectations(t)
	alertRepo.AssertExpectations(t)
}

func TestIntegration_Sync_MidUpsertFailureKeepsEarlierRecords(t *testing.T) {
	adapter := &MockAdapter{platform: model.PlatformShopify}
	uc, connRepo, unifiedRepo, _, _, _, alertRepo := newIntegrationFixture(adapter)

	creds := model.Credentials{AccessToken: "tok"}
	records := []model.UnifiedRecord{
		{DataType: model.DataTypeOrder, OriginalID: "1001"},
		{DataType: model.DataTypeOrder, OriginalID: "1002"},
	}

	connRepo.On("Get", mock.Anything, "7", model.PlatformShopify).Return(creds, nil)
	adapter.On("FetchResources", mock.Anything, creds).Return(records, nil)
	unifiedRepo.On("Upsert", mock.Anything, "7", model.PlatformShopify, "order", "1001", mock.Anything).Return(nil)
	unifiedRepo.On("Upsert", mock.Anything, "7", model.PlatformShopify, "order", "1002", mock.Anything).
		Return(assert.AnError)
	connRepo.On("MarkSyncResult", mock.Anything, "7", model.PlatformShopify, mock.Anything, assert.AnError).Return(nil)
	alertRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	_, err := uc.Sync(context.Background(), "7", model.PlatformShopify)
	require.Error(t, err)
	// the first record stays in place; there is no rollback
	unifiedRepo.AssertExpectations(t)
}

func TestIntegration_Disconnect_ClearsSubAccountInsights(t *testing.T) {
	adapter := &MockAdapter{platform: model.PlatformFacebookAds}
	uc, connRepo, _, subRepo, userRepo, _, _ := newIntegrationFixture(adapter)

	subs := []model.SubAccount{
		{SubAccountID: "act_1", Platform: model.PlatformFacebookAds},
		{SubAccountID: "act_2", Platform: model.PlatformFacebookAds},
	}

	connRepo.On("Disconnect", mock.Anything, "7", model.PlatformFacebookAds).Return(nil)
	subRepo.On("List", mock.Anything, "7", model.PlatformFacebookAds, false).Return(subs, nil)
	subRepo.On("ClearInsights", mock.Anything, "7", model.PlatformFacebookAds, "act_1").Return(nil)
	subRepo.On("ClearInsights", mock.Anything, "7", model.PlatformFacebookAds, "act_2").Return(nil)
	userRepo.On("SetChannelConnected", mock.Anything, int64(7), model.PlatformFacebookAds, false).Return(nil)

	err := uc.Disconnect(context.Background(), "7", model.PlatformFacebookAds)
	require.NoError(t, err)
	subRepo.AssertExpectations(t)
	userRepo.AssertExpectations(t)
}

func TestIntegration_Data_RejectsUnknownDataType(t *testing.T) {
	adapter := &MockAdapter{platform: model.PlatformShopify}
	uc, _, unifiedRepo, _, _, _, _ := newIntegrationFixture(adapter)

	_, err := uc.Data(context.Background(), "7", model.PlatformShopify, "spreadsheet")
	var verr *model.ValidationError
	require.ErrorAs(t, err, &verr)
	unifiedRepo.AssertNotCalled(t, "List", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
