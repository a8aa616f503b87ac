package usecase_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"channelhub/domain/model"
)

// Mock implementations

type MockConnection struct {
	mock.Mock
}

func (m *MockConnection) Store(ctx context.Context, userID, platform string, creds model.Credentials, metadata map[string]string) error {
	args := m.Called(ctx, userID, platform, creds, metadata)
	return args.Error(0)
}

func (m *MockConnection) Get(ctx context.Context, userID, platform string) (model.Credentials, error) {
	args := m.Called(ctx, userID, platform)
	return args.Get(0).(model.Credentials), args.Error(1)
}

func (m *MockConnection) MarkSyncResult(ctx context.Context, userID, platform string, at time.Time, syncErr error) error {
	args := m.Called(ctx, userID, platform, at, syncErr)
	return args.Error(0)
}

func (m *MockConnection) Disconnect(ctx context.Context, userID, platform string) error {
	args := m.Called(ctx, userID, platform)
	return args.Error(0)
}

func (m *MockConnection) Status(ctx context.Context, userID string) ([]model.ConnectionStatus, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]model.ConnectionStatus), args.Error(1)
}

type MockUnifiedData struct {
	mock.Mock
}

func (m *MockUnifiedData) Upsert(ctx context.Context, userID, platform, dataType, originalID string, payload model.UnifiedPayload) error {
	args := m.Called(ctx, userID, platform, dataType, originalID, payload)
	return args.Error(0)
}

func (m *MockUnifiedData) List(ctx context.Context, userID, platform, dataType string) ([]model.UnifiedData, error) {
	args := m.Called(ctx, userID, platform, dataType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.UnifiedData), args.Error(1)
}

type MockSubAccount struct {
	mock.Mock
}

func (m *MockSubAccount) Upsert(ctx context.Context, sub *model.SubAccount) error {
	args := m.Called(ctx, sub)
	return args.Error(0)
}

func (m *MockSubAccount) Get(ctx context.Context, userID, platform, subAccountID string) (*model.SubAccount, error) {
	args := m.Called(ctx, userID, platform, subAccountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SubAccount), args.Error(1)
}

func (m *MockSubAccount) List(ctx context.Context, userID, platform string, connectedOnly bool) ([]model.SubAccount, error) {
	args := m.Called(ctx, userID, platform, connectedOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.SubAccount), args.Error(1)
}

func (m *MockSubAccount) SetConnected(ctx context.Context, userID, platform, subAccountID string, connected bool) error {
	args := m.Called(ctx, userID, platform, subAccountID, connected)
	return args.Error(0)
}

func (m *MockSubAccount) SaveInsights(ctx context.Context, userID, platform, subAccountID string, insights map[string]any) error {
	args := m.Called(ctx, userID, platform, subAccountID, insights)
	return args.Error(0)
}

func (m *MockSubAccount) ClearInsights(ctx context.Context, userID, platform, subAccountID string) error {
	args := m.Called(ctx, userID, platform, subAccountID)
	return args.Error(0)
}

type MockUser struct {
	mock.Mock
}

func (m *MockUser) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUser) GetByEmail(ctx context.Context, email string) (model.User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *MockUser) GetByID(ctx context.Context, id int64) (model.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *MockUser) SetChannelConnected(ctx context.Context, id int64, platform string, connected bool) error {
	args := m.Called(ctx, id, platform, connected)
	return args.Error(0)
}

type MockOAuthState struct {
	mock.Mock
}

func (m *MockOAuthState) Put(ctx context.Context, payload model.StatePayload) (string, error) {
	args := m.Called(ctx, payload)
	return args.String(0), args.Error(1)
}

func (m *MockOAuthState) Take(ctx context.Context, state string) (model.StatePayload, error) {
	args := m.Called(ctx, state)
	return args.Get(0).(model.StatePayload), args.Error(1)
}

type MockAlert struct {
	mock.Mock
}

func (m *MockAlert) Create(ctx context.Context, alert *model.Alert) error {
	args := m.Called(ctx, alert)
	return args.Error(0)
}

func (m *MockAlert) List(ctx context.Context, userID string, unreadOnly bool) ([]model.Alert, error) {
	args := m.Called(ctx, userID, unreadOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Alert), args.Error(1)
}

func (m *MockAlert) MarkRead(ctx context.Context, userID, alertID string) error {
	args := m.Called(ctx, userID, alertID)
	return args.Error(0)
}

type MockAdapter struct {
	mock.Mock
	platform string
}

func (m *MockAdapter) Platform() string { return m.platform }

func (m *MockAdapter) BuildAuthURL(state string, p model.AuthParams) (string, error) {
	args := m.Called(state, p)
	return args.String(0), args.Error(1)
}

func (m *MockAdapter) ExchangeCode(ctx context.Context, p model.CallbackParams, sp model.StatePayload) (*model.CallbackResult, error) {
	args := m.Called(ctx, p, sp)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CallbackResult), args.Error(1)
}

func (m *MockAdapter) FetchResources(ctx context.Context, creds model.Credentials) ([]model.UnifiedRecord, error) {
	args := m.Called(ctx, creds)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.UnifiedRecord), args.Error(1)
}

type MockInsightsFetcher struct {
	mock.Mock
}

func (m *MockInsightsFetcher) FetchInsights(ctx context.Context, creds model.Credentials, sub model.SubAccount) (map[string]any, error) {
	args := m.Called(ctx, creds, sub)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]any), args.Error(1)
}
