package model

import "time"

// Connection status values. A sync failure records lastError but never moves a
// connection out of StatusConnected; only an explicit disconnect does.
const (
	StatusConnected    = "connected"
	StatusDisconnected = "disconnected"
	StatusError        = "error"
)

// Supported platform identifiers.
const (
	PlatformShopify         = "shopify"
	PlatformFacebookAds     = "facebook_ads"
	PlatformGoogleAds       = "google_ads"
	PlatformGoogleAnalytics = "google_analytics"
	PlatformAmazonSeller    = "amazon_seller"
	PlatformAmazonVendor    = "amazon_vendor"
	PlatformAmazonAds       = "amazon_ads"
	PlatformFlipkart        = "flipkart_seller"
)

// Credentials is the plaintext credential object held encrypted at rest.
// Fields are platform-dependent; unused ones stay empty.
type Credentials struct {
	AccessToken  string     `json:"access_token,omitempty"`
	RefreshToken string     `json:"refresh_token,omitempty"`
	ClientID     string     `json:"client_id,omitempty"`
	ClientSecret string     `json:"client_secret,omitempty"`
	ShopDomain   string     `json:"shop_domain,omitempty"`
	CustomerID   string     `json:"customer_id,omitempty"`
	ProfileID    string     `json:"profile_id,omitempty"`
	PropertyID   string     `json:"property_id,omitempty"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
}

// LastError captures the most recent sync failure for a connection.
type LastError struct {
	Message   string    `bson:"message" json:"message"`
	Code      string    `bson:"code" json:"code"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
}

// PlatformConnection is the credential store's backing document,
// one per (userId, platform).
type PlatformConnection struct {
	UserID         string            `bson:"userId" json:"userId"`
	Platform       string            `bson:"platform" json:"platform"`
	Credentials    string            `bson:"credentials,omitempty" json:"-"`
	Status         string            `bson:"status" json:"status"`
	Metadata       map[string]string `bson:"metadata,omitempty" json:"metadata,omitempty"`
	ConnectedAt    *time.Time        `bson:"connectedAt,omitempty" json:"connectedAt,omitempty"`
	DisconnectedAt *time.Time        `bson:"disconnectedAt,omitempty" json:"disconnectedAt,omitempty"`
	LastSyncAt     *time.Time        `bson:"lastSyncAt,omitempty" json:"lastSyncAt,omitempty"`
	LastError      *LastError        `bson:"lastError,omitempty" json:"lastError,omitempty"`
	CreatedAt      time.Time         `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time         `bson:"updatedAt" json:"updatedAt"`
}

// ConnectionStatus is the per-platform view returned by status endpoints.
type ConnectionStatus struct {
	Platform    string     `json:"platform"`
	Connected   bool       `json:"connected"`
	ConnectedAt *time.Time `json:"connectedAt,omitempty"`
	LastSyncAt  *time.Time `json:"lastSyncAt,omitempty"`
	LastError   *LastError `json:"lastError,omitempty"`
}

// AuthParams carries caller-provided connect parameters.
type AuthParams struct {
	ShopDomain string
	PropertyID string
}

// CallbackParams carries the OAuth callback query values.
type CallbackParams struct {
	Code  string
	State string
	Shop  string
}

// CallbackResult is what an adapter produces from a successful token exchange:
// the credentials to store, connection metadata, and any sub-accounts
// discovered during the initial snapshot fetch.
type CallbackResult struct {
	Credentials Credentials
	Metadata    map[string]string
	SubAccounts []SubAccount
}

// StatePayload is stored server-side under the OAuth state nonce between the
// connect redirect and the callback.
type StatePayload struct {
	UserID     string `json:"userId"`
	Platform   string `json:"platform"`
	ShopDomain string `json:"shopDomain,omitempty"`
	PropertyID string `json:"propertyId,omitempty"`
}
