package model

import "time"

// Sub-account kinds.
const (
	SubAccountAdAccount = "ad_account"
	SubAccountShop      = "shop"
)

// SubAccount is one child resource (ad account, shop) under a top-level
// connection. Stored flat, keyed by (userId, platform, subAccountId), so two
// concurrent toggles touch independent documents.
type SubAccount struct {
	UserID           string            `bson:"userId" json:"userId"`
	Platform         string            `bson:"platform" json:"platform"`
	SubAccountID     string            `bson:"subAccountId" json:"subAccountId"`
	Name             string            `bson:"name,omitempty" json:"name,omitempty"`
	Kind             string            `bson:"kind" json:"kind"`
	Connected        bool              `bson:"connected" json:"connected"`
	Insights         map[string]any    `bson:"insights,omitempty" json:"insights,omitempty"`
	InsightsSyncedAt *time.Time        `bson:"insightsSyncedAt,omitempty" json:"insightsSyncedAt,omitempty"`
	Metadata         map[string]string `bson:"metadata,omitempty" json:"metadata,omitempty"`
	CreatedAt        time.Time         `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time         `bson:"updatedAt" json:"updatedAt"`
}
