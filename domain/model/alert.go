package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Alert types.
const (
	AlertConnectionError = "connection_error"
	AlertSyncFailed      = "sync_failed"
	AlertBudget          = "budget_alert"
	AlertPerformance     = "performance_alert"
	AlertInventoryLow    = "inventory_low"
	AlertNewOrder        = "new_order"
	AlertCampaignEnded   = "campaign_ended"
)

// Alert severities.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityError    = "error"
	SeverityCritical = "critical"
)

// Alert is an immutable notable event; the only permitted mutation is marking
// it read. Identical unread alerts are not deduplicated.
type Alert struct {
	ID             bson.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID         string         `bson:"userId" json:"userId"`
	Platform       string         `bson:"platform,omitempty" json:"platform,omitempty"`
	Type           string         `bson:"type" json:"type"`
	Severity       string         `bson:"severity" json:"severity"`
	Title          string         `bson:"title" json:"title"`
	Message        string         `bson:"message" json:"message"`
	Data           map[string]any `bson:"data,omitempty" json:"data,omitempty"`
	IsRead         bool           `bson:"isRead" json:"isRead"`
	ActionRequired bool           `bson:"actionRequired" json:"actionRequired"`
	ActionURL      string         `bson:"actionUrl,omitempty" json:"actionUrl,omitempty"`
	CreatedAt      time.Time      `bson:"createdAt" json:"createdAt"`
	ReadAt         *time.Time     `bson:"readAt,omitempty" json:"readAt,omitempty"`
}
