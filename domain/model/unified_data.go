package model

import "time"

// Unified data types. Upserts reject anything outside this set.
const (
	DataTypeCampaign    = "campaign"
	DataTypeProduct     = "product"
	DataTypeOrder       = "order"
	DataTypeAnalytics   = "analytics"
	DataTypeInventory   = "inventory"
	DataTypeCustomer    = "customer"
	DataTypeTransaction = "transaction"
)

var dataTypes = map[string]struct{}{
	DataTypeCampaign:    {},
	DataTypeProduct:     {},
	DataTypeOrder:       {},
	DataTypeAnalytics:   {},
	DataTypeInventory:   {},
	DataTypeCustomer:    {},
	DataTypeTransaction: {},
}

func ValidDataType(dt string) bool {
	_, ok := dataTypes[dt]
	return ok
}

// Metrics holds the normalized numeric fields. Absent means unknown, not zero;
// consumers coerce to 0 at aggregation time.
type Metrics struct {
	Revenue     *float64 `bson:"revenue,omitempty" json:"revenue,omitempty"`
	Spend       *float64 `bson:"spend,omitempty" json:"spend,omitempty"`
	Impressions *float64 `bson:"impressions,omitempty" json:"impressions,omitempty"`
	Clicks      *float64 `bson:"clicks,omitempty" json:"clicks,omitempty"`
	Orders      *float64 `bson:"orders,omitempty" json:"orders,omitempty"`
	Units       *float64 `bson:"units,omitempty" json:"units,omitempty"`
	Sessions    *float64 `bson:"sessions,omitempty" json:"sessions,omitempty"`
	Conversions *float64 `bson:"conversions,omitempty" json:"conversions,omitempty"`
	CTR         *float64 `bson:"ctr,omitempty" json:"ctr,omitempty"`
	CPC         *float64 `bson:"cpc,omitempty" json:"cpc,omitempty"`
	CPM         *float64 `bson:"cpm,omitempty" json:"cpm,omitempty"`
	ROAS        *float64 `bson:"roas,omitempty" json:"roas,omitempty"`
	ACOS        *float64 `bson:"acos,omitempty" json:"acos,omitempty"`
}

// F wraps a literal for an optional metric field.
func F(v float64) *float64 { return &v }

// DateRange bounds the period a record's metrics cover.
type DateRange struct {
	Start time.Time `bson:"start" json:"start"`
	End   time.Time `bson:"end" json:"end"`
}

// UnifiedPayload is the platform-agnostic record body. Attributes are
// intentionally loose to accommodate heterogeneous platforms.
type UnifiedPayload struct {
	Name       string         `bson:"name,omitempty" json:"name,omitempty"`
	Status     string         `bson:"status,omitempty" json:"status,omitempty"`
	Metrics    Metrics        `bson:"metrics" json:"metrics"`
	Attributes map[string]any `bson:"attributes,omitempty" json:"attributes,omitempty"`
	DateRange  *DateRange     `bson:"dateRange,omitempty" json:"dateRange,omitempty"`
}

// UnifiedRecord is one mapped upstream record, keyed by its platform ID.
type UnifiedRecord struct {
	DataType   string
	OriginalID string
	Payload    UnifiedPayload
}

// UnifiedData is the stored document, unique on
// (userId, platform, dataType, originalId).
type UnifiedData struct {
	UserID      string         `bson:"userId" json:"userId"`
	Platform    string         `bson:"platform" json:"platform"`
	DataType    string         `bson:"dataType" json:"dataType"`
	OriginalID  string         `bson:"originalId" json:"originalId"`
	Data        UnifiedPayload `bson:"data" json:"data"`
	LastUpdated time.Time      `bson:"lastUpdated" json:"lastUpdated"`
	SyncedAt    time.Time      `bson:"syncedAt" json:"syncedAt"`
}
