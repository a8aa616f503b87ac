package filecsv

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"channelhub/domain/model"
)

func TestWriteUnifiedData(t *testing.T) {
	synced := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	records := []model.UnifiedData{
		{
			Platform:   model.PlatformShopify,
			DataType:   model.DataTypeOrder,
			OriginalID: "1001",
			Data: model.UnifiedPayload{
				Name:   "Order #1001",
				Status: "paid",
				Metrics: model.Metrics{
					Revenue: model.F(49.99),
					Orders:  model.F(1),
				},
			},
			LastUpdated: synced,
		},
		{
			Platform:   model.PlatformGoogleAds,
			DataType:   model.DataTypeCampaign,
			OriginalID: "c-7",
			Data: model.UnifiedPayload{
				Name: "Brand",
				Metrics: model.Metrics{
					Spend:  model.F(12.5),
					Clicks: model.F(300),
				},
			},
			LastUpdated: synced,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteUnifiedData(&buf, records))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, header, rows[0])
	assert.Equal(t, "shopify", rows[1][0])
	assert.Equal(t, "49.99", rows[1][5])
	// Unset metric stays an empty cell, not a zero.
	assert.Equal(t, "", rows[1][6])
	assert.Equal(t, "12.5", rows[2][6])
	assert.Equal(t, "2026-08-01T12:00:00Z", rows[1][13])
}

func TestWriteUnifiedData_EmptyStillWritesHeader(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteUnifiedData(&buf, nil))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, header, rows[0])
}
