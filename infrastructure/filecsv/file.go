package filecsv

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"channelhub/domain/model"
)

var header = []string{
	"platform", "dataType", "originalId", "name", "status",
	"revenue", "spend", "impressions", "clicks", "orders", "units",
	"sessions", "conversions", "lastUpdated",
}

// WriteUnifiedData renders stored records as CSV. Absent metrics become empty
// cells rather than zeros, matching their unknown-not-zero semantics.
func WriteUnifiedData(w io.Writer, records []model.UnifiedData) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, rec := range records {
		m := rec.Data.Metrics
		row := []string{
			rec.Platform,
			rec.DataType,
			rec.OriginalID,
			rec.Data.Name,
			rec.Data.Status,
			cell(m.Revenue),
			cell(m.Spend),
			cell(m.Impressions),
			cell(m.Clicks),
			cell(m.Orders),
			cell(m.Units),
			cell(m.Sessions),
			cell(m.Conversions),
			rec.LastUpdated.UTC().Format(time.RFC3339),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func cell(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
