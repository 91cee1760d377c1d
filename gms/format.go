package gms

import "time"

// EntitySummaryRow is one aspect row touched by a rollback.
type EntitySummaryRow struct {
	Urn             string `mapstructure:"urn" json:"urn"`
	AspectName      string `mapstructure:"aspectName" json:"aspectName"`
	TimestampMillis int64  `mapstructure:"timestamp" json:"timestamp"`
	RunID           string `mapstructure:"runId" json:"runId"`
}

// Time returns the row timestamp in local time.
func (r EntitySummaryRow) Time() time.Time {
	return time.UnixMilli(r.TimestampMillis).Local()
}

// RowTimeLayout renders a row timestamp with its zone abbreviation.
const RowTimeLayout = "2006-01-02 15:04:05 (MST)"

// FormatRows renders rows as [urn, aspect name, local time] triples.
func FormatRows(rows []EntitySummaryRow) [][]string {
	out := make([][]string, 0, len(rows))
	for _, row := range rows {
		out = append(out, []string{row.Urn, row.AspectName, row.Time().Format(RowTimeLayout)})
	}
	return out
}
