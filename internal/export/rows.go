// Package export renders a month as CSV, XLSX or a plain value grid.
package export

import (
	"strings"

	"ricavi/internal/core"
)

// Header is the column header shared by every export format.
var Header = []string{"day", "raw", "total"}

// Summary block labels.
const (
	LabelMonthlyTotal = "Tổng doanh thu"
	LabelAverageDaily = "Trung bình/ngày"
	LabelOvernights   = "Lượt qua đêm"
)

// Row is one day of an exported month.
type Row struct {
	Day            int
	Raw            string
	Total          int64
	OvernightCount int
}

// Rows lists every day of the summary with its raw text.
func Rows(summary core.MonthSummary, raw core.RawMonth) []Row {
	rows := make([]Row, 0, len(summary.DailyTotals))
	for _, dt := range summary.DailyTotals {
		rows = append(rows, Row{
			Day:            dt.Day,
			Raw:            JoinCells(raw.Cells(dt.Day)),
			Total:          dt.Total,
			OvernightCount: dt.OvernightCount,
		})
	}
	return rows
}

// JoinCells flattens a day's cells into one text. Room cells are written
// as "room: raw" and separated by "; ".
func JoinCells(cells []core.Cell) string {
	if len(cells) == 1 && cells[0].Room == "" {
		return cells[0].Raw
	}
	parts := make([]string, 0, len(cells))
	for _, c := range cells {
		if c.Room == "" {
			parts = append(parts, c.Raw)
			continue
		}
		parts = append(parts, c.Room+": "+c.Raw)
	}
	return strings.Join(parts, "; ")
}

// Values renders the month as a grid: header, one line per day, a blank
// line and the summary block.
func Values(summary core.MonthSummary, raw core.RawMonth) [][]any {
	rows := Rows(summary, raw)
	out := make([][]any, 0, len(rows)+5)
	out = append(out, []any{Header[0], Header[1], Header[2]})
	for _, r := range rows {
		out = append(out, []any{r.Day, r.Raw, r.Total})
	}
	out = append(out, []any{})
	out = append(out, SummaryValues(summary)...)
	return out
}

// SummaryValues is the label/value block appended after the daily rows.
func SummaryValues(summary core.MonthSummary) [][]any {
	return [][]any{
		{LabelMonthlyTotal, "", summary.MonthlyTotal},
		{LabelAverageDaily, "", summary.AverageDailyRevenue},
		{LabelOvernights, "", summary.TotalOvernightStays},
	}
}
