package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"ricavi/internal/core"
)

const amountFormat = "#,##0"

// WriteXLSX writes the month as a workbook with one sheet named by the
// period key.
func WriteXLSX(w io.Writer, p core.Period, summary core.MonthSummary, raw core.RawMonth) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := p.Key()
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	amountStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: strPtr(amountFormat)})
	if err != nil {
		return fmt.Errorf("create amount style: %w", err)
	}
	labelStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create label style: %w", err)
	}

	grid := Values(summary, raw)
	for i, line := range grid {
		if len(line) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		row := line
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	if err := f.SetCellStyle(sheet, "A1", "C1", headerStyle); err != nil {
		return fmt.Errorf("style header: %w", err)
	}
	days := len(summary.DailyTotals)
	if days > 0 {
		last := fmt.Sprintf("C%d", days+1)
		if err := f.SetCellStyle(sheet, "C2", last, amountStyle); err != nil {
			return fmt.Errorf("style totals: %w", err)
		}
	}
	summaryStart := days + 3
	summaryEnd := len(grid)
	if err := f.SetCellStyle(sheet, fmt.Sprintf("A%d", summaryStart), fmt.Sprintf("A%d", summaryEnd), labelStyle); err != nil {
		return fmt.Errorf("style summary labels: %w", err)
	}
	if err := f.SetCellStyle(sheet, fmt.Sprintf("C%d", summaryStart), fmt.Sprintf("C%d", summaryEnd), amountStyle); err != nil {
		return fmt.Errorf("style summary values: %w", err)
	}

	widths := map[string]float64{"A": 18, "B": 40, "C": 16}
	for col, width := range widths {
		if err := f.SetColWidth(sheet, col, col, width); err != nil {
			return fmt.Errorf("set column width: %w", err)
		}
	}

	if err := f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freeze header: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func strPtr(s string) *string { return &s }
