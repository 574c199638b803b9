package estimate

import (
	"encoding/csv"
	"io"
	"strconv"

	"archplan/internal/planner/models"
)

// ============================================================
// CSV export
// ============================================================

var csvHeader = []string{"Item", "Unit", "Quantity", "Unit Rate", "Cost"}

// WriteCSV пишет ведомость; пустые ячейки означают отсутствие расценки.
func WriteCSV(w io.Writer, est models.Estimate) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	for _, row := range est.BOM {
		record := []string{
			row.Item,
			row.Unit,
			formatFloat(row.Quantity),
			formatOptional(row.UnitRate),
			formatOptional(row.Cost),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	totals := [][]string{
		{"Total (low)", est.Currency, "", "", formatFloat(est.TotalCostLow)},
		{"Total (high)", est.Currency, "", "", formatFloat(est.TotalCostHigh)},
	}
	if err := cw.WriteAll(totals); err != nil {
		return err
	}
	return cw.Error()
}

func formatFloat(val float64) string {
	return strconv.FormatFloat(val, 'f', -1, 64)
}

func formatOptional(val *float64) string {
	if val == nil {
		return ""
	}
	return formatFloat(*val)
}
