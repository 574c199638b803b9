package estimate

import (
	"bytes"
	"encoding/csv"
	"math"
	"os"
	"path/filepath"
	"testing"

	"archplan/internal/planner/layout"
	"archplan/internal/planner/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoRoomPlan() *models.Plan {
	return &models.Plan{
		Buildable: models.Rect{Width: 8, Height: 4},
		Rooms: []models.Room{
			{Name: "Living", Kind: layout.KindLiving, Rect: models.Rect{X: 0, Y: 0, Width: 4, Height: 4}},
			{Name: "Kitchen", Kind: layout.KindKitchen, Rect: models.Rect{X: 4, Y: 0, Width: 4, Height: 4}},
		},
	}
}

func findRow(t *testing.T, est models.Estimate, item string) models.BOMRow {
	t.Helper()
	for _, row := range est.BOM {
		if row.Item == item {
			return row
		}
	}
	t.Fatalf("row %q not found", item)
	return models.BOMRow{}
}

func TestEstimateRowOrder(t *testing.T) {
	rates, err := DefaultRates()
	require.NoError(t, err)

	est := New(rates).Estimate(twoRoomPlan())
	require.Len(t, est.BOM, len(lineItems))
	for i, li := range lineItems {
		assert.Equal(t, li.label, est.BOM[i].Item)
		assert.Equal(t, li.unit, est.BOM[i].Unit)
	}
	assert.Equal(t, "INR", est.Currency)
}

func TestEstimateQuantities(t *testing.T) {
	rates, err := DefaultRates()
	require.NoError(t, err)
	est := New(rates).Estimate(twoRoomPlan())

	assert.Equal(t, 2.0, findRow(t, est, "Doors").Quantity)
	assert.Equal(t, 6.0, findRow(t, est, "Windows").Quantity)
	assert.Equal(t, 14.0, findRow(t, est, "Electrical points").Quantity)
	assert.Equal(t, 3.0, findRow(t, est, "Plumbing points").Quantity)
	assert.Equal(t, 33.6, findRow(t, est, "Vitrified floor tiles").Quantity)
	assert.Equal(t, 4.0, findRow(t, est, "RCC roof slab").Quantity)

	for _, row := range est.BOM {
		assert.GreaterOrEqual(t, row.Quantity, 0.0, row.Item)
		if row.Unit == "nos" || row.Unit == "bags" {
			assert.Equal(t, math.Trunc(row.Quantity), row.Quantity, row.Item)
		}
	}
}

func TestDefaultRatesPriceMaterialsOnce(t *testing.T) {
	rates, err := DefaultRates()
	require.NoError(t, err)
	est := New(rates).Estimate(twoRoomPlan())

	// составные объёмы уже включают кирпич, цемент, песок и щебень
	for _, item := range []string{"Foundation concrete", "RCC roof slab", "Brick masonry", "Reinforcement steel"} {
		assert.NotNil(t, findRow(t, est, item).Cost, item)
	}
	for _, item := range []string{"Bricks", "Cement (50 kg bags)", "Sand", "Coarse aggregate"} {
		row := findRow(t, est, item)
		assert.Greater(t, row.Quantity, 0.0, item)
		assert.Nil(t, row.UnitRate, item)
		assert.Nil(t, row.Cost, item)
	}
}

func TestEstimateTotals(t *testing.T) {
	rates, err := DefaultRates()
	require.NoError(t, err)
	est := New(rates).Estimate(twoRoomPlan())

	sum := 0.0
	for _, row := range est.BOM {
		if row.Cost == nil {
			continue
		}
		require.NotNil(t, row.UnitRate, row.Item)
		assert.InDelta(t, row.Quantity*(*row.UnitRate), *row.Cost, 0.01)
		sum += *row.Cost
	}
	assert.Equal(t, math.Round(sum*0.9), est.TotalCostLow)
	assert.Equal(t, math.Round(sum*1.15), est.TotalCostHigh)
	assert.Less(t, est.TotalCostLow, est.TotalCostHigh)
}

func TestEstimateWithoutRates(t *testing.T) {
	rates, err := ParseRates([]byte("currency: USD\nrates:\n  doors: 300\n"))
	require.NoError(t, err)
	est := New(rates).Estimate(twoRoomPlan())

	for _, row := range est.BOM {
		if row.Item == "Doors" {
			require.NotNil(t, row.Cost)
			assert.Equal(t, 600.0, *row.Cost)
			continue
		}
		assert.Nil(t, row.UnitRate, row.Item)
		assert.Nil(t, row.Cost, row.Item)
	}
	assert.Equal(t, 600.0, est.TotalCostLow)
	assert.Equal(t, 600.0, est.TotalCostHigh)
	assert.Equal(t, "USD", est.Currency)
}

func TestParseRatesDefaults(t *testing.T) {
	rates, err := ParseRates([]byte("{}"))
	require.NoError(t, err)
	assert.Equal(t, "INR", rates.Currency)
	assert.Equal(t, 3.0, rates.WallHeight)
	assert.Equal(t, 1.0, rates.LowFactor)
	assert.Equal(t, 1.0, rates.HighFactor)
	assert.Nil(t, rates.Rate("doors"))

	_, err = ParseRates([]byte("low_factor: 1.5\nhigh_factor: 1.1\n"))
	assert.Error(t, err)

	_, err = ParseRates([]byte("rates: [1, 2"))
	assert.Error(t, err)
}

func TestLoadRates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rates.yaml")
	require.NoError(t, os.WriteFile(path, []byte("currency: EUR\nrates:\n  windows: 250\n"), 0o644))

	rates, err := LoadRates(path)
	require.NoError(t, err)
	assert.Equal(t, "EUR", rates.Currency)
	require.NotNil(t, rates.Rate("windows"))
	assert.Equal(t, 250.0, *rates.Rate("windows"))

	_, err = LoadRates(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestWriteCSV(t *testing.T) {
	rates, err := ParseRates([]byte("rates:\n  doors: 300\n"))
	require.NoError(t, err)
	est := New(rates).Estimate(twoRoomPlan())

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, est))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 1+len(lineItems)+2)

	assert.Equal(t, []string{"Item", "Unit", "Quantity", "Unit Rate", "Cost"}, records[0])
	assert.Equal(t, []string{"Foundation concrete", "m³"}, records[1][:2])
	assert.Equal(t, "", records[1][3])
	assert.Equal(t, []string{"Doors", "nos", "2", "300", "600"}, records[12])
	assert.Equal(t, []string{"Total (low)", "INR", "", "", "600"}, records[len(records)-2])
	assert.Equal(t, []string{"Total (high)", "INR", "", "", "600"}, records[len(records)-1])
}
