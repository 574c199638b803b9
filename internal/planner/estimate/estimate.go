package estimate

import (
	"math"

	"archplan/internal/planner/layout"
	"archplan/internal/planner/models"
)

// ============================================================
// Quantity take-off
// ============================================================

const (
	exteriorThickness = 0.23
	interiorThickness = 0.115
	doorHeight        = 2.1
	windowHeight      = 1.2
	bricksPerM3       = 500
)

type lineItem struct {
	key   string
	label string
	unit  string
	count bool // штучные позиции округляются вверх до целого
}

// Порядок строк ведомости фиксирован.
var lineItems = []lineItem{
	{"foundation_concrete", "Foundation concrete", "m³", false},
	{"slab_concrete", "RCC roof slab", "m³", false},
	{"brickwork", "Brick masonry", "m³", false},
	{"bricks", "Bricks", "nos", true},
	{"cement", "Cement (50 kg bags)", "bags", true},
	{"steel", "Reinforcement steel", "kg", false},
	{"sand", "Sand", "m³", false},
	{"aggregate", "Coarse aggregate", "m³", false},
	{"plaster", "Plastering (both faces)", "m²", false},
	{"paint", "Paint (2 coats)", "L", false},
	{"floor_tiles", "Vitrified floor tiles", "m²", false},
	{"doors", "Doors", "nos", true},
	{"windows", "Windows", "nos", true},
	{"electrical_points", "Electrical points", "nos", true},
	{"plumbing_points", "Plumbing points", "nos", true},
}

type Estimator struct {
	rates *RateTable
}

func New(rates *RateTable) *Estimator {
	return &Estimator{rates: rates}
}

// Estimate считает ведомость материалов по геометрии плана.
func (e *Estimator) Estimate(plan *models.Plan) models.Estimate {
	q := e.quantities(plan)

	est := models.Estimate{
		BOM:      make([]models.BOMRow, 0, len(lineItems)),
		Currency: e.rates.Currency,
	}

	total := 0.0
	for _, li := range lineItems {
		qty := q[li.key]
		if li.count {
			qty = math.Ceil(qty - 1e-9)
		} else {
			qty = round(qty, 2)
		}

		row := models.BOMRow{Item: li.label, Unit: li.unit, Quantity: qty}
		if rate := e.rates.Rate(li.key); rate != nil {
			cost := round(qty*(*rate), 2)
			row.UnitRate = rate
			row.Cost = &cost
			total += cost
		}
		est.BOM = append(est.BOM, row)
	}

	est.TotalCostLow = math.Round(total * e.rates.LowFactor)
	est.TotalCostHigh = math.Round(total * e.rates.HighFactor)
	return est
}

func (e *Estimator) quantities(plan *models.Plan) map[string]float64 {
	t := layout.BuildTakeoff(plan)
	h := e.rates.WallHeight

	area := 0.0
	electrical, plumbing := 0.0, 0.0
	for _, room := range plan.Rooms {
		area += room.Area()
		electrical += electricalPoints(room.Kind)
		plumbing += plumbingPoints(room.Kind)
	}

	openingArea, openingVolume := 0.0, 0.0
	for _, o := range t.Openings {
		height := windowHeight
		if o.Kind != layout.OpeningWindow {
			height = doorHeight
		}
		a := o.Width * height
		openingArea += a
		if o.At.Exterior {
			openingVolume += a * exteriorThickness
		} else {
			openingVolume += a * interiorThickness
		}
	}

	foundation := t.ExteriorLength*0.9*0.45 + t.InteriorLength*0.6*0.3
	slab := area * 0.125
	concrete := foundation + slab
	brickwork := math.Max(0, (t.ExteriorLength*exteriorThickness+t.InteriorLength*interiorThickness)*h-openingVolume)
	plaster := math.Max(0, 2*(t.ExteriorLength+t.InteriorLength)*h-2*openingArea)

	return map[string]float64{
		"foundation_concrete": foundation,
		"slab_concrete":       slab,
		"brickwork":           brickwork,
		"bricks":              brickwork * bricksPerM3,
		"cement":              concrete*8 + brickwork*1.4 + plaster*0.12,
		"steel":               slab*85 + foundation*45,
		"sand":                concrete*0.45 + brickwork*0.25 + plaster*0.015,
		"aggregate":           concrete * 0.9,
		"plaster":             plaster,
		"paint":               plaster * 2 / 10,
		"floor_tiles":         area * 1.05,
		"doors":               float64(t.Count(layout.OpeningDoor) + t.Count(layout.OpeningEntrance)),
		"windows":             float64(t.Count(layout.OpeningWindow)),
		"electrical_points":   electrical,
		"plumbing_points":     plumbing,
	}
}

func electricalPoints(kind string) float64 {
	switch {
	case kind == layout.KindKitchen:
		return 8
	case layout.Habitable(kind):
		return 6
	default:
		return 3
	}
}

func plumbingPoints(kind string) float64 {
	switch kind {
	case layout.KindKitchen:
		return 3
	case layout.KindToilet:
		return 4
	case layout.KindUtility:
		return 2
	}
	return 0
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
