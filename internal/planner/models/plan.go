package models

import (
	"math"
	"time"
)

// ============================================================
// Geometry primitives
// ============================================================

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect задаётся в метрах от северо-западного угла участка (y растёт на юг).
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (r Rect) Area() float64 {
	return r.Width * r.Height
}

func (r Rect) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// Ratio: отношение длинной стороны к короткой (>= 1).
func (r Rect) Ratio() float64 {
	short := math.Min(r.Width, r.Height)
	if short <= 0 {
		return math.Inf(1)
	}
	return math.Max(r.Width, r.Height) / short
}

func (r Rect) Contains(o Rect, eps float64) bool {
	return o.X >= r.X-eps && o.Y >= r.Y-eps &&
		o.X+o.Width <= r.X+r.Width+eps &&
		o.Y+o.Height <= r.Y+r.Height+eps
}

func (r Rect) Overlaps(o Rect, eps float64) bool {
	return r.X+eps < o.X+o.Width && o.X+eps < r.X+r.Width &&
		r.Y+eps < o.Y+o.Height && o.Y+eps < r.Y+r.Height
}

// ============================================================
// Plan Model
// ============================================================

type Room struct {
	Name    string  `json:"name"`
	Kind    string  `json:"kind"`
	MinArea float64 `json:"min_area"`
	Rect
}

type Plan struct {
	ID         string    `json:"plan_id"`
	ProjectID  string    `json:"project_id"`
	Generation int       `json:"generation"`
	Index      int       `json:"index"`
	Score      float64   `json:"score"`
	Buildable  Rect      `json:"buildable"`
	Rooms      []Room    `json:"rooms"`
	CreatedAt  time.Time `json:"created_at"`
}

type PlanSummary struct {
	PlanID string  `json:"plan_id"`
	Score  float64 `json:"score"`
}

func (p Plan) Summary() PlanSummary {
	return PlanSummary{PlanID: p.ID, Score: p.Score}
}

// ============================================================
// Artifacts
// ============================================================

type ComplianceItem struct {
	Name    string `json:"name"`
	Passed  bool   `json:"passed"`
	Message string `json:"message"`
	Source  string `json:"source"`
}

type ComplianceReport struct {
	Items []ComplianceItem `json:"items"`
}

// PassRate возвращает долю пройденных проверок (1 для пустого отчёта).
func (r ComplianceReport) PassRate() float64 {
	if len(r.Items) == 0 {
		return 1
	}
	passed := 0
	for _, it := range r.Items {
		if it.Passed {
			passed++
		}
	}
	return float64(passed) / float64(len(r.Items))
}

type BOMRow struct {
	Item     string   `json:"item"`
	Unit     string   `json:"unit"`
	Quantity float64  `json:"quantity"`
	UnitRate *float64 `json:"unit_rate"`
	Cost     *float64 `json:"cost"`
}

type Estimate struct {
	BOM           []BOMRow `json:"bom"`
	TotalCostLow  float64  `json:"total_cost_low"`
	TotalCostHigh float64  `json:"total_cost_high"`
	Currency      string   `json:"currency"`
}

type SVGResponse struct {
	SVG string `json:"svg"`
}

type GenerateRequest struct {
	Alternatives int `json:"alternatives"`
}

type GenerateResponse struct {
	ProjectID  string        `json:"project_id"`
	Generation int           `json:"generation"`
	Plans      []PlanSummary `json:"plans"`
}
