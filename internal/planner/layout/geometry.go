package layout

import (
	"math"

	"archplan/internal/planner/models"
	"archplan/internal/planner/rules"
)

// ============================================================
// Geometry helpers
// ============================================================

const eps = 1e-6

// minSharedWall: минимальная общая длина стены, чтобы считать помещения смежными (проём двери).
const minSharedWall = 0.9

var zoneNames = [3][3]string{
	{"north-west", "north", "north-east"},
	{"west", "centre", "east"},
	{"south-west", "south", "south-east"},
}

// Zone возвращает одну из девяти зон участка, в которой лежит центр rect.
// Север сверху (y = 0).
func Zone(site models.Site, r models.Rect) string {
	c := r.Center()
	col := third(c.X, site.Width)
	row := third(c.Y, site.Height)
	return zoneNames[row][col]
}

func third(v, total float64) int {
	if total <= 0 {
		return 1
	}
	i := int(math.Floor(v / total * 3))
	if i < 0 {
		return 0
	}
	if i > 2 {
		return 2
	}
	return i
}

// Buildable вычитает отступы из участка. Если отступы съедают участок целиком,
// возвращается весь участок.
func Buildable(site models.Site, s rules.Setbacks) models.Rect {
	r := models.Rect{
		X:      s.Side,
		Y:      s.Front,
		Width:  site.Width - 2*s.Side,
		Height: site.Height - s.Front - s.Rear,
	}
	if r.Width <= eps || r.Height <= eps || s.Side < 0 || s.Front < 0 || s.Rear < 0 {
		return models.Rect{Width: site.Width, Height: site.Height}
	}
	return r
}

// SharedWall возвращает длину общей стены двух прямоугольников (0, если не соприкасаются).
func SharedWall(a, b models.Rect) float64 {
	const tol = 1e-4
	if math.Abs(a.X+a.Width-b.X) < tol || math.Abs(b.X+b.Width-a.X) < tol {
		return overlap(a.Y, a.Y+a.Height, b.Y, b.Y+b.Height)
	}
	if math.Abs(a.Y+a.Height-b.Y) < tol || math.Abs(b.Y+b.Height-a.Y) < tol {
		return overlap(a.X, a.X+a.Width, b.X, b.X+b.Width)
	}
	return 0
}

func Adjacent(a, b models.Rect) bool {
	return SharedWall(a, b) >= minSharedWall
}

func overlap(a1, a2, b1, b2 float64) float64 {
	return math.Max(0, math.Min(a2, b2)-math.Max(a1, b1))
}

// ExteriorLength: длина сторон комнаты, лежащих на границе застройки.
func ExteriorLength(buildable, r models.Rect) float64 {
	const tol = 1e-4
	total := 0.0
	if math.Abs(r.Y-buildable.Y) < tol {
		total += r.Width
	}
	if math.Abs(r.Y+r.Height-(buildable.Y+buildable.Height)) < tol {
		total += r.Width
	}
	if math.Abs(r.X-buildable.X) < tol {
		total += r.Height
	}
	if math.Abs(r.X+r.Width-(buildable.X+buildable.Width)) < tol {
		total += r.Height
	}
	return total
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
