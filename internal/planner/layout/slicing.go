package layout

import (
	"math"

	"archplan/internal/planner/models"
)

// ============================================================
// Slicing treemap
// ============================================================

// slice делит прямоугольник на len(weights) частей с площадями,
// пропорциональными весам, сохраняя порядок. Первый разрез вертикальный,
// если vertical, дальше режется длинная сторона.
func slice(weights []float64, r models.Rect, vertical bool) []models.Rect {
	out := make([]models.Rect, 0, len(weights))
	return sliceInto(out, weights, r, vertical)
}

func sliceInto(out []models.Rect, weights []float64, r models.Rect, vertical bool) []models.Rect {
	if len(weights) == 0 {
		return out
	}
	if len(weights) == 1 {
		return append(out, r)
	}

	total := 0.0
	for _, w := range weights {
		total += w
	}

	split := balancedSplit(weights, total)
	left := 0.0
	for _, w := range weights[:split] {
		left += w
	}
	frac := 0.5
	if total > 0 {
		frac = left / total
	}

	var a, b models.Rect
	if vertical {
		w := r.Width * frac
		a = models.Rect{X: r.X, Y: r.Y, Width: w, Height: r.Height}
		b = models.Rect{X: r.X + w, Y: r.Y, Width: r.Width - w, Height: r.Height}
	} else {
		h := r.Height * frac
		a = models.Rect{X: r.X, Y: r.Y, Width: r.Width, Height: h}
		b = models.Rect{X: r.X, Y: r.Y + h, Width: r.Width, Height: r.Height - h}
	}

	out = sliceInto(out, weights[:split], a, a.Width >= a.Height)
	return sliceInto(out, weights[split:], b, b.Width >= b.Height)
}

// balancedSplit выбирает индекс 1..n-1, делящий сумму весов ближе всего пополам.
func balancedSplit(weights []float64, total float64) int {
	best, bestDiff := 1, math.Inf(1)
	acc := 0.0
	for i := 0; i < len(weights)-1; i++ {
		acc += weights[i]
		if d := math.Abs(acc - total/2); d < bestDiff {
			best, bestDiff = i+1, d
		}
	}
	return best
}
