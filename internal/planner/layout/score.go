package layout

import (
	"math"

	"archplan/internal/planner/models"
	"archplan/internal/planner/rules"
)

// ============================================================
// Scoring
// ============================================================

type Metrics struct {
	Aspect      float64 `json:"aspect"`
	Adjacency   float64 `json:"adjacency"`
	Orientation float64 `json:"orientation"`
	Cultural    float64 `json:"cultural"`
	Area        float64 `json:"area"`
}

// LayoutScore сводит метрики в 0..100.
func (m Metrics) LayoutScore() float64 {
	return 100 * (0.30*m.Aspect + 0.20*m.Adjacency + 0.15*m.Orientation + 0.15*m.Cultural + 0.20*m.Area)
}

// FinalScore добавляет долю пройденных проверок соответствия.
func FinalScore(layoutScore, passRate float64) float64 {
	return round(0.8*layoutScore+20*passRate, 1)
}

func measure(plan *models.Plan, site models.Site, brief Brief, cultural *rules.Pack) Metrics {
	var m Metrics
	if len(plan.Rooms) == 0 {
		return m
	}

	for _, room := range plan.Rooms {
		m.Aspect += clamp((4-room.Ratio())/2.5, 0, 1)
		if room.MinArea > 0 {
			m.Area += math.Min(1, room.Area()/room.MinArea)
		} else {
			m.Area++
		}
	}
	n := float64(len(plan.Rooms))
	m.Aspect /= n
	m.Area /= n

	m.Adjacency = ratio(brief.Relations, func(r Relation) (bool, bool) {
		if !r.Resolved {
			return false, false
		}
		adj := Adjacent(plan.Rooms[r.A].Rect, plan.Rooms[r.B].Rect)
		return adj == r.Attract, true
	})

	m.Orientation = ratio(brief.Orientations, func(o Orientation) (bool, bool) {
		if !o.Resolved {
			return false, false
		}
		return Faces(Zone(site, plan.Rooms[o.Room].Rect), o.Direction), true
	})

	m.Cultural = 1
	if cultural != nil {
		total, count := 0.0, 0
		for _, room := range plan.Rooms {
			zone := Zone(site, room.Rect)
			if cultural.Avoids(room.Kind, zone) {
				count++
				continue
			}
			preferred, known := cultural.Prefers(room.Kind, zone)
			if !known {
				continue
			}
			count++
			if preferred {
				total++
			} else {
				total += 0.3
			}
		}
		if count > 0 {
			m.Cultural = total / float64(count)
		}
	}
	return m
}

// ratio считает долю выполненных условий среди применимых; 1 если применимых нет.
func ratio[T any](items []T, check func(T) (ok bool, applicable bool)) float64 {
	total, passed := 0, 0
	for _, it := range items {
		ok, applicable := check(it)
		if !applicable {
			continue
		}
		total++
		if ok {
			passed++
		}
	}
	if total == 0 {
		return 1
	}
	return float64(passed) / float64(total)
}

func clamp(val, lo, hi float64) float64 {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}
