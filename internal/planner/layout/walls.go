package layout

import (
	"math"
	"sort"

	"archplan/internal/planner/models"
)

// ============================================================
// Wall takeoff
// ============================================================

const keyScale = 1e4 // координаты сводятся к 0.1 мм при склейке отрезков

const (
	OpeningDoor     = "door"
	OpeningEntrance = "entrance"
	OpeningWindow   = "window"

	DoorWidth          = 0.9
	EntranceWidth      = 1.0
	WindowWidth        = 1.2
	VentilatorWidth    = 0.6
	windowSpacing      = 3.0
	circulationBonusLn = 100.0
)

type Segment struct {
	P1       models.Point `json:"p1"`
	P2       models.Point `json:"p2"`
	Exterior bool         `json:"exterior"`
}

func (s Segment) Length() float64 {
	return math.Hypot(s.P2.X-s.P1.X, s.P2.Y-s.P1.Y)
}

func (s Segment) Horizontal() bool {
	return math.Abs(s.P2.Y-s.P1.Y) < math.Abs(s.P2.X-s.P1.X)
}

func (s Segment) Mid() models.Point {
	return models.Point{X: (s.P1.X + s.P2.X) / 2, Y: (s.P1.Y + s.P2.Y) / 2}
}

type Opening struct {
	Kind  string  `json:"kind"`
	Room  int     `json:"room"`
	Width float64 `json:"width"`
	At    Segment `json:"at"` // отрезок стены, в котором находится проём (центр проёма: середина)
}

type Takeoff struct {
	Walls          []Segment
	ExteriorLength float64
	InteriorLength float64
	Openings       []Opening
}

func (t Takeoff) Count(kind string) int {
	n := 0
	for _, o := range t.Openings {
		if o.Kind == kind {
			n++
		}
	}
	return n
}

// BuildTakeoff собирает уникальные стены плана (общие стены считаются один раз)
// и расставляет проёмы.
func BuildTakeoff(plan *models.Plan) Takeoff {
	var t Takeoff
	t.Walls = mergeWalls(plan)
	for _, w := range t.Walls {
		if w.Exterior {
			t.ExteriorLength += w.Length()
		} else {
			t.InteriorLength += w.Length()
		}
	}
	t.Openings = append(t.Openings, placeEntrance(plan)...)
	t.Openings = append(t.Openings, placeDoors(plan)...)
	t.Openings = append(t.Openings, placeWindows(plan)...)
	return t
}

type interval struct{ a, b float64 }

func mergeWalls(plan *models.Plan) []Segment {
	horizontal := make(map[int64][]interval)
	vertical := make(map[int64][]interval)

	for _, room := range plan.Rooms {
		r := room.Rect
		horizontal[key(r.Y)] = append(horizontal[key(r.Y)], interval{r.X, r.X + r.Width})
		horizontal[key(r.Y+r.Height)] = append(horizontal[key(r.Y+r.Height)], interval{r.X, r.X + r.Width})
		vertical[key(r.X)] = append(vertical[key(r.X)], interval{r.Y, r.Y + r.Height})
		vertical[key(r.X+r.Width)] = append(vertical[key(r.X+r.Width)], interval{r.Y, r.Y + r.Height})
	}

	b := plan.Buildable
	var out []Segment
	for _, k := range sortedKeys(horizontal) {
		y := float64(k) / keyScale
		ext := k == key(b.Y) || k == key(b.Y+b.Height)
		for _, iv := range mergeIntervals(horizontal[k]) {
			out = append(out, Segment{P1: models.Point{X: iv.a, Y: y}, P2: models.Point{X: iv.b, Y: y}, Exterior: ext})
		}
	}
	for _, k := range sortedKeys(vertical) {
		x := float64(k) / keyScale
		ext := k == key(b.X) || k == key(b.X+b.Width)
		for _, iv := range mergeIntervals(vertical[k]) {
			out = append(out, Segment{P1: models.Point{X: x, Y: iv.a}, P2: models.Point{X: x, Y: iv.b}, Exterior: ext})
		}
	}
	return out
}

func key(v float64) int64 {
	return int64(math.Round(v * keyScale))
}

func sortedKeys(m map[int64][]interval) []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func mergeIntervals(in []interval) []interval {
	sort.Slice(in, func(i, j int) bool { return in[i].a < in[j].a })
	var out []interval
	for _, iv := range in {
		if n := len(out); n > 0 && iv.a <= out[n-1].b+1e-4 {
			if iv.b > out[n-1].b {
				out[n-1].b = iv.b
			}
			continue
		}
		out = append(out, iv)
	}
	return out
}

// ============================================================
// Openings
// ============================================================

func placeEntrance(plan *models.Plan) []Opening {
	b := plan.Buildable
	best, bestScore := -1, -1.0
	for i, room := range plan.Rooms {
		if math.Abs(room.Y-b.Y) > 1e-4 {
			continue
		}
		score := room.Width
		if room.Kind == KindLiving {
			score += circulationBonusLn
		}
		if score > bestScore {
			best, bestScore = i, score
		}
	}
	if best < 0 {
		return nil
	}
	r := plan.Rooms[best].Rect
	return []Opening{{
		Kind:  OpeningEntrance,
		Room:  best,
		Width: EntranceWidth,
		At:    Segment{P1: models.Point{X: r.X, Y: r.Y}, P2: models.Point{X: r.X + r.Width, Y: r.Y}, Exterior: true},
	}}
}

// placeDoors даёт каждому помещению одну дверь в самую длинную общую стену,
// предпочитая проходные помещения (гостиная, столовая, холл).
func placeDoors(plan *models.Plan) []Opening {
	seen := make(map[[2]int]bool)
	var out []Opening
	for i, room := range plan.Rooms {
		best, bestScore := -1, 0.0
		var bestSeg Segment
		for j, other := range plan.Rooms {
			if i == j {
				continue
			}
			seg, ok := sharedSegment(room.Rect, other.Rect)
			if !ok || seg.Length() < minSharedWall {
				continue
			}
			score := seg.Length()
			if circulation(other.Kind) {
				score += circulationBonusLn
			}
			if score > bestScore {
				best, bestScore, bestSeg = j, score, seg
			}
		}
		if best < 0 {
			continue
		}
		pair := [2]int{min(i, best), max(i, best)}
		if seen[pair] {
			continue
		}
		seen[pair] = true
		out = append(out, Opening{Kind: OpeningDoor, Room: i, Width: DoorWidth, At: bestSeg})
	}
	return out
}

func circulation(kind string) bool {
	return kind == KindLiving || kind == KindDining || kind == KindOther
}

func sharedSegment(a, b models.Rect) (Segment, bool) {
	const tol = 1e-4
	switch {
	case math.Abs(a.X+a.Width-b.X) < tol, math.Abs(b.X+b.Width-a.X) < tol:
		x := b.X
		if math.Abs(a.X+a.Width-b.X) >= tol {
			x = a.X
		}
		y1, y2 := math.Max(a.Y, b.Y), math.Min(a.Y+a.Height, b.Y+b.Height)
		if y2-y1 <= tol {
			return Segment{}, false
		}
		return Segment{P1: models.Point{X: x, Y: y1}, P2: models.Point{X: x, Y: y2}}, true
	case math.Abs(a.Y+a.Height-b.Y) < tol, math.Abs(b.Y+b.Height-a.Y) < tol:
		y := b.Y
		if math.Abs(a.Y+a.Height-b.Y) >= tol {
			y = a.Y
		}
		x1, x2 := math.Max(a.X, b.X), math.Min(a.X+a.Width, b.X+b.Width)
		if x2-x1 <= tol {
			return Segment{}, false
		}
		return Segment{P1: models.Point{X: x1, Y: y}, P2: models.Point{X: x2, Y: y}}, true
	}
	return Segment{}, false
}

func placeWindows(plan *models.Plan) []Opening {
	var out []Opening
	for i, room := range plan.Rooms {
		switch room.Kind {
		case KindStore, KindStair, KindGarage:
			continue
		}
		edges := exteriorEdges(plan.Buildable, room.Rect)
		if len(edges) == 0 {
			continue
		}

		if room.Kind == KindToilet {
			out = append(out, Opening{Kind: OpeningWindow, Room: i, Width: VentilatorWidth, At: longest(edges)})
			continue
		}

		placed := 0
		for _, e := range edges {
			n := int(math.Floor(e.Length() / windowSpacing))
			for k := 0; k < n; k++ {
				out = append(out, Opening{Kind: OpeningWindow, Room: i, Width: WindowWidth, At: subSegment(e, k, n)})
				placed++
			}
		}
		if placed == 0 {
			e := longest(edges)
			width := WindowWidth
			if e.Length() < WindowWidth+0.3 {
				width = math.Max(VentilatorWidth, e.Length()-0.3)
			}
			out = append(out, Opening{Kind: OpeningWindow, Room: i, Width: width, At: e})
		}
	}
	return out
}

func exteriorEdges(b, r models.Rect) []Segment {
	const tol = 1e-4
	var out []Segment
	if math.Abs(r.Y-b.Y) < tol {
		out = append(out, Segment{P1: models.Point{X: r.X, Y: r.Y}, P2: models.Point{X: r.X + r.Width, Y: r.Y}, Exterior: true})
	}
	if math.Abs(r.Y+r.Height-(b.Y+b.Height)) < tol {
		out = append(out, Segment{P1: models.Point{X: r.X, Y: r.Y + r.Height}, P2: models.Point{X: r.X + r.Width, Y: r.Y + r.Height}, Exterior: true})
	}
	if math.Abs(r.X-b.X) < tol {
		out = append(out, Segment{P1: models.Point{X: r.X, Y: r.Y}, P2: models.Point{X: r.X, Y: r.Y + r.Height}, Exterior: true})
	}
	if math.Abs(r.X+r.Width-(b.X+b.Width)) < tol {
		out = append(out, Segment{P1: models.Point{X: r.X + r.Width, Y: r.Y}, P2: models.Point{X: r.X + r.Width, Y: r.Y + r.Height}, Exterior: true})
	}
	return out
}

func longest(segs []Segment) Segment {
	best := segs[0]
	for _, s := range segs[1:] {
		if s.Length() > best.Length() {
			best = s
		}
	}
	return best
}

// subSegment возвращает k-ю из n равных частей отрезка.
func subSegment(s Segment, k, n int) Segment {
	t1 := float64(k) / float64(n)
	t2 := float64(k+1) / float64(n)
	return Segment{
		P1:       models.Point{X: s.P1.X + (s.P2.X-s.P1.X)*t1, Y: s.P1.Y + (s.P2.Y-s.P1.Y)*t1},
		P2:       models.Point{X: s.P1.X + (s.P2.X-s.P1.X)*t2, Y: s.P1.Y + (s.P2.Y-s.P1.Y)*t2},
		Exterior: s.Exterior,
	}
}
