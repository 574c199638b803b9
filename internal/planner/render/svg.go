package render

import (
	"fmt"
	"html"
	"math"
	"strconv"
	"strings"

	"archplan/internal/planner/layout"
	"archplan/internal/planner/models"
)

// ============================================================
// Renderer
// ============================================================

const (
	DefaultScale  = 40.0 // px на метр
	DefaultMargin = 48.0
)

var kindFill = map[string]string{
	layout.KindLiving:        "#e0f2fe",
	layout.KindDining:        "#fef9c3",
	layout.KindKitchen:       "#ffedd5",
	layout.KindBedroom:       "#ede9fe",
	layout.KindMasterBedroom: "#ddd6fe",
	layout.KindToilet:        "#ccfbf1",
	layout.KindPrayer:        "#fce7f3",
	layout.KindStudy:         "#dcfce7",
	layout.KindOffice:        "#dcfce7",
	layout.KindRetail:        "#fee2e2",
}

type Renderer struct {
	scale  float64
	margin float64
}

func NewRenderer() *Renderer {
	return &Renderer{scale: DefaultScale, margin: DefaultMargin}
}

// Render собирает SVG чертёж плана. Участок рисуется пунктиром, стены
// прямоугольниками толщиной в масштабе, проёмы поверх стен.
func (r *Renderer) Render(site models.Site, plan *models.Plan) (string, error) {
	if plan == nil {
		return "", fmt.Errorf("plan is nil")
	}
	if site.Width <= 0 || site.Height <= 0 {
		return "", fmt.Errorf("site has no area")
	}

	width := site.Width*r.scale + 2*r.margin
	height := site.Height*r.scale + 2*r.margin
	takeoff := layout.BuildTakeoff(plan)

	var elements []string
	elements = append(elements, fmt.Sprintf(`<rect id="Background" x="0" y="0" width="%s" height="%s" fill="#ffffff" />`,
		formatFloat(width), formatFloat(height)))
	elements = append(elements, r.renderSite(site, plan.Buildable)...)
	elements = append(elements, r.renderRooms(plan)...)
	elements = append(elements, r.renderWalls(takeoff)...)
	elements = append(elements, r.renderOpenings(takeoff)...)
	elements = append(elements, r.renderLabels(plan)...)
	elements = append(elements, r.renderNorthArrow(width)...)

	var builder strings.Builder
	builder.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	builder.WriteString(fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%s" height="%s" viewBox="0 0 %s %s">`,
		formatFloat(width), formatFloat(height), formatFloat(width), formatFloat(height)))
	builder.WriteString("\n")

	for _, elem := range elements {
		builder.WriteString("  ")
		builder.WriteString(elem)
		builder.WriteString("\n")
	}

	builder.WriteString(`</svg>`)
	return builder.String(), nil
}

// ============================================================
// Element renderers
// ============================================================

func (r *Renderer) renderSite(site models.Site, buildable models.Rect) []string {
	return []string{
		fmt.Sprintf(`<rect id="Site" x="%s" y="%s" width="%s" height="%s" fill="none" stroke="#94a3b8" stroke-width="2" stroke-dasharray="8 6" />`,
			formatFloat(r.x(0)), formatFloat(r.y(0)), formatFloat(site.Width*r.scale), formatFloat(site.Height*r.scale)),
		fmt.Sprintf(`<rect id="Buildable" x="%s" y="%s" width="%s" height="%s" fill="#f8fafc" stroke="none" />`,
			formatFloat(r.x(buildable.X)), formatFloat(r.y(buildable.Y)), formatFloat(buildable.Width*r.scale), formatFloat(buildable.Height*r.scale)),
	}
}

func (r *Renderer) renderRooms(plan *models.Plan) []string {
	out := make([]string, 0, len(plan.Rooms))
	for i, room := range plan.Rooms {
		fill, ok := kindFill[room.Kind]
		if !ok {
			fill = "#f1f5f9"
		}
		out = append(out, fmt.Sprintf(`<rect id="Room_%d" data-name="%s" data-kind="%s" x="%s" y="%s" width="%s" height="%s" fill="%s" stroke="none" />`,
			i+1, html.EscapeString(room.Name), room.Kind,
			formatFloat(r.x(room.X)), formatFloat(r.y(room.Y)),
			formatFloat(room.Width*r.scale), formatFloat(room.Height*r.scale), fill))
	}
	return out
}

func (r *Renderer) renderWalls(t layout.Takeoff) []string {
	var out []string
	for i, w := range t.Walls {
		thickness := 0.115 * r.scale
		if w.Exterior {
			thickness = 0.23 * r.scale
		}
		out = append(out, fmt.Sprintf(`<rect id="Wall_%d" %s fill="#1e293b" stroke="none" />`, i+1, r.bar(w, thickness, 0)))
	}
	return out
}

func (r *Renderer) renderOpenings(t layout.Takeoff) []string {
	var out []string
	doors, windows := 0, 0
	for _, o := range t.Openings {
		thickness := 0.115 * r.scale
		if o.At.Exterior {
			thickness = 0.23 * r.scale
		}
		// проём вырезается белым, затем обводится
		gap := r.bar(o.At, thickness+2, o.Width)
		switch o.Kind {
		case layout.OpeningWindow:
			windows++
			out = append(out, fmt.Sprintf(`<rect id="Window_%d" %s fill="#ffffff" stroke="#1f77b4" stroke-width="1.5" />`, windows, gap))
		default:
			doors++
			out = append(out, fmt.Sprintf(`<rect id="Door_%d" data-kind="%s" %s fill="#ffffff" stroke="#d62728" stroke-width="1.5" />`, doors, o.Kind, gap))
		}
	}
	return out
}

func (r *Renderer) renderLabels(plan *models.Plan) []string {
	out := make([]string, 0, len(plan.Rooms))
	for _, room := range plan.Rooms {
		c := room.Center()
		size := clamp(math.Min(room.Width, room.Height)*r.scale/6, 9, 16)
		out = append(out, fmt.Sprintf(`<text x="%s" y="%s" font-family="sans-serif" font-size="%s" text-anchor="middle" fill="#0f172a">%s<tspan x="%s" dy="1.2em" font-size="%s" fill="#475569">%s m²</tspan></text>`,
			formatFloat(r.x(c.X)), formatFloat(r.y(c.Y)), formatFloat(size), html.EscapeString(room.Name),
			formatFloat(r.x(c.X)), formatFloat(size*0.8), formatFloat(round(room.Area(), 1))))
	}
	return out
}

func (r *Renderer) renderNorthArrow(width float64) []string {
	cx := width - r.margin/2
	cy := r.margin / 2
	return []string{
		fmt.Sprintf(`<path id="North" d="M %s %s L %s %s L %s %s Z" fill="#0f172a" />`,
			formatFloat(cx), formatFloat(cy-14), formatFloat(cx+7), formatFloat(cy+8), formatFloat(cx-7), formatFloat(cy+8)),
		fmt.Sprintf(`<text x="%s" y="%s" font-family="sans-serif" font-size="11" text-anchor="middle" fill="#0f172a">N</text>`,
			formatFloat(cx), formatFloat(cy+20)),
	}
}

// bar возвращает атрибуты x/y/width/height прямоугольника толщиной thickness,
// центрированного на отрезке. length > 0 задаёт длину вдоль отрезка от его середины.
func (r *Renderer) bar(s layout.Segment, thickness, length float64) string {
	var x, y, w, h float64
	mid := s.Mid()
	if s.Horizontal() {
		w = math.Abs(s.P2.X-s.P1.X) * r.scale
		x = r.x(math.Min(s.P1.X, s.P2.X))
		if length > 0 {
			w = length * r.scale
			x = r.x(mid.X) - w/2
		} else {
			x -= thickness / 2
			w += thickness
		}
		h = thickness
		y = r.y(mid.Y) - thickness/2
	} else {
		h = math.Abs(s.P2.Y-s.P1.Y) * r.scale
		y = r.y(math.Min(s.P1.Y, s.P2.Y))
		if length > 0 {
			h = length * r.scale
			y = r.y(mid.Y) - h/2
		} else {
			y -= thickness / 2
			h += thickness
		}
		w = thickness
		x = r.x(mid.X) - thickness/2
	}
	return fmt.Sprintf(`x="%s" y="%s" width="%s" height="%s"`, formatFloat(x), formatFloat(y), formatFloat(w), formatFloat(h))
}

// ============================================================
// Formatting helpers
// ============================================================

func (r *Renderer) x(m float64) float64 {
	return round(r.margin+m*r.scale, 2)
}

func (r *Renderer) y(m float64) float64 {
	return round(r.margin+m*r.scale, 2)
}

func clamp(val, min, max float64) float64 {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

func formatFloat(val float64) string {
	return strconv.FormatFloat(round(val, 2), 'f', -1, 64)
}
