package render

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"

	"archplan/internal/planner/models"
)

// ============================================================
// XML Structures
// ============================================================

type svgDoc struct {
	XMLName xml.Name  `xml:"svg"`
	ViewBox string    `xml:"viewBox,attr"`
	Rects   []svgRect `xml:"rect"`
}

type svgRect struct {
	ID     string  `xml:"id,attr"`
	Name   string  `xml:"data-name,attr"`
	Kind   string  `xml:"data-kind,attr"`
	X      float64 `xml:"x,attr"`
	Y      float64 `xml:"y,attr"`
	Width  float64 `xml:"width,attr"`
	Height float64 `xml:"height,attr"`
}

// Element: прямоугольник чертежа с распознанным по id типом.
type Element struct {
	ID     string
	Type   string
	Name   string
	Kind   string
	X      float64
	Y      float64
	Width  float64
	Height float64
}

type ViewBox struct {
	MinX   float64
	MinY   float64
	Width  float64
	Height float64
}

// ============================================================
// Parser
// ============================================================

var viewBoxRe = regexp.MustCompile(`viewBox\s*=\s*["']\s*(-?[\d.]+)[\s,]+(-?[\d.]+)[\s,]+([\d.]+)[\s,]+([\d.]+)\s*["']`)

// ParseViewBox достаёт viewBox из корневого элемента без полного разбора XML.
func ParseViewBox(svg []byte) (ViewBox, bool) {
	m := viewBoxRe.FindSubmatch(svg)
	if m == nil {
		return ViewBox{}, false
	}
	var vals [4]float64
	for i := range vals {
		v, err := strconv.ParseFloat(string(m[i+1]), 64)
		if err != nil {
			return ViewBox{}, false
		}
		vals[i] = v
	}
	if vals[2] <= 0 || vals[3] <= 0 {
		return ViewBox{}, false
	}
	return ViewBox{MinX: vals[0], MinY: vals[1], Width: vals[2], Height: vals[3]}, true
}

// ParseSVG читает прямоугольники верхнего уровня и классифицирует их по id.
func ParseSVG(r io.Reader) ([]Element, error) {
	var doc svgDoc
	decoder := xml.NewDecoder(r)
	if err := decoder.Decode(&doc); err != nil {
		return nil, err
	}

	var elements []Element
	for _, rect := range doc.Rects {
		elemType := classifyElementByID(rect.ID)
		if elemType == "" {
			continue
		}
		elements = append(elements, Element{
			ID:     rect.ID,
			Type:   elemType,
			Name:   rect.Name,
			Kind:   rect.Kind,
			X:      rect.X,
			Y:      rect.Y,
			Width:  rect.Width,
			Height: rect.Height,
		})
	}
	return elements, nil
}

// ParseSVGString удобная обёртка для строк.
func ParseSVGString(svg string) ([]Element, error) {
	return ParseSVG(bytes.NewReader([]byte(svg)))
}

func classifyElementByID(id string) string {
	switch {
	case strings.HasPrefix(id, "Wall_"):
		return "wall"
	case strings.HasPrefix(id, "Door_"):
		return "door"
	case strings.HasPrefix(id, "Window_"):
		return "window"
	case strings.HasPrefix(id, "Room_"):
		return "room"
	case id == "Site":
		return "site"
	case id == "Buildable":
		return "buildable"
	}
	return ""
}

// Rooms восстанавливает комнаты из SVG, нарисованного этим рендерером, в метрах.
func (r *Renderer) Rooms(svg string) ([]models.Room, error) {
	elems, err := ParseSVGString(svg)
	if err != nil {
		return nil, fmt.Errorf("parse svg: %w", err)
	}
	var rooms []models.Room
	for _, e := range elems {
		if e.Type != "room" {
			continue
		}
		rooms = append(rooms, models.Room{
			Name: e.Name,
			Kind: e.Kind,
			Rect: models.Rect{
				X:      round((e.X-r.margin)/r.scale, 2),
				Y:      round((e.Y-r.margin)/r.scale, 2),
				Width:  round(e.Width/r.scale, 2),
				Height: round(e.Height/r.scale, 2),
			},
		})
	}
	return rooms, nil
}

// VerifyRooms сверяет комнаты чертежа с планом: те же имена, типы и
// прямоугольники в пределах сантиметра.
func (r *Renderer) VerifyRooms(svg string, plan *models.Plan) error {
	drawn, err := r.Rooms(svg)
	if err != nil {
		return err
	}
	if len(drawn) != len(plan.Rooms) {
		return fmt.Errorf("drawing has %d rooms, plan has %d", len(drawn), len(plan.Rooms))
	}
	for i, want := range plan.Rooms {
		got := drawn[i]
		if got.Name != want.Name || got.Kind != want.Kind {
			return fmt.Errorf("room %d drawn as %q (%s), plan has %q (%s)", i+1, got.Name, got.Kind, want.Name, want.Kind)
		}
		if !near(got.X, want.X) || !near(got.Y, want.Y) || !near(got.Width, want.Width) || !near(got.Height, want.Height) {
			return fmt.Errorf("room %q drawn at %+v, plan has %+v", want.Name, got.Rect, want.Rect)
		}
	}
	return nil
}

func near(a, b float64) bool {
	return math.Abs(a-b) <= 0.01
}
