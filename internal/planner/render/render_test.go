package render

import (
	"bytes"
	"image"
	"strings"
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
			{Name: "Bed & Bath", Kind: layout.KindBedroom, Rect: models.Rect{X: 4, Y: 0, Width: 4, Height: 4}},
		},
	}
}

func countType(elems []Element, typ string) int {
	n := 0
	for _, e := range elems {
		if e.Type == typ {
			n++
		}
	}
	return n
}

func TestRenderRoundTrip(t *testing.T) {
	svg, err := NewRenderer().Render(models.Site{Width: 8, Height: 4}, twoRoomPlan())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(svg, `<?xml version="1.0" encoding="UTF-8"?>`))
	assert.Contains(t, svg, `viewBox="0 0 416 256"`)
	assert.Contains(t, svg, "16 m²")

	elems, err := ParseSVGString(svg)
	require.NoError(t, err)

	assert.Equal(t, 1, countType(elems, "site"))
	assert.Equal(t, 1, countType(elems, "buildable"))
	assert.Equal(t, 2, countType(elems, "room"))
	assert.Equal(t, 5, countType(elems, "wall"))
	assert.Equal(t, 2, countType(elems, "door"))
	assert.Equal(t, 6, countType(elems, "window"))

	var rooms []Element
	for _, e := range elems {
		if e.Type == "room" {
			rooms = append(rooms, e)
		}
	}
	require.Len(t, rooms, 2)
	assert.Equal(t, "Room_1", rooms[0].ID)
	assert.Equal(t, "Living", rooms[0].Name)
	assert.Equal(t, layout.KindLiving, rooms[0].Kind)
	assert.Equal(t, 48.0, rooms[0].X)
	assert.Equal(t, 160.0, rooms[0].Width)
	assert.Equal(t, "Bed & Bath", rooms[1].Name)
	assert.Equal(t, 208.0, rooms[1].X)
}

func TestRenderIsDeterministic(t *testing.T) {
	r := NewRenderer()
	a, err := r.Render(models.Site{Width: 8, Height: 4}, twoRoomPlan())
	require.NoError(t, err)
	b, err := r.Render(models.Site{Width: 8, Height: 4}, twoRoomPlan())
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestRenderErrors(t *testing.T) {
	r := NewRenderer()

	_, err := r.Render(models.Site{Width: 8, Height: 4}, nil)
	assert.Error(t, err)

	_, err = r.Render(models.Site{}, twoRoomPlan())
	assert.Error(t, err)
}

func TestParseViewBox(t *testing.T) {
	vb, ok := ParseViewBox([]byte(`<svg viewBox="0 0 416 256"></svg>`))
	require.True(t, ok)
	assert.Equal(t, ViewBox{Width: 416, Height: 256}, vb)

	vb, ok = ParseViewBox([]byte(`<svg viewBox='-10,5, 20.5 30'></svg>`))
	require.True(t, ok)
	assert.Equal(t, ViewBox{MinX: -10, MinY: 5, Width: 20.5, Height: 30}, vb)

	_, ok = ParseViewBox([]byte(`<svg viewBox="0 0 0 10"></svg>`))
	assert.False(t, ok)

	_, ok = ParseViewBox([]byte(`<svg width="10" height="10"></svg>`))
	assert.False(t, ok)
}

func TestParseSVGSkipsUnknownRects(t *testing.T) {
	elems, err := ParseSVGString(`<svg xmlns="http://www.w3.org/2000/svg"><rect id="Background" /><rect id="Wall_1" x="1" y="2" width="3" height="4" /></svg>`)
	require.NoError(t, err)
	require.Len(t, elems, 1)
	assert.Equal(t, Element{ID: "Wall_1", Type: "wall", X: 1, Y: 2, Width: 3, Height: 4}, elems[0])

	_, err = ParseSVGString("<svg><rect")
	assert.Error(t, err)
}

func TestRasterize(t *testing.T) {
	svg, err := NewRenderer().Render(models.Site{Width: 8, Height: 4}, twoRoomPlan())
	require.NoError(t, err)

	data, err := RasterizeBytes([]byte(svg), 1.5)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG\r\n\x1a\n")))

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, 624, cfg.Width)
	assert.Equal(t, 384, cfg.Height)
}

func TestRasterizeFallbackSize(t *testing.T) {
	svg := `<svg xmlns="http://www.w3.org/2000/svg"><rect x="0" y="0" width="10" height="10" fill="#000" /></svg>`

	data, err := RasterizeBytes([]byte(svg), 0)
	require.NoError(t, err)

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, FallbackWidth, cfg.Width)
	assert.Equal(t, FallbackHeight, cfg.Height)
}

func TestRasterSizeCapsLongSide(t *testing.T) {
	tests := []struct {
		name          string
		svg           string
		scale         float64
		width, height int
	}{
		{"small plan keeps scale", `<svg viewBox="0 0 416 256"></svg>`, 1.5, 624, 384},
		{"square is capped", `<svg viewBox="0 0 1000 1000"></svg>`, 10, maxRasterSide, maxRasterSide},
		{"200x300 m site", `<svg viewBox="0 0 8096 12096"></svg>`, 1.5, 2742, maxRasterSide},
		{"no viewBox", `<svg></svg>`, 1.5, FallbackWidth, FallbackHeight},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := RasterSize([]byte(tt.svg), tt.scale)
			assert.Equal(t, tt.width, w)
			assert.Equal(t, tt.height, h)
		})
	}
}

func TestRasterizeLargeViewBox(t *testing.T) {
	svg := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 1000 500"><rect x="0" y="0" width="10" height="10" fill="#000" /></svg>`
	data, err := RasterizeBytes([]byte(svg), 10)
	require.NoError(t, err)

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, maxRasterSide, cfg.Width)
	assert.Equal(t, maxRasterSide/2, cfg.Height)
}

func TestRoomsFromDrawing(t *testing.T) {
	r := NewRenderer()
	plan := twoRoomPlan()
	svg, err := r.Render(models.Site{Width: 8, Height: 4}, plan)
	require.NoError(t, err)

	rooms, err := r.Rooms(svg)
	require.NoError(t, err)
	require.Len(t, rooms, 2)
	assert.Equal(t, "Bed & Bath", rooms[1].Name)
	assert.Equal(t, models.Rect{X: 4, Y: 0, Width: 4, Height: 4}, rooms[1].Rect)

	assert.NoError(t, r.VerifyRooms(svg, plan))

	moved := twoRoomPlan()
	moved.Rooms[1].X = 4.5
	assert.ErrorContains(t, r.VerifyRooms(svg, moved), "Bed & Bath")

	renamed := twoRoomPlan()
	renamed.Rooms[0].Name = "Lounge"
	assert.Error(t, r.VerifyRooms(svg, renamed))

	extra := twoRoomPlan()
	extra.Rooms = append(extra.Rooms, models.Room{Name: "Store"})
	assert.ErrorContains(t, r.VerifyRooms(svg, extra), "drawing has 2 rooms, plan has 3")

	_, err = r.Rooms("<svg><rect")
	assert.Error(t, err)
}
