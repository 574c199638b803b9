package layout

import (
	"testing"

	"archplan/internal/planner/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoRoomPlan() *models.Plan {
	return &models.Plan{
		Buildable: models.Rect{Width: 8, Height: 4},
		Rooms: []models.Room{
			{Name: "Living", Kind: KindLiving, Rect: models.Rect{X: 0, Y: 0, Width: 4, Height: 4}},
			{Name: "Bedroom", Kind: KindBedroom, Rect: models.Rect{X: 4, Y: 0, Width: 4, Height: 4}},
		},
	}
}

func TestBuildTakeoffWalls(t *testing.T) {
	to := BuildTakeoff(twoRoomPlan())

	require.Len(t, to.Walls, 5)
	assert.InDelta(t, 24, to.ExteriorLength, 1e-9)
	assert.InDelta(t, 4, to.InteriorLength, 1e-9)

	interior := 0
	for _, w := range to.Walls {
		if !w.Exterior {
			interior++
			assert.False(t, w.Horizontal())
			assert.Equal(t, models.Point{X: 4, Y: 2}, w.Mid())
		}
	}
	assert.Equal(t, 1, interior)
}

func TestBuildTakeoffOpenings(t *testing.T) {
	to := BuildTakeoff(twoRoomPlan())

	assert.Equal(t, 1, to.Count(OpeningEntrance))
	assert.Equal(t, 1, to.Count(OpeningDoor))
	assert.Equal(t, 6, to.Count(OpeningWindow))

	for _, o := range to.Openings {
		if o.Kind == OpeningEntrance {
			assert.Equal(t, 0, o.Room, "entrance goes to the living room")
			assert.InDelta(t, 0, o.At.P1.Y, 1e-9)
		}
	}
}

func TestToiletGetsSingleVentilator(t *testing.T) {
	plan := &models.Plan{
		Buildable: models.Rect{Width: 6, Height: 3},
		Rooms: []models.Room{
			{Name: "Toilet", Kind: KindToilet, Rect: models.Rect{Width: 2, Height: 3}},
			{Name: "Store", Kind: KindStore, Rect: models.Rect{X: 2, Width: 4, Height: 3}},
		},
	}
	to := BuildTakeoff(plan)

	windows := 0
	for _, o := range to.Openings {
		if o.Kind != OpeningWindow {
			continue
		}
		windows++
		assert.Equal(t, 0, o.Room)
		assert.InDelta(t, VentilatorWidth, o.Width, 1e-9)
	}
	assert.Equal(t, 1, windows)
}

func TestSubSegment(t *testing.T) {
	s := Segment{P1: models.Point{X: 0, Y: 0}, P2: models.Point{X: 9, Y: 0}}
	got := subSegment(s, 1, 3)
	assert.InDelta(t, 3, got.P1.X, 1e-9)
	assert.InDelta(t, 6, got.P2.X, 1e-9)
	assert.InDelta(t, 3, got.Length(), 1e-9)
}

func TestMergeIntervals(t *testing.T) {
	got := mergeIntervals([]interval{{4, 8}, {0, 4}, {10, 12}})
	assert.Equal(t, []interval{{0, 8}, {10, 12}}, got)
}
