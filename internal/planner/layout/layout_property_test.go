package layout

import (
	"context"
	"testing"

	"archplan/internal/planner/models"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

var propertyNames = []string{"Living", "Kitchen", "Bedroom", "Toilet", "Dining", "Study", "Store", "Pooja"}

// TestSliceTilesRect: нарезка покрывает прямоугольник без перекрытий,
// площади пропорциональны весам.
func TestSliceTilesRect(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("slices tile the rectangle", prop.ForAll(
		func(weights []float64, w, h float64, vertical bool) bool {
			if len(weights) == 0 {
				return true
			}
			r := models.Rect{X: 1, Y: 1.5, Width: w, Height: h}
			rects := slice(weights, r, vertical)
			if len(rects) != len(weights) {
				return false
			}

			sum := 0.0
			for _, v := range weights {
				sum += v
			}
			total := 0.0
			for i, a := range rects {
				if !r.Contains(a, 1e-9) {
					return false
				}
				if d := a.Area() - weights[i]/sum*r.Area(); d > 1e-6 || d < -1e-6 {
					return false
				}
				for _, b := range rects[i+1:] {
					if a.Overlaps(b, 1e-9) {
						return false
					}
				}
				total += a.Area()
			}
			d := total - r.Area()
			return d < 1e-6 && d > -1e-6
		},
		gen.SliceOf(gen.Float64Range(1, 40)),
		gen.Float64Range(3, 60),
		gen.Float64Range(3, 60),
		gen.Bool(),
	))

	properties.TestingRun(t)
}

// TestGeneratedPlansKeepBriefOrder: в каждом варианте по одной комнате на
// требуемое помещение в исходном порядке, комнаты не перекрываются и лежат
// внутри участка.
func TestGeneratedPlansKeepBriefOrder(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	g := NewGenerator(4)

	properties.Property("generated plans honour the brief", prop.ForAll(
		func(areas []float64, n int, generation int) bool {
			if n > len(areas) {
				n = len(areas)
			}
			p := &models.Project{
				ID:   "prop",
				Site: models.Site{Width: 12, Height: 18},
			}
			for i := 0; i < n; i++ {
				p.RequiredSpaces = append(p.RequiredSpaces, models.SpaceRequirement{Name: propertyNames[i], MinArea: areas[i]})
			}

			got, err := g.Generate(context.Background(), Request{Project: p, Municipal: bbmp, Generation: generation, Count: 3})
			if err != nil || len(got) == 0 || len(got) > 3 {
				return false
			}

			siteRect := models.Rect{Width: p.Site.Width, Height: p.Site.Height}
			for _, c := range got {
				if len(c.Plan.Rooms) != n {
					return false
				}
				for i, room := range c.Plan.Rooms {
					if room.Name != propertyNames[i] || !siteRect.Contains(room.Rect, 1e-6) {
						return false
					}
					for _, other := range c.Plan.Rooms[i+1:] {
						if room.Overlaps(other.Rect, 1e-6) {
							return false
						}
					}
				}
			}
			return true
		},
		gen.SliceOfN(len(propertyNames), gen.Float64Range(4, 30)),
		gen.IntRange(1, len(propertyNames)),
		gen.IntRange(1, 100),
	))

	properties.TestingRun(t)
}
