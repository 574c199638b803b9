package compliance

import (
	"context"
	"strings"
	"testing"

	"archplan/internal/planner/layout"
	"archplan/internal/planner/models"
	"archplan/internal/planner/rules"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func newEvaluator(t *testing.T) (*Evaluator, *rules.Registry) {
	t.Helper()
	engine, err := rules.NewEngine()
	require.NoError(t, err)
	reg, err := rules.LoadEmbedded(engine)
	require.NoError(t, err)
	return New(reg), reg
}

func sampleProject() *models.Project {
	return &models.Project{
		ID:          "p-1",
		Title:       "My New Home",
		ProjectType: "Residential (Single-family)",
		Site:        models.Site{Width: 12, Height: 18},
		RequiredSpaces: []models.SpaceRequirement{
			{Name: "Living", MinArea: 20},
			{Name: "Kitchen", MinArea: 12},
			{Name: "Bedroom", MinArea: 12},
			{Name: "Toilet", MinArea: 4},
		},
		AdjacencyNotes:   strPtr("Kitchen near Living; Garage next to Gym"),
		OrientationNotes: strPtr("Living to face North"),
		CulturalTuning:   "General Vastu",
		MunicipalCode:    "BBMP",
	}
}

func generatePlan(t *testing.T, reg *rules.Registry, p *models.Project) *models.Plan {
	t.Helper()
	municipal, err := reg.Municipal(p.MunicipalCode)
	require.NoError(t, err)
	cultural, err := reg.Cultural(p.CulturalTuning)
	require.NoError(t, err)

	got, err := layout.NewGenerator(0).Generate(context.Background(), layout.Request{
		Project: p, Municipal: municipal, Cultural: cultural, Generation: 1, Count: 1,
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	return &got[0].Plan
}

func TestEvaluateEveryPackCombination(t *testing.T) {
	eval, reg := newEvaluator(t)

	for _, municipal := range reg.MunicipalNames() {
		for _, cultural := range reg.CulturalNames() {
			t.Run(municipal+"/"+cultural, func(t *testing.T) {
				p := sampleProject()
				p.MunicipalCode, p.CulturalTuning = municipal, cultural
				plan := generatePlan(t, reg, p)

				report, err := eval.Evaluate(p, plan)
				require.NoError(t, err)
				require.NotEmpty(t, report.Items)
				for _, it := range report.Items {
					assert.NotEmpty(t, it.Name)
					assert.NotEmpty(t, it.Message)
					assert.NotEmpty(t, it.Source)
				}
			})
		}
	}
}

func TestEvaluateItemOrder(t *testing.T) {
	eval, reg := newEvaluator(t)
	p := sampleProject()
	plan := generatePlan(t, reg, p)

	report, err := eval.Evaluate(p, plan)
	require.NoError(t, err)

	var sources []string
	for _, it := range report.Items {
		if n := len(sources); n == 0 || sources[n-1] != it.Source {
			sources = append(sources, it.Source)
		}
	}
	assert.Equal(t, []string{"Base", "BBMP", "General Vastu", SourceBrief}, sources)

	items := report.Items
	assert.Equal(t, "Required spaces placed", items[0].Name)
	assert.True(t, items[0].Passed)
	assert.Equal(t, "All 4 required spaces are placed", items[0].Message)
	assert.Equal(t, "Rooms within site", items[1].Name)
	assert.True(t, items[1].Passed)
	assert.Equal(t, "Minimum area (Living)", items[2].Name)

	again, err := eval.Evaluate(p, plan)
	require.NoError(t, err)
	assert.Equal(t, report, again)
}

func TestEvaluateBriefItems(t *testing.T) {
	eval, reg := newEvaluator(t)
	p := sampleProject()
	plan := generatePlan(t, reg, p)

	report, err := eval.Evaluate(p, plan)
	require.NoError(t, err)

	var brief []models.ComplianceItem
	for _, it := range report.Items {
		if it.Source == SourceBrief {
			brief = append(brief, it)
		}
	}
	require.Len(t, brief, 3)
	assert.Equal(t, "Adjacency: Kitchen near Living", brief[0].Name)
	assert.Equal(t, "Adjacency: Garage next to Gym", brief[1].Name)
	assert.False(t, brief[1].Passed)
	assert.Equal(t, "Could not match this request to the required spaces", brief[1].Message)
	assert.True(t, strings.HasPrefix(brief[2].Name, "Orientation: "))
	assert.Contains(t, brief[2].Message, "Living sits in the ")
}

func TestEvaluateUnknownPack(t *testing.T) {
	eval, reg := newEvaluator(t)
	p := sampleProject()
	plan := generatePlan(t, reg, p)

	p.MunicipalCode = "Atlantis"
	_, err := eval.Evaluate(p, plan)
	assert.ErrorIs(t, err, rules.ErrUnknownPack)

	p.MunicipalCode = "BBMP"
	p.CulturalTuning = "Atlantis"
	_, err = eval.Evaluate(p, plan)
	assert.ErrorIs(t, err, rules.ErrUnknownPack)
}

func TestBuildFacts(t *testing.T) {
	p := &models.Project{
		Site:           models.Site{Width: 10, Height: 6},
		RequiredSpaces: []models.SpaceRequirement{{Name: "Living", MinArea: 16}, {Name: "Kitchen", MinArea: 8}},
	}
	plan := &models.Plan{
		Buildable: models.Rect{X: 1, Y: 1.5, Width: 8, Height: 3.5},
		Rooms: []models.Room{
			{Name: "Living", Kind: layout.KindLiving, MinArea: 16, Rect: models.Rect{X: 1, Y: 1.5, Width: 5, Height: 3.5}},
			{Name: "Kitchen", Kind: layout.KindKitchen, MinArea: 8, Rect: models.Rect{X: 6, Y: 1.5, Width: 3, Height: 3.5}},
		},
	}

	f := BuildFacts(p, plan)

	assert.Equal(t, 2, f.Plan["room_count"])
	assert.Equal(t, 2, f.Plan["required_count"])
	assert.Equal(t, true, f.Plan["within_site"])
	assert.Equal(t, 1.5, f.Plan["front_setback"])
	assert.Equal(t, 1.0, f.Plan["rear_setback"])
	assert.Equal(t, 1.0, f.Plan["side_setback"])
	assert.Equal(t, 0.467, f.Plan["coverage"])
	assert.Equal(t, 46.7, f.Plan["coverage_pct"])

	require.Len(t, f.Rooms, 2)
	assert.Equal(t, 17.5, f.Rooms[0]["area"])
	assert.Equal(t, 3.5, f.Rooms[0]["min_side"])
	assert.Equal(t, true, f.Rooms[0]["habitable"])
	assert.Equal(t, true, f.Rooms[1]["exterior"])
	assert.Equal(t, false, f.Rooms[1]["habitable"])
}
