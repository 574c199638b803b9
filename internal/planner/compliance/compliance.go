package compliance

import (
	"fmt"
	"math"

	"archplan/internal/planner/layout"
	"archplan/internal/planner/models"
	"archplan/internal/planner/rules"
)

// ============================================================
// Compliance Evaluator
// ============================================================

const SourceBrief = "Brief"

// minExteriorRun: минимальная длина наружной стены, чтобы в неё поместилось окно.
const minExteriorRun = 0.9

type Evaluator struct {
	registry *rules.Registry
}

func New(registry *rules.Registry) *Evaluator {
	return &Evaluator{registry: registry}
}

// Evaluate прогоняет базовый, муниципальный и культурный пакеты, затем
// пожелания брифа. Порядок пунктов стабилен.
func (e *Evaluator) Evaluate(project *models.Project, plan *models.Plan) (models.ComplianceReport, error) {
	municipal, err := e.registry.Municipal(project.MunicipalCode)
	if err != nil {
		return models.ComplianceReport{}, err
	}
	cultural, err := e.registry.Cultural(project.CulturalTuning)
	if err != nil {
		return models.ComplianceReport{}, err
	}

	facts := BuildFacts(project, plan)
	report := models.ComplianceReport{Items: []models.ComplianceItem{}}

	for _, pack := range []*rules.Pack{e.registry.Base(), municipal, cultural} {
		if pack == nil {
			continue
		}
		items, err := e.evalPack(pack, facts)
		if err != nil {
			return models.ComplianceReport{}, err
		}
		report.Items = append(report.Items, items...)
	}

	report.Items = append(report.Items, briefItems(project, plan)...)
	return report, nil
}

func (e *Evaluator) evalPack(pack *rules.Pack, facts Facts) ([]models.ComplianceItem, error) {
	engine := e.registry.Engine()
	var out []models.ComplianceItem

	for _, rule := range pack.Rules {
		if rule.Scope == rules.ScopePlan {
			item, err := evalRule(engine, pack, rule, facts.vars(nil), rule.Name)
			if err != nil {
				return nil, err
			}
			out = append(out, item)
			continue
		}

		for _, room := range facts.Rooms {
			vars := facts.vars(room)
			if rule.When != "" {
				applies, err := engine.EvalBool(rule.When, vars)
				if err != nil {
					return nil, fmt.Errorf("%s/%s: %w", pack.Name, rule.Name, err)
				}
				if !applies {
					continue
				}
			}
			name := fmt.Sprintf("%s (%s)", rule.Name, room["name"])
			item, err := evalRule(engine, pack, rule, vars, name)
			if err != nil {
				return nil, err
			}
			out = append(out, item)
		}
	}
	return out, nil
}

func evalRule(engine *rules.Engine, pack *rules.Pack, rule rules.Rule, vars map[string]any, name string) (models.ComplianceItem, error) {
	passed, err := engine.EvalBool(rule.Expr, vars)
	if err != nil {
		return models.ComplianceItem{}, fmt.Errorf("%s/%s: %w", pack.Name, rule.Name, err)
	}

	msgExpr := rule.Message
	if !passed && rule.Failure != "" {
		msgExpr = rule.Failure
	}
	msg, err := engine.EvalString(msgExpr, vars)
	if err != nil {
		return models.ComplianceItem{}, fmt.Errorf("%s/%s message: %w", pack.Name, rule.Name, err)
	}

	return models.ComplianceItem{
		Name:    name,
		Passed:  passed,
		Message: msg,
		Source:  pack.Name,
	}, nil
}

// ============================================================
// Facts
// ============================================================

type Facts struct {
	Plan    map[string]any
	Site    map[string]any
	Project map[string]any
	Rooms   []map[string]any
}

func (f Facts) vars(room map[string]any) map[string]any {
	if room == nil {
		room = map[string]any{}
	}
	return map[string]any{
		"plan":    f.Plan,
		"site":    f.Site,
		"project": f.Project,
		"room":    room,
	}
}

// BuildFacts готовит значения, доступные выражениям правил. Числа округлены,
// чтобы сообщения читались без хвостов двоичной арифметики.
func BuildFacts(project *models.Project, plan *models.Plan) Facts {
	site := project.Site
	b := plan.Buildable

	built := 0.0
	withinSite := true
	wetInCentre := false
	bounds := models.Rect{Width: site.Width, Height: site.Height}

	rooms := make([]map[string]any, 0, len(plan.Rooms))
	for _, room := range plan.Rooms {
		built += room.Area()
		if !bounds.Contains(room.Rect, 1e-6) {
			withinSite = false
		}
		zone := layout.Zone(site, room.Rect)
		if zone == "centre" && (room.Kind == layout.KindKitchen || room.Kind == layout.KindToilet) {
			wetInCentre = true
		}

		rooms = append(rooms, map[string]any{
			"name":      room.Name,
			"kind":      room.Kind,
			"area":      round(room.Area(), 2),
			"min_area":  room.MinArea,
			"width":     round(room.Width, 2),
			"height":    round(room.Height, 2),
			"min_side":  round(math.Min(room.Width, room.Height), 2),
			"ratio":     round(room.Ratio(), 2),
			"zone":      zone,
			"exterior":  layout.ExteriorLength(b, room.Rect) >= minExteriorRun,
			"habitable": layout.Habitable(room.Kind),
		})
	}

	coverage := 0.0
	if site.Area() > 0 {
		coverage = built / site.Area()
	}

	return Facts{
		Plan: map[string]any{
			"coverage":           round(coverage, 3),
			"coverage_pct":       round(coverage*100, 1),
			"site_area":          round(site.Area(), 2),
			"buildable_area":     round(b.Area(), 2),
			"built_area":         round(built, 2),
			"room_count":         len(plan.Rooms),
			"required_count":     len(project.RequiredSpaces),
			"within_site":        withinSite,
			"front_setback":      round(b.Y, 2),
			"rear_setback":       round(site.Height-(b.Y+b.Height), 2),
			"side_setback":       round(b.X, 2),
			"wet_room_in_centre": wetInCentre,
		},
		Site: map[string]any{
			"width":  site.Width,
			"height": site.Height,
			"area":   round(site.Area(), 2),
		},
		Project: map[string]any{
			"title":           project.Title,
			"project_type":    project.ProjectType,
			"cultural_tuning": project.CulturalTuning,
			"municipal_code":  project.MunicipalCode,
		},
		Rooms: rooms,
	}
}

// ============================================================
// Brief requests
// ============================================================

func briefItems(project *models.Project, plan *models.Plan) []models.ComplianceItem {
	brief := layout.ParseBrief(project)
	var out []models.ComplianceItem

	for _, rel := range brief.Relations {
		item := models.ComplianceItem{Name: "Adjacency: " + rel.Clause, Source: SourceBrief}
		switch {
		case !rel.Resolved || rel.A >= len(plan.Rooms) || rel.B >= len(plan.Rooms):
			item.Message = "Could not match this request to the required spaces"
		default:
			a, b := plan.Rooms[rel.A], plan.Rooms[rel.B]
			adjacent := layout.Adjacent(a.Rect, b.Rect)
			item.Passed = adjacent == rel.Attract
			switch {
			case adjacent:
				item.Message = fmt.Sprintf("%s shares a wall with %s", a.Name, b.Name)
			default:
				item.Message = fmt.Sprintf("%s does not touch %s", a.Name, b.Name)
			}
		}
		out = append(out, item)
	}

	for _, o := range brief.Orientations {
		item := models.ComplianceItem{Name: "Orientation: " + o.Clause, Source: SourceBrief}
		if !o.Resolved || o.Room >= len(plan.Rooms) {
			item.Message = "Could not match this request to the required spaces"
			out = append(out, item)
			continue
		}
		room := plan.Rooms[o.Room]
		zone := layout.Zone(project.Site, room.Rect)
		item.Passed = layout.Faces(zone, o.Direction)
		item.Message = fmt.Sprintf("%s sits in the %s of the site", room.Name, zone)
		out = append(out, item)
	}
	return out
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
