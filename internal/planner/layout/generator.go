package layout

import (
	"context"
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"math/rand/v2"
	"runtime"
	"sort"
	"strings"

	"archplan/internal/planner/models"
	"archplan/internal/planner/rules"

	"golang.org/x/sync/errgroup"
)

// ============================================================
// Generator
// ============================================================

// DefaultSamples: сколько вариантов раскладки перебирается на одну альтернативу.
const DefaultSamples = 8

type Request struct {
	Project    *models.Project
	Municipal  *rules.Pack
	Cultural   *rules.Pack
	Generation int
	Count      int
}

// Brief: разобранные пожелания проекта.
type Brief struct {
	Names        []string
	Relations    []Relation
	Orientations []Orientation
}

func ParseBrief(p *models.Project) Brief {
	b := Brief{Names: make([]string, len(p.RequiredSpaces))}
	for i, s := range p.RequiredSpaces {
		b.Names[i] = s.Name
	}
	if p.AdjacencyNotes != nil {
		b.Relations = ParseAdjacency(*p.AdjacencyNotes, b.Names)
	}
	if p.OrientationNotes != nil {
		b.Orientations = ParseOrientation(*p.OrientationNotes, b.Names)
	}
	return b
}

type Candidate struct {
	Plan    models.Plan
	Metrics Metrics
	Sample  int
}

type Generator struct {
	samples int
}

func NewGenerator(samples int) *Generator {
	if samples <= 0 {
		samples = DefaultSamples
	}
	return &Generator{samples: samples}
}

// Generate перебирает Count*samples детерминированных раскладок и возвращает
// до Count лучших различных, по убыванию оценки раскладки.
func (g *Generator) Generate(ctx context.Context, req Request) ([]Candidate, error) {
	if req.Project == nil {
		return nil, fmt.Errorf("project is nil")
	}
	if len(req.Project.RequiredSpaces) == 0 {
		return nil, fmt.Errorf("project has no required spaces")
	}
	if req.Count <= 0 {
		return nil, fmt.Errorf("alternatives must be positive")
	}

	var setbacks rules.Setbacks
	if req.Municipal != nil {
		setbacks = req.Municipal.Setbacks
	}
	buildable := Buildable(req.Project.Site, setbacks)
	brief := ParseBrief(req.Project)
	seed := seedFor(req.Project.ID, req.Generation)

	total := req.Count * g.samples
	candidates := make([]Candidate, total)

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(runtime.NumCPU())
	for k := 0; k < total; k++ {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			plan := sample(req.Project, buildable, brief, seed, k)
			candidates[k] = Candidate{
				Plan:    plan,
				Metrics: measure(&plan, req.Project.Site, brief, req.Cultural),
				Sample:  k,
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		si, sj := candidates[i].Metrics.LayoutScore(), candidates[j].Metrics.LayoutScore()
		if si != sj {
			return si > sj
		}
		return candidates[i].Sample < candidates[j].Sample
	})

	seen := make(map[string]bool)
	out := make([]Candidate, 0, req.Count)
	for _, c := range candidates {
		sig := signature(&c.Plan)
		if seen[sig] {
			continue
		}
		seen[sig] = true
		out = append(out, c)
		if len(out) == req.Count {
			break
		}
	}
	return out, nil
}

func seedFor(projectID string, generation int) uint64 {
	h := fnv.New64a()
	h.Write([]byte(projectID))
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(generation))
	h.Write(buf[:])
	return h.Sum64()
}

// sample строит k-ю раскладку. Нулевая использует порядок из брифа без отражений.
func sample(p *models.Project, buildable models.Rect, brief Brief, seed uint64, k int) models.Plan {
	n := len(p.RequiredSpaces)
	rng := rand.New(rand.NewPCG(seed, uint64(k)))

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	vertical := buildable.Width >= buildable.Height
	flipX, flipY := false, false
	if k > 0 {
		order = rng.Perm(n)
		vertical = rng.IntN(2) == 0
		flipX = rng.IntN(2) == 1
		flipY = rng.IntN(2) == 1
	}
	order = applyRelations(order, brief.Relations)

	weights := make([]float64, n)
	for i, idx := range order {
		weights[i] = p.RequiredSpaces[idx].MinArea
	}
	rects := slice(weights, buildable, vertical)

	rooms := make([]models.Room, n)
	for i, idx := range order {
		r := rects[i]
		if flipX {
			r.X = 2*buildable.X + buildable.Width - r.X - r.Width
		}
		if flipY {
			r.Y = 2*buildable.Y + buildable.Height - r.Y - r.Height
		}
		space := p.RequiredSpaces[idx]
		rooms[idx] = models.Room{
			Name:    space.Name,
			Kind:    Classify(space.Name),
			MinArea: space.MinArea,
			Rect:    r,
		}
	}

	return models.Plan{
		ProjectID: p.ID,
		Buildable: buildable,
		Rooms:     rooms,
	}
}

// applyRelations ставит притягивающиеся помещения рядом в порядке нарезки,
// а отталкивающиеся соседние разносит в конец.
func applyRelations(order []int, relations []Relation) []int {
	for _, rel := range relations {
		if !rel.Resolved {
			continue
		}
		ia, ib := indexOf(order, rel.A), indexOf(order, rel.B)
		if rel.Attract {
			if ia-ib == 1 || ib-ia == 1 {
				continue
			}
			order = remove(order, ib)
			ia = indexOf(order, rel.A)
			order = insert(order, ia+1, rel.B)
			continue
		}
		if ia-ib == 1 || ib-ia == 1 {
			order = remove(order, ib)
			order = append(order, rel.B)
		}
	}
	return order
}

func indexOf(s []int, v int) int {
	for i, x := range s {
		if x == v {
			return i
		}
	}
	return -1
}

func remove(s []int, i int) []int {
	out := make([]int, 0, len(s)-1)
	out = append(out, s[:i]...)
	return append(out, s[i+1:]...)
}

func insert(s []int, i, v int) []int {
	out := make([]int, 0, len(s)+1)
	out = append(out, s[:i]...)
	out = append(out, v)
	return append(out, s[i:]...)
}

func signature(plan *models.Plan) string {
	var b strings.Builder
	for _, r := range plan.Rooms {
		fmt.Fprintf(&b, "%.3f,%.3f,%.3f,%.3f;", r.X, r.Y, r.Width, r.Height)
	}
	return b.String()
}
