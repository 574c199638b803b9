package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"slices"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"archplan/internal/planner/cache"
	"archplan/internal/planner/compliance"
	"archplan/internal/planner/estimate"
	"archplan/internal/planner/layout"
	"archplan/internal/planner/models"
	"archplan/internal/planner/render"
	"archplan/internal/planner/repository"
	"archplan/internal/planner/rules"
)

// ============================================================
// Project Service
// ============================================================

const (
	DefaultAlternatives = 4
	MaxAlternatives     = 12
	pngScale            = 1.5
)

// Store: хранилище проектов и планов.
type Store interface {
	CreateProject(ctx context.Context, p *models.Project) error
	GetProject(ctx context.Context, id string) (*models.Project, error)
	ReplacePlans(ctx context.Context, projectID string, gen int, plans []models.Plan) error
	ListPlans(ctx context.Context, projectID string) ([]models.Plan, error)
	GetPlan(ctx context.Context, projectID, planID string) (*models.Plan, error)
	Ping(ctx context.Context) error
}

type Deps struct {
	Store           Store
	Registry        *rules.Registry
	Rates           *estimate.RateTable
	Cache           cache.ArtifactCache
	Storage         *FileStorage
	MaxAlternatives int
}

type ProjectService struct {
	store       Store
	registry    *rules.Registry
	generator   *layout.Generator
	evaluator   *compliance.Evaluator
	estimator   *estimate.Estimator
	renderer    *render.Renderer
	cache       cache.ArtifactCache
	storage     *FileStorage
	generations *GenerationTracker
	maxAlt      int
	now         func() time.Time

	tracer    trace.Tracer
	generated metric.Int64Counter
}

func New(d Deps) (*ProjectService, error) {
	if d.Store == nil || d.Registry == nil || d.Rates == nil {
		return nil, fmt.Errorf("store, registry and rates are required")
	}
	if d.Cache == nil {
		d.Cache = cache.NewMemory(cache.DefaultTTL)
	}
	if d.MaxAlternatives <= 0 || d.MaxAlternatives > MaxAlternatives {
		d.MaxAlternatives = MaxAlternatives
	}

	generated, err := otel.Meter("archplan/planner").Int64Counter("planner.plans.generated",
		metric.WithDescription("Plans produced by generate"))
	if err != nil {
		return nil, fmt.Errorf("counter: %w", err)
	}

	return &ProjectService{
		store:       d.Store,
		registry:    d.Registry,
		generator:   layout.NewGenerator(layout.DefaultSamples),
		evaluator:   compliance.New(d.Registry),
		estimator:   estimate.New(d.Rates),
		renderer:    render.NewRenderer(),
		cache:       d.Cache,
		storage:     d.Storage,
		generations: NewGenerationTracker(),
		maxAlt:      d.MaxAlternatives,
		now:         time.Now,
		tracer:      otel.Tracer("archplan/planner"),
		generated:   generated,
	}, nil
}

// ============================================================
// Projects
// ============================================================

// CreateProject нормализует форму, проверяет пакеты правил и сохраняет проект.
func (s *ProjectService) CreateProject(ctx context.Context, in models.ProjectInput) (*models.Project, error) {
	ctx, span := s.tracer.Start(ctx, "planner.CreateProject")
	defer span.End()

	p, err := s.buildProject(in)
	if err != nil {
		return nil, fail(span, err)
	}
	if err := s.store.CreateProject(ctx, p); err != nil {
		return nil, fail(span, err)
	}

	span.SetAttributes(attribute.String("project.id", p.ID))
	log.Printf("[PLANNER] project %s created: %q, %d spaces, %s / %s",
		p.ID, p.Title, len(p.RequiredSpaces), p.MunicipalCode, p.CulturalTuning)
	return p, nil
}

func (s *ProjectService) buildProject(in models.ProjectInput) (*models.Project, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if !slices.Contains(models.ProjectTypes, in.ProjectType) {
		return nil, fmt.Errorf("%w: unknown project type %q", ErrInvalidInput, in.ProjectType)
	}
	if in.Site.Width <= 0 || in.Site.Height <= 0 {
		return nil, fmt.Errorf("%w: site width and height must be positive", ErrInvalidInput)
	}
	if len(in.RequiredSpaces) == 0 {
		return nil, fmt.Errorf("%w: at least one required space is needed", ErrInvalidInput)
	}

	spaces := make([]models.SpaceRequirement, 0, len(in.RequiredSpaces))
	for i, sp := range in.RequiredSpaces {
		name := strings.TrimSpace(sp.Name)
		if name == "" || sp.MinArea <= 0 {
			return nil, fmt.Errorf("%w: space %d needs a name and a positive area", ErrInvalidInput, i+1)
		}
		if strings.IndexFunc(name, unicode.IsControl) >= 0 {
			return nil, fmt.Errorf("%w: space %d name has control characters", ErrInvalidInput, i+1)
		}
		spaces = append(spaces, models.SpaceRequirement{Name: name, MinArea: sp.MinArea})
	}

	if _, err := s.registry.Municipal(in.MunicipalCode); err != nil {
		return nil, err
	}
	if _, err := s.registry.Cultural(in.CulturalTuning); err != nil {
		return nil, err
	}

	return &models.Project{
		ID:               uuid.NewString(),
		Title:            title,
		ProjectType:      in.ProjectType,
		Site:             in.Site,
		RequiredSpaces:   spaces,
		AdjacencyNotes:   trimNote(in.AdjacencyNotes),
		OrientationNotes: trimNote(in.OrientationNotes),
		CulturalTuning:   in.CulturalTuning,
		MunicipalCode:    in.MunicipalCode,
		CreatedAt:        s.now().UTC(),
	}, nil
}

func (s *ProjectService) Project(ctx context.Context, id string) (*models.Project, error) {
	return s.store.GetProject(ctx, id)
}

// Catalog перечисляет значения полей формы.
func (s *ProjectService) Catalog() models.Catalog {
	return models.Catalog{
		ProjectTypes:    append([]string(nil), models.ProjectTypes...),
		CulturalTunings: s.registry.CulturalNames(),
		MunicipalCodes:  s.registry.MunicipalNames(),
	}
}

func (s *ProjectService) Ready(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// ============================================================
// Generation
// ============================================================

// Generate строит новое поколение альтернатив. Параллельный вызов для того же
// проекта получает ErrGenerationInProgress.
func (s *ProjectService) Generate(ctx context.Context, projectID string, alternatives int) (*models.GenerateResponse, error) {
	ctx, span := s.tracer.Start(ctx, "planner.Generate",
		trace.WithAttributes(attribute.String("project.id", projectID)))
	defer span.End()

	if alternatives == 0 {
		alternatives = DefaultAlternatives
	}
	if alternatives < 1 || alternatives > s.maxAlt {
		return nil, fail(span, fmt.Errorf("%w: alternatives must be between 1 and %d", ErrInvalidInput, s.maxAlt))
	}

	token, ok := s.generations.Begin(projectID)
	if !ok {
		return nil, fail(span, ErrGenerationInProgress)
	}
	defer s.generations.End(projectID, token)

	project, err := s.store.GetProject(ctx, projectID)
	if err != nil {
		return nil, fail(span, err)
	}
	municipal, err := s.registry.Municipal(project.MunicipalCode)
	if err != nil {
		return nil, fail(span, err)
	}
	cultural, err := s.registry.Cultural(project.CulturalTuning)
	if err != nil {
		return nil, fail(span, err)
	}

	gen := project.Generation + 1
	started := time.Now()
	candidates, err := s.generator.Generate(ctx, layout.Request{
		Project:    project,
		Municipal:  municipal,
		Cultural:   cultural,
		Generation: gen,
		Count:      alternatives,
	})
	if err != nil {
		return nil, fail(span, fmt.Errorf("generate layouts: %w", err))
	}

	plans := make([]models.Plan, len(candidates))
	createdAt := s.now().UTC()
	eg, _ := errgroup.WithContext(ctx)
	for i, c := range candidates {
		eg.Go(func() error {
			plan := c.Plan
			plan.ID = planID(project.ID, gen, i+1)
			plan.ProjectID = project.ID
			plan.Generation = gen
			plan.Index = i + 1
			plan.CreatedAt = createdAt

			report, err := s.evaluator.Evaluate(project, &plan)
			if err != nil {
				return fmt.Errorf("compliance %s: %w", plan.ID, err)
			}
			plan.Score = layout.FinalScore(c.Metrics.LayoutScore(), report.PassRate())
			plans[i] = plan
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, fail(span, err)
	}

	if err := s.store.ReplacePlans(ctx, project.ID, gen, plans); err != nil {
		if errors.Is(err, repository.ErrStaleGeneration) {
			return nil, fail(span, fmt.Errorf("%w: %v", ErrGenerationInProgress, err))
		}
		return nil, fail(span, err)
	}

	s.generated.Add(ctx, int64(len(plans)), metric.WithAttributes(attribute.String("municipal", project.MunicipalCode)))
	span.SetAttributes(attribute.Int("plans.count", len(plans)), attribute.Int("generation", gen))
	log.Printf("[PLANNER] project %s generation %d: %d plans in %s", project.ID, gen, len(plans), time.Since(started).Round(time.Millisecond))

	summaries, err := s.ListPlans(ctx, project.ID)
	if err != nil {
		return nil, err
	}
	return &models.GenerateResponse{
		ProjectID:  project.ID,
		Generation: gen,
		Plans:      summaries,
	}, nil
}

// ListPlans возвращает сводки текущего поколения в серверном порядке.
func (s *ProjectService) ListPlans(ctx context.Context, projectID string) ([]models.PlanSummary, error) {
	if _, err := s.store.GetProject(ctx, projectID); err != nil {
		return nil, err
	}
	plans, err := s.store.ListPlans(ctx, projectID)
	if err != nil {
		return nil, err
	}
	out := make([]models.PlanSummary, 0, len(plans))
	for _, p := range plans {
		out = append(out, p.Summary())
	}
	return out, nil
}

func (s *ProjectService) Plan(ctx context.Context, projectID, planID string) (*models.Plan, error) {
	return s.store.GetPlan(ctx, projectID, planID)
}

// ============================================================
// Plan Artifacts
// ============================================================

// Наличие плана проверяется до кэша: удалённые поколения не отдаются из кэша.
func (s *ProjectService) PlanSVG(ctx context.Context, projectID, planID string) (string, error) {
	ctx, span := s.tracer.Start(ctx, "planner.PlanSVG")
	defer span.End()

	project, plan, err := s.load(ctx, projectID, planID)
	if err != nil {
		return "", fail(span, err)
	}
	svg, err := s.svgFor(ctx, project, plan)
	if err != nil {
		return "", fail(span, err)
	}
	return svg, nil
}

// svgFor рисует план и сверяет чертёж с комнатами плана перед кэшированием.
func (s *ProjectService) svgFor(ctx context.Context, project *models.Project, plan *models.Plan) (string, error) {
	key := cache.Key(project.ID, plan.ID, "svg")
	if body, ok := s.cacheGet(ctx, key); ok {
		return string(body), nil
	}

	svg, err := s.renderer.Render(project.Site, plan)
	if err != nil {
		return "", fmt.Errorf("render %s: %w", plan.ID, err)
	}
	if err := s.renderer.VerifyRooms(svg, plan); err != nil {
		return "", fmt.Errorf("render %s: %w", plan.ID, err)
	}
	s.cacheSet(ctx, key, []byte(svg))
	return svg, nil
}

func (s *ProjectService) PlanCompliance(ctx context.Context, projectID, planID string) (models.ComplianceReport, error) {
	ctx, span := s.tracer.Start(ctx, "planner.PlanCompliance")
	defer span.End()

	project, plan, err := s.load(ctx, projectID, planID)
	if err != nil {
		return models.ComplianceReport{}, fail(span, err)
	}
	report, err := cachedJSON(ctx, s, cache.Key(projectID, planID, "compliance"), func() (models.ComplianceReport, error) {
		return s.evaluator.Evaluate(project, plan)
	})
	if err != nil {
		return models.ComplianceReport{}, fail(span, err)
	}
	return report, nil
}

func (s *ProjectService) PlanEstimate(ctx context.Context, projectID, planID string) (models.Estimate, error) {
	ctx, span := s.tracer.Start(ctx, "planner.PlanEstimate")
	defer span.End()

	_, plan, err := s.load(ctx, projectID, planID)
	if err != nil {
		return models.Estimate{}, fail(span, err)
	}
	est, err := cachedJSON(ctx, s, cache.Key(projectID, planID, "estimate"), func() (models.Estimate, error) {
		return s.estimator.Estimate(plan), nil
	})
	if err != nil {
		return models.Estimate{}, fail(span, err)
	}
	return est, nil
}

func (s *ProjectService) PlanBOMCSV(ctx context.Context, projectID, planID string) ([]byte, error) {
	est, err := s.PlanEstimate(ctx, projectID, planID)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := estimate.WriteCSV(&buf, est); err != nil {
		return nil, fmt.Errorf("write csv: %w", err)
	}
	return buf.Bytes(), nil
}

// PlanPNG растеризует SVG плана один раз и дальше отдаёт файл из хранилища.
func (s *ProjectService) PlanPNG(ctx context.Context, projectID, planID string) ([]byte, error) {
	ctx, span := s.tracer.Start(ctx, "planner.PlanPNG")
	defer span.End()

	if s.storage == nil {
		return nil, fail(span, fmt.Errorf("artifact storage is not configured"))
	}
	// проверка принадлежности плана проекту до чтения файла
	project, plan, err := s.load(ctx, projectID, planID)
	if err != nil {
		return nil, fail(span, err)
	}

	target := s.storage.PNGPath(projectID, planID)
	if data, ok, err := s.storage.ReadFile(target); err != nil {
		return nil, fail(span, err)
	} else if ok {
		return data, nil
	}

	svg, err := s.svgFor(ctx, project, plan)
	if err != nil {
		return nil, fail(span, err)
	}
	data, err := render.RasterizeBytes([]byte(svg), pngScale)
	if err != nil {
		return nil, fail(span, fmt.Errorf("rasterize %s: %w", planID, err))
	}
	if err := s.storage.SaveFile(projectID, target, data); err != nil {
		log.Printf("[PLANNER] save png %s: %v", planID, err)
	}
	return data, nil
}

func (s *ProjectService) load(ctx context.Context, projectID, planID string) (*models.Project, *models.Plan, error) {
	project, err := s.store.GetProject(ctx, projectID)
	if err != nil {
		return nil, nil, err
	}
	plan, err := s.store.GetPlan(ctx, projectID, planID)
	if err != nil {
		return nil, nil, err
	}
	return project, plan, nil
}

// ============================================================
// Cache helpers
// ============================================================

func cachedJSON[T any](ctx context.Context, s *ProjectService, key string, build func() (T, error)) (T, error) {
	if body, ok := s.cacheGet(ctx, key); ok {
		var v T
		if err := json.Unmarshal(body, &v); err == nil {
			return v, nil
		}
	}
	v, err := build()
	if err != nil {
		return v, err
	}
	if body, err := json.Marshal(v); err == nil {
		s.cacheSet(ctx, key, body)
	}
	return v, nil
}

// Ошибки кэша не роняют запрос: артефакт всегда можно пересчитать.
func (s *ProjectService) cacheGet(ctx context.Context, key string) ([]byte, bool) {
	body, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		log.Printf("[PLANNER] cache get %s: %v", key, err)
		return nil, false
	}
	return body, ok
}

func (s *ProjectService) cacheSet(ctx context.Context, key string, body []byte) {
	if err := s.cache.Set(ctx, key, body); err != nil {
		log.Printf("[PLANNER] cache set %s: %v", key, err)
	}
}

// ============================================================
// Helpers
// ============================================================

func planID(projectID string, gen, idx int) string {
	return fmt.Sprintf("%s-g%d-%d", projectID, gen, idx)
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

func trimNote(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
