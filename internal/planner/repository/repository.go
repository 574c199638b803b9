package repository

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"archplan/internal/planner/models"
)

// ============================================================
// Plan Repository
// ============================================================

// KeepGenerations: сколько последних поколений планов хранится у проекта.
const KeepGenerations = 3

var (
	ErrNotFound        = errors.New("not found")
	ErrStaleGeneration = errors.New("project generation changed concurrently")
)

//go:embed migrations/*.sql
var migrations embed.FS

type Repository struct {
	db     *sql.DB
	driver string
}

func New(db *sql.DB, driver string) *Repository {
	return &Repository{db: db, driver: driver}
}

// Init применяет встроенные миграции по порядку имён файлов.
func (r *Repository) Init(ctx context.Context) error {
	entries, err := migrations.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}
	for _, e := range entries {
		data, err := migrations.ReadFile("migrations/" + e.Name())
		if err != nil {
			return fmt.Errorf("read migration %s: %w", e.Name(), err)
		}
		if _, err := r.db.ExecContext(ctx, string(data)); err != nil {
			return fmt.Errorf("apply migration %s: %w", e.Name(), err)
		}
	}
	return nil
}

func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// ============================================================
// Projects
// ============================================================

func (r *Repository) CreateProject(ctx context.Context, p *models.Project) error {
	spaces, err := json.Marshal(p.RequiredSpaces)
	if err != nil {
		return fmt.Errorf("encode spaces: %w", err)
	}

	_, err = r.db.ExecContext(ctx, r.rebind(`
        INSERT INTO projects (id, title, project_type, site_width, site_height, required_spaces,
                              adjacency_notes, orientation_notes, cultural_tuning, municipal_code,
                              generation, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `),
		p.ID, p.Title, p.ProjectType, p.Site.Width, p.Site.Height, string(spaces),
		nullable(p.AdjacencyNotes), nullable(p.OrientationNotes), p.CulturalTuning, p.MunicipalCode,
		p.Generation, formatTime(p.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert project: %w", err)
	}
	return nil
}

func (r *Repository) GetProject(ctx context.Context, id string) (*models.Project, error) {
	row := r.db.QueryRowContext(ctx, r.rebind(`
        SELECT id, title, project_type, site_width, site_height, required_spaces,
               adjacency_notes, orientation_notes, cultural_tuning, municipal_code,
               generation, created_at
        FROM projects
        WHERE id = ?
    `), id)

	var (
		p           models.Project
		spaces      string
		adjacency   sql.NullString
		orientation sql.NullString
		createdAt   string
	)
	err := row.Scan(&p.ID, &p.Title, &p.ProjectType, &p.Site.Width, &p.Site.Height, &spaces,
		&adjacency, &orientation, &p.CulturalTuning, &p.MunicipalCode, &p.Generation, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("project %s: %w", id, ErrNotFound)
		}
		return nil, err
	}

	if err := json.Unmarshal([]byte(spaces), &p.RequiredSpaces); err != nil {
		return nil, fmt.Errorf("decode spaces: %w", err)
	}
	p.AdjacencyNotes = fromNull(adjacency)
	p.OrientationNotes = fromNull(orientation)
	p.CreatedAt = parseTime(createdAt)
	return &p, nil
}

// ============================================================
// Plans
// ============================================================

// ReplacePlans атомарно переводит проект в поколение gen, сохраняет планы и
// удаляет поколения старше KeepGenerations. Если поколение проекта уже не
// gen-1, возвращается ErrStaleGeneration.
func (r *Repository) ReplacePlans(ctx context.Context, projectID string, gen int, plans []models.Plan) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, r.rebind(`
        UPDATE projects SET generation = ? WHERE id = ? AND generation = ?
    `), gen, projectID, gen-1)
	if err != nil {
		return fmt.Errorf("bump generation: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("bump generation: %w", err)
	}
	if n == 0 {
		return ErrStaleGeneration
	}

	insert := r.rebind(`
        INSERT INTO plans (id, project_id, generation, idx, score, buildable, rooms, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)
    `)
	for _, p := range plans {
		buildable, err := json.Marshal(p.Buildable)
		if err != nil {
			return fmt.Errorf("encode buildable: %w", err)
		}
		rooms, err := json.Marshal(p.Rooms)
		if err != nil {
			return fmt.Errorf("encode rooms: %w", err)
		}
		if _, err := tx.ExecContext(ctx, insert,
			p.ID, projectID, gen, p.Index, p.Score, string(buildable), string(rooms), formatTime(p.CreatedAt),
		); err != nil {
			return fmt.Errorf("insert plan %s: %w", p.ID, err)
		}
	}

	if _, err := tx.ExecContext(ctx, r.rebind(`
        DELETE FROM plans WHERE project_id = ? AND generation <= ?
    `), projectID, gen-KeepGenerations); err != nil {
		return fmt.Errorf("prune plans: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// ListPlans возвращает планы текущего поколения: по убыванию оценки, затем по индексу.
func (r *Repository) ListPlans(ctx context.Context, projectID string) ([]models.Plan, error) {
	rows, err := r.db.QueryContext(ctx, r.rebind(`
        SELECT p.id, p.project_id, p.generation, p.idx, p.score, p.buildable, p.rooms, p.created_at
        FROM plans p
        JOIN projects pr ON pr.id = p.project_id AND pr.generation = p.generation
        WHERE p.project_id = ?
        ORDER BY p.score DESC, p.idx ASC
    `), projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	plans := []models.Plan{}
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		plans = append(plans, *p)
	}
	return plans, rows.Err()
}

// GetPlan ищет план только внутри указанного проекта.
func (r *Repository) GetPlan(ctx context.Context, projectID, planID string) (*models.Plan, error) {
	row := r.db.QueryRowContext(ctx, r.rebind(`
        SELECT id, project_id, generation, idx, score, buildable, rooms, created_at
        FROM plans
        WHERE id = ? AND project_id = ?
    `), planID, projectID)

	p, err := scanPlan(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("plan %s: %w", planID, ErrNotFound)
		}
		return nil, err
	}
	return p, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPlan(s scanner) (*models.Plan, error) {
	var (
		p         models.Plan
		buildable string
		rooms     string
		createdAt string
	)
	if err := s.Scan(&p.ID, &p.ProjectID, &p.Generation, &p.Index, &p.Score, &buildable, &rooms, &createdAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(buildable), &p.Buildable); err != nil {
		return nil, fmt.Errorf("decode buildable: %w", err)
	}
	if err := json.Unmarshal([]byte(rooms), &p.Rooms); err != nil {
		return nil, fmt.Errorf("decode rooms: %w", err)
	}
	p.CreatedAt = parseTime(createdAt)
	return &p, nil
}

// ============================================================
// Helpers
// ============================================================

// rebind заменяет плейсхолдеры ? на $n для postgres.
func (r *Repository) rebind(query string) string {
	if r.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, ch := range query {
		if ch == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(ch)
	}
	return b.String()
}

func nullable(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func fromNull(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
