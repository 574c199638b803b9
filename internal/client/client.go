package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"archplan/internal/planner/models"
)

// ============================================================
// Planner HTTP Client
// ============================================================

type HTTPClient struct {
	Base string
	HTTP *http.Client
}

func New(base string) *HTTPClient {
	return &HTTPClient{
		Base: strings.TrimRight(base, "/"),
		HTTP: &http.Client{Timeout: 2 * time.Minute},
	}
}

// APIError: ответ сервера со статусом вне 2xx.
type APIError struct {
	StatusCode int
	Status     string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Status, e.Message)
	}
	return e.Status
}

// PlanBundle: всё, что нужно для показа выбранного плана.
type PlanBundle struct {
	PlanID     string
	SVG        string
	Compliance models.ComplianceReport
	Estimate   models.Estimate
}

// ============================================================
// Projects
// ============================================================

func (c *HTTPClient) CreateProject(ctx context.Context, in models.ProjectInput) (string, error) {
	var out struct {
		ProjectID string `json:"project_id"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/api/projects", in, &out); err != nil {
		return "", err
	}
	return out.ProjectID, nil
}

func (c *HTTPClient) Project(ctx context.Context, projectID string) (*models.Project, error) {
	var out models.Project
	if err := c.doJSON(ctx, http.MethodGet, projectPath(projectID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Generate: alternatives = 0 оставляет значение по умолчанию сервера.
func (c *HTTPClient) Generate(ctx context.Context, projectID string, alternatives int) (*models.GenerateResponse, error) {
	var body any
	if alternatives > 0 {
		body = models.GenerateRequest{Alternatives: alternatives}
	}
	var out models.GenerateResponse
	if err := c.doJSON(ctx, http.MethodPost, projectPath(projectID)+"/generate", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListPlans сохраняет порядок ответа сервера.
func (c *HTTPClient) ListPlans(ctx context.Context, projectID string) ([]models.PlanSummary, error) {
	var out []models.PlanSummary
	if err := c.doJSON(ctx, http.MethodGet, projectPath(projectID)+"/plans", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) Catalog(ctx context.Context) (*models.Catalog, error) {
	var out models.Catalog
	if err := c.doJSON(ctx, http.MethodGet, "/api/catalog", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Status опрашивает /test.
func (c *HTTPClient) Status(ctx context.Context) (map[string]any, error) {
	var out map[string]any
	if err := c.doJSON(ctx, http.MethodGet, "/test", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ============================================================
// Plan Artifacts
// ============================================================

func (c *HTTPClient) PlanSVG(ctx context.Context, projectID, planID string) (string, error) {
	var out models.SVGResponse
	if err := c.doJSON(ctx, http.MethodGet, planPath(projectID, planID)+"/svg", nil, &out); err != nil {
		return "", err
	}
	return out.SVG, nil
}

func (c *HTTPClient) PlanCompliance(ctx context.Context, projectID, planID string) (models.ComplianceReport, error) {
	var out models.ComplianceReport
	err := c.doJSON(ctx, http.MethodGet, planPath(projectID, planID)+"/compliance", nil, &out)
	return out, err
}

func (c *HTTPClient) PlanEstimate(ctx context.Context, projectID, planID string) (models.Estimate, error) {
	var out models.Estimate
	err := c.doJSON(ctx, http.MethodGet, planPath(projectID, planID)+"/estimate", nil, &out)
	return out, err
}

func (c *HTTPClient) BOMCSV(ctx context.Context, projectID, planID string) ([]byte, error) {
	return c.getRaw(ctx, planPath(projectID, planID)+"/bom.csv")
}

func (c *HTTPClient) PlanPNG(ctx context.Context, projectID, planID string) ([]byte, error) {
	return c.getRaw(ctx, planPath(projectID, planID)+"/plan.png")
}

// LoadPlan тянет svg, проверки и смету параллельно; ошибка любого запроса
// отменяет остальные.
func (c *HTTPClient) LoadPlan(ctx context.Context, projectID, planID string) (*PlanBundle, error) {
	bundle := &PlanBundle{PlanID: planID}
	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		svg, err := c.PlanSVG(ctx, projectID, planID)
		bundle.SVG = svg
		return err
	})
	eg.Go(func() error {
		report, err := c.PlanCompliance(ctx, projectID, planID)
		bundle.Compliance = report
		return err
	})
	eg.Go(func() error {
		est, err := c.PlanEstimate(ctx, projectID, planID)
		bundle.Estimate = est
		return err
	})

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return bundle, nil
}

// ============================================================
// Transport
// ============================================================

func (c *HTTPClient) doJSON(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.Base+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *HTTPClient) getRaw(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.Base+path, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return nil, err
	}
	return io.ReadAll(resp.Body)
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	apiErr := &APIError{StatusCode: resp.StatusCode, Status: resp.Status}
	var payload struct {
		Error string `json:"error"`
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if json.Unmarshal(data, &payload) == nil {
		apiErr.Message = payload.Error
	}
	return apiErr
}

func projectPath(projectID string) string {
	return "/api/projects/" + url.PathEscape(projectID)
}

func planPath(projectID, planID string) string {
	return projectPath(projectID) + "/plans/" + url.PathEscape(planID)
}
