package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"archplan/internal/planner/models"
	"archplan/internal/planner/service"
	"archplan/internal/planner/validate"

	"github.com/gofiber/fiber/v3"
)

// ============================================================
// Planner Handler
// ============================================================

// Planner: операции сервиса, которые нужны HTTP слою.
type Planner interface {
	CreateProject(ctx context.Context, in models.ProjectInput) (*models.Project, error)
	Project(ctx context.Context, id string) (*models.Project, error)
	Generate(ctx context.Context, projectID string, alternatives int) (*models.GenerateResponse, error)
	ListPlans(ctx context.Context, projectID string) ([]models.PlanSummary, error)
	PlanSVG(ctx context.Context, projectID, planID string) (string, error)
	PlanCompliance(ctx context.Context, projectID, planID string) (models.ComplianceReport, error)
	PlanEstimate(ctx context.Context, projectID, planID string) (models.Estimate, error)
	PlanBOMCSV(ctx context.Context, projectID, planID string) ([]byte, error)
	PlanPNG(ctx context.Context, projectID, planID string) ([]byte, error)
	Catalog() models.Catalog
	Ready(ctx context.Context) error
}

type PlannerHandler struct {
	planner   Planner
	validator *validate.Validator
}

func NewPlannerHandler(planner Planner, validator *validate.Validator) *PlannerHandler {
	return &PlannerHandler{planner: planner, validator: validator}
}

// Register вешает маршруты /api и /test на роутер.
func (h *PlannerHandler) Register(r fiber.Router) {
	r.Get("/test", h.Status)
	r.Get("/api/catalog", h.Catalog)

	api := r.Group("/api/projects")
	api.Post("/", h.CreateProject)
	api.Get("/:id", h.GetProject)
	api.Post("/:id/generate", h.Generate)
	api.Get("/:id/plans", h.ListPlans)
	api.Get("/:id/plans/:planId/svg", h.PlanSVG)
	api.Get("/:id/plans/:planId/plan.svg", h.DownloadSVG)
	api.Get("/:id/plans/:planId/plan.png", h.DownloadPNG)
	api.Get("/:id/plans/:planId/compliance", h.PlanCompliance)
	api.Get("/:id/plans/:planId/estimate", h.PlanEstimate)
	api.Get("/:id/plans/:planId/bom.csv", h.DownloadBOM)
}

// ============================================================
// Projects
// ============================================================

// CreateProject принимает значения формы и возвращает id проекта.
func (h *PlannerHandler) CreateProject(c fiber.Ctx) error {
	body := c.Body()
	if len(body) == 0 {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "empty body"})
	}
	if err := h.validator.Project(body); err != nil {
		return writeError(c, err)
	}

	var in models.ProjectInput
	if err := json.Unmarshal(body, &in); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid json"})
	}

	project, err := h.planner.CreateProject(c.Context(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"project_id": project.ID})
}

func (h *PlannerHandler) GetProject(c fiber.Ctx) error {
	project, err := h.planner.Project(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return sendJSON(c, project)
}

// Generate запускает новое поколение; пустое тело означает значение по умолчанию.
func (h *PlannerHandler) Generate(c fiber.Ctx) error {
	body := c.Body()
	if err := h.validator.Generate(body); err != nil {
		return writeError(c, err)
	}

	var req models.GenerateRequest
	if len(body) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid json"})
		}
	}

	resp, err := h.planner.Generate(c.Context(), c.Params("id"), req.Alternatives)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(resp)
}

func (h *PlannerHandler) ListPlans(c fiber.Ctx) error {
	plans, err := h.planner.ListPlans(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(plans)
}

// ============================================================
// Plan Artifacts
// ============================================================

func (h *PlannerHandler) PlanSVG(c fiber.Ctx) error {
	svg, err := h.planner.PlanSVG(c.Context(), c.Params("id"), c.Params("planId"))
	if err != nil {
		return writeError(c, err)
	}
	return sendJSON(c, models.SVGResponse{SVG: svg})
}

func (h *PlannerHandler) PlanCompliance(c fiber.Ctx) error {
	report, err := h.planner.PlanCompliance(c.Context(), c.Params("id"), c.Params("planId"))
	if err != nil {
		return writeError(c, err)
	}
	return sendJSON(c, report)
}

func (h *PlannerHandler) PlanEstimate(c fiber.Ctx) error {
	est, err := h.planner.PlanEstimate(c.Context(), c.Params("id"), c.Params("planId"))
	if err != nil {
		return writeError(c, err)
	}
	return sendJSON(c, est)
}

// DownloadSVG отдаёт svg как файл, байт в байт как в JSON ответе.
func (h *PlannerHandler) DownloadSVG(c fiber.Ctx) error {
	planID := c.Params("planId")
	svg, err := h.planner.PlanSVG(c.Context(), c.Params("id"), planID)
	if err != nil {
		return writeError(c, err)
	}
	c.Set("Content-Type", "image/svg+xml")
	c.Set("Content-Disposition", attachment(planID, "svg"))
	return c.SendString(svg)
}

func (h *PlannerHandler) DownloadPNG(c fiber.Ctx) error {
	planID := c.Params("planId")
	data, err := h.planner.PlanPNG(c.Context(), c.Params("id"), planID)
	if err != nil {
		return writeError(c, err)
	}
	c.Set("Content-Type", "image/png")
	c.Set("Content-Disposition", attachment(planID, "png"))
	return c.Send(data)
}

func (h *PlannerHandler) DownloadBOM(c fiber.Ctx) error {
	planID := c.Params("planId")
	data, err := h.planner.PlanBOMCSV(c.Context(), c.Params("id"), planID)
	if err != nil {
		return writeError(c, err)
	}
	c.Set("Content-Type", "text/csv; charset=utf-8")
	c.Set("Content-Disposition", attachment(planID+"-bom", "csv"))
	return c.Send(data)
}

// ============================================================
// Catalog & Status
// ============================================================

func (h *PlannerHandler) Catalog(c fiber.Ctx) error {
	return sendJSON(c, h.planner.Catalog())
}

// Status отвечает на /test: фронтенд по нему проверяет, что бэкенд жив.
func (h *PlannerHandler) Status(c fiber.Ctx) error {
	if err := h.planner.Ready(c.Context()); err != nil {
		log.Printf("[PLANNER] status check failed: %v", err)
		return c.Status(http.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "error": "storage unavailable"})
	}
	return c.JSON(fiber.Map{"status": "ok", "service": "planner"})
}

// ============================================================
// Helpers
// ============================================================

func writeError(c fiber.Ctx, err error) error {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrInvalidInput), errors.Is(err, service.ErrUnknownRulePack):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrGenerationInProgress):
		status = http.StatusConflict
	}

	msg := err.Error()
	if status == http.StatusInternalServerError {
		log.Printf("[PLANNER] %s %s: %v", c.Method(), c.Path(), err)
		msg = "internal error"
	}
	return c.Status(status).JSON(fiber.Map{"error": msg})
}

func attachment(name, ext string) string {
	return fmt.Sprintf(`attachment; filename="%s.%s"`, name, ext)
}
