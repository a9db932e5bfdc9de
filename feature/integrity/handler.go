package integrity

import (
	"errors"

	"project-aggregator/core/logger"
	"project-aggregator/core/storage"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for integrity checks.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the integrity routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/integrity")
	group.Get("/", h.HandleIntegrityCheck)
	group.Get("/structure", h.HandleStructureCheck)
	group.Get("/aggregates", h.HandleAggregatesCheck)
	group.Get("/vectorspace", h.HandleVectorSpaceCheck)
	group.Get("/schema", h.HandleSchemaCheck)
}

// HandleIntegrityCheck triggers all integrity checks.
func (h *Handler) HandleIntegrityCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	l.Info("Triggering all integrity checks")
	return c.JSON(h.service.Report(c.Context()))
}

// HandleStructureCheck reports empty document namespaces.
func (h *Handler) HandleStructureCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	missing, err := h.service.CheckStructure(c.Context())
	if err != nil {
		l.Error("Structure check failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if len(missing) > 0 {
		l.Warn("Empty namespaces detected", zap.Strings("missing", missing))
	}
	return c.JSON(fiber.Map{"status": "checked", "missing": missing})
}

// HandleAggregatesCheck reports missing aggregate documents.
func (h *Handler) HandleAggregatesCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	missing, err := h.service.CheckAggregates(c.Context())
	if err != nil {
		l.Error("Aggregates check failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if len(missing) > 0 {
		l.Warn("Missing aggregates detected", zap.Strings("missing", missing))
	}
	return c.JSON(fiber.Map{"status": "checked", "missing": missing})
}

// HandleVectorSpaceCheck validates the shape of the stored vector space.
func (h *Handler) HandleVectorSpaceCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	report, err := h.service.CheckVectorSpace(c.Context())
	if errors.Is(err, storage.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "vector space not found"})
	}
	if err != nil {
		l.Error("Vector space check failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(report)
}

// HandleSchemaCheck validates the mirror table schema.
func (h *Handler) HandleSchemaCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	report, err := h.service.CheckSchema()
	if err != nil {
		l.Error("Schema check failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if !report.Matched {
		l.Warn("Schema mismatch", zap.String("table", report.Table), zap.Strings("missing", report.MissingColumns))
	}
	return c.JSON(report)
}
