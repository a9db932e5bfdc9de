package documents

import (
	"errors"

	"project-aggregator/core/documents"
	"project-aggregator/core/logger"
	"project-aggregator/core/storage"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for stored documents.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the document routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	docs := app.Group("/documents")
	docs.Get("/projects", h.HandleListProjects)
	docs.Get("/projects/:name", h.HandleGetProjectInfo)
	docs.Get("/readme/:name", h.HandleGetReadme)
	docs.Get("/topics/:name", h.HandleGetTopics)

	aggregates := app.Group("/aggregates")
	aggregates.Get("/keywords", h.HandleGetKeywords)
	aggregates.Get("/vectors", h.HandleGetVectors)
}

// fail maps a retrieval error to a response: absent documents are 404,
// invalid names 400, anything else means the store could not answer.
func (h *Handler) fail(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "document not found"})
	case errors.Is(err, documents.ErrInvalidEntity):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	logger.WithRayID(h.service.logger, c).Error("Document retrieval failed",
		zap.String("path", c.Path()),
		zap.Error(err))
	return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
}

// HandleListProjects returns the projects with a stored info document.
func (h *Handler) HandleListProjects(c *fiber.Ctx) error {
	names, err := h.service.Projects(c.Context())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"projects": names, "count": len(names)})
}

// HandleGetProjectInfo returns the stored PyPI info document unchanged.
func (h *Handler) HandleGetProjectInfo(c *fiber.Ctx) error {
	raw, err := h.service.ProjectInfo(c.Context(), c.Params("name"))
	if err != nil {
		return h.fail(c, err)
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(raw)
}

// HandleGetReadme returns the stored README of a project.
func (h *Handler) HandleGetReadme(c *fiber.Ctx) error {
	readme, err := h.service.Readme(c.Context(), c.Params("name"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(readme)
}

// HandleGetTopics returns the stored GitHub topics of a project.
func (h *Handler) HandleGetTopics(c *fiber.Ctx) error {
	topics, err := h.service.Topics(c.Context(), c.Params("name"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(topics)
}

// HandleGetKeywords returns the aggregated keyword table.
func (h *Handler) HandleGetKeywords(c *fiber.Ctx) error {
	counts, err := h.service.Keywords(c.Context())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(counts)
}

// HandleGetVectors returns the project2vec vector space.
func (h *Handler) HandleGetVectors(c *fiber.Ctx) error {
	space, err := h.service.VectorSpace(c.Context())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{
		"projects": space.Names,
		"vectors":  space.Vectors,
		"width":    space.Width(),
	})
}
