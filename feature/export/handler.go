package export

import (
	"grocer/core/logger"
	"grocer/feature/shop"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for exports.
type Handler struct {
	service *Service
	shop    *shop.Service
	logger  *zap.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service, shop *shop.Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{service: service, shop: shop, logger: logger}
}

// RegisterRoutes registers the export routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/exports")
	group.Get("/", h.HandleList)
	group.Post("/search", h.HandleSearch)
	group.Post("/basket", h.HandleBasket)
}

// HandleList lists stored exports.
func (h *Handler) HandleList(c *fiber.Ctx) error {
	objects, err := h.service.List(c.Context())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(objects)
}

// HandleSearch exports every page of a catalogue search.
func (h *Handler) HandleSearch(c *fiber.Ctx) error {
	q := c.Query("q")
	if q == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "query parameter q is required"})
	}
	name := c.Query("name", "search")

	results, err := h.shop.Search(c.Context(), q)
	if err != nil {
		return h.fail(c, err)
	}
	object, err := h.service.Products(c.Context(), name, results)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"object": object, "products": results.Len()})
}

// HandleBasket exports the logged-in customer's basket.
func (h *Handler) HandleBasket(c *fiber.Ctx) error {
	b, err := h.shop.Basket(c.Context())
	if err != nil {
		return h.fail(c, err)
	}
	object, err := h.service.Basket(c.Context(), b)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"object": object})
}

func (h *Handler) fail(c *fiber.Ctx, err error) error {
	status := shop.StatusFor(err)
	logger.WithRayID(h.logger, c).Error("Export request failed", zap.Int("status", status), zap.Error(err))
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
