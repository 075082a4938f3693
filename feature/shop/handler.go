package shop

import (
	"errors"
	"regexp"

	"grocer/core/api"
	"grocer/core/logger"
	"grocer/feature/basket"
	"grocer/feature/listing"
	"grocer/feature/product"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for the shop.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the shop routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	products := app.Group("/products")
	products.Get("/search", h.HandleSearch)
	products.Get("/offers", h.HandleOffers)
	products.Get("/favourites", h.HandleFavourites)
	products.Get("/:id", h.HandleProduct)

	app.Get("/departments", h.HandleDepartments)
	app.Get("/shelves", h.HandleShelves)
	app.Get("/shelves/:id/products", h.HandleShelfProducts)

	b := app.Group("/basket")
	b.Get("/", h.HandleBasket)
	b.Post("/sync", h.HandleBasketSync)
	b.Delete("/", h.HandleBasketClear)
	b.Put("/items/:id", h.HandleSetQuantity)
	b.Post("/items/:id", h.HandleAddItem)
	b.Put("/items/:id/note", h.HandleSetNote)
	b.Delete("/items/:id", h.HandleRemoveItem)
}

// pageResponse is one page of a product listing.
type pageResponse struct {
	Total    int            `json:"total"`
	Pages    int            `json:"pages"`
	Page     int            `json:"page"`
	Products []product.View `json:"products"`
}

// itemRequest is the body of the basket item routes.
type itemRequest struct {
	Quantity int    `json:"quantity"`
	Note     string `json:"note"`
}

// HandleSearch searches the catalogue.
func (h *Handler) HandleSearch(c *fiber.Ctx) error {
	q := c.Query("q")
	if q == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "query parameter q is required"})
	}
	results, err := h.service.Search(c.Context(), q)
	if err != nil {
		return h.fail(c, err)
	}
	return h.page(c, results)
}

// HandleOffers lists the products on promotion.
func (h *Handler) HandleOffers(c *fiber.Ctx) error {
	results, err := h.service.OnOffer(c.Context())
	if err != nil {
		return h.fail(c, err)
	}
	return h.page(c, results)
}

// HandleFavourites lists the customer's favourites.
func (h *Handler) HandleFavourites(c *fiber.Ctx) error {
	results, err := h.service.Favourites(c.Context())
	if err != nil {
		return h.fail(c, err)
	}
	return h.page(c, results)
}

// HandleProduct returns a single product with its details.
func (h *Handler) HandleProduct(c *fiber.Ctx) error {
	p, err := h.service.Product(c.Context(), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(p.Snapshot())
}

// HandleDepartments returns the catalogue hierarchy.
func (h *Handler) HandleDepartments(c *fiber.Ctx) error {
	depts, err := h.service.Departments(c.Context())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(depts)
}

// HandleShelves lists the shelves, optionally filtered by the regular expression q.
func (h *Handler) HandleShelves(c *fiber.Ctx) error {
	q := c.Query("q")
	if q == "" {
		shelves, err := h.service.Shelves(c.Context())
		if err != nil {
			return h.fail(c, err)
		}
		return c.JSON(shelves)
	}

	re, err := regexp.Compile(q)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	shelves, err := h.service.SearchShelves(c.Context(), re)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(shelves)
}

// HandleShelfProducts lists the products on a shelf.
func (h *Handler) HandleShelfProducts(c *fiber.Ctx) error {
	results, err := h.service.ProductsByCategory(c.Context(), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return h.page(c, results)
}

// HandleBasket returns the customer's basket.
func (h *Handler) HandleBasket(c *fiber.Ctx) error {
	b, err := h.service.Basket(c.Context())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(b.Snapshot())
}

// HandleBasketSync resyncs the basket and reports what changed.
func (h *Handler) HandleBasketSync(c *fiber.Ctx) error {
	b, err := h.service.Basket(c.Context())
	if err != nil {
		return h.fail(c, err)
	}
	plan, err := b.Sync(c.Context())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{
		"basket":  b.Snapshot(),
		"changes": plan,
	})
}

// HandleBasketClear empties the basket.
func (h *Handler) HandleBasketClear(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	b, err := h.service.Basket(c.Context())
	if err != nil {
		return h.fail(c, err)
	}
	l.Info("Clearing basket", zap.Int("lines", b.Len()))
	if err := b.Clear(c.Context()); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(b.Snapshot())
}

// HandleSetQuantity sets the quantity of one product.
func (h *Handler) HandleSetQuantity(c *fiber.Ctx) error {
	var req itemRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	return h.withItem(c, func(b *basket.Basket, p *product.Product) error {
		return b.SetQuantity(c.Context(), p, req.Quantity, req.Note)
	})
}

// HandleAddItem adds one unit of a product.
func (h *Handler) HandleAddItem(c *fiber.Ctx) error {
	var req itemRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
		}
	}
	return h.withItem(c, func(b *basket.Basket, p *product.Product) error {
		return b.Add(c.Context(), []*product.Product{p}, req.Note)
	})
}

// HandleSetNote changes the note for the shopper on one line.
func (h *Handler) HandleSetNote(c *fiber.Ctx) error {
	var req itemRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	return h.withItem(c, func(b *basket.Basket, p *product.Product) error {
		return b.SetNote(c.Context(), p, req.Note)
	})
}

// HandleRemoveItem removes one product entirely.
func (h *Handler) HandleRemoveItem(c *fiber.Ctx) error {
	return h.withItem(c, func(b *basket.Basket, p *product.Product) error {
		return b.Remove(c.Context(), p)
	})
}

func (h *Handler) withItem(c *fiber.Ctx, fn func(*basket.Basket, *product.Product) error) error {
	p, err := h.service.Reference(c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	b, err := h.service.Basket(c.Context())
	if err != nil {
		return h.fail(c, err)
	}
	if err := fn(b, p); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(b.Snapshot())
}

func (h *Handler) page(c *fiber.Ctx, results *listing.Products) error {
	n := c.QueryInt("page", 1)
	items, err := results.Page(c.Context(), n)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(pageResponse{
		Total:    results.Len(),
		Pages:    results.Pages(),
		Page:     n,
		Products: product.Snapshots(items),
	})
}

// fail maps err onto an HTTP status.
func (h *Handler) fail(c *fiber.Ctx, err error) error {
	l := logger.WithRayID(h.service.logger, c)
	status := StatusFor(err)
	if status >= fiber.StatusInternalServerError {
		l.Error("Request failed", zap.String("path", c.Path()), zap.Error(err))
	} else {
		l.Debug("Request rejected", zap.String("path", c.Path()), zap.Int("status", status), zap.Error(err))
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

// StatusFor returns the HTTP status that reports err.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, api.ErrInvalidArgument),
		errors.Is(err, api.ErrInvalidPage),
		errors.Is(err, api.ErrOutOfRange):
		return fiber.StatusBadRequest
	case errors.Is(err, api.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, api.ErrNotAuthenticated):
		return fiber.StatusUnauthorized
	default:
		return fiber.StatusBadGateway
	}
}
