package listing

import (
	"grocer/core/api"
	"grocer/feature/product"
)

// Products is a paginated product listing.
type Products = Collection[*product.Product]

// NewProducts builds a product listing from the first page of a search,
// offer, favourites or category response. Every record on every page goes
// through the registry, so a product listed twice is the same *Product.
func NewProducts(registry *product.Registry, requester api.Requester, first *api.Response) (*Products, error) {
	return New(requester, first, "Products", func(rec api.Record) (*product.Product, error) {
		return registry.GetOrCreate(rec.String("ProductId"), rec)
	})
}
