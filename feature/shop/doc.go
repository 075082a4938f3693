// Package shop ties the catalogue, listings and basket together behind one
// service, and exposes it over HTTP.
//
// # Service
//
// A Service wraps one api.Session. It owns the product registry, so every
// listing, basket line and single-product lookup made through it shares the
// same *product.Product per id. The department hierarchy is cached for the
// catalogue TTL (one hour unless configured).
//
//	svc := shop.NewService(client, logger)
//	results, err := svc.Search(ctx, "milk")
//	for p, err := range results.Each(ctx) {
//	    ...
//	}
//
// Favourites and the basket need a non-anonymous login; both fail with
// api.ErrNotAuthenticated otherwise.
//
// # HTTP Routes
//
//   - GET    /products/search?q=&page=   Search the catalogue
//   - GET    /products/offers?page=      Products on promotion
//   - GET    /products/favourites?page=  Customer favourites
//   - GET    /products/:id               One product with details
//   - GET    /departments                Department hierarchy
//   - GET    /shelves?q=                 Shelves, optionally filtered by regexp
//   - GET    /shelves/:id/products?page= Products on a shelf
//   - GET    /basket                     Basket snapshot
//   - POST   /basket/sync                Resync and report changes
//   - DELETE /basket                     Remove every line
//   - PUT    /basket/items/:id           Set quantity {quantity, note}
//   - POST   /basket/items/:id           Add one unit {note}
//   - PUT    /basket/items/:id/note      Replace the note {note}
//   - DELETE /basket/items/:id           Remove the line
//
// page defaults to 1; page=0 returns every page and may be slow.
//
// # Errors
//
// Invalid arguments, pages and indexes map to 400, missing products or lines
// to 404, authentication failures to 401 and everything else coming from the
// remote service to 502.
package shop
