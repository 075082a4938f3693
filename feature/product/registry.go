package product

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"sync"

	"grocer/core/api"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// CommandSearch is the catalogue search command, also used to look up a single id.
const CommandSearch = "productsearch"

var idPattern = regexp.MustCompile(`^\d+$`)

// ValidID reports whether id has the numeric-token form of a product id.
func ValidID(id string) bool {
	return idPattern.MatchString(id)
}

// Registry is the identity map of products. It hands out exactly one *Product
// per id for as long as the registry lives; nothing is ever evicted.
type Registry struct {
	requester api.Requester
	logger    *zap.Logger

	mu       sync.Mutex
	products map[string]*Product

	sf singleflight.Group
}

// NewRegistry creates an empty registry that fetches details through requester.
func NewRegistry(requester api.Requester, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		requester: requester,
		logger:    logger,
		products:  make(map[string]*Product),
	}
}

// GetOrCreate returns the product for id, creating it if this is the first
// reference. A non-empty record is decoded into the product: a new product
// becomes detailed immediately, an existing one is refreshed in place.
// Without a record a new product stays unresolved until its details are needed.
func (r *Registry) GetOrCreate(id string, record api.Record) (*Product, error) {
	if !ValidID(id) {
		return nil, fmt.Errorf("%q is not a product id: %w", id, api.ErrInvalidArgument)
	}

	r.mu.Lock()
	if existing, ok := r.products[id]; ok {
		r.mu.Unlock()
		existing.apply(record)
		return existing, nil
	}
	if len(record) == 0 {
		p := &Product{id: id, registry: r}
		r.products[id] = p
		r.mu.Unlock()
		return p, nil
	}
	r.mu.Unlock()

	// Decode before publishing so no caller ever sees the half-built product.
	fresh := &Product{id: id, registry: r}
	fresh.apply(record)

	r.mu.Lock()
	if winner, raced := r.products[id]; raced {
		r.mu.Unlock()
		winner.apply(record)
		return winner, nil
	}
	r.products[id] = fresh
	r.mu.Unlock()
	return fresh, nil
}

// Lookup returns the product for id if it has been referenced before.
func (r *Registry) Lookup(id string) (*Product, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	return p, ok
}

// Len returns the number of known products.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.products)
}

// IDs returns the known product ids in ascending order.
func (r *Registry) IDs() []string {
	r.mu.Lock()
	ids := make([]string, 0, len(r.products))
	for id := range r.products {
		ids = append(ids, id)
	}
	r.mu.Unlock()
	sort.Strings(ids)
	return ids
}

// related resolves an optional link to another product. Missing or malformed
// ids are not errors; the link is simply absent.
func (r *Registry) related(rec api.Record, field string) *Product {
	if !rec.Has(field) {
		return nil
	}
	p, err := r.GetOrCreate(rec.String(field), nil)
	if err != nil {
		return nil
	}
	return p
}

// search looks up the record for a single product id.
func (r *Registry) search(ctx context.Context, id string) (api.Record, error) {
	resp, err := r.requester.Request(ctx, CommandSearch, api.Params{"searchtext": id})
	if err != nil {
		return nil, fmt.Errorf("fetch product %s: %w", id, err)
	}
	records := resp.Records("Products")
	if len(records) == 0 {
		return nil, fmt.Errorf("product %s: %w", id, api.ErrNotFound)
	}
	r.logger.Debug("Fetched product details", zap.String("product_id", id), zap.Int("matches", len(records)))

	// A text search can match other products; only the exact id counts.
	for _, rec := range records {
		if rec.String(fieldID) == id {
			return rec, nil
		}
	}
	return nil, fmt.Errorf("product %s: no exact match among %d results: %w", id, len(records), api.ErrNotFound)
}
