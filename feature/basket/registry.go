package basket

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"grocer/core/api"
	"grocer/feature/product"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Registry keeps exactly one Basket per customer id.
type Registry struct {
	requester api.Requester
	products  *product.Registry
	logger    *zap.Logger

	mu      sync.Mutex
	baskets map[string]*Basket
	// generation is bumped by Flush; a sync started before a flush is not cached.
	generation uint64

	sf singleflight.Group
}

// NewRegistry creates an empty basket registry. Basket lines are resolved
// through products so they share identity with every other listing.
func NewRegistry(requester api.Requester, products *product.Registry, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		requester: requester,
		products:  products,
		logger:    logger,
		baskets:   make(map[string]*Basket),
	}
}

// ForCustomer returns the basket of the customer identity is logged in as.
// The first call for a customer creates the basket and syncs it; concurrent
// first calls share that sync.
func (r *Registry) ForCustomer(ctx context.Context, identity api.Identity) (*Basket, error) {
	owner, err := identity.CustomerID()
	if err != nil {
		return nil, fmt.Errorf("basket: %w", err)
	}

	r.mu.Lock()
	b, ok := r.baskets[owner]
	r.mu.Unlock()
	if ok {
		return b, nil
	}

	v, err, _ := r.sf.Do(owner, func() (interface{}, error) {
		r.mu.Lock()
		b, ok := r.baskets[owner]
		generation := r.generation
		r.mu.Unlock()
		if ok {
			return b, nil
		}

		b = newBasket(owner, r.requester, identity, r.products, r.logger)
		b.mu.Lock()
		_, err := b.sync(ctx)
		b.mu.Unlock()
		if err != nil {
			return nil, err
		}

		r.mu.Lock()
		if r.generation == generation {
			r.baskets[owner] = b
		}
		r.mu.Unlock()
		return b, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Basket), nil
}

// Flush forgets every basket. Server baskets are untouched; the next
// ForCustomer call syncs from scratch, even when a first sync was still in
// flight during the flush.
func (r *Registry) Flush() {
	r.mu.Lock()
	n := len(r.baskets)
	r.baskets = make(map[string]*Basket)
	r.generation++
	r.mu.Unlock()
	r.logger.Debug("Baskets flushed", zap.Int("count", n))
}

// Customers returns the ids of customers with a cached basket, sorted.
func (r *Registry) Customers() []string {
	r.mu.Lock()
	ids := make([]string, 0, len(r.baskets))
	for id := range r.baskets {
		ids = append(ids, id)
	}
	r.mu.Unlock()
	sort.Strings(ids)
	return ids
}
