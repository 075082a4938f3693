package basket

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"grocer/core/api"
	"grocer/core/reconcile"
	"grocer/feature/product"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Basket commands.
const (
	CommandList   = "listbasket"
	CommandChange = "changebasket"
)

// Server basket summary fields.
const (
	fieldBasketID    = "BasketId"
	fieldGuidePrice  = "BasketGuidePrice"
	fieldSavings     = "BasketGuideMultiBuySavings"
	fieldPoints      = "BasketTotalClubcardPoints"
	fieldQuantity    = "BasketQuantity"
	fieldLines       = "BasketLines"
	fieldLineProduct = "ProductId"
)

// Basket is the local view of one customer's remote basket.
//
// Every mutating call holds the basket lock for the whole request-then-update
// sequence, so deltas are always computed from the quantity the server last
// acknowledged. The local view only changes after the server accepted a request.
type Basket struct {
	owner     string
	requester api.Requester
	identity  api.Identity
	products  *product.Registry
	logger    *zap.Logger

	mu         sync.Mutex
	synced     bool
	id         string
	guidePrice decimal.Decimal
	savings    decimal.Decimal
	points     int
	quantity   int
	items      map[*product.Product]*Item
}

func newBasket(owner string, requester api.Requester, identity api.Identity, products *product.Registry, logger *zap.Logger) *Basket {
	return &Basket{
		owner:     owner,
		requester: requester,
		identity:  identity,
		products:  products,
		logger:    logger.With(zap.String("customer_id", owner)),
		items:     make(map[*product.Product]*Item),
	}
}

// Owner returns the id of the customer the basket belongs to.
func (b *Basket) Owner() string {
	return b.owner
}

// ID returns the server basket id from the last sync.
func (b *Basket) ID() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.id
}

// Synced reports whether the basket has been synced at least once.
func (b *Basket) Synced() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.synced
}

// GuidePrice returns the server's price estimate from the last sync.
func (b *Basket) GuidePrice() decimal.Decimal {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.guidePrice
}

// MultiBuySavings returns the server's multi-buy savings from the last sync.
func (b *Basket) MultiBuySavings() decimal.Decimal {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.savings
}

// ClubcardPoints returns the loyalty points from the last sync.
func (b *Basket) ClubcardPoints() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.points
}

// Quantity returns the server's item count from the last sync.
// Local mutations do not change it until the next sync.
func (b *Basket) Quantity() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.quantity
}

// Len returns the number of lines in the local view.
func (b *Basket) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.items)
}

// Item returns a copy of the line for p.
func (b *Basket) Item(p *product.Product) (Item, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	item, ok := b.items[p]
	if !ok {
		return Item{}, false
	}
	return *item, true
}

// Items returns copies of all lines ordered by product id.
func (b *Basket) Items() []Item {
	b.mu.Lock()
	defer b.mu.Unlock()
	items := make([]Item, 0, len(b.items))
	for _, item := range b.items {
		items = append(items, *item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID() < items[j].ID() })
	return items
}

// Sync replaces the local view with the server basket and returns what changed.
// Lines only known locally are discarded.
func (b *Basket) Sync(ctx context.Context) (*reconcile.Plan, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.checkOwner(); err != nil {
		return nil, err
	}
	return b.sync(ctx)
}

// Add puts one more unit of each product into the basket. A non-empty note
// replaces the note for the shopper on those lines.
func (b *Basket) Add(ctx context.Context, products []*product.Product, note string) error {
	for i, p := range products {
		if p == nil {
			return fmt.Errorf("product %d is nil: %w", i, api.ErrInvalidArgument)
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.checkOwner(); err != nil {
		return err
	}

	for _, p := range products {
		if err := b.change(ctx, p, 1, withNote(note)); err != nil {
			return err
		}
		item, ok := b.items[p]
		if !ok {
			item = &Item{Product: p}
			b.items[p] = item
		}
		item.Quantity++
		if note != "" {
			item.Note = note
		}
	}
	return nil
}

// SetQuantity sets the quantity of p to amount, which must lie within
// [0, MaxQuantity]. Only the difference to the current quantity is sent.
// Setting zero removes the line.
func (b *Basket) SetQuantity(ctx context.Context, p *product.Product, amount int, note string) error {
	if p == nil {
		return fmt.Errorf("product is nil: %w", api.ErrInvalidArgument)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.checkOwner(); err != nil {
		return err
	}

	maxQuantity, err := p.MaxQuantity(ctx)
	if err != nil {
		return err
	}
	if amount < 0 || amount > maxQuantity {
		return fmt.Errorf("amount %d outside [0, %d]: %w", amount, maxQuantity, api.ErrInvalidArgument)
	}

	current := 0
	if item, ok := b.items[p]; ok {
		current = item.Quantity
	}
	delta := amount - current
	if delta == 0 && note == "" {
		return nil
	}

	if err := b.change(ctx, p, delta, withNote(note)); err != nil {
		return err
	}

	if amount == 0 {
		delete(b.items, p)
		return nil
	}
	item, ok := b.items[p]
	if !ok {
		item = &Item{Product: p}
		b.items[p] = item
	}
	item.Quantity = amount
	if note != "" {
		item.Note = note
	}
	return nil
}

// Remove takes every unit of the given products out of the basket.
// Products without a line are skipped without a request.
func (b *Basket) Remove(ctx context.Context, products ...*product.Product) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.checkOwner(); err != nil {
		return err
	}

	for _, p := range products {
		item, ok := b.items[p]
		if !ok {
			continue
		}
		if err := b.change(ctx, p, -item.Quantity, nil); err != nil {
			return err
		}
		delete(b.items, p)
	}
	return nil
}

// SetNote replaces the note for the shopper on the line for p.
func (b *Basket) SetNote(ctx context.Context, p *product.Product, note string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.checkOwner(); err != nil {
		return err
	}

	item, ok := b.items[p]
	if !ok {
		return fmt.Errorf("%v is not in the basket: %w", p, api.ErrNotFound)
	}
	// An empty note is sent too, so it clears the previous one.
	if err := b.change(ctx, p, 0, func(params api.Params) api.Params {
		return params.With("noteforshopper", note)
	}); err != nil {
		return err
	}
	item.Note = note
	return nil
}

// Clear removes every line, one request per line. Large baskets take a while.
func (b *Basket) Clear(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.checkOwner(); err != nil {
		return err
	}

	lines := make([]*Item, 0, len(b.items))
	for _, item := range b.items {
		lines = append(lines, item)
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].ID() < lines[j].ID() })

	for _, item := range lines {
		if err := b.change(ctx, item.Product, -item.Quantity, nil); err != nil {
			return err
		}
		delete(b.items, item.Product)
	}
	b.logger.Info("Basket cleared", zap.Int("lines", len(lines)))
	return nil
}

// checkOwner fails unless the acting session belongs to the basket owner.
// Callers must hold b.mu.
func (b *Basket) checkOwner() error {
	id, err := b.identity.CustomerID()
	if err != nil {
		return fmt.Errorf("basket of customer %s: %w", b.owner, err)
	}
	if id != b.owner {
		return fmt.Errorf("basket of customer %s used by customer %s: %w", b.owner, id, api.ErrNotAuthenticated)
	}
	return nil
}

// paramsOption adjusts the parameters of a change request.
type paramsOption func(api.Params) api.Params

// withNote attaches note unless it is empty, which leaves the server note alone.
func withNote(note string) paramsOption {
	return func(params api.Params) api.Params {
		if note == "" {
			return params
		}
		return params.With("noteforshopper", note)
	}
}

// change sends a quantity delta for p. Callers must hold b.mu.
func (b *Basket) change(ctx context.Context, p *product.Product, delta int, opt paramsOption) error {
	params := api.Params{
		"productid":      p.ID(),
		"changequantity": strconv.Itoa(delta),
	}
	if opt != nil {
		params = opt(params)
	}
	if _, err := b.requester.Request(ctx, CommandChange, params); err != nil {
		return fmt.Errorf("change basket line %s by %d: %w", p.ID(), delta, err)
	}
	b.logger.Debug("Basket line changed",
		zap.String("product_id", p.ID()),
		zap.Int("delta", delta),
	)
	return nil
}

// sync fetches the server basket and rebuilds the local view. Callers must hold b.mu.
func (b *Basket) sync(ctx context.Context) (*reconcile.Plan, error) {
	resp, err := b.requester.Request(ctx, CommandList, nil)
	if err != nil {
		return nil, fmt.Errorf("list basket: %w", err)
	}

	items := make(map[*product.Product]*Item)
	for _, line := range resp.Records(fieldLines) {
		p, err := b.products.GetOrCreate(line.String(fieldLineProduct), line)
		if err != nil {
			return nil, fmt.Errorf("basket line: %w", err)
		}
		items[p] = &Item{
			Product:      p,
			Quantity:     line.Int(fieldLineQuantity),
			Note:         line.String(fieldLineNote),
			ErrorMessage: line.String(fieldLineError),
			PromoMessage: line.String(fieldLinePromo),
		}
	}

	plan := reconcile.BuildPlan[Item](lineAdapter{}, index(b.items), index(items))

	b.id = resp.String(fieldBasketID)
	b.guidePrice = resp.Decimal(fieldGuidePrice)
	b.savings = resp.Decimal(fieldSavings)
	b.points = resp.Int(fieldPoints)
	b.quantity = resp.Int(fieldQuantity)
	b.items = items
	b.synced = true

	b.logger.Info("Basket synced",
		zap.String("basket_id", b.id),
		zap.Int("lines", len(items)),
		zap.String("changes", plan.Summary.String()),
	)
	return plan, nil
}

func index(items map[*product.Product]*Item) map[string]Item {
	out := make(map[string]Item, len(items))
	for p, item := range items {
		out[p.ID()] = *item
	}
	return out
}
