package product

import (
	"context"
	"sync"

	"grocer/core/api"
)

// Server record fields decoded into a Product.
const (
	fieldID          = "ProductId"
	fieldName        = "Name"
	fieldImage       = "ImagePath"
	fieldMaxQuantity = "MaximumPurchaseQuantity"
	fieldBarcode     = "EANBarcode"
	fieldOfferImage  = "OfferLabelImagePath"
	fieldOffer       = "OfferPromotion"
	fieldValidity    = "OfferValidity"
	// The server spells these with the extra "h".
	fieldHealthier = "HealthierAlthernativeProductId"
	fieldCheaper   = "CheaperAlthernativeProductId"
	fieldBase      = "BaseProductId"
)

// Product is a catalogue entry. There is at most one *Product per id within a
// Registry, so pointers can be compared and used as map keys.
//
// A product starts either unresolved (id only) or detailed from a listing record.
// Name, ImageURL, MaxQuantity and Offer fetch the details on first use.
type Product struct {
	id       string
	registry *Registry

	mu          sync.RWMutex
	detailed    bool
	name        string
	imageURL    string
	maxQuantity int
	barcode     Barcode
	offer       *Offer
	healthier   *Product
	cheaper     *Product
	base        *Product
}

// ID returns the immutable product id.
func (p *Product) ID() string {
	return p.id
}

// Detailed reports whether the product's name has been loaded or its details
// have been fetched.
func (p *Product) Detailed() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.detailed
}

// Name returns the product name, fetching details if needed.
func (p *Product) Name(ctx context.Context) (string, error) {
	if err := p.ensureDetails(ctx); err != nil {
		return "", err
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.name, nil
}

// ImageURL returns the product image, fetching details if needed.
func (p *Product) ImageURL(ctx context.Context) (string, error) {
	if err := p.ensureDetails(ctx); err != nil {
		return "", err
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.imageURL, nil
}

// MaxQuantity returns how many units may be bought at once, fetching details if needed.
func (p *Product) MaxQuantity(ctx context.Context) (int, error) {
	if err := p.ensureDetails(ctx); err != nil {
		return 0, err
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.maxQuantity, nil
}

// Offer returns the current promotion or nil, fetching details if needed.
func (p *Product) Offer(ctx context.Context) (*Offer, error) {
	if err := p.ensureDetails(ctx); err != nil {
		return nil, err
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.offer, nil
}

// Barcode returns the EAN barcode known so far.
func (p *Product) Barcode() Barcode {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.barcode
}

// HealthierAlternative returns the healthier alternative, possibly unresolved, or nil.
func (p *Product) HealthierAlternative() *Product {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.healthier
}

// CheaperAlternative returns the cheaper alternative, possibly unresolved, or nil.
func (p *Product) CheaperAlternative() *Product {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.cheaper
}

// BaseProduct returns the base product, possibly unresolved, or nil.
func (p *Product) BaseProduct() *Product {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.base
}

// Details refreshes the product from the server by searching for its id.
// Identity never changes; attributes are updated in place.
func (p *Product) Details(ctx context.Context) error {
	return p.load(ctx, false)
}

func (p *Product) String() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.detailed && p.name != "" {
		return p.name
	}
	return "product " + p.id
}

func (p *Product) ensureDetails(ctx context.Context) error {
	if p.Detailed() {
		return nil
	}
	return p.load(ctx, true)
}

// load fetches and decodes the product. Concurrent loads of one product share
// a single request; lazy loads skip the request once another caller has finished.
func (p *Product) load(ctx context.Context, lazy bool) error {
	key := p.id
	if lazy {
		key = "lazy:" + p.id
	}
	_, err, _ := p.registry.sf.Do(key, func() (interface{}, error) {
		if lazy && p.Detailed() {
			return nil, nil
		}
		rec, err := p.registry.search(ctx, p.id)
		if err != nil {
			return nil, err
		}
		p.apply(rec)

		// A fetched record without a name still settles the product.
		p.mu.Lock()
		p.detailed = true
		p.mu.Unlock()
		return nil, nil
	})
	return err
}

// apply decodes the fields present in rec. Absent fields keep their value so a
// sparse record never erases what a richer one provided.
func (p *Product) apply(rec api.Record) {
	if len(rec) == 0 {
		return
	}

	// Related products are resolved before taking p.mu: the registry lock is
	// never acquired while a product lock is held.
	healthier := p.registry.related(rec, fieldHealthier)
	cheaper := p.registry.related(rec, fieldCheaper)
	base := p.registry.related(rec, fieldBase)

	var offer *Offer
	if rec.Has(fieldOffer) {
		// An empty promotion just means there is no offer.
		offer, _ = NewOffer(rec.String(fieldOfferImage), rec.String(fieldOffer), rec.String(fieldValidity))
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if rec.Has(fieldName) {
		p.name = rec.String(fieldName)
		p.detailed = true
	}
	if rec.Has(fieldImage) {
		p.imageURL = rec.String(fieldImage)
	}
	if rec.Has(fieldMaxQuantity) {
		p.maxQuantity = rec.Int(fieldMaxQuantity)
	}
	if rec.Has(fieldBarcode) {
		p.barcode = Barcode(rec.String(fieldBarcode))
	}
	if rec.Has(fieldOffer) {
		p.offer = offer
	}
	if rec.Has(fieldHealthier) {
		p.healthier = healthier
	}
	if rec.Has(fieldCheaper) {
		p.cheaper = cheaper
	}
	if rec.Has(fieldBase) {
		p.base = base
	}
}
