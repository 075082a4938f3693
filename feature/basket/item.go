package basket

import (
	"context"
	"fmt"

	"grocer/feature/product"
)

// Server basket line fields.
const (
	fieldLineQuantity = "BasketLineQuantity"
	fieldLineError    = "BasketLineErrorMessage"
	fieldLinePromo    = "BasketLinePromoMessage"
	fieldLineNote     = "NoteForPersonalShopper"
)

// Item is one line of a basket: a product plus the basket-specific fields.
// Items handed out by a Basket are copies; changing them has no effect on the basket.
type Item struct {
	Product      *product.Product
	Quantity     int
	Note         string
	ErrorMessage string
	PromoMessage string
}

// ID returns the product id of the line.
func (i Item) ID() string {
	return i.Product.ID()
}

// Name forwards to the product name.
func (i Item) Name(ctx context.Context) (string, error) {
	return i.Product.Name(ctx)
}

// ImageURL forwards to the product image.
func (i Item) ImageURL(ctx context.Context) (string, error) {
	return i.Product.ImageURL(ctx)
}

// MaxQuantity forwards to the product purchase limit.
func (i Item) MaxQuantity(ctx context.Context) (int, error) {
	return i.Product.MaxQuantity(ctx)
}

// Offer forwards to the product promotion.
func (i Item) Offer(ctx context.Context) (*product.Offer, error) {
	return i.Product.Offer(ctx)
}

// lineAdapter describes basket lines to the reconcile engine.
type lineAdapter struct{}

func (lineAdapter) Name() string {
	return "basket"
}

func (lineAdapter) ResolveName(before Item, hasBefore bool, after Item, hasAfter bool) string {
	if hasAfter {
		return after.Product.String()
	}
	return before.Product.String()
}

func (lineAdapter) CompareFields(before, after Item) []string {
	var mismatches []string
	if before.Quantity != after.Quantity {
		mismatches = append(mismatches, fmt.Sprintf("quantity: before=%d after=%d", before.Quantity, after.Quantity))
	}
	if before.Note != after.Note {
		mismatches = append(mismatches, fmt.Sprintf("note: before=%q after=%q", before.Note, after.Note))
	}
	if before.ErrorMessage != after.ErrorMessage {
		mismatches = append(mismatches, fmt.Sprintf("error_message: before=%q after=%q", before.ErrorMessage, after.ErrorMessage))
	}
	if before.PromoMessage != after.PromoMessage {
		mismatches = append(mismatches, fmt.Sprintf("promo_message: before=%q after=%q", before.PromoMessage, after.PromoMessage))
	}
	return mismatches
}
