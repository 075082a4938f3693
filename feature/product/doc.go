// Package product implements the catalogue identity map.
//
// Registry guarantees that every product id maps to exactly one *Product for
// the registry's lifetime. Listings, basket lines and related-product links all
// go through Registry.GetOrCreate, so repeated references converge on the same
// object and later records refresh it in place instead of duplicating it.
//
// # Lazy details
//
// Products referenced only by id (alternatives, base products, basket keys)
// are unresolved. Reading Name, ImageURL, MaxQuantity or Offer on such a
// product runs a catalogue search for its id first; concurrent readers share a
// single request. Details can be refreshed explicitly with Product.Details.
//
// # Offers
//
// A non-empty OfferPromotion becomes an *Offer whose validity text
// ("valid from 1/6/2011 until 28/6/2011") is parsed into a UTC window.
package product
