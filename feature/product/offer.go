package product

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"grocer/core/api"
)

var validityPattern = regexp.MustCompile(`^valid from (\d{1,2})/(\d{1,2})/(\d{4}) until (\d{1,2})/(\d{1,2})/(\d{4})$`)

// Offer is a promotion attached to a product.
type Offer struct {
	ImageURL    string    `json:"image_url,omitempty"`
	Description string    `json:"description"`
	Validity    string    `json:"validity,omitempty"`
	ValidFrom   time.Time `json:"valid_from"`
	ValidUntil  time.Time `json:"valid_until"`
}

// NewOffer builds an offer from the raw server fields.
// An empty description is not an offer.
func NewOffer(imageURL, description, validity string) (*Offer, error) {
	if strings.TrimSpace(description) == "" {
		return nil, fmt.Errorf("offer without description: %w", api.ErrInvalidArgument)
	}
	o := &Offer{
		ImageURL:    imageURL,
		Description: description,
		Validity:    validity,
	}
	if from, until, ok := ParseValidity(validity); ok {
		o.ValidFrom, o.ValidUntil = from, until
	}
	return o, nil
}

// ParseValidity reads "valid from D/M/YYYY until D/M/YYYY" into two UTC dates.
func ParseValidity(s string) (from, until time.Time, ok bool) {
	m := validityPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return time.Time{}, time.Time{}, false
	}
	from, okFrom := date(m[1], m[2], m[3])
	until, okUntil := date(m[4], m[5], m[6])
	if !okFrom || !okUntil {
		return time.Time{}, time.Time{}, false
	}
	return from, until, true
}

// HasWindow reports whether the validity text was understood.
func (o *Offer) HasWindow() bool {
	return !o.ValidFrom.IsZero() && !o.ValidUntil.IsZero()
}

// ActiveAt reports whether the offer applies at t. The last day is inclusive.
// Offers without a parsed window are always considered active.
func (o *Offer) ActiveAt(t time.Time) bool {
	if !o.HasWindow() {
		return true
	}
	return !t.Before(o.ValidFrom) && t.Before(o.ValidUntil.AddDate(0, 0, 1))
}

func date(day, month, year string) (time.Time, bool) {
	d, _ := strconv.Atoi(day)
	m, _ := strconv.Atoi(month)
	y, _ := strconv.Atoi(year)
	if d < 1 || d > 31 || m < 1 || m > 12 {
		return time.Time{}, false
	}
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	// time.Date normalises 31/2 into March; reject instead.
	if t.Day() != d {
		return time.Time{}, false
	}
	return t, true
}
