package product

// View is a serialisable snapshot of a product.
type View struct {
	ID                     string `json:"id"`
	Detailed               bool   `json:"detailed"`
	Name                   string `json:"name,omitempty"`
	ImageURL               string `json:"image_url,omitempty"`
	MaxQuantity            int    `json:"max_quantity,omitempty"`
	Barcode                string `json:"barcode,omitempty"`
	Offer                  *Offer `json:"offer,omitempty"`
	HealthierAlternativeID string `json:"healthier_alternative_id,omitempty"`
	CheaperAlternativeID   string `json:"cheaper_alternative_id,omitempty"`
	BaseProductID          string `json:"base_product_id,omitempty"`
}

// Snapshot captures what is currently known about the product without fetching.
func (p *Product) Snapshot() View {
	p.mu.RLock()
	defer p.mu.RUnlock()

	v := View{
		ID:          p.id,
		Detailed:    p.detailed,
		Name:        p.name,
		ImageURL:    p.imageURL,
		MaxQuantity: p.maxQuantity,
		Barcode:     p.barcode.String(),
		Offer:       p.offer,
	}
	if p.healthier != nil {
		v.HealthierAlternativeID = p.healthier.id
	}
	if p.cheaper != nil {
		v.CheaperAlternativeID = p.cheaper.id
	}
	if p.base != nil {
		v.BaseProductID = p.base.id
	}
	return v
}

// Snapshots captures a list of products.
func Snapshots(products []*Product) []View {
	out := make([]View, 0, len(products))
	for _, p := range products {
		out = append(out, p.Snapshot())
	}
	return out
}
