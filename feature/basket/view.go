package basket

import (
	"grocer/feature/product"

	"github.com/shopspring/decimal"
)

// LineView is the serialisable form of an Item.
type LineView struct {
	Product      product.View `json:"product"`
	Quantity     int          `json:"quantity"`
	Note         string       `json:"note,omitempty"`
	ErrorMessage string       `json:"error_message,omitempty"`
	PromoMessage string       `json:"promo_message,omitempty"`
}

// View is the serialisable form of a Basket.
type View struct {
	ID              string          `json:"id"`
	Owner           string          `json:"owner"`
	GuidePrice      decimal.Decimal `json:"guide_price"`
	MultiBuySavings decimal.Decimal `json:"multi_buy_savings"`
	ClubcardPoints  int             `json:"clubcard_points"`
	Quantity        int             `json:"quantity"`
	Lines           []LineView      `json:"lines"`
}

// Snapshot captures the basket without any request.
func (b *Basket) Snapshot() View {
	items := b.Items()

	b.mu.Lock()
	v := View{
		ID:              b.id,
		Owner:           b.owner,
		GuidePrice:      b.guidePrice,
		MultiBuySavings: b.savings,
		ClubcardPoints:  b.points,
		Quantity:        b.quantity,
	}
	b.mu.Unlock()

	v.Lines = make([]LineView, 0, len(items))
	for _, item := range items {
		v.Lines = append(v.Lines, LineView{
			Product:      item.Product.Snapshot(),
			Quantity:     item.Quantity,
			Note:         item.Note,
			ErrorMessage: item.ErrorMessage,
			PromoMessage: item.PromoMessage,
		})
	}
	return v
}
