package request

import (
	"github.com/shopspring/decimal"

	"github.com/Alturino/storefront/cart/pkg/store"
)

type AddToCart struct {
	ID    int             `validate:"required,gte=1" json:"id"`
	Title string          `json:"title"`
	Price decimal.Decimal `validate:"price"          json:"price"`
	Image string          `validate:"omitempty,url"  json:"image"`
}

func (a AddToCart) Item() store.Item {
	return store.Item{ID: a.ID, Title: a.Title, Price: a.Price, Image: a.Image}
}
