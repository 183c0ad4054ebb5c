package response

import (
	"github.com/shopspring/decimal"
)

type Rating struct {
	Rate  float64 `json:"rate"  redis:"rate"`
	Count int     `json:"count" redis:"count"`
}

type Product struct {
	ID          int             `json:"id"          redis:"id"`
	Title       string          `json:"title"       redis:"title"`
	Price       decimal.Decimal `json:"price"       redis:"price"`
	Description string          `json:"description" redis:"description"`
	Category    string          `json:"category"    redis:"category"`
	Image       string          `json:"image"       redis:"image"`
	Rating      Rating          `json:"rating"      redis:"rating"`
}
