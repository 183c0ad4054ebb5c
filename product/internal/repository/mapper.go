package repository

import (
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/Alturino/storefront/product/pkg/response"
)

type productRow struct {
	ID          int            `db:"id"`
	Title       string         `db:"title"`
	Price       pgtype.Numeric `db:"price"`
	Description string         `db:"description"`
	Category    string         `db:"category"`
	Image       string         `db:"image"`
	RatingRate  float64        `db:"rating_rate"`
	RatingCount int            `db:"rating_count"`
}

func (p productRow) Response() response.Product {
	price := decimal.Zero
	if p.Price.Valid && p.Price.Int != nil {
		price = decimal.NewFromBigInt(p.Price.Int, p.Price.Exp)
	}
	return response.Product{
		ID:          p.ID,
		Title:       p.Title,
		Price:       price,
		Description: p.Description,
		Category:    p.Category,
		Image:       p.Image,
		Rating: response.Rating{
			Rate:  p.RatingRate,
			Count: p.RatingCount,
		},
	}
}
