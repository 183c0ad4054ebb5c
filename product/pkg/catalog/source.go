package catalog

import (
	"context"

	"github.com/Alturino/storefront/product/pkg/response"
)

// Source is the external product catalog. GetProduct returns
// errors.ErrProductNotFound for unknown ids.
type Source interface {
	ListProducts(c context.Context) ([]response.Product, error)
	GetProduct(c context.Context, id int) (response.Product, error)
}

// QuantityReader is the part of the cart the view reads at render time.
type QuantityReader interface {
	GetItemQuantity(id int) int
}
