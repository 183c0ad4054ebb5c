package response

import (
	"github.com/shopspring/decimal"

	"github.com/Alturino/storefront/cart/pkg/store"
)

type CartItem struct {
	ID       int             `json:"id"`
	Title    string          `json:"title"`
	Image    string          `json:"image"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

type Cart struct {
	Items           []CartItem      `json:"items"`
	CartCount       int             `json:"cartCount"`
	UniqueCartCount int             `json:"uniqueCartCount"`
	Total           decimal.Decimal `json:"total"`
}

type CartEvent struct {
	Operation store.Operation `json:"operation"`
	ProductID int             `json:"productId"`
	Cart      Cart            `json:"cart"`
}

func FromSnapshot(snapshot store.Snapshot) Cart {
	items := make([]CartItem, 0, len(snapshot.Items))
	for _, line := range snapshot.Items {
		items = append(items, CartItem{
			ID:       line.ID,
			Title:    line.Title,
			Image:    line.Image,
			Price:    line.Price,
			Quantity: line.Quantity,
			Subtotal: line.Subtotal(),
		})
	}
	return Cart{
		Items:           items,
		CartCount:       snapshot.CartCount,
		UniqueCartCount: snapshot.UniqueCartCount,
		Total:           snapshot.Total,
	}
}

func FromEvent(event store.Event) CartEvent {
	return CartEvent{
		Operation: event.Operation,
		ProductID: event.ProductID,
		Cart:      FromSnapshot(event.Snapshot),
	}
}
