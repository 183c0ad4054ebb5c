package catalog

import (
	"strings"

	"github.com/Alturino/storefront/product/pkg/response"
)

// Filter keeps the products whose category contains category,
// case-insensitively, in their input order. A nil category returns
// products unchanged.
func Filter(products []response.Product, category *string) []response.Product {
	if category == nil {
		return products
	}
	needle := strings.ToLower(*category)
	filtered := make([]response.Product, 0, len(products))
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Category), needle) {
			filtered = append(filtered, p)
		}
	}
	return filtered
}

type Control string

const (
	ControlAdd     Control = "add"
	ControlStepper Control = "stepper"
)

// ControlFor picks the add affordance for products absent from the cart and
// the stepper otherwise.
func ControlFor(quantity int) Control {
	if quantity > 0 {
		return ControlStepper
	}
	return ControlAdd
}
