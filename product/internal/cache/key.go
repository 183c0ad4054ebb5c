package cache

import "strconv"

const (
	KeyProducts    = "storefront:products:"
	KeyProductList = "storefront:products:all"
)

func ProductKey(id int) string {
	return KeyProducts + strconv.Itoa(id)
}
