package log

const (
	KeyAppName            = "app"
	KeyRequestID          = "requestId"
	KeyProcess            = "process"
	KeyTag                = "tag"
	KeyConfig             = "config"
	KeyRequestBody        = "requestBody"
	KeyRequestHeader      = "requestHeader"
	KeyRequestHost        = "host"
	KeyRequestIp          = "requesterIP"
	KeyRequestMethod      = "requestMethod"
	KeyRequestURI         = "requestURI"
	KeyRequestURL         = "requestURL"
	KeyRequest            = "request"
	KeyTraceID            = "traceId"
	KeySpanID             = "spanId"
	KeyPathValues         = "pathValues"
	KeySessionID          = "sessionId"
	KeySessionCount       = "sessionCount"
	KeyCart               = "cart"
	KeyCartCount          = "cartCount"
	KeyUniqueCartCount    = "uniqueCartCount"
	KeyCartTotal          = "cartTotal"
	KeyCartItem           = "cartItem"
	KeyCartItemQuantity   = "cartItemQuantity"
	KeyCartOperation      = "cartOperation"
	KeyProductID          = "productId"
	KeyProduct            = "product"
	KeyProductCount       = "productCount"
	KeyCategory           = "category"
	KeyCatalogState       = "catalogState"
	KeyCatalogSource      = "catalogSource"
	KeyCacheKey           = "cacheKey"
	KeyJsonCache          = "jsonCache"
	KeyDbURL              = "dbUrl"
	KeyURL                = "url"
	KeyStatusCode         = "statusCode"
	KeyMigrationDirection = "migrationDirection"
)
