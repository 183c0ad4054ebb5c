package constants

const (
	AppStorefront       = "storefront"
	AppCartService      = "cart-service"
	AppProductService   = "product-service"
	AppCatalogMigration = "catalog-migration"
	AudienceSession     = "audience-session"
)
