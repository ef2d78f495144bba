package constants

const (
	AppStorefront = "storefront"
	AppSeeder     = "storefront-seeder"
	AudienceUser  = "audience-user"
)
