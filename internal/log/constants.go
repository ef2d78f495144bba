package log

const (
	KeyAppName       = "app"
	KeyRequestID     = "requestId"
	KeyProcess       = "process"
	KeyTag           = "tag"
	KeyConfig        = "config"
	KeyEmail         = "email"
	KeyToken         = "token"
	KeyUserID        = "userId"
	KeyProductID     = "productId"
	KeyCartID        = "cartId"
	KeyCart          = "cart"
	KeyQuantity      = "quantity"
	KeyCacheKey      = "cacheKey"
	KeyDbURL         = "dbUrl"
	KeyPathValues    = "pathValues"
	KeyRequest       = "request"
	KeyRequestBody   = "requestBody"
	KeyRequestHeader = "requestHeader"
	KeyRequestHost   = "host"
	KeyRequestIp     = "requesterIP"
	KeyRequestMethod = "requestMethod"
	KeyRequestURI    = "requestURI"
	KeyRequestURL    = "requestURL"
	KeyBody          = "body"
	KeyHeader        = "header"
)
