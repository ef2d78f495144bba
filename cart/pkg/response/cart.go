package response

import (
	"time"

	"github.com/google/uuid"

	productResponse "github.com/okidwi/storefront/product/pkg/response"
)

type Cart struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uuid.UUID  `json:"user_id"`
	Items     []CartItem `json:"items"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// CartItem carries the fully resolved product. Product is nil for an orphaned
// item, which only survives until the next fetch prunes it.
type CartItem struct {
	ID        uuid.UUID                `json:"id"`
	CartID    uuid.UUID                `json:"cart_id"`
	ProductID uuid.UUID                `json:"product_id"`
	Quantity  int32                    `json:"quantity"`
	Product   *productResponse.Product `json:"product"`
}
