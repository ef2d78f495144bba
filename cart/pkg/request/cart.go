package request

import (
	"github.com/google/uuid"
)

type AddCartItem struct {
	ProductId uuid.UUID `validate:"required"         json:"productId"`
	// Quantity defaults to 1 when absent; an explicit value below 1 is invalid.
	Quantity *int32 `validate:"omitempty,gte=1" json:"quantity"`
}

func (a AddCartItem) QuantityOrDefault() int32 {
	if a.Quantity == nil {
		return 1
	}
	return *a.Quantity
}

type UpdateCartItem struct {
	ProductId uuid.UUID `validate:"required"       json:"-"`
	Quantity  int32     `validate:"required,gte=1" json:"quantity"`
}

type RemoveCartItem struct {
	ProductId uuid.UUID `validate:"required" json:"-"`
}
