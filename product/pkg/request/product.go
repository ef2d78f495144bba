package request

import (
	"github.com/shopspring/decimal"
)

type Product struct {
	Name        string          `validate:"required" json:"name"`
	Price       decimal.Decimal `validate:"required" json:"price"`
	Description string          `validate:"required" json:"description"`
	Stock       int32           `validate:"gte=0"    json:"stock"`
	Image       string          `                    json:"image"`
	Category    string          `                    json:"category"`
}
