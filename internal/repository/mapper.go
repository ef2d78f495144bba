package repository

import (
	"encoding/json"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	cartResponse "github.com/okidwi/storefront/cart/pkg/response"
	productResponse "github.com/okidwi/storefront/product/pkg/response"
	userResponse "github.com/okidwi/storefront/user/pkg/response"
)

func NumericFromDecimal(d decimal.Decimal) pgtype.Numeric {
	return pgtype.Numeric{
		Exp:              d.Exponent(),
		InfinityModifier: pgtype.Finite,
		Int:              d.Coefficient(),
		NaN:              false,
		Valid:            true,
	}
}

func (u User) Response() userResponse.User {
	return userResponse.User{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		CreatedAt: u.CreatedAt.Time,
		UpdatedAt: u.UpdatedAt.Time,
	}
}

func (p Product) Response() productResponse.Product {
	return productResponse.Product{
		ID:          p.ID,
		Name:        p.Name,
		Price:       decimal.NewFromBigInt(p.Price.Int, p.Price.Exp),
		Description: p.Description,
		Stock:       p.Stock,
		Image:       p.Image,
		Category:    p.Category,
		CreatedAt:   p.CreatedAt.Time,
		UpdatedAt:   p.UpdatedAt.Time,
	}
}

func (f FindCartByUserIdRow) Response() (cartResponse.Cart, error) {
	cartItems := []cartResponse.CartItem{}
	err := json.Unmarshal(f.CartItems, &cartItems)
	if err != nil {
		return cartResponse.Cart{}, err
	}
	return cartResponse.Cart{
		ID:        f.ID,
		UserID:    f.UserID,
		Items:     cartItems,
		CreatedAt: f.CreatedAt.Time,
		UpdatedAt: f.UpdatedAt.Time,
	}, nil
}
