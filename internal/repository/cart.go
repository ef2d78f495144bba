package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const insertCart = `
INSERT INTO carts (id, user_id)
VALUES ($1, $2)
ON CONFLICT (user_id) DO UPDATE SET updated_at = now()
RETURNING id, user_id, created_at, updated_at
`

type InsertCartParams struct {
	ID     uuid.UUID
	UserID uuid.UUID
}

func (q *Queries) InsertCart(c context.Context, arg InsertCartParams) (Cart, error) {
	row := q.db.QueryRow(c, insertCart, arg.ID, arg.UserID)
	var ct Cart
	err := row.Scan(&ct.ID, &ct.UserID, &ct.CreatedAt, &ct.UpdatedAt)
	return ct, err
}

const findCartByUserIdForUpdate = `
SELECT id, user_id, created_at, updated_at
FROM carts
WHERE user_id = $1
FOR UPDATE
`

func (q *Queries) FindCartByUserIdForUpdate(c context.Context, userID uuid.UUID) (Cart, error) {
	row := q.db.QueryRow(c, findCartByUserIdForUpdate, userID)
	var ct Cart
	err := row.Scan(&ct.ID, &ct.UserID, &ct.CreatedAt, &ct.UpdatedAt)
	return ct, err
}

const findCartByUserId = `
SELECT c.id,
       c.user_id,
       c.created_at,
       c.updated_at,
       COALESCE(
           json_agg(
               json_build_object(
                   'id', ci.id,
                   'cart_id', ci.cart_id,
                   'product_id', ci.product_id,
                   'quantity', ci.quantity,
                   'product', CASE
                       WHEN p.id IS NULL THEN NULL
                       ELSE json_build_object(
                           'id', p.id,
                           'name', p.name,
                           'price', p.price,
                           'description', p.description,
                           'stock', p.stock,
                           'image', p.image,
                           'category', p.category,
                           'created_at', p.created_at,
                           'updated_at', p.updated_at
                       )
                   END
               )
               ORDER BY ci.created_at
           ) FILTER (WHERE ci.id IS NOT NULL),
           '[]'
       ) AS cart_items
FROM carts c
LEFT JOIN cart_items ci ON ci.cart_id = c.id
LEFT JOIN products p ON p.id = ci.product_id
WHERE c.user_id = $1
GROUP BY c.id
`

type FindCartByUserIdRow struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	CreatedAt pgtype.Timestamptz
	UpdatedAt pgtype.Timestamptz
	CartItems []byte
}

func (q *Queries) FindCartByUserId(c context.Context, userID uuid.UUID) (FindCartByUserIdRow, error) {
	row := q.db.QueryRow(c, findCartByUserId, userID)
	var r FindCartByUserIdRow
	err := row.Scan(&r.ID, &r.UserID, &r.CreatedAt, &r.UpdatedAt, &r.CartItems)
	return r, err
}

const upsertCartItem = `
INSERT INTO cart_items (id, cart_id, product_id, quantity)
VALUES ($1, $2, $3, $4)
ON CONFLICT (cart_id, product_id)
DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity, updated_at = now()
RETURNING id, cart_id, product_id, quantity, created_at, updated_at
`

type UpsertCartItemParams struct {
	ID        uuid.UUID
	CartID    uuid.UUID
	ProductID uuid.UUID
	Quantity  int32
}

// UpsertCartItem implements merge-on-add: an existing (cart, product) pair is
// incremented instead of duplicated.
func (q *Queries) UpsertCartItem(c context.Context, arg UpsertCartItemParams) (CartItem, error) {
	row := q.db.QueryRow(c, upsertCartItem, arg.ID, arg.CartID, arg.ProductID, arg.Quantity)
	var ci CartItem
	err := row.Scan(&ci.ID, &ci.CartID, &ci.ProductID, &ci.Quantity, &ci.CreatedAt, &ci.UpdatedAt)
	return ci, err
}

const updateCartItemQuantity = `
UPDATE cart_items
SET quantity = $3, updated_at = now()
WHERE cart_id = $1 AND product_id = $2
RETURNING id, cart_id, product_id, quantity, created_at, updated_at
`

type UpdateCartItemQuantityParams struct {
	CartID    uuid.UUID
	ProductID uuid.UUID
	Quantity  int32
}

func (q *Queries) UpdateCartItemQuantity(
	c context.Context,
	arg UpdateCartItemQuantityParams,
) (CartItem, error) {
	row := q.db.QueryRow(c, updateCartItemQuantity, arg.CartID, arg.ProductID, arg.Quantity)
	var ci CartItem
	err := row.Scan(&ci.ID, &ci.CartID, &ci.ProductID, &ci.Quantity, &ci.CreatedAt, &ci.UpdatedAt)
	return ci, err
}

const deleteCartItem = `
DELETE FROM cart_items
WHERE cart_id = $1 AND product_id = $2
`

type DeleteCartItemParams struct {
	CartID    uuid.UUID
	ProductID uuid.UUID
}

func (q *Queries) DeleteCartItem(c context.Context, arg DeleteCartItemParams) (int64, error) {
	tag, err := q.db.Exec(c, deleteCartItem, arg.CartID, arg.ProductID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const deleteOrphanCartItems = `
DELETE FROM cart_items ci
WHERE ci.cart_id = $1
  AND NOT EXISTS (SELECT 1 FROM products p WHERE p.id = ci.product_id)
`

// DeleteOrphanCartItems prunes items whose product was removed out-of-band.
func (q *Queries) DeleteOrphanCartItems(c context.Context, cartID uuid.UUID) (int64, error) {
	tag, err := q.db.Exec(c, deleteOrphanCartItems, cartID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
