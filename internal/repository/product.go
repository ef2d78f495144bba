package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const insertProduct = `
INSERT INTO products (id, name, price, description, stock, image, category)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id, name, price, description, stock, image, category, created_at, updated_at
`

type InsertProductParams struct {
	ID          uuid.UUID
	Name        string
	Price       pgtype.Numeric
	Description string
	Stock       int32
	Image       string
	Category    string
}

func (q *Queries) InsertProduct(c context.Context, arg InsertProductParams) (Product, error) {
	row := q.db.QueryRow(
		c,
		insertProduct,
		arg.ID,
		arg.Name,
		arg.Price,
		arg.Description,
		arg.Stock,
		arg.Image,
		arg.Category,
	)
	var p Product
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Price,
		&p.Description,
		&p.Stock,
		&p.Image,
		&p.Category,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	return p, err
}

const findProducts = `
SELECT id, name, price, description, stock, image, category, created_at, updated_at
FROM products
ORDER BY created_at, name
`

func (q *Queries) FindProducts(c context.Context) ([]Product, error) {
	rows, err := q.db.Query(c, findProducts)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Product{}
	for rows.Next() {
		var p Product
		if err := rows.Scan(
			&p.ID,
			&p.Name,
			&p.Price,
			&p.Description,
			&p.Stock,
			&p.Image,
			&p.Category,
			&p.CreatedAt,
			&p.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const findProductById = `
SELECT id, name, price, description, stock, image, category, created_at, updated_at
FROM products
WHERE id = $1
`

func (q *Queries) FindProductById(c context.Context, id uuid.UUID) (Product, error) {
	row := q.db.QueryRow(c, findProductById, id)
	var p Product
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Price,
		&p.Description,
		&p.Stock,
		&p.Image,
		&p.Category,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	return p, err
}

const deleteProductById = `
DELETE FROM products
WHERE id = $1
`

func (q *Queries) DeleteProductById(c context.Context, id uuid.UUID) (int64, error) {
	tag, err := q.db.Exec(c, deleteProductById, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
