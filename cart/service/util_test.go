package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/okidwi/storefront/internal/repository"
)

var (
	testUserId             = uuid.MustParse("5f1c6ac8-3f47-4b9b-9d1f-0a4f4b6f2a01")
	testPhoneId            = uuid.MustParse("b7c9b2e4-6e0f-4a2d-9c3f-1d2e3f4a5b6c")
	testHeadphoneId        = uuid.MustParse("c8d0c3f5-7f10-4b3e-8d4f-2e3f4a5b6c7d")
	testDiscontinuedId     = uuid.MustParse("d9e1d4a6-8a21-4c4f-9e5f-3f4a5b6c7d8e")
	testHeadphoneStock     = int32(3)
	testDiscontinuedAmount = int32(2)
)

type (
	setupFunc    func(context.Context, ...string) (*pgxpool.Pool, *postgres.PostgresContainer, *repository.Queries, *CartService)
	teardownFunc func(*pgxpool.Pool, *postgres.PostgresContainer)
)

func setup(t *testing.T) setupFunc {
	return func(c context.Context, seedPaths ...string) (*pgxpool.Pool, *postgres.PostgresContainer, *repository.Queries, *CartService) {
		pgContainer, err := postgres.Run(
			c,
			"postgres:16.6-alpine3.21",
			testcontainers.WithEnv(map[string]string{
				"POSTGRES_DB":       "postgres",
				"POSTGRES_PASSWORD": "postgres",
				"POSTGRES_PORT":     "5432",
				"POSTGRES_USER":     "postgres",
			}),
			postgres.WithUsername("postgres"),
			postgres.WithPassword("postgres"),
			postgres.WithDatabase("postgres"),
			postgres.BasicWaitStrategies(),
			postgres.WithInitScripts(
				append(
					[]string{
						filepath.Join("..", "..", "migrations", "20250310091211_create_table_users.up.sql"),
						filepath.Join("..", "..", "migrations", "20250311142055_create_table_products.up.sql"),
						filepath.Join("..", "..", "migrations", "20250312104530_create_table_carts.up.sql"),
						filepath.Join("..", "..", "migrations", "20250312104615_create_table_cart_items.up.sql"),
						filepath.Join("testdata", "users.seed.sql"),
					},
					seedPaths...)...,
			),
		)
		if err != nil {
			t.Fatalf("failed running postgres container with error: %s", err)
		}

		pgConnStr, err := pgContainer.ConnectionString(c)
		if err != nil {
			t.Fatalf("failed getting postgres connection string with error: %s", err)
		}

		pgConfig, err := pgxpool.ParseConfig(pgConnStr)
		if err != nil {
			t.Fatalf("failed parsing pgconfig with error: %s", err)
		}

		pool, err := pgxpool.NewWithConfig(c, pgConfig)
		if err != nil {
			t.Fatalf("failed creating postgres pool with error: %s", err)
		}

		if err = pool.Ping(c); err != nil {
			t.Fatalf("failed ping postgres pool with error: %s", err)
		}

		queries := repository.New(pool)
		cartService := NewCartService(pool, queries)
		return pool, pgContainer, queries, &cartService
	}
}

func teardown(t *testing.T) teardownFunc {
	return func(pool *pgxpool.Pool, pgContainer *postgres.PostgresContainer) {
		pool.Close()
		if err := testcontainers.TerminateContainer(pgContainer); err != nil {
			t.Fatalf("failed to terminate container: %s", err)
		}
	}
}

func quantity(q int32) *int32 {
	return &q
}
