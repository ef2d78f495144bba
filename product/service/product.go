package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	inErrors "github.com/okidwi/storefront/internal/errors"
	"github.com/okidwi/storefront/internal/log"
	"github.com/okidwi/storefront/internal/otel"
	"github.com/okidwi/storefront/internal/repository"
	"github.com/okidwi/storefront/product/pkg/request"
	"github.com/okidwi/storefront/product/pkg/response"
)

const (
	cacheKeyProducts  = "products"
	cacheKeyProductId = "products:%s"
	cacheTTL          = time.Hour
)

type ProductService struct {
	queries *repository.Queries
	cache   *redis.Client
}

func NewProductService(queries *repository.Queries, cache *redis.Client) ProductService {
	return ProductService{queries: queries, cache: cache}
}

func (s ProductService) FindProducts(c context.Context) ([]response.Product, error) {
	c, span := otel.Tracer.Start(c, "ProductService FindProducts")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ProductService FindProducts").
		Str(log.KeyCacheKey, cacheKeyProducts).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding products in cache").Logger()
	logger.Info().Msg("finding products in cache")
	jsonString, err := s.cache.Get(c, cacheKeyProducts).Result()
	if err != nil {
		logger.Info().Err(err).Msg("products not in cache")

		logger = logger.With().Str(log.KeyProcess, "finding products in db").Logger()
		logger.Info().Msg("finding products in db")
		rows, err := s.queries.FindProducts(c)
		if err != nil {
			err = fmt.Errorf("failed finding products in db with error=%w", err)
			otel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return nil, err
		}
		products := make([]response.Product, len(rows))
		for i, row := range rows {
			products[i] = row.Response()
		}
		logger.Info().Msg("found products in db")

		logger = logger.With().Str(log.KeyProcess, "inserting products in cache").Logger()
		logger.Info().Msg("inserting products in cache")
		marshaled, err := json.Marshal(products)
		if err != nil {
			err = fmt.Errorf("failed marshaling products with error=%w", err)
			otel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return nil, err
		}
		err = s.cache.Set(c, cacheKeyProducts, marshaled, cacheTTL).Err()
		if err != nil {
			err = fmt.Errorf("failed inserting products in cache with error=%w", err)
			otel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return nil, err
		}
		logger.Info().Msg("inserted products in cache")

		return products, nil
	}
	logger.Info().Msg("found products in cache")

	logger = logger.With().Str(log.KeyProcess, "unmarshaling cache").Logger()
	logger.Info().Msg("unmarshaling cache")
	products := []response.Product{}
	err = json.Unmarshal([]byte(jsonString), &products)
	if err != nil {
		err = fmt.Errorf("failed unmarshaling cache with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	logger.Info().Msg("unmarshaled cache")

	return products, nil
}

func (s ProductService) FindProductById(
	c context.Context,
	productId uuid.UUID,
) (response.Product, error) {
	c, span := otel.Tracer.Start(c, "ProductService FindProductById")
	defer span.End()

	cacheKey := fmt.Sprintf(cacheKeyProductId, productId.String())

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ProductService FindProductById").
		Str(log.KeyProductID, productId.String()).
		Str(log.KeyCacheKey, cacheKey).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding product in cache").Logger()
	logger.Info().Msg("finding product in cache")
	jsonString, err := s.cache.Get(c, cacheKey).Result()
	if err != nil {
		logger.Info().Err(err).Msg("product not in cache")

		logger = logger.With().Str(log.KeyProcess, "finding product in db").Logger()
		logger.Info().Msg("finding product in db")
		row, err := s.queries.FindProductById(c, productId)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				err = errors.Join(err, inErrors.ErrProductNotFound)
			}
			err = fmt.Errorf("failed finding productId=%s with error=%w", productId.String(), err)
			otel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return response.Product{}, err
		}
		product := row.Response()
		logger.Info().Msg("found product in db")

		logger = logger.With().Str(log.KeyProcess, "inserting product in cache").Logger()
		logger.Info().Msg("inserting product in cache")
		marshaled, err := json.Marshal(product)
		if err != nil {
			err = fmt.Errorf("failed marshaling product with error=%w", err)
			otel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return response.Product{}, err
		}
		err = s.cache.Set(c, cacheKey, marshaled, cacheTTL).Err()
		if err != nil {
			err = fmt.Errorf("failed inserting product in cache with error=%w", err)
			otel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return response.Product{}, err
		}
		logger.Info().Msg("inserted product in cache")

		return product, nil
	}
	logger.Info().Msg("found product in cache")

	logger = logger.With().Str(log.KeyProcess, "unmarshaling cache").Logger()
	logger.Info().Msg("unmarshaling cache")
	product := response.Product{}
	err = json.Unmarshal([]byte(jsonString), &product)
	if err != nil {
		err = fmt.Errorf("failed unmarshaling cache with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Product{}, err
	}
	logger.Info().Msg("unmarshaled cache")

	return product, nil
}

func (s ProductService) InsertProduct(
	c context.Context,
	param request.Product,
) (response.Product, error) {
	c, span := otel.Tracer.Start(c, "ProductService InsertProduct")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ProductService InsertProduct").
		Str("productName", param.Name).
		Logger()

	category := param.Category
	if category == "" {
		category = "General"
	}

	logger = logger.With().Str(log.KeyProcess, "inserting product to database").Logger()
	logger.Info().Msg("inserting product to database")
	product, err := s.queries.InsertProduct(c, repository.InsertProductParams{
		ID:          uuid.New(),
		Name:        param.Name,
		Price:       repository.NumericFromDecimal(param.Price),
		Description: param.Description,
		Stock:       param.Stock,
		Image:       param.Image,
		Category:    category,
	})
	if err != nil {
		err = fmt.Errorf("failed inserting product to database with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Product{}, err
	}
	logger = logger.With().Str(log.KeyProductID, product.ID.String()).Logger()
	logger.Info().Msg("inserted product to database")

	logger = logger.With().Str(log.KeyProcess, "invalidating products cache").Logger()
	logger.Info().Msg("invalidating products cache")
	err = s.cache.Del(c, cacheKeyProducts).Err()
	if err != nil {
		err = fmt.Errorf("failed invalidating products cache with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Product{}, err
	}
	logger.Info().Msg("invalidated products cache")

	return product.Response(), nil
}

func (s ProductService) RemoveProduct(c context.Context, productId uuid.UUID) error {
	c, span := otel.Tracer.Start(c, "ProductService RemoveProduct")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ProductService RemoveProduct").
		Str(log.KeyProductID, productId.String()).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "deleting product from database").Logger()
	logger.Info().Msg("deleting product from database")
	deleted, err := s.queries.DeleteProductById(c, productId)
	if err != nil {
		err = fmt.Errorf("failed deleting productId=%s with error=%w", productId.String(), err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	if deleted == 0 {
		err = fmt.Errorf(
			"productId=%s with error=%w",
			productId.String(),
			inErrors.ErrProductNotFound,
		)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Msg("deleted product from database")

	logger = logger.With().Str(log.KeyProcess, "invalidating products cache").Logger()
	logger.Info().Msg("invalidating products cache")
	err = s.cache.Del(c, cacheKeyProducts, fmt.Sprintf(cacheKeyProductId, productId.String())).
		Err()
	if err != nil {
		err = fmt.Errorf("failed invalidating products cache with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Msg("invalidated products cache")

	return nil
}
