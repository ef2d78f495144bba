package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/okidwi/storefront/internal/config"
	"github.com/okidwi/storefront/internal/constants"
	"github.com/okidwi/storefront/internal/infra"
	"github.com/okidwi/storefront/internal/log"
	"github.com/okidwi/storefront/internal/otel"
	"github.com/okidwi/storefront/internal/repository"
	productService "github.com/okidwi/storefront/product/service"
	"github.com/okidwi/storefront/product/pkg/request"
)

const seedPath = "seed/products.seed.json"

func runSeeder(c context.Context) {
	c, span := otel.Tracer.Start(c, "runSeeder")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyAppName, constants.AppSeeder).
		Str(log.KeyTag, "main runSeeder").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "init config").Logger()
	logger.Info().Msg("initializing config")
	c = logger.WithContext(c)
	cfg := config.InitConfig(c, constants.AppStorefront)
	logger.Info().Msg("initialized config")

	logger = logger.With().Str(log.KeyProcess, "reading seed file").Logger()
	logger.Info().Msgf("reading seed file %s", seedPath)
	seedJson, err := os.ReadFile(seedPath)
	if err != nil {
		err = fmt.Errorf("failed reading seed file with error=%w", err)
		otel.RecordError(err, span)
		logger.Fatal().Err(err).Msg(err.Error())
	}
	products := []request.Product{}
	err = json.Unmarshal(seedJson, &products)
	if err != nil {
		err = fmt.Errorf("failed unmarshaling seed file with error=%w", err)
		otel.RecordError(err, span)
		logger.Fatal().Err(err).Msg(err.Error())
	}
	logger.Info().Msgf("read %d products from seed file", len(products))

	logger = logger.With().Str(log.KeyProcess, "initializing database").Logger()
	logger.Info().Msg("initializing database")
	c = logger.WithContext(c)
	db := infra.NewDatabaseClient(c, cfg.Database)
	defer db.Close()
	logger.Info().Msg("initialized database")

	logger = logger.With().Str(log.KeyProcess, "initializing cache").Logger()
	logger.Info().Msg("initializing cache")
	c = logger.WithContext(c)
	cache := infra.NewCacheClient(c, cfg.Cache)
	defer cache.Close()
	logger.Info().Msg("initialized cache")

	logger = logger.With().Str(log.KeyProcess, "inserting products").Logger()
	queries := repository.New(db)
	service := productService.NewProductService(queries, cache)
	for _, product := range products {
		logger.Info().Msgf("inserting product name=%s", product.Name)
		c = logger.WithContext(c)
		inserted, err := service.InsertProduct(c, product)
		if err != nil {
			err = fmt.Errorf(
				"failed inserting product name=%s with error=%w",
				product.Name,
				err,
			)
			otel.RecordError(err, span)
			logger.Fatal().Err(err).Msg(err.Error())
		}
		logger.Info().
			Str(log.KeyProductID, inserted.ID.String()).
			Msgf("inserted product name=%s", product.Name)
	}
	logger.Info().Msgf("seeded %d products", len(products))
}
