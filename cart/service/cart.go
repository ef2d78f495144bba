package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/okidwi/storefront/cart/pkg/request"
	"github.com/okidwi/storefront/cart/pkg/response"
	inErrors "github.com/okidwi/storefront/internal/errors"
	"github.com/okidwi/storefront/internal/log"
	"github.com/okidwi/storefront/internal/otel"
	"github.com/okidwi/storefront/internal/repository"
)

type CartService struct {
	pool    *pgxpool.Pool
	queries *repository.Queries
}

func NewCartService(pool *pgxpool.Pool, queries *repository.Queries) CartService {
	return CartService{pool: pool, queries: queries}
}

// AddItem merges quantity into an existing item for the same product or
// appends a new one, creating the cart lazily. Stock is checked against the
// requested quantity at mutation time only, it is never reserved.
func (s CartService) AddItem(
	c context.Context,
	userId uuid.UUID,
	param request.AddCartItem,
) (response.Cart, error) {
	c, span := otel.Tracer.Start(c, "CartService AddItem")
	defer span.End()

	quantity := param.QuantityOrDefault()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService AddItem").
		Str(log.KeyUserID, userId.String()).
		Str(log.KeyProductID, param.ProductId.String()).
		Int32(log.KeyQuantity, quantity).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding product").Logger()
	logger.Info().Msg("finding product")
	product, err := s.queries.FindProductById(c, param.ProductId)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = errors.Join(err, inErrors.ErrProductNotFound)
		}
		err = fmt.Errorf("failed finding productId=%s with error=%w", param.ProductId.String(), err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	logger.Info().Msg("found product")

	logger = logger.With().Str(log.KeyProcess, "checking stock").Logger()
	logger.Info().Msg("checking stock")
	if product.Stock < quantity {
		err = fmt.Errorf(
			"stock=%d is less than requested quantity=%d with error=%w",
			product.Stock,
			quantity,
			inErrors.ErrInsufficientStock,
		)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	logger.Info().Msg("checked stock")

	logger = logger.With().Str(log.KeyProcess, "initializing transaction").Logger()
	logger.Info().Msg("initializing transaction")
	tx, err := s.pool.BeginTx(c, pgx.TxOptions{})
	if err != nil {
		err = fmt.Errorf("failed initializing transaction with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	defer func(lg zerolog.Logger) {
		l := lg.With().Str(log.KeyProcess, "rolling back transaction").Logger()
		if err := tx.Rollback(c); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			err = fmt.Errorf("failed rolling back transaction with error=%w", err)
			otel.RecordError(err, span)
			l.Error().Err(err).Msg(err.Error())
		}
	}(logger)
	logger.Info().Msg("initialized transaction")
	qtx := s.queries.WithTx(tx)

	logger = logger.With().Str(log.KeyProcess, "loading or creating cart").Logger()
	logger.Info().Msg("loading or creating cart")
	cart, err := s.lockOrCreateCart(c, qtx, userId)
	if err != nil {
		err = fmt.Errorf("failed loading or creating cart with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	logger = logger.With().Str(log.KeyCartID, cart.ID.String()).Logger()
	logger.Info().Msg("loaded cart")

	logger = logger.With().Str(log.KeyProcess, "merging cart item").Logger()
	logger.Info().Msg("merging cart item")
	item, err := qtx.UpsertCartItem(c, repository.UpsertCartItemParams{
		ID:        uuid.New(),
		CartID:    cart.ID,
		ProductID: param.ProductId,
		Quantity:  quantity,
	})
	if err != nil {
		err = fmt.Errorf("failed merging cart item with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	logger = logger.With().Int32("mergedQuantity", item.Quantity).Logger()
	logger.Info().Msg("merged cart item")

	cartResponse, err := s.resolveCart(c, qtx, userId)
	if err != nil {
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}

	logger = logger.With().Str(log.KeyProcess, "committing transaction").Logger()
	logger.Info().Msg("committing transaction")
	if err := tx.Commit(c); err != nil {
		err = fmt.Errorf("failed committing transaction with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	logger.Info().Msg("committed transaction")

	return cartResponse, nil
}

// UpdateQuantity sets the item's quantity exactly, it is not additive.
func (s CartService) UpdateQuantity(
	c context.Context,
	userId uuid.UUID,
	param request.UpdateCartItem,
) (response.Cart, error) {
	c, span := otel.Tracer.Start(c, "CartService UpdateQuantity")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService UpdateQuantity").
		Str(log.KeyUserID, userId.String()).
		Str(log.KeyProductID, param.ProductId.String()).
		Int32(log.KeyQuantity, param.Quantity).
		Logger()

	if param.Quantity < 1 {
		err := fmt.Errorf("quantity=%d with error=%w", param.Quantity, inErrors.ErrInvalidQuantity)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}

	logger = logger.With().Str(log.KeyProcess, "finding product").Logger()
	logger.Info().Msg("finding product")
	product, err := s.queries.FindProductById(c, param.ProductId)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = errors.Join(err, inErrors.ErrProductNotFound)
		}
		err = fmt.Errorf("failed finding productId=%s with error=%w", param.ProductId.String(), err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	logger.Info().Msg("found product")

	logger = logger.With().Str(log.KeyProcess, "checking stock").Logger()
	logger.Info().Msg("checking stock")
	if product.Stock < param.Quantity {
		err = fmt.Errorf(
			"stock=%d is less than requested quantity=%d with error=%w",
			product.Stock,
			param.Quantity,
			inErrors.ErrInsufficientStock,
		)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	logger.Info().Msg("checked stock")

	logger = logger.With().Str(log.KeyProcess, "initializing transaction").Logger()
	logger.Info().Msg("initializing transaction")
	tx, err := s.pool.BeginTx(c, pgx.TxOptions{})
	if err != nil {
		err = fmt.Errorf("failed initializing transaction with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	defer func(lg zerolog.Logger) {
		l := lg.With().Str(log.KeyProcess, "rolling back transaction").Logger()
		if err := tx.Rollback(c); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			err = fmt.Errorf("failed rolling back transaction with error=%w", err)
			otel.RecordError(err, span)
			l.Error().Err(err).Msg(err.Error())
		}
	}(logger)
	logger.Info().Msg("initialized transaction")
	qtx := s.queries.WithTx(tx)

	logger = logger.With().Str(log.KeyProcess, "locking cart").Logger()
	logger.Info().Msg("locking cart")
	cart, err := qtx.FindCartByUserIdForUpdate(c, userId)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = errors.Join(err, inErrors.ErrCartNotFound)
		}
		err = fmt.Errorf("failed locking cart with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	logger = logger.With().Str(log.KeyCartID, cart.ID.String()).Logger()
	logger.Info().Msg("locked cart")

	logger = logger.With().Str(log.KeyProcess, "updating cart item quantity").Logger()
	logger.Info().Msg("updating cart item quantity")
	_, err = qtx.UpdateCartItemQuantity(c, repository.UpdateCartItemQuantityParams{
		CartID:    cart.ID,
		ProductID: param.ProductId,
		Quantity:  param.Quantity,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = errors.Join(err, inErrors.ErrCartItemNotFound)
		}
		err = fmt.Errorf("failed updating cart item quantity with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	logger.Info().Msg("updated cart item quantity")

	cartResponse, err := s.resolveCart(c, qtx, userId)
	if err != nil {
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}

	logger = logger.With().Str(log.KeyProcess, "committing transaction").Logger()
	logger.Info().Msg("committing transaction")
	if err := tx.Commit(c); err != nil {
		err = fmt.Errorf("failed committing transaction with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	logger.Info().Msg("committed transaction")

	return cartResponse, nil
}

// RemoveItem filters the product out of the cart. Removing a product that was
// never in the cart is not an error, only a missing cart is.
func (s CartService) RemoveItem(
	c context.Context,
	userId uuid.UUID,
	param request.RemoveCartItem,
) (response.Cart, error) {
	c, span := otel.Tracer.Start(c, "CartService RemoveItem")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService RemoveItem").
		Str(log.KeyUserID, userId.String()).
		Str(log.KeyProductID, param.ProductId.String()).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "initializing transaction").Logger()
	logger.Info().Msg("initializing transaction")
	tx, err := s.pool.BeginTx(c, pgx.TxOptions{})
	if err != nil {
		err = fmt.Errorf("failed initializing transaction with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	defer func(lg zerolog.Logger) {
		l := lg.With().Str(log.KeyProcess, "rolling back transaction").Logger()
		if err := tx.Rollback(c); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			err = fmt.Errorf("failed rolling back transaction with error=%w", err)
			otel.RecordError(err, span)
			l.Error().Err(err).Msg(err.Error())
		}
	}(logger)
	logger.Info().Msg("initialized transaction")
	qtx := s.queries.WithTx(tx)

	logger = logger.With().Str(log.KeyProcess, "locking cart").Logger()
	logger.Info().Msg("locking cart")
	cart, err := qtx.FindCartByUserIdForUpdate(c, userId)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = errors.Join(err, inErrors.ErrCartNotFound)
		}
		err = fmt.Errorf("failed locking cart with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	logger = logger.With().Str(log.KeyCartID, cart.ID.String()).Logger()
	logger.Info().Msg("locked cart")

	logger = logger.With().Str(log.KeyProcess, "removing cart item").Logger()
	logger.Info().Msg("removing cart item")
	removed, err := qtx.DeleteCartItem(c, repository.DeleteCartItemParams{
		CartID:    cart.ID,
		ProductID: param.ProductId,
	})
	if err != nil {
		err = fmt.Errorf("failed removing cart item with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	logger.Info().Msgf("removed %d cart item", removed)

	cartResponse, err := s.resolveCart(c, qtx, userId)
	if err != nil {
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}

	logger = logger.With().Str(log.KeyProcess, "committing transaction").Logger()
	logger.Info().Msg("committing transaction")
	if err := tx.Commit(c); err != nil {
		err = fmt.Errorf("failed committing transaction with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	logger.Info().Msg("committed transaction")

	return cartResponse, nil
}

// FetchCart loads the cart, creating an empty one on first fetch, and prunes
// items whose product no longer resolves. The prune is persisted so orphans
// do not reappear on the next read.
func (s CartService) FetchCart(c context.Context, userId uuid.UUID) (response.Cart, error) {
	c, span := otel.Tracer.Start(c, "CartService FetchCart")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService FetchCart").
		Str(log.KeyUserID, userId.String()).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "initializing transaction").Logger()
	logger.Info().Msg("initializing transaction")
	tx, err := s.pool.BeginTx(c, pgx.TxOptions{})
	if err != nil {
		err = fmt.Errorf("failed initializing transaction with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	defer func(lg zerolog.Logger) {
		l := lg.With().Str(log.KeyProcess, "rolling back transaction").Logger()
		if err := tx.Rollback(c); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			err = fmt.Errorf("failed rolling back transaction with error=%w", err)
			otel.RecordError(err, span)
			l.Error().Err(err).Msg(err.Error())
		}
	}(logger)
	logger.Info().Msg("initialized transaction")
	qtx := s.queries.WithTx(tx)

	logger = logger.With().Str(log.KeyProcess, "loading or creating cart").Logger()
	logger.Info().Msg("loading or creating cart")
	cart, err := s.lockOrCreateCart(c, qtx, userId)
	if err != nil {
		err = fmt.Errorf("failed loading or creating cart with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	logger = logger.With().Str(log.KeyCartID, cart.ID.String()).Logger()
	logger.Info().Msg("loaded cart")

	logger = logger.With().Str(log.KeyProcess, "pruning orphaned cart items").Logger()
	logger.Info().Msg("pruning orphaned cart items")
	pruned, err := qtx.DeleteOrphanCartItems(c, cart.ID)
	if err != nil {
		err = fmt.Errorf("failed pruning orphaned cart items with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	if pruned > 0 {
		span.AddEvent(fmt.Sprintf("pruned %d orphaned cart items", pruned))
	}
	logger.Info().Msgf("pruned %d orphaned cart items", pruned)

	cartResponse, err := s.resolveCart(c, qtx, userId)
	if err != nil {
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}

	logger = logger.With().Str(log.KeyProcess, "committing transaction").Logger()
	logger.Info().Msg("committing transaction")
	if err := tx.Commit(c); err != nil {
		err = fmt.Errorf("failed committing transaction with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	logger.Info().Msg("committed transaction")

	return cartResponse, nil
}

// lockOrCreateCart takes the per-cart row lock that serializes concurrent
// mutations of the same user's cart, creating the cart lazily on first use.
func (s CartService) lockOrCreateCart(
	c context.Context,
	qtx *repository.Queries,
	userId uuid.UUID,
) (repository.Cart, error) {
	cart, err := qtx.FindCartByUserIdForUpdate(c, userId)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return repository.Cart{}, err
	}
	return qtx.InsertCart(c, repository.InsertCartParams{ID: uuid.New(), UserID: userId})
}

func (s CartService) resolveCart(
	c context.Context,
	qtx *repository.Queries,
	userId uuid.UUID,
) (response.Cart, error) {
	row, err := qtx.FindCartByUserId(c, userId)
	if err != nil {
		return response.Cart{}, fmt.Errorf("failed finding cart with error=%w", err)
	}
	cartResponse, err := row.Response()
	if err != nil {
		return response.Cart{}, fmt.Errorf("failed mapping cart with error=%w", err)
	}
	return cartResponse, nil
}
