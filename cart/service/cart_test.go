package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okidwi/storefront/cart/pkg/request"
	inErrors "github.com/okidwi/storefront/internal/errors"
)

var productSeed = filepath.Join("testdata", "products.seed.sql")

func TestAddItemMergesQuantityForSameProduct(t *testing.T) {
	c := context.Background()
	pool, pgContainer, _, cartService := setup(t)(c, productSeed)
	defer teardown(t)(pool, pgContainer)

	_, err := cartService.AddItem(c, testUserId, request.AddCartItem{
		ProductId: testPhoneId,
		Quantity:  quantity(2),
	})
	require.NoError(t, err)

	cart, err := cartService.AddItem(c, testUserId, request.AddCartItem{
		ProductId: testPhoneId,
		Quantity:  quantity(3),
	})
	require.NoError(t, err)

	require.Len(t, cart.Items, 1)
	assert.Equal(t, testPhoneId, cart.Items[0].ProductID)
	assert.Equal(t, int32(5), cart.Items[0].Quantity)
	require.NotNil(t, cart.Items[0].Product)
	assert.Equal(t, "iPhone 15 Pro", cart.Items[0].Product.Name)
}

func TestAddItemDefaultsQuantityToOne(t *testing.T) {
	c := context.Background()
	pool, pgContainer, _, cartService := setup(t)(c, productSeed)
	defer teardown(t)(pool, pgContainer)

	cart, err := cartService.AddItem(c, testUserId, request.AddCartItem{ProductId: testPhoneId})
	require.NoError(t, err)

	require.Len(t, cart.Items, 1)
	assert.Equal(t, int32(1), cart.Items[0].Quantity)
}

func TestAddItemUnknownProductReturnsNotFound(t *testing.T) {
	c := context.Background()
	pool, pgContainer, _, cartService := setup(t)(c)
	defer teardown(t)(pool, pgContainer)

	_, err := cartService.AddItem(c, testUserId, request.AddCartItem{
		ProductId: testPhoneId,
		Quantity:  quantity(1),
	})
	assert.ErrorIs(t, err, inErrors.ErrProductNotFound)
}

func TestAddItemInsufficientStockLeavesCartUnchanged(t *testing.T) {
	c := context.Background()
	pool, pgContainer, _, cartService := setup(t)(c, productSeed)
	defer teardown(t)(pool, pgContainer)

	_, err := cartService.AddItem(c, testUserId, request.AddCartItem{
		ProductId: testHeadphoneId,
		Quantity:  quantity(2),
	})
	require.NoError(t, err)

	_, err = cartService.AddItem(c, testUserId, request.AddCartItem{
		ProductId: testHeadphoneId,
		Quantity:  quantity(testHeadphoneStock + 1),
	})
	assert.ErrorIs(t, err, inErrors.ErrInsufficientStock)

	cart, err := cartService.FetchCart(c, testUserId)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, int32(2), cart.Items[0].Quantity)
}

func TestUpdateQuantitySetsExactQuantity(t *testing.T) {
	c := context.Background()
	pool, pgContainer, _, cartService := setup(t)(c, productSeed)
	defer teardown(t)(pool, pgContainer)

	_, err := cartService.AddItem(c, testUserId, request.AddCartItem{
		ProductId: testPhoneId,
		Quantity:  quantity(2),
	})
	require.NoError(t, err)

	cart, err := cartService.UpdateQuantity(c, testUserId, request.UpdateCartItem{
		ProductId: testPhoneId,
		Quantity:  7,
	})
	require.NoError(t, err)

	require.Len(t, cart.Items, 1)
	assert.Equal(t, int32(7), cart.Items[0].Quantity)
}

func TestUpdateQuantityWithoutCartReturnsCartNotFound(t *testing.T) {
	c := context.Background()
	pool, pgContainer, _, cartService := setup(t)(c, productSeed)
	defer teardown(t)(pool, pgContainer)

	_, err := cartService.UpdateQuantity(c, testUserId, request.UpdateCartItem{
		ProductId: testPhoneId,
		Quantity:  1,
	})
	assert.ErrorIs(t, err, inErrors.ErrCartNotFound)
}

func TestUpdateQuantityWithoutItemReturnsCartItemNotFound(t *testing.T) {
	c := context.Background()
	pool, pgContainer, _, cartService := setup(t)(c, productSeed)
	defer teardown(t)(pool, pgContainer)

	_, err := cartService.FetchCart(c, testUserId)
	require.NoError(t, err)

	_, err = cartService.UpdateQuantity(c, testUserId, request.UpdateCartItem{
		ProductId: testPhoneId,
		Quantity:  1,
	})
	assert.ErrorIs(t, err, inErrors.ErrCartItemNotFound)
}

func TestRemoveItemIsIdempotent(t *testing.T) {
	c := context.Background()
	pool, pgContainer, _, cartService := setup(t)(c, productSeed)
	defer teardown(t)(pool, pgContainer)

	_, err := cartService.AddItem(c, testUserId, request.AddCartItem{
		ProductId: testPhoneId,
		Quantity:  quantity(1),
	})
	require.NoError(t, err)

	cart, err := cartService.RemoveItem(c, testUserId, request.RemoveCartItem{ProductId: testPhoneId})
	require.NoError(t, err)
	assert.Empty(t, cart.Items)

	cart, err = cartService.RemoveItem(c, testUserId, request.RemoveCartItem{ProductId: testPhoneId})
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
}

func TestRemoveItemWithoutCartReturnsCartNotFound(t *testing.T) {
	c := context.Background()
	pool, pgContainer, _, cartService := setup(t)(c, productSeed)
	defer teardown(t)(pool, pgContainer)

	_, err := cartService.RemoveItem(c, testUserId, request.RemoveCartItem{ProductId: testPhoneId})
	assert.ErrorIs(t, err, inErrors.ErrCartNotFound)
}

func TestFetchCartCreatesEmptyCartLazily(t *testing.T) {
	c := context.Background()
	pool, pgContainer, _, cartService := setup(t)(c)
	defer teardown(t)(pool, pgContainer)

	cart, err := cartService.FetchCart(c, testUserId)
	require.NoError(t, err)
	assert.Equal(t, testUserId, cart.UserID)
	assert.Empty(t, cart.Items)

	again, err := cartService.FetchCart(c, testUserId)
	require.NoError(t, err)
	assert.Equal(t, cart.ID, again.ID)
}

func TestCartLifecycle(t *testing.T) {
	c := context.Background()
	pool, pgContainer, _, cartService := setup(t)(c, productSeed)
	defer teardown(t)(pool, pgContainer)

	cart, err := cartService.FetchCart(c, testUserId)
	require.NoError(t, err)
	require.Empty(t, cart.Items)

	cart, err = cartService.AddItem(c, testUserId, request.AddCartItem{
		ProductId: testPhoneId,
		Quantity:  quantity(2),
	})
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	require.Equal(t, int32(2), cart.Items[0].Quantity)

	cart, err = cartService.AddItem(c, testUserId, request.AddCartItem{
		ProductId: testPhoneId,
		Quantity:  quantity(3),
	})
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	require.Equal(t, int32(5), cart.Items[0].Quantity)

	cart, err = cartService.UpdateQuantity(c, testUserId, request.UpdateCartItem{
		ProductId: testPhoneId,
		Quantity:  4,
	})
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	require.Equal(t, int32(4), cart.Items[0].Quantity)

	cart, err = cartService.RemoveItem(c, testUserId, request.RemoveCartItem{
		ProductId: testPhoneId,
	})
	require.NoError(t, err)
	require.Empty(t, cart.Items)

	cart, err = cartService.FetchCart(c, testUserId)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
}

func TestFetchCartPrunesOrphanedItemsPersistently(t *testing.T) {
	c := context.Background()
	pool, pgContainer, queries, cartService := setup(t)(c, productSeed)
	defer teardown(t)(pool, pgContainer)

	_, err := cartService.AddItem(c, testUserId, request.AddCartItem{
		ProductId: testDiscontinuedId,
		Quantity:  quantity(testDiscontinuedAmount),
	})
	require.NoError(t, err)
	_, err = cartService.AddItem(c, testUserId, request.AddCartItem{
		ProductId: testPhoneId,
		Quantity:  quantity(1),
	})
	require.NoError(t, err)

	deleted, err := queries.DeleteProductById(c, testDiscontinuedId)
	require.NoError(t, err)
	require.EqualValues(t, 1, deleted)

	cart, err := cartService.FetchCart(c, testUserId)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, testPhoneId, cart.Items[0].ProductID)

	// The prune is persisted, not just filtered from this response.
	row, err := queries.FindCartByUserId(c, testUserId)
	require.NoError(t, err)
	persisted, err := row.Response()
	require.NoError(t, err)
	assert.Len(t, persisted.Items, 1)
}
