package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cartResponse "github.com/okidwi/storefront/cart/pkg/response"
)

func TestAddToCartOptimisticThenConfirmed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			writeEnvelope(w, http.StatusOK, "cart fetched successfully", fixtureCart())
		case http.MethodPost:
			writeEnvelope(w, http.StatusOK, "product added to cart successfully", fixtureCart(fixturePhoneItem(2)))
		}
	}))
	defer server.Close()

	cl := NewClient(server.URL)
	cl.SetToken("token-123")
	cache := NewCartCache(cl)
	require.NoError(t, cache.Refresh(context.Background()))
	require.Empty(t, cache.Cart().Items)

	require.NoError(t, cache.AddToCart(context.Background(), fixturePhoneId, 2))

	cart := cache.Cart()
	require.Len(t, cart.Items, 1)
	assert.Equal(t, int32(2), cart.Items[0].Quantity)
	// The confirmed copy carries the server-resolved product.
	require.NotNil(t, cart.Items[0].Product)
	assert.NoError(t, cache.LastErr())
}

func TestRejectedMutationRollsBackByRefetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			writeEnvelope(w, http.StatusOK, "cart fetched successfully", fixtureCart(fixturePhoneItem(1)))
		case http.MethodPost:
			writeEnvelope(w, http.StatusBadRequest, "insufficient stock", nil)
		}
	}))
	defer server.Close()

	cl := NewClient(server.URL)
	cl.SetToken("token-123")
	cache := NewCartCache(cl)
	require.NoError(t, cache.Refresh(context.Background()))

	err := cache.AddToCart(context.Background(), fixturePhoneId, 100)

	apiErr := &APIError{}
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.ErrorIs(t, cache.LastErr(), err)

	// The optimistic bump is gone, the cache matches the server again.
	cart := cache.Cart()
	require.Len(t, cart.Items, 1)
	assert.Equal(t, int32(1), cart.Items[0].Quantity)
}

func TestSetQuantityDebouncedUpdatesCacheBeforeServerCall(t *testing.T) {
	var puts atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			writeEnvelope(w, http.StatusOK, "cart fetched successfully", fixtureCart(fixturePhoneItem(1)))
		case http.MethodPut:
			puts.Add(1)
			writeEnvelope(w, http.StatusOK, "cart updated successfully", fixtureCart(fixturePhoneItem(9)))
		}
	}))
	defer server.Close()

	cl := NewClient(server.URL)
	cl.SetToken("token-123")
	cache := NewCartCache(cl)
	cache.SetDebounce(time.Hour)
	require.NoError(t, cache.Refresh(context.Background()))

	cache.SetQuantityDebounced(context.Background(), fixturePhoneId, 9)

	cart := cache.Cart()
	require.Len(t, cart.Items, 1)
	assert.Equal(t, int32(9), cart.Items[0].Quantity)
	assert.EqualValues(t, 0, puts.Load())
}

func TestSetQuantityDebouncedCollapsesBurstIntoOneRequest(t *testing.T) {
	var puts atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			writeEnvelope(w, http.StatusOK, "cart fetched successfully", fixtureCart(fixturePhoneItem(1)))
		case http.MethodPut:
			puts.Add(1)
			writeEnvelope(w, http.StatusOK, "cart updated successfully", fixtureCart(fixturePhoneItem(9)))
		}
	}))
	defer server.Close()

	cl := NewClient(server.URL)
	cl.SetToken("token-123")
	cache := NewCartCache(cl)
	cache.SetDebounce(50 * time.Millisecond)
	require.NoError(t, cache.Refresh(context.Background()))

	cache.SetQuantityDebounced(context.Background(), fixturePhoneId, 2)
	cache.SetQuantityDebounced(context.Background(), fixturePhoneId, 5)
	cache.SetQuantityDebounced(context.Background(), fixturePhoneId, 9)

	assert.Eventually(t, func() bool {
		return puts.Load() == 1
	}, 2*time.Second, 10*time.Millisecond)

	assert.Eventually(t, func() bool {
		cart := cache.Cart()
		return len(cart.Items) == 1 && cart.Items[0].Quantity == 9
	}, 2*time.Second, 10*time.Millisecond)
}

func TestTotalsSkipOrphanedItems(t *testing.T) {
	orphan := cartResponse.CartItem{
		CartID:    fixtureCartId,
		ProductID: uuid.New(),
		Quantity:  3,
		Product:   nil,
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, "cart fetched successfully", fixtureCart(fixturePhoneItem(2), orphan))
	}))
	defer server.Close()

	cl := NewClient(server.URL)
	cl.SetToken("token-123")
	cache := NewCartCache(cl)
	require.NoError(t, cache.Refresh(context.Background()))

	assert.EqualValues(t, 2, cache.TotalItems())
	assert.True(t, cache.TotalPrice().Equal(decimal.RequireFromString("1999.98")))
}

func TestUnauthenticatedMutationLeavesCacheUntouched(t *testing.T) {
	var hits atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer server.Close()

	cache := NewCartCache(NewClient(server.URL))

	err := cache.AddToCart(context.Background(), fixturePhoneId, 2)
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	err = cache.UpdateQuantity(context.Background(), fixturePhoneId, 5)
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	err = cache.RemoveFromCart(context.Background(), fixturePhoneId)
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	cache.SetDebounce(time.Millisecond)
	cache.SetQuantityDebounced(context.Background(), fixturePhoneId, 9)
	time.Sleep(50 * time.Millisecond)

	assert.Empty(t, cache.Cart().Items)
	assert.ErrorIs(t, cache.LastErr(), ErrNotAuthenticated)
	assert.EqualValues(t, 0, hits.Load())
}

func TestTotalsAreZeroForEmptyCart(t *testing.T) {
	cache := NewCartCache(NewClient("http://localhost:0"))

	assert.EqualValues(t, 0, cache.TotalItems())
	assert.True(t, cache.TotalPrice().IsZero())
}
