package client

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	cartResponse "github.com/okidwi/storefront/cart/pkg/response"
)

const defaultDebounce = 300 * time.Millisecond

// CartCache keeps a local copy of the user's cart and applies mutations to it
// optimistically, before the server has confirmed them. On a successful call
// the local copy is replaced with the server's cart; on a failed call the
// local copy is thrown away and refetched so it never drifts from the server.
type CartCache struct {
	client   *Client
	debounce time.Duration

	mu      sync.Mutex
	cart    cartResponse.Cart
	lastErr error
	timers  map[uuid.UUID]*time.Timer
}

func NewCartCache(client *Client) *CartCache {
	return &CartCache{
		client:   client,
		debounce: defaultDebounce,
		timers:   map[uuid.UUID]*time.Timer{},
	}
}

// SetDebounce overrides the delay used by SetQuantityDebounced.
func (cc *CartCache) SetDebounce(d time.Duration) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.debounce = d
}

// Cart returns a copy of the cached cart. Call Refresh first to populate it.
func (cc *CartCache) Cart() cartResponse.Cart {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.snapshot()
}

// LastErr returns the error from the most recent server call, nil when it
// succeeded. Debounced flushes report their failures here.
func (cc *CartCache) LastErr() error {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.lastErr
}

func (cc *CartCache) Refresh(c context.Context) error {
	cart, err := cc.client.Cart(c)
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.lastErr = err
	if err != nil {
		return err
	}
	cc.cart = cart
	return nil
}

// AddToCart shows the item in the cached cart immediately, then confirms with
// the server. A rejected call, insufficient stock for example, rolls the
// cache back by refetching. Without a token it fails before touching the
// cache, no phantom item is ever shown.
func (cc *CartCache) AddToCart(c context.Context, productId uuid.UUID, quantity int32) error {
	if err := cc.requireToken(); err != nil {
		return err
	}
	cc.mu.Lock()
	found := false
	for i := range cc.cart.Items {
		if cc.cart.Items[i].ProductID == productId {
			cc.cart.Items[i].Quantity += quantity
			found = true
			break
		}
	}
	if !found {
		cc.cart.Items = append(cc.cart.Items, cartResponse.CartItem{
			ProductID: productId,
			CartID:    cc.cart.ID,
			Quantity:  quantity,
		})
	}
	cc.mu.Unlock()

	cart, err := cc.client.AddToCart(c, productId, quantity)
	return cc.reconcile(c, cart, err)
}

// UpdateQuantity sets the cached quantity immediately, then confirms with the
// server.
func (cc *CartCache) UpdateQuantity(
	c context.Context,
	productId uuid.UUID,
	quantity int32,
) error {
	if err := cc.requireToken(); err != nil {
		return err
	}
	cc.applyQuantity(productId, quantity)
	cart, err := cc.client.UpdateQuantity(c, productId, quantity)
	return cc.reconcile(c, cart, err)
}

// SetQuantityDebounced updates the cache immediately but delays the server
// call, collapsing a burst of changes to the same product into one request.
// Only the last quantity in the burst is sent.
func (cc *CartCache) SetQuantityDebounced(c context.Context, productId uuid.UUID, quantity int32) {
	if err := cc.requireToken(); err != nil {
		return
	}
	cc.applyQuantity(productId, quantity)

	cc.mu.Lock()
	defer cc.mu.Unlock()
	if timer, ok := cc.timers[productId]; ok {
		timer.Stop()
	}
	cc.timers[productId] = time.AfterFunc(cc.debounce, func() {
		cc.mu.Lock()
		delete(cc.timers, productId)
		cc.mu.Unlock()

		cart, err := cc.client.UpdateQuantity(c, productId, quantity)
		_ = cc.reconcile(c, cart, err)
	})
}

// RemoveFromCart drops the item from the cached cart immediately, then
// confirms with the server.
func (cc *CartCache) RemoveFromCart(c context.Context, productId uuid.UUID) error {
	if err := cc.requireToken(); err != nil {
		return err
	}
	cc.mu.Lock()
	items := cc.cart.Items[:0]
	for _, item := range cc.cart.Items {
		if item.ProductID != productId {
			items = append(items, item)
		}
	}
	cc.cart.Items = items
	cc.mu.Unlock()

	cart, err := cc.client.RemoveFromCart(c, productId)
	return cc.reconcile(c, cart, err)
}

// TotalItems sums the quantities of the cached items. Items whose product is
// no longer resolvable are excluded, matching TotalPrice.
func (cc *CartCache) TotalItems() int32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	var total int32
	for _, item := range cc.cart.Items {
		if item.Product == nil {
			continue
		}
		total += item.Quantity
	}
	return total
}

// TotalPrice sums price times quantity over the cached items. Items whose
// product is no longer resolvable contribute nothing.
func (cc *CartCache) TotalPrice() decimal.Decimal {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	total := decimal.Zero
	for _, item := range cc.cart.Items {
		if item.Product == nil {
			continue
		}
		total = total.Add(item.Product.Price.Mul(decimal.NewFromInt32(item.Quantity)))
	}
	return total
}

// requireToken fails a mutation before the optimistic update is applied, so
// an unauthenticated call never leaves a phantom change in the cache.
func (cc *CartCache) requireToken() error {
	if cc.client.Token() == "" {
		cc.mu.Lock()
		defer cc.mu.Unlock()
		cc.lastErr = ErrNotAuthenticated
		return ErrNotAuthenticated
	}
	return nil
}

func (cc *CartCache) applyQuantity(productId uuid.UUID, quantity int32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	for i := range cc.cart.Items {
		if cc.cart.Items[i].ProductID == productId {
			cc.cart.Items[i].Quantity = quantity
			return
		}
	}
}

// reconcile replaces the cache with the server's cart on success and
// refetches it on failure so the optimistic mutation does not linger.
func (cc *CartCache) reconcile(c context.Context, cart cartResponse.Cart, err error) error {
	if err != nil {
		refetched, refetchErr := cc.client.Cart(c)
		cc.mu.Lock()
		defer cc.mu.Unlock()
		cc.lastErr = err
		if refetchErr == nil {
			cc.cart = refetched
		}
		return err
	}
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.lastErr = nil
	cc.cart = cart
	return nil
}

func (cc *CartCache) snapshot() cartResponse.Cart {
	cart := cc.cart
	cart.Items = make([]cartResponse.CartItem, len(cc.cart.Items))
	copy(cart.Items, cc.cart.Items)
	return cart
}
