// Package client is a Go consumer for the storefront HTTP API. It keeps the
// bearer token from Login and attaches it to every subsequent request, and
// exposes CartCache for an optimistic local view of the cart.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	cartResponse "github.com/okidwi/storefront/cart/pkg/response"
	productResponse "github.com/okidwi/storefront/product/pkg/response"
	userResponse "github.com/okidwi/storefront/user/pkg/response"
)

// ErrNotAuthenticated is returned locally, without a network round trip, when
// a cart call is made before Login or SetToken.
var ErrNotAuthenticated = errors.New("client is not authenticated, login first")

// APIError is a non-2xx response decoded from the server envelope.
type APIError struct {
	Message    string
	StatusCode int
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error status=%d message=%s", e.StatusCode, e.Message)
}

type envelope struct {
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Success bool            `json:"success"`
}

type Client struct {
	httpClient *http.Client
	baseURL    string

	mu    sync.RWMutex
	token string
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
	}
}

func (cl *Client) SetToken(token string) {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	cl.token = token
}

func (cl *Client) Token() string {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return cl.token
}

func (cl *Client) do(
	c context.Context,
	method, path string,
	payload interface{},
	authenticated bool,
) (json.RawMessage, error) {
	var body *bytes.Buffer
	if payload != nil {
		body = &bytes.Buffer{}
		if err := json.NewEncoder(body).Encode(payload); err != nil {
			return nil, fmt.Errorf("failed encoding request body with error=%w", err)
		}
	}

	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequestWithContext(c, method, cl.baseURL+path, body)
	} else {
		req, err = http.NewRequestWithContext(c, method, cl.baseURL+path, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("failed creating request with error=%w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if authenticated {
		token := cl.Token()
		if token == "" {
			return nil, ErrNotAuthenticated
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := cl.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed sending request with error=%w", err)
	}
	defer res.Body.Close()

	env := envelope{}
	if err := json.NewDecoder(res.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("failed decoding response body with error=%w", err)
	}
	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		return nil, &APIError{StatusCode: res.StatusCode, Message: env.Message}
	}
	return env.Data, nil
}

func (cl *Client) Register(
	c context.Context,
	username, email, password string,
) (userResponse.User, error) {
	payload := map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	}
	data, err := cl.do(c, http.MethodPost, "/users/register", payload, false)
	if err != nil {
		return userResponse.User{}, err
	}
	wrapper := struct {
		User userResponse.User `json:"user"`
	}{}
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return userResponse.User{}, fmt.Errorf("failed decoding user with error=%w", err)
	}
	return wrapper.User, nil
}

// Login authenticates against the server and stores the returned token on the
// client for subsequent calls.
func (cl *Client) Login(c context.Context, email, password string) (string, error) {
	payload := map[string]string{"email": email, "password": password}
	data, err := cl.do(c, http.MethodPost, "/users/login", payload, false)
	if err != nil {
		return "", err
	}
	wrapper := struct {
		Token string `json:"token"`
	}{}
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return "", fmt.Errorf("failed decoding token with error=%w", err)
	}
	cl.SetToken(wrapper.Token)
	return wrapper.Token, nil
}

func (cl *Client) Products(c context.Context) ([]productResponse.Product, error) {
	data, err := cl.do(c, http.MethodGet, "/products", nil, false)
	if err != nil {
		return nil, err
	}
	wrapper := struct {
		Products []productResponse.Product `json:"products"`
	}{}
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return nil, fmt.Errorf("failed decoding products with error=%w", err)
	}
	return wrapper.Products, nil
}

func (cl *Client) Product(
	c context.Context,
	productId uuid.UUID,
) (productResponse.Product, error) {
	data, err := cl.do(c, http.MethodGet, "/products/"+productId.String(), nil, false)
	if err != nil {
		return productResponse.Product{}, err
	}
	wrapper := struct {
		Product productResponse.Product `json:"product"`
	}{}
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return productResponse.Product{}, fmt.Errorf(
			"failed decoding product with error=%w",
			err,
		)
	}
	return wrapper.Product, nil
}

func (cl *Client) Cart(c context.Context) (cartResponse.Cart, error) {
	data, err := cl.do(c, http.MethodGet, "/cart", nil, true)
	if err != nil {
		return cartResponse.Cart{}, err
	}
	return decodeCart(data)
}

func (cl *Client) AddToCart(
	c context.Context,
	productId uuid.UUID,
	quantity int32,
) (cartResponse.Cart, error) {
	payload := map[string]interface{}{
		"productId": productId,
		"quantity":  quantity,
	}
	data, err := cl.do(c, http.MethodPost, "/cart", payload, true)
	if err != nil {
		return cartResponse.Cart{}, err
	}
	return decodeCart(data)
}

func (cl *Client) UpdateQuantity(
	c context.Context,
	productId uuid.UUID,
	quantity int32,
) (cartResponse.Cart, error) {
	payload := map[string]interface{}{"quantity": quantity}
	data, err := cl.do(c, http.MethodPut, "/cart/"+productId.String(), payload, true)
	if err != nil {
		return cartResponse.Cart{}, err
	}
	return decodeCart(data)
}

func (cl *Client) RemoveFromCart(
	c context.Context,
	productId uuid.UUID,
) (cartResponse.Cart, error) {
	data, err := cl.do(c, http.MethodDelete, "/cart/"+productId.String(), nil, true)
	if err != nil {
		return cartResponse.Cart{}, err
	}
	return decodeCart(data)
}

func decodeCart(data json.RawMessage) (cartResponse.Cart, error) {
	cart := cartResponse.Cart{}
	if err := json.Unmarshal(data, &cart); err != nil {
		return cartResponse.Cart{}, fmt.Errorf("failed decoding cart with error=%w", err)
	}
	return cart, nil
}
