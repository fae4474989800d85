// internal/storefront/api/client.go

// Package api is the storefront's client for the backend cart, user and
// product endpoints. Every response uses the {success, data, message} envelope.
package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/goccy/go-json"
	"github.com/your-org/ecommerce-storefront/internal/config"
	"github.com/your-org/ecommerce-storefront/internal/storefront/model"
)

// ErrUnauthorized is returned for any 401 response
var ErrUnauthorized = errors.New("unauthorized")

// APIError is a non-2xx response other than 401
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed with status %d", e.StatusCode)
	}
	return fmt.Sprintf("request failed with status %d: %s", e.StatusCode, e.Message)
}

// AddItemRequest is the body of the add-line endpoint
type AddItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// UpdateItemRequest is the body of the update-line endpoint
type UpdateItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// RemoveItemRequest identifies the line to remove
type RemoveItemRequest struct {
	ProductID string `json:"productId"`
}

// MergeCartRequest carries the guest lines submitted after login
type MergeCartRequest struct {
	Items []model.Line `json:"items"`
}

// LoginRequest is the body of the login endpoint
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the issued access token
type LoginResponse struct {
	Token     string      `json:"token"`
	ExpiresIn int64       `json:"expiresIn"`
	User      *model.User `json:"user"`
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
}

// Client talks to the storefront backend
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a client from the storefront configuration
func NewClient(cfg *config.Config) *Client {
	return NewClientWithHTTP(cfg.Storefront.APIBaseURL, &http.Client{
		Timeout: cfg.Storefront.HTTPTimeout,
	})
}

// NewClientWithHTTP creates a client with a caller-supplied http.Client
func NewClientWithHTTP(baseURL string, httpClient *http.Client) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// FetchCart returns the authenticated user's cart
func (c *Client) FetchCart(ctx context.Context, token string) (*model.Cart, error) {
	var cart model.Cart
	if err := c.do(ctx, http.MethodGet, "/cart", token, nil, &cart); err != nil {
		return nil, err
	}
	return normalizeCart(&cart), nil
}

// AddItem adds quantity of a product to the authenticated cart
func (c *Client) AddItem(ctx context.Context, token string, req AddItemRequest) (*model.Cart, error) {
	var cart model.Cart
	if err := c.do(ctx, http.MethodPost, "/cart/items", token, req, &cart); err != nil {
		return nil, err
	}
	return normalizeCart(&cart), nil
}

// UpdateItem sets the quantity of a line in the authenticated cart
func (c *Client) UpdateItem(ctx context.Context, token string, req UpdateItemRequest) (*model.Cart, error) {
	var cart model.Cart
	if err := c.do(ctx, http.MethodPut, "/cart/items", token, req, &cart); err != nil {
		return nil, err
	}
	return normalizeCart(&cart), nil
}

// RemoveItem removes a line from the authenticated cart
func (c *Client) RemoveItem(ctx context.Context, token string, req RemoveItemRequest) (*model.Cart, error) {
	var cart model.Cart
	path := "/cart/items/" + url.PathEscape(req.ProductID)
	if err := c.do(ctx, http.MethodDelete, path, token, nil, &cart); err != nil {
		return nil, err
	}
	return normalizeCart(&cart), nil
}

// ClearCart empties the authenticated cart
func (c *Client) ClearCart(ctx context.Context, token string) (*model.Cart, error) {
	var cart model.Cart
	if err := c.do(ctx, http.MethodDelete, "/cart", token, nil, &cart); err != nil {
		return nil, err
	}
	return normalizeCart(&cart), nil
}

// MergeCart submits guest lines into the authenticated cart
func (c *Client) MergeCart(ctx context.Context, token string, req MergeCartRequest) (*model.Cart, error) {
	var cart model.Cart
	if err := c.do(ctx, http.MethodPost, "/cart/merge", token, req, &cart); err != nil {
		return nil, err
	}
	return normalizeCart(&cart), nil
}

// FetchCurrentUser returns the profile behind token
func (c *Client) FetchCurrentUser(ctx context.Context, token string) (*model.User, error) {
	var user model.User
	if err := c.do(ctx, http.MethodGet, "/users/me", token, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Login exchanges credentials for an access token. Bad credentials surface
// as ErrUnauthorized.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	var resp LoginResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", "", req, &resp); err != nil {
		return nil, err
	}
	if resp.Token == "" {
		return nil, errors.New("login response carried no token")
	}
	return &resp, nil
}

// FetchProduct looks a product up by id; no token is needed
func (c *Client) FetchProduct(ctx context.Context, productID string) (*model.Product, error) {
	var product model.Product
	if err := c.do(ctx, http.MethodGet, "/products/"+url.PathEscape(productID), "", nil, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (c *Client) do(ctx context.Context, method, path, token string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if decodeErr == nil {
			apiErr.Message = env.message()
		}
		return apiErr
	}
	if decodeErr != nil {
		return fmt.Errorf("failed to decode response: %w", decodeErr)
	}
	if !env.Success {
		return &APIError{StatusCode: resp.StatusCode, Message: env.message()}
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("failed to decode response data: %w", err)
		}
	}
	return nil
}

func (e envelope) message() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Error
}

func normalizeCart(cart *model.Cart) *model.Cart {
	normalized := model.NewCart(cart.Items)
	return &normalized
}
