// internal/storefront/cart/store.go

// Package cart is the storefront cart store. It keeps one in-memory cart in
// sync with either local storage (guest) or the backend (authenticated).
package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/goccy/go-json"
	"github.com/sirupsen/logrus"
	"github.com/your-org/ecommerce-storefront/internal/storefront/api"
	"github.com/your-org/ecommerce-storefront/internal/storefront/model"
	"github.com/your-org/ecommerce-storefront/internal/storefront/notify"
	"github.com/your-org/ecommerce-storefront/internal/storefront/storage"
)

const (
	DefaultGuestCartKey = "guest_cart"
	DefaultTokenKey     = "token"
)

// Backend is the subset of the storefront API the store depends on
type Backend interface {
	FetchCart(ctx context.Context, token string) (*model.Cart, error)
	AddItem(ctx context.Context, token string, req api.AddItemRequest) (*model.Cart, error)
	UpdateItem(ctx context.Context, token string, req api.UpdateItemRequest) (*model.Cart, error)
	RemoveItem(ctx context.Context, token string, req api.RemoveItemRequest) (*model.Cart, error)
	ClearCart(ctx context.Context, token string) (*model.Cart, error)
	MergeCart(ctx context.Context, token string, req api.MergeCartRequest) (*model.Cart, error)
	FetchCurrentUser(ctx context.Context, token string) (*model.User, error)
	FetchProduct(ctx context.Context, productID string) (*model.Product, error)
}

// Dependencies wires a Store to its collaborators
type Dependencies struct {
	Backend      Backend
	Storage      storage.Storage
	Notifier     notify.Notifier
	Logger       *logrus.Logger
	GuestCartKey string
	TokenKey     string
}

// Store owns the cart. All reads return copies; every mutation replaces the
// cart wholesale with totals recomputed from its lines.
type Store struct {
	backend  Backend
	storage  storage.Storage
	notifier notify.Notifier
	logger   *logrus.Logger
	cartKey  string
	tokenKey string

	mu    sync.Mutex
	cart  model.Cart
	user  *model.User
	token string

	// issued counts authenticated calls; applied is the newest one whose
	// response has been written. Older responses are dropped.
	issued  uint64
	applied uint64

	inFlight atomic.Int32
}

// NewStore creates a store with an empty cart; call Init before use
func NewStore(deps Dependencies) *Store {
	s := &Store{
		backend:  deps.Backend,
		storage:  deps.Storage,
		notifier: deps.Notifier,
		logger:   deps.Logger,
		cartKey:  deps.GuestCartKey,
		tokenKey: deps.TokenKey,
		cart:     model.EmptyCart(),
	}
	if s.cartKey == "" {
		s.cartKey = DefaultGuestCartKey
	}
	if s.tokenKey == "" {
		s.tokenKey = DefaultTokenKey
	}
	if s.logger == nil {
		s.logger = logrus.StandardLogger()
	}
	if s.notifier == nil {
		s.notifier = notify.NewLogNotifier(s.logger)
	}
	return s
}

// Init loads the cart for the current auth state: the persisted guest cart
// when no token is stored, otherwise the backend cart and user profile.
func (s *Store) Init(ctx context.Context) error {
	token, ok, err := s.storage.Get(ctx, s.tokenKey)
	if err != nil {
		return fmt.Errorf("failed to read auth token: %w", err)
	}

	if !ok || token == "" {
		cart := s.loadGuestCart(ctx)
		s.mu.Lock()
		s.token = ""
		s.user = nil
		s.cart = cart
		s.mu.Unlock()
		return nil
	}

	s.mu.Lock()
	s.token = token
	s.mu.Unlock()

	return s.Refresh(ctx)
}

// Close drops in-memory state and discards any response still in flight.
// Persisted storage is left untouched.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
}

// Refresh replaces local state with the backend cart and user profile
func (s *Store) Refresh(ctx context.Context) error {
	s.mu.Lock()
	token := s.token
	s.issued++
	seq := s.issued
	s.mu.Unlock()

	if token == "" {
		return nil
	}

	s.begin()
	defer s.end()

	cart, err := s.backend.FetchCart(ctx, token)
	if err != nil {
		return s.remoteFailure(ctx, "fetch cart", "Failed to load cart", err)
	}
	user, err := s.backend.FetchCurrentUser(ctx, token)
	if err != nil {
		return s.remoteFailure(ctx, "fetch user", "Failed to load your profile", err)
	}

	s.mu.Lock()
	s.applyLocked(seq, *cart)
	// The profile is not ordered against cart mutations, only against the session.
	if s.token == token {
		s.user = user
	}
	s.mu.Unlock()
	return nil
}

// Login stores the token, merges any guest cart into the account and loads
// the authenticated cart.
func (s *Store) Login(ctx context.Context, token string) error {
	if err := s.storage.Set(ctx, s.tokenKey, token); err != nil {
		return fmt.Errorf("failed to persist auth token: %w", err)
	}

	s.mu.Lock()
	s.token = token
	s.mu.Unlock()

	s.MergeLocalCart(ctx, token)
	return s.Refresh(ctx)
}

// Logout forgets the token, user and cart, including the guest entry
func (s *Store) Logout(ctx context.Context) {
	s.mu.Lock()
	s.resetLocked()
	s.mu.Unlock()

	s.removeKey(ctx, s.tokenKey)
	s.removeKey(ctx, s.cartKey)
}

// Cart returns a snapshot of the current cart
func (s *Store) Cart() model.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Clone()
}

// Count returns the total quantity across all lines
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.TotalItems
}

// User returns the current user, or nil for guests
func (s *Store) User() *model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// IsAuthenticated reports whether the store is backed by the server cart
func (s *Store) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token != ""
}

// Loading reports whether a backend call is in flight
func (s *Store) Loading() bool {
	return s.inFlight.Load() > 0
}

func (s *Store) begin() { s.inFlight.Add(1) }
func (s *Store) end()   { s.inFlight.Add(-1) }

// authToken returns the token when authenticated, or "" in guest mode
func (s *Store) authToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// applyLocked writes a backend cart unless a newer response already landed
func (s *Store) applyLocked(seq uint64, cart model.Cart) bool {
	if seq <= s.applied {
		s.logger.WithFields(logrus.Fields{
			"seq":     seq,
			"applied": s.applied,
		}).Debug("Dropping stale cart response")
		return false
	}
	s.applied = seq
	s.cart = cart.Clone()
	return true
}

func (s *Store) resetLocked() {
	s.token = ""
	s.user = nil
	s.cart = model.EmptyCart()
	s.issued++
	s.applied = s.issued
}

// remote runs one authenticated mutation and applies its response
func (s *Store) remote(ctx context.Context, op, fallback string, call func(token string) (*model.Cart, error)) error {
	s.mu.Lock()
	token := s.token
	s.issued++
	seq := s.issued
	s.mu.Unlock()

	s.begin()
	defer s.end()

	cart, err := call(token)
	if err != nil {
		return s.remoteFailure(ctx, op, fallback, err)
	}

	s.mu.Lock()
	s.applyLocked(seq, *cart)
	s.mu.Unlock()
	return nil
}

// remoteFailure turns a backend error into the store's error taxonomy and
// emits the single notification for it.
func (s *Store) remoteFailure(ctx context.Context, op, fallback string, err error) error {
	if errors.Is(err, api.ErrUnauthorized) {
		s.logger.WithField("op", op).Warn("Backend rejected token, logging out")
		s.Logout(ctx)
		s.notifier.Notify(notify.Error, "Your session has expired. Please log in again.")
		return fmt.Errorf("%s: %w", op, ErrUnauthorized)
	}

	message := fallback
	var apiErr *api.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		message = apiErr.Message
	}

	s.logger.WithError(err).WithField("op", op).Error("Cart operation failed")
	s.notifier.Notify(notify.Error, message)
	return &RemoteError{Op: op, Message: message, Err: err}
}

func (s *Store) fail(err error, message string) error {
	s.notifier.Notify(notify.Error, message)
	return err
}

func (s *Store) removeKey(ctx context.Context, key string) {
	if err := s.storage.Remove(ctx, key); err != nil {
		s.logger.WithError(err).WithField("key", key).Warn("Failed to remove storage entry")
	}
}

// decodeCart parses a persisted cart blob
func decodeCart(raw string) (model.Cart, error) {
	var cart model.Cart
	if err := json.Unmarshal([]byte(raw), &cart); err != nil {
		return model.Cart{}, err
	}
	seen := make(map[string]bool, len(cart.Items))
	for _, line := range cart.Items {
		if line.ProductID == "" || line.Quantity < 1 || line.Price < 0 {
			return model.Cart{}, fmt.Errorf("invalid line %+v", line)
		}
		if seen[line.ProductID] {
			return model.Cart{}, fmt.Errorf("duplicate line for %s", line.ProductID)
		}
		seen[line.ProductID] = true
	}
	return model.NewCart(cart.Items), nil
}
