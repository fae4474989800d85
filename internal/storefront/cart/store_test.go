package cart

import (
	"context"
	"errors"
	"io"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/ecommerce-storefront/internal/storefront/api"
	"github.com/your-org/ecommerce-storefront/internal/storefront/model"
	"github.com/your-org/ecommerce-storefront/internal/storefront/notify"
	"github.com/your-org/ecommerce-storefront/internal/storefront/storage"
)

// fakeBackend keeps a server-side cart per token and records calls
type fakeBackend struct {
	mu       sync.Mutex
	carts    map[string][]model.Line
	products map[string]model.Product
	users    map[string]model.User
	err      error
	merged   [][]model.Line
	calls    []string
	// gate, when set, blocks AddItem until a value is received
	gate chan struct{}
	// fetchGate does the same for FetchCart
	fetchGate chan struct{}
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		carts:    make(map[string][]model.Line),
		products: make(map[string]model.Product),
		users:    map[string]model.User{"tok": {ID: "U1", Name: "Asha", Email: "asha@example.com"}},
	}
}

func (f *fakeBackend) record(call string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	return f.err
}

func (f *fakeBackend) snapshot(token string) *model.Cart {
	f.mu.Lock()
	defer f.mu.Unlock()
	cart := model.NewCart(f.carts[token])
	return &cart
}

func (f *fakeBackend) FetchCart(_ context.Context, token string) (*model.Cart, error) {
	if f.fetchGate != nil {
		<-f.fetchGate
	}
	if err := f.record("fetch"); err != nil {
		return nil, err
	}
	return f.snapshot(token), nil
}

func (f *fakeBackend) AddItem(_ context.Context, token string, req api.AddItemRequest) (*model.Cart, error) {
	if f.gate != nil {
		<-f.gate
	}
	if err := f.record("add"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	lines := f.carts[token]
	found := false
	for i := range lines {
		if lines[i].ProductID == req.ProductID {
			lines[i].Quantity += req.Quantity
			found = true
		}
	}
	if !found {
		p := f.products[req.ProductID]
		lines = append(lines, model.Line{ProductID: req.ProductID, Title: p.Title, Price: p.Price, Quantity: req.Quantity, Stock: p.Stock})
	}
	f.carts[token] = lines
	f.mu.Unlock()
	return f.snapshot(token), nil
}

func (f *fakeBackend) UpdateItem(_ context.Context, token string, req api.UpdateItemRequest) (*model.Cart, error) {
	if err := f.record("update"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	for i := range f.carts[token] {
		if f.carts[token][i].ProductID == req.ProductID {
			f.carts[token][i].Quantity = req.Quantity
		}
	}
	f.mu.Unlock()
	return f.snapshot(token), nil
}

func (f *fakeBackend) RemoveItem(_ context.Context, token string, req api.RemoveItemRequest) (*model.Cart, error) {
	if err := f.record("remove"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	var kept []model.Line
	for _, line := range f.carts[token] {
		if line.ProductID != req.ProductID {
			kept = append(kept, line)
		}
	}
	f.carts[token] = kept
	f.mu.Unlock()
	return f.snapshot(token), nil
}

func (f *fakeBackend) ClearCart(_ context.Context, token string) (*model.Cart, error) {
	if err := f.record("clear"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	delete(f.carts, token)
	f.mu.Unlock()
	return f.snapshot(token), nil
}

func (f *fakeBackend) MergeCart(_ context.Context, token string, req api.MergeCartRequest) (*model.Cart, error) {
	if err := f.record("merge"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.merged = append(f.merged, req.Items)
	f.carts[token] = append(f.carts[token], req.Items...)
	f.mu.Unlock()
	return f.snapshot(token), nil
}

func (f *fakeBackend) FetchCurrentUser(_ context.Context, token string) (*model.User, error) {
	if err := f.record("user"); err != nil {
		return nil, err
	}
	u := f.users[token]
	return &u, nil
}

func (f *fakeBackend) FetchProduct(_ context.Context, productID string) (*model.Product, error) {
	f.record("product")
	p, ok := f.products[productID]
	if !ok {
		return nil, &api.APIError{StatusCode: 404, Message: "Product not found"}
	}
	return &p, nil
}

type fixture struct {
	store    *Store
	backend  *fakeBackend
	storage  *storage.MemoryStorage
	recorder *notify.Recorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	f := &fixture{
		backend:  newFakeBackend(),
		storage:  storage.NewMemoryStorage(),
		recorder: &notify.Recorder{},
	}
	f.store = NewStore(Dependencies{
		Backend:  f.backend,
		Storage:  f.storage,
		Notifier: f.recorder,
		Logger:   logger,
	})
	return f
}

func (f *fixture) init(t *testing.T) {
	t.Helper()
	if err := f.store.Init(context.Background()); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
}

func honey() *model.ProductDetails {
	return &model.ProductDetails{Title: "Organic Honey", Price: 45000, Image: "honey.jpg", Stock: 10}
}

func assertTotals(t *testing.T, cart model.Cart) {
	t.Helper()
	items, price := 0, int64(0)
	for _, line := range cart.Items {
		items += line.Quantity
		price += line.Price * int64(line.Quantity)
	}
	if cart.TotalItems != items || cart.TotalPrice != price {
		t.Errorf("totals %d/%d drifted from lines %d/%d", cart.TotalItems, cart.TotalPrice, items, price)
	}
}

func TestGuestAddMergesSameProduct(t *testing.T) {
	f := newFixture(t)
	f.init(t)
	ctx := context.Background()

	for _, qty := range []int{1, 2, 3} {
		if err := f.store.AddToCart(ctx, "P1", qty, honey()); err != nil {
			t.Fatalf("AddToCart(%d) error = %v", qty, err)
		}
		assertTotals(t, f.store.Cart())
	}

	cart := f.store.Cart()
	if len(cart.Items) != 1 {
		t.Fatalf("len(items) = %d, want 1", len(cart.Items))
	}
	if cart.Items[0].Quantity != 6 {
		t.Errorf("quantity = %d, want 6", cart.Items[0].Quantity)
	}
	if cart.TotalPrice != 6*45000 {
		t.Errorf("TotalPrice = %d", cart.TotalPrice)
	}
	if f.store.Count() != 6 {
		t.Errorf("Count() = %d", f.store.Count())
	}
}

func TestGuestAddDefaultsToOneUnit(t *testing.T) {
	f := newFixture(t)
	f.init(t)

	if err := f.store.AddToCart(context.Background(), "P1", 0, honey()); err != nil {
		t.Fatalf("AddToCart() error = %v", err)
	}
	if got := f.store.Cart().Items[0].Quantity; got != 1 {
		t.Errorf("quantity = %d, want 1", got)
	}
}

func TestGuestAddRejectsOverStock(t *testing.T) {
	f := newFixture(t)
	f.init(t)
	ctx := context.Background()

	details := honey()
	details.Stock = 3
	if err := f.store.AddToCart(ctx, "P1", 2, details); err != nil {
		t.Fatalf("AddToCart() error = %v", err)
	}
	f.recorder.Reset()

	err := f.store.AddToCart(ctx, "P1", 2, details)
	var stockErr *StockError
	if !errors.As(err, &stockErr) || !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("err = %v, want StockError", err)
	}
	if stockErr.Available != 3 {
		t.Errorf("Available = %d, want 3", stockErr.Available)
	}
	if got := f.store.Cart().Items[0].Quantity; got != 2 {
		t.Errorf("quantity = %d, want unchanged 2", got)
	}
	if msgs := f.recorder.Messages(); len(msgs) != 1 || msgs[0].Level != notify.Error {
		t.Errorf("messages = %v, want one error", msgs)
	}
}

func TestGuestAddLooksUpMissingDetails(t *testing.T) {
	f := newFixture(t)
	f.backend.products["P9"] = model.Product{
		ID: "P9", Title: "Ghee", Price: 90000, FinalPrice: 80000,
		Images: []model.Image{{URL: "ghee.jpg"}}, Stock: 5,
	}
	f.init(t)

	if err := f.store.AddToCart(context.Background(), "P9", 1, nil); err != nil {
		t.Fatalf("AddToCart() error = %v", err)
	}

	want := model.Line{ProductID: "P9", Title: "Ghee", Image: "ghee.jpg", Price: 80000, Quantity: 1, Stock: 5}
	if got := f.store.Cart().Items[0]; got != want {
		t.Errorf("line = %+v, want %+v", got, want)
	}
}

func TestGuestAddUnknownProduct(t *testing.T) {
	f := newFixture(t)
	f.init(t)

	err := f.store.AddToCart(context.Background(), "nope", 1, nil)
	if !errors.Is(err, ErrProductUnavailable) {
		t.Fatalf("err = %v, want ErrProductUnavailable", err)
	}
	if len(f.store.Cart().Items) != 0 {
		t.Errorf("cart mutated on failure")
	}
	if msgs := f.recorder.Messages(); len(msgs) != 1 || msgs[0].Level != notify.Error {
		t.Errorf("messages = %v", msgs)
	}
}

func TestGuestUpdateQuantityStockBound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.storage.Set(ctx, DefaultGuestCartKey, `{"items":[{"productId":"P1","title":"Honey","price":100,"quantity":3,"stock":3}]}`)
	f.init(t)

	err := f.store.UpdateQuantity(ctx, "P1", 4)
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("err = %v, want ErrInsufficientStock", err)
	}
	if got := f.store.Cart().Items[0].Quantity; got != 3 {
		t.Errorf("quantity = %d, want 3", got)
	}
}

func TestGuestUpdateQuantityNotices(t *testing.T) {
	f := newFixture(t)
	f.init(t)
	ctx := context.Background()

	f.store.AddToCart(ctx, "P1", 2, honey())
	f.recorder.Reset()

	if err := f.store.UpdateQuantity(ctx, "P1", 1); err != nil {
		t.Fatalf("decrease error = %v", err)
	}
	if len(f.recorder.Messages()) != 0 {
		t.Errorf("decrease should be silent, got %v", f.recorder.Messages())
	}

	if err := f.store.UpdateQuantity(ctx, "P1", 5); err != nil {
		t.Fatalf("increase error = %v", err)
	}
	if msgs := f.recorder.Messages(); len(msgs) != 1 || msgs[0].Level != notify.Info {
		t.Errorf("increase messages = %v", msgs)
	}
	assertTotals(t, f.store.Cart())

	if err := f.store.UpdateQuantity(ctx, "P2", 1); !errors.Is(err, ErrItemNotFound) {
		t.Errorf("err = %v, want ErrItemNotFound", err)
	}
	if err := f.store.UpdateQuantity(ctx, "P1", 0); !errors.Is(err, ErrInvalidQuantity) {
		t.Errorf("err = %v, want ErrInvalidQuantity", err)
	}
}

func TestGuestAddThenRemove(t *testing.T) {
	f := newFixture(t)
	f.init(t)
	ctx := context.Background()

	if err := f.store.AddToCart(ctx, "P1", 2, honey()); err != nil {
		t.Fatalf("AddToCart() error = %v", err)
	}
	if err := f.store.RemoveFromCart(ctx, "P1"); err != nil {
		t.Fatalf("RemoveFromCart() error = %v", err)
	}

	cart := f.store.Cart()
	if len(cart.Items) != 0 || cart.TotalItems != 0 || cart.TotalPrice != 0 {
		t.Errorf("cart = %+v, want empty", cart)
	}
	msgs := f.recorder.Messages()
	if last := msgs[len(msgs)-1]; last.Level != notify.Success || last.Text != "Removed from cart" {
		t.Errorf("last message = %+v", last)
	}
}

func TestGuestPersistenceRoundTrip(t *testing.T) {
	f := newFixture(t)
	f.init(t)
	ctx := context.Background()

	f.store.AddToCart(ctx, "P1", 2, honey())
	f.store.AddToCart(ctx, "P2", 1, &model.ProductDetails{Title: "Jam", Price: 12000, Stock: 4})
	before := f.store.Cart()

	reloaded := NewStore(Dependencies{Backend: f.backend, Storage: f.storage, Notifier: f.recorder, Logger: f.store.logger})
	if err := reloaded.Init(ctx); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if after := reloaded.Cart(); !reflect.DeepEqual(before, after) {
		t.Errorf("reloaded cart = %+v, want %+v", after, before)
	}
}

func TestCorruptGuestCartIsDiscarded(t *testing.T) {
	for _, raw := range []string{
		"{not json",
		`{"items":[{"productId":"","quantity":1}]}`,
		`{"items":[{"productId":"P1","quantity":1},{"productId":"P1","quantity":2}]}`,
		`[]`,
	} {
		f := newFixture(t)
		ctx := context.Background()
		f.storage.Set(ctx, DefaultGuestCartKey, raw)

		if err := f.store.Init(ctx); err != nil {
			t.Fatalf("Init(%q) error = %v", raw, err)
		}
		if cart := f.store.Cart(); len(cart.Items) != 0 || cart.TotalItems != 0 {
			t.Errorf("Init(%q) cart = %+v, want empty", raw, cart)
		}
		if _, ok, _ := f.storage.Get(ctx, DefaultGuestCartKey); ok {
			t.Errorf("Init(%q) left corrupt entry in storage", raw)
		}
		if len(f.recorder.Messages()) != 0 {
			t.Errorf("Init(%q) should not notify", raw)
		}
	}
}

func TestGuestClearCart(t *testing.T) {
	f := newFixture(t)
	f.init(t)
	ctx := context.Background()

	f.store.AddToCart(ctx, "P1", 1, honey())
	if err := f.store.ClearCart(ctx); err != nil {
		t.Fatalf("ClearCart() error = %v", err)
	}
	if len(f.store.Cart().Items) != 0 {
		t.Errorf("cart not cleared")
	}
	if _, ok, _ := f.storage.Get(ctx, DefaultGuestCartKey); ok {
		t.Errorf("guest entry still stored")
	}
}

func TestMergeLocalCartRunsOnce(t *testing.T) {
	f := newFixture(t)
	f.init(t)
	ctx := context.Background()

	f.store.AddToCart(ctx, "P1", 2, honey())

	f.store.MergeLocalCart(ctx, "tok")
	f.store.MergeLocalCart(ctx, "tok")

	if len(f.backend.merged) != 1 {
		t.Fatalf("merge calls = %d, want 1", len(f.backend.merged))
	}
	if got := f.backend.merged[0]; len(got) != 1 || got[0].ProductID != "P1" || got[0].Quantity != 2 {
		t.Errorf("merged items = %+v", got)
	}
	if _, ok, _ := f.storage.Get(ctx, DefaultGuestCartKey); ok {
		t.Errorf("guest entry survived merge")
	}
	if cart := f.store.Cart(); len(cart.Items) != 1 || cart.TotalItems != 2 {
		t.Errorf("cart after merge = %+v", cart)
	}
}

func TestMergeFailureIsNotBlocking(t *testing.T) {
	f := newFixture(t)
	f.init(t)
	ctx := context.Background()

	f.store.AddToCart(ctx, "P1", 1, honey())
	f.recorder.Reset()
	f.backend.err = &api.APIError{StatusCode: 500}

	f.store.MergeLocalCart(ctx, "tok")

	if _, ok, _ := f.storage.Get(ctx, DefaultGuestCartKey); ok {
		t.Errorf("guest entry must be removed even when merge fails")
	}
	if len(f.recorder.Messages()) != 0 {
		t.Errorf("merge failure should only be logged, got %v", f.recorder.Messages())
	}
}

func TestLoginMergesAndLoadsServerCart(t *testing.T) {
	f := newFixture(t)
	f.init(t)
	ctx := context.Background()
	f.backend.carts["tok"] = []model.Line{{ProductID: "P5", Title: "Tea", Price: 3000, Quantity: 1, Stock: 9}}

	f.store.AddToCart(ctx, "P1", 2, honey())
	if err := f.store.Login(ctx, "tok"); err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	if !f.store.IsAuthenticated() {
		t.Fatalf("store should be authenticated")
	}
	if u := f.store.User(); u == nil || u.ID != "U1" {
		t.Errorf("User() = %+v", u)
	}
	cart := f.store.Cart()
	if len(cart.Items) != 2 || cart.TotalItems != 3 {
		t.Errorf("cart = %+v", cart)
	}
	if token, _, _ := f.storage.Get(ctx, DefaultTokenKey); token != "tok" {
		t.Errorf("stored token = %q", token)
	}
}

func TestAuthenticatedMutationsUseBackend(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.storage.Set(ctx, DefaultTokenKey, "tok")
	f.backend.products["P1"] = model.Product{ID: "P1", Title: "Honey", Price: 45000, Stock: 10}
	f.init(t)

	if err := f.store.AddToCart(ctx, "P1", 2, nil); err != nil {
		t.Fatalf("AddToCart() error = %v", err)
	}
	if err := f.store.UpdateQuantity(ctx, "P1", 5); err != nil {
		t.Fatalf("UpdateQuantity() error = %v", err)
	}
	cart := f.store.Cart()
	if cart.TotalItems != 5 || cart.TotalPrice != 5*45000 {
		t.Errorf("cart = %+v", cart)
	}

	if err := f.store.RemoveFromCart(ctx, "P1"); err != nil {
		t.Fatalf("RemoveFromCart() error = %v", err)
	}
	if err := f.store.ClearCart(ctx); err != nil {
		t.Fatalf("ClearCart() error = %v", err)
	}

	want := []string{"fetch", "user", "add", "update", "remove", "clear"}
	if !reflect.DeepEqual(f.backend.calls, want) {
		t.Errorf("calls = %v, want %v", f.backend.calls, want)
	}
	if _, ok, _ := f.storage.Get(ctx, DefaultGuestCartKey); ok {
		t.Errorf("authenticated mutations must not write the guest entry")
	}
}

func TestAuthenticatedFailureSurfacesServerMessage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.storage.Set(ctx, DefaultTokenKey, "tok")
	f.init(t)
	f.recorder.Reset()

	f.backend.err = &api.APIError{StatusCode: 400, Message: "Only 1 left"}
	err := f.store.AddToCart(ctx, "P1", 2, nil)
	var remoteErr *RemoteError
	if !errors.As(err, &remoteErr) || !errors.Is(err, ErrRemoteOperationFailed) {
		t.Fatalf("err = %v, want RemoteError", err)
	}
	if remoteErr.Message != "Only 1 left" {
		t.Errorf("Message = %q", remoteErr.Message)
	}

	f.backend.err = &api.APIError{StatusCode: 500}
	err = f.store.AddToCart(ctx, "P1", 2, nil)
	if !errors.As(err, &remoteErr) || remoteErr.Message != "Failed to add item to cart" {
		t.Errorf("err = %v, want default message", err)
	}

	if msgs := f.recorder.Messages(); len(msgs) != 2 {
		t.Errorf("messages = %v, want exactly one per failure", msgs)
	}
	if f.store.Loading() {
		t.Errorf("Loading() stuck after failures")
	}
}

func TestUnauthorizedForcesLogout(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.storage.Set(ctx, DefaultTokenKey, "tok")
	f.backend.carts["tok"] = []model.Line{{ProductID: "P1", Price: 100, Quantity: 1}}
	f.init(t)

	f.backend.err = api.ErrUnauthorized
	err := f.store.UpdateQuantity(ctx, "P1", 2)
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}
	if f.store.IsAuthenticated() || f.store.User() != nil {
		t.Errorf("store still authenticated after 401")
	}
	if len(f.store.Cart().Items) != 0 {
		t.Errorf("cart not reset after 401")
	}
	if _, ok, _ := f.storage.Get(ctx, DefaultTokenKey); ok {
		t.Errorf("token not cleared after 401")
	}
}

func TestInitWithExpiredToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.storage.Set(ctx, DefaultTokenKey, "expired")
	f.backend.err = api.ErrUnauthorized

	if err := f.store.Init(ctx); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("Init() error = %v, want ErrUnauthorized", err)
	}
	if f.store.IsAuthenticated() {
		t.Errorf("store authenticated with rejected token")
	}
}

func TestLogoutResetsEverything(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.storage.Set(ctx, DefaultTokenKey, "tok")
	f.backend.carts["tok"] = []model.Line{{ProductID: "P1", Price: 100, Quantity: 1}}
	f.init(t)

	f.store.Logout(ctx)

	if f.store.IsAuthenticated() || len(f.store.Cart().Items) != 0 || f.store.User() != nil {
		t.Errorf("state survived logout")
	}
	if _, ok, _ := f.storage.Get(ctx, DefaultTokenKey); ok {
		t.Errorf("token survived logout")
	}
}

func TestStaleResponseIsDropped(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.storage.Set(ctx, DefaultTokenKey, "tok")
	f.backend.products["P1"] = model.Product{ID: "P1", Title: "Honey", Price: 100, Stock: 50}
	f.init(t)

	// First add blocks inside the backend; a newer update lands meanwhile.
	f.backend.gate = make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- f.store.AddToCart(ctx, "P1", 1, nil)
	}()

	waitFor(t, func() bool { return f.store.Loading() })

	f.store.mu.Lock()
	issuedBeforeUpdate := f.store.issued
	f.store.mu.Unlock()
	if issuedBeforeUpdate == 0 {
		t.Fatalf("add was not issued")
	}

	fresh := model.NewCart([]model.Line{{ProductID: "P1", Title: "Honey", Price: 100, Quantity: 7}})
	f.store.mu.Lock()
	f.store.issued++
	f.store.applyLocked(f.store.issued, fresh)
	f.store.mu.Unlock()

	close(f.backend.gate)
	if err := <-done; err != nil {
		t.Fatalf("AddToCart() error = %v", err)
	}

	if got := f.store.Cart().Items[0].Quantity; got != 7 {
		t.Errorf("quantity = %d, stale response overwrote newer state", got)
	}
}

func TestRefreshKeepsUserWhenMutationWins(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.storage.Set(ctx, DefaultTokenKey, "tok")
	f.backend.products["P1"] = model.Product{ID: "P1", Title: "Honey", Price: 100, Stock: 50}

	f.backend.fetchGate = make(chan struct{})
	done := make(chan error, 1)
	go func() { done <- f.store.Init(ctx) }()

	waitFor(t, func() bool { return f.store.Loading() })
	if err := f.store.AddToCart(ctx, "P1", 1, nil); err != nil {
		t.Fatalf("AddToCart() error = %v", err)
	}

	close(f.backend.fetchGate)
	if err := <-done; err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	if !f.store.IsAuthenticated() {
		t.Fatalf("store lost authentication")
	}
	u := f.store.User()
	if u == nil || u.Email != "asha@example.com" {
		t.Errorf("User() = %+v, want the signed-in profile", u)
	}
	cart := f.store.Cart()
	if len(cart.Items) != 1 || cart.Items[0].Quantity != 1 {
		t.Errorf("cart = %+v", cart)
	}
}

func TestRefreshDropsUserAfterLogout(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.storage.Set(ctx, DefaultTokenKey, "tok")

	f.backend.fetchGate = make(chan struct{})
	done := make(chan error, 1)
	go func() { done <- f.store.Init(ctx) }()

	waitFor(t, func() bool { return f.store.Loading() })
	f.store.Logout(ctx)
	close(f.backend.fetchGate)
	<-done

	if f.store.User() != nil || f.store.IsAuthenticated() {
		t.Errorf("late profile revived a closed session: %+v", f.store.User())
	}
}

func TestLoadingFlag(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.storage.Set(ctx, DefaultTokenKey, "tok")
	f.init(t)

	f.backend.gate = make(chan struct{})
	done := make(chan error, 1)
	go func() { done <- f.store.AddToCart(ctx, "P1", 1, nil) }()

	waitFor(t, func() bool { return f.store.Loading() })
	close(f.backend.gate)
	<-done

	if f.store.Loading() {
		t.Errorf("Loading() = true after completion")
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	for i := 0; i < 1000; i++ {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("condition not reached")
}
