package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/your-org/ecommerce-storefront/internal/storefront/model"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClientWithHTTP(srv.URL+"/api/v1/", srv.Client())
}

func TestAddItemSendsTypedBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/v1/cart/items" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("Authorization = %q", got)
		}
		body, _ := io.ReadAll(r.Body)
		if string(body) != `{"productId":"P1","quantity":2}` {
			t.Errorf("body = %s", body)
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"success":true,"data":{"items":[{"productId":"P1","title":"Honey","price":500,"quantity":2,"stock":9}],"totalItems":99,"totalPrice":1}}`)
	})

	cart, err := client.AddItem(context.Background(), "tok", AddItemRequest{ProductID: "P1", Quantity: 2})
	if err != nil {
		t.Fatalf("AddItem() error = %v", err)
	}
	if len(cart.Items) != 1 || cart.Items[0].Title != "Honey" {
		t.Fatalf("cart = %+v", cart)
	}
	if cart.TotalItems != 2 || cart.TotalPrice != 1000 {
		t.Errorf("totals not recomputed from lines: %d/%d", cart.TotalItems, cart.TotalPrice)
	}
}

func TestUnauthorized(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"success":false,"message":"Invalid or expired token"}`)
	})

	_, err := client.FetchCart(context.Background(), "expired")
	if !errors.Is(err, ErrUnauthorized) {
		t.Errorf("err = %v, want ErrUnauthorized", err)
	}
}

func TestServerMessageSurfaced(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"success":false,"message":"Only 3 left in stock"}`)
	})

	_, err := client.UpdateItem(context.Background(), "tok", UpdateItemRequest{ProductID: "P1", Quantity: 4})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusBadRequest || apiErr.Message != "Only 3 left in stock" {
		t.Errorf("apiErr = %+v", apiErr)
	}
}

func TestErrorWithoutBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.ClearCart(context.Background(), "tok")
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Message != "" {
		t.Fatalf("err = %v, want *APIError without message", err)
	}
}

func TestUnsuccessfulEnvelope(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"success":false,"error":"cart locked"}`)
	})

	_, err := client.FetchCart(context.Background(), "tok")
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Message != "cart locked" {
		t.Errorf("err = %v", err)
	}
}

func TestRemoveAndMergePaths(t *testing.T) {
	var paths []string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.Method+" "+r.URL.EscapedPath())
		if r.URL.Path == "/api/v1/cart/merge" {
			body, _ := io.ReadAll(r.Body)
			if !strings.Contains(string(body), `"items":[{"productId":"P 2"`) {
				t.Errorf("merge body = %s", body)
			}
		}
		io.WriteString(w, `{"success":true,"data":{"items":[]}}`)
	})

	ctx := context.Background()
	if _, err := client.RemoveItem(ctx, "tok", RemoveItemRequest{ProductID: "P 2"}); err != nil {
		t.Fatalf("RemoveItem() error = %v", err)
	}
	if _, err := client.MergeCart(ctx, "tok", MergeCartRequest{Items: []model.Line{{ProductID: "P 2", Quantity: 1}}}); err != nil {
		t.Fatalf("MergeCart() error = %v", err)
	}

	want := []string{"DELETE /api/v1/cart/items/P%202", "POST /api/v1/cart/merge"}
	if len(paths) != 2 || paths[0] != want[0] || paths[1] != want[1] {
		t.Errorf("paths = %v, want %v", paths, want)
	}
}

func TestFetchProductAndUser(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/products/P1":
			if r.Header.Get("Authorization") != "" {
				t.Errorf("product lookup should not send a token")
			}
			io.WriteString(w, `{"success":true,"data":{"_id":"P1","title":"Honey","price":500,"finalPrice":450,"images":[{"url":"h.jpg"}],"stock":4}}`)
		case "/api/v1/users/me":
			io.WriteString(w, `{"success":true,"data":{"_id":"U1","name":"Asha","email":"asha@example.com","addresses":[]}}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	ctx := context.Background()
	product, err := client.FetchProduct(ctx, "P1")
	if err != nil {
		t.Fatalf("FetchProduct() error = %v", err)
	}
	if d := product.Details(); d.Price != 450 || d.Image != "h.jpg" || d.Stock != 4 {
		t.Errorf("Details() = %+v", d)
	}

	user, err := client.FetchCurrentUser(ctx, "tok")
	if err != nil {
		t.Fatalf("FetchCurrentUser() error = %v", err)
	}
	if user.ID != "U1" || user.Email != "asha@example.com" {
		t.Errorf("user = %+v", user)
	}
}

func TestLogin(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/v1/auth/login" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("Authorization") != "" {
			t.Error("login must not send a token")
		}
		body, _ := io.ReadAll(r.Body)
		if !strings.Contains(string(body), `"password":"Secret123"`) {
			w.WriteHeader(http.StatusUnauthorized)
			io.WriteString(w, `{"success":false,"message":"Invalid email or password"}`)
			return
		}
		io.WriteString(w, `{"success":true,"data":{"token":"tok","expiresIn":3600,"user":{"_id":"1","name":"Jane","email":"jane@example.com","role":"customer","addresses":[]}}}`)
	})

	resp, err := client.Login(context.Background(), LoginRequest{Email: "jane@example.com", Password: "Secret123"})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if resp.Token != "tok" || resp.User == nil || resp.User.Name != "Jane" {
		t.Errorf("resp = %+v", resp)
	}

	if _, err := client.Login(context.Background(), LoginRequest{Email: "jane@example.com", Password: "bad"}); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("bad credentials err = %v", err)
	}
}
