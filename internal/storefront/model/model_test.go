package model

import "testing"

func TestNewCartDerivesTotals(t *testing.T) {
	cart := NewCart([]Line{
		{ProductID: "P1", Price: 2500, Quantity: 2},
		{ProductID: "P2", Price: 999, Quantity: 3},
	})

	if cart.TotalItems != 5 {
		t.Errorf("TotalItems = %d, want 5", cart.TotalItems)
	}
	if cart.TotalPrice != 2500*2+999*3 {
		t.Errorf("TotalPrice = %d, want %d", cart.TotalPrice, 2500*2+999*3)
	}
	if cart.Find("P2") != 1 || cart.Find("P3") != -1 {
		t.Errorf("Find() returned wrong indexes")
	}
}

func TestEmptyCartHasNonNilItems(t *testing.T) {
	cart := EmptyCart()
	if cart.Items == nil || len(cart.Items) != 0 {
		t.Errorf("Items = %#v, want empty slice", cart.Items)
	}
	if cart.TotalItems != 0 || cart.TotalPrice != 0 {
		t.Errorf("totals = %d/%d, want 0/0", cart.TotalItems, cart.TotalPrice)
	}
}

func TestCloneDoesNotShareItems(t *testing.T) {
	cart := NewCart([]Line{{ProductID: "P1", Price: 100, Quantity: 1}})
	clone := cart.Clone()
	clone.Items[0].Quantity = 9

	if cart.Items[0].Quantity != 1 {
		t.Errorf("Clone shares backing array with original")
	}
}

func TestProductDetails(t *testing.T) {
	p := Product{
		ID:         "P1",
		Title:      "Organic Honey",
		Price:      50000,
		FinalPrice: 45000,
		Images:     []Image{{URL: "a.jpg"}, {URL: "b.jpg"}},
		Stock:      7,
	}

	got := p.Details()
	want := ProductDetails{Title: "Organic Honey", Price: 45000, Image: "a.jpg", Stock: 7}
	if got != want {
		t.Errorf("Details() = %+v, want %+v", got, want)
	}

	p.FinalPrice = 0
	p.Images = nil
	if got := p.Details(); got.Price != 50000 || got.Image != "" {
		t.Errorf("Details() without final price = %+v", got)
	}
}
