package shop

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourchoicemarket/llm-shop/internal/llm"
	"github.com/yourchoicemarket/llm-shop/internal/printful"
	"github.com/yourchoicemarket/llm-shop/internal/storage"
)

var testRecipient = printful.Recipient{
	Name:        "Ada Lovelace",
	Address1:    "12 Example Street",
	City:        "Helsinki",
	CountryCode: "fi",
	Zip:         "00100",
	Email:       "ada@example.com",
}

func seedProducts(t *testing.T, f *fixture) {
	t.Helper()
	for _, p := range []storage.Product{
		{ID: "mug", Name: "Fox Mug", PriceCents: 1500, PrintfulVariantID: 1320, ImageURL: "https://x/mug.png", Currency: "USD", MatchSource: "score"},
		{ID: "tee", Name: "Fox Tee", PriceCents: 1000, PrintfulVariantID: 4011, ImageURL: "https://x/tee.png", Currency: "USD", MatchSource: "score"},
	} {
		require.NoError(t, f.store.SaveProduct(&p))
	}
}

func TestPlaceOrder(t *testing.T) {
	f := newFixture(t, llm.ProductIdea{})
	seedProducts(t, f)

	order, err := f.svc.PlaceOrder(context.Background(), CheckoutRequest{
		Items:         []CheckoutItem{{ProductID: "mug", Quantity: 2}, {ProductID: "tee", Quantity: 1}},
		Recipient:     testRecipient,
		DiscountCents: 500,
		UserID:        "u1",
	})
	require.NoError(t, err)

	assert.Equal(t, int64(4000), order.SubtotalCents)
	assert.Equal(t, int64(500), order.DiscountCents)
	assert.Equal(t, int64(350), order.TaxCents)
	assert.Equal(t, int64(500), order.ShippingCents)
	assert.Equal(t, int64(4350), order.TotalCents)
	assert.Equal(t, "STANDARD", order.Shipping)
	assert.Equal(t, "USD", order.Currency)
	assert.Equal(t, "FI", order.Recipient.CountryCode)
	assert.Equal(t, int64(5001), order.PrintfulOrderID)
	assert.Equal(t, "draft", order.Status)

	calls := f.printful.CallsTo("CreateOrder")
	require.Len(t, calls, 1)
	payload := calls[0].Args[0].(printful.OrderRequest)
	assert.Equal(t, order.ID, payload.ExternalID)
	require.Len(t, payload.Items, 2)
	assert.Equal(t, 1320, payload.Items[0].VariantID)
	assert.Equal(t, 2, payload.Items[0].Quantity)
	assert.Equal(t, "15.00", payload.Items[0].RetailPrice)
	assert.Equal(t, "https://x/mug.png", payload.Items[0].Files[0].URL)
	assert.Equal(t, &printful.RetailCosts{Currency: "USD", Subtotal: "40.00", Discount: "5.00", Shipping: "5.00", Tax: "3.50"}, payload.RetailCosts)

	saved, err := f.svc.GetOrder(order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.Recipient, saved.Recipient)
	assert.Equal(t, order.Items, saved.Items)
	assert.Equal(t, "u1", saved.CreatedBy)
}

func TestPlaceOrder_DiscountCappedAtSubtotal(t *testing.T) {
	f := newFixture(t, llm.ProductIdea{})
	seedProducts(t, f)

	order, err := f.svc.PlaceOrder(context.Background(), CheckoutRequest{
		Items:         []CheckoutItem{{ProductID: "tee", Quantity: 1}},
		Recipient:     testRecipient,
		DiscountCents: 99999,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1000), order.DiscountCents)
	assert.Equal(t, int64(0), order.TaxCents)
	assert.Equal(t, int64(500), order.TotalCents)
}

func TestPlaceOrder_Validation(t *testing.T) {
	f := newFixture(t, llm.ProductIdea{})
	seedProducts(t, f)

	noEmail := testRecipient
	noEmail.Email = ""
	badEmail := testRecipient
	badEmail.Email = "ada"

	tests := []struct {
		name string
		req  CheckoutRequest
		msg  string
	}{
		{"no items", CheckoutRequest{Recipient: testRecipient}, "no items"},
		{"zero quantity", CheckoutRequest{Items: []CheckoutItem{{ProductID: "mug"}}, Recipient: testRecipient}, "quantity"},
		{"no product id", CheckoutRequest{Items: []CheckoutItem{{Quantity: 1}}, Recipient: testRecipient}, "no product"},
		{"missing recipient", CheckoutRequest{Items: []CheckoutItem{{ProductID: "mug", Quantity: 1}}}, "name, address1, city, country_code, zip, email"},
		{"missing email", CheckoutRequest{Items: []CheckoutItem{{ProductID: "mug", Quantity: 1}}, Recipient: noEmail}, "missing email"},
		{"bad email", CheckoutRequest{Items: []CheckoutItem{{ProductID: "mug", Quantity: 1}}, Recipient: badEmail}, "invalid email"},
		{"negative discount", CheckoutRequest{Items: []CheckoutItem{{ProductID: "mug", Quantity: 1}}, Recipient: testRecipient, DiscountCents: -1}, "negative discount"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.PlaceOrder(context.Background(), tt.req)
			assert.ErrorIs(t, err, ErrInvalidOrder)
			assert.ErrorContains(t, err, tt.msg)
		})
	}
	assert.Empty(t, f.printful.CallsTo("CreateOrder"))
}

func TestPlaceOrder_UnknownProduct(t *testing.T) {
	f := newFixture(t, llm.ProductIdea{})

	_, err := f.svc.PlaceOrder(context.Background(), CheckoutRequest{
		Items:     []CheckoutItem{{ProductID: "ghost", Quantity: 1}},
		Recipient: testRecipient,
	})
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestPlaceOrder_PrintfulFailure(t *testing.T) {
	f := newFixture(t, llm.ProductIdea{})
	seedProducts(t, f)
	f.printful.CreateOrderFunc = func(ctx context.Context, payload printful.OrderRequest) (*printful.Order, error) {
		return nil, errors.New("request failed: POST /orders (status: 400): Invalid address")
	}

	_, err := f.svc.PlaceOrder(context.Background(), CheckoutRequest{
		Items:     []CheckoutItem{{ProductID: "mug", Quantity: 1}},
		Recipient: testRecipient,
	})
	assert.ErrorContains(t, err, "Invalid address")
}

func TestGetOrder_NotFound(t *testing.T) {
	f := newFixture(t, llm.ProductIdea{})
	_, err := f.svc.GetOrder("missing")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}
