package printful

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	c := NewClient(ClientOpts{BaseURL: ts.URL, Token: "secret", StoreID: "42"})
	c.PollInterval = time.Millisecond
	return c
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	io.WriteString(w, body)
}

func TestGetCategories(t *testing.T) {
	var req *http.Request
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		req = r
		writeJSON(w, 200, `{"code":200,"result":{"categories":[{"id":19,"parent_id":112,"image_url":"https://x/19.jpg","catalog_position":27,"size":"small","title":"Mugs"}]}}`)
	})

	cats, err := c.GetCategories(context.Background())
	require.NoError(t, err)
	require.Len(t, cats, 1)
	assert.Equal(t, 19, cats[0].ID)
	assert.Equal(t, 112, cats[0].ParentID)
	assert.Equal(t, "Mugs", cats[0].Title)

	assert.Equal(t, "/categories", req.URL.Path)
	assert.Equal(t, "Bearer secret", req.Header.Get("Authorization"))
	assert.Equal(t, "42", req.Header.Get("X-PF-Store-Id"))
}

func TestGetProducts(t *testing.T) {
	var req *http.Request
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		req = r
		writeJSON(w, 200, `{"code":200,"result":[{"id":19,"main_category_id":19,"type":"MUG","type_name":"White Glossy Mug","title":"White Glossy Mug"},{"id":300,"main_category_id":19,"title":"Enamel Mug"}]}`)
	})

	products, err := c.GetProducts(context.Background(), 19)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "White Glossy Mug", products[0].Title)
	assert.Equal(t, "/products", req.URL.Path)
	assert.Equal(t, "19", req.URL.Query().Get("category_id"))
}

func TestGetProduct(t *testing.T) {
	var req *http.Request
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		req = r
		writeJSON(w, 200, `{"code":200,"result":{"product":{"id":19,"main_category_id":19,"title":"White Glossy Mug"},"variants":[{"id":1320,"product_id":19,"name":"White Glossy Mug (11 oz)","size":"11 oz","price":"5.95","in_stock":true}]}}`)
	})

	detail, err := c.GetProduct(context.Background(), 19)
	require.NoError(t, err)
	assert.Equal(t, "/products/19", req.URL.Path)
	assert.Equal(t, "White Glossy Mug", detail.Product.Title)
	require.Len(t, detail.Variants, 1)
	assert.Equal(t, "5.95", detail.Variants[0].Price)
	assert.True(t, detail.Variants[0].InStock)
}

func TestCreateSyncProduct(t *testing.T) {
	var got SyncProductRequest
	var req *http.Request
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		req = r
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeJSON(w, 200, `{"code":200,"result":{"id":13,"external_id":"p-1","name":"Fox Mug","variants":1,"synced":1}}`)
	})

	sp, err := c.CreateSyncProduct(context.Background(), SyncProductRequest{
		SyncProduct: SyncProductInfo{ExternalID: "p-1", Name: "Fox Mug"},
		SyncVariants: []SyncVariantInfo{{
			VariantID:   1320,
			RetailPrice: "8.93",
			Files:       []File{{URL: "https://shop.example.com/images/generated/a.png"}},
		}},
	})
	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/store/products", req.URL.Path)
	assert.Equal(t, int64(13), sp.ID)
	assert.Equal(t, 1320, got.SyncVariants[0].VariantID)
	assert.Equal(t, "https://shop.example.com/images/generated/a.png", got.SyncVariants[0].Files[0].URL)
}

func TestCreateMockupTask(t *testing.T) {
	var req *http.Request
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		req = r
		writeJSON(w, 200, `{"code":200,"result":{"task_key":"gt-123","status":"pending"}}`)
	})

	key, err := c.CreateMockupTask(context.Background(), 19, MockupRequest{
		VariantIDs: []int{1320},
		Files:      []MockupFile{{Placement: "default", ImageURL: "https://x/a.png"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "gt-123", key)
	assert.Equal(t, "/mockup-generator/create-task/19", req.URL.Path)
}

func TestWaitForMockupURL(t *testing.T) {
	var polls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/mockup-generator/task", r.URL.Path)
		assert.Equal(t, "gt-123", r.URL.Query().Get("task_key"))
		if polls.Add(1) < 3 {
			writeJSON(w, 200, `{"code":200,"result":{"task_key":"gt-123","status":"pending"}}`)
			return
		}
		writeJSON(w, 200, `{"code":200,"result":{"task_key":"gt-123","status":"completed","mockups":[{"placement":"default","variant_ids":[1320],"mockup_url":"https://files.cdn.printful.com/m.png"}]}}`)
	})

	url, err := c.WaitForMockupURL(context.Background(), "gt-123")
	require.NoError(t, err)
	assert.Equal(t, "https://files.cdn.printful.com/m.png", url)
	assert.Equal(t, int32(3), polls.Load())
}

func TestWaitForMockupURL_Pending(t *testing.T) {
	var polls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		polls.Add(1)
		writeJSON(w, 200, `{"code":200,"result":{"task_key":"gt-1","status":"pending"}}`)
	})
	c.MaxPollAttempts = 4

	_, err := c.WaitForMockupURL(context.Background(), "gt-1")
	assert.ErrorIs(t, err, ErrMockupPending)
	assert.Equal(t, int32(4), polls.Load())
}

func TestWaitForMockupURL_Failed(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, `{"code":200,"result":{"task_key":"gt-1","status":"failed","error":"image too small"}}`)
	})

	_, err := c.WaitForMockupURL(context.Background(), "gt-1")
	assert.ErrorIs(t, err, ErrMockupFailed)
	assert.ErrorContains(t, err, "image too small")
}

func TestWaitForMockupURL_ContextCancelled(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})
	c.PollInterval = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.WaitForMockupURL(ctx, "gt-1")
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestCreateOrder(t *testing.T) {
	var got OrderRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/orders", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeJSON(w, 200, `{"code":200,"result":{"id":9001,"external_id":"ord-1","status":"draft","shipping":"STANDARD","created":1700000000}}`)
	})

	order, err := c.CreateOrder(context.Background(), OrderRequest{
		ExternalID: "ord-1",
		Shipping:   "STANDARD",
		Recipient:  Recipient{Name: "Ada", Address1: "1 Main St", City: "Helsinki", CountryCode: "FI", Zip: "00100", Email: "ada@example.com"},
		Items:      []OrderItem{{SyncVariantID: 77, Quantity: 2}},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(9001), order.ID)
	assert.Equal(t, "draft", order.Status)
	assert.Equal(t, "FI", got.Recipient.CountryCode)
	assert.Equal(t, 2, got.Items[0].Quantity)
}

func TestHandleError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 400, `{"code":400,"result":"Invalid category","error":{"reason":"BadRequest","message":"Invalid category"}}`)
	})

	_, err := c.GetProducts(context.Background(), -1)
	require.Error(t, err)
	assert.ErrorContains(t, err, "status: 400")
	assert.ErrorContains(t, err, "Invalid category")
}

func TestHandleError_NoBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := c.GetCategories(context.Background())
	assert.ErrorContains(t, err, "status: 502")
}
