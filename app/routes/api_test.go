package routes_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/storefront/app/listeners"
	"github.com/shashiranjanraj/storefront/app/routes"
	"github.com/shashiranjanraj/storefront/internal/kernel"
	"github.com/shashiranjanraj/storefront/internal/testdb"
	"github.com/shashiranjanraj/storefront/pkg/auth"
	"github.com/shashiranjanraj/storefront/pkg/cache"
	"github.com/shashiranjanraj/storefront/pkg/event"
	"github.com/shashiranjanraj/storefront/pkg/media"
	"github.com/shashiranjanraj/storefront/pkg/sse"
	"github.com/shashiranjanraj/storefront/pkg/storage"
	"github.com/shashiranjanraj/storefront/pkg/testkit"
	"github.com/shashiranjanraj/storefront/pkg/workerpool"
)

type api struct {
	t       *testing.T
	db      *gorm.DB
	handler http.Handler
	vars    testkit.Vars
}

func newAPI(t *testing.T) *api {
	t.Helper()

	db := testdb.Seeded(t)
	uploads := t.TempDir()
	pool := workerpool.New(2)
	t.Cleanup(pool.Shutdown)

	bus := event.New()
	tracking := sse.NewBroker()
	listeners.Register(bus, nil, tracking)

	k := kernel.NewHTTPKernel(kernel.Options{
		Deps: routes.Deps{
			DB:       db,
			Cache:    cache.NewMemory(),
			Photos:   media.NewIntake(storage.NewLocalDisk(uploads, "/uploads"), pool),
			Events:   bus,
			Tracking: tracking,
		},
		UploadsDir: uploads,
	})

	token := func(id auth.Identity) string {
		tok, err := auth.GenerateToken(id)
		require.NoError(t, err)
		return tok
	}
	return &api{
		t:       t,
		db:      db,
		handler: k.Handler(),
		vars: testkit.Vars{
			"admin_token":    token(auth.Identity{ID: 1, Email: "admin@ecommerce.com", Name: "Admin User", Role: auth.RoleAdmin}),
			"customer_token": token(auth.Identity{ID: 2, Email: "customer@example.com", Name: "John Doe", Role: auth.RoleCustomer}),
			"stranger_token": token(auth.Identity{ID: 77, Email: "someone@example.com", Name: "Someone", Role: auth.RoleCustomer}),
		},
	}
}

func (a *api) do(method, path, token string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var rdr *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		rdr = bytes.NewReader(raw)
	} else {
		rdr = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rdr)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+a.vars[token])
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

type part struct {
	name        string
	contentType string
	data        string
}

func (a *api) upload(path string, parts ...part) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, p := range parts {
		h := textproto.MIMEHeader{}
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="photos"; filename="%s"`, p.name))
		h.Set("Content-Type", p.contentType)
		w, err := mw.CreatePart(h)
		require.NoError(a.t, err)
		_, err = w.Write([]byte(p.data))
		require.NoError(a.t, err)
	}
	require.NoError(a.t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+a.vars["admin_token"])
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestScenarios(t *testing.T) {
	a := newAPI(t)
	testkit.RunDir(t, a.handler, "testdata", a.vars)
}

func TestCheckoutFlow(t *testing.T) {
	a := newAPI(t)

	rec := a.do(http.MethodPost, "/api/cart", "customer_token", map[string]any{"product_id": 7, "quantity": 2})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"message":"Item added to cart"}`, rec.Body.String())

	rec = a.do(http.MethodPost, "/api/cart", "customer_token", map[string]any{"product_id": 7})
	assert.JSONEq(t, `{"message":"Cart updated successfully"}`, rec.Body.String())

	rec = a.do(http.MethodPost, "/api/orders", "customer_token", map[string]any{
		"shipping_address": "1 Elm St",
		"items": []map[string]any{
			{"product_id": 7, "quantity": 3, "price": 24.99},
			{"product_id": 8, "quantity": 1, "price": "39.99"},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	created := decode[struct {
		Message string `json:"message"`
		OrderID uint   `json:"order_id"`
	}](t, rec)
	assert.Equal(t, "Order created successfully", created.Message)
	require.NotZero(t, created.OrderID)

	rec = a.do(http.MethodGet, "/api/cart", "customer_token", nil)
	assert.JSONEq(t, `[]`, rec.Body.String())

	orderPath := fmt.Sprintf("/api/orders/%d", created.OrderID)
	rec = a.do(http.MethodGet, orderPath, "customer_token", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	order := decode[map[string]any](t, rec)
	assert.Equal(t, 114.96, order["total_amount"])
	assert.Equal(t, "pending", order["status"])
	assert.Equal(t, []any{}, order["delivery_photos"])
	assert.Len(t, order["items"], 2)

	rec = a.do(http.MethodGet, orderPath, "stranger_token", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Order not found"}`, rec.Body.String())

	adminPath := fmt.Sprintf("/api/admin/orders/%d", created.OrderID)
	rec = a.do(http.MethodPut, adminPath, "customer_token", map[string]any{"status": "confirmed"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = a.do(http.MethodPut, adminPath, "admin_token", map[string]any{"status": "confirmed"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"message":"Order updated successfully"}`, rec.Body.String())

	rec = a.do(http.MethodPut, adminPath, "admin_token", map[string]any{"status": "shipped"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Cannot change status from confirmed to shipped (allowed: processing, cancelled)"}`, rec.Body.String())

	rec = a.do(http.MethodPut, adminPath, "admin_token", map[string]any{"tracking_number": nil})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"No fields to update"}`, rec.Body.String())

	rec = a.do(http.MethodGet, "/api/orders", "admin_token", nil)
	all := decode[[]map[string]any](t, rec)
	require.Len(t, all, 4)
	assert.Equal(t, "confirmed", all[0]["status"])
	assert.Equal(t, "John Doe", all[0]["user_name"])
}

func TestDeliveryPhotoUpload(t *testing.T) {
	a := newAPI(t)
	jpeg := part{"door.jpg", "image/jpeg", "\xff\xd8\xff fake jpeg"}
	png := part{"porch.png", "image/png", "\x89PNG fake png"}

	rec := a.upload("/api/admin/orders/1/photos", jpeg, png)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res := decode[struct {
		Message string   `json:"message"`
		Photos  []string `json:"photos"`
	}](t, rec)
	assert.Equal(t, "Photos uploaded successfully", res.Message)
	require.Len(t, res.Photos, 4)
	assert.Contains(t, res.Photos[0], "pexels.com")
	assert.True(t, strings.HasPrefix(res.Photos[2], "/uploads/delivery-photos/delivery-"))
	assert.True(t, strings.HasSuffix(res.Photos[2], ".jpg"))
	assert.True(t, strings.HasSuffix(res.Photos[3], ".png"))

	served := a.do(http.MethodGet, res.Photos[2], "", nil)
	assert.Equal(t, http.StatusOK, served.Code)
	assert.Equal(t, jpeg.data, served.Body.String())

	rec = a.upload("/api/admin/orders/1/photos", jpeg, part{"notes.txt", "text/plain", "hello"}, png)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Only image files are allowed!"}`, rec.Body.String())

	six := make([]part, 6)
	for i := range six {
		six[i] = part{fmt.Sprintf("p%d.jpg", i), "image/jpeg", "x"}
	}
	rec = a.upload("/api/admin/orders/1/photos", six...)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.upload("/api/admin/orders/999/photos", jpeg)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Order not found"}`, rec.Body.String())

	rec = a.do(http.MethodGet, "/api/orders/1", "customer_token", nil)
	order := decode[map[string]any](t, rec)
	assert.Len(t, order["delivery_photos"], 4, "rejected uploads add nothing")
}

func TestWishlistConflict(t *testing.T) {
	a := newAPI(t)

	rec := a.do(http.MethodPost, "/api/wishlist", "customer_token", map[string]any{"product_id": 3})
	assert.JSONEq(t, `{"message":"Item added to wishlist"}`, rec.Body.String())

	rec = a.do(http.MethodPost, "/api/wishlist", "customer_token", map[string]any{"product_id": 3})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.JSONEq(t, `{"error":"Item already in wishlist"}`, rec.Body.String())

	items := decode[[]map[string]any](t, a.do(http.MethodGet, "/api/wishlist", "customer_token", nil))
	require.Len(t, items, 1)

	rec = a.do(http.MethodDelete, fmt.Sprintf("/api/wishlist/%v", items[0]["id"]), "customer_token", nil)
	assert.JSONEq(t, `{"message":"Item removed from wishlist"}`, rec.Body.String())
}

func TestAdminProducts(t *testing.T) {
	a := newAPI(t)

	rec := a.do(http.MethodPost, "/api/admin/products", "admin_token", map[string]any{
		"name": "Desk Lamp", "category": "Home", "price": 19.5, "stock": 4,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	created := decode[map[string]any](t, rec)
	assert.Equal(t, "Product created successfully", created["message"])
	id := created["product_id"]

	rec = a.do(http.MethodGet, "/api/categories", "", nil)
	assert.JSONEq(t, `["Electronics","Fashion","Food","Home"]`, rec.Body.String())

	rec = a.do(http.MethodPut, fmt.Sprintf("/api/admin/products/%v", id), "admin_token", map[string]any{
		"name": "Desk Lamp", "category": "Home", "price": 21, "stock": 2,
	})
	assert.JSONEq(t, `{"message":"Product updated successfully"}`, rec.Body.String())

	rec = a.do(http.MethodDelete, fmt.Sprintf("/api/admin/products/%v", id), "admin_token", nil)
	assert.JSONEq(t, `{"message":"Product deleted successfully"}`, rec.Body.String())

	rec = a.do(http.MethodDelete, fmt.Sprintf("/api/admin/products/%v", id), "admin_token", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouteNames(t *testing.T) {
	k := kernel.NewHTTPKernel(kernel.Options{})
	names := map[string]string{}
	for _, r := range k.Routes() {
		names[r.Name] = r.Method + " " + r.Path
	}
	assert.Equal(t, "PUT /api/admin/orders/{id}", names["admin.orders.update"])
	assert.Equal(t, "POST /api/admin/orders/{id}/photos", names["admin.orders.photos"])
	assert.Equal(t, "GET /api/orders/{id}", names["orders.show"])
	assert.NotContains(t, names, "admin.orders.feed")
}

// readEvent reads one "event:/data:" block from a Server-Sent Events stream.
func readEvent(t *testing.T, r *bufio.Reader) (string, string) {
	t.Helper()
	var name, data string
	for {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimRight(line, "\n")
		switch {
		case line == "" && name != "":
			return name, data
		case strings.HasPrefix(line, "event: "):
			name = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			data = strings.TrimPrefix(line, "data: ")
		}
	}
}

func TestOrderTracking(t *testing.T) {
	a := newAPI(t)
	srv := httptest.NewServer(a.handler)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/orders/2/events", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+a.vars["customer_token"])

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	body := bufio.NewReader(resp.Body)
	name, data := readEvent(t, body)
	assert.Equal(t, "snapshot", name)
	assert.Contains(t, data, `"status":"shipped"`)

	rec := a.do(http.MethodPut, "/api/admin/orders/2", "admin_token", map[string]any{"status": "out_for_delivery"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	name, data = readEvent(t, body)
	assert.Equal(t, "order.updated", name)
	assert.Contains(t, data, `"status":"out_for_delivery"`)
	assert.Contains(t, data, `"previous_status":"shipped"`)
}

func TestOrderTrackingHidesOtherCustomersOrders(t *testing.T) {
	a := newAPI(t)

	rec := a.do(http.MethodGet, "/api/orders/2/events", "stranger_token", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Order not found"}`, rec.Body.String())

	rec = a.do(http.MethodGet, "/api/orders/2/events", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
