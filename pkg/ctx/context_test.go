package ctx_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/storefront/pkg/auth"
	appctx "github.com/shashiranjanraj/storefront/pkg/ctx"
)

func serve(req *http.Request, h appctx.HandlerFunc) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	appctx.Wrap(h)(rec, req)
	return rec
}

func TestJSONWritesRawBody(t *testing.T) {
	rec := serve(httptest.NewRequest(http.MethodGet, "/", nil), func(c *appctx.Context) {
		c.Success([]string{"Electronics", "Food"})
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `["Electronics","Food"]`, rec.Body.String())
}

func TestErrorShape(t *testing.T) {
	rec := serve(httptest.NewRequest(http.MethodGet, "/", nil), func(c *appctx.Context) {
		c.Error(http.StatusNotFound, "Order not found")
		assert.Equal(t, http.StatusNotFound, c.WrittenStatus())
	})

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Order not found"}`, rec.Body.String())
}

func TestParamUint(t *testing.T) {
	r := chi.NewRouter()
	var got uint
	var ok bool
	r.Get("/orders/{id}", appctx.Wrap(func(c *appctx.Context) {
		got, ok = c.ParamUint("id")
		c.Status(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders/42", nil))
	assert.True(t, ok)
	assert.Equal(t, uint(42), got)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders/abc", nil))
	assert.False(t, ok)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders/0", nil))
	assert.False(t, ok)
}

func TestQueryInt(t *testing.T) {
	serve(httptest.NewRequest(http.MethodGet, "/?limit=5&offset=x", nil), func(c *appctx.Context) {
		assert.Equal(t, 5, c.QueryInt("limit", 20))
		assert.Equal(t, 0, c.QueryInt("offset", 0))
		assert.Equal(t, 20, c.QueryInt("missing", 20))
	})
}

type wishlistInput struct {
	ProductID uint `json:"product_id" validate:"required"`
}

func TestBindJSON(t *testing.T) {
	cases := []struct {
		name   string
		body   string
		ok     bool
		status int
		errMsg string
	}{
		{"valid", `{"product_id":3}`, true, 0, ""},
		{"missing field", `{}`, false, http.StatusBadRequest, "product_id is required"},
		{"malformed", `{"product_id":`, false, http.StatusBadRequest, ""},
		{"empty", ``, false, http.StatusBadRequest, "request body is required"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tc.body))
			var in wishlistInput
			var ok bool
			rec := serve(req, func(c *appctx.Context) { ok = c.BindJSON(&in) })

			assert.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.Equal(t, uint(3), in.ProductID)
				return
			}
			assert.Equal(t, tc.status, rec.Code)
			if tc.errMsg != "" {
				assert.JSONEq(t, `{"error":"`+tc.errMsg+`"}`, rec.Body.String())
			}
		})
	}
}

func TestIdentity(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	serve(req, func(c *appctx.Context) {
		_, ok := c.Identity()
		assert.False(t, ok)
	})

	id := auth.Identity{ID: 7, Email: "a@b.c", Name: "A", Role: "admin"}
	req = req.WithContext(auth.WithIdentity(context.Background(), id))
	serve(req, func(c *appctx.Context) {
		got, ok := c.Identity()
		require.True(t, ok)
		assert.Equal(t, id, got)
		assert.True(t, got.IsAdmin())
	})
}
