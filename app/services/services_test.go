package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/database/seeders"
	"github.com/shashiranjanraj/storefront/internal/testdb"
	"github.com/shashiranjanraj/storefront/pkg/auth"
	"github.com/shashiranjanraj/storefront/pkg/media"
)

var (
	admin    = auth.Identity{ID: 1, Email: seeders.AdminEmail, Name: "Admin User", Role: auth.RoleAdmin}
	customer = auth.Identity{ID: 2, Email: seeders.CustomerEmail, Name: "John Doe", Role: auth.RoleCustomer}
)

func assertKind(t *testing.T, err error, kind error, msg string) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, errors.Is(err, kind), "want %v, got %v", kind, err)
	if msg != "" {
		assert.Equal(t, msg, services.Message(err))
	}
}

// fakePhotos hands out sequential paths without touching a disk.
type fakePhotos struct {
	mu  sync.Mutex
	n   int
	err error
}

func (f *fakePhotos) Save(_ context.Context, uploads []media.Upload) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(uploads))
	for i, u := range uploads {
		f.n++
		out[i] = "/uploads/delivery-photos/" + u.Filename
	}
	return out, nil
}

type firedEvent struct {
	name    string
	payload services.OrderEvent
}

type recorder struct {
	mu     sync.Mutex
	events []firedEvent
}

func (r *recorder) Fire(_ context.Context, name string, payload any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, firedEvent{name, payload.(services.OrderEvent)})
}

func (r *recorder) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.name
	}
	return out
}

func seeded(t *testing.T) *gorm.DB {
	t.Helper()
	return testdb.Seeded(t)
}

func orderService(t *testing.T, db *gorm.DB) (*services.OrderService, *recorder) {
	t.Helper()
	rec := &recorder{}
	return services.NewOrderService(db, &fakePhotos{}, rec), rec
}

func uploads(names ...string) []media.Upload {
	out := make([]media.Upload, len(names))
	for i, n := range names {
		out[i] = media.NewUpload(n, "image/jpeg", []byte(n))
	}
	return out
}

func stringPtr(s string) *string { return &s }
