package database

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/storefront/pkg/metrics"
)

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open("oracle", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported DB_DRIVER")
}

type note struct {
	ID   uint
	Body string
}

func TestOpenSQLiteInMemory(t *testing.T) {
	db, err := Open("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })

	require.NoError(t, db.AutoMigrate(&note{}))
	require.NoError(t, db.Create(&note{Body: "hello"}).Error)

	var got note
	require.NoError(t, db.First(&got).Error)
	assert.Equal(t, "hello", got.Body)

	assert.NoError(t, Ping(db)(context.Background()))

	rec := scrape(t)
	assert.Contains(t, rec, `storefront_db_query_duration_seconds_count{operation="create"}`)
	assert.Contains(t, rec, `storefront_db_query_duration_seconds_count{operation="query"}`)
}

func scrape(t *testing.T) string {
	t.Helper()
	families, err := metrics.DefaultRegistry.Gather()
	require.NoError(t, err)

	var b strings.Builder
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			if h := m.GetHistogram(); h != nil {
				labels := make([]string, 0, len(m.GetLabel()))
				for _, lp := range m.GetLabel() {
					labels = append(labels, fmt.Sprintf("%s=%q", lp.GetName(), lp.GetValue()))
				}
				fmt.Fprintf(&b, "%s_count{%s} %d\n", mf.GetName(), strings.Join(labels, ","), h.GetSampleCount())
			}
		}
	}
	return b.String()
}
