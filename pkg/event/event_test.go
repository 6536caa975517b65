package event

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFireRunsListenersInOrder(t *testing.T) {
	bus := New()
	var got []string
	bus.Listen("order.created", func(_ context.Context, p any) { got = append(got, "first:"+p.(string)) })
	bus.Listen("order.created", func(_ context.Context, p any) { got = append(got, "second:"+p.(string)) })
	bus.Listen("order.updated", func(context.Context, any) { got = append(got, "wrong") })

	bus.Fire(context.Background(), "order.created", "7")

	assert.Equal(t, []string{"first:7", "second:7"}, got)
}

func TestFireSurvivesPanickingListener(t *testing.T) {
	bus := New()
	called := false
	bus.Listen("x", func(context.Context, any) { panic("bad listener") })
	bus.Listen("x", func(context.Context, any) { called = true })

	assert.NotPanics(t, func() { bus.Fire(context.Background(), "x", nil) })
	assert.True(t, called)
}

func TestFireWithoutListeners(t *testing.T) {
	bus := New()
	assert.NotPanics(t, func() { bus.Fire(context.Background(), "nobody.listens", nil) })
}
