package sse

import (
	"bufio"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBrokerFanOut(t *testing.T) {
	b := NewBroker()
	a, cancelA := b.Subscribe("order:1")
	c, cancelC := b.Subscribe("order:1")
	other, cancelOther := b.Subscribe("order:2")
	defer cancelOther()

	b.Publish("order:1", Message{Event: "order.updated", Data: 1})
	assert.Equal(t, "order.updated", (<-a).Event)
	assert.Equal(t, "order.updated", (<-c).Event)
	assert.Empty(t, other)

	cancelA()
	cancelA()
	assert.Equal(t, 1, b.Subscribers("order:1"))
	cancelC()
	assert.Equal(t, 0, b.Subscribers("order:1"))

	b.Publish("order:1", Message{Event: "dropped"})
}

func TestBrokerDropsForSlowSubscriber(t *testing.T) {
	b := NewBroker()
	sub, cancel := b.Subscribe("t")
	defer cancel()

	for i := 0; i < subscriberBuffer+5; i++ {
		b.Publish("t", Message{Event: "tick", Data: i})
	}
	assert.Len(t, sub, subscriberBuffer)
}

func TestStreamWritesEvents(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, err := New(w, r)
		require.NoError(t, err)
		require.NoError(t, s.Send("snapshot", map[string]any{"status": "shipped"}))
		require.NoError(t, s.Comment("ping"))
	}))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	var lines []string
	sc := bufio.NewScanner(resp.Body)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	assert.Equal(t, []string{"event: snapshot", `data: {"status":"shipped"}`, "", ": ping", ""}, lines)
}

func TestStreamEndsWhenServerDrains(t *testing.T) {
	drain := make(chan struct{})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithDrain(req.Context(), drain))

	s, err := New(httptest.NewRecorder(), req)
	require.NoError(t, err)

	select {
	case <-s.Done():
		t.Fatal("stream ended before drain")
	default:
	}

	close(drain)
	select {
	case <-s.Done():
	case <-time.After(time.Second):
		t.Fatal("stream still open after drain")
	}
}
