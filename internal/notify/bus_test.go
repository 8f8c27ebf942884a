package notify

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simonvc/auditledger/internal/api"
)

// chanSource delivers whatever is sent on its channel.
type chanSource struct {
	ch      chan api.Notification
	stopped chan struct{}
}

func (s *chanSource) Run(ctx context.Context, deliver func(api.Notification)) error {
	defer close(s.stopped)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case n := <-s.ch:
			deliver(n)
		}
	}
}

func TestBusSubscribeAndUnsubscribe(t *testing.T) {
	b := NewBus(nil)

	var a, c []string
	unsubA := b.Subscribe(func(n api.Notification) { a = append(a, n.ID) })
	b.Subscribe(func(n api.Notification) { c = append(c, n.ID) })

	b.Publish(api.Notification{ID: "1"})
	unsubA()
	b.Publish(api.Notification{ID: "2"})

	assert.Equal(t, []string{"1"}, a)
	assert.Equal(t, []string{"1", "2"}, c)
}

func TestBusConnectLifecycle(t *testing.T) {
	src := &chanSource{ch: make(chan api.Notification), stopped: make(chan struct{})}
	b := NewBus(src)

	got := make(chan api.Notification, 1)
	b.Subscribe(func(n api.Notification) { got <- n })

	require.NoError(t, b.Connect(context.Background()))
	assert.True(t, b.Connected())
	assert.ErrorIs(t, b.Connect(context.Background()), ErrConnected)

	src.ch <- api.Notification{ID: "n1"}
	select {
	case n := <-got:
		assert.Equal(t, "n1", n.ID)
	case <-time.After(time.Second):
		t.Fatal("notification not delivered")
	}

	b.Disconnect()
	assert.False(t, b.Connected())
	select {
	case <-src.stopped:
	default:
		t.Fatal("source still running after Disconnect")
	}

	// Disconnecting twice is harmless.
	b.Disconnect()
}
