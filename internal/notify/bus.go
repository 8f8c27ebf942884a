// Package notify delivers backend notifications to in-process subscribers.
package notify

import (
	"context"
	"errors"
	"sync"

	"github.com/simonvc/auditledger/internal/api"
)

var ErrConnected = errors.New("notification bus already connected")

type Handler func(api.Notification)

// Source produces notifications until ctx is cancelled.
type Source interface {
	Run(ctx context.Context, deliver func(api.Notification)) error
}

// Bus fans notifications from a Source out to subscribers. It is created
// explicitly and passed to whoever needs it; there is no package-level bus.
type Bus struct {
	source Source

	mu     sync.RWMutex
	subs   map[int]Handler
	nextID int

	lifecycle sync.Mutex
	cancel    context.CancelFunc
	done      chan struct{}
}

func NewBus(source Source) *Bus {
	return &Bus{source: source, subs: make(map[int]Handler)}
}

// Subscribe registers h and returns a func that removes it.
func (b *Bus) Subscribe(h Handler) func() {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = h
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}
}

// Publish calls every subscriber with n, in no particular order.
func (b *Bus) Publish(n api.Notification) {
	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.subs))
	for _, h := range b.subs {
		handlers = append(handlers, h)
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		h(n)
	}
}

// Connect starts the source in the background. Notifications it produces are
// published until Disconnect is called or ctx ends.
func (b *Bus) Connect(ctx context.Context) error {
	b.lifecycle.Lock()
	defer b.lifecycle.Unlock()
	if b.cancel != nil {
		return ErrConnected
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	b.cancel, b.done = cancel, done

	go func() {
		defer close(done)
		b.source.Run(ctx, b.Publish)
	}()
	return nil
}

// Disconnect stops the source and waits for it to return. It is a no-op when
// the bus is not connected.
func (b *Bus) Disconnect() {
	b.lifecycle.Lock()
	defer b.lifecycle.Unlock()
	if b.cancel == nil {
		return
	}
	b.cancel()
	<-b.done
	b.cancel, b.done = nil, nil
}

func (b *Bus) Connected() bool {
	b.lifecycle.Lock()
	defer b.lifecycle.Unlock()
	return b.cancel != nil
}
