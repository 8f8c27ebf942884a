package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/simonvc/auditledger/internal/api"
)

// hub fans notifications out to connected stream clients.
type hub struct {
	mu      sync.Mutex
	clients map[chan api.Notification]struct{}
}

func newHub() *hub {
	return &hub{clients: make(map[chan api.Notification]struct{})}
}

func (h *hub) add() chan api.Notification {
	ch := make(chan api.Notification, 16)
	h.mu.Lock()
	h.clients[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *hub) remove(ch chan api.Notification) {
	h.mu.Lock()
	delete(h.clients, ch)
	h.mu.Unlock()
}

func (h *hub) broadcast(n api.Notification) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for ch := range h.clients {
		select {
		case ch <- n:
		default:
			// Client buffer full, skip
		}
	}
}

// publish stores n and broadcasts it. Live subscribers still get n when it
// cannot be stored; it is then missing from the listing only.
func (s *Server) publish(ctx context.Context, n *api.Notification) {
	if err := s.store.CreateNotification(ctx, n); err != nil {
		log.Printf("store notification %q: %v", n.Title, err)
	}
	if n.ID == "" {
		n.ID = uuid.Must(uuid.NewV7()).String()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	s.hub.broadcast(*n)
}

func (s *Server) listNotifications(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	list, err := s.store.ListNotifications(r.Context(), limit)
	if err != nil {
		writeError(w, mapError(err), err.Error())
		return
	}
	writeData(w, http.StatusOK, list)
}

// streamNotifications serves notifications as server-sent events. Each event
// carries the notification id so clients can drop repeats after reconnecting.
func (s *Server) streamNotifications(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := s.hub.add()
	defer s.hub.remove(ch)

	fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case n := <-ch:
			data, err := json.Marshal(n)
			if err != nil {
				log.Printf("marshal notification %s: %v", n.ID, err)
				continue
			}
			fmt.Fprintf(w, "id: %s\nevent: notification\ndata: %s\n\n", n.ID, data)
			flusher.Flush()
		}
	}
}
