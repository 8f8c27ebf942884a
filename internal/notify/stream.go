package notify

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/simonvc/auditledger/internal/api"
)

const (
	DefaultReconnect   = 5 * time.Second
	DefaultDedupWindow = 60 * time.Second
)

// Stream consumes the backend's server-sent notification events. After an
// error or end of stream it reconnects after a fixed delay. A notification
// whose id was already delivered within the dedup window is dropped.
type Stream struct {
	url         string
	httpClient  *http.Client
	reconnect   time.Duration
	dedupWindow time.Duration
	now         func() time.Time

	mu   sync.Mutex
	seen map[string]time.Time
}

type StreamOption func(*Stream)

func WithReconnect(d time.Duration) StreamOption {
	return func(s *Stream) { s.reconnect = d }
}

func WithDedupWindow(d time.Duration) StreamOption {
	return func(s *Stream) { s.dedupWindow = d }
}

func WithClock(now func() time.Time) StreamOption {
	return func(s *Stream) { s.now = now }
}

func WithHTTPClient(hc *http.Client) StreamOption {
	return func(s *Stream) { s.httpClient = hc }
}

func NewStream(url string, opts ...StreamOption) *Stream {
	s := &Stream{
		url: url,
		// No timeout: the connection is long-lived.
		httpClient:  &http.Client{},
		reconnect:   DefaultReconnect,
		dedupWindow: DefaultDedupWindow,
		now:         time.Now,
		seen:        make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run connects and delivers notifications until ctx is cancelled.
func (s *Stream) Run(ctx context.Context, deliver func(api.Notification)) error {
	for {
		err := s.connect(ctx, deliver)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			log.Printf("notification stream: %v; reconnecting in %s", err, s.reconnect)
		} else {
			log.Printf("notification stream closed; reconnecting in %s", s.reconnect)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.reconnect):
		}
	}
}

func (s *Stream) connect(ctx context.Context, deliver func(api.Notification)) error {
	req, err := http.NewRequestWithContext(ctx, "GET", s.url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("connect: unexpected status %s", resp.Status)
	}
	return s.read(resp.Body, deliver)
}

// read parses the event stream until EOF.
func (s *Stream) read(r io.Reader, deliver func(api.Notification)) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var id, event string
	var data []string
	dispatch := func() {
		defer func() { id, event, data = "", "", nil }()
		if len(data) == 0 || (event != "" && event != "notification") {
			return
		}
		var n api.Notification
		if err := json.Unmarshal([]byte(strings.Join(data, "\n")), &n); err != nil {
			log.Printf("notification stream: bad event: %v", err)
			return
		}
		if n.ID == "" {
			n.ID = id
		}
		if s.admit(n.ID) {
			deliver(n)
		}
	}

	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			dispatch()
			continue
		}
		if strings.HasPrefix(line, ":") {
			continue
		}
		field, value, _ := strings.Cut(line, ":")
		value = strings.TrimPrefix(value, " ")
		switch field {
		case "id":
			id = value
		case "event":
			event = value
		case "data":
			data = append(data, value)
		}
	}
	return sc.Err()
}

// admit reports whether a notification with this id should be delivered and
// records it. Records older than the window are pruned.
func (s *Stream) admit(id string) bool {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()

	for k, at := range s.seen {
		if now.Sub(at) >= s.dedupWindow {
			delete(s.seen, k)
		}
	}
	if id == "" {
		return true
	}
	if _, dup := s.seen[id]; dup {
		return false
	}
	s.seen[id] = now
	return true
}
