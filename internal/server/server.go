package server

import (
	"log"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/simonvc/auditledger/internal/store"
)

type Server struct {
	store  *store.Store
	router chi.Router
	addr   string
	hub    *hub
}

func New(st *store.Store, addr string) *Server {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	s := &Server{store: st, router: r, addr: addr, hub: newHub()}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/audit-cycles/{cycleId}/trial-balances", func(r chi.Router) {
			r.Post("/", s.createTrialBalance)
			r.Get("/", s.listTrialBalances)

			r.Route("/{tbId}", func(r chi.Router) {
				r.Get("/", s.getTrialBalance)
				r.Get("/classifications", s.listClassifications)

				// Audit entries (adjustments and reclassifications)
				r.Get("/entries", s.listEntries)
				r.Post("/entries", s.createEntry)
				r.Get("/entries/{id}", s.getEntry)
				r.Put("/entries/{id}", s.updateEntry)
				r.Delete("/entries/{id}", s.deleteEntry)
			})
		})

		// Notifications
		r.Get("/notifications", s.listNotifications)
		r.Get("/notifications/stream", s.streamNotifications)
	})

	return s
}

func (s *Server) ListenAndServe() error {
	log.Printf("auditledger server listening on %s", s.addr)
	return http.ListenAndServe(s.addr, s.router)
}

func (s *Server) Serve(ln net.Listener) error {
	log.Printf("auditledger server listening on %s", ln.Addr())
	return http.Serve(ln, s.router)
}

func (s *Server) Handler() http.Handler {
	return s.router
}
