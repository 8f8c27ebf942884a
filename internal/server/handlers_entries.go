package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/simonvc/auditledger/internal/api"
	"github.com/simonvc/auditledger/internal/audit"
	"github.com/simonvc/auditledger/internal/store"
)

// trialBalanceID resolves the {cycleId}/{tbId} pair, writing a 404 when the
// trial balance is not part of the cycle.
func (s *Server) trialBalanceID(w http.ResponseWriter, r *http.Request) (string, bool) {
	cycleID := chi.URLParam(r, "cycleId")
	tbID := chi.URLParam(r, "tbId")
	if _, err := s.store.GetTrialBalance(r.Context(), cycleID, tbID); err != nil {
		writeError(w, mapError(err), err.Error())
		return "", false
	}
	return tbID, true
}

func (s *Server) listEntries(w http.ResponseWriter, r *http.Request) {
	tbID, ok := s.trialBalanceID(w, r)
	if !ok {
		return
	}

	var filter store.EntryFilter
	if t := r.URL.Query().Get("type"); t != "" {
		kind, err := audit.ParseKind(t)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		filter.Kind = kind
	}

	entries, err := s.store.ListEntries(r.Context(), tbID, filter)
	if err != nil {
		writeError(w, mapError(err), err.Error())
		return
	}
	out := make([]api.Entry, len(entries))
	for i, e := range entries {
		out[i] = api.FromAudit(e)
	}
	writeData(w, http.StatusOK, out)
}

func (s *Server) getEntry(w http.ResponseWriter, r *http.Request) {
	tbID, ok := s.trialBalanceID(w, r)
	if !ok {
		return
	}
	e, err := s.store.GetEntry(r.Context(), tbID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, mapError(err), err.Error())
		return
	}
	writeData(w, http.StatusOK, api.FromAudit(*e))
}

func (s *Server) createEntry(w http.ResponseWriter, r *http.Request) {
	tbID, ok := s.trialBalanceID(w, r)
	if !ok {
		return
	}

	var req api.CreateEntryRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	kind, err := audit.ParseKind(string(req.Type))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	status := audit.StatusDraft
	if req.Status != "" {
		if status, err = audit.ParseStatus(string(req.Status)); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	e := req.Entry()
	e.Kind, e.Status = kind, status
	if err := s.store.CreateEntry(r.Context(), tbID, e); err != nil {
		writeError(w, mapError(err), err.Error())
		return
	}

	// Re-read so lines carry account code and name.
	created, err := s.store.GetEntry(r.Context(), tbID, e.ID)
	if err != nil {
		writeError(w, mapError(err), err.Error())
		return
	}

	kindNote := api.NotifyEntryCreated
	if created.Status == audit.StatusPosted {
		kindNote = api.NotifyEntryPosted
	}
	s.notify(r.Context(), kindNote, created, "")
	writeData(w, http.StatusCreated, api.FromAudit(*created))
}

func (s *Server) updateEntry(w http.ResponseWriter, r *http.Request) {
	tbID, ok := s.trialBalanceID(w, r)
	if !ok {
		return
	}

	var req api.UpdateEntryRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	status, err := audit.ParseStatus(string(req.Status))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	id := chi.URLParam(r, "id")
	before, err := s.store.GetEntry(r.Context(), tbID, id)
	if err != nil {
		writeError(w, mapError(err), err.Error())
		return
	}

	updated, err := s.store.UpdateEntry(r.Context(), tbID, id, req.Code, req.Description, status)
	if err != nil {
		writeError(w, mapError(err), err.Error())
		return
	}

	kindNote := api.NotifyEntryUpdated
	if before.Status == audit.StatusDraft && updated.Status == audit.StatusPosted {
		kindNote = api.NotifyEntryPosted
	}
	s.notify(r.Context(), kindNote, updated, "")
	writeData(w, http.StatusOK, api.FromAudit(*updated))
}

func (s *Server) deleteEntry(w http.ResponseWriter, r *http.Request) {
	tbID, ok := s.trialBalanceID(w, r)
	if !ok {
		return
	}

	deleted, err := s.store.DeleteEntry(r.Context(), tbID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, mapError(err), err.Error())
		return
	}

	msg := ""
	if deleted.Status == audit.StatusPosted {
		msg = "posted effect reversed"
	}
	s.notify(r.Context(), api.NotifyEntryDeleted, deleted, msg)
	writeData(w, http.StatusOK, api.FromAudit(*deleted))
}

// notify records an entry notification and pushes it to stream subscribers.
// Failures are logged; the mutation has already been committed.
func (s *Server) notify(ctx context.Context, kind string, e *audit.Entry, message string) {
	verb := map[string]string{
		api.NotifyEntryCreated: "created",
		api.NotifyEntryPosted:  "posted",
		api.NotifyEntryUpdated: "updated",
		api.NotifyEntryDeleted: "deleted",
	}[kind]
	if message == "" {
		message = e.Description
	}
	s.publish(ctx, &api.Notification{
		Kind:    kind,
		Title:   fmt.Sprintf("%s %s %s", e.Kind.Label(), e.Code, verb),
		Message: message,
		EntryID: e.ID,
	})
}
