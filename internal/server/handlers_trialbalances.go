package server

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/simonvc/auditledger/internal/api"
	"github.com/simonvc/auditledger/internal/audit"
)

func (s *Server) createTrialBalance(w http.ResponseWriter, r *http.Request) {
	var req api.CreateTrialBalanceRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	tb := &audit.TrialBalance{
		CycleID:  chi.URLParam(r, "cycleId"),
		Name:     req.Name,
		Accounts: make([]audit.TrialBalanceAccount, len(req.Accounts)),
	}
	for i, a := range req.Accounts {
		tb.Accounts[i] = audit.TrialBalanceAccount{
			Code:           a.Code,
			AccountName:    a.AccountName,
			Classification: a.Classification,
			CurrentYear:    a.CurrentYear,
			PriorYear:      a.PriorYear,
		}
	}

	if err := s.store.CreateTrialBalance(r.Context(), tb); err != nil {
		writeError(w, mapError(err), err.Error())
		return
	}

	s.publish(r.Context(), &api.Notification{
		Kind:    api.NotifyTBImported,
		Title:   fmt.Sprintf("Trial balance %s imported", tb.Name),
		Message: fmt.Sprintf("%d accounts", len(tb.Accounts)),
	})
	writeData(w, http.StatusCreated, api.TrialBalance(*tb))
}

func (s *Server) listTrialBalances(w http.ResponseWriter, r *http.Request) {
	tbs, err := s.store.ListTrialBalances(r.Context(), chi.URLParam(r, "cycleId"))
	if err != nil {
		writeError(w, mapError(err), err.Error())
		return
	}
	if tbs == nil {
		tbs = []audit.TrialBalance{}
	}
	writeData(w, http.StatusOK, tbs)
}

func (s *Server) getTrialBalance(w http.ResponseWriter, r *http.Request) {
	tb, err := s.store.GetTrialBalance(r.Context(), chi.URLParam(r, "cycleId"), chi.URLParam(r, "tbId"))
	if err != nil {
		writeError(w, mapError(err), err.Error())
		return
	}
	writeData(w, http.StatusOK, api.TrialBalance(*tb))
}

func (s *Server) listClassifications(w http.ResponseWriter, r *http.Request) {
	tb, err := s.store.GetTrialBalance(r.Context(), chi.URLParam(r, "cycleId"), chi.URLParam(r, "tbId"))
	if err != nil {
		writeError(w, mapError(err), err.Error())
		return
	}
	groups := audit.ExtractGroups(tb.Accounts)
	if groups == nil {
		groups = []audit.ClassificationGroup{}
	}
	writeData(w, http.StatusOK, groups)
}
