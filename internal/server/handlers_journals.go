package server

import (
	"encoding/json"
	"net/http"

	"github.com/kbrou/syscompta/internal/ledger"
)

type journalRequest struct {
	Code                 string `json:"code" validate:"required"`
	Label                string `json:"label" validate:"required"`
	Type                 string `json:"type" validate:"required,oneof=purchases sales bank cash misc opening"`
	CounterpartAccountID int64  `json:"counterpart_account_id"`
	Active               *bool  `json:"active"`
}

func (s *Server) createJournal(w http.ResponseWriter, r *http.Request) {
	clientID, ok := s.clientID(w, r)
	if !ok {
		return
	}
	var req journalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	j := &ledger.Journal{
		ClientID:             clientID,
		Code:                 req.Code,
		Label:                req.Label,
		Type:                 ledger.JournalType(req.Type),
		CounterpartAccountID: req.CounterpartAccountID,
		Active:               true,
	}
	if req.Active != nil {
		j.Active = *req.Active
	}
	if err := s.store.CreateJournal(r.Context(), j); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, j)
}

func (s *Server) listJournals(w http.ResponseWriter, r *http.Request) {
	clientID, ok := s.clientID(w, r)
	if !ok {
		return
	}
	journals, err := s.store.ListJournals(r.Context(), clientID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if journals == nil {
		journals = []ledger.Journal{}
	}
	writeJSON(w, http.StatusOK, journals)
}

// getJournal returns the journal plus the info the grid needs up front: the
// default entry label and the resolved counterpart account.
func (s *Server) getJournal(w http.ResponseWriter, r *http.Request) {
	clientID, ok := s.clientID(w, r)
	if !ok {
		return
	}
	j, ok := s.journalInScope(w, r, clientID)
	if !ok {
		return
	}

	resp := map[string]any{
		"journal":             j,
		"default_entry_label": j.DefaultEntryLabel(),
	}
	if j.CounterpartAccountID != 0 {
		acct, err := s.store.GetAccount(r.Context(), j.CounterpartAccountID)
		if err == nil {
			resp["counterpart_account"] = acct
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) updateJournal(w http.ResponseWriter, r *http.Request) {
	clientID, ok := s.clientID(w, r)
	if !ok {
		return
	}
	j, ok := s.journalInScope(w, r, clientID)
	if !ok {
		return
	}

	var req journalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	j.Code = req.Code
	j.Label = req.Label
	j.Type = ledger.JournalType(req.Type)
	j.CounterpartAccountID = req.CounterpartAccountID
	if req.Active != nil {
		j.Active = *req.Active
	}
	if err := s.store.UpdateJournal(r.Context(), j); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, j)
}

func (s *Server) deleteJournal(w http.ResponseWriter, r *http.Request) {
	clientID, ok := s.clientID(w, r)
	if !ok {
		return
	}
	j, ok := s.journalInScope(w, r, clientID)
	if !ok {
		return
	}
	if err := s.store.DeleteJournal(r.Context(), j.ID); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) journalInScope(w http.ResponseWriter, r *http.Request, clientID int64) (*ledger.Journal, bool) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid journal id")
		return nil, false
	}
	j, err := s.store.GetJournal(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return nil, false
	}
	if j.ClientID != clientID {
		writeStoreError(w, ledger.ErrJournalNotFound)
		return nil, false
	}
	return j, true
}
