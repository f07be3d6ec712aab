package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/kbrou/syscompta/internal/ledger"
	"github.com/kbrou/syscompta/internal/store"
)

type accountRequest struct {
	TemplateID int64  `json:"template_id"`
	Number     string `json:"number" validate:"required"`
	Label      string `json:"label"`
	Type       string `json:"type"`
	Nature     string `json:"nature" validate:"omitempty,oneof=collective centralizing detail"`
	ParentID   int64  `json:"parent_id"`
	UsualSide  string `json:"usual_side" validate:"omitempty,oneof=debit credit"`
	Lettrable  bool   `json:"lettrable"`
	Notes      string `json:"notes"`
}

func (r *accountRequest) toAccount(clientID int64) *ledger.Account {
	return &ledger.Account{
		ClientID:   clientID,
		TemplateID: r.TemplateID,
		Number:     r.Number,
		Label:      r.Label,
		Type:       ledger.AccountType(r.Type),
		Nature:     ledger.AccountNature(r.Nature),
		ParentID:   r.ParentID,
		UsualSide:  ledger.BalanceSide(r.UsualSide),
		Lettrable:  r.Lettrable,
		Active:     true,
		Notes:      r.Notes,
	}
}

func (s *Server) createAccount(w http.ResponseWriter, r *http.Request) {
	clientID, ok := s.clientID(w, r)
	if !ok {
		return
	}
	var req accountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	acct := req.toAccount(clientID)
	if err := s.store.CreateAccount(r.Context(), acct); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, acct)
}

func (s *Server) listAccounts(w http.ResponseWriter, r *http.Request) {
	clientID, ok := s.clientID(w, r)
	if !ok {
		return
	}

	filter := store.AccountFilter{
		Nature: ledger.AccountNature(r.URL.Query().Get("nature")),
		Type:   ledger.AccountType(r.URL.Query().Get("type")),
		Search: r.URL.Query().Get("q"),
	}
	if v := r.URL.Query().Get("active"); v != "" {
		active := v == "true" || v == "1"
		filter.Active = &active
	}
	if v := r.URL.Query().Get("postable"); v == "true" || v == "1" {
		filter.PostableOnly = true
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		filter.Limit, _ = strconv.Atoi(v)
	}

	accounts, err := s.store.ListAccounts(r.Context(), clientID, filter)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if accounts == nil {
		accounts = []ledger.Account{}
	}
	writeJSON(w, http.StatusOK, accounts)
}

func (s *Server) searchAccounts(w http.ResponseWriter, r *http.Request) {
	clientID, ok := s.clientID(w, r)
	if !ok {
		return
	}
	q := r.URL.Query().Get("q")
	journalType := ledger.JournalType(r.URL.Query().Get("journal_type"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	accounts, err := s.store.SearchAccounts(r.Context(), clientID, q, journalType, limit)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if accounts == nil {
		accounts = []ledger.Account{}
	}
	writeJSON(w, http.StatusOK, accounts)
}

func (s *Server) getAccount(w http.ResponseWriter, r *http.Request) {
	clientID, ok := s.clientID(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid account id")
		return
	}
	acct, err := s.store.GetAccount(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if acct.ClientID != clientID {
		writeStoreError(w, ledger.ErrAccountNotFound)
		return
	}
	writeJSON(w, http.StatusOK, acct)
}

func (s *Server) updateAccount(w http.ResponseWriter, r *http.Request) {
	clientID, ok := s.clientID(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid account id")
		return
	}
	existing, err := s.store.GetAccount(r.Context(), id)
	if err != nil || existing.ClientID != clientID {
		writeStoreError(w, ledger.ErrAccountNotFound)
		return
	}

	var req accountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	acct := req.toAccount(clientID)
	acct.ID = id
	acct.Active = existing.Active
	if err := s.store.UpdateAccount(r.Context(), acct); err != nil {
		writeStoreError(w, err)
		return
	}
	updated, err := s.store.GetAccount(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) setAccountActive(w http.ResponseWriter, r *http.Request) {
	clientID, ok := s.clientID(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid account id")
		return
	}
	existing, err := s.store.GetAccount(r.Context(), id)
	if err != nil || existing.ClientID != clientID {
		writeStoreError(w, ledger.ErrAccountNotFound)
		return
	}

	var req struct {
		Active bool `json:"active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if err := s.store.SetAccountActive(r.Context(), id, req.Active); err != nil {
		writeStoreError(w, err)
		return
	}
	updated, err := s.store.GetAccount(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) deleteAccount(w http.ResponseWriter, r *http.Request) {
	clientID, ok := s.clientID(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid account id")
		return
	}
	existing, err := s.store.GetAccount(r.Context(), id)
	if err != nil || existing.ClientID != clientID {
		writeStoreError(w, ledger.ErrAccountNotFound)
		return
	}
	if err := s.store.DeleteAccount(r.Context(), id); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
