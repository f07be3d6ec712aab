package server

import (
	"encoding/json"
	"net/http"

	"github.com/kbrou/syscompta/internal/ledger"
	"github.com/shopspring/decimal"
)

type taxRateRequest struct {
	Code         string `json:"code" validate:"required"`
	Label        string `json:"label" validate:"required"`
	Type         string `json:"type" validate:"required,oneof=collected deductible other"`
	Rate         string `json:"rate" validate:"required"`
	TaxAccountID int64  `json:"tax_account_id" validate:"required"`
	Active       *bool  `json:"active"`
}

func (s *Server) createTaxRate(w http.ResponseWriter, r *http.Request) {
	clientID, ok := s.clientID(w, r)
	if !ok {
		return
	}
	t, ok := s.decodeTaxRate(w, r, clientID)
	if !ok {
		return
	}
	if err := s.store.CreateTaxRate(r.Context(), t); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (s *Server) listTaxRates(w http.ResponseWriter, r *http.Request) {
	clientID, ok := s.clientID(w, r)
	if !ok {
		return
	}
	rates, err := s.store.ListTaxRates(r.Context(), clientID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if rates == nil {
		rates = []ledger.TaxRate{}
	}
	writeJSON(w, http.StatusOK, rates)
}

func (s *Server) getTaxRate(w http.ResponseWriter, r *http.Request) {
	clientID, ok := s.clientID(w, r)
	if !ok {
		return
	}
	t, ok := s.taxRateInScope(w, r, clientID)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) updateTaxRate(w http.ResponseWriter, r *http.Request) {
	clientID, ok := s.clientID(w, r)
	if !ok {
		return
	}
	existing, ok := s.taxRateInScope(w, r, clientID)
	if !ok {
		return
	}
	t, ok := s.decodeTaxRate(w, r, clientID)
	if !ok {
		return
	}
	t.ID = existing.ID
	if err := s.store.UpdateTaxRate(r.Context(), t); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) deleteTaxRate(w http.ResponseWriter, r *http.Request) {
	clientID, ok := s.clientID(w, r)
	if !ok {
		return
	}
	t, ok := s.taxRateInScope(w, r, clientID)
	if !ok {
		return
	}
	if err := s.store.DeleteTaxRate(r.Context(), t.ID); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) decodeTaxRate(w http.ResponseWriter, r *http.Request, clientID int64) (*ledger.TaxRate, bool) {
	var req taxRateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return nil, false
	}
	if err := s.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	rate, err := decimal.NewFromString(req.Rate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid rate: "+req.Rate)
		return nil, false
	}

	t := &ledger.TaxRate{
		ClientID:     clientID,
		Code:         req.Code,
		Label:        req.Label,
		Type:         ledger.TaxType(req.Type),
		Rate:         rate,
		TaxAccountID: req.TaxAccountID,
		Active:       true,
	}
	if req.Active != nil {
		t.Active = *req.Active
	}
	return t, true
}

func (s *Server) taxRateInScope(w http.ResponseWriter, r *http.Request, clientID int64) (*ledger.TaxRate, bool) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid tax rate id")
		return nil, false
	}
	t, err := s.store.GetTaxRate(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return nil, false
	}
	if t.ClientID != clientID {
		writeStoreError(w, ledger.ErrTaxRateNotFound)
		return nil, false
	}
	return t, true
}
