package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/kbrou/syscompta/internal/ledger"
	"github.com/kbrou/syscompta/internal/store"
)

type partnerRequest struct {
	Code            string `json:"code" validate:"required"`
	Type            string `json:"type" validate:"required,oneof=client vendor employee state social internal other"`
	Name            string `json:"name" validate:"required"`
	FirstName       string `json:"first_name"`
	Address         string `json:"address"`
	City            string `json:"city"`
	Country         string `json:"country"`
	Phone           string `json:"phone"`
	Email           string `json:"email" validate:"omitempty,email"`
	RCCM            string `json:"rccm"`
	TaxpayerNumber  string `json:"taxpayer_number"`
	LinkedAccountID int64  `json:"linked_account_id"`
	Notes           string `json:"notes"`
	Active          *bool  `json:"active"`
}

func (r *partnerRequest) toPartner(clientID int64) *ledger.Partner {
	p := &ledger.Partner{
		ClientID:        clientID,
		Code:            r.Code,
		Type:            ledger.PartnerType(r.Type),
		Name:            r.Name,
		FirstName:       r.FirstName,
		Address:         r.Address,
		City:            r.City,
		Country:         r.Country,
		Phone:           r.Phone,
		Email:           r.Email,
		RCCM:            r.RCCM,
		TaxpayerNumber:  r.TaxpayerNumber,
		LinkedAccountID: r.LinkedAccountID,
		Notes:           r.Notes,
		Active:          true,
	}
	if r.Active != nil {
		p.Active = *r.Active
	}
	return p
}

func (s *Server) createPartner(w http.ResponseWriter, r *http.Request) {
	clientID, ok := s.clientID(w, r)
	if !ok {
		return
	}
	var req partnerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	p := req.toPartner(clientID)
	if err := s.store.CreatePartner(r.Context(), p); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) listPartners(w http.ResponseWriter, r *http.Request) {
	clientID, ok := s.clientID(w, r)
	if !ok {
		return
	}

	filter := store.PartnerFilter{
		Type:   ledger.PartnerType(r.URL.Query().Get("type")),
		Search: r.URL.Query().Get("q"),
	}
	if v := r.URL.Query().Get("active"); v != "" {
		active := v == "true" || v == "1"
		filter.Active = &active
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		filter.Limit, _ = strconv.Atoi(v)
	}

	partners, err := s.store.ListPartners(r.Context(), clientID, filter)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if partners == nil {
		partners = []ledger.Partner{}
	}
	writeJSON(w, http.StatusOK, partners)
}

func (s *Server) searchPartners(w http.ResponseWriter, r *http.Request) {
	clientID, ok := s.clientID(w, r)
	if !ok {
		return
	}
	q := r.URL.Query().Get("q")
	journalType := ledger.JournalType(r.URL.Query().Get("journal_type"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	partners, err := s.store.SearchPartners(r.Context(), clientID, q, journalType, limit)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if partners == nil {
		partners = []ledger.Partner{}
	}
	writeJSON(w, http.StatusOK, partners)
}

func (s *Server) getPartner(w http.ResponseWriter, r *http.Request) {
	clientID, ok := s.clientID(w, r)
	if !ok {
		return
	}
	p, ok := s.partnerInScope(w, r, clientID)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) updatePartner(w http.ResponseWriter, r *http.Request) {
	clientID, ok := s.clientID(w, r)
	if !ok {
		return
	}
	existing, ok := s.partnerInScope(w, r, clientID)
	if !ok {
		return
	}

	var req partnerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	p := req.toPartner(clientID)
	p.ID = existing.ID
	if err := s.store.UpdatePartner(r.Context(), p); err != nil {
		writeStoreError(w, err)
		return
	}
	updated, err := s.store.GetPartner(r.Context(), p.ID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) deletePartner(w http.ResponseWriter, r *http.Request) {
	clientID, ok := s.clientID(w, r)
	if !ok {
		return
	}
	p, ok := s.partnerInScope(w, r, clientID)
	if !ok {
		return
	}
	if err := s.store.DeletePartner(r.Context(), p.ID); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) partnerInScope(w http.ResponseWriter, r *http.Request, clientID int64) (*ledger.Partner, bool) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid partner id")
		return nil, false
	}
	p, err := s.store.GetPartner(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return nil, false
	}
	if p.ClientID != clientID {
		writeStoreError(w, ledger.ErrPartnerNotFound)
		return nil, false
	}
	return p, true
}
