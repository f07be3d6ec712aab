package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/kbrou/syscompta/internal/ledger"
)

type clientRequest struct {
	Name           string `json:"name" validate:"required"`
	RCCM           string `json:"rccm"`
	TaxpayerNumber string `json:"taxpayer_number"`
	LegalForm      string `json:"legal_form"`
	ActivitySector string `json:"activity_sector"`
	FiscalRegime   string `json:"fiscal_regime"`
	Status         string `json:"status" validate:"omitempty,oneof=active inactive archived prospect"`
	Notes          string `json:"notes"`
}

func (s *Server) createClient(w http.ResponseWriter, r *http.Request) {
	var req clientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	c := &ledger.Client{
		Name:           req.Name,
		RCCM:           req.RCCM,
		TaxpayerNumber: req.TaxpayerNumber,
		LegalForm:      req.LegalForm,
		ActivitySector: req.ActivitySector,
		FiscalRegime:   req.FiscalRegime,
		Status:         ledger.ClientStatus(req.Status),
		Notes:          req.Notes,
	}
	if err := s.store.CreateClient(r.Context(), c); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) listClients(w http.ResponseWriter, r *http.Request) {
	clients, err := s.store.ListClients(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if clients == nil {
		clients = []ledger.Client{}
	}
	writeJSON(w, http.StatusOK, clients)
}

func (s *Server) getClient(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "clientID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid client id")
		return
	}
	c, err := s.store.GetClient(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) updateClient(w http.ResponseWriter, r *http.Request) {
	id, ok := s.clientID(w, r)
	if !ok {
		return
	}
	var req clientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	c := &ledger.Client{
		ID:             id,
		Name:           req.Name,
		RCCM:           req.RCCM,
		TaxpayerNumber: req.TaxpayerNumber,
		LegalForm:      req.LegalForm,
		ActivitySector: req.ActivitySector,
		FiscalRegime:   req.FiscalRegime,
		Status:         ledger.ClientStatus(req.Status),
		Notes:          req.Notes,
	}
	if err := s.store.UpdateClient(r.Context(), c); err != nil {
		writeStoreError(w, err)
		return
	}
	updated, err := s.store.GetClient(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// bootstrapClient re-runs the chart bootstrap. Already-bootstrapped files
// report zero created.
func (s *Server) bootstrapClient(w http.ResponseWriter, r *http.Request) {
	id, ok := s.clientID(w, r)
	if !ok {
		return
	}
	n, err := s.store.BootstrapChart(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"created": n})
}

func (s *Server) getDashboard(w http.ResponseWriter, r *http.Request) {
	id, ok := s.clientID(w, r)
	if !ok {
		return
	}

	now := time.Now()
	year := now.Year()
	month := 0
	if v := r.URL.Query().Get("year"); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid year")
			return
		}
		year = y
	}
	if v := r.URL.Query().Get("month"); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil || m < 1 || m > 12 {
			writeError(w, http.StatusBadRequest, "invalid month")
			return
		}
		month = m
	}

	kpis, err := s.store.PeriodKPIs(r.Context(), id, year, month)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, kpis)
}
