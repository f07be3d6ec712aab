package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/kbrou/syscompta/internal/ledger"
	"github.com/kbrou/syscompta/internal/store"
)

const apiDateLayout = "2006-01-02"

type entryLineRequest struct {
	Day            int    `json:"day" validate:"omitempty,min=1,max=31"`
	PieceNumber    string `json:"piece_number"`
	InvoiceNumber  string `json:"invoice_number"`
	Reference      string `json:"reference"`
	AccountID      int64  `json:"account_id"`
	PartnerID      int64  `json:"partner_id"`
	Label          string `json:"label"`
	DueDate        string `json:"due_date"`
	Reconciliation string `json:"reconciliation"`
	Debit          string `json:"debit"`
	Credit         string `json:"credit"`
}

type createEntryRequest struct {
	JournalID     int64              `json:"journal_id" validate:"required"`
	Date          string             `json:"date" validate:"required"`
	PieceNumber   string             `json:"piece_number"`
	Label         string             `json:"label" validate:"required"`
	InvoiceNumber string             `json:"invoice_number"`
	Reference     string             `json:"reference"`
	PartnerID     int64              `json:"partner_id"`
	DueDate       string             `json:"due_date"`
	ControlAmount string             `json:"control_amount"`
	Lines         []entryLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// createEntry is the validate-and-commit operation: the whole submission is
// validated as one set and either fully persisted or fully rejected.
func (s *Server) createEntry(w http.ResponseWriter, r *http.Request) {
	clientID, ok := s.clientID(w, r)
	if !ok {
		return
	}
	var req createEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	journal, err := s.store.GetJournal(r.Context(), req.JournalID)
	if err != nil || journal.ClientID != clientID {
		writeStoreError(w, ledger.ErrJournalNotFound)
		return
	}

	date, err := time.Parse(apiDateLayout, req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date, want YYYY-MM-DD")
		return
	}

	var errs ledger.ValidationErrors
	if req.PartnerID != 0 {
		p, err := s.store.GetPartner(r.Context(), req.PartnerID)
		if err != nil || p.ClientID != clientID {
			errs.Add(-1, "partner", fmt.Sprintf("unknown partner %d", req.PartnerID))
		}
	}
	drafts := make([]ledger.LineDraft, len(req.Lines))
	for i, lr := range req.Lines {
		d := &drafts[i]
		d.Day = lr.Day
		d.PieceNumber = lr.PieceNumber
		d.InvoiceNumber = lr.InvoiceNumber
		d.Reference = lr.Reference
		d.Label = lr.Label
		d.Reconciliation = lr.Reconciliation

		if d.Debit, err = ledger.ParseAmount(lr.Debit); err != nil {
			errs.Add(i, "debit", err.Error())
		}
		if d.Credit, err = ledger.ParseAmount(lr.Credit); err != nil {
			errs.Add(i, "credit", err.Error())
		}
		if lr.DueDate != "" {
			t, err := time.Parse(apiDateLayout, lr.DueDate)
			if err != nil {
				errs.Add(i, "due_date", "invalid date, want YYYY-MM-DD")
			} else {
				d.DueDate = &t
			}
		}

		if lr.AccountID != 0 {
			acct, err := s.store.GetAccount(r.Context(), lr.AccountID)
			if err != nil || acct.ClientID != clientID {
				errs.Add(i, "account", fmt.Sprintf("unknown account %d", lr.AccountID))
			} else {
				d.Account = acct
			}
		}
		if lr.PartnerID != 0 {
			p, err := s.store.GetPartner(r.Context(), lr.PartnerID)
			if err != nil || p.ClientID != clientID {
				errs.Add(i, "partner", fmt.Sprintf("unknown partner %d", lr.PartnerID))
			} else {
				d.Partner = p
			}
		}
	}

	_, ruleErrs := ledger.ValidateLines(drafts)
	errs = append(errs, ruleErrs...)
	if len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "validation failed", Errors: errs})
		return
	}

	entry := &ledger.JournalEntry{
		ClientID:      clientID,
		JournalID:     journal.ID,
		Date:          date,
		PieceNumber:   req.PieceNumber,
		Label:         req.Label,
		InvoiceNumber: req.InvoiceNumber,
		Reference:     req.Reference,
		PartnerID:     req.PartnerID,
	}
	if req.DueDate != "" {
		t, err := time.Parse(apiDateLayout, req.DueDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid due date, want YYYY-MM-DD")
			return
		}
		entry.DueDate = &t
	}
	if req.ControlAmount != "" {
		d, err := ledger.ParseAmount(req.ControlAmount)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		entry.ControlAmount = &d
	}

	for i := range drafts {
		d := &drafts[i]
		if !d.Active() {
			continue
		}
		line := ledger.EntryLine{
			AccountID:      d.Account.ID,
			Label:          d.Label,
			DueDate:        d.DueDate,
			Reconciliation: d.Reconciliation,
			Day:            d.Day,
			PieceNumber:    d.PieceNumber,
			InvoiceNumber:  d.InvoiceNumber,
			Reference:      d.Reference,
			Debit:          d.Debit,
			Credit:         d.Credit,
		}
		if d.Partner != nil {
			line.PartnerID = d.Partner.ID
		}
		entry.Lines = append(entry.Lines, line)
	}

	if err := s.store.CreateEntry(r.Context(), entry); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (s *Server) listEntries(w http.ResponseWriter, r *http.Request) {
	clientID, ok := s.clientID(w, r)
	if !ok {
		return
	}

	filter := store.EntryFilter{Search: r.URL.Query().Get("q")}
	if v := r.URL.Query().Get("journal_id"); v != "" {
		filter.JournalID, _ = strconv.ParseInt(v, 10, 64)
	}
	if v := r.URL.Query().Get("partner_id"); v != "" {
		filter.PartnerID, _ = strconv.ParseInt(v, 10, 64)
	}
	if v := r.URL.Query().Get("from"); v != "" {
		t, err := time.Parse(apiDateLayout, v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid from date, want YYYY-MM-DD")
			return
		}
		filter.DateFrom = &t
	}
	if v := r.URL.Query().Get("to"); v != "" {
		t, err := time.Parse(apiDateLayout, v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid to date, want YYYY-MM-DD")
			return
		}
		filter.DateTo = &t
	}
	if v := r.URL.Query().Get("amount"); v != "" {
		d, err := ledger.ParseAmount(v)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		filter.Amount = &d
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		filter.Limit, _ = strconv.Atoi(v)
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		filter.Offset, _ = strconv.Atoi(v)
	}

	entries, err := s.store.ListEntries(r.Context(), clientID, filter)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if entries == nil {
		entries = []ledger.JournalEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) getEntry(w http.ResponseWriter, r *http.Request) {
	clientID, ok := s.clientID(w, r)
	if !ok {
		return
	}
	entry, err := s.store.GetEntry(r.Context(), chi.URLParam(r, "id"))
	if err != nil || entry.ClientID != clientID {
		writeStoreError(w, ledger.ErrEntryNotFound)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (s *Server) deleteEntry(w http.ResponseWriter, r *http.Request) {
	clientID, ok := s.clientID(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")
	entry, err := s.store.GetEntry(r.Context(), id)
	if err != nil || entry.ClientID != clientID {
		writeStoreError(w, ledger.ErrEntryNotFound)
		return
	}
	if err := s.store.DeleteEntry(r.Context(), id); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
