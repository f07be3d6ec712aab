package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/kbrou/syscompta/internal/ledger"
)

type errorResponse struct {
	Error  string              `json:"error"`
	Errors []ledger.FieldError `json:"errors,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeStoreError maps a domain error onto a status. Validation failures keep
// their per-field structure so a client can show the full correction list.
func writeStoreError(w http.ResponseWriter, err error) {
	var ve ledger.ValidationErrors
	if errors.As(err, &ve) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "validation failed", Errors: ve})
		return
	}
	writeError(w, mapError(err), err.Error())
}

func mapError(err error) int {
	switch {
	case errors.Is(err, ledger.ErrClientNotFound),
		errors.Is(err, ledger.ErrAccountNotFound),
		errors.Is(err, ledger.ErrJournalNotFound),
		errors.Is(err, ledger.ErrPartnerNotFound),
		errors.Is(err, ledger.ErrTaxRateNotFound),
		errors.Is(err, ledger.ErrEntryNotFound),
		errors.Is(err, ledger.ErrPieceNotFound):
		return http.StatusNotFound
	case errors.Is(err, ledger.ErrDuplicateNumber),
		errors.Is(err, ledger.ErrDuplicateCode),
		errors.Is(err, ledger.ErrReferencedAccount),
		errors.Is(err, ledger.ErrReferencedJournal),
		errors.Is(err, ledger.ErrReferencedPartner),
		errors.Is(err, ledger.ErrReferencedTaxAccount):
		return http.StatusConflict
	case errors.Is(err, ledger.ErrEmptyAccountNumber),
		errors.Is(err, ledger.ErrEmptyAccountLabel),
		errors.Is(err, ledger.ErrInvalidNature),
		errors.Is(err, ledger.ErrInvalidAccountType),
		errors.Is(err, ledger.ErrDetailParent),
		errors.Is(err, ledger.ErrNumberPrefix),
		errors.Is(err, ledger.ErrMalformedAmount),
		errors.Is(err, ledger.ErrMalformedDate),
		errors.Is(err, ledger.ErrInvalidDay),
		errors.Is(err, ledger.ErrEmptyClientName),
		errors.Is(err, ledger.ErrEmptyJournalCode),
		errors.Is(err, ledger.ErrEmptyJournalLabel),
		errors.Is(err, ledger.ErrInvalidJournalType),
		errors.Is(err, ledger.ErrEmptyPartnerCode),
		errors.Is(err, ledger.ErrEmptyPartnerName),
		errors.Is(err, ledger.ErrInvalidPartnerType),
		errors.Is(err, ledger.ErrEmployeeFirstName),
		errors.Is(err, ledger.ErrEmptyTaxCode),
		errors.Is(err, ledger.ErrEmptyTaxLabel),
		errors.Is(err, ledger.ErrInvalidTaxType),
		errors.Is(err, ledger.ErrNegativeRate),
		errors.Is(err, ledger.ErrCounterpartNotTreasury),
		errors.Is(err, ledger.ErrLinkedAccountNotPartner),
		errors.Is(err, ledger.ErrTaxAccountClass):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func pathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}

// clientID pulls and resolves the client scope from the path; every nested
// route requires the file to exist.
func (s *Server) clientID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := pathID(r, "clientID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid client id")
		return 0, false
	}
	if _, err := s.store.GetClient(r.Context(), id); err != nil {
		writeStoreError(w, err)
		return 0, false
	}
	return id, true
}
