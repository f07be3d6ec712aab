package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/kbrou/syscompta/internal/grid"
	"github.com/kbrou/syscompta/internal/store"
)

type gridRequest struct {
	Header grid.HeaderInput `json:"header"`
	Rows   []grid.RowInput  `json:"rows"`
}

func (s *Server) gridHandler(w http.ResponseWriter, r *http.Request, clientID int64) (*grid.Handler, bool) {
	journalID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid journal id")
		return nil, false
	}
	h, err := grid.NewHandler(r.Context(), s.store, clientID, journalID, time.Now())
	if err != nil {
		writeStoreError(w, err)
		return nil, false
	}
	return h, true
}

// previewGrid parses and validates the grid without touching the ledger, so
// the client can show running totals and the full correction list.
func (s *Server) previewGrid(w http.ResponseWriter, r *http.Request) {
	clientID, ok := s.clientID(w, r)
	if !ok {
		return
	}
	h, ok := s.gridHandler(w, r, clientID)
	if !ok {
		return
	}
	var req gridRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	res, msgs := h.ProcessRows(r.Context(), req.Rows)
	writeJSON(w, http.StatusOK, map[string]any{
		"total_debit":  res.TotalDebit,
		"total_credit": res.TotalCredit,
		"balance":      res.Balance,
		"is_balanced":  res.IsBalanced,
		"active_lines": res.ActiveLines,
		"errors":       msgs,
	})
}

func (s *Server) saveGrid(w http.ResponseWriter, r *http.Request) {
	clientID, ok := s.clientID(w, r)
	if !ok {
		return
	}
	h, ok := s.gridHandler(w, r, clientID)
	if !ok {
		return
	}
	var req gridRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	entry, msgs := h.Save(r.Context(), req.Header, req.Rows)
	if len(msgs) > 0 {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":  "validation failed",
			"errors": msgs,
		})
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (s *Server) prefillGrid(w http.ResponseWriter, r *http.Request) {
	clientID, ok := s.clientID(w, r)
	if !ok {
		return
	}
	h, ok := s.gridHandler(w, r, clientID)
	if !ok {
		return
	}

	header, rows, err := h.Prefill(r.Context(), chi.URLParam(r, "piece"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"header": header, "rows": rows})
}

func (s *Server) adjacentPiece(w http.ResponseWriter, r *http.Request) {
	clientID, ok := s.clientID(w, r)
	if !ok {
		return
	}
	h, ok := s.gridHandler(w, r, clientID)
	if !ok {
		return
	}

	dir := store.Direction(r.URL.Query().Get("direction"))
	if dir != store.DirectionPrev && dir != store.DirectionNext {
		writeError(w, http.StatusBadRequest, "direction must be prev or next")
		return
	}
	header, rows, err := h.Adjacent(r.Context(), chi.URLParam(r, "piece"), dir)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"header": header, "rows": rows})
}

func (s *Server) nextPieceNumber(w http.ResponseWriter, r *http.Request) {
	clientID, ok := s.clientID(w, r)
	if !ok {
		return
	}
	h, ok := s.gridHandler(w, r, clientID)
	if !ok {
		return
	}

	year := time.Now().Year()
	if v := r.URL.Query().Get("year"); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid year")
			return
		}
		year = y
	}
	piece, err := h.SuggestPieceNumber(r.Context(), year)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"piece_number":        piece,
		"default_entry_label": h.Journal().DefaultEntryLabel(),
	})
}
