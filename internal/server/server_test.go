package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/kbrou/syscompta/internal/ledger"
	"github.com/kbrou/syscompta/internal/store"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*Server, *store.Store) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return New(st, ":0", zerolog.Nop()), st
}

func doRequest(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

func apiClient(t *testing.T, s *Server) *ledger.Client {
	t.Helper()
	rec := doRequest(t, s, http.MethodPost, "/api/v1/clients", map[string]any{"name": "Dossier API"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var c ledger.Client
	decodeBody(t, rec, &c)
	return &c
}

func apiJournal(t *testing.T, st *store.Store, clientID int64, code string, typ ledger.JournalType) *ledger.Journal {
	t.Helper()
	j := &ledger.Journal{ClientID: clientID, Code: code, Label: "Journal " + code, Type: typ, Active: true}
	require.NoError(t, st.CreateJournal(context.Background(), j))
	return j
}

func accountID(t *testing.T, st *store.Store, clientID int64, number string) int64 {
	t.Helper()
	a, err := st.GetAccountByNumber(context.Background(), clientID, number)
	require.NoError(t, err)
	return a.ID
}

func TestClientEndpoints(t *testing.T) {
	s, st := newTestServer(t)
	c := apiClient(t, s)
	assert.NotZero(t, c.ID)
	assert.Equal(t, ledger.ClientActive, c.Status)

	// the chart came with the file
	accounts, err := st.ListAccounts(context.Background(), c.ID, store.AccountFilter{})
	require.NoError(t, err)
	assert.Len(t, accounts, len(ledger.DefaultChart))

	rec := doRequest(t, s, http.MethodGet, fmt.Sprintf("/api/v1/clients/%d", c.ID), nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, s, http.MethodGet, "/api/v1/clients/999", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(t, s, http.MethodPost, "/api/v1/clients", map[string]any{"name": ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, s, http.MethodPost, "/api/v1/clients", map[string]any{"name": "X", "status": "defunct"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, s, http.MethodPost, fmt.Sprintf("/api/v1/clients/%d/bootstrap", c.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var boot map[string]int
	decodeBody(t, rec, &boot)
	assert.Zero(t, boot["created"])
}

func TestCreateEntryEndpoint(t *testing.T) {
	s, st := newTestServer(t)
	c := apiClient(t, s)
	j := apiJournal(t, st, c.ID, "OD", ledger.JournalMisc)

	body := map[string]any{
		"journal_id": j.ID,
		"date":       "2024-03-15",
		"label":      "Écriture diverse",
		"lines": []map[string]any{
			{"account_id": accountID(t, st, c.ID, "601"), "label": "Achats", "debit": "1 000,00"},
			{"account_id": accountID(t, st, c.ID, "521"), "label": "Banque", "credit": "1 000,00"},
		},
	}
	rec := doRequest(t, s, http.MethodPost, fmt.Sprintf("/api/v1/clients/%d/entries", c.ID), body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var e ledger.JournalEntry
	decodeBody(t, rec, &e)
	assert.NotEmpty(t, e.ID)
	assert.True(t, e.IsBalanced)
	require.Len(t, e.Lines, 2)
	assert.True(t, e.TotalDebit.Equal(decimal.RequireFromString("1000.00")))
}

func TestCreateEntryEndpointValidation(t *testing.T) {
	s, st := newTestServer(t)
	c := apiClient(t, s)
	j := apiJournal(t, st, c.ID, "OD", ledger.JournalMisc)

	body := map[string]any{
		"journal_id": j.ID,
		"date":       "2024-03-15",
		"label":      "Déséquilibrée",
		"lines": []map[string]any{
			{"account_id": accountID(t, st, c.ID, "601"), "label": "Achats", "debit": "100,00"},
			{"account_id": accountID(t, st, c.ID, "521"), "label": "Banque", "credit": "90,00"},
		},
	}
	rec := doRequest(t, s, http.MethodPost, fmt.Sprintf("/api/v1/clients/%d/entries", c.ID), body)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp errorResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, "validation failed", resp.Error)
	require.NotEmpty(t, resp.Errors)
	assert.Contains(t, resp.Errors[0].Message, "difference 10.00")

	// nothing persisted
	entries, err := st.ListEntries(context.Background(), c.ID, store.EntryFilter{})
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCreateEntryHeaderPartnerOtherClientFile(t *testing.T) {
	s, st := newTestServer(t)
	c := apiClient(t, s)
	other := apiClient(t, s)
	j := apiJournal(t, st, c.ID, "AC", ledger.JournalPurchases)

	foreign := &ledger.Partner{ClientID: other.ID, Code: "F001", Name: "Fournisseur Étranger", Type: ledger.PartnerVendor, Active: true}
	require.NoError(t, st.CreatePartner(context.Background(), foreign))

	body := map[string]any{
		"journal_id": j.ID,
		"date":       "2024-03-15",
		"label":      "Facture Achat",
		"partner_id": foreign.ID,
		"lines": []map[string]any{
			{"account_id": accountID(t, st, c.ID, "601"), "label": "Achats", "debit": "118,00"},
			{"account_id": accountID(t, st, c.ID, "521"), "label": "Banque", "credit": "118,00"},
		},
	}
	rec := doRequest(t, s, http.MethodPost, fmt.Sprintf("/api/v1/clients/%d/entries", c.ID), body)
	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

	var resp errorResponse
	decodeBody(t, rec, &resp)
	require.NotEmpty(t, resp.Errors)
	assert.Contains(t, resp.Errors[0].Message, "unknown partner")

	entries, err := st.ListEntries(context.Background(), c.ID, store.EntryFilter{})
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestGridEndpoints(t *testing.T) {
	s, st := newTestServer(t)
	c := apiClient(t, s)
	j := apiJournal(t, st, c.ID, "AC", ledger.JournalPurchases)
	require.NoError(t, st.CreatePartner(context.Background(),
		&ledger.Partner{ClientID: c.ID, Code: "F001", Name: "Fournisseur Général", Type: ledger.PartnerVendor, Active: true}))

	base := fmt.Sprintf("/api/v1/clients/%d/journals/%d", c.ID, j.ID)
	grid := map[string]any{
		"header": map[string]any{"date": "12/03/2024", "piece_number": "AC240001"},
		"rows": []map[string]any{
			{"account": "601", "label": "Achats de marchandises", "debit": "1 180,00"},
			{"account": "4011", "partner": "f001", "label": "Facture Achat", "credit": "1 180,00"},
		},
	}

	rec := doRequest(t, s, http.MethodPost, base+"/grid/preview", grid)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var preview struct {
		IsBalanced  bool     `json:"is_balanced"`
		ActiveLines int      `json:"active_lines"`
		Errors      []string `json:"errors"`
	}
	decodeBody(t, rec, &preview)
	assert.True(t, preview.IsBalanced)
	assert.Equal(t, 2, preview.ActiveLines)
	assert.Empty(t, preview.Errors)

	rec = doRequest(t, s, http.MethodPost, base+"/grid", grid)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var e ledger.JournalEntry
	decodeBody(t, rec, &e)
	assert.Equal(t, "AC240001", e.PieceNumber)
	assert.Equal(t, "Facture Achat", e.Label)

	rec = doRequest(t, s, http.MethodGet, base+"/entries/AC240001/grid", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, s, http.MethodGet, base+"/next-piece?year=2024", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var next struct {
		PieceNumber       string `json:"piece_number"`
		DefaultEntryLabel string `json:"default_entry_label"`
	}
	decodeBody(t, rec, &next)
	assert.Equal(t, "AC240002", next.PieceNumber)
	assert.Equal(t, "Facture Achat", next.DefaultEntryLabel)

	rec = doRequest(t, s, http.MethodGet, base+"/entries/AC240001/adjacent?direction=sideways", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, s, http.MethodGet, base+"/entries/AC240001/adjacent?direction=next", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGridSaveRejectsBadGrid(t *testing.T) {
	s, st := newTestServer(t)
	c := apiClient(t, s)
	j := apiJournal(t, st, c.ID, "AC", ledger.JournalPurchases)

	grid := map[string]any{
		"header": map[string]any{"date": "12/03/2024"},
		"rows": []map[string]any{
			{"account": "9999", "label": "Inconnu", "debit": "10,00"},
		},
	}
	rec := doRequest(t, s, http.MethodPost, fmt.Sprintf("/api/v1/clients/%d/journals/%d/grid", c.ID, j.ID), grid)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp struct {
		Error  string   `json:"error"`
		Errors []string `json:"errors"`
	}
	decodeBody(t, rec, &resp)
	assert.Equal(t, "validation failed", resp.Error)
	require.NotEmpty(t, resp.Errors)
	assert.Contains(t, resp.Errors[0], "unknown account")
}

func TestAccountLifecycleEndpoints(t *testing.T) {
	s, st := newTestServer(t)
	c := apiClient(t, s)
	j := apiJournal(t, st, c.ID, "CA", ledger.JournalCash)
	ctx := context.Background()

	// post a cash sale so 701 carries lines
	e := &ledger.JournalEntry{
		ClientID:  c.ID,
		JournalID: j.ID,
		Date:      time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
		Label:     "Vente comptant",
		Lines: []ledger.EntryLine{
			{AccountID: accountID(t, st, c.ID, "571"), Label: "Caisse", Debit: decimal.RequireFromString("45.00")},
			{AccountID: accountID(t, st, c.ID, "701"), Label: "Ventes", Credit: decimal.RequireFromString("45.00")},
		},
	}
	require.NoError(t, st.CreateEntry(ctx, e))

	base := fmt.Sprintf("/api/v1/clients/%d/accounts", c.ID)
	posted := accountID(t, st, c.ID, "701")

	rec := doRequest(t, s, http.MethodPatch, fmt.Sprintf("%s/%d/active", base, posted), map[string]any{"active": false})
	assert.Equal(t, http.StatusConflict, rec.Code)

	unused := accountID(t, st, c.ID, "706")
	rec = doRequest(t, s, http.MethodPatch, fmt.Sprintf("%s/%d/active", base, unused), map[string]any{"active": false})
	require.Equal(t, http.StatusOK, rec.Code)
	var acct ledger.Account
	decodeBody(t, rec, &acct)
	assert.False(t, acct.Active)

	rec = doRequest(t, s, http.MethodDelete, fmt.Sprintf("%s/%d", base, posted), nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	// accounts of another client file are invisible here
	other := apiClient(t, s)
	foreign := accountID(t, st, other.ID, "601")
	rec = doRequest(t, s, http.MethodGet, fmt.Sprintf("%s/%d", base, foreign), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSearchEndpoints(t *testing.T) {
	s, st := newTestServer(t)
	c := apiClient(t, s)
	require.NoError(t, st.CreatePartner(context.Background(),
		&ledger.Partner{ClientID: c.ID, Code: "F001", Name: "Fournisseur Général", Type: ledger.PartnerVendor, Active: true}))

	rec := doRequest(t, s, http.MethodGet,
		fmt.Sprintf("/api/v1/clients/%d/accounts/search?journal_type=purchases", c.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var accounts []ledger.Account
	decodeBody(t, rec, &accounts)
	require.NotEmpty(t, accounts)
	for _, a := range accounts {
		assert.True(t, a.Postable(), "account %s", a.Number)
	}

	rec = doRequest(t, s, http.MethodGet,
		fmt.Sprintf("/api/v1/clients/%d/partners/search?journal_type=purchases&q=F", c.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var partners []ledger.Partner
	decodeBody(t, rec, &partners)
	require.Len(t, partners, 1)
	assert.Equal(t, "F001", partners[0].Code)
}

func TestDuplicateJournalCodeConflict(t *testing.T) {
	s, st := newTestServer(t)
	c := apiClient(t, s)
	apiJournal(t, st, c.ID, "AC", ledger.JournalPurchases)

	body := map[string]any{"code": "ac", "label": "Doublon", "type": "purchases"}
	rec := doRequest(t, s, http.MethodPost, fmt.Sprintf("/api/v1/clients/%d/journals", c.ID), body)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestDashboardEndpoint(t *testing.T) {
	s, _ := newTestServer(t)
	c := apiClient(t, s)

	rec := doRequest(t, s, http.MethodGet, fmt.Sprintf("/api/v1/clients/%d/dashboard?year=2024", c.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var k store.DashboardKPIs
	decodeBody(t, rec, &k)
	assert.Equal(t, 2024, k.Year)
	assert.Equal(t, len(ledger.DefaultChart), k.ActiveAccounts)

	rec = doRequest(t, s, http.MethodGet, fmt.Sprintf("/api/v1/clients/%d/dashboard?month=13", c.ID), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
