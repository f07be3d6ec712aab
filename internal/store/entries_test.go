package store

import (
	"context"
	"testing"
	"time"

	"github.com/kbrou/syscompta/internal/ledger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateEntryAssignsIDAndOrders(t *testing.T) {
	s := newTestStore(t)
	c := seedClient(t, s)
	j := seedJournal(t, s, c.ID, "OD", ledger.JournalMisc)
	ctx := context.Background()

	e := &ledger.JournalEntry{
		ClientID:  c.ID,
		JournalID: j.ID,
		Date:      time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		Label:     "Écriture diverse",
		Lines: []ledger.EntryLine{
			{AccountID: mustAccount(t, s, c.ID, "601").ID, Label: "Achats", Debit: decimal.RequireFromString("600.00")},
			{AccountID: mustAccount(t, s, c.ID, "622").ID, Label: "Loyer", Debit: decimal.RequireFromString("400.00")},
			{AccountID: mustAccount(t, s, c.ID, "521").ID, Label: "Banque", Credit: decimal.RequireFromString("1000.00")},
		},
	}
	require.NoError(t, s.CreateEntry(ctx, e))
	assert.NotEmpty(t, e.ID)
	assert.True(t, e.IsBalanced)

	got, err := s.GetEntry(ctx, e.ID)
	require.NoError(t, err)
	require.Len(t, got.Lines, 3)
	for i, l := range got.Lines {
		assert.Equal(t, i, l.Order)
	}
	assert.True(t, got.TotalDebit.Equal(decimal.RequireFromString("1000.00")))
	assert.True(t, got.TotalCredit.Equal(decimal.RequireFromString("1000.00")))
	assert.True(t, got.Date.Equal(e.Date))
}

func TestCreateEntryUnbalancedRejected(t *testing.T) {
	s := newTestStore(t)
	c := seedClient(t, s)
	j := seedJournal(t, s, c.ID, "OD", ledger.JournalMisc)
	ctx := context.Background()

	e := &ledger.JournalEntry{
		ClientID:  c.ID,
		JournalID: j.ID,
		Date:      time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		Label:     "Déséquilibrée",
		Lines: []ledger.EntryLine{
			{AccountID: mustAccount(t, s, c.ID, "601").ID, Label: "Achats", Debit: decimal.RequireFromString("100.00")},
			{AccountID: mustAccount(t, s, c.ID, "521").ID, Label: "Banque", Credit: decimal.RequireFromString("90.00")},
		},
	}
	err := s.CreateEntry(ctx, e)
	var verrs ledger.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs.Error(), "difference 10.00")

	// nothing persisted
	entries, err := s.ListEntries(ctx, c.ID, EntryFilter{})
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCreateEntryRequiresHeader(t *testing.T) {
	s := newTestStore(t)
	c := seedClient(t, s)
	j := seedJournal(t, s, c.ID, "OD", ledger.JournalMisc)
	ctx := context.Background()

	noLabel := &ledger.JournalEntry{ClientID: c.ID, JournalID: j.ID, Date: time.Now()}
	var verrs ledger.ValidationErrors
	require.ErrorAs(t, s.CreateEntry(ctx, noLabel), &verrs)
	assert.Equal(t, "label", verrs[0].Field)

	noDate := &ledger.JournalEntry{ClientID: c.ID, JournalID: j.ID, Label: "Sans date"}
	require.ErrorAs(t, s.CreateEntry(ctx, noDate), &verrs)
	assert.Equal(t, "date", verrs[0].Field)
}

func TestListEntriesFilters(t *testing.T) {
	s := newTestStore(t)
	c := seedClient(t, s)
	ac := seedJournal(t, s, c.ID, "AC", ledger.JournalPurchases)
	ve := seedJournal(t, s, c.ID, "VE", ledger.JournalSales)
	ctx := context.Background()

	postEntry(t, s, c, ac, time.Date(2024, 2, 5, 0, 0, 0, 0, time.UTC), "AC240001", "Facture Achat", "601", "571", "250.00")
	postEntry(t, s, c, ac, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), "AC240002", "Facture Achat", "601", "571", "480.00")
	postEntry(t, s, c, ve, time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC), "VE240001", "Facture Vente", "571", "701", "900.00")

	all, err := s.ListEntries(ctx, c.ID, EntryFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	// newest first
	assert.Equal(t, "VE240001", all[0].PieceNumber)

	byJournal, err := s.ListEntries(ctx, c.ID, EntryFilter{JournalID: ac.ID})
	require.NoError(t, err)
	assert.Len(t, byJournal, 2)

	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	march, err := s.ListEntries(ctx, c.ID, EntryFilter{DateFrom: &from})
	require.NoError(t, err)
	assert.Len(t, march, 2)

	byPiece, err := s.ListEntries(ctx, c.ID, EntryFilter{Search: "AC2400"})
	require.NoError(t, err)
	assert.Len(t, byPiece, 2)

	amt := decimal.RequireFromString("480.00")
	byAmount, err := s.ListEntries(ctx, c.ID, EntryFilter{Amount: &amt})
	require.NoError(t, err)
	require.Len(t, byAmount, 1)
	assert.Equal(t, "AC240002", byAmount[0].PieceNumber)

	// a locale-parsed amount lands on the same stored text
	viaLocale, err := ledger.ParseAmount("480,00")
	require.NoError(t, err)
	byAmount, err = s.ListEntries(ctx, c.ID, EntryFilter{Amount: &viaLocale})
	require.NoError(t, err)
	require.Len(t, byAmount, 1)

	limited, err := s.ListEntries(ctx, c.ID, EntryFilter{Limit: 2, Offset: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestDeleteEntryCascadesLines(t *testing.T) {
	s := newTestStore(t)
	c := seedClient(t, s)
	j := seedJournal(t, s, c.ID, "CA", ledger.JournalCash)
	ctx := context.Background()

	e := postEntry(t, s, c, j, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), "CA240001", "Vente comptant", "571", "701", "30.00")
	require.NoError(t, s.DeleteEntry(ctx, e.ID))

	_, err := s.GetEntry(ctx, e.ID)
	assert.ErrorIs(t, err, ledger.ErrEntryNotFound)

	var lines int
	require.NoError(t, s.reader.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM entry_lines WHERE entry_id = ?`, e.ID).Scan(&lines))
	assert.Zero(t, lines)

	// the account posted to is free again
	assert.NoError(t, s.SetAccountActive(ctx, mustAccount(t, s, c.ID, "701").ID, false))

	assert.ErrorIs(t, s.DeleteEntry(ctx, e.ID), ledger.ErrEntryNotFound)
}

func TestAdjacentPiece(t *testing.T) {
	s := newTestStore(t)
	c := seedClient(t, s)
	j := seedJournal(t, s, c.ID, "AC", ledger.JournalPurchases)
	ctx := context.Background()

	postEntry(t, s, c, j, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), "AC240001", "Facture Achat", "601", "571", "10.00")
	postEntry(t, s, c, j, time.Date(2024, 2, 5, 0, 0, 0, 0, time.UTC), "AC240002", "Facture Achat", "601", "571", "20.00")
	postEntry(t, s, c, j, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), "AC240003", "Facture Achat", "601", "571", "30.00")

	prev, err := s.AdjacentPiece(ctx, c.ID, j.ID, "AC240002", DirectionPrev)
	require.NoError(t, err)
	assert.Equal(t, "AC240001", prev.PieceNumber)

	next, err := s.AdjacentPiece(ctx, c.ID, j.ID, "AC240002", DirectionNext)
	require.NoError(t, err)
	assert.Equal(t, "AC240003", next.PieceNumber)

	_, err = s.AdjacentPiece(ctx, c.ID, j.ID, "AC240001", DirectionPrev)
	assert.ErrorIs(t, err, ledger.ErrPieceNotFound)
	_, err = s.AdjacentPiece(ctx, c.ID, j.ID, "AC240003", DirectionNext)
	assert.ErrorIs(t, err, ledger.ErrPieceNotFound)

	_, err = s.AdjacentPiece(ctx, c.ID, j.ID, "AC249999", DirectionNext)
	assert.ErrorIs(t, err, ledger.ErrEntryNotFound)
}

func TestLastPieceNumber(t *testing.T) {
	s := newTestStore(t)
	c := seedClient(t, s)
	j := seedJournal(t, s, c.ID, "VE", ledger.JournalSales)
	ctx := context.Background()

	piece, err := s.LastPieceNumber(ctx, c.ID, j.ID, 2024)
	require.NoError(t, err)
	assert.Empty(t, piece)

	postEntry(t, s, c, j, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), "VE240001", "Facture Vente", "571", "701", "100.00")
	postEntry(t, s, c, j, time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC), "VE240002", "Facture Vente", "571", "701", "200.00")
	postEntry(t, s, c, j, time.Date(2023, 12, 28, 0, 0, 0, 0, time.UTC), "VE230044", "Facture Vente", "571", "701", "300.00")

	piece, err = s.LastPieceNumber(ctx, c.ID, j.ID, 2024)
	require.NoError(t, err)
	assert.Equal(t, "VE240002", piece)

	piece, err = s.LastPieceNumber(ctx, c.ID, j.ID, 2023)
	require.NoError(t, err)
	assert.Equal(t, "VE230044", piece)
}

func TestLastPieceNumberBackdatedPiece(t *testing.T) {
	s := newTestStore(t)
	c := seedClient(t, s)
	j := seedJournal(t, s, c.ID, "AC", ledger.JournalPurchases)
	ctx := context.Background()

	postEntry(t, s, c, j, time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC), "AC240003", "Facture Achat", "601", "571", "10.00")
	// booked later with an earlier date; the sequence still advances past it
	postEntry(t, s, c, j, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), "AC240007", "Facture Achat", "601", "571", "20.00")

	piece, err := s.LastPieceNumber(ctx, c.ID, j.ID, 2024)
	require.NoError(t, err)
	assert.Equal(t, "AC240007", piece)
}

func TestGetEntryByPieceMostRecentWins(t *testing.T) {
	s := newTestStore(t)
	c := seedClient(t, s)
	j := seedJournal(t, s, c.ID, "OD", ledger.JournalMisc)
	ctx := context.Background()

	postEntry(t, s, c, j, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), "OD240001", "Première", "601", "571", "10.00")
	latest := postEntry(t, s, c, j, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), "OD240001", "Reprise", "601", "571", "20.00")

	got, err := s.GetEntryByPiece(ctx, c.ID, j.ID, "OD240001")
	require.NoError(t, err)
	assert.Equal(t, latest.ID, got.ID)
	assert.Equal(t, "Reprise", got.Label)
}
