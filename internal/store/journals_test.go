package store

import (
	"context"
	"testing"
	"time"

	"github.com/kbrou/syscompta/internal/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateJournalNormalizesCode(t *testing.T) {
	s := newTestStore(t)
	c := seedClient(t, s)
	ctx := context.Background()

	j := &ledger.Journal{ClientID: c.ID, Code: " bq ", Label: "Banque", Type: ledger.JournalBank, Active: true}
	require.NoError(t, s.CreateJournal(ctx, j))
	assert.Equal(t, "BQ", j.Code)

	dup := &ledger.Journal{ClientID: c.ID, Code: "bq", Label: "Doublon", Type: ledger.JournalBank, Active: true}
	assert.ErrorIs(t, s.CreateJournal(ctx, dup), ledger.ErrDuplicateCode)
}

func TestJournalCounterpartRestriction(t *testing.T) {
	s := newTestStore(t)
	c := seedClient(t, s)
	ctx := context.Background()

	bank := mustAccount(t, s, c.ID, "521")
	expense := mustAccount(t, s, c.ID, "601")

	bad := &ledger.Journal{ClientID: c.ID, Code: "BQ1", Label: "Banque", Type: ledger.JournalBank, CounterpartAccountID: expense.ID, Active: true}
	assert.ErrorIs(t, s.CreateJournal(ctx, bad), ledger.ErrCounterpartNotTreasury)

	good := &ledger.Journal{ClientID: c.ID, Code: "BQ2", Label: "Banque", Type: ledger.JournalBank, CounterpartAccountID: bank.ID, Active: true}
	require.NoError(t, s.CreateJournal(ctx, good))

	got, err := s.GetJournal(ctx, good.ID)
	require.NoError(t, err)
	assert.Equal(t, bank.ID, got.CounterpartAccountID)
}

func TestJournalCounterpartOtherClientFile(t *testing.T) {
	s := newTestStore(t)
	a := seedClient(t, s)
	b := seedClient(t, s)
	ctx := context.Background()

	foreignBank := mustAccount(t, s, b.ID, "521")
	j := &ledger.Journal{ClientID: a.ID, Code: "BQ", Label: "Banque", Type: ledger.JournalBank, CounterpartAccountID: foreignBank.ID, Active: true}
	assert.ErrorIs(t, s.CreateJournal(ctx, j), ledger.ErrAccountNotFound)

	own := seedJournal(t, s, a.ID, "BQ2", ledger.JournalBank)
	own.CounterpartAccountID = foreignBank.ID
	assert.ErrorIs(t, s.UpdateJournal(ctx, own), ledger.ErrAccountNotFound)

	got, err := s.GetJournal(ctx, own.ID)
	require.NoError(t, err)
	assert.Zero(t, got.CounterpartAccountID)
}

func TestDeleteJournalReferenced(t *testing.T) {
	s := newTestStore(t)
	c := seedClient(t, s)
	used := seedJournal(t, s, c.ID, "AC", ledger.JournalPurchases)
	empty := seedJournal(t, s, c.ID, "OD", ledger.JournalMisc)
	ctx := context.Background()

	postEntry(t, s, c, used, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), "AC240001", "Facture Achat", "601", "571", "10.00")

	assert.ErrorIs(t, s.DeleteJournal(ctx, used.ID), ledger.ErrReferencedJournal)
	assert.NoError(t, s.DeleteJournal(ctx, empty.ID))
	_, err := s.GetJournal(ctx, empty.ID)
	assert.ErrorIs(t, err, ledger.ErrJournalNotFound)
}

func TestListJournalsOrderedByCode(t *testing.T) {
	s := newTestStore(t)
	c := seedClient(t, s)
	seedJournal(t, s, c.ID, "VE", ledger.JournalSales)
	seedJournal(t, s, c.ID, "AC", ledger.JournalPurchases)
	seedJournal(t, s, c.ID, "BQ", ledger.JournalBank)

	journals, err := s.ListJournals(context.Background(), c.ID)
	require.NoError(t, err)
	require.Len(t, journals, 3)
	assert.Equal(t, "AC", journals[0].Code)
	assert.Equal(t, "BQ", journals[1].Code)
	assert.Equal(t, "VE", journals[2].Code)
}
