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

func TestPeriodKPIsEmptyFile(t *testing.T) {
	s := newTestStore(t)
	c := seedClient(t, s)

	k, err := s.PeriodKPIs(context.Background(), c.ID, 2024, 0)
	require.NoError(t, err)
	assert.Zero(t, k.EntryCount)
	assert.True(t, k.TotalDebit.IsZero())
	assert.True(t, k.TreasuryBalance.IsZero())
	assert.True(t, k.RevenueYear.IsZero())
	assert.Zero(t, k.UnbalancedCount)
	assert.Equal(t, len(ledger.DefaultChart), k.ActiveAccounts)
}

func TestPeriodKPIs(t *testing.T) {
	s := newTestStore(t)
	c := seedClient(t, s)
	ve := seedJournal(t, s, c.ID, "VE", ledger.JournalSales)
	ac := seedJournal(t, s, c.ID, "AC", ledger.JournalPurchases)
	ctx := context.Background()

	// March: a sale collected in the bank and a cash purchase
	postEntry(t, s, c, ve, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), "VE240001", "Facture Vente", "521", "701", "1000.00")
	postEntry(t, s, c, ac, time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC), "AC240001", "Facture Achat", "601", "571", "400.00")
	// January, outside the March window but inside the year
	postEntry(t, s, c, ve, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), "VE240000", "Facture Vente", "521", "701", "250.00")

	march, err := s.PeriodKPIs(ctx, c.ID, 2024, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, march.EntryCount)
	assert.True(t, march.TotalDebit.Equal(decimal.RequireFromString("1400.00")))
	assert.True(t, march.TotalCredit.Equal(decimal.RequireFromString("1400.00")))
	require.Len(t, march.LatestEntries, 2)
	assert.Equal(t, "AC240001", march.LatestEntries[0].PieceNumber)

	// treasury is all-time: +1000 +250 into banks, -400 out of the cash box
	assert.True(t, march.TreasuryBalance.Equal(decimal.RequireFromString("850.00")))

	// revenue and net income are year-to-date even for a month view
	assert.True(t, march.RevenueYear.Equal(decimal.RequireFromString("1250.00")))
	assert.True(t, march.NetIncomeYear.Equal(decimal.RequireFromString("850.00")))

	assert.Equal(t, 2, march.ActiveJournals)

	year, err := s.PeriodKPIs(ctx, c.ID, 2024, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, year.EntryCount)

	empty, err := s.PeriodKPIs(ctx, c.ID, 2024, 7)
	require.NoError(t, err)
	assert.Zero(t, empty.EntryCount)
	assert.True(t, empty.RevenueYear.Equal(decimal.RequireFromString("1250.00")))
}

func TestPeriodKPIsUnbalancedSample(t *testing.T) {
	s := newTestStore(t)
	c := seedClient(t, s)
	od := seedJournal(t, s, c.ID, "OD", ledger.JournalMisc)
	ctx := context.Background()

	// drift below the submission tolerance but above the balance epsilon
	e := &ledger.JournalEntry{
		ClientID:    c.ID,
		JournalID:   od.ID,
		Date:        time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC),
		PieceNumber: "OD240001",
		Label:       "Arrondi",
		Lines: []ledger.EntryLine{
			{AccountID: mustAccount(t, s, c.ID, "601").ID, Label: "Achats", Debit: decimal.RequireFromString("100.00")},
			{AccountID: mustAccount(t, s, c.ID, "571").ID, Label: "Caisse", Credit: decimal.RequireFromString("99.995")},
		},
	}
	require.NoError(t, s.CreateEntry(ctx, e))
	assert.False(t, e.IsBalanced)

	k, err := s.PeriodKPIs(ctx, c.ID, 2024, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, k.UnbalancedCount)
	require.Len(t, k.UnbalancedSample, 1)
	assert.Equal(t, "OD240001", k.UnbalancedSample[0].PieceNumber)
}
