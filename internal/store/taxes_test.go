package store

import (
	"context"
	"testing"

	"github.com/kbrou/syscompta/internal/ledger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTaxRate(t *testing.T) {
	s := newTestStore(t)
	c := seedClient(t, s)
	ctx := context.Background()

	collected := mustAccount(t, s, c.ID, "4431")
	tr := &ledger.TaxRate{
		ClientID:     c.ID,
		Code:         "tva18",
		Label:        "TVA 18%",
		Type:         ledger.TaxCollected,
		Rate:         decimal.RequireFromString("18"),
		TaxAccountID: collected.ID,
		Active:       true,
	}
	require.NoError(t, s.CreateTaxRate(ctx, tr))
	assert.Equal(t, "TVA18", tr.Code)

	got, err := s.GetTaxRate(ctx, tr.ID)
	require.NoError(t, err)
	assert.True(t, got.Rate.Equal(decimal.RequireFromString("18")))
	assert.Equal(t, ledger.TaxCollected, got.Type)

	dup := &ledger.TaxRate{ClientID: c.ID, Code: "TVA18", Label: "Doublon", Type: ledger.TaxCollected, Rate: decimal.RequireFromString("18"), TaxAccountID: collected.ID}
	assert.ErrorIs(t, s.CreateTaxRate(ctx, dup), ledger.ErrDuplicateCode)
}

func TestCreateTaxRateAccountClass(t *testing.T) {
	s := newTestStore(t)
	c := seedClient(t, s)
	ctx := context.Background()

	expense := mustAccount(t, s, c.ID, "601")
	bad := &ledger.TaxRate{ClientID: c.ID, Code: "TVA9", Label: "TVA réduite", Type: ledger.TaxDeductible, Rate: decimal.RequireFromString("9"), TaxAccountID: expense.ID}
	assert.ErrorIs(t, s.CreateTaxRate(ctx, bad), ledger.ErrTaxAccountClass)

	collective := mustAccount(t, s, c.ID, "44")
	bad.TaxAccountID = collective.ID
	assert.ErrorIs(t, s.CreateTaxRate(ctx, bad), ledger.ErrTaxAccountClass)
}

func TestTaxAccountOtherClientFile(t *testing.T) {
	s := newTestStore(t)
	a := seedClient(t, s)
	b := seedClient(t, s)
	ctx := context.Background()

	foreign := mustAccount(t, s, b.ID, "4431")
	tr := &ledger.TaxRate{ClientID: a.ID, Code: "TVA18", Label: "TVA 18%", Type: ledger.TaxCollected, Rate: decimal.RequireFromString("18"), TaxAccountID: foreign.ID, Active: true}
	assert.ErrorIs(t, s.CreateTaxRate(ctx, tr), ledger.ErrAccountNotFound)

	tr.TaxAccountID = mustAccount(t, s, a.ID, "4431").ID
	require.NoError(t, s.CreateTaxRate(ctx, tr))

	tr.TaxAccountID = foreign.ID
	assert.ErrorIs(t, s.UpdateTaxRate(ctx, tr), ledger.ErrAccountNotFound)
}

func TestUpdateAndDeleteTaxRate(t *testing.T) {
	s := newTestStore(t)
	c := seedClient(t, s)
	ctx := context.Background()

	deductible := mustAccount(t, s, c.ID, "4452")
	tr := &ledger.TaxRate{ClientID: c.ID, Code: "TVA18A", Label: "TVA déductible 18%", Type: ledger.TaxDeductible, Rate: decimal.RequireFromString("18"), TaxAccountID: deductible.ID, Active: true}
	require.NoError(t, s.CreateTaxRate(ctx, tr))

	tr.Rate = decimal.RequireFromString("19.25")
	tr.Label = "TVA déductible 19,25%"
	require.NoError(t, s.UpdateTaxRate(ctx, tr))

	got, err := s.GetTaxRate(ctx, tr.ID)
	require.NoError(t, err)
	assert.True(t, got.Rate.Equal(decimal.RequireFromString("19.25")))

	require.NoError(t, s.DeleteTaxRate(ctx, tr.ID))
	_, err = s.GetTaxRate(ctx, tr.ID)
	assert.ErrorIs(t, err, ledger.ErrTaxRateNotFound)
	assert.ErrorIs(t, s.DeleteTaxRate(ctx, tr.ID), ledger.ErrTaxRateNotFound)
}

func TestListTaxRates(t *testing.T) {
	s := newTestStore(t)
	c := seedClient(t, s)
	ctx := context.Background()

	collected := mustAccount(t, s, c.ID, "4431")
	deductible := mustAccount(t, s, c.ID, "4452")
	require.NoError(t, s.CreateTaxRate(ctx, &ledger.TaxRate{ClientID: c.ID, Code: "TVA18V", Label: "TVA sur ventes", Type: ledger.TaxCollected, Rate: decimal.RequireFromString("18"), TaxAccountID: collected.ID, Active: true}))
	require.NoError(t, s.CreateTaxRate(ctx, &ledger.TaxRate{ClientID: c.ID, Code: "TVA18A", Label: "TVA sur achats", Type: ledger.TaxDeductible, Rate: decimal.RequireFromString("18"), TaxAccountID: deductible.ID, Active: true}))

	rates, err := s.ListTaxRates(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, rates, 2)
	assert.Equal(t, "TVA18A", rates[0].Code)
	assert.Equal(t, "TVA18V", rates[1].Code)
}
