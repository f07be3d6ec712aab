package ledger

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TaxType classifies a tax rate.
type TaxType string

const (
	TaxCollected  TaxType = "collected"
	TaxDeductible TaxType = "deductible"
	TaxOther      TaxType = "other"
)

var AllTaxTypes = []TaxType{TaxCollected, TaxDeductible, TaxOther}

// TaxRate is a named tax percentage scoped to one client file, pointing at
// the class-4 account the tax posts to. Rates carry 3 decimal places.
type TaxRate struct {
	ID           int64           `json:"id"`
	ClientID     int64           `json:"client_id"`
	Code         string          `json:"code"`
	Label        string          `json:"label"`
	Type         TaxType         `json:"type"`
	Rate         decimal.Decimal `json:"rate"`
	TaxAccountID int64           `json:"tax_account_id"`
	Active       bool            `json:"active"`
	CreatedAt    time.Time       `json:"created_at,omitempty"`
}

// Fraction returns the rate as a multiplier (18.000% -> 0.18).
func (t *TaxRate) Fraction() decimal.Decimal {
	return t.Rate.Div(decimal.NewFromInt(100))
}

// Validate normalizes the code and checks local invariants.
func (t *TaxRate) Validate() error {
	t.Code = strings.ToUpper(strings.TrimSpace(t.Code))
	if t.Code == "" {
		return ErrEmptyTaxCode
	}
	if t.Label == "" {
		return ErrEmptyTaxLabel
	}
	if t.Type == "" {
		t.Type = TaxOther
	}
	if !validTaxType(t.Type) {
		return ErrInvalidTaxType
	}
	if t.Rate.IsNegative() {
		return ErrNegativeRate
	}
	t.Rate = t.Rate.Round(3)
	return nil
}

// CheckTaxAccount enforces the restriction on the posting account: an active
// detail account in class 4.
func (t *TaxRate) CheckTaxAccount(acct *Account) error {
	if acct == nil || !acct.Postable() || !strings.HasPrefix(acct.Number, "4") {
		return ErrTaxAccountClass
	}
	return nil
}

func validTaxType(t TaxType) bool {
	for _, v := range AllTaxTypes {
		if v == t {
			return true
		}
	}
	return false
}
