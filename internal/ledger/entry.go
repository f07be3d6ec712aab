package ledger

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Balance tolerances. The narrow epsilon guards stored derived state ("is
// this piece balanced"); the wider one is the slack allowed on a manual
// submission, where independent line entry can accumulate rounding. They are
// deliberately distinct and must not be unified.
var (
	BalanceEpsilon = decimal.RequireFromString("0.001")
	EntryTolerance = decimal.RequireFromString("0.01")
)

// JournalEntry is one accounting piece: a header plus its debit/credit lines.
type JournalEntry struct {
	ID            string           `json:"id"`
	ClientID      int64            `json:"client_id"`
	JournalID     int64            `json:"journal_id"`
	Date          time.Time        `json:"date"`
	PieceNumber   string           `json:"piece_number,omitempty"`
	Label         string           `json:"label"`
	InvoiceNumber string           `json:"invoice_number,omitempty"`
	Reference     string           `json:"reference,omitempty"`
	PartnerID     int64            `json:"partner_id,omitempty"`
	DueDate       *time.Time       `json:"due_date,omitempty"`
	ControlAmount *decimal.Decimal `json:"control_amount,omitempty"`
	CreatedAt     time.Time        `json:"created_at,omitempty"`
	Lines         []EntryLine      `json:"lines,omitempty"`

	// Derived from Lines, never stored.
	TotalDebit  decimal.Decimal `json:"total_debit"`
	TotalCredit decimal.Decimal `json:"total_credit"`
	Balance     decimal.Decimal `json:"balance"`
	IsBalanced  bool            `json:"is_balanced"`
}

// ComputeTotals recomputes the derived amounts from the attached lines.
// An entry is balanced when |debit - credit| stays under BalanceEpsilon.
func (e *JournalEntry) ComputeTotals() {
	e.TotalDebit = decimal.Zero
	e.TotalCredit = decimal.Zero
	for i := range e.Lines {
		e.TotalDebit = e.TotalDebit.Add(e.Lines[i].Debit)
		e.TotalCredit = e.TotalCredit.Add(e.Lines[i].Credit)
	}
	e.Balance = e.TotalDebit.Sub(e.TotalCredit)
	e.IsBalanced = e.Balance.Abs().LessThan(BalanceEpsilon)
}

// EntryLine is one debit-or-credit movement against a detail account.
// Order is the immutable per-entry sequence assigned at insertion.
type EntryLine struct {
	ID             int64           `json:"id,omitempty"`
	EntryID        string          `json:"entry_id,omitempty"`
	AccountID      int64           `json:"account_id"`
	PartnerID      int64           `json:"partner_id,omitempty"`
	Label          string          `json:"label"`
	DueDate        *time.Time      `json:"due_date,omitempty"`
	Reconciliation string          `json:"reconciliation,omitempty"`
	Day            int             `json:"day,omitempty"`
	PieceNumber    string          `json:"piece_number,omitempty"`
	InvoiceNumber  string          `json:"invoice_number,omitempty"`
	Reference      string          `json:"reference,omitempty"`
	Debit          decimal.Decimal `json:"debit"`
	Credit         decimal.Decimal `json:"credit"`
	Order          int             `json:"order"`
}

// LineDraft is one proposed line of a submission, with account and partner
// already resolved. The validation engine judges drafts, not stored rows.
type LineDraft struct {
	Day            int
	PieceNumber    string
	InvoiceNumber  string
	Reference      string
	Account        *Account
	Partner        *Partner
	Label          string
	DueDate        *time.Time
	Reconciliation string
	Debit          decimal.Decimal
	Credit         decimal.Decimal
}

// Intended reports whether the user meant to fill this line: any of the
// identifying fields, an account, a label, or a non-zero amount marks it.
func (d *LineDraft) Intended() bool {
	return d.Day != 0 ||
		d.PieceNumber != "" || d.InvoiceNumber != "" || d.Reference != "" ||
		d.Account != nil || d.Label != "" ||
		!d.Debit.IsZero() || !d.Credit.IsZero()
}

// Touched reports whether the draft differs from an empty row at all.
func (d *LineDraft) Touched() bool {
	return d.Intended() || d.Partner != nil || d.DueDate != nil || d.Reconciliation != ""
}

// Active reports whether the line counts toward the piece: an account, a
// label and exactly one amount.
func (d *LineDraft) Active() bool {
	return d.Account != nil && d.Label != "" && (!d.Debit.IsZero() || !d.Credit.IsZero())
}

// LineTotals is the running result of validating a submission.
type LineTotals struct {
	TotalDebit  decimal.Decimal `json:"total_debit"`
	TotalCredit decimal.Decimal `json:"total_credit"`
	Balance     decimal.Decimal `json:"balance"`
	IsBalanced  bool            `json:"is_balanced"`
	ActiveLines int             `json:"active_lines"`
}

// ValidateLines runs the full rule set over a proposed set of lines and
// returns the totals alongside every violation found. Rules are evaluated
// over the whole set; nothing is committed here.
//
// Per line (only for lines the user intended to fill): account and label
// required; exactly one of debit/credit positive; amounts limited to 2
// decimal places; a partner is required when the account is partner-typed.
// Across lines: at least one active line when anything was touched, and
// total debit equal to total credit within EntryTolerance.
func ValidateLines(drafts []LineDraft) (LineTotals, ValidationErrors) {
	var errs ValidationErrors
	var totals LineTotals
	totals.TotalDebit = decimal.Zero
	totals.TotalCredit = decimal.Zero

	anyTouched := false
	for i := range drafts {
		d := &drafts[i]
		if d.Touched() {
			anyTouched = true
		}
		if !d.Intended() {
			continue
		}

		if d.Account == nil {
			errs.Add(i, "account", "an account is required")
		} else if !d.Account.Postable() {
			errs.Add(i, "account", fmt.Sprintf("account %s is not an active detail account", d.Account.Number))
		}
		if d.Label == "" {
			errs.Add(i, "label", "a label is required")
		}

		if d.Debit.IsNegative() || d.Credit.IsNegative() {
			errs.Add(i, "", "amounts cannot be negative")
		}
		hasDebit := d.Debit.IsPositive()
		hasCredit := d.Credit.IsPositive()
		switch {
		case !hasDebit && !hasCredit:
			errs.Add(i, "", "an amount (debit or credit) is required")
		case hasDebit && hasCredit:
			errs.Add(i, "", "debit and credit cannot both be set")
		}
		if overTwoDecimals(d.Debit) || overTwoDecimals(d.Credit) {
			errs.Add(i, "", "amounts are limited to 2 decimal places")
		}

		if d.Account != nil && d.Account.Type.RequiresPartner() && d.Partner == nil {
			errs.Add(i, "partner", fmt.Sprintf("a partner is required for account %s", d.Account.Number))
		}

		if d.Active() {
			totals.ActiveLines++
			totals.TotalDebit = totals.TotalDebit.Add(d.Debit)
			totals.TotalCredit = totals.TotalCredit.Add(d.Credit)
		}
	}

	if totals.ActiveLines == 0 && anyTouched {
		errs.Add(-1, "", "at least one valid entry line is required")
	}

	totals.Balance = totals.TotalDebit.Sub(totals.TotalCredit)
	totals.IsBalanced = totals.Balance.Abs().LessThan(EntryTolerance)
	if !totals.IsBalanced {
		errs.Add(-1, "", fmt.Sprintf(
			"entry is not balanced: debit %s, credit %s, difference %s",
			totals.TotalDebit.StringFixed(2),
			totals.TotalCredit.StringFixed(2),
			totals.Balance.StringFixed(2),
		))
	}

	return totals, errs
}

func overTwoDecimals(d decimal.Decimal) bool {
	hundred := decimal.NewFromInt(100)
	scaled := d.Mul(hundred)
	return !scaled.Equal(scaled.Floor())
}
