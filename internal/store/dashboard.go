package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/kbrou/syscompta/internal/ledger"
	"github.com/shopspring/decimal"
)

// DashboardKPIs is the period snapshot shown on a client file's dashboard.
// Every aggregate reads as zero on an empty file.
type DashboardKPIs struct {
	Year  int `json:"year"`
	Month int `json:"month,omitempty"`

	EntryCount  int             `json:"entry_count"`
	TotalDebit  decimal.Decimal `json:"total_debit"`
	TotalCredit decimal.Decimal `json:"total_credit"`

	// All-time balance of treasury-typed accounts, debit minus credit.
	TreasuryBalance decimal.Decimal `json:"treasury_balance"`

	UnbalancedCount  int                   `json:"unbalanced_count"`
	UnbalancedSample []ledger.JournalEntry `json:"unbalanced_sample,omitempty"`

	ActiveAccounts int `json:"active_accounts"`
	ActiveJournals int `json:"active_journals"`
	ActivePartners int `json:"active_partners"`

	LatestEntries []ledger.JournalEntry `json:"latest_entries,omitempty"`

	// Year-to-date class 7 credits minus debits, and the same net of class 6.
	RevenueYear   decimal.Decimal `json:"revenue_year"`
	NetIncomeYear decimal.Decimal `json:"net_income_year"`
}

// PeriodKPIs aggregates the dashboard numbers for a year, optionally narrowed
// to one month. Amount aggregation runs over decimals in Go; SQLite would
// coerce the stored decimal strings to floats.
func (s *Store) PeriodKPIs(ctx context.Context, clientID int64, year, month int) (*DashboardKPIs, error) {
	k := &DashboardKPIs{
		Year: year, Month: month,
		TotalDebit: decimal.Zero, TotalCredit: decimal.Zero,
		TreasuryBalance: decimal.Zero,
		RevenueYear:     decimal.Zero, NetIncomeYear: decimal.Zero,
	}

	from, to := periodRange(year, month)
	entries, err := s.ListEntries(ctx, clientID, EntryFilter{DateFrom: &from, DateTo: &to})
	if err != nil {
		return nil, err
	}

	k.EntryCount = len(entries)
	for i := range entries {
		e := &entries[i]
		k.TotalDebit = k.TotalDebit.Add(e.TotalDebit)
		k.TotalCredit = k.TotalCredit.Add(e.TotalCredit)
		if !e.IsBalanced {
			k.UnbalancedCount++
			if len(k.UnbalancedSample) < 3 {
				k.UnbalancedSample = append(k.UnbalancedSample, *e)
			}
		}
	}
	// entries come newest first
	if len(entries) > 5 {
		k.LatestEntries = entries[:5]
	} else {
		k.LatestEntries = entries
	}

	if k.TreasuryBalance, err = s.treasuryBalance(ctx, clientID); err != nil {
		return nil, err
	}

	yearFrom, yearTo := periodRange(year, 0)
	revenue, err := s.classNet(ctx, clientID, "7%", yearFrom, yearTo, true)
	if err != nil {
		return nil, err
	}
	expenses, err := s.classNet(ctx, clientID, "6%", yearFrom, yearTo, false)
	if err != nil {
		return nil, err
	}
	k.RevenueYear = revenue
	k.NetIncomeYear = revenue.Sub(expenses)

	counts := []struct {
		query string
		dst   *int
	}{
		{`SELECT COUNT(*) FROM accounts WHERE client_id = ? AND active = 1`, &k.ActiveAccounts},
		{`SELECT COUNT(*) FROM journals WHERE client_id = ? AND active = 1`, &k.ActiveJournals},
		{`SELECT COUNT(*) FROM partners WHERE client_id = ? AND active = 1`, &k.ActivePartners},
	}
	for _, c := range counts {
		if err := s.reader.QueryRowContext(ctx, c.query, clientID).Scan(c.dst); err != nil {
			return nil, fmt.Errorf("dashboard count: %w", err)
		}
	}

	return k, nil
}

// treasuryBalance sums debit minus credit over lines of treasury-typed
// accounts, all-time.
func (s *Store) treasuryBalance(ctx context.Context, clientID int64) (decimal.Decimal, error) {
	rows, err := s.reader.QueryContext(ctx,
		`SELECT l.debit, l.credit
		 FROM entry_lines l
		 JOIN accounts a ON a.id = l.account_id
		 JOIN entries e ON e.id = l.entry_id
		 WHERE e.client_id = ? AND a.type IN ('treasury_asset','treasury_liability')`,
		clientID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("treasury balance: %w", err)
	}
	defer rows.Close()
	return sumDebitMinusCredit(rows)
}

// classNet sums one SYSCOHADA class over a period. Credit-normal classes
// (products) count credit minus debit, debit-normal ones the reverse.
func (s *Store) classNet(ctx context.Context, clientID int64, numberLike string, from, to time.Time, creditNormal bool) (decimal.Decimal, error) {
	rows, err := s.reader.QueryContext(ctx,
		`SELECT l.debit, l.credit
		 FROM entry_lines l
		 JOIN accounts a ON a.id = l.account_id
		 JOIN entries e ON e.id = l.entry_id
		 WHERE e.client_id = ? AND a.number LIKE ? AND e.date >= ? AND e.date <= ?`,
		clientID, numberLike, from.Format(dateLayout), to.Format(dateLayout))
	if err != nil {
		return decimal.Zero, fmt.Errorf("class aggregate: %w", err)
	}
	defer rows.Close()

	net, err := sumDebitMinusCredit(rows)
	if err != nil {
		return decimal.Zero, err
	}
	if creditNormal {
		return net.Neg(), nil
	}
	return net, nil
}

func sumDebitMinusCredit(rows *sql.Rows) (decimal.Decimal, error) {
	total := decimal.Zero
	for rows.Next() {
		var debit, credit string
		if err := rows.Scan(&debit, &credit); err != nil {
			return decimal.Zero, fmt.Errorf("scan amounts: %w", err)
		}
		d, err := decimal.NewFromString(debit)
		if err != nil {
			return decimal.Zero, fmt.Errorf("parse debit %q: %w", debit, err)
		}
		c, err := decimal.NewFromString(credit)
		if err != nil {
			return decimal.Zero, fmt.Errorf("parse credit %q: %w", credit, err)
		}
		total = total.Add(d).Sub(c)
	}
	return total, rows.Err()
}

func periodRange(year, month int) (time.Time, time.Time) {
	if month >= 1 && month <= 12 {
		from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
		return from, from.AddDate(0, 1, -1)
	}
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	return from, time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
}
