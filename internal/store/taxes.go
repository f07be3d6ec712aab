package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/kbrou/syscompta/internal/ledger"
	"github.com/shopspring/decimal"
)

func (s *Store) CreateTaxRate(ctx context.Context, t *ledger.TaxRate) error {
	if err := t.Validate(); err != nil {
		return err
	}
	if err := s.checkTaxCodeUnique(ctx, t.ClientID, t.Code, 0); err != nil {
		return err
	}
	acct, err := s.getScopedAccount(ctx, t.ClientID, t.TaxAccountID)
	if err != nil {
		return err
	}
	if err := t.CheckTaxAccount(acct); err != nil {
		return err
	}

	res, err := s.writer.ExecContext(ctx,
		`INSERT INTO tax_rates (client_id, code, label, type, rate, tax_account_id, active)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.ClientID, t.Code, t.Label, string(t.Type), t.Rate.StringFixed(3), t.TaxAccountID, boolToInt(t.Active),
	)
	if err != nil {
		return fmt.Errorf("insert tax rate: %w", err)
	}
	t.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert tax rate: %w", err)
	}
	return nil
}

func (s *Store) UpdateTaxRate(ctx context.Context, t *ledger.TaxRate) error {
	if err := t.Validate(); err != nil {
		return err
	}
	if err := s.checkTaxCodeUnique(ctx, t.ClientID, t.Code, t.ID); err != nil {
		return err
	}
	acct, err := s.getScopedAccount(ctx, t.ClientID, t.TaxAccountID)
	if err != nil {
		return err
	}
	if err := t.CheckTaxAccount(acct); err != nil {
		return err
	}

	res, err := s.writer.ExecContext(ctx,
		`UPDATE tax_rates SET code = ?, label = ?, type = ?, rate = ?, tax_account_id = ?, active = ?
		 WHERE id = ? AND client_id = ?`,
		t.Code, t.Label, string(t.Type), t.Rate.StringFixed(3), t.TaxAccountID, boolToInt(t.Active), t.ID, t.ClientID,
	)
	if err != nil {
		return fmt.Errorf("update tax rate: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update tax rate: %w", err)
	}
	if n == 0 {
		return ledger.ErrTaxRateNotFound
	}
	return nil
}

func (s *Store) DeleteTaxRate(ctx context.Context, id int64) error {
	res, err := s.writer.ExecContext(ctx, `DELETE FROM tax_rates WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete tax rate: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete tax rate: %w", err)
	}
	if n == 0 {
		return ledger.ErrTaxRateNotFound
	}
	return nil
}

func (s *Store) GetTaxRate(ctx context.Context, id int64) (*ledger.TaxRate, error) {
	row := s.reader.QueryRowContext(ctx,
		`SELECT id, client_id, code, label, type, rate, tax_account_id, active, created_at
		 FROM tax_rates WHERE id = ?`, id)
	t, err := scanTaxRateFields(row)
	if err == sql.ErrNoRows {
		return nil, ledger.ErrTaxRateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan tax rate: %w", err)
	}
	return t, nil
}

func (s *Store) ListTaxRates(ctx context.Context, clientID int64) ([]ledger.TaxRate, error) {
	rows, err := s.reader.QueryContext(ctx,
		`SELECT id, client_id, code, label, type, rate, tax_account_id, active, created_at
		 FROM tax_rates WHERE client_id = ? ORDER BY code`, clientID)
	if err != nil {
		return nil, fmt.Errorf("list tax rates: %w", err)
	}
	defer rows.Close()

	var rates []ledger.TaxRate
	for rows.Next() {
		t, err := scanTaxRateFields(rows)
		if err != nil {
			return nil, fmt.Errorf("scan tax rate row: %w", err)
		}
		rates = append(rates, *t)
	}
	return rates, rows.Err()
}

func (s *Store) checkTaxCodeUnique(ctx context.Context, clientID int64, code string, selfID int64) error {
	var count int
	err := s.reader.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tax_rates WHERE client_id = ? AND code = ? AND id != ?`,
		clientID, code, selfID).Scan(&count)
	if err != nil {
		return fmt.Errorf("check code: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("%w: %s", ledger.ErrDuplicateCode, code)
	}
	return nil
}

func scanTaxRateFields(sc accountScanner) (*ledger.TaxRate, error) {
	var t ledger.TaxRate
	var typ, rate, createdAt string
	var active int
	err := sc.Scan(&t.ID, &t.ClientID, &t.Code, &t.Label, &typ, &rate, &t.TaxAccountID, &active, &createdAt)
	if err != nil {
		return nil, err
	}
	t.Type = ledger.TaxType(typ)
	t.Rate, err = decimal.NewFromString(rate)
	if err != nil {
		return nil, fmt.Errorf("parse rate %q: %w", rate, err)
	}
	t.Active = active == 1
	t.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	return &t, nil
}
