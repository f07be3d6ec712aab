package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/kbrou/syscompta/internal/ledger"
)

// CreateClient inserts a client file and clones the default chart into it,
// both in one transaction. A new file is never left half-bootstrapped.
func (s *Store) CreateClient(ctx context.Context, c *ledger.Client) error {
	if err := c.Validate(); err != nil {
		return err
	}

	tx, err := s.writer.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO clients (name, rccm, taxpayer_number, legal_form, activity_sector, fiscal_regime, status, notes)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.Name, c.RCCM, c.TaxpayerNumber, c.LegalForm, c.ActivitySector, c.FiscalRegime, string(c.Status), c.Notes,
	)
	if err != nil {
		return fmt.Errorf("insert client: %w", err)
	}
	c.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert client: %w", err)
	}

	if _, err := bootstrapChartTx(ctx, tx, c.ID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *Store) GetClient(ctx context.Context, id int64) (*ledger.Client, error) {
	row := s.reader.QueryRowContext(ctx,
		`SELECT id, name, rccm, taxpayer_number, legal_form, activity_sector, fiscal_regime, status, notes, created_at
		 FROM clients WHERE id = ?`, id)
	return scanClient(row)
}

func (s *Store) ListClients(ctx context.Context) ([]ledger.Client, error) {
	rows, err := s.reader.QueryContext(ctx,
		`SELECT id, name, rccm, taxpayer_number, legal_form, activity_sector, fiscal_regime, status, notes, created_at
		 FROM clients ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	defer rows.Close()

	var clients []ledger.Client
	for rows.Next() {
		var c ledger.Client
		var status, createdAt string
		if err := rows.Scan(&c.ID, &c.Name, &c.RCCM, &c.TaxpayerNumber, &c.LegalForm, &c.ActivitySector, &c.FiscalRegime, &status, &c.Notes, &createdAt); err != nil {
			return nil, fmt.Errorf("scan client: %w", err)
		}
		c.Status = ledger.ClientStatus(status)
		c.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

func (s *Store) UpdateClient(ctx context.Context, c *ledger.Client) error {
	if err := c.Validate(); err != nil {
		return err
	}
	res, err := s.writer.ExecContext(ctx,
		`UPDATE clients SET name = ?, rccm = ?, taxpayer_number = ?, legal_form = ?, activity_sector = ?, fiscal_regime = ?, status = ?, notes = ?
		 WHERE id = ?`,
		c.Name, c.RCCM, c.TaxpayerNumber, c.LegalForm, c.ActivitySector, c.FiscalRegime, string(c.Status), c.Notes, c.ID,
	)
	if err != nil {
		return fmt.Errorf("update client: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update client: %w", err)
	}
	if n == 0 {
		return ledger.ErrClientNotFound
	}
	return nil
}

func scanClient(row *sql.Row) (*ledger.Client, error) {
	var c ledger.Client
	var status, createdAt string
	err := row.Scan(&c.ID, &c.Name, &c.RCCM, &c.TaxpayerNumber, &c.LegalForm, &c.ActivitySector, &c.FiscalRegime, &status, &c.Notes, &createdAt)
	if err == sql.ErrNoRows {
		return nil, ledger.ErrClientNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan client: %w", err)
	}
	c.Status = ledger.ClientStatus(status)
	c.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	return &c, nil
}
