package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/kbrou/syscompta/internal/ledger"
)

func (s *Store) migrate(ctx context.Context) error {
	tx, err := s.writer.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		)
	`); err != nil {
		return fmt.Errorf("create schema_version: %w", err)
	}

	var version int
	err = tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_version`).Scan(&version)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	if version < 1 {
		if err := migrateV1(ctx, tx); err != nil {
			return fmt.Errorf("migration v1: %w", err)
		}
	}

	return tx.Commit()
}

func migrateV1(ctx context.Context, tx *sql.Tx) error {
	stmts := []string{
		// Client files
		`CREATE TABLE IF NOT EXISTS clients (
			id              INTEGER PRIMARY KEY AUTOINCREMENT,
			name            TEXT NOT NULL,
			rccm            TEXT NOT NULL DEFAULT '',
			taxpayer_number TEXT NOT NULL DEFAULT '',
			legal_form      TEXT NOT NULL DEFAULT '',
			activity_sector TEXT NOT NULL DEFAULT '',
			fiscal_regime   TEXT NOT NULL DEFAULT '',
			status          TEXT NOT NULL DEFAULT 'active' CHECK (status IN ('active','inactive','archived','prospect')),
			notes           TEXT NOT NULL DEFAULT '',
			created_at      TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now'))
		)`,

		// SYSCOHADA chart template, shared across client files.
		// Parent links are by account number, not row id.
		`CREATE TABLE IF NOT EXISTS account_templates (
			id                   INTEGER PRIMARY KEY AUTOINCREMENT,
			number               TEXT NOT NULL UNIQUE,
			label                TEXT NOT NULL,
			type                 TEXT NOT NULL DEFAULT '',
			nature               TEXT NOT NULL CHECK (nature IN ('collective','centralizing','detail')),
			parent_number        TEXT NOT NULL DEFAULT '',
			usual_side           TEXT NOT NULL DEFAULT '',
			lettrable_by_default INTEGER NOT NULL DEFAULT 0
		)`,

		// Client-scoped chart of accounts
		`CREATE TABLE IF NOT EXISTS accounts (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			client_id   INTEGER NOT NULL REFERENCES clients(id),
			template_id INTEGER REFERENCES account_templates(id),
			number      TEXT NOT NULL,
			label       TEXT NOT NULL,
			type        TEXT NOT NULL DEFAULT '',
			nature      TEXT NOT NULL CHECK (nature IN ('collective','centralizing','detail')),
			parent_id   INTEGER REFERENCES accounts(id),
			usual_side  TEXT NOT NULL DEFAULT '',
			lettrable   INTEGER NOT NULL DEFAULT 0,
			active      INTEGER NOT NULL DEFAULT 1,
			notes       TEXT NOT NULL DEFAULT '',
			created_at  TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now')),
			UNIQUE (client_id, number)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_accounts_client ON accounts(client_id, number)`,
		`CREATE INDEX IF NOT EXISTS idx_accounts_parent ON accounts(parent_id)`,

		// Journals
		`CREATE TABLE IF NOT EXISTS journals (
			id                     INTEGER PRIMARY KEY AUTOINCREMENT,
			client_id              INTEGER NOT NULL REFERENCES clients(id),
			code                   TEXT NOT NULL,
			label                  TEXT NOT NULL,
			type                   TEXT NOT NULL CHECK (type IN ('purchases','sales','bank','cash','misc','opening')),
			counterpart_account_id INTEGER REFERENCES accounts(id),
			active                 INTEGER NOT NULL DEFAULT 1,
			UNIQUE (client_id, code)
		)`,

		// Partners ("tiers")
		`CREATE TABLE IF NOT EXISTS partners (
			id                INTEGER PRIMARY KEY AUTOINCREMENT,
			client_id         INTEGER NOT NULL REFERENCES clients(id),
			code              TEXT NOT NULL,
			type              TEXT NOT NULL CHECK (type IN ('client','vendor','employee','state','social','internal','other')),
			name              TEXT NOT NULL,
			first_name        TEXT NOT NULL DEFAULT '',
			address           TEXT NOT NULL DEFAULT '',
			city              TEXT NOT NULL DEFAULT '',
			country           TEXT NOT NULL DEFAULT '',
			phone             TEXT NOT NULL DEFAULT '',
			email             TEXT NOT NULL DEFAULT '',
			rccm              TEXT NOT NULL DEFAULT '',
			taxpayer_number   TEXT NOT NULL DEFAULT '',
			linked_account_id INTEGER REFERENCES accounts(id),
			notes             TEXT NOT NULL DEFAULT '',
			active            INTEGER NOT NULL DEFAULT 1,
			created_at        TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now')),
			updated_at        TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now')),
			UNIQUE (client_id, code)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_partners_client ON partners(client_id, type)`,

		// Tax rates
		`CREATE TABLE IF NOT EXISTS tax_rates (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			client_id      INTEGER NOT NULL REFERENCES clients(id),
			code           TEXT NOT NULL,
			label          TEXT NOT NULL,
			type           TEXT NOT NULL CHECK (type IN ('collected','deductible','other')),
			rate           TEXT NOT NULL,
			tax_account_id INTEGER NOT NULL REFERENCES accounts(id),
			active         INTEGER NOT NULL DEFAULT 1,
			created_at     TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now')),
			UNIQUE (client_id, code)
		)`,

		// Journal entries (pieces). Amounts are decimal strings; SQLite has no
		// exact decimal type and floats would drift.
		`CREATE TABLE IF NOT EXISTS entries (
			id             TEXT PRIMARY KEY,
			client_id      INTEGER NOT NULL REFERENCES clients(id),
			journal_id     INTEGER NOT NULL REFERENCES journals(id),
			date           TEXT NOT NULL,
			piece_number   TEXT NOT NULL DEFAULT '',
			label          TEXT NOT NULL,
			invoice_number TEXT NOT NULL DEFAULT '',
			reference      TEXT NOT NULL DEFAULT '',
			partner_id     INTEGER REFERENCES partners(id),
			due_date       TEXT,
			control_amount TEXT,
			created_at     TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now'))
		)`,
		`CREATE INDEX IF NOT EXISTS idx_entries_client_date ON entries(client_id, date)`,
		`CREATE INDEX IF NOT EXISTS idx_entries_journal ON entries(journal_id, date)`,
		`CREATE INDEX IF NOT EXISTS idx_entries_piece ON entries(client_id, journal_id, piece_number)`,

		`CREATE TABLE IF NOT EXISTS entry_lines (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			entry_id       TEXT NOT NULL REFERENCES entries(id) ON DELETE CASCADE,
			account_id     INTEGER NOT NULL REFERENCES accounts(id),
			partner_id     INTEGER REFERENCES partners(id),
			label          TEXT NOT NULL,
			due_date       TEXT,
			reconciliation TEXT NOT NULL DEFAULT '',
			day            INTEGER NOT NULL DEFAULT 0,
			piece_number   TEXT NOT NULL DEFAULT '',
			invoice_number TEXT NOT NULL DEFAULT '',
			reference      TEXT NOT NULL DEFAULT '',
			debit          TEXT NOT NULL DEFAULT '0',
			credit         TEXT NOT NULL DEFAULT '0',
			line_order     INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_entry_lines_entry ON entry_lines(entry_id, line_order)`,
		`CREATE INDEX IF NOT EXISTS idx_entry_lines_account ON entry_lines(account_id)`,
		`CREATE INDEX IF NOT EXISTS idx_entry_lines_partner ON entry_lines(partner_id)`,

		`INSERT INTO schema_version (version) VALUES (1)`,
	}

	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:60], err)
		}
	}

	// Seed the default SYSCOHADA chart template
	for _, tpl := range ledger.DefaultChart {
		_, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO account_templates (number, label, type, nature, parent_number, usual_side, lettrable_by_default)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			tpl.Number, tpl.Label, string(tpl.Type), string(tpl.Nature), tpl.ParentNumber, string(tpl.UsualSide), boolToInt(tpl.LettrableByDefault),
		)
		if err != nil {
			return fmt.Errorf("seed template %s: %w", tpl.Number, err)
		}
	}

	return nil
}
