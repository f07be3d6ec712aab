package store

import (
	"context"
	"database/sql"
	"fmt"
)

// BootstrapChart clones the chart template into a client file that does not
// have accounts yet. It runs in its own transaction and returns the number of
// accounts created; a file that already has accounts is left untouched.
func (s *Store) BootstrapChart(ctx context.Context, clientID int64) (int, error) {
	tx, err := s.writer.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	n, err := bootstrapChartTx(ctx, tx, clientID)
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return n, nil
}

// bootstrapChartTx does the clone inside the caller's transaction. Two passes:
// insert every account without a parent, then resolve parent links through the
// template's parent number. Number-based linking keeps the clone independent
// of template insertion order.
func bootstrapChartTx(ctx context.Context, tx *sql.Tx, clientID int64) (int, error) {
	var existing int
	err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM accounts WHERE client_id = ?`, clientID).Scan(&existing)
	if err != nil {
		return 0, fmt.Errorf("count accounts: %w", err)
	}
	if existing > 0 {
		return 0, nil
	}

	rows, err := tx.QueryContext(ctx,
		`SELECT id, number, label, type, nature, parent_number, usual_side, lettrable_by_default
		 FROM account_templates ORDER BY number`)
	if err != nil {
		return 0, fmt.Errorf("load templates: %w", err)
	}

	type tplRow struct {
		id           int64
		number       string
		label        string
		typ          string
		nature       string
		parentNumber string
		usualSide    string
		lettrable    int
	}
	var tpls []tplRow
	for rows.Next() {
		var t tplRow
		if err := rows.Scan(&t.id, &t.number, &t.label, &t.typ, &t.nature, &t.parentNumber, &t.usualSide, &t.lettrable); err != nil {
			rows.Close()
			return 0, fmt.Errorf("scan template: %w", err)
		}
		tpls = append(tpls, t)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}

	// First pass: create accounts, parents unresolved
	ids := make(map[string]int64, len(tpls))
	for _, t := range tpls {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO accounts (client_id, template_id, number, label, type, nature, usual_side, lettrable, active)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, 1)`,
			clientID, t.id, t.number, t.label, t.typ, t.nature, t.usualSide, t.lettrable,
		)
		if err != nil {
			return 0, fmt.Errorf("clone account %s: %w", t.number, err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return 0, fmt.Errorf("clone account %s: %w", t.number, err)
		}
		ids[t.number] = id
	}

	// Second pass: link parents by number
	for _, t := range tpls {
		if t.parentNumber == "" {
			continue
		}
		parentID, ok := ids[t.parentNumber]
		if !ok {
			continue
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE accounts SET parent_id = ? WHERE id = ?`, parentID, ids[t.number]); err != nil {
			return 0, fmt.Errorf("link parent of %s: %w", t.number, err)
		}
	}

	return len(tpls), nil
}
