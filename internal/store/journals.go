package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/kbrou/syscompta/internal/ledger"
)

func (s *Store) CreateJournal(ctx context.Context, j *ledger.Journal) error {
	if err := j.Validate(); err != nil {
		return err
	}
	if err := s.checkJournalCodeUnique(ctx, j.ClientID, j.Code, 0); err != nil {
		return err
	}
	if err := s.checkCounterpart(ctx, j); err != nil {
		return err
	}

	var counterpart any
	if j.CounterpartAccountID != 0 {
		counterpart = j.CounterpartAccountID
	}
	res, err := s.writer.ExecContext(ctx,
		`INSERT INTO journals (client_id, code, label, type, counterpart_account_id, active)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		j.ClientID, j.Code, j.Label, string(j.Type), counterpart, boolToInt(j.Active),
	)
	if err != nil {
		return fmt.Errorf("insert journal: %w", err)
	}
	j.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert journal: %w", err)
	}
	return nil
}

func (s *Store) UpdateJournal(ctx context.Context, j *ledger.Journal) error {
	if err := j.Validate(); err != nil {
		return err
	}
	if err := s.checkJournalCodeUnique(ctx, j.ClientID, j.Code, j.ID); err != nil {
		return err
	}
	if err := s.checkCounterpart(ctx, j); err != nil {
		return err
	}

	var counterpart any
	if j.CounterpartAccountID != 0 {
		counterpart = j.CounterpartAccountID
	}
	res, err := s.writer.ExecContext(ctx,
		`UPDATE journals SET code = ?, label = ?, type = ?, counterpart_account_id = ?, active = ?
		 WHERE id = ? AND client_id = ?`,
		j.Code, j.Label, string(j.Type), counterpart, boolToInt(j.Active), j.ID, j.ClientID,
	)
	if err != nil {
		return fmt.Errorf("update journal: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update journal: %w", err)
	}
	if n == 0 {
		return ledger.ErrJournalNotFound
	}
	return nil
}

// DeleteJournal removes a journal no entry references.
func (s *Store) DeleteJournal(ctx context.Context, id int64) error {
	if _, err := s.GetJournal(ctx, id); err != nil {
		return err
	}
	var count int
	err := s.reader.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM entries WHERE journal_id = ?`, id).Scan(&count)
	if err != nil {
		return fmt.Errorf("check entries: %w", err)
	}
	if count > 0 {
		return ledger.ErrReferencedJournal
	}
	if _, err := s.writer.ExecContext(ctx, `DELETE FROM journals WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete journal: %w", err)
	}
	return nil
}

func (s *Store) GetJournal(ctx context.Context, id int64) (*ledger.Journal, error) {
	row := s.reader.QueryRowContext(ctx,
		`SELECT id, client_id, code, label, type, counterpart_account_id, active FROM journals WHERE id = ?`, id)
	return scanJournal(row)
}

func (s *Store) ListJournals(ctx context.Context, clientID int64) ([]ledger.Journal, error) {
	rows, err := s.reader.QueryContext(ctx,
		`SELECT id, client_id, code, label, type, counterpart_account_id, active
		 FROM journals WHERE client_id = ? ORDER BY code`, clientID)
	if err != nil {
		return nil, fmt.Errorf("list journals: %w", err)
	}
	defer rows.Close()

	var journals []ledger.Journal
	for rows.Next() {
		var j ledger.Journal
		var typ string
		var counterpart sql.NullInt64
		var active int
		if err := rows.Scan(&j.ID, &j.ClientID, &j.Code, &j.Label, &typ, &counterpart, &active); err != nil {
			return nil, fmt.Errorf("scan journal: %w", err)
		}
		j.Type = ledger.JournalType(typ)
		j.CounterpartAccountID = counterpart.Int64
		j.Active = active == 1
		journals = append(journals, j)
	}
	return journals, rows.Err()
}

func (s *Store) checkJournalCodeUnique(ctx context.Context, clientID int64, code string, selfID int64) error {
	var count int
	err := s.reader.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM journals WHERE client_id = ? AND code = ? AND id != ?`,
		clientID, code, selfID).Scan(&count)
	if err != nil {
		return fmt.Errorf("check code: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("%w: %s", ledger.ErrDuplicateCode, code)
	}
	return nil
}

func (s *Store) checkCounterpart(ctx context.Context, j *ledger.Journal) error {
	if j.CounterpartAccountID == 0 {
		return nil
	}
	acct, err := s.getScopedAccount(ctx, j.ClientID, j.CounterpartAccountID)
	if err != nil {
		return err
	}
	return j.CheckCounterpart(acct)
}

func scanJournal(row *sql.Row) (*ledger.Journal, error) {
	var j ledger.Journal
	var typ string
	var counterpart sql.NullInt64
	var active int
	err := row.Scan(&j.ID, &j.ClientID, &j.Code, &j.Label, &typ, &counterpart, &active)
	if err == sql.ErrNoRows {
		return nil, ledger.ErrJournalNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan journal: %w", err)
	}
	j.Type = ledger.JournalType(typ)
	j.CounterpartAccountID = counterpart.Int64
	j.Active = active == 1
	return &j, nil
}
