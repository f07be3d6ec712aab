package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/kbrou/syscompta/internal/ledger"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// amountText is the canonical TEXT form of a stored amount. Write and search
// must use the same form: the amount filter matches the column by string
// equality, never by numeric cast.
func amountText(d decimal.Decimal) string {
	return d.String()
}

// Direction selects a neighbour in piece navigation.
type Direction string

const (
	DirectionPrev Direction = "prev"
	DirectionNext Direction = "next"
)

// CreateEntry persists a piece and its lines in one transaction. The balance
// of the lines is re-checked inside the transaction, so a piece that drifted
// between validation and commit is rolled back whole; no header-without-lines
// state is ever observable.
func (s *Store) CreateEntry(ctx context.Context, e *ledger.JournalEntry) error {
	if e.ID == "" {
		e.ID = uuid.Must(uuid.NewV7()).String()
	}
	if e.Label == "" {
		return ledger.ValidationErrors{{Line: -1, Field: "label", Message: "a label is required"}}
	}
	if e.Date.IsZero() {
		return ledger.ValidationErrors{{Line: -1, Field: "date", Message: "a date is required"}}
	}

	tx, err := s.writer.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	totalDebit := decimal.Zero
	totalCredit := decimal.Zero
	for i := range e.Lines {
		totalDebit = totalDebit.Add(e.Lines[i].Debit)
		totalCredit = totalCredit.Add(e.Lines[i].Credit)
	}
	if diff := totalDebit.Sub(totalCredit); diff.Abs().GreaterThanOrEqual(ledger.EntryTolerance) {
		return ledger.ValidationErrors{{Line: -1, Message: fmt.Sprintf(
			"entry is not balanced: debit %s, credit %s, difference %s",
			totalDebit.StringFixed(2), totalCredit.StringFixed(2), diff.StringFixed(2))}}
	}

	var partnerID any
	if e.PartnerID != 0 {
		partnerID = e.PartnerID
	}
	var dueDate any
	if e.DueDate != nil {
		dueDate = e.DueDate.Format(dateLayout)
	}
	var control any
	if e.ControlAmount != nil {
		control = e.ControlAmount.StringFixed(2)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO entries (id, client_id, journal_id, date, piece_number, label, invoice_number, reference, partner_id, due_date, control_amount)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.ClientID, e.JournalID, e.Date.Format(dateLayout), e.PieceNumber, e.Label,
		e.InvoiceNumber, e.Reference, partnerID, dueDate, control,
	)
	if err != nil {
		return fmt.Errorf("insert entry: %w", err)
	}

	var maxOrder sql.NullInt64
	err = tx.QueryRowContext(ctx,
		`SELECT MAX(line_order) FROM entry_lines WHERE entry_id = ?`, e.ID).Scan(&maxOrder)
	if err != nil {
		return fmt.Errorf("max line order: %w", err)
	}
	next := int(maxOrder.Int64)
	if maxOrder.Valid {
		next++
	}

	for i := range e.Lines {
		l := &e.Lines[i]
		l.EntryID = e.ID
		l.Order = next
		next++

		var linePartner any
		if l.PartnerID != 0 {
			linePartner = l.PartnerID
		}
		var lineDue any
		if l.DueDate != nil {
			lineDue = l.DueDate.Format(dateLayout)
		}

		// Amounts are stored as amountText; the amount filter in ListEntries
		// compares that text byte for byte.
		res, err := tx.ExecContext(ctx,
			`INSERT INTO entry_lines (entry_id, account_id, partner_id, label, due_date, reconciliation, day, piece_number, invoice_number, reference, debit, credit, line_order)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			e.ID, l.AccountID, linePartner, l.Label, lineDue, l.Reconciliation, l.Day,
			l.PieceNumber, l.InvoiceNumber, l.Reference, amountText(l.Debit), amountText(l.Credit), l.Order,
		)
		if err != nil {
			return fmt.Errorf("insert line %d: %w", i, err)
		}
		l.ID, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("insert line %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	e.ComputeTotals()
	return nil
}

func (s *Store) GetEntry(ctx context.Context, id string) (*ledger.JournalEntry, error) {
	row := s.reader.QueryRowContext(ctx, entryColumns+` WHERE id = ?`, id)
	e, err := scanEntry(row)
	if err != nil {
		return nil, err
	}
	e.Lines, err = s.getEntryLines(ctx, id)
	if err != nil {
		return nil, err
	}
	e.ComputeTotals()
	return e, nil
}

// GetEntryByPiece resolves a piece by its number within a journal. When the
// number was reused, the most recent piece wins.
func (s *Store) GetEntryByPiece(ctx context.Context, clientID, journalID int64, piece string) (*ledger.JournalEntry, error) {
	row := s.reader.QueryRowContext(ctx,
		entryColumns+` WHERE client_id = ? AND journal_id = ? AND piece_number = ? ORDER BY date DESC, created_at DESC LIMIT 1`,
		clientID, journalID, piece)
	e, err := scanEntry(row)
	if err != nil {
		return nil, err
	}
	e.Lines, err = s.getEntryLines(ctx, e.ID)
	if err != nil {
		return nil, err
	}
	e.ComputeTotals()
	return e, nil
}

func (s *Store) ListEntries(ctx context.Context, clientID int64, filter EntryFilter) ([]ledger.JournalEntry, error) {
	query := entryColumns + ` WHERE client_id = ?`
	args := []any{clientID}

	if filter.JournalID != 0 {
		query += ` AND journal_id = ?`
		args = append(args, filter.JournalID)
	}
	if filter.PartnerID != 0 {
		query += ` AND partner_id = ?`
		args = append(args, filter.PartnerID)
	}
	if filter.DateFrom != nil {
		query += ` AND date >= ?`
		args = append(args, filter.DateFrom.Format(dateLayout))
	}
	if filter.DateTo != nil {
		query += ` AND date <= ?`
		args = append(args, filter.DateTo.Format(dateLayout))
	}
	if filter.Search != "" {
		query += ` AND (piece_number LIKE ? OR label LIKE ? OR invoice_number LIKE ?)`
		like := "%" + filter.Search + "%"
		args = append(args, like, like, like)
	}
	if filter.Amount != nil {
		amt := amountText(*filter.Amount)
		query += ` AND id IN (SELECT entry_id FROM entry_lines WHERE debit = ? OR credit = ?)`
		args = append(args, amt, amt)
	}

	query += ` ORDER BY date DESC, created_at DESC`

	if filter.Limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, filter.Limit)
		if filter.Offset > 0 {
			query += fmt.Sprintf(` OFFSET %d`, filter.Offset)
		}
	}

	rows, err := s.reader.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	var entries []ledger.JournalEntry
	for rows.Next() {
		e, err := scanEntryRow(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range entries {
		entries[i].Lines, err = s.getEntryLines(ctx, entries[i].ID)
		if err != nil {
			return nil, err
		}
		entries[i].ComputeTotals()
	}
	return entries, nil
}

func (s *Store) DeleteEntry(ctx context.Context, id string) error {
	res, err := s.writer.ExecContext(ctx, `DELETE FROM entries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	if n == 0 {
		return ledger.ErrEntryNotFound
	}
	return nil
}

// AdjacentPiece finds the neighbouring piece of the given one within its
// journal, ordered by date then piece number.
func (s *Store) AdjacentPiece(ctx context.Context, clientID, journalID int64, piece string, dir Direction) (*ledger.JournalEntry, error) {
	current, err := s.GetEntryByPiece(ctx, clientID, journalID, piece)
	if err != nil {
		return nil, err
	}

	var row *sql.Row
	date := current.Date.Format(dateLayout)
	switch dir {
	case DirectionPrev:
		row = s.reader.QueryRowContext(ctx,
			entryColumns+` WHERE client_id = ? AND journal_id = ? AND piece_number != ''
			 AND date <= ? AND piece_number < ?
			 ORDER BY date DESC, piece_number DESC LIMIT 1`,
			clientID, journalID, date, piece)
	case DirectionNext:
		row = s.reader.QueryRowContext(ctx,
			entryColumns+` WHERE client_id = ? AND journal_id = ? AND piece_number != ''
			 AND date >= ? AND piece_number > ?
			 ORDER BY date, piece_number LIMIT 1`,
			clientID, journalID, date, piece)
	default:
		return nil, fmt.Errorf("unknown direction %q", dir)
	}

	e, err := scanEntry(row)
	if err == ledger.ErrEntryNotFound {
		return nil, ledger.ErrPieceNotFound
	}
	if err != nil {
		return nil, err
	}
	e.Lines, err = s.getEntryLines(ctx, e.ID)
	if err != nil {
		return nil, err
	}
	e.ComputeTotals()
	return e, nil
}

// LastPieceNumber returns the highest piece number booked in the journal
// within the given year, or "" when the journal has none. Pieces are ordered
// by number, not by date, so a back-dated piece still advances the sequence.
func (s *Store) LastPieceNumber(ctx context.Context, clientID, journalID int64, year int) (string, error) {
	var piece string
	err := s.reader.QueryRowContext(ctx,
		`SELECT piece_number FROM entries
		 WHERE client_id = ? AND journal_id = ? AND piece_number != '' AND strftime('%Y', date) = ?
		 ORDER BY piece_number DESC, date DESC LIMIT 1`,
		clientID, journalID, strconv.Itoa(year)).Scan(&piece)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("last piece number: %w", err)
	}
	return piece, nil
}

func (s *Store) getEntryLines(ctx context.Context, entryID string) ([]ledger.EntryLine, error) {
	rows, err := s.reader.QueryContext(ctx,
		`SELECT id, entry_id, account_id, partner_id, label, due_date, reconciliation, day, piece_number, invoice_number, reference, debit, credit, line_order
		 FROM entry_lines WHERE entry_id = ? ORDER BY line_order`, entryID)
	if err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}
	defer rows.Close()

	var lines []ledger.EntryLine
	for rows.Next() {
		var l ledger.EntryLine
		var partnerID sql.NullInt64
		var dueDate sql.NullString
		var debit, credit string
		if err := rows.Scan(&l.ID, &l.EntryID, &l.AccountID, &partnerID, &l.Label, &dueDate, &l.Reconciliation,
			&l.Day, &l.PieceNumber, &l.InvoiceNumber, &l.Reference, &debit, &credit, &l.Order); err != nil {
			return nil, fmt.Errorf("scan line: %w", err)
		}
		l.PartnerID = partnerID.Int64
		if dueDate.Valid && dueDate.String != "" {
			t, err := time.Parse(dateLayout, dueDate.String)
			if err == nil {
				l.DueDate = &t
			}
		}
		if l.Debit, err = decimal.NewFromString(debit); err != nil {
			return nil, fmt.Errorf("parse debit %q: %w", debit, err)
		}
		if l.Credit, err = decimal.NewFromString(credit); err != nil {
			return nil, fmt.Errorf("parse credit %q: %w", credit, err)
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

const entryColumns = `SELECT id, client_id, journal_id, date, piece_number, label, invoice_number, reference, partner_id, due_date, control_amount, created_at FROM entries`

func scanEntryFields(sc accountScanner) (*ledger.JournalEntry, error) {
	var e ledger.JournalEntry
	var date, createdAt string
	var partnerID sql.NullInt64
	var dueDate, control sql.NullString
	err := sc.Scan(&e.ID, &e.ClientID, &e.JournalID, &date, &e.PieceNumber, &e.Label,
		&e.InvoiceNumber, &e.Reference, &partnerID, &dueDate, &control, &createdAt)
	if err != nil {
		return nil, err
	}
	e.Date, _ = time.Parse(dateLayout, date)
	e.PartnerID = partnerID.Int64
	if dueDate.Valid && dueDate.String != "" {
		if t, err := time.Parse(dateLayout, dueDate.String); err == nil {
			e.DueDate = &t
		}
	}
	if control.Valid && control.String != "" {
		if d, err := decimal.NewFromString(control.String); err == nil {
			e.ControlAmount = &d
		}
	}
	e.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	return &e, nil
}

func scanEntry(row *sql.Row) (*ledger.JournalEntry, error) {
	e, err := scanEntryFields(row)
	if err == sql.ErrNoRows {
		return nil, ledger.ErrEntryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan entry: %w", err)
	}
	return e, nil
}

func scanEntryRow(rows *sql.Rows) (*ledger.JournalEntry, error) {
	e, err := scanEntryFields(rows)
	if err != nil {
		return nil, fmt.Errorf("scan entry row: %w", err)
	}
	return e, nil
}
