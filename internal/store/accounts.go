package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/kbrou/syscompta/internal/ledger"
)

// CreateAccount validates and inserts a client-scoped account. Unset fields
// are defaulted from the referenced template; this happens on creation only.
func (s *Store) CreateAccount(ctx context.Context, a *ledger.Account) error {
	if err := a.Validate(); err != nil {
		return err
	}

	if a.TemplateID != 0 {
		tpl, err := s.getTemplate(ctx, a.TemplateID)
		if err != nil {
			return err
		}
		a.ApplyTemplateDefaults(tpl)
	}

	if err := s.checkNumberUnique(ctx, a.ClientID, a.Number, 0); err != nil {
		return err
	}
	if err := s.checkAccountParent(ctx, a); err != nil {
		return err
	}

	var templateID any
	if a.TemplateID != 0 {
		templateID = a.TemplateID
	}
	var parentID any
	if a.ParentID != 0 {
		parentID = a.ParentID
	}

	res, err := s.writer.ExecContext(ctx,
		`INSERT INTO accounts (client_id, template_id, number, label, type, nature, parent_id, usual_side, lettrable, active, notes)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ClientID, templateID, a.Number, a.Label, string(a.Type), string(a.Nature), parentID,
		string(a.UsualSide), boolToInt(a.Lettrable), boolToInt(a.Active), a.Notes,
	)
	if err != nil {
		return fmt.Errorf("insert account: %w", err)
	}
	a.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

// UpdateAccount validates and persists changes. Template defaults are never
// re-applied on update.
func (s *Store) UpdateAccount(ctx context.Context, a *ledger.Account) error {
	if err := a.Validate(); err != nil {
		return err
	}
	if err := s.checkNumberUnique(ctx, a.ClientID, a.Number, a.ID); err != nil {
		return err
	}
	if err := s.checkAccountParent(ctx, a); err != nil {
		return err
	}

	var parentID any
	if a.ParentID != 0 {
		parentID = a.ParentID
	}
	res, err := s.writer.ExecContext(ctx,
		`UPDATE accounts SET number = ?, label = ?, type = ?, nature = ?, parent_id = ?, usual_side = ?, lettrable = ?, notes = ?
		 WHERE id = ? AND client_id = ?`,
		a.Number, a.Label, string(a.Type), string(a.Nature), parentID, string(a.UsualSide),
		boolToInt(a.Lettrable), a.Notes, a.ID, a.ClientID,
	)
	if err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	if n == 0 {
		return ledger.ErrAccountNotFound
	}
	return nil
}

// SetAccountActive flips the lifecycle flag. Deactivating an account that has
// posted lines is refused; the account is left unchanged. Activation always
// succeeds.
func (s *Store) SetAccountActive(ctx context.Context, id int64, active bool) error {
	if !active {
		referenced, err := s.accountReferenced(ctx, id)
		if err != nil {
			return err
		}
		if referenced {
			return ledger.ErrReferencedAccount
		}
	}
	res, err := s.writer.ExecContext(ctx,
		`UPDATE accounts SET active = ? WHERE id = ?`, boolToInt(active), id)
	if err != nil {
		return fmt.Errorf("set account active: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set account active: %w", err)
	}
	if n == 0 {
		return ledger.ErrAccountNotFound
	}
	return nil
}

// DeleteAccount removes an account that no line references.
func (s *Store) DeleteAccount(ctx context.Context, id int64) error {
	if _, err := s.GetAccount(ctx, id); err != nil {
		return err
	}
	referenced, err := s.accountReferenced(ctx, id)
	if err != nil {
		return err
	}
	if referenced {
		return ledger.ErrReferencedAccount
	}
	if _, err := s.writer.ExecContext(ctx, `DELETE FROM accounts WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	return nil
}

func (s *Store) GetAccount(ctx context.Context, id int64) (*ledger.Account, error) {
	row := s.reader.QueryRowContext(ctx, accountColumns+` WHERE id = ?`, id)
	return scanAccount(row)
}

// getScopedAccount resolves an account and refuses one owned by another
// client file; every cross-entity account reference goes through it.
func (s *Store) getScopedAccount(ctx context.Context, clientID, id int64) (*ledger.Account, error) {
	acct, err := s.GetAccount(ctx, id)
	if err != nil {
		return nil, err
	}
	if acct.ClientID != clientID {
		return nil, ledger.ErrAccountNotFound
	}
	return acct, nil
}

func (s *Store) GetAccountByNumber(ctx context.Context, clientID int64, number string) (*ledger.Account, error) {
	row := s.reader.QueryRowContext(ctx, accountColumns+` WHERE client_id = ? AND number = ?`, clientID, number)
	return scanAccount(row)
}

func (s *Store) ListAccounts(ctx context.Context, clientID int64, filter AccountFilter) ([]ledger.Account, error) {
	query := accountColumns + ` WHERE client_id = ?`
	args := []any{clientID}

	if filter.Nature != "" {
		query += ` AND nature = ?`
		args = append(args, string(filter.Nature))
	}
	if filter.Type != "" {
		query += ` AND type = ?`
		args = append(args, string(filter.Type))
	}
	if filter.Active != nil {
		query += ` AND active = ?`
		args = append(args, boolToInt(*filter.Active))
	}
	if filter.PostableOnly {
		query += ` AND active = 1 AND nature = 'detail'`
	}
	if filter.Search != "" {
		query += ` AND (number LIKE ? OR label LIKE ?)`
		args = append(args, filter.Search+"%", "%"+filter.Search+"%")
	}

	query += ` ORDER BY number`

	if filter.Limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, filter.Limit)
		if filter.Offset > 0 {
			query += fmt.Sprintf(` OFFSET %d`, filter.Offset)
		}
	}

	rows, err := s.reader.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []ledger.Account
	for rows.Next() {
		acct, err := scanAccountRow(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, *acct)
	}
	return accounts, rows.Err()
}

// SearchAccounts finds postable accounts for rapid entry: number prefix or
// label substring, narrowed by the journal type's usual posting profile.
func (s *Store) SearchAccounts(ctx context.Context, clientID int64, q string, journalType ledger.JournalType, limit int) ([]ledger.Account, error) {
	query := accountColumns + ` WHERE client_id = ? AND active = 1 AND nature = 'detail'`
	args := []any{clientID}

	if q != "" {
		query += ` AND (number LIKE ? OR label LIKE ?)`
		args = append(args, q+"%", "%"+q+"%")
	}

	switch journalType {
	case ledger.JournalPurchases:
		query += ` AND (number LIKE '401%' OR number LIKE '60%' OR number LIKE '44566%')`
	case ledger.JournalSales:
		query += ` AND (number LIKE '411%' OR number LIKE '70%' OR number LIKE '44571%')`
	case ledger.JournalBank, ledger.JournalCash:
		// The treasury leg is the journal's counterpart, not a pick.
		query += ` AND type NOT IN ('treasury_asset','treasury_liability')`
	}

	if limit <= 0 || limit > 50 {
		limit = 20
	}
	query += fmt.Sprintf(` ORDER BY number LIMIT %d`, limit)

	rows, err := s.reader.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search accounts: %w", err)
	}
	defer rows.Close()

	var accounts []ledger.Account
	for rows.Next() {
		acct, err := scanAccountRow(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, *acct)
	}
	return accounts, rows.Err()
}

func (s *Store) accountReferenced(ctx context.Context, id int64) (bool, error) {
	var count int
	err := s.reader.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM entry_lines WHERE account_id = ?`, id).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check lines: %w", err)
	}
	return count > 0, nil
}

func (s *Store) checkNumberUnique(ctx context.Context, clientID int64, number string, selfID int64) error {
	var count int
	err := s.reader.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM accounts WHERE client_id = ? AND number = ? AND id != ?`,
		clientID, number, selfID).Scan(&count)
	if err != nil {
		return fmt.Errorf("check number: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("%w: %s", ledger.ErrDuplicateNumber, number)
	}
	return nil
}

func (s *Store) checkAccountParent(ctx context.Context, a *ledger.Account) error {
	if a.ParentID == 0 {
		return nil
	}
	parent, err := s.getScopedAccount(ctx, a.ClientID, a.ParentID)
	if err != nil {
		return err
	}
	return a.CheckParent(parent)
}

func (s *Store) getTemplate(ctx context.Context, id int64) (*ledger.AccountTemplate, error) {
	var tpl ledger.AccountTemplate
	var typ, nature, side string
	var lettrable int
	err := s.reader.QueryRowContext(ctx,
		`SELECT id, number, label, type, nature, parent_number, usual_side, lettrable_by_default
		 FROM account_templates WHERE id = ?`, id,
	).Scan(&tpl.ID, &tpl.Number, &tpl.Label, &typ, &nature, &tpl.ParentNumber, &side, &lettrable)
	if err == sql.ErrNoRows {
		return nil, ledger.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get template: %w", err)
	}
	tpl.Type = ledger.AccountType(typ)
	tpl.Nature = ledger.AccountNature(nature)
	tpl.UsualSide = ledger.BalanceSide(side)
	tpl.LettrableByDefault = lettrable == 1
	return &tpl, nil
}

const accountColumns = `SELECT id, client_id, template_id, number, label, type, nature, parent_id, usual_side, lettrable, active, notes, created_at FROM accounts`

type accountScanner interface {
	Scan(dest ...any) error
}

func scanAccountFields(sc accountScanner) (*ledger.Account, error) {
	var a ledger.Account
	var templateID, parentID sql.NullInt64
	var typ, nature, side, createdAt string
	var lettrable, active int
	err := sc.Scan(&a.ID, &a.ClientID, &templateID, &a.Number, &a.Label, &typ, &nature, &parentID, &side, &lettrable, &active, &a.Notes, &createdAt)
	if err != nil {
		return nil, err
	}
	a.TemplateID = templateID.Int64
	a.ParentID = parentID.Int64
	a.Type = ledger.AccountType(typ)
	a.Nature = ledger.AccountNature(nature)
	a.UsualSide = ledger.BalanceSide(side)
	a.Lettrable = lettrable == 1
	a.Active = active == 1
	a.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	return &a, nil
}

func scanAccount(row *sql.Row) (*ledger.Account, error) {
	a, err := scanAccountFields(row)
	if err == sql.ErrNoRows {
		return nil, ledger.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan account: %w", err)
	}
	return a, nil
}

func scanAccountRow(rows *sql.Rows) (*ledger.Account, error) {
	a, err := scanAccountFields(rows)
	if err != nil {
		return nil, fmt.Errorf("scan account row: %w", err)
	}
	return a, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
