package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/kbrou/syscompta/internal/ledger"
)

func (s *Store) CreatePartner(ctx context.Context, p *ledger.Partner) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if err := s.checkPartnerCodeUnique(ctx, p.ClientID, p.Code, 0); err != nil {
		return err
	}
	if err := s.checkLinkedAccount(ctx, p); err != nil {
		return err
	}

	var linked any
	if p.LinkedAccountID != 0 {
		linked = p.LinkedAccountID
	}
	res, err := s.writer.ExecContext(ctx,
		`INSERT INTO partners (client_id, code, type, name, first_name, address, city, country, phone, email, rccm, taxpayer_number, linked_account_id, notes, active)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ClientID, p.Code, string(p.Type), p.Name, p.FirstName, p.Address, p.City, p.Country,
		p.Phone, p.Email, p.RCCM, p.TaxpayerNumber, linked, p.Notes, boolToInt(p.Active),
	)
	if err != nil {
		return fmt.Errorf("insert partner: %w", err)
	}
	p.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert partner: %w", err)
	}
	return nil
}

func (s *Store) UpdatePartner(ctx context.Context, p *ledger.Partner) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if err := s.checkPartnerCodeUnique(ctx, p.ClientID, p.Code, p.ID); err != nil {
		return err
	}
	if err := s.checkLinkedAccount(ctx, p); err != nil {
		return err
	}

	var linked any
	if p.LinkedAccountID != 0 {
		linked = p.LinkedAccountID
	}
	res, err := s.writer.ExecContext(ctx,
		`UPDATE partners SET code = ?, type = ?, name = ?, first_name = ?, address = ?, city = ?, country = ?, phone = ?, email = ?, rccm = ?, taxpayer_number = ?, linked_account_id = ?, notes = ?, active = ?, updated_at = strftime('%Y-%m-%dT%H:%M:%fZ','now')
		 WHERE id = ? AND client_id = ?`,
		p.Code, string(p.Type), p.Name, p.FirstName, p.Address, p.City, p.Country, p.Phone, p.Email,
		p.RCCM, p.TaxpayerNumber, linked, p.Notes, boolToInt(p.Active), p.ID, p.ClientID,
	)
	if err != nil {
		return fmt.Errorf("update partner: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update partner: %w", err)
	}
	if n == 0 {
		return ledger.ErrPartnerNotFound
	}
	return nil
}

// DeletePartner removes a partner no entry or line references. A referenced
// partner must be deactivated instead.
func (s *Store) DeletePartner(ctx context.Context, id int64) error {
	if _, err := s.GetPartner(ctx, id); err != nil {
		return err
	}
	var count int
	err := s.reader.QueryRowContext(ctx,
		`SELECT (SELECT COUNT(*) FROM entries WHERE partner_id = ?) + (SELECT COUNT(*) FROM entry_lines WHERE partner_id = ?)`,
		id, id).Scan(&count)
	if err != nil {
		return fmt.Errorf("check references: %w", err)
	}
	if count > 0 {
		return ledger.ErrReferencedPartner
	}
	if _, err := s.writer.ExecContext(ctx, `DELETE FROM partners WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete partner: %w", err)
	}
	return nil
}

func (s *Store) GetPartner(ctx context.Context, id int64) (*ledger.Partner, error) {
	row := s.reader.QueryRowContext(ctx, partnerColumns+` WHERE id = ?`, id)
	return scanPartner(row)
}

// GetPartnerByCode resolves a partner by its code, case-insensitively; the
// grid lets operators type codes in any case.
func (s *Store) GetPartnerByCode(ctx context.Context, clientID int64, code string) (*ledger.Partner, error) {
	row := s.reader.QueryRowContext(ctx,
		partnerColumns+` WHERE client_id = ? AND code = UPPER(?) COLLATE NOCASE`, clientID, code)
	return scanPartner(row)
}

func (s *Store) ListPartners(ctx context.Context, clientID int64, filter PartnerFilter) ([]ledger.Partner, error) {
	query := partnerColumns + ` WHERE client_id = ?`
	args := []any{clientID}

	if filter.Type != "" {
		query += ` AND type = ?`
		args = append(args, string(filter.Type))
	}
	if filter.Active != nil {
		query += ` AND active = ?`
		args = append(args, boolToInt(*filter.Active))
	}
	if filter.Search != "" {
		query += ` AND (code LIKE ? OR name LIKE ?)`
		args = append(args, filter.Search+"%", "%"+filter.Search+"%")
	}

	query += ` ORDER BY code`

	if filter.Limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, filter.Limit)
		if filter.Offset > 0 {
			query += fmt.Sprintf(` OFFSET %d`, filter.Offset)
		}
	}

	rows, err := s.reader.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list partners: %w", err)
	}
	defer rows.Close()

	var partners []ledger.Partner
	for rows.Next() {
		p, err := scanPartnerRow(rows)
		if err != nil {
			return nil, err
		}
		partners = append(partners, *p)
	}
	return partners, rows.Err()
}

// SearchPartners finds active partners for rapid entry, narrowed to the
// partner family a journal type usually posts against.
func (s *Store) SearchPartners(ctx context.Context, clientID int64, q string, journalType ledger.JournalType, limit int) ([]ledger.Partner, error) {
	query := partnerColumns + ` WHERE client_id = ? AND active = 1`
	args := []any{clientID}

	if q != "" {
		query += ` AND (code LIKE ? OR name LIKE ?)`
		args = append(args, q+"%", "%"+q+"%")
	}

	switch journalType {
	case ledger.JournalPurchases:
		query += ` AND type = 'vendor'`
	case ledger.JournalSales:
		query += ` AND type = 'client'`
	}

	if limit <= 0 || limit > 50 {
		limit = 20
	}
	query += fmt.Sprintf(` ORDER BY code LIMIT %d`, limit)

	rows, err := s.reader.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search partners: %w", err)
	}
	defer rows.Close()

	var partners []ledger.Partner
	for rows.Next() {
		p, err := scanPartnerRow(rows)
		if err != nil {
			return nil, err
		}
		partners = append(partners, *p)
	}
	return partners, rows.Err()
}

func (s *Store) checkPartnerCodeUnique(ctx context.Context, clientID int64, code string, selfID int64) error {
	var count int
	err := s.reader.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM partners WHERE client_id = ? AND code = ? AND id != ?`,
		clientID, code, selfID).Scan(&count)
	if err != nil {
		return fmt.Errorf("check code: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("%w: %s", ledger.ErrDuplicateCode, code)
	}
	return nil
}

func (s *Store) checkLinkedAccount(ctx context.Context, p *ledger.Partner) error {
	if p.LinkedAccountID == 0 {
		return nil
	}
	acct, err := s.getScopedAccount(ctx, p.ClientID, p.LinkedAccountID)
	if err != nil {
		return err
	}
	return p.CheckLinkedAccount(acct)
}

const partnerColumns = `SELECT id, client_id, code, type, name, first_name, address, city, country, phone, email, rccm, taxpayer_number, linked_account_id, notes, active, created_at, updated_at FROM partners`

func scanPartnerFields(sc accountScanner) (*ledger.Partner, error) {
	var p ledger.Partner
	var typ, createdAt, updatedAt string
	var linked sql.NullInt64
	var active int
	err := sc.Scan(&p.ID, &p.ClientID, &p.Code, &typ, &p.Name, &p.FirstName, &p.Address, &p.City, &p.Country,
		&p.Phone, &p.Email, &p.RCCM, &p.TaxpayerNumber, &linked, &p.Notes, &active, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	p.Type = ledger.PartnerType(typ)
	p.LinkedAccountID = linked.Int64
	p.Active = active == 1
	p.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	p.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
	return &p, nil
}

func scanPartner(row *sql.Row) (*ledger.Partner, error) {
	p, err := scanPartnerFields(row)
	if err == sql.ErrNoRows {
		return nil, ledger.ErrPartnerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan partner: %w", err)
	}
	return p, nil
}

func scanPartnerRow(rows *sql.Rows) (*ledger.Partner, error) {
	p, err := scanPartnerFields(rows)
	if err != nil {
		return nil, fmt.Errorf("scan partner row: %w", err)
	}
	return p, nil
}
