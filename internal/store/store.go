package store

import (
	"context"
	"database/sql"
	"fmt"
	"runtime"
	"time"

	"github.com/kbrou/syscompta/internal/ledger"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

// AccountFilter narrows ListAccounts. PostableOnly keeps active detail
// accounts only; Search matches number prefix or label substring.
type AccountFilter struct {
	Nature       ledger.AccountNature
	Type         ledger.AccountType
	Active       *bool
	PostableOnly bool
	Search       string
	Limit        int
	Offset       int
}

// EntryFilter narrows ListEntries within one client file.
type EntryFilter struct {
	JournalID int64
	PartnerID int64
	DateFrom  *time.Time
	DateTo    *time.Time
	// Search matches piece number, label or invoice number.
	Search string
	// Amount keeps entries having at least one line with this exact amount.
	Amount *decimal.Decimal
	Limit  int
	Offset int
}

type PartnerFilter struct {
	Type   ledger.PartnerType
	Active *bool
	Search string
	Limit  int
	Offset int
}

type Store struct {
	writer *sql.DB
	reader *sql.DB
}

// Open opens the SQLite file and runs pending migrations. The writer pool is
// held to a single connection so writes serialize; reads fan out.
func Open(dbPath string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)", dbPath)

	writer, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open writer: %w", err)
	}
	writer.SetMaxOpenConns(1)

	reader, err := sql.Open("sqlite", dsn)
	if err != nil {
		writer.Close()
		return nil, fmt.Errorf("open reader: %w", err)
	}
	reader.SetMaxOpenConns(runtime.NumCPU())

	s := &Store{writer: writer, reader: reader}

	if err := s.migrate(context.Background()); err != nil {
		s.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *Store) Close() error {
	err1 := s.writer.Close()
	err2 := s.reader.Close()
	if err1 != nil {
		return err1
	}
	return err2
}
