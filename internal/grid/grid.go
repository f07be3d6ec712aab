// Package grid implements the rapid-entry workflow: parse a text grid the way
// an operator typed it, keep a running balance, and commit the whole piece in
// one transaction only when every rule passes.
package grid

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kbrou/syscompta/internal/ledger"
	"github.com/kbrou/syscompta/internal/store"
	"github.com/shopspring/decimal"
)

// Handler holds the context of one grid session: the client file, the journal
// being filled and the working date.
type Handler struct {
	store     *store.Store
	clientID  int64
	journal   *ledger.Journal
	entryDate time.Time
}

func NewHandler(ctx context.Context, st *store.Store, clientID, journalID int64, entryDate time.Time) (*Handler, error) {
	j, err := st.GetJournal(ctx, journalID)
	if err != nil {
		return nil, err
	}
	if j.ClientID != clientID {
		return nil, ledger.ErrJournalNotFound
	}
	return &Handler{store: st, clientID: clientID, journal: j, entryDate: entryDate}, nil
}

func (h *Handler) Journal() *ledger.Journal { return h.journal }

// RowInput is one grid row exactly as typed; every field is free text.
type RowInput struct {
	Day            string `json:"day"`
	Piece          string `json:"piece"`
	Invoice        string `json:"invoice"`
	Reference      string `json:"reference"`
	Account        string `json:"account"`
	Partner        string `json:"partner"`
	Label          string `json:"label"`
	DueDate        string `json:"due_date"`
	Reconciliation string `json:"reconciliation"`
	Debit          string `json:"debit"`
	Credit         string `json:"credit"`
}

func (r *RowInput) empty() bool {
	return r.Day == "" && r.Piece == "" && r.Invoice == "" && r.Reference == "" &&
		r.Account == "" && r.Partner == "" && r.Label == "" && r.DueDate == "" &&
		r.Reconciliation == "" && r.Debit == "" && r.Credit == ""
}

// HeaderInput is the piece header as typed.
type HeaderInput struct {
	Date          string `json:"date"`
	PieceNumber   string `json:"piece_number"`
	Label         string `json:"label"`
	Invoice       string `json:"invoice"`
	Reference     string `json:"reference"`
	Partner       string `json:"partner"`
	DueDate       string `json:"due_date"`
	ControlAmount string `json:"control_amount"`
}

// Result carries the running totals of a processed grid, for display before
// any commit.
type Result struct {
	TotalDebit  decimal.Decimal `json:"total_debit"`
	TotalCredit decimal.Decimal `json:"total_credit"`
	Balance     decimal.Decimal `json:"balance"`
	IsBalanced  bool            `json:"is_balanced"`
	ActiveLines int             `json:"active_lines"`

	drafts   []ledger.LineDraft
	rowIndex []int
}

// ProcessRows parses and validates the submitted rows. It is a pure
// computation over the submission: running totals reflect what the operator
// typed, never database state. All problems are accumulated and returned
// together, one message per violation.
func (h *Handler) ProcessRows(ctx context.Context, rows []RowInput) (*Result, []string) {
	var msgs []string
	res := &Result{}

	for i := range rows {
		r := &rows[i]
		if r.empty() {
			continue
		}

		var d ledger.LineDraft
		var err error

		if d.Day, err = ledger.ParseDay(r.Day); err != nil {
			msgs = append(msgs, fmt.Sprintf("row %d: %v", i+1, err))
		}
		d.PieceNumber = r.Piece
		d.InvoiceNumber = r.Invoice
		d.Reference = r.Reference
		d.Label = strings.TrimSpace(r.Label)
		d.Reconciliation = r.Reconciliation

		if d.Debit, err = ledger.ParseAmount(r.Debit); err != nil {
			msgs = append(msgs, fmt.Sprintf("row %d: %v", i+1, err))
		}
		if d.Credit, err = ledger.ParseAmount(r.Credit); err != nil {
			msgs = append(msgs, fmt.Sprintf("row %d: %v", i+1, err))
		}
		if d.DueDate, err = ledger.ParseFlexibleDate(r.DueDate); err != nil {
			msgs = append(msgs, fmt.Sprintf("row %d: %v", i+1, err))
		}

		if code := strings.TrimSpace(r.Account); code != "" {
			acct, err := h.store.GetAccountByNumber(ctx, h.clientID, code)
			switch {
			case err == ledger.ErrAccountNotFound:
				msgs = append(msgs, fmt.Sprintf("row %d: unknown account %q", i+1, code))
			case err != nil:
				msgs = append(msgs, fmt.Sprintf("row %d: %v", i+1, err))
			default:
				d.Account = acct
			}
		}

		if code := strings.TrimSpace(r.Partner); code != "" {
			p, err := h.store.GetPartnerByCode(ctx, h.clientID, code)
			switch {
			case err == ledger.ErrPartnerNotFound:
				msgs = append(msgs, fmt.Sprintf("row %d: unknown partner %q", i+1, code))
			case err != nil:
				msgs = append(msgs, fmt.Sprintf("row %d: %v", i+1, err))
			default:
				if !p.Active {
					msgs = append(msgs, fmt.Sprintf("row %d: partner %s is inactive", i+1, p.Code))
				} else {
					d.Partner = p
				}
			}
		}

		res.drafts = append(res.drafts, d)
		res.rowIndex = append(res.rowIndex, i)
	}

	totals, errs := ledger.ValidateLines(res.drafts)
	for _, fe := range errs {
		if fe.Line < 0 {
			msgs = append(msgs, fe.Message)
			continue
		}
		row := res.rowIndex[fe.Line] + 1
		if fe.Field != "" {
			msgs = append(msgs, fmt.Sprintf("row %d [%s]: %s", row, fe.Field, fe.Message))
		} else {
			msgs = append(msgs, fmt.Sprintf("row %d: %s", row, fe.Message))
		}
	}

	res.TotalDebit = totals.TotalDebit
	res.TotalCredit = totals.TotalCredit
	res.Balance = totals.Balance
	res.IsBalanced = totals.IsBalanced
	res.ActiveLines = totals.ActiveLines
	return res, msgs
}

// Save runs the two-phase commit: the grid is fully validated in memory, and
// only a clean result opens the store transaction. Any persistence failure
// reports as a single message with nothing written.
func (h *Handler) Save(ctx context.Context, header HeaderInput, rows []RowInput) (*ledger.JournalEntry, []string) {
	var msgs []string

	date := h.entryDate
	if header.Date != "" {
		parsed, err := ledger.ParseFlexibleDate(header.Date)
		if err != nil {
			msgs = append(msgs, fmt.Sprintf("header: %v", err))
		} else {
			date = *parsed
		}
	}

	label := strings.TrimSpace(header.Label)
	if label == "" {
		label = h.journal.DefaultEntryLabel()
	}
	if label == "" {
		msgs = append(msgs, "header: a label is required")
	}

	var headerPartner *ledger.Partner
	if code := strings.TrimSpace(header.Partner); code != "" {
		p, err := h.store.GetPartnerByCode(ctx, h.clientID, code)
		if err != nil {
			msgs = append(msgs, fmt.Sprintf("header: unknown partner %q", code))
		} else {
			headerPartner = p
		}
	}

	var dueDate *time.Time
	if header.DueDate != "" {
		parsed, err := ledger.ParseFlexibleDate(header.DueDate)
		if err != nil {
			msgs = append(msgs, fmt.Sprintf("header: %v", err))
		} else {
			dueDate = parsed
		}
	}

	var control *decimal.Decimal
	if header.ControlAmount != "" {
		d, err := ledger.ParseAmount(header.ControlAmount)
		if err != nil {
			msgs = append(msgs, fmt.Sprintf("header: %v", err))
		} else {
			control = &d
		}
	}

	res, rowMsgs := h.ProcessRows(ctx, rows)
	msgs = append(msgs, rowMsgs...)
	if len(msgs) > 0 {
		return nil, msgs
	}

	entry := &ledger.JournalEntry{
		ClientID:      h.clientID,
		JournalID:     h.journal.ID,
		Date:          date,
		PieceNumber:   strings.TrimSpace(header.PieceNumber),
		Label:         label,
		InvoiceNumber: strings.TrimSpace(header.Invoice),
		Reference:     strings.TrimSpace(header.Reference),
		DueDate:       dueDate,
		ControlAmount: control,
	}
	if headerPartner != nil {
		entry.PartnerID = headerPartner.ID
	}

	for i := range res.drafts {
		d := &res.drafts[i]
		if !d.Active() {
			continue
		}
		line := ledger.EntryLine{
			AccountID:      d.Account.ID,
			Label:          d.Label,
			DueDate:        d.DueDate,
			Reconciliation: d.Reconciliation,
			Day:            d.Day,
			PieceNumber:    d.PieceNumber,
			InvoiceNumber:  d.InvoiceNumber,
			Reference:      d.Reference,
			Debit:          d.Debit,
			Credit:         d.Credit,
		}
		if d.Partner != nil {
			line.PartnerID = d.Partner.ID
		}
		entry.Lines = append(entry.Lines, line)
	}

	if err := h.store.CreateEntry(ctx, entry); err != nil {
		return nil, []string{err.Error()}
	}
	return entry, nil
}

// SuggestPieceNumber proposes the next piece number from the highest piece of
// the journal this year: the digits are concatenated, incremented and
// re-padded to 4 places, keeping the non-digit characters as prefix. A
// journal without a usable prior piece falls back to {CODE}{yy}0001.
func (h *Handler) SuggestPieceNumber(ctx context.Context, year int) (string, error) {
	last, err := h.store.LastPieceNumber(ctx, h.clientID, h.journal.ID, year)
	if err != nil {
		return "", err
	}

	fallback := fmt.Sprintf("%s%02d0001", h.journal.Code, year%100)
	if last == "" {
		return fallback, nil
	}

	var prefix, digits strings.Builder
	for _, r := range last {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		} else {
			prefix.WriteRune(r)
		}
	}
	n, err := strconv.ParseInt(digits.String(), 10, 64)
	if err != nil {
		return fallback, nil
	}
	return fmt.Sprintf("%s%04d", prefix.String(), n+1), nil
}

// Prefill loads an existing piece back into grid shape: formatted amounts,
// day-first dates, account and partner codes resolved from the stored ids.
func (h *Handler) Prefill(ctx context.Context, piece string) (*HeaderInput, []RowInput, error) {
	e, err := h.store.GetEntryByPiece(ctx, h.clientID, h.journal.ID, piece)
	if err != nil {
		return nil, nil, err
	}
	return h.entryToGrid(ctx, e)
}

// Adjacent navigates to the previous or next piece of the journal, returned
// in grid shape.
func (h *Handler) Adjacent(ctx context.Context, piece string, dir store.Direction) (*HeaderInput, []RowInput, error) {
	e, err := h.store.AdjacentPiece(ctx, h.clientID, h.journal.ID, piece, dir)
	if err != nil {
		return nil, nil, err
	}
	return h.entryToGrid(ctx, e)
}

// SearchAccounts delegates to the store with this journal's posting profile.
func (h *Handler) SearchAccounts(ctx context.Context, q string, limit int) ([]ledger.Account, error) {
	return h.store.SearchAccounts(ctx, h.clientID, q, h.journal.Type, limit)
}

// SearchPartners delegates to the store with this journal's partner family.
func (h *Handler) SearchPartners(ctx context.Context, q string, limit int) ([]ledger.Partner, error) {
	return h.store.SearchPartners(ctx, h.clientID, q, h.journal.Type, limit)
}

const gridDateLayout = "02/01/2006"

func (h *Handler) entryToGrid(ctx context.Context, e *ledger.JournalEntry) (*HeaderInput, []RowInput, error) {
	header := &HeaderInput{
		Date:        e.Date.Format(gridDateLayout),
		PieceNumber: e.PieceNumber,
		Label:       e.Label,
		Invoice:     e.InvoiceNumber,
		Reference:   e.Reference,
	}
	if e.DueDate != nil {
		header.DueDate = e.DueDate.Format(gridDateLayout)
	}
	if e.ControlAmount != nil {
		header.ControlAmount = ledger.FormatAmount(*e.ControlAmount)
	}
	if e.PartnerID != 0 {
		p, err := h.store.GetPartner(ctx, e.PartnerID)
		if err != nil {
			return nil, nil, err
		}
		header.Partner = p.Code
	}

	rows := make([]RowInput, 0, len(e.Lines))
	for i := range e.Lines {
		l := &e.Lines[i]
		row := RowInput{
			Piece:          l.PieceNumber,
			Invoice:        l.InvoiceNumber,
			Reference:      l.Reference,
			Label:          l.Label,
			Reconciliation: l.Reconciliation,
		}
		if l.Day != 0 {
			row.Day = strconv.Itoa(l.Day)
		}
		if l.DueDate != nil {
			row.DueDate = l.DueDate.Format(gridDateLayout)
		}
		if !l.Debit.IsZero() {
			row.Debit = ledger.FormatAmount(l.Debit)
		}
		if !l.Credit.IsZero() {
			row.Credit = ledger.FormatAmount(l.Credit)
		}

		acct, err := h.store.GetAccount(ctx, l.AccountID)
		if err != nil {
			return nil, nil, err
		}
		row.Account = acct.Number

		if l.PartnerID != 0 {
			p, err := h.store.GetPartner(ctx, l.PartnerID)
			if err != nil {
				return nil, nil, err
			}
			row.Partner = p.Code
		}

		rows = append(rows, row)
	}
	return header, rows, nil
}
