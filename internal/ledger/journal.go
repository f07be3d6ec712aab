package ledger

import "strings"

// JournalType names the standard ledgers of a SYSCOHADA bookkeeping file.
type JournalType string

const (
	JournalPurchases JournalType = "purchases"
	JournalSales     JournalType = "sales"
	JournalBank      JournalType = "bank"
	JournalCash      JournalType = "cash"
	JournalMisc      JournalType = "misc"
	JournalOpening   JournalType = "opening"
)

var AllJournalTypes = []JournalType{
	JournalPurchases, JournalSales, JournalBank,
	JournalCash, JournalMisc, JournalOpening,
}

// Journal is a named ledger scoped to one client file. Code is uppercased
// and unique per client.
type Journal struct {
	ID                   int64       `json:"id"`
	ClientID             int64       `json:"client_id"`
	Code                 string      `json:"code"`
	Label                string      `json:"label"`
	Type                 JournalType `json:"type"`
	CounterpartAccountID int64       `json:"counterpart_account_id,omitempty"`
	Active               bool        `json:"active"`
}

// DefaultEntryLabel is the label pre-filled on new pieces for this journal.
func (j *Journal) DefaultEntryLabel() string {
	switch j.Type {
	case JournalPurchases:
		return "Facture Achat"
	case JournalSales:
		return "Facture Vente"
	}
	return ""
}

// Validate normalizes the code and checks local invariants.
func (j *Journal) Validate() error {
	j.Code = strings.ToUpper(strings.TrimSpace(j.Code))
	if j.Code == "" {
		return ErrEmptyJournalCode
	}
	if j.Label == "" {
		return ErrEmptyJournalLabel
	}
	if !validJournalType(j.Type) {
		return ErrInvalidJournalType
	}
	return nil
}

// CheckCounterpart enforces the restriction on the default counterpart
// account: a treasury-typed or class-5 detail account.
func (j *Journal) CheckCounterpart(acct *Account) error {
	if acct == nil {
		return nil
	}
	if acct.Nature != NatureDetail || !acct.Active {
		return ErrCounterpartNotTreasury
	}
	if !acct.Type.IsTreasury() && !strings.HasPrefix(acct.Number, "5") {
		return ErrCounterpartNotTreasury
	}
	return nil
}

func validJournalType(t JournalType) bool {
	for _, v := range AllJournalTypes {
		if v == t {
			return true
		}
	}
	return false
}
