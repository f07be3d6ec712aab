package ledger

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmptyAccountNumber = errors.New("account number is required")
	ErrEmptyAccountLabel  = errors.New("account label is required")
	ErrInvalidNature      = errors.New("invalid account nature")
	ErrInvalidAccountType = errors.New("invalid account type")
	ErrDetailParent       = errors.New("a detail account cannot be a parent")
	ErrNumberPrefix       = errors.New("account number must start with its parent number")

	ErrClientNotFound  = errors.New("client file not found")
	ErrAccountNotFound = errors.New("account not found")
	ErrJournalNotFound = errors.New("journal not found")
	ErrPartnerNotFound = errors.New("partner not found")
	ErrTaxRateNotFound = errors.New("tax rate not found")
	ErrEntryNotFound   = errors.New("entry not found")
	ErrPieceNotFound   = errors.New("no adjacent piece")

	ErrDuplicateNumber = errors.New("account number already used in this client file")
	ErrDuplicateCode   = errors.New("code already used in this client file")

	ErrReferencedAccount    = errors.New("account has posted lines")
	ErrReferencedJournal    = errors.New("journal is referenced by entries")
	ErrReferencedPartner    = errors.New("partner is referenced by entries")
	ErrReferencedTaxAccount = errors.New("tax account is referenced")

	ErrMalformedAmount = errors.New("unparsable amount")
	ErrMalformedDate   = errors.New("unparsable date")
	ErrInvalidDay      = errors.New("day must be between 1 and 31")

	ErrEmptyClientName    = errors.New("client file name is required")
	ErrEmptyJournalCode   = errors.New("journal code is required")
	ErrEmptyJournalLabel  = errors.New("journal label is required")
	ErrInvalidJournalType = errors.New("invalid journal type")
	ErrEmptyPartnerCode   = errors.New("partner code is required")
	ErrEmptyPartnerName   = errors.New("partner name is required")
	ErrInvalidPartnerType = errors.New("invalid partner type")
	ErrEmployeeFirstName  = errors.New("first name is required for employee partners")
	ErrEmptyTaxCode       = errors.New("tax code is required")
	ErrEmptyTaxLabel      = errors.New("tax label is required")
	ErrInvalidTaxType     = errors.New("invalid tax type")

	ErrNegativeRate            = errors.New("tax rate cannot be negative")
	ErrCounterpartNotTreasury  = errors.New("default counterpart must be a treasury or class-5 account")
	ErrLinkedAccountNotPartner = errors.New("linked account must be an active detail partner account")
	ErrTaxAccountClass         = errors.New("tax account must be an active detail class-4 account")
)

// FieldError is one rule violation, scoped to a line (0-based index, -1 for
// entry-level errors) and optionally to a field.
type FieldError struct {
	Line    int    `json:"line"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	if e.Line < 0 {
		return e.Message
	}
	if e.Field == "" {
		return fmt.Sprintf("line %d: %s", e.Line+1, e.Message)
	}
	return fmt.Sprintf("line %d [%s]: %s", e.Line+1, e.Field, e.Message)
}

// ValidationErrors accumulates every violation found in one submission so the
// caller sees the complete correction list in one round trip.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, e := range v {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "; ")
}

// Add appends a violation.
func (v *ValidationErrors) Add(line int, field, message string) {
	*v = append(*v, FieldError{Line: line, Field: field, Message: message})
}

// OrNil returns the slice as an error, or nil when empty.
func (v ValidationErrors) OrNil() error {
	if len(v) == 0 {
		return nil
	}
	return v
}
