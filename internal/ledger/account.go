package ledger

import (
	"fmt"
	"strings"
	"time"
)

// AccountType classifies an account within the SYSCOHADA chart.
type AccountType string

const (
	TypeAsset             AccountType = "asset"
	TypeLiability         AccountType = "liability"
	TypeExpense           AccountType = "expense"
	TypeRevenue           AccountType = "revenue"
	TypePartnerClient     AccountType = "partner_client"
	TypePartnerVendor     AccountType = "partner_vendor"
	TypePartnerEmployee   AccountType = "partner_employee"
	TypePartnerState      AccountType = "partner_state"
	TypePartnerAssociate  AccountType = "partner_associate"
	TypeTreasuryAsset     AccountType = "treasury_asset"
	TypeTreasuryLiability AccountType = "treasury_liability"
	TypeOther             AccountType = "other"
)

var AllAccountTypes = []AccountType{
	TypeAsset, TypeLiability, TypeExpense, TypeRevenue,
	TypePartnerClient, TypePartnerVendor, TypePartnerEmployee,
	TypePartnerState, TypePartnerAssociate,
	TypeTreasuryAsset, TypeTreasuryLiability, TypeOther,
}

// RequiresPartner reports whether lines posted to an account of this type
// must carry a partner reference.
func (t AccountType) RequiresPartner() bool {
	switch t {
	case TypePartnerClient, TypePartnerVendor, TypePartnerEmployee:
		return true
	}
	return false
}

// IsTreasury reports whether the type belongs to the treasury family.
func (t AccountType) IsTreasury() bool {
	return t == TypeTreasuryAsset || t == TypeTreasuryLiability
}

// IsPartnerFamily reports whether the type is any of the partner types,
// including state and associate accounts.
func (t AccountType) IsPartnerFamily() bool {
	switch t {
	case TypePartnerClient, TypePartnerVendor, TypePartnerEmployee,
		TypePartnerState, TypePartnerAssociate:
		return true
	}
	return false
}

// AccountNature gates which accounts may receive postings: only detail
// accounts appear on entry lines; collective and centralizing accounts
// structure the chart.
type AccountNature string

const (
	NatureCollective   AccountNature = "collective"
	NatureCentralizing AccountNature = "centralizing"
	NatureDetail       AccountNature = "detail"
)

var AllAccountNatures = []AccountNature{NatureCollective, NatureCentralizing, NatureDetail}

// BalanceSide is the usual side an account's balance sits on.
type BalanceSide string

const (
	SideDebit  BalanceSide = "debit"
	SideCredit BalanceSide = "credit"
)

// AccountTemplate is one row of the default SYSCOHADA chart of accounts.
// ParentNumber references another template by account number; templates are
// linked by number, never by row id, so insertion order carries no meaning.
type AccountTemplate struct {
	ID                 int64         `json:"id,omitempty"`
	Number             string        `json:"number"`
	Label              string        `json:"label"`
	Type               AccountType   `json:"type,omitempty"`
	Nature             AccountNature `json:"nature"`
	ParentNumber       string        `json:"parent_number,omitempty"`
	UsualSide          BalanceSide   `json:"usual_side,omitempty"`
	LettrableByDefault bool          `json:"lettrable_by_default"`
}

// Account is a client-scoped chart-of-accounts row, cloned from a template
// at bootstrap time or created by hand afterwards.
type Account struct {
	ID         int64         `json:"id"`
	ClientID   int64         `json:"client_id"`
	TemplateID int64         `json:"template_id,omitempty"`
	Number     string        `json:"number"`
	Label      string        `json:"label"`
	Type       AccountType   `json:"type,omitempty"`
	Nature     AccountNature `json:"nature"`
	ParentID   int64         `json:"parent_id,omitempty"`
	UsualSide  BalanceSide   `json:"usual_side,omitempty"`
	Lettrable  bool          `json:"lettrable"`
	Active     bool          `json:"active"`
	Notes      string        `json:"notes,omitempty"`
	CreatedAt  time.Time     `json:"created_at,omitempty"`
}

// Postable reports whether entry lines may reference this account.
func (a *Account) Postable() bool {
	return a.Active && a.Nature == NatureDetail
}

// Validate checks account invariants that do not need database access.
func (a *Account) Validate() error {
	a.Number = strings.TrimSpace(a.Number)
	if a.Number == "" {
		return ErrEmptyAccountNumber
	}
	if a.Label == "" {
		return ErrEmptyAccountLabel
	}
	if a.Nature == "" {
		a.Nature = NatureDetail
	}
	if !validNature(a.Nature) {
		return fmt.Errorf("%w: %q", ErrInvalidNature, a.Nature)
	}
	if a.Type != "" && !validAccountType(a.Type) {
		return fmt.Errorf("%w: %q", ErrInvalidAccountType, a.Type)
	}
	return nil
}

// CheckParent enforces the hierarchy rules against a resolved parent:
// a detail account cannot be a parent, and the child's number must extend
// the parent's number as a string prefix.
func (a *Account) CheckParent(parent *Account) error {
	if parent == nil {
		return nil
	}
	if parent.Nature == NatureDetail {
		return ErrDetailParent
	}
	if !strings.HasPrefix(a.Number, parent.Number) {
		return fmt.Errorf("%w: %s does not start with %s", ErrNumberPrefix, a.Number, parent.Number)
	}
	return nil
}

// ApplyTemplateDefaults fills unset fields from a reference template.
// Called on creation only; edits never re-pull template values.
func (a *Account) ApplyTemplateDefaults(tpl *AccountTemplate) {
	if tpl == nil {
		return
	}
	if a.Label == "" {
		a.Label = tpl.Label
	}
	if a.Type == "" {
		a.Type = tpl.Type
	}
	if a.Nature == "" {
		a.Nature = tpl.Nature
	}
	if a.UsualSide == "" {
		a.UsualSide = tpl.UsualSide
	}
}

func validNature(n AccountNature) bool {
	for _, v := range AllAccountNatures {
		if v == n {
			return true
		}
	}
	return false
}

func validAccountType(t AccountType) bool {
	for _, v := range AllAccountTypes {
		if v == t {
			return true
		}
	}
	return false
}
