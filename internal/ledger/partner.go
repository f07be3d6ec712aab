package ledger

import (
	"strings"
	"time"
)

// PartnerType classifies a business partner ("tiers").
type PartnerType string

const (
	PartnerClient   PartnerType = "client"
	PartnerVendor   PartnerType = "vendor"
	PartnerEmployee PartnerType = "employee"
	PartnerState    PartnerType = "state"
	PartnerSocial   PartnerType = "social"
	PartnerInternal PartnerType = "internal"
	PartnerOther    PartnerType = "other"
)

var AllPartnerTypes = []PartnerType{
	PartnerClient, PartnerVendor, PartnerEmployee,
	PartnerState, PartnerSocial, PartnerInternal, PartnerOther,
}

// Partner is a business partner tracked separately from the general ledger,
// scoped to one client file. Code is uppercased and unique per client.
type Partner struct {
	ID              int64       `json:"id"`
	ClientID        int64       `json:"client_id"`
	Code            string      `json:"code"`
	Type            PartnerType `json:"type"`
	Name            string      `json:"name"`
	FirstName       string      `json:"first_name,omitempty"`
	Address         string      `json:"address,omitempty"`
	City            string      `json:"city,omitempty"`
	Country         string      `json:"country,omitempty"`
	Phone           string      `json:"phone,omitempty"`
	Email           string      `json:"email,omitempty"`
	RCCM            string      `json:"rccm,omitempty"`
	TaxpayerNumber  string      `json:"taxpayer_number,omitempty"`
	LinkedAccountID int64       `json:"linked_account_id,omitempty"`
	Notes           string      `json:"notes,omitempty"`
	Active          bool        `json:"active"`
	CreatedAt       time.Time   `json:"created_at,omitempty"`
	UpdatedAt       time.Time   `json:"updated_at,omitempty"`
}

// Validate normalizes the code and checks local invariants. An employee
// partner must carry a first name, matching how payroll counterparties are
// recorded.
func (p *Partner) Validate() error {
	p.Code = strings.ToUpper(strings.TrimSpace(p.Code))
	if p.Code == "" {
		return ErrEmptyPartnerCode
	}
	if p.Name == "" {
		return ErrEmptyPartnerName
	}
	if p.Type == "" {
		p.Type = PartnerOther
	}
	if !validPartnerType(p.Type) {
		return ErrInvalidPartnerType
	}
	if p.Type == PartnerEmployee && p.FirstName == "" {
		return ErrEmployeeFirstName
	}
	return nil
}

// CheckLinkedAccount enforces the restriction on the default general-ledger
// account: an active detail account that is partner-typed or in class 4.
func (p *Partner) CheckLinkedAccount(acct *Account) error {
	if acct == nil {
		return nil
	}
	if !acct.Postable() {
		return ErrLinkedAccountNotPartner
	}
	if !acct.Type.IsPartnerFamily() && !strings.HasPrefix(acct.Number, "4") {
		return ErrLinkedAccountNotPartner
	}
	return nil
}

func validPartnerType(t PartnerType) bool {
	for _, v := range AllPartnerTypes {
		if v == t {
			return true
		}
	}
	return false
}
