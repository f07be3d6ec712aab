package ledger

import (
	"strings"
	"time"
)

// ClientStatus is the lifecycle state of a client file.
type ClientStatus string

const (
	ClientActive   ClientStatus = "active"
	ClientInactive ClientStatus = "inactive"
	ClientArchived ClientStatus = "archived"
	ClientProspect ClientStatus = "prospect"
)

// Client is one SME bookkeeping file. Every account, journal, partner, tax
// rate and entry belongs to exactly one client file.
type Client struct {
	ID             int64        `json:"id"`
	Name           string       `json:"name"`
	RCCM           string       `json:"rccm,omitempty"`
	TaxpayerNumber string       `json:"taxpayer_number,omitempty"`
	LegalForm      string       `json:"legal_form,omitempty"`
	ActivitySector string       `json:"activity_sector,omitempty"`
	FiscalRegime   string       `json:"fiscal_regime,omitempty"`
	Status         ClientStatus `json:"status"`
	Notes          string       `json:"notes,omitempty"`
	CreatedAt      time.Time    `json:"created_at,omitempty"`
}

// Validate checks local invariants.
func (c *Client) Validate() error {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return ErrEmptyClientName
	}
	if c.Status == "" {
		c.Status = ClientActive
	}
	return nil
}
