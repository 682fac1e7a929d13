package domain

import (
	"bytes"
	"time"
)

// LeadStatus values used by the sales views.
const (
	LeadNew           = "new"
	LeadContacted     = "contacted"
	LeadConverted     = "converted"
	LeadNotInterested = "not_interested"
)

// Lead is a sales prospect ingested from CSV or forms.
type Lead struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone"`
	City       string    `json:"city"`
	Source     string    `json:"source"`
	Status     string    `json:"status"`
	AssignedTo *int64    `json:"assigned_to"`
	CreatedAt  time.Time `json:"created_at"`
}

// FollowUp is a scheduled contact with a lead.
type FollowUp struct {
	ID                int64  `json:"id"`
	Lead              int64  `json:"lead"`
	ScheduledDate     string `json:"scheduled_date"`
	Notes             string `json:"notes"`
	CreatedByUsername string `json:"created_by_username,omitempty"`
}

// AccountOpening records a converted lead's first deposit.
type AccountOpening struct {
	ID            int64   `json:"id"`
	Lead          int64   `json:"lead"`
	DepositAmount Amount  `json:"deposit_amount"`
	Notes         string  `json:"notes"`
}

// UploadResult is the backend's summary of a bulk lead import.
type UploadResult struct {
	Created int   `json:"created"`
	Skipped int   `json:"skipped"`
	Errors  []any `json:"errors"`
}

// Amount is a decimal the backend may render either as a JSON number or as a
// quoted string ("100.00"). It is kept verbatim.
type Amount string

func (a Amount) MarshalJSON() ([]byte, error) {
	if a == "" {
		return []byte("0"), nil
	}
	return []byte(a), nil
}

func (a *Amount) UnmarshalJSON(b []byte) error {
	b = bytes.Trim(bytes.TrimSpace(b), `"`)
	if string(b) == "null" {
		*a = ""
		return nil
	}
	*a = Amount(b)
	return nil
}

// IndicatorProof is the file evidence attached to a lead.
type IndicatorProof struct {
	ID    int64  `json:"id"`
	Lead  int64  `json:"lead"`
	File  string `json:"file"`
	Notes string `json:"notes"`
}
