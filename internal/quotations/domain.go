package quotations

import (
	"errors"
	"fmt"
	"time"
)

// Status enumerates quotation lifecycle states.
type Status string

const (
	StatusPending   Status = "Pending"
	StatusConverted Status = "Converted"
	StatusRejected  Status = "Rejected"
)

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("quotations: not found")
	// ErrInvalidTransition indicates a disallowed status change.
	ErrInvalidTransition = errors.New("quotations: invalid status transition")
	// ErrMissingItemReference indicates a line without an item id.
	ErrMissingItemReference = errors.New("quotations: line missing item reference")
)

// DuplicateNumberError reports an already-used quotation number.
type DuplicateNumberError struct {
	Number     string
	ExistingID int64
}

func (e *DuplicateNumberError) Error() string {
	return fmt.Sprintf("quotations: number %s already exists (id %d)", e.Number, e.ExistingID)
}

// Quotation is a quotation header. Unlike invoices, quotations support
// hard delete with cascade over their lines.
type Quotation struct {
	ID          int64     `json:"id"`
	Number      string    `json:"number"`
	PartyID     int64     `json:"party_id"`
	PartyName   string    `json:"party_name,omitempty"`
	Date        time.Time `json:"date"`
	Subtotal    float64   `json:"subtotal"`
	CGSTRate    float64   `json:"cgst_rate"`
	CGSTAmount  float64   `json:"cgst_amount"`
	SGSTRate    float64   `json:"sgst_rate"`
	SGSTAmount  float64   `json:"sgst_amount"`
	RoundOff    float64   `json:"round_off"`
	TotalAmount float64   `json:"total_amount"`
	Terms       string    `json:"terms"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	Lines       []Line    `json:"lines,omitempty"`
}

// Line is one quotation line. The rate and amount are snapshots taken
// at quotation time, unlike invoice lines which carry quantity only.
type Line struct {
	ID          int64   `json:"id"`
	QuotationID int64   `json:"quotation_id"`
	ItemID      int64   `json:"item_id"`
	Quantity    float64 `json:"quantity"`
	Rate        float64 `json:"rate"`
	Amount      float64 `json:"amount"`
}

// LineInput is one line of a create or update request.
type LineInput struct {
	ItemID   int64
	Quantity float64
	Rate     float64
}

// CreateInput carries a quotation to persist.
type CreateInput struct {
	PartyID  int64
	Date     time.Time
	Subtotal float64
	CGSTRate float64
	SGSTRate float64
	Terms    string
	Lines    []LineInput
}
