package invoices

import (
	"errors"
	"fmt"
	"time"
)

// TransactionType enumerates the document row families.
type TransactionType string

const (
	TypeSale     TransactionType = "SALE"
	TypePurchase TransactionType = "PURCHASE"
)

// Status enumerates document lifecycle states. Cancellation is a soft
// state: rows are kept for audit and their numbers are never reused.
type Status string

const (
	StatusActive    Status = "active"
	StatusCancelled Status = "cancelled"
)

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("invoices: not found")
	// ErrMissingItemReference indicates a line item without an item id.
	ErrMissingItemReference = errors.New("invoices: line item missing item reference")
)

// DuplicateNumberError reports an already-used document number along
// with the existing row's id, so callers can treat a resubmission as
// idempotent success rather than a hard failure.
type DuplicateNumberError struct {
	Number     string
	ExistingID int64
}

func (e *DuplicateNumberError) Error() string {
	return fmt.Sprintf("invoices: number %s already exists (id %d)", e.Number, e.ExistingID)
}

// Invoice is a SALE or PURCHASE header row in the transactions table.
type Invoice struct {
	ID            int64           `json:"id"`
	Number        string          `json:"number"`
	Type          TransactionType `json:"type"`
	PartyID       int64           `json:"party_id"`
	PartyName     string          `json:"party_name,omitempty"`
	Date          time.Time       `json:"date"`
	TaxableAmount float64         `json:"taxable_amount"`
	CGSTRate      float64         `json:"cgst_rate"`
	CGSTAmount    float64         `json:"cgst_amount"`
	SGSTRate      float64         `json:"sgst_rate"`
	SGSTAmount    float64         `json:"sgst_amount"`
	IGSTAmount    float64         `json:"igst_amount"`
	RoundOff      float64         `json:"round_off"`
	TotalAmount   float64         `json:"total_amount"`
	DebitAmount   float64         `json:"debit_amount"`
	CreditAmount  float64         `json:"credit_amount"`
	Terms         string          `json:"terms"`
	Status        Status          `json:"status"`
	CancelledAt   *time.Time      `json:"cancelled_at,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Detail is the 1:1 shipment/logistics/bank companion of an invoice,
// correlated by the document number string, never the numeric id. The
// ledger queries join on the same string; this keeps the stored layout
// compatible with existing data.
type Detail struct {
	InvoiceNo     string `json:"invoice_no"`
	TransportName string `json:"transport_name"`
	VehicleNo     string `json:"vehicle_no"`
	LRNo          string `json:"lr_no"`
	EwayBillNo    string `json:"eway_bill_no"`
	PlaceOfSupply string `json:"place_of_supply"`
	BankName      string `json:"bank_name"`
	AccountNo     string `json:"account_no"`
	IFSCCode      string `json:"ifsc_code"`
}

// Item is one invoice line. Only the quantity is captured; the rate is
// looked up live from the item master at report time.
type Item struct {
	ID        int64   `json:"id"`
	InvoiceNo string  `json:"invoice_no"`
	ItemID    int64   `json:"item_id"`
	Quantity  float64 `json:"quantity"`
}

// ItemInput is one line of a create request.
type ItemInput struct {
	ItemID   int64
	Quantity float64
}

// CreateInput carries a document to persist. Number may be empty, in
// which case the next sequential number is generated inside the same
// transaction as the insert.
type CreateInput struct {
	Number   string
	Type     TransactionType
	PartyID  int64
	Date     time.Time
	Subtotal float64
	CGSTRate float64
	SGSTRate float64
	Terms    string
	Detail   Detail
	Items    []ItemInput
}
