package ledger

import (
	"errors"
	"time"
)

// Settlement labels for an invoice's due amount.
const (
	StatusPaid    = "Paid"
	StatusPending = "Pending"
	StatusAdvance = "Advance"
)

// ErrInvoiceNotFound indicates no active SALE row exists for the number.
var ErrInvoiceNotFound = errors.New("ledger: invoice not found")

// Entry is one SALE row of the ledger view, with the credit side
// aggregated from every RECEIPT row sharing its invoice number. The two
// row families are deliberately correlated only by the number string,
// never a foreign key; this projection is the only place that join is
// constructed.
type Entry struct {
	TransactionID   int64     `json:"transaction_id"`
	Date            time.Time `json:"date"`
	Invoice         string    `json:"invoice"`
	Client          string    `json:"client"`
	Debit           float64   `json:"debit"`
	Credit          float64   `json:"credit"`
	TransactionType string    `json:"transaction_type"`
}

// Due returns the outstanding amount: positive means money owed,
// negative means overpayment.
func (e Entry) Due() float64 {
	return e.Debit - e.Credit
}

// Status classifies the due amount.
func (e Entry) Status() string {
	return StatusFor(e.Due())
}

// StatusFor maps a due amount onto its settlement label.
func StatusFor(due float64) string {
	switch {
	case due > 0:
		return StatusPending
	case due < 0:
		return StatusAdvance
	default:
		return StatusPaid
	}
}

// PaymentLine is one RECEIPT row against an invoice.
type PaymentLine struct {
	Date    time.Time `json:"date"`
	Amount  float64   `json:"amount"`
	Remarks string    `json:"remarks"`
}

// Summary is the outstanding-balance roll-up over the whole ledger.
type Summary struct {
	TotalDebit  float64 `json:"total_debit"`
	TotalCredit float64 `json:"total_credit"`
	TotalDue    float64 `json:"total_due"`
}

// HistoryEntry is one movement in an invoice's chronological history:
// the originating sale followed by its receipts.
type HistoryEntry struct {
	Date        time.Time `json:"date"`
	Description string    `json:"description"`
	Debit       float64   `json:"debit"`
	Credit      float64   `json:"credit"`
	Balance     float64   `json:"balance"`
}

// RunningBalances folds balance += debit - credit over time-ordered
// entries and returns the balance after each one. Pure function.
func RunningBalances(entries []HistoryEntry) []float64 {
	balances := make([]float64, len(entries))
	var balance float64
	for i, e := range entries {
		balance += e.Debit - e.Credit
		balances[i] = balance
	}
	return balances
}

// CombinedHistory prepends the originating sale to its receipts and
// stamps each entry with the running balance.
func CombinedHistory(sale Entry, payments []PaymentLine) []HistoryEntry {
	entries := make([]HistoryEntry, 0, len(payments)+1)
	entries = append(entries, HistoryEntry{
		Date:        sale.Date,
		Description: "Sale " + sale.Invoice,
		Debit:       sale.Debit,
	})
	for _, p := range payments {
		entries = append(entries, HistoryEntry{
			Date:        p.Date,
			Description: p.Remarks,
			Credit:      p.Amount,
		})
	}
	for i, b := range RunningBalances(entries) {
		entries[i].Balance = b
	}
	return entries
}

// PaymentInput carries a payment to record against an invoice.
type PaymentInput struct {
	InvoiceNo string
	Amount    float64
	Date      time.Time
	Remark    string
}
