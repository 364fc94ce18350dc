package ledger

import (
	"context"
	"errors"
	"time"
)

// RepositoryPort defines data access methods for the ledger.
type RepositoryPort interface {
	Ledger(ctx context.Context, tenantID int64) ([]Entry, error)
	Sale(ctx context.Context, tenantID int64, invoiceNo string) (*Entry, error)
	Payments(ctx context.Context, tenantID int64, invoiceNo string) ([]PaymentLine, error)
	RecordPayment(ctx context.Context, tenantID int64, input PaymentInput) error
}

// Service handles ledger business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// BuildLedger returns the full ledger view for a company, ascending by
// date. The ledger is a projection over append-only SALE and RECEIPT
// rows, never a stored balance.
func (s *Service) BuildLedger(ctx context.Context, tenantID int64) ([]Entry, error) {
	return s.repo.Ledger(ctx, tenantID)
}

// Summarize rolls entries up into the global outstanding balance.
func (s *Service) Summarize(entries []Entry) Summary {
	var sum Summary
	for _, e := range entries {
		sum.TotalDebit += e.Debit
		sum.TotalCredit += e.Credit
	}
	sum.TotalDue = sum.TotalDebit - sum.TotalCredit
	return sum
}

// PaymentHistory returns the RECEIPT rows for an invoice, ascending by
// date.
func (s *Service) PaymentHistory(ctx context.Context, tenantID int64, invoiceNo string) ([]PaymentLine, error) {
	if invoiceNo == "" {
		return nil, errors.New("invoice number required")
	}
	return s.repo.Payments(ctx, tenantID, invoiceNo)
}

// History returns the combined sale-plus-receipts timeline for an
// invoice with running balances.
func (s *Service) History(ctx context.Context, tenantID int64, invoiceNo string) ([]HistoryEntry, error) {
	sale, err := s.repo.Sale(ctx, tenantID, invoiceNo)
	if err != nil {
		return nil, err
	}
	payments, err := s.repo.Payments(ctx, tenantID, invoiceNo)
	if err != nil {
		return nil, err
	}
	return CombinedHistory(*sale, payments), nil
}

// RecordPayment validates and stores a receipt against an invoice.
func (s *Service) RecordPayment(ctx context.Context, tenantID int64, input PaymentInput) error {
	if input.InvoiceNo == "" {
		return errors.New("invoice number required")
	}
	if input.Amount <= 0 {
		return errors.New("amount must be positive")
	}
	if input.Date.IsZero() {
		input.Date = time.Now()
	}
	return s.repo.RecordPayment(ctx, tenantID, input)
}
