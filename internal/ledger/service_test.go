package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type stubRepo struct {
	entries  []Entry
	sale     *Entry
	saleErr  error
	payments []PaymentLine
	recorded []PaymentInput
}

func (s *stubRepo) Ledger(ctx context.Context, tenantID int64) ([]Entry, error) {
	return s.entries, nil
}

func (s *stubRepo) Sale(ctx context.Context, tenantID int64, invoiceNo string) (*Entry, error) {
	if s.saleErr != nil {
		return nil, s.saleErr
	}
	return s.sale, nil
}

func (s *stubRepo) Payments(ctx context.Context, tenantID int64, invoiceNo string) ([]PaymentLine, error) {
	return s.payments, nil
}

func (s *stubRepo) RecordPayment(ctx context.Context, tenantID int64, input PaymentInput) error {
	s.recorded = append(s.recorded, input)
	return nil
}

func TestRunningBalances(t *testing.T) {
	entries := []HistoryEntry{
		{Debit: 20000},
		{Credit: 15000},
	}
	require.Equal(t, []float64{20000, 5000}, RunningBalances(entries))
}

func TestRunningBalancesOverpayment(t *testing.T) {
	entries := []HistoryEntry{
		{Debit: 10000},
		{Credit: 8000},
		{Credit: 5000},
	}
	require.Equal(t, []float64{10000, 2000, -3000}, RunningBalances(entries))
}

func TestStatusFor(t *testing.T) {
	require.Equal(t, StatusPending, StatusFor(500))
	require.Equal(t, StatusPaid, StatusFor(0))
	require.Equal(t, StatusAdvance, StatusFor(-250))
}

func TestEntryDueAndStatus(t *testing.T) {
	e := Entry{Debit: 20000, Credit: 15000}
	require.Equal(t, float64(5000), e.Due())
	require.Equal(t, StatusPending, e.Status())

	settled := Entry{Debit: 20000, Credit: 20000}
	require.Equal(t, StatusPaid, settled.Status())
}

func TestSummarize(t *testing.T) {
	svc := NewService(&stubRepo{})
	sum := svc.Summarize([]Entry{
		{Debit: 20000, Credit: 15000},
		{Debit: 10000, Credit: 12000},
	})
	require.Equal(t, float64(30000), sum.TotalDebit)
	require.Equal(t, float64(27000), sum.TotalCredit)
	require.Equal(t, float64(3000), sum.TotalDue)
}

func TestHistoryCombinesSaleAndReceipts(t *testing.T) {
	saleDate := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
	repo := &stubRepo{
		sale: &Entry{Invoice: "RKCT/2025-26/001", Date: saleDate, Debit: 20000},
		payments: []PaymentLine{
			{Date: saleDate.AddDate(0, 0, 10), Amount: 15000, Remarks: "part payment"},
			{Date: saleDate.AddDate(0, 1, 0), Amount: 5000, Remarks: "final"},
		},
	}
	svc := NewService(repo)

	history, err := svc.History(context.Background(), 1, "RKCT/2025-26/001")
	require.NoError(t, err)
	require.Len(t, history, 3)
	require.Equal(t, "Sale RKCT/2025-26/001", history[0].Description)
	require.Equal(t, float64(20000), history[0].Balance)
	require.Equal(t, float64(5000), history[1].Balance)
	require.Equal(t, float64(0), history[2].Balance)
}

func TestHistoryUnknownInvoice(t *testing.T) {
	svc := NewService(&stubRepo{saleErr: ErrInvoiceNotFound})

	_, err := svc.History(context.Background(), 1, "RKCT/2025-26/404")
	require.ErrorIs(t, err, ErrInvoiceNotFound)
}

func TestPaymentHistoryRequiresNumber(t *testing.T) {
	svc := NewService(&stubRepo{})

	_, err := svc.PaymentHistory(context.Background(), 1, "")
	require.Error(t, err)
}

func TestRecordPaymentValidation(t *testing.T) {
	repo := &stubRepo{}
	svc := NewService(repo)

	err := svc.RecordPayment(context.Background(), 1, PaymentInput{Amount: 100})
	require.Error(t, err)

	err = svc.RecordPayment(context.Background(), 1, PaymentInput{InvoiceNo: "RKCT/2025-26/001", Amount: 0})
	require.Error(t, err)

	err = svc.RecordPayment(context.Background(), 1, PaymentInput{InvoiceNo: "RKCT/2025-26/001", Amount: -5})
	require.Error(t, err)

	require.Empty(t, repo.recorded)
}

func TestRecordPaymentDefaultsDate(t *testing.T) {
	repo := &stubRepo{}
	svc := NewService(repo)

	err := svc.RecordPayment(context.Background(), 1, PaymentInput{
		InvoiceNo: "RKCT/2025-26/001",
		Amount:    5000,
	})
	require.NoError(t, err)
	require.Len(t, repo.recorded, 1)
	require.False(t, repo.recorded[0].Date.IsZero())
}
