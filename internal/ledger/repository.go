package ledger

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Ashish-Kr-1/billing-sys-rkct-sub000/internal/tenant"
)

// Repository provides PostgreSQL backed access to the per-company
// transactions table.
type Repository struct {
	pools *tenant.Pools
}

// NewRepository constructs a repository.
func NewRepository(pools *tenant.Pools) *Repository {
	return &Repository{pools: pools}
}

// Ledger returns every active SALE row with its aggregated receipt
// credit, ordered by transaction date then row id for a stable same-day
// order. Cancelled documents are excluded from the balance view.
func (r *Repository) Ledger(ctx context.Context, tenantID int64) ([]Entry, error) {
	rows, err := r.pools.Query(ctx, tenantID, `
		SELECT t.id, t.date, t.invoice_no, p.name, t.debit_amount,
		       COALESCE((SELECT SUM(rc.credit_amount) FROM transactions rc
		                 WHERE rc.transaction_type = 'RECEIPT'
		                   AND rc.invoice_no = t.invoice_no), 0),
		       t.transaction_type
		FROM transactions t
		JOIN parties p ON p.id = t.party_id
		WHERE t.transaction_type = 'SALE' AND t.status = 'active'
		ORDER BY t.date ASC, t.id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.TransactionID, &e.Date, &e.Invoice, &e.Client,
			&e.Debit, &e.Credit, &e.TransactionType); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Sale returns the active SALE row for an invoice number.
func (r *Repository) Sale(ctx context.Context, tenantID int64, invoiceNo string) (*Entry, error) {
	var e Entry
	err := r.pools.QueryRow(ctx, tenantID, `
		SELECT t.id, t.date, t.invoice_no, p.name, t.debit_amount,
		       COALESCE((SELECT SUM(rc.credit_amount) FROM transactions rc
		                 WHERE rc.transaction_type = 'RECEIPT'
		                   AND rc.invoice_no = t.invoice_no), 0),
		       t.transaction_type
		FROM transactions t
		JOIN parties p ON p.id = t.party_id
		WHERE t.transaction_type = 'SALE' AND t.status = 'active'
		  AND t.invoice_no = $1`,
		[]any{invoiceNo}, func(row pgx.Row) error {
			return row.Scan(&e.TransactionID, &e.Date, &e.Invoice, &e.Client,
				&e.Debit, &e.Credit, &e.TransactionType)
		})
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrInvoiceNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Payments returns every RECEIPT row for an invoice number, ascending by
// date then row id.
func (r *Repository) Payments(ctx context.Context, tenantID int64, invoiceNo string) ([]PaymentLine, error) {
	rows, err := r.pools.Query(ctx, tenantID, `
		SELECT date, credit_amount, COALESCE(remark, '')
		FROM transactions
		WHERE transaction_type = 'RECEIPT' AND invoice_no = $1
		ORDER BY date ASC, id ASC`, invoiceNo)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []PaymentLine
	for rows.Next() {
		var p PaymentLine
		if err := rows.Scan(&p.Date, &p.Amount, &p.Remarks); err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

// RecordPayment inserts a RECEIPT row carrying the sale's invoice number.
// Lookup and insert run in one transaction so a payment can never land
// against a concurrently-cancelled or nonexistent invoice.
func (r *Repository) RecordPayment(ctx context.Context, tenantID int64, input PaymentInput) error {
	return r.pools.WithTx(ctx, tenantID, func(tx pgx.Tx) error {
		var saleID int64
		err := tx.QueryRow(ctx, `
			SELECT id FROM transactions
			WHERE transaction_type = 'SALE' AND invoice_no = $1 AND status = 'active'`,
			input.InvoiceNo).Scan(&saleID)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrInvoiceNotFound
		}
		if err != nil {
			return err
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO transactions (
				transaction_type, invoice_no, party_id, date,
				taxable_amount, cgst_amount, sgst_amount, igst_amount, round_off,
				debit_amount, credit_amount, remark, reference, status, created_at
			)
			SELECT 'RECEIPT', s.invoice_no, s.party_id, $2,
			       0, 0, 0, 0, 0,
			       0, $3, $4, $5, 'active', NOW()
			FROM transactions s WHERE s.id = $1`,
			saleID, input.Date, input.Amount, input.Remark, uuid.NewString())
		return err
	})
}
