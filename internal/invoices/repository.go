package invoices

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Ashish-Kr-1/billing-sys-rkct-sub000/internal/sequence"
	"github.com/Ashish-Kr-1/billing-sys-rkct-sub000/internal/tenant"
)

// TxRepository exposes the operations available inside one document
// write transaction. Every statement runs on the same connection, in
// program order.
type TxRepository interface {
	FindIDByNumber(ctx context.Context, number string) (int64, bool, error)
	NextNumber(ctx context.Context, ten tenant.Tenant, now time.Time) (string, error)
	InsertInvoice(ctx context.Context, inv Invoice) (int64, error)
	InsertDetail(ctx context.Context, d Detail) error
	InsertItem(ctx context.Context, number string, item ItemInput) error
}

// RepositoryPort defines data access methods for invoices.
type RepositoryPort interface {
	WithTx(ctx context.Context, tenantID int64, fn func(context.Context, TxRepository) error) error
	Get(ctx context.Context, tenantID, id int64) (*Invoice, *Detail, []Item, error)
	List(ctx context.Context, tenantID int64) ([]Invoice, error)
	Cancel(ctx context.Context, tenantID int64, number string) error
}

// Repository provides PostgreSQL backed persistence for invoices.
type Repository struct {
	pools *tenant.Pools
}

// NewRepository constructs a repository.
func NewRepository(pools *tenant.Pools) *Repository {
	return &Repository{pools: pools}
}

type txRepo struct {
	tx pgx.Tx
}

// WithTx wraps fn in one repeatable-read transaction against the
// company's pool. All-or-nothing: any error from fn or commit rolls the
// whole write back.
func (r *Repository) WithTx(ctx context.Context, tenantID int64, fn func(context.Context, TxRepository) error) error {
	return r.pools.WithTx(ctx, tenantID, func(tx pgx.Tx) error {
		return fn(ctx, &txRepo{tx: tx})
	})
}

func (t *txRepo) FindIDByNumber(ctx context.Context, number string) (int64, bool, error) {
	var id int64
	err := t.tx.QueryRow(ctx, `
		SELECT id FROM transactions
		WHERE invoice_no = $1 AND transaction_type IN ('SALE', 'PURCHASE')`,
		number).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}

func (t *txRepo) NextNumber(ctx context.Context, ten tenant.Tenant, now time.Time) (string, error) {
	return sequence.Next(ctx, t.tx, ten, sequence.DocTypeInvoice, now)
}

func (t *txRepo) InsertInvoice(ctx context.Context, inv Invoice) (int64, error) {
	var id int64
	err := t.tx.QueryRow(ctx, `
		INSERT INTO transactions (
			transaction_type, invoice_no, party_id, date,
			taxable_amount, cgst_rate, cgst_amount, sgst_rate, sgst_amount,
			igst_amount, round_off, total_amount, debit_amount, credit_amount,
			terms, status, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, 'active', NOW())
		RETURNING id`,
		inv.Type, inv.Number, inv.PartyID, inv.Date,
		inv.TaxableAmount, inv.CGSTRate, inv.CGSTAmount, inv.SGSTRate, inv.SGSTAmount,
		inv.IGSTAmount, inv.RoundOff, inv.TotalAmount, inv.DebitAmount, inv.CreditAmount,
		inv.Terms).Scan(&id)
	return id, err
}

func (t *txRepo) InsertDetail(ctx context.Context, d Detail) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO invoice_details (
			invoice_no, transport_name, vehicle_no, lr_no, eway_bill_no,
			place_of_supply, bank_name, account_no, ifsc_code, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())`,
		d.InvoiceNo, d.TransportName, d.VehicleNo, d.LRNo, d.EwayBillNo,
		d.PlaceOfSupply, d.BankName, d.AccountNo, d.IFSCCode)
	return err
}

func (t *txRepo) InsertItem(ctx context.Context, number string, item ItemInput) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO invoice_items (invoice_no, item_id, quantity)
		VALUES ($1, $2, $3)`,
		number, item.ItemID, item.Quantity)
	return err
}

const invoiceColumns = `t.id, t.invoice_no, t.transaction_type, t.party_id, p.name, t.date,
	t.taxable_amount, t.cgst_rate, t.cgst_amount, t.sgst_rate, t.sgst_amount,
	t.igst_amount, t.round_off, t.total_amount, t.debit_amount, t.credit_amount,
	COALESCE(t.terms, ''), t.status, t.cancelled_at, t.created_at`

func scanInvoice(row pgx.Row) (*Invoice, error) {
	var inv Invoice
	err := row.Scan(&inv.ID, &inv.Number, &inv.Type, &inv.PartyID, &inv.PartyName, &inv.Date,
		&inv.TaxableAmount, &inv.CGSTRate, &inv.CGSTAmount, &inv.SGSTRate, &inv.SGSTAmount,
		&inv.IGSTAmount, &inv.RoundOff, &inv.TotalAmount, &inv.DebitAmount, &inv.CreditAmount,
		&inv.Terms, &inv.Status, &inv.CancelledAt, &inv.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// Get returns one document with its detail and line items.
func (r *Repository) Get(ctx context.Context, tenantID, id int64) (*Invoice, *Detail, []Item, error) {
	var inv *Invoice
	err := r.pools.QueryRow(ctx, tenantID, `
		SELECT `+invoiceColumns+`
		FROM transactions t
		JOIN parties p ON p.id = t.party_id
		WHERE t.id = $1 AND t.transaction_type IN ('SALE', 'PURCHASE')`,
		[]any{id}, func(row pgx.Row) error {
			var scanErr error
			inv, scanErr = scanInvoice(row)
			return scanErr
		})
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil, nil, ErrNotFound
	}
	if err != nil {
		return nil, nil, nil, err
	}

	var detail Detail
	err = r.pools.QueryRow(ctx, tenantID, `
		SELECT invoice_no, COALESCE(transport_name, ''), COALESCE(vehicle_no, ''),
		       COALESCE(lr_no, ''), COALESCE(eway_bill_no, ''), COALESCE(place_of_supply, ''),
		       COALESCE(bank_name, ''), COALESCE(account_no, ''), COALESCE(ifsc_code, '')
		FROM invoice_details WHERE invoice_no = $1`,
		[]any{inv.Number}, func(row pgx.Row) error {
			return row.Scan(&detail.InvoiceNo, &detail.TransportName, &detail.VehicleNo,
				&detail.LRNo, &detail.EwayBillNo, &detail.PlaceOfSupply,
				&detail.BankName, &detail.AccountNo, &detail.IFSCCode)
		})
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, nil, nil, err
	}

	rows, err := r.pools.Query(ctx, tenantID, `
		SELECT id, invoice_no, item_id, quantity
		FROM invoice_items WHERE invoice_no = $1 ORDER BY id`, inv.Number)
	if err != nil {
		return nil, nil, nil, err
	}
	defer rows.Close()
	var items []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.InvoiceNo, &it.ItemID, &it.Quantity); err != nil {
			return nil, nil, nil, err
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, nil, err
	}
	return inv, &detail, items, nil
}

// List returns every document, newest first.
func (r *Repository) List(ctx context.Context, tenantID int64) ([]Invoice, error) {
	rows, err := r.pools.Query(ctx, tenantID, `
		SELECT `+invoiceColumns+`
		FROM transactions t
		JOIN parties p ON p.id = t.party_id
		WHERE t.transaction_type IN ('SALE', 'PURCHASE')
		ORDER BY t.date DESC, t.id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invoices []Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, *inv)
	}
	return invoices, rows.Err()
}

// Cancel marks a document cancelled and stamps the cancellation time.
// Rows are never deleted; the number stays claimed.
func (r *Repository) Cancel(ctx context.Context, tenantID int64, number string) error {
	return r.pools.WithTx(ctx, tenantID, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE transactions
			SET status = 'cancelled', cancelled_at = NOW()
			WHERE invoice_no = $1 AND transaction_type IN ('SALE', 'PURCHASE')
			  AND status = 'active'`, number)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
}
