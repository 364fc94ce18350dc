package quotations

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Ashish-Kr-1/billing-sys-rkct-sub000/internal/sequence"
	"github.com/Ashish-Kr-1/billing-sys-rkct-sub000/internal/tenant"
)

// TxRepository exposes quotation operations inside one transaction.
type TxRepository interface {
	NextNumber(ctx context.Context, ten tenant.Tenant, now time.Time) (string, error)
	FindIDByNumber(ctx context.Context, number string) (int64, bool, error)
	InsertQuotation(ctx context.Context, q Quotation) (int64, error)
	InsertLine(ctx context.Context, line Line) error
	UpdateHeader(ctx context.Context, q Quotation) error
	DeleteLines(ctx context.Context, quotationID int64) error
}

// RepositoryPort defines data access methods for quotations.
type RepositoryPort interface {
	WithTx(ctx context.Context, tenantID int64, fn func(context.Context, TxRepository) error) error
	Get(ctx context.Context, tenantID, id int64) (*Quotation, error)
	List(ctx context.Context, tenantID int64) ([]Quotation, error)
	UpdateStatus(ctx context.Context, tenantID, id int64, status Status) error
	Delete(ctx context.Context, tenantID, id int64) error
}

// Repository provides PostgreSQL backed persistence for quotations.
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

// WithTx wraps fn in one repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, tenantID int64, fn func(context.Context, TxRepository) error) error {
	return r.pools.WithTx(ctx, tenantID, func(tx pgx.Tx) error {
		return fn(ctx, &txRepo{tx: tx})
	})
}

func (t *txRepo) NextNumber(ctx context.Context, ten tenant.Tenant, now time.Time) (string, error) {
	return sequence.Next(ctx, t.tx, ten, sequence.DocTypeQuotation, now)
}

func (t *txRepo) FindIDByNumber(ctx context.Context, number string) (int64, bool, error) {
	var id int64
	err := t.tx.QueryRow(ctx, `SELECT id FROM quotations WHERE quotation_no = $1`, number).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}

func (t *txRepo) InsertQuotation(ctx context.Context, q Quotation) (int64, error) {
	var id int64
	err := t.tx.QueryRow(ctx, `
		INSERT INTO quotations (
			quotation_no, party_id, date, subtotal,
			cgst_rate, cgst_amount, sgst_rate, sgst_amount,
			round_off, total_amount, terms, status, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW())
		RETURNING id`,
		q.Number, q.PartyID, q.Date, q.Subtotal,
		q.CGSTRate, q.CGSTAmount, q.SGSTRate, q.SGSTAmount,
		q.RoundOff, q.TotalAmount, q.Terms, q.Status).Scan(&id)
	return id, err
}

func (t *txRepo) InsertLine(ctx context.Context, line Line) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO quotation_items (quotation_id, item_id, quantity, rate, amount)
		VALUES ($1, $2, $3, $4, $5)`,
		line.QuotationID, line.ItemID, line.Quantity, line.Rate, line.Amount)
	return err
}

func (t *txRepo) UpdateHeader(ctx context.Context, q Quotation) error {
	tag, err := t.tx.Exec(ctx, `
		UPDATE quotations
		SET party_id = $2, date = $3, subtotal = $4,
		    cgst_rate = $5, cgst_amount = $6, sgst_rate = $7, sgst_amount = $8,
		    round_off = $9, total_amount = $10, terms = $11
		WHERE id = $1`,
		q.ID, q.PartyID, q.Date, q.Subtotal,
		q.CGSTRate, q.CGSTAmount, q.SGSTRate, q.SGSTAmount,
		q.RoundOff, q.TotalAmount, q.Terms)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (t *txRepo) DeleteLines(ctx context.Context, quotationID int64) error {
	_, err := t.tx.Exec(ctx, `DELETE FROM quotation_items WHERE quotation_id = $1`, quotationID)
	return err
}

const quotationColumns = `q.id, q.quotation_no, q.party_id, p.name, q.date, q.subtotal,
	q.cgst_rate, q.cgst_amount, q.sgst_rate, q.sgst_amount,
	q.round_off, q.total_amount, COALESCE(q.terms, ''), q.status, q.created_at`

func scanQuotation(row pgx.Row) (*Quotation, error) {
	var q Quotation
	err := row.Scan(&q.ID, &q.Number, &q.PartyID, &q.PartyName, &q.Date, &q.Subtotal,
		&q.CGSTRate, &q.CGSTAmount, &q.SGSTRate, &q.SGSTAmount,
		&q.RoundOff, &q.TotalAmount, &q.Terms, &q.Status, &q.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// Get returns one quotation with its lines.
func (r *Repository) Get(ctx context.Context, tenantID, id int64) (*Quotation, error) {
	var q *Quotation
	err := r.pools.QueryRow(ctx, tenantID, `
		SELECT `+quotationColumns+`
		FROM quotations q
		JOIN parties p ON p.id = q.party_id
		WHERE q.id = $1`,
		[]any{id}, func(row pgx.Row) error {
			var scanErr error
			q, scanErr = scanQuotation(row)
			return scanErr
		})
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := r.pools.Query(ctx, tenantID, `
		SELECT id, quotation_id, item_id, quantity, rate, amount
		FROM quotation_items WHERE quotation_id = $1 ORDER BY id`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var line Line
		if err := rows.Scan(&line.ID, &line.QuotationID, &line.ItemID,
			&line.Quantity, &line.Rate, &line.Amount); err != nil {
			return nil, err
		}
		q.Lines = append(q.Lines, line)
	}
	return q, rows.Err()
}

// List returns every quotation, newest first.
func (r *Repository) List(ctx context.Context, tenantID int64) ([]Quotation, error) {
	rows, err := r.pools.Query(ctx, tenantID, `
		SELECT `+quotationColumns+`
		FROM quotations q
		JOIN parties p ON p.id = q.party_id
		ORDER BY q.date DESC, q.id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var quotations []Quotation
	for rows.Next() {
		q, err := scanQuotation(rows)
		if err != nil {
			return nil, err
		}
		quotations = append(quotations, *q)
	}
	return quotations, rows.Err()
}

// UpdateStatus transitions a pending quotation's status. The Pending
// guard lives in the statement itself, so two concurrent transitions
// cannot both win.
func (r *Repository) UpdateStatus(ctx context.Context, tenantID, id int64, status Status) error {
	return r.pools.WithTx(ctx, tenantID, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE quotations SET status = $2
			WHERE id = $1 AND status = 'Pending'`, id, status)
		if err != nil {
			return err
		}
		if tag.RowsAffected() > 0 {
			return nil
		}
		var exists bool
		if err := tx.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM quotations WHERE id = $1)`, id).Scan(&exists); err != nil {
			return err
		}
		if exists {
			return ErrInvalidTransition
		}
		return ErrNotFound
	})
}

// Delete removes a quotation and its lines. Hard delete: quotations
// carry no ledger weight, so no audit row is kept.
func (r *Repository) Delete(ctx context.Context, tenantID, id int64) error {
	return r.pools.WithTx(ctx, tenantID, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM quotation_items WHERE quotation_id = $1`, id); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `DELETE FROM quotations WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
}
