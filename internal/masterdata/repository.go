package masterdata

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/Ashish-Kr-1/billing-sys-rkct-sub000/internal/tenant"
)

// RepositoryPort abstracts master-data persistence.
type RepositoryPort interface {
	ListParties(ctx context.Context, tenantID int64) ([]Party, error)
	GetParty(ctx context.Context, tenantID, id int64) (*Party, error)
	CreateParty(ctx context.Context, tenantID int64, p Party) (int64, error)
	UpdateParty(ctx context.Context, tenantID int64, p Party) error

	ListItems(ctx context.Context, tenantID int64) ([]Item, error)
	GetItem(ctx context.Context, tenantID, id int64) (*Item, error)
	CreateItem(ctx context.Context, tenantID int64, it Item) (int64, error)
	UpdateItem(ctx context.Context, tenantID int64, it Item) error
}

// Repository routes master-data queries through the tenant pools.
type Repository struct {
	pools *tenant.Pools
}

// NewRepository builds Repository instance.
func NewRepository(pools *tenant.Pools) *Repository {
	return &Repository{pools: pools}
}

func (r *Repository) ListParties(ctx context.Context, tenantID int64) ([]Party, error) {
	rows, err := r.pools.Query(ctx, tenantID, `
		SELECT id, name, gstin, address, state, state_code, phone, email, created_at
		FROM parties ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var parties []Party
	for rows.Next() {
		var p Party
		if err := rows.Scan(&p.ID, &p.Name, &p.GSTIN, &p.Address, &p.State,
			&p.StateCode, &p.Phone, &p.Email, &p.CreatedAt); err != nil {
			return nil, err
		}
		parties = append(parties, p)
	}
	return parties, rows.Err()
}

func (r *Repository) GetParty(ctx context.Context, tenantID, id int64) (*Party, error) {
	var p Party
	err := r.pools.QueryRow(ctx, tenantID, `
		SELECT id, name, gstin, address, state, state_code, phone, email, created_at
		FROM parties WHERE id = $1`,
		[]any{id}, func(row pgx.Row) error {
			return row.Scan(&p.ID, &p.Name, &p.GSTIN, &p.Address, &p.State,
				&p.StateCode, &p.Phone, &p.Email, &p.CreatedAt)
		})
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repository) CreateParty(ctx context.Context, tenantID int64, p Party) (int64, error) {
	var id int64
	err := r.pools.WithTx(ctx, tenantID, func(tx pgx.Tx) error {
		return tx.QueryRow(ctx, `
			INSERT INTO parties (name, gstin, address, state, state_code, phone, email)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id`,
			p.Name, p.GSTIN, p.Address, p.State, p.StateCode, p.Phone, p.Email,
		).Scan(&id)
	})
	return id, err
}

func (r *Repository) UpdateParty(ctx context.Context, tenantID int64, p Party) error {
	return r.pools.WithTx(ctx, tenantID, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE parties
			SET name = $2, gstin = $3, address = $4, state = $5,
			    state_code = $6, phone = $7, email = $8
			WHERE id = $1`,
			p.ID, p.Name, p.GSTIN, p.Address, p.State, p.StateCode, p.Phone, p.Email)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (r *Repository) ListItems(ctx context.Context, tenantID int64) ([]Item, error) {
	rows, err := r.pools.Query(ctx, tenantID, `
		SELECT id, name, hsn_code, unit, rate, created_at
		FROM items ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.Name, &it.HSNCode, &it.Unit, &it.Rate, &it.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *Repository) GetItem(ctx context.Context, tenantID, id int64) (*Item, error) {
	var it Item
	err := r.pools.QueryRow(ctx, tenantID, `
		SELECT id, name, hsn_code, unit, rate, created_at
		FROM items WHERE id = $1`,
		[]any{id}, func(row pgx.Row) error {
			return row.Scan(&it.ID, &it.Name, &it.HSNCode, &it.Unit, &it.Rate, &it.CreatedAt)
		})
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &it, nil
}

func (r *Repository) CreateItem(ctx context.Context, tenantID int64, it Item) (int64, error) {
	var id int64
	err := r.pools.WithTx(ctx, tenantID, func(tx pgx.Tx) error {
		return tx.QueryRow(ctx, `
			INSERT INTO items (name, hsn_code, unit, rate)
			VALUES ($1, $2, $3, $4)
			RETURNING id`,
			it.Name, it.HSNCode, it.Unit, it.Rate,
		).Scan(&id)
	})
	return id, err
}

func (r *Repository) UpdateItem(ctx context.Context, tenantID int64, it Item) error {
	return r.pools.WithTx(ctx, tenantID, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE items
			SET name = $2, hsn_code = $3, unit = $4, rate = $5
			WHERE id = $1`,
			it.ID, it.Name, it.HSNCode, it.Unit, it.Rate)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
}
