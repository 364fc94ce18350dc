package invoices

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/Ashish-Kr-1/billing-sys-rkct-sub000/internal/sequence"
	"github.com/Ashish-Kr-1/billing-sys-rkct-sub000/internal/tenant"
)

// memRepo is an in-memory RepositoryPort that mimics transactional
// semantics: writes staged inside WithTx reach the store only when fn
// returns nil.
type memRepo struct {
	invoices         map[string]Invoice // committed, by number
	details          []Detail
	items            []Item
	nextID           int64
	insertInvoiceErr error // consumed by the first InsertInvoice
	failItemInsert   bool
}

func newMemRepo() *memRepo {
	return &memRepo{invoices: make(map[string]Invoice)}
}

type memTx struct {
	repo    *memRepo
	invoice *Invoice
	details []Detail
	items   []Item
}

func (m *memRepo) WithTx(ctx context.Context, tenantID int64, fn func(context.Context, TxRepository) error) error {
	tx := &memTx{repo: m}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	if tx.invoice != nil {
		m.invoices[tx.invoice.Number] = *tx.invoice
	}
	m.details = append(m.details, tx.details...)
	m.items = append(m.items, tx.items...)
	return nil
}

func (t *memTx) FindIDByNumber(ctx context.Context, number string) (int64, bool, error) {
	inv, ok := t.repo.invoices[number]
	if !ok {
		return 0, false, nil
	}
	return inv.ID, true, nil
}

func (t *memTx) NextNumber(ctx context.Context, ten tenant.Tenant, now time.Time) (string, error) {
	fy := sequence.FinancialYear(now)
	seq := 0
	prefix := fmt.Sprintf("%s/%s/", ten.InvoicePrefix, fy)
	for number := range t.repo.invoices {
		if !strings.HasPrefix(number, prefix) {
			continue
		}
		if n, err := strconv.Atoi(number[len(prefix):]); err == nil && n > seq {
			seq = n
		}
	}
	return fmt.Sprintf("%s%03d", prefix, seq+1), nil
}

func (t *memTx) InsertInvoice(ctx context.Context, inv Invoice) (int64, error) {
	if err := t.repo.insertInvoiceErr; err != nil {
		t.repo.insertInvoiceErr = nil
		return 0, err
	}
	t.repo.nextID++
	inv.ID = t.repo.nextID
	inv.Status = StatusActive
	t.invoice = &inv
	return inv.ID, nil
}

func (t *memTx) InsertDetail(ctx context.Context, d Detail) error {
	t.details = append(t.details, d)
	return nil
}

func (t *memTx) InsertItem(ctx context.Context, number string, item ItemInput) error {
	if t.repo.failItemInsert {
		return errors.New("insert item: connection reset")
	}
	t.items = append(t.items, Item{InvoiceNo: number, ItemID: item.ItemID, Quantity: item.Quantity})
	return nil
}

func (m *memRepo) Get(ctx context.Context, tenantID, id int64) (*Invoice, *Detail, []Item, error) {
	for _, inv := range m.invoices {
		if inv.ID == id {
			return &inv, &Detail{}, nil, nil
		}
	}
	return nil, nil, nil, ErrNotFound
}

func (m *memRepo) List(ctx context.Context, tenantID int64) ([]Invoice, error) {
	out := make([]Invoice, 0, len(m.invoices))
	for _, inv := range m.invoices {
		out = append(out, inv)
	}
	return out, nil
}

func (m *memRepo) Cancel(ctx context.Context, tenantID int64, number string) error {
	inv, ok := m.invoices[number]
	if !ok || inv.Status != StatusActive {
		return ErrNotFound
	}
	now := time.Now()
	inv.Status = StatusCancelled
	inv.CancelledAt = &now
	m.invoices[number] = inv
	return nil
}

func newTestService(repo *memRepo) *Service {
	registry, err := tenant.NewRegistry([]tenant.Tenant{
		{ID: 1, Name: "Rajkamal Cement Traders", ShortName: "RKCT",
			DSN: "postgres://localhost/rkct", InvoicePrefix: "RKCT", QuotationPrefix: "QT/RKCT"},
	})
	if err != nil {
		panic(err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewService(repo, registry, nil, nil, logger)
	svc.now = func() time.Time {
		return time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC)
	}
	return svc
}

func validInput() CreateInput {
	return CreateInput{
		PartyID:  3,
		Subtotal: 10000,
		CGSTRate: 9,
		SGSTRate: 9,
		Items:    []ItemInput{{ItemID: 1, Quantity: 50}},
	}
}

func TestCreateGeneratesSequentialNumbers(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo)

	_, first, err := svc.Create(context.Background(), 1, validInput())
	require.NoError(t, err)
	require.Equal(t, "RKCT/2025-26/001", first)

	_, second, err := svc.Create(context.Background(), 1, validInput())
	require.NoError(t, err)
	require.Equal(t, "RKCT/2025-26/002", second)

	require.Len(t, repo.invoices, 2)
	require.Len(t, repo.details, 2)
	require.Len(t, repo.items, 2)
}

func TestCreatePurchaseAndSaleShareSequence(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo)

	purchase := validInput()
	purchase.Type = TypePurchase
	_, first, err := svc.Create(context.Background(), 1, purchase)
	require.NoError(t, err)
	require.Equal(t, "RKCT/2025-26/001", first)

	// the purchase's number is taken; the sale must not collide with it
	_, second, err := svc.Create(context.Background(), 1, validInput())
	require.NoError(t, err)
	require.Equal(t, "RKCT/2025-26/002", second)
	require.Equal(t, TypePurchase, repo.invoices[first].Type)
	require.Equal(t, TypeSale, repo.invoices[second].Type)
}

func TestCreateRollsBackWhenItemInsertFails(t *testing.T) {
	repo := newMemRepo()
	repo.failItemInsert = true
	svc := newTestService(repo)

	_, _, err := svc.Create(context.Background(), 1, validInput())
	require.Error(t, err)

	require.Empty(t, repo.invoices)
	require.Empty(t, repo.details)
	require.Empty(t, repo.items)
}

func TestCreateDuplicateNumberIsIdempotent(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo)

	input := validInput()
	input.Number = "RKCT/2025-26/001"
	id, _, err := svc.Create(context.Background(), 1, input)
	require.NoError(t, err)

	stored := repo.invoices["RKCT/2025-26/001"]
	_, _, err = svc.Create(context.Background(), 1, input)

	var dup *DuplicateNumberError
	require.ErrorAs(t, err, &dup)
	require.Equal(t, id, dup.ExistingID)
	require.Equal(t, "RKCT/2025-26/001", dup.Number)

	require.Len(t, repo.invoices, 1)
	require.Equal(t, stored, repo.invoices["RKCT/2025-26/001"])
}

func TestCreateRetriesGeneratedNumberOnUniqueViolation(t *testing.T) {
	repo := newMemRepo()
	repo.insertInvoiceErr = &pgconn.PgError{Code: "23505"}
	svc := newTestService(repo)

	_, number, err := svc.Create(context.Background(), 1, validInput())
	require.NoError(t, err)
	require.Equal(t, "RKCT/2025-26/001", number)
	require.Len(t, repo.invoices, 1)
}

func TestCreateDoesNotRetryExplicitNumber(t *testing.T) {
	repo := newMemRepo()
	repo.insertInvoiceErr = &pgconn.PgError{Code: "23505"}
	svc := newTestService(repo)

	input := validInput()
	input.Number = "RKCT/2025-26/050"
	_, _, err := svc.Create(context.Background(), 1, input)

	var pgErr *pgconn.PgError
	require.ErrorAs(t, err, &pgErr)
	require.Empty(t, repo.invoices)
}

func TestCreateValidation(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo)

	input := validInput()
	input.PartyID = 0
	_, _, err := svc.Create(context.Background(), 1, input)
	require.Error(t, err)

	input = validInput()
	input.Items = []ItemInput{{ItemID: 0, Quantity: 5}}
	_, _, err = svc.Create(context.Background(), 1, input)
	require.ErrorIs(t, err, ErrMissingItemReference)

	input = validInput()
	input.Subtotal = -1
	_, _, err = svc.Create(context.Background(), 1, input)
	require.Error(t, err)

	_, _, err = svc.Create(context.Background(), 42, validInput())
	require.ErrorIs(t, err, tenant.ErrUnknownTenant)

	require.Empty(t, repo.invoices)
}

func TestCancelKeepsNumberClaimed(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo)

	_, number, err := svc.Create(context.Background(), 1, validInput())
	require.NoError(t, err)

	require.NoError(t, svc.Cancel(context.Background(), 1, number))
	require.Equal(t, StatusCancelled, repo.invoices[number].Status)
	require.NotNil(t, repo.invoices[number].CancelledAt)

	// the cancelled row still occupies its number, so the next
	// generated number moves past it
	_, next, err := svc.Create(context.Background(), 1, validInput())
	require.NoError(t, err)
	require.Equal(t, "RKCT/2025-26/002", next)
}

func TestCancelUnknownNumber(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo)

	err := svc.Cancel(context.Background(), 1, "RKCT/2025-26/404")
	require.ErrorIs(t, err, ErrNotFound)

	require.Error(t, svc.Cancel(context.Background(), 1, ""))
}
