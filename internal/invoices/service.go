package invoices

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Ashish-Kr-1/billing-sys-rkct-sub000/internal/observability"
	"github.com/Ashish-Kr-1/billing-sys-rkct-sub000/internal/sequence"
	"github.com/Ashish-Kr-1/billing-sys-rkct-sub000/internal/tenant"
)

// Service handles invoice business logic.
type Service struct {
	repo     RepositoryPort
	registry *tenant.Registry
	locker   *sequence.Locker // nil unless sequence locking is enabled
	metrics  *observability.Metrics
	logger   *slog.Logger
	now      func() time.Time
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, registry *tenant.Registry, locker *sequence.Locker, metrics *observability.Metrics, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		registry: registry,
		locker:   locker,
		metrics:  metrics,
		logger:   logger,
		now:      time.Now,
	}
}

// Create persists a document header, its detail row and its line items
// in one transaction. When no number is supplied the next sequential
// number is generated on the same connection as the insert. Two
// concurrent creates can still compute the same number; the unique
// index on the number column turns the loser into a single
// recompute-and-retry.
func (s *Service) Create(ctx context.Context, tenantID int64, input CreateInput) (int64, string, error) {
	ten, ok := s.registry.Get(tenantID)
	if !ok {
		return 0, "", tenant.ErrUnknownTenant
	}
	if input.PartyID <= 0 {
		return 0, "", errors.New("party reference required")
	}
	if input.Subtotal < 0 {
		return 0, "", errors.New("subtotal must not be negative")
	}
	if input.Type == "" {
		input.Type = TypeSale
	}
	for _, item := range input.Items {
		if item.ItemID <= 0 {
			return 0, "", ErrMissingItemReference
		}
	}
	if input.Date.IsZero() {
		input.Date = s.now()
	}

	generated := input.Number == ""
	if generated && s.locker != nil {
		lock, err := s.locker.Acquire(ctx, ten, sequence.DocTypeInvoice, s.now())
		if err != nil {
			return 0, "", err
		}
		defer func() {
			_ = lock.Release(ctx)
		}()
	}

	id, number, err := s.create(ctx, ten, input, generated)
	if generated && isUniqueViolation(err) {
		s.metrics.SequenceRetried(ten.ShortName, string(sequence.DocTypeInvoice))
		s.logger.Warn("document number collision, regenerating",
			slog.Int64("tenant", tenantID), slog.String("number", number))
		id, number, err = s.create(ctx, ten, input, true)
	}
	return id, number, err
}

func (s *Service) create(ctx context.Context, ten tenant.Tenant, input CreateInput, generate bool) (int64, string, error) {
	var id int64
	number := input.Number
	err := s.repo.WithTx(ctx, ten.ID, func(ctx context.Context, tx TxRepository) error {
		if generate {
			next, err := tx.NextNumber(ctx, ten, input.Date)
			if err != nil {
				return err
			}
			number = next
		}

		existingID, exists, err := tx.FindIDByNumber(ctx, number)
		if err != nil {
			return err
		}
		if exists {
			return &DuplicateNumberError{Number: number, ExistingID: existingID}
		}

		totals := CalculateTotals(input.Subtotal, input.CGSTRate, input.SGSTRate, input.Type)
		inv := Invoice{
			Number:        number,
			Type:          input.Type,
			PartyID:       input.PartyID,
			Date:          input.Date,
			TaxableAmount: totals.TaxableAmount,
			CGSTRate:      input.CGSTRate,
			CGSTAmount:    totals.CGSTAmount,
			SGSTRate:      input.SGSTRate,
			SGSTAmount:    totals.SGSTAmount,
			IGSTAmount:    totals.IGSTAmount,
			RoundOff:      totals.RoundOff,
			TotalAmount:   totals.TotalAmount,
			DebitAmount:   totals.DebitAmount,
			CreditAmount:  totals.CreditAmount,
			Terms:         input.Terms,
		}
		headerID, err := tx.InsertInvoice(ctx, inv)
		if err != nil {
			return err
		}

		detail := input.Detail
		detail.InvoiceNo = number
		if err := tx.InsertDetail(ctx, detail); err != nil {
			return err
		}

		for _, item := range input.Items {
			if item.ItemID <= 0 {
				return ErrMissingItemReference
			}
			if err := tx.InsertItem(ctx, number, item); err != nil {
				return err
			}
		}

		id = headerID
		return nil
	})
	if err != nil {
		return 0, number, err
	}
	s.logger.Info("document created", slog.Int64("tenant", ten.ID),
		slog.String("number", number), slog.Int64("id", id))
	return id, number, nil
}

// Cancel soft-cancels a document. The number stays claimed so the
// generator never reissues it.
func (s *Service) Cancel(ctx context.Context, tenantID int64, number string) error {
	if number == "" {
		return errors.New("document number required")
	}
	if err := s.repo.Cancel(ctx, tenantID, number); err != nil {
		return fmt.Errorf("cancel %s: %w", number, err)
	}
	s.logger.Info("document cancelled", slog.Int64("tenant", tenantID),
		slog.String("number", number))
	return nil
}

// Get returns one document with detail and items.
func (s *Service) Get(ctx context.Context, tenantID, id int64) (*Invoice, *Detail, []Item, error) {
	return s.repo.Get(ctx, tenantID, id)
}

// List returns every document, newest first.
func (s *Service) List(ctx context.Context, tenantID int64) ([]Invoice, error) {
	return s.repo.List(ctx, tenantID)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
