package quotations

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/Ashish-Kr-1/billing-sys-rkct-sub000/internal/observability"
	"github.com/Ashish-Kr-1/billing-sys-rkct-sub000/internal/sequence"
	"github.com/Ashish-Kr-1/billing-sys-rkct-sub000/internal/tenant"
)

// Service handles quotation business logic.
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

var hundred = decimal.NewFromInt(100)

// Create persists a quotation with a generated number and snapshot line
// amounts, all in one transaction.
func (s *Service) Create(ctx context.Context, tenantID int64, input CreateInput) (int64, string, error) {
	ten, ok := s.registry.Get(tenantID)
	if !ok {
		return 0, "", tenant.ErrUnknownTenant
	}
	if input.PartyID <= 0 {
		return 0, "", errors.New("party reference required")
	}
	for _, line := range input.Lines {
		if line.ItemID <= 0 {
			return 0, "", ErrMissingItemReference
		}
	}
	if input.Date.IsZero() {
		input.Date = s.now()
	}

	if s.locker != nil {
		lock, err := s.locker.Acquire(ctx, ten, sequence.DocTypeQuotation, s.now())
		if err != nil {
			return 0, "", err
		}
		defer func() {
			_ = lock.Release(ctx)
		}()
	}

	id, number, err := s.create(ctx, ten, input)
	if isUniqueViolation(err) {
		s.metrics.SequenceRetried(ten.ShortName, string(sequence.DocTypeQuotation))
		s.logger.Warn("quotation number collision, regenerating",
			slog.Int64("tenant", tenantID), slog.String("number", number))
		id, number, err = s.create(ctx, ten, input)
	}
	return id, number, err
}

func (s *Service) create(ctx context.Context, ten tenant.Tenant, input CreateInput) (int64, string, error) {
	var id int64
	var number string
	err := s.repo.WithTx(ctx, ten.ID, func(ctx context.Context, tx TxRepository) error {
		next, err := tx.NextNumber(ctx, ten, input.Date)
		if err != nil {
			return err
		}
		number = next

		if existingID, exists, err := tx.FindIDByNumber(ctx, number); err != nil {
			return err
		} else if exists {
			return &DuplicateNumberError{Number: number, ExistingID: existingID}
		}

		q := buildQuotation(input)
		q.Number = number
		headerID, err := tx.InsertQuotation(ctx, q)
		if err != nil {
			return err
		}
		for _, line := range q.Lines {
			line.QuotationID = headerID
			if err := tx.InsertLine(ctx, line); err != nil {
				return err
			}
		}
		id = headerID
		return nil
	})
	if err != nil {
		return 0, number, err
	}
	s.logger.Info("quotation created", slog.Int64("tenant", ten.ID),
		slog.String("number", number), slog.Int64("id", id))
	return id, number, nil
}

// buildQuotation derives line amounts and header totals. Line amounts
// are rate snapshots captured at quotation time.
func buildQuotation(input CreateInput) Quotation {
	subtotal := decimal.NewFromFloat(input.Subtotal)
	lines := make([]Line, 0, len(input.Lines))
	if len(input.Lines) > 0 {
		sum := decimal.Zero
		for _, l := range input.Lines {
			amount := decimal.NewFromFloat(l.Quantity).Mul(decimal.NewFromFloat(l.Rate)).Round(2)
			sum = sum.Add(amount)
			lines = append(lines, Line{
				ItemID:   l.ItemID,
				Quantity: l.Quantity,
				Rate:     l.Rate,
				Amount:   amount.InexactFloat64(),
			})
		}
		if subtotal.IsZero() {
			subtotal = sum
		}
	}

	cgst := subtotal.Mul(decimal.NewFromFloat(input.CGSTRate)).Div(hundred)
	sgst := subtotal.Mul(decimal.NewFromFloat(input.SGSTRate)).Div(hundred)
	total := subtotal.Add(cgst).Add(sgst)
	rounded := total.Round(0)

	return Quotation{
		PartyID:     input.PartyID,
		Date:        input.Date,
		Subtotal:    subtotal.InexactFloat64(),
		CGSTRate:    input.CGSTRate,
		CGSTAmount:  cgst.Round(2).InexactFloat64(),
		SGSTRate:    input.SGSTRate,
		SGSTAmount:  sgst.Round(2).InexactFloat64(),
		RoundOff:    rounded.Sub(total).Round(2).InexactFloat64(),
		TotalAmount: rounded.InexactFloat64(),
		Terms:       input.Terms,
		Status:      StatusPending,
		Lines:       lines,
	}
}

// Get returns one quotation with lines.
func (s *Service) Get(ctx context.Context, tenantID, id int64) (*Quotation, error) {
	return s.repo.Get(ctx, tenantID, id)
}

// List returns every quotation, newest first.
func (s *Service) List(ctx context.Context, tenantID int64) ([]Quotation, error) {
	return s.repo.List(ctx, tenantID)
}

// UpdateStatus transitions a pending quotation to Converted or
// Rejected. Terminal states never transition again; the repository
// enforces the Pending precondition atomically.
func (s *Service) UpdateStatus(ctx context.Context, tenantID, id int64, status Status) error {
	if status != StatusConverted && status != StatusRejected {
		return ErrInvalidTransition
	}
	return s.repo.UpdateStatus(ctx, tenantID, id, status)
}

// Update replaces a quotation's header fields and lines in one
// transaction. The number never changes on update.
func (s *Service) Update(ctx context.Context, tenantID, id int64, input CreateInput) error {
	if input.PartyID <= 0 {
		return errors.New("party reference required")
	}
	for _, line := range input.Lines {
		if line.ItemID <= 0 {
			return ErrMissingItemReference
		}
	}
	if input.Date.IsZero() {
		input.Date = s.now()
	}
	return s.repo.WithTx(ctx, tenantID, func(ctx context.Context, tx TxRepository) error {
		q := buildQuotation(input)
		q.ID = id
		if err := tx.UpdateHeader(ctx, q); err != nil {
			return err
		}
		if err := tx.DeleteLines(ctx, id); err != nil {
			return err
		}
		for _, line := range q.Lines {
			line.QuotationID = id
			if err := tx.InsertLine(ctx, line); err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete removes a quotation and its lines.
func (s *Service) Delete(ctx context.Context, tenantID, id int64) error {
	if err := s.repo.Delete(ctx, tenantID, id); err != nil {
		return err
	}
	s.logger.Info("quotation deleted", slog.Int64("tenant", tenantID), slog.Int64("id", id))
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
