package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/Ashish-Kr-1/billing-sys-rkct-sub000/internal/tenant"
)

// duplicateNumbersQuery finds active document numbers shared by more
// than one SALE or PURCHASE row. The partial unique index makes new
// duplicates impossible; this catches data loaded before the index
// existed.
const duplicateNumbersQuery = `
	SELECT invoice_no, COUNT(*) AS occurrences
	FROM transactions
	WHERE transaction_type IN ('SALE', 'PURCHASE') AND status = 'active'
	GROUP BY invoice_no
	HAVING COUNT(*) > 1`

// NewSequenceAuditHandler returns the asynq handler for the
// duplicate-number scan.
func NewSequenceAuditHandler(pools *tenant.Pools, registry *tenant.Registry, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload ScanPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		for _, ten := range scanTargets(registry, payload.TenantID) {
			if err := scanDuplicateNumbers(ctx, pools, ten, logger); err != nil {
				logger.Error("sequence audit failed",
					slog.Int64("tenant", ten.ID), slog.Any("error", err))
				return err
			}
		}
		return nil
	}
}

func scanDuplicateNumbers(ctx context.Context, pools *tenant.Pools, ten tenant.Tenant, logger *slog.Logger) error {
	rows, err := pools.Query(ctx, ten.ID, duplicateNumbersQuery)
	if err != nil {
		return err
	}
	defer rows.Close()

	var found int
	for rows.Next() {
		var invoiceNo string
		var occurrences int64
		if err := rows.Scan(&invoiceNo, &occurrences); err != nil {
			return err
		}
		found++
		logger.Warn("duplicate document number",
			slog.Int64("tenant", ten.ID),
			slog.String("invoice_no", invoiceNo),
			slog.Int64("occurrences", occurrences))
	}
	if err := rows.Err(); err != nil {
		return err
	}
	logger.Info("sequence audit done",
		slog.Int64("tenant", ten.ID), slog.Int("duplicates", found))
	return nil
}
