package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/Ashish-Kr-1/billing-sys-rkct-sub000/internal/tenant"
)

// orphanReceiptsQuery finds RECEIPT rows whose invoice number has no
// active SALE, either because the sale was cancelled after payments
// were recorded or because the number was keyed in by hand.
const orphanReceiptsQuery = `
	SELECT r.id, r.invoice_no, r.credit_amount
	FROM transactions r
	WHERE r.transaction_type = 'RECEIPT'
	  AND NOT EXISTS (
		SELECT 1 FROM transactions s
		WHERE s.transaction_type = 'SALE'
		  AND s.status = 'active'
		  AND s.invoice_no = r.invoice_no
	  )`

// NewLedgerIntegrityHandler returns the asynq handler for the
// orphan-receipt scan. Findings are logged, never mutated.
func NewLedgerIntegrityHandler(pools *tenant.Pools, registry *tenant.Registry, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload ScanPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		for _, ten := range scanTargets(registry, payload.TenantID) {
			if err := scanOrphanReceipts(ctx, pools, ten, logger); err != nil {
				logger.Error("ledger integrity scan failed",
					slog.Int64("tenant", ten.ID), slog.Any("error", err))
				return err
			}
		}
		return nil
	}
}

func scanOrphanReceipts(ctx context.Context, pools *tenant.Pools, ten tenant.Tenant, logger *slog.Logger) error {
	rows, err := pools.Query(ctx, ten.ID, orphanReceiptsQuery)
	if err != nil {
		return err
	}
	defer rows.Close()

	var found int
	for rows.Next() {
		var id int64
		var invoiceNo string
		var amount float64
		if err := rows.Scan(&id, &invoiceNo, &amount); err != nil {
			return err
		}
		found++
		logger.Warn("orphan receipt",
			slog.Int64("tenant", ten.ID),
			slog.Int64("receipt_id", id),
			slog.String("invoice_no", invoiceNo),
			slog.Float64("amount", amount))
	}
	if err := rows.Err(); err != nil {
		return err
	}
	logger.Info("ledger integrity scan done",
		slog.Int64("tenant", ten.ID), slog.Int("orphans", found))
	return nil
}

func scanTargets(registry *tenant.Registry, tenantID int64) []tenant.Tenant {
	if tenantID == 0 {
		return registry.All()
	}
	ten, ok := registry.Get(tenantID)
	if !ok {
		return nil
	}
	return []tenant.Tenant{ten}
}
