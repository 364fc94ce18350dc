package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskLedgerIntegrity scans for receipt rows whose invoice number no
	// longer matches an active sale.
	TaskLedgerIntegrity = "billing:ledger_integrity"
	// TaskSequenceAudit scans for duplicate active sale numbers.
	TaskSequenceAudit = "billing:sequence_audit"
)

// ScanPayload selects which company a scan runs against. TenantID zero
// means every registered company.
type ScanPayload struct {
	TenantID int64 `json:"tenant_id"`
}

// NewLedgerIntegrityTask constructs an Asynq task.
func NewLedgerIntegrityTask(payload ScanPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLedgerIntegrity, data), nil
}

// NewSequenceAuditTask constructs an Asynq task.
func NewSequenceAuditTask(payload ScanPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskSequenceAudit, data), nil
}
