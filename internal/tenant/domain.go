package tenant

import (
	"errors"
	"fmt"
)

// Tenant is one independently-databased company sharing the deployment.
// The set is fixed at startup; entries are never mutated at runtime.
type Tenant struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	ShortName       string `json:"short_name"`
	DSN             string `json:"dsn"`
	InvoicePrefix   string `json:"invoice_prefix"`
	QuotationPrefix string `json:"quotation_prefix"`
}

// Outcome tags how a request identifier mapped onto a company.
type Outcome string

const (
	// OutcomeResolved means the identifier matched a registered company.
	OutcomeResolved Outcome = "resolved"
	// OutcomeFallback means the request carried no identifier and the
	// default company was substituted.
	OutcomeFallback Outcome = "fallback"
	// OutcomeUnknown means the identifier did not match any registered
	// company; the default company was substituted.
	OutcomeUnknown Outcome = "unknown"
)

// Resolution is the tagged result of resolving a request identifier.
// Billing a request against the wrong company silently is a correctness
// bug in this domain, so fallback substitution is always observable.
type Resolution struct {
	Tenant  Tenant
	Outcome Outcome
}

var (
	// ErrUnknownTenant indicates an identifier absent from the registry.
	ErrUnknownTenant = errors.New("tenant: unknown tenant")
	// ErrPoolTimeout indicates connection acquisition exhausted its budget.
	ErrPoolTimeout = errors.New("tenant: pool acquire timeout")
)

// ConnectionError wraps a pool construction failure for one company.
type ConnectionError struct {
	TenantID int64
	Err      error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("tenant: connect tenant %d: %v", e.TenantID, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}
