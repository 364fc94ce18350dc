package sequence

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Ashish-Kr-1/billing-sys-rkct-sub000/internal/tenant"
)

// DocType selects which document family a number belongs to.
type DocType string

const (
	DocTypeInvoice   DocType = "invoice"
	DocTypeQuotation DocType = "quotation"
)

// ErrUnconfiguredPrefix indicates the company has no prefix mapped for
// the requested document type.
var ErrUnconfiguredPrefix = errors.New("sequence: no prefix configured")

// Querier is satisfied by pgx.Tx and pgxpool.Pool. Next must run on the
// same transaction as the insert that will use the number.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// SALE and PURCHASE documents draw from one number namespace, so the
// invoice scan covers both. RECEIPT rows reuse their sale's number and
// must never feed the sequence.
var lastNumberQuery = map[DocType]string{
	DocTypeInvoice: `SELECT invoice_no FROM transactions
WHERE transaction_type IN ('SALE', 'PURCHASE') AND invoice_no LIKE $1
ORDER BY created_at DESC, id DESC LIMIT 1`,
	DocTypeQuotation: `SELECT quotation_no FROM quotations
WHERE quotation_no LIKE $1
ORDER BY created_at DESC, id DESC LIMIT 1`,
}

// FinancialYear labels the 12-month accounting period containing at.
// April 1 of year N starts the period labelled "N-(N+1 mod 100)"; a date
// in November 2025 and one in February 2026 both yield "2025-26".
func FinancialYear(at time.Time) string {
	start := at.Year()
	if at.Month() <= time.March {
		start--
	}
	return fmt.Sprintf("%d-%02d", start, (start+1)%100)
}

// Next computes the next document number in the form PREFIX/FY/NNN by
// reading the highest existing number under the company's prefix and
// incrementing its trailing sequence. Numbers of cancelled documents
// still match the lookup, so a cancelled number is never reissued. The
// read does not place a row lock; the unique index on the number column
// is the correctness backstop for concurrent callers.
func Next(ctx context.Context, q Querier, t tenant.Tenant, docType DocType, now time.Time) (string, error) {
	prefix := prefixFor(t, docType)
	if prefix == "" {
		return "", fmt.Errorf("%w: tenant %d, type %s", ErrUnconfiguredPrefix, t.ID, docType)
	}
	fullPrefix := prefix + "/" + FinancialYear(now)

	var last string
	seq := 1
	err := q.QueryRow(ctx, lastNumberQuery[docType], fullPrefix+"/%").Scan(&last)
	switch {
	case err == nil:
		n, perr := lastSegment(last)
		if perr != nil {
			return "", fmt.Errorf("sequence: parse %q: %w", last, perr)
		}
		seq = n + 1
	case errors.Is(err, pgx.ErrNoRows):
		// fresh financial year, start at 1
	default:
		return "", fmt.Errorf("sequence: last number for %s: %w", fullPrefix, err)
	}

	return fmt.Sprintf("%s/%03d", fullPrefix, seq), nil
}

// lastSegment parses the component after the final slash as the sequence.
// Prefixes may themselves contain slashes (e.g. QT/RKCT), so the segment
// count is never assumed.
func lastSegment(number string) (int, error) {
	idx := strings.LastIndex(number, "/")
	if idx < 0 || idx == len(number)-1 {
		return 0, fmt.Errorf("no sequence segment in %q", number)
	}
	return strconv.Atoi(number[idx+1:])
}

func prefixFor(t tenant.Tenant, docType DocType) string {
	switch docType {
	case DocTypeQuotation:
		return t.QuotationPrefix
	default:
		return t.InvoicePrefix
	}
}
