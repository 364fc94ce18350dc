package sequence

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/Ashish-Kr-1/billing-sys-rkct-sub000/internal/tenant"
)

type fakeRow struct {
	value string
	err   error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*(dest[0].(*string)) = r.value
	return nil
}

type fakeQuerier struct {
	last    string
	err     error
	gotSQL  string
	gotArgs []any
}

func (q *fakeQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	q.gotSQL = sql
	q.gotArgs = args
	return fakeRow{value: q.last, err: q.err}
}

var testTenant = tenant.Tenant{
	ID:              1,
	Name:            "Rajkamal Cement Traders",
	ShortName:       "RKCT",
	InvoicePrefix:   "RKCT",
	QuotationPrefix: "QT/RKCT",
}

func TestFinancialYear(t *testing.T) {
	cases := []struct {
		at   time.Time
		want string
	}{
		{time.Date(2026, time.February, 15, 0, 0, 0, 0, time.UTC), "2025-26"},
		{time.Date(2026, time.March, 31, 23, 59, 0, 0, time.UTC), "2025-26"},
		{time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC), "2026-27"},
		{time.Date(2025, time.November, 5, 0, 0, 0, 0, time.UTC), "2025-26"},
		{time.Date(2025, time.January, 2, 0, 0, 0, 0, time.UTC), "2024-25"},
		{time.Date(2099, time.June, 1, 0, 0, 0, 0, time.UTC), "2099-00"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, FinancialYear(tc.at), "at %s", tc.at)
	}
}

func TestNextStartsFreshYearAtOne(t *testing.T) {
	q := &fakeQuerier{err: pgx.ErrNoRows}
	now := time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC)

	number, err := Next(context.Background(), q, testTenant, DocTypeInvoice, now)
	require.NoError(t, err)
	require.Equal(t, "RKCT/2025-26/001", number)
	require.Equal(t, []any{"RKCT/2025-26/%"}, q.gotArgs)
}

func TestNextIncrementsHighestExisting(t *testing.T) {
	q := &fakeQuerier{last: "RKCT/2025-26/007"}
	now := time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC)

	number, err := Next(context.Background(), q, testTenant, DocTypeInvoice, now)
	require.NoError(t, err)
	require.Equal(t, "RKCT/2025-26/008", number)
}

func TestNextSequenceIsMonotonic(t *testing.T) {
	q := &fakeQuerier{err: pgx.ErrNoRows}
	now := time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC)

	var got []string
	for i := 0; i < 3; i++ {
		number, err := Next(context.Background(), q, testTenant, DocTypeInvoice, now)
		require.NoError(t, err)
		got = append(got, number)
		q.last = number
		q.err = nil
	}
	require.Equal(t, []string{"RKCT/2025-26/001", "RKCT/2025-26/002", "RKCT/2025-26/003"}, got)
}

func TestNextResetsAcrossFinancialYears(t *testing.T) {
	q := &fakeQuerier{err: pgx.ErrNoRows}
	now := time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC)

	number, err := Next(context.Background(), q, testTenant, DocTypeInvoice, now)
	require.NoError(t, err)
	require.Equal(t, "RKCT/2026-27/001", number)
}

func TestNextContinuesPastCancelledNumbers(t *testing.T) {
	// The lookup query carries no status filter, so the number of a
	// cancelled document still counts as taken.
	q := &fakeQuerier{last: "RKCT/2025-26/004"}
	now := time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC)

	number, err := Next(context.Background(), q, testTenant, DocTypeInvoice, now)
	require.NoError(t, err)
	require.Equal(t, "RKCT/2025-26/005", number)
	require.NotContains(t, q.gotSQL, "status")
}

func TestNextScansSalesAndPurchases(t *testing.T) {
	// SALE and PURCHASE share one namespace: a purchase holding the
	// highest number must push the next sale past it.
	q := &fakeQuerier{last: "RKCT/2025-26/009"}
	now := time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC)

	number, err := Next(context.Background(), q, testTenant, DocTypeInvoice, now)
	require.NoError(t, err)
	require.Equal(t, "RKCT/2025-26/010", number)
	require.Contains(t, q.gotSQL, "'SALE'")
	require.Contains(t, q.gotSQL, "'PURCHASE'")
	require.NotContains(t, q.gotSQL, "'RECEIPT'")
}

func TestNextHandlesSlashedPrefix(t *testing.T) {
	q := &fakeQuerier{last: "QT/RKCT/2025-26/012"}
	now := time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC)

	number, err := Next(context.Background(), q, testTenant, DocTypeQuotation, now)
	require.NoError(t, err)
	require.Equal(t, "QT/RKCT/2025-26/013", number)
}

func TestNextGrowsPastPaddingWidth(t *testing.T) {
	q := &fakeQuerier{last: "RKCT/2025-26/999"}
	now := time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC)

	number, err := Next(context.Background(), q, testTenant, DocTypeInvoice, now)
	require.NoError(t, err)
	require.Equal(t, "RKCT/2025-26/1000", number)
}

func TestNextRejectsUnconfiguredPrefix(t *testing.T) {
	q := &fakeQuerier{err: pgx.ErrNoRows}
	bare := tenant.Tenant{ID: 9, ShortName: "BARE"}

	_, err := Next(context.Background(), q, bare, DocTypeInvoice, time.Now())
	require.ErrorIs(t, err, ErrUnconfiguredPrefix)
}

func TestNextRejectsMalformedStoredNumber(t *testing.T) {
	q := &fakeQuerier{last: "RKCT-2025-no-slash-tail/"}
	now := time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC)

	_, err := Next(context.Background(), q, testTenant, DocTypeInvoice, now)
	require.Error(t, err)
}

func TestLastSegment(t *testing.T) {
	n, err := lastSegment("QT/RKCT/2025-26/042")
	require.NoError(t, err)
	require.Equal(t, 42, n)

	_, err = lastSegment("noslash")
	require.Error(t, err)
}
