package sequence

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/Ashish-Kr-1/billing-sys-rkct-sub000/internal/tenant"
)

func newTestLocker(t *testing.T) (*Locker, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewLocker(client), srv
}

func TestLockerScopesKeyPerTenantTypeAndYear(t *testing.T) {
	locker, srv := newTestLocker(t)
	ten := tenant.Tenant{ID: 1, ShortName: "RKCT", InvoicePrefix: "RKCT", QuotationPrefix: "QT/RKCT"}
	now := time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC)

	lock, err := locker.Acquire(context.Background(), ten, DocTypeInvoice, now)
	require.NoError(t, err)
	defer func() { _ = lock.Release(context.Background()) }()

	require.True(t, srv.Exists("seq:RKCT:invoice:2025-26"))
}

func TestLockerReleaseAllowsReacquire(t *testing.T) {
	locker, _ := newTestLocker(t)
	ten := tenant.Tenant{ID: 1, ShortName: "RKCT", InvoicePrefix: "RKCT"}
	now := time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC)

	lock, err := locker.Acquire(context.Background(), ten, DocTypeInvoice, now)
	require.NoError(t, err)
	require.NoError(t, lock.Release(context.Background()))

	again, err := locker.Acquire(context.Background(), ten, DocTypeInvoice, now)
	require.NoError(t, err)
	require.NoError(t, again.Release(context.Background()))
}

func TestLockerIndependentScopesDoNotContend(t *testing.T) {
	locker, _ := newTestLocker(t)
	ten := tenant.Tenant{ID: 1, ShortName: "RKCT", InvoicePrefix: "RKCT", QuotationPrefix: "QT/RKCT"}
	other := tenant.Tenant{ID: 2, ShortName: "SHS", InvoicePrefix: "SHS"}
	now := time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC)

	a, err := locker.Acquire(context.Background(), ten, DocTypeInvoice, now)
	require.NoError(t, err)
	defer func() { _ = a.Release(context.Background()) }()

	b, err := locker.Acquire(context.Background(), ten, DocTypeQuotation, now)
	require.NoError(t, err)
	defer func() { _ = b.Release(context.Background()) }()

	c, err := locker.Acquire(context.Background(), other, DocTypeInvoice, now)
	require.NoError(t, err)
	defer func() { _ = c.Release(context.Background()) }()
}
