package tenant

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func testTenants() []Tenant {
	return []Tenant{
		{ID: 1, Name: "Rajkamal Cement Traders", ShortName: "RKCT", DSN: "postgres://localhost/rkct", InvoicePrefix: "RKCT", QuotationPrefix: "QT/RKCT"},
		{ID: 2, Name: "Shree Hardware Supplies", ShortName: "SHS", DSN: "postgres://localhost/shs", InvoicePrefix: "SHS", QuotationPrefix: "SHS-Q"},
	}
}

func TestNewRegistryValidates(t *testing.T) {
	_, err := NewRegistry(nil)
	require.Error(t, err)

	_, err = NewRegistry([]Tenant{{ID: 0, Name: "bad", DSN: "postgres://x"}})
	require.Error(t, err)

	_, err = NewRegistry([]Tenant{{ID: 1, Name: "no dsn"}})
	require.Error(t, err)

	dupe := testTenants()
	dupe[1].ID = 1
	_, err = NewRegistry(dupe)
	require.Error(t, err)
}

func TestRegistryGetAndDefault(t *testing.T) {
	r, err := NewRegistry(testTenants())
	require.NoError(t, err)

	ten, ok := r.Get(2)
	require.True(t, ok)
	require.Equal(t, "SHS", ten.ShortName)

	_, ok = r.Get(99)
	require.False(t, ok)

	require.Equal(t, int64(1), r.Default().ID)
	require.Len(t, r.All(), 2)
}

func TestRegistryResolve(t *testing.T) {
	r, err := NewRegistry(testTenants())
	require.NoError(t, err)

	res := r.Resolve("2")
	require.Equal(t, OutcomeResolved, res.Outcome)
	require.Equal(t, int64(2), res.Tenant.ID)

	res = r.Resolve("")
	require.Equal(t, OutcomeFallback, res.Outcome)
	require.Equal(t, int64(1), res.Tenant.ID)

	res = r.Resolve("not-a-number")
	require.Equal(t, OutcomeUnknown, res.Outcome)
	require.Equal(t, int64(1), res.Tenant.ID)

	res = r.Resolve("99")
	require.Equal(t, OutcomeUnknown, res.Outcome)
	require.Equal(t, int64(1), res.Tenant.ID)
}

func TestLoadRegistry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tenants.json")
	require.NoError(t, os.WriteFile(path, []byte(`[
		{"id": 1, "name": "Rajkamal Cement Traders", "short_name": "RKCT",
		 "dsn": "postgres://localhost/rkct", "invoice_prefix": "RKCT",
		 "quotation_prefix": "QT/RKCT"}
	]`), 0o600))

	r, err := LoadRegistry(path)
	require.NoError(t, err)
	ten, ok := r.Get(1)
	require.True(t, ok)
	require.Equal(t, "QT/RKCT", ten.QuotationPrefix)

	_, err = LoadRegistry(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}
