package tenant

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func resolveThrough(t *testing.T, mutate func(*http.Request)) Tenant {
	t.Helper()
	registry, err := NewRegistry(testTenants())
	require.NoError(t, err)

	var got Tenant
	handler := Middleware(registry, discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ten, ok := FromContext(r.Context())
		require.True(t, ok)
		got = ten
	}))

	req := httptest.NewRequest(http.MethodGet, "/invoices", nil)
	mutate(req)
	handler.ServeHTTP(httptest.NewRecorder(), req)
	return got
}

func TestMiddlewareResolvesHeader(t *testing.T) {
	got := resolveThrough(t, func(r *http.Request) {
		r.Header.Set(HeaderCompanyID, "2")
	})
	require.Equal(t, int64(2), got.ID)
}

func TestMiddlewareFallsBackToQueryParam(t *testing.T) {
	got := resolveThrough(t, func(r *http.Request) {
		r.URL.RawQuery = "company=2"
	})
	require.Equal(t, int64(2), got.ID)
}

func TestMiddlewareHeaderWinsOverQueryParam(t *testing.T) {
	got := resolveThrough(t, func(r *http.Request) {
		r.Header.Set(HeaderCompanyID, "1")
		r.URL.RawQuery = "company=2"
	})
	require.Equal(t, int64(1), got.ID)
}

func TestMiddlewareDefaultsWithoutIdentifier(t *testing.T) {
	got := resolveThrough(t, func(r *http.Request) {})
	require.Equal(t, int64(1), got.ID)
}

func TestMiddlewareDefaultsOnUnknownIdentifier(t *testing.T) {
	got := resolveThrough(t, func(r *http.Request) {
		r.Header.Set(HeaderCompanyID, "999")
	})
	require.Equal(t, int64(1), got.ID)
}
