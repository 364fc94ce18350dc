package invoices

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCalculateTotalsEvenSplit(t *testing.T) {
	totals := CalculateTotals(10000, 9, 9, TypeSale)

	require.Equal(t, float64(10000), totals.TaxableAmount)
	require.Equal(t, float64(900), totals.CGSTAmount)
	require.Equal(t, float64(900), totals.SGSTAmount)
	require.Equal(t, float64(0), totals.IGSTAmount)
	require.Equal(t, float64(11800), totals.TotalAmount)
	require.Equal(t, float64(0), totals.RoundOff)
	require.Equal(t, float64(11800), totals.DebitAmount)
	require.Equal(t, float64(0), totals.CreditAmount)
}

func TestCalculateTotalsRoundOff(t *testing.T) {
	totals := CalculateTotals(1010.55, 9, 9, TypeSale)

	// 1010.55 * 1.18 = 1192.449, payable rounds down to 1192
	require.Equal(t, float64(1192.45), totals.TotalAmount)
	require.Equal(t, float64(-0.45), totals.RoundOff)
	require.Equal(t, float64(1192), totals.DebitAmount)
}

func TestCalculateTotalsRoundsUp(t *testing.T) {
	totals := CalculateTotals(1016.95, 9, 9, TypeSale)

	// 1016.95 * 1.18 = 1200.001, payable rounds to 1200
	require.Equal(t, float64(1200), totals.DebitAmount)
	require.Equal(t, float64(0), totals.CreditAmount)
}

func TestCalculateTotalsPurchaseCreditsLedger(t *testing.T) {
	totals := CalculateTotals(5000, 6, 6, TypePurchase)

	require.Equal(t, float64(0), totals.DebitAmount)
	require.Equal(t, float64(5600), totals.CreditAmount)
}

func TestCalculateTotalsZeroRates(t *testing.T) {
	totals := CalculateTotals(7500, 0, 0, TypeSale)

	require.Equal(t, float64(0), totals.CGSTAmount)
	require.Equal(t, float64(0), totals.SGSTAmount)
	require.Equal(t, float64(7500), totals.TotalAmount)
	require.Equal(t, float64(7500), totals.DebitAmount)
}
