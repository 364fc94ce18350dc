package invoices

import "github.com/shopspring/decimal"

// Totals holds the derived monetary fields of a document.
type Totals struct {
	TaxableAmount float64
	CGSTAmount    float64
	SGSTAmount    float64
	IGSTAmount    float64
	TotalAmount   float64
	RoundOff      float64
	DebitAmount   float64
	CreditAmount  float64
}

var hundred = decimal.NewFromInt(100)

// CalculateTotals derives the tax split, round-off and ledger amounts
// from a subtotal. IGST stays zero: every supply is treated as
// intra-state, matching the data this system was built against. The
// round-off brings the payable amount to the nearest rupee; for SALE
// documents the rounded total lands on the debit side, for PURCHASE on
// the credit side.
func CalculateTotals(subtotal, cgstRate, sgstRate float64, txType TransactionType) Totals {
	sub := decimal.NewFromFloat(subtotal)
	cgst := sub.Mul(decimal.NewFromFloat(cgstRate)).Div(hundred)
	sgst := sub.Mul(decimal.NewFromFloat(sgstRate)).Div(hundred)
	total := sub.Add(cgst).Add(sgst)
	rounded := total.Round(0)
	roundOff := rounded.Sub(total)

	t := Totals{
		TaxableAmount: sub.InexactFloat64(),
		CGSTAmount:    cgst.Round(2).InexactFloat64(),
		SGSTAmount:    sgst.Round(2).InexactFloat64(),
		IGSTAmount:    0,
		TotalAmount:   total.Round(2).InexactFloat64(),
		RoundOff:      roundOff.Round(2).InexactFloat64(),
	}
	switch txType {
	case TypePurchase:
		t.CreditAmount = rounded.InexactFloat64()
	default:
		t.DebitAmount = rounded.InexactFloat64()
	}
	return t
}
