package ledger

import (
	"encoding/csv"
	"io"
	"strconv"
)

// WriteLedgerCSV serialises the ledger view to CSV.
func WriteLedgerCSV(w io.Writer, entries []Entry) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{"Date", "Invoice", "Client", "Debit", "Credit", "Due", "Status"}); err != nil {
		return err
	}
	for _, e := range entries {
		if err := writer.Write([]string{
			e.Date.Format("2006-01-02"),
			e.Invoice,
			e.Client,
			formatFloat(e.Debit),
			formatFloat(e.Credit),
			formatFloat(e.Due()),
			e.Status(),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
