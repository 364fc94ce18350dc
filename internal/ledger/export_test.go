package ledger

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWriteLedgerCSV(t *testing.T) {
	entries := []Entry{
		{
			Date:    time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC),
			Invoice: "RKCT/2025-26/001",
			Client:  "Sharma Builders",
			Debit:   20000,
			Credit:  15000,
		},
		{
			Date:    time.Date(2025, time.June, 12, 0, 0, 0, 0, time.UTC),
			Invoice: "RKCT/2025-26/002",
			Client:  "Verma Constructions",
			Debit:   10000,
			Credit:  10000,
		},
	}

	buf := new(bytes.Buffer)
	require.NoError(t, WriteLedgerCSV(buf, entries))

	records, err := csv.NewReader(buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	require.Equal(t, []string{"Date", "Invoice", "Client", "Debit", "Credit", "Due", "Status"}, records[0])
	require.Equal(t, []string{"2025-06-01", "RKCT/2025-26/001", "Sharma Builders", "20000.00", "15000.00", "5000.00", "Pending"}, records[1])
	require.Equal(t, "Paid", records[2][6])
}

func TestWriteLedgerCSVEmpty(t *testing.T) {
	buf := new(bytes.Buffer)
	require.NoError(t, WriteLedgerCSV(buf, nil))

	records, err := csv.NewReader(buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 1)
}
