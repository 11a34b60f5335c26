package common

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"fjacquet/stmt-insight/internal/logging"
	"fjacquet/stmt-insight/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTransactions() []models.ParsedTransaction {
	balance := decimal.RequireFromString("18420.5")
	return []models.ParsedTransaction{
		{
			Date:         time.Date(2025, 12, 11, 0, 0, 0, 0, time.UTC),
			Description:  "STARBUCKS COFFEE MUMBAI",
			Amount:       decimal.RequireFromString("-420"),
			Category:     "Food & Dining",
			Counterparty: "Starbucks",
			Balance:      &balance,
			Confidence:   0.85,
		},
		{
			Date:        time.Date(2025, 12, 12, 0, 0, 0, 0, time.UTC),
			Description: "Salary, December",
			Amount:      decimal.RequireFromString("50000"),
			Confidence:  0.7,
		},
	}
}

func TestWriteTransactionsCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTransactionsCSV(&buf, sampleTransactions(), ','))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Date,Description,Amount,Category,Counterparty,Balance,Confidence", lines[0])
	assert.Equal(t, "2025-12-11,STARBUCKS COFFEE MUMBAI,-420.00,Food & Dining,Starbucks,18420.50,0.85", lines[1])
	assert.Equal(t, `2025-12-12,"Salary, December",50000.00,,,,0.70`, lines[2])
}

func TestWriteTransactionsCSV_Semicolon(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTransactionsCSV(&buf, sampleTransactions()[:1], ';'))
	assert.True(t, strings.HasPrefix(buf.String(), "Date;Description;Amount"))
}

func TestWriteAndReadCSVFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "transactions.csv")
	logger := logging.NewMockLogger()

	require.NoError(t, WriteTransactionsToCSV(sampleTransactions(), path, ',', logger))
	assert.True(t, logger.HasEntry("INFO", "Wrote transactions to CSV file"))

	rows, err := ReadCSVFile[TransactionRow](path, logger)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Salary, December", rows[1].Description)
	assert.Equal(t, "-420.00", rows[0].Amount)
}

func TestWriteTransactionsToCSV_Errors(t *testing.T) {
	assert.Error(t, WriteTransactionsToCSV(nil, filepath.Join(t.TempDir(), "x.csv"), ',', nil))

	_, err := ReadCSVFile[TransactionRow](filepath.Join(t.TempDir(), "missing.csv"), nil)
	assert.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

