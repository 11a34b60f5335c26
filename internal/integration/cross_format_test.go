package integration

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"fjacquet/stmt-insight/internal/anomaly"
	"fjacquet/stmt-insight/internal/common"
	"fjacquet/stmt-insight/internal/history"
	"fjacquet/stmt-insight/internal/logging"
	"fjacquet/stmt-insight/internal/models"
	"fjacquet/stmt-insight/internal/parser"
	"fjacquet/stmt-insight/internal/pdfparser"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const csvStatement = `Date,Description,Amount
2025-11-12,Starbucks Coffee,-4.50
2025-11-25,Salary November,2500.00
`

const structuredStatement = `Date: 12 Nov 2025
Description: Starbucks Coffee
Amount: -4.50

Date: 25 Nov 2025
Description: Salary November
Amount: 2500.00
`

const camtStatement = `<?xml version="1.0" encoding="UTF-8"?>
<Document xmlns="urn:iso:std:iso:20022:tech:xsd:camt.053.001.04">
  <BkToCstmrStmt>
    <Stmt>
      <Ntry>
        <Amt Ccy="EUR">4.50</Amt>
        <CdtDbtInd>DBIT</CdtDbtInd>
        <BookgDt><Dt>2025-11-12</Dt></BookgDt>
        <AddtlNtryInf>Starbucks Coffee</AddtlNtryInf>
      </Ntry>
      <Ntry>
        <Amt Ccy="EUR">2500.00</Amt>
        <CdtDbtInd>CRDT</CdtDbtInd>
        <BookgDt><Dt>2025-11-25</Dt></BookgDt>
        <AddtlNtryInf>Salary November</AddtlNtryInf>
      </Ntry>
    </Stmt>
  </BkToCstmrStmt>
</Document>`

var fixedNow = time.Date(2025, 12, 15, 9, 0, 0, 0, time.UTC)

func newDispatcher(pdfText string) *parser.Dispatcher {
	d := parser.NewDispatcher(pdfparser.NewMockPDFExtractor(pdfText, nil), nil, logging.NewMockLogger())
	d.SetClock(func() time.Time { return fixedNow })
	return d
}

// TestCrossFormatConsistency checks that one statement yields the same
// dates, amounts and categories whichever format carries it.
func TestCrossFormatConsistency(t *testing.T) {
	ctx := context.Background()
	d := newDispatcher(structuredStatement)

	inputs := map[string]func() ([]models.ParsedTransaction, error){
		"csv":        func() ([]models.ParsedTransaction, error) { return d.ParseFile(ctx, []byte(csvStatement), "export.csv") },
		"camt":       func() ([]models.ParsedTransaction, error) { return d.ParseFile(ctx, []byte(camtStatement), "camt053.xml") },
		"structured": func() ([]models.ParsedTransaction, error) { return d.ParseText(ctx, structuredStatement) },
		"pdf":        func() ([]models.ParsedTransaction, error) { return d.ParseFile(ctx, []byte("%PDF-1.7"), "statement.pdf") },
	}

	wantDates := []time.Time{
		time.Date(2025, 11, 12, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 11, 25, 0, 0, 0, 0, time.UTC),
	}
	wantAmounts := []decimal.Decimal{decimal.RequireFromString("-4.50"), decimal.RequireFromString("2500")}
	wantCategories := []string{"Food & Dining", "Income"}

	for name, parse := range inputs {
		t.Run(name, func(t *testing.T) {
			txs, err := parse()
			require.NoError(t, err)
			require.Len(t, txs, 2)
			for i, tx := range txs {
				assert.True(t, wantDates[i].Equal(tx.Date), "date %d: %s", i, tx.Date)
				assert.True(t, wantAmounts[i].Equal(tx.Amount), "amount %d: %s", i, tx.Amount)
				assert.Equal(t, wantCategories[i], tx.Category)
				assert.Greater(t, tx.Confidence, 0.0)
				assert.LessOrEqual(t, tx.Confidence, 1.0)
			}
		})
	}
}

// TestCSVExportHeadersAreStable checks that every format exports the same
// CSV columns.
func TestCSVExportHeadersAreStable(t *testing.T) {
	ctx := context.Background()
	d := newDispatcher("")
	dir := t.TempDir()
	logger := logging.NewMockLogger()

	fromCSV, err := d.ParseFile(ctx, []byte(csvStatement), "export.csv")
	require.NoError(t, err)
	fromCAMT, err := d.ParseFile(ctx, []byte(camtStatement), "camt053.xml")
	require.NoError(t, err)

	var headers [][]string
	for name, txs := range map[string][]models.ParsedTransaction{"csv": fromCSV, "camt": fromCAMT} {
		path := filepath.Join(dir, name+".csv")
		require.NoError(t, common.WriteTransactionsToCSV(txs, path, ',', logger))
		headers = append(headers, readHeader(t, path))
	}
	require.Len(t, headers, 2)
	assert.Equal(t, headers[0], headers[1])
	assert.Equal(t, []string{"Date", "Description", "Amount", "Category", "Counterparty", "Balance", "Confidence"}, headers[0])
}

// TestExtractedTransactionsFeedAnomalyScoring runs extracted records
// through the CSV history provider and the anomaly scorer.
func TestExtractedTransactionsFeedAnomalyScoring(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "history.csv")

	rows := "ID,Organization,Date,Description,Amount,Category,GroupID\n"
	for i, day := range []string{"03", "04", "05", "06", "07", "10", "11", "12", "13", "14", "17", "18"} {
		rows += "h" + day + ",org-1,2025-11-" + day + ",Coffee order " + string(rune('A'+i)) + ",-5.00,Food & Dining,\n"
	}
	require.NoError(t, os.WriteFile(path, []byte(rows), 0o600))

	scorer := anomaly.NewScorer(history.NewCSVProvider(path, logging.NewMockLogger()), anomaly.DefaultConfig(), logging.NewMockLogger())
	scorer.Now = func() time.Time { return fixedNow }

	txs, err := newDispatcher("").ParseText(ctx, "Date: 13 Dec 2025\nDescription: Starbucks crypto top-up\nAmount: -2000.00")
	require.NoError(t, err)
	require.Len(t, txs, 1)

	cand := models.Candidate{
		ID:          "new",
		Date:        txs[0].Date,
		Description: txs[0].Description,
		Amount:      txs[0].Amount,
		Category:    txs[0].Category,
	}
	result, err := scorer.Score(ctx, "org-1", cand)
	require.NoError(t, err)
	// flat history has no spread, so only category, round number, weekend
	// and term rules fire
	assert.True(t, result.IsAnomaly)
	assert.Equal(t, 90, result.Score)
	assert.Len(t, result.Reasons, 5)
}

func readHeader(t *testing.T, path string) []string {
	t.Helper()
	file, err := os.Open(path) // #nosec G304 -- test file
	require.NoError(t, err)
	defer func() { _ = file.Close() }()
	header, err := csv.NewReader(file).Read()
	require.NoError(t, err)
	return header
}
