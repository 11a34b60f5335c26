// Package common holds the CSV reading and writing shared by the history
// provider and the CLI export.
package common

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"fjacquet/stmt-insight/internal/dateutils"
	"fjacquet/stmt-insight/internal/logging"
	"fjacquet/stmt-insight/internal/models"

	"github.com/gocarina/gocsv"
)

// TransactionRow is the exported CSV shape of a parsed transaction.
type TransactionRow struct {
	Date         string `csv:"Date"`
	Description  string `csv:"Description"`
	Amount       string `csv:"Amount"`
	Category     string `csv:"Category"`
	Counterparty string `csv:"Counterparty"`
	Balance      string `csv:"Balance"`
	Confidence   string `csv:"Confidence"`
}

// NewTransactionRow formats tx for export. Amounts carry two decimals.
func NewTransactionRow(tx models.ParsedTransaction) TransactionRow {
	row := TransactionRow{
		Date:         dateutils.ToISODate(tx.Date),
		Description:  tx.Description,
		Amount:       tx.Amount.StringFixed(2),
		Category:     tx.Category,
		Counterparty: tx.Counterparty,
		Confidence:   strconv.FormatFloat(tx.Confidence, 'f', 2, 64),
	}
	if tx.Balance != nil {
		row.Balance = tx.Balance.StringFixed(2)
	}
	return row
}

// ReadCSVFile reads a CSV file with a header row into a slice of TCSVRow
// using the struct's csv tags.
func ReadCSVFile[TCSVRow any](filePath string, logger logging.Logger) ([]TCSVRow, error) {
	logger = logging.OrDefault(logger)
	logger.Debug("Reading CSV file", logging.Field{Key: logging.FieldFile, Value: filePath})

	file, err := os.Open(filePath) // #nosec G304 -- CLI tool reads user-provided paths
	if err != nil {
		return nil, fmt.Errorf("error opening CSV file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			logger.WithError(err).Warn("Failed to close file")
		}
	}()

	return ReadCSV[TCSVRow](file)
}

// ReadCSV reads CSV data with a header row from r.
func ReadCSV[TCSVRow any](r io.Reader) ([]TCSVRow, error) {
	var rows []TCSVRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("error parsing CSV data: %w", err)
	}
	return rows, nil
}

// WriteTransactionsCSV writes transactions to w with the given delimiter.
func WriteTransactionsCSV(w io.Writer, transactions []models.ParsedTransaction, delimiter rune) error {
	rows := make([]TransactionRow, 0, len(transactions))
	for _, tx := range transactions {
		rows = append(rows, NewTransactionRow(tx))
	}

	csvWriter := csv.NewWriter(w)
	if delimiter != 0 {
		csvWriter.Comma = delimiter
	}
	if err := gocsv.MarshalCSV(rows, gocsv.NewSafeCSVWriter(csvWriter)); err != nil {
		return fmt.Errorf("error writing CSV data: %w", err)
	}
	return nil
}

// WriteTransactionsToCSV writes transactions to csvFile, creating its
// directory when needed.
func WriteTransactionsToCSV(transactions []models.ParsedTransaction, csvFile string, delimiter rune, logger logging.Logger) error {
	if transactions == nil {
		return fmt.Errorf("cannot write nil transactions to CSV")
	}
	logger = logging.OrDefault(logger)

	if err := os.MkdirAll(filepath.Dir(csvFile), 0750); err != nil {
		return fmt.Errorf("error creating directory: %w", err)
	}
	file, err := os.Create(csvFile) // #nosec G304 -- CLI tool writes user-provided paths
	if err != nil {
		return fmt.Errorf("error creating CSV file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			logger.WithError(err).Warn("Failed to close file")
		}
	}()

	if err := WriteTransactionsCSV(file, transactions, delimiter); err != nil {
		return err
	}
	logger.Info("Wrote transactions to CSV file",
		logging.Field{Key: logging.FieldFile, Value: csvFile},
		logging.Field{Key: logging.FieldCount, Value: len(transactions)})
	return nil
}
