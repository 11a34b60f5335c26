// Package csvparser maps CSV statements with arbitrary header names onto
// transactions, falling back to a cell-scanning heuristic for files without
// a header row.
package csvparser

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"fjacquet/stmt-insight/internal/confidence"
	"fjacquet/stmt-insight/internal/currencyutils"
	"fjacquet/stmt-insight/internal/dateutils"
	"fjacquet/stmt-insight/internal/lineparser"
	"fjacquet/stmt-insight/internal/logging"
	"fjacquet/stmt-insight/internal/models"
	"fjacquet/stmt-insight/internal/textutils"

	"github.com/shopspring/decimal"
)

var (
	debitTypeRe  = regexp.MustCompile(`(?i)^(?:dr|d|debit|withdrawal|out)\b`)
	creditTypeRe = regexp.MustCompile(`(?i)^(?:cr|c|credit|deposit|in)\b`)
)

// Parser parses CSV statements.
type Parser struct {
	// Now supplies the date for rows without a parseable date.
	Now    func() time.Time
	lines  *lineparser.Parser
	logger logging.Logger
}

// NewParser creates a CSV parser. Headerless rows are delegated to lines.
func NewParser(lines *lineparser.Parser, logger logging.Logger) *Parser {
	logger = logging.OrDefault(logger)
	if lines == nil {
		lines = lineparser.NewParser(logger)
	}
	return &Parser{Now: time.Now, lines: lines, logger: logger}
}

// DetectDelimiter picks the most frequent of ',', ';', tab and '|' in line.
func DetectDelimiter(line string) rune {
	best, bestCount := ',', 0
	for _, d := range []rune{',', ';', '\t', '|'} {
		if n := strings.Count(line, string(d)); n > bestCount {
			best, bestCount = d, n
		}
	}
	return best
}

// LooksLikeHeader reports whether line is a delimited header row naming at
// least a date column and an amount-bearing column.
func LooksLikeHeader(line string) bool {
	delim := DetectDelimiter(line)
	if !strings.ContainsRune(line, delim) {
		return false
	}
	cols := ResolveColumns(strings.Split(line, string(delim)))
	return cols.Has(ColumnDate) && cols.HasAmountSignal()
}

func readRows(data []byte) ([][]string, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	firstLine := string(data)
	if i := strings.IndexByte(firstLine, '\n'); i >= 0 {
		firstLine = firstLine[:i]
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = DetectDelimiter(firstLine)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	var rows [][]string
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV: %w", err)
		}
		if isBlankRow(row) {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// ParseWithHeaders treats the first row as a header row. It returns an
// empty slice when the headers cannot be mapped to any usable column.
func (p *Parser) ParseWithHeaders(data []byte) ([]models.ParsedTransaction, error) {
	transactions := []models.ParsedTransaction{}
	rows, err := readRows(data)
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return transactions, nil
	}

	cols := ResolveColumns(rows[0])
	if !cols.Usable() {
		p.logger.Debug("CSV headers did not map to any transaction column",
			logging.Field{Key: "headers", Value: rows[0]})
		return transactions, nil
	}

	for i, row := range rows[1:] {
		tx, ok := p.parseRow(cols, row)
		if !ok {
			p.logger.Debug("Dropping CSV row",
				logging.Field{Key: logging.FieldParser, Value: confidence.StrategyCSVHeader.String()},
				logging.Field{Key: logging.FieldLine, Value: i + 2})
			continue
		}
		transactions = append(transactions, tx)
	}
	return transactions, nil
}

// ParseHeaderless scans every row with the cell heuristic.
func (p *Parser) ParseHeaderless(data []byte) ([]models.ParsedTransaction, error) {
	transactions := []models.ParsedTransaction{}
	rows, err := readRows(data)
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		if lineparser.IsHeaderLine(strings.Join(row, " ")) {
			continue
		}
		if tx, ok := p.lines.ScanCells(row); ok {
			transactions = append(transactions, tx)
		}
	}
	return transactions, nil
}

func (p *Parser) parseRow(cols ColumnMap, row []string) (models.ParsedTransaction, bool) {
	cues := confidence.Cues{}
	amount := decimal.Zero

	if cols.Has(ColumnAmount) {
		if a, ok := currencyutils.NormalizeAmount(cols.cell(row, ColumnAmount)); ok {
			amount, cues.HasAmount = a, true
			kind := cols.cell(row, ColumnType)
			switch {
			case kind != "" && debitTypeRe.MatchString(kind):
				amount = amount.Abs().Neg()
			case kind != "" && creditTypeRe.MatchString(kind):
				amount = amount.Abs()
			}
		}
	} else {
		debit, okDebit := currencyutils.NormalizeAmount(cols.cell(row, ColumnDebit))
		credit, okCredit := currencyutils.NormalizeAmount(cols.cell(row, ColumnCredit))
		if okDebit || okCredit {
			amount = credit.Abs().Sub(debit.Abs())
			cues.HasAmount = true
		}
	}

	description := textutils.CleanDescription(cols.cell(row, ColumnDescription))
	if description == "" && !cues.HasAmount {
		return models.ParsedTransaction{}, false
	}
	if description == "" {
		description = models.DefaultDescription
	}

	date, ok := dateutils.NormalizeDate(cols.cell(row, ColumnDate))
	cues.HasDate = ok
	if !ok {
		date = p.Now()
	}

	counterparty := cols.cell(row, ColumnCounterparty)
	if counterparty != "" {
		counterparty = textutils.FormatName(counterparty)
	} else {
		counterparty = textutils.ExtractCounterparty(description)
	}

	b := models.NewTransactionBuilder().
		WithDate(date).
		WithDescription(description).
		WithAmount(amount).
		WithCategory(cols.cell(row, ColumnCategory)).
		WithCounterparty(counterparty).
		WithConfidence(confidence.Score(confidence.StrategyCSVHeader, cues))
	if balance, ok := currencyutils.NormalizeAmount(cols.cell(row, ColumnBalance)); ok {
		b.WithBalance(balance)
	}

	tx, err := b.Build()
	if err != nil {
		return models.ParsedTransaction{}, false
	}
	return tx, true
}
