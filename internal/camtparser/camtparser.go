// Package camtparser reads ISO 20022 CAMT.053 bank-to-customer statements.
package camtparser

import (
	"bytes"
	"time"

	"fjacquet/stmt-insight/internal/confidence"
	"fjacquet/stmt-insight/internal/currencyutils"
	"fjacquet/stmt-insight/internal/dateutils"
	"fjacquet/stmt-insight/internal/logging"
	"fjacquet/stmt-insight/internal/models"
	"fjacquet/stmt-insight/internal/parsererror"
	"fjacquet/stmt-insight/internal/textutils"
	"fjacquet/stmt-insight/internal/xmlutils"

	"gopkg.in/xmlpath.v2"
)

// Entry paths are relative to an Ntry node.
var (
	statementPath = xmlpath.MustCompile("//BkToCstmrStmt/Stmt")
	entryPath     = xmlpath.MustCompile("//Ntry")

	amountPath    = xmlpath.MustCompile("Amt")
	indicatorPath = xmlpath.MustCompile("CdtDbtInd")
	bookingDate   = xmlpath.MustCompile("BookgDt/Dt")
	bookingTime   = xmlpath.MustCompile("BookgDt/DtTm")
	valueDate     = xmlpath.MustCompile("ValDt/Dt")

	remittanceInfo = xmlpath.MustCompile("NtryDtls/TxDtls/RmtInf/Ustrd")
	entryInfo      = xmlpath.MustCompile("AddtlNtryInf")
	txInfo         = xmlpath.MustCompile("NtryDtls/TxDtls/AddtlTxInf")

	creditorName = []*xmlpath.Path{
		xmlpath.MustCompile("NtryDtls/TxDtls/RltdPties/UltmtCdtr/Nm"),
		xmlpath.MustCompile("NtryDtls/TxDtls/RltdPties/Cdtr/Nm"),
		xmlpath.MustCompile("NtryDtls/TxDtls/RltdPties/Cdtr/Pty/Nm"),
	}
	debtorName = []*xmlpath.Path{
		xmlpath.MustCompile("NtryDtls/TxDtls/RltdPties/UltmtDbtr/Nm"),
		xmlpath.MustCompile("NtryDtls/TxDtls/RltdPties/Dbtr/Nm"),
		xmlpath.MustCompile("NtryDtls/TxDtls/RltdPties/Dbtr/Pty/Nm"),
	}
)

// Detect reports whether data looks like a CAMT.053 document.
func Detect(data []byte) bool {
	return bytes.Contains(data, []byte("BkToCstmrStmt"))
}

// Parser extracts booked entries from CAMT.053 XML.
type Parser struct {
	// Now supplies the date for entries without a booking or value date.
	Now    func() time.Time
	logger logging.Logger
}

// NewParser creates a CAMT parser.
func NewParser(logger logging.Logger) *Parser {
	return &Parser{Now: time.Now, logger: logging.OrDefault(logger)}
}

// Parse returns one transaction per Ntry element. Entries whose amount
// cannot be read are skipped.
func (p *Parser) Parse(data []byte) ([]models.ParsedTransaction, error) {
	root, err := xmlutils.Parse(data)
	if err != nil {
		return nil, &parsererror.InvalidFormatError{
			ExpectedFormat:       "CAMT.053",
			ActualContentSnippet: snippet(data),
			Msg:                  err.Error(),
		}
	}
	if !xmlutils.Exists(root, statementPath) {
		return nil, &parsererror.InvalidFormatError{
			ExpectedFormat:       "CAMT.053",
			ActualContentSnippet: snippet(data),
			Msg:                  "no BkToCstmrStmt/Stmt element",
		}
	}

	transactions := []models.ParsedTransaction{}
	for i, entry := range xmlutils.Nodes(root, entryPath) {
		tx, ok := p.parseEntry(entry)
		if !ok {
			p.logger.Debug("Skipping CAMT entry",
				logging.Field{Key: logging.FieldParser, Value: confidence.StrategyCAMT.String()},
				logging.Field{Key: "entry", Value: i})
			continue
		}
		transactions = append(transactions, tx)
	}

	p.logger.Debug("Parsed CAMT statement",
		logging.Field{Key: logging.FieldCount, Value: len(transactions)})
	return transactions, nil
}

func (p *Parser) parseEntry(entry *xmlpath.Node) (models.ParsedTransaction, bool) {
	amount, ok := currencyutils.NormalizeAmount(xmlutils.First(entry, amountPath))
	if !ok {
		return models.ParsedTransaction{}, false
	}
	debit := xmlutils.First(entry, indicatorPath) == "DBIT"
	if debit {
		amount = amount.Abs().Neg()
	} else {
		amount = amount.Abs()
	}

	cues := confidence.Cues{HasAmount: true}
	date, ok := dateutils.NormalizeDate(xmlutils.First(entry, bookingDate, bookingTime, valueDate))
	cues.HasDate = ok
	if !ok {
		date = p.Now()
	}

	description := xmlutils.CleanText(xmlutils.First(entry, remittanceInfo, entryInfo, txInfo))
	if description == "" {
		description = models.DefaultDescription
	}

	var counterparty string
	if debit {
		counterparty = xmlutils.First(entry, creditorName...)
	} else {
		counterparty = xmlutils.First(entry, debtorName...)
	}
	if counterparty != "" {
		counterparty = textutils.FormatName(counterparty)
	} else {
		counterparty = textutils.ExtractCounterparty(description)
	}

	tx, err := models.NewTransactionBuilder().
		WithDate(date).
		WithDescription(description).
		WithAmount(amount).
		WithCounterparty(counterparty).
		WithConfidence(confidence.Score(confidence.StrategyCAMT, cues)).
		Build()
	if err != nil {
		return models.ParsedTransaction{}, false
	}
	return tx, true
}

func snippet(data []byte) string {
	const limit = 80
	if len(data) > limit {
		data = data[:limit]
	}
	return string(data)
}
