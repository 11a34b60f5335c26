// Package structuredparser extracts transactions from "Label: value" text,
// one block of labeled lines per transaction.
package structuredparser

import (
	"regexp"
	"strings"
	"time"

	"fjacquet/stmt-insight/internal/confidence"
	"fjacquet/stmt-insight/internal/currencyutils"
	"fjacquet/stmt-insight/internal/dateutils"
	"fjacquet/stmt-insight/internal/logging"
	"fjacquet/stmt-insight/internal/models"
	"fjacquet/stmt-insight/internal/textutils"

	"github.com/shopspring/decimal"
)

var (
	dateLabelRe         = regexp.MustCompile(`(?i)^\s*(?:transaction\s+)?date\s*:\s*(.*)$`)
	descriptionLabelRe  = regexp.MustCompile(`(?i)^\s*(?:description|narration|details)\s*:\s*(.*)$`)
	amountLabelRe       = regexp.MustCompile(`(?i)^\s*amount\s*:\s*(.*)$`)
	balanceLabelRe      = regexp.MustCompile(`(?i)^\s*balance(?:\s+after\s+transaction)?\s*:\s*(.*)$`)
	categoryLabelRe     = regexp.MustCompile(`(?i)^\s*category\s*:\s*(.*)$`)
	counterpartyLabelRe = regexp.MustCompile(`(?i)^\s*(?:counterparty|merchant|payee)\s*:\s*(.*)$`)
	typeLabelRe         = regexp.MustCompile(`(?i)^\s*(?:type|dr/cr|transaction\s+type)\s*:\s*(.*)$`)

	debitTypeRe  = regexp.MustCompile(`(?i)\b(?:dr|debit|withdrawal)\b`)
	creditTypeRe = regexp.MustCompile(`(?i)\b(?:cr|credit|deposit)\b`)

	detectLabels = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bdate\s*:`),
		regexp.MustCompile(`(?i)\bdescription\s*:`),
		regexp.MustCompile(`(?i)\bamount\s*:`),
	}
)

// Detect reports whether text uses at least two of the Date:, Description:
// and Amount: labels.
func Detect(text string) bool {
	found := 0
	for _, re := range detectLabels {
		if re.MatchString(text) {
			found++
		}
	}
	return found >= 2
}

// Parser extracts transactions from labeled blocks.
type Parser struct {
	// Now supplies the date used for blocks without a parseable Date: label.
	Now    func() time.Time
	logger logging.Logger
}

// NewParser creates a structured-block parser.
func NewParser(logger logging.Logger) *Parser {
	return &Parser{Now: time.Now, logger: logging.OrDefault(logger)}
}

// Parse splits text into blocks and returns one transaction per usable block.
// Empty input yields an empty slice.
func (p *Parser) Parse(text string) []models.ParsedTransaction {
	transactions := []models.ParsedTransaction{}
	for i, block := range splitBlocks(text) {
		tx, err := p.parseBlock(block)
		if err != nil {
			p.logger.Debug("Dropping structured block",
				logging.Field{Key: logging.FieldParser, Value: confidence.StrategyStructured.String()},
				logging.Field{Key: "block", Value: i},
				logging.Field{Key: logging.FieldReason, Value: err.Error()})
			continue
		}
		transactions = append(transactions, tx)
	}
	return transactions
}

// splitBlocks starts a new block at every Date: label once the current block
// has content, and at every blank line.
func splitBlocks(text string) [][]string {
	var blocks [][]string
	var current []string
	flush := func() {
		if len(current) > 0 {
			blocks = append(blocks, current)
			current = nil
		}
	}

	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		if dateLabelRe.MatchString(line) && len(current) > 0 {
			flush()
		}
		current = append(current, line)
	}
	flush()
	return blocks
}

type blockFields struct {
	date         string
	description  string
	amount       string
	balance      string
	category     string
	counterparty string
	kind         string

	// first match per label wins
	seen map[*regexp.Regexp]bool
}

func (f *blockFields) take(re *regexp.Regexp, line string, dst *string) bool {
	m := re.FindStringSubmatch(line)
	if m == nil {
		return false
	}
	if !f.seen[re] {
		f.seen[re] = true
		*dst = strings.TrimSpace(m[1])
	}
	return true
}

func (p *Parser) parseBlock(lines []string) (models.ParsedTransaction, error) {
	f := &blockFields{seen: make(map[*regexp.Regexp]bool)}
	for _, line := range lines {
		// Balance goes before description/amount so "Balance after transaction:"
		// is never read as another label.
		switch {
		case f.take(balanceLabelRe, line, &f.balance):
		case f.take(dateLabelRe, line, &f.date):
		case f.take(descriptionLabelRe, line, &f.description):
		case f.take(amountLabelRe, line, &f.amount):
		case f.take(categoryLabelRe, line, &f.category):
		case f.take(counterpartyLabelRe, line, &f.counterparty):
		case f.take(typeLabelRe, line, &f.kind):
		}
	}

	b := models.NewTransactionBuilder()

	date, ok := dateutils.NormalizeDate(f.date)
	if !ok {
		date = p.Now()
	}
	b.WithDate(date)

	amount, ok := currencyutils.NormalizeAmount(f.amount)
	if ok {
		switch {
		case debitTypeRe.MatchString(f.kind):
			amount = amount.Abs().Neg()
		case creditTypeRe.MatchString(f.kind):
			amount = amount.Abs()
		}
	} else {
		amount = decimal.Zero
	}
	b.WithAmount(amount)

	description := strings.TrimSpace(f.description)
	if description == "" && amount.IsZero() {
		return models.ParsedTransaction{}, models.ErrEmptyTransaction
	}
	if description == "" {
		description = models.DefaultDescription
	}
	b.WithDescription(description)

	if balance, ok := currencyutils.NormalizeAmount(f.balance); ok {
		b.WithBalance(balance)
	}
	b.WithCategory(f.category)
	if f.counterparty != "" {
		b.WithCounterparty(textutils.FormatName(f.counterparty))
	} else {
		b.WithCounterparty(textutils.ExtractCounterparty(description))
	}
	// labelled blocks are trusted as a whole; a missing date only falls back to today
	b.WithConfidence(confidence.StrategyStructured.Base())

	return b.Build()
}
