// Package lineparser extracts transactions from loosely formatted text where
// each line carries a date, an amount and a free-text description.
package lineparser

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

const (
	number   = `\d+(?:[,']\d+)*(?:\.\d{1,2})?`
	decimals = `\d+(?:[,']\d+)*\.\d{2}`
	symbol   = `(?:[₹$€£¥]|\b(?:rs\.?|inr|usd|eur|gbp))`
	marker   = `(?:dr|cr|debit(?:ed)?|credit(?:ed)?)`
)

var (
	// Tried in order; the first pattern whose match normalizes to a valid date wins.
	datePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`),
		regexp.MustCompile(`\b\d{1,2}/\d{1,2}/\d{4}\b`),
		regexp.MustCompile(`\b\d{1,2}-\d{1,2}-\d{4}\b`),
		regexp.MustCompile(`(?i)\b\d{1,2}(?:st|nd|rd|th)?[\s\-]+(?:jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?,?[\s\-]+\d{4}\b`),
		regexp.MustCompile(`(?i)\b(?:jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\s+\d{1,2},?\s+\d{4}\b`),
	}

	// Tried in order. Groups: amt is the signed or bracketed number with an
	// optional currency symbol, mark is an adjacent DR/CR marker, bal is a
	// second trailing number read as the running balance.
	amountPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?P<amt>[-+]?\(?(?:` + symbol + `\s?|\b)` + number + `\)?)\s*(?P<mark>` + marker + `)\b`),
		regexp.MustCompile(`(?i)\b(?P<mark>` + marker + `)\b\s*[:\-]?\s*(?P<amt>` + symbol + `?\s?` + number + `)`),
		regexp.MustCompile(`(?i)(?P<amt>[-+]?\(?` + symbol + `\s?` + number + `\)?)`),
		regexp.MustCompile(`(?P<amt>[-+]?\(?\b` + decimals + `\)?-?)(?:\s+(?P<bal>-?` + decimals + `))?\s*$`),
	}

	// Last resort for a bare trailing number such as "Coffee shop 420". Only
	// applied to dated lines so ids and page numbers are not read as amounts.
	bareAmountPattern = regexp.MustCompile(`(?P<amt>[-+]?\(?\b` + number + `\)?)\s*$`)

	balancePattern = regexp.MustCompile(`(?i)\b(?:avl\.?\s*|closing\s+|available\s+)?bal(?:ance)?\b\.?\s*[:\-]?\s*(?P<amt>-?` + symbol + `?\s?` + number + `)(?:\s*(?P<mark>cr|dr)\b)?`)

	debitWordRe  = regexp.MustCompile(`(?i)\b(?:dr|debit\w*|withdrawal\w*)\b`)
	creditWordRe = regexp.MustCompile(`(?i)\b(?:cr|credit\w*|deposit\w*)\b`)
	markerCellRe = regexp.MustCompile(`(?i)^(?:dr|cr|debit\w*|credit\w*|withdrawal\w*|deposit\w*)$`)

	headerPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)date.*description.*amount`),
		regexp.MustCompile(`(?i)particulars.*debit.*credit`),
		regexp.MustCompile(`(?i)^\s*(?:txn|transaction|value|posting)?\s*date\b.*\b(?:narration|details|particulars|remarks)\b`),
		regexp.MustCompile(`(?i)^\s*(?:opening|closing)\s+balance\b`),
	}
)

// IsHeaderLine reports whether line looks like a column header row.
func IsHeaderLine(line string) bool {
	for _, re := range headerPatterns {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}

// Parser extracts one transaction per line of text.
type Parser struct {
	// Now supplies the date for lines without a recognizable date.
	Now    func() time.Time
	logger logging.Logger
}

// NewParser creates a line parser.
func NewParser(logger logging.Logger) *Parser {
	return &Parser{Now: time.Now, logger: logging.OrDefault(logger)}
}

// lineResult is what a single line yields before defaults are applied.
type lineResult struct {
	date        time.Time
	hasDate     bool
	amount      decimal.Decimal
	hasAmount   bool
	balance     *decimal.Decimal
	description string
}

// Parse extracts transactions line by line, skipping header lines.
//
// A line with neither a date nor an amount is held back as a pending
// description: if the next line has a date or amount but no description of
// its own, the pending text becomes that line's description. A pending line
// that never attaches (bank names, page footers) is dropped.
func (p *Parser) Parse(text string) []models.ParsedTransaction {
	transactions := []models.ParsedTransaction{}
	drop := func(lineNo int) {
		p.logger.Debug("Dropping line",
			logging.Field{Key: logging.FieldParser, Value: confidence.StrategyLine.String()},
			logging.Field{Key: logging.FieldLine, Value: lineNo})
	}
	emit := func(r lineResult, lineNo int) {
		tx, ok := p.build(r)
		if !ok {
			drop(lineNo)
			return
		}
		transactions = append(transactions, tx)
	}

	var pending *lineResult
	pendingLine := 0
	for i, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		lineNo := i + 1
		if strings.TrimSpace(line) == "" || IsHeaderLine(line) {
			continue
		}

		r := parseLine(line)
		if !r.hasDate && !r.hasAmount {
			if pending != nil {
				drop(pendingLine)
			}
			pending, pendingLine = &r, lineNo
			continue
		}

		if pending != nil {
			if len(r.description) < 2 {
				r.description = pending.description
			} else {
				drop(pendingLine)
			}
			pending = nil
		}
		emit(r, lineNo)
	}
	if pending != nil {
		drop(pendingLine)
	}
	return transactions
}

func parseLine(line string) lineResult {
	var r lineResult
	rest := line

	for _, re := range datePatterns {
		loc := re.FindStringIndex(rest)
		if loc == nil {
			continue
		}
		if d, ok := dateutils.NormalizeDate(rest[loc[0]:loc[1]]); ok {
			r.date, r.hasDate = d, true
			rest = rest[:loc[0]] + " " + rest[loc[1]:]
			break
		}
	}

	if m := balancePattern.FindStringSubmatchIndex(rest); m != nil {
		if bal, ok := currencyutils.NormalizeAmount(group(balancePattern, rest, m, "amt")); ok {
			if strings.EqualFold(group(balancePattern, rest, m, "mark"), "dr") {
				bal = bal.Abs().Neg()
			}
			r.balance = &bal
			rest = rest[:m[0]] + " " + rest[m[1]:]
		}
	}

	for _, re := range amountPatterns {
		m := re.FindStringSubmatchIndex(rest)
		if m == nil {
			continue
		}
		amount, ok := currencyutils.NormalizeAmount(group(re, rest, m, "amt"))
		if !ok {
			continue
		}
		amount = applySign(amount, group(re, rest, m, "mark"), line)
		r.amount, r.hasAmount = amount, true
		if r.balance == nil {
			if bal, ok := currencyutils.NormalizeAmount(group(re, rest, m, "bal")); ok {
				r.balance = &bal
			}
		}
		rest = rest[:m[0]] + " " + rest[m[1]:]
		break
	}

	if !r.hasAmount && r.hasDate {
		if m := bareAmountPattern.FindStringSubmatchIndex(rest); m != nil {
			if amount, ok := currencyutils.NormalizeAmount(group(bareAmountPattern, rest, m, "amt")); ok {
				r.amount, r.hasAmount = applySign(amount, "", line), true
				rest = rest[:m[0]] + " " + rest[m[1]:]
			}
		}
	}

	r.description = textutils.CleanDescription(rest)
	return r
}

// applySign applies the debit/credit rules: a marker next to the amount
// decides first, then DR/DEBIT/WITHDRAWAL anywhere on the line forces a
// negative amount and CR/CREDIT/DEPOSIT a positive one. Otherwise the
// parsed sign is kept.
func applySign(amount decimal.Decimal, mark, line string) decimal.Decimal {
	switch {
	case mark != "" && debitWordRe.MatchString(mark):
		return amount.Abs().Neg()
	case mark != "" && creditWordRe.MatchString(mark):
		return amount.Abs()
	case debitWordRe.MatchString(line):
		return amount.Abs().Neg()
	case creditWordRe.MatchString(line):
		return amount.Abs()
	default:
		return amount
	}
}

func group(re *regexp.Regexp, s string, m []int, name string) string {
	idx := re.SubexpIndex(name)
	if idx < 0 || 2*idx+1 >= len(m) || m[2*idx] < 0 {
		return ""
	}
	return s[m[2*idx]:m[2*idx+1]]
}

func (p *Parser) build(r lineResult) (models.ParsedTransaction, bool) {
	if len(r.description) < 2 {
		return models.ParsedTransaction{}, false
	}
	return buildRecord(r, confidence.StrategyLine, p.Now)
}

func buildRecord(r lineResult, strategy confidence.Strategy, now func() time.Time) (models.ParsedTransaction, bool) {
	date := r.date
	if !r.hasDate {
		date = now()
	}
	b := models.NewTransactionBuilder().
		WithDate(date).
		WithDescription(r.description).
		WithAmount(r.amount).
		WithCounterparty(textutils.ExtractCounterparty(r.description)).
		WithConfidence(confidence.Score(strategy, confidence.Cues{HasDate: r.hasDate, HasAmount: r.hasAmount}))
	if r.balance != nil {
		b.WithBalance(*r.balance)
	}
	tx, err := b.Build()
	if err != nil {
		return models.ParsedTransaction{}, false
	}
	return tx, true
}
