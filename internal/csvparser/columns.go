package csvparser

import (
	"regexp"
	"strings"
)

// Column identifies a canonical transaction field.
type Column int

const (
	ColumnDate Column = iota
	ColumnDebit
	ColumnCredit
	ColumnBalance
	ColumnAmount
	ColumnDescription
	ColumnCategory
	ColumnCounterparty
	ColumnType
	columnCount
)

// Resolution order. A header claimed by an earlier column is not offered to
// later ones, so "Value Date" becomes the date and never the amount.
var resolveOrder = []Column{
	ColumnDate, ColumnDebit, ColumnCredit, ColumnBalance, ColumnAmount,
	ColumnDescription, ColumnCategory, ColumnCounterparty, ColumnType,
}

// synonyms lists accepted header names per column, in priority order.
// Headers are compared after normalizeHeader.
var synonyms = map[Column][]string{
	ColumnDate: {"date", "txn date", "transaction date", "value date", "posting date", "posted date",
		"booking date", "tran date", "trans date"},
	ColumnDebit: {"debit", "debit amount", "debits", "withdrawal", "withdrawals", "withdrawal amt",
		"withdrawal amount", "dr", "paid out", "money out"},
	ColumnCredit: {"credit", "credit amount", "credits", "deposit", "deposits", "deposit amt",
		"deposit amount", "cr", "paid in", "money in"},
	ColumnBalance: {"balance", "running balance", "closing balance", "available balance", "balance amount"},
	ColumnAmount:  {"amount", "amt", "transaction amount", "txn amount", "net amount", "value"},
	ColumnDescription: {"description", "narration", "particulars", "details", "transaction details",
		"transaction description", "memo", "remarks", "payee", "merchant", "name"},
	ColumnCategory:     {"category", "categories", "tag"},
	ColumnCounterparty: {"counterparty", "beneficiary", "beneficiary name", "merchant name", "payee name"},
	ColumnType:         {"type", "transaction type", "txn type", "dr cr", "cr dr", "debit credit"},
}

var (
	parenthesizedRe = regexp.MustCompile(`\([^)]*\)`)
	nonAlnumRe      = regexp.MustCompile(`[^a-z0-9]+`)
)

// normalizeHeader lowercases a header, drops parenthesized suffixes such
// as "(INR)" and reduces punctuation to single spaces.
func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimPrefix(h, "\ufeff"))
	h = parenthesizedRe.ReplaceAllString(h, " ")
	h = nonAlnumRe.ReplaceAllString(h, " ")
	return strings.TrimSpace(h)
}

// ColumnMap holds the index of each canonical column in a header row, or -1.
type ColumnMap [columnCount]int

// ResolveColumns maps arbitrary header names to canonical columns using the
// synonym tables. Matching is case-insensitive.
func ResolveColumns(headers []string) ColumnMap {
	var m ColumnMap
	for i := range m {
		m[i] = -1
	}

	normalized := make([]string, len(headers))
	for i, h := range headers {
		normalized[i] = normalizeHeader(h)
	}
	claimed := make([]bool, len(headers))

	for _, col := range resolveOrder {
	search:
		for _, syn := range synonyms[col] {
			for i, h := range normalized {
				if !claimed[i] && h == syn {
					m[col] = i
					claimed[i] = true
					break search
				}
			}
		}
	}
	return m
}

// Has reports whether the column was resolved.
func (m ColumnMap) Has(col Column) bool {
	return m[col] >= 0
}

// HasAmountSignal reports whether any amount-bearing column exists.
func (m ColumnMap) HasAmountSignal() bool {
	return m.Has(ColumnAmount) || m.Has(ColumnDebit) || m.Has(ColumnCredit)
}

// Usable reports whether rows can yield transactions at all.
func (m ColumnMap) Usable() bool {
	return m.HasAmountSignal() || m.Has(ColumnDescription)
}

// cell returns the trimmed value of col in row, or "".
func (m ColumnMap) cell(row []string, col Column) string {
	idx := m[col]
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
