// Package models provides the data structures shared by the extraction and
// analysis packages.
package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultDescription is used for records that carry an amount but no description.
const DefaultDescription = "Transaction"

// ParsedTransaction is one record extracted from a statement.
//
// Amount carries the economic sign: negative for debits and expenses,
// positive for credits and income. Category, Counterparty and Balance are
// optional; empty strings and a nil Balance mean "not present".
type ParsedTransaction struct {
	Date         time.Time        `json:"date"`
	Description  string           `json:"description"`
	Amount       decimal.Decimal  `json:"amount"`
	Category     string           `json:"category,omitempty"`
	Counterparty string           `json:"counterparty,omitempty"`
	Balance      *decimal.Decimal `json:"balance,omitempty"`
	Confidence   float64          `json:"confidence"`
}

// IsEmpty reports whether the record carries neither a description nor an amount.
func (t ParsedTransaction) IsEmpty() bool {
	return strings.TrimSpace(t.Description) == "" && t.Amount.IsZero()
}

// IsDebit reports whether money left the account.
func (t ParsedTransaction) IsDebit() bool {
	return t.Amount.IsNegative()
}

// HistoryRecord is a persisted transaction as supplied by the history collaborator.
type HistoryRecord struct {
	ID          string          `json:"id"`
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category,omitempty"`
	GroupID     string          `json:"groupId,omitempty"`
}

// AbsAmount returns the absolute amount as a float for statistics.
func (r HistoryRecord) AbsAmount() float64 {
	f, _ := r.Amount.Abs().Float64()
	return f
}

// Candidate is the transaction under analysis. It shares the history shape
// so that freshly persisted records can be scored directly.
type Candidate = HistoryRecord
