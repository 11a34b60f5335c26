package models

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ErrEmptyTransaction is returned by Build for a record with neither
// description nor amount. Parsers drop such records silently.
var ErrEmptyTransaction = errors.New("transaction has neither description nor amount")

// TransactionBuilder provides a fluent API for constructing ParsedTransaction values.
// Build enforces the record invariants so that parsers cannot emit a
// transaction with a blank description padded by whitespace or an
// out-of-range confidence.
type TransactionBuilder struct {
	tx ParsedTransaction
}

// NewTransactionBuilder creates a builder with a zero amount.
func NewTransactionBuilder() *TransactionBuilder {
	return &TransactionBuilder{tx: ParsedTransaction{Amount: decimal.Zero}}
}

// WithDate sets the transaction date, truncated to the calendar day in UTC.
func (b *TransactionBuilder) WithDate(date time.Time) *TransactionBuilder {
	b.tx.Date = time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	return b
}

// WithDescription sets the description. Whitespace runs are collapsed.
func (b *TransactionBuilder) WithDescription(description string) *TransactionBuilder {
	b.tx.Description = strings.Join(strings.Fields(description), " ")
	return b
}

// WithAmount sets the signed amount.
func (b *TransactionBuilder) WithAmount(amount decimal.Decimal) *TransactionBuilder {
	b.tx.Amount = amount
	return b
}

// WithCategory sets the category.
func (b *TransactionBuilder) WithCategory(category string) *TransactionBuilder {
	b.tx.Category = strings.TrimSpace(category)
	return b
}

// WithCounterparty sets the counterparty.
func (b *TransactionBuilder) WithCounterparty(counterparty string) *TransactionBuilder {
	b.tx.Counterparty = strings.TrimSpace(counterparty)
	return b
}

// WithBalance sets the running balance reported next to the transaction.
func (b *TransactionBuilder) WithBalance(balance decimal.Decimal) *TransactionBuilder {
	b.tx.Balance = &balance
	return b
}

// WithConfidence sets the confidence; Build clamps it to [0,1].
func (b *TransactionBuilder) WithConfidence(confidence float64) *TransactionBuilder {
	b.tx.Confidence = confidence
	return b
}

// Build returns the transaction or ErrEmptyTransaction.
func (b *TransactionBuilder) Build() (ParsedTransaction, error) {
	tx := b.tx
	if tx.IsEmpty() {
		return ParsedTransaction{}, ErrEmptyTransaction
	}
	tx.Confidence = ClampConfidence(tx.Confidence)
	return tx, nil
}

// ClampConfidence bounds c to [0,1]; NaN becomes 0.
func ClampConfidence(c float64) float64 {
	if c != c || c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}
