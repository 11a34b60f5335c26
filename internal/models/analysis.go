package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AnomalyResult is the outcome of scoring one candidate against history.
// Reasons are listed in detection order.
type AnomalyResult struct {
	IsAnomaly bool     `json:"isAnomaly"`
	Score     int      `json:"score"`
	Reasons   []string `json:"reasons"`
}

// NotAnomalous is the zero-signal result used for insufficient history and failed items.
func NotAnomalous() AnomalyResult {
	return AnomalyResult{Reasons: []string{}}
}

// PatternType classifies the periodicity of a recurring group.
type PatternType string

const (
	PatternWeekly    PatternType = "weekly"
	PatternBiweekly  PatternType = "biweekly"
	PatternMonthly   PatternType = "monthly"
	PatternQuarterly PatternType = "quarterly"
	PatternAnnual    PatternType = "annual"
	PatternNone      PatternType = "none"
)

// Next advances from by one period of the pattern. PatternNone returns from unchanged.
func (p PatternType) Next(from time.Time) time.Time {
	switch p {
	case PatternWeekly:
		return from.AddDate(0, 0, 7)
	case PatternBiweekly:
		return from.AddDate(0, 0, 14)
	case PatternMonthly:
		return from.AddDate(0, 1, 0)
	case PatternQuarterly:
		return from.AddDate(0, 3, 0)
	case PatternAnnual:
		return from.AddDate(1, 0, 0)
	default:
		return from
	}
}

// RecurringPattern is the recurring-payment verdict for one candidate.
type RecurringPattern struct {
	IsRecurring            bool        `json:"isRecurring"`
	Pattern                PatternType `json:"pattern"`
	Confidence             float64     `json:"confidence"`
	GroupID                string      `json:"groupId,omitempty"`
	ProjectedNextDate      *time.Time  `json:"projectedNextDate,omitempty"`
	MatchingTransactionIDs []string    `json:"matchingTransactionIds"`
}

// NonRecurring returns the empty verdict.
func NonRecurring() RecurringPattern {
	return RecurringPattern{Pattern: PatternNone, MatchingTransactionIDs: []string{}}
}

// RecurringGroup summarizes one cluster of recurring transactions for an organization.
type RecurringGroup struct {
	GroupID          string          `json:"groupId"`
	Description      string          `json:"description"`
	Pattern          PatternType     `json:"pattern"`
	Confidence       float64         `json:"confidence"`
	AverageAmount    decimal.Decimal `json:"averageAmount"`
	TransactionIDs   []string        `json:"transactionIds"`
	NextExpectedDate *time.Time      `json:"nextExpectedDate,omitempty"`
}
