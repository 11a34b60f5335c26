// Package recurring detects periodic payments such as subscriptions and
// projects their next occurrence.
package recurring

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"fjacquet/stmt-insight/internal/dateutils"
	"fjacquet/stmt-insight/internal/history"
	"fjacquet/stmt-insight/internal/logging"
	"fjacquet/stmt-insight/internal/models"
	"fjacquet/stmt-insight/internal/textutils"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/stat"
)

const (
	DefaultHistoryMonths   = 6
	DefaultAmountTolerance = 0.05
	DefaultMinConfidence   = 60.0
	minMatches             = 2
	minTokenLength         = 3
	requiredTokenOverlap   = 2
)

// period is one row of the classification table: a mean-gap range in days,
// a deviation ceiling and the confidence penalty per day of deviation.
type period struct {
	pattern  models.PatternType
	minGap   float64
	maxGap   float64
	maxSigma float64
	k        float64
}

var periods = []period{
	{models.PatternWeekly, 5, 9, 3, 10},
	{models.PatternBiweekly, 12, 16, 4, 8},
	{models.PatternMonthly, 27, 33, 5, 6},
	{models.PatternQuarterly, 85, 100, 10, 3},
	{models.PatternAnnual, 355, 375, 15, 2},
}

// Config tunes the detector.
type Config struct {
	HistoryMonths   int
	AmountTolerance float64
	MinConfidence   float64
}

// DefaultConfig returns the standard thresholds.
func DefaultConfig() Config {
	return Config{
		HistoryMonths:   DefaultHistoryMonths,
		AmountTolerance: DefaultAmountTolerance,
		MinConfidence:   DefaultMinConfidence,
	}
}

// Detector finds recurring payments in an organization's history.
type Detector struct {
	// Now anchors the trailing history window.
	Now      func() time.Time
	provider history.Provider
	config   Config
	newID    func() string
	logger   logging.Logger
}

// NewDetector creates a Detector reading history from provider.
func NewDetector(provider history.Provider, config Config, logger logging.Logger) *Detector {
	d := DefaultConfig()
	if config.HistoryMonths <= 0 {
		config.HistoryMonths = d.HistoryMonths
	}
	if config.AmountTolerance <= 0 {
		config.AmountTolerance = d.AmountTolerance
	}
	if config.MinConfidence <= 0 {
		config.MinConfidence = d.MinConfidence
	}
	return &Detector{
		Now:      time.Now,
		provider: provider,
		config:   config,
		newID:    uuid.NewString,
		logger:   logging.OrDefault(logger),
	}
}

func (d *Detector) history(ctx context.Context, organizationID string) ([]models.HistoryRecord, error) {
	since := d.Now().AddDate(0, -d.config.HistoryMonths, 0)
	records, err := d.provider.ListTransactions(ctx, organizationID, since)
	if err != nil {
		return nil, fmt.Errorf("error fetching history for %s: %w", organizationID, err)
	}
	return records, nil
}

// Detect fetches the organization's trailing history and classifies cand.
func (d *Detector) Detect(ctx context.Context, organizationID string, cand models.Candidate) (models.RecurringPattern, error) {
	records, err := d.history(ctx, organizationID)
	if err != nil {
		return models.NonRecurring(), err
	}
	return d.DetectAgainst(cand, records), nil
}

// DetectAgainst classifies cand against records. Records with the
// candidate's ID are ignored.
func (d *Detector) DetectAgainst(cand models.Candidate, records []models.HistoryRecord) models.RecurringPattern {
	matches := d.similar(cand, records)
	if len(matches) < minMatches {
		return models.NonRecurring()
	}

	dates := make([]time.Time, 0, len(matches)+1)
	ids := make([]string, 0, len(matches))
	groupID := ""
	for _, m := range matches {
		dates = append(dates, m.Date)
		ids = append(ids, m.ID)
		if groupID == "" {
			groupID = m.GroupID
		}
	}
	dates = append(dates, cand.Date)

	pattern, confidence := classify(dates)
	result := models.RecurringPattern{
		Pattern:                pattern,
		Confidence:             confidence,
		GroupID:                groupID,
		MatchingTransactionIDs: ids,
	}
	result.IsRecurring = pattern != models.PatternNone && confidence >= d.config.MinConfidence
	if !result.IsRecurring {
		return result
	}

	if result.GroupID == "" {
		result.GroupID = d.newID()
	}
	next := pattern.Next(latest(dates))
	result.ProjectedNextDate = &next

	d.logger.Debug("Recurring pattern detected",
		logging.Field{Key: logging.FieldTransaction, Value: cand.ID},
		logging.Field{Key: logging.FieldPattern, Value: string(pattern)},
		logging.Field{Key: logging.FieldConfidence, Value: confidence})
	return result
}

// similar returns the records, oldest first, whose amount lies within the
// tolerance of the candidate's and whose description shares enough words.
func (d *Detector) similar(cand models.Candidate, records []models.HistoryRecord) []models.HistoryRecord {
	amount := cand.AbsAmount()
	tolerance := amount * d.config.AmountTolerance
	tokens := textutils.Tokenize(cand.Description, minTokenLength)
	need := min(requiredTokenOverlap, len(tokens))

	var matches []models.HistoryRecord
	for _, r := range records {
		if cand.ID != "" && r.ID == cand.ID {
			continue
		}
		if math.Abs(r.AbsAmount()-amount) > tolerance {
			continue
		}
		if overlap(tokens, textutils.Tokenize(r.Description, minTokenLength)) < need {
			continue
		}
		matches = append(matches, r)
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Date.Before(matches[j].Date) })
	return matches
}

func overlap(a, b []string) int {
	set := make(map[string]struct{}, len(b))
	for _, t := range b {
		set[t] = struct{}{}
	}
	n := 0
	for _, t := range a {
		if _, ok := set[t]; ok {
			n++
		}
	}
	return n
}

// classify sorts dates, summarizes the day gaps between them and matches
// the mean gap against the period table.
func classify(dates []time.Time) (models.PatternType, float64) {
	if len(dates) < 2 {
		return models.PatternNone, 0
	}
	sorted := append([]time.Time(nil), dates...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })

	gaps := make([]float64, 0, len(sorted)-1)
	for i := 1; i < len(sorted); i++ {
		gaps = append(gaps, float64(dateutils.DaysBetween(sorted[i-1], sorted[i])))
	}
	mean, sigma := stat.PopMeanStdDev(gaps, nil)

	for _, p := range periods {
		if mean >= p.minGap && mean <= p.maxGap && sigma < p.maxSigma {
			return p.pattern, math.Max(0, 100-sigma*p.k)
		}
	}
	return models.PatternNone, 0
}

func latest(dates []time.Time) time.Time {
	var last time.Time
	for _, t := range dates {
		if t.After(last) {
			last = t
		}
	}
	return last
}
