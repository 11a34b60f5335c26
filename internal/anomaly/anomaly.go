// Package anomaly scores transactions against an organization's recent
// history and flags statistical outliers.
package anomaly

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"fjacquet/stmt-insight/internal/dateutils"
	"fjacquet/stmt-insight/internal/history"
	"fjacquet/stmt-insight/internal/logging"
	"fjacquet/stmt-insight/internal/models"

	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/stat"
)

// Rule weights.
const (
	WeightExtremeZ        = 40
	WeightHighZ           = 20
	WeightCategoryMax     = 30
	WeightCategoryMean    = 20
	WeightRoundNumber     = 10
	WeightWeekend         = 15
	WeightNearDuplicate   = 25
	WeightSuspiciousTerm  = 15
	MaxScore              = 100
	DefaultThreshold      = 50
	DefaultHistoryDays    = 90
	DefaultMinHistory     = 10
	DefaultChunkSize      = 10
	DefaultParallelism    = 4
	minCategoryHistory    = 5
	duplicatePrefixLength = 20
)

var roundUnit = decimal.NewFromInt(1000)

// DefaultSuspiciousTerms are matched case-insensitively; only the first hit counts.
var DefaultSuspiciousTerms = []string{
	"wire transfer", "urgent", "offshore", "cash advance",
	"crypto", "bitcoin", "gift card", "western union",
}

// Config tunes the scorer.
type Config struct {
	HistoryDays     int
	MinHistory      int
	Threshold       int
	ChunkSize       int
	Parallelism     int
	SuspiciousTerms []string
}

// DefaultConfig returns the standard thresholds.
func DefaultConfig() Config {
	return Config{
		HistoryDays:     DefaultHistoryDays,
		MinHistory:      DefaultMinHistory,
		Threshold:       DefaultThreshold,
		ChunkSize:       DefaultChunkSize,
		Parallelism:     DefaultParallelism,
		SuspiciousTerms: DefaultSuspiciousTerms,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.HistoryDays <= 0 {
		c.HistoryDays = d.HistoryDays
	}
	if c.MinHistory <= 0 {
		c.MinHistory = d.MinHistory
	}
	if c.Threshold <= 0 {
		c.Threshold = d.Threshold
	}
	if c.ChunkSize <= 0 {
		c.ChunkSize = d.ChunkSize
	}
	if c.Parallelism <= 0 {
		c.Parallelism = d.Parallelism
	}
	if c.SuspiciousTerms == nil {
		c.SuspiciousTerms = d.SuspiciousTerms
	}
	return c
}

// Scorer computes anomaly scores.
type Scorer struct {
	// Now anchors the trailing history window.
	Now      func() time.Time
	provider history.Provider
	config   Config
	logger   logging.Logger

	// score is ScoreAgainst; batch workers call it through this field.
	score func(models.Candidate, []models.HistoryRecord) models.AnomalyResult
}

// NewScorer creates a Scorer reading history from provider.
func NewScorer(provider history.Provider, config Config, logger logging.Logger) *Scorer {
	s := &Scorer{
		Now:      time.Now,
		provider: provider,
		config:   config.withDefaults(),
		logger:   logging.OrDefault(logger),
	}
	s.score = s.ScoreAgainst
	return s
}

// Score fetches the organization's trailing history and scores cand against it.
func (s *Scorer) Score(ctx context.Context, organizationID string, cand models.Candidate) (models.AnomalyResult, error) {
	records, err := s.history(ctx, organizationID)
	if err != nil {
		return models.NotAnomalous(), err
	}
	return s.ScoreAgainst(cand, records), nil
}

func (s *Scorer) history(ctx context.Context, organizationID string) ([]models.HistoryRecord, error) {
	since := s.Now().AddDate(0, 0, -s.config.HistoryDays)
	records, err := s.provider.ListTransactions(ctx, organizationID, since)
	if err != nil {
		return nil, fmt.Errorf("error fetching history for %s: %w", organizationID, err)
	}
	return records, nil
}

// ScoreAgainst scores cand against records. The candidate itself is
// excluded from records by ID. With fewer than the minimum number of
// records the result is the zero signal.
func (s *Scorer) ScoreAgainst(cand models.Candidate, records []models.HistoryRecord) models.AnomalyResult {
	records = excludeID(records, cand.ID)
	if len(records) < s.config.MinHistory {
		return models.NotAnomalous()
	}

	amount := cand.AbsAmount()
	amounts := make([]float64, len(records))
	for i, r := range records {
		amounts[i] = r.AbsAmount()
	}
	mean, std := stat.PopMeanStdDev(amounts, nil)

	score := 0
	reasons := []string{}
	add := func(points int, reason string) {
		score += points
		reasons = append(reasons, reason)
	}

	if std > 0 {
		z := math.Abs(amount-mean) / std
		switch {
		case z > 3:
			add(WeightExtremeZ, fmt.Sprintf("Amount is %.1f standard deviations from the average", z))
		case z > 2:
			add(WeightHighZ, fmt.Sprintf("Amount is %.1f standard deviations from the average", z))
		}
	}

	if catAmounts := categoryAmounts(records, cand.Category); len(catAmounts) >= minCategoryHistory {
		catMax := 0.0
		for _, a := range catAmounts {
			catMax = math.Max(catMax, a)
		}
		if amount > 2*catMax {
			add(WeightCategoryMax, fmt.Sprintf("Amount is more than twice the largest %s transaction", cand.Category))
		}
		if amount > 5*stat.Mean(catAmounts, nil) {
			add(WeightCategoryMean, fmt.Sprintf("Amount is more than five times the average %s transaction", cand.Category))
		}
	}

	abs := cand.Amount.Abs()
	if abs.GreaterThanOrEqual(roundUnit) && abs.Mod(roundUnit).IsZero() {
		add(WeightRoundNumber, "Amount is a round number")
	}

	if dateutils.IsWeekend(cand.Date) && weekendShare(records) < 0.1 && amount > mean {
		add(WeightWeekend, "Large transaction on a weekend, which is unusual for this account")
	}

	if countDuplicates(records, cand) > 2 {
		add(WeightNearDuplicate, "Several transactions with the same amount and description")
	}

	if term, ok := firstSuspiciousTerm(cand.Description, s.config.SuspiciousTerms); ok {
		add(WeightSuspiciousTerm, fmt.Sprintf("Description contains %q", term))
	}

	if score > MaxScore {
		score = MaxScore
	}
	return models.AnomalyResult{
		IsAnomaly: score >= s.config.Threshold,
		Score:     score,
		Reasons:   reasons,
	}
}

func excludeID(records []models.HistoryRecord, id string) []models.HistoryRecord {
	if id == "" {
		return records
	}
	out := make([]models.HistoryRecord, 0, len(records))
	for _, r := range records {
		if r.ID != id {
			out = append(out, r)
		}
	}
	return out
}

func categoryAmounts(records []models.HistoryRecord, category string) []float64 {
	if category == "" {
		return nil
	}
	var amounts []float64
	for _, r := range records {
		if r.Category == category {
			amounts = append(amounts, r.AbsAmount())
		}
	}
	return amounts
}

func weekendShare(records []models.HistoryRecord) float64 {
	weekend := 0
	for _, r := range records {
		if dateutils.IsWeekend(r.Date) {
			weekend++
		}
	}
	return float64(weekend) / float64(len(records))
}

// countDuplicates counts records with the candidate's absolute amount whose
// description contains the candidate description's first 20 characters.
// The match is case-sensitive.
func countDuplicates(records []models.HistoryRecord, cand models.Candidate) int {
	prefix := []rune(cand.Description)
	if len(prefix) > duplicatePrefixLength {
		prefix = prefix[:duplicatePrefixLength]
	}
	abs := cand.Amount.Abs()
	n := 0
	for _, r := range records {
		if r.Amount.Abs().Equal(abs) && strings.Contains(r.Description, string(prefix)) {
			n++
		}
	}
	return n
}

func firstSuspiciousTerm(description string, terms []string) (string, bool) {
	lower := strings.ToLower(description)
	for _, term := range terms {
		if strings.Contains(lower, term) {
			return term, true
		}
	}
	return "", false
}
