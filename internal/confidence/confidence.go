// Package confidence holds the per-strategy extraction confidences and the
// scorer that degrades them when structural cues are missing.
package confidence

import "fjacquet/stmt-insight/internal/models"

// Strategy identifies the parsing path that produced a record.
type Strategy int

const (
	StrategyLine Strategy = iota
	StrategyCSVHeaderless
	StrategyStructured
	StrategyCSVHeader
	StrategyCAMT
	StrategyAI
)

// Base confidences per strategy.
const (
	Line          = 0.7
	CSVHeaderless = 0.7
	Structured    = 0.85
	CSVHeader     = 0.85
	CAMT          = 0.85
	AI            = 0.95
)

// Penalties applied when a primary cue was not found in the source.
const (
	MissingDatePenalty   = 0.25
	MissingAmountPenalty = 0.35
)

// Base returns the fixed confidence of a strategy.
func (s Strategy) Base() float64 {
	switch s {
	case StrategyStructured:
		return Structured
	case StrategyCSVHeader:
		return CSVHeader
	case StrategyCAMT:
		return CAMT
	case StrategyAI:
		return AI
	case StrategyCSVHeaderless:
		return CSVHeaderless
	default:
		return Line
	}
}

func (s Strategy) String() string {
	switch s {
	case StrategyStructured:
		return "structured"
	case StrategyCSVHeader:
		return "csv"
	case StrategyCSVHeaderless:
		return "csv-headerless"
	case StrategyCAMT:
		return "camt"
	case StrategyAI:
		return "ai"
	default:
		return "line"
	}
}

// Cues records which structural signals were present for one record.
type Cues struct {
	HasDate   bool
	HasAmount bool
}

// Score returns the strategy's base confidence when both the date and the
// amount were found, reduced by a fixed penalty for each missing cue, and
// clamped to [0,1].
func Score(s Strategy, cues Cues) float64 {
	c := s.Base()
	if !cues.HasDate {
		c -= MissingDatePenalty
	}
	if !cues.HasAmount {
		c -= MissingAmountPenalty
	}
	return models.ClampConfidence(c)
}
