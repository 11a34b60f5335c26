package confidence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScore(t *testing.T) {
	tests := []struct {
		name     string
		strategy Strategy
		cues     Cues
		want     float64
	}{
		{"structured complete", StrategyStructured, Cues{HasDate: true, HasAmount: true}, 0.85},
		{"line complete", StrategyLine, Cues{HasDate: true, HasAmount: true}, 0.7},
		{"csv header complete", StrategyCSVHeader, Cues{HasDate: true, HasAmount: true}, 0.85},
		{"headerless complete", StrategyCSVHeaderless, Cues{HasDate: true, HasAmount: true}, 0.7},
		{"ai complete", StrategyAI, Cues{HasDate: true, HasAmount: true}, 0.95},
		{"line without date", StrategyLine, Cues{HasAmount: true}, 0.45},
		{"line with nothing", StrategyLine, Cues{}, 0.1},
		{"structured without amount", StrategyStructured, Cues{HasDate: true}, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Score(tt.strategy, tt.cues)
			assert.InDelta(t, tt.want, got, 1e-9)
			assert.GreaterOrEqual(t, got, 0.0)
			assert.LessOrEqual(t, got, 1.0)
		})
	}
}

func TestStrategyString(t *testing.T) {
	assert.Equal(t, "structured", StrategyStructured.String())
	assert.Equal(t, "ai", StrategyAI.String())
	assert.Equal(t, "line", Strategy(99).String())
}
