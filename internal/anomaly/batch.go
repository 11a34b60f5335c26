package anomaly

import (
	"context"
	"fmt"

	"fjacquet/stmt-insight/internal/logging"
	"fjacquet/stmt-insight/internal/models"

	"golang.org/x/sync/errgroup"
)

// ScoreBatch scores every candidate against one history snapshot and
// returns results keyed by candidate ID. Candidates are processed in
// chunks, one chunk after another, with bounded fan-out inside a chunk.
// A candidate whose scoring panics is recorded as not anomalous. A
// cancelled context stops the batch and its error is returned.
func (s *Scorer) ScoreBatch(ctx context.Context, organizationID string, candidates []models.Candidate) (map[string]models.AnomalyResult, error) {
	results := make(map[string]models.AnomalyResult, len(candidates))
	if len(candidates) == 0 {
		return results, nil
	}

	records, err := s.history(ctx, organizationID)
	if err != nil {
		return nil, err
	}

	slots := make([]models.AnomalyResult, len(candidates))
	for start := 0; start < len(candidates); start += s.config.ChunkSize {
		end := min(start+s.config.ChunkSize, len(candidates))

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(s.config.Parallelism)
		for i := start; i < end; i++ {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				slots[i] = s.scoreSafely(candidates[i], records)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, fmt.Errorf("error scoring batch for %s: %w", organizationID, err)
		}
	}

	anomalies := 0
	for i, cand := range candidates {
		results[cand.ID] = slots[i]
		if slots[i].IsAnomaly {
			anomalies++
		}
	}
	s.logger.Info("Scored transaction batch",
		logging.Field{Key: logging.FieldOrganization, Value: organizationID},
		logging.Field{Key: logging.FieldCount, Value: len(candidates)},
		logging.Field{Key: "anomalies", Value: anomalies})
	return results, nil
}

func (s *Scorer) scoreSafely(cand models.Candidate, records []models.HistoryRecord) (result models.AnomalyResult) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Warn("Anomaly scoring failed",
				logging.Field{Key: logging.FieldTransaction, Value: cand.ID},
				logging.Field{Key: logging.FieldError, Value: fmt.Sprint(r)})
			result = models.NotAnomalous()
		}
	}()
	return s.score(cand, records)
}
