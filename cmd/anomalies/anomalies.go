// Package anomalies handles the anomaly scoring command
package anomalies

import (
	"fmt"
	"sort"
	"time"

	"fjacquet/stmt-insight/cmd/common"
	"fjacquet/stmt-insight/cmd/root"
	"fjacquet/stmt-insight/internal/history"
	"fjacquet/stmt-insight/internal/logging"
	"fjacquet/stmt-insight/internal/models"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var (
	// HistoryFile holds the organization's history; defaults to the input file
	HistoryFile string
	// ShowAll includes candidates that were not flagged
	ShowAll bool
)

// Report is one scored candidate.
type Report struct {
	ID          string               `json:"id"`
	Date        time.Time            `json:"date"`
	Description string               `json:"description"`
	Amount      decimal.Decimal      `json:"amount"`
	Result      models.AnomalyResult `json:"result"`
}

// Cmd represents the anomalies command
var Cmd = &cobra.Command{
	Use:   "anomalies",
	Short: "Score transactions for anomalies against history",
	Long: `Score every transaction of the input CSV (ID, Organization, Date, Description,
Amount, Category, GroupID) against the organization's trailing history and
print the flagged ones as JSON.`,
	RunE: anomaliesFunc,
}

func init() {
	Cmd.Flags().StringVar(&HistoryFile, "history", "", "History CSV (default: the input file)")
	Cmd.Flags().BoolVar(&ShowAll, "all", false, "Report every candidate, not only anomalies")
}

func anomaliesFunc(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	now, err := root.Clock()
	if err != nil {
		return err
	}

	candidates, provider, err := loadCandidates(cmd)
	if err != nil {
		return err
	}

	c, err := root.NewContainer(ctx, provider)
	if err != nil {
		return err
	}
	defer func() { _ = c.Close() }()

	scorer := c.GetScorer()
	scorer.Now = now
	results, err := scorer.ScoreBatch(ctx, root.SharedFlags.Organization, candidates)
	if err != nil {
		return err
	}

	reports := BuildReports(candidates, results, ShowAll)
	root.Log.Info("Anomaly scoring completed",
		logging.Field{Key: logging.FieldOrganization, Value: root.SharedFlags.Organization},
		logging.Field{Key: logging.FieldCount, Value: len(candidates)},
		logging.Field{Key: "flagged", Value: countFlagged(results)})

	w, closeFn, err := common.OpenOutput(root.SharedFlags.Output, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer func() { _ = closeFn() }()
	return common.WriteJSON(w, reports)
}

func loadCandidates(cmd *cobra.Command) ([]models.Candidate, history.Provider, error) {
	if root.SharedFlags.Input == "" {
		return nil, nil, fmt.Errorf("input file is required")
	}
	input := history.NewCSVProvider(root.SharedFlags.Input, root.Log)
	candidates, err := input.ListTransactions(cmd.Context(), root.SharedFlags.Organization, time.Time{})
	if err != nil {
		return nil, nil, err
	}
	if HistoryFile == "" || HistoryFile == root.SharedFlags.Input {
		return candidates, input, nil
	}
	return candidates, history.NewCSVProvider(HistoryFile, root.Log), nil
}

// BuildReports pairs candidates with their results, highest score first.
func BuildReports(candidates []models.Candidate, results map[string]models.AnomalyResult, all bool) []Report {
	reports := make([]Report, 0, len(candidates))
	for _, cand := range candidates {
		result, ok := results[cand.ID]
		if !ok || (!all && !result.IsAnomaly) {
			continue
		}
		reports = append(reports, Report{
			ID:          cand.ID,
			Date:        cand.Date,
			Description: cand.Description,
			Amount:      cand.Amount,
			Result:      result,
		})
	}
	sort.SliceStable(reports, func(i, j int) bool { return reports[i].Result.Score > reports[j].Result.Score })
	return reports
}

func countFlagged(results map[string]models.AnomalyResult) int {
	n := 0
	for _, r := range results {
		if r.IsAnomaly {
			n++
		}
	}
	return n
}
