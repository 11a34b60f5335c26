// Package recurring handles the recurring payment detection command
package recurring

import (
	"fmt"
	"time"

	"fjacquet/stmt-insight/cmd/common"
	"fjacquet/stmt-insight/cmd/root"
	"fjacquet/stmt-insight/internal/currencyutils"
	"fjacquet/stmt-insight/internal/dateutils"
	"fjacquet/stmt-insight/internal/history"
	"fjacquet/stmt-insight/internal/logging"
	"fjacquet/stmt-insight/internal/models"

	"github.com/spf13/cobra"
)

// Candidate flags; when Description is set the command checks one
// transaction instead of grouping the whole history.
var (
	Description string
	Amount      string
	Date        string
)

// Cmd represents the recurring command
var Cmd = &cobra.Command{
	Use:   "recurring",
	Short: "Detect recurring payments in an organization's history",
	Long: `Group the history CSV given with --input into recurring payments (weekly,
biweekly, monthly, quarterly, annual). With --description and --amount the
command instead checks whether that single transaction is recurring.`,
	RunE: recurringFunc,
}

func init() {
	Cmd.Flags().StringVarP(&Description, "description", "d", "", "Description of a transaction to check")
	Cmd.Flags().StringVarP(&Amount, "amount", "a", "", "Amount of the transaction to check")
	Cmd.Flags().StringVarP(&Date, "date", "t", "", "Date of the transaction to check (default: --as-of)")
}

func recurringFunc(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if root.SharedFlags.Input == "" {
		return fmt.Errorf("input file is required")
	}
	now, err := root.Clock()
	if err != nil {
		return err
	}

	provider := history.NewCSVProvider(root.SharedFlags.Input, root.Log)
	c, err := root.NewContainer(ctx, provider)
	if err != nil {
		return err
	}
	defer func() { _ = c.Close() }()

	detector := c.GetDetector()
	detector.Now = now
	org := root.SharedFlags.Organization

	var out any
	if Description != "" {
		cand, err := BuildCandidate(Description, Amount, Date, now())
		if err != nil {
			return err
		}
		pattern, err := detector.Detect(ctx, org, cand)
		if err != nil {
			return err
		}
		root.Log.Info("Recurring check completed",
			logging.Field{Key: logging.FieldPattern, Value: string(pattern.Pattern)},
			logging.Field{Key: logging.FieldConfidence, Value: pattern.Confidence})
		out = pattern
	} else {
		groups, err := detector.DetectGroups(ctx, org)
		if err != nil {
			return err
		}
		out = groups
	}

	w, closeFn, err := common.OpenOutput(root.SharedFlags.Output, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer func() { _ = closeFn() }()
	return common.WriteJSON(w, out)
}

// BuildCandidate turns the command-line flags into a candidate. An empty
// date means today.
func BuildCandidate(description, amount, date string, today time.Time) (models.Candidate, error) {
	value, ok := currencyutils.NormalizeAmount(amount)
	if !ok {
		return models.Candidate{}, fmt.Errorf("invalid --amount: %q", amount)
	}
	when := today
	if date != "" {
		parsed, ok := dateutils.NormalizeDate(date)
		if !ok {
			return models.Candidate{}, fmt.Errorf("invalid --date: %q", date)
		}
		when = parsed
	}
	return models.Candidate{Description: description, Amount: value, Date: when}, nil
}
