// Package extract handles the statement extraction command
package extract

import (
	"fmt"

	"fjacquet/stmt-insight/cmd/common"
	"fjacquet/stmt-insight/cmd/root"
	csvcommon "fjacquet/stmt-insight/internal/common"
	"fjacquet/stmt-insight/internal/logging"
	"fjacquet/stmt-insight/internal/models"

	"github.com/spf13/cobra"
)

// Output formats
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
)

// OutputFormat selects csv or json output
var OutputFormat string

// Cmd represents the extract command
var Cmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract transactions from a statement file or pasted text",
	Long: `Extract transactions from a PDF, CSV or CAMT.053 statement, or from pasted
statement text (a .txt file or "-" for stdin). Text input goes through the AI
extractor when configured and falls back to the rule-based parsers.`,
	RunE: extractFunc,
}

func init() {
	Cmd.Flags().StringVarP(&OutputFormat, "format", "f", FormatCSV, "Output format: csv or json")
}

func extractFunc(cmd *cobra.Command, args []string) error {
	if OutputFormat != FormatCSV && OutputFormat != FormatJSON {
		return fmt.Errorf("invalid output format: %s (must be 'csv' or 'json')", OutputFormat)
	}

	ctx := cmd.Context()
	data, err := common.ReadInput(root.SharedFlags.Input, cmd.InOrStdin())
	if err != nil {
		return err
	}

	now, err := root.Clock()
	if err != nil {
		return err
	}

	c, err := root.NewContainer(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := c.Close(); cerr != nil {
			root.Log.WithError(cerr).Warn("Failed to close container")
		}
	}()
	c.GetDispatcher().SetClock(now)

	txs, err := common.ExtractTransactions(ctx, c.GetDispatcher(), c.GetExtractor(), data, root.SharedFlags.Input, root.Log)
	if err != nil {
		return err
	}

	if err := writeOutput(cmd, txs); err != nil {
		return err
	}

	root.Log.Info("Extraction completed",
		logging.Field{Key: logging.FieldFile, Value: root.SharedFlags.Input},
		logging.Field{Key: logging.FieldCount, Value: len(txs)},
		logging.Field{Key: "ai_enabled", Value: c.AIEnabled()})
	return nil
}

func writeOutput(cmd *cobra.Command, txs []models.ParsedTransaction) error {
	if OutputFormat == FormatCSV && root.SharedFlags.Output != "" {
		return csvcommon.WriteTransactionsToCSV(txs, root.SharedFlags.Output, root.AppConfig.Delimiter(), root.Log)
	}

	w, closeFn, err := common.OpenOutput(root.SharedFlags.Output, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer func() { _ = closeFn() }()

	if OutputFormat == FormatJSON {
		return common.WriteJSON(w, txs)
	}
	return csvcommon.WriteTransactionsCSV(w, txs, root.AppConfig.Delimiter())
}
