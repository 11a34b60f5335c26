package anomalies_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"fjacquet/stmt-insight/cmd/anomalies"
	"fjacquet/stmt-insight/cmd/root"
	"fjacquet/stmt-insight/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	root.Init()
	root.Cmd.AddCommand(anomalies.Cmd)
}

// writeHistory writes twelve weekday Shopping purchases in November 2025
// followed by a large gift card purchase on Monday 15 December.
func writeHistory(t *testing.T) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("ID,Organization,Date,Description,Amount,Category,GroupID\n")
	days := []int{3, 4, 5, 6, 7, 10, 11, 12, 13, 14, 17, 18}
	amounts := []string{"-100.00", "-110.00", "-90.00"}
	for i, day := range days {
		fmt.Fprintf(&b, "h%d,acme,2025-11-%02d,Order %c,%s,Shopping,\n", i, day, 'A'+i, amounts[i%3])
	}
	b.WriteString("c1,acme,2025-12-15,Amazon gift card,-5000.00,Shopping,\n")

	path := filepath.Join(t.TempDir(), "history.csv")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o600))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Chdir(t.TempDir())
	root.SharedFlags = root.CommonFlags{}
	anomalies.HistoryFile = ""
	anomalies.ShowAll = false

	var out bytes.Buffer
	root.Cmd.SetOut(&out)
	root.Cmd.SetArgs(args)
	err := root.Cmd.Execute()
	return out.String(), err
}

func TestAnomaliesCommand_FlagsOnlyOutlier(t *testing.T) {
	path := writeHistory(t)

	out, err := run(t, "anomalies", "-i", path, "--org", "acme", "--as-of", "2025-12-15")
	require.NoError(t, err)

	var reports []anomalies.Report
	require.NoError(t, json.Unmarshal([]byte(out), &reports))
	require.Len(t, reports, 1)
	assert.Equal(t, "c1", reports[0].ID)
	assert.True(t, reports[0].Result.IsAnomaly)
	assert.Equal(t, 100, reports[0].Result.Score)
	assert.Contains(t, reports[0].Result.Reasons, `Description contains "gift card"`)
}

func TestAnomaliesCommand_All(t *testing.T) {
	path := writeHistory(t)

	out, err := run(t, "anomalies", "-i", path, "--history", path, "--all", "--as-of", "2025-12-15")
	require.NoError(t, err)

	var reports []anomalies.Report
	require.NoError(t, json.Unmarshal([]byte(out), &reports))
	assert.Len(t, reports, 13)
	assert.Equal(t, "c1", reports[0].ID)
}

func TestAnomaliesCommand_RequiresInput(t *testing.T) {
	_, err := run(t, "anomalies")
	assert.ErrorContains(t, err, "input file is required")
}

func TestBuildReports(t *testing.T) {
	day := time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)
	candidates := []models.Candidate{
		{ID: "a", Date: day, Description: "low", Amount: decimal.NewFromInt(-10)},
		{ID: "b", Date: day, Description: "high", Amount: decimal.NewFromInt(-900)},
		{ID: "c", Date: day, Description: "missing", Amount: decimal.NewFromInt(-1)},
	}
	results := map[string]models.AnomalyResult{
		"a": {Score: 20, Reasons: []string{"x"}},
		"b": {IsAnomaly: true, Score: 70, Reasons: []string{"y"}},
	}

	flagged := anomalies.BuildReports(candidates, results, false)
	require.Len(t, flagged, 1)
	assert.Equal(t, "b", flagged[0].ID)

	all := anomalies.BuildReports(candidates, results, true)
	require.Len(t, all, 2)
	assert.Equal(t, []string{"b", "a"}, []string{all[0].ID, all[1].ID})
}
