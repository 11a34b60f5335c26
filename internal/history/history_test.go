package history

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"fjacquet/stmt-insight/internal/logging"
	"fjacquet/stmt-insight/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const historyCSV = `ID,Organization,Date,Description,Amount,Category,GroupID
t3,acme,2025-10-15,NETFLIX.COM SUBSCRIPTION,-15.99,Entertainment,g-1
t1,acme,2025-08-15,NETFLIX.COM SUBSCRIPTION,-15.99,Entertainment,
t2,other,2025-09-15,Rent,-1200,Bills,
,,15/09/2025,Coffee,"-4,50",,
t5,acme,someday,Broken,-1,,
t6,acme,2024-01-01,Too old,-1,,
`

func writeHistory(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "history.csv")
	require.NoError(t, os.WriteFile(path, []byte(historyCSV), 0600))
	return path
}

func TestCSVProvider_ListTransactions(t *testing.T) {
	p := NewCSVProvider(writeHistory(t), logging.NewMockLogger())
	since := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	records, err := p.ListTransactions(context.Background(), "acme", since)
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, "t1", records[0].ID)
	assert.Equal(t, "row-4", records[1].ID)
	assert.Equal(t, "-4.5", records[1].Amount.String())
	assert.Equal(t, "t3", records[2].ID)
	assert.Equal(t, "g-1", records[2].GroupID)

	all, err := p.ListTransactions(context.Background(), "", since)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestCSVProvider_MissingFile(t *testing.T) {
	p := NewCSVProvider(filepath.Join(t.TempDir(), "missing.csv"), nil)
	_, err := p.ListTransactions(context.Background(), "acme", time.Time{})
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestStatic(t *testing.T) {
	s := Static{
		{ID: "a", Date: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), Amount: decimal.NewFromInt(1)},
		{ID: "b", Date: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), Amount: decimal.NewFromInt(2)},
	}
	records, err := s.ListTransactions(context.Background(), "any", time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, []models.HistoryRecord{s[1]}, records)
}
