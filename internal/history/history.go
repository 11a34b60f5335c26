// Package history supplies an organization's past transactions to the
// anomaly scorer and the recurring detector.
package history

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"fjacquet/stmt-insight/internal/common"
	"fjacquet/stmt-insight/internal/currencyutils"
	"fjacquet/stmt-insight/internal/dateutils"
	"fjacquet/stmt-insight/internal/logging"
	"fjacquet/stmt-insight/internal/models"
)

// Provider lists an organization's transactions dated on or after since.
type Provider interface {
	ListTransactions(ctx context.Context, organizationID string, since time.Time) ([]models.HistoryRecord, error)
}

// Static serves a fixed set of records for every organization.
type Static []models.HistoryRecord

// ListTransactions implements Provider.
func (s Static) ListTransactions(_ context.Context, _ string, since time.Time) ([]models.HistoryRecord, error) {
	return filterSince(s, since), nil
}

func filterSince(records []models.HistoryRecord, since time.Time) []models.HistoryRecord {
	out := make([]models.HistoryRecord, 0, len(records))
	for _, r := range records {
		if !r.Date.Before(since) {
			out = append(out, r)
		}
	}
	return out
}

// csvRow is the on-disk history shape. Organization is optional; rows
// without it belong to every organization.
type csvRow struct {
	ID           string `csv:"ID"`
	Organization string `csv:"Organization"`
	Date         string `csv:"Date"`
	Description  string `csv:"Description"`
	Amount       string `csv:"Amount"`
	Category     string `csv:"Category"`
	GroupID      string `csv:"GroupID"`
}

// CSVProvider reads history from a CSV file, loaded once on first use.
type CSVProvider struct {
	path   string
	logger logging.Logger

	once    sync.Once
	rows    []csvRow
	loadErr error
}

// NewCSVProvider creates a provider for the CSV file at path.
func NewCSVProvider(path string, logger logging.Logger) *CSVProvider {
	return &CSVProvider{path: path, logger: logging.OrDefault(logger)}
}

// ListTransactions implements Provider. Rows with an unreadable date or
// amount are skipped. Records are returned oldest first.
func (p *CSVProvider) ListTransactions(ctx context.Context, organizationID string, since time.Time) ([]models.HistoryRecord, error) {
	p.once.Do(func() {
		p.rows, p.loadErr = common.ReadCSVFile[csvRow](p.path, p.logger)
	})
	if p.loadErr != nil {
		return nil, fmt.Errorf("error loading history from %s: %w", p.path, p.loadErr)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	records := make([]models.HistoryRecord, 0, len(p.rows))
	for i, row := range p.rows {
		if organizationID != "" && row.Organization != "" && row.Organization != organizationID {
			continue
		}
		rec, ok := toRecord(row, i)
		if !ok {
			p.logger.Debug("Skipping unreadable history row",
				logging.Field{Key: logging.FieldLine, Value: i + 2})
			continue
		}
		if rec.Date.Before(since) {
			continue
		}
		records = append(records, rec)
	}
	sort.SliceStable(records, func(i, j int) bool { return records[i].Date.Before(records[j].Date) })

	p.logger.Debug("Loaded history",
		logging.Field{Key: logging.FieldOrganization, Value: organizationID},
		logging.Field{Key: logging.FieldCount, Value: len(records)})
	return records, nil
}

func toRecord(row csvRow, index int) (models.HistoryRecord, bool) {
	date, ok := dateutils.NormalizeDate(row.Date)
	if !ok {
		return models.HistoryRecord{}, false
	}
	amount, err := currencyutils.ParseAmount(row.Amount)
	if err != nil {
		return models.HistoryRecord{}, false
	}
	id := row.ID
	if id == "" {
		id = "row-" + strconv.Itoa(index+1)
	}
	return models.HistoryRecord{
		ID:          id,
		Date:        date,
		Description: row.Description,
		Amount:      amount,
		Category:    row.Category,
		GroupID:     row.GroupID,
	}, true
}
