package recurring

import (
	"context"
	"sort"
	"time"

	"fjacquet/stmt-insight/internal/logging"
	"fjacquet/stmt-insight/internal/models"

	"github.com/shopspring/decimal"
)

// DetectGroups clusters the organization's trailing history into recurring
// groups. Each record joins at most one group; records are visited oldest
// first and the oldest unassigned record seeds the next cluster.
func (d *Detector) DetectGroups(ctx context.Context, organizationID string) ([]models.RecurringGroup, error) {
	records, err := d.history(ctx, organizationID)
	if err != nil {
		return nil, err
	}
	groups := d.GroupsAgainst(records)

	d.logger.Info("Detected recurring groups",
		logging.Field{Key: logging.FieldOrganization, Value: organizationID},
		logging.Field{Key: logging.FieldCount, Value: len(groups)})
	return groups, nil
}

// GroupsAgainst clusters records without fetching history.
func (d *Detector) GroupsAgainst(records []models.HistoryRecord) []models.RecurringGroup {
	sorted := append([]models.HistoryRecord(nil), records...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	assigned := make(map[string]bool, len(sorted))
	groups := []models.RecurringGroup{}
	for i, seed := range sorted {
		if assigned[seed.ID] {
			continue
		}
		pool := make([]models.HistoryRecord, 0, len(sorted)-i-1)
		for _, r := range sorted[i+1:] {
			if !assigned[r.ID] {
				pool = append(pool, r)
			}
		}

		pattern := d.DetectAgainst(seed, pool)
		if !pattern.IsRecurring {
			continue
		}

		members := append([]models.HistoryRecord{seed}, d.similar(seed, pool)...)
		groupID := seed.GroupID
		if groupID == "" {
			groupID = pattern.GroupID
		}
		group := models.RecurringGroup{
			GroupID:          groupID,
			Description:      seed.Description,
			Pattern:          pattern.Pattern,
			Confidence:       pattern.Confidence,
			AverageAmount:    averageAmount(members),
			TransactionIDs:   make([]string, 0, len(members)),
			NextExpectedDate: nextExpected(pattern.Pattern, members),
		}
		for _, m := range members {
			assigned[m.ID] = true
			group.TransactionIDs = append(group.TransactionIDs, m.ID)
		}
		groups = append(groups, group)
	}
	return groups
}

func averageAmount(members []models.HistoryRecord) decimal.Decimal {
	amounts := make([]decimal.Decimal, len(members))
	for i, m := range members {
		amounts[i] = m.Amount
	}
	return decimal.Avg(amounts[0], amounts[1:]...).Round(2)
}

func nextExpected(pattern models.PatternType, members []models.HistoryRecord) *time.Time {
	dates := make([]time.Time, len(members))
	for i, m := range members {
		dates[i] = m.Date
	}
	next := pattern.Next(latest(dates))
	return &next
}
