package lineparser

import (
	"strings"

	"fjacquet/stmt-insight/internal/confidence"
	"fjacquet/stmt-insight/internal/currencyutils"
	"fjacquet/stmt-insight/internal/dateutils"
	"fjacquet/stmt-insight/internal/models"
	"fjacquet/stmt-insight/internal/textutils"
)

// minDescriptionCell is the length a cell must exceed to be taken as the description.
const minDescriptionCell = 3

// ScanCells builds a transaction from the cells of a row whose columns are
// unknown. The first cell that parses as a date becomes the date, the first
// cell holding a non-zero number becomes the amount, and the first remaining
// non-numeric cell longer than three characters becomes the description.
// Debit/credit words anywhere in the row set the sign.
func (p *Parser) ScanCells(cells []string) (models.ParsedTransaction, bool) {
	var r lineResult
	for _, raw := range cells {
		cell := strings.TrimSpace(raw)
		if cell == "" || markerCellRe.MatchString(cell) {
			continue
		}
		if !r.hasDate {
			if d, ok := dateutils.NormalizeDate(cell); ok {
				r.date, r.hasDate = d, true
				continue
			}
		}
		if amount, ok := currencyutils.NormalizeAmount(cell); ok {
			if !r.hasAmount && !amount.IsZero() {
				r.amount, r.hasAmount = amount, true
			}
			continue
		}
		if r.description == "" && len([]rune(cell)) > minDescriptionCell {
			r.description = textutils.CleanDescription(cell)
		}
	}

	if r.hasAmount {
		r.amount = applySign(r.amount, "", strings.Join(cells, " "))
	}
	if r.description == "" && !r.hasAmount {
		return models.ParsedTransaction{}, false
	}
	return buildRecord(r, confidence.StrategyCSVHeaderless, p.Now)
}
