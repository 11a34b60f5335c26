package parser

import (
	"context"
	"strings"
	"time"

	"fjacquet/stmt-insight/internal/camtparser"
	"fjacquet/stmt-insight/internal/categorizer"
	"fjacquet/stmt-insight/internal/csvparser"
	"fjacquet/stmt-insight/internal/lineparser"
	"fjacquet/stmt-insight/internal/logging"
	"fjacquet/stmt-insight/internal/models"
	"fjacquet/stmt-insight/internal/parsererror"
	"fjacquet/stmt-insight/internal/pdfparser"
	"fjacquet/stmt-insight/internal/structuredparser"
)

const (
	sourceText = "text"

	hintText = "no dates or amounts were recognized; check the statement is text and not a scanned image"
	hintCSV  = "no rows could be mapped; make sure the file has date and amount columns"
	hintPDF  = "the PDF did not contain extractable text"
)

// Dispatcher routes raw statements to the parser for their format and
// assigns categories to the result.
type Dispatcher struct {
	structured  *structuredparser.Parser
	lines       *lineparser.Parser
	csv         *csvparser.Parser
	camt        *camtparser.Parser
	pdf         pdfparser.PDFExtractor
	categorizer categorizer.Categorizer
	logger      logging.Logger
}

// NewDispatcher creates a Dispatcher. A nil extractor uses the ledongthuc
// implementation and a nil categorizer uses the default taxonomy.
func NewDispatcher(extractor pdfparser.PDFExtractor, cat categorizer.Categorizer, logger logging.Logger) *Dispatcher {
	logger = logging.OrDefault(logger)
	if extractor == nil {
		extractor = pdfparser.NewLedongthucExtractor(logger)
	}
	if cat == nil {
		cat = categorizer.NewKeywordCategorizer(categorizer.DefaultTaxonomy(), "", logger)
	}
	lines := lineparser.NewParser(logger)
	return &Dispatcher{
		structured:  structuredparser.NewParser(logger),
		lines:       lines,
		csv:         csvparser.NewParser(lines, logger),
		camt:        camtparser.NewParser(logger),
		pdf:         extractor,
		categorizer: cat,
		logger:      logger,
	}
}

// SetClock replaces the clock used for records without a date.
func (d *Dispatcher) SetClock(now func() time.Time) {
	d.structured.Now = now
	d.lines.Now = now
	d.csv.Now = now
	d.camt.Now = now
}

// ParseFile parses the bytes of an uploaded file, choosing the strategy from
// the file extension.
func (d *Dispatcher) ParseFile(ctx context.Context, data []byte, fileName string) ([]models.ParsedTransaction, error) {
	format := Detect(string(data), fileName)
	log := d.logger.WithFields(
		logging.Field{Key: logging.FieldFile, Value: fileName},
		logging.Field{Key: logging.FieldFormat, Value: string(format)},
	)
	log.Debug("Dispatching file")

	switch format {
	case FormatUnsupported:
		return nil, &parsererror.UnsupportedFormatError{FileName: fileName, Extension: extension(fileName)}

	case FormatPDF:
		text, err := d.pdf.ExtractText(ctx, data)
		if err != nil {
			log.WithError(err).Warn("PDF text extraction failed")
			return nil, &parsererror.NoDataFoundError{Source: fileName, Hint: hintPDF}
		}
		return d.parseText(text, fileName)

	case FormatCAMT:
		txs, err := d.camt.Parse(data)
		if err != nil {
			log.WithError(err).Debug("Not a CAMT statement, parsing as text")
			return d.parseText(string(data), fileName)
		}
		return d.finish(txs, fileName, hintText)

	case FormatCSVHeader, FormatCSVHeaderless:
		return d.parseCSV(data, fileName, log)
	}

	return d.parseText(string(data), fileName)
}

// ParseText parses pasted statement text.
func (d *Dispatcher) ParseText(_ context.Context, text string) ([]models.ParsedTransaction, error) {
	return d.parseText(text, sourceText)
}

func (d *Dispatcher) parseText(text, source string) ([]models.ParsedTransaction, error) {
	format := detectText(text)
	d.logger.Debug("Parsing text",
		logging.Field{Key: logging.FieldFile, Value: source},
		logging.Field{Key: logging.FieldFormat, Value: string(format)})

	switch format {
	case FormatStructured:
		return d.finish(d.structured.Parse(text), source, hintText)
	case FormatCAMT:
		if txs, err := d.camt.Parse([]byte(text)); err == nil {
			return d.finish(txs, source, hintText)
		}
	case FormatCSVHeader:
		txs, err := d.csv.ParseWithHeaders([]byte(strings.TrimSpace(text)))
		if err == nil && len(txs) > 0 {
			return d.finish(txs, source, hintCSV)
		}
	}
	return d.finish(d.lines.Parse(text), source, hintText)
}

func (d *Dispatcher) parseCSV(data []byte, fileName string, log logging.Logger) ([]models.ParsedTransaction, error) {
	txs, err := d.csv.ParseWithHeaders(data)
	if err != nil {
		log.WithError(err).Warn("CSV could not be read, parsing as text")
		return d.parseText(string(data), fileName)
	}
	if len(txs) == 0 {
		log.Debug("No rows mapped from headers, retrying as headerless CSV")
		if txs, err = d.csv.ParseHeaderless(data); err != nil {
			log.WithError(err).Warn("Headerless CSV parse failed")
		}
	}
	return d.finish(txs, fileName, hintCSV)
}

// finish categorizes uncategorized records and turns an empty result into
// a NoDataFoundError.
func (d *Dispatcher) finish(txs []models.ParsedTransaction, source, hint string) ([]models.ParsedTransaction, error) {
	if len(txs) == 0 {
		return nil, &parsererror.NoDataFoundError{Source: source, Hint: hint}
	}
	for i := range txs {
		if txs[i].Category == "" {
			txs[i].Category = d.categorizer.Categorize(txs[i].Description)
		}
	}
	d.logger.Info("Extracted transactions",
		logging.Field{Key: logging.FieldFile, Value: source},
		logging.Field{Key: logging.FieldCount, Value: len(txs)})
	return txs, nil
}
