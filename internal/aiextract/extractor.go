package aiextract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"fjacquet/stmt-insight/internal/categorizer"
	"fjacquet/stmt-insight/internal/confidence"
	"fjacquet/stmt-insight/internal/currencyutils"
	"fjacquet/stmt-insight/internal/dateutils"
	"fjacquet/stmt-insight/internal/logging"
	"fjacquet/stmt-insight/internal/models"
	"fjacquet/stmt-insight/internal/parsererror"
	"fjacquet/stmt-insight/internal/textutils"

	"github.com/shopspring/decimal"
)

const (
	// DefaultTimeout bounds a single model call.
	DefaultTimeout = 30 * time.Second

	// DefaultTemperature keeps replies close to deterministic.
	DefaultTemperature float32 = 0.1

	// DefaultMaxTokens caps the reply size.
	DefaultMaxTokens = 4096
)

const systemPrompt = `You extract bank and card transactions from statement text.
Reply with JSON only, no prose and no code fences, using exactly this shape:
{"transactions":[{"date":"YYYY-MM-DD","description":"...","amount":-123.45,"category":"...","counterparty":"..."}]}
Rules:
- amount is negative for debits, withdrawals and purchases, positive for credits and deposits.
- date is ISO 8601. Day-first dates such as 12/11/2025 mean 12 November 2025.
- description is the transaction narration without dates, amounts or balances.
- category and counterparty may be empty strings when unknown.
- If the text contains no transactions reply {"transactions":[]}.`

const userPromptPrefix = "Extract every transaction from this statement:\n\n"

// TextParser is the rule-based pipeline used when the model is unavailable.
type TextParser interface {
	ParseText(ctx context.Context, text string) ([]models.ParsedTransaction, error)
}

// Extractor runs model extraction with a mandatory rule-based fallback.
type Extractor struct {
	completer   Completer
	fallback    TextParser
	categorizer categorizer.Categorizer
	timeout     time.Duration
	maxTokens   int
	temperature float32
	logger      logging.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithTimeout sets the per-call model timeout.
func WithTimeout(d time.Duration) Option {
	return func(e *Extractor) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithMaxTokens sets the reply size cap.
func WithMaxTokens(n int) Option {
	return func(e *Extractor) {
		if n > 0 {
			e.maxTokens = n
		}
	}
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float32) Option {
	return func(e *Extractor) {
		if t >= 0 {
			e.temperature = t
		}
	}
}

// NewExtractor creates an Extractor. A nil completer means no credential is
// configured and every call goes straight to fallback.
func NewExtractor(completer Completer, fallback TextParser, cat categorizer.Categorizer, logger logging.Logger, opts ...Option) *Extractor {
	logger = logging.OrDefault(logger)
	if cat == nil {
		cat = categorizer.NewKeywordCategorizer(categorizer.DefaultTaxonomy(), "", logger)
	}
	e := &Extractor{
		completer:   completer,
		fallback:    fallback,
		categorizer: cat,
		timeout:     DefaultTimeout,
		maxTokens:   DefaultMaxTokens,
		temperature: DefaultTemperature,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract returns model-extracted transactions, or the fallback pipeline's
// result when the model is not configured or fails in any way.
func (e *Extractor) Extract(ctx context.Context, text string) ([]models.ParsedTransaction, error) {
	if e.completer == nil {
		return e.fallback.ParseText(ctx, text)
	}

	txs, err := e.extractWithModel(ctx, text)
	if err != nil {
		e.logger.WithError(err).Warn("AI extraction failed, using rule-based parsers",
			logging.Field{Key: logging.FieldService, Value: "ai"})
		return e.fallback.ParseText(ctx, text)
	}

	e.logger.Info("Extracted transactions with AI",
		logging.Field{Key: logging.FieldCount, Value: len(txs)})
	return txs, nil
}

func (e *Extractor) extractWithModel(ctx context.Context, text string) ([]models.ParsedTransaction, error) {
	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	raw, err := e.completer.Complete(callCtx, systemPrompt, userPromptPrefix+text, CompletionOptions{
		Temperature:    e.temperature,
		MaxTokens:      e.maxTokens,
		ResponseFormat: ResponseJSON,
	})
	if err != nil {
		if errors.Is(err, parsererror.ErrServiceUnavailable) {
			return nil, err
		}
		return nil, &parsererror.ServiceUnavailableError{Service: "ai", Err: err}
	}

	records, err := decodeRecords(raw)
	if err != nil {
		return nil, &parsererror.ServiceUnavailableError{Service: "ai", Err: err}
	}

	txs := make([]models.ParsedTransaction, 0, len(records))
	for i, rec := range records {
		tx, err := e.toTransaction(rec)
		if err != nil {
			return nil, &parsererror.ServiceUnavailableError{
				Service: "ai",
				Err:     fmt.Errorf("record %d: %w", i, err),
			}
		}
		txs = append(txs, tx)
	}
	return txs, nil
}

// aiRecord is one element of the model's JSON reply.
type aiRecord struct {
	Date         string          `json:"date"`
	Description  string          `json:"description"`
	Amount       json.RawMessage `json:"amount"`
	Category     string          `json:"category"`
	Counterparty string          `json:"counterparty"`
}

// decodeStage tries one interpretation of the reply.
type decodeStage func(raw string) ([]aiRecord, bool)

var decodeStages = []decodeStage{decodeArray, decodeEnvelope, decodeEmbeddedArray}

// decodeRecords runs the stages in order and returns the first that parses.
// An empty transaction list is an error.
func decodeRecords(raw string) ([]aiRecord, error) {
	raw = stripFences(raw)
	for _, stage := range decodeStages {
		if records, ok := stage(raw); ok {
			if len(records) == 0 {
				return nil, errors.New("model returned no transactions")
			}
			return records, nil
		}
	}
	return nil, errors.New("model reply is not valid transaction JSON")
}

func decodeArray(raw string) ([]aiRecord, bool) {
	var records []aiRecord
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		return nil, false
	}
	return records, true
}

func decodeEnvelope(raw string) ([]aiRecord, bool) {
	var env struct {
		Transactions *[]aiRecord `json:"transactions"`
	}
	if err := json.Unmarshal([]byte(raw), &env); err != nil || env.Transactions == nil {
		return nil, false
	}
	return *env.Transactions, true
}

func decodeEmbeddedArray(raw string) ([]aiRecord, bool) {
	start := strings.Index(raw, "[")
	end := strings.LastIndex(raw, "]")
	if start < 0 || end <= start {
		return nil, false
	}
	return decodeArray(raw[start : end+1])
}

func stripFences(raw string) string {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "```") {
		return raw
	}
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")
	return strings.TrimSpace(raw)
}

// toTransaction validates a record. Every field the model must supply has
// to parse, otherwise the whole reply is rejected.
func (e *Extractor) toTransaction(rec aiRecord) (models.ParsedTransaction, error) {
	date, ok := dateutils.NormalizeDate(rec.Date)
	if !ok {
		return models.ParsedTransaction{}, fmt.Errorf("invalid date %q", rec.Date)
	}
	description := textutils.CleanDescription(rec.Description)
	if description == "" {
		return models.ParsedTransaction{}, errors.New("empty description")
	}
	amount, err := parseRawAmount(rec.Amount)
	if err != nil {
		return models.ParsedTransaction{}, err
	}

	category := strings.TrimSpace(rec.Category)
	if category == "" {
		category = e.categorizer.Categorize(description)
	}
	counterparty := strings.TrimSpace(rec.Counterparty)
	if counterparty == "" {
		counterparty = textutils.ExtractCounterparty(description)
	}

	return models.NewTransactionBuilder().
		WithDate(date).
		WithDescription(description).
		WithAmount(amount).
		WithCategory(category).
		WithCounterparty(counterparty).
		WithConfidence(confidence.StrategyAI.Base()).
		Build()
}

// parseRawAmount accepts a JSON number or a formatted amount string.
func parseRawAmount(raw json.RawMessage) (decimal.Decimal, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return decimal.Zero, errors.New("missing amount")
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		amount, ok := currencyutils.NormalizeAmount(s)
		if !ok {
			return decimal.Zero, fmt.Errorf("invalid amount %q", s)
		}
		return amount, nil
	}
	amount, err := decimal.NewFromString(string(raw))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %s: %w", raw, err)
	}
	return amount, nil
}
