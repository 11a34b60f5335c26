// Package container wires the stmt-insight components from configuration.
package container

import (
	"context"
	"fmt"

	"fjacquet/stmt-insight/internal/aiextract"
	"fjacquet/stmt-insight/internal/anomaly"
	"fjacquet/stmt-insight/internal/categorizer"
	"fjacquet/stmt-insight/internal/config"
	"fjacquet/stmt-insight/internal/history"
	"fjacquet/stmt-insight/internal/logging"
	"fjacquet/stmt-insight/internal/parser"
	"fjacquet/stmt-insight/internal/pdfparser"
	"fjacquet/stmt-insight/internal/recurring"
	"fjacquet/stmt-insight/internal/store"
)

// Container holds all application dependencies.
//
// Container is immutable after creation: fields are private and exposed
// through getters.
type Container struct {
	logger      logging.Logger
	config      *config.Config
	store       *store.CategoryStore
	categorizer *categorizer.KeywordCategorizer
	dispatcher  *parser.Dispatcher
	completer   *aiextract.GeminiCompleter
	extractor   *aiextract.Extractor
	scorer      *anomaly.Scorer
	detector    *recurring.Detector
}

// NewContainer creates and wires all application dependencies. provider
// supplies organization history to the anomaly scorer and recurring
// detector; nil means an empty history.
func NewContainer(ctx context.Context, cfg *config.Config, provider history.Provider) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	return newContainer(ctx, cfg, provider, config.ConfigureLogging(cfg))
}

func newContainer(ctx context.Context, cfg *config.Config, provider history.Provider, logger logging.Logger) (*Container, error) {
	if provider == nil {
		provider = history.Static(nil)
	}

	categoryStore := store.NewCategoryStore(cfg.Categorization.CategoriesFile, logger)
	taxonomy, err := categoryStore.LoadCategories()
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}
	if len(taxonomy) == 0 {
		taxonomy = categorizer.DefaultTaxonomy()
	}
	cat := categorizer.NewKeywordCategorizer(taxonomy, cfg.Categorization.DefaultCategory, logger)

	dispatcher := parser.NewDispatcher(pdfparser.NewLedongthucExtractor(logger), cat, logger)

	var completer *aiextract.GeminiCompleter
	if cfg.AIAvailable() {
		completer, err = aiextract.NewGeminiCompleter(ctx, cfg.AI.APIKey, cfg.AI.Model, cfg.AI.RequestsPerMinute, logger)
		if err != nil {
			return nil, err
		}
		logger.Info("AI extraction enabled",
			logging.Field{Key: logging.FieldService, Value: cfg.AI.Model})
	} else {
		logger.Info("AI extraction disabled")
	}

	opts := []aiextract.Option{
		aiextract.WithTimeout(cfg.AITimeout()),
		aiextract.WithMaxTokens(cfg.AI.MaxTokens),
		aiextract.WithTemperature(float32(cfg.AI.Temperature)),
	}
	// a typed nil completer must not reach the interface
	var model aiextract.Completer
	if completer != nil {
		model = completer
	}
	extractor := aiextract.NewExtractor(model, dispatcher, cat, logger, opts...)

	c := &Container{
		logger:      logger,
		config:      cfg,
		store:       categoryStore,
		categorizer: cat,
		dispatcher:  dispatcher,
		completer:   completer,
		extractor:   extractor,
		scorer:      anomaly.NewScorer(provider, cfg.AnomalyConfig(), logger),
		detector:    recurring.NewDetector(provider, cfg.RecurringConfig(), logger),
	}

	logger.Debug("Container initialized",
		logging.Field{Key: logging.FieldCount, Value: len(taxonomy)})
	return c, nil
}

// GetLogger returns the container's logger.
func (c *Container) GetLogger() logging.Logger { return c.logger }

// GetConfig returns the configuration the container was built from.
func (c *Container) GetConfig() *config.Config { return c.config }

// GetStore returns the category store.
func (c *Container) GetStore() *store.CategoryStore { return c.store }

// GetCategorizer returns the keyword categorizer.
func (c *Container) GetCategorizer() *categorizer.KeywordCategorizer { return c.categorizer }

// GetDispatcher returns the rule-based parsing pipeline.
func (c *Container) GetDispatcher() *parser.Dispatcher { return c.dispatcher }

// GetExtractor returns the AI extractor. It is always non-nil and falls back
// to the dispatcher when AI is disabled.
func (c *Container) GetExtractor() *aiextract.Extractor { return c.extractor }

// GetScorer returns the anomaly scorer.
func (c *Container) GetScorer() *anomaly.Scorer { return c.scorer }

// GetDetector returns the recurring-pattern detector.
func (c *Container) GetDetector() *recurring.Detector { return c.detector }

// AIEnabled reports whether a model client was created.
func (c *Container) AIEnabled() bool { return c.completer != nil }

// Close releases the model client, if any.
func (c *Container) Close() error {
	if c.completer != nil {
		if err := c.completer.Close(); err != nil {
			return fmt.Errorf("failed to close AI client: %w", err)
		}
	}
	c.logger.Debug("Container closed")
	return nil
}
