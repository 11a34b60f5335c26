// Package categorizer maps transaction descriptions to a fixed category
// taxonomy by case-insensitive keyword matching.
package categorizer

import (
	_ "embed"
	"fmt"
	"strings"

	"fjacquet/stmt-insight/internal/logging"
	"fjacquet/stmt-insight/internal/models"
	"fjacquet/stmt-insight/internal/store"
)

//go:embed default_categories.yaml
var defaultCategoriesYAML []byte

// Categorizer assigns a category to a description.
type Categorizer interface {
	Categorize(description string) string
}

// DefaultTaxonomy returns the built-in ordered taxonomy.
func DefaultTaxonomy() []models.CategoryConfig {
	categories, err := store.ParseCategories(defaultCategoriesYAML)
	if err != nil {
		panic(fmt.Sprintf("categorizer: invalid built-in taxonomy: %v", err))
	}
	return categories
}

type category struct {
	name     string
	keywords []string // lower-cased
}

// KeywordCategorizer is an immutable keyword lookup table. It is safe for concurrent use.
type KeywordCategorizer struct {
	categories []category
	fallback   string
	logger     logging.Logger
}

// NewKeywordCategorizer builds a categorizer over taxonomy. The slice is
// copied, so later changes by the caller have no effect. An empty fallback
// defaults to models.CategoryOther.
func NewKeywordCategorizer(taxonomy []models.CategoryConfig, fallback string, logger logging.Logger) *KeywordCategorizer {
	if fallback == "" {
		fallback = models.CategoryOther
	}
	c := &KeywordCategorizer{
		categories: make([]category, 0, len(taxonomy)),
		fallback:   fallback,
		logger:     logging.OrDefault(logger),
	}
	for _, cfg := range taxonomy {
		entry := category{name: cfg.Name}
		for _, kw := range cfg.Keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw != "" {
				entry.keywords = append(entry.keywords, kw)
			}
		}
		c.categories = append(c.categories, entry)
	}
	return c
}

// Match returns the first category whose keyword list has a substring
// match in description, along with the keyword that matched.
func (c *KeywordCategorizer) Match(description string) (name, keyword string, ok bool) {
	lower := strings.ToLower(description)
	if strings.TrimSpace(lower) == "" {
		return "", "", false
	}
	for _, cat := range c.categories {
		for _, kw := range cat.keywords {
			if strings.Contains(lower, kw) {
				return cat.name, kw, true
			}
		}
	}
	return "", "", false
}

// Categorize returns the matched category or the fallback category.
func (c *KeywordCategorizer) Categorize(description string) string {
	name, keyword, ok := c.Match(description)
	if !ok {
		return c.fallback
	}
	c.logger.Debug("Description categorized by keyword",
		logging.Field{Key: logging.FieldCategory, Value: name},
		logging.Field{Key: "keyword", Value: keyword})
	return name
}

// Fallback returns the category used when nothing matches.
func (c *KeywordCategorizer) Fallback() string {
	return c.fallback
}
