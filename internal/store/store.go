// Package store loads the category taxonomy used by the keyword categorizer.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"fjacquet/stmt-insight/internal/logging"
	"fjacquet/stmt-insight/internal/models"

	"gopkg.in/yaml.v3"
)

// DefaultCategoriesFile is looked up when no explicit file is configured.
const DefaultCategoriesFile = "categories.yaml"

// CategoryStore loads category definitions from a YAML file.
type CategoryStore struct {
	CategoriesFile string
	logger         logging.Logger
}

// NewCategoryStore creates a store reading categoriesFile (or categories.yaml when empty).
func NewCategoryStore(categoriesFile string, logger logging.Logger) *CategoryStore {
	return &CategoryStore{
		CategoriesFile: categoriesFile,
		logger:         logging.OrDefault(logger),
	}
}

// FindConfigFile looks for a configuration file in standard locations
func (s *CategoryStore) FindConfigFile(filename string) (string, error) {
	if filepath.IsAbs(filename) {
		if _, err := os.Stat(filename); err == nil {
			return filename, nil
		}
		return "", os.ErrNotExist
	}

	locations := []string{
		filename,
		filepath.Join("config", filename),
		filepath.Join(".stmt-insight", filename),
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		locations = append(locations, filepath.Join(homeDir, ".stmt-insight", filename))
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location, nil
		}
	}

	return "", os.ErrNotExist
}

// LoadCategories loads categories from the YAML file. A missing file is not
// an error: it returns an empty slice so callers fall back to the built-in taxonomy.
func (s *CategoryStore) LoadCategories() ([]models.CategoryConfig, error) {
	filename := s.CategoriesFile
	if filename == "" {
		filename = DefaultCategoriesFile
	}

	filePath, err := s.FindConfigFile(filename)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.logger.Debug("Categories file not found, using built-in taxonomy",
				logging.Field{Key: logging.FieldFile, Value: filename})
			return []models.CategoryConfig{}, nil
		}
		return nil, fmt.Errorf("error resolving categories file: %w", err)
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("error reading categories file: %w", err)
	}

	categories, err := ParseCategories(data)
	if err != nil {
		return nil, fmt.Errorf("error parsing categories file %s: %w", filePath, err)
	}

	s.logger.Debug("Loaded categories",
		logging.Field{Key: logging.FieldFile, Value: filePath},
		logging.Field{Key: logging.FieldCount, Value: len(categories)})
	return categories, nil
}

// ParseCategories decodes a taxonomy document. Both the "categories: [...]"
// form and a bare top-level list are accepted. Order is preserved because
// the first matching category wins.
func ParseCategories(data []byte) ([]models.CategoryConfig, error) {
	var categories []models.CategoryConfig

	var wrapped models.CategoriesConfig
	if err := yaml.Unmarshal(data, &wrapped); err == nil && len(wrapped.Categories) > 0 {
		categories = wrapped.Categories
	} else {
		var list []models.CategoryConfig
		if err := yaml.Unmarshal(data, &list); err != nil {
			return nil, fmt.Errorf("unrecognized categories document: %w", err)
		}
		categories = list
	}

	for i, c := range categories {
		if strings.TrimSpace(c.Name) == "" {
			return nil, fmt.Errorf("category %d has no name", i)
		}
	}
	return categories, nil
}
