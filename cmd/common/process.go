// Package common contains shared functionality for command handlers
package common

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"fjacquet/stmt-insight/internal/logging"
	"fjacquet/stmt-insight/internal/models"
)

// StdinName selects standard input as the input file.
const StdinName = "-"

// FileParser is the rule-based dispatcher.
type FileParser interface {
	ParseFile(ctx context.Context, data []byte, fileName string) ([]models.ParsedTransaction, error)
}

// TextExtractor runs AI extraction with rule-based fallback.
type TextExtractor interface {
	Extract(ctx context.Context, text string) ([]models.ParsedTransaction, error)
}

// ReadInput reads the named file, or standard input for "-".
func ReadInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "" {
		return nil, fmt.Errorf("input file is required")
	}
	if path == StdinName {
		return io.ReadAll(stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading input file: %w", err)
	}
	return data, nil
}

// IsTextInput reports whether the input is pasted statement text rather
// than a statement file.
func IsTextInput(path string) bool {
	if path == StdinName {
		return true
	}
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".txt" || ext == ""
}

// ExtractTransactions routes text input through the AI extractor and
// statement files through the dispatcher.
func ExtractTransactions(ctx context.Context, files FileParser, text TextExtractor, data []byte, path string, log logging.Logger) ([]models.ParsedTransaction, error) {
	log = logging.OrDefault(log)
	if IsTextInput(path) {
		log.Debug("Extracting from statement text",
			logging.Field{Key: logging.FieldFile, Value: path})
		return text.Extract(ctx, string(data))
	}
	log.Debug("Parsing statement file",
		logging.Field{Key: logging.FieldFile, Value: path})
	return files.ParseFile(ctx, data, filepath.Base(path))
}

// OpenOutput returns a writer for path, or stdout when path is empty. The
// returned close function is always safe to call.
func OpenOutput(path string, stdout io.Writer) (io.Writer, func() error, error) {
	if path == "" {
		return stdout, func() error { return nil }, nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, nil, fmt.Errorf("error creating output directory: %w", err)
		}
	}
	file, err := os.Create(path) // #nosec G304 -- path comes from the command line
	if err != nil {
		return nil, nil, fmt.Errorf("error creating output file: %w", err)
	}
	return file, file.Close, nil
}

// WriteJSON writes v as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("error encoding JSON: %w", err)
	}
	return nil
}
