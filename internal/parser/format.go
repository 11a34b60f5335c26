// Package parser detects the shape of a statement and routes it to the
// matching extraction strategy.
package parser

import (
	"path/filepath"
	"strings"

	"fjacquet/stmt-insight/internal/camtparser"
	"fjacquet/stmt-insight/internal/csvparser"
	"fjacquet/stmt-insight/internal/structuredparser"
)

// Format identifies an input shape.
type Format string

const (
	FormatPDF           Format = "pdf"
	FormatCSVHeader     Format = "csv"
	FormatCSVHeaderless Format = "csv-headerless"
	FormatStructured    Format = "structured"
	FormatLine          Format = "line"
	FormatCAMT          Format = "camt"
	FormatUnsupported   Format = "unsupported"
)

// Detect classifies input by file extension first and by content second.
// fileName may be empty for pasted text.
func Detect(text, fileName string) Format {
	switch extension(fileName) {
	case ".pdf":
		return FormatPDF
	case ".xlsx", ".xls":
		return FormatUnsupported
	case ".xml":
		return FormatCAMT
	case ".csv":
		if csvparser.LooksLikeHeader(firstLine(text)) {
			return FormatCSVHeader
		}
		return FormatCSVHeaderless
	}
	return detectText(text)
}

func detectText(text string) Format {
	switch {
	case structuredparser.Detect(text):
		return FormatStructured
	case camtparser.Detect([]byte(text)):
		return FormatCAMT
	case csvparser.LooksLikeHeader(firstLine(text)):
		return FormatCSVHeader
	default:
		return FormatLine
	}
}

func extension(fileName string) string {
	return strings.ToLower(filepath.Ext(fileName))
}

// firstLine returns the first non-blank line of text, trimmed.
func firstLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}
