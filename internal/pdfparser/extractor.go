// Package pdfparser turns PDF statements into plain text for the text parsers.
package pdfparser

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"fjacquet/stmt-insight/internal/logging"
	"fjacquet/stmt-insight/internal/parsererror"

	"github.com/ledongthuc/pdf"
)

// ErrNoText is returned when a PDF holds no extractable text, as with
// scanned statements.
var ErrNoText = errors.New("pdf contains no extractable text")

// PDFExtractor extracts the text content of a PDF document.
type PDFExtractor interface {
	ExtractText(ctx context.Context, data []byte) (string, error)
}

// LedongthucExtractor implements PDFExtractor with github.com/ledongthuc/pdf.
type LedongthucExtractor struct {
	logger logging.Logger
}

// NewLedongthucExtractor creates a LedongthucExtractor.
func NewLedongthucExtractor(logger logging.Logger) *LedongthucExtractor {
	return &LedongthucExtractor{logger: logging.OrDefault(logger)}
}

// ExtractText reads rows page by page, falling back to the whole-document
// plain text stream when row extraction yields nothing.
func (e *LedongthucExtractor) ExtractText(ctx context.Context, data []byte) (text string, err error) {
	if !bytes.HasPrefix(bytes.TrimLeft(data, " \t\r\n"), []byte("%PDF")) {
		return "", &parsererror.InvalidFormatError{
			ExpectedFormat:       "PDF",
			ActualContentSnippet: snippet(data),
			Msg:                  "missing %PDF header",
		}
	}

	defer func() {
		if r := recover(); r != nil {
			err = &parsererror.ParseError{Parser: "PDF", Field: "text extraction", Err: fmt.Errorf("pdf library panic: %v", r)}
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", &parsererror.ParseError{Parser: "PDF", Field: "document", Err: err}
	}

	pages := make([]string, 0, reader.NumPage())
	for i := 1; i <= reader.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if page := pageRows(reader.Page(i)); page != "" {
			pages = append(pages, page)
		}
	}
	text = strings.Join(pages, "\n")

	if strings.TrimSpace(text) == "" {
		e.logger.Debug("Row extraction empty, falling back to plain text")
		text = plainText(reader)
	}
	if strings.TrimSpace(text) == "" {
		return "", ErrNoText
	}

	e.logger.Debug("Extracted PDF text",
		logging.Field{Key: "pages", Value: reader.NumPage()},
		logging.Field{Key: "chars", Value: len(text)})
	return text, nil
}

func pageRows(page pdf.Page) string {
	if page.V.IsNull() {
		return ""
	}
	rows, err := page.GetTextByRow()
	if err != nil {
		return ""
	}
	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		words := make([]string, 0, len(row.Content))
		for _, word := range row.Content {
			words = append(words, word.S)
		}
		if line := strings.TrimSpace(strings.Join(words, " ")); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

func plainText(reader *pdf.Reader) string {
	r, err := reader.GetPlainText()
	if err != nil {
		return ""
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return ""
	}
	return string(data)
}

func snippet(data []byte) string {
	const limit = 40
	if len(data) > limit {
		data = data[:limit]
	}
	return string(data)
}

// MockPDFExtractor returns canned text or an error.
type MockPDFExtractor struct {
	MockText string
	MockErr  error
	Calls    int
}

// NewMockPDFExtractor creates a MockPDFExtractor.
func NewMockPDFExtractor(mockText string, mockErr error) *MockPDFExtractor {
	return &MockPDFExtractor{MockText: mockText, MockErr: mockErr}
}

// ExtractText returns the canned text or error.
func (m *MockPDFExtractor) ExtractText(_ context.Context, _ []byte) (string, error) {
	m.Calls++
	if m.MockErr != nil {
		return "", m.MockErr
	}
	return m.MockText, nil
}
