package parsererror

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "unsupported format",
			err:      &UnsupportedFormatError{FileName: "march.xlsx", Extension: ".xlsx"},
			expected: `unsupported format ".xlsx" for file 'march.xlsx'`,
		},
		{
			name:     "no data with hint",
			err:      &NoDataFoundError{Source: "text", Hint: "paste one transaction per line"},
			expected: "no transactions found in text: paste one transaction per line",
		},
		{
			name:     "no data without hint",
			err:      &NoDataFoundError{Source: "stmt.csv"},
			expected: "no transactions found in stmt.csv",
		},
		{
			name: "parse error",
			err: &ParseError{
				Parser: "line",
				Field:  "amount",
				Value:  "abc",
				Err:    errors.New("not a number"),
			},
			expected: "line: failed to parse amount='abc': not a number",
		},
		{
			name:     "service unavailable",
			err:      &ServiceUnavailableError{Service: "gemini", Err: context.DeadlineExceeded},
			expected: "gemini unavailable: context deadline exceeded",
		},
		{
			name:     "invalid format",
			err:      &InvalidFormatError{FilePath: "a.xml", ExpectedFormat: "CAMT.053", Msg: "no entries"},
			expected: "invalid format in file 'a.xml': no entries. Expected: CAMT.053",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestSentinelMatching(t *testing.T) {
	wrappedUnsupported := fmt.Errorf("dispatch: %w", &UnsupportedFormatError{FileName: "x.xls", Extension: ".xls"})
	assert.ErrorIs(t, wrappedUnsupported, ErrUnsupportedFormat)
	assert.NotErrorIs(t, wrappedUnsupported, ErrNoTransactions)

	var unsupported *UnsupportedFormatError
	assert.ErrorAs(t, wrappedUnsupported, &unsupported)
	assert.Equal(t, ".xls", unsupported.Extension)

	assert.ErrorIs(t, &NoDataFoundError{Source: "text"}, ErrNoTransactions)

	svc := &ServiceUnavailableError{Service: "gemini", Err: context.DeadlineExceeded}
	assert.ErrorIs(t, svc, ErrServiceUnavailable)
	assert.ErrorIs(t, svc, context.DeadlineExceeded)
}
