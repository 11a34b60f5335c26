package common_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fjacquet/stmt-insight/cmd/common"
	"fjacquet/stmt-insight/internal/logging"
	"fjacquet/stmt-insight/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockFileParser struct {
	mock.Mock
}

func (m *MockFileParser) ParseFile(ctx context.Context, data []byte, fileName string) ([]models.ParsedTransaction, error) {
	args := m.Called(ctx, data, fileName)
	return args.Get(0).([]models.ParsedTransaction), args.Error(1)
}

type MockTextExtractor struct {
	mock.Mock
}

func (m *MockTextExtractor) Extract(ctx context.Context, text string) ([]models.ParsedTransaction, error) {
	args := m.Called(ctx, text)
	return args.Get(0).([]models.ParsedTransaction), args.Error(1)
}

func sampleTransactions() []models.ParsedTransaction {
	return []models.ParsedTransaction{{Description: "Coffee", Amount: decimal.NewFromFloat(-4.5)}}
}

func TestExtractTransactions_TextInputUsesExtractor(t *testing.T) {
	ctx := context.Background()
	files := &MockFileParser{}
	text := &MockTextExtractor{}
	text.On("Extract", ctx, "pasted").Return(sampleTransactions(), nil)

	txs, err := common.ExtractTransactions(ctx, files, text, []byte("pasted"), "statement.txt", logging.NewMockLogger())
	require.NoError(t, err)
	assert.Len(t, txs, 1)
	text.AssertExpectations(t)
	files.AssertNotCalled(t, "ParseFile", mock.Anything, mock.Anything, mock.Anything)
}

func TestExtractTransactions_FileInputUsesDispatcher(t *testing.T) {
	ctx := context.Background()
	files := &MockFileParser{}
	text := &MockTextExtractor{}
	files.On("ParseFile", ctx, []byte("a,b"), "export.csv").Return(sampleTransactions(), nil)

	txs, err := common.ExtractTransactions(ctx, files, text, []byte("a,b"), filepath.Join("in", "export.csv"), nil)
	require.NoError(t, err)
	assert.Len(t, txs, 1)
	files.AssertExpectations(t)
	text.AssertNotCalled(t, "Extract", mock.Anything, mock.Anything)
}

func TestExtractTransactions_PropagatesError(t *testing.T) {
	ctx := context.Background()
	files := &MockFileParser{}
	files.On("ParseFile", ctx, mock.Anything, "bad.pdf").Return([]models.ParsedTransaction(nil), errors.New("boom"))

	_, err := common.ExtractTransactions(ctx, files, &MockTextExtractor{}, []byte("x"), "bad.pdf", nil)
	assert.EqualError(t, err, "boom")
}

func TestIsTextInput(t *testing.T) {
	tests := map[string]bool{
		"-":             true,
		"paste.txt":     true,
		"notes":         true,
		"statement.pdf": false,
		"export.CSV":    false,
		"camt053.xml":   false,
	}
	for path, want := range tests {
		assert.Equal(t, want, common.IsTextInput(path), path)
	}
}

func TestReadInput(t *testing.T) {
	_, err := common.ReadInput("", nil)
	assert.Error(t, err)

	data, err := common.ReadInput(common.StdinName, strings.NewReader("from stdin"))
	require.NoError(t, err)
	assert.Equal(t, "from stdin", string(data))

	path := filepath.Join(t.TempDir(), "in.txt")
	require.NoError(t, os.WriteFile(path, []byte("from file"), 0o600))
	data, err = common.ReadInput(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "from file", string(data))

	_, err = common.ReadInput(filepath.Join(t.TempDir(), "missing.txt"), nil)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestOpenOutputAndWriteJSON(t *testing.T) {
	var stdout bytes.Buffer
	w, closeFn, err := common.OpenOutput("", &stdout)
	require.NoError(t, err)
	require.NoError(t, common.WriteJSON(w, map[string]int{"count": 2}))
	require.NoError(t, closeFn())
	assert.JSONEq(t, `{"count":2}`, stdout.String())

	path := filepath.Join(t.TempDir(), "nested", "out.json")
	w, closeFn, err = common.OpenOutput(path, &stdout)
	require.NoError(t, err)
	require.NoError(t, common.WriteJSON(w, []string{"a"}))
	require.NoError(t, closeFn())

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `["a"]`, string(content))
}
