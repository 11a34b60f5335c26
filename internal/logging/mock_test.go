package logging

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockLogger_DerivedLoggersShareEntries(t *testing.T) {
	root := NewMockLogger()
	child := root.WithField(FieldParser, "line").WithError(errors.New("bad"))

	child.Debug("dropped line", Field{Key: FieldLine, Value: 3})
	root.Info("done")

	entries := root.GetEntries()
	require.Len(t, entries, 2)
	assert.Equal(t, "DEBUG", entries[0].Level)
	assert.Equal(t, []Field{{Key: FieldParser, Value: "line"}, {Key: FieldLine, Value: 3}}, entries[0].Fields)
	assert.EqualError(t, entries[0].Error, "bad")
	assert.Nil(t, entries[1].Error)
	assert.True(t, root.HasEntry("INFO", "done"))
	assert.Len(t, root.GetEntriesByLevel("DEBUG"), 1)
}

func TestMockLogger_ConcurrentWrites(t *testing.T) {
	logger := NewMockLogger()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			logger.WithField("n", n).Info("tick")
		}(i)
	}
	wg.Wait()

	assert.Len(t, logger.GetEntries(), 20)
}

func TestMockLogger_ZeroValueUsable(t *testing.T) {
	var logger MockLogger
	logger.Warn("zero value")
	assert.True(t, logger.HasEntry("WARN", "zero value"))
}
