package logging

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/GuySartorelli/silverstripe-deprecation-checker/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestCategoriesAreNamed(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := Wrap(zap.New(core), config.LoggingConfig{})

	for _, category := range Categories {
		l.Get(category).Info("hello")
	}

	entries := logs.All()
	require.Len(t, entries, len(Categories))
	for i, category := range Categories {
		assert.Equal(t, string(category), entries[i].LoggerName)
	}
}

func TestDisabledCategoryIsSilent(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := Wrap(zap.New(core), config.LoggingConfig{
		Categories: map[string]bool{"watch": false},
	})

	l.Get(CategoryWatch).Info("dropped")
	l.Get(CategoryRender).Info("kept")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "kept", entries[0].Message)
	assert.Equal(t, "render", entries[0].LoggerName)
}

func TestGetCachesLoggers(t *testing.T) {
	l := NewNop()

	var wg sync.WaitGroup
	got := make([]*zap.Logger, 16)
	for i := range got {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got[i] = l.Get(CategoryCatalog)
		}(i)
	}
	wg.Wait()

	for _, logger := range got {
		assert.Same(t, got[0], logger)
	}
}

func TestNewRejectsBadLevel(t *testing.T) {
	_, err := New(config.LoggingConfig{Level: "chatty"}, false)
	assert.Error(t, err)
}

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "changelog.log")

	l, err := New(config.LoggingConfig{Level: "warn", Format: "json", File: path}, false)
	require.NoError(t, err)

	l.Get(CategoryHistory).Info("below threshold")
	l.Get(CategoryHistory).Warn("recorded")
	_ = l.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, `"recorded"`)
	assert.Contains(t, content, `"history"`)
	assert.False(t, strings.Contains(content, "below threshold"))
}

func TestNewVerboseEnablesDebug(t *testing.T) {
	path := filepath.Join(t.TempDir(), "changelog.log")

	l, err := New(config.LoggingConfig{Level: "error", Format: "text", File: path}, true)
	require.NoError(t, err)

	l.Get(CategoryBoot).Debug("debug line")
	_ = l.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "debug line")
	assert.Contains(t, string(data), "DEBUG")
}
