package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock-advisor/internal/logger"
	"stock-advisor/internal/types"
)

func TestConfigPathPrecedence(t *testing.T) {
	t.Setenv("ADVISOR_CONFIG", "")
	assert.Equal(t, "config.yaml", configPath(""))

	t.Setenv("ADVISOR_CONFIG", "/etc/advisor.yaml")
	assert.Equal(t, "/etc/advisor.yaml", configPath(""))
	assert.Equal(t, "local.yaml", configPath("local.yaml"))
}

func TestRootCommandsRegistered(t *testing.T) {
	root := newRootCmd()
	names := map[string]bool{}
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"serve", "analyze", "search", "history", "metrics", "maintain", "summary"} {
		assert.True(t, names[want], "missing command %s", want)
	}
}

func TestAnalyzeRequiresTicker(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"analyze"})
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}

func TestHistoryRejectsBadRangeBeforeBoot(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"history", "AAPL", "--range", "2W"})
	root.SetOut(&bytes.Buffer{})
	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported range")
}

func TestPrintMatches(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printMatches(&buf, []types.SymbolMatch{
		{Ticker: "AAPL", Name: "Apple Inc", Exchange: "NASDAQ"},
	}))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "TICKER"))
	assert.Contains(t, lines[1], "Apple Inc")
}

func TestVerboseForcesDebugLogging(t *testing.T) {
	t.Setenv("LOG_LEVEL", "WARN")
	t.Setenv("LOG_DETAILED", "false")
	require.NoError(t, initializeSystem(false))
	assert.False(t, logger.IsDebugEnabled())

	require.NoError(t, initializeSystem(true))
	assert.True(t, logger.IsDebugEnabled())

	flag := newRootCmd().PersistentFlags().Lookup("verbose")
	require.NotNil(t, flag)
	assert.Equal(t, "v", flag.Shorthand)
}
