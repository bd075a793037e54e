package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePositionalGridPath(t *testing.T) {
	var out bytes.Buffer
	cfg, exit, err := Parse([]string{"grids/plant.hcl"}, &out)
	require.NoError(t, err)
	require.False(t, exit)

	assert.Equal(t, "grids/plant.hcl", cfg.GridPath)
	assert.Equal(t, "gen", cfg.OutDir)
	assert.Empty(t, cfg.PlanPath)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.Watch)
	assert.Equal(t, 4, cfg.Workers)
}

func TestParseFlagsOverrideDefaults(t *testing.T) {
	var out bytes.Buffer
	cfg, exit, err := Parse([]string{
		"-grid", "grids",
		"-out", "build/gen",
		"-plan", "build/plan.yaml",
		"-log-format", "text",
		"-log-level", "debug",
		"-workers", "2",
		"-watch",
	}, &out)
	require.NoError(t, err)
	require.False(t, exit)

	assert.Equal(t, "grids", cfg.GridPath)
	assert.Equal(t, "build/gen", cfg.OutDir)
	assert.Equal(t, "build/plan.yaml", cfg.PlanPath)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.Watch)
	assert.Equal(t, 2, cfg.Workers)
}

func TestParseShorthandGridFlag(t *testing.T) {
	var out bytes.Buffer
	cfg, exit, err := Parse([]string{"-g", "plant.hcl"}, &out)
	require.NoError(t, err)
	require.False(t, exit)
	assert.Equal(t, "plant.hcl", cfg.GridPath)
}

func TestParseNoPathPrintsUsage(t *testing.T) {
	var out bytes.Buffer
	cfg, exit, err := Parse(nil, &out)
	require.NoError(t, err)
	assert.True(t, exit)
	assert.Nil(t, cfg)
	assert.Contains(t, out.String(), "Usage:")
}

func TestParseRejectsBadLogFormat(t *testing.T) {
	var out bytes.Buffer
	_, _, err := Parse([]string{"-log-format", "xml", "plant.hcl"}, &out)
	require.Error(t, err)

	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 2, exitErr.Code)
}

func TestParseRejectsBadLogLevel(t *testing.T) {
	var out bytes.Buffer
	_, _, err := Parse([]string{"-log-level", "verbose", "plant.hcl"}, &out)
	require.Error(t, err)

	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 2, exitErr.Code)
}

func TestParseHelpExitsCleanly(t *testing.T) {
	var out bytes.Buffer
	cfg, exit, err := Parse([]string{"-h"}, &out)
	require.NoError(t, err)
	assert.True(t, exit)
	assert.Nil(t, cfg)
}
