package obslog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tstirrat/wow-threat-sub000/internal/runconfig"
)

func TestNewBuildsJSONAndConsoleLoggers(t *testing.T) {
	jsonLogger, err := New(runconfig.LoggingConfig{Level: "debug", Format: "json"})
	require.NoError(t, err)
	require.NotNil(t, jsonLogger)

	consoleLogger, err := New(runconfig.LoggingConfig{Level: "warn", Format: "console"})
	require.NoError(t, err)
	require.NotNil(t, consoleLogger)
}

func TestParseLevelDefaultsToInfo(t *testing.T) {
	assert.Equal(t, int8(0), int8(parseLevel("")))       // zapcore.InfoLevel == 0
	assert.Equal(t, int8(0), int8(parseLevel("bogus")))
}
