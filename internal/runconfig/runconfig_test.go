package runconfig

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAppliesDefaultsWithNoFileOrFlags(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "-", cfg.InputPath)
	assert.Equal(t, "-", cfg.OutputPath)
	assert.False(t, cfg.InferThreatReduction)
	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadFlagsOverrideDefaults(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	Flags(fs)
	require.NoError(t, fs.Parse([]string{"--input=fight.json", "--infer-threat-reduction", "--format=csv"}))

	cfg, err := Load("", fs)
	require.NoError(t, err)
	assert.Equal(t, "fight.json", cfg.InputPath)
	assert.True(t, cfg.InferThreatReduction)
	assert.Equal(t, "csv", cfg.Format)
}

func TestLoadMissingConfigFileIsNotFatal(t *testing.T) {
	_, err := Load("/nonexistent/run.yaml", nil)
	assert.NoError(t, err)
}
