package config

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parsed(t *testing.T, pipeline bool, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	AddFlags(fs, pipeline)
	require.NoError(t, fs.Parse(args))
	return fs
}

func TestDefaults(t *testing.T) {
	cfg, err := Load(parsed(t, true))
	require.NoError(t, err)
	assert.Equal(t, Config{Engine: EngineExec, CacheMax: "80000"}, cfg)

	cfg, err = Load(nil)
	require.NoError(t, err)
	assert.Equal(t, EngineExec, cfg.Engine)
}

func TestPrecedence(t *testing.T) {
	t.Setenv("QUADMOSAIC_ENGINE", "godal")
	t.Setenv("QUADMOSAIC_CACHEMAX", "2048")
	t.Setenv("QUADMOSAIC_STATS_COMMAND", `python "/opt/rios scripts/gdalcalcstats.py"`)

	cfg, err := Load(parsed(t, true, "--cachemax", "512"))
	require.NoError(t, err)
	assert.Equal(t, EngineGodal, cfg.Engine)
	assert.Equal(t, "512", cfg.CacheMax)
	assert.Equal(t, []string{"python", "/opt/rios scripts/gdalcalcstats.py"}, cfg.StatsCommand)
}

func TestVerboseOnly(t *testing.T) {
	fs := parsed(t, false, "--verbose")
	assert.Nil(t, fs.Lookup(KeyEngine))
	cfg, err := Load(fs)
	require.NoError(t, err)
	assert.True(t, cfg.Verbose)
}

func TestInvalid(t *testing.T) {
	_, err := Load(parsed(t, true, "--engine", "python"))
	assert.ErrorContains(t, err, "invalid engine")

	_, err = Load(parsed(t, true, "--stats-command", `python "unterminated`))
	assert.ErrorContains(t, err, "invalid stats-command")
}
