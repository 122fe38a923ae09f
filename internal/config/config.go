// Package config resolves the settings shared by the quadmosaic binaries from
// command line flags, QUADMOSAIC_* environment variables and defaults, in that
// order of precedence.
package config

import (
	"fmt"
	"strings"

	"github.com/airbusgeo/quadmosaic"
	shellwords "github.com/mattn/go-shellwords"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const EnvPrefix = "QUADMOSAIC"

// Keys, which are also the flag names
const (
	KeyVerbose      = "verbose"
	KeyEngine       = "engine"
	KeyStatsCommand = "stats-command"
	KeyCacheMax     = "cachemax"
)

type Engine string

const (
	// EngineExec runs the GDAL command line utilities
	EngineExec Engine = "exec"
	// EngineGodal runs GDAL in-process
	EngineGodal Engine = "godal"
)

type Config struct {
	Verbose bool
	Engine  Engine
	// StatsCommand is the statistics setter program and its leading
	// arguments. Empty to locate it automatically.
	StatsCommand []string
	// CacheMax is the GDAL_CACHEMAX value used when materializing mosaics
	CacheMax string
}

// AddFlags registers the flags of the settings on fs. Pipeline settings are
// only added when pipeline is set.
func AddFlags(fs *pflag.FlagSet, pipeline bool) {
	fs.Bool(KeyVerbose, false, "verbose output")
	if !pipeline {
		return
	}
	fs.String(KeyEngine, string(EngineExec), "gdal engine: exec (command line utilities) or godal (in-process)")
	fs.String(KeyStatsCommand, "", "statistics setter command, e.g. \"python gdalcalcstats.py\" (default: "+quadmosaic.StatsBinary+" next to this executable or on the PATH)")
	fs.String(KeyCacheMax, quadmosaic.DefaultCacheMax, "GDAL_CACHEMAX used when building the mosaic")
}

// Load resolves the settings. fs is the parsed flag set of the command.
func Load(fs *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	v.SetDefault(KeyVerbose, false)
	v.SetDefault(KeyEngine, string(EngineExec))
	v.SetDefault(KeyStatsCommand, "")
	v.SetDefault(KeyCacheMax, quadmosaic.DefaultCacheMax)
	if fs != nil {
		if err := v.BindPFlags(fs); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	cfg := Config{
		Verbose:  v.GetBool(KeyVerbose),
		Engine:   Engine(v.GetString(KeyEngine)),
		CacheMax: v.GetString(KeyCacheMax),
	}
	switch cfg.Engine {
	case EngineExec, EngineGodal:
	default:
		return Config{}, fmt.Errorf("invalid engine %q, must be %s or %s", cfg.Engine, EngineExec, EngineGodal)
	}
	if sc := v.GetString(KeyStatsCommand); sc != "" {
		words, err := shellwords.Parse(sc)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", KeyStatsCommand, err)
		}
		cfg.StatsCommand = words
	}
	return cfg, nil
}
