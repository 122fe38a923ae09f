// Package cmdutil holds the plumbing shared by the quadmosaic binaries.
package cmdutil

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/airbusgeo/godal"
	"github.com/airbusgeo/quadmosaic"
	"github.com/airbusgeo/quadmosaic/godalkit"
	"github.com/airbusgeo/quadmosaic/internal/config"
	"github.com/airbusgeo/quadmosaic/internal/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// NormalizeArgs rewrites the single dash long flags listed in legacy
// ("-pyramid", "-ignore=0") to their double dash form, so that invocations
// written for the python scripts are understood by cobra.
func NormalizeArgs(args []string, legacy ...string) []string {
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = a
		if a == "--" {
			copy(out[i:], args[i:])
			break
		}
		if !strings.HasPrefix(a, "-") || strings.HasPrefix(a, "--") {
			continue
		}
		name, _, _ := strings.Cut(a[1:], "=")
		for _, l := range legacy {
			if name == l {
				out[i] = "-" + a
				break
			}
		}
	}
	return out
}

// Aliases returns a flag normalization func mapping alternative flag names to
// their canonical one
func Aliases(aliases map[string]string) func(f *pflag.FlagSet, name string) pflag.NormalizedName {
	return func(f *pflag.FlagSet, name string) pflag.NormalizedName {
		if canonical, ok := aliases[name]; ok {
			name = canonical
		}
		return pflag.NormalizedName(name)
	}
}

// Common holds the settings resolved before a command runs
type Common struct {
	Config config.Config
	start  time.Time
}

// Bind adds the shared flags to cmd and resolves them, and configures
// logging, before cmd runs. Pipeline flags are only added when pipeline is set.
func Bind(cmd *cobra.Command, pipeline bool) *Common {
	c := &Common{}
	config.AddFlags(cmd.PersistentFlags(), pipeline)
	cmd.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		c.start = time.Now()
		cfg, err := config.Load(cmd.Flags())
		if err != nil {
			return err
		}
		c.Config = cfg
		if cfg.Verbose {
			log.Development()
		} else {
			log.Structured()
		}
		if cfg.Engine == config.EngineGodal {
			godal.RegisterAll()
		}
		return nil
	}
	cmd.PersistentPostRun = func(cmd *cobra.Command, _ []string) {
		log.Logger(cmd.Context()).Sugar().Debugf("command %s took %.1fs",
			cmd.Name(), time.Since(c.start).Seconds())
	}
	return c
}

// RunFunc builds a mosaic
type RunFunc func(ctx context.Context, cfg config.Config, prof quadmosaic.Profile, in quadmosaic.Inputs) error

// NewPipeline returns the pipeline matching cfg. The godal engine computes
// statistics in-process unless a statistics command was configured.
func NewPipeline(cfg config.Config) quadmosaic.Pipeline {
	p := quadmosaic.Pipeline{
		Toolkit: quadmosaic.Exec{},
		Stats:   quadmosaic.ExecStats{Command: cfg.StatsCommand},
	}
	if cfg.Engine == config.EngineGodal {
		p.Toolkit = godalkit.Toolkit{}
		if len(cfg.StatsCommand) == 0 {
			p.Stats = quadmosaic.StatsFunc(godalkit.SetStats)
		}
	}
	return p
}

// RunPipeline is the RunFunc of the binaries: it builds the mosaic with the
// pipeline matching cfg.
func RunPipeline(ctx context.Context, cfg config.Config, prof quadmosaic.Profile, in quadmosaic.Inputs) error {
	if cfg.CacheMax != "" {
		prof.ConfigOptions = []string{"GDAL_CACHEMAX=" + cfg.CacheMax}
	}
	res := NewPipeline(cfg).Run(ctx, prof, in)
	log.Logger(ctx).Sugar().Debugf("mosaic %s done", res.Mosaic)
	return nil
}

// Execute runs cmd on the process arguments and exits with a nonzero status
// on failure
func Execute(cmd *cobra.Command, legacy ...string) {
	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	cmd.SetArgs(NormalizeArgs(os.Args[1:], legacy...))
	err := cmd.ExecuteContext(ctx)
	stop()
	log.Sync()
	if err != nil {
		os.Exit(1)
	}
}
