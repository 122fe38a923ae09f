package quadmosaic

import (
	"context"
	"io"
	"os"
	"os/exec"
	"path/filepath"
)

// StatsBinary is the name of the statistics and pyramid setter executable
const StatsBinary = "gdalcalcstats"

// StatsOptions drive the statistics and pyramid setter
type StatsOptions struct {
	// Ignore, when not nil, is set as the nodata value of every band and
	// excluded from the statistics
	Ignore *float64
	// Pyramid enables building overviews
	Pyramid bool
}

// IgnoreValue returns a pointer to v, for use as StatsOptions.Ignore
func IgnoreValue(v float64) *float64 {
	return &v
}

// Args returns the command line flags of the statistics setter matching o.
// Single dash flags are used so that legacy implementations accept them too.
func (o StatsOptions) Args() []string {
	args := []string{}
	if o.Pyramid {
		args = append(args, "-pyramid")
	}
	if o.Ignore != nil {
		args = append(args, "-ignore", formatFloat(*o.Ignore))
	}
	return args
}

// BandMetadata returns the metadata items stored on every band alongside its
// statistics
func (o StatsOptions) BandMetadata() map[string]string {
	md := map[string]string{"LAYER_TYPE": "athematic"}
	if o.Ignore != nil {
		md["STATISTICS_EXCLUDEDVALUES"] = formatFloat(*o.Ignore)
	}
	return md
}

// StatsSetter computes and stores statistics, and optionally pyramids, on a
// raster file
type StatsSetter interface {
	SetStats(ctx context.Context, path string, opts StatsOptions) error
}

// StatsFunc adapts a function to a StatsSetter
type StatsFunc func(ctx context.Context, path string, opts StatsOptions) error

func (f StatsFunc) SetStats(ctx context.Context, path string, opts StatsOptions) error {
	return f(ctx, path, opts)
}

// ExecStats is a StatsSetter running the statistics setter as a subprocess
type ExecStats struct {
	// Command is the statistics setter program and its leading arguments,
	// e.g. ["python", "gdalcalcstats.py"]. Defaults to DefaultStatsCommand().
	Command []string
	// Stdout and Stderr receive the output of the subprocess. They default to
	// the process' own.
	Stdout, Stderr io.Writer
}

// StatsCommand returns the invocation of the statistics setter on path
func (e ExecStats) StatsCommand(path string, opts StatsOptions) Command {
	prefix := e.Command
	if len(prefix) == 0 {
		prefix = DefaultStatsCommand()
	}
	args := append([]string{}, prefix[1:]...)
	args = append(args, path)
	args = append(args, opts.Args()...)
	return Command{Path: prefix[0], Args: args}
}

func (e ExecStats) SetStats(ctx context.Context, path string, opts StatsOptions) error {
	stdout, stderr := e.Stdout, e.Stderr
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	return e.StatsCommand(path, opts).Run(ctx, stdout, stderr)
}

// DefaultStatsCommand locates the statistics setter: next to the running
// executable if it was installed there, else on the PATH.
func DefaultStatsCommand() []string {
	if self, err := os.Executable(); err == nil {
		sibling := filepath.Join(filepath.Dir(self), StatsBinary)
		if st, err := os.Stat(sibling); err == nil && !st.IsDir() {
			return []string{sibling}
		}
	}
	if p, err := exec.LookPath(StatsBinary); err == nil {
		return []string{p}
	}
	return []string{StatsBinary}
}
