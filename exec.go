package quadmosaic

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/airbusgeo/quadmosaic/internal/log"
	"github.com/alessio/shellescape"
)

// Command is an external program invocation
type Command struct {
	Path string
	Args []string
}

// String returns the command line, quoted for a POSIX shell
func (c Command) String() string {
	return shellescape.QuoteCommand(append([]string{c.Path}, c.Args...))
}

// Run executes the command, forwarding its output to stdout and stderr
func (c Command) Run(ctx context.Context, stdout, stderr io.Writer) error {
	log.Logger(ctx).Sugar().Debugf("running %s", c.String())
	cmd := exec.CommandContext(ctx, c.Path, c.Args...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %w", c.Path, err)
	}
	return nil
}

// BuildVRTCommand returns the gdalbuildvrt invocation creating dst from the
// rasters listed in tileList
func BuildVRTCommand(tileList, dst string) Command {
	return Command{
		Path: "gdalbuildvrt",
		Args: []string{"-input_file_list", tileList, dst},
	}
}

// WarpCommand returns the gdalwarp invocation cropping src to a cutline
func WarpCommand(src, dst string, opts WarpOptions) Command {
	args := opts.Switches()
	args = append(args, src, dst)
	return Command{Path: "gdalwarp", Args: args}
}

// TranslateCommand returns the gdal_translate invocation materializing src
func TranslateCommand(src, dst string, opts TranslateOptions) Command {
	args := opts.Switches()
	for _, co := range opts.CreationOptions {
		args = append(args, "-co", co)
	}
	for _, co := range opts.ConfigOptions {
		k, v, _ := strings.Cut(co, "=")
		args = append(args, "--config", k, v)
	}
	args = append(args, src, dst)
	return Command{Path: "gdal_translate", Args: args}
}

// RescaleCommand returns the gdal_calc.py invocation rescaling a band of src
func RescaleCommand(src, dst string, opts RescaleOptions) Command {
	return Command{
		Path: "gdal_calc.py",
		Args: []string{
			"-A", src,
			fmt.Sprintf("--A_band=%d", opts.Band),
			fmt.Sprintf("--NoDataValue=%s", formatFloat(opts.NoData)),
			"--format", "GTiff",
			"--outfile=" + dst,
			"--type=" + string(opts.DataType),
			"--calc=" + opts.Expression(),
		},
	}
}

// Exec is a Toolkit running the GDAL command line utilities found on the PATH
type Exec struct {
	// Stdout and Stderr receive the output of the utilities. They default to
	// the process' own.
	Stdout, Stderr io.Writer
}

func (e Exec) run(ctx context.Context, c Command) error {
	stdout, stderr := e.Stdout, e.Stderr
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	return c.Run(ctx, stdout, stderr)
}

func (e Exec) BuildVRT(ctx context.Context, tileList, dst string) error {
	return e.run(ctx, BuildVRTCommand(tileList, dst))
}

func (e Exec) Warp(ctx context.Context, src, dst string, opts WarpOptions) error {
	return e.run(ctx, WarpCommand(src, dst, opts))
}

func (e Exec) Translate(ctx context.Context, src, dst string, opts TranslateOptions) error {
	return e.run(ctx, TranslateCommand(src, dst, opts))
}

func (e Exec) Rescale(ctx context.Context, src, dst string, opts RescaleOptions) error {
	return e.run(ctx, RescaleCommand(src, dst, opts))
}
