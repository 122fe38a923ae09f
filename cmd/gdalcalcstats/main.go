package main

import (
	"github.com/airbusgeo/godal"
	"github.com/airbusgeo/quadmosaic"
	"github.com/airbusgeo/quadmosaic/godalkit"
	"github.com/airbusgeo/quadmosaic/internal/cmdutil"
	"github.com/spf13/cobra"
)

// flags also accepted with a single dash
var legacyFlags = []string{"pyramid", "ignore"}

func main() {
	godal.RegisterAll()
	cmdutil.Execute(newStatsCommand(godalkit.SetStats), legacyFlags...)
}

func newStatsCommand(setStats quadmosaic.StatsFunc) *cobra.Command {
	var pyramid bool
	var ignore float64
	cmd := &cobra.Command{
		Use:   "gdalcalcstats imagefile",
		Short: "calculate statistics, and optionally pyramid layers, of a raster",
		Long: "Stores the statistics of every band of imagefile, and optionally builds its pyramid layers.\n" +
			"With -ignore, the value is first set as the nodata value of every band and excluded\n" +
			"from the statistics.",
		Args: cobra.ExactArgs(1),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}
	cmdutil.Bind(cmd, false)
	flags := cmd.Flags()
	flags.BoolVar(&pyramid, "pyramid", false, "Calculate pyramid layers")
	flags.Float64Var(&ignore, "ignore", 0, "Stats ignore value (default is None)")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		opts := quadmosaic.StatsOptions{Pyramid: pyramid}
		if cmd.Flags().Changed("ignore") {
			opts.Ignore = quadmosaic.IgnoreValue(ignore)
		}
		return setStats(cmd.Context(), args[0], opts)
	}
	return cmd
}
