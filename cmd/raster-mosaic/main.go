package main

import (
	"github.com/airbusgeo/quadmosaic"
	"github.com/airbusgeo/quadmosaic/internal/cmdutil"
	"github.com/spf13/cobra"
)

// flags also accepted with a single dash
var legacyFlags = []string{"inputtxt"}

func main() {
	cmdutil.Execute(newRasterCommand(cmdutil.RunPipeline), legacyFlags...)
}

func newRasterCommand(run cmdutil.RunFunc) *cobra.Command {
	var fileList string
	cmd := &cobra.Command{
		Use:   "raster-mosaic --filelist list.txt",
		Short: "mosaic the first 3 bands of raster data efficiently",
		Args:  cobra.NoArgs,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}
	common := cmdutil.Bind(cmd, true)
	cmd.SetGlobalNormalizationFunc(cmdutil.Aliases(map[string]string{"inputtxt": "filelist"}))
	cmd.Flags().StringVar(&fileList, "filelist", "", "txt file with the images to be mosaicked (alias -inputtxt)")
	cmd.MarkFlagRequired("filelist")

	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		cmd.SilenceUsage = true
		return run(cmd.Context(), common.Config, quadmosaic.Raster(), quadmosaic.Inputs{TileList: fileList})
	}
	return cmd
}
