package main

import (
	"github.com/airbusgeo/quadmosaic"
	"github.com/airbusgeo/quadmosaic/internal/cmdutil"
	"github.com/spf13/cobra"
)

// flags also accepted with a single dash
var legacyFlags = []string{"inputtxt", "inputshp"}

func main() {
	cmdutil.Execute(newGCDataCommand(cmdutil.RunPipeline), legacyFlags...)
}

func newGCDataCommand(run cmdutil.RunFunc) *cobra.Command {
	var fileList, shapefile string
	var adjustDepth bool
	cmd := &cobra.Command{
		Use:   "mosaic-gcdata --filelist list.txt --shapefile mask.shp",
		Short: "mosaic planet quads included in a field data mask shapefile",
		Args:  cobra.NoArgs,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}
	common := cmdutil.Bind(cmd, true)
	cmd.SetGlobalNormalizationFunc(cmdutil.Aliases(map[string]string{
		"inputtxt": "filelist",
		"inputshp": "shapefile",
	}))
	flags := cmd.Flags()
	flags.StringVar(&fileList, "filelist", "", "txt file with the images to be mosaicked (alias -inputtxt)")
	flags.StringVar(&shapefile, "shapefile", "", "shapefile with the field data mask (alias -inputshp)")
	flags.BoolVar(&adjustDepth, "adjust-depth", false, "also write <mosaic>_FieldData.tif with depths converted to meters")
	cmd.MarkFlagRequired("filelist")
	cmd.MarkFlagRequired("shapefile")

	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		cmd.SilenceUsage = true
		prof := quadmosaic.FieldData()
		prof.AdjustDepth = adjustDepth
		return run(cmd.Context(), common.Config, prof, quadmosaic.Inputs{
			TileList: fileList,
			Mask:     shapefile,
		})
	}
	return cmd
}
