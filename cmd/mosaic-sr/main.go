package main

import (
	"github.com/airbusgeo/quadmosaic"
	"github.com/airbusgeo/quadmosaic/internal/cmdutil"
	"github.com/spf13/cobra"
)

// flags also accepted with a single dash
var legacyFlags = []string{"inputshp", "outputDataType"}

func main() {
	cmdutil.Execute(newSRCommand(cmdutil.RunPipeline), legacyFlags...)
}

func newSRCommand(run cmdutil.RunFunc) *cobra.Command {
	var mask, dataType string
	cmd := &cobra.Command{
		Use:   "mosaic-sr [flags] inputTxtFile",
		Short: "mosaic surface reflectance quads",
		Long: "This script mosaics planet surface reflectance quads with the options 1) to limit the output\n" +
			"to a shapefile extent and 2) set datatype per bands (see options below).\n\n" +
			"inputTxtFile is a txt file built by ls *.tif > nameOfTheMosaic.txt with the quads to be\n" +
			"mosaicked. Its name is the name of the mosaic: srMosaic.txt produces srMosaic.tif.",
		Example: "  mosaic-sr srMosaic.txt -inputshp srSubset.shp -outputDataType Float32",
		Args:    cobra.ExactArgs(1),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}
	common := cmdutil.Bind(cmd, true)
	flags := cmd.Flags()
	flags.StringVar(&mask, "inputshp", "", "an optional shapefile for including quads that need to be mosaicked")
	flags.StringVar(&dataType, "outputDataType", string(quadmosaic.UInt16),
		"output data type per band, one of "+quadmosaic.DataTypeNames())

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		dt, err := quadmosaic.ParseDataType(dataType)
		if err != nil {
			return err
		}
		cmd.SilenceUsage = true
		return run(cmd.Context(), common.Config, quadmosaic.SurfaceReflectance(), quadmosaic.Inputs{
			TileList: args[0],
			Mask:     mask,
			DataType: dt,
		})
	}
	return cmd
}
