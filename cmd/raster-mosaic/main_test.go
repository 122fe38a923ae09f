package main

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/airbusgeo/quadmosaic"
	"github.com/airbusgeo/quadmosaic/internal/cmdutil"
	"github.com/airbusgeo/quadmosaic/internal/config"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func executeCommand(root *cobra.Command, args ...string) (string, error) {
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(cmdutil.NormalizeArgs(args, legacyFlags...))
	err := root.Execute()
	return buf.String(), err
}

func TestRasterMosaic(t *testing.T) {
	t.Setenv("QUADMOSAIC_CACHEMAX", "4096")
	var got config.Config
	var gotIn quadmosaic.Inputs
	var gotProf quadmosaic.Profile
	run := func(ctx context.Context, cfg config.Config, prof quadmosaic.Profile, in quadmosaic.Inputs) error {
		got, gotProf, gotIn = cfg, prof, in
		return nil
	}
	_, err := executeCommand(newRasterCommand(run), "-inputtxt", "rasters.txt")
	require.NoError(t, err)
	assert.Equal(t, quadmosaic.Inputs{TileList: "rasters.txt"}, gotIn)
	assert.Equal(t, quadmosaic.Raster(), gotProf)
	assert.Equal(t, "4096", got.CacheMax)
}

func TestRasterMosaicErrors(t *testing.T) {
	run := func(ctx context.Context, cfg config.Config, prof quadmosaic.Profile, in quadmosaic.Inputs) error {
		return errors.New("interrupted")
	}
	out, err := executeCommand(newRasterCommand(run))
	assert.ErrorContains(t, err, "filelist")
	assert.Contains(t, out, "Usage:")

	out, err = executeCommand(newRasterCommand(run), "--filelist", "rasters.txt")
	assert.EqualError(t, err, "interrupted")
	assert.NotContains(t, out, "Usage:")

	_, err = executeCommand(newRasterCommand(run), "--filelist", "rasters.txt", "--engine", "gdal")
	assert.ErrorContains(t, err, "invalid engine")
}
