// Package godalkit runs the mosaic operations and the statistics setter
// in-process, through the godal GDAL bindings.
//
// Drivers must have been registered (e.g. with godal.RegisterAll) before any
// function of this package is called.
package godalkit

import (
	"context"
	"errors"
	"fmt"

	"github.com/airbusgeo/godal"
	"github.com/airbusgeo/quadmosaic"
	"github.com/airbusgeo/quadmosaic/internal/log"
	"go.uber.org/zap"
)

// errLogger routes the GDAL error stack to the context logger. Failures are
// returned as errors, warnings and debug messages are only logged.
func errLogger(ctx context.Context) godal.ErrorHandler {
	logger := log.Logger(ctx)
	return func(ec godal.ErrorCategory, code int, msg string) error {
		switch {
		case ec >= godal.CE_Failure:
			return errors.New(msg)
		case ec == godal.CE_Warning:
			logger.Warn("gdal", zap.Int("code", code), zap.String("msg", msg))
		default:
			logger.Debug("gdal", zap.Int("code", code), zap.String("msg", msg))
		}
		return nil
	}
}

// Toolkit implements quadmosaic.Toolkit with in-process GDAL calls. GDAL
// calls cannot be interrupted, the context is only checked before each of
// them.
type Toolkit struct{}

var _ quadmosaic.Toolkit = Toolkit{}

func (Toolkit) BuildVRT(ctx context.Context, tileList, dst string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tiles, err := quadmosaic.ReadTileList(tileList)
	if err != nil {
		return err
	}
	vds, err := godal.BuildVRT(dst, tiles, nil, godal.ErrLogger(errLogger(ctx)))
	if err != nil {
		return fmt.Errorf("create vrt %s: %w", dst, err)
	}
	if err := vds.Close(); err != nil {
		return fmt.Errorf("close vrt %s: %w", dst, err)
	}
	return nil
}

func (Toolkit) Warp(ctx context.Context, src, dst string, opts quadmosaic.WarpOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	el := godal.ErrLogger(errLogger(ctx))
	srcDataset, err := godal.Open(src, godal.RasterOnly(), el)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer srcDataset.Close()
	dstDS, err := srcDataset.Warp(dst, opts.Switches(), el)
	if err != nil {
		return fmt.Errorf("warp %s->%s: %w", src, dst, err)
	}
	if err = dstDS.Close(); err != nil {
		return fmt.Errorf("close %s: %w", dst, err)
	}
	return nil
}

func (Toolkit) Translate(ctx context.Context, src, dst string, opts quadmosaic.TranslateOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	el := godal.ErrLogger(errLogger(ctx))
	srcDataset, err := godal.Open(src, godal.RasterOnly(), el)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer srcDataset.Close()
	dstDS, err := srcDataset.Translate(dst, opts.Switches(),
		godal.CreationOption(opts.CreationOptions...),
		godal.ConfigOption(opts.ConfigOptions...),
		el)
	if err != nil {
		return fmt.Errorf("translate %s->%s: %w", src, dst, err)
	}
	if err = dstDS.Close(); err != nil {
		return fmt.Errorf("close %s: %w", dst, err)
	}
	return nil
}

// Rescale writes band opts.Band of src, rescaled, to the GTiff dst. Source
// nodata pixels become opts.NoData as with gdal_calc.py. Rows are processed a
// block at a time and the context is checked between them.
func (Toolkit) Rescale(ctx context.Context, src, dst string, opts quadmosaic.RescaleOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	el := godal.ErrLogger(errLogger(ctx))
	srcDataset, err := godal.Open(src, godal.RasterOnly(), el)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer srcDataset.Close()
	bands := srcDataset.Bands()
	if opts.Band < 1 || opts.Band > len(bands) {
		return fmt.Errorf("rescale %s: no band %d", src, opts.Band)
	}
	str := srcDataset.Structure()
	dstDS, err := godal.Create(godal.GTiff, dst, 1, godalType(opts.DataType), str.SizeX, str.SizeY, el)
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}
	if err := rescale(ctx, srcDataset, bands[opts.Band-1], dstDS, opts); err != nil {
		dstDS.Close()
		return fmt.Errorf("rescale %s->%s: %w", src, dst, err)
	}
	if err = dstDS.Close(); err != nil {
		return fmt.Errorf("close %s: %w", dst, err)
	}
	return nil
}

func rescale(ctx context.Context, srcDataset *godal.Dataset, srcBand godal.Band, dstDS *godal.Dataset, opts quadmosaic.RescaleOptions) error {
	el := godal.ErrLogger(errLogger(ctx))
	if gt, err := srcDataset.GeoTransform(godal.ErrLogger(quiet)); err == nil {
		if err := dstDS.SetGeoTransform(gt, el); err != nil {
			return err
		}
	}
	if wkt := srcDataset.Projection(); wkt != "" {
		if err := dstDS.SetProjection(wkt, el); err != nil {
			return err
		}
	}
	dstBand := dstDS.Bands()[0]
	if err := dstBand.SetNoData(opts.NoData, el); err != nil {
		return err
	}
	var srcNoData *float64
	if nd, ok := srcBand.NoData(); ok {
		srcNoData = &nd
	}

	str := srcBand.Structure()
	rows := str.BlockSizeY
	if rows < 1 {
		rows = 1
	}
	buf := make([]float64, str.SizeX*rows)
	for y := 0; y < str.SizeY; y += rows {
		if err := ctx.Err(); err != nil {
			return err
		}
		h := rows
		if y+h > str.SizeY {
			h = str.SizeY - y
		}
		block := buf[:str.SizeX*h]
		if err := srcBand.Read(0, y, block, str.SizeX, h, el); err != nil {
			return fmt.Errorf("read rows %d-%d: %w", y, y+h, err)
		}
		opts.Apply(block, srcNoData)
		if err := dstBand.Write(0, y, block, str.SizeX, h, el); err != nil {
			return fmt.Errorf("write rows %d-%d: %w", y, y+h, err)
		}
	}
	return nil
}

// quiet is an error handler for lookups whose failure is expected
func quiet(ec godal.ErrorCategory, code int, msg string) error {
	if ec >= godal.CE_Failure {
		return errors.New(msg)
	}
	return nil
}
