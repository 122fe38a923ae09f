package godalkit

import (
	"context"
	"fmt"
	"strings"

	"github.com/airbusgeo/godal"
	"github.com/airbusgeo/quadmosaic"
	"github.com/airbusgeo/quadmosaic/internal/log"
)

// SetStats computes and stores the statistics of every band of the raster at
// path, and builds its pyramid layers if opts.Pyramid is set.
//
// When opts.Ignore is set it first becomes the nodata value of every band. The
// dataset is closed and reopened afterwards so that the nodata value is
// committed before the statistics are computed. Without opts.Ignore, nodata
// values already present on the bands are left untouched.
func SetStats(ctx context.Context, path string, opts quadmosaic.StatsOptions) error {
	el := godal.ErrLogger(errLogger(ctx))
	ds, err := godal.Open(path, godal.Update(), el)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	if opts.Ignore != nil {
		for i, band := range ds.Bands() {
			if err := band.SetNoData(*opts.Ignore, el); err != nil {
				ds.Close()
				return fmt.Errorf("set nodata on band %d: %w", i+1, err)
			}
		}
	}
	if err := ds.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}

	ds, err = godal.Open(path, godal.Update(), el)
	if err != nil {
		return fmt.Errorf("reopen %s: %w", path, err)
	}
	for i, band := range ds.Bands() {
		if err := bandStatistics(band, opts, el); err != nil {
			ds.Close()
			return fmt.Errorf("band %d statistics: %w", i+1, err)
		}
	}
	if opts.Pyramid {
		str := ds.Structure()
		levels := quadmosaic.PyramidLevels(str.SizeX, str.SizeY)
		log.Logger(ctx).Sugar().Debugf("building overviews %v on %s", levels, path)
		if len(levels) > 0 {
			if err := ds.BuildOverviews(godal.Levels(levels...), godal.Resampling(godal.Nearest), el); err != nil {
				ds.Close()
				return fmt.Errorf("build overviews: %w", err)
			}
		}
	}
	if err := ds.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

type errOption interface {
	godal.StatisticsOption
	godal.SetStatisticsOption
	godal.HistogramOption
	godal.MetadataOption
}

// errNoValidPixels is the GDAL failure message of statistics requested on a
// band holding only nodata
const errNoValidPixels = "no valid pixels found"

func bandStatistics(band godal.Band, opts quadmosaic.StatsOptions, el errOption) error {
	stats, err := band.ComputeStatistics(el)
	if err != nil {
		if !strings.Contains(err.Error(), errNoValidPixels) {
			return fmt.Errorf("compute: %w", err)
		}
		// empty band: its statistics are the nodata value itself
		nd, ok := band.NoData()
		if opts.Ignore != nil {
			nd, ok = *opts.Ignore, true
		}
		if !ok {
			return fmt.Errorf("compute: %w", err)
		}
		stats = godal.Statistics{Min: nd, Max: nd, Mean: nd, Std: 0}
		if err := band.SetStatistics(nd, nd, nd, 0, el); err != nil {
			return fmt.Errorf("set statistics: %w", err)
		}
	}
	binning := quadmosaic.NewHistogramBinning(dataType(band.Structure().DataType), stats.Min, stats.Max)
	hist, err := band.Histogram(godal.Intervals(binning.Count, binning.Lower, binning.Upper),
		godal.IncludeOutOfRange(), el)
	if err != nil {
		return fmt.Errorf("histogram: %w", err)
	}
	counts := make([]uint64, hist.Len())
	for i := range counts {
		counts[i] = hist.Bucket(i).Count
	}
	md := binning.Metadata(counts)
	for k, v := range opts.BandMetadata() {
		md[k] = v
	}
	for k, v := range md {
		if err := band.SetMetadata(k, v, el); err != nil {
			return fmt.Errorf("set %s: %w", k, err)
		}
	}
	return nil
}

var dataTypes = []struct {
	godal godal.DataType
	qm    quadmosaic.DataType
}{
	{godal.Byte, quadmosaic.Byte},
	{godal.Int16, quadmosaic.Int16},
	{godal.UInt16, quadmosaic.UInt16},
	{godal.Int32, quadmosaic.Int32},
	{godal.UInt32, quadmosaic.UInt32},
	{godal.Float32, quadmosaic.Float32},
	{godal.Float64, quadmosaic.Float64},
	{godal.CInt16, quadmosaic.CInt16},
	{godal.CInt32, quadmosaic.CInt32},
	{godal.CFloat32, quadmosaic.CFloat32},
	{godal.CFloat64, quadmosaic.CFloat64},
}

// dataType returns the name of dt, Float64 for types that cannot be named
func dataType(dt godal.DataType) quadmosaic.DataType {
	for _, t := range dataTypes {
		if t.godal == dt {
			return t.qm
		}
	}
	return quadmosaic.Float64
}

// godalType returns the GDAL type named dt, Float32 if unnamed
func godalType(dt quadmosaic.DataType) godal.DataType {
	for _, t := range dataTypes {
		if t.qm == dt {
			return t.godal
		}
	}
	return godal.Float32
}
