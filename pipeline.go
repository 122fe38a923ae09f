package quadmosaic

import (
	"context"
	"errors"
	"os"

	"github.com/airbusgeo/quadmosaic/internal/log"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type SubsetMode int

const (
	// SubsetNever materializes the virtual mosaic as is
	SubsetNever SubsetMode = iota
	// SubsetWithMask crops the virtual mosaic when a mask is supplied
	SubsetWithMask
	// SubsetAlways crops the virtual mosaic, a mask being expected
	SubsetAlways
)

// DefaultCacheMax is the GDAL_CACHEMAX value (in MB) used when materializing
// mosaics
const DefaultCacheMax = "80000"

// A Profile fixes how a mosaic is built from its tiles
type Profile struct {
	Name string
	// Bands are the (1-based) bands copied to the mosaic
	Bands []int
	// Subset controls whether the virtual mosaic is cropped to a mask
	Subset SubsetMode
	// CutNoData is the nodata value of pixels outside of the mask
	CutNoData float64
	// CreationOptions of the mosaic GeoTIFF
	CreationOptions []string
	// ConfigOptions used while materializing the mosaic, as KEY=VALUE
	ConfigOptions []string
	// Stats are passed to the statistics setter once the mosaic is built
	Stats StatsOptions
	// RemoveIntermediates deletes the virtual mosaics once they are consumed
	RemoveIntermediates bool
	// AdjustDepth adds a copy of the mosaic converted from centimeters to meters
	AdjustDepth bool
}

// FieldData mosaics the first band of quads covering field data, always
// cropped to the field data mask.
func FieldData() Profile {
	return Profile{
		Name:            "field-data",
		Bands:           []int{1},
		Subset:          SubsetAlways,
		CutNoData:       -9999,
		CreationOptions: []string{"NUM_THREADS=ALL_CPUS", "BIGTIFF=IF_NEEDED"},
		ConfigOptions:   []string{"GDAL_CACHEMAX=" + DefaultCacheMax},
		Stats:           StatsOptions{Pyramid: true},
	}
}

// SurfaceReflectance mosaics the 4 bands of surface reflectance quads,
// optionally cropped to a mask. Intermediate virtual mosaics are removed.
func SurfaceReflectance() Profile {
	return Profile{
		Name:                "surface-reflectance",
		Bands:               []int{1, 2, 3, 4},
		Subset:              SubsetWithMask,
		CutNoData:           -999,
		CreationOptions:     []string{"COMPRESS=LZW", "NUM_THREADS=ALL_CPUS", "BIGTIFF=YES"},
		ConfigOptions:       []string{"GDAL_CACHEMAX=" + DefaultCacheMax},
		Stats:               StatsOptions{Pyramid: true, Ignore: IgnoreValue(0)},
		RemoveIntermediates: true,
	}
}

// Raster mosaics the first 3 bands of any set of rasters.
func Raster() Profile {
	return Profile{
		Name:            "raster",
		Bands:           []int{1, 2, 3},
		Subset:          SubsetNever,
		CreationOptions: []string{"COMPRESS=LZW", "NUM_THREADS=ALL_CPUS", "BIGTIFF=YES"},
		ConfigOptions:   []string{"GDAL_CACHEMAX=" + DefaultCacheMax},
		Stats:           StatsOptions{Pyramid: true, Ignore: IgnoreValue(0)},
	}
}

// Inputs of a single mosaic run
type Inputs struct {
	// TileList is the text file listing the tiles. Its name, extension
	// replaced, is the name of the mosaic.
	TileList string
	// Mask is an optional vector file to crop the mosaic to
	Mask string
	// DataType of the mosaic. The source type is kept if empty.
	DataType DataType
}

// Result holds the names of the files a run produced or went through.
// Cut and FieldData are empty when the corresponding step did not run.
type Result struct {
	VRT       string
	Cut       string
	Mosaic    string
	FieldData string
}

// Pipeline chains the steps of a mosaic build. Each step blocks until done.
//
// A failing step is logged and does not stop the pipeline: the next step runs
// on whatever file the failed one may or may not have produced.
type Pipeline struct {
	Toolkit Toolkit
	Stats   StatsSetter
	// Remove deletes intermediate files. Defaults to os.Remove.
	Remove func(name string) error
}

func (p Pipeline) remove(ctx context.Context, name string) {
	rm := p.Remove
	if rm == nil {
		rm = os.Remove
	}
	if err := rm(name); err != nil {
		log.Logger(ctx).Warn("remove intermediate", zap.String("file", name), zap.Error(err))
	}
}

func warnStep(ctx context.Context, step string, err error) {
	if err == nil {
		return
	}
	if errors.Is(err, context.Canceled) {
		log.Logger(ctx).Warn(step+" interrupted", zap.Error(err))
		return
	}
	log.Logger(ctx).Warn(step+" failed", zap.Error(err))
}

// Run builds the mosaic described by prof from in
func (p Pipeline) Run(ctx context.Context, prof Profile, in Inputs) Result {
	ctx = log.With(ctx, zap.String("run", uuid.NewString()), zap.String("profile", prof.Name))
	logger := log.Logger(ctx).Sugar()
	res := Result{}

	logger.Infof("building the virtual mosaic from %s....", in.TileList)
	res.VRT = VRTName(in.TileList)
	warnStep(ctx, "build vrt", p.Toolkit.BuildVRT(ctx, in.TileList, res.VRT))

	src := res.VRT
	if prof.Subset != SubsetNever {
		logger.Infof("subsetting the virtual mosaic %s.... ", res.VRT)
	}
	if prof.Subset == SubsetAlways || (prof.Subset == SubsetWithMask && in.Mask != "") {
		res.Cut = CutName(res.VRT)
		warnStep(ctx, "subset", p.Toolkit.Warp(ctx, res.VRT, res.Cut, WarpOptions{
			Cutline:   in.Mask,
			DstNoData: prof.CutNoData,
		}))
		src = res.Cut
	}

	logger.Infof("building mosaic %s", src)
	res.Mosaic = MosaicName(src)
	warnStep(ctx, "translate", p.Toolkit.Translate(ctx, src, res.Mosaic, TranslateOptions{
		Bands:           prof.Bands,
		DataType:        in.DataType,
		CreationOptions: prof.CreationOptions,
		ConfigOptions:   prof.ConfigOptions,
	}))
	if prof.RemoveIntermediates && res.Cut != "" {
		p.remove(ctx, res.Cut)
	}

	logger.Infof("Calculating stats from the mosaic %s....", res.Mosaic)
	warnStep(ctx, "stats", p.Stats.SetStats(ctx, res.Mosaic, prof.Stats))

	if prof.AdjustDepth {
		logger.Infof("Adjusting depth values for %s", res.Mosaic)
		res.FieldData = FieldDataName(res.Mosaic)
		warnStep(ctx, "adjust depth", p.Toolkit.Rescale(ctx, res.Mosaic, res.FieldData, DepthToMeters))
		logger.Infof("Finally calculating stats from %s....", res.FieldData)
		warnStep(ctx, "stats", p.Stats.SetStats(ctx, res.FieldData, prof.Stats))
	}

	if prof.RemoveIntermediates {
		p.remove(ctx, res.VRT)
	}
	return res
}
