package quadmosaic

import (
	"context"
	"fmt"
	"math"
	"strconv"
)

// Toolkit performs the GDAL operations a mosaic pipeline is made of. Every
// call blocks until the operation has completed.
//
// Two implementations exist: Exec which runs the GDAL command line utilities,
// and godalkit.Toolkit which runs them in-process.
type Toolkit interface {
	// BuildVRT creates the virtual mosaic dst from the rasters listed in the
	// tileList text file
	BuildVRT(ctx context.Context, tileList, dst string) error
	// Warp crops src to a cutline and writes the result to dst
	Warp(ctx context.Context, src, dst string, opts WarpOptions) error
	// Translate materializes src into the GeoTIFF dst
	Translate(ctx context.Context, src, dst string, opts TranslateOptions) error
	// Rescale divides the values of a single band of src and writes them to dst
	Rescale(ctx context.Context, src, dst string, opts RescaleOptions) error
}

type WarpOptions struct {
	// Cutline is the vector file to crop to
	Cutline string
	// DstNoData is the value given to pixels outside of the cutline
	DstNoData float64
}

// Switches returns the gdalwarp switches, excluding source and destination
func (o WarpOptions) Switches() []string {
	return []string{
		"-of", "GTiff",
		"-dstnodata", formatFloat(o.DstNoData),
		"-cutline", o.Cutline,
		"-crop_to_cutline",
		"-dstalpha",
	}
}

type TranslateOptions struct {
	// Bands selects the (1-based) bands to copy. All bands if empty.
	Bands []int
	// DataType is the output pixel type. The source type is kept if empty.
	DataType DataType
	// CreationOptions are GTiff creation options, as KEY=VALUE
	CreationOptions []string
	// ConfigOptions are GDAL configuration options, as KEY=VALUE
	ConfigOptions []string
}

// Switches returns the gdal_translate switches, excluding creation and config
// options
func (o TranslateOptions) Switches() []string {
	sw := []string{"-of", "GTiff"}
	for _, b := range o.Bands {
		sw = append(sw, "-b", formatInt(b))
	}
	if o.DataType != "" {
		sw = append(sw, "-ot", string(o.DataType))
	}
	return sw
}

type RescaleOptions struct {
	// Band is the source band to rescale
	Band int
	// Divisor divides every source value
	Divisor float64
	// NoData is set as the output nodata value
	NoData float64
	// DataType is the output pixel type
	DataType DataType
}

// Expression returns the gdal_calc.py expression applied to band A
func (o RescaleOptions) Expression() string {
	return fmt.Sprintf("(A/%.2f)", o.Divisor)
}

// Apply rescales values in place the way Expression does. Values equal to
// srcNoData, when set, become NoData.
func (o RescaleOptions) Apply(values []float64, srcNoData *float64) {
	for i, v := range values {
		if srcNoData != nil && (v == *srcNoData || (math.IsNaN(v) && math.IsNaN(*srcNoData))) {
			values[i] = o.NoData
			continue
		}
		values[i] = v / o.Divisor
	}
}

// DepthToMeters converts depths stored in centimeters to Float32 meters
var DepthToMeters = RescaleOptions{
	Band:     1,
	Divisor:  100,
	NoData:   0,
	DataType: Float32,
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func formatInt(v int) string {
	return strconv.Itoa(v)
}
