package quadmosaic

import (
	"math"
	"strconv"
	"strings"
)

// OverviewLevels are the candidate decimation factors of pyramid layers
var OverviewLevels = []int{4, 8, 16, 32, 64, 128, 256, 512}

// MinOverviewDim is the size under which no more pyramid layers are added
const MinOverviewDim = 33

// PyramidLevels returns the overview levels to build for a raster of the given
// size: every OverviewLevels entry whose overview is larger than
// MinOverviewDim in its smallest dimension.
func PyramidLevels(width, height int) []int {
	mindim := width
	if height < mindim {
		mindim = height
	}
	levels := []int{}
	for _, l := range OverviewLevels {
		if mindim/l > MinOverviewDim {
			levels = append(levels, l)
		}
	}
	return levels
}

const (
	BinFunctionDirect = "direct"
	BinFunctionLinear = "linear"
)

// maxHistogramBins caps the number of histogram buckets
const maxHistogramBins = 256

// HistogramBinning describes how the values of a band are bucketed
type HistogramBinning struct {
	// Count is the number of buckets
	Count int
	// Lower and Upper bound the bucketed range, as passed to GDAL
	Lower, Upper float64
	// Min and Max are the data range, as stored in the band metadata
	Min, Max float64
	// Function is BinFunctionDirect when every bucket maps to a single integer
	// value, BinFunctionLinear otherwise
	Function string
}

// NewHistogramBinning chooses a binning for a band of type dt whose values
// range from min to max. Integer bands with at most 256 distinct values get
// one bucket per value, Byte bands always span 0-255. Values equal to Upper
// fall outside the last bucket, callers must count them in it.
func NewHistogramBinning(dt DataType, min, max float64) HistogramBinning {
	if dt == Byte {
		min, max = 0, 255
	}
	upper := max
	if dt.IsInteger() {
		min, max = math.Floor(min), math.Ceil(max)
		n := int(max-min) + 1
		if n <= maxHistogramBins {
			return HistogramBinning{
				Count:    n,
				Lower:    min - 0.5,
				Upper:    max + 0.5,
				Min:      min,
				Max:      max,
				Function: BinFunctionDirect,
			}
		}
		// n integer values spread over the buckets, max included
		upper = min + float64(n)
	}
	if upper <= min {
		upper = min + 1
	}
	return HistogramBinning{
		Count:    maxHistogramBins,
		Lower:    min,
		Upper:    upper,
		Min:      min,
		Max:      max,
		Function: BinFunctionLinear,
	}
}

// Value returns the data value represented by bucket i
func (b HistogramBinning) Value(i int) float64 {
	if b.Function == BinFunctionDirect {
		return b.Min + float64(i)
	}
	width := (b.Upper - b.Lower) / float64(b.Count)
	return b.Lower + (float64(i)+0.5)*width
}

// Metadata returns the band metadata items describing the histogram counts,
// its median and its mode
func (b HistogramBinning) Metadata(counts []uint64) map[string]string {
	sb := strings.Builder{}
	var total uint64
	mode := 0
	for i, c := range counts {
		sb.WriteString(strconv.FormatUint(c, 10))
		sb.WriteByte('|')
		total += c
		if c > counts[mode] {
			mode = i
		}
	}
	median := 0
	var cumul uint64
	for i, c := range counts {
		cumul += c
		if cumul*2 >= total {
			median = i
			break
		}
	}
	md := map[string]string{
		"STATISTICS_HISTOMIN":         formatFloat(b.Min),
		"STATISTICS_HISTOMAX":         formatFloat(b.Max),
		"STATISTICS_HISTONUMBINS":     formatInt(len(counts)),
		"STATISTICS_HISTOBINVALUES":   sb.String(),
		"STATISTICS_HISTOBINFUNCTION": b.Function,
	}
	if total > 0 {
		md["STATISTICS_MEDIAN"] = formatFloat(b.Value(median))
		md["STATISTICS_MODE"] = formatFloat(b.Value(mode))
	}
	return md
}
