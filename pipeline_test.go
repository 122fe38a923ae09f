package quadmosaic

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/airbusgeo/quadmosaic/internal/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type call struct {
	op       string
	src, dst string
	opts     interface{}
}

// fakeToolkit records its calls and creates (empty) output files
type fakeToolkit struct {
	calls []call
	fail  map[string]error
}

func (f *fakeToolkit) do(op, src, dst string, opts interface{}) error {
	f.calls = append(f.calls, call{op, src, dst, opts})
	if err := f.fail[op]; err != nil {
		return err
	}
	return os.WriteFile(dst, nil, 0o644)
}

func (f *fakeToolkit) BuildVRT(ctx context.Context, tileList, dst string) error {
	return f.do("buildvrt", tileList, dst, nil)
}

func (f *fakeToolkit) Warp(ctx context.Context, src, dst string, opts WarpOptions) error {
	return f.do("warp", src, dst, opts)
}

func (f *fakeToolkit) Translate(ctx context.Context, src, dst string, opts TranslateOptions) error {
	return f.do("translate", src, dst, opts)
}

func (f *fakeToolkit) Rescale(ctx context.Context, src, dst string, opts RescaleOptions) error {
	return f.do("rescale", src, dst, opts)
}

type statsCall struct {
	path string
	opts StatsOptions
	// files present on disk when the stats were requested
	present map[string]bool
}

type fakeStats struct {
	calls []statsCall
	watch []string
	err   error
}

func (f *fakeStats) SetStats(ctx context.Context, path string, opts StatsOptions) error {
	sc := statsCall{path: path, opts: opts, present: map[string]bool{}}
	for _, w := range f.watch {
		_, err := os.Stat(w)
		sc.present[w] = err == nil
	}
	f.calls = append(f.calls, sc)
	return f.err
}

func exists(name string) bool {
	_, err := os.Stat(name)
	return err == nil
}

func observed(t *testing.T) (context.Context, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.InfoLevel)
	return log.WithLogger(context.Background(), zap.New(core)), logs
}

func TestSurfaceReflectanceWithMask(t *testing.T) {
	chdir(t, t.TempDir())
	require.NoError(t, os.WriteFile("a.txt", []byte("q1.tif\nq2.tif\n"), 0o644))
	ctx, logs := observed(t)

	tk := &fakeToolkit{}
	st := &fakeStats{watch: []string{"a.vrt", "cuta.vrt"}}
	res := Pipeline{Toolkit: tk, Stats: st}.Run(ctx, SurfaceReflectance(), Inputs{
		TileList: "a.txt",
		Mask:     "m.shp",
		DataType: UInt16,
	})

	assert.Equal(t, Result{VRT: "a.vrt", Cut: "cuta.vrt", Mosaic: "a.tif"}, res)
	assert.Equal(t, []call{
		{"buildvrt", "a.txt", "a.vrt", nil},
		{"warp", "a.vrt", "cuta.vrt", WarpOptions{Cutline: "m.shp", DstNoData: -999}},
		{"translate", "cuta.vrt", "a.tif", TranslateOptions{
			Bands:           []int{1, 2, 3, 4},
			DataType:        UInt16,
			CreationOptions: []string{"COMPRESS=LZW", "NUM_THREADS=ALL_CPUS", "BIGTIFF=YES"},
			ConfigOptions:   []string{"GDAL_CACHEMAX=80000"},
		}},
	}, tk.calls)

	require.Len(t, st.calls, 1)
	assert.Equal(t, "a.tif", st.calls[0].path)
	assert.Equal(t, []string{"-pyramid", "-ignore", "0"}, st.calls[0].opts.Args())
	// the cropped vrt is gone before stats run, the vrt only afterwards
	assert.False(t, st.calls[0].present["cuta.vrt"])
	assert.True(t, st.calls[0].present["a.vrt"])

	assert.False(t, exists("a.vrt"))
	assert.False(t, exists("cuta.vrt"))
	assert.True(t, exists("a.tif"))

	msgs := []string{}
	for _, e := range logs.All() {
		msgs = append(msgs, e.Message)
	}
	assert.Equal(t, []string{
		"building the virtual mosaic from a.txt....",
		"subsetting the virtual mosaic a.vrt.... ",
		"building mosaic cuta.vrt",
		"Calculating stats from the mosaic a.tif....",
	}, msgs)
}

func TestSurfaceReflectanceWithoutMask(t *testing.T) {
	chdir(t, t.TempDir())
	ctx, _ := observed(t)

	tk := &fakeToolkit{}
	st := &fakeStats{}
	removed := []string{}
	res := Pipeline{Toolkit: tk, Stats: st, Remove: func(name string) error {
		removed = append(removed, name)
		return os.Remove(name)
	}}.Run(ctx, SurfaceReflectance(), Inputs{TileList: "srMosaic.txt", DataType: Float32})

	assert.Equal(t, Result{VRT: "srMosaic.vrt", Mosaic: "srMosaic.tif"}, res)
	require.Len(t, tk.calls, 2)
	assert.Equal(t, "buildvrt", tk.calls[0].op)
	assert.Equal(t, "translate", tk.calls[1].op)
	assert.Equal(t, "srMosaic.vrt", tk.calls[1].src)
	assert.Equal(t, "srMosaic.tif", tk.calls[1].dst)
	assert.Equal(t, Float32, tk.calls[1].opts.(TranslateOptions).DataType)
	assert.Equal(t, []string{"srMosaic.vrt"}, removed)
	assert.False(t, exists("srMosaic.vrt"))
	assert.True(t, exists("srMosaic.tif"))
}

func TestFieldData(t *testing.T) {
	chdir(t, t.TempDir())
	ctx, _ := observed(t)

	tk := &fakeToolkit{}
	st := &fakeStats{}
	res := Pipeline{Toolkit: tk, Stats: st}.Run(ctx, FieldData(), Inputs{TileList: "a.txt", Mask: "field.shp"})

	assert.Equal(t, Result{VRT: "a.vrt", Cut: "cuta.vrt", Mosaic: "a.tif"}, res)
	require.Len(t, tk.calls, 3)
	assert.Equal(t, WarpOptions{Cutline: "field.shp", DstNoData: -9999}, tk.calls[1].opts)
	assert.Equal(t, TranslateOptions{
		Bands:           []int{1},
		CreationOptions: []string{"NUM_THREADS=ALL_CPUS", "BIGTIFF=IF_NEEDED"},
		ConfigOptions:   []string{"GDAL_CACHEMAX=80000"},
	}, tk.calls[2].opts)
	require.Len(t, st.calls, 1)
	assert.Nil(t, st.calls[0].opts.Ignore)
	assert.Equal(t, []string{"-pyramid"}, st.calls[0].opts.Args())
	// intermediates are left on disk
	assert.True(t, exists("a.vrt"))
	assert.True(t, exists("cuta.vrt"))
}

func TestFieldDataAdjustDepth(t *testing.T) {
	chdir(t, t.TempDir())
	ctx, _ := observed(t)

	prof := FieldData()
	prof.AdjustDepth = true
	tk := &fakeToolkit{}
	st := &fakeStats{}
	res := Pipeline{Toolkit: tk, Stats: st}.Run(ctx, prof, Inputs{TileList: "depth.txt", Mask: "field.shp"})

	assert.Equal(t, "depth_FieldData.tif", res.FieldData)
	require.Len(t, tk.calls, 4)
	assert.Equal(t, call{"rescale", "depth.tif", "depth_FieldData.tif", DepthToMeters}, tk.calls[3])
	require.Len(t, st.calls, 2)
	assert.Equal(t, "depth.tif", st.calls[0].path)
	assert.Equal(t, "depth_FieldData.tif", st.calls[1].path)
}

func TestRasterNeverSubsets(t *testing.T) {
	chdir(t, t.TempDir())
	ctx, logs := observed(t)

	tk := &fakeToolkit{}
	st := &fakeStats{}
	res := Pipeline{Toolkit: tk, Stats: st}.Run(ctx, Raster(), Inputs{TileList: "b.txt", Mask: "ignored.shp"})

	assert.Equal(t, Result{VRT: "b.vrt", Mosaic: "b.tif"}, res)
	require.Len(t, tk.calls, 2)
	assert.Equal(t, []int{1, 2, 3}, tk.calls[1].opts.(TranslateOptions).Bands)
	assert.True(t, exists("b.vrt"))
	require.Len(t, st.calls, 1)
	assert.Equal(t, 0.0, *st.calls[0].opts.Ignore)
	assert.Zero(t, logs.FilterMessageSnippet("subsetting").Len())
	assert.Equal(t, 1, logs.FilterMessage("building mosaic b.vrt").Len())
}

func TestFailuresDoNotStopThePipeline(t *testing.T) {
	chdir(t, t.TempDir())
	ctx, logs := observed(t)

	tk := &fakeToolkit{fail: map[string]error{
		"buildvrt": errors.New("gdalbuildvrt: exit status 1"),
		"warp":     errors.New("gdalwarp: exit status 1"),
	}}
	st := &fakeStats{err: errors.New("gdalcalcstats: exit status 1")}
	res := Pipeline{Toolkit: tk, Stats: st}.Run(ctx, SurfaceReflectance(), Inputs{TileList: "a.txt", Mask: "m.shp"})

	assert.Equal(t, "a.tif", res.Mosaic)
	assert.Len(t, tk.calls, 3)
	assert.Len(t, st.calls, 1)
	assert.Equal(t, 1, logs.FilterMessage("build vrt failed").Len())
	assert.Equal(t, 1, logs.FilterMessage("subset failed").Len())
	assert.Equal(t, 1, logs.FilterMessage("stats failed").Len())
	// the cropped vrt was never created, its removal is only logged
	assert.Equal(t, 2, logs.FilterMessage("remove intermediate").Len())
}

// chdir changes the working directory to dir for the duration of the test,
// like testing.T.Chdir (Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		if err := os.Chdir(wd); err != nil {
			t.Fatalf("restore working directory: %v", err)
		}
	})
}
