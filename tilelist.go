package quadmosaic

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// ReadTileList returns the raster paths listed one per line in the file at
// path, as produced by `ls *.tif > mosaic.txt`. Blank lines are skipped.
func ReadTileList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	tiles := []string{}
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		tiles = append(tiles, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return tiles, nil
}
