package quadmosaic

import "strings"

// cutPrefix is prepended to the name of a virtual mosaic that has been
// cropped to a mask.
const cutPrefix = "cut"

// trim returns s without its first head and last tail characters. Out of
// range bounds clamp to an empty string instead of panicking.
func trim(s string, head, tail int) string {
	r := []rune(s)
	end := len(r) - tail
	if end < 0 {
		end = 0
	}
	if head >= end {
		return ""
	}
	return string(r[head:end])
}

// VRTName returns the name of the virtual mosaic built from tileList: its last
// four characters (not bytes) are replaced by ".vrt". No check is made that tileList
// actually ends with a 3 character extension.
func VRTName(tileList string) string {
	return trim(tileList, 0, 4) + ".vrt"
}

// CutName returns the name of the virtual mosaic cropped to a mask. The prefix
// applies to the whole string, directory included: "dir/a.vrt" gives
// "cutdir/a.vrt".
func CutName(vrt string) string {
	return cutPrefix + trim(vrt, 0, 4) + ".vrt"
}

// MosaicName returns the name of the GeoTIFF materialized from src, dropping
// the "cut" prefix if src has one.
func MosaicName(src string) string {
	if strings.HasPrefix(src, cutPrefix) {
		return trim(src, len(cutPrefix), 4) + ".tif"
	}
	return trim(src, 0, 4) + ".tif"
}

// FieldDataName returns the name of the depth adjusted copy of a mosaic.
func FieldDataName(tif string) string {
	return trim(tif, 0, 4) + "_FieldData.tif"
}
