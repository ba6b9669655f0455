package raster

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ecopia-map/sdf_tiler/internal/fatal"
)

// CalcPath returns <folder>/<zoom>/<y>/<x>.<ext>.
func CalcPath(folder string, zoom, x, y uint32, ext string) string {
	return filepath.Join(
		folder,
		strconv.FormatUint(uint64(zoom), 10),
		strconv.FormatUint(uint64(y), 10),
		strconv.FormatUint(uint64(x), 10)+"."+ext,
	)
}

func (img *GeoImage) Path(folder, ext string) string {
	return CalcPath(folder, img.Zoom, img.XOffset, img.YOffset, ext)
}

// ParsePath is the inverse of CalcPath for a path below folder.
func ParsePath(folder, path string) (zoom, x, y uint32, ext string, err error) {
	rel, err := filepath.Rel(folder, path)
	if err != nil {
		return 0, 0, 0, "", fatal.Inputf("raster.ParsePath", "%s is not below %s", path, folder)
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	if len(parts) != 3 {
		return 0, 0, 0, "", fatal.Inputf("raster.ParsePath", "%s does not match <zoom>/<y>/<x>.<ext>", rel)
	}
	ext = strings.TrimPrefix(filepath.Ext(parts[2]), ".")
	name := strings.TrimSuffix(parts[2], filepath.Ext(parts[2]))

	var values [3]uint32
	for i, s := range []string{parts[0], parts[1], name} {
		v, perr := strconv.ParseUint(s, 10, 32)
		if perr != nil {
			return 0, 0, 0, "", fatal.Inputf("raster.ParsePath", "%s does not match <zoom>/<y>/<x>.<ext>", rel)
		}
		values[i] = uint32(v)
	}
	return values[0], values[2], values[1], ext, nil
}
