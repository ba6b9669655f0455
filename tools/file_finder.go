package tools

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ecopia-map/sdf_tiler/internal/raster"
	"github.com/ecopia-map/sdf_tiler/internal/tiler"
	"github.com/golang/glog"
)

type FileFinder interface {
	GetGeoJSONFilesToProcess(opts *tiler.TilerOptions) ([]string, error)
	GetTileFilesToMerge(opts *tiler.TilerOptions) [4]string
	GetTileFilesToVerify(opts *tiler.TilerOptions) ([]string, error)
}

type StandardFileFinder struct{}

func NewStandardFileFinder() FileFinder {
	return &StandardFileFinder{}
}

func (f *StandardFileFinder) GetGeoJSONFilesToProcess(opts *tiler.TilerOptions) ([]string, error) {
	// If folder processing is not enabled then the file is given by -input flag, otherwise look for GeoJSON in -input folder
	// eventually excluding nested folders if Recursive flag is disabled
	if !opts.FolderProcessing {
		return []string{opts.Input}, nil
	}

	return walkFiles(opts.Input, opts.Recursive, ".geojson", ".json")
}

// Paths of the four binary children of tile (zoom, x, y) in raster.Layout order. The files may not exist.
func (f *StandardFileFinder) GetTileFilesToMerge(opts *tiler.TilerOptions) [4]string {
	var paths [4]string
	for _, q := range raster.Layout {
		paths[q.Index] = raster.CalcPath(opts.FolderBin, opts.Zoom+1, opts.X*2+q.DX, opts.Y*2+q.DY, tiler.BinExtension)
	}
	return paths
}

func (f *StandardFileFinder) GetTileFilesToVerify(opts *tiler.TilerOptions) ([]string, error) {
	return walkFiles(opts.FolderBin, true, "."+tiler.BinExtension)
}

func walkFiles(root string, recursive bool, extensions ...string) ([]string, error) {
	var files = make([]string, 0)

	baseInfo, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	err = filepath.Walk(
		root,
		func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() {
				if !recursive && !os.SameFile(info, baseInfo) {
					return filepath.SkipDir
				}
				return nil
			}
			ext := strings.ToLower(filepath.Ext(info.Name()))
			for _, e := range extensions {
				if ext == e {
					files = append(files, path)
					break
				}
			}
			return nil
		},
	)
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	glog.V(1).Infof("found %d files under %s", len(files), root)
	return files, nil
}
