package pkg

import (
	"github.com/ecopia-map/sdf_tiler/internal/fatal"
	"github.com/ecopia-map/sdf_tiler/internal/io"
	"github.com/ecopia-map/sdf_tiler/internal/raster"
	"github.com/ecopia-map/sdf_tiler/internal/tiler"
	"github.com/ecopia-map/sdf_tiler/pkg/algorithm_manager"
	"github.com/ecopia-map/sdf_tiler/tools"
	"github.com/golang/glog"
)

type TilerMerge struct {
	fileFinder       tools.FileFinder
	algorithmManager algorithm_manager.AlgorithmManager
}

func NewTilerMerge(fileFinder tools.FileFinder, algorithmManager algorithm_manager.AlgorithmManager) tiler.ITiler {
	return &TilerMerge{
		fileFinder:       fileFinder,
		algorithmManager: algorithmManager,
	}
}

// Assembles tile (zoom, x, y) from the binary thumbs of its four children
func (tilerMerge *TilerMerge) RunTiler(opts *tiler.TilerOptions) error {
	if err := mergeTile(tilerMerge.fileFinder, tilerMerge.algorithmManager, opts); err != nil {
		return err
	}

	tools.LogOutput("> done merging", opts.Zoom, opts.X, opts.Y)
	return nil
}

func mergeTile(fileFinder tools.FileFinder, am algorithm_manager.AlgorithmManager, opts *tiler.TilerOptions) error {
	var children [4]*raster.GeoImage
	missing := 0
	for i, filePath := range fileFinder.GetTileFilesToMerge(opts) {
		if !tools.FileExists(filePath) {
			glog.V(1).Infof("merge %d/%d/%d: child %s missing", opts.Zoom, opts.X, opts.Y, filePath)
			missing++
			continue
		}
		child, err := raster.LoadFile(filePath)
		if err != nil {
			return err
		}
		children[i] = child
	}

	allowEmpty := opts.TilerMergeOptions != nil && opts.TilerMergeOptions.AllowEmpty
	if missing == len(children) && !allowEmpty {
		return fatal.Inputf("merge", "no children of %d/%d/%d in %s", opts.Zoom, opts.X, opts.Y, opts.FolderBin)
	}

	merged, err := raster.Merge(children, opts.TileSize, opts.Zoom, opts.X, opts.Y, opts.FillValues())
	if err != nil {
		return err
	}
	am.GetMetrics().Merged(missing)
	glog.Infof("merged %s, %d children missing", merged, missing)

	if err := exportImages(io.NewStandardMergeProducer(opts.FolderPNG, opts), am, opts, merged); err != nil {
		return err
	}
	return writeThumb(merged, opts)
}
