package pkg

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/ecopia-map/sdf_tiler/internal/fatal"
	"github.com/ecopia-map/sdf_tiler/internal/raster"
	"github.com/ecopia-map/sdf_tiler/internal/tiler"
	"github.com/ecopia-map/sdf_tiler/pkg/algorithm_manager"
	"github.com/ecopia-map/sdf_tiler/tools"
	"github.com/golang/glog"
)

const checksumPlaces = 6

type TilerVerify struct {
	fileFinder       tools.FileFinder
	algorithmManager algorithm_manager.AlgorithmManager
}

func NewTilerVerify(fileFinder tools.FileFinder, algorithmManager algorithm_manager.AlgorithmManager) tiler.ITiler {
	return &TilerVerify{
		fileFinder:       fileFinder,
		algorithmManager: algorithmManager,
	}
}

// Checks every binary tile under FolderBin
func (tilerVerify *TilerVerify) RunTiler(opts *tiler.TilerOptions) error {
	files, err := tilerVerify.fileFinder.GetTileFilesToVerify(opts)
	if err != nil {
		return err
	}
	tools.LogOutput("> verifying", len(files), "tiles in", opts.FolderBin)

	strict := opts.TilerVerifyOptions != nil && opts.TilerVerifyOptions.Strict
	var errs []error
	for _, filePath := range files {
		if err := VerifyTile(opts.FolderBin, filePath); err != nil {
			glog.Errorln(err)
			if strict {
				return err
			}
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%d of %d tiles are invalid: %w", len(errs), len(files), errors.Join(errs...))
	}

	tools.LogOutput("> all", len(files), "tiles are valid")
	return nil
}

// VerifyTile loads the binary tile at filePath, checks that its header
// matches its place below folder and that it encodes back to the same
// bytes. Channel checksums are logged.
func VerifyTile(folder, filePath string) error {
	zoom, x, y, _, err := raster.ParsePath(folder, filePath)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return fatal.IO("verify "+filePath, err)
	}
	img, err := raster.Load(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%s: %w", filePath, err)
	}

	if img.Zoom != zoom || img.XOffset != x || img.YOffset != y {
		return fatal.Structuref("verify", "%s holds tile %d/%d/%d", filePath, img.Zoom, img.XOffset, img.YOffset)
	}

	var buf bytes.Buffer
	if err := img.Save(&buf); err != nil {
		return err
	}
	if !bytes.Equal(buf.Bytes(), data) {
		return fatal.Structuref("verify", "%s does not round trip, %d bytes re-encoded from %d", filePath, buf.Len(), len(data))
	}

	for c, values := range img.Channels {
		sum, skipped := tools.Checksum(values, checksumPlaces)
		glog.Infof("%s channel %d: checksum %s, %d non finite", img, c, sum.String(), skipped)
	}
	return nil
}
