package pkg

import (
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/ecopia-map/sdf_tiler/internal/geojson_loader"
	"github.com/ecopia-map/sdf_tiler/internal/geometry"
	"github.com/ecopia-map/sdf_tiler/internal/io"
	"github.com/ecopia-map/sdf_tiler/internal/raster"
	"github.com/ecopia-map/sdf_tiler/internal/tiler"
	"github.com/ecopia-map/sdf_tiler/pkg/algorithm_manager"
	"github.com/ecopia-map/sdf_tiler/tools"
	"github.com/golang/glog"
)

type Tiler struct {
	fileFinder       tools.FileFinder
	algorithmManager algorithm_manager.AlgorithmManager
}

func NewTiler(fileFinder tools.FileFinder, algorithmManager algorithm_manager.AlgorithmManager) tiler.ITiler {
	return &Tiler{
		fileFinder:       fileFinder,
		algorithmManager: algorithmManager,
	}
}

// Renders tile (zoom, x, y) from the input geometry and exports its tile tree
func (tiler *Tiler) RunTiler(opts *tiler.TilerOptions) error {
	defer tiler.algorithmManager.GetCoordinateConverterAlgorithm().Cleanup()

	g, err := loadGeometry(tiler.fileFinder, tiler.algorithmManager, opts)
	if err != nil {
		return err
	}

	if err := renderTile(tiler.algorithmManager, g, opts); err != nil {
		return err
	}

	tools.LogOutput("> done rendering", opts.Zoom, opts.X, opts.Y)
	return nil
}

// Reads every input file and merges their polygons into one geometry
func loadGeometry(fileFinder tools.FileFinder, am algorithm_manager.AlgorithmManager, opts *tiler.TilerOptions) (*geometry.Geometry, error) {
	tools.LogOutput("Preparing list of files to process...")

	files, err := fileFinder.GetGeoJSONFilesToProcess(opts)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no GeoJSON files found in %s", opts.Input)
	}

	loader := geojson_loader.NewGeoJSONLoader(am.GetCoordinateConverterAlgorithm(), opts.Srid)
	geometries := make([]*geometry.Geometry, 0, len(files))
	for i, filePath := range files {
		tools.LogOutput("Processing file " + strconv.Itoa(i+1) + "/" + strconv.Itoa(len(files)) + ", " + filePath)
		g, err := loader.LoadFile(filePath)
		if err != nil {
			return nil, err
		}
		if g.IsEmpty() {
			glog.Warningf("no polygons in %s", filePath)
			continue
		}
		geometries = append(geometries, g)
	}

	return geometry.Merge(geometries...), nil
}

// Fills a RenderSize raster for the tile of opts, exports the tile tree and stores the binary thumb
func renderTile(am algorithm_manager.AlgorithmManager, g *geometry.Geometry, opts *tiler.TilerOptions) error {
	defer timeTrack(time.Now(), "render "+strconv.Itoa(int(opts.Zoom))+"/"+strconv.Itoa(int(opts.X))+"/"+strconv.Itoa(int(opts.Y)))

	img, err := raster.NewGeoImage(opts.RenderSize(), opts.Zoom, opts.X, opts.Y, opts.FillValues()...)
	if err != nil {
		return err
	}

	tools.LogOutput("> building distance index...")
	nearby := img.NearbyGeometry(g, opts.MaxDistance+opts.Buffer)
	tree, err := am.GetDistanceIndexAlgorithm(nearby)
	if err != nil {
		return err
	}
	contains, err := am.GetContainmentIndexAlgorithm(nearby, img)
	if err != nil {
		return err
	}
	glog.Infof("rendering %s: %d segments, %d nodes", img, tree.NumSegments(), tree.NumNodes())

	tools.LogOutput("> filling raster...")
	fillOptions := opts.FillOptions()
	fillOptions.Corrector = am.GetDistanceCorrectorAlgorithm()

	start := time.Now()
	if err := img.Fill(nearby, tree, contains, fillOptions); err != nil {
		return err
	}
	am.GetMetrics().Filled(int(img.Size)*int(img.Size), tree.VisitedNodes(), time.Since(start))

	tools.LogOutput("> exporting tiles...")
	if err := exportImages(io.NewStandardProducer(opts.FolderPNG, opts), am, opts, img); err != nil {
		return err
	}

	if opts.TilerRenderOptions != nil && opts.TilerRenderOptions.SkipBin {
		return nil
	}
	return writeThumb(img, opts)
}

// Saves the ThumbSize reduction of img that the merge of its parent reads back
func writeThumb(img *raster.GeoImage, opts *tiler.TilerOptions) error {
	thumb := img
	if img.Size != opts.ThumbSize() {
		var err error
		if thumb, err = img.ScaledDownClone(opts.ThumbSize()); err != nil {
			return err
		}
	}
	return io.WriteBinaryTile(opts.FolderBin, thumb)
}

// Runs the producer against a pool of consumers writing the produced tiles
func exportImages(producer io.Producer, am algorithm_manager.AlgorithmManager, opts *tiler.TilerOptions, img *raster.GeoImage) error {
	// a consumer goroutine per CPU
	numConsumers := opts.NumWorkers
	if numConsumers < 1 {
		numConsumers = runtime.NumCPU()
	}

	// init channel where to submit work with a buffer 5 times greater than the number of consumer
	workChannel := make(chan *io.WorkUnit, numConsumers*5)

	// every consumer and the producer submit at most one error
	errorChannel := make(chan error, numConsumers+1)

	var waitGroup sync.WaitGroup

	// add producer to waitgroup and launch producer goroutine
	waitGroup.Add(1)
	go producer.Produce(workChannel, errorChannel, &waitGroup, img)

	// add consumers to waitgroup and launch them
	for i := 0; i < numConsumers; i++ {
		waitGroup.Add(1)
		consumer := io.NewStandardConsumer(am.GetMetrics())
		go consumer.Consume(workChannel, errorChannel, &waitGroup)
	}

	// wait for producers and consumers to finish
	waitGroup.Wait()

	// close error chan
	close(errorChannel)

	// find if there are errors in the error channel buffer
	var errs []error
	for err := range errorChannel {
		glog.Errorln(err)
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("errors raised while exporting %s: %w", img, errors.Join(errs...))
	}

	return nil
}

func timeTrack(start time.Time, name string) {
	glog.Infof("%s took %s", name, time.Since(start))
}
