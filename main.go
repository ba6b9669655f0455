/*
 * This file is part of the Go Cesium Point Cloud Tiler distribution (https://github.com/mfbonfigli/gocesiumtiler).
 * Copyright (c) 2019 Massimo Federico Bonfigli - m.federico.bonfigli@gmail.com
 *
 * This program is free software; you can redistribute it and/or modify it
 * under the terms of the GNU Lesser General Public License Version 3 as
 * published by the Free Software Foundation;
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
 * Lesser General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General Public License
 * along with this program. If not, see <http://www.gnu.org/licenses/>.
 *
 * This software also uses third party components. You can find information
 * on their credits and licensing in the file LICENSE-3RD-PARTIES.md that
 * you should have received togheter with the source code.
 */

package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ecopia-map/sdf_tiler/internal/raster"
	"github.com/ecopia-map/sdf_tiler/internal/tiler"
	"github.com/ecopia-map/sdf_tiler/pkg"
	"github.com/ecopia-map/sdf_tiler/pkg/algorithm_manager"
	"github.com/ecopia-map/sdf_tiler/pkg/algorithm_manager/std_algorithm_manager"
	"github.com/ecopia-map/sdf_tiler/tools"
	"github.com/golang/glog"
	"github.com/joho/godotenv"
)

const VERSION = "0.4.0"

const logo = `
          _  __       _   _ _
  ___  __| |/ _|     | |_(_) | ___ _ __
 / __|/ _  | |_ _____| __| | |/ _ \ '__|
 \__ \ (_| |  _|_____| |_| | |  __/ |
 |___/\__,_|_|        \__|_|_|\___|_|
  Signed distance field map tiles from GeoJSON polygons
  Copyright YYYY
`

func main() {
	log.SetPrefix("[sdf_tiler] ")
	log.SetFlags(log.LUTC | log.Ldate | log.Lmicroseconds | log.Lshortfile)
	defer glog.Flush()

	// folder defaults may come from a .env file in the working directory
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		glog.Warningln("cannot load .env:", err)
	}

	flagsGlobal := tools.ParseFlagsGlobal()
	glog.V(1).Infoln(tools.FmtJSONString(flagsGlobal))

	if *flagsGlobal.Help {
		showHelp()
		return
	}
	if *flagsGlobal.Version {
		printVersion()
		return
	}
	setLogging(*flagsGlobal.Silent, *flagsGlobal.LogTimestamp)

	args := flag.Args()
	if len(args) == 0 {
		log.Fatal("Please specify a subcommand [render|merge|pyramid|verify].")
	}
	cmd, args := args[0], args[1:]

	switch cmd {
	case tools.CommandRender:
		mainCommandRender(args)
	case tools.CommandMerge:
		mainCommandMerge(args)
	case tools.CommandPyramid:
		mainCommandPyramid(args)
	case tools.CommandVerify:
		mainCommandVerify(args)
	default:
		log.Fatalf("Unrecognized command [%q]. Command must be one of [render|merge|pyramid|verify]", cmd)
	}
}

func mainCommandRender(args []string) {
	flags, err := tools.ParseFlagsForCommandRender(args)
	if err != nil {
		log.Fatal("Error parsing input parameters: ", err)
	}
	opts := prepareOptions(tools.CommandRender, flags.TilerFlags)
	opts.TilerRenderOptions = &tiler.TilerRenderOptions{
		SkipBin: *flags.SkipBin,
	}

	if msg, res := validateOptionsForCommandRender(opts); !res {
		log.Fatal("Error parsing input parameters: " + msg)
	}

	runTiler(opts, pkg.NewTiler)
}

func mainCommandMerge(args []string) {
	flags, err := tools.ParseFlagsForCommandMerge(args)
	if err != nil {
		log.Fatal("Error parsing input parameters: ", err)
	}
	opts := prepareOptions(tools.CommandMerge, flags.TilerFlags)
	opts.TilerMergeOptions = &tiler.TilerMergeOptions{
		AllowEmpty: *flags.AllowEmpty,
	}

	if msg, res := validateOptionsForCommandMerge(opts); !res {
		log.Fatal("Error parsing input parameters: " + msg)
	}

	runTiler(opts, pkg.NewTilerMerge)
}

func mainCommandPyramid(args []string) {
	flags, err := tools.ParseFlagsForCommandPyramid(args)
	if err != nil {
		log.Fatal("Error parsing input parameters: ", err)
	}
	opts := prepareOptions(tools.CommandPyramid, flags.TilerFlags)

	bbox, err := parseBBox(*flags.BBox)
	if err != nil {
		log.Fatal("Error parsing input parameters: ", err)
	}
	minZoom, err := toUint32("min-zoom", *flags.MinZoom)
	if err != nil {
		log.Fatal("Error parsing input parameters: ", err)
	}
	opts.TilerPyramidOptions = &tiler.TilerPyramidOptions{
		BBox:    bbox,
		MinZoom: minZoom,
		Force:   *flags.Force,
	}

	if msg, res := validateOptionsForCommandPyramid(opts); !res {
		log.Fatal("Error parsing input parameters: " + msg)
	}

	runTiler(opts, pkg.NewTilerPyramid)
}

func mainCommandVerify(args []string) {
	flags, err := tools.ParseFlagsForCommandVerify(args)
	if err != nil {
		log.Fatal("Error parsing input parameters: ", err)
	}
	opts := prepareOptions(tools.CommandVerify, flags.TilerFlags)
	opts.TilerVerifyOptions = &tiler.TilerVerifyOptions{
		Strict: *flags.Strict,
	}

	if msg, res := validateOptionsForCommandVerify(opts); !res {
		log.Fatal("Error parsing input parameters: " + msg)
	}

	runTiler(opts, pkg.NewTilerVerify)
}

// Handles help and logging flags and puts the shared args inside a TilerOptions struct
func prepareOptions(command string, tilerFlags tools.TilerFlags) *tiler.TilerOptions {
	if *tilerFlags.Help {
		printLogo()
		fmt.Println("Flags of command " + command + ": ")
		tilerFlags.Usage()
		os.Exit(0)
	}
	setLogging(*tilerFlags.Silent, *tilerFlags.LogTimestamp)
	glog.V(1).Infoln("flags", tools.FmtJSONString(tilerFlags))

	var tile [6]uint32
	names := [6]string{"zoom", "x", "y", "n", "tile-size", "clip-threshold"}
	for i, v := range []int{*tilerFlags.Zoom, *tilerFlags.X, *tilerFlags.Y, *tilerFlags.N, *tilerFlags.TileSize, *tilerFlags.ClipThreshold} {
		u, err := toUint32(names[i], v)
		if err != nil {
			log.Fatal("Error parsing input parameters: ", err)
		}
		tile[i] = u
	}

	mode := raster.Mode(strings.ToLower(strings.TrimSpace(*tilerFlags.Mode)))
	encoding := raster.DefaultEncoding(mode)
	if *tilerFlags.Encoding != "" {
		var err error
		if encoding, err = raster.ParseEncoding(strings.ToLower(*tilerFlags.Encoding)); err != nil {
			log.Fatal("Error parsing input parameters: ", err)
		}
	}

	return &tiler.TilerOptions{
		Input:            *tilerFlags.Input,
		Srid:             *tilerFlags.Srid,
		FolderProcessing: *tilerFlags.FolderProcessing,
		Recursive:        *tilerFlags.Recursive,
		Zoom:             tile[0],
		X:                tile[1],
		Y:                tile[2],
		N:                tile[3],
		TileSize:         tile[4],
		MaxDistance:      *tilerFlags.MaxDistance,
		MinDistance:      *tilerFlags.MinDistance,
		Buffer:           *tilerFlags.Buffer,
		Mode:             mode,
		Encoding:         encoding,
		Format:           tiler.ParseImageFormat(*tilerFlags.Format),
		DistanceScale:    *tilerFlags.DistanceScale,
		Containment:      tiler.ParseContainmentStrategy(*tilerFlags.Containment),
		GridResolution:   *tilerFlags.GridResolution,
		ClipThreshold:    tile[5],
		Supersampling:    *tilerFlags.Supersampling,
		MaxLeafSize:      *tilerFlags.MaxLeafSize,
		NumWorkers:       *tilerFlags.NumWorkers,
		FolderPNG:        *tilerFlags.FolderPNG,
		FolderBin:        *tilerFlags.FolderBin,
		MetricsFile:      *tilerFlags.MetricsFile,
		Command:          command,
	}
}

// Starts the tiler and writes the metrics textfile, if requested
func runTiler(opts *tiler.TilerOptions, newTiler func(tools.FileFinder, algorithm_manager.AlgorithmManager) tiler.ITiler) {
	defer timeTrack(time.Now(), opts.Command)

	algorithmManager := std_algorithm_manager.NewAlgorithmManager(opts)
	err := newTiler(tools.NewStandardFileFinder(), algorithmManager).RunTiler(opts)

	if metricsErr := algorithmManager.GetMetrics().WriteToTextfile(opts.MetricsFile); metricsErr != nil {
		glog.Errorln("cannot write metrics:", metricsErr)
	}

	if err != nil {
		glog.Flush()
		log.Fatal("Error while tiling: ", err)
	} else {
		tools.LogOutput("Conversion Completed")
	}
}

// Validates the input options provided to the command line tool checking
// that input files and folders exist
func validateOptionsForCommandRender(opts *tiler.TilerOptions) (string, bool) {
	if _, err := os.Stat(opts.Input); os.IsNotExist(err) {
		return "Input file/folder not found", false
	}
	if err := opts.ValidateRender(); err != nil {
		return err.Error(), false
	}
	return "", true
}

func validateOptionsForCommandMerge(opts *tiler.TilerOptions) (string, bool) {
	if _, err := os.Stat(opts.FolderBin); os.IsNotExist(err) {
		return "Binary tile folder not found", false
	}
	if opts.Zoom >= raster.MaxZoom {
		return fmt.Sprintf("merge zoom must be below %d", raster.MaxZoom), false
	}
	if err := opts.Validate(); err != nil {
		return err.Error(), false
	}
	return "", true
}

func validateOptionsForCommandPyramid(opts *tiler.TilerOptions) (string, bool) {
	if msg, res := validateOptionsForCommandRender(opts); !res {
		return msg, res
	}
	if opts.TilerPyramidOptions.MinZoom > opts.Zoom {
		return "min-zoom cannot be above zoom", false
	}
	return "", true
}

func validateOptionsForCommandVerify(opts *tiler.TilerOptions) (string, bool) {
	if _, err := os.Stat(opts.FolderBin); os.IsNotExist(err) {
		return "Binary tile folder not found", false
	}
	return "", true
}

func parseBBox(value string) ([4]float64, error) {
	var bbox [4]float64
	if strings.TrimSpace(value) == "" {
		return bbox, nil
	}
	parts := strings.Split(value, ",")
	if len(parts) != 4 {
		return bbox, fmt.Errorf("bbox must be minLon,minLat,maxLon,maxLat, got %q", value)
	}
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return bbox, fmt.Errorf("bbox: %w", err)
		}
		bbox[i] = v
	}
	if bbox[0] > bbox[2] || bbox[1] > bbox[3] {
		return bbox, fmt.Errorf("bbox %q has min above max", value)
	}
	return bbox, nil
}

func toUint32(name string, v int) (uint32, error) {
	if v < 0 || int64(v) > int64(^uint32(0)) {
		return 0, fmt.Errorf("%s must be between 0 and %d, got %d", name, ^uint32(0), v)
	}
	return uint32(v), nil
}

func setLogging(silent, timestamp bool) {
	if silent {
		tools.DisableLogger()
	} else if tools.IsLoggerEnabled() && !loggedLogo {
		printLogo()
		loggedLogo = true
	}
	if !timestamp {
		tools.DisableLoggerTimestamp()
	} else {
		tools.EnableLoggerTimestamp()
	}
}

var loggedLogo bool

func timeTrack(start time.Time, name string) {
	elapsed := time.Since(start)
	tools.LogOutput(fmt.Sprintf("%s took %s", name, elapsed))
}

func printLogo() {
	fmt.Println(strings.ReplaceAll(logo, "YYYY", strconv.Itoa(time.Now().Year())))
}

func showHelp() {
	printLogo()
	fmt.Println("***")
	fmt.Println("sdf_tiler renders GeoJSON polygons into pyramids of signed distance field raster tiles")
	printVersion()
	fmt.Println("***")
	fmt.Println("")
	fmt.Println("Usage: sdf_tiler [global flags] <render|merge|pyramid|verify> [command flags]")
	fmt.Println("Run a command with -help to list its flags.")
	fmt.Println("")
	fmt.Println("Global flags: ")
	flag.CommandLine.SetOutput(os.Stdout)
	flag.PrintDefaults()
}

func printVersion() {
	fmt.Println("v." + VERSION)
}
