package tools

import (
	"flag"
	"os"

	"github.com/golang/glog"
)

const (
	CommandRender  = "render"
	CommandMerge   = "merge"
	CommandPyramid = "pyramid"
	CommandVerify  = "verify"
)

const (
	EnvFolderGeo = "SDF_FOLDER_GEO"
	EnvFolderPNG = "SDF_FOLDER_PNG"
	EnvFolderBin = "SDF_FOLDER_BIN"
)

type FlagsGlobal struct {
	Help         *bool `json:"help"`
	Version      *bool `json:"version"`
	Silent       *bool `json:"silent"`
	LogTimestamp *bool `json:"timestamp"`
}

type TilerFlags struct {
	Input            *string  `json:"input"`
	Srid             *int     `json:"srid"`
	FolderProcessing *bool    `json:"folder"`
	Recursive        *bool    `json:"recursive"`
	Zoom             *int     `json:"zoom"`
	X                *int     `json:"x"`
	Y                *int     `json:"y"`
	N                *int     `json:"n"`
	TileSize         *int     `json:"tile_size"`
	MaxDistance      *float64 `json:"max_distance"`
	MinDistance      *float64 `json:"min_distance"`
	Buffer           *float64 `json:"buffer"`
	Mode             *string  `json:"mode"`
	Encoding         *string  `json:"encoding"`
	Format           *string  `json:"format"`
	DistanceScale    *float64 `json:"distance_scale"`
	Containment      *string  `json:"containment"`
	GridResolution   *int     `json:"grid_resolution"`
	ClipThreshold    *int     `json:"clip_threshold"`
	Supersampling    *int     `json:"supersampling"`
	MaxLeafSize      *int     `json:"leaf_size"`
	NumWorkers       *int     `json:"workers"`
	FolderPNG        *string  `json:"folder_png"`
	FolderBin        *string  `json:"folder_bin"`
	MetricsFile      *string  `json:"metrics_file"`
	Config           *string  `json:"config"`
	Silent           *bool    `json:"silent"`
	LogTimestamp     *bool    `json:"timestamp"`
	Help             *bool    `json:"help"`

	// Prints the flags of the command to stdout
	Usage func() `json:"-"`
}

type FlagsForCommandRender struct {
	TilerFlags
	SkipBin *bool `json:"skip_bin"`
}

type FlagsForCommandMerge struct {
	TilerFlags
	AllowEmpty *bool `json:"allow_empty"`
}

type FlagsForCommandPyramid struct {
	TilerFlags
	BBox    *string `json:"bbox"`
	MinZoom *int    `json:"min_zoom"`
	Force   *bool   `json:"force"`
}

type FlagsForCommandVerify struct {
	TilerFlags
	Strict *bool `json:"strict"`
}

func ParseFlagsGlobal() FlagsGlobal {
	help := defineBoolFlag("help", "h", false, "Displays this help.")
	version := defineBoolFlag("version", "", false, "Displays the version of sdf_tiler.")
	silent := defineBoolFlag("silent", "s", false, "Use to suppress all the non-error messages.")
	logTimestamp := defineBoolFlag("timestamp", "t", false, "Adds timestamp to log messages.")

	flag.Parse()

	return FlagsGlobal{
		Help:         help,
		Version:      version,
		Silent:       silent,
		LogTimestamp: logTimestamp,
	}
}

func ParseFlagsForCommandRender(args []string) (FlagsForCommandRender, error) {
	glog.V(1).Infoln("render args", FmtJSONString(args))

	flagCommand := flag.NewFlagSet("command-render", flag.ExitOnError)
	tilerFlags := defineTilerFlags(flagCommand)
	skipBin := defineBoolFlagCommand(flagCommand, "skip-bin", "", false, "Do not write the binary thumb used by later merges.")

	flagCommand.Parse(args)
	if err := ApplyConfigFile(flagCommand, *tilerFlags.Config); err != nil {
		return FlagsForCommandRender{}, err
	}

	return FlagsForCommandRender{
		TilerFlags: tilerFlags,
		SkipBin:    skipBin,
	}, nil
}

func ParseFlagsForCommandMerge(args []string) (FlagsForCommandMerge, error) {
	glog.V(1).Infoln("merge args", FmtJSONString(args))

	flagCommand := flag.NewFlagSet("command-merge", flag.ExitOnError)
	tilerFlags := defineTilerFlags(flagCommand)
	allowEmpty := defineBoolFlagCommand(flagCommand, "allow-empty", "", false, "Writes the parent tile even if none of its four children exist.")

	flagCommand.Parse(args)
	if err := ApplyConfigFile(flagCommand, *tilerFlags.Config); err != nil {
		return FlagsForCommandMerge{}, err
	}

	return FlagsForCommandMerge{
		TilerFlags: tilerFlags,
		AllowEmpty: allowEmpty,
	}, nil
}

func ParseFlagsForCommandPyramid(args []string) (FlagsForCommandPyramid, error) {
	glog.V(1).Infoln("pyramid args", FmtJSONString(args))

	flagCommand := flag.NewFlagSet("command-pyramid", flag.ExitOnError)
	tilerFlags := defineTilerFlags(flagCommand)
	bbox := defineStringFlagCommand(flagCommand, "bbox", "", "", "Area to render as minLon,minLat,maxLon,maxLat. Defaults to the bounds of the input geometry.")
	minZoom := defineIntFlagCommand(flagCommand, "min-zoom", "", 0, "Lowest zoom level produced by merging.")
	force := defineBoolFlagCommand(flagCommand, "force", "", false, "Rebuilds tiles that already exist in the output folders.")

	flagCommand.Parse(args)
	if err := ApplyConfigFile(flagCommand, *tilerFlags.Config); err != nil {
		return FlagsForCommandPyramid{}, err
	}

	return FlagsForCommandPyramid{
		TilerFlags: tilerFlags,
		BBox:       bbox,
		MinZoom:    minZoom,
		Force:      force,
	}, nil
}

func ParseFlagsForCommandVerify(args []string) (FlagsForCommandVerify, error) {
	glog.V(1).Infoln("verify args", FmtJSONString(args))

	flagCommand := flag.NewFlagSet("command-verify", flag.ExitOnError)
	tilerFlags := defineTilerFlags(flagCommand)
	strict := defineBoolFlagCommand(flagCommand, "strict", "", false, "Stops at the first invalid tile.")

	flagCommand.Parse(args)
	if err := ApplyConfigFile(flagCommand, *tilerFlags.Config); err != nil {
		return FlagsForCommandVerify{}, err
	}

	return FlagsForCommandVerify{
		TilerFlags: tilerFlags,
		Strict:     strict,
	}, nil
}

// Registers the flags shared by every command
func defineTilerFlags(flagCommand *flag.FlagSet) TilerFlags {
	return TilerFlags{
		Usage: func() {
			flagCommand.SetOutput(os.Stdout)
			flagCommand.PrintDefaults()
		},
		Input:            defineStringFlagCommand(flagCommand, "input", "i", os.Getenv(EnvFolderGeo), "Specifies the input GeoJSON file, or folder if -folder is set."),
		Srid:             defineIntFlagCommand(flagCommand, "srid", "e", 4326, "EPSG srid code of input coordinates."),
		FolderProcessing: defineBoolFlagCommand(flagCommand, "folder", "f", false, "Enables processing of all GeoJSON files from input folder. Input must be a folder if specified."),
		Recursive:        defineBoolFlagCommand(flagCommand, "recursive", "r", false, "Enables recursive lookup for all GeoJSON files inside the subfolders."),
		Zoom:             defineIntFlagCommand(flagCommand, "zoom", "z", 11, "Zoom level of the rendered tile, or of the merged parent."),
		X:                defineIntFlagCommand(flagCommand, "x", "", 1069, "Tile column."),
		Y:                defineIntFlagCommand(flagCommand, "y", "", 697, "Tile row."),
		N:                defineIntFlagCommand(flagCommand, "n", "", 8, "Subtiles per side rendered in a single pass. Must be a power of two."),
		TileSize:         defineIntFlagCommand(flagCommand, "tile-size", "", 256, "Pixels per side of exported tiles."),
		MaxDistance:      defineFloat64FlagCommand(flagCommand, "max-distance", "d", 3000, "Distance in meters at which values are clamped."),
		MinDistance:      defineFloat64FlagCommand(flagCommand, "min-distance", "", -3000, "Lower bound of the normalization in field mode."),
		Buffer:           defineFloat64FlagCommand(flagCommand, "buffer", "b", 0, "Buffer radius in meters subtracted from every distance."),
		Mode:             defineStringFlagCommand(flagCommand, "mode", "m", "sdf", "Raster content, can be 'sdf' (signed distance) or 'field' (normalized distance and occupancy)."),
		Encoding:         defineStringFlagCommand(flagCommand, "encoding", "", "", "Pixel encoding, can be 'packed', 'gray16' or 'rg'. Defaults to 'packed' in sdf mode and 'rg' in field mode."),
		Format:           defineStringFlagCommand(flagCommand, "format", "", "png", "Image format of exported tiles, can be 'png' or 'tiff'."),
		DistanceScale:    defineFloat64FlagCommand(flagCommand, "distance-scale", "", 10, "Packed units per meter."),
		Containment:      defineStringFlagCommand(flagCommand, "containment", "c", "CLIP", "Containment strategy, can be 'CLIP' or 'GRID'."),
		GridResolution:   defineIntFlagCommand(flagCommand, "grid-resolution", "g", 256, "Cells per side of the lookup grid used by the GRID strategy."),
		ClipThreshold:    defineIntFlagCommand(flagCommand, "clip-threshold", "", 128, "Smallest region width in pixels that still receives clipped geometry."),
		Supersampling:    defineIntFlagCommand(flagCommand, "supersampling", "", 4, "Occupancy samples per pixel axis in field mode."),
		MaxLeafSize:      defineIntFlagCommand(flagCommand, "leaf-size", "l", 8, "Max number of segments per segment tree leaf."),
		NumWorkers:       defineIntFlagCommand(flagCommand, "workers", "w", 0, "Concurrent fill workers. Defaults to the number of CPUs."),
		FolderPNG:        defineStringFlagCommand(flagCommand, "folder-png", "o", envOrDefault(EnvFolderPNG, "png"), "Root folder of exported images."),
		FolderBin:        defineStringFlagCommand(flagCommand, "folder-bin", "", envOrDefault(EnvFolderBin, "bin"), "Root folder of binary tiles used by merges."),
		MetricsFile:      defineStringFlagCommand(flagCommand, "metrics-file", "", "", "Writes prometheus metrics in text format to this file at the end of the run."),
		Config:           defineStringFlagCommand(flagCommand, "config", "", "", "YAML or JSON job file. Flags set on the command line take precedence."),
		Silent:           defineBoolFlagCommand(flagCommand, "silent", "s", false, "Use to suppress all the non-error messages."),
		LogTimestamp:     defineBoolFlagCommand(flagCommand, "timestamp", "t", false, "Adds timestamp to log messages."),
		Help:             defineBoolFlagCommand(flagCommand, "help", "h", false, "Displays this help."),
	}
}

func envOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func defineBoolFlag(name string, shortHand string, defaultValue bool, usage string) *bool {
	return defineBoolFlagCommand(flag.CommandLine, name, shortHand, defaultValue, usage)
}

func defineStringFlagCommand(flagCommand *flag.FlagSet, name string, shortHand string, defaultValue string, usage string) *string {
	var output string
	flagCommand.StringVar(&output, name, defaultValue, usage)
	if shortHand != name && shortHand != "" {
		flagCommand.StringVar(&output, shortHand, defaultValue, usage+" (shorthand for "+name+")")
	}

	return &output
}

func defineIntFlagCommand(flagCommand *flag.FlagSet, name string, shortHand string, defaultValue int, usage string) *int {
	var output int
	flagCommand.IntVar(&output, name, defaultValue, usage)
	if shortHand != name && shortHand != "" {
		flagCommand.IntVar(&output, shortHand, defaultValue, usage+" (shorthand for "+name+")")
	}

	return &output
}

func defineFloat64FlagCommand(flagCommand *flag.FlagSet, name string, shortHand string, defaultValue float64, usage string) *float64 {
	var output float64
	flagCommand.Float64Var(&output, name, defaultValue, usage)
	if shortHand != name && shortHand != "" {
		flagCommand.Float64Var(&output, shortHand, defaultValue, usage+" (shorthand for "+name+")")
	}
	return &output
}

func defineBoolFlagCommand(flagCommand *flag.FlagSet, name string, shortHand string, defaultValue bool, usage string) *bool {
	var output bool
	flagCommand.BoolVar(&output, name, defaultValue, usage)
	if shortHand != name && shortHand != "" {
		flagCommand.BoolVar(&output, shortHand, defaultValue, usage+" (shorthand for "+name+")")
	}
	return &output
}
