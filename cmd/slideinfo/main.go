// slideinfo is a command-line inspector for whole-slide images. It prints
// slide geometry and metadata, extracts regions and thumbnails, and can
// scan a directory of slides into a catalog database.
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/png"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/fatih/color"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/image/tiff"

	"slidekit/catalog"
	"slidekit/logging"
	"slidekit/slideruntime"
)

var (
	headerColor = color.New(color.FgCyan, color.Bold)
	keyColor    = color.New(color.FgGreen)
	warnColor   = color.New(color.FgYellow)
	errorColor  = color.New(color.FgRed, color.Bold)
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run carries the whole command; os.Exit lives only in main so deferred
// cleanup (the logger flush in particular) always runs.
func run(args []string) int {
	fs := flag.NewFlagSet("slideinfo", flag.ExitOnError)
	var (
		inputPath   = fs.String("input", "", "Slide file to inspect")
		configPath  = fs.String("config", "slideinfo.yaml", "Config file (YAML)")
		regionSpec  = fs.String("region", "", "Region to extract: x,y,level,WxH (level-0 coords, level-pixel size)")
		outPath     = fs.String("out", "", "Output image path for -region/-thumbnail (.png, .tif, .tiff)")
		thumbSize   = fs.Int("thumbnail", 0, "Write a thumbnail with this longest edge to -out (-1 uses the configured size)")
		scanDir     = fs.String("scan", "", "Scan a directory of slides into the catalog")
		catalogPath = fs.String("catalog", "", "Catalog database path (overrides config)")
		properties  = fs.Bool("properties", false, "Print all slide properties")
		associated  = fs.Bool("associated", false, "List associated images")
		showVersion = fs.Bool("version", false, "Print the native library version and exit")
	)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *showVersion {
		fmt.Printf("openslide %s\n", slideruntime.LibraryVersion())
		return 0
	}

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		errorColor.Fprintf(os.Stderr, "config: %v\n", err)
		return 1
	}
	if *catalogPath != "" {
		cfg.CatalogPath = *catalogPath
	}

	logger, err := logging.New(cfg.Development, cfg.LogFile)
	if err != nil {
		errorColor.Fprintf(os.Stderr, "logging: %v\n", err)
		return 1
	}
	defer logger.Sync()

	switch {
	case *scanDir != "":
		err = runScan(logger, cfg, *scanDir)
	case *inputPath != "":
		err = runInspect(logger, cfg, inspectOptions{
			path:       *inputPath,
			regionSpec: *regionSpec,
			outPath:    *outPath,
			thumbSize:  *thumbSize,
			properties: *properties,
			associated: *associated,
		})
	default:
		fs.Usage()
		return 2
	}
	if err != nil {
		logger.Error("command failed", zap.Error(err))
		errorColor.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}
	return 0
}

type inspectOptions struct {
	path       string
	regionSpec string
	outPath    string
	thumbSize  int
	properties bool
	associated bool
}

// runInspect opens a single slide, prints its geometry, and runs any
// requested extraction.
func runInspect(logger *logging.Logger, cfg *Config, opts inspectOptions) error {
	vendor, err := slideruntime.DetectVendor(opts.path)
	if err != nil {
		return err
	}

	slide, err := slideruntime.Open(opts.path)
	if err != nil {
		return err
	}
	defer slide.Close()

	logger.Info("opened slide",
		zap.String("path", opts.path),
		zap.String("vendor", vendor))

	if err := printSummary(slide, vendor); err != nil {
		return err
	}
	if opts.properties {
		if err := printProperties(slide); err != nil {
			return err
		}
	}
	if opts.associated {
		if err := printAssociated(slide); err != nil {
			return err
		}
	}

	if opts.regionSpec != "" {
		if opts.outPath == "" {
			return fmt.Errorf("-region requires -out")
		}
		return extractRegion(logger, slide, opts.regionSpec, opts.outPath)
	}
	if opts.thumbSize != 0 {
		if opts.outPath == "" {
			return fmt.Errorf("-thumbnail requires -out")
		}
		size := opts.thumbSize
		if size < 0 {
			size = cfg.ThumbnailSize
		}
		return extractThumbnail(logger, slide, size, opts.outPath)
	}
	return nil
}

func printSummary(slide *slideruntime.Slide, vendor string) error {
	width, height, err := slide.Dimensions()
	if err != nil {
		return err
	}
	levels, err := slide.LevelCount()
	if err != nil {
		return err
	}

	headerColor.Printf("%s\n", slide.Path())
	keyColor.Printf("  vendor:     ")
	fmt.Println(vendor)
	keyColor.Printf("  dimensions: ")
	fmt.Printf("%d x %d\n", width, height)
	keyColor.Printf("  levels:     ")
	fmt.Println(levels)

	for level := int32(0); level < levels; level++ {
		w, h, err := slide.LevelDimensions(level)
		if err != nil {
			return err
		}
		downsample, err := slide.LevelDownsample(level)
		if err != nil {
			return err
		}
		fmt.Printf("    level %d: %d x %d (downsample %.2f)\n", level, w, h, downsample)
	}
	return nil
}

func printProperties(slide *slideruntime.Slide) error {
	props, err := slide.Properties()
	if err != nil {
		return err
	}

	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)

	headerColor.Println("properties")
	for _, name := range names {
		keyColor.Printf("  %s: ", name)
		fmt.Println(props[name])
	}
	return nil
}

func printAssociated(slide *slideruntime.Slide) error {
	images, err := slide.AssociatedImages()
	if err != nil {
		return err
	}
	if len(images) == 0 {
		warnColor.Println("no associated images")
		return nil
	}

	names := make([]string, 0, len(images))
	for name := range images {
		names = append(names, name)
	}
	sort.Strings(names)

	headerColor.Println("associated images")
	for _, name := range names {
		img := images[name]
		fmt.Printf("  %s: %d x %d\n", name, img.Width, img.Height)
	}
	return nil
}

// extractRegion reads the region given as "x,y,level,WxH" and writes it to
// outPath.
func extractRegion(logger *logging.Logger, slide *slideruntime.Slide, spec, outPath string) error {
	region, err := parseRegion(spec)
	if err != nil {
		return err
	}

	start := time.Now()
	img, err := slide.ReadRegionImage(region)
	if err != nil {
		return err
	}
	logger.Info("region read",
		zap.String("region", region.String()),
		zap.Duration("elapsed", time.Since(start)))

	return writeImage(img, outPath)
}

// extractThumbnail renders a whole-slide thumbnail whose longest edge is
// size pixels. The level closest to the target scale is read, then resized
// with Lanczos resampling.
func extractThumbnail(logger *logging.Logger, slide *slideruntime.Slide, size int, outPath string) error {
	width, height, err := slide.Dimensions()
	if err != nil {
		return err
	}

	longest := width
	if height > longest {
		longest = height
	}
	factor := float64(longest) / float64(size)
	if factor < 1 {
		factor = 1
	}

	level, err := slide.BestLevelForDownsample(factor)
	if err != nil {
		return err
	}
	levelW, levelH, err := slide.LevelDimensions(level)
	if err != nil {
		return err
	}

	img, err := slide.ReadRegionImage(slideruntime.Region{
		Level: level, Width: levelW, Height: levelH,
	})
	if err != nil {
		return err
	}

	var thumb image.Image = img
	if levelW > int64(size) || levelH > int64(size) {
		thumb = imaging.Fit(img, size, size, imaging.Lanczos)
	}
	logger.Info("thumbnail rendered",
		zap.Int32("level", level),
		zap.Int("size", size))

	return writeImage(thumb, outPath)
}

// writeImage encodes img as PNG or TIFF depending on the output extension.
func writeImage(img image.Image, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		err = png.Encode(f, img)
	case ".tif", ".tiff":
		err = tiff.Encode(f, img, &tiff.Options{Compression: tiff.Deflate})
	default:
		return fmt.Errorf("unsupported output format %q (use .png, .tif, .tiff)", filepath.Ext(path))
	}
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

// runScan walks dir for slide files and records each one in the catalog.
// Files OpenSlide cannot open are logged and skipped rather than aborting
// the scan.
func runScan(logger *logging.Logger, cfg *Config, dir string) error {
	cat, err := catalog.Open(cfg.CatalogPath)
	if err != nil {
		return err
	}
	defer cat.Close()

	scanID := uuid.NewString()
	ctx := context.Background()
	logger.Info("scan started",
		zap.String("dir", dir),
		zap.String("scan_id", scanID),
		zap.String("catalog", cfg.CatalogPath))

	var recorded, skipped int
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !cfg.matchesExtension(path) {
			return nil
		}

		rec, err := describeSlide(path, scanID)
		if err != nil {
			skipped++
			logger.Warn("skipping file", zap.String("path", path), zap.Error(err))
			warnColor.Printf("skip %s: %v\n", path, err)
			return nil
		}

		if _, err := cat.Record(ctx, *rec); err != nil {
			return err
		}
		recorded++
		fmt.Printf("%s (%s, %dx%d, %d levels)\n",
			path, rec.Vendor, rec.Width, rec.Height, rec.LevelCount)
		return nil
	})
	if err != nil {
		return fmt.Errorf("scan %s: %w", dir, err)
	}

	logger.Info("scan finished",
		zap.Int("recorded", recorded),
		zap.Int("skipped", skipped))
	headerColor.Printf("recorded %d slide(s), skipped %d\n", recorded, skipped)
	return nil
}

// describeSlide opens one slide just long enough to capture its catalog
// record.
func describeSlide(path, scanID string) (*catalog.SlideRecord, error) {
	vendor, err := slideruntime.DetectVendor(path)
	if err != nil {
		return nil, err
	}

	slide, err := slideruntime.Open(path)
	if err != nil {
		return nil, err
	}
	defer slide.Close()

	width, height, err := slide.Dimensions()
	if err != nil {
		return nil, err
	}
	levels, err := slide.LevelCount()
	if err != nil {
		return nil, err
	}
	props, err := slide.Properties()
	if err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	return &catalog.SlideRecord{
		ScanID:     scanID,
		Path:       abs,
		Vendor:     vendor,
		Width:      width,
		Height:     height,
		LevelCount: levels,
		MPPX:       parseMPP(props[slideruntime.PropMPPX]),
		MPPY:       parseMPP(props[slideruntime.PropMPPY]),
	}, nil
}

// parseMPP parses a microns-per-pixel property value, returning 0 when the
// property is absent or malformed.
func parseMPP(value string) float64 {
	if value == "" {
		return 0
	}
	var mpp float64
	if _, err := fmt.Sscanf(value, "%g", &mpp); err != nil {
		return 0
	}
	return mpp
}
