package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/sunshineplan/croprotate"
	"github.com/sunshineplan/progressbar"
	"github.com/sunshineplan/utils/log"
	"github.com/vharitonsky/iniflags"
	"golang.org/x/sync/errgroup"
)

var (
	src     = flag.String("src", "", "")
	dst     = flag.String("dst", "output", "")
	force   = flag.Bool("force", false, "")
	quality = flag.Int("quality", 75, "")
	params  = flag.String("params", "", "")
	angle   = flag.Float64("angle", 0, "")
	cropX0  = flag.Float64("x0", 0, "")
	cropY0  = flag.Float64("y0", 0, "")
	cropX1  = flag.Float64("x1", 1, "")
	cropY1  = flag.Float64("y1", 1, "")
	hflip   = flag.Bool("hflip", false, "")
	vflip   = flag.Bool("vflip", false, "")
	aspect  = flag.String("aspect", "free", "")
	scale   = flag.Float64("scale", 1, "")
	tiles   = flag.Int("tiles", 0, "")
	worker  = flag.Int("worker", 5, "")
	debug   = flag.Bool("debug", false, "")

	autoOrientation = flag.Bool("auto-orientation", true, "")
	format          = croprotate.JPEG
)

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), "Usage of %s:\n", os.Args[0])
	fmt.Println(`
  --src
		source file or directory
  --dst
		destination directory (default: output)
  --force
		force overwrite (default: false)
  --format
		output format (jpg, jpeg, png, gif, tif, tiff, bmp and webp are supported, default: jpg)
  --quality
		set jpeg quality (range 1-100, default: 75)
  --params
		transform parameters json file, overrides the transform flags below
  --angle
		rotation angle in degrees
  --x0, y0, x1, y1
		normalized crop window corners (default: 0, 0, 1, 1)
  --hflip, vflip
		mirror horizontally or vertically
  --aspect
		crop aspect: free, image, golden, 3:2, 4:3, square, din or a width/height ratio (default: free)
  --scale
		output scale in (0,1] (default: 1)
  --tiles
		process the output in this many row strips
  --worker
		number of images converted at once (default: 5)
  --auto-orientation
		apply exif orientation when decoding (default: true)
  --debug
		log geometry and tiles`)
}

func main() {
	self, err := os.Executable()
	if err != nil {
		log.Error("Failed to get self path", "error", err)
		os.Exit(1)
	}

	flag.Usage = usage
	flag.TextVar(&format, "format", croprotate.JPEG, "")
	iniflags.SetConfigFile(filepath.Join(filepath.Dir(self), "config.ini"))
	iniflags.SetAllowMissingConfigFile(true)
	iniflags.Parse()

	if *debug {
		croprotate.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	if err := run(); err != nil {
		log.Error("Failed", "error", err)
		os.Exit(1)
	}
	log.Info("Done.")
}

func run() error {
	task := croprotate.NewOptions()
	if err := task.SetFormat(format.String(), croprotate.Quality(*quality)); err != nil {
		return err
	}
	p, err := transformParams()
	if err != nil {
		return err
	}
	task.SetParams(p).SetScale(*scale).SetTiles(*tiles)

	srcInfo, err := os.Stat(*src)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(*dst, 0755); err != nil {
		return err
	}

	switch mode := srcInfo.Mode(); {
	case mode.IsDir():
		images := loadImages(*src)
		total := len(images)
		log.Info("Found images", "total", total)

		pb := progressbar.New(total)
		if err := pb.Start(); err != nil {
			return err
		}
		// every image is tried, the first failure decides the exit status
		var g errgroup.Group
		g.SetLimit(max(1, *worker))
		for _, image := range images {
			g.Go(func() error {
				defer pb.Add(1)

				rel, err := filepath.Rel(*src, image)
				if err != nil {
					log.Error("Failed to get relative path", "image", image, "error", err)
					return err
				}
				output := task.ConvertExt(filepath.Join(*dst, rel))
				if err := convert(task, image, output, *force); err != nil {
					if errors.Is(err, errSkip) {
						log.Info("Skip", "output", output)
						return nil
					}
					return fmt.Errorf("convert %s: %w", image, err)
				}
				if *debug {
					log.Debug("Converted", "image", image, "output", output)
				}
				return nil
			})
		}
		err := g.Wait()
		pb.Wait()
		return err

	case mode.IsRegular():
		output := task.ConvertExt(filepath.Join(*dst, filepath.Base(*src)))
		if err := convert(task, *src, output, *force); err != nil {
			if errors.Is(err, errSkip) {
				return fmt.Errorf("destination already exist: %w", fs.ErrExist)
			}
			return err
		}
		return nil

	default:
		return errors.New("unknown source")
	}
}
