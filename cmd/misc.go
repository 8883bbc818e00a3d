package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/sunshineplan/croprotate"
	"github.com/sunshineplan/utils/log"
)

var supported = regexp.MustCompile(`(?i)\.(jpe?g|png|gif|tiff?|bmp|webp|tga)$`)

var presets = map[string]croprotate.AspectPreset{
	"free":   croprotate.AspectFree,
	"image":  croprotate.AspectImage,
	"golden": croprotate.AspectGolden,
	"3:2":    croprotate.Aspect3x2,
	"4:3":    croprotate.Aspect4x3,
	"square": croprotate.AspectSquare,
	"din":    croprotate.AspectDIN,
}

func transformParams() (croprotate.Params, error) {
	if *params != "" {
		return croprotate.LoadParams(*params)
	}
	p := croprotate.Params{
		Angle:  *angle,
		CX:     *cropX0,
		CY:     *cropY0,
		CW:     *cropX1,
		CH:     *cropY1,
		Aspect: -1,
	}
	p.SetFlip(*hflip, *vflip)
	return p, p.Validate()
}

// parseAspect resolves the aspect flag for an image of the given size.
func parseAspect(s string, width, height int) (float64, error) {
	if preset, ok := presets[strings.ToLower(s)]; ok {
		return preset.Ratio(width, height), nil
	}
	if w, h, ok := strings.Cut(s, ":"); ok {
		fw, err := strconv.ParseFloat(w, 64)
		if err != nil {
			return 0, err
		}
		fh, err := strconv.ParseFloat(h, 64)
		if err != nil {
			return 0, err
		}
		if fh == 0 {
			return 0, fmt.Errorf("invalid aspect %q", s)
		}
		return fw / fh, nil
	}
	return strconv.ParseFloat(s, 64)
}

func loadImages(root string) (imgs []string) {
	filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			log.Error("Failed to walk", "path", path, "error", err)
			return nil
		}
		if !d.IsDir() && supported.MatchString(d.Name()) {
			imgs = append(imgs, path)
		}
		return nil
	})
	return
}

var errSkip = errors.New("skip")

func convert(task croprotate.Options, image, output string, force bool) (err error) {
	if _, err = os.Stat(output); err == nil {
		if !force {
			return errSkip
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		log.Error("Failed to get FileInfo", "name", output, "error", err)
		return
	}
	path := filepath.Dir(output)
	if err = os.MkdirAll(path, 0755); err != nil {
		log.Error("Failed to create directory", "path", path, "error", err)
		return
	}
	img, err := croprotate.Open(image, croprotate.AutoOrientation(*autoOrientation))
	if err != nil {
		log.Error("Failed to open image", "image", image, "error", err)
		return
	}
	if task.Transform != nil && *params == "" {
		size := img.Bounds().Size()
		var a float64
		if a, err = parseAspect(*aspect, size.X, size.Y); err != nil {
			log.Error("Failed to parse aspect", "aspect", *aspect, "error", err)
			return
		}
		t := *task.Transform
		t.Params.Aspect = a
		task.Transform = &t
	}
	f, err := os.CreateTemp(path, "*.tmp")
	if err != nil {
		log.Error("Failed to create temporary file", "path", path, "error", err)
		return
	}
	defer os.Remove(f.Name())
	if err = task.Convert(f, img); err != nil {
		f.Close()
		log.Error("Failed to convert image", "image", image, "error", err)
		return
	}
	if err = f.Close(); err != nil {
		log.Error("Failed to close file", "name", f.Name(), "error", err)
		return
	}
	if err = os.Rename(f.Name(), output); err != nil {
		log.Error("Failed to move file", "from", f.Name(), "to", output, "error", err)
	}
	return
}
