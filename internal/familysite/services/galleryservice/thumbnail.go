package galleryservice

import (
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // webp decoder
	"golang.org/x/sync/singleflight"
)

const jpegQuality = 85

// Thumbnailer writes bounded-size copies of images into a cache directory.
// A thumbnail is generated once and then reused regardless of later changes
// to its source.
type Thumbnailer struct {
	dir   string
	size  int
	group singleflight.Group
}

func NewThumbnailer(dir string, size int) (*Thumbnailer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil { //nolint:gomnd
		return nil, fmt.Errorf("create thumbs dir error: %w", err)
	}

	return &Thumbnailer{
		dir:  dir,
		size: size,
	}, nil
}

// webpThumbSuffix is not an image extension, so no gallery file ends in it.
const webpThumbSuffix = ".thumb"

// ThumbName is the cache file name for file in gallery slug. Sources without
// an encoder (webp) are stored as PNG under webpThumbSuffix.
func ThumbName(slug, file string) string {
	name := slug + "__" + file
	if strings.EqualFold(filepath.Ext(file), ".webp") {
		name += webpThumbSuffix
	}

	return name
}

// Ensure makes sure the thumbnail called name exists, generating it from src
// if needed. Concurrent calls for the same name share one generation.
func (t *Thumbnailer) Ensure(src, name string) (bool, error) {
	dst := filepath.Join(t.dir, name)

	exists, err := fileExists(dst)
	if err != nil {
		return false, err
	}

	if exists {
		return false, nil
	}

	_, err, _ = t.group.Do(name, func() (interface{}, error) {
		// another caller may have finished between the check and Do
		if ok, _ := fileExists(dst); ok {
			return nil, nil
		}

		return nil, t.generate(src, dst)
	})
	if err != nil {
		return false, err
	}

	return true, nil
}

func (t *Thumbnailer) generate(src, dst string) (err error) { //nolint:nonamedreturns
	f, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source error: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return fmt.Errorf("decode error: %w", err)
	}

	thumb := scale(img, t.size)

	tmp, err := os.CreateTemp(t.dir, ".thumb-*")
	if err != nil {
		return fmt.Errorf("create temp error: %w", err)
	}

	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err = encode(tmp, thumb, dst); err != nil {
		return err
	}

	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temp error: %w", err)
	}

	if err = os.Rename(tmp.Name(), dst); err != nil {
		return fmt.Errorf("rename error: %w", err)
	}

	return nil
}

// scale shrinks img so that its longest side is at most size. Smaller images
// are returned unchanged.
func scale(img image.Image, size int) image.Image {
	b := img.Bounds()
	w, h := fit(b.Dx(), b.Dy(), size)

	if w == b.Dx() && h == b.Dy() {
		return img
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)

	return dst
}

func fit(w, h, size int) (int, int) {
	if w <= size && h <= size {
		return w, h
	}

	if w >= h {
		return size, max(1, int(math.Round(float64(h)*float64(size)/float64(w))))
	}

	return max(1, int(math.Round(float64(w)*float64(size)/float64(h)))), size
}

func encode(f *os.File, img image.Image, dst string) error {
	var err error

	switch strings.ToLower(filepath.Ext(dst)) {
	case ".jpg", ".jpeg":
		err = jpeg.Encode(f, img, &jpeg.Options{Quality: jpegQuality})
	case ".gif":
		err = gif.Encode(f, img, nil)
	default:
		err = png.Encode(f, img)
	}

	if err != nil {
		return fmt.Errorf("encode error: %w", err)
	}

	return nil
}

func fileExists(p string) (bool, error) {
	_, err := os.Stat(p)
	if err == nil {
		return true, nil
	}

	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}

	return false, fmt.Errorf("stat error: %w", err)
}
