package galleryservice

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/Leopold1975/familysite/internal/familysite/domain/models"
	"github.com/Leopold1975/familysite/internal/pkg/config"
	"github.com/Leopold1975/familysite/internal/pkg/fsutil"
	"github.com/Leopold1975/familysite/pkg/logger"
)

var ErrNotFound = errors.New("not found")

// Slugs never contain "__" or end in "_", so ThumbName can't produce the
// same name for two (slug, file) pairs.
var slugRe = regexp.MustCompile(`^[A-Za-z0-9](?:[A-Za-z0-9-]|_[A-Za-z0-9-])*$`)

var imageExts = map[string]struct{}{ //nolint:gochecknoglobals
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".gif":  {},
	".webp": {},
}

type Repository interface {
	ListPublic(context.Context) ([]models.Gallery, error)
}

type GalleryService struct {
	galleryRepo Repository
	thumbs      *Thumbnailer
	root        string
	thumbsDir   string
	lg          logger.Logger
}

func New(galleryRepo Repository, cfg config.Gallery, lg logger.Logger) (*GalleryService, error) {
	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("abs gallery root error: %w", err)
	}

	thumbsDir, err := filepath.Abs(cfg.ThumbsDir)
	if err != nil {
		return nil, fmt.Errorf("abs thumbs dir error: %w", err)
	}

	th, err := NewThumbnailer(thumbsDir, cfg.ThumbSize)
	if err != nil {
		return nil, err
	}

	return &GalleryService{
		galleryRepo: galleryRepo,
		thumbs:      th,
		root:        root,
		thumbsDir:   thumbsDir,
		lg:          lg,
	}, nil
}

// ListGalleries returns the public galleries; a failing query yields none.
func (gs *GalleryService) ListGalleries(ctx context.Context) []models.Gallery {
	galleries, err := gs.galleryRepo.ListPublic(ctx)
	if err != nil {
		gs.lg.Errorf("list galleries error: %s", err.Error())

		return nil
	}

	return galleries
}

// OpenGallery resolves slug to its folder under the gallery root.
func (gs *GalleryService) OpenGallery(slug string) (string, error) {
	if !slugRe.MatchString(slug) {
		return "", ErrNotFound
	}

	dir, err := fsutil.ResolveWithinRoot(gs.root, slug)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrNotFound, err)
	}

	if dir == gs.thumbsDir {
		return "", ErrNotFound
	}

	st, err := os.Stat(dir)
	if err != nil || !st.IsDir() {
		return "", ErrNotFound
	}

	return dir, nil
}

// RenderGallery lists the images of a gallery sorted by name, creating
// missing thumbnails. When a thumbnail cannot be made the original is used.
func (gs *GalleryService) RenderGallery(ctx context.Context, slug string) ([]models.Image, error) {
	dir, err := gs.OpenGallery(slug)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read gallery dir error: %w", err)
	}

	images := make([]models.Image, 0, len(entries))

	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("context error: %w", err)
		}

		name := e.Name()
		if !e.Type().IsRegular() || !isImage(name) {
			continue
		}

		// names that would not survive CleanFilename can't be served
		if clean, err := fsutil.CleanFilename(name); err != nil || clean != name {
			gs.lg.Warnf("skipping gallery file with unsafe name %q in %s", name, slug)

			continue
		}

		img := models.Image{
			File: name,
			URL:  ImageURL(slug, name),
		}

		thumb := ThumbName(slug, name)

		created, err := gs.thumbs.Ensure(filepath.Join(dir, name), thumb)
		if err != nil {
			gs.lg.Errorf("thumbnail for %s/%s failed: %s", slug, name, err.Error())

			img.ThumbURL = img.URL
		} else {
			if created {
				gs.lg.Debugf("created thumbnail %s", thumb)
			}

			img.ThumbURL = ThumbURL(thumb)
		}

		images = append(images, img)
	}

	return images, nil
}

// OriginalPath resolves a requested image of a gallery to a file on disk.
func (gs *GalleryService) OriginalPath(slug, filename string) (string, error) {
	dir, err := gs.OpenGallery(slug)
	if err != nil {
		return "", err
	}

	return resolveFile(dir, filename)
}

// ThumbnailPath resolves a requested thumbnail to a file on disk.
func (gs *GalleryService) ThumbnailPath(filename string) (string, error) {
	return resolveFile(gs.thumbsDir, filename)
}

func resolveFile(dir, filename string) (string, error) {
	clean, err := fsutil.CleanFilename(filename)
	if err != nil {
		return "", ErrNotFound
	}

	p, err := fsutil.ResolveWithinRoot(dir, clean)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrNotFound, err)
	}

	st, err := os.Stat(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", ErrNotFound
		}

		return "", fmt.Errorf("stat error: %w", err)
	}

	if !st.Mode().IsRegular() {
		return "", ErrNotFound
	}

	return p, nil
}

func isImage(name string) bool {
	_, ok := imageExts[strings.ToLower(filepath.Ext(name))]

	return ok
}

func ImageURL(slug, file string) string {
	return "/gallery/" + url.PathEscape(slug) + "/image/" + url.PathEscape(file)
}

func ThumbURL(thumb string) string {
	return "/gallery/thumbs/" + url.PathEscape(thumb)
}
