package galleryservice

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"

	"github.com/Leopold1975/familysite/internal/familysite/domain/models"
	"github.com/Leopold1975/familysite/internal/pkg/config"
	"github.com/Leopold1975/familysite/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRepo struct {
	galleries []models.Gallery
	err       error
}

func (r stubRepo) ListPublic(context.Context) ([]models.Gallery, error) {
	return r.galleries, r.err
}

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, h/2, color.RGBA{R: 200, A: 255})
	}

	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
}

func writeJPEG(t *testing.T, path string, w, h int) {
	t.Helper()

	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, jpeg.Encode(f, image.NewGray(image.Rect(0, 0, w, h)), nil))
	require.NoError(t, f.Close())
}

func decodeSize(t *testing.T, path string) (int, int) {
	t.Helper()

	f, err := os.Open(path)
	require.NoError(t, err)

	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	require.NoError(t, err)

	return cfg.Width, cfg.Height
}

// newGallery lays out <root>/summer with a few files and returns the service.
func newGallery(t *testing.T) (*GalleryService, string) {
	t.Helper()

	root := t.TempDir()
	summer := filepath.Join(root, "summer")
	require.NoError(t, os.Mkdir(summer, 0o755))

	writePNG(t, filepath.Join(summer, "beach.png"), 600, 300)
	writeJPEG(t, filepath.Join(summer, "dog.JPG"), 100, 50)
	require.NoError(t, os.WriteFile(filepath.Join(summer, "corrupt.jpg"), []byte("not an image"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(summer, "notes.txt"), []byte("hello"), 0o600))
	require.NoError(t, os.Mkdir(filepath.Join(summer, "raw.png"), 0o755))

	gs, err := New(stubRepo{}, config.Gallery{
		Root:      root,
		ThumbsDir: filepath.Join(root, "thumbs"),
		ThumbSize: 240,
	}, logger.NewNop())
	require.NoError(t, err)

	return gs, root
}

func TestRenderGallery(t *testing.T) {
	gs, root := newGallery(t)

	images, err := gs.RenderGallery(context.Background(), "summer")
	require.NoError(t, err)
	require.Len(t, images, 3)

	assert.Equal(t, "beach.png", images[0].File)
	assert.Equal(t, "corrupt.jpg", images[1].File)
	assert.Equal(t, "dog.JPG", images[2].File)

	assert.Equal(t, "/gallery/summer/image/beach.png", images[0].URL)
	assert.Equal(t, "/gallery/thumbs/summer__beach.png", images[0].ThumbURL)

	// failed thumbnail falls back to the original
	assert.Equal(t, images[1].URL, images[1].ThumbURL)

	w, h := decodeSize(t, filepath.Join(root, "thumbs", "summer__beach.png"))
	assert.Equal(t, 240, w)
	assert.Equal(t, 120, h)

	// never upscaled
	w, h = decodeSize(t, filepath.Join(root, "thumbs", "summer__dog.JPG"))
	assert.Equal(t, 100, w)
	assert.Equal(t, 50, h)

	_, err = os.Stat(filepath.Join(root, "thumbs", "summer__corrupt.jpg"))
	assert.True(t, os.IsNotExist(err))
}

func TestThumbnailIsReused(t *testing.T) {
	gs, root := newGallery(t)
	ctx := context.Background()
	thumb := filepath.Join(root, "thumbs", "summer__beach.png")

	_, err := gs.RenderGallery(ctx, "summer")
	require.NoError(t, err)

	first, err := os.Stat(thumb)
	require.NoError(t, err)

	// the source changes, the cached thumbnail does not
	writePNG(t, filepath.Join(root, "summer", "beach.png"), 50, 50)
	require.NoError(t, os.WriteFile(filepath.Join(root, "summer", "notes.txt"), []byte("changed"), 0o600))

	_, err = gs.RenderGallery(ctx, "summer")
	require.NoError(t, err)

	second, err := os.Stat(thumb)
	require.NoError(t, err)
	assert.Equal(t, first.ModTime(), second.ModTime())

	w, h := decodeSize(t, thumb)
	assert.Equal(t, 240, w)
	assert.Equal(t, 120, h)
}

func TestEnsureConcurrent(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "big.png")
	writePNG(t, src, 800, 400)

	th, err := NewThumbnailer(filepath.Join(dir, "thumbs"), 240)
	require.NoError(t, err)

	var wg sync.WaitGroup

	errs := make(chan error, 8)

	for i := 0; i < 8; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			_, err := th.Ensure(src, "x__big.png")
			errs <- err
		}()
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	entries, err := os.ReadDir(filepath.Join(dir, "thumbs"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "x__big.png", entries[0].Name())

	created, err := th.Ensure(src, "x__big.png")
	require.NoError(t, err)
	require.False(t, created)
}

func TestOpenGalleryRejectsTraversal(t *testing.T) {
	gs, root := newGallery(t)

	for _, slug := range []string{"..", "../summer", "summer/..", "summer/../..", "/etc", "", ".", "thumbs", "missing"} {
		_, err := gs.OpenGallery(slug)
		require.ErrorIs(t, err, ErrNotFound, "slug %q", slug)
	}

	dir, err := gs.OpenGallery("summer")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(root, "summer"), dir)
}

func TestOpenGalleryRejectsSymlinkEscape(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlink behavior varies on windows")
	}

	gs, root := newGallery(t)

	if err := os.Symlink(t.TempDir(), filepath.Join(root, "elsewhere")); err != nil {
		t.Skipf("symlink not supported: %v", err)
	}

	_, err := gs.OpenGallery("elsewhere")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestOriginalAndThumbnailPath(t *testing.T) {
	gs, root := newGallery(t)

	p, err := gs.OriginalPath("summer", "beach.png")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(root, "summer", "beach.png"), p)

	for _, name := range []string{"../../etc/passwd", "../summer/beach.png", "raw.png", "nope.png", ""} {
		_, err := gs.OriginalPath("summer", name)
		require.ErrorIs(t, err, ErrNotFound, name)
	}

	_, err = gs.OriginalPath("..", "beach.png")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = gs.RenderGallery(context.Background(), "summer")
	require.NoError(t, err)

	p, err = gs.ThumbnailPath("summer__beach.png")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(root, "thumbs", "summer__beach.png"), p)

	_, err = gs.ThumbnailPath("../summer/beach.png")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestListGalleries(t *testing.T) {
	want := []models.Gallery{{ID: 1, Title: "Summer", Slug: "summer", Folder: "summer"}}

	gs, err := New(stubRepo{galleries: want}, config.Gallery{Root: t.TempDir(), ThumbsDir: t.TempDir(), ThumbSize: 240}, logger.NewNop())
	require.NoError(t, err)
	require.Equal(t, want, gs.ListGalleries(context.Background()))

	gs, err = New(stubRepo{err: errors.New("db down")}, config.Gallery{Root: t.TempDir(), ThumbsDir: t.TempDir(), ThumbSize: 240}, logger.NewNop())
	require.NoError(t, err)
	require.Empty(t, gs.ListGalleries(context.Background()))
}

func TestFit(t *testing.T) {
	tests := []struct{ w, h, ww, wh int }{
		{600, 300, 240, 120},
		{300, 600, 120, 240},
		{240, 240, 240, 240},
		{100, 50, 100, 50},
		{1000, 1, 240, 1},
		{481, 240, 240, 120},
	}

	for _, tt := range tests {
		w, h := fit(tt.w, tt.h, 240)
		assert.Equal(t, tt.ww, w, "%dx%d", tt.w, tt.h)
		assert.Equal(t, tt.wh, h, "%dx%d", tt.w, tt.h)
	}
}

func TestThumbName(t *testing.T) {
	assert.Equal(t, "summer__beach.png", ThumbName("summer", "beach.png"))
	assert.Equal(t, "summer__cat.WEBP.thumb", ThumbName("summer", "cat.WEBP"))
	assert.NotEqual(t, ThumbName("x", "a.webp"), ThumbName("x", "a.webp.png"))
}

func TestSlugsWithDoubleUnderscoreRejected(t *testing.T) {
	for _, slug := range []string{"a__b", "a_", "a-_", "_a", "-a"} {
		assert.False(t, slugRe.MatchString(slug), slug)
	}

	for _, slug := range []string{"a", "a_b", "a-b", "a--b", "a_-b", "summer-2023_trip"} {
		assert.True(t, slugRe.MatchString(slug), slug)
	}
}

func TestThumbnailsDoNotCollideAcrossGalleries(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, "a__b"), 0o755))
	require.NoError(t, os.Mkdir(filepath.Join(root, "a"), 0o755))

	writePNG(t, filepath.Join(root, "a__b", "c.png"), 600, 300)
	writePNG(t, filepath.Join(root, "a", "b__c.png"), 100, 400)

	gs, err := New(stubRepo{}, config.Gallery{
		Root:      root,
		ThumbsDir: filepath.Join(root, "thumbs"),
		ThumbSize: 240,
	}, logger.NewNop())
	require.NoError(t, err)

	ctx := context.Background()

	_, err = gs.RenderGallery(ctx, "a__b")
	require.ErrorIs(t, err, ErrNotFound)

	images, err := gs.RenderGallery(ctx, "a")
	require.NoError(t, err)
	require.Len(t, images, 1)
	assert.Equal(t, "/gallery/thumbs/a__b__c.png", images[0].ThumbURL)

	w, h := decodeSize(t, filepath.Join(root, "thumbs", "a__b__c.png"))
	assert.Equal(t, 60, w)
	assert.Equal(t, 240, h)
}
