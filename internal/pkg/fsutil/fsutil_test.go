package fsutil

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveWithinRoot(t *testing.T) {
	root := t.TempDir()

	got, err := ResolveWithinRoot(root, "summer-2023")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(root, "summer-2023"), got)

	got, err = ResolveWithinRoot(root, "/summer-2023/beach.jpg")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(root, "summer-2023", "beach.jpg"), got)
}

func TestResolveWithinRootRejectsTraversal(t *testing.T) {
	root := t.TempDir()

	for _, name := range []string{"../etc/passwd", "/../etc/passwd", "a/../../b", `..\secret`, "x/.."} {
		_, err := ResolveWithinRoot(root, name)
		require.ErrorIs(t, err, ErrPathTraversal, name)
	}
}

func TestResolveWithinRootRejectsSymlinkEscape(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlink behavior varies on windows")
	}

	root := t.TempDir()
	outside := t.TempDir()

	if err := os.Symlink(outside, filepath.Join(root, "link")); err != nil {
		t.Skipf("symlink not supported: %v", err)
	}

	_, err := ResolveWithinRoot(root, "link")
	require.ErrorIs(t, err, ErrPathTraversal)

	_, err = ResolveWithinRoot(root, "link/escape.txt")
	require.ErrorIs(t, err, ErrPathTraversal)
}

func TestCleanFilename(t *testing.T) {
	tests := map[string]string{
		"beach.jpg":          "beach.jpg",
		"My Photo.JPG":       "My Photo.JPG",
		"../../etc/passwd":   "etcpasswd",
		`..\..\boot.ini`:     "boot.ini",
		".hidden.png":        "hidden.png",
		"tab\there.gif":      "tabhere.gif",
		"summer__beach.webp": "summer__beach.webp",
	}

	for in, want := range tests {
		got, err := CleanFilename(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got, in)
	}

	for _, in := range []string{"", "..", "/", "./."} {
		_, err := CleanFilename(in)
		require.ErrorIs(t, err, ErrEmptyName, in)
	}
}
