package fsutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"
)

var (
	ErrPathTraversal = errors.New("path escapes root")
	ErrEmptyName     = errors.New("empty file name")
)

// ResolveWithinRoot joins name onto root and rejects results that leave root,
// lexically or through a symlink that exists on disk.
func ResolveWithinRoot(root, name string) (string, error) {
	if root == "" {
		return "", errors.New("root is required") //nolint:goerr113
	}

	rootAbs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("abs root error: %w", err)
	}

	rootAbs = filepath.Clean(rootAbs)

	// reject instead of cleaning: "a/../b" is never a legitimate request here
	for _, seg := range strings.FieldsFunc(name, isSeparator) {
		if seg == ".." {
			return "", ErrPathTraversal
		}
	}

	joined := filepath.Join(rootAbs, filepath.FromSlash(strings.TrimLeft(name, `/\`)))
	if !isWithin(rootAbs, joined) {
		return "", ErrPathTraversal
	}

	if hasSymlinkComponent(rootAbs, joined) {
		return "", ErrPathTraversal
	}

	return joined, nil
}

// CleanFilename reduces a requested file name to a single safe path element:
// separators and control characters are dropped and leading dots removed.
func CleanFilename(name string) (string, error) {
	name = strings.Map(func(r rune) rune {
		if isSeparator(r) || unicode.IsControl(r) || r == unicode.ReplacementChar {
			return -1
		}

		return r
	}, name)

	name = strings.TrimSpace(strings.TrimLeft(name, ". "))
	if name == "" {
		return "", ErrEmptyName
	}

	return name, nil
}

func isSeparator(r rune) bool {
	return r == '/' || r == '\\'
}

func hasSymlinkComponent(rootAbs, fullPath string) bool {
	rel, err := filepath.Rel(rootAbs, fullPath)
	if err != nil {
		return true
	}

	if rel == "." {
		return false
	}

	cur := rootAbs

	for _, p := range strings.Split(rel, string(filepath.Separator)) {
		if p == "" || p == "." {
			continue
		}

		cur = filepath.Join(cur, p)

		st, err := os.Lstat(cur)
		if err != nil {
			// the rest does not exist yet, nothing to follow
			return false
		}

		if st.Mode()&os.ModeSymlink != 0 {
			return true
		}
	}

	return false
}

func isWithin(root, candidate string) bool {
	if root == candidate {
		return true
	}

	sep := string(filepath.Separator)
	if !strings.HasSuffix(root, sep) {
		root += sep
	}

	return strings.HasPrefix(candidate, root)
}
