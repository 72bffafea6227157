// Package assets resolves characters to glyph images stored in an asset
// directory.
//
// Each glyph is an image file whose base name (extension removed) is exactly
// the character it represents, e.g. notes/r.png for 'r'. Any extension is
// accepted as long as the file decodes. The directory is listed once by [Scan]
// and the resulting [Index] is passed to everything that needs to look glyphs up.
package assets

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
	"tools.zach/dev/notestrip/internal/logger"
)

// ErrAssetNotFound is returned when no decodable image exists for a character.
var ErrAssetNotFound = errors.New("asset not found")

// ///////////////////////////////////////////////
// Index
// ///////////////////////////////////////////////

// Index is a single listing of an asset directory.
type Index struct {
	// dir is the asset directory the entries were read from.
	dir string
	// names holds entry names in directory-listing order, ignored names removed.
	names []string
}

// Scan lists dir once and returns an [Index] over its entries. Entries whose
// name matches any of the ignore globs (doublestar syntax) are left out.
func Scan(dir string, ignore []string) (*Index, error) {
	for _, pattern := range ignore {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid ignore pattern %q: %w", pattern, doublestar.ErrBadPattern)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read asset dir: %w", err)
	}

	idx := &Index{dir: dir, names: make([]string, 0, len(entries))}
	for _, e := range entries {
		if ignored(e.Name(), ignore) {
			slog.Debug("ignoring asset entry", "name", e.Name())
			continue
		}
		idx.names = append(idx.names, e.Name())
	}
	return idx, nil
}

// ignored reports whether name matches any pattern. Patterns were validated
// by [Scan], so match errors cannot occur.
func ignored(name string, patterns []string) bool {
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, name); ok {
			return true
		}
	}
	return false
}

// Dir returns the directory the index was built from.
func (x *Index) Dir() string { return x.dir }

// Len returns the number of indexed entries.
func (x *Index) Len() int { return len(x.names) }

// Candidates returns the paths of every entry whose base name equals ch,
// in listing order.
func (x *Index) Candidates(ch rune) []string {
	want := string(ch)
	var out []string
	for _, name := range x.names {
		if stem(name) == want {
			out = append(out, filepath.Join(x.dir, name))
		}
	}
	return out
}

// Load decodes the glyph image for ch. Candidates are tried in listing order
// and the first one that decodes wins; failures are logged at warn level and
// skipped. Returns an error wrapping [ErrAssetNotFound] when nothing matches
// or nothing decodes.
func (x *Index) Load(ch rune) (image.Image, error) {
	candidates := x.Candidates(ch)
	for _, path := range candidates {
		logger.Trace(slog.Default(), "trying glyph candidate", "char", string(ch), "path", path)
		img, err := imaging.Open(path)
		if err != nil {
			slog.Warn("unable to load glyph image", "path", path, "char", string(ch), "error", err)
			continue
		}
		slog.Debug("loaded glyph", "char", string(ch), "path", path,
			"width", img.Bounds().Dx(), "height", img.Bounds().Dy())
		return img, nil
	}
	if len(candidates) > 0 {
		return nil, fmt.Errorf("%w: char %q in %s (%d candidates failed to decode)",
			ErrAssetNotFound, ch, x.dir, len(candidates))
	}
	return nil, fmt.Errorf("%w: char %q in %s", ErrAssetNotFound, ch, x.dir)
}

// stem strips the extension from a file name. A run of leading dots belongs
// to the name, so "..png" and ".hidden" have no extension.
func stem(name string) string {
	i := strings.LastIndexByte(name, '.')
	if i <= 0 || strings.Trim(name[:i], ".") == "" {
		return name
	}
	return name[:i]
}
