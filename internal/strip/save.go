package strip

import (
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"

	"github.com/disintegration/imaging"
	"tools.zach/dev/notestrip/internal/atomicfile"
)

// ErrOutputWrite is returned when the output image cannot be encoded or
// written.
var ErrOutputWrite = errors.New("output write failed")

// ErrUnsupportedFormat is returned when the output extension names no known
// image format.
var ErrUnsupportedFormat = imaging.ErrUnsupportedFormat

// jpegQuality is used for .jpg/.jpeg output.
const jpegQuality = 95

// Save encodes img in the format implied by path's extension (png, jpg/jpeg,
// gif, tif/tiff, bmp) and writes it atomically. Errors wrap [ErrOutputWrite].
func Save(img image.Image, path string) error {
	format, err := imaging.FormatFromFilename(path)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrOutputWrite, path, err)
	}

	err = atomicfile.WriteFunc(path, 0o644, func(w io.Writer) error {
		return imaging.Encode(w, img, format, imaging.JPEGQuality(jpegQuality))
	})
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrOutputWrite, path, err)
	}

	slog.Debug("wrote image", "path", path, "format", format.String(),
		"width", img.Bounds().Dx(), "height", img.Bounds().Dy())
	return nil
}
