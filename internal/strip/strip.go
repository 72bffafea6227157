// Package strip lays glyph images out left-to-right on a padded background
// and writes the flattened result.
//
// Canvas size follows a closed form over the input sequence s of n glyphs:
//
//	width  = Σ width(s[k]) + left + right + spacing × max(n−1, 0)
//	height = max height over distinct glyphs + top + bottom
//
// Glyph k is drawn at x = left + Σ_{j<k} (width(s[j]) + spacing), y = top.
package strip

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"
	"tools.zach/dev/notestrip/internal/hexcolor"
)

// ErrEmptySequence is returned when there are no glyphs to lay out.
var ErrEmptySequence = errors.New("empty glyph sequence")

// ErrInvalidLayout is returned for negative padding or spacing.
var ErrInvalidLayout = errors.New("invalid layout")

// ///////////////////////////////////////////////
// Layout
// ///////////////////////////////////////////////

// Padding is the background margin around the glyph row, in pixels.
type Padding struct {
	Top    int
	Left   int
	Right  int
	Bottom int
}

// Layout holds everything about the output that is not a glyph.
type Layout struct {
	Padding Padding
	// Spacing is the gap between adjacent glyphs.
	Spacing int
	// Background fills the whole canvas before glyphs are drawn.
	Background color.NRGBA
}

// DefaultBackground is the background color used when none is configured.
const DefaultBackground = "#fff"

// DefaultLayout returns the layout used when nothing is configured:
// 2px top, 3px left/right/bottom, no spacing, white background.
func DefaultLayout() Layout {
	return Layout{
		Padding:    Padding{Top: 2, Left: 3, Right: 3, Bottom: 3},
		Spacing:    0,
		Background: hexcolor.MustParse(DefaultBackground),
	}
}

// Validate rejects negative padding and spacing.
func (l Layout) Validate() error {
	fields := []struct {
		name string
		v    int
	}{
		{"padding top", l.Padding.Top},
		{"padding left", l.Padding.Left},
		{"padding right", l.Padding.Right},
		{"padding bottom", l.Padding.Bottom},
		{"spacing", l.Spacing},
	}
	for _, f := range fields {
		if f.v < 0 {
			return fmt.Errorf("%w: %s must be >= 0, got %d", ErrInvalidLayout, f.name, f.v)
		}
	}
	return nil
}

// ///////////////////////////////////////////////
// Glyph Resolution
// ///////////////////////////////////////////////

// Resolver loads the image for a single character.
type Resolver interface {
	Load(ch rune) (image.Image, error)
}

// Glyphs maps each distinct character of a sequence to its image.
type Glyphs map[rune]image.Image

// Count returns the distinct characters of seq in order of first appearance
// and the number of times each occurs.
func Count(seq []rune) ([]rune, map[rune]int) {
	var distinct []rune
	counts := make(map[rune]int)
	for _, ch := range seq {
		if counts[ch] == 0 {
			distinct = append(distinct, ch)
		}
		counts[ch]++
	}
	return distinct, counts
}

// Resolve loads every distinct character of seq exactly once. The first
// failure aborts resolution.
func Resolve(seq []rune, r Resolver) (Glyphs, error) {
	distinct, _ := Count(seq)
	glyphs := make(Glyphs, len(distinct))
	for _, ch := range distinct {
		img, err := r.Load(ch)
		if err != nil {
			return nil, err
		}
		glyphs[ch] = img
	}
	return glyphs, nil
}

// ///////////////////////////////////////////////
// Measurement
// ///////////////////////////////////////////////

// Measure returns the canvas size for seq. Every character in seq must have
// an entry in glyphs.
func Measure(seq []rune, glyphs Glyphs, l Layout) (image.Point, error) {
	if len(seq) == 0 {
		return image.Point{}, ErrEmptySequence
	}
	distinct, counts := Count(seq)

	var sumW, maxH int
	for _, ch := range distinct {
		g, ok := glyphs[ch]
		if !ok {
			return image.Point{}, fmt.Errorf("no glyph for char %q", ch)
		}
		size := g.Bounds().Size()
		sumW += size.X * counts[ch]
		maxH = max(maxH, size.Y)
	}

	w := sumW + l.Padding.Left + l.Padding.Right + l.Spacing*max(len(seq)-1, 0)
	h := maxH + l.Padding.Top + l.Padding.Bottom
	return image.Pt(w, h), nil
}

// Offsets returns the top-left corner of every glyph in seq, in order.
func Offsets(seq []rune, glyphs Glyphs, l Layout) ([]image.Point, error) {
	pts := make([]image.Point, 0, len(seq))
	x, y := l.Padding.Left, l.Padding.Top
	for _, ch := range seq {
		g, ok := glyphs[ch]
		if !ok {
			return nil, fmt.Errorf("no glyph for char %q", ch)
		}
		pts = append(pts, image.Pt(x, y))
		x += g.Bounds().Dx() + l.Spacing
	}
	return pts, nil
}

// ///////////////////////////////////////////////
// Composition
// ///////////////////////////////////////////////

// Compose paints the background and draws each glyph of seq at its offset,
// blending glyph transparency over what is already on the canvas.
func Compose(seq []rune, glyphs Glyphs, l Layout) (*image.NRGBA, error) {
	if err := l.Validate(); err != nil {
		return nil, err
	}
	size, err := Measure(seq, glyphs, l)
	if err != nil {
		return nil, err
	}
	pts, err := Offsets(seq, glyphs, l)
	if err != nil {
		return nil, err
	}

	canvas := imaging.New(size.X, size.Y, l.Background)
	for i, ch := range seq {
		g := glyphs[ch]
		draw.Copy(canvas, pts[i], g, g.Bounds(), draw.Over, nil)
	}
	return canvas, nil
}

// Render runs the whole pipeline for text: resolve glyphs, compose, and save
// to out. Nothing is written unless every step before the save succeeds.
func Render(text string, r Resolver, l Layout, out string) (*image.NRGBA, error) {
	seq := []rune(text)
	if len(seq) == 0 {
		return nil, ErrEmptySequence
	}
	if err := l.Validate(); err != nil {
		return nil, err
	}
	glyphs, err := Resolve(seq, r)
	if err != nil {
		return nil, fmt.Errorf("resolve glyphs: %w", err)
	}
	canvas, err := Compose(seq, glyphs, l)
	if err != nil {
		return nil, fmt.Errorf("compose: %w", err)
	}
	if err := Save(canvas, out); err != nil {
		return nil, err
	}
	return canvas, nil
}
