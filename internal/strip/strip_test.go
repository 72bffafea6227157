// Tests for strip layout and composition: [Measure] against the closed-form
// width/height, [Offsets] ordering, [Compose] pixel placement and blending,
// [Save] format selection, and [Render] leaving no output on failure.

package strip

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
)

// ///////////////////////////////////////////////
// Helpers
// ///////////////////////////////////////////////

var (
	white = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	red   = color.NRGBA{R: 255, A: 255}
	green = color.NRGBA{G: 255, A: 255}
	blue  = color.NRGBA{B: 255, A: 255}
)

// solid returns a w×h image filled with c.
func solid(w, h int, c color.NRGBA) *image.NRGBA {
	return imaging.New(w, h, c)
}

// mapResolver serves glyphs from memory and counts loads per character.
type mapResolver struct {
	glyphs map[rune]image.Image
	loads  map[rune]int
}

func newMapResolver(glyphs map[rune]image.Image) *mapResolver {
	return &mapResolver{glyphs: glyphs, loads: map[rune]int{}}
}

var errMissing = errors.New("missing glyph")

func (m *mapResolver) Load(ch rune) (image.Image, error) {
	m.loads[ch]++
	g, ok := m.glyphs[ch]
	if !ok {
		return nil, fmt.Errorf("%w: %q", errMissing, ch)
	}
	return g, nil
}

// closedFormWidth is the width formula written out independently of Measure.
func closedFormWidth(seq []rune, glyphs Glyphs, l Layout) int {
	w := l.Padding.Left + l.Padding.Right
	for _, ch := range seq {
		w += glyphs[ch].Bounds().Dx()
	}
	if len(seq) > 1 {
		w += l.Spacing * (len(seq) - 1)
	}
	return w
}

// ///////////////////////////////////////////////
// Layout
// ///////////////////////////////////////////////

func TestDefaultLayout(t *testing.T) {
	l := DefaultLayout()
	want := Padding{Top: 2, Left: 3, Right: 3, Bottom: 3}
	if l.Padding != want {
		t.Errorf("Padding = %+v, want %+v", l.Padding, want)
	}
	if l.Spacing != 0 {
		t.Errorf("Spacing = %d, want 0", l.Spacing)
	}
	if l.Background != white {
		t.Errorf("Background = %v, want %v", l.Background, white)
	}
}

func TestLayoutValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(l *Layout)
		wantErr bool
	}{
		{"defaults", func(*Layout) {}, false},
		{"zero everything", func(l *Layout) { *l = Layout{} }, false},
		{"negative top", func(l *Layout) { l.Padding.Top = -1 }, true},
		{"negative left", func(l *Layout) { l.Padding.Left = -1 }, true},
		{"negative right", func(l *Layout) { l.Padding.Right = -1 }, true},
		{"negative bottom", func(l *Layout) { l.Padding.Bottom = -1 }, true},
		{"negative spacing", func(l *Layout) { l.Spacing = -4 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := DefaultLayout()
			tt.mutate(&l)
			err := l.Validate()
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidLayout) {
					t.Errorf("Validate() = %v, want ErrInvalidLayout", err)
				}
				return
			}
			if err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
		})
	}
}

// ///////////////////////////////////////////////
// Count / Resolve
// ///////////////////////////////////////////////

func TestCount(t *testing.T) {
	distinct, counts := Count([]rune("rgbrrg"))
	if string(distinct) != "rgb" {
		t.Errorf("distinct = %q, want %q", string(distinct), "rgb")
	}
	want := map[rune]int{'r': 3, 'g': 2, 'b': 1}
	for ch, n := range want {
		if counts[ch] != n {
			t.Errorf("counts[%q] = %d, want %d", ch, counts[ch], n)
		}
	}
}

func TestResolveLoadsEachCharOnce(t *testing.T) {
	r := newMapResolver(map[rune]image.Image{'a': solid(1, 1, red), 'b': solid(1, 1, blue)})
	glyphs, err := Resolve([]rune("abababa"), r)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(glyphs) != 2 {
		t.Errorf("len(glyphs) = %d, want 2", len(glyphs))
	}
	for ch, n := range r.loads {
		if n != 1 {
			t.Errorf("char %q loaded %d times, want 1", ch, n)
		}
	}
}

func TestResolveMissing(t *testing.T) {
	r := newMapResolver(map[rune]image.Image{'a': solid(1, 1, red)})
	_, err := Resolve([]rune("az"), r)
	if !errors.Is(err, errMissing) {
		t.Fatalf("Resolve error = %v, want errMissing", err)
	}
}

// ///////////////////////////////////////////////
// Measure / Offsets
// ///////////////////////////////////////////////

func TestMeasureClosedForm(t *testing.T) {
	glyphs := Glyphs{
		'a': solid(10, 10, red),
		'b': solid(7, 14, green),
		'c': solid(1, 3, blue),
	}
	seqs := []string{"a", "ab", "abc", "aaaa", "cba", "abcabcabc", "bbbbbbbbbbc"}
	layouts := []Layout{
		DefaultLayout(),
		{},
		{Padding: Padding{Top: 5, Left: 0, Right: 9, Bottom: 1}, Spacing: 4},
		{Padding: Padding{Top: 0, Left: 11, Right: 0, Bottom: 0}, Spacing: 1},
	}

	for _, s := range seqs {
		for i, l := range layouts {
			seq := []rune(s)
			got, err := Measure(seq, glyphs, l)
			if err != nil {
				t.Fatalf("Measure(%q, layout %d): %v", s, i, err)
			}
			if want := closedFormWidth(seq, glyphs, l); got.X != want {
				t.Errorf("Measure(%q, layout %d) width = %d, want %d", s, i, got.X, want)
			}
			maxH := 0
			for _, ch := range seq {
				maxH = max(maxH, glyphs[ch].Bounds().Dy())
			}
			if want := maxH + l.Padding.Top + l.Padding.Bottom; got.Y != want {
				t.Errorf("Measure(%q, layout %d) height = %d, want %d", s, i, got.Y, want)
			}
		}
	}
}

func TestMeasureEmpty(t *testing.T) {
	_, err := Measure(nil, Glyphs{}, DefaultLayout())
	if !errors.Is(err, ErrEmptySequence) {
		t.Fatalf("Measure(nil) error = %v, want ErrEmptySequence", err)
	}
}

func TestMeasureMissingGlyph(t *testing.T) {
	if _, err := Measure([]rune("x"), Glyphs{}, DefaultLayout()); err == nil {
		t.Fatal("expected error for missing glyph")
	}
}

func TestOffsetsStrictlyIncreasing(t *testing.T) {
	glyphs := Glyphs{'a': solid(10, 10, red), 'b': solid(4, 2, blue)}
	l := Layout{Padding: Padding{Top: 2, Left: 3}, Spacing: 5}
	seq := []rune("abba")

	pts, err := Offsets(seq, glyphs, l)
	if err != nil {
		t.Fatalf("Offsets: %v", err)
	}
	wantX := []int{3, 3 + 10 + 5, 3 + 10 + 5 + 4 + 5, 3 + 10 + 5 + 4 + 5 + 4 + 5}
	for i, p := range pts {
		if p.X != wantX[i] || p.Y != 2 {
			t.Errorf("pts[%d] = %v, want (%d,2)", i, p, wantX[i])
		}
		if i > 0 && p.X <= pts[i-1].X {
			t.Errorf("pts[%d].X = %d not greater than pts[%d].X = %d", i, p.X, i-1, pts[i-1].X)
		}
	}

	// The last glyph ends exactly right padding short of the canvas edge.
	size, err := Measure(seq, glyphs, l)
	if err != nil {
		t.Fatalf("Measure: %v", err)
	}
	last := pts[len(pts)-1].X + glyphs['a'].Bounds().Dx()
	if size.X-last != l.Padding.Right {
		t.Errorf("trailing margin = %d, want %d", size.X-last, l.Padding.Right)
	}
}

// ///////////////////////////////////////////////
// Compose
// ///////////////////////////////////////////////

func TestComposeTwoGlyphs(t *testing.T) {
	glyphs := Glyphs{'a': solid(10, 10, red), 'b': solid(10, 10, blue)}
	canvas, err := Compose([]rune("ab"), glyphs, DefaultLayout())
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}

	if b := canvas.Bounds(); b.Dx() != 26 || b.Dy() != 15 {
		t.Fatalf("canvas = %dx%d, want 26x15", b.Dx(), b.Dy())
	}

	for y := 0; y < 15; y++ {
		for x := 0; x < 26; x++ {
			want := white
			switch {
			case y >= 2 && y < 12 && x >= 3 && x < 13:
				want = red
			case y >= 2 && y < 12 && x >= 13 && x < 23:
				want = blue
			}
			if got := canvas.NRGBAAt(x, y); got != want {
				t.Fatalf("pixel (%d,%d) = %v, want %v", x, y, got, want)
			}
		}
	}
}

func TestComposeSpacingShowsBackground(t *testing.T) {
	bg := color.NRGBA{R: 1, G: 2, B: 3, A: 255}
	l := Layout{Spacing: 2, Background: bg}
	canvas, err := Compose([]rune("aa"), Glyphs{'a': solid(3, 3, red)}, l)
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	if w := canvas.Bounds().Dx(); w != 8 {
		t.Fatalf("width = %d, want 8", w)
	}
	for x, want := range []color.NRGBA{red, red, red, bg, bg, red, red, red} {
		if got := canvas.NRGBAAt(x, 1); got != want {
			t.Errorf("pixel (%d,1) = %v, want %v", x, got, want)
		}
	}
}

func TestComposeShortGlyphLeavesBackgroundBelow(t *testing.T) {
	glyphs := Glyphs{'t': solid(2, 6, red), 's': solid(2, 2, blue)}
	canvas, err := Compose([]rune("ts"), glyphs, Layout{Background: white})
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	if got := canvas.NRGBAAt(2, 1); got != blue {
		t.Errorf("pixel (2,1) = %v, want blue", got)
	}
	if got := canvas.NRGBAAt(2, 4); got != white {
		t.Errorf("pixel (2,4) = %v, want background", got)
	}
}

func TestComposeBlendsTransparency(t *testing.T) {
	glyph := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	glyph.SetNRGBA(0, 0, color.NRGBA{}) // fully transparent
	glyph.SetNRGBA(1, 0, red)

	canvas, err := Compose([]rune("g"), Glyphs{'g': glyph}, Layout{Background: blue})
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	if got := canvas.NRGBAAt(0, 0); got != blue {
		t.Errorf("transparent pixel = %v, want background %v", got, blue)
	}
	if got := canvas.NRGBAAt(1, 0); got != red {
		t.Errorf("opaque pixel = %v, want %v", got, red)
	}
}

func TestComposeNonZeroOriginGlyph(t *testing.T) {
	full := solid(6, 6, green)
	full.SetNRGBA(4, 4, red)
	sub := full.SubImage(image.Rect(4, 4, 6, 6))

	canvas, err := Compose([]rune("s"), Glyphs{'s': sub}, Layout{Background: white})
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	if b := canvas.Bounds(); b.Dx() != 2 || b.Dy() != 2 {
		t.Fatalf("canvas = %dx%d, want 2x2", b.Dx(), b.Dy())
	}
	if got := canvas.NRGBAAt(0, 0); got != red {
		t.Errorf("pixel (0,0) = %v, want red", got)
	}
}

func TestComposeRejectsNegativeLayout(t *testing.T) {
	_, err := Compose([]rune("a"), Glyphs{'a': solid(1, 1, red)}, Layout{Spacing: -1})
	if !errors.Is(err, ErrInvalidLayout) {
		t.Fatalf("Compose error = %v, want ErrInvalidLayout", err)
	}
}

// ///////////////////////////////////////////////
// Save / Render
// ///////////////////////////////////////////////

func TestSaveFormats(t *testing.T) {
	img := solid(4, 3, red)
	for _, name := range []string{"out.png", "out.jpg", "out.JPEG", "out.gif", "out.bmp", "out.tiff"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			if err := Save(img, path); err != nil {
				t.Fatalf("Save: %v", err)
			}
			got, err := imaging.Open(path)
			if err != nil {
				t.Fatalf("reopen: %v", err)
			}
			if b := got.Bounds(); b.Dx() != 4 || b.Dy() != 3 {
				t.Errorf("saved size = %dx%d, want 4x3", b.Dx(), b.Dy())
			}
		})
	}
}

func TestSaveUnsupportedFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xyz")
	err := Save(solid(1, 1, red), path)
	if !errors.Is(err, ErrOutputWrite) {
		t.Errorf("Save error = %v, want ErrOutputWrite", err)
	}
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Save error = %v, want ErrUnsupportedFormat", err)
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Errorf("output exists after failed save")
	}
}

func TestSaveUnwritable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "out.png")
	if err := Save(solid(1, 1, red), path); !errors.Is(err, ErrOutputWrite) {
		t.Errorf("Save error = %v, want ErrOutputWrite", err)
	}
}

func TestRender(t *testing.T) {
	r := newMapResolver(map[rune]image.Image{'a': solid(10, 10, red), 'b': solid(10, 10, blue)})
	path := filepath.Join(t.TempDir(), "ab.png")

	canvas, err := Render("ab", r, DefaultLayout(), path)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	saved, err := imaging.Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if saved.Bounds() != canvas.Bounds() {
		t.Errorf("saved bounds = %v, want %v", saved.Bounds(), canvas.Bounds())
	}
}

func TestRenderMissingGlyphWritesNothing(t *testing.T) {
	r := newMapResolver(map[rune]image.Image{'a': solid(10, 10, red)})
	path := filepath.Join(t.TempDir(), "az.png")

	_, err := Render("az", r, DefaultLayout(), path)
	if !errors.Is(err, errMissing) {
		t.Fatalf("Render error = %v, want errMissing", err)
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Errorf("output exists after failed render")
	}
}

func TestRenderEmpty(t *testing.T) {
	r := newMapResolver(nil)
	_, err := Render("", r, DefaultLayout(), filepath.Join(t.TempDir(), "e.png"))
	if !errors.Is(err, ErrEmptySequence) {
		t.Fatalf("Render error = %v, want ErrEmptySequence", err)
	}
}
