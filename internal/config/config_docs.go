package config

// ///////////////////////////////////////////////
// Documentation Types
// ///////////////////////////////////////////////

// FieldDoc holds documentation and alternative examples for a single config field.
// The genconfig tool uses [FieldDoc] values to annotate the generated config.default.toml.
type FieldDoc struct {
	// Comment is shown as a header comment above the field in the example config.
	Comment string

	// Alternatives are shown as commented-out lines below the active value.
	Alternatives []string
}

// ///////////////////////////////////////////////
// Field Documentation Map
// ///////////////////////////////////////////////

// ConfigDocs maps TOML field paths (dot-separated, e.g. "layout.padding.top")
// to their [FieldDoc] entries.
var ConfigDocs = map[string]FieldDoc{
	// ── Layout ───────────────────────────────────────────────────
	"layout": {
		Comment: "Canvas layout. Command-line flags override these values.",
	},
	"layout.background": {
		Comment: "Background color in web hex format, short (#fff) or long (#ff0158).\nFills the padding and any gaps between glyphs.",
		Alternatives: []string{
			`background = "#000"`,
			`background = "#ff0158"`,
		},
	},
	"layout.spacing": {
		Comment: "Pixels between adjacent glyphs. No spacing is added after the last glyph.",
	},

	// ── Padding ──────────────────────────────────────────────────
	"layout.padding": {
		Comment: "Empty space around the glyph row, filled with the background color.",
	},
	"layout.padding.top":    {},
	"layout.padding.left":   {},
	"layout.padding.right":  {},
	"layout.padding.bottom": {},

	// ── Assets ───────────────────────────────────────────────────
	"assets": {
		Comment: "Glyph images. Each file's name without extension is the character it draws,\ne.g. notes/r.png is used for \"r\".",
	},
	"assets.dir": {
		Comment: "Directory holding the glyph images (relative to the working directory).",
	},
	"assets.ignore": {
		Comment: "Glob patterns for directory entries that are never glyphs (** supported).",
		Alternatives: []string{
			`ignore = [".*", "*.bak"]`,
		},
	},

	// ── Log ──────────────────────────────────────────────────────
	"log": {
		Comment: "Logging configuration",
	},
	"log.level": {
		Comment: "Minimum log level. Options: \"trace\", \"debug\", \"info\", \"warn\", \"error\", \"fail\"",
		Alternatives: []string{
			`level = "debug"`,
			`level = "warn"`,
		},
	},
	"log.file": {
		Comment: "Also write logs to this file, rotated by size.",
		Alternatives: []string{
			`file = "notestrip.log"`,
		},
	},
	"log.max_size_mb": {
		Comment: "Maximum log file size in megabytes before rotation.",
	},
}
