// Package main implements the genconfig tool that writes config.default.toml
// from config.ExampleConfig(), annotated with config.ConfigDocs.
//
// It is invoked by go generate via the directive in internal/config/config.go.
package main

import (
	"bytes"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"tools.zach/dev/notestrip/internal/atomicfile"
	"tools.zach/dev/notestrip/internal/config"
	"tools.zach/dev/notestrip/internal/paths"
)

func main() {
	result, err := render(config.ExampleConfig(), config.ConfigDocs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "render: %v\n", err)
		os.Exit(1)
	}

	// go generate runs from internal/config/; the embedding root package
	// lives two levels up.
	outPath := "../../" + paths.DefaultConfigFile
	if err := atomicfile.Write(outPath, []byte(result), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "write %s: %v\n", outPath, err)
		os.Exit(1)
	}
	fmt.Printf("wrote %s\n", paths.DefaultConfigFile)
}

// ///////////////////////////////////////////////
// Rendering
// ///////////////////////////////////////////////

// generator accumulates annotated output lines while walking the encoder's
// TOML output.
type generator struct {
	docs map[string]config.FieldDoc
	// sections holds every table header in the encoded output, so section
	// docs are never mistaken for omitted keys.
	sections map[string]bool
	// section is the dotted path of the table currently being written.
	section string
	// emitted records key paths already written.
	emitted map[string]bool
	out     []string
}

// render encodes cfg as TOML and returns it with doc comments, section
// banners, and commented entries for documented keys the encoder omitted.
func render(cfg *config.Config, docs map[string]config.FieldDoc) (string, error) {
	var raw bytes.Buffer
	if err := toml.NewEncoder(&raw).Encode(cfg); err != nil {
		return "", fmt.Errorf("marshal: %w", err)
	}
	lines := strings.Split(raw.String(), "\n")

	g := &generator{
		docs:     docs,
		sections: sectionHeaders(lines),
		emitted:  map[string]bool{},
		out: []string{
			"# ///////////////////////////////////////////////",
			"# notestrip Configuration",
			"# ///////////////////////////////////////////////",
		},
	}
	for _, line := range lines {
		g.line(strings.TrimSpace(line))
	}
	g.injectOmitted()

	return strings.TrimRight(strings.Join(g.out, "\n"), "\n") + "\n", nil
}

// line handles one trimmed line of encoder output.
func (g *generator) line(trimmed string) {
	switch {
	case trimmed == "":
		return
	case isTableHeader(trimmed):
		g.injectOmitted()
		g.section = strings.Trim(trimmed, "[] ")
		g.out = append(g.out, "", fmt.Sprintf("# ///// %s /////", sectionName(g.section)), "")
		g.comment(g.docs[g.section])
		g.out = append(g.out, trimmed)
	case strings.HasPrefix(trimmed, "#") || !strings.Contains(trimmed, "="):
		g.out = append(g.out, trimmed)
	default:
		key := strings.TrimSpace(strings.SplitN(trimmed, "=", 2)[0])
		path := g.keyPath(key)
		g.emitted[path] = true
		doc := g.docs[path]
		g.comment(doc)
		g.out = append(g.out, trimmed)
		for _, alt := range doc.Alternatives {
			g.out = append(g.out, "# "+alt)
		}
	}
}

// injectOmitted appends commented-out entries for documented keys directly
// under the current section that the encoder did not write (omitempty fields
// holding their zero value). Keys are sorted for deterministic output.
func (g *generator) injectOmitted() {
	if g.section == "" {
		return
	}
	prefix := g.section + "."

	var omitted []string
	for path := range g.docs {
		rest, ok := strings.CutPrefix(path, prefix)
		if !ok || strings.Contains(rest, ".") || g.emitted[path] || g.sections[path] {
			continue
		}
		omitted = append(omitted, path)
	}
	sort.Strings(omitted)

	for _, path := range omitted {
		doc := g.docs[path]
		g.out = append(g.out, "")
		g.comment(doc)
		for _, alt := range doc.Alternatives {
			g.out = append(g.out, "# "+alt)
		}
		g.emitted[path] = true
	}
}

// comment appends doc.Comment as "# " lines.
func (g *generator) comment(doc config.FieldDoc) {
	if doc.Comment == "" {
		return
	}
	for _, cl := range strings.Split(doc.Comment, "\n") {
		g.out = append(g.out, "# "+cl)
	}
}

// keyPath returns the dotted path of key within the current section.
func (g *generator) keyPath(key string) string {
	if g.section == "" {
		return key
	}
	return g.section + "." + key
}

// ///////////////////////////////////////////////
// Helpers
// ///////////////////////////////////////////////

// isTableHeader reports whether a trimmed line opens a [table] (not an array
// of tables).
func isTableHeader(trimmed string) bool {
	return strings.HasPrefix(trimmed, "[") && !strings.HasPrefix(trimmed, "[[")
}

// sectionHeaders returns the dotted names of every table header in lines.
func sectionHeaders(lines []string) map[string]bool {
	out := map[string]bool{}
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if isTableHeader(trimmed) {
			out[strings.Trim(trimmed, "[] ")] = true
		}
	}
	return out
}

// sectionName returns a display name for a TOML section header: the last
// dotted segment with its first letter capitalized ("layout.padding" ->
// "Padding").
func sectionName(section string) string {
	parts := strings.Split(section, ".")
	last := parts[len(parts)-1]
	if len(last) == 0 {
		return ""
	}
	return strings.ToUpper(last[:1]) + last[1:]
}
