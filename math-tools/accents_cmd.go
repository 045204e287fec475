package main

import (
	"fmt"
	"slices"
	"strings"

	"github.com/npillmayer/otmath/glyphs"
	"github.com/pterm/pterm"
	"github.com/thatisuday/commando"
)

// runAccentsCommand prints, per master, where a top accent would attach to
// each glyph: at its "top" anchor, or guessed from its outline. It helps
// designers place anchors and write top accent entries in the master data.
// The MATH table only carries the entries of the master data.
func runAccentsCommand(args map[string]commando.ArgValue, flags map[string]commando.FlagValue) {
	setupTracing(mustFlagString(flags["trace"], "trace"))
	source := strings.TrimSpace(args["source"].Value)
	if source == "" {
		fatalf("font source is required")
	}
	f, err := glyphs.ReadFile(source)
	if err != nil {
		fatalf("cannot read font source %s: %v", source, err)
	}
	filter := splitList(mustFlagString(flags["glyphs"], "glyphs"))

	header := []string{"Glyph"}
	for _, m := range f.Masters {
		header = append(header, m.Name)
	}
	data := [][]string{header}
	for _, name := range f.GlyphNames() {
		if len(filter) > 0 && !slices.Contains(filter, name) {
			continue
		}
		g := f.Glyph(name)
		if g == nil || !g.Export || g.Kind() == glyphs.SmartContainer {
			continue
		}
		row := []string{name}
		for _, m := range f.Masters {
			row = append(row, accentCell(f, g.MasterLayer(m.ID)))
		}
		data = append(data, row)
	}
	if len(data) == 1 {
		pterm.Info.Println("no glyphs to show")
		return
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func accentCell(f *glyphs.Font, l *glyphs.Layer) string {
	if l == nil {
		return "-"
	}
	x, ok := f.TopAccent(l)
	if !ok {
		return "-"
	}
	if _, anchored := l.Anchor("top"); anchored {
		return fmt.Sprintf("%.0f (anchor)", x)
	}
	return fmt.Sprintf("%.0f (guess)", x)
}
