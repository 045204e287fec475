/*
Package fontload loads compiled OpenType fonts and maps glyph names of a font
source to the glyph IDs of a compiled instance.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package fontload

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/benoitkugler/textlayout/fonts/glyphsnames"
	"github.com/npillmayer/otmath/glyphs"
	"github.com/npillmayer/otmath/ot"
	"github.com/npillmayer/schuko/tracing"
	"golang.org/x/image/font/sfnt"
)

// tracer writes to trace with key 'font.opentype'
func tracer() tracing.Trace {
	return tracing.Select("font.opentype")
}

// ScalableFont is a parsed scalable font with original bytes and SFNT view.
type ScalableFont struct {
	Fontname string
	Filepath string
	Binary   []byte
	SFNT     *sfnt.Font
}

// LoadOpenTypeFont loads an OpenType font (TTF or OTF) from a file.
func LoadOpenTypeFont(fontfile string) (*ScalableFont, error) {
	bytez, err := os.ReadFile(fontfile)
	if err != nil {
		return nil, err
	}
	f, err := ParseOpenTypeFont(bytez)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fontfile, err)
	}
	f.Filepath = fontfile
	return f, nil
}

// ParseOpenTypeFont loads an OpenType font (TTF or OTF) from memory.
func ParseOpenTypeFont(fbytes []byte) (f *ScalableFont, err error) {
	f = &ScalableFont{Binary: fbytes}
	f.SFNT, err = sfnt.Parse(f.Binary)
	if err != nil {
		return nil, err
	}
	if f.Fontname, err = f.SFNT.Name(nil, sfnt.NameIDFull); err != nil {
		tracer().Debugf("font has no full name: %v", err)
		f.Fontname = ""
	}
	return f, nil
}

// GlyphOrder maps glyph names to glyph IDs of a compiled font.
type GlyphOrder struct {
	byName map[string]ot.GlyphIndex
	names  []string          // glyph ID → name in font
	source map[string]string // source glyph name → name in font
	count  int
}

// GlyphID returns the glyph ID of a glyph, given by its source name.
func (o *GlyphOrder) GlyphID(name string) (ot.GlyphIndex, bool) {
	if n, ok := o.source[name]; ok {
		name = n
	}
	gid, ok := o.byName[name]
	return gid, ok
}

// GlyphName returns the name of a glyph in the font, or "" if unknown.
func (o *GlyphOrder) GlyphName(gid ot.GlyphIndex) string {
	if int(gid) < len(o.names) {
		return o.names[gid]
	}
	return ""
}

// Len returns the number of glyphs in the font.
func (o *GlyphOrder) Len() int {
	return o.count
}

// GlyphOrder reads the glyph names of font f. Glyph names are taken from
// table 'post' or, for fonts with CFF outlines, from the CFF charset.
// Compilers may rename glyphs to their production names; for every glyph of
// src the name in the font is searched under its source name first, then
// under its production name, then under the canonical uniXXXX name of its
// code point. If f carries no glyph names at all, IDs are assigned in source
// order of exported glyphs, with '.notdef' at ID 0 and the glyphs removed
// from the instance left out.
func (f *ScalableFont) GlyphOrder(src *glyphs.Font, removed []string) (*GlyphOrder, error) {
	n := f.SFNT.NumGlyphs()
	names := make([]string, n)
	var b sfnt.Buffer
	for i := range n {
		name, err := f.SFNT.GlyphName(&b, sfnt.GlyphIndex(i))
		if err != nil {
			return nil, fmt.Errorf("glyph name of glyph %d: %w", i, err)
		}
		names[i] = name
	}
	if !slices.ContainsFunc(names, func(name string) bool { return name != "" }) {
		cff, err := f.cffGlyphNames()
		if err != nil {
			return nil, err
		}
		if len(cff) == n {
			tracer().Debugf("font %s: glyph names from CFF charset", f.Fontname)
			names = cff
		}
	}
	return newGlyphOrder(names, src, removed)
}

func (f *ScalableFont) cffGlyphNames() ([]string, error) {
	otf, err := ot.Parse(f.Binary)
	if err != nil {
		return nil, err
	}
	return otf.CFFGlyphNames()
}

func newGlyphOrder(names []string, src *glyphs.Font, removed []string) (*GlyphOrder, error) {
	n := len(names)
	o := &GlyphOrder{
		byName: make(map[string]ot.GlyphIndex, n),
		names:  names,
		source: make(map[string]string),
		count:  n,
	}
	for i, name := range names {
		if name == "" {
			continue
		}
		if _, ok := o.byName[name]; !ok {
			o.byName[name] = ot.GlyphIndex(i)
		}
	}
	if len(o.byName) == 0 {
		tracer().Infof("font has no glyph names, using source order")
		return sourceOrder(src, n, removed)
	}
	if src == nil {
		return o, nil
	}
	for _, g := range src.Glyphs {
		if _, ok := o.byName[g.Name]; ok {
			continue
		}
		for _, alt := range append(alternativeNames(g), productionName(src, g)) {
			if _, ok := o.byName[alt]; ok {
				o.source[g.Name] = alt
				break
			}
		}
	}
	return o, nil
}

// ErrNoGlyphOrder is returned if glyph IDs cannot be determined.
var ErrNoGlyphOrder = errors.New("cannot determine glyph order")

func sourceOrder(src *glyphs.Font, n int, removed []string) (*GlyphOrder, error) {
	if src == nil {
		return nil, ErrNoGlyphOrder
	}
	o := &GlyphOrder{byName: make(map[string]ot.GlyphIndex), names: make([]string, n), count: n}
	gid := 1
	if g := src.Glyph(".notdef"); g != nil && g.Export && n > 0 {
		o.byName[".notdef"] = 0
		o.names[0] = ".notdef"
	}
	for _, g := range src.Glyphs {
		if !g.Export || g.Name == ".notdef" || slices.Contains(removed, g.Name) {
			continue
		}
		if gid < n {
			o.names[gid] = g.Name
		}
		o.byName[g.Name] = ot.GlyphIndex(gid)
		gid++
	}
	if gid > n {
		return nil, fmt.Errorf("%w: source has %d exported glyphs, font has %d", ErrNoGlyphOrder, gid, n)
	}
	if gid < n {
		tracer().Errorf("font has %d glyphs not in source, glyph IDs may be wrong", n-gid)
	}
	return o, nil
}

// alternativeNames lists the names a compiler may have given to a glyph.
func alternativeNames(g *glyphs.Glyph) []string {
	var names []string
	if g.Production != "" {
		names = append(names, g.Production)
	}
	r, ok := glyphsnames.GlyphToRune(g.Name)
	if !ok && len(g.Unicodes) > 0 {
		r, ok = g.Unicodes[0], true
	}
	if ok && r > 0 {
		if r <= 0xFFFF {
			names = append(names, fmt.Sprintf("uni%04X", r))
		}
		names = append(names, fmt.Sprintf("u%04X", r))
	}
	return names
}

// ProductionNames maps the names of the glyphs of src to their production
// names, for all glyphs where the two differ.
func ProductionNames(src *glyphs.Font) map[string]string {
	names := make(map[string]string)
	for _, g := range src.Glyphs {
		if p := productionName(src, g); p != g.Name {
			names[g.Name] = p
		}
	}
	return names
}

// productionName is the glyph's production name if set in the source. Else
// glyphs named by the Adobe Glyph List conventions keep their name, and all
// others get a uniXXXX or uXXXXX name from their code point, or the code
// point of their base glyph, keeping any suffix.
func productionName(src *glyphs.Font, g *glyphs.Glyph) string {
	if g.Production != "" {
		return g.Production
	}
	base, suffix, dotted := strings.Cut(g.Name, ".")
	if base == "" {
		return g.Name
	}
	if _, ok := glyphsnames.GlyphToRune(base); ok {
		return g.Name
	}
	unicodes := g.Unicodes
	if dotted {
		if b := src.Glyph(base); b != nil {
			unicodes = b.Unicodes
		}
	}
	if len(unicodes) == 0 || unicodes[0] <= 0 {
		return g.Name
	}
	var name string
	if r := unicodes[0]; r <= 0xFFFF {
		name = fmt.Sprintf("uni%04X", r)
	} else {
		name = fmt.Sprintf("u%04X", r)
	}
	if dotted {
		name += "." + suffix
	}
	return name
}
