package mathdata

import (
	"fmt"
	"math"

	"github.com/npillmayer/otmath/glyphs"
	"github.com/npillmayer/otmath/interp"
	"github.com/npillmayer/otmath/ot"
)

// MasterData is the complete per-master math data of a font, ready to be
// interpolated to instances. All value lists have one entry per master.
type MasterData struct {
	MasterCount         int
	Constants           map[string]Values
	MinConnectorOverlap Values
	ItalicCorrection    map[string]Values
	TopAccent           map[string]Values
	ExtendedShapes      []string
	Variants            [2]map[string][]Variant // indexed by ot.MathDirection
	Assemblies          [2]map[string]Assembly  // indexed by ot.MathDirection
	glyphs              map[string]bool
	warnings            warningCollector
}

// Variant is a pre-built size variant of a glyph.
type Variant struct {
	Glyph   string
	Advance Values
}

// Assembly is the recipe for building a glyph of arbitrary size from parts.
type Assembly struct {
	Italic Values
	Parts  []Part
}

// Part is a glyph part of an assembly.
type Part struct {
	Glyph          string
	Extender       bool
	StartConnector Values
	EndConnector   Values
	FullAdvance    Values
}

// Warnings returns the warnings collected while loading.
func (md *MasterData) Warnings() []Warning {
	return md.warnings.list()
}

// HasGlyph reports whether the font source contains a glyph.
func (md *MasterData) HasGlyph(name string) bool {
	return md.glyphs[name]
}

// User data keys of per-glyph metrics.
const (
	KeyItalicCorrection = "italicCorrection"
	KeyTopAccent        = "topAccent"
	KeyStartConnector   = "startConnector"
	KeyEndConnector     = "endConnector"
)

// Load combines a master data document with per-glyph data of a font source.
// Glyph outlines are expected to be decomposed (see package decompose), as
// advances of variants and parts are measured from them.
func Load(doc *Document, font *glyphs.Font, ms *interp.MasterSet) (*MasterData, error) {
	if ms.Len() == 0 {
		return nil, fmt.Errorf("%w: font has no masters", ErrDocument)
	}
	l := &loader{font: font, ms: ms, md: &MasterData{
		MasterCount:      ms.Len(),
		Constants:        make(map[string]Values, len(doc.MathConstants)),
		ItalicCorrection: make(map[string]Values),
		TopAccent:        make(map[string]Values),
		glyphs:           make(map[string]bool, len(font.Glyphs)),
	}}
	for _, g := range font.Glyphs {
		l.md.glyphs[g.Name] = true
	}
	l.constants(doc)
	l.glyphInfo(doc.MathGlyphInfo.ItalicCorrection, KeyItalicCorrection, l.md.ItalicCorrection)
	l.glyphInfo(doc.MathGlyphInfo.TopAccent, KeyTopAccent, l.md.TopAccent)
	for _, name := range doc.MathGlyphInfo.ExtendedShapes.Expanded() {
		if l.exists(name, "extended shape") {
			l.md.ExtendedShapes = append(l.md.ExtendedShapes, name)
		}
	}
	v := doc.MathVariants
	l.md.Variants[ot.MathVertical] = l.variants(v.VerticalVariants, ot.MathVertical)
	l.md.Variants[ot.MathHorizontal] = l.variants(v.HorizontalVariants, ot.MathHorizontal)
	l.md.Assemblies[ot.MathVertical] = l.assemblies(v.VerticalComponents, ot.MathVertical)
	l.md.Assemblies[ot.MathHorizontal] = l.assemblies(v.HorizontalComponents, ot.MathHorizontal)
	tracer().Infof("master data: %d constants, %d italic corrections, %d top accents, %d extended shapes",
		len(l.md.Constants), len(l.md.ItalicCorrection), len(l.md.TopAccent), len(l.md.ExtendedShapes))
	tracer().Infof("master data: %d/%d vertical/horizontal variants, %d/%d assemblies",
		len(l.md.Variants[0]), len(l.md.Variants[1]), len(l.md.Assemblies[0]), len(l.md.Assemblies[1]))
	return l.md, nil
}

type loader struct {
	font *glyphs.Font
	ms   *interp.MasterSet
	md   *MasterData
}

// complete repairs a list of per-master values. Empty lists mean “no data”
// and are returned as nil. Shorter lists replicate their first value.
func (l *loader) complete(values Values, glyph, what string) Values {
	n := l.ms.Len()
	switch {
	case len(values) == 0:
		return nil
	case len(values) == n:
		return values
	case len(values) > n:
		l.md.warnings.add(Incomplete, glyph, fmt.Sprintf("%s has %d values for %d masters, extra values ignored",
			what, len(values), n))
		return values[:n]
	}
	l.md.warnings.add(Incomplete, glyph, fmt.Sprintf("%s has incomplete values %v for %d masters",
		what, []int(values), n))
	repaired := make(Values, n)
	for i := range repaired {
		repaired[i] = values[0]
	}
	return repaired
}

func (l *loader) exists(glyph, usage string) bool {
	if l.md.glyphs[glyph] {
		return true
	}
	l.md.warnings.add(Mismatch, glyph, fmt.Sprintf("%s not found in font source", usage))
	return false
}

func (l *loader) constants(doc *Document) {
	for _, name := range sortedKeys(doc.MathConstants) {
		values := l.complete(doc.MathConstants[name], "", "constant "+name)
		if name == "MinConnectorOverlap" {
			l.md.MinConnectorOverlap = values
			continue
		}
		l.md.Constants[name] = values
	}
	if len(doc.MathVariants.MinConnectorOverlap) > 0 {
		l.md.MinConnectorOverlap = l.complete(doc.MathVariants.MinConnectorOverlap, "", "MinConnectorOverlap")
	}
}

// glyphInfo fills a glyph info map from the document, then from user data of
// exported glyphs. User data takes precedence.
func (l *loader) glyphInfo(fromDoc map[string]Values, key string, m map[string]Values) {
	for _, name := range sortedKeys(fromDoc) {
		if !l.exists(name, key) {
			continue
		}
		if values := l.complete(fromDoc[name], name, key); values != nil {
			m[name] = values
		}
	}
	for _, g := range l.font.Glyphs {
		if !g.Export {
			continue
		}
		if values := l.complete(l.userData(g, key), g.Name, key); values != nil {
			m[g.Name] = values
		}
	}
}

// userData collects the values of a user data key from the master layers of
// a glyph, in master order. Masters without a value are skipped.
func (l *loader) userData(g *glyphs.Glyph, key string) Values {
	var values Values
	for _, m := range l.ms.Masters() {
		if layer := g.MasterLayer(m.ID); layer != nil {
			if v, ok := layer.UserValue(key); ok {
				values = append(values, int(math.RoundToEven(v)))
			}
		}
	}
	return values
}

// extent measures the size of a glyph per master, in direction dir.
// ok is false if a master layer is missing.
func (l *loader) extent(g *glyphs.Glyph, dir ot.MathDirection) (values Values, ok bool) {
	for _, m := range l.ms.Masters() {
		layer := g.MasterLayer(m.ID)
		if layer == nil {
			return nil, false
		}
		var size float64
		if r, hasOutline := layer.Bounds(); hasOutline {
			size = r.Height()
			if dir == ot.MathHorizontal {
				size = r.Width()
			}
		}
		values = append(values, abs(int(math.RoundToEven(size))))
	}
	return values, true
}

func (l *loader) variants(doc map[string]NameList, dir ot.MathDirection) map[string][]Variant {
	m := make(map[string][]Variant, len(doc))
	for _, base := range sortedKeys(doc) {
		if !l.exists(base, dir.String()+" variants base") {
			continue
		}
		var variants []Variant
		for _, name := range doc[base].Expanded() {
			if !l.exists(name, "variant of "+base) {
				continue
			}
			advance, ok := l.extent(l.font.Glyph(name), dir)
			if !ok {
				l.md.warnings.add(Mismatch, name, "variant glyph lacks master layers")
				continue
			}
			for i := range advance {
				advance[i]++
			}
			variants = append(variants, Variant{Glyph: name, Advance: advance})
		}
		if len(variants) > 0 {
			m[base] = variants
		}
	}
	return m
}

func (l *loader) assemblies(doc map[string]AssemblyDoc, dir ot.MathDirection) map[string]Assembly {
	m := make(map[string]Assembly, len(doc))
	zeros := make(Values, l.ms.Len())
	for _, base := range sortedKeys(doc) {
		if !l.exists(base, dir.String()+" assembly base") {
			continue
		}
		a := doc[base]
		asm := Assembly{Italic: l.complete(a.Italic, base, "assembly italic correction")}
		if asm.Italic == nil {
			asm.Italic = zeros
		}
		valid := len(a.Parts) > 0
		for _, p := range a.Parts {
			part, ok := l.part(base, p, dir)
			if !ok {
				valid = false
				break
			}
			asm.Parts = append(asm.Parts, part)
		}
		if !valid {
			l.md.warnings.add(Mismatch, base, dir.String()+" assembly dropped")
			continue
		}
		m[base] = asm
	}
	return m
}

func (l *loader) part(base string, p PartDoc, dir ot.MathDirection) (Part, bool) {
	if !l.exists(p.Name, "part of "+base) {
		return Part{}, false
	}
	g := l.font.Glyph(p.Name)
	part := Part{Glyph: p.Name, Extender: p.Extender}
	connector := func(explicit Values, key string) Values {
		if v := l.complete(explicit, p.Name, key); v != nil {
			return v
		}
		if v := l.complete(l.userData(g, key), p.Name, key); v != nil {
			return v
		}
		l.md.warnings.add(Incomplete, p.Name, key+" not set, using 0")
		return make(Values, l.ms.Len())
	}
	part.StartConnector = connector(p.StartConnector, KeyStartConnector)
	part.EndConnector = connector(p.EndConnector, KeyEndConnector)
	if part.FullAdvance = l.complete(p.FullAdvance, p.Name, "fullAdvance"); part.FullAdvance == nil {
		advance, ok := l.extent(g, dir)
		if !ok {
			l.md.warnings.add(Mismatch, p.Name, "part glyph lacks master layers")
			return Part{}, false
		}
		part.FullAdvance = advance
	}
	return part, true
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
