package mathtable

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sort"

	"github.com/npillmayer/otmath/ot"
)

// ErrEncoding is returned if a value or an offset does not fit into its
// binary field.
var ErrEncoding = errors.New("cannot encode MATH table")

// GlyphOrder resolves glyph names to glyph IDs of a compiled font.
type GlyphOrder interface {
	GlyphID(name string) (ot.GlyphIndex, bool)
}

// GlyphOrderMap is a GlyphOrder backed by a map.
type GlyphOrderMap map[string]ot.GlyphIndex

// GlyphID returns the glyph ID for a glyph name.
func (m GlyphOrderMap) GlyphID(name string) (ot.GlyphIndex, bool) {
	gid, ok := m[name]
	return gid, ok
}

// Encode writes table t in binary MATH format (version 1.0). Glyphs not
// found in order are left out, with a warning.
func (t *MathTable) Encode(order GlyphOrder) ([]byte, error) {
	w := &writer{}
	if err := t.Constants.encode(w); err != nil {
		return nil, err
	}
	constants := w.buf
	ot.AssertEqualInt("size of MathConstants", len(constants), ot.MathConstantsSize)
	glyphInfo, err := t.encodeGlyphInfo(order)
	if err != nil {
		return nil, err
	}
	variants, err := t.encodeVariants(order)
	if err != nil {
		return nil, err
	}
	hdr := &writer{}
	hdr.u16(1) // majorVersion
	hdr.u16(0) // minorVersion
	off := 10
	for _, sub := range [][]byte{constants, glyphInfo} {
		if err := hdr.offset("MATH subtable", off); err != nil {
			return nil, err
		}
		off += len(sub)
	}
	if err := hdr.offset("MathVariants", off); err != nil {
		return nil, err
	}
	out := append(hdr.buf, constants...)
	out = append(out, glyphInfo...)
	out = append(out, variants...)
	tracer().Debugf("encoded MATH table: %d bytes", len(out))
	return out, nil
}

// --- Glyph records ---------------------------------------------------------

type glyphRecord[T any] struct {
	gid   ot.GlyphIndex
	name  string
	value T
}

// resolve maps glyph names to glyph IDs and sorts the records by glyph ID.
// Both coverage tables and value arrays are written from the resulting slice.
func resolve[T any](t *MathTable, order GlyphOrder, what string, m map[string]T) []glyphRecord[T] {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	recs := make([]glyphRecord[T], 0, len(names))
	for _, name := range names {
		gid, ok := order.GlyphID(name)
		if !ok {
			t.warn(name, what+": glyph not in font")
			continue
		}
		recs = append(recs, glyphRecord[T]{gid: gid, name: name, value: m[name]})
	}
	sort.SliceStable(recs, func(i, j int) bool { return recs[i].gid < recs[j].gid })
	unique := recs[:0]
	for i, r := range recs {
		if i > 0 && r.gid == recs[i-1].gid {
			t.warn(r.name, fmt.Sprintf("%s: glyph ID %d already taken by %s", what, r.gid, recs[i-1].name))
			continue
		}
		unique = append(unique, r)
	}
	return unique
}

func gids[T any](recs []glyphRecord[T]) []ot.GlyphIndex {
	g := make([]ot.GlyphIndex, len(recs))
	for i, r := range recs {
		g[i] = r.gid
	}
	return g
}

// assertAligned re-checks that coverage order equals value order.
func assertAligned[T any](what string, coverage []ot.GlyphIndex, recs []glyphRecord[T]) {
	ot.AssertEqualInt(what+" coverage/value count", len(coverage), len(recs))
	for i, r := range recs {
		ot.AssertEqualInt(what+" coverage/value order", int(coverage[i]), int(r.gid))
		if i > 0 && coverage[i] <= coverage[i-1] {
			panic(fmt.Sprintf("assertion [%s coverage sorted] failed at index %d", what, i))
		}
	}
}

// --- MathGlyphInfo ---------------------------------------------------------

func (t *MathTable) encodeGlyphInfo(order GlyphOrder) ([]byte, error) {
	italics, err := t.encodeValueTable(order, "italic correction", t.ItalicCorrection)
	if err != nil {
		return nil, err
	}
	accents, err := t.encodeValueTable(order, "top accent", t.TopAccent)
	if err != nil {
		return nil, err
	}
	shapes := make(map[string]struct{}, len(t.ExtendedShapes))
	for _, name := range t.ExtendedShapes {
		shapes[name] = struct{}{}
	}
	var extended []byte
	if recs := resolve(t, order, "extended shape", shapes); len(recs) > 0 {
		extended = encodeCoverage(gids(recs))
	}
	w := &writer{}
	off := 8
	if err = w.offset("MathItalicsCorrectionInfo", off); err != nil {
		return nil, err
	}
	off += len(italics)
	if err = w.offset("MathTopAccentAttachment", off); err != nil {
		return nil, err
	}
	off += len(accents)
	if extended == nil {
		w.u16(0)
	} else if err = w.offset("ExtendedShapeCoverage", off); err != nil {
		return nil, err
	}
	w.u16(0) // MathKernInfo
	w.buf = append(w.buf, italics...)
	w.buf = append(w.buf, accents...)
	w.buf = append(w.buf, extended...)
	return w.buf, nil
}

// encodeValueTable writes a coverage table with a parallel array of
// MathValueRecords, as used for italic corrections and top accents.
func (t *MathTable) encodeValueTable(order GlyphOrder, what string, m map[string]int) ([]byte, error) {
	recs := resolve(t, order, what, m)
	coverage := gids(recs)
	assertAligned(what, coverage, recs)
	w := &writer{}
	if err := w.offset(what+" coverage", 4+4*len(recs)); err != nil {
		return nil, err
	}
	w.u16(uint16(len(recs)))
	for _, r := range recs {
		if err := w.valueRecord(what+" of "+r.name, r.value); err != nil {
			return nil, err
		}
	}
	w.buf = append(w.buf, encodeCoverage(coverage)...)
	return w.buf, nil
}

// --- MathVariants ----------------------------------------------------------

type construction struct {
	variants []Variant
	assembly *Assembly
}

func (t *MathTable) constructions(dir ot.MathDirection) map[string]construction {
	m := make(map[string]construction)
	for base, vs := range t.Variants[dir] {
		c := m[base]
		c.variants = vs
		m[base] = c
	}
	for base, a := range t.Assemblies[dir] {
		c := m[base]
		c.assembly = &a
		m[base] = c
	}
	return m
}

func (t *MathTable) encodeVariants(order GlyphOrder) ([]byte, error) {
	var recs [2][]glyphRecord[construction]
	var coverages [2][]byte
	for _, dir := range []ot.MathDirection{ot.MathVertical, ot.MathHorizontal} {
		recs[dir] = resolve(t, order, dir.String()+" construction", t.constructions(dir))
		if len(recs[dir]) > 0 {
			coverages[dir] = encodeCoverage(gids(recs[dir]))
		}
		assertAligned(dir.String()+" construction", gids(recs[dir]), recs[dir])
	}
	var bodies [2][][]byte
	for dir := range recs {
		for _, r := range recs[dir] {
			body, err := t.encodeConstruction(order, ot.MathDirection(dir), r.name, r.value)
			if err != nil {
				return nil, err
			}
			bodies[dir] = append(bodies[dir], body)
		}
	}
	w := &writer{}
	if err := w.uint16("MinConnectorOverlap", t.MinConnectorOverlap); err != nil {
		return nil, err
	}
	off := 10 + 2*(len(recs[0])+len(recs[1]))
	for dir := range coverages {
		if coverages[dir] == nil {
			w.u16(0)
			continue
		}
		if err := w.offset("construction coverage", off); err != nil {
			return nil, err
		}
		off += len(coverages[dir])
	}
	w.u16(uint16(len(recs[0])))
	w.u16(uint16(len(recs[1])))
	for dir := range bodies {
		for _, body := range bodies[dir] {
			if err := w.offset("MathGlyphConstruction", off); err != nil {
				return nil, err
			}
			off += len(body)
		}
	}
	w.buf = append(w.buf, coverages[0]...)
	w.buf = append(w.buf, coverages[1]...)
	for dir := range bodies {
		for _, body := range bodies[dir] {
			w.buf = append(w.buf, body...)
		}
	}
	return w.buf, nil
}

// encodeConstruction writes a MathGlyphConstruction, followed by its
// GlyphAssembly, if any.
func (t *MathTable) encodeConstruction(order GlyphOrder, dir ot.MathDirection, base string,
	c construction) ([]byte, error) {
	//
	var variants []byte
	count := 0
	for _, v := range c.variants {
		gid, ok := order.GlyphID(v.Glyph)
		if !ok {
			t.warn(v.Glyph, fmt.Sprintf("%s variant of %s: glyph not in font", dir, base))
			continue
		}
		vw := &writer{}
		vw.u16(uint16(gid))
		if err := vw.uint16(fmt.Sprintf("advance of variant %s", v.Glyph), v.Advance); err != nil {
			return nil, err
		}
		variants = append(variants, vw.buf...)
		count++
	}
	var assembly []byte
	if c.assembly != nil {
		var err error
		if assembly, err = t.encodeAssembly(order, dir, base, c.assembly); err != nil {
			return nil, err
		}
	}
	w := &writer{}
	if assembly == nil {
		w.u16(0)
	} else if err := w.offset("GlyphAssembly", 4+len(variants)); err != nil {
		return nil, err
	}
	w.u16(uint16(count))
	w.buf = append(w.buf, variants...)
	w.buf = append(w.buf, assembly...)
	return w.buf, nil
}

// encodeAssembly writes a GlyphAssembly. If a part glyph is missing from
// order, the assembly is left out and nil is returned.
func (t *MathTable) encodeAssembly(order GlyphOrder, dir ot.MathDirection, base string,
	a *Assembly) ([]byte, error) {
	//
	w := &writer{}
	if err := w.valueRecord("assembly italic correction of "+base, a.Italic); err != nil {
		return nil, err
	}
	w.u16(uint16(len(a.Parts)))
	for _, p := range a.Parts {
		gid, ok := order.GlyphID(p.Glyph)
		if !ok {
			t.warn(p.Glyph, fmt.Sprintf("part of %s assembly of %s: glyph not in font, assembly dropped", dir, base))
			return nil, nil
		}
		w.u16(uint16(gid))
		for _, f := range []struct {
			name  string
			value int
		}{
			{"startConnectorLength", p.StartConnector},
			{"endConnectorLength", p.EndConnector},
			{"fullAdvance", p.FullAdvance},
		} {
			if err := w.uint16(f.name+" of part "+p.Glyph, f.value); err != nil {
				return nil, err
			}
		}
		w.u16(p.Flags())
	}
	return w.buf, nil
}

// --- Coverage --------------------------------------------------------------

// encodeCoverage writes a coverage table for sorted glyph IDs, in format 1
// (glyph array) or 2 (range records), whichever is smaller.
func encodeCoverage(glyphs []ot.GlyphIndex) []byte {
	type rng struct{ start, end, index ot.GlyphIndex }
	var ranges []rng
	for i, g := range glyphs {
		if n := len(ranges); n > 0 && ranges[n-1].end+1 == g {
			ranges[n-1].end = g
			continue
		}
		ranges = append(ranges, rng{start: g, end: g, index: ot.GlyphIndex(i)})
	}
	w := &writer{}
	if 6*len(ranges) < 2*len(glyphs) {
		w.u16(2)
		w.u16(uint16(len(ranges)))
		for _, r := range ranges {
			w.u16(uint16(r.start))
			w.u16(uint16(r.end))
			w.u16(uint16(r.index))
		}
		return w.buf
	}
	w.u16(1)
	w.u16(uint16(len(glyphs)))
	for _, g := range glyphs {
		w.u16(uint16(g))
	}
	return w.buf
}

// --- Writer ----------------------------------------------------------------

type writer struct {
	buf []byte
}

func (w *writer) u16(v uint16) {
	w.buf = binary.BigEndian.AppendUint16(w.buf, v)
}

func (w *writer) int16(name string, v int) error {
	if v < -0x8000 || v > 0x7fff {
		return fmt.Errorf("%w: %s = %d out of range for int16", ErrEncoding, name, v)
	}
	w.u16(uint16(int16(v)))
	return nil
}

func (w *writer) uint16(name string, v int) error {
	if v < 0 || v > 0xffff {
		return fmt.Errorf("%w: %s = %d out of range for uint16", ErrEncoding, name, v)
	}
	w.u16(uint16(v))
	return nil
}

// valueRecord writes a MathValueRecord without device table.
func (w *writer) valueRecord(name string, v int) error {
	if err := w.int16(name, v); err != nil {
		return err
	}
	w.u16(0)
	return nil
}

func (w *writer) offset(name string, off int) error {
	if off > 0xffff {
		return fmt.Errorf("%w: offset to %s overflows (%d)", ErrEncoding, name, off)
	}
	w.u16(uint16(off))
	return nil
}
