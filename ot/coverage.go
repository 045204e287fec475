package ot

import "sort"

// --- Coverage tables -------------------------------------------------------

// Coverage denotes an indexed set of glyphs.
// Tables of MATH pair a Coverage with a parallel array of records: the
// coverage index of a glyph is the position of its record in that array.
type Coverage struct {
	coverageHeader
	GlyphRange GlyphRange
}

// Match returns the Coverage Index for a glyph, and true if present.
func (c Coverage) Match(g GlyphIndex) (int, bool) {
	if c.GlyphRange == nil {
		return 0, false
	}
	return c.GlyphRange.Match(g)
}

// Contains reports whether a glyph is present in the coverage.
func (c Coverage) Contains(g GlyphIndex) bool {
	_, ok := c.Match(g)
	return ok
}

// Glyphs returns the covered glyphs in coverage index order.
func (c Coverage) Glyphs() []GlyphIndex {
	if c.GlyphRange == nil {
		return nil
	}
	return c.GlyphRange.Glyphs()
}

// Len returns the number of glyphs covered.
func (c Coverage) Len() int {
	return len(c.Glyphs())
}

type coverageHeader struct {
	CoverageFormat uint16
	Count          uint16
}

// GlyphRange is the lookup structure behind a coverage table.
// If an input glyph g is contained in the range, its index and true is returned,
// false otherwise.
type GlyphRange interface {
	Match(g GlyphIndex) (int, bool) // is glyph ID g in range?
	Glyphs() []GlyphIndex           // all glyphs, in index order
	ByteSize() int
}

// parseCoverage reads a coverage table of format 1 or 2.
// Malformed tables result in an empty coverage and an error.
func parseCoverage(b binarySegm) (Coverage, error) {
	tracer().Debugf("parsing Coverage")
	h := coverageHeader{}
	var err error
	if h.CoverageFormat, err = b.u16(0); err != nil {
		return Coverage{}, err
	}
	if h.Count, err = b.u16(2); err != nil {
		return Coverage{}, err
	}
	tracer().Debugf("coverage header format %d has count = %d ", h.CoverageFormat, h.Count)
	switch h.CoverageFormat {
	case 1:
		// Format 1: array of glyph IDs (2 bytes each)
		data, err := b.view(4, int(h.Count)*2)
		if err != nil && h.Count > 0 {
			tracer().Errorf("coverage format 1 extends beyond bounds")
			return Coverage{}, errFontFormat("coverage format 1 extends beyond bounds")
		}
		return Coverage{
			coverageHeader: h,
			GlyphRange:     &glyphRangeArray{count: int(h.Count), data: data},
		}, nil
	case 2:
		// Format 2: array of range records (6 bytes each: start, end, startCoverageIndex)
		data, err := b.view(4, int(h.Count)*6)
		if err != nil && h.Count > 0 {
			tracer().Errorf("coverage format 2 extends beyond bounds")
			return Coverage{}, errFontFormat("coverage format 2 extends beyond bounds")
		}
		return Coverage{
			coverageHeader: h,
			GlyphRange:     &glyphRangeRecords{count: int(h.Count), data: data},
		}, nil
	}
	tracer().Errorf("unknown coverage format %d", h.CoverageFormat)
	return Coverage{}, errFontFormat("unknown coverage format")
}

// glyphRangeArrays have entries stored as a block of consecutive, sorted keys.
// They return the index of the key in the range table.
type glyphRangeArray struct {
	count int // number of glyph keys
	data  binarySegm
}

func (r *glyphRangeArray) Match(g GlyphIndex) (int, bool) {
	i := sort.Search(r.count, func(i int) bool {
		return GlyphIndex(r.data.U16(i*2)) >= g
	})
	if i < r.count && GlyphIndex(r.data.U16(i*2)) == g {
		return i, true
	}
	return 0, false
}

func (r *glyphRangeArray) Glyphs() []GlyphIndex {
	glyphs := make([]GlyphIndex, r.count)
	for i := range r.count {
		glyphs[i] = GlyphIndex(r.data.U16(i * 2))
	}
	return glyphs
}

func (r *glyphRangeArray) ByteSize() int {
	return 4 + r.count*2
}

type rangeRecord struct {
	from, to GlyphIndex
	index    uint16
}

// glyphRangeRecords have entries stored as range records.
type glyphRangeRecords struct {
	count int // number of range records
	data  binarySegm
}

func (r *glyphRangeRecords) record(i int) rangeRecord {
	return rangeRecord{
		from:  GlyphIndex(r.data.U16(i * 6)),
		to:    GlyphIndex(r.data.U16(i*6 + 2)),
		index: r.data.U16(i*6 + 4),
	}
}

func (r *glyphRangeRecords) Match(g GlyphIndex) (int, bool) {
	i := sort.Search(r.count, func(i int) bool {
		return r.record(i).to >= g
	})
	if i < r.count {
		if rec := r.record(i); rec.from <= g {
			return int(rec.index) + int(g-rec.from), true
		}
	}
	return 0, false
}

func (r *glyphRangeRecords) Glyphs() []GlyphIndex {
	var glyphs []GlyphIndex
	for i := range r.count {
		rec := r.record(i)
		for g := int(rec.from); g <= int(rec.to); g++ {
			glyphs = append(glyphs, GlyphIndex(g))
		}
	}
	return glyphs
}

func (r *glyphRangeRecords) ByteSize() int {
	return 4 + r.count*6
}
