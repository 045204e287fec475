package ot

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"slices"
)

// Code comment often will cite passage from the
// OpenType specification version 1.9;
// see https://learn.microsoft.com/en-us/typography/opentype/spec/.

// ---------------------------------------------------------------------------

// checkedMulInt checks for overflow in multiplication of two integers
func checkedMulInt(a, b int) (int, error) {
	if a == 0 || b == 0 {
		return 0, nil
	}
	if a > 0 && b > 0 && a > math.MaxInt/b {
		return 0, fmt.Errorf("integer overflow: %d * %d", a, b)
	}
	if a < 0 && b < 0 && a < math.MaxInt/b {
		return 0, fmt.Errorf("integer overflow: %d * %d", a, b)
	}
	if (a < 0 && b > 0 && a < math.MinInt/b) || (a > 0 && b < 0 && b < math.MinInt/a) {
		return 0, fmt.Errorf("integer overflow: %d * %d", a, b)
	}
	return a * b, nil
}

// checkedAddUint32 checks for overflow in addition of two uint32 values
func checkedAddUint32(a, b uint32) (uint32, error) {
	if a > math.MaxUint32-b {
		return 0, fmt.Errorf("integer overflow: %d + %d", a, b)
	}
	return a + b, nil
}

// ---------------------------------------------------------------------------

// errFontFormat produces user level errors for font parsing.
func errFontFormat(message string) error {
	return fmt.Errorf("OpenType font format: %s", message)
}

// ---------------------------------------------------------------------------

// Parse parses an OpenType font from a byte slice.
// An ot.Font needs ongoing access to the fonts byte-data after the Parse function returns.
// Its elements are assumed immutable while the ot.Font remains in use.
func Parse(font []byte, opts ...ParseOption) (*Font, error) {
	// https://www.microsoft.com/typography/otspec/otff.htm: Offset Table is 12 bytes.
	r := bytes.NewReader(font)
	h := FontHeader{}
	if err := binary.Read(r, binary.BigEndian, &h); err != nil {
		return nil, err
	}
	tracer().Debugf("header = %v, tag = %x|%s", h, h.FontType, Tag(h.FontType).String())

	if !(h.FontType == FontTypeCFF || h.FontType == FontTypeTrueType || h.FontType == FontTypeApple) {
		return nil, fontError(0, "Header", fmt.Sprintf("font type not supported: %x", h.FontType), 0)
	}
	otf := &Font{Header: &h, tables: make(map[Tag]Table), binary: font}
	src := binarySegm(font)
	// "The Offset Table is followed immediately by the Table Record entries …
	// sorted in ascending order by tag", 16 bytes each.
	tableRecordsSize, err := checkedMulInt(16, int(h.TableCount))
	if err != nil {
		return nil, fontError(0, "TableRecords", fmt.Sprintf("table count too large: %v", err), 12)
	}
	buf, err := src.view(12, tableRecordsSize)
	if err != nil {
		return nil, fontError(0, "TableRecords", "table record entries truncated", 12)
	}
	for b, prevTag := buf, Tag(0); len(b) > 0; b = b[16:] {
		tag := MakeTag(b)
		if tag < prevTag {
			return nil, fontError(0, "TableRecords", "table records not sorted by tag", 12)
		}
		prevTag = tag
		checksum, off, size := u32(b[4:8]), u32(b[8:12]), u32(b[12:16])
		if off&3 != 0 { // "all tables must begin on four byte boundries".
			return nil, fontError(tag, "Offset", "table offset not aligned", off)
		}
		tableEnd, err := checkedAddUint32(off, size)
		if err != nil {
			return nil, fontError(tag, "Size", fmt.Sprintf("size calculation overflow: %v", err), off)
		}
		if off > uint32(len(src)) || tableEnd > uint32(len(src)) {
			return nil, fontError(tag, "Bounds", fmt.Sprintf("bounds [%d:%d] exceed font size %d", off, tableEnd, len(src)), off)
		}
		if tag != T("head") && TableChecksum(src[off:tableEnd]) != checksum {
			otf.issues = append(otf.issues, FontIssue{Table: tag, Issue: "table checksum mismatch", Offset: off})
		}
		otf.tables[tag], err = parseTable(tag, src[off:tableEnd], off, size)
		if err != nil {
			return nil, err
		}
	}
	if err := checkRequiredTables(otf, slices.Contains(opts, IsTestfont)); err != nil {
		return nil, err
	}
	if t := otf.Table(T("MATH")); t != nil {
		otf.Math = t.Self().AsMath()
	}
	return otf, nil
}

// According to the OpenType spec, the following tables are
// required for the font to function correctly.
var RequiredTables = []string{
	"cmap", "head", "hhea", "hmtx", "maxp", "name", "OS/2", "post",
}

// We need 'head' and 'maxp' to work with a font at all; missing other required
// tables is reported, but tolerated.
func checkRequiredTables(otf *Font, relaxed bool) error {
	for _, tag := range []string{"head", "maxp"} {
		if otf.tables[T(tag)] == nil {
			return fontError(T(tag), "Missing", "missing required table", 0)
		}
	}
	if relaxed {
		return nil
	}
	for _, tag := range RequiredTables {
		if otf.tables[T(tag)] == nil {
			otf.issues = append(otf.issues, FontIssue{Table: T(tag), Issue: "missing required table"})
		}
	}
	return nil
}

func parseTable(t Tag, b binarySegm, offset, size uint32) (Table, error) {
	switch t {
	case T("head"):
		return parseHead(t, b, offset, size)
	case T("maxp"):
		return parseMaxP(t, b, offset, size)
	case T("MATH"):
		return parseMath(t, b, offset, size)
	}
	tracer().Debugf("font contains table (%s), will not be interpreted", t)
	return newTable(t, b, offset, size), nil
}

// --- Head table ------------------------------------------------------------

func parseHead(tag Tag, b binarySegm, offset, size uint32) (Table, error) {
	if size < 54 {
		return nil, fontError(tag, "Size", fmt.Sprintf("head table too small: %d bytes (need 54)", size), offset)
	}
	t := newHeadTable(tag, b, offset, size)
	t.CheckSumAdjustment, _ = b.u32(8)
	t.Flags, _ = b.u16(16)      // flags
	t.UnitsPerEm, _ = b.u16(18) // units per em
	// IndexToLocFormat is needed to interpret the loca table:
	// 0 for short offsets, 1 for long
	t.IndexToLocFormat, _ = b.u16(50)
	return t, nil
}

// --- MaxP table ------------------------------------------------------------

// This table establishes the memory requirements for this font. Fonts with CFF data
// must use Version 0.5 of this table, specifying only the numGlyphs field. Fonts
// with TrueType outlines must use Version 1.0 of this table, where all data is required.
func parseMaxP(tag Tag, b binarySegm, offset, size uint32) (Table, error) {
	if size < 6 {
		return nil, fontError(tag, "Size", fmt.Sprintf("maxp table too small: %d bytes (need 6)", size), offset)
	}
	t := newMaxPTable(tag, b, offset, size)
	n, _ := b.u16(4)
	t.NumGlyphs = int(n)
	return t, nil
}
