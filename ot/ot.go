package ot

import (
	"sort"
)

// Font represents the table directory of an OpenType font, together with typed
// views onto the tables this module interprets ('head', 'maxp' and 'MATH').
// All other tables are kept as opaque byte segments, which is all we need to
// re-assemble a font after replacing one of its tables.
type Font struct {
	Header *FontHeader
	tables map[Tag]Table
	binary []byte      // original font data, tables are views into it
	Math   *MathTable  // typed access to MATH, if present
	issues []FontIssue // tolerated problems found while parsing
}

// ParseOption guides and influences the parsing of the font.
type ParseOption int

const (
	// IsTestfont relaxes the check for tables every OpenType font has to provide.
	// Fonts synthesized for tests usually carry just the tables under test.
	IsTestfont ParseOption = iota
)

// FontHeader is the offset table at the start of an SFNT file.
//
// OpenType fonts that contain TrueType outlines should use the value of 0x00010000
// for the FontType. OpenType fonts containing CFF data (version 1 or 2) should
// use 0x4F54544F ('OTTO', when re-interpreted as a Tag).
type FontHeader struct {
	FontType   uint32
	TableCount uint16
}

// Font types for FontHeader.FontType.
const (
	FontTypeTrueType uint32 = 0x00010000
	FontTypeCFF      uint32 = 0x4f54544f // OTTO
	FontTypeApple    uint32 = 0x74727565 // true
)

// Table returns the font table for a given tag. If a table for a tag cannot
// be found in the font, nil is returned.
//
// For example, to receive the typed 'MATH' table, clients may call
//
//	math := otf.Table(ot.T("MATH")).Self().AsMath()
//
// Table tag names are case-sensitive, following the names in the OpenType specification.
func (otf *Font) Table(tag Tag) Table {
	if t, ok := otf.tables[tag]; ok {
		return t
	}
	return nil
}

// TableTags returns a list of tags, one for each table contained in the font.
// Tags are sorted in ascending order, as they appear in the table directory.
func (otf *Font) TableTags() []Tag {
	var tags = make([]Tag, 0, len(otf.tables))
	for tag := range otf.tables {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })
	return tags
}

// Binary returns the font data the font has been parsed from.
func (otf *Font) Binary() []byte {
	return otf.binary
}

// NumGlyphs returns the number of glyphs as stated by table 'maxp',
// or 0 if 'maxp' is missing.
func (otf *Font) NumGlyphs() int {
	if t := otf.Table(T("maxp")); t != nil {
		if maxp := t.Self().AsMaxP(); maxp != nil {
			return maxp.NumGlyphs
		}
	}
	return 0
}

// Issues returns the problems found while parsing which did not keep the
// font from being parsed, e.g. missing tables or checksum mismatches.
func (otf *Font) Issues() []FontIssue {
	return otf.issues
}

// GlyphIndex is a glyph index in a font.
type GlyphIndex uint16

// --- Tag -------------------------------------------------------------------

// Tag is defined by OpenType as:
// Array of four uint8s (length = 32 bits) used to identify a table, design-variation axis,
// script, language system, feature, or baseline
type Tag uint32

// MakeTag creates a Tag from 4 bytes, e.g.,
// If b is shorter or longer, it will be silently extended or cut as appropriate
//
//	MakeTag([]byte("MATH"))
func MakeTag(b []byte) Tag {
	if b == nil {
		b = []byte{0, 0, 0, 0}
	} else if len(b) > 4 {
		b = b[:4]
	} else if len(b) < 4 {
		b = append([]byte{0, 0, 0, 0}[:4-len(b)], b...)
	}
	return Tag(u32(b))
}

// T returns a Tag from a (4-letter) string.
// If t is shorter or longer, it will be silently extended or cut as appropriate
func T(t string) Tag {
	t = (t + "    ")[:4]
	return Tag(u32([]byte(t)))
}

func (t Tag) String() string {
	bytes := []byte{
		byte(t >> 24 & 0xff),
		byte(t >> 16 & 0xff),
		byte(t >> 8 & 0xff),
		byte(t & 0xff),
	}
	return string(bytes)
}

// --- Table -----------------------------------------------------------------

// Table represents one of the various OpenType font tables.
//
// Only a few tables are interpreted: 'head' and 'maxp' for general font
// information and 'MATH' for math layout data. Every other table is available
// as a generic table, i.e. as a view onto its bytes.
type Table interface {
	Extent() (uint32, uint32) // offset and byte size within the font's binary data
	Binary() []byte           // the bytes of this table; should be treatet as read-only by clients
	Self() TableSelf          // reference to itself
}

func newTable(tag Tag, b binarySegm, offset, size uint32) *genericTable {
	t := &genericTable{tableBase{
		data:   b,
		name:   tag,
		offset: offset,
		length: size,
	},
	}
	t.self = t
	return t
}

type genericTable struct {
	tableBase
}

// tableBase is a common parent for all kinds of OpenType tables.
type tableBase struct {
	data   binarySegm // a table is a slice of font data
	name   Tag        // 4-byte name as an integer
	offset uint32     // from offset
	length uint32     // to offset + length
	self   any
}

// Extent returns offset and byte size of this table within the OpenType font.
func (tb *tableBase) Extent() (uint32, uint32) {
	return tb.offset, tb.length
}

// Binary returns the bytes of this table. Should be treatet as read-only by
// clients, as it is a view into the original data.
func (tb *tableBase) Binary() []byte {
	return tb.data
}

func (tb *tableBase) Self() TableSelf {
	return TableSelf{tableBase: tb}
}

// TableSelf is a reference to a table. Its primary use is for converting
// a generic table to a concrete table flavour, and for reproducing the
// name tag of a table.
type TableSelf struct {
	tableBase *tableBase
}

// NameTag returns the 4-letter name of a table.
func (tself TableSelf) NameTag() Tag {
	return tself.tableBase.name
}

func safeSelf(tself TableSelf) any {
	if tself.tableBase == nil || tself.tableBase.self == nil {
		return TableSelf{}
	}
	return tself.tableBase.self
}

// AsHead returns this table as a head table, or nil.
func (tself TableSelf) AsHead() *HeadTable {
	if k, ok := safeSelf(tself).(*HeadTable); ok {
		return k
	}
	return nil
}

// AsMaxP returns this table as a maxp table, or nil.
func (tself TableSelf) AsMaxP() *MaxPTable {
	if k, ok := safeSelf(tself).(*MaxPTable); ok {
		return k
	}
	return nil
}

// AsMath returns this table as a MATH table, or nil.
func (tself TableSelf) AsMath() *MathTable {
	if k, ok := safeSelf(tself).(*MathTable); ok {
		return k
	}
	return nil
}

// --- Head table ------------------------------------------------------------

// HeadTable gives global information about the font.
// Only a small subset of fields is interpreted.
type HeadTable struct {
	tableBase
	Flags              uint16
	UnitsPerEm         uint16
	CheckSumAdjustment uint32
	IndexToLocFormat   uint16 // needed to interpret loca table
}

func newHeadTable(tag Tag, b binarySegm, offset, size uint32) *HeadTable {
	t := &HeadTable{}
	base := tableBase{
		data:   b,
		name:   tag,
		offset: offset,
		length: size,
	}
	t.tableBase = base
	t.self = t
	return t
}

// --- MaxP table ------------------------------------------------------------

// MaxPTable establishes the memory requirements for this font.
type MaxPTable struct {
	tableBase
	NumGlyphs int
}

func newMaxPTable(tag Tag, b binarySegm, offset, size uint32) *MaxPTable {
	t := &MaxPTable{}
	base := tableBase{
		data:   b,
		name:   tag,
		offset: offset,
		length: size,
	}
	t.tableBase = base
	t.self = t
	return t
}
