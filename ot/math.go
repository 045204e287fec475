package ot

import (
	"fmt"
)

// --- MATH table ------------------------------------------------------------

// The mathematical typesetting table (MATH) provides data used by math layout
// engines: global constants (MathConstants), glyph-specific metrics (MathGlyphInfo)
// and size variants and assemblies of stretchy glyphs (MathVariants).
//
// From the OpenType MATH documentation: “The MATH table is organized in a hierarchical structure. The
// top level table contains offsets to three subtables, each of which is located
// after the header. Offsets are from the beginning of the MATH header.”

// MathConstantNames lists the fields of table MathConstants, in table order.
// The first four and the last entry are plain integers, all others are
// MathValueRecords.
var MathConstantNames = [MathConstantsCount]string{
	"ScriptPercentScaleDown",
	"ScriptScriptPercentScaleDown",
	"DelimitedSubFormulaMinHeight",
	"DisplayOperatorMinHeight",
	"MathLeading",
	"AxisHeight",
	"AccentBaseHeight",
	"FlattenedAccentBaseHeight",
	"SubscriptShiftDown",
	"SubscriptTopMax",
	"SubscriptBaselineDropMin",
	"SuperscriptShiftUp",
	"SuperscriptShiftUpCramped",
	"SuperscriptBottomMin",
	"SuperscriptBaselineDropMax",
	"SubSuperscriptGapMin",
	"SuperscriptBottomMaxWithSubscript",
	"SpaceAfterScript",
	"UpperLimitGapMin",
	"UpperLimitBaselineRiseMin",
	"LowerLimitGapMin",
	"LowerLimitBaselineDropMin",
	"StackTopShiftUp",
	"StackTopDisplayStyleShiftUp",
	"StackBottomShiftDown",
	"StackBottomDisplayStyleShiftDown",
	"StackGapMin",
	"StackDisplayStyleGapMin",
	"StretchStackTopShiftUp",
	"StretchStackBottomShiftDown",
	"StretchStackGapAboveMin",
	"StretchStackGapBelowMin",
	"FractionNumeratorShiftUp",
	"FractionNumeratorDisplayStyleShiftUp",
	"FractionDenominatorShiftDown",
	"FractionDenominatorDisplayStyleShiftDown",
	"FractionNumeratorGapMin",
	"FractionNumDisplayStyleGapMin",
	"FractionRuleThickness",
	"FractionDenominatorGapMin",
	"FractionDenomDisplayStyleGapMin",
	"SkewedFractionHorizontalGap",
	"SkewedFractionVerticalGap",
	"OverbarVerticalGap",
	"OverbarRuleThickness",
	"OverbarExtraAscender",
	"UnderbarVerticalGap",
	"UnderbarRuleThickness",
	"UnderbarExtraDescender",
	"RadicalVerticalGap",
	"RadicalDisplayStyleVerticalGap",
	"RadicalRuleThickness",
	"RadicalExtraAscender",
	"RadicalKernBeforeDegree",
	"RadicalKernAfterDegree",
	"RadicalDegreeBottomRaisePercent",
}

// Sizes of MATH structures.
const (
	MathConstantsCount    = 56
	MathConstantsSize     = 4*2 + 51*4 + 2
	mathHeaderSize        = 10
	mathValueRecordSize   = 4
	mathVariantRecordSize = 4
	mathPartRecordSize    = 10
)

// Part flags of GlyphPartRecord.
const (
	PartFlagExtender uint16 = 0x0001
	PartFlagReserved uint16 = 0xFFFE
)

// MathConstantIsRecord reports whether constant i is stored as a MathValueRecord
// (as opposed to a plain integer).
func MathConstantIsRecord(i int) bool {
	return i >= 4 && i < MathConstantsCount-1
}

// MathConstantOffset returns the byte offset of constant i within table MathConstants.
func MathConstantOffset(i int) int {
	switch {
	case i < 4:
		return i * 2
	case i < MathConstantsCount-1:
		return 8 + (i-4)*mathValueRecordSize
	}
	return 8 + 51*mathValueRecordSize
}

// MathConstantIndex returns the table position of a MathConstants field name.
func MathConstantIndex(name string) (int, bool) {
	for i, n := range MathConstantNames {
		if n == name {
			return i, true
		}
	}
	return -1, false
}

// MathDirection selects one of the two sets of glyph constructions in MathVariants.
type MathDirection int

const (
	MathVertical MathDirection = iota
	MathHorizontal
)

func (d MathDirection) String() string {
	if d == MathHorizontal {
		return "horizontal"
	}
	return "vertical"
}

// MathTable is a typed view onto table MATH.
type MathTable struct {
	tableBase
	major, minor        uint16
	constants           binarySegm
	italics             mathValueTable
	topAccents          mathValueTable
	extendedShapes      Coverage
	hasKernInfo         bool
	minConnectorOverlap uint16
	constructions       [2]constructionTable
}

func newMathTable(tag Tag, b binarySegm, offset, size uint32) *MathTable {
	t := &MathTable{}
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

// mathValueTable is a coverage paired with a parallel array of MathValueRecords,
// as used for italics correction and top accent attachment.
type mathValueTable struct {
	coverage Coverage
	records  binarySegm
	count    int
}

func (mvt mathValueTable) value(i int) int16 {
	return mvt.records.I16(i * mathValueRecordSize)
}

func (mvt mathValueTable) lookup(g GlyphIndex) Option[int16] {
	if inx, ok := mvt.coverage.Match(g); ok && inx < mvt.count {
		return Some(mvt.value(inx))
	}
	return None[int16]()
}

func (mvt mathValueTable) values() []int16 {
	v := make([]int16, mvt.count)
	for i := range v {
		v[i] = mvt.value(i)
	}
	return v
}

// constructionTable holds the coverage and offsets of MathGlyphConstructions
// for one direction.
type constructionTable struct {
	coverage Coverage
	offsets  binarySegm
	count    int
	base     binarySegm // MathVariants; offsets are relative to it
}

// MathGlyphVariant is a size variant of a glyph.
type MathGlyphVariant struct {
	Glyph   GlyphIndex
	Advance uint16
}

// GlyphPart is a part of a glyph assembly.
type GlyphPart struct {
	Glyph          GlyphIndex
	StartConnector uint16
	EndConnector   uint16
	FullAdvance    uint16
	Flags          uint16
}

// IsExtender reports whether the part may be repeated.
func (p GlyphPart) IsExtender() bool {
	return p.Flags&PartFlagExtender != 0
}

// GlyphAssembly describes how to build a stretched glyph from parts.
type GlyphAssembly struct {
	ItalicsCorrection int16
	Parts             []GlyphPart
}

// MathGlyphConstruction holds the variants and the optional assembly of a glyph.
type MathGlyphConstruction struct {
	Variants []MathGlyphVariant
	Assembly Option[GlyphAssembly]
}

func parseMath(tag Tag, b binarySegm, offset, size uint32) (Table, error) {
	if size < mathHeaderSize {
		return nil, fontError(tag, "Header", fmt.Sprintf("MATH table too small: %d bytes", size), offset)
	}
	t := newMathTable(tag, b, offset, size)
	t.major, t.minor = b.U16(0), b.U16(2)
	if t.major != 1 {
		return nil, fontError(tag, "Header", fmt.Sprintf("unsupported MATH version %d.%d", t.major, t.minor), offset)
	}
	var err error
	if t.constants, err = link16(b, 4, b); err != nil || len(t.constants) < MathConstantsSize {
		return nil, fontError(tag, "MathConstants", "constants table missing or truncated", offset)
	}
	glyphInfo, err := link16(b, 6, b)
	if err != nil {
		return nil, fontError(tag, "MathGlyphInfo", "offset out of bounds", offset)
	}
	if glyphInfo != nil {
		if err = parseMathGlyphInfo(t, glyphInfo); err != nil {
			return nil, fontError(tag, "MathGlyphInfo", err.Error(), offset)
		}
	}
	variants, err := link16(b, 8, b)
	if err != nil {
		return nil, fontError(tag, "MathVariants", "offset out of bounds", offset)
	}
	if variants != nil {
		if err = parseMathVariants(t, variants); err != nil {
			return nil, fontError(tag, "MathVariants", err.Error(), offset)
		}
	}
	tracer().Debugf("MATH table version %d.%d with %d italics corrections, %d top accents",
		t.major, t.minor, t.italics.count, t.topAccents.count)
	return t, nil
}

func parseMathGlyphInfo(t *MathTable, b binarySegm) (err error) {
	if t.italics, err = parseMathValueTable(b, 0); err != nil {
		return fmt.Errorf("italics correction: %w", err)
	}
	if t.topAccents, err = parseMathValueTable(b, 2); err != nil {
		return fmt.Errorf("top accent attachment: %w", err)
	}
	ext, err := link16(b, 4, b)
	if err != nil {
		return errFontFormat("extended shape coverage")
	}
	if ext != nil {
		if t.extendedShapes, err = parseCoverage(ext); err != nil {
			return err
		}
	}
	kern, _ := b.u16(6)
	t.hasKernInfo = kern != 0
	return nil
}

func parseMathValueTable(b binarySegm, at int) (mathValueTable, error) {
	mvt := mathValueTable{}
	sub, err := link16(b, at, b)
	if err != nil {
		return mvt, errFontFormat("offset out of bounds")
	}
	if sub == nil {
		return mvt, nil
	}
	cov, err := link16(sub, 0, sub)
	if err != nil || cov == nil {
		return mvt, errFontFormat("missing coverage")
	}
	if mvt.coverage, err = parseCoverage(cov); err != nil {
		return mvt, err
	}
	mvt.count = int(sub.U16(2))
	if mvt.count > 0 {
		if mvt.records, err = sub.view(4, mvt.count*mathValueRecordSize); err != nil {
			return mvt, errFontFormat("value records out of bounds")
		}
	}
	if n := mvt.coverage.Len(); n != mvt.count {
		return mvt, errFontFormat(fmt.Sprintf("coverage has %d glyphs, but %d records", n, mvt.count))
	}
	return mvt, nil
}

func parseMathVariants(t *MathTable, b binarySegm) error {
	if len(b) < 10 {
		return errFontFormat("MathVariants header truncated")
	}
	t.minConnectorOverlap = b.U16(0)
	vcount, hcount := int(b.U16(6)), int(b.U16(8))
	counts := [2]int{vcount, hcount}
	offsetsAt := [2]int{10, 10 + 2*vcount}
	for dir, covAt := range [2]int{2, 4} {
		ct := constructionTable{count: counts[dir], base: b}
		cov, err := link16(b, covAt, b)
		if err != nil {
			return errFontFormat("construction coverage offset out of bounds")
		}
		if cov != nil {
			if ct.coverage, err = parseCoverage(cov); err != nil {
				return err
			}
		}
		if ct.count > 0 {
			if ct.offsets, err = b.view(offsetsAt[dir], 2*ct.count); err != nil {
				return errFontFormat("construction offsets out of bounds")
			}
		}
		if n := ct.coverage.Len(); n != ct.count {
			return errFontFormat(fmt.Sprintf("%s coverage has %d glyphs, but %d constructions",
				MathDirection(dir), n, ct.count))
		}
		t.constructions[dir] = ct
	}
	return nil
}

// Version returns major and minor version of the table.
func (t *MathTable) Version() (uint16, uint16) {
	return t.major, t.minor
}

// Constant returns the value of MathConstants field i, in table order
// (see MathConstantNames).
func (t *MathTable) Constant(i int) int {
	if i < 0 || i >= MathConstantsCount {
		return 0
	}
	at := MathConstantOffset(i)
	if i == 2 || i == 3 { // UFWORD
		return int(t.constants.U16(at))
	}
	return int(t.constants.I16(at))
}

// ConstantByName returns the value of a MathConstants field.
func (t *MathTable) ConstantByName(name string) (int, bool) {
	i, ok := MathConstantIndex(name)
	if !ok {
		return 0, false
	}
	return t.Constant(i), true
}

// ItalicsCorrection returns the italics correction of a glyph, if present.
func (t *MathTable) ItalicsCorrection(g GlyphIndex) Option[int16] {
	return t.italics.lookup(g)
}

// ItalicsCorrectionGlyphs returns the glyphs with an italics correction, in coverage order.
func (t *MathTable) ItalicsCorrectionGlyphs() []GlyphIndex {
	return t.italics.coverage.Glyphs()
}

// ItalicsCorrectionValues returns the raw array of italics correction values.
func (t *MathTable) ItalicsCorrectionValues() []int16 {
	return t.italics.values()
}

// TopAccentAttachment returns the top accent attachment of a glyph, if present.
func (t *MathTable) TopAccentAttachment(g GlyphIndex) Option[int16] {
	return t.topAccents.lookup(g)
}

// TopAccentGlyphs returns the glyphs with a top accent attachment, in coverage order.
func (t *MathTable) TopAccentGlyphs() []GlyphIndex {
	return t.topAccents.coverage.Glyphs()
}

// TopAccentValues returns the raw array of top accent attachment values.
func (t *MathTable) TopAccentValues() []int16 {
	return t.topAccents.values()
}

// ExtendedShapes returns the extended shape coverage.
func (t *MathTable) ExtendedShapes() Coverage {
	return t.extendedShapes
}

// HasKernInfo reports whether the font carries a MathKernInfo table.
func (t *MathTable) HasKernInfo() bool {
	return t.hasKernInfo
}

// MinConnectorOverlap returns the minimum overlap of connecting glyphs in assemblies.
func (t *MathTable) MinConnectorOverlap() uint16 {
	return t.minConnectorOverlap
}

// ConstructionGlyphs returns the glyphs with a construction in direction dir,
// in coverage order.
func (t *MathTable) ConstructionGlyphs(dir MathDirection) []GlyphIndex {
	return t.constructions[dir].coverage.Glyphs()
}

// Construction returns the glyph construction of g in direction dir, if present.
func (t *MathTable) Construction(dir MathDirection, g GlyphIndex) Option[MathGlyphConstruction] {
	ct := t.constructions[dir]
	inx, ok := ct.coverage.Match(g)
	if !ok {
		return None[MathGlyphConstruction]()
	}
	c, err := t.ConstructionAt(dir, inx)
	if err != nil {
		tracer().Errorf("MATH construction for glyph %d: %v", g, err)
		return None[MathGlyphConstruction]()
	}
	return Some(c)
}

// ConstructionAt decodes the i-th glyph construction in direction dir.
func (t *MathTable) ConstructionAt(dir MathDirection, i int) (MathGlyphConstruction, error) {
	ct := t.constructions[dir]
	mgc := MathGlyphConstruction{}
	if i < 0 || i >= ct.count {
		return mgc, errBufferBounds
	}
	c, err := link16(ct.offsets, i*2, ct.base)
	if err != nil || c == nil {
		return mgc, errFontFormat("glyph construction offset")
	}
	n := int(c.U16(2))
	if n > 0 {
		records, err := c.view(4, n*mathVariantRecordSize)
		if err != nil {
			return mgc, errFontFormat("glyph variant records out of bounds")
		}
		mgc.Variants = make([]MathGlyphVariant, n)
		for j := range mgc.Variants {
			mgc.Variants[j] = MathGlyphVariant{
				Glyph:   GlyphIndex(records.U16(j * mathVariantRecordSize)),
				Advance: records.U16(j*mathVariantRecordSize + 2),
			}
		}
	}
	a, err := link16(c, 0, c)
	if err != nil {
		return mgc, errFontFormat("glyph assembly offset")
	}
	if a == nil {
		mgc.Assembly = None[GlyphAssembly]()
		return mgc, nil
	}
	asm := GlyphAssembly{ItalicsCorrection: a.I16(0)}
	pc := int(a.U16(mathValueRecordSize))
	parts, err := a.view(mathValueRecordSize+2, pc*mathPartRecordSize)
	if err != nil && pc > 0 {
		return mgc, errFontFormat("glyph part records out of bounds")
	}
	asm.Parts = make([]GlyphPart, pc)
	for j := range asm.Parts {
		p := parts[j*mathPartRecordSize:]
		asm.Parts[j] = GlyphPart{
			Glyph:          GlyphIndex(p.U16(0)),
			StartConnector: p.U16(2),
			EndConnector:   p.U16(4),
			FullAdvance:    p.U16(6),
			Flags:          p.U16(8),
		}
	}
	mgc.Assembly = Some(asm)
	return mgc, nil
}
