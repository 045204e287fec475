package mathtable

import (
	"encoding/binary"
	"testing"

	"github.com/npillmayer/otmath/glyphs"
	"github.com/npillmayer/otmath/interp"
	"github.com/npillmayer/otmath/mathdata"
	"github.com/npillmayer/otmath/ot"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstantiateHalfway(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.math")
	defer teardown()
	//
	md := loadTestData(t)
	ip := interp.Interpolation{{Master: 0, Coeff: .5}, {Master: 1, Coeff: .5}}
	tbl, err := Instantiate(md, ip, nil)
	require.NoError(t, err)
	v, ok := tbl.Constants.Get("AxisHeight")
	require.True(t, ok)
	assert.Equal(t, 240, v)
	assert.Equal(t, 2, tbl.Constants.SpaceAfterScript, "2.5 rounds half to even")
	assert.Equal(t, 20, tbl.MinConnectorOverlap)
	assert.Equal(t, 15, tbl.ItalicCorrection["f"])
	assert.Equal(t, 250, tbl.TopAccent["g"])
	//
	parts := tbl.Assemblies[ot.MathVertical]["bar"].Parts
	require.Len(t, parts, 2)
	assert.True(t, parts[1].Extender)
	assert.Equal(t, ot.PartFlagExtender, parts[1].Flags())
	assert.Equal(t, ot.PartFlagReserved, parts[0].Flags())
}

func TestInstantiateMasters(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.math")
	defer teardown()
	//
	md := loadTestData(t)
	for i, want := range []int{200, 280, 320} {
		tbl, err := Instantiate(md, interp.Identity(i), nil)
		require.NoError(t, err)
		assert.Equal(t, want, tbl.Constants.AxisHeight)
	}
	_, err := Instantiate(md, interp.Identity(3), nil)
	assert.ErrorIs(t, err, interp.ErrUnknownMaster)
}

func TestRemovalIsPerInstance(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.math")
	defer teardown()
	//
	md := loadTestData(t)
	a, err := Instantiate(md, interp.Identity(0), []string{"f", "unknown"})
	require.NoError(t, err)
	b, err := Instantiate(md, interp.Identity(0), nil)
	require.NoError(t, err)
	assert.NotContains(t, a.ItalicCorrection, "f")
	assert.Contains(t, a.TopAccent, "g")
	assert.Contains(t, b.ItalicCorrection, "f")
	require.Len(t, a.Warnings(), 1)
	assert.Equal(t, "unknown", a.Warnings()[0].Glyph)
	assert.Empty(t, b.Warnings())
}

func TestUnknownConstant(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.math")
	defer teardown()
	//
	md := &mathdata.MasterData{
		MasterCount: 1,
		Constants:   map[string]mathdata.Values{"AxisHight": {250}},
	}
	_, err := Instantiate(md, interp.Identity(0), nil)
	assert.ErrorIs(t, err, ErrUnknownConstant)
	var c Constants
	assert.ErrorIs(t, c.Set("Nope", 1), ErrUnknownConstant)
	_, ok := c.Get("Nope")
	assert.False(t, ok)
}

func TestEncodeAndParse(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.math")
	defer teardown()
	//
	tbl := testTable()
	data, err := tbl.Encode(testOrder)
	require.NoError(t, err)
	m := parseMath(t, data)
	//
	major, minor := m.Version()
	assert.Equal(t, uint16(1), major)
	assert.Equal(t, uint16(0), minor)
	for name, want := range map[string]int{
		"ScriptPercentScaleDown":          80,
		"DelimitedSubFormulaMinHeight":    1300,
		"AxisHeight":                      250,
		"FractionRuleThickness":           -3,
		"RadicalDegreeBottomRaisePercent": 60,
	} {
		v, ok := m.ConstantByName(name)
		require.True(t, ok, name)
		assert.Equal(t, want, v, name)
	}
	assert.Equal(t, uint16(20), m.MinConnectorOverlap())
	//
	assert.Equal(t, []ot.GlyphIndex{3, 4, 9}, m.ItalicsCorrectionGlyphs())
	assert.Equal(t, []int16{-5, 7, 50}, m.ItalicsCorrectionValues())
	assert.Equal(t, int16(50), m.ItalicsCorrection(9).MustUnwrap())
	assert.Equal(t, []ot.GlyphIndex{3}, m.TopAccentGlyphs())
	assert.Equal(t, []int16{250}, m.TopAccentValues())
	assert.Equal(t, []ot.GlyphIndex{5, 6}, m.ExtendedShapes().Glyphs())
	assert.False(t, m.HasKernInfo())
	//
	assert.Equal(t, []ot.GlyphIndex{5}, m.ConstructionGlyphs(ot.MathVertical))
	c := m.Construction(ot.MathVertical, 5).MustUnwrap()
	assert.Equal(t, []ot.MathGlyphVariant{{Glyph: 5, Advance: 501}, {Glyph: 6, Advance: 1001}}, c.Variants)
	asm := c.Assembly.MustUnwrap()
	assert.Equal(t, int16(-2), asm.ItalicsCorrection)
	assert.Equal(t, []ot.GlyphPart{
		{Glyph: 7, StartConnector: 0, EndConnector: 100, FullAdvance: 400, Flags: 0xFFFE},
		{Glyph: 8, StartConnector: 50, EndConnector: 60, FullAdvance: 200, Flags: 0x0001},
		{Glyph: 10, StartConnector: 100, EndConnector: 0, FullAdvance: 400, Flags: 0xFFFE},
	}, asm.Parts)
	//
	assert.Equal(t, []ot.GlyphIndex{11}, m.ConstructionGlyphs(ot.MathHorizontal))
	c = m.Construction(ot.MathHorizontal, 11).MustUnwrap()
	assert.Equal(t, []ot.MathGlyphVariant{{Glyph: 11, Advance: 600}}, c.Variants)
	assert.True(t, c.Assembly.IsNone(), "assembly with missing part must be dropped")
	//
	warned := map[string]bool{}
	for _, w := range tbl.Warnings() {
		warned[w.Glyph] = true
	}
	assert.Equal(t, map[string]bool{"x": true, "missing.size": true, "nope": true}, warned)
}

func TestEncodeEmpty(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.math")
	defer teardown()
	//
	tbl := New()
	tbl.Constants.AxisHeight = 250
	data, err := tbl.Encode(GlyphOrderMap{})
	require.NoError(t, err)
	assert.Equal(t, 10+ot.MathConstantsSize+8+8+8+10, len(data))
	m := parseMath(t, data)
	v, _ := m.ConstantByName("AxisHeight")
	assert.Equal(t, 250, v)
	assert.Empty(t, m.ItalicsCorrectionGlyphs())
	assert.Empty(t, m.TopAccentGlyphs())
	assert.Equal(t, 0, m.ExtendedShapes().Len())
	assert.Empty(t, m.ConstructionGlyphs(ot.MathVertical))
	assert.Empty(t, m.ConstructionGlyphs(ot.MathHorizontal))
	// extended shapes and both construction coverages are NULL
	glyphInfo := data[10+ot.MathConstantsSize:]
	assert.Equal(t, uint16(0), binary.BigEndian.Uint16(glyphInfo[4:]))
	variants := data[10+ot.MathConstantsSize+24:]
	assert.Equal(t, uint16(0), binary.BigEndian.Uint16(variants[2:]))
	assert.Equal(t, uint16(0), binary.BigEndian.Uint16(variants[4:]))
}

func TestDuplicateGlyphIDs(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.math")
	defer teardown()
	//
	tbl := New()
	tbl.ItalicCorrection["a"] = 1
	tbl.ItalicCorrection["b"] = 2
	data, err := tbl.Encode(GlyphOrderMap{"a": 3, "b": 3})
	require.NoError(t, err)
	m := parseMath(t, data)
	assert.Equal(t, []ot.GlyphIndex{3}, m.ItalicsCorrectionGlyphs())
	assert.Equal(t, []int16{1}, m.ItalicsCorrectionValues())
	require.Len(t, tbl.Warnings(), 1)
	assert.Equal(t, "b", tbl.Warnings()[0].Glyph)
}

func TestEncodingRange(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.math")
	defer teardown()
	//
	order := GlyphOrderMap{"a": 1, "b": 2}
	for name, setup := range map[string]func(*MathTable){
		"italic correction": func(tbl *MathTable) { tbl.ItalicCorrection["a"] = 40000 },
		"top accent":        func(tbl *MathTable) { tbl.TopAccent["a"] = -40000 },
		"unsigned constant": func(tbl *MathTable) { tbl.Constants.DelimitedSubFormulaMinHeight = -1 },
		"signed constant":   func(tbl *MathTable) { tbl.Constants.AxisHeight = 32768 },
		"connector overlap": func(tbl *MathTable) { tbl.MinConnectorOverlap = -5 },
		"variant advance": func(tbl *MathTable) {
			tbl.Variants[ot.MathVertical]["a"] = []Variant{{Glyph: "b", Advance: 70000}}
		},
		"part advance": func(tbl *MathTable) {
			tbl.Assemblies[ot.MathHorizontal]["a"] = Assembly{Parts: []Part{{Glyph: "b", FullAdvance: -1}}}
		},
	} {
		tbl := New()
		setup(tbl)
		_, err := tbl.Encode(order)
		assert.ErrorIs(t, err, ErrEncoding, name)
	}
}

func TestCoverageFormat(t *testing.T) {
	var run []ot.GlyphIndex
	for g := ot.GlyphIndex(10); g < 20; g++ {
		run = append(run, g)
	}
	cov := encodeCoverage(run)
	assert.Equal(t, uint16(2), binary.BigEndian.Uint16(cov))
	assert.Len(t, cov, 4+6)
	//
	cov = encodeCoverage([]ot.GlyphIndex{1, 3, 5})
	assert.Equal(t, uint16(1), binary.BigEndian.Uint16(cov))
	assert.Len(t, cov, 4+2*3)
	//
	cov = encodeCoverage([]ot.GlyphIndex{1, 2})
	assert.Equal(t, uint16(1), binary.BigEndian.Uint16(cov), "range records do not pay off")
	//
	cov = encodeCoverage([]ot.GlyphIndex{1, 2, 3, 4, 9, 10, 11, 12})
	assert.Equal(t, uint16(2), binary.BigEndian.Uint16(cov))
	assert.Equal(t, uint16(4), binary.BigEndian.Uint16(cov[4+6+4:]), "start coverage index of 2nd range")
}

// ---------------------------------------------------------------------------

var testOrder = GlyphOrderMap{
	"g": 3, "h": 4, "paren": 5, "paren.size1": 6, "paren.bot": 7,
	"paren.ext": 8, "f": 9, "paren.top": 10, "arrow": 11, "arrow.ext": 12,
}

func testTable() *MathTable {
	tbl := New()
	for name, v := range map[string]int{
		"ScriptPercentScaleDown":          80,
		"DelimitedSubFormulaMinHeight":    1300,
		"AxisHeight":                      250,
		"FractionRuleThickness":           -3,
		"RadicalDegreeBottomRaisePercent": 60,
	} {
		if err := tbl.Constants.Set(name, v); err != nil {
			panic(err)
		}
	}
	tbl.MinConnectorOverlap = 20
	tbl.ItalicCorrection = map[string]int{"f": 50, "g": -5, "h": 7, "x": 3}
	tbl.TopAccent = map[string]int{"g": 250}
	tbl.ExtendedShapes = []string{"paren.size1", "paren"}
	tbl.Variants[ot.MathVertical]["paren"] = []Variant{
		{Glyph: "paren", Advance: 501},
		{Glyph: "missing.size", Advance: 1},
		{Glyph: "paren.size1", Advance: 1001},
	}
	tbl.Assemblies[ot.MathVertical]["paren"] = Assembly{Italic: -2, Parts: []Part{
		{Glyph: "paren.bot", EndConnector: 100, FullAdvance: 400},
		{Glyph: "paren.ext", StartConnector: 50, EndConnector: 60, FullAdvance: 200, Extender: true},
		{Glyph: "paren.top", StartConnector: 100, FullAdvance: 400},
	}}
	tbl.Variants[ot.MathHorizontal]["arrow"] = []Variant{{Glyph: "arrow", Advance: 600}}
	tbl.Assemblies[ot.MathHorizontal]["arrow"] = Assembly{Parts: []Part{
		{Glyph: "arrow.ext", FullAdvance: 300, Extender: true},
		{Glyph: "nope", FullAdvance: 300},
	}}
	return tbl
}

// parseMath embeds a MATH table into a minimal font and decodes it again.
func parseMath(t *testing.T, data []byte) *ot.MathTable {
	head := make([]byte, 54)
	binary.BigEndian.PutUint16(head[0:], 1)
	binary.BigEndian.PutUint32(head[12:], 0x5F0F3CF5)
	binary.BigEndian.PutUint16(head[18:], 1000)
	maxp := make([]byte, 6)
	binary.BigEndian.PutUint32(maxp[0:], 0x00005000)
	binary.BigEndian.PutUint16(maxp[4:], 20)
	raw, err := ot.Assemble(ot.FontTypeCFF, []ot.TableData{
		{Tag: ot.T("head"), Data: head},
		{Tag: ot.T("maxp"), Data: maxp},
		{Tag: ot.T("MATH"), Data: data},
	})
	require.NoError(t, err)
	otf, err := ot.Parse(raw, ot.IsTestfont)
	require.NoError(t, err)
	require.NotNil(t, otf.Math)
	return otf.Math
}

const testDocument = `
[MathConstants]
AxisHeight = [200, 280, 320]
SpaceAfterScript = [2, 3, 3]
MinConnectorOverlap = 20

[MathGlyphInfo.ItalicCorrection]
f = [10, 20, 30]

[MathGlyphInfo.TopAccent]
g = 250

[MathVariants.VerticalComponents.bar]
parts = [
    { name = "bar.bot", startConnector = 0, endConnector = 50 },
    { name = "bar.ext", extender = true, startConnector = 50, endConnector = 50 },
]
`

func loadTestData(t *testing.T) *mathdata.MasterData {
	doc, err := mathdata.ParseDocument(testDocument)
	require.NoError(t, err)
	masters := []glyphs.Master{
		{ID: "u", Name: "Ultra", Weight: 900},
		{ID: "r", Name: "Regular", Weight: 500},
		{ID: "t", Name: "Thin", Weight: 100},
	}
	glyph := func(name string) *glyphs.Glyph {
		g := &glyphs.Glyph{Name: name, Export: true}
		for _, m := range masters {
			p := glyphs.Path{Closed: true, Nodes: []glyphs.Node{
				{Pos: glyphs.Point{X: 0, Y: 0}}, {Pos: glyphs.Point{X: 100, Y: 0}},
				{Pos: glyphs.Point{X: 100, Y: 300}}, {Pos: glyphs.Point{X: 0, Y: 300}},
			}}
			g.Layers = append(g.Layers, &glyphs.Layer{LayerID: m.ID, Width: 100,
				Shapes: []glyphs.Shape{glyphs.PathShape(p)}})
		}
		return g
	}
	font := glyphs.NewFont("Test Math", masters, []*glyphs.Glyph{
		glyph("f"), glyph("g"), glyph("bar"), glyph("bar.bot"), glyph("bar.ext"),
	}, nil)
	md, err := mathdata.Load(doc, font, interp.NewMasterSet(font.Masters))
	require.NoError(t, err)
	return md
}
