package fontload

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/npillmayer/otmath/glyphs"
	"github.com/npillmayer/otmath/ot"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/goregular"
)

func TestLoadFont(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	path := filepath.Join(t.TempDir(), "GoRegular.ttf")
	require.NoError(t, os.WriteFile(path, goregular.TTF, 0o644))
	f, err := LoadOpenTypeFont(path)
	require.NoError(t, err)
	assert.Equal(t, "Go Regular", f.Fontname)
	assert.Equal(t, path, f.Filepath)
	//
	_, err = ParseOpenTypeFont([]byte("no font"))
	assert.Error(t, err)
	_, err = LoadOpenTypeFont(filepath.Join(t.TempDir(), "missing.otf"))
	assert.Error(t, err)
}

func TestGlyphOrderFromNames(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	f, err := ParseOpenTypeFont(goregular.TTF)
	require.NoError(t, err)
	src := glyphs.NewFont("Go", []glyphs.Master{{ID: "m"}}, []*glyphs.Glyph{
		{Name: "A", Export: true},
		{Name: "alpha-latin", Export: true, Production: "A"},
		{Name: "not-there", Export: true},
	}, nil)
	order, err := f.GlyphOrder(src, nil)
	require.NoError(t, err)
	assert.Equal(t, f.SFNT.NumGlyphs(), order.Len())
	a, ok := order.GlyphID("A")
	require.True(t, ok)
	assert.NotZero(t, a)
	alias, ok := order.GlyphID("alpha-latin")
	require.True(t, ok, "production name should be used as fallback")
	assert.Equal(t, a, alias)
	_, ok = order.GlyphID("not-there")
	assert.False(t, ok)
}

func TestAlternativeNames(t *testing.T) {
	g := &glyphs.Glyph{Name: "sum-disp", Production: "uni2211.display"}
	assert.Equal(t, []string{"uni2211.display"}, alternativeNames(g))
	g = &glyphs.Glyph{Name: "integral-math", Unicodes: []rune{0x222B}}
	assert.Equal(t, []string{"uni222B", "u222B"}, alternativeNames(g))
	g = &glyphs.Glyph{Name: "bold-a-math", Unicodes: []rune{0x1D400}}
	assert.Equal(t, []string{"u1D400"}, alternativeNames(g))
}

func TestSourceOrder(t *testing.T) {
	src := glyphs.NewFont("Src", []glyphs.Master{{ID: "m"}}, []*glyphs.Glyph{
		{Name: ".notdef", Export: true},
		{Name: "a", Export: true},
		{Name: "hidden", Export: false},
		{Name: "b", Export: true},
	}, nil)
	o, err := sourceOrder(src, 3, nil)
	require.NoError(t, err)
	for name, want := range map[string]ot.GlyphIndex{".notdef": 0, "a": 1, "b": 2} {
		gid, ok := o.GlyphID(name)
		assert.True(t, ok, name)
		assert.Equal(t, want, gid, name)
	}
	_, ok := o.GlyphID("hidden")
	assert.False(t, ok)
	_, err = sourceOrder(src, 2, nil)
	assert.ErrorIs(t, err, ErrNoGlyphOrder)
	_, err = sourceOrder(nil, 2, nil)
	assert.ErrorIs(t, err, ErrNoGlyphOrder)
}

func TestGlyphNames(t *testing.T) {
	src := glyphs.NewFont("Src", []glyphs.Master{{ID: "m"}}, []*glyphs.Glyph{
		{Name: ".notdef", Export: true},
		{Name: "a", Export: true},
	}, nil)
	o, err := sourceOrder(src, 4, nil)
	require.NoError(t, err)
	assert.Equal(t, ".notdef", o.GlyphName(0))
	assert.Equal(t, "a", o.GlyphName(1))
	assert.Equal(t, "", o.GlyphName(3))
	assert.Equal(t, "", o.GlyphName(99))
}

func TestSourceOrderSkipsRemovedGlyphs(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	src := glyphs.NewFont("Src", []glyphs.Master{{ID: "m"}}, []*glyphs.Glyph{
		{Name: ".notdef", Export: true},
		{Name: "a", Export: true},
		{Name: "a.alt", Export: true},
		{Name: "b", Export: true},
	}, nil)
	// a compiled instance without 'a.alt' has three glyphs and no names
	o, err := newGlyphOrder(make([]string, 3), src, []string{"a.alt"})
	require.NoError(t, err)
	b, ok := o.GlyphID("b")
	require.True(t, ok)
	assert.Equal(t, ot.GlyphIndex(2), b)
	_, ok = o.GlyphID("a.alt")
	assert.False(t, ok)
	assert.Equal(t, "b", o.GlyphName(2))
	//
	_, err = newGlyphOrder(make([]string, 3), src, nil)
	assert.ErrorIs(t, err, ErrNoGlyphOrder)
}

func TestGlyphOrderFromCharsetNames(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	src := glyphs.NewFont("Src", []glyphs.Master{{ID: "m"}}, []*glyphs.Glyph{
		{Name: ".notdef", Export: true},
		{Name: "removed", Export: true},
		{Name: "sum-disp", Export: true, Production: "uni2211.display"},
		{Name: "paren.ext", Export: true},
	}, nil)
	names := []string{".notdef", "paren.ext", "uni2211.display"}
	o, err := newGlyphOrder(names, src, []string{"removed"})
	require.NoError(t, err)
	gid, ok := o.GlyphID("sum-disp")
	require.True(t, ok)
	assert.Equal(t, ot.GlyphIndex(2), gid)
	gid, ok = o.GlyphID("paren.ext")
	require.True(t, ok)
	assert.Equal(t, ot.GlyphIndex(1), gid)
	_, ok = o.GlyphID("removed")
	assert.False(t, ok)
}

func TestProductionNames(t *testing.T) {
	src := glyphs.NewFont("Src", []glyphs.Master{{ID: "m"}}, []*glyphs.Glyph{
		{Name: ".notdef", Export: true},
		{Name: "A", Export: true, Unicodes: []rune{'A'}},
		{Name: "integral-math", Export: true, Unicodes: []rune{0x222B}},
		{Name: "integral-math.display", Export: true},
		{Name: "bold-a-math", Export: true, Unicodes: []rune{0x1D400}},
		{Name: "paren-ext", Export: true, Production: "parenleft.ext"},
		{Name: "no-code", Export: true},
	}, nil)
	assert.Equal(t, map[string]string{
		"integral-math":         "uni222B",
		"integral-math.display": "uni222B.display",
		"bold-a-math":           "u1D400",
		"paren-ext":             "parenleft.ext",
	}, ProductionNames(src))
	//
	// a font with production names maps back to source names
	o, err := newGlyphOrder([]string{".notdef", "uni222B.display", "parenleft.ext"}, src, nil)
	require.NoError(t, err)
	gid, ok := o.GlyphID("integral-math.display")
	require.True(t, ok)
	assert.Equal(t, ot.GlyphIndex(1), gid)
	gid, ok = o.GlyphID("paren-ext")
	require.True(t, ok)
	assert.Equal(t, ot.GlyphIndex(2), gid)
}
