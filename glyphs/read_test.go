package glyphs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const glyphs3Source = `{
.formatVersion = 3;
familyName = "Test Math";
fontMaster = (
{
axesValues = (100);
id = m01;
name = Thin;
},
{
axesValues = (900);
id = m02;
name = Ultra;
}
);
glyphs = (
{
glyphname = A;
unicode = 65;
layers = (
{
anchors = (
{
name = top;
pos = (300,700);
}
);
layerId = m01;
shapes = (
{
closed = 1;
nodes = (
(0,0,l),
(300,700,l),
(600,0,l)
);
}
);
userData = {
math = {
italicCorrection = 12;
topAccent = 310;
};
};
width = 600;
},
{
layerId = m02;
shapes = (
{
closed = 1;
nodes = (
(0,0,l),
(320,720,ls),
(640,0,l)
);
}
);
width = 640;
}
);
},
{
glyphname = bar.ext;
export = 0;
partsSettings = (
{
bottomValue = 0;
name = size;
topValue = 1000;
}
);
layers = (
{
layerId = m01;
shapes = (
{
closed = 1;
nodes = (
(0,0,l),
(50,0,l),
(50,100,l),
(0,100,l)
);
}
);
width = 50;
},
{
associatedMasterId = m01;
layerId = "P1-m01";
name = Short;
partSelection = {
size = 1;
};
shapes = (
{
closed = 1;
nodes = (
(0,0,l),
(50,0,l),
(50,100,l),
(0,100,l)
);
}
);
width = 50;
},
{
associatedMasterId = m01;
layerId = "P2-m01";
name = Long;
partSelection = {
size = 2;
};
shapes = (
{
closed = 1;
nodes = (
(0,0,l),
(50,0,l),
(50,1000,l),
(0,1000,l)
);
}
);
width = 50;
}
);
},
{
glyphname = Abar;
layers = (
{
layerId = m01;
shapes = (
{
ref = A;
},
{
piece = {
size = 500;
};
pos = (10,20);
ref = bar.ext;
}
);
width = 600;
}
);
}
);
instances = (
{
axesValues = (500);
customParameters = (
{
name = "Remove Glyphs";
value = (
A
);
}
);
instanceInterpolations = {
m01 = 0.5;
m02 = 0.5;
};
name = Regular;
},
{
axesValues = (900);
exports = 0;
name = Hidden;
}
);
unitsPerEm = 1000;
}
`

const glyphs2Source = `{
familyName = "Test Math";
fontMaster = (
{
id = m01;
weight = Thin;
weightValue = 100;
},
{
id = m02;
weight = Ultra;
weightValue = 900;
}
);
glyphs = (
{
glyphname = A;
unicode = 0041;
layers = (
{
anchors = (
{
name = top;
position = "{300, 700}";
}
);
layerId = m01;
paths = (
{
closed = 1;
nodes = (
"0 0 LINE",
"300 700 LINE",
"600 0 LINE"
);
}
);
userData = {
math = {
italicCorrection = 12;
topAccent = 310;
};
};
width = 600;
},
{
layerId = m02;
paths = (
{
closed = 1;
nodes = (
"0 0 LINE",
"320 720 LINE SMOOTH",
"640 0 LINE"
);
}
);
width = 640;
}
);
},
{
glyphname = bar.ext;
export = 0;
partsSettings = (
{
bottomValue = 0;
name = size;
topValue = 1000;
}
);
layers = (
{
layerId = m01;
paths = (
{
closed = 1;
nodes = (
"0 0 LINE",
"50 0 LINE",
"50 100 LINE",
"0 100 LINE"
);
}
);
width = 50;
},
{
associatedMasterId = m01;
layerId = "P1-m01";
name = Short;
partSelection = {
size = 1;
};
paths = (
{
closed = 1;
nodes = (
"0 0 LINE",
"50 0 LINE",
"50 100 LINE",
"0 100 LINE"
);
}
);
width = 50;
},
{
associatedMasterId = m01;
layerId = "P2-m01";
name = Long;
partSelection = {
size = 2;
};
paths = (
{
closed = 1;
nodes = (
"0 0 LINE",
"50 0 LINE",
"50 1000 LINE",
"0 1000 LINE"
);
}
);
width = 50;
}
);
},
{
glyphname = Abar;
layers = (
{
components = (
{
name = A;
},
{
name = bar.ext;
piece = {
size = 500;
};
transform = "{1, 0, 0, 1, 10, 20}";
}
);
layerId = m01;
width = 600;
}
);
}
);
instances = (
{
customParameters = (
{
name = "Remove Glyphs";
value = (
A
);
}
);
instanceInterpolations = {
m01 = 0.5;
m02 = 0.5;
};
interpolationWeight = 500;
name = Regular;
},
{
exports = 0;
interpolationWeight = 900;
name = Hidden;
}
);
unitsPerEm = 1000;
}
`

func TestParseGlyphs3(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.math.glyphs")
	defer teardown()
	//
	f, err := Parse([]byte(glyphs3Source))
	require.NoError(t, err)
	assert.Equal(t, 3, f.FormatVersion)
	assert.Equal(t, "Test Math", f.FamilyName)
	assert.Equal(t, []Master{{ID: "m01", Name: "Thin", Weight: 100}, {ID: "m02", Name: "Ultra", Weight: 900}}, f.Masters)
	assert.Equal(t, []string{"A", "bar.ext", "Abar"}, f.GlyphNames())
	//
	a := f.Glyph("A")
	require.NotNil(t, a)
	assert.Equal(t, []rune{'A'}, a.Unicodes)
	assert.True(t, a.Export)
	assert.Equal(t, Ordinary, a.Kind())
	l := a.MasterLayer("m02")
	require.NotNil(t, l)
	require.Len(t, l.Paths(), 1)
	assert.True(t, l.Paths()[0].Nodes[1].Smooth)
	assert.Equal(t, Point{320, 720}, l.Paths()[0].Nodes[1].Pos)
	ta, ok := a.MasterLayer("m01").UserValue("topAccent")
	assert.True(t, ok)
	assert.Equal(t, 310.0, ta)
	_, ok = l.UserValue("topAccent")
	assert.False(t, ok)
	//
	bar := f.Glyph("bar.ext")
	require.NotNil(t, bar)
	assert.False(t, bar.Export)
	assert.Equal(t, SmartContainer, bar.Kind())
	axis, ok := bar.Axis("size")
	assert.True(t, ok)
	assert.Equal(t, SmartAxis{Name: "size", Bottom: 0, Top: 1000}, axis)
	p2 := bar.PartLayer("m01", "size", 2)
	require.NotNil(t, p2)
	assert.Equal(t, "P2-m01", p2.LayerID)
	assert.False(t, p2.IsMasterLayer())
	assert.Nil(t, bar.PartLayer("m02", "size", 1))
	//
	comps := f.Glyph("Abar").MasterLayer("m01").Components()
	require.Len(t, comps, 2)
	assert.True(t, comps[0].Transform.IsIdentity())
	assert.Equal(t, Transform{1, 0, 10, 0, 1, 20}, comps[1].Transform)
	axisName, v, n := comps[1].SmartValue()
	assert.Equal(t, 1, n)
	assert.Equal(t, "size", axisName)
	assert.Equal(t, 500.0, v)
	//
	require.Len(t, f.Instances, 2)
	regular := f.Instances[0]
	assert.True(t, regular.Active)
	assert.Equal(t, 500.0, regular.Weight)
	assert.Equal(t, map[string]float64{"m01": 0.5, "m02": 0.5}, regular.Interpolations)
	assert.Equal(t, []string{"A"}, regular.RemovedGlyphs())
	assert.False(t, f.Instances[1].Active)
	assert.Empty(t, f.Instances[1].RemovedGlyphs())
}

func TestReadersAgree(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.math.glyphs")
	defer teardown()
	//
	f3, err := Parse([]byte(glyphs3Source))
	require.NoError(t, err)
	f2, err := Parse([]byte(glyphs2Source))
	require.NoError(t, err)
	assert.Equal(t, 2, f2.FormatVersion)
	assert.Equal(t, f3.FamilyName, f2.FamilyName)
	assert.Equal(t, f3.UnitsPerEm, f2.UnitsPerEm)
	assert.Equal(t, f3.Masters, f2.Masters)
	assert.Equal(t, f3.Instances, f2.Instances)
	require.Equal(t, len(f3.Glyphs), len(f2.Glyphs))
	for i := range f3.Glyphs {
		assert.Equal(t, f3.Glyphs[i], f2.Glyphs[i], "glyph %s differs", f3.Glyphs[i].Name)
	}
}

func TestReadPackage(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.math.glyphs")
	defer teardown()
	//
	dir := filepath.Join(t.TempDir(), "Test.glyphspackage")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "glyphs"), 0o755))
	write := func(name, content string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	write("fontinfo.plist", `{
.formatVersion = 3;
familyName = Pkg;
fontMaster = ({ axesValues = (400); id = m01; name = Regular; });
unitsPerEm = 2048;
}`)
	write("glyphs/A.glyph", `{ glyphname = A; unicode = 65; layers = ({ layerId = m01; width = 500; }); }`)
	write("glyphs/B.glyph", `{ glyphname = B; unicode = 66; layers = ({ layerId = m01; width = 510; }); }`)
	write("glyphs/C.glyph", `{ glyphname = C; layers = ({ layerId = m01; width = 520; }); }`)
	write("order.plist", `(B, A)`)
	//
	f, err := ReadFile(dir)
	require.NoError(t, err)
	assert.Equal(t, "Pkg", f.FamilyName)
	assert.Equal(t, 2048, f.UnitsPerEm)
	assert.Equal(t, []string{"B", "A", "C"}, f.GlyphNames())
	assert.Equal(t, 510.0, f.Glyph("B").MasterLayer("m01").Width)
}

func TestParseRejectsMalformedSource(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.math.glyphs")
	defer teardown()
	//
	for _, src := range []string{
		`(a, b)`,
		`{ familyName = X; }`,
		`{ fontMaster = ({ id = m01; }); glyphs = ({ glyphname = A; layers = ({ layerId = m01; paths = ({ nodes = ("1 2 BOGUS"); }); }); }); }`,
	} {
		_, err := Parse([]byte(src))
		assert.ErrorIs(t, err, ErrFormat, "source %q", src)
	}
}
