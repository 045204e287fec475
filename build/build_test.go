package build

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/npillmayer/otmath/glyphs"
	"github.com/npillmayer/otmath/internal/fontload"
	"github.com/npillmayer/otmath/ot"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/goregular"
)

func TestBuildWithPrecompiledFonts(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.math")
	defer teardown()
	//
	cfg := testConfig(t)
	cfg.SkipCompile = true
	for _, name := range []string{"Regular", "Bold"} {
		require.NoError(t, os.WriteFile(OutputPath(cfg.OutputDir, "Test Math", name), goregular.TTF, 0o644))
	}
	report, err := Build(context.Background(), cfg)
	require.NoError(t, err)
	assert.Len(t, report.Stages, 4)
	require.Len(t, report.Instances, 2)
	assert.Equal(t, "Regular", report.Instances[0].Instance)
	assert.Equal(t, "Bold", report.Instances[1].Instance)
	assert.NoFileExists(t, OutputPath(cfg.OutputDir, "Test Math", "Hidden"))
	//
	regular := parseOutput(t, cfg.OutputDir, "Regular")
	bold := parseOutput(t, cfg.OutputDir, "Bold")
	a := glyphID(t, "A")
	axis, _ := regular.ConstantByName("AxisHeight")
	assert.Equal(t, 250, axis)
	axis, _ = bold.ConstantByName("AxisHeight")
	assert.Equal(t, 300, axis)
	assert.Equal(t, int16(20), regular.ItalicsCorrection(a).MustUnwrap())
	assert.True(t, bold.ItalicsCorrection(a).IsNone(), "A is removed from instance Bold")
	assert.Equal(t, uint16(10), bold.MinConnectorOverlap())
	paren := glyphID(t, "parenleft")
	assert.Equal(t, []ot.GlyphIndex{paren}, regular.ConstructionGlyphs(ot.MathVertical))
}

func TestBuildCompilesInstances(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.math")
	defer teardown()
	//
	cfg := testConfig(t)
	runner := &fakeCompiler{}
	cfg.Runner = runner
	cfg.Compiler = testCompiler
	cfg.Workers = 2
	report, err := Build(context.Background(), cfg)
	require.NoError(t, err)
	assert.Len(t, report.Stages, 6)
	assert.ElementsMatch(t, []string{"Regular", "Bold"}, runner.instances())
	for _, inst := range report.Instances {
		assert.FileExists(t, inst.Path)
	}
	m := parseOutput(t, cfg.OutputDir, "Regular")
	axis, _ := m.ConstantByName("AxisHeight")
	assert.Equal(t, 250, axis)
}

func TestBuildCompilesDecomposedSource(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.math")
	defer teardown()
	//
	cfg := testConfig(t)
	runner := &fakeCompiler{}
	cfg.Runner = runner
	cfg.Compiler = testCompiler
	_, err := Build(context.Background(), cfg)
	require.NoError(t, err)
	require.Len(t, runner.sources, 2)
	for _, src := range runner.sources {
		assert.NotEqual(t, cfg.Source, src.path)
		assert.NoFileExists(t, src.path, "decomposed source is removed after the build")
		require.NotNil(t, src.font)
		for _, g := range src.font.Glyphs {
			for _, l := range g.Layers {
				assert.False(t, l.HasComponents(), "glyph %s layer %s has components", g.Name, l.LayerID)
			}
		}
		bar := src.font.Glyph("bar").MasterLayer("m01")
		require.NotNil(t, bar)
		require.Len(t, bar.Paths(), 1)
		r, ok := bar.Bounds()
		require.True(t, ok)
		assert.Equal(t, glyphs.Rect{Min: glyphs.Point{X: 0, Y: -200}, Max: glyphs.Point{X: 80, Y: 500}}, r)
	}
	orig, err := glyphs.ReadFile(cfg.Source)
	require.NoError(t, err)
	assert.True(t, orig.Glyph("bar").MasterLayer("m01").HasComponents(), "source stays untouched")
}

func TestBuildFailsWithCompiler(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.math")
	defer teardown()
	//
	cfg := testConfig(t)
	cfg.Runner = &fakeCompiler{fail: "Bold"}
	cfg.Compiler = testCompiler
	_, err := Build(context.Background(), cfg)
	assert.ErrorIs(t, err, errCompiler)
	assert.NoFileExists(t, OutputPath(cfg.OutputDir, "Test Math", "Bold"))
}

func TestBuildInstanceFilter(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.math")
	defer teardown()
	//
	cfg := testConfig(t)
	runner := &fakeCompiler{}
	cfg.Runner = runner
	cfg.Compiler = testCompiler
	cfg.Instances = []string{"Bold"}
	report, err := Build(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{"Bold"}, runner.instances())
	require.Len(t, report.Instances, 1)
	//
	cfg.Instances = []string{"Hidden"}
	_, err = Build(context.Background(), cfg)
	assert.ErrorIs(t, err, ErrConfig)
}

func TestConfig(t *testing.T) {
	var cfg *Config
	assert.ErrorIs(t, cfg.Validate(), ErrConfig)
	cfg = &Config{Source: "a.glyphs", MathData: "a.toml"}
	assert.ErrorIs(t, cfg.Validate(), ErrConfig)
	cfg.OutputDir = "out"
	assert.NoError(t, cfg.Validate())
	cfg.Compiler = "  "
	assert.ErrorIs(t, cfg.Validate(), ErrConfig)
	cfg.SkipCompile = true
	assert.NoError(t, cfg.Validate())
	//
	cfg = &Config{Source: "src/Math.glyphspackage", OutputDir: "build"}
	argv := cfg.command(glyphs.Instance{Name: "Bold"}, "/tmp/x/Math.glyphs", "build/Math-Bold.otf")
	assert.Equal(t, []string{"fontmake", "-g", "/tmp/x/Math.glyphs", "-i", "Bold",
		"-o", "otf", "--output-path", "build/Math-Bold.otf"}, argv)
	assert.Greater(t, cfg.workers(), 0)
	assert.Equal(t, filepath.Join("build", "FiraMath-Regular.otf"), OutputPath("build", "Fira Math", "Regular"))
}

// ---------------------------------------------------------------------------

var errCompiler = errors.New("compiler failed")

const testCompiler = "compile --instance {instance} --source {source} {output}"

// fakeCompiler writes a pre-built font to the output path, which is the last
// argument of a command. It reads the source it is given.
type fakeCompiler struct {
	mu      sync.Mutex
	names   []string
	sources []compiledSource
	fail    string
}

type compiledSource struct {
	path string
	font *glyphs.Font
}

func (c *fakeCompiler) Run(ctx context.Context, argv []string) error {
	inst := flagValue(argv, "--instance")
	src := compiledSource{path: flagValue(argv, "--source")}
	src.font, _ = glyphs.ReadFile(src.path)
	c.mu.Lock()
	c.names = append(c.names, inst)
	c.sources = append(c.sources, src)
	c.mu.Unlock()
	if inst == c.fail {
		return errCompiler
	}
	return os.WriteFile(argv[len(argv)-1], goregular.TTF, 0o644)
}

func (c *fakeCompiler) instances() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.names...)
}

func flagValue(argv []string, flag string) string {
	for i, arg := range argv[:len(argv)-1] {
		if arg == flag {
			return argv[i+1]
		}
	}
	return ""
}

func testConfig(t *testing.T) *Config {
	dir := t.TempDir()
	cfg := &Config{
		Source:    filepath.Join(dir, "TestMath.glyphs"),
		MathData:  filepath.Join(dir, "TestMath.toml"),
		OutputDir: filepath.Join(dir, "build"),
	}
	require.NoError(t, os.WriteFile(cfg.Source, []byte(testSource), 0o644))
	require.NoError(t, os.WriteFile(cfg.MathData, []byte(testMathData), 0o644))
	require.NoError(t, os.MkdirAll(cfg.OutputDir, 0o755))
	return cfg
}

func parseOutput(t *testing.T, dir, instance string) *ot.MathTable {
	raw, err := os.ReadFile(OutputPath(dir, "Test Math", instance))
	require.NoError(t, err)
	otf, err := ot.Parse(raw)
	require.NoError(t, err)
	require.NotNil(t, otf.Math, "expected MATH table in instance %s", instance)
	return otf.Math
}

func glyphID(t *testing.T, name string) ot.GlyphIndex {
	sf, err := fontload.ParseOpenTypeFont(goregular.TTF)
	require.NoError(t, err)
	order, err := sf.GlyphOrder(nil, nil)
	require.NoError(t, err)
	gid, ok := order.GlyphID(name)
	require.True(t, ok, name)
	return gid
}

const testMathData = `
[MathConstants]
AxisHeight = [200, 300]
MinConnectorOverlap = 10

[MathGlyphInfo.ItalicCorrection]
A = [10, 30]

[MathVariants.VerticalVariants]
parenleft = ["parenleft"]
`

const testSource = `{
.formatVersion = 3;
familyName = "Test Math";
fontMaster = (
{
axesValues = (100);
id = m01;
name = Light;
},
{
axesValues = (900);
id = m02;
name = Bold;
}
);
glyphs = (
{
glyphname = A;
unicode = 65;
layers = (
{
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
width = 600;
},
{
layerId = m02;
shapes = (
{
closed = 1;
nodes = (
(0,0,l),
(320,720,l),
(640,0,l)
);
}
);
width = 640;
}
);
},
{
glyphname = _part.bar;
export = 0;
partsSettings = (
{
bottomValue = 0;
name = Height;
topValue = 100;
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
(80,0,l),
(80,100,l),
(0,100,l)
);
}
);
width = 80;
},
{
associatedMasterId = m01;
layerId = "P1-m01";
partSelection = {
Height = 1;
};
shapes = (
{
closed = 1;
nodes = (
(0,0,l),
(80,0,l),
(80,100,l),
(0,100,l)
);
}
);
width = 80;
},
{
associatedMasterId = m01;
layerId = "P2-m01";
partSelection = {
Height = 2;
};
shapes = (
{
closed = 1;
nodes = (
(0,0,l),
(80,0,l),
(80,1300,l),
(0,1300,l)
);
}
);
width = 80;
},
{
layerId = m02;
shapes = (
{
closed = 1;
nodes = (
(0,0,l),
(120,0,l),
(120,100,l),
(0,100,l)
);
}
);
width = 120;
},
{
associatedMasterId = m02;
layerId = "P1-m02";
partSelection = {
Height = 1;
};
shapes = (
{
closed = 1;
nodes = (
(0,0,l),
(120,0,l),
(120,100,l),
(0,100,l)
);
}
);
width = 120;
},
{
associatedMasterId = m02;
layerId = "P2-m02";
partSelection = {
Height = 2;
};
shapes = (
{
closed = 1;
nodes = (
(0,0,l),
(120,0,l),
(120,1300,l),
(0,1300,l)
);
}
);
width = 120;
}
);
},
{
glyphname = bar;
layers = (
{
layerId = m01;
shapes = (
{
piece = {
Height = 50;
};
pos = (0,-200);
ref = _part.bar;
}
);
width = 80;
},
{
layerId = m02;
shapes = (
{
piece = {
Height = 50;
};
pos = (0,-200);
ref = _part.bar;
}
);
width = 120;
}
);
},
{
glyphname = parenleft;
unicode = 40;
layers = (
{
layerId = m01;
shapes = (
{
closed = 1;
nodes = (
(0,-200,l),
(100,-200,l),
(100,800,l),
(0,800,l)
);
}
);
width = 200;
},
{
layerId = m02;
shapes = (
{
closed = 1;
nodes = (
(0,-200,l),
(150,-200,l),
(150,800,l),
(0,800,l)
);
}
);
width = 250;
}
);
}
);
instances = (
{
axesValues = (500);
name = Regular;
},
{
axesValues = (900);
customParameters = (
{
name = "Remove Glyphs";
value = (
A
);
}
);
name = Bold;
},
{
axesValues = (700);
exports = 0;
name = Hidden;
}
);
unitsPerEm = 1000;
}
`
