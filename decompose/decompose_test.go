package decompose

import (
	"testing"

	"github.com/npillmayer/otmath/glyphs"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/suite"
)

type DecomposeSuite struct {
	suite.Suite
	teardown func()
	font     *glyphs.Font
}

func TestDecompose(t *testing.T) {
	suite.Run(t, new(DecomposeSuite))
}

func (s *DecomposeSuite) SetupSuite() {
	s.teardown = gotestingadapter.QuickConfig(s.T(), "font.math.glyphs")
}

func (s *DecomposeSuite) TearDownSuite() {
	s.teardown()
}

func (s *DecomposeSuite) SetupTest() {
	s.font = testFont()
}

func rect(w, h float64) glyphs.Path {
	return glyphs.Path{Closed: true, Nodes: []glyphs.Node{
		{Pos: glyphs.Point{X: 0, Y: 0}, Type: glyphs.Line},
		{Pos: glyphs.Point{X: w, Y: 0}, Type: glyphs.Line, Smooth: true},
		{Pos: glyphs.Point{X: w, Y: h}, Type: glyphs.Line},
		{Pos: glyphs.Point{X: 0, Y: h}, Type: glyphs.Line},
	}}
}

func layer(id, master string, shapes ...glyphs.Shape) *glyphs.Layer {
	return &glyphs.Layer{LayerID: id, AssociatedMasterID: master, Shapes: shapes}
}

func part(id, master string, n int, p glyphs.Path) *glyphs.Layer {
	l := layer(id, master, glyphs.PathShape(p))
	l.PartSelection = map[string]int{"size": n}
	return l
}

func smart(ref string, values map[string]float64, m glyphs.Transform) glyphs.Shape {
	return glyphs.ComponentShape(glyphs.Component{Ref: ref, Values: values, Transform: m})
}

func ref(name string, m glyphs.Transform) glyphs.Shape {
	return glyphs.ComponentShape(glyphs.Component{Ref: name, Transform: m})
}

// testFont has masters m1 and m2; smart glyph bar.ext has part layers for m1 only.
func testFont() *glyphs.Font {
	return glyphs.NewFont("Decompose", []glyphs.Master{{ID: "m1", Weight: 100}, {ID: "m2", Weight: 900}},
		[]*glyphs.Glyph{
			{Name: "bar", Layers: []*glyphs.Layer{
				layer("m1", "", glyphs.PathShape(rect(50, 100))),
				layer("m2", "", glyphs.PathShape(rect(80, 100))),
			}},
			{Name: "composite", Layers: []*glyphs.Layer{
				layer("m1", "", glyphs.PathShape(rect(5, 5)), ref("bar", glyphs.Translate(100, 0)),
					smart("bar.ext", map[string]float64{"size": 500}, glyphs.Translate(10, 20))),
			}},
			{Name: "bar.ext",
				SmartAxes: []glyphs.SmartAxis{{Name: "size", Bottom: 0, Top: 1000}},
				Layers: []*glyphs.Layer{
					layer("m1", "", ref("bar", glyphs.Identity)),
					part("p1", "m1", 1, rect(50, 100)),
					part("p2", "m1", 2, rect(50, 1000)),
					layer("m2", "", glyphs.PathShape(rect(80, 100))),
				}},
			{Name: "nested", Layers: []*glyphs.Layer{
				layer("m1", "", ref("composite", glyphs.Translate(0, 1000))),
			}},
		}, nil)
}

func (s *DecomposeSuite) decomposed(glyph, layerID string) *glyphs.Layer {
	g := s.font.Glyph(glyph)
	s.Require().NotNil(g)
	for _, l := range g.Layers {
		if l.LayerID == layerID {
			return l
		}
	}
	s.FailNow("layer not found", "%s/%s", glyph, layerID)
	return nil
}

func (s *DecomposeSuite) TestFont() {
	original := s.font.Glyph("composite").Layers[0]
	s.Require().NoError(Font(s.font))
	for _, g := range s.font.Glyphs {
		for _, l := range g.Layers {
			s.False(l.HasComponents(), "%s/%s still has components", g.Name, l.LayerID)
		}
	}
	s.True(original.HasComponents(), "original layer has been modified")
	//
	paths := s.decomposed("composite", "m1").Paths()
	s.Require().Len(paths, 3)
	s.Equal(rect(5, 5), paths[0])
	s.Equal(rect(50, 100).Transformed(glyphs.Translate(100, 0)), paths[1])
	s.Equal(rect(50, 550).Transformed(glyphs.Translate(10, 20)), paths[2])
	s.True(paths[2].Nodes[1].Smooth, "smooth flag is taken from part 1")
	//
	nested := s.decomposed("nested", "m1").Paths()
	s.Require().Len(nested, 3)
	s.Equal(glyphs.Point{X: 60, Y: 1570}, nested[2].Nodes[2].Pos)
}

func (s *DecomposeSuite) TestIdempotence() {
	s.Require().NoError(Font(s.font))
	once := s.decomposed("composite", "m1")
	s.Require().NoError(Font(s.font))
	s.Same(once, s.decomposed("composite", "m1"))
	l, err := Layer(s.font, once)
	s.NoError(err)
	s.Same(once, l)
}

func (s *DecomposeSuite) TestEndpoints() {
	for _, tt := range []struct {
		values map[string]float64
		height float64
	}{
		{nil, 100},
		{map[string]float64{"size": 0}, 100},
		{map[string]float64{"size": 1000}, 1000},
		{map[string]float64{"size": 250}, 325},
	} {
		l := layer("m1", "", smart("bar.ext", tt.values, glyphs.Identity))
		dl, err := Layer(s.font, l)
		s.Require().NoError(err)
		s.Require().Len(dl.Paths(), 1)
		s.Equal(rect(50, tt.height), dl.Paths()[0], "values %v", tt.values)
	}
}

func (s *DecomposeSuite) TestConfigurationErrors() {
	for _, tt := range []struct {
		name  string
		shape glyphs.Shape
		err   error
	}{
		{"multi-axis", smart("bar.ext", map[string]float64{"size": 1, "width": 2}, glyphs.Identity), ErrMultiAxis},
		{"unknown axis", smart("bar.ext", map[string]float64{"width": 2}, glyphs.Identity), ErrUnknownAxis},
		{"unknown glyph", ref("nope", glyphs.Identity), ErrUnknownGlyph},
	} {
		_, err := Layer(s.font, layer("m1", "", tt.shape))
		s.ErrorIs(err, tt.err, tt.name)
	}
	_, err := Layer(s.font, layer("m2", "", smart("bar.ext", nil, glyphs.Identity)))
	s.ErrorIs(err, ErrMissingPart)
	s.Contains(err.Error(), "master m2")
}

func (s *DecomposeSuite) TestCycle() {
	f := glyphs.NewFont("Cycle", []glyphs.Master{{ID: "m"}}, []*glyphs.Glyph{
		{Name: "a", Layers: []*glyphs.Layer{layer("m", "", ref("b", glyphs.Identity))}},
		{Name: "b", Layers: []*glyphs.Layer{layer("m", "", ref("a", glyphs.Identity))}},
	}, nil)
	s.ErrorIs(Font(f), ErrCycle)
}

func TestSmartPathsRounding(t *testing.T) {
	p1 := []glyphs.Path{{Nodes: []glyphs.Node{{Pos: glyphs.Point{X: 0, Y: 0}}, {Pos: glyphs.Point{X: 0, Y: 0}}}}}
	p2 := []glyphs.Path{{Nodes: []glyphs.Node{{Pos: glyphs.Point{X: 1, Y: 3}}, {Pos: glyphs.Point{X: -1, Y: 5}}}}}
	paths, err := SmartPaths(p1, p2, 0.5, glyphs.Transform{})
	if err != nil {
		t.Fatal(err)
	}
	want := []glyphs.Point{{X: 0, Y: 2}, {X: -0, Y: 2}}
	for i, n := range paths[0].Nodes {
		if n.Pos != want[i] {
			t.Errorf("node %d: expected %v, have %v", i, want[i], n.Pos)
		}
	}
	if _, err = SmartPaths(p1, nil, 0.5, glyphs.Identity); err == nil {
		t.Error("expected error for incompatible parts")
	}
}
